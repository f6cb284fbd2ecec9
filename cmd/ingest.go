package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/uav-enrich/internal/pipeline"
)

var ingestInput string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Preview the records a spreadsheet ingests to",
	Long:  "Decodes the input spreadsheet, resolves the company name column and prints the pending records as JSON. No research calls are made.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		records, err := pipeline.LoadFile(ingestInput)
		if err != nil {
			return err
		}
		zap.L().Info("ingest: parsed input", zap.String("input", ingestInput), zap.Int("records", len(records)))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(records), "ingest: encode records")
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestInput, "input", "", "input spreadsheet (.xlsx, .csv, .tsv)")
	_ = ingestCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(ingestCmd)
}
