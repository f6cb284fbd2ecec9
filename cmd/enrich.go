package main

import (
	"context"
	"encoding/json"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/uav-enrich/internal/config"
	"github.com/sells-group/uav-enrich/internal/pipeline"
)

// enrichOptions are the enrich command flags.
type enrichOptions struct {
	Input    string
	Output   string
	Format   string
	Provider string
	Limit    int
	Offline  bool
	DryRun   bool
}

var enrichOpts enrichOptions

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Research every company in a spreadsheet and export the enriched sheet",
	Long: `Ingests a spreadsheet of company names, researches each pending company one
at a time, extracts the labeled attributes and writes the export.

Examples:
  # Dry run: parse the sheet only, no research calls
  uav-enrich enrich --input companies.xlsx --dry-run

  # Offline run with canned answers (no API keys needed)
  uav-enrich enrich --input companies.xlsx --offline --limit 3

  # Real run, CSV output
  uav-enrich enrich --input companies.xlsx --output enriched.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		_, err := runEnrich(ctx, cfg, enrichOpts, cmd.OutOrStdout())
		return err
	},
}

func init() {
	f := enrichCmd.Flags()
	f.StringVar(&enrichOpts.Input, "input", "", "input spreadsheet (.xlsx, .csv, .tsv)")
	f.StringVar(&enrichOpts.Output, "output", "", "output path (default uav_enrichment_<date>.<format> in export.dir)")
	f.StringVar(&enrichOpts.Format, "format", "", "export format: xlsx, csv, json, yaml (default from --output extension, then config)")
	f.StringVar(&enrichOpts.Provider, "provider", "", "research provider: gemini, perplexity, anthropic, stub (default from config)")
	f.IntVar(&enrichOpts.Limit, "limit", 0, "process only the first N companies (0 = all)")
	f.BoolVar(&enrichOpts.Offline, "offline", false, "use canned research answers instead of a live provider")
	f.BoolVar(&enrichOpts.DryRun, "dry-run", false, "ingest and print records without researching")
	_ = enrichCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(enrichCmd)
}

// runEnrich ingests, runs and exports. The export is written even when the
// run stops early, so completed records are never lost.
func runEnrich(ctx context.Context, c *config.Config, opts enrichOptions, out io.Writer) (pipeline.Summary, error) {
	records, err := pipeline.LoadFile(opts.Input)
	if err != nil {
		return pipeline.Summary{}, err
	}
	zap.L().Info("enrich: parsed input", zap.String("input", opts.Input), zap.Int("companies", len(records)))

	if opts.Limit > 0 && opts.Limit < len(records) {
		records = records[:opts.Limit]
	}

	if opts.DryRun {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return pipeline.Summary{Total: len(records)}, eris.Wrap(enc.Encode(records), "enrich: encode records")
	}

	format, outPath, err := resolveOutput(c, opts, time.Now())
	if err != nil {
		return pipeline.Summary{}, err
	}

	if opts.Provider != "" {
		c.Research.Provider = opts.Provider
	}
	researcher, runOpts, err := initResearch(ctx, c, "enrich", opts.Offline)
	if err != nil {
		return pipeline.Summary{}, err
	}

	batch := pipeline.NewBatch(records)
	events := make(chan pipeline.Event, 16)
	orch := pipeline.NewOrchestrator(researcher, append(runOpts, pipeline.WithObserver(func(e pipeline.Event) {
		events <- e
	}))...)

	var (
		sum    pipeline.Summary
		runErr error
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		defer close(events)
		sum, runErr = orch.Run(ctx, batch)
		return nil
	})
	g.Go(func() error {
		logProgress(events, batch.Len())
		return nil
	})
	_ = g.Wait()

	if err := pipeline.ExportFile(outPath, format, batch.Snapshot()); err != nil {
		return sum, err
	}

	zap.L().Info("enrich: batch complete",
		zap.Int("total", sum.Total),
		zap.Int("skipped", sum.Skipped),
		zap.Int("completed", sum.Completed),
		zap.Int("failed", sum.Failed),
		zap.Duration("duration", sum.Duration),
		zap.Float64("cost_usd", sum.CostUSD),
		zap.String("output", outPath),
	)
	return sum, runErr
}

// logProgress consumes events until the channel closes.
func logProgress(events <-chan pipeline.Event, total int) {
	for e := range events {
		if !e.Record.Status.Terminal() {
			continue
		}
		zap.L().Info("enrich: company done",
			zap.Int("index", e.Index+1),
			zap.Int("of", total),
			zap.String("company", e.Record.Name),
			zap.String("status", string(e.Record.Status)),
			zap.Int("progress_pct", e.Progress),
		)
	}
}

// resolveOutput picks the export format and path. The --format flag wins,
// then the --output extension, then export.format from config.
func resolveOutput(c *config.Config, opts enrichOptions, now time.Time) (pipeline.Format, string, error) {
	var (
		format pipeline.Format
		err    error
	)
	switch {
	case opts.Format != "":
		format, err = pipeline.ParseFormat(opts.Format)
	case opts.Output != "" && filepath.Ext(opts.Output) != "":
		format = pipeline.FormatFromPath(opts.Output)
	default:
		format, err = pipeline.ParseFormat(c.Export.Format)
	}
	if err != nil {
		return "", "", err
	}

	path := opts.Output
	if path == "" {
		path = filepath.Join(c.Export.Dir, pipeline.DefaultFilename(now, format))
	}
	return format, path, nil
}
