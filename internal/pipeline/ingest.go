package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"

	"github.com/sells-group/uav-enrich/internal/fetcher"
	"github.com/sells-group/uav-enrich/internal/model"
)

// ErrIngest marks a batch-level ingestion failure. No records are returned
// alongside it.
var ErrIngest = eris.New("ingest: input is not decodable as tabular data")

// nameColumns are the header names, compared case-insensitively, that hold
// the company name.
var nameColumns = []string{"name", "company"}

// LoadFile decodes the tabular file at path and ingests it.
func LoadFile(path string) ([]model.CompanyRecord, error) {
	table, err := fetcher.ReadTableFile(path)
	if err != nil {
		return nil, eris.Wrapf(ErrIngest, "ingest: %s: %v", path, err)
	}
	return Ingest(table)
}

// LoadBytes decodes an uploaded tabular document and ingests it. The name is
// only used to pick the decoder.
func LoadBytes(name string, data []byte) ([]model.CompanyRecord, error) {
	table, err := fetcher.ReadTable(name, data)
	if err != nil {
		return nil, eris.Wrapf(ErrIngest, "ingest: %s: %v", name, err)
	}
	return Ingest(table)
}

// Ingest converts a decoded table into pending records, one per non-blank
// row, in row order.
func Ingest(table *fetcher.Table) ([]model.CompanyRecord, error) {
	if table == nil || len(table.Header) == 0 {
		return nil, eris.Wrap(ErrIngest, "ingest: empty table")
	}

	col := resolveNameColumn(table.Header)

	records := make([]model.CompanyRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		if blankRow(row) {
			continue
		}
		name := strings.TrimSpace(table.Value(i, col))
		if name == "" {
			name = model.UnknownCompany
		}
		records = append(records, model.NewCompanyRecord(name))
	}

	return records, nil
}

// resolveNameColumn returns the index of the first header equal to one of
// nameColumns under Unicode case folding, or 0 when none matches.
func resolveNameColumn(header []string) int {
	fold := cases.Fold()
	for i, h := range header {
		key := fold.String(strings.TrimSpace(h))
		for _, want := range nameColumns {
			if key == want {
				return i
			}
		}
	}
	return 0
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
