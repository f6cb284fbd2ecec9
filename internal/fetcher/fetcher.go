// Package fetcher decodes tabular files (XLSX, CSV) into header-keyed rows.
package fetcher

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnsupportedFormat is returned for file extensions no decoder handles.
var ErrUnsupportedFormat = eris.New("fetcher: unsupported tabular format")

// Table is a decoded sheet: a header row plus data rows in file order.
// Data rows are padded or truncated to the header width.
type Table struct {
	Header []string
	Rows   [][]string
}

// Value returns the cell at (row, col) or "" when out of range.
func (t *Table) Value(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ReadTableFile decodes the file at path, choosing the decoder by extension.
func ReadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read file")
	}
	return ReadTable(filepath.Base(path), data)
}

// ReadTable decodes data, choosing the decoder by the extension of name.
func ReadTable(name string, data []byte) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(data, XLSXOptions{})
	case ".csv":
		return ReadCSV(bytes.NewReader(data), CSVOptions{})
	case ".tsv":
		return ReadCSV(bytes.NewReader(data), CSVOptions{Delimiter: '\t'})
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "fetcher: %q", name)
	}
}

// newTable splits raw rows into header and data rows.
func newTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, eris.New("fetcher: missing header row")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	t := &Table{Header: header, Rows: make([][]string, 0, len(rows)-1)}
	for _, r := range rows[1:] {
		row := make([]string, len(header))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
