package fetcher

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	Delimiter rune // default ','
	Comment   rune // comment character (0 = none)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV decodes a CSV document and returns it as a Table whose first row
// is the header. Rows may have a variable number of fields.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "csv: read input")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read rows")
	}

	return newTable(records)
}
