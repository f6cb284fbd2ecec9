package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/uav-enrich/internal/fetcher"
	"github.com/sells-group/uav-enrich/internal/model"
)

func exportFixture() []model.CompanyRecord {
	done := model.NewCompanyRecord("Acme Aero")
	done.Status = model.StatusCompleted
	done.Attributes = Extract(labeledBody("acme"))
	done.Sources = []string{"https://acme.example", "https://news.example/acme"}

	failed := model.NewCompanyRecord("Parrot")
	failed.Status = model.StatusError
	failed.ErrorMessage = FailureMessage

	return []model.CompanyRecord{done, failed, model.NewCompanyRecord("Quantum, Systems")}
}

func TestColumns(t *testing.T) {
	cols := Columns()
	assert.Equal(t, []string{
		"Company Name", "Website", "Category/Products", "Company Size", "Countries",
		"UAV Segment", "Launch/Recovery", "Services Required", "Needs Precision Mfg",
		"Needs Advanced Composites", "Email", "Phone", "LinkedIn", "Sources",
	}, cols)
	assert.Len(t, ExportRow{}.Values(), len(cols))
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows(exportFixture())
	require.Len(t, rows, 3)

	assert.Equal(t, "Acme Aero", rows[0].CompanyName)
	assert.Equal(t, "https://acme.example", rows[0].Website)
	assert.Equal(t, "Yes", rows[0].NeedsPrecisionMfg)
	assert.Equal(t, "https://acme.example, https://news.example/acme", rows[0].Sources)

	// Records without attributes export blank cells.
	for _, v := range rows[1].Values()[1:] {
		assert.Empty(t, v)
	}
	assert.Equal(t, "Parrot", rows[1].CompanyName)
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	records := exportFixture()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, records))

	table, err := fetcher.ReadXLSX(buf.Bytes(), fetcher.XLSXOptions{SheetName: SheetName})
	require.NoError(t, err)
	assert.Equal(t, Columns(), table.Header)
	require.Len(t, table.Rows, len(records))
	for _, row := range table.Rows {
		assert.Len(t, row, 14)
	}
	assert.Equal(t, "https://acme.example", table.Value(0, 1))

	reimported, err := LoadBytes("export.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, names(records), names(reimported))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, exportFixture()))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Columns(), rows[0])
	assert.Equal(t, "Quantum, Systems", rows[3][0])
	assert.Equal(t, "https://acme.example, https://news.example/acme", rows[1][13])
}

func TestWriteCSV_EmptyBatchHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, nil))
	assert.Equal(t, strings.Join(Columns(), ",")+"\n", buf.String())
}

func TestWriteJSONAndYAML(t *testing.T) {
	records := exportFixture()

	var jbuf bytes.Buffer
	require.NoError(t, Write(&jbuf, FormatJSON, records))
	var jrows []ExportRow
	require.NoError(t, json.Unmarshal(jbuf.Bytes(), &jrows))
	assert.Equal(t, BuildRows(records), jrows)

	var ybuf bytes.Buffer
	require.NoError(t, Write(&ybuf, FormatYAML, records))
	var yrows []ExportRow
	require.NoError(t, yaml.Unmarshal(ybuf.Bytes(), &yrows))
	assert.Equal(t, BuildRows(records), yrows)
	assert.Contains(t, ybuf.String(), "company_name: Acme Aero")
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("pdf"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, ExportFile(path, FormatCSV, exportFixture()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Company Name,Website,"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatXLSX, false},
		{"XLSX", FormatXLSX, false},
		{"csv", FormatCSV, false},
		{"json", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatFromPathAndFilename(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatFromPath("out/enriched.CSV"))
	assert.Equal(t, FormatYAML, FormatFromPath("enriched.yml"))
	assert.Equal(t, FormatXLSX, FormatFromPath("enriched"))
	assert.Equal(t, FormatXLSX, FormatFromPath("enriched.txt"))

	day := time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "uav_enrichment_2024-05-01.xlsx", DefaultFilename(day, ""))
	assert.Equal(t, "uav_enrichment_2024-05-01.csv", DefaultFilename(day, FormatCSV))
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
}
