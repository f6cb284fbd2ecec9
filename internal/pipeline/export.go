package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/uav-enrich/internal/model"
)

// SheetName is the worksheet title of an XLSX export.
const SheetName = "UAV Industry Enrichment"

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("export: unsupported format %q", s)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to XLSX.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatXLSX
	}
	return f
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// DefaultFilename is the dated export name, e.g. uav_enrichment_2024-05-01.xlsx.
func DefaultFilename(now time.Time, f Format) string {
	if f == "" {
		f = FormatXLSX
	}
	return "uav_enrichment_" + now.Format("2006-01-02") + "." + string(f)
}

// ExportRow is one record flattened to the fixed export columns.
type ExportRow struct {
	CompanyName        string `csv:"Company Name" json:"company_name" yaml:"company_name"`
	Website            string `csv:"Website" json:"website" yaml:"website"`
	Category           string `csv:"Category/Products" json:"category" yaml:"category"`
	Size               string `csv:"Company Size" json:"size" yaml:"size"`
	Countries          string `csv:"Countries" json:"countries" yaml:"countries"`
	UAVType            string `csv:"UAV Segment" json:"uav_type" yaml:"uav_type"`
	LaunchRecovery     string `csv:"Launch/Recovery" json:"launch_recovery" yaml:"launch_recovery"`
	ServicesRequired   string `csv:"Services Required" json:"services_required" yaml:"services_required"`
	NeedsPrecisionMfg  string `csv:"Needs Precision Mfg" json:"manufacturing" yaml:"manufacturing"`
	NeedsAdvComposites string `csv:"Needs Advanced Composites" json:"composites" yaml:"composites"`
	Email              string `csv:"Email" json:"email" yaml:"email"`
	Phone              string `csv:"Phone" json:"phone" yaml:"phone"`
	LinkedIn           string `csv:"LinkedIn" json:"linkedin" yaml:"linkedin"`
	Sources            string `csv:"Sources" json:"sources" yaml:"sources"`
}

// Columns returns the export header in column order.
func Columns() []string {
	cols := make([]string, 0, len(model.Fields)+2)
	cols = append(cols, "Company Name")
	for _, f := range model.Fields {
		cols = append(cols, f.Column)
	}
	return append(cols, "Sources")
}

// Values returns the row cells in Columns order.
func (r ExportRow) Values() []string {
	return []string{
		r.CompanyName, r.Website, r.Category, r.Size, r.Countries, r.UAVType,
		r.LaunchRecovery, r.ServicesRequired, r.NeedsPrecisionMfg, r.NeedsAdvComposites,
		r.Email, r.Phone, r.LinkedIn, r.Sources,
	}
}

// BuildRows flattens records in order. Records in any status are exported;
// absent attributes become empty cells.
func BuildRows(records []model.CompanyRecord) []ExportRow {
	rows := make([]ExportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, ExportRow{
			CompanyName:        r.Name,
			Website:            r.Attribute(model.FieldWebsite),
			Category:           r.Attribute(model.FieldCategory),
			Size:               r.Attribute(model.FieldSize),
			Countries:          r.Attribute(model.FieldCountries),
			UAVType:            r.Attribute(model.FieldUAVType),
			LaunchRecovery:     r.Attribute(model.FieldLaunchRecovery),
			ServicesRequired:   r.Attribute(model.FieldServices),
			NeedsPrecisionMfg:  r.Attribute(model.FieldManufacturing),
			NeedsAdvComposites: r.Attribute(model.FieldComposites),
			Email:              r.Attribute(model.FieldEmail),
			Phone:              r.Attribute(model.FieldPhone),
			LinkedIn:           r.Attribute(model.FieldLinkedIn),
			Sources:            strings.Join(r.Sources, ", "),
		})
	}
	return rows
}

// Write encodes records to w in format f.
func Write(w io.Writer, f Format, records []model.CompanyRecord) error {
	rows := BuildRows(records)
	switch f {
	case FormatXLSX, "":
		return writeXLSX(w, rows)
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(rows), "export: encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return eris.Wrap(err, "export: encode yaml")
		}
		return eris.Wrap(enc.Close(), "export: close yaml encoder")
	default:
		return eris.Errorf("export: unsupported format %q", f)
	}
}

// ExportFile writes records to path. The file is written to a temporary
// sibling first and renamed into place.
func ExportFile(path string, f Format, records []model.CompanyRecord) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".uav-export-*")
	if err != nil {
		return eris.Wrap(err, "export: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := Write(tmp, f, records); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "export: chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "export: close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "export: rename to %s", path)
	}

	zap.L().Info("export: wrote file",
		zap.String("path", path),
		zap.String("format", string(f)),
		zap.Int("records", len(records)),
	)
	return nil
}

func writeXLSX(w io.Writer, rows []ExportRow) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	addRow(sheet, Columns())
	for _, r := range rows {
		addRow(sheet, r.Values())
	}

	if err := file.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func writeCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	enc.AutoHeader = false

	if err := enc.EncodeHeader(ExportRow{}); err != nil {
		return eris.Wrap(err, "export: encode csv header")
	}
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "export: encode csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}
