package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/uav-enrich/internal/fetcher"
	"github.com/sells-group/uav-enrich/internal/model"
)

func names(records []model.CompanyRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestIngest_NameColumnResolution(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		rows   [][]string
		want   []string
	}{
		{
			name:   "name column anywhere",
			header: []string{"Country", "NAME"},
			rows:   [][]string{{"US", "Acme"}, {"FR", "Parrot"}},
			want:   []string{"Acme", "Parrot"},
		},
		{
			name:   "company column",
			header: []string{"id", "Company"},
			rows:   [][]string{{"1", "SkyFront"}},
			want:   []string{"SkyFront"},
		},
		{
			name:   "first match in header order wins",
			header: []string{"Ticker", "company", "name"},
			rows:   [][]string{{"ACME", "Acme Corp", "Acme"}},
			want:   []string{"Acme Corp"},
		},
		{
			name:   "fallback to first column",
			header: []string{"Organisation", "Country"},
			rows:   [][]string{{"Quantum Systems", "DE"}},
			want:   []string{"Quantum Systems"},
		},
		{
			name:   "company name header is not an exact match",
			header: []string{"Notes", "Company Name"},
			rows:   [][]string{{"hot lead", "Acme"}},
			want:   []string{"hot lead"},
		},
		{
			name:   "empty cell becomes unknown",
			header: []string{"Name", "Country"},
			rows:   [][]string{{"  ", "US"}, {"Acme", "US"}},
			want:   []string{model.UnknownCompany, "Acme"},
		},
		{
			name:   "blank rows skipped",
			header: []string{"Name"},
			rows:   [][]string{{"Acme"}, {" "}, {"Parrot"}},
			want:   []string{"Acme", "Parrot"},
		},
		{
			name:   "trimmed",
			header: []string{"name"},
			rows:   [][]string{{"  Acme  "}},
			want:   []string{"Acme"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Ingest(&fetcher.Table{Header: tt.header, Rows: tt.rows})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(records))
		})
	}
}

func TestIngest_RecordsArePending(t *testing.T) {
	records, err := Ingest(&fetcher.Table{Header: []string{"Name"}, Rows: [][]string{{"A"}, {"B"}}})
	require.NoError(t, err)
	require.Len(t, records, 2)

	seen := map[string]bool{}
	for _, r := range records {
		assert.Equal(t, model.StatusPending, r.Status)
		assert.Empty(t, r.Attributes)
		assert.Empty(t, r.Sources)
		assert.Empty(t, r.ErrorMessage)
		assert.NotEmpty(t, r.ID)
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestIngest_EmptyTable(t *testing.T) {
	_, err := Ingest(&fetcher.Table{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIngest)
}

func TestLoadFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte("Company,Country\nAcme,US\nParrot,FR\n"), 0o644))

	records, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Parrot"}, names(records))
}

func TestLoadFile_Failures(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "broken.xlsx")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a zip archive"), 0o644))
	unsupported := filepath.Join(dir, "list.pdf")
	require.NoError(t, os.WriteFile(unsupported, []byte("%PDF"), 0o644))

	for _, path := range []string{corrupt, unsupported, filepath.Join(dir, "missing.csv")} {
		records, err := LoadFile(path)
		require.Error(t, err, path)
		assert.Nil(t, records)
		assert.ErrorIs(t, err, ErrIngest)
	}
}

func TestLoadBytes_CSV(t *testing.T) {
	records, err := LoadBytes("upload.csv", []byte("name\nAcme\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, names(records))
}
