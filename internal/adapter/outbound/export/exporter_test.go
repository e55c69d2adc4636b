package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"autofix/internal/port/inbound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *inbound.RunReport {
	return &inbound.RunReport{
		RunID:       "f5a0b6c2-1111-2222-3333-444455556666",
		RootPath:    "/srv/app",
		FilesFound:  3,
		FilesFixed:  1,
		FilesFailed: 1,
		Duration:    250 * time.Millisecond,
		Files: []inbound.FileReport{
			{Path: "/srv/app/ok.py", Status: "validated_ok"},
			{Path: "/srv/app/fixed.py", Status: "validated_ok", Passes: []string{"bracket_balance", "string_normalize"}},
			{Path: "/srv/app/bad.py", Status: "rejected", ErrorKind: "still_invalid", Error: "invalid syntax"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"json", "csv", "yaml"} {
		got, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestReportExporter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportExporter().Export(&buf, sampleReport(), FormatJSON))

	var decoded inbound.RunReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "/srv/app", decoded.RootPath)
	assert.Len(t, decoded.Files, 3)
	assert.Equal(t, []string{"bracket_balance", "string_normalize"}, decoded.Files[1].Passes)
}

func TestReportExporter_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportExporter().Export(&buf, sampleReport(), FormatYAML))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "/srv/app", decoded["rootpath"])
}

func TestReportExporter_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportExporter().Export(&buf, sampleReport(), FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	// Header, three file rows, summary row.
	require.Len(t, records, 5)
	assert.Equal(t, []string{"run_id", "root_path", "path", "status", "passes", "error_kind", "error"}, records[0])
	assert.Equal(t, "/srv/app/fixed.py", records[2][2])
	assert.Equal(t, "bracket_balance;string_normalize", records[2][4])
	assert.Equal(t, "still_invalid", records[3][5])
	assert.Contains(t, records[4][3], "fixed=1")
}

func TestReportExporter_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := NewReportExporter().Export(&buf, sampleReport(), Format("xml"))
	assert.Error(t, err)
}
