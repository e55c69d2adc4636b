// Package export renders run reports in machine-readable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"autofix/internal/port/inbound"

	"gopkg.in/yaml.v3"
)

// Format identifies an export output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// ReportExporter writes run reports to an output stream.
type ReportExporter struct{}

// NewReportExporter creates a ReportExporter.
func NewReportExporter() *ReportExporter {
	return &ReportExporter{}
}

// Export renders the report in the given format.
func (e *ReportExporter) Export(w io.Writer, report *inbound.RunReport, format Format) error {
	switch format {
	case FormatJSON:
		return e.exportJSON(w, report)
	case FormatCSV:
		return e.exportCSV(w, report)
	case FormatYAML:
		return e.exportYAML(w, report)
	default:
		return fmt.Errorf("unsupported export format: %q", format)
	}
}

func (e *ReportExporter) exportJSON(w io.Writer, report *inbound.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}

func (e *ReportExporter) exportYAML(w io.Writer, report *inbound.RunReport) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding YAML report: %w", err)
	}
	return nil
}

// exportCSV writes one row per file; run-level fields repeat on every row so
// the file stands alone.
func (e *ReportExporter) exportCSV(w io.Writer, report *inbound.RunReport) error {
	cw := csv.NewWriter(w)

	header := []string{"run_id", "root_path", "path", "status", "passes", "error_kind", "error"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, file := range report.Files {
		row := []string{
			report.RunID,
			report.RootPath,
			file.Path,
			file.Status,
			strings.Join(file.Passes, ";"),
			file.ErrorKind,
			file.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	// Summary row keeps aggregate counts visible in spreadsheet tools.
	summary := []string{
		report.RunID,
		report.RootPath,
		"(summary)",
		"found=" + strconv.Itoa(report.FilesFound) +
			" fixed=" + strconv.Itoa(report.FilesFixed) +
			" failed=" + strconv.Itoa(report.FilesFailed),
		"", "", "",
	}
	if err := cw.Write(summary); err != nil {
		return fmt.Errorf("writing CSV summary: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
