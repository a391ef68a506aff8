package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"tabscan/internal/config"
	"tabscan/internal/nullity"
	"tabscan/internal/table"
)

// ReportExporter writes scan output: per-column profiles, mask matrices,
// and cleaned tables.
type ReportExporter struct {
	paths *config.Paths
	csv   *CSVWriter
}

// NewReportExporter creates a report exporter rooted at the given paths
func NewReportExporter(paths *config.Paths) *ReportExporter {
	return &ReportExporter{
		paths: paths,
		csv:   NewCSVWriter(paths),
	}
}

// ExportSummaryCSV writes one row per column profile
func (r *ReportExporter) ExportSummaryCSV(summary nullity.Summary, filePath string) error {
	records := make([][]string, 0, len(summary.Profiles))
	for _, profile := range summary.Profiles {
		records = append(records, r.profileToCSVRow(profile))
	}
	return r.csv.WriteSimpleCSV(filePath, r.summaryHeaders(), records)
}

// ExportSummaryJSON writes the full summary, totals included, as
// indented JSON.
func (r *ReportExporter) ExportSummaryJSON(summary nullity.Summary, filePath string) error {
	fullPath := filePath
	if !filepath.IsAbs(fullPath) {
		fullPath = r.paths.GetReportPath(fullPath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return os.WriteFile(fullPath, data, 0644)
}

// ExportMaskCSV writes the mask as a 0/1 grid, one row per observation,
// 1 marking a missing cell. Heatmap renderers consume this directly.
// Labels may be nil, in which case the row ordinal is used.
func (r *ReportExporter) ExportMaskCSV(mask nullity.NullityMask, labels []string, filePath string) error {
	headers := append([]string{"row"}, mask.Columns()...)

	stream, err := r.csv.CreateStreamWriter(filePath, headers)
	if err != nil {
		return err
	}

	record := make([]string, mask.NumCols()+1)
	for i := 0; i < mask.NumRows(); i++ {
		if labels != nil {
			record[0] = labels[i]
		} else {
			record[0] = strconv.Itoa(i)
		}
		for c := 0; c < mask.NumCols(); c++ {
			if mask.At(i, c) {
				record[c+1] = "1"
			} else {
				record[c+1] = "0"
			}
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write mask row %d: %w", i, err)
		}
	}
	return stream.Close()
}

// ExportTableCSV streams a table to CSV. Missing cells become empty text
// and row labels, when present, lead each record under a "label" header
// so a reload with that label column restores the original table.
func (r *ReportExporter) ExportTableCSV(t *table.Table, filePath string) error {
	headers := t.ColumnNames()
	if t.HasLabels() {
		headers = append([]string{"label"}, headers...)
	}

	stream, err := r.csv.CreateStreamWriter(filePath, headers)
	if err != nil {
		return err
	}

	cols := t.Columns()
	record := make([]string, len(headers))
	for i := 0; i < t.NumRows(); i++ {
		pos := 0
		if t.HasLabels() {
			record[0] = t.Label(i)
			pos = 1
		}
		for c := range cols {
			record[pos+c] = cellText(cols[c].Cell(i))
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return stream.Close()
}

func (r *ReportExporter) summaryHeaders() []string {
	return []string{
		"column",
		"dtype",
		"rows",
		"missing_count",
		"missing_ratio",
		"first_missing_row",
	}
}

func (r *ReportExporter) profileToCSVRow(p nullity.ColumnProfile) []string {
	return []string{
		p.Name,
		p.DType,
		strconv.Itoa(p.Rows),
		strconv.Itoa(p.MissingCount),
		formatRatio(p.MissingRatio),
		strconv.Itoa(p.FirstMissingRow),
	}
}
