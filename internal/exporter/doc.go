// Package exporter writes scan results and cleaned tables to files.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility.
//
// ReportExporter: Writes nullity summaries (CSV and JSON), mask matrices
// for heatmap renderers, cleaned-table CSVs, and multi-sheet XLSX report
// workbooks.
//
// ArrowExporter: Writes cleaned tables as Arrow IPC, carrying missing
// cells in the validity bitmap instead of a sentinel value.
//
// Example usage:
//
//	reports := exporter.NewReportExporter(paths)
//
//	// Write the per-column profile next to the cleaned data
//	err := reports.ExportSummaryCSV(summary, "scan_summary.csv")
//	err = reports.ExportTableCSV(tbl, "cleaned.csv")
//
//	// Hand the mask to a heatmap renderer
//	err = reports.ExportMaskCSV(mask, tbl.Labels(), "mask.csv")
package exporter
