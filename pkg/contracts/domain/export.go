package domain

import (
	"time"
)

// ExportFormat identifies an export encoding.
type ExportFormat string

const (
	ExportFormatCSV   ExportFormat = "csv"
	ExportFormatXLSX  ExportFormat = "xlsx"
	ExportFormatArrow ExportFormat = "arrow"
	ExportFormatJSON  ExportFormat = "json"
)

// IsValid reports whether the format is one of the supported encodings.
func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportFormatCSV, ExportFormatXLSX, ExportFormatArrow, ExportFormatJSON:
		return true
	default:
		return false
	}
}

// Extension returns the file extension for the format, including the
// leading dot.
func (f ExportFormat) Extension() string {
	switch f {
	case ExportFormatCSV:
		return ".csv"
	case ExportFormatXLSX:
		return ".xlsx"
	case ExportFormatArrow:
		return ".arrow"
	case ExportFormatJSON:
		return ".json"
	default:
		return ""
	}
}

// ExportTarget selects what part of a scan's output an export carries.
type ExportTarget string

const (
	ExportTargetTable   ExportTarget = "table"
	ExportTargetSummary ExportTarget = "summary"
	ExportTargetMask    ExportTarget = "mask"
	ExportTargetReport  ExportTarget = "report"
)

// ExportRecord represents one completed export of a dataset or scan
// artifact to disk.
type ExportRecord struct {
	ID          string       `json:"id" validate:"required,uuid"`
	DatasetID   string       `json:"dataset_id" validate:"required,uuid"`
	Format      ExportFormat `json:"format" validate:"required,oneof=csv xlsx arrow json"`
	Target      ExportTarget `json:"target" validate:"required,oneof=table summary mask report"`
	Path        string       `json:"path" validate:"required"`
	SizeBytes   int64        `json:"size_bytes" validate:"min=0"`
	Rows        int          `json:"rows" validate:"min=0"`
	Columns     int          `json:"columns" validate:"min=0"`
	GeneratedAt time.Time    `json:"generated_at"`
}
