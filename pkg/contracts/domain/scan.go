package domain

import (
	"time"
)

// Scan represents one nullity analysis run over a dataset: classify
// every cell, profile the missing structure per column, and optionally
// materialize the boolean mask. Steps execute in order and report
// progress over the event stream.
type Scan struct {
	ID          string      `json:"id" validate:"required,uuid"`
	DatasetID   string      `json:"dataset_id" validate:"required,uuid"`
	Status      ScanStatus  `json:"status"`
	Config      ScanConfig  `json:"config"`
	Steps       []ScanStep  `json:"steps"`
	CreatedAt   time.Time   `json:"created_at"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Error       string      `json:"error,omitempty"`
	Metrics     ScanMetrics `json:"metrics,omitempty"`
}

// ScanStatus represents the status of a scan.
type ScanStatus string

const (
	ScanStatusPending   ScanStatus = "pending"
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
	ScanStatusCancelled ScanStatus = "cancelled"
)

// IsTerminal reports whether the scan reached a final state.
func (s ScanStatus) IsTerminal() bool {
	switch s {
	case ScanStatusCompleted, ScanStatusFailed, ScanStatusCancelled:
		return true
	default:
		return false
	}
}

// ScanConfig carries the sentinel policy and step selection for a
// scan. Empty sentinel lists mean only loader nulls and NaN payloads
// count as missing.
type ScanConfig struct {
	StringSentinels []string  `json:"string_sentinels,omitempty" validate:"dive,min=1"`
	NumberSentinels []float64 `json:"number_sentinels,omitempty"`
	CaseInsensitive bool      `json:"case_insensitive"`
	ComputeMask     bool      `json:"compute_mask"`
	ExportReport    bool      `json:"export_report"`
}

// ScanStep is one unit of work inside a scan.
type ScanStep struct {
	ID          string         `json:"id" validate:"required"`
	Name        string         `json:"name" validate:"required"`
	Status      StepStatus     `json:"status"`
	Order       int            `json:"order" validate:"min=0"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Duration    *time.Duration `json:"duration,omitempty"`
	State       StepState      `json:"state,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// StepStatus represents the status of a scan step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the live progress of a running step.
type StepState struct {
	Progress         float64 `json:"progress"` // 0-100
	CurrentColumn    string  `json:"current_column,omitempty"`
	ColumnsProcessed int64   `json:"columns_processed"`
	ColumnsTotal     int64   `json:"columns_total,omitempty"`
	LastError        string  `json:"last_error,omitempty"`
}

// ScanMetrics represents scan execution metrics.
type ScanMetrics struct {
	TotalDuration  time.Duration `json:"total_duration"`
	StepsCompleted int           `json:"steps_completed"`
	StepsFailed    int           `json:"steps_failed"`
	StepsSkipped   int           `json:"steps_skipped"`
	CellsScanned   int64         `json:"cells_scanned"`
	MissingCells   int64         `json:"missing_cells"`
	MissingRatio   float64       `json:"missing_ratio"`
}

// ProgressUpdate represents a progress report for a scan or one of its
// steps, published on the event stream while the scan runs.
type ProgressUpdate struct {
	ScanID           string    `json:"scan_id"`
	StepID           string    `json:"step_id,omitempty"`
	Progress         float64   `json:"progress"` // 0-100
	Message          string    `json:"message,omitempty"`
	ColumnsProcessed int64     `json:"columns_processed,omitempty"`
	ColumnsTotal     int64     `json:"columns_total,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Step identifiers
const (
	StepIDClassify = "classify"
	StepIDProfile  = "profile"
	StepIDMask     = "mask"
	StepIDExport   = "export"
)

// Step names
const (
	StepNameClassify = "Value Classification"
	StepNameProfile  = "Nullity Profiling"
	StepNameMask     = "Mask Computation"
	StepNameExport   = "Report Export"
)

// Context keys for scan execution
const (
	ContextKeyDatasetID = "dataset_id"
	ContextKeyScanID    = "scan_id"
	ContextKeyTraceID   = "trace_id"
)
