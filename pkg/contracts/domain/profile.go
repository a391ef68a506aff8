package domain

import (
	"time"
)

// ScanSummary represents the table-level result of a completed scan.
// It is the wire shape of the nullity engine's summary, annotated with
// the dataset it describes.
type ScanSummary struct {
	DatasetID    string          `json:"dataset_id" validate:"required,uuid"`
	ScanID       string          `json:"scan_id,omitempty"`
	Table        string          `json:"table"`
	Rows         int             `json:"rows" validate:"min=0"`
	Columns      int             `json:"columns" validate:"min=0"`
	TotalCells   int             `json:"total_cells" validate:"min=0"`
	MissingCells int             `json:"missing_cells" validate:"min=0"`
	MissingRatio float64         `json:"missing_ratio" validate:"min=0,max=1"`
	Profiles     []ColumnProfile `json:"profiles" validate:"dive"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// ColumnProfile represents the per-column missing-value statistics of
// a scan. FirstMissingRow is -1 for a complete column.
type ColumnProfile struct {
	Name            string  `json:"name" validate:"required"`
	DType           string  `json:"dtype" validate:"required,oneof=integer float boolean string temporal"`
	Rows            int     `json:"rows" validate:"min=0"`
	MissingCount    int     `json:"missing_count" validate:"min=0"`
	MissingRatio    float64 `json:"missing_ratio" validate:"min=0,max=1"`
	FirstMissingRow int     `json:"first_missing_row" validate:"min=-1"`
}

// CompleteColumns returns the names of columns with no missing cells.
func (s *ScanSummary) CompleteColumns() []string {
	var names []string
	for _, p := range s.Profiles {
		if p.MissingCount == 0 {
			names = append(names, p.Name)
		}
	}
	return names
}

// WorstColumn returns the profile with the highest missing ratio, or
// nil for a table with no columns. Ties resolve to the leftmost column.
func (s *ScanSummary) WorstColumn() *ColumnProfile {
	var worst *ColumnProfile
	for i := range s.Profiles {
		if worst == nil || s.Profiles[i].MissingRatio > worst.MissingRatio {
			worst = &s.Profiles[i]
		}
	}
	return worst
}

// ReductionKind identifies a reduction operation.
type ReductionKind string

const (
	ReductionKindDrop ReductionKind = "drop"
	ReductionKindFill ReductionKind = "fill"
)

// ReductionReport represents the outcome of a drop or fill applied to
// a dataset. Reductions never modify the source dataset; the result is
// registered as a new dataset identified by ResultDatasetID.
type ReductionReport struct {
	ID              string        `json:"id" validate:"required,uuid"`
	DatasetID       string        `json:"dataset_id" validate:"required,uuid"`
	ResultDatasetID string        `json:"result_dataset_id" validate:"required,uuid"`
	Kind            ReductionKind `json:"kind" validate:"required,oneof=drop fill"`
	Axis            string        `json:"axis" validate:"required,oneof=rows columns"`
	RowsBefore      int           `json:"rows_before" validate:"min=0"`
	RowsAfter       int           `json:"rows_after" validate:"min=0"`
	ColumnsBefore   int           `json:"columns_before" validate:"min=0"`
	ColumnsAfter    int           `json:"columns_after" validate:"min=0"`
	CellsFilled     int           `json:"cells_filled,omitempty" validate:"min=0"`
	CellsStillMissing int         `json:"cells_still_missing,omitempty" validate:"min=0"`
	DroppedColumns  []string      `json:"dropped_columns,omitempty"`
	Duration        time.Duration `json:"duration"`
	RequestedAt     time.Time     `json:"requested_at"`
}

// RowsDropped returns the number of rows removed by the reduction.
func (r *ReductionReport) RowsDropped() int {
	return r.RowsBefore - r.RowsAfter
}

// ColumnsDropped returns the number of columns removed by the
// reduction.
func (r *ReductionReport) ColumnsDropped() int {
	return r.ColumnsBefore - r.ColumnsAfter
}
