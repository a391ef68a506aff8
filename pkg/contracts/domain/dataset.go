package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Dataset is the single source of truth for a loaded table's identity
// and shape. Every service, exporter, and API handler describes loaded
// data through this record; the cell values themselves live in the
// dataset registry and never cross the wire.
//
// Usage:
//
//	ds := domain.NewDataset("trades", domain.DatasetSource{
//		Type: domain.SourceTypeCSV,
//		Path: "data/datasets/trades.csv",
//	})
type Dataset struct {
	// ID is the registry handle, assigned at load time.
	ID string `json:"id" validate:"required,uuid"`

	// Name is the table name, taken from the file or overridden at load.
	Name string `json:"name" validate:"required,min=1,max=120"`

	// Source records where the raw bytes came from.
	Source DatasetSource `json:"source"`

	// Status tracks the load lifecycle.
	Status DatasetStatus `json:"status"`

	// Rows and Columns give the table shape after parsing. Columns
	// excludes the label column when one was promoted.
	Rows    int `json:"rows" validate:"min=0"`
	Columns int `json:"columns" validate:"min=0"`

	// Labeled reports whether a label column was promoted to row labels.
	Labeled bool `json:"labeled"`

	// DTypes maps column name to its resolved dtype wire name.
	DTypes map[string]string `json:"dtypes,omitempty"`

	// MissingCells counts cells the classifier marked missing at load.
	MissingCells int `json:"missing_cells" validate:"min=0"`

	// Fingerprint is a short content hash of the parsed table, used to
	// detect that two loads produced identical data.
	Fingerprint string `json:"fingerprint,omitempty"`

	// SizeBytes is the size of the source file, zero for remote sources.
	SizeBytes int64 `json:"size_bytes,omitempty" validate:"min=0"`

	// ParentID names the dataset a reduction derived this one from.
	// Empty for datasets loaded from a source.
	ParentID string `json:"parent_id,omitempty" validate:"omitempty,uuid"`

	// Error carries the load failure message when Status is failed.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DatasetSource records the origin of a dataset's raw bytes. Exactly
// one locator group is set depending on Type: Path for file sources,
// URL for rendered pages, SpreadsheetID and ReadRange for Sheets.
type DatasetSource struct {
	Type          SourceType `json:"type" validate:"required,oneof=csv xlsx html sheets url"`
	Path          string     `json:"path,omitempty"`
	URL           string     `json:"url,omitempty" validate:"omitempty,url"`
	SpreadsheetID string     `json:"spreadsheet_id,omitempty"`
	ReadRange     string     `json:"read_range,omitempty"`
	Sheet         string     `json:"sheet,omitempty"`
}

// SourceType identifies the loader that produced a dataset.
type SourceType string

const (
	SourceTypeCSV    SourceType = "csv"
	SourceTypeXLSX   SourceType = "xlsx"
	SourceTypeHTML   SourceType = "html"
	SourceTypeSheets SourceType = "sheets"
	SourceTypeURL    SourceType = "url"
)

// DatasetStatus represents the load lifecycle of a dataset.
type DatasetStatus string

const (
	DatasetStatusLoading DatasetStatus = "loading"
	DatasetStatusReady   DatasetStatus = "ready"
	DatasetStatusFailed  DatasetStatus = "failed"
)

// DatasetFilter represents filters for listing datasets.
type DatasetFilter struct {
	Status        DatasetStatus `json:"status,omitempty"`
	Source        SourceType    `json:"source,omitempty"`
	NameContains  string        `json:"name_contains,omitempty"`
	CreatedAfter  *time.Time    `json:"created_after,omitempty"`
	CreatedBefore *time.Time    `json:"created_before,omitempty"`
	MinRows       int           `json:"min_rows,omitempty" validate:"min=0"`
}

// DatasetValidationRules defines validation constraints for Dataset
// fields that the struct tags alone cannot express.
var DatasetValidationRules = struct {
	NamePattern   *regexp.Regexp
	MaxNameLength int
}{
	NamePattern:   regexp.MustCompile(`^[^/\\]+$`),
	MaxNameLength: 120,
}

// NewDataset returns a Dataset in the loading state with a fresh ID
// and creation timestamps. Shape and dtype fields are filled in by the
// service once parsing completes.
func NewDataset(name string, source DatasetSource) Dataset {
	now := time.Now().UTC()
	return Dataset{
		ID:        uuid.NewString(),
		Name:      name,
		Source:    source,
		Status:    DatasetStatusLoading,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateDataset checks the business rules that apply to a dataset
// record regardless of transport.
func ValidateDataset(ds *Dataset) error {
	if ds == nil {
		return fmt.Errorf("dataset cannot be nil")
	}
	if ds.ID == "" {
		return fmt.Errorf("dataset id is required")
	}
	if _, err := uuid.Parse(ds.ID); err != nil {
		return fmt.Errorf("dataset id %q is not a valid uuid: %w", ds.ID, err)
	}
	if err := ValidateDatasetName(ds.Name); err != nil {
		return err
	}
	switch ds.Source.Type {
	case SourceTypeCSV, SourceTypeXLSX, SourceTypeHTML, SourceTypeSheets, SourceTypeURL:
	default:
		return fmt.Errorf("unknown source type %q", ds.Source.Type)
	}
	if ds.Rows < 0 {
		return fmt.Errorf("rows cannot be negative: %d", ds.Rows)
	}
	if ds.Columns < 0 {
		return fmt.Errorf("columns cannot be negative: %d", ds.Columns)
	}
	if ds.MissingCells < 0 {
		return fmt.Errorf("missing cells cannot be negative: %d", ds.MissingCells)
	}
	if ds.MissingCells > ds.Rows*ds.Columns {
		return fmt.Errorf("missing cells %d exceed table size %d", ds.MissingCells, ds.Rows*ds.Columns)
	}
	return nil
}

// ValidateDatasetName checks that a name is usable as a registry key
// and as an export file stem. Path separators are rejected because the
// name becomes part of export file names.
func ValidateDatasetName(name string) error {
	if name == "" {
		return fmt.Errorf("dataset name is required")
	}
	if len(name) > DatasetValidationRules.MaxNameLength {
		return fmt.Errorf("dataset name must not exceed %d characters", DatasetValidationRules.MaxNameLength)
	}
	if !DatasetValidationRules.NamePattern.MatchString(name) {
		return fmt.Errorf("dataset name %q must not contain path separators", name)
	}
	return nil
}

// IsReady reports whether the dataset finished loading and can be
// scanned or reduced.
func (d *Dataset) IsReady() bool {
	return d.Status == DatasetStatusReady
}

// TotalCells returns the number of cells in the table body.
func (d *Dataset) TotalCells() int {
	return d.Rows * d.Columns
}

// MissingRatio returns the fraction of cells that are missing, in
// [0, 1]. An empty table has ratio 0.
func (d *Dataset) MissingRatio() float64 {
	total := d.TotalCells()
	if total == 0 {
		return 0
	}
	return float64(d.MissingCells) / float64(total)
}

// MarkReady transitions the dataset out of the loading state and stamps
// the update time.
func (d *Dataset) MarkReady() {
	d.Status = DatasetStatusReady
	d.Error = ""
	d.UpdatedAt = time.Now().UTC()
}

// MarkFailed records a load failure.
func (d *Dataset) MarkFailed(err error) {
	d.Status = DatasetStatusFailed
	if err != nil {
		d.Error = err.Error()
	}
	d.UpdatedAt = time.Now().UTC()
}
