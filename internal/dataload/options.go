package dataload

import "tabscan/internal/table"

// Options control how a source becomes a RawTable. The zero value loads
// nothing as null except empty cells; callers normally start from
// DefaultOptions and override fields.
type Options struct {
	// Name overrides the table name. When empty, file loaders use the
	// base filename without extension and the Sheets loader uses the
	// requested range.
	Name string

	// Delimiter is the CSV field separator. Zero means comma. LoadFile
	// sets a tab for .tsv files when the caller left this unset.
	Delimiter rune

	// Sheet selects the XLSX worksheet by name. Empty means the first
	// sheet in the workbook.
	Sheet string

	// TableIndex selects which <table> element to read from an HTML
	// document, counting from zero in document order.
	TableIndex int

	// NAValues are cell texts treated as null during load, compared
	// after TrimSpace is applied. Empty cells are always null.
	NAValues []string

	// TypeHints force a column dtype instead of inferring one. A cell
	// that does not parse under its hinted dtype fails the load.
	TypeHints map[string]table.DType

	// LabelColumn names a column whose text becomes the row labels
	// instead of a data column.
	LabelColumn string

	// MaxRows caps the number of data rows read. Zero means no cap.
	MaxRows int

	// TrimSpace strips surrounding whitespace from every cell before
	// null detection and parsing.
	TrimSpace bool
}

// DefaultOptions mirrors the null token defaults in the config package so
// ad hoc loads and configured loads agree on what counts as null.
func DefaultOptions() Options {
	return Options{
		NAValues:  []string{"NA", "N/A", "null", "NULL", "-", "?"},
		TrimSpace: true,
	}
}
