package table

import (
	"fmt"

	apperrors "tabscan/internal/errors"
)

// Table is an ordered sequence of named columns of equal length. Row
// identity is the positional index, optionally paired with row labels.
// Tables are immutable after construction.
type Table struct {
	name    string
	columns []Column
	labels  []string
	byName  map[string]int
}

// Option configures optional table attributes at construction.
type Option func(*Table)

// WithLabels attaches external row labels. The label count must match the
// row count; New validates it.
func WithLabels(labels []string) Option {
	return func(t *Table) {
		t.labels = make([]string, len(labels))
		copy(t.labels, labels)
	}
}

// New builds a table from columns. Column names must be unique and all
// columns must have the same length.
func New(name string, columns []Column, opts ...Option) (*Table, error) {
	t := &Table{
		name:    name,
		columns: make([]Column, len(columns)),
		byName:  make(map[string]int, len(columns)),
	}
	copy(t.columns, columns)

	for i, col := range t.columns {
		if _, dup := t.byName[col.Name()]; dup {
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("duplicate column name %q", col.Name()))
		}
		t.byName[col.Name()] = i
	}

	for i := 1; i < len(t.columns); i++ {
		if t.columns[i].Len() != t.columns[0].Len() {
			return nil, apperrors.NewAppValidationError(fmt.Sprintf(
				"column %q has %d rows, column %q has %d",
				t.columns[i].Name(), t.columns[i].Len(), t.columns[0].Name(), t.columns[0].Len()))
		}
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.labels != nil && len(t.labels) != t.NumRows() {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf(
			"%d row labels for %d rows", len(t.labels), t.NumRows()))
	}

	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// NumRows returns the row count. Zero for a table with no columns.
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.columns) }

// Columns returns a copy of the column slice.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.byName[name]
	return i, ok
}

// ColumnAt returns the column at position i. Panics when out of range.
func (t *Table) ColumnAt(i int) Column { return t.columns[i] }

// ColumnNames returns the names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name()
	}
	return names
}

// Cell returns the cell at row r of column c.
func (t *Table) Cell(r, c int) Cell { return t.columns[c].Cell(r) }

// HasLabels reports whether external row labels are attached.
func (t *Table) HasLabels() bool { return t.labels != nil }

// Labels returns a copy of the row labels, or nil when none are attached.
func (t *Table) Labels() []string {
	if t.labels == nil {
		return nil
	}
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Label returns the label of row r, or its positional index rendered as a
// string when no labels are attached.
func (t *Table) Label(r int) string {
	if t.labels == nil {
		return fmt.Sprintf("%d", r)
	}
	return t.labels[r]
}

// Equal reports whether two tables have identical names, shapes, schemas,
// labels, and cell contents.
func (t *Table) Equal(other *Table) bool {
	if other == nil || t.name != other.name ||
		t.NumRows() != other.NumRows() || t.NumCols() != other.NumCols() {
		return false
	}
	if t.HasLabels() != other.HasLabels() {
		return false
	}
	for i := range t.labels {
		if t.labels[i] != other.labels[i] {
			return false
		}
	}
	for c := range t.columns {
		a, b := t.columns[c], other.columns[c]
		if a.Name() != b.Name() || a.DType() != b.DType() {
			return false
		}
		for r := 0; r < a.Len(); r++ {
			ca, cb := a.Cell(r), b.Cell(r)
			if ca.IsMissing() != cb.IsMissing() {
				return false
			}
			if ca.IsMissing() {
				continue
			}
			va, vb := ca.MustValue(), cb.MustValue()
			if va.Kind() != vb.Kind() || !va.Equal(vb) {
				// NaN payloads are unequal under Equal but identical cells
				if !(va.IsNaN() && vb.IsNaN()) {
					return false
				}
			}
		}
	}
	return true
}
