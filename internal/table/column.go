package table

import (
	"fmt"
	"strings"

	apperrors "tabscan/internal/errors"
)

// Column is an ordered sequence of cells under a declared type. Present
// cells always carry a payload of that type; the constructor enforces it.
type Column struct {
	name  string
	dtype DType
	cells []Cell
}

// NewColumn builds a typed column. The name must be non-empty, the dtype
// recognized, and every present cell's payload must match the declared
// type exactly. The cell slice is copied.
func NewColumn(name string, dtype DType, cells []Cell) (Column, error) {
	if strings.TrimSpace(name) == "" {
		return Column{}, apperrors.NewAppValidationError("column name must not be empty")
	}
	if !dtype.IsValid() {
		return Column{}, apperrors.NewConfigError(fmt.Sprintf("unrecognized column type for %q", name), nil)
	}
	for i, c := range cells {
		if c.IsMissing() {
			continue
		}
		if c.MustValue().Kind() != dtype {
			return Column{}, apperrors.NewAppValidationError(
				fmt.Sprintf("column %q declared %s but cell %d holds %s", name, dtype, i, c.MustValue().Kind()))
		}
	}
	copied := make([]Cell, len(cells))
	copy(copied, cells)
	return Column{name: name, dtype: dtype, cells: copied}, nil
}

// Name returns the column name.
func (c Column) Name() string { return c.name }

// DType returns the declared semantic type.
func (c Column) DType() DType { return c.dtype }

// Len returns the number of cells.
func (c Column) Len() int { return len(c.cells) }

// Cell returns the cell at row i. Panics when i is out of range, matching
// slice semantics.
func (c Column) Cell(i int) Cell { return c.cells[i] }

// Cells returns a copy of the cell slice.
func (c Column) Cells() []Cell {
	out := make([]Cell, len(c.cells))
	copy(out, c.cells)
	return out
}

// MissingCount returns the number of missing cells.
func (c Column) MissingCount() int {
	n := 0
	for _, cell := range c.cells {
		if cell.IsMissing() {
			n++
		}
	}
	return n
}

// Rebuild returns a column of the same name and type over a new cell
// slice. Present cells are re-checked against the declared type so a
// malformed rebuild cannot corrupt the column invariant.
func (c Column) Rebuild(cells []Cell) (Column, error) {
	return NewColumn(c.name, c.dtype, cells)
}
