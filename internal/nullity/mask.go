package nullity

import (
	"tabscan/internal/table"
)

// NullityMask is a boolean table of the same shape as its source table:
// true marks a missing cell. It is derived on demand and never mutated
// independently of the source.
type NullityMask struct {
	columns []string
	cells   [][]bool // indexed [row][column]
}

// ComputeMask derives the mask for t.
func ComputeMask(t *table.Table) NullityMask {
	rows, cols := t.NumRows(), t.NumCols()
	cells := make([][]bool, rows)
	for r := 0; r < rows; r++ {
		cells[r] = make([]bool, cols)
		for c := 0; c < cols; c++ {
			cells[r][c] = t.Cell(r, c).IsMissing()
		}
	}
	return NullityMask{columns: t.ColumnNames(), cells: cells}
}

// NumRows returns the mask's row count.
func (m NullityMask) NumRows() int { return len(m.cells) }

// NumCols returns the mask's column count.
func (m NullityMask) NumCols() int { return len(m.columns) }

// Columns returns the column names in table order.
func (m NullityMask) Columns() []string {
	out := make([]string, len(m.columns))
	copy(out, m.columns)
	return out
}

// At reports whether the cell at row r, column c is missing.
func (m NullityMask) At(r, c int) bool { return m.cells[r][c] }

// Rows returns a copy of the mask matrix, row major.
func (m NullityMask) Rows() [][]bool {
	out := make([][]bool, len(m.cells))
	for r, row := range m.cells {
		out[r] = make([]bool, len(row))
		copy(out[r], row)
	}
	return out
}

// RowAnyMissing reports whether row r has at least one missing cell.
// False for a row with no columns.
func (m NullityMask) RowAnyMissing(r int) bool {
	for _, missing := range m.cells[r] {
		if missing {
			return true
		}
	}
	return false
}

// RowAllMissing reports whether every cell of row r is missing. True for
// a row with no columns, the conjunction over nothing.
func (m NullityMask) RowAllMissing(r int) bool {
	for _, missing := range m.cells[r] {
		if !missing {
			return false
		}
	}
	return true
}

// ColAnyMissing reports whether column c has at least one missing cell.
func (m NullityMask) ColAnyMissing(c int) bool {
	for r := range m.cells {
		if m.cells[r][c] {
			return true
		}
	}
	return false
}

// ColAllMissing reports whether every cell of column c is missing. True
// for a column with no rows.
func (m NullityMask) ColAllMissing(c int) bool {
	for r := range m.cells {
		if !m.cells[r][c] {
			return false
		}
	}
	return true
}

// NonMissingInRow returns the number of present cells in row r.
func (m NullityMask) NonMissingInRow(r int) int {
	n := 0
	for _, missing := range m.cells[r] {
		if !missing {
			n++
		}
	}
	return n
}

// NonMissingInCol returns the number of present cells in column c.
func (m NullityMask) NonMissingInCol(c int) int {
	n := 0
	for r := range m.cells {
		if !m.cells[r][c] {
			n++
		}
	}
	return n
}

// KeepRow reports whether row r has at least thresh non-missing cells.
// thresh = column count reproduces how=any, thresh = 1 reproduces
// how=all.
func (m NullityMask) KeepRow(r, thresh int) bool {
	return m.NonMissingInRow(r) >= thresh
}

// AnyMissing reports whether the mask marks any cell at all.
func (m NullityMask) AnyMissing() bool {
	for r := range m.cells {
		for _, missing := range m.cells[r] {
			if missing {
				return true
			}
		}
	}
	return false
}

// CountMissing returns the total number of marked cells.
func (m NullityMask) CountMissing() int {
	n := 0
	for r := range m.cells {
		for _, missing := range m.cells[r] {
			if missing {
				n++
			}
		}
	}
	return n
}
