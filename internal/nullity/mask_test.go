package nullity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabscan/internal/table"
)

func TestComputeMask(t *testing.T) {
	tbl := readingsTable(t)

	mask := ComputeMask(tbl)
	assert.Equal(t, 3, mask.NumRows())
	assert.Equal(t, 3, mask.NumCols())
	assert.Equal(t, []string{"a", "b", "c"}, mask.Columns())
	assert.Equal(t, [][]bool{
		{false, true, false},
		{false, false, false},
		{true, false, false},
	}, mask.Rows())

	assert.True(t, mask.At(0, 1))
	assert.False(t, mask.At(1, 1))
}

func TestNullityMask_RowsReturnsCopy(t *testing.T) {
	mask := ComputeMask(readingsTable(t))

	rows := mask.Rows()
	rows[0][0] = true
	assert.False(t, mask.At(0, 0), "mutating the returned matrix must not touch the mask")
}

func TestNullityMask_RowPredicates(t *testing.T) {
	tbl := newTable(t, "t",
		column(t, "a", table.TypeInt, 1, nil, nil),
		column(t, "b", table.TypeInt, 2, 3, nil),
	)
	mask := ComputeMask(tbl)

	assert.False(t, mask.RowAnyMissing(0))
	assert.False(t, mask.RowAllMissing(0))
	assert.True(t, mask.RowAnyMissing(1))
	assert.False(t, mask.RowAllMissing(1))
	assert.True(t, mask.RowAnyMissing(2))
	assert.True(t, mask.RowAllMissing(2))

	assert.Equal(t, 2, mask.NonMissingInRow(0))
	assert.Equal(t, 1, mask.NonMissingInRow(1))
	assert.Equal(t, 0, mask.NonMissingInRow(2))
}

func TestNullityMask_ColPredicates(t *testing.T) {
	tbl := newTable(t, "t",
		column(t, "complete", table.TypeInt, 1, 2),
		column(t, "partial", table.TypeInt, 1, nil),
		column(t, "empty", table.TypeInt, nil, nil),
	)
	mask := ComputeMask(tbl)

	assert.False(t, mask.ColAnyMissing(0))
	assert.False(t, mask.ColAllMissing(0))
	assert.True(t, mask.ColAnyMissing(1))
	assert.False(t, mask.ColAllMissing(1))
	assert.True(t, mask.ColAnyMissing(2))
	assert.True(t, mask.ColAllMissing(2))

	assert.Equal(t, 2, mask.NonMissingInCol(0))
	assert.Equal(t, 1, mask.NonMissingInCol(1))
	assert.Equal(t, 0, mask.NonMissingInCol(2))
}

func TestNullityMask_ZeroRows(t *testing.T) {
	tbl := newTable(t, "t", column(t, "a", table.TypeInt))
	mask := ComputeMask(tbl)

	assert.Equal(t, 0, mask.NumRows())
	assert.Equal(t, 1, mask.NumCols())
	assert.False(t, mask.ColAnyMissing(0))
	assert.True(t, mask.ColAllMissing(0), "the conjunction over no rows holds")
	assert.False(t, mask.AnyMissing())
}

func TestNullityMask_KeepRow(t *testing.T) {
	tbl := newTable(t, "t",
		column(t, "a", table.TypeInt, 1, nil, nil),
		column(t, "b", table.TypeInt, 2, 3, nil),
		column(t, "c", table.TypeInt, 3, 4, nil),
	)
	mask := ComputeMask(tbl)

	// thresh equal to the column count keeps exactly the complete rows,
	// matching how=any.
	for r := 0; r < mask.NumRows(); r++ {
		assert.Equal(t, !mask.RowAnyMissing(r), mask.KeepRow(r, mask.NumCols()), "row %d", r)
	}

	// thresh of one keeps every row with an observation, matching
	// how=all.
	for r := 0; r < mask.NumRows(); r++ {
		assert.Equal(t, !mask.RowAllMissing(r), mask.KeepRow(r, 1), "row %d", r)
	}

	// thresh of zero keeps everything.
	for r := 0; r < mask.NumRows(); r++ {
		assert.True(t, mask.KeepRow(r, 0))
	}
}

func TestNullityMask_Counts(t *testing.T) {
	tbl := readingsTable(t)
	mask := ComputeMask(tbl)

	assert.True(t, mask.AnyMissing())
	assert.Equal(t, 2, mask.CountMissing())

	complete := newTable(t, "full", column(t, "a", table.TypeInt, 1, 2))
	require.False(t, ComputeMask(complete).AnyMissing())
	assert.Equal(t, 0, ComputeMask(complete).CountMissing())
}
