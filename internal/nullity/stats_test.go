package nullity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabscan/internal/table"
)

func TestColumnMissingCounts(t *testing.T) {
	counts := ColumnMissingCounts(readingsTable(t))
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 0}, counts)
}

func TestColumnMissingRatio(t *testing.T) {
	ratios := ColumnMissingRatio(readingsTable(t))
	assert.InDelta(t, 1.0/3.0, ratios["a"], 1e-12)
	assert.InDelta(t, 1.0/3.0, ratios["b"], 1e-12)
	assert.Equal(t, 0.0, ratios["c"])
}

func TestColumnMissingRatio_ZeroRows(t *testing.T) {
	tbl := newTable(t, "empty", column(t, "a", table.TypeFloat))

	ratios := ColumnMissingRatio(tbl)
	assert.Equal(t, 0.0, ratios["a"], "a table with no rows has ratio zero, not NaN")
}

func TestSummarize(t *testing.T) {
	tbl := newTable(t, "readings",
		column(t, "a", table.TypeFloat, 1.0, 2.0, nil),
		column(t, "b", table.TypeString, "x", nil, nil),
		column(t, "c", table.TypeInt, 1, 2, 3),
	)

	summary := Summarize(tbl)
	assert.Equal(t, "readings", summary.Table)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, 3, summary.Columns)
	assert.Equal(t, 9, summary.TotalCells)
	assert.Equal(t, 3, summary.MissingCells)
	assert.InDelta(t, 1.0/3.0, summary.MissingRatio, 1e-12)

	require.Len(t, summary.Profiles, 3)

	a := summary.Profiles[0]
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "float", a.DType)
	assert.Equal(t, 1, a.MissingCount)
	assert.InDelta(t, 1.0/3.0, a.MissingRatio, 1e-12)
	assert.Equal(t, 2, a.FirstMissingRow)

	b := summary.Profiles[1]
	assert.Equal(t, 2, b.MissingCount)
	assert.Equal(t, 1, b.FirstMissingRow)

	c := summary.Profiles[2]
	assert.Equal(t, 0, c.MissingCount)
	assert.Equal(t, 0.0, c.MissingRatio)
	assert.Equal(t, -1, c.FirstMissingRow, "a complete column has no first missing row")
}

func TestSummarize_EmptyTable(t *testing.T) {
	tbl, err := table.New("empty", nil)
	require.NoError(t, err)

	summary := Summarize(tbl)
	assert.Equal(t, 0, summary.Rows)
	assert.Equal(t, 0, summary.Columns)
	assert.Equal(t, 0, summary.TotalCells)
	assert.Equal(t, 0.0, summary.MissingRatio)
	assert.Empty(t, summary.Profiles)
}
