package nullity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

func TestParseAxis(t *testing.T) {
	tests := []struct {
		in      string
		want    Axis
		wantErr bool
	}{
		{in: "rows", want: AxisRows},
		{in: "Index", want: AxisRows},
		{in: "0", want: AxisRows},
		{in: "columns", want: AxisColumns},
		{in: "COLS", want: AxisColumns},
		{in: "1", want: AxisColumns},
		{in: "diagonal", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAxis(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsConfig(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHow(t *testing.T) {
	got, err := ParseHow("any")
	require.NoError(t, err)
	assert.Equal(t, HowAny, got)

	got, err = ParseHow("ALL")
	require.NoError(t, err)
	assert.Equal(t, HowAll, got)

	_, err = ParseHow("most")
	require.Error(t, err)
	assert.True(t, apperrors.IsConfig(err))
}

func TestDrop_RowsAny(t *testing.T) {
	tbl := readingsTable(t)

	got, err := Drop(tbl, DropOptions{Axis: AxisRows, How: HowAny})
	require.NoError(t, err)

	require.Equal(t, 1, got.NumRows())
	assert.Equal(t, []string{"a", "b", "c"}, got.ColumnNames())
	assert.Equal(t, []any{2.0, 3.0, 5.0}, rowValues(t, got, 0))
}

func TestDrop_RowsAll(t *testing.T) {
	tbl := newTable(t, "t",
		column(t, "a", table.TypeInt, 1, nil, nil),
		column(t, "b", table.TypeInt, nil, nil, 3),
	)

	got, err := Drop(tbl, DropOptions{Axis: AxisRows, How: HowAll})
	require.NoError(t, err)

	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, []any{int64(1), nil}, rowValues(t, got, 0))
	assert.Equal(t, []any{nil, int64(3)}, rowValues(t, got, 1))
}

func TestDrop_ColumnsAny(t *testing.T) {
	got, err := Drop(readingsTable(t), DropOptions{Axis: AxisColumns, How: HowAny})
	require.NoError(t, err)

	// Only the complete column survives.
	assert.Equal(t, []string{"c"}, got.ColumnNames())
	assert.Equal(t, 3, got.NumRows())
}

func TestDrop_ColumnsAny_NothingSurvives(t *testing.T) {
	tbl := newTable(t, "t",
		column(t, "a", table.TypeFloat, 1.0, nil),
		column(t, "b", table.TypeFloat, nil, 2.0),
	)

	got, err := Drop(tbl, DropOptions{Axis: AxisColumns, How: HowAny})
	require.NoError(t, err)

	assert.Equal(t, 0, got.NumCols())
	assert.Equal(t, 0, got.NumRows(), "a table without columns has no rows")
}

func TestDrop_ColumnsAll(t *testing.T) {
	tbl := newTable(t, "t",
		column(t, "partial", table.TypeInt, 1, nil),
		column(t, "empty", table.TypeInt, nil, nil),
	)

	got, err := Drop(tbl, DropOptions{Axis: AxisColumns, How: HowAll})
	require.NoError(t, err)
	assert.Equal(t, []string{"partial"}, got.ColumnNames())
}

func TestDrop_ThreshGeneralizesHow(t *testing.T) {
	fixtures := []*table.Table{
		readingsTable(t),
		newTable(t, "with empty row",
			column(t, "a", table.TypeInt, 1, nil, nil),
			column(t, "b", table.TypeInt, 2, nil, 3),
		),
		newTable(t, "complete",
			column(t, "a", table.TypeInt, 1, 2),
			column(t, "b", table.TypeInt, 3, 4),
		),
	}

	for _, tbl := range fixtures {
		t.Run(tbl.Name(), func(t *testing.T) {
			anyDrop, err := Drop(tbl, DropOptions{Axis: AxisRows, How: HowAny})
			require.NoError(t, err)
			threshAny, err := Drop(tbl, DropOptions{Axis: AxisRows, Thresh: Thresh(tbl.NumCols())})
			require.NoError(t, err)
			assert.True(t, anyDrop.Equal(threshAny), "thresh equal to the column count must match how=any")

			allDrop, err := Drop(tbl, DropOptions{Axis: AxisRows, How: HowAll})
			require.NoError(t, err)
			threshAll, err := Drop(tbl, DropOptions{Axis: AxisRows, Thresh: Thresh(1)})
			require.NoError(t, err)
			assert.True(t, allDrop.Equal(threshAll), "thresh of one must match how=all")
		})
	}
}

func TestDrop_ThreshGeneralizesHow_Columns(t *testing.T) {
	tbl := readingsTable(t)

	anyDrop, err := Drop(tbl, DropOptions{Axis: AxisColumns, How: HowAny})
	require.NoError(t, err)
	threshAny, err := Drop(tbl, DropOptions{Axis: AxisColumns, Thresh: Thresh(tbl.NumRows())})
	require.NoError(t, err)
	assert.True(t, anyDrop.Equal(threshAny))

	allDrop, err := Drop(tbl, DropOptions{Axis: AxisColumns, How: HowAll})
	require.NoError(t, err)
	threshAll, err := Drop(tbl, DropOptions{Axis: AxisColumns, Thresh: Thresh(1)})
	require.NoError(t, err)
	assert.True(t, allDrop.Equal(threshAll))
}

func TestDrop_ThreshZeroKeepsEverything(t *testing.T) {
	tbl := newTable(t, "t",
		column(t, "a", table.TypeInt, nil, nil),
		column(t, "b", table.TypeInt, nil, nil),
	)

	got, err := Drop(tbl, DropOptions{Axis: AxisRows, Thresh: Thresh(0)})
	require.NoError(t, err)
	assert.True(t, tbl.Equal(got))
}

func TestDrop_ThreshOverridesHow(t *testing.T) {
	tbl := readingsTable(t)

	// how=any alone would keep a single row; the threshold wins.
	got, err := Drop(tbl, DropOptions{Axis: AxisRows, How: HowAny, Thresh: Thresh(1)})
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumRows())
}

func TestDrop_RowsWithColumnSubset(t *testing.T) {
	tbl := readingsTable(t)

	got, err := Drop(tbl, DropOptions{Axis: AxisRows, How: HowAny, Columns: []string{"a"}})
	require.NoError(t, err)

	// Row 0 is missing in b but scanned only over a, so it survives.
	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, []any{1.0, nil, 2.0}, rowValues(t, got, 0))
	assert.Equal(t, []any{2.0, 3.0, 5.0}, rowValues(t, got, 1))
	assert.Equal(t, 3, got.NumCols(), "the subset narrows the scan, not the output")
}

func TestDrop_RowsWithDuplicateSubset(t *testing.T) {
	tbl := readingsTable(t)

	once, err := Drop(tbl, DropOptions{Axis: AxisRows, How: HowAny, Columns: []string{"a"}})
	require.NoError(t, err)
	twice, err := Drop(tbl, DropOptions{Axis: AxisRows, How: HowAny, Columns: []string{"a", "a"}})
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
}

func TestDrop_ColumnsWithRowSubset(t *testing.T) {
	tbl := readingsTable(t)

	got, err := Drop(tbl, DropOptions{Axis: AxisColumns, How: HowAny, Rows: []int{0}})
	require.NoError(t, err)

	// Row 0 is [1, missing, 2], so only b goes.
	assert.Equal(t, []string{"a", "c"}, got.ColumnNames())
	assert.Equal(t, 3, got.NumRows())
}

func TestDrop_Validation(t *testing.T) {
	tbl := readingsTable(t)

	tests := []struct {
		name      string
		opts      DropOptions
		wantShape bool
	}{
		{
			name:      "unknown subset column",
			opts:      DropOptions{Axis: AxisRows, Columns: []string{"ghost"}},
			wantShape: true,
		},
		{
			name: "row subset on the row axis",
			opts: DropOptions{Axis: AxisRows, Rows: []int{0}},
		},
		{
			name: "column subset on the column axis",
			opts: DropOptions{Axis: AxisColumns, Columns: []string{"a"}},
		},
		{
			name:      "row index out of range",
			opts:      DropOptions{Axis: AxisColumns, Rows: []int{3}},
			wantShape: true,
		},
		{
			name:      "negative row index",
			opts:      DropOptions{Axis: AxisColumns, Rows: []int{-1}},
			wantShape: true,
		},
		{
			name:      "negative thresh",
			opts:      DropOptions{Axis: AxisRows, Thresh: Thresh(-1)},
			wantShape: true,
		},
		{
			name:      "thresh above the column count",
			opts:      DropOptions{Axis: AxisRows, Thresh: Thresh(4)},
			wantShape: true,
		},
		{
			name:      "thresh above the subset length",
			opts:      DropOptions{Axis: AxisRows, Thresh: Thresh(2), Columns: []string{"a"}},
			wantShape: true,
		},
		{
			name:      "thresh above the row count",
			opts:      DropOptions{Axis: AxisColumns, Thresh: Thresh(4)},
			wantShape: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Drop(tbl, tt.opts)
			require.Error(t, err)
			if tt.wantShape {
				assert.True(t, apperrors.IsShape(err), "got %v", err)
				return
			}
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation), "got %v", err)
		})
	}
}

func TestDrop_PreservesLabels(t *testing.T) {
	tbl := newLabeledTable(t, "t", []string{"mon", "tue", "wed"},
		column(t, "a", table.TypeFloat, 1.0, nil, 3.0),
		column(t, "b", table.TypeFloat, 4.0, 5.0, 6.0),
	)

	got, err := Drop(tbl, DropOptions{Axis: AxisRows, How: HowAny})
	require.NoError(t, err)
	require.True(t, got.HasLabels())
	assert.Equal(t, []string{"mon", "wed"}, got.Labels())
}

func TestDrop_AllColumnsDroppedLosesLabels(t *testing.T) {
	tbl := newLabeledTable(t, "t", []string{"r1", "r2"},
		column(t, "a", table.TypeFloat, nil, 1.0),
	)

	got, err := Drop(tbl, DropOptions{Axis: AxisColumns, How: HowAny})
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumCols())
	assert.False(t, got.HasLabels())
}

func TestDrop_InputUnchanged(t *testing.T) {
	tbl := readingsTable(t)

	_, err := Drop(tbl, DropOptions{Axis: AxisRows, How: HowAny})
	require.NoError(t, err)
	assert.True(t, tbl.Equal(readingsTable(t)))
}

func TestDrop_PreservesRowOrder(t *testing.T) {
	tbl := newTable(t, "t",
		column(t, "a", table.TypeInt, nil, 1, nil, 2),
		column(t, "b", table.TypeInt, nil, nil, 3, 4),
	)

	got, err := Drop(tbl, DropOptions{Axis: AxisRows, Thresh: Thresh(1)})
	require.NoError(t, err)

	require.Equal(t, 3, got.NumRows())
	assert.Equal(t, []any{int64(1), nil}, rowValues(t, got, 0))
	assert.Equal(t, []any{nil, int64(3)}, rowValues(t, got, 1))
	assert.Equal(t, []any{int64(2), int64(4)}, rowValues(t, got, 2))
}

func TestDrop_EmptyTable(t *testing.T) {
	tbl, err := table.New("empty", nil)
	require.NoError(t, err)

	got, err := Drop(tbl, DropOptions{Axis: AxisRows, How: HowAny})
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumCols())
}
