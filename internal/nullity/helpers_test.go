package nullity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tabscan/internal/table"
)

// cellsOf builds a cell slice from a compact spelling: nil marks a
// missing cell, int/int64/float64/bool/string payloads become present
// cells of the corresponding kind.
func cellsOf(t *testing.T, vals ...any) []table.Cell {
	t.Helper()
	cells := make([]table.Cell, 0, len(vals))
	for _, v := range vals {
		switch x := v.(type) {
		case nil:
			cells = append(cells, table.Missing())
		case int:
			cells = append(cells, table.Present(table.IntValue(int64(x))))
		case int64:
			cells = append(cells, table.Present(table.IntValue(x)))
		case float64:
			cells = append(cells, table.Present(table.FloatValue(x)))
		case bool:
			cells = append(cells, table.Present(table.BoolValue(x)))
		case string:
			cells = append(cells, table.Present(table.StringValue(x)))
		default:
			t.Fatalf("unsupported cell payload %T", v)
		}
	}
	return cells
}

func column(t *testing.T, name string, dtype table.DType, vals ...any) table.Column {
	t.Helper()
	col, err := table.NewColumn(name, dtype, cellsOf(t, vals...))
	require.NoError(t, err)
	return col
}

func newTable(t *testing.T, name string, cols ...table.Column) *table.Table {
	t.Helper()
	tbl, err := table.New(name, cols)
	require.NoError(t, err)
	return tbl
}

func newLabeledTable(t *testing.T, name string, labels []string, cols ...table.Column) *table.Table {
	t.Helper()
	tbl, err := table.New(name, cols, table.WithLabels(labels))
	require.NoError(t, err)
	return tbl
}

// readingsTable is the three by three fixture used across the drop and
// fill tests. Its rows are [1, _, 2], [2, 3, 5] and [_, 4, 6].
func readingsTable(t *testing.T) *table.Table {
	t.Helper()
	return newTable(t, "readings",
		column(t, "a", table.TypeFloat, 1.0, 2.0, nil),
		column(t, "b", table.TypeFloat, nil, 3.0, 4.0),
		column(t, "c", table.TypeFloat, 2.0, 5.0, 6.0),
	)
}

// rowValues flattens one row of a table into present payloads, with nil
// for missing cells.
func rowValues(t *testing.T, tbl *table.Table, r int) []any {
	t.Helper()
	out := make([]any, 0, tbl.NumCols())
	for c := 0; c < tbl.NumCols(); c++ {
		v, ok := tbl.Cell(r, c).Value()
		if !ok {
			out = append(out, nil)
			continue
		}
		switch v.Kind() {
		case table.TypeInt:
			out = append(out, v.Int())
		case table.TypeFloat:
			out = append(out, v.Float())
		case table.TypeBool:
			out = append(out, v.Bool())
		case table.TypeString:
			out = append(out, v.Str())
		default:
			out = append(out, v.String())
		}
	}
	return out
}
