package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tabscan/internal/errors"
)

func TestDType_String(t *testing.T) {
	tests := []struct {
		dtype DType
		want  string
	}{
		{TypeInt, "integer"},
		{TypeFloat, "float"},
		{TypeBool, "boolean"},
		{TypeString, "string"},
		{TypeTime, "temporal"},
		{DType(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dtype.String())
		})
	}
}

func TestParseDType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DType
		wantErr bool
	}{
		{name: "integer", input: "integer", want: TypeInt},
		{name: "int alias", input: "int", want: TypeInt},
		{name: "float", input: "float", want: TypeFloat},
		{name: "double alias", input: "double", want: TypeFloat},
		{name: "boolean", input: "boolean", want: TypeBool},
		{name: "string", input: "string", want: TypeString},
		{name: "temporal", input: "temporal", want: TypeTime},
		{name: "datetime alias", input: "datetime", want: TypeTime},
		{name: "mixed case with spaces", input: "  Float ", want: TypeFloat},
		{name: "unknown type", input: "complex", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDType(tt.input)
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

func TestDType_Numeric(t *testing.T) {
	assert.True(t, TypeInt.Numeric())
	assert.True(t, TypeFloat.Numeric())
	assert.False(t, TypeBool.Numeric())
	assert.False(t, TypeString.Numeric())
	assert.False(t, TypeTime.Numeric())
}

func TestValue_Equal(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "equal ints", a: IntValue(3), b: IntValue(3), want: true},
		{name: "different ints", a: IntValue(3), b: IntValue(4), want: false},
		{name: "int equals float by value", a: IntValue(3), b: FloatValue(3.0), want: true},
		{name: "float equals int by value", a: FloatValue(0), b: IntValue(0), want: true},
		{name: "int float mismatch", a: IntValue(3), b: FloatValue(3.5), want: false},
		{name: "nan never equal to nan", a: FloatValue(math.NaN()), b: FloatValue(math.NaN()), want: false},
		{name: "nan never equal to number", a: FloatValue(math.NaN()), b: FloatValue(1), want: false},
		{name: "equal strings", a: StringValue("?"), b: StringValue("?"), want: true},
		{name: "different strings", a: StringValue("?"), b: StringValue("."), want: false},
		{name: "string never equals number", a: StringValue("3"), b: IntValue(3), want: false},
		{name: "equal bools", a: BoolValue(true), b: BoolValue(true), want: true},
		{name: "equal times", a: TimeValue(ts), b: TimeValue(ts), want: true},
		{name: "different kinds", a: BoolValue(false), b: StringValue("false"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestValue_ConvertTo(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		target DType
		want   Value
		ok     bool
	}{
		{name: "identity int", value: IntValue(5), target: TypeInt, want: IntValue(5), ok: true},
		{name: "int to float", value: IntValue(5), target: TypeFloat, want: FloatValue(5), ok: true},
		{name: "exact float to int", value: FloatValue(4), target: TypeInt, want: IntValue(4), ok: true},
		{name: "fractional float to int", value: FloatValue(4.5), target: TypeInt, ok: false},
		{name: "nan to int", value: FloatValue(math.NaN()), target: TypeInt, ok: false},
		{name: "string to int", value: StringValue("5"), target: TypeInt, ok: false},
		{name: "int to string", value: IntValue(5), target: TypeString, ok: false},
		{name: "bool identity", value: BoolValue(true), target: TypeBool, want: BoolValue(true), ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.ConvertTo(tt.target)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got))
				assert.Equal(t, tt.target, got.Kind())
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "42", IntValue(42).String())
	assert.Equal(t, "1.5", FloatValue(1.5).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "hello", StringValue("hello").String())
	assert.Equal(t, "2024-03-01T00:00:00Z",
		TimeValue(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).String())
}

func TestValue_IsNaN(t *testing.T) {
	assert.True(t, FloatValue(math.NaN()).IsNaN())
	assert.False(t, FloatValue(1.0).IsNaN())
	assert.False(t, IntValue(0).IsNaN())
	assert.False(t, StringValue("NaN").IsNaN())
}

func TestCell(t *testing.T) {
	present := Present(FloatValue(2.5))
	missing := Missing()

	assert.False(t, present.IsMissing())
	assert.True(t, missing.IsMissing())

	v, ok := present.Value()
	require.True(t, ok)
	assert.Equal(t, 2.5, v.Float())

	_, ok = missing.Value()
	assert.False(t, ok)

	assert.Equal(t, "2.5", present.String())
	assert.Equal(t, "", missing.String())
}

func TestNewColumn(t *testing.T) {
	tests := []struct {
		name    string
		colName string
		dtype   DType
		cells   []Cell
		wantErr bool
	}{
		{
			name:    "valid float column with missing",
			colName: "price",
			dtype:   TypeFloat,
			cells:   []Cell{Present(FloatValue(1)), Missing(), Present(FloatValue(3))},
		},
		{
			name:    "empty column",
			colName: "empty",
			dtype:   TypeString,
			cells:   nil,
		},
		{
			name:    "empty name rejected",
			colName: "  ",
			dtype:   TypeFloat,
			cells:   nil,
			wantErr: true,
		},
		{
			name:    "invalid dtype rejected",
			colName: "x",
			dtype:   DType(42),
			cells:   nil,
			wantErr: true,
		},
		{
			name:    "payload type mismatch rejected",
			colName: "age",
			dtype:   TypeInt,
			cells:   []Cell{Present(StringValue("ten"))},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := NewColumn(tt.colName, tt.dtype, tt.cells)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.colName, col.Name())
			assert.Equal(t, tt.dtype, col.DType())
			assert.Equal(t, len(tt.cells), col.Len())
		})
	}
}

func TestColumn_CopiesCells(t *testing.T) {
	cells := []Cell{Present(IntValue(1)), Present(IntValue(2))}
	col, err := NewColumn("n", TypeInt, cells)
	require.NoError(t, err)

	cells[0] = Missing()
	assert.False(t, col.Cell(0).IsMissing())

	out := col.Cells()
	out[1] = Missing()
	assert.False(t, col.Cell(1).IsMissing())
}

func TestColumn_MissingCount(t *testing.T) {
	col, err := NewColumn("x", TypeFloat, []Cell{
		Present(FloatValue(1)), Missing(), Missing(), Present(FloatValue(4)),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, col.MissingCount())
}

func TestColumn_Rebuild(t *testing.T) {
	col, err := NewColumn("x", TypeInt, []Cell{Missing()})
	require.NoError(t, err)

	rebuilt, err := col.Rebuild([]Cell{Present(IntValue(7))})
	require.NoError(t, err)
	assert.Equal(t, "x", rebuilt.Name())
	assert.Equal(t, int64(7), rebuilt.Cell(0).MustValue().Int())

	_, err = col.Rebuild([]Cell{Present(StringValue("no"))})
	assert.Error(t, err)
}

func mustColumn(t *testing.T, name string, dtype DType, cells []Cell) Column {
	t.Helper()
	col, err := NewColumn(name, dtype, cells)
	require.NoError(t, err)
	return col
}

func TestNew(t *testing.T) {
	age := mustColumn(t, "age", TypeInt, []Cell{Present(IntValue(30)), Missing()})
	city := mustColumn(t, "city", TypeString, []Cell{Present(StringValue("berlin")), Present(StringValue("oslo"))})

	tbl, err := New("people", []Column{age, city})
	require.NoError(t, err)

	assert.Equal(t, "people", tbl.Name())
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumCols())
	assert.Equal(t, []string{"age", "city"}, tbl.ColumnNames())

	got, ok := tbl.Column("city")
	require.True(t, ok)
	assert.Equal(t, TypeString, got.DType())

	_, ok = tbl.Column("missing")
	assert.False(t, ok)

	idx, ok := tbl.ColumnIndex("age")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestNew_Validation(t *testing.T) {
	a := mustColumn(t, "a", TypeInt, []Cell{Present(IntValue(1))})
	aDup := mustColumn(t, "a", TypeFloat, []Cell{Present(FloatValue(1))})
	short := mustColumn(t, "b", TypeInt, nil)

	t.Run("duplicate names", func(t *testing.T) {
		_, err := New("t", []Column{a, aDup})
		assert.Error(t, err)
	})

	t.Run("unequal lengths", func(t *testing.T) {
		_, err := New("t", []Column{a, short})
		assert.Error(t, err)
	})

	t.Run("label count mismatch", func(t *testing.T) {
		_, err := New("t", []Column{a}, WithLabels([]string{"r1", "r2"}))
		assert.Error(t, err)
	})

	t.Run("empty table valid", func(t *testing.T) {
		tbl, err := New("empty", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, tbl.NumRows())
		assert.Equal(t, 0, tbl.NumCols())
	})
}

func TestTable_Labels(t *testing.T) {
	col := mustColumn(t, "v", TypeInt, []Cell{Present(IntValue(1)), Present(IntValue(2))})

	unlabeled, err := New("t", []Column{col})
	require.NoError(t, err)
	assert.False(t, unlabeled.HasLabels())
	assert.Nil(t, unlabeled.Labels())
	assert.Equal(t, "1", unlabeled.Label(1))

	labeled, err := New("t", []Column{col}, WithLabels([]string{"first", "second"}))
	require.NoError(t, err)
	assert.True(t, labeled.HasLabels())
	assert.Equal(t, "second", labeled.Label(1))

	labels := labeled.Labels()
	labels[0] = "mutated"
	assert.Equal(t, "first", labeled.Label(0))
}

func TestTable_Equal(t *testing.T) {
	build := func(name string, v float64) *Table {
		col := mustColumn(t, "x", TypeFloat, []Cell{Present(FloatValue(v)), Missing()})
		tbl, err := New(name, []Column{col})
		require.NoError(t, err)
		return tbl
	}

	assert.True(t, build("t", 1).Equal(build("t", 1)))
	assert.False(t, build("t", 1).Equal(build("t", 2)))
	assert.False(t, build("t", 1).Equal(build("u", 1)))
	assert.False(t, build("t", 1).Equal(nil))

	t.Run("nan cells compare equal", func(t *testing.T) {
		a := build("t", math.NaN())
		b := build("t", math.NaN())
		assert.True(t, a.Equal(b))
	})
}

func TestRawTable_Shape(t *testing.T) {
	rt := RawTable{
		Name: "raw",
		Columns: []RawColumn{
			{Name: "a", DType: TypeFloat, Cells: []RawCell{{Value: FloatValue(1)}, {Null: true}}},
			{Name: "b", DType: TypeString, Cells: []RawCell{{Value: StringValue("x")}, {Value: StringValue("y")}}},
		},
	}

	assert.Equal(t, 2, rt.NumRows())
	assert.Equal(t, 2, rt.NumCols())
	assert.Equal(t, 0, RawTable{}.NumRows())
}
