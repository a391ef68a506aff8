package table

// RawCell is a loader-produced cell before classification. Null marks
// cells the loader already mapped to the null token, either because the
// source had no value at that position or because the text matched the
// loader's na_values list.
type RawCell struct {
	Value Value
	Null  bool
}

// RawColumn is a parsed, typed column before classification.
type RawColumn struct {
	Name  string
	DType DType
	Cells []RawCell
}

// RawTable is the hand-off shape between data loaders and the classifier.
// Loaders own parsing and type inference; deciding which values count as
// missing stays with the classifier.
type RawTable struct {
	Name    string
	Columns []RawColumn
	Labels  []string
}

// NumRows returns the row count of the first column. Zero for an empty
// raw table.
func (rt RawTable) NumRows() int {
	if len(rt.Columns) == 0 {
		return 0
	}
	return len(rt.Columns[0].Cells)
}

// NumCols returns the column count.
func (rt RawTable) NumCols() int { return len(rt.Columns) }
