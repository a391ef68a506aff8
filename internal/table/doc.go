// Package table defines the in-memory tabular data model shared by the
// loaders, the nullity engine, and the exporters.
//
// # Core Types
//
// A Table is an ordered sequence of named, typed columns of equal length.
// Each column declares a semantic type (DType) that is fixed at creation:
// appending a value of a different dynamic type is rejected rather than
// silently widening the column. Row identity is the positional index,
// optionally paired with external row labels.
//
// Each cell is a tagged variant: Present carrying a Value, or Missing
// carrying nothing. The tag travels with the cell itself; there is no
// package-global missing marker, so numeric, textual, and temporal columns
// represent absence identically.
//
//   - types.go: DType enum, the Value tagged scalar, and Cell
//   - column.go: typed column construction and access
//   - table.go: table construction, shape invariants, row labels
//   - raw.go: RawTable, the untyped product handed over by data loaders
//
// # Immutability
//
// Tables are never mutated after construction. Transformations in the
// nullity package build new cell slices and construct fresh tables, so a
// Table is safe for concurrent readers. Accessors that expose internal
// slices return copies.
//
// # Usage Example
//
//	cells := []table.Cell{
//	    table.Present(table.FloatValue(1.5)),
//	    table.Missing(),
//	    table.Present(table.FloatValue(3.0)),
//	}
//	col, err := table.NewColumn("price", table.TypeFloat, cells)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tbl, err := table.New("prices", []table.Column{col})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(tbl.NumRows(), tbl.NumCols())
package table
