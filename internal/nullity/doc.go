// Package nullity implements missing-value classification, masking,
// statistics, and the drop/fill reduction operations over tables.
//
// # Components
//
// The package has three layers:
//
//  1. Value Classifier: decides per cell whether a raw value counts as
//     missing under a configurable sentinel policy (policy.go,
//     classify.go).
//  2. Nullity Engine: derives boolean masks and per-row/column/table
//     missingness statistics from a classified table (mask.go, stats.go).
//  3. Reduction Operations: drop and fill transformations driven by the
//     mask (drop.go, fill.go).
//
// # Classification
//
// A Policy enumerates literal string sentinels (".", "?", "NA") and
// numeric sentinels (0 for a biologically invalid column, -9999). Two
// built-ins always apply: floating NaN classifies as missing, and cells
// the loader marked null classify as missing. Sentinels match by value,
// not representation, so the numeric sentinel 0 matches both the integer
// 0 and the float 0.0, while the string "0" matches neither.
//
// # Reduction semantics
//
// Drop evaluates a keep predicate per row (or per column) over a scan
// subset: how=any drops candidates with at least one missing scanned
// value, how=all drops only fully missing candidates, and an explicit
// threshold keeps candidates with at least k non-missing scanned values.
// The threshold is authoritative when both are supplied. Fill strategies
// are constant, mean, median, mode, forward-fill, and backward-fill;
// statistics are computed over non-missing values only and fail for
// column types that do not define them. Forward and backward fill
// propagate within each column (or within each row when the axis says
// so) and leave cells without an anchor missing.
//
// Every operation returns a new table. Inputs are never mutated, so
// tables stay safe for concurrent readers.
//
// # Usage Example
//
//	classifier, err := nullity.NewClassifier(nullity.Policy{
//	    StringSentinels: []string{"?", "."},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tbl, err := classifier.ClassifyTable(raw)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mask := nullity.ComputeMask(tbl)
//	ratios := nullity.ColumnMissingRatio(tbl)
//
//	kept, err := nullity.Drop(tbl, nullity.DropOptions{
//	    Axis: nullity.AxisRows,
//	    How:  nullity.HowAny,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = kept
//	_ = mask
//	_ = ratios
package nullity
