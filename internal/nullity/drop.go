package nullity

import (
	"fmt"
	"strings"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// Axis selects the direction of a reduction: operate on rows or on
// columns.
type Axis int

const (
	AxisRows Axis = iota
	AxisColumns
)

// String returns the wire name of the axis.
func (a Axis) String() string {
	switch a {
	case AxisRows:
		return "rows"
	case AxisColumns:
		return "columns"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// ParseAxis converts a wire name into an Axis. Accepted spellings
// follow the API contract: "rows"/"index"/"0" and "columns"/"cols"/"1".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rows", "row", "index", "0":
		return AxisRows, nil
	case "columns", "cols", "column", "1":
		return AxisColumns, nil
	default:
		return 0, apperrors.NewConfigError(fmt.Sprintf("unknown axis %q", s), nil)
	}
}

// How selects the trigger condition for dropping a slice: any missing
// cell, or all cells missing.
type How int

const (
	HowAny How = iota
	HowAll
)

// String returns the wire name of the condition.
func (h How) String() string {
	switch h {
	case HowAny:
		return "any"
	case HowAll:
		return "all"
	default:
		return fmt.Sprintf("how(%d)", int(h))
	}
}

// ParseHow converts a wire name into a How.
func ParseHow(s string) (How, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "any", "":
		return HowAny, nil
	case "all":
		return HowAll, nil
	default:
		return 0, apperrors.NewConfigError(fmt.Sprintf("unknown drop condition %q", s), nil)
	}
}

// DropOptions configures a Drop call.
//
// Thresh, when set, replaces How entirely: a slice survives when it has
// at least Thresh non-missing cells. Columns restricts which columns are
// scanned when dropping rows; Rows restricts which rows are scanned when
// dropping columns. Both subsets narrow the scan only, never the output
// shape.
type DropOptions struct {
	Axis    Axis
	How     How
	Thresh  *int
	Columns []string
	Rows    []int
}

// Thresh returns a DropOptions Thresh pointer for literal values.
func Thresh(n int) *int { return &n }

// Drop removes rows or columns whose missing cells meet the configured
// condition, returning a new table. The input is never modified. Row
// drops preserve the label of every surviving row; dropping every
// column yields an empty table with no rows and no labels.
func Drop(t *table.Table, opts DropOptions) (*table.Table, error) {
	scanCols, scanRows, err := resolveScanSubset(t, opts)
	if err != nil {
		return nil, err
	}

	mask := ComputeMask(t)

	switch opts.Axis {
	case AxisRows:
		scanLen := len(scanCols)
		keep, err := survivingRows(mask, scanCols, scanLen, opts)
		if err != nil {
			return nil, err
		}
		return rebuildWithRows(t, keep)
	case AxisColumns:
		scanLen := len(scanRows)
		keep, err := survivingCols(mask, scanRows, scanLen, opts)
		if err != nil {
			return nil, err
		}
		return rebuildWithCols(t, keep)
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown axis %d", int(opts.Axis)), nil)
	}
}

// resolveScanSubset turns the option subsets into concrete index lists.
// With no subset configured, every column (row drop) or every row
// (column drop) participates in the scan.
func resolveScanSubset(t *table.Table, opts DropOptions) (scanCols, scanRows []int, err error) {
	switch opts.Axis {
	case AxisRows:
		if len(opts.Rows) > 0 {
			return nil, nil, apperrors.NewAppValidationError("row subset is only valid when dropping columns")
		}
		if len(opts.Columns) == 0 {
			scanCols = make([]int, t.NumCols())
			for i := range scanCols {
				scanCols[i] = i
			}
			return scanCols, nil, nil
		}
		seen := make(map[int]bool, len(opts.Columns))
		for _, name := range opts.Columns {
			idx, ok := t.ColumnIndex(name)
			if !ok {
				return nil, nil, apperrors.NewShapeError(fmt.Sprintf("subset column %q does not exist", name)).
					WithContext("column", name)
			}
			if !seen[idx] {
				seen[idx] = true
				scanCols = append(scanCols, idx)
			}
		}
		return scanCols, nil, nil

	case AxisColumns:
		if len(opts.Columns) > 0 {
			return nil, nil, apperrors.NewAppValidationError("column subset is only valid when dropping rows")
		}
		if len(opts.Rows) == 0 {
			scanRows = make([]int, t.NumRows())
			for i := range scanRows {
				scanRows[i] = i
			}
			return nil, scanRows, nil
		}
		seen := make(map[int]bool, len(opts.Rows))
		for _, r := range opts.Rows {
			if r < 0 || r >= t.NumRows() {
				return nil, nil, apperrors.NewShapeError(fmt.Sprintf("subset row %d out of range [0, %d)", r, t.NumRows())).
					WithContext("row", r).
					WithContext("rows", t.NumRows())
			}
			if !seen[r] {
				seen[r] = true
				scanRows = append(scanRows, r)
			}
		}
		return nil, scanRows, nil

	default:
		return nil, nil, apperrors.NewConfigError(fmt.Sprintf("unknown axis %d", int(opts.Axis)), nil)
	}
}

// validateThresh checks a threshold against the length of the scanned
// slice. Zero keeps everything; scanLen requires a fully observed slice.
func validateThresh(thresh, scanLen int) error {
	if thresh < 0 || thresh > scanLen {
		return apperrors.NewShapeError(fmt.Sprintf("thresh %d outside [0, %d]", thresh, scanLen)).
			WithContext("thresh", thresh).
			WithContext("axis_length", scanLen)
	}
	return nil
}

func survivingRows(mask NullityMask, scanCols []int, scanLen int, opts DropOptions) ([]int, error) {
	if opts.Thresh != nil {
		if err := validateThresh(*opts.Thresh, scanLen); err != nil {
			return nil, err
		}
	}

	var keep []int
	for r := 0; r < mask.NumRows(); r++ {
		observed := 0
		missing := 0
		for _, c := range scanCols {
			if mask.At(r, c) {
				missing++
			} else {
				observed++
			}
		}

		if opts.Thresh != nil {
			if observed >= *opts.Thresh {
				keep = append(keep, r)
			}
			continue
		}
		switch opts.How {
		case HowAny:
			if missing == 0 {
				keep = append(keep, r)
			}
		case HowAll:
			if missing < scanLen {
				keep = append(keep, r)
			}
		default:
			return nil, apperrors.NewConfigError(fmt.Sprintf("unknown drop condition %d", int(opts.How)), nil)
		}
	}
	return keep, nil
}

func survivingCols(mask NullityMask, scanRows []int, scanLen int, opts DropOptions) ([]int, error) {
	if opts.Thresh != nil {
		if err := validateThresh(*opts.Thresh, scanLen); err != nil {
			return nil, err
		}
	}

	var keep []int
	for c := 0; c < mask.NumCols(); c++ {
		observed := 0
		missing := 0
		for _, r := range scanRows {
			if mask.At(r, c) {
				missing++
			} else {
				observed++
			}
		}

		if opts.Thresh != nil {
			if observed >= *opts.Thresh {
				keep = append(keep, c)
			}
			continue
		}
		switch opts.How {
		case HowAny:
			if missing == 0 {
				keep = append(keep, c)
			}
		case HowAll:
			if missing < scanLen {
				keep = append(keep, c)
			}
		default:
			return nil, apperrors.NewConfigError(fmt.Sprintf("unknown drop condition %d", int(opts.How)), nil)
		}
	}
	return keep, nil
}

// rebuildWithRows constructs a new table holding only the rows in keep,
// in their original order.
func rebuildWithRows(t *table.Table, keep []int) (*table.Table, error) {
	columns := make([]table.Column, 0, t.NumCols())
	for _, col := range t.Columns() {
		cells := make([]table.Cell, 0, len(keep))
		for _, r := range keep {
			cells = append(cells, col.Cell(r))
		}
		rebuilt, err := col.Rebuild(cells)
		if err != nil {
			return nil, fmt.Errorf("rebuild column %q: %w", col.Name(), err)
		}
		columns = append(columns, rebuilt)
	}

	var opts []table.Option
	if t.HasLabels() {
		labels := make([]string, 0, len(keep))
		for _, r := range keep {
			labels = append(labels, t.Label(r))
		}
		opts = append(opts, table.WithLabels(labels))
	}
	return table.New(t.Name(), columns, opts...)
}

// rebuildWithCols constructs a new table holding only the columns in
// keep, in their original order. Row labels survive as long as at least
// one column does; a table with no columns has no rows to label.
func rebuildWithCols(t *table.Table, keep []int) (*table.Table, error) {
	columns := make([]table.Column, 0, len(keep))
	for _, c := range keep {
		columns = append(columns, t.ColumnAt(c))
	}

	var opts []table.Option
	if t.HasLabels() && len(columns) > 0 {
		opts = append(opts, table.WithLabels(t.Labels()))
	}
	return table.New(t.Name(), columns, opts...)
}
