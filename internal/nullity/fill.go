package nullity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// StrategyKind enumerates the supported imputation strategies.
type StrategyKind int

const (
	FillUnspecified StrategyKind = iota
	FillConstant
	FillMean
	FillMedian
	FillMode
	FillForward
	FillBackward
)

// String returns the wire name of the strategy.
func (k StrategyKind) String() string {
	switch k {
	case FillUnspecified:
		return "unspecified"
	case FillConstant:
		return "constant"
	case FillMean:
		return "mean"
	case FillMedian:
		return "median"
	case FillMode:
		return "mode"
	case FillForward:
		return "ffill"
	case FillBackward:
		return "bfill"
	default:
		return fmt.Sprintf("strategy(%d)", int(k))
	}
}

// ParseStrategyKind converts a wire name into a StrategyKind.
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "constant", "value":
		return FillConstant, nil
	case "mean", "average":
		return FillMean, nil
	case "median":
		return FillMedian, nil
	case "mode":
		return FillMode, nil
	case "ffill", "forward", "pad":
		return FillForward, nil
	case "bfill", "backward", "backfill":
		return FillBackward, nil
	default:
		return 0, apperrors.NewConfigError(fmt.Sprintf("unknown fill strategy %q", s), nil)
	}
}

// Strategy pairs a kind with the payload used by constant fills.
type Strategy struct {
	Kind  StrategyKind
	Value table.Value
}

// Constant fills missing cells with the given value.
func Constant(v table.Value) Strategy { return Strategy{Kind: FillConstant, Value: v} }

// Mean fills missing cells with the column mean. Numeric columns only.
func Mean() Strategy { return Strategy{Kind: FillMean} }

// Median fills missing cells with the column median. Numeric columns only.
func Median() Strategy { return Strategy{Kind: FillMedian} }

// Mode fills missing cells with the most frequent observed value.
func Mode() Strategy { return Strategy{Kind: FillMode} }

// ForwardFill propagates the last observed value over later gaps.
func ForwardFill() Strategy { return Strategy{Kind: FillForward} }

// BackwardFill propagates the next observed value over earlier gaps.
func BackwardFill() Strategy { return Strategy{Kind: FillBackward} }

// FillOptions configures a Fill call.
//
// Strategy applies to every column; PerColumn overrides it for the
// named columns. With no table-wide strategy, only the columns in
// PerColumn are touched. Axis chooses the direction for ffill and
// bfill: AxisRows walks each column top to bottom, AxisColumns walks
// each row left to right. Only the directional strategies support
// AxisColumns.
type FillOptions struct {
	Strategy  Strategy
	PerColumn map[string]Strategy
	Axis      Axis
}

// Fill replaces missing cells per the configured strategies, returning
// a new table of identical shape and schema. The input is never
// modified. The call is all-or-nothing: on any error no partial result
// is produced. A cell with no resolvable replacement, such as a gap
// before the first observed value under forward fill, stays missing.
func Fill(t *table.Table, opts FillOptions) (*table.Table, error) {
	if err := validateFillOptions(t, opts); err != nil {
		return nil, err
	}

	if opts.Axis == AxisColumns {
		return fillAcrossColumns(t, opts.Strategy.Kind)
	}

	columns := make([]table.Column, 0, t.NumCols())
	for _, col := range t.Columns() {
		strat, ok := strategyFor(col.Name(), opts)
		if !ok {
			columns = append(columns, col)
			continue
		}
		filled, err := fillColumn(col, strat)
		if err != nil {
			return nil, err
		}
		columns = append(columns, filled)
	}

	var topts []table.Option
	if t.HasLabels() {
		topts = append(topts, table.WithLabels(t.Labels()))
	}
	return table.New(t.Name(), columns, topts...)
}

func validateFillOptions(t *table.Table, opts FillOptions) error {
	if opts.Axis == AxisColumns {
		if len(opts.PerColumn) > 0 {
			return apperrors.NewAppValidationError("per-column strategies fill along rows, not across columns")
		}
		switch opts.Strategy.Kind {
		case FillForward, FillBackward:
			return nil
		default:
			return apperrors.NewAppValidationError(fmt.Sprintf("strategy %s cannot fill across columns", opts.Strategy.Kind))
		}
	}

	if opts.Strategy.Kind == FillUnspecified && len(opts.PerColumn) == 0 {
		return apperrors.NewAppValidationError("no fill strategy configured")
	}
	for name, strat := range opts.PerColumn {
		if _, ok := t.ColumnIndex(name); !ok {
			return apperrors.NewShapeError(fmt.Sprintf("strategy column %q does not exist", name)).
				WithContext("column", name)
		}
		if strat.Kind == FillUnspecified {
			return apperrors.NewAppValidationError(fmt.Sprintf("fill strategy for column %q is unspecified", name))
		}
	}
	return nil
}

// strategyFor resolves the strategy for one column. PerColumn entries
// win over the table-wide strategy.
func strategyFor(name string, opts FillOptions) (Strategy, bool) {
	if strat, ok := opts.PerColumn[name]; ok {
		return strat, true
	}
	if opts.Strategy.Kind != FillUnspecified {
		return opts.Strategy, true
	}
	return Strategy{}, false
}

func fillColumn(col table.Column, strat Strategy) (table.Column, error) {
	switch strat.Kind {
	case FillConstant:
		return fillConstant(col, strat.Value)
	case FillMean:
		return fillStatistic(col, "mean", meanOf)
	case FillMedian:
		return fillStatistic(col, "median", medianOf)
	case FillMode:
		return fillMode(col)
	case FillForward:
		return fillDirectional(col, false)
	case FillBackward:
		return fillDirectional(col, true)
	default:
		return table.Column{}, apperrors.NewConfigError(fmt.Sprintf("unknown fill strategy %d", int(strat.Kind)), nil)
	}
}

func fillConstant(col table.Column, v table.Value) (table.Column, error) {
	if col.MissingCount() == 0 {
		return col, nil
	}
	converted, ok := v.ConvertTo(col.DType())
	if !ok {
		return table.Column{}, apperrors.NewUnsupportedTypeError(
			fmt.Sprintf("constant %q is not representable in %s column %q", v.String(), col.DType(), col.Name())).
			WithContext("column", col.Name()).
			WithContext("dtype", col.DType().String())
	}
	return replaceMissing(col, converted)
}

// fillStatistic aggregates the observed values of a numeric column and
// writes the result into every gap. Integer columns receive the
// statistic rounded half away from zero. A column with nothing observed
// stays as it is.
func fillStatistic(col table.Column, name string, stat func([]float64) float64) (table.Column, error) {
	if !col.DType().Numeric() {
		return table.Column{}, apperrors.NewUnsupportedTypeError(
			fmt.Sprintf("%s is undefined for %s column %q", name, col.DType(), col.Name())).
			WithContext("column", col.Name()).
			WithContext("dtype", col.DType().String())
	}
	if col.MissingCount() == 0 {
		return col, nil
	}

	var observed []float64
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Cell(i).Value()
		if !ok || v.IsNaN() {
			continue
		}
		if v.Kind() == table.TypeInt {
			observed = append(observed, float64(v.Int()))
		} else {
			observed = append(observed, v.Float())
		}
	}
	if len(observed) == 0 {
		return col, nil
	}

	result := stat(observed)
	if col.DType() == table.TypeInt {
		return replaceMissing(col, table.IntValue(int64(math.Round(result))))
	}
	return replaceMissing(col, table.FloatValue(result))
}

// fillMode writes the most frequent observed value into every gap. Ties
// resolve to the value observed first. Works for every column type.
func fillMode(col table.Column) (table.Column, error) {
	if col.MissingCount() == 0 {
		return col, nil
	}

	counts := make(map[string]int)
	values := make(map[string]table.Value)
	var order []string
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Cell(i).Value()
		if !ok || v.IsNaN() {
			continue
		}
		key := v.String()
		if counts[key] == 0 {
			values[key] = v
			order = append(order, key)
		}
		counts[key]++
	}
	if len(order) == 0 {
		return col, nil
	}

	best := order[0]
	for _, key := range order[1:] {
		if counts[key] > counts[best] {
			best = key
		}
	}
	return replaceMissing(col, values[best])
}

// fillDirectional propagates observed values over gaps within a single
// column. Forward carries the last observation down, backward carries
// the next observation up. Gaps with no anchor in the walk direction
// stay missing.
func fillDirectional(col table.Column, backward bool) (table.Column, error) {
	if col.MissingCount() == 0 {
		return col, nil
	}

	cells := col.Cells()
	var anchor table.Value
	have := false
	if backward {
		for i := len(cells) - 1; i >= 0; i-- {
			if v, ok := cells[i].Value(); ok {
				anchor, have = v, true
				continue
			}
			if have {
				cells[i] = table.Present(anchor)
			}
		}
	} else {
		for i := range cells {
			if v, ok := cells[i].Value(); ok {
				anchor, have = v, true
				continue
			}
			if have {
				cells[i] = table.Present(anchor)
			}
		}
	}
	return col.Rebuild(cells)
}

// fillAcrossColumns propagates observed values within each row. The
// anchor must be representable in the receiving column's type without
// loss; when it is not, the cell stays missing and the anchor carries
// on to later columns. Rows never exchange values.
func fillAcrossColumns(t *table.Table, kind StrategyKind) (*table.Table, error) {
	rows, cols := t.NumRows(), t.NumCols()
	grid := make([][]table.Cell, cols)
	for c := 0; c < cols; c++ {
		grid[c] = t.ColumnAt(c).Cells()
	}

	start, end, step := 0, cols, 1
	if kind == FillBackward {
		start, end, step = cols-1, -1, -1
	}
	for r := 0; r < rows; r++ {
		var anchor table.Value
		have := false
		for c := start; c != end; c += step {
			if v, ok := grid[c][r].Value(); ok {
				anchor, have = v, true
				continue
			}
			if !have {
				continue
			}
			converted, ok := anchor.ConvertTo(t.ColumnAt(c).DType())
			if !ok {
				continue
			}
			grid[c][r] = table.Present(converted)
			anchor = converted
		}
	}

	columns := make([]table.Column, 0, cols)
	for c := 0; c < cols; c++ {
		rebuilt, err := t.ColumnAt(c).Rebuild(grid[c])
		if err != nil {
			return nil, fmt.Errorf("rebuild column %q: %w", t.ColumnAt(c).Name(), err)
		}
		columns = append(columns, rebuilt)
	}

	var topts []table.Option
	if t.HasLabels() {
		topts = append(topts, table.WithLabels(t.Labels()))
	}
	return table.New(t.Name(), columns, topts...)
}

// replaceMissing writes v into every missing cell of col.
func replaceMissing(col table.Column, v table.Value) (table.Column, error) {
	cells := col.Cells()
	for i := range cells {
		if cells[i].IsMissing() {
			cells[i] = table.Present(v)
		}
	}
	return col.Rebuild(cells)
}

func meanOf(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func medianOf(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
