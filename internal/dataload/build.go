package dataload

import (
	"fmt"
	"strings"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// buildRawTable turns a header row plus body records into a typed RawTable.
// Every loader hands its rows here so CSV, XLSX, HTML, and Sheets sources
// share one normalization, inference, and parsing path.
func buildRawTable(name string, header []string, records [][]string, opts Options) (table.RawTable, error) {
	names := normalizeHeader(header, opts)
	if len(names) == 0 {
		return table.RawTable{}, apperrors.NewParsingError("header row has no columns", nil)
	}
	if opts.MaxRows > 0 && len(records) > opts.MaxRows {
		records = records[:opts.MaxRows]
	}
	texts, nulls, err := collectCells(names, records, opts)
	if err != nil {
		return table.RawTable{}, err
	}

	labelIdx := -1
	raw := table.RawTable{Name: name}
	if opts.LabelColumn != "" {
		for i, n := range names {
			if n == opts.LabelColumn {
				labelIdx = i
				break
			}
		}
		if labelIdx < 0 {
			return table.RawTable{}, apperrors.NewShapeError(fmt.Sprintf("label column %q not found", opts.LabelColumn))
		}
		raw.Labels = texts[labelIdx]
	}

	for i, colName := range names {
		if i == labelIdx {
			continue
		}
		col, err := buildRawColumn(colName, texts[i], nulls[i], opts)
		if err != nil {
			return table.RawTable{}, err
		}
		raw.Columns = append(raw.Columns, col)
	}
	return raw, nil
}

// normalizeHeader trims header cells, names blank ones column_N, and
// suffixes duplicates so the table constructor's unique-name rule holds.
func normalizeHeader(header []string, opts Options) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		if opts.TrimSpace {
			name = strings.TrimSpace(name)
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		if _, ok := seen[name]; !ok {
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}

// collectCells transposes records into per-column text slices with null
// flags. Short rows are padded with nulls because XLSX and HTML sources
// routinely omit trailing empty cells; rows wider than the header are
// malformed input and fail the load.
func collectCells(names []string, records [][]string, opts Options) ([][]string, [][]bool, error) {
	width := len(names)
	texts := make([][]string, width)
	nulls := make([][]bool, width)
	for i := range texts {
		texts[i] = make([]string, len(records))
		nulls[i] = make([]bool, len(records))
	}
	for r, rec := range records {
		if len(rec) > width {
			return nil, nil, apperrors.NewParsingError(
				fmt.Sprintf("row %d has %d fields, header has %d", r+1, len(rec), width), nil)
		}
		for c := 0; c < width; c++ {
			text := ""
			if c < len(rec) {
				text = rec[c]
			}
			if opts.TrimSpace {
				text = strings.TrimSpace(text)
			}
			if text == "" || isNAToken(text, opts.NAValues) {
				nulls[c][r] = true
				text = ""
			}
			texts[c][r] = text
		}
	}
	return texts, nulls, nil
}

func isNAToken(text string, naValues []string) bool {
	for _, na := range naValues {
		if text == na {
			return true
		}
	}
	return false
}

func buildRawColumn(name string, texts []string, nulls []bool, opts Options) (table.RawColumn, error) {
	samples := make([]string, 0, len(texts))
	for i, t := range texts {
		if !nulls[i] {
			samples = append(samples, t)
		}
	}
	shape, err := resolveShape(name, samples, opts)
	if err != nil {
		return table.RawColumn{}, err
	}

	cells := make([]table.RawCell, len(texts))
	for i, t := range texts {
		if nulls[i] {
			cells[i] = table.RawCell{Null: true}
			continue
		}
		v, err := parseValue(t, shape)
		if err != nil {
			return table.RawColumn{}, apperrors.NewParsingError(
				fmt.Sprintf("column %q row %d: cannot parse %q as %s", name, i+1, t, shape.dtype), err)
		}
		cells[i] = table.RawCell{Value: v}
	}
	return table.RawColumn{Name: name, DType: shape.dtype, Cells: cells}, nil
}

func resolveShape(name string, samples []string, opts Options) (columnShape, error) {
	hint, hinted := opts.TypeHints[name]
	if !hinted {
		return inferShape(samples), nil
	}
	if !hint.IsValid() {
		return columnShape{}, apperrors.NewUnsupportedTypeError(
			fmt.Sprintf("type hint for column %q is not a supported dtype", name))
	}
	shape := columnShape{dtype: hint}
	if hint == table.TypeTime {
		shape.layout = matchTimeLayout(samples)
		if shape.layout == "" {
			if len(samples) > 0 {
				return columnShape{}, apperrors.NewParsingError(
					fmt.Sprintf("column %q: no supported time layout parses all values", name), nil)
			}
			shape.layout = timeLayouts[0]
		}
	}
	return shape, nil
}
