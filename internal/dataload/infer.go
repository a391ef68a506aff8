package dataload

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tabscan/internal/table"
)

// timeLayouts are tried in order; the first layout that parses every
// sampled cell wins for the whole column. Mixed layouts within one column
// fall back to string.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
}

// columnShape is the parsing decision for one column: the dtype plus the
// time layout when the dtype is temporal.
type columnShape struct {
	dtype  table.DType
	layout string
}

// InferDType picks the narrowest dtype that parses every sample. Samples
// are the non-null cell texts of one column; an empty slice infers string.
func InferDType(samples []string) table.DType {
	return inferShape(samples).dtype
}

func inferShape(samples []string) columnShape {
	if len(samples) == 0 {
		return columnShape{dtype: table.TypeString}
	}
	isInt, isFloat, isBool := true, true, true
	for _, s := range samples {
		if isInt {
			if _, err := parseIntText(s); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := parseFloatText(s); err != nil {
				isFloat = false
			}
		}
		if isBool && !isBoolText(s) {
			isBool = false
		}
		if !isInt && !isFloat && !isBool {
			break
		}
	}
	// Integer before boolean keeps 0/1 columns numeric.
	switch {
	case isInt:
		return columnShape{dtype: table.TypeInt}
	case isFloat:
		return columnShape{dtype: table.TypeFloat}
	case isBool:
		return columnShape{dtype: table.TypeBool}
	}
	if layout := matchTimeLayout(samples); layout != "" {
		return columnShape{dtype: table.TypeTime, layout: layout}
	}
	return columnShape{dtype: table.TypeString}
}

func matchTimeLayout(samples []string) string {
	for _, layout := range timeLayouts {
		ok := true
		for _, s := range samples {
			if _, err := time.Parse(layout, s); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return layout
		}
	}
	return ""
}

// Spreadsheet exports often carry thousands separators in numeric cells,
// so both parsers strip commas before converting.
func parseIntText(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
}

func parseFloatText(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func isBoolText(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

// parseValue converts one non-null cell text under the column's shape.
func parseValue(text string, shape columnShape) (table.Value, error) {
	switch shape.dtype {
	case table.TypeInt:
		n, err := parseIntText(text)
		if err != nil {
			return table.Value{}, err
		}
		return table.IntValue(n), nil
	case table.TypeFloat:
		f, err := parseFloatText(text)
		if err != nil {
			return table.Value{}, err
		}
		return table.FloatValue(f), nil
	case table.TypeBool:
		if !isBoolText(text) {
			return table.Value{}, fmt.Errorf("%q is not a boolean", text)
		}
		return table.BoolValue(strings.EqualFold(text, "true")), nil
	case table.TypeTime:
		t, err := time.Parse(shape.layout, text)
		if err != nil {
			return table.Value{}, err
		}
		return table.TimeValue(t), nil
	case table.TypeString:
		return table.StringValue(text), nil
	}
	return table.Value{}, fmt.Errorf("unsupported dtype %v", shape.dtype)
}
