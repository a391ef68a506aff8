package dataload

import (
	"fmt"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// ParseLiteral parses a single text value against a known dtype under
// the same rules column loading uses: thousands separators in numbers,
// case-insensitive booleans, and the supported time layouts. Fill
// requests use this to turn a constant payload into a typed value.
func ParseLiteral(text string, dtype table.DType) (table.Value, error) {
	if !dtype.IsValid() {
		return table.Value{}, apperrors.NewUnsupportedTypeError(fmt.Sprintf("unknown dtype %d", int(dtype)))
	}
	shape := columnShape{dtype: dtype}
	if dtype == table.TypeTime {
		layout := matchTimeLayout([]string{text})
		if layout == "" {
			return table.Value{}, apperrors.NewParsingError(fmt.Sprintf("no supported time layout parses %q", text), nil)
		}
		shape.layout = layout
	}
	v, err := parseValue(text, shape)
	if err != nil {
		return table.Value{}, apperrors.NewParsingError(fmt.Sprintf("cannot parse %q as %s", text, dtype), err)
	}
	return v, nil
}

// InferLiteral parses a single text value into the narrowest dtype
// that accepts it, following the column inference precedence. Used for
// table-wide constant fills, where the target dtype varies per column.
func InferLiteral(text string) table.Value {
	shape := inferShape([]string{text})
	v, err := parseValue(text, shape)
	if err != nil {
		// Inference picked the shape from this very text, so parsing
		// cannot fail except for the string catch-all, which never errors.
		return table.StringValue(text)
	}
	return v
}
