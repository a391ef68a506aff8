package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "tabscan/internal/errors"
)

// DType identifies the declared semantic type of a column. The type is
// fixed when the column is created and never widens afterwards.
type DType int

const (
	TypeInt DType = iota
	TypeFloat
	TypeBool
	TypeString
	TypeTime
)

// String returns the lowercase name used in configs, DTOs and reports.
func (d DType) String() string {
	switch d {
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "boolean"
	case TypeString:
		return "string"
	case TypeTime:
		return "temporal"
	default:
		return fmt.Sprintf("unknown(%d)", int(d))
	}
}

// IsValid reports whether d is one of the declared column types.
func (d DType) IsValid() bool {
	return d >= TypeInt && d <= TypeTime
}

// Numeric reports whether mean/median statistics are defined for d.
func (d DType) Numeric() bool {
	return d == TypeInt || d == TypeFloat
}

// ParseDType maps the external type name onto a DType. A few aliases are
// accepted so config files and API payloads can use the short forms.
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int", "int64":
		return TypeInt, nil
	case "float", "float64", "double":
		return TypeFloat, nil
	case "boolean", "bool":
		return TypeBool, nil
	case "string", "str", "text":
		return TypeString, nil
	case "temporal", "time", "datetime", "date", "timestamp":
		return TypeTime, nil
	default:
		return 0, apperrors.NewConfigError(fmt.Sprintf("unrecognized column type %q", s), nil)
	}
}

// Value is a dynamically tagged scalar holding one of the five column
// types. The zero Value is an Int 0; construct values through the typed
// constructors.
type Value struct {
	kind DType
	i    int64
	f    float64
	b    bool
	s    string
	t    time.Time
}

// IntValue wraps an integer.
func IntValue(v int64) Value { return Value{kind: TypeInt, i: v} }

// FloatValue wraps a float. NaN is a representable value here; the
// classifier decides whether it counts as missing.
func FloatValue(v float64) Value { return Value{kind: TypeFloat, f: v} }

// BoolValue wraps a boolean.
func BoolValue(v bool) Value { return Value{kind: TypeBool, b: v} }

// StringValue wraps a string.
func StringValue(v string) Value { return Value{kind: TypeString, s: v} }

// TimeValue wraps a timestamp.
func TimeValue(v time.Time) Value { return Value{kind: TypeTime, t: v} }

// Kind returns the dynamic type of the value.
func (v Value) Kind() DType { return v.kind }

// Int returns the integer payload. Zero when the kind differs.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload. Zero when the kind differs.
func (v Value) Float() float64 { return v.f }

// Bool returns the boolean payload. False when the kind differs.
func (v Value) Bool() bool { return v.b }

// Str returns the string payload. Empty when the kind differs.
func (v Value) Str() string { return v.s }

// Time returns the temporal payload. Zero time when the kind differs.
func (v Value) Time() time.Time { return v.t }

// IsNaN reports whether v is a float NaN.
func (v Value) IsNaN() bool {
	return v.kind == TypeFloat && math.IsNaN(v.f)
}

// String renders the value for reports and CSV export.
func (v Value) String() string {
	switch v.kind {
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeString:
		return v.s
	case TypeTime:
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// Equal compares two values by value, not representation. Int and Float
// payloads compare across kinds, so a sentinel 0 matches both the integer
// 0 and the float 0.0. NaN never equals anything, including itself.
func (v Value) Equal(other Value) bool {
	if v.kind.Numeric() && other.kind.Numeric() {
		if v.kind == TypeInt && other.kind == TypeInt {
			return v.i == other.i
		}
		return v.asFloat() == other.asFloat()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case TypeBool:
		return v.b == other.b
	case TypeString:
		return v.s == other.s
	case TypeTime:
		return v.t.Equal(other.t)
	default:
		return false
	}
}

func (v Value) asFloat() float64 {
	if v.kind == TypeInt {
		return float64(v.i)
	}
	return v.f
}

// ConvertTo returns v converted to the target type when the conversion is
// lossless: identity, Int to Float, and Float to Int only when the float
// is an exact integer. Everything else reports ok false.
func (v Value) ConvertTo(target DType) (Value, bool) {
	if v.kind == target {
		return v, true
	}
	switch {
	case v.kind == TypeInt && target == TypeFloat:
		return FloatValue(float64(v.i)), true
	case v.kind == TypeFloat && target == TypeInt:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) || v.f != math.Trunc(v.f) {
			return Value{}, false
		}
		return IntValue(int64(v.f)), true
	default:
		return Value{}, false
	}
}

// Cell is a tagged variant: a Present value or Missing. Missing carries no
// payload.
type Cell struct {
	value   Value
	missing bool
}

// Present wraps a value into a present cell.
func Present(v Value) Cell { return Cell{value: v} }

// Missing returns the missing cell.
func Missing() Cell { return Cell{missing: true} }

// IsMissing reports whether the cell carries no value.
func (c Cell) IsMissing() bool { return c.missing }

// Value returns the payload and whether the cell is present.
func (c Cell) Value() (Value, bool) {
	if c.missing {
		return Value{}, false
	}
	return c.value, true
}

// MustValue returns the payload of a present cell. It is meant for loops
// that already checked IsMissing.
func (c Cell) MustValue() Value {
	return c.value
}

// String renders the cell for reports. Missing renders as the empty string.
func (c Cell) String() string {
	if c.missing {
		return ""
	}
	return c.value.String()
}
