package nullity

import (
	"fmt"
	"math"
	"strings"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// Policy enumerates the sentinel encodings a dataset uses for missing
// values, on top of the two built-ins that always apply: floating NaN
// and the loader's null token.
type Policy struct {
	// StringSentinels are literal strings treated as missing, such as
	// ".", "?" or "NA".
	StringSentinels []string

	// NumberSentinels are numeric flags treated as missing, such as 0
	// for a column where zero is biologically invalid, or -9999.
	// They match integer and float values alike.
	NumberSentinels []float64

	// CaseInsensitive makes string sentinel matching ignore case.
	CaseInsensitive bool
}

// DefaultPolicy returns a policy with no sentinels. The built-ins still
// apply, so NaN and loader nulls classify as missing.
func DefaultPolicy() Policy {
	return Policy{}
}

// Validate rejects malformed policies: empty string sentinels and NaN
// listed as a numeric sentinel. NaN never compares equal to anything, so
// listing it would silently never match; the built-in covers it instead.
func (p Policy) Validate() error {
	for i, s := range p.StringSentinels {
		if s == "" {
			return apperrors.NewConfigError(fmt.Sprintf("string sentinel %d is empty", i), nil)
		}
	}
	for i, n := range p.NumberSentinels {
		if math.IsNaN(n) {
			return apperrors.NewConfigError(fmt.Sprintf("numeric sentinel %d is NaN; NaN is always treated as missing", i), nil)
		}
	}
	return nil
}

// isSentinel reports whether v matches any configured sentinel by value.
func (p Policy) isSentinel(v table.Value) bool {
	switch v.Kind() {
	case table.TypeString:
		s := v.Str()
		for _, sentinel := range p.StringSentinels {
			if s == sentinel {
				return true
			}
			if p.CaseInsensitive && strings.EqualFold(s, sentinel) {
				return true
			}
		}
	case table.TypeInt:
		f := float64(v.Int())
		for _, sentinel := range p.NumberSentinels {
			if f == sentinel {
				return true
			}
		}
	case table.TypeFloat:
		f := v.Float()
		for _, sentinel := range p.NumberSentinels {
			if f == sentinel {
				return true
			}
		}
	}
	return false
}
