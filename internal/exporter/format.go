package exporter

import (
	"fmt"
	"strconv"
	"time"

	"tabscan/internal/table"
)

// formatFloat renders a float with the shortest text that parses back to
// the same value, so exported data reloads without precision loss.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatRatio formats a ratio for report output with 4 decimal places
func formatRatio(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatTime renders midnight UTC values as a bare date and everything
// else as RFC 3339. Both layouts reload as temporal values.
func formatTime(t time.Time) string {
	if t.Location() == time.UTC && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// FormatValue renders one value as CSV cell text.
func FormatValue(v table.Value) string {
	switch v.Kind() {
	case table.TypeInt:
		return formatInt(v.Int())
	case table.TypeFloat:
		return formatFloat(v.Float())
	case table.TypeBool:
		return formatBool(v.Bool())
	case table.TypeTime:
		return formatTime(v.Time())
	default:
		return v.Str()
	}
}

// cellText renders a cell, with missing cells as empty text so a reload
// marks them null again.
func cellText(c table.Cell) string {
	v, ok := c.Value()
	if !ok {
		return ""
	}
	return FormatValue(v)
}
