package nullity

import (
	"tabscan/internal/table"
)

// ColumnMissingCounts returns the number of missing cells per column.
func ColumnMissingCounts(t *table.Table) map[string]int {
	counts := make(map[string]int, t.NumCols())
	for _, col := range t.Columns() {
		counts[col.Name()] = col.MissingCount()
	}
	return counts
}

// ColumnMissingRatio returns the missing fraction per column in [0, 1].
// A table with zero rows has ratio 0 for every column; the guard is
// explicit, not a division fallthrough.
func ColumnMissingRatio(t *table.Table) map[string]float64 {
	ratios := make(map[string]float64, t.NumCols())
	rows := t.NumRows()
	for _, col := range t.Columns() {
		if rows == 0 {
			ratios[col.Name()] = 0
			continue
		}
		ratios[col.Name()] = float64(col.MissingCount()) / float64(rows)
	}
	return ratios
}

// ColumnProfile describes the missingness of one column.
type ColumnProfile struct {
	Name            string  `json:"name"`
	DType           string  `json:"dtype"`
	Rows            int     `json:"rows"`
	MissingCount    int     `json:"missing_count"`
	MissingRatio    float64 `json:"missing_ratio"`
	FirstMissingRow int     `json:"first_missing_row"` // -1 when complete
}

// Summary aggregates table-level missingness for reports and the API.
type Summary struct {
	Table        string          `json:"table"`
	Rows         int             `json:"rows"`
	Columns      int             `json:"columns"`
	TotalCells   int             `json:"total_cells"`
	MissingCells int             `json:"missing_cells"`
	MissingRatio float64         `json:"missing_ratio"`
	Profiles     []ColumnProfile `json:"profiles"`
}

// Summarize computes per-column profiles and table totals in one pass.
func Summarize(t *table.Table) Summary {
	rows := t.NumRows()
	summary := Summary{
		Table:    t.Name(),
		Rows:     rows,
		Columns:  t.NumCols(),
		Profiles: make([]ColumnProfile, 0, t.NumCols()),
	}

	for _, col := range t.Columns() {
		profile := ColumnProfile{
			Name:            col.Name(),
			DType:           col.DType().String(),
			Rows:            rows,
			FirstMissingRow: -1,
		}
		for r := 0; r < col.Len(); r++ {
			if col.Cell(r).IsMissing() {
				profile.MissingCount++
				if profile.FirstMissingRow < 0 {
					profile.FirstMissingRow = r
				}
			}
		}
		if rows > 0 {
			profile.MissingRatio = float64(profile.MissingCount) / float64(rows)
		}
		summary.MissingCells += profile.MissingCount
		summary.Profiles = append(summary.Profiles, profile)
	}

	summary.TotalCells = rows * t.NumCols()
	if summary.TotalCells > 0 {
		summary.MissingRatio = float64(summary.MissingCells) / float64(summary.TotalCells)
	}
	return summary
}
