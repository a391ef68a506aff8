package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tabscan/internal/config"
	"tabscan/internal/table"
)

// testPaths roots every output directory in a fresh temp dir.
func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	return &config.Paths{
		ExecutableDir: base,
		DataDir:       filepath.Join(base, "data"),
		DatasetsDir:   filepath.Join(base, "data", "datasets"),
		ReportsDir:    filepath.Join(base, "data", "reports"),
		ExportsDir:    filepath.Join(base, "data", "exports"),
		CacheDir:      filepath.Join(base, "data", "cache"),
		LogsDir:       filepath.Join(base, "logs"),
	}
}

// cellsOf builds a cell slice from a compact spelling: nil marks a
// missing cell, other payloads become present cells of their kind.
func cellsOf(t *testing.T, vals ...any) []table.Cell {
	t.Helper()
	cells := make([]table.Cell, 0, len(vals))
	for _, v := range vals {
		switch x := v.(type) {
		case nil:
			cells = append(cells, table.Missing())
		case int:
			cells = append(cells, table.Present(table.IntValue(int64(x))))
		case int64:
			cells = append(cells, table.Present(table.IntValue(x)))
		case float64:
			cells = append(cells, table.Present(table.FloatValue(x)))
		case bool:
			cells = append(cells, table.Present(table.BoolValue(x)))
		case string:
			cells = append(cells, table.Present(table.StringValue(x)))
		default:
			t.Fatalf("unsupported cell payload %T", v)
		}
	}
	return cells
}

func column(t *testing.T, name string, dtype table.DType, vals ...any) table.Column {
	t.Helper()
	col, err := table.NewColumn(name, dtype, cellsOf(t, vals...))
	require.NoError(t, err)
	return col
}

// newPlainTable is a minimal unlabeled fixture.
func newPlainTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New("plain", []table.Column{
		column(t, "v", table.TypeInt, 7, 8),
	})
	require.NoError(t, err)
	return tbl
}

// scanResult is the labeled fixture shared by the report, workbook, and
// arrow tests: one missing id, one missing score.
func scanResult(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New("readings",
		[]table.Column{
			column(t, "id", table.TypeInt, 1, nil, 3),
			column(t, "score", table.TypeFloat, 9.5, 7.25, nil),
			column(t, "city", table.TypeString, "Baghdad", "Basra", "Mosul"),
		},
		table.WithLabels([]string{"r1", "r2", "r3"}),
	)
	require.NoError(t, err)
	return tbl
}
