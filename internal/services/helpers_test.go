package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"tabscan/internal/config"
	"tabscan/internal/dataload"
	"tabscan/internal/table"
)

// testPaths roots every output directory in a fresh temp dir.
func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	paths := &config.Paths{
		ExecutableDir: base,
		DataDir:       filepath.Join(base, "data"),
		DatasetsDir:   filepath.Join(base, "data", "datasets"),
		ReportsDir:    filepath.Join(base, "data", "reports"),
		ExportsDir:    filepath.Join(base, "data", "exports"),
		CacheDir:      filepath.Join(base, "data", "cache"),
		LogsDir:       filepath.Join(base, "logs"),
		SummaryJSON:   filepath.Join(base, "data", "reports", "scan_summary.json"),
		SummaryCSV:    filepath.Join(base, "data", "reports", "scan_summary.csv"),
	}
	require.NoError(t, paths.EnsureDirectories())
	return paths
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// hubMessage is one recorded Broadcast call.
type hubMessage struct {
	Type string
	Data interface{}
}

// fakeHub records broadcasts for assertions.
type fakeHub struct {
	mu       sync.Mutex
	messages []hubMessage
}

func (h *fakeHub) Broadcast(messageType string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, hubMessage{Type: messageType, Data: data})
}

func (h *fakeHub) byType(messageType string) []hubMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []hubMessage
	for _, m := range h.messages {
		if m.Type == messageType {
			out = append(out, m)
		}
	}
	return out
}

// stubSheets serves a fixed two-row range for dispatch tests.
type stubSheets struct{}

func (stubSheets) LoadRange(ctx context.Context, spreadsheetID, readRange string, opts dataload.Options) (table.RawTable, error) {
	return table.RawTable{
		Name: "readings",
		Columns: []table.RawColumn{
			{
				Name:  "station",
				DType: table.TypeString,
				Cells: []table.RawCell{
					{Value: table.StringValue("north")},
					{Value: table.StringValue("south")},
				},
			},
			{
				Name:  "level",
				DType: table.TypeFloat,
				Cells: []table.RawCell{
					{Value: table.FloatValue(1.25)},
					{Null: true},
				},
			},
		},
	}, nil
}

// newTestDatasetService builds a dataset service over temp dirs with a
// recording hub.
func newTestDatasetService(t *testing.T) (*DatasetService, *fakeHub) {
	t.Helper()
	hub := &fakeHub{}
	svc, err := NewDatasetServiceWithPaths(config.Default(), testPaths(t), quietLogger())
	require.NoError(t, err)
	return svc.WithHub(hub), hub
}

// writeCSV drops a fixture file into a temp dir and returns its path.
func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const readingsCSV = `id,score,city
1,9.5,Baghdad
2,NA,Basra
,7.25,Mosul
`
