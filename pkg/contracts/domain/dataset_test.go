package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataset(t *testing.T) {
	src := DatasetSource{Type: SourceTypeCSV, Path: "data/datasets/trades.csv"}
	ds := NewDataset("trades", src)

	_, err := uuid.Parse(ds.ID)
	require.NoError(t, err, "new dataset should carry a valid uuid")

	assert.Equal(t, "trades", ds.Name)
	assert.Equal(t, src, ds.Source)
	assert.Equal(t, DatasetStatusLoading, ds.Status)
	assert.False(t, ds.IsReady())
	assert.False(t, ds.CreatedAt.IsZero())
	assert.Equal(t, ds.CreatedAt, ds.UpdatedAt)
}

func TestValidateDataset(t *testing.T) {
	valid := func() Dataset {
		ds := NewDataset("trades", DatasetSource{Type: SourceTypeCSV, Path: "trades.csv"})
		ds.Rows = 10
		ds.Columns = 4
		ds.MissingCells = 3
		return ds
	}

	tests := []struct {
		name        string
		mutate      func(*Dataset)
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid dataset",
			mutate: func(*Dataset) {},
		},
		{
			name:        "missing id",
			mutate:      func(ds *Dataset) { ds.ID = "" },
			wantErr:     true,
			errContains: "id is required",
		},
		{
			name:        "malformed id",
			mutate:      func(ds *Dataset) { ds.ID = "not-a-uuid" },
			wantErr:     true,
			errContains: "not a valid uuid",
		},
		{
			name:        "empty name",
			mutate:      func(ds *Dataset) { ds.Name = "" },
			wantErr:     true,
			errContains: "name is required",
		},
		{
			name:        "unknown source type",
			mutate:      func(ds *Dataset) { ds.Source.Type = "ftp" },
			wantErr:     true,
			errContains: "unknown source type",
		},
		{
			name:        "negative rows",
			mutate:      func(ds *Dataset) { ds.Rows = -1 },
			wantErr:     true,
			errContains: "rows cannot be negative",
		},
		{
			name:        "missing cells exceed table size",
			mutate:      func(ds *Dataset) { ds.MissingCells = 41 },
			wantErr:     true,
			errContains: "exceed table size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := valid()
			tt.mutate(&ds)

			err := ValidateDataset(&ds)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateDataset_Nil(t *testing.T) {
	err := ValidateDataset(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be nil")
}

func TestValidateDatasetName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantErr     bool
		errContains string
	}{
		{name: "simple name", input: "trades"},
		{name: "name with spaces", input: "daily trades 2024"},
		{name: "unicode name", input: "أسعار"},
		{
			name:        "empty name",
			input:       "",
			wantErr:     true,
			errContains: "required",
		},
		{
			name:        "forward slash",
			input:       "data/trades",
			wantErr:     true,
			errContains: "path separators",
		},
		{
			name:        "backslash",
			input:       `data\trades`,
			wantErr:     true,
			errContains: "path separators",
		},
		{
			name:        "name too long",
			input:       string(make([]byte, 121)),
			wantErr:     true,
			errContains: "must not exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatasetName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDatasetMissingRatio(t *testing.T) {
	ds := Dataset{Rows: 4, Columns: 5, MissingCells: 5}
	assert.Equal(t, 20, ds.TotalCells())
	assert.InDelta(t, 0.25, ds.MissingRatio(), 1e-12)

	empty := Dataset{}
	assert.Equal(t, 0.0, empty.MissingRatio(), "empty table should not divide by zero")
}

func TestDatasetLifecycle(t *testing.T) {
	ds := NewDataset("trades", DatasetSource{Type: SourceTypeXLSX, Path: "trades.xlsx"})

	ds.MarkReady()
	assert.Equal(t, DatasetStatusReady, ds.Status)
	assert.True(t, ds.IsReady())
	assert.Empty(t, ds.Error)

	ds.MarkFailed(errors.New("sheet \"Prices\" has no data"))
	assert.Equal(t, DatasetStatusFailed, ds.Status)
	assert.False(t, ds.IsReady())
	assert.Contains(t, ds.Error, "has no data")
}

func TestScanStatusIsTerminal(t *testing.T) {
	assert.False(t, ScanStatusPending.IsTerminal())
	assert.False(t, ScanStatusRunning.IsTerminal())
	assert.True(t, ScanStatusCompleted.IsTerminal())
	assert.True(t, ScanStatusFailed.IsTerminal())
	assert.True(t, ScanStatusCancelled.IsTerminal())
}

func TestExportFormat(t *testing.T) {
	tests := []struct {
		format    ExportFormat
		valid     bool
		extension string
	}{
		{ExportFormatCSV, true, ".csv"},
		{ExportFormatXLSX, true, ".xlsx"},
		{ExportFormatArrow, true, ".arrow"},
		{ExportFormatJSON, true, ".json"},
		{ExportFormat("parquet"), false, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.format.IsValid())
			assert.Equal(t, tt.extension, tt.format.Extension())
		})
	}
}

func TestScanSummaryHelpers(t *testing.T) {
	summary := ScanSummary{
		Profiles: []ColumnProfile{
			{Name: "id", MissingCount: 0, MissingRatio: 0},
			{Name: "score", MissingCount: 2, MissingRatio: 0.5},
			{Name: "city", MissingCount: 1, MissingRatio: 0.25},
		},
	}

	assert.Equal(t, []string{"id"}, summary.CompleteColumns())

	worst := summary.WorstColumn()
	require.NotNil(t, worst)
	assert.Equal(t, "score", worst.Name)

	var empty ScanSummary
	assert.Nil(t, empty.WorstColumn())
}

func TestReductionReportDeltas(t *testing.T) {
	report := ReductionReport{
		RowsBefore:    100,
		RowsAfter:     80,
		ColumnsBefore: 6,
		ColumnsAfter:  6,
	}
	assert.Equal(t, 20, report.RowsDropped())
	assert.Equal(t, 0, report.ColumnsDropped())
}

func TestDatasetJSONTags(t *testing.T) {
	ds := NewDataset("trades", DatasetSource{Type: SourceTypeSheets, SpreadsheetID: "abc123", ReadRange: "Prices!A1:D90"})
	ds.Rows = 3
	ds.Columns = 2
	ds.MarkReady()

	data, err := json.Marshal(ds)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Contains(t, decoded, "id")
	assert.Contains(t, decoded, "missing_cells")
	assert.Equal(t, "ready", decoded["status"])

	source, ok := decoded["source"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sheets", source["type"])
	assert.Equal(t, "abc123", source["spreadsheet_id"])
	assert.NotContains(t, source, "path", "empty locator fields should be omitted")
}
