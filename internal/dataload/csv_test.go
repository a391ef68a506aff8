package dataload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"id,name,score,active,joined",
		"1,alice,9.5,true,2024-01-02",
		"2,bob,NA,false,2024-01-03",
		"3,,7.25,true,2024-01-04",
	}, "\n")

	opts := DefaultOptions()
	opts.Name = "people"

	raw, err := ReadCSV(strings.NewReader(input), opts)
	require.NoError(t, err)

	assert.Equal(t, "people", raw.Name)
	assert.Equal(t, 3, raw.NumRows())
	require.Equal(t, 5, raw.NumCols())

	assert.Equal(t, table.TypeInt, raw.Columns[0].DType)
	assert.Equal(t, int64(2), raw.Columns[0].Cells[1].Value.Int())

	name := raw.Columns[1]
	assert.Equal(t, table.TypeString, name.DType)
	assert.Equal(t, "alice", name.Cells[0].Value.Str())
	assert.True(t, name.Cells[2].Null)

	score := raw.Columns[2]
	assert.Equal(t, table.TypeFloat, score.DType)
	assert.True(t, score.Cells[1].Null)
	assert.Equal(t, 7.25, score.Cells[2].Value.Float())

	active := raw.Columns[3]
	assert.Equal(t, table.TypeBool, active.DType)
	assert.True(t, active.Cells[0].Value.Bool())
	assert.False(t, active.Cells[1].Value.Bool())

	joined := raw.Columns[4]
	assert.Equal(t, table.TypeTime, joined.DType)
	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), joined.Cells[0].Value.Time())
}

func TestReadCSV_ByteOrderMark(t *testing.T) {
	input := "\xEF\xBB\xBFid,name\n1,alice\n"

	raw, err := ReadCSV(strings.NewReader(input), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "id", raw.Columns[0].Name)
}

func TestReadCSV_CustomDelimiter(t *testing.T) {
	opts := DefaultOptions()
	opts.Delimiter = ';'

	raw, err := ReadCSV(strings.NewReader("a;b\n1;2\n"), opts)
	require.NoError(t, err)
	require.Equal(t, 2, raw.NumCols())
	assert.Equal(t, int64(2), raw.Columns[1].Cells[0].Value.Int())
}

func TestReadCSV_QuotedFields(t *testing.T) {
	input := "name,notes\nalice,\"likes commas, apparently\"\n"

	raw, err := ReadCSV(strings.NewReader(input), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "likes commas, apparently", raw.Columns[1].Cells[0].Value.Str())
}

func TestReadCSV_RaggedRows(t *testing.T) {
	t.Run("short rows become nulls", func(t *testing.T) {
		raw, err := ReadCSV(strings.NewReader("a,b\n1\n2,3\n"), DefaultOptions())
		require.NoError(t, err)
		assert.True(t, raw.Columns[1].Cells[0].Null)
		assert.False(t, raw.Columns[1].Cells[1].Null)
	})

	t.Run("wide rows fail the load", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("a,b\n1,2,3\n"), DefaultOptions())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	})
}

func TestReadCSV_EmptyInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestReadCSV_MalformedQuoting(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n\"unterminated,2\n"), DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readings.csv")
	content := "station,level\nnorth,1.25\nsouth,8.00\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	raw, err := LoadCSV(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "readings", raw.Name)
	assert.Equal(t, 2, raw.NumRows())
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestLoadFile_Dispatch(t *testing.T) {
	dir := t.TempDir()

	t.Run("tsv gets a tab delimiter", func(t *testing.T) {
		path := filepath.Join(dir, "data.tsv")
		require.NoError(t, os.WriteFile(path, []byte("a\tb\n1\t2\n"), 0644))

		raw, err := LoadFile(path, DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, 2, raw.NumCols())
		assert.Equal(t, int64(1), raw.Columns[0].Cells[0].Value.Int())
	})

	t.Run("unknown extension is rejected", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "data.parquet"), DefaultOptions())
		require.Error(t, err)
		assert.True(t, apperrors.IsUnsupported(err))
	})
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"data.csv", FormatCSV},
		{"data.TSV", FormatCSV},
		{"report.xlsx", FormatXLSX},
		{"report.xlsm", FormatXLSX},
		{"page.html", FormatHTML},
		{"page.htm", FormatHTML},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.path)
	}
}
