package dataload

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// LoadCSV reads a delimited text file into a RawTable. The first record is
// the header row.
func LoadCSV(path string, opts Options) (table.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return table.RawTable{}, apperrors.NewStorageError("open csv file", err)
	}
	defer f.Close()
	if opts.Name == "" {
		opts.Name = tableNameFromPath(path)
	}
	return ReadCSV(f, opts)
}

// ReadCSV parses delimited text from r. A leading UTF-8 byte order mark is
// stripped so files exported for Excel round-trip cleanly.
func ReadCSV(r io.Reader, opts Options) (table.RawTable, error) {
	br := bufio.NewReader(r)
	stripBOM(br)

	cr := csv.NewReader(br)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	// Ragged rows are resolved in the shared build step, which pads the
	// short ones and rejects the long ones with the row number.
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return table.RawTable{}, apperrors.NewParsingError("malformed csv input", err)
	}
	if len(records) == 0 {
		return table.RawTable{}, apperrors.NewParsingError("csv input has no header row", nil)
	}
	return buildRawTable(opts.Name, records[0], records[1:], opts)
}

func stripBOM(br *bufio.Reader) {
	bom, err := br.Peek(3)
	if err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		br.Discard(3)
	}
}

func tableNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
