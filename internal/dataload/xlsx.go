package dataload

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// LoadXLSX reads one worksheet of an Excel workbook into a RawTable. The
// first non-empty row is the header.
func LoadXLSX(path string, opts Options) (table.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return table.RawTable{}, apperrors.NewStorageError("open xlsx file", err)
	}
	defer f.Close()
	if opts.Name == "" {
		opts.Name = tableNameFromPath(path)
	}
	return ReadXLSX(f, opts)
}

// ReadXLSX parses workbook bytes from r.
func ReadXLSX(r io.Reader, opts Options) (table.RawTable, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return table.RawTable{}, apperrors.NewParsingError("open xlsx workbook", err)
	}
	defer wb.Close()
	return readWorkbook(wb, opts)
}

func readWorkbook(f *excelize.File, opts Options) (table.RawTable, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheetList := f.GetSheetList()
		if len(sheetList) == 0 {
			return table.RawTable{}, apperrors.NewParsingError("workbook has no sheets", nil)
		}
		sheet = sheetList[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return table.RawTable{}, apperrors.NewParsingError(fmt.Sprintf("read sheet %q", sheet), err)
	}
	rows = trimEmptyRows(rows)
	if len(rows) == 0 {
		return table.RawTable{}, apperrors.NewParsingError(fmt.Sprintf("sheet %q has no data", sheet), nil)
	}
	return buildRawTable(opts.Name, rows[0], rows[1:], opts)
}

// trimEmptyRows cuts fully blank leading and trailing rows. Spreadsheets
// often carry padding above the header and below the data, while blank
// rows in the middle are real all-missing observations and stay.
func trimEmptyRows(rows [][]string) [][]string {
	start := 0
	for start < len(rows) && rowIsEmpty(rows[start]) {
		start++
	}
	end := len(rows)
	for end > start && rowIsEmpty(rows[end-1]) {
		end--
	}
	return rows[start:end]
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
