package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"tabscan/internal/nullity"
	"tabscan/internal/table"
)

// Workbook sheet names. One workbook carries the cleaned data, the
// per-column profile, and the mask so a scan result travels as one file.
const (
	sheetData    = "Data"
	sheetProfile = "Profile"
	sheetMask    = "Mask"
)

// ExportWorkbook writes a multi-sheet XLSX report. Missing cells stay
// empty in the Data sheet; the Mask sheet records where they were.
func (r *ReportExporter) ExportWorkbook(t *table.Table, summary nullity.Summary, mask nullity.NullityMask, filePath string) error {
	fullPath := filePath
	if !filepath.IsAbs(fullPath) {
		fullPath = r.paths.GetExportPath(fullPath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetData); err != nil {
		return fmt.Errorf("failed to rename data sheet: %w", err)
	}
	if err := writeDataSheet(f, t); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetProfile); err != nil {
		return fmt.Errorf("failed to create profile sheet: %w", err)
	}
	if err := writeProfileSheet(f, summary); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetMask); err != nil {
		return fmt.Errorf("failed to create mask sheet: %w", err)
	}
	if err := writeMaskSheet(f, mask, t); err != nil {
		return err
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeDataSheet(f *excelize.File, t *table.Table) error {
	headers := make([]interface{}, 0, t.NumCols()+1)
	if t.HasLabels() {
		headers = append(headers, "label")
	}
	for _, name := range t.ColumnNames() {
		headers = append(headers, name)
	}
	if err := setRow(f, sheetData, 1, headers); err != nil {
		return err
	}

	cols := t.Columns()
	for i := 0; i < t.NumRows(); i++ {
		row := make([]interface{}, 0, len(headers))
		if t.HasLabels() {
			row = append(row, t.Label(i))
		}
		for c := range cols {
			row = append(row, cellValue(cols[c].Cell(i)))
		}
		if err := setRow(f, sheetData, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeProfileSheet(f *excelize.File, summary nullity.Summary) error {
	rows := [][]interface{}{
		{"table", summary.Table},
		{"rows", summary.Rows},
		{"columns", summary.Columns},
		{"missing_cells", summary.MissingCells},
		{"missing_ratio", summary.MissingRatio},
		{},
		{"column", "dtype", "rows", "missing_count", "missing_ratio", "first_missing_row"},
	}
	for _, p := range summary.Profiles {
		rows = append(rows, []interface{}{p.Name, p.DType, p.Rows, p.MissingCount, p.MissingRatio, p.FirstMissingRow})
	}
	for i, row := range rows {
		if err := setRow(f, sheetProfile, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeMaskSheet(f *excelize.File, mask nullity.NullityMask, t *table.Table) error {
	headers := make([]interface{}, 0, mask.NumCols()+1)
	headers = append(headers, "row")
	for _, name := range mask.Columns() {
		headers = append(headers, name)
	}
	if err := setRow(f, sheetMask, 1, headers); err != nil {
		return err
	}

	for i := 0; i < mask.NumRows(); i++ {
		row := make([]interface{}, 0, mask.NumCols()+1)
		if t.HasLabels() {
			row = append(row, t.Label(i))
		} else {
			row = append(row, i)
		}
		for c := 0; c < mask.NumCols(); c++ {
			if mask.At(i, c) {
				row = append(row, 1)
			} else {
				row = append(row, 0)
			}
		}
		if err := setRow(f, sheetMask, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to compute cell for row %d: %w", rowNum, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", rowNum, sheet, err)
	}
	return nil
}

// cellValue maps a cell to the native type excelize stores. Missing cells
// map to nil, which leaves the spreadsheet cell empty.
func cellValue(c table.Cell) interface{} {
	v, ok := c.Value()
	if !ok {
		return nil
	}
	switch v.Kind() {
	case table.TypeInt:
		return v.Int()
	case table.TypeFloat:
		return v.Float()
	case table.TypeBool:
		return v.Bool()
	case table.TypeTime:
		return v.Time()
	default:
		return v.Str()
	}
}
