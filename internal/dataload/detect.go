package dataload

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// Format identifies a supported tabular source format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
)

// DetectFormat maps a filename extension to a loader format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".html", ".htm":
		return FormatHTML, nil
	}
	return "", apperrors.NewUnsupportedTypeError(fmt.Sprintf("no loader for file extension %q", filepath.Ext(path)))
}

// LoadFile dispatches to the loader matching the file extension.
func LoadFile(path string, opts Options) (table.RawTable, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return table.RawTable{}, err
	}
	switch format {
	case FormatCSV:
		if opts.Delimiter == 0 && strings.EqualFold(filepath.Ext(path), ".tsv") {
			opts.Delimiter = '\t'
		}
		return LoadCSV(path, opts)
	case FormatXLSX:
		return LoadXLSX(path, opts)
	default:
		return LoadHTMLFile(path, opts)
	}
}
