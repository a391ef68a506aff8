package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"tabscan/internal/config"
	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// arrowChunkRows bounds builder memory on large tables; each chunk
// becomes one IPC record batch.
const arrowChunkRows = 8192

// ArrowExporter writes tables in the Arrow IPC format. Missing cells ride
// in each column's validity bitmap, so the export needs no sentinel
// values and the mask round-trips exactly.
type ArrowExporter struct {
	paths *config.Paths
	mem   memory.Allocator
}

// NewArrowExporter creates an arrow exporter rooted at the given paths
func NewArrowExporter(paths *config.Paths) *ArrowExporter {
	return &ArrowExporter{
		paths: paths,
		mem:   memory.NewGoAllocator(),
	}
}

// ExportStream writes the IPC stream format to w.
func (a *ArrowExporter) ExportStream(t *table.Table, w io.Writer) error {
	schema, err := arrowSchema(t)
	if err != nil {
		return err
	}

	writer := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(a.mem))
	if err := a.writeBatches(t, schema, writer.Write); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

// ExportFile writes the IPC file format to the given path.
func (a *ArrowExporter) ExportFile(t *table.Table, filePath string) error {
	fullPath := filePath
	if !filepath.IsAbs(fullPath) {
		fullPath = a.paths.GetExportPath(fullPath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	schema, err := arrowSchema(t)
	if err != nil {
		return err
	}

	writer, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(a.mem))
	if err != nil {
		return fmt.Errorf("failed to create arrow writer: %w", err)
	}
	if err := a.writeBatches(t, schema, writer.Write); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize arrow file: %w", err)
	}
	return nil
}

func (a *ArrowExporter) writeBatches(t *table.Table, schema *arrow.Schema, sink func(arrow.Record) error) error {
	bldr := array.NewRecordBuilder(a.mem, schema)
	defer bldr.Release()

	cols := t.Columns()
	rows := t.NumRows()
	for start := 0; start < rows; start += arrowChunkRows {
		end := min(start+arrowChunkRows, rows)

		fieldOffset := 0
		if t.HasLabels() {
			lb := bldr.Field(0).(*array.StringBuilder)
			for r := start; r < end; r++ {
				lb.Append(t.Label(r))
			}
			fieldOffset = 1
		}
		for c := range cols {
			if err := appendColumn(bldr.Field(fieldOffset+c), cols[c], start, end); err != nil {
				return err
			}
		}

		rec := bldr.NewRecord()
		err := sink(rec)
		rec.Release()
		if err != nil {
			return fmt.Errorf("failed to write record batch at row %d: %w", start, err)
		}
	}
	return nil
}

func appendColumn(b array.Builder, col table.Column, start, end int) error {
	switch b := b.(type) {
	case *array.Int64Builder:
		for r := start; r < end; r++ {
			if v, ok := col.Cell(r).Value(); ok {
				b.Append(v.Int())
			} else {
				b.AppendNull()
			}
		}
	case *array.Float64Builder:
		for r := start; r < end; r++ {
			if v, ok := col.Cell(r).Value(); ok {
				b.Append(v.Float())
			} else {
				b.AppendNull()
			}
		}
	case *array.BooleanBuilder:
		for r := start; r < end; r++ {
			if v, ok := col.Cell(r).Value(); ok {
				b.Append(v.Bool())
			} else {
				b.AppendNull()
			}
		}
	case *array.StringBuilder:
		for r := start; r < end; r++ {
			if v, ok := col.Cell(r).Value(); ok {
				b.Append(v.Str())
			} else {
				b.AppendNull()
			}
		}
	case *array.TimestampBuilder:
		for r := start; r < end; r++ {
			if v, ok := col.Cell(r).Value(); ok {
				b.Append(arrow.Timestamp(v.Time().UnixMilli()))
			} else {
				b.AppendNull()
			}
		}
	default:
		return apperrors.NewUnsupportedTypeError(fmt.Sprintf("no arrow builder for column %q", col.Name()))
	}
	return nil
}

func arrowSchema(t *table.Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, t.NumCols()+1)
	if t.HasLabels() {
		fields = append(fields, arrow.Field{Name: "label", Type: arrow.BinaryTypes.String})
	}
	for _, col := range t.Columns() {
		dt, err := arrowType(col.DType())
		if err != nil {
			return nil, err
		}
		fields = append(fields, arrow.Field{Name: col.Name(), Type: dt, Nullable: true})
	}

	md := arrow.NewMetadata([]string{"table_name"}, []string{t.Name()})
	return arrow.NewSchema(fields, &md), nil
}

func arrowType(d table.DType) (arrow.DataType, error) {
	switch d {
	case table.TypeInt:
		return arrow.PrimitiveTypes.Int64, nil
	case table.TypeFloat:
		return arrow.PrimitiveTypes.Float64, nil
	case table.TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case table.TypeString:
		return arrow.BinaryTypes.String, nil
	case table.TypeTime:
		return arrow.FixedWidthTypes.Timestamp_ms, nil
	}
	return nil, apperrors.NewUnsupportedTypeError(fmt.Sprintf("dtype %s has no arrow mapping", d))
}
