package tableio

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	"github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"

	"github.com/willbeason/evalboard/pkg/table"
)

const batchSize = 1 << 16

// WriterProperties are the parquet properties used for every file written.
func WriterProperties() *parquet.WriterProperties {
	return parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Gzip),
		parquet.WithCompressionLevel(gzip.BestCompression))
}

// WriteRecord writes a single record with the given schema to a new parquet
// file at outPath.
func WriteRecord(outPath string, schema *arrow.Schema, record arrow.Record) error {
	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	// Don't close outFile; parquet handles closing it.
	writer, err := pqarrow.NewFileWriter(
		schema,
		outFile,
		WriterProperties(),
		pqarrow.DefaultWriterProps(),
	)
	if err != nil {
		return err
	}

	err = writer.Write(record)
	if err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func arrowType(t table.DataType) arrow.DataType {
	switch t {
	case table.Int64:
		return arrow.PrimitiveTypes.Int64
	case table.Float64:
		return arrow.PrimitiveTypes.Float64
	case table.Timestamp:
		return arrow.FixedWidthTypes.Timestamp_ms
	default:
		return arrow.BinaryTypes.String
	}
}

func writeParquet(path string, t *table.Table) error {
	fields := make([]arrow.Field, len(t.Columns))
	for j, col := range t.Columns {
		fields[j] = arrow.Field{Name: col.Name, Type: arrowType(col.Type), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	recordBuilder := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer recordBuilder.Release()

	for j, col := range t.Columns {
		err := appendColumn(recordBuilder.Field(j), col)
		if err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}
	}

	record := recordBuilder.NewRecord()
	defer record.Release()

	return WriteRecord(path, schema, record)
}

func appendColumn(builder array.Builder, col *table.Column) error {
	for _, c := range col.Cells {
		if c.IsNull() {
			builder.AppendNull()
			continue
		}

		switch b := builder.(type) {
		case *array.Int64Builder:
			v, ok := c.Float()
			if !ok {
				return fmt.Errorf("%s cell in int64 column", c.Kind)
			}
			b.Append(int64(v))
		case *array.Float64Builder:
			v, ok := c.Float()
			if !ok {
				return fmt.Errorf("%s cell in float64 column", c.Kind)
			}
			b.Append(v)
		case *array.TimestampBuilder:
			if c.Kind != table.Time {
				return fmt.Errorf("%s cell in timestamp column", c.Kind)
			}
			b.Append(arrow.Timestamp(c.Time.UnixMilli()))
		case *array.StringBuilder:
			b.Append(c.String())
		default:
			return fmt.Errorf("unsupported builder %T", builder)
		}
	}
	return nil
}

func readParquet(path string) (*table.Table, error) {
	inFileReader, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening parquet file: %w", err)
	}
	defer func() {
		_ = inFileReader.Close()
	}()

	inReader, err := pqarrow.NewFileReader(inFileReader,
		pqarrow.ArrowReadProperties{BatchSize: batchSize},
		memory.NewGoAllocator(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pqarrow FileReader: %w", err)
	}

	schema, err := inReader.Schema()
	if err != nil {
		return nil, fmt.Errorf("getting schema: %w", err)
	}

	columns := make([]*table.Column, len(schema.Fields()))
	for j, f := range schema.Fields() {
		dataType, err := declaredType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		columns[j] = table.NewColumn(f.Name, dataType)
	}

	recordReader, err := inReader.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("getting record reader: %w", err)
	}

	var record arrow.Record
	for record, err = recordReader.Read(); err == nil; record, err = recordReader.Read() {
		for j, arr := range record.Columns() {
			columns[j].Cells, err = appendCells(columns[j].Cells, arr)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", columns[j].Name, err)
			}
		}
	}
	if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	return table.New("", columns...), nil
}

func declaredType(t arrow.DataType) (table.DataType, error) {
	switch t.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return table.Int64, nil
	case arrow.FLOAT32, arrow.FLOAT64:
		return table.Float64, nil
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return table.Timestamp, nil
	case arrow.STRING, arrow.LARGE_STRING, arrow.BOOL, arrow.DICTIONARY:
		return table.Object, nil
	default:
		return table.Object, fmt.Errorf("unsupported arrow type %s", t)
	}
}

// appendCells converts the values of arr to cells.
func appendCells(cells []table.Cell, arr arrow.Array) ([]table.Cell, error) {
	for i := range arr.Len() {
		if arr.IsNull(i) {
			cells = append(cells, table.NullCell())
			continue
		}

		var c table.Cell
		switch a := arr.(type) {
		case *array.Int8:
			c = table.NumberCell(float64(a.Value(i)))
		case *array.Int16:
			c = table.NumberCell(float64(a.Value(i)))
		case *array.Int32:
			c = table.NumberCell(float64(a.Value(i)))
		case *array.Int64:
			c = table.NumberCell(float64(a.Value(i)))
		case *array.Uint8:
			c = table.NumberCell(float64(a.Value(i)))
		case *array.Uint16:
			c = table.NumberCell(float64(a.Value(i)))
		case *array.Uint32:
			c = table.NumberCell(float64(a.Value(i)))
		case *array.Uint64:
			c = table.NumberCell(float64(a.Value(i)))
		case *array.Float32:
			c = table.NumberCell(float64(a.Value(i)))
		case *array.Float64:
			c = table.NumberCell(a.Value(i))
		case *array.String:
			c = table.TextCell(a.Value(i))
		case *array.LargeString:
			c = table.TextCell(a.Value(i))
		case *array.Boolean:
			c = table.TextCell(strconv.FormatBool(a.Value(i)))
		case *array.Timestamp:
			unit := a.DataType().(*arrow.TimestampType).Unit
			c = table.TimeCell(a.Value(i).ToTime(unit))
		case *array.Date32:
			c = table.TimeCell(a.Value(i).ToTime())
		case *array.Date64:
			c = table.TimeCell(a.Value(i).ToTime())
		case *array.Dictionary:
			values, ok := a.Dictionary().(*array.String)
			if !ok {
				return nil, fmt.Errorf("unsupported dictionary values %s", a.Dictionary().DataType())
			}
			c = table.TextCell(values.Value(a.GetValueIndex(i)))
		default:
			return nil, fmt.Errorf("unsupported array type %T", arr)
		}
		cells = append(cells, c)
	}
	return cells, nil
}
