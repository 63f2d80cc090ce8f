// Package tableio reads and writes tables as spreadsheet-like files.
//
// Supported formats are chosen by file extension:
//
//	.xlsx, .xls       Excel workbooks (first sheet, first row is the header)
//	.csv              comma separated values with a header row
//	.parquet          Apache Parquet
//	.jsonl, .jsonl.gz one JSON object per line, read only
//
// Text formats carry no types, so each column's declared type is inferred from
// its values.
package tableio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/table"
)

type Format int

const (
	Unsupported Format = iota
	Excel
	CSV
	Parquet
	JSONL
)

const (
	XLSXExt    = ".xlsx"
	XLSExt     = ".xls"
	CSVExt     = ".csv"
	ParquetExt = ".parquet"
	JSONLExt   = ".jsonl"
	GzipExt    = ".gz"
)

// FormatOf returns the format of path based on its extension.
func FormatOf(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, XLSXExt), strings.HasSuffix(lower, XLSExt):
		return Excel
	case strings.HasSuffix(lower, CSVExt):
		return CSV
	case strings.HasSuffix(lower, ParquetExt):
		return Parquet
	case strings.HasSuffix(lower, JSONLExt), strings.HasSuffix(lower, JSONLExt+GzipExt):
		return JSONL
	default:
		return Unsupported
	}
}

// Stem returns the file name of path without directories or table extensions,
// so "data/scheme.jsonl.gz" becomes "scheme".
func Stem(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, GzipExt)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ReadFile reads the table stored at path. The table is named after the
// file's stem.
func ReadFile(path string) (*table.Table, error) {
	var t *table.Table
	var err error

	switch FormatOf(path) {
	case Excel:
		t, err = readExcel(path)
	case CSV:
		t, err = readCSV(path)
	case Parquet:
		t, err = readParquet(path)
	case JSONL:
		t, err = readJSONL(path)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", evalerr.ErrInput, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %w", evalerr.ErrInput, path, err)
	}

	t.Name = Stem(path)
	err = t.Validate()
	if err != nil {
		return nil, err
	}
	return t, nil
}

// WriteFile writes t to path in the format its extension names.
func WriteFile(path string, t *table.Table) error {
	err := t.Validate()
	if err != nil {
		return err
	}

	switch FormatOf(path) {
	case Excel:
		err = writeExcel(path, t)
	case CSV:
		err = writeCSV(path, t)
	case Parquet:
		err = writeParquet(path, t)
	default:
		return fmt.Errorf("unsupported output file type %q", path)
	}
	if err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}
	return nil
}

// fromRows builds a table from a header and string rows. Short rows are padded
// with nulls; cells beyond the header are dropped.
func fromRows(header []string, rows [][]string) *table.Table {
	columns := make([]*table.Column, len(header))
	for j, name := range header {
		cells := make([]table.Cell, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = parseCell(row[j])
			}
		}
		columns[j] = inferColumn(strings.TrimSpace(name), cells)
	}
	return table.New("", columns...)
}
