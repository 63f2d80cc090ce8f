package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/willbeason/evalboard/pkg/table"
)

func readCSV(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	return decodeCSV(f)
}

func decodeCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	// Excel exports commonly start with a byte order mark.
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, record)
	}

	return fromRows(header, rows), nil
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

func writeCSV(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = encodeCSV(f, t)
	if err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encodeCSV(w io.Writer, t *table.Table) error {
	writer := csv.NewWriter(w)

	err := writer.Write(t.Names())
	if err != nil {
		return err
	}

	record := make([]string, len(t.Columns))
	for i := range t.Rows() {
		for j, col := range t.Columns {
			record[j] = col.Cells[i].String()
		}
		err = writer.Write(record)
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
