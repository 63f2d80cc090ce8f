package tableio

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/willbeason/bondsmith"
	"github.com/willbeason/bondsmith/jsonio"

	"github.com/willbeason/evalboard/pkg/table"
)

func readJSONL(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var reader io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), GzipExt) {
		reader, err = gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("starting gzip reader stream: %w", err)
		}
	}

	return decodeJSONL(reader)
}

// decodeJSONL reads one object per line. Columns appear in the order their
// keys are first seen; keys first seen on the same line are sorted.
func decodeJSONL(r io.Reader) (*table.Table, error) {
	countReader := bondsmith.NewCountReader(r)
	entries := jsonio.NewReader(countReader, func() *map[string]any {
		v := make(map[string]any)
		return &v
	})

	var header []string
	index := make(map[string]int)
	var rows [][]table.Cell

	for entry, err := range entries.Read() {
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("line %d, before byte %d: %w", len(rows)+1, countReader.Count(), err)
		}

		var newKeys []string
		for k := range *entry {
			if _, found := index[k]; !found {
				newKeys = append(newKeys, k)
			}
		}
		sort.Strings(newKeys)
		for _, k := range newKeys {
			index[k] = len(header)
			header = append(header, k)
		}

		row := make([]table.Cell, len(header))
		for k, v := range *entry {
			c, err := jsonCell(v)
			if err != nil {
				return nil, fmt.Errorf("line %d key %q: %w", len(rows)+1, k, err)
			}
			row[index[k]] = c
		}
		rows = append(rows, row)
	}

	columns := make([]*table.Column, len(header))
	for j, name := range header {
		cells := make([]table.Cell, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = row[j]
			}
		}
		columns[j] = inferColumn(name, cells)
	}
	return table.New("", columns...), nil
}

func jsonCell(v any) (table.Cell, error) {
	switch o := v.(type) {
	case nil:
		return table.NullCell(), nil
	case float64:
		return table.NumberCell(o), nil
	case bool:
		return table.TextCell(strconv.FormatBool(o)), nil
	case string:
		return parseCell(o), nil
	default:
		return table.Cell{}, fmt.Errorf("unsupported value type %T", o)
	}
}
