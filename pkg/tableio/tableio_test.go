package tableio

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/table"
)

func TestParseCell(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in   string
		want table.Cell
	}{
		{in: "", want: table.NullCell()},
		{in: "  NaN ", want: table.NullCell()},
		{in: "N/A", want: table.NullCell()},
		{in: "42", want: table.NumberCell(42)},
		{in: "-3.5", want: table.NumberCell(-3.5)},
		{in: "1,234.5", want: table.NumberCell(1234.5)},
		{in: "12,34", want: table.TextCell("12,34")},
		{in: "2024-03-01", want: table.TimeCell(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))},
		{in: "2024-03-01 12:30:00", want: table.TimeCell(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))},
		{in: "响应时间", want: table.TextCell("响应时间")},
	}

	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got := parseCell(tc.in)
			require.True(t, tc.want.Equal(got), "got %+v, want %+v", got, tc.want)
		})
	}
}

func TestInferColumn(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name  string
		cells []table.Cell
		want  table.DataType
	}{
		{name: "empty", cells: nil, want: table.Object},
		{name: "all null", cells: []table.Cell{table.NullCell()}, want: table.Object},
		{name: "integers", cells: []table.Cell{table.NumberCell(1), table.NullCell(), table.NumberCell(3)}, want: table.Int64},
		{name: "floats", cells: []table.Cell{table.NumberCell(1), table.NumberCell(2.5)}, want: table.Float64},
		{name: "times", cells: []table.Cell{table.TimeCell(time.Unix(0, 0)), table.NullCell()}, want: table.Timestamp},
		{name: "mixed", cells: []table.Cell{table.NumberCell(1), table.TextCell("x")}, want: table.Object},
		{name: "time then number", cells: []table.Cell{table.TimeCell(time.Unix(0, 0)), table.NumberCell(1)}, want: table.Object},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, inferColumn("c", tc.cells).Type)
		})
	}
}

func TestDecodeCSV(t *testing.T) {
	t.Parallel()

	in := "\ufeffindicator_name,value,unit\nlatency,12.5,ms\nuptime,,%\nshort\n"
	got, err := decodeCSV(strings.NewReader(in))
	require.NoError(t, err)

	require.Equal(t, []string{"indicator_name", "value", "unit"}, got.Names())
	require.Equal(t, 3, got.Rows())

	value, ok := got.Column("value")
	require.True(t, ok)
	require.Equal(t, table.Float64, value.Type)
	require.Equal(t, 2, value.NullCount())

	unit, _ := got.Column("unit")
	require.Equal(t, table.Object, unit.Type)
	require.True(t, unit.Cells[2].IsNull())
}

func TestDecodeCSV_NoHeader(t *testing.T) {
	t.Parallel()

	_, err := decodeCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestDecodeJSONL(t *testing.T) {
	t.Parallel()

	in := `{"value": 1, "name": "a"}
{"name": "b", "extra": true}
{"value": null, "name": "c"}
`
	got, err := decodeJSONL(strings.NewReader(in))
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"name", "value", "extra"}, got.Names()); diff != "" {
		t.Errorf("column mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 3, got.Rows())

	value, _ := got.Column("value")
	require.Equal(t, table.Int64, value.Type)
	require.Equal(t, 2, value.NullCount())

	extra, _ := got.Column("extra")
	require.Equal(t, "true", extra.Cells[1].Str)
}

func sampleTable() *table.Table {
	return table.New("sample",
		table.NewColumn("name", table.Object,
			table.TextCell("a"), table.TextCell("b"), table.NullCell()),
		table.NewColumn("count", table.Int64,
			table.NumberCell(1), table.NullCell(), table.NumberCell(3)),
		table.NewColumn("ratio", table.Float64,
			table.NumberCell(0.25), table.NumberCell(-1.5), table.NumberCell(100)),
		table.NewColumn("at", table.Timestamp,
			table.TimeCell(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), table.NullCell(), table.NullCell()),
	)
}

func requireSameTable(t *testing.T, want, got *table.Table) {
	t.Helper()

	require.Equal(t, want.Names(), got.Names())
	require.Equal(t, want.Rows(), got.Rows())
	for j, col := range want.Columns {
		require.Equal(t, col.Type, got.Columns[j].Type, "column %q", col.Name)
		for i, c := range col.Cells {
			require.True(t, c.Equal(got.Columns[j].Cells[i]),
				"column %q row %d: got %+v, want %+v", col.Name, i, got.Columns[j].Cells[i], c)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, ext := range []string{CSVExt, XLSXExt, ParquetExt} {
		t.Run(ext, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "sample"+ext)
			want := sampleTable()

			require.NoError(t, WriteFile(path, want))

			got, err := ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, "sample", got.Name)
			requireSameTable(t, want, got)
		})
	}
}

func TestReadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.csv"))
	require.True(t, errors.Is(err, evalerr.ErrInput))

	_, err = ReadFile(filepath.Join(dir, "notes.txt"))
	require.True(t, errors.Is(err, evalerr.ErrInput))
}

func TestStem(t *testing.T) {
	t.Parallel()

	require.Equal(t, "scheme", Stem("data/scheme.jsonl.gz"))
	require.Equal(t, "方案A", Stem("/tmp/方案A.xlsx"))
	require.Equal(t, "x.y", Stem("x.y.csv"))
}
