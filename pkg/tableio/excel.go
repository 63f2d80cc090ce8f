package tableio

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/table"
)

const defaultSheet = "Sheet1"

// SheetNames lists the worksheets of the workbook at path in workbook order.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %w", evalerr.ErrInput, path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return f.GetSheetList(), nil
}

// ReadExcelSheet reads a single worksheet of the workbook at path.
func ReadExcelSheet(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %w", evalerr.ErrInput, path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	t, err := readSheet(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q sheet %q: %w", evalerr.ErrInput, path, sheet, err)
	}
	t.Name = Stem(path)
	return t, t.Validate()
}

func readExcel(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return readSheet(f, sheets[0])
}

func readSheet(f *excelize.File, sheet string) (*table.Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("missing header row")
	}
	return fromRows(rows[0], rows[1:]), nil
}

func writeExcel(path string, t *table.Table) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	header := make([]any, len(t.Columns))
	for j, name := range t.Names() {
		header[j] = name
	}
	err := f.SetSheetRow(defaultSheet, "A1", &header)
	if err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]any, len(t.Columns))
	for i := range t.Rows() {
		for j, col := range t.Columns {
			row[j] = excelValue(col.Cells[i])
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		err = f.SetSheetRow(defaultSheet, cell, &row)
		if err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	return f.SaveAs(path)
}

func excelValue(c table.Cell) any {
	switch c.Kind {
	case table.Number:
		return c.Num
	case table.Text:
		return c.Str
	case table.Time:
		return c.Time.Format(table.TimeLayout)
	default:
		return nil
	}
}
