// Package table is the in-memory form of an uploaded spreadsheet: an ordered
// set of named columns, each with a declared data type and one Cell per row.
package table

import (
	"fmt"

	"github.com/willbeason/evalboard/pkg/evalerr"
)

// DataType is the declared type of a column, as inferred when the table was
// read.
type DataType uint8

const (
	// Object columns hold text or a mix of kinds.
	Object DataType = iota
	Int64
	Float64
	Timestamp
)

func (t DataType) String() string {
	switch t {
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Timestamp:
		return "datetime64"
	default:
		return "object"
	}
}

// IsNumeric reports whether the column is declared as holding numbers.
func (t DataType) IsNumeric() bool {
	return t == Int64 || t == Float64
}

type Column struct {
	Name  string
	Type  DataType
	Cells []Cell
}

// NewColumn returns a column of the given cells.
func NewColumn(name string, dataType DataType, cells ...Cell) *Column {
	return &Column{Name: name, Type: dataType, Cells: cells}
}

// NullCount returns the number of Null cells.
func (c *Column) NullCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.IsNull() {
			n++
		}
	}
	return n
}

func (c *Column) clone() *Column {
	cells := make([]Cell, len(c.Cells))
	copy(cells, c.Cells)
	return &Column{Name: c.Name, Type: c.Type, Cells: cells}
}

// Table is a named, column-oriented table. All columns have the same length.
type Table struct {
	Name    string
	Columns []*Column
}

func New(name string, columns ...*Column) *Table {
	return &Table{Name: name, Columns: columns}
}

// Rows returns the number of rows in t.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// Validate checks that t is rectangular and column names are unique.
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: no table", evalerr.ErrInput)
	}
	seen := make(map[string]struct{}, len(t.Columns))
	rows := t.Rows()
	for _, col := range t.Columns {
		if _, found := seen[col.Name]; found {
			return fmt.Errorf("%w: table %q: duplicate column %q", evalerr.ErrInput, t.Name, col.Name)
		}
		seen[col.Name] = struct{}{}

		if len(col.Cells) != rows {
			return fmt.Errorf("%w: table %q: column %q has %d rows, want %d",
				evalerr.ErrInput, t.Name, col.Name, len(col.Cells), rows)
		}
	}
	return nil
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return nil, false
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	columns := make([]*Column, len(t.Columns))
	for i, col := range t.Columns {
		columns[i] = col.clone()
	}
	return &Table{Name: t.Name, Columns: columns}
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.Columns))
	for j, col := range t.Columns {
		row[j] = col.Cells[i]
	}
	return row
}

// RowKey returns a string which is equal for two rows exactly when every cell
// of the rows is Equal.
func (t *Table) RowKey(i int) string {
	var b []byte
	for _, col := range t.Columns {
		b = col.Cells[i].appendKey(b)
	}
	return string(b)
}

// Keep retains only the given rows, in the given order.
func (t *Table) Keep(rows []int) {
	for _, col := range t.Columns {
		cells := make([]Cell, len(rows))
		for i, r := range rows {
			cells[i] = col.Cells[r]
		}
		col.Cells = cells
	}
}
