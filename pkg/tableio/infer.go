package tableio

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/willbeason/evalboard/pkg/table"
)

// A field tracks the kinds of cell seen in a column in order to decide the
// column's declared type. Null cells never change a field.
type field interface {
	add(c table.Cell) field
	dataType() table.DataType
}

// emptyField is a column which has only seen nulls. Adding any other cell
// returns a non-empty field.
type emptyField struct{}

func (f emptyField) add(c table.Cell) field {
	switch c.Kind {
	case table.Null:
		return f
	case table.Number:
		return numberField{integral: isIntegral(c.Num)}
	case table.Time:
		return timeField{}
	default:
		return objectField{}
	}
}

// Columns with no values are declared as holding objects.
func (emptyField) dataType() table.DataType {
	return table.Object
}

// numberField only holds numbers. Integral tracks whether every number seen is
// a whole number.
type numberField struct {
	integral bool
}

func (f numberField) add(c table.Cell) field {
	switch c.Kind {
	case table.Null:
		return f
	case table.Number:
		f.integral = f.integral && isIntegral(c.Num)
		return f
	default:
		return objectField{}
	}
}

func (f numberField) dataType() table.DataType {
	if f.integral {
		return table.Int64
	}
	return table.Float64
}

type timeField struct{}

func (f timeField) add(c table.Cell) field {
	switch c.Kind {
	case table.Null, table.Time:
		return f
	default:
		return objectField{}
	}
}

func (timeField) dataType() table.DataType {
	return table.Timestamp
}

// objectField holds text or a mix of kinds. It absorbs everything.
type objectField struct{}

func (f objectField) add(table.Cell) field {
	return f
}

func (objectField) dataType() table.DataType {
	return table.Object
}

func isIntegral(f float64) bool {
	return math.Round(f) == f && !math.IsInf(f, 0)
}

// inferColumn builds a column from cells, declaring its type from the kinds
// of its non-null cells.
func inferColumn(name string, cells []table.Cell) *table.Column {
	var f field = emptyField{}
	for _, c := range cells {
		f = f.add(c)
	}
	return table.NewColumn(name, f.dataType(), cells...)
}

var nullStrings = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"None": {},
}

var timeLayouts = []string{
	time.RFC3339,
	table.TimeLayout,
	"2006-01-02T15:04:05",
	time.DateOnly,
	"2006/1/2 15:04:05",
	"2006/1/2",
	"01-02-06",
}

// parseCell interprets a value read from a text source.
func parseCell(s string) table.Cell {
	s = strings.TrimSpace(s)
	if _, isNull := nullStrings[s]; isNull {
		return table.NullCell()
	}

	if v, ok := parseNumber(s); ok {
		return table.NumberCell(v)
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return table.TimeCell(t)
		}
	}

	return table.TextCell(s)
}

// parseNumber accepts plain numbers and numbers using ',' as a thousands
// separator, such as "1,234.5".
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return v, !math.IsNaN(v)
	}

	if !strings.Contains(s, ",") || strings.HasPrefix(s, ",") || strings.Contains(s, ",,") {
		return 0, false
	}
	integer, _, _ := strings.Cut(s, ".")
	groups := strings.Split(strings.TrimLeft(integer, "+-"), ",")
	for i, g := range groups {
		if len(g) != 3 && (i != 0 || len(g) == 0 || len(g) > 3) {
			return 0, false
		}
	}
	v, err = strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
