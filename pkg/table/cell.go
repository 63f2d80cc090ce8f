package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the tag of a Cell.
type Kind uint8

const (
	Null Kind = iota
	Number
	Text
	Time
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Number:
		return "number"
	case Text:
		return "text"
	case Time:
		return "time"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// TimeLayout is the string form of Time cells.
const TimeLayout = "2006-01-02 15:04:05"

// A Cell holds a single value of a Column. Only the field matching Kind is
// meaningful.
type Cell struct {
	Kind Kind
	Num  float64
	Str  string
	Time time.Time
}

func NullCell() Cell {
	return Cell{}
}

// NumberCell returns a Number cell, or a Null cell for NaN.
func NumberCell(v float64) Cell {
	if math.IsNaN(v) {
		return Cell{}
	}
	return Cell{Kind: Number, Num: v}
}

func TextCell(s string) Cell {
	return Cell{Kind: Text, Str: s}
}

func TimeCell(t time.Time) Cell {
	return Cell{Kind: Time, Time: t}
}

func (c Cell) IsNull() bool {
	return c.Kind == Null
}

// Float returns the numeric value of c. Text cells holding a number parse
// successfully; everything else reports false.
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case Number:
		return c.Num, true
	case Text:
		v, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
		if err != nil || math.IsNaN(v) {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// String renders c the way it is written to text outputs. Null cells render
// as the empty string.
func (c Cell) String() string {
	switch c.Kind {
	case Number:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case Text:
		return c.Str
	case Time:
		return c.Time.Format(TimeLayout)
	default:
		return ""
	}
}

// Equal reports whether c and o hold the same value. Numbers compare by value,
// so 0 and -0 are equal.
func (c Cell) Equal(o Cell) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case Number:
		return c.Num == o.Num
	case Text:
		return c.Str == o.Str
	case Time:
		return c.Time.Equal(o.Time)
	default:
		return true
	}
}

// appendKey writes a representation of c to b which is identical exactly when
// the cells are Equal.
func (c Cell) appendKey(b []byte) []byte {
	b = append(b, byte(c.Kind))
	switch c.Kind {
	case Number:
		v := c.Num
		if v == 0 {
			v = 0
		}
		b = strconv.AppendFloat(b, v, 'g', -1, 64)
	case Text:
		b = strconv.AppendQuote(b, c.Str)
	case Time:
		b = strconv.AppendInt(b, c.Time.UnixNano(), 10)
	}
	return append(b, 0x1f)
}
