// Package schema classifies the columns of a table and describes them with
// statistics. The result, a FeatureSchema, drives the cleaning pipeline and is
// persisted as a JSON document next to the uploaded table.
package schema

import (
	"strconv"
	"time"

	"github.com/willbeason/evalboard/pkg/locale"
)

// ColumnKind is the classification of a column.
type ColumnKind int

const (
	Numeric ColumnKind = iota
	Categorical
	Date
	Text
)

// Kinds lists every ColumnKind in document order.
var Kinds = []ColumnKind{Numeric, Categorical, Date, Text}

func (k ColumnKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Date:
		return "date"
	case Text:
		return "text"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ColumnStats holds the kind-specific statistics of a column. It is
// implemented only by NumericStats, CategoricalStats, DateStats and TextStats,
// and the implementation determines the column's kind.
type ColumnStats interface {
	Kind() ColumnKind
	columnStats()
}

// NumericStats are nil when the column has no values, and Std is nil when it
// has fewer than two.
type NumericStats struct {
	Min  *float64 `json:"min"`
	Max  *float64 `json:"max"`
	Mean *float64 `json:"mean"`
	Std  *float64 `json:"std"`
}

// ValueCount is the number of times a category value occurs.
type ValueCount struct {
	Value string
	Count int
}

type CategoricalStats struct {
	UniqueValues int
	// TopValues holds up to three values, most frequent first.
	TopValues []ValueCount
}

type DateStats struct {
	Min *time.Time
	Max *time.Time
}

type TextStats struct {
	MeanLength *float64 `json:"mean_length"`
	MaxLength  *int     `json:"max_length"`
}

func (NumericStats) Kind() ColumnKind     { return Numeric }
func (CategoricalStats) Kind() ColumnKind { return Categorical }
func (DateStats) Kind() ColumnKind        { return Date }
func (TextStats) Kind() ColumnKind        { return Text }

func (NumericStats) columnStats()     {}
func (CategoricalStats) columnStats() {}
func (DateStats) columnStats()        {}
func (TextStats) columnStats()        {}

// emptyStats returns statistics of the given kind with no values, for columns
// a document lists without describing.
func emptyStats(k ColumnKind) ColumnStats {
	switch k {
	case Numeric:
		return NumericStats{}
	case Categorical:
		return CategoricalStats{}
	case Date:
		return DateStats{}
	default:
		return TextStats{}
	}
}

// Counts are the null accounting common to every column.
type Counts struct {
	NonNull int `json:"non_null_count"`
	Null    int `json:"null_count"`
	// NullPercentage is Null as a percentage of the table's rows, and 0 for an
	// empty table.
	NullPercentage float64 `json:"null_percentage"`
}

// ColumnFeature describes one column.
type ColumnFeature struct {
	Name string
	Counts
	Stats ColumnStats
}

func (c ColumnFeature) Kind() ColumnKind {
	return c.Stats.Kind()
}

// SpecialCategoryRule flags rows whose Column holds one of Values for an extra
// perturbation pass during cleaning.
type SpecialCategoryRule struct {
	Column string
	Values []string
}

// FeatureSchema is the classification of every column of a table, plus the
// cleaning configuration stored alongside it.
type FeatureSchema struct {
	// Columns are in table order. Each column has exactly one kind.
	Columns []ColumnFeature

	// SpecialCategories are applied in order.
	SpecialCategories []SpecialCategoryRule

	// Locale is the BCP 47 tag placeholders are rendered in. Empty means
	// locale.Default.
	Locale string
}

// ColumnsOf returns the names of the columns of kind k, in table order.
func (s *FeatureSchema) ColumnsOf(k ColumnKind) []string {
	names := []string{}
	for _, c := range s.Columns {
		if c.Kind() == k {
			names = append(names, c.Name)
		}
	}
	return names
}

func (s *FeatureSchema) NumericColumns() []string     { return s.ColumnsOf(Numeric) }
func (s *FeatureSchema) CategoricalColumns() []string { return s.ColumnsOf(Categorical) }
func (s *FeatureSchema) DateColumns() []string        { return s.ColumnsOf(Date) }
func (s *FeatureSchema) TextColumns() []string        { return s.ColumnsOf(Text) }

// Names returns the names of every described column.
func (s *FeatureSchema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Feature returns the description of the named column.
func (s *FeatureSchema) Feature(name string) (ColumnFeature, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnFeature{}, false
}

// SpecialValues returns the category values the special-category rules list
// for column, or nil if no rule names it.
func (s *FeatureSchema) SpecialValues(column string) []string {
	for _, rule := range s.SpecialCategories {
		if rule.Column == column {
			return rule.Values
		}
	}
	return nil
}

// Language resolves the schema's locale.
func (s *FeatureSchema) Language() locale.Locale {
	return locale.Parse(s.Locale)
}
