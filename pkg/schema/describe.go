package schema

import (
	"sort"
	"time"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/willbeason/evalboard/pkg/table"
)

// categoricalRatio is the fraction of rows below which a column's distinct
// value count makes it categorical.
const categoricalRatio = 0.5

// topValues is the number of most frequent values kept for categorical
// columns.
const topValues = 3

// Describe classifies every column of t and computes its statistics. Columns
// are tested in order: declared numeric, then few distinct values, then
// declared timestamp; anything else is text. A low-cardinality timestamp
// column is therefore categorical.
func Describe(t *table.Table) (*FeatureSchema, error) {
	err := t.Validate()
	if err != nil {
		return nil, err
	}

	rows := t.Rows()
	result := &FeatureSchema{Columns: make([]ColumnFeature, len(t.Columns))}
	for j, col := range t.Columns {
		result.Columns[j] = describeColumn(col, rows)
	}
	return result, nil
}

func describeColumn(col *table.Column, rows int) ColumnFeature {
	nulls := col.NullCount()
	c := ColumnFeature{
		Name: col.Name,
		Counts: Counts{
			NonNull: rows - nulls,
			Null:    nulls,
		},
	}
	if rows > 0 {
		c.NullPercentage = float64(nulls) / float64(rows) * 100
	}

	switch {
	case col.Type.IsNumeric():
		c.Stats = numericStats(col.Cells)
	default:
		counts := countValues(col.Cells)
		switch {
		case float64(len(counts)) < categoricalRatio*float64(rows):
			c.Stats = categoricalStats(counts)
		case col.Type == table.Timestamp:
			c.Stats = dateStats(col.Cells)
		default:
			c.Stats = textStats(col.Cells)
		}
	}
	return c
}

func ptr[T any](v T) *T {
	return &v
}

func numericStats(cells []table.Cell) NumericStats {
	var xs []float64
	for _, cell := range cells {
		if v, ok := cell.Float(); ok {
			xs = append(xs, v)
		}
	}

	var result NumericStats
	if len(xs) == 0 {
		return result
	}
	result.Min = ptr(floats.Min(xs))
	result.Max = ptr(floats.Max(xs))
	result.Mean = ptr(stat.Mean(xs, nil))
	if len(xs) > 1 {
		result.Std = ptr(stat.StdDev(xs, nil))
	}
	return result
}

type valueKey struct {
	kind  table.Kind
	value string
}

type valueCount struct {
	value string
	count int
}

// countValues counts the distinct non-null values of cells, in order of first
// appearance.
func countValues(cells []table.Cell) []valueCount {
	index := make(map[valueKey]int)
	var counts []valueCount
	for _, cell := range cells {
		if cell.IsNull() {
			continue
		}
		key := valueKey{kind: cell.Kind, value: cell.String()}
		if k, found := index[key]; found {
			counts[k].count++
			continue
		}
		index[key] = len(counts)
		counts = append(counts, valueCount{value: key.value, count: 1})
	}
	return counts
}

func categoricalStats(counts []valueCount) CategoricalStats {
	result := CategoricalStats{UniqueValues: len(counts)}

	sorted := make([]valueCount, len(counts))
	copy(sorted, counts)
	// Stable, so ties keep the order of first appearance.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].count > sorted[j].count
	})

	for _, vc := range sorted[:min(topValues, len(sorted))] {
		result.TopValues = append(result.TopValues, ValueCount{Value: vc.value, Count: vc.count})
	}
	return result
}

func dateStats(cells []table.Cell) DateStats {
	var result DateStats
	for _, cell := range cells {
		if cell.Kind != table.Time {
			continue
		}
		t := cell.Time
		if result.Min == nil || t.Before(*result.Min) {
			result.Min = ptr[time.Time](t)
		}
		if result.Max == nil || t.After(*result.Max) {
			result.Max = ptr[time.Time](t)
		}
	}
	return result
}

func textStats(cells []table.Cell) TextStats {
	var result TextStats
	total, n, longest := 0, 0, 0
	for _, cell := range cells {
		if cell.IsNull() {
			continue
		}
		length := utf8.RuneCountInString(cell.String())
		total += length
		longest = max(longest, length)
		n++
	}
	if n > 0 {
		result.MeanLength = ptr(float64(total) / float64(n))
		result.MaxLength = ptr(longest)
	}
	return result
}
