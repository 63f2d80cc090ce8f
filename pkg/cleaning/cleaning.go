// Package cleaning repairs an indicator table against its feature schema and
// synthesizes perturbed tables from a schema alone.
//
// Every operation draws from a caller-owned *rand.Rand. Given the same table,
// schema and seed, Clean produces identical output.
package cleaning

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/locale"
	"github.com/willbeason/evalboard/pkg/schema"
	"github.com/willbeason/evalboard/pkg/table"
)

// DefaultSeed seeds the generator when the caller has no reason to pick one.
const DefaultSeed = 42

const (
	perturbLow  = 0.95
	perturbHigh = 1.05

	specialLow  = 0.9
	specialHigh = 1.1

	// clipSigmas is the number of standard deviations from the mean beyond
	// which numeric values are clamped.
	clipSigmas = 3
)

// NewRand returns a generator seeded with seed. Use a fresh generator for
// every Clean call to reproduce its output.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Report counts what each cleaning step changed.
type Report struct {
	RowsIn            int
	RowsOut           int
	DuplicatesRemoved int
	CellsImputed      int
	CellsPerturbed    int
	// CellsSpecial counts the cells given a special-category factor.
	CellsSpecial int
	CellsCoerced int
	CellsClipped int
}

// Clean returns a repaired copy of t. The steps run in a fixed order, each
// consuming the previous step's output:
//
//  1. impute: numeric nulls become 0 and categorical nulls the locale's
//     "unknown" placeholder
//  2. deduplicate: exact full-row duplicates after the first are dropped
//  3. perturb: nonzero numeric cells are scaled by Uniform(0.95, 1.05)
//  4. special categories: numeric cells of rows matching a rule are scaled
//     again by Uniform(0.9, 1.1)
//  5. coerce: numeric columns become float64, with unparsable cells 0, and
//     categorical columns become strings
//  6. clip: numeric values are clamped to within three sample standard
//     deviations of their column's mean
//
// Only the schema's numeric and categorical columns are changed; other
// columns pass through, though they take part in deduplication.
func Clean(t *table.Table, fs *schema.FeatureSchema, rng *rand.Rand) (*table.Table, Report, error) {
	var report Report
	if fs == nil {
		return nil, report, fmt.Errorf("%w: no feature schema for table", evalerr.ErrConfiguration)
	}
	err := t.Validate()
	if err != nil {
		return nil, report, err
	}

	numeric, err := schemaColumns(t, fs.NumericColumns())
	if err != nil {
		return nil, report, err
	}
	categorical, err := schemaColumns(t, fs.CategoricalColumns())
	if err != nil {
		return nil, report, err
	}

	result := t.Clone()
	report.RowsIn = result.Rows()

	// Columns are looked up again in the clone so the input is never written.
	numericCols := lookup(result, numeric)
	categoricalCols := lookup(result, categorical)

	report.CellsImputed = impute(numericCols, categoricalCols, fs.Language())
	report.DuplicatesRemoved = deduplicate(result)
	report.CellsPerturbed = perturb(numericCols, rng)
	report.CellsSpecial = perturbSpecial(numericCols, result, fs, rng)
	report.CellsCoerced = coerce(numericCols, categoricalCols)
	report.CellsClipped = clip(numericCols)
	report.RowsOut = result.Rows()

	return result, report, nil
}

func schemaColumns(t *table.Table, names []string) ([]string, error) {
	for _, name := range names {
		if _, found := t.Column(name); !found {
			return nil, fmt.Errorf("%w: table %q has no column %q", evalerr.ErrSchemaMismatch, t.Name, name)
		}
	}
	return names, nil
}

func lookup(t *table.Table, names []string) []*table.Column {
	columns := make([]*table.Column, len(names))
	for i, name := range names {
		columns[i], _ = t.Column(name)
	}
	return columns
}

func impute(numeric, categorical []*table.Column, l locale.Locale) int {
	n := 0
	for _, col := range numeric {
		for i, cell := range col.Cells {
			if cell.IsNull() {
				col.Cells[i] = table.NumberCell(0)
				n++
			}
		}
	}

	placeholder := table.TextCell(l.Text(locale.Unknown))
	for _, col := range categorical {
		for i, cell := range col.Cells {
			if cell.IsNull() {
				col.Cells[i] = placeholder
				n++
			}
		}
	}
	return n
}

// deduplicate keeps the first of every set of identical rows and returns the
// number of rows dropped.
func deduplicate(t *table.Table) int {
	rows := t.Rows()
	seen := make(map[string]struct{}, rows)
	keep := make([]int, 0, rows)
	for i := range rows {
		key := t.RowKey(i)
		if _, found := seen[key]; found {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	if len(keep) == rows {
		return 0
	}
	t.Keep(keep)
	return rows - len(keep)
}

func uniform(rng *rand.Rand, low, high float64) float64 {
	return low + (high-low)*rng.Float64()
}

// scale multiplies a nonzero Number cell by a draw from Uniform(low, high).
// Zero and non-numeric cells are left alone and consume no draw.
func scale(cell *table.Cell, rng *rand.Rand, low, high float64) bool {
	if cell.Kind != table.Number || cell.Num == 0 {
		return false
	}
	cell.Num *= uniform(rng, low, high)
	return true
}

func perturb(numeric []*table.Column, rng *rand.Rand) int {
	n := 0
	for _, col := range numeric {
		for i := range col.Cells {
			if scale(&col.Cells[i], rng, perturbLow, perturbHigh) {
				n++
			}
		}
	}
	return n
}

// perturbSpecial applies each special-category rule in order. Rules naming a
// column which is not categorical are ignored.
func perturbSpecial(numeric []*table.Column, t *table.Table, fs *schema.FeatureSchema, rng *rand.Rand) int {
	categorical := make(map[string]struct{})
	for _, name := range fs.CategoricalColumns() {
		categorical[name] = struct{}{}
	}

	n := 0
	for _, rule := range fs.SpecialCategories {
		if _, found := categorical[rule.Column]; !found {
			continue
		}
		col, _ := t.Column(rule.Column)

		values := make(map[string]struct{}, len(rule.Values))
		for _, v := range rule.Values {
			values[v] = struct{}{}
		}

		var matched []int
		for i, cell := range col.Cells {
			if cell.IsNull() {
				continue
			}
			if _, found := values[cell.String()]; found {
				matched = append(matched, i)
			}
		}

		for _, numCol := range numeric {
			for _, i := range matched {
				if scale(&numCol.Cells[i], rng, specialLow, specialHigh) {
					n++
				}
			}
		}
	}
	return n
}

func coerce(numeric, categorical []*table.Column) int {
	n := 0
	for _, col := range numeric {
		col.Type = table.Float64
		for i, cell := range col.Cells {
			if cell.Kind == table.Number {
				continue
			}
			v, _ := cell.Float()
			col.Cells[i] = table.NumberCell(v)
			n++
		}
	}

	for _, col := range categorical {
		col.Type = table.Object
		for i, cell := range col.Cells {
			if cell.Kind == table.Text || cell.IsNull() {
				continue
			}
			col.Cells[i] = table.TextCell(cell.String())
			n++
		}
	}
	return n
}

// clip clamps every numeric column to mean ± 3 sample standard deviations,
// computed once from the column as it stands. Columns of fewer than two rows
// have no standard deviation and are left as they are.
func clip(numeric []*table.Column) int {
	n := 0
	for _, col := range numeric {
		if len(col.Cells) < 2 {
			continue
		}

		xs := make([]float64, len(col.Cells))
		for i, cell := range col.Cells {
			xs[i] = cell.Num
		}
		mean, std := stat.MeanStdDev(xs, nil)
		low, high := mean-clipSigmas*std, mean+clipSigmas*std

		for i, x := range xs {
			switch {
			case x > high:
				col.Cells[i] = table.NumberCell(high)
				n++
			case x < low:
				col.Cells[i] = table.NumberCell(low)
				n++
			}
		}
	}
	return n
}
