package cleaning

import (
	"fmt"
	"math/rand"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/schema"
	"github.com/willbeason/evalboard/pkg/table"
)

const (
	simulatedMean = 100
	simulatedStd  = 20
)

// DefaultCategories are drawn from for categorical columns without a
// special-category rule.
var DefaultCategories = []string{"A", "B", "C"}

// Simulate synthesizes a table of rows rows from fs alone. Numeric columns are
// drawn from Normal(100, 20); categorical columns uniformly from the values of
// the column's special-category rule, or DefaultCategories. Every numeric
// column is drawn before any categorical one, each column in full before the
// next, and the result has its columns in that order. Date and text columns
// are not simulated.
func Simulate(fs *schema.FeatureSchema, rows int, rng *rand.Rand) (*table.Table, error) {
	if fs == nil {
		return nil, fmt.Errorf("%w: simulating requires a feature schema", evalerr.ErrConfiguration)
	}
	if rows < 0 {
		return nil, fmt.Errorf("%w: cannot simulate %d rows", evalerr.ErrInput, rows)
	}

	result := table.New("")
	for _, name := range fs.NumericColumns() {
		cells := make([]table.Cell, rows)
		for i := range cells {
			cells[i] = table.NumberCell(rng.NormFloat64()*simulatedStd + simulatedMean)
		}
		result.Columns = append(result.Columns, table.NewColumn(name, table.Float64, cells...))
	}

	for _, name := range fs.CategoricalColumns() {
		values := fs.SpecialValues(name)
		if len(values) == 0 {
			values = DefaultCategories
		}

		cells := make([]table.Cell, rows)
		for i := range cells {
			cells[i] = table.TextCell(values[rng.Intn(len(values))])
		}
		result.Columns = append(result.Columns, table.NewColumn(name, table.Object, cells...))
	}

	return result, nil
}

// Generate simulates a table from fs and cleans it, drawing both from rng.
func Generate(fs *schema.FeatureSchema, rows int, rng *rand.Rand) (*table.Table, Report, error) {
	simulated, err := Simulate(fs, rows, rng)
	if err != nil {
		return nil, Report{}, err
	}
	return Clean(simulated, fs, rng)
}
