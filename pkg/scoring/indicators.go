package scoring

import (
	"fmt"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/table"
)

// Column names of an indicator table.
const (
	ColumnName      = "indicator_name"
	ColumnValue     = "value"
	ColumnWeight    = "weight"
	ColumnPass      = "pass_threshold"
	ColumnExcellent = "excellent_threshold"
	ColumnUnit      = "unit"
)

// RequiredColumns lists the columns an indicator table must have, in the order
// they are checked.
var RequiredColumns = []string{
	ColumnName, ColumnValue, ColumnWeight, ColumnPass, ColumnExcellent, ColumnUnit,
}

// aliases are the headers evaluation spreadsheets use for each column.
var aliases = map[string][]string{
	ColumnName:      {"指标名称"},
	ColumnValue:     {"指标值"},
	ColumnWeight:    {"权重"},
	ColumnPass:      {"评分标准_及格线"},
	ColumnExcellent: {"评分标准_优秀线"},
	ColumnUnit:      {"单位"},
}

// Indicator is one evaluated row of an indicator table.
type Indicator struct {
	Name      string
	Value     table.Cell
	Weight    table.Cell
	Pass      table.Cell
	Excellent table.Cell
	Unit      string
}

// ScoredIndicator is an Indicator with its derived score. Score is nil when the
// indicator cannot be scored.
type ScoredIndicator struct {
	Indicator
	Score  *float64
	Status Status
}

func findColumn(t *table.Table, name string) (*table.Column, error) {
	if col, found := t.Column(name); found {
		return col, nil
	}
	for _, alias := range aliases[name] {
		if col, found := t.Column(alias); found {
			return col, nil
		}
	}
	return nil, fmt.Errorf("%w: table %q has no column %q", evalerr.ErrSchemaMismatch, t.Name, name)
}

// Indicators reads the rows of an indicator table. Columns are matched by
// their English names, then by the Chinese headers of the evaluation
// spreadsheet template.
func Indicators(t *table.Table) ([]Indicator, error) {
	err := t.Validate()
	if err != nil {
		return nil, err
	}

	columns := make([]*table.Column, len(RequiredColumns))
	for i, name := range RequiredColumns {
		columns[i], err = findColumn(t, name)
		if err != nil {
			return nil, err
		}
	}
	names, values, weights, passes, excellents, units :=
		columns[0], columns[1], columns[2], columns[3], columns[4], columns[5]

	result := make([]Indicator, t.Rows())
	for i := range result {
		result[i] = Indicator{
			Name:      names.Cells[i].String(),
			Value:     values.Cells[i],
			Weight:    weights.Cells[i],
			Pass:      passes.Cells[i],
			Excellent: excellents.Cells[i],
			Unit:      units.Cells[i].String(),
		}
	}
	return result, nil
}

// ScoreIndicators scores every indicator. It fails on the first indicator with
// degenerate thresholds.
func ScoreIndicators(indicators []Indicator) ([]ScoredIndicator, error) {
	result := make([]ScoredIndicator, len(indicators))
	for i, ind := range indicators {
		score, err := Score(ind.Value, ind.Pass, ind.Excellent)
		if err != nil {
			return nil, fmt.Errorf("indicator %q: %w", ind.Name, err)
		}
		result[i] = ScoredIndicator{Indicator: ind, Score: score, Status: StatusOf(score)}
	}
	return result, nil
}

// ScoreTable reads and scores an indicator table.
func ScoreTable(t *table.Table) ([]ScoredIndicator, error) {
	indicators, err := Indicators(t)
	if err != nil {
		return nil, err
	}

	scored, err := ScoreIndicators(indicators)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", t.Name, err)
	}
	return scored, nil
}
