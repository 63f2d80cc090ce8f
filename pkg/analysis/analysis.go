// Package analysis computes the multivariate views of a table's numeric
// columns: their correlation matrix, the network of strongly correlated
// pairs, and a principal component analysis.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/schema"
	"github.com/willbeason/evalboard/pkg/table"
)

// EdgeThreshold is the absolute correlation above which two columns are
// connected in the correlation network.
const EdgeThreshold = 0.5

// MaxComponents bounds the number of principal components kept.
const MaxComponents = 3

var ErrDecomposition = errors.New("principal component decomposition failed")

// Edge connects two strongly correlated columns.
type Edge struct {
	Source      string
	Target      string
	Correlation float64
}

// PCA is a principal component analysis of standardized columns.
type PCA struct {
	// ExplainedVarianceRatio is the share of total variance each kept
	// component explains, largest first.
	ExplainedVarianceRatio []float64
	// Projections holds each complete row's coordinates along the kept
	// components.
	Projections [][]float64
}

// Result holds every analysis of one table.
type Result struct {
	// Columns are the analyzed numeric columns, in schema order.
	Columns []string
	// Rows is the number of rows with a value in every analyzed column.
	Rows int
	// Correlation is the Pearson correlation of each pair of Columns. It is
	// NaN for pairs involving a constant column.
	Correlation [][]float64
	Edges       []Edge
	PCA         PCA
}

// Analyze runs every analysis over the numeric columns fs names. Rows missing
// a value in any of them are dropped. At least two columns and two complete
// rows are required.
func Analyze(t *table.Table, fs *schema.FeatureSchema) (*Result, error) {
	if fs == nil {
		return nil, fmt.Errorf("%w: no feature schema for table", evalerr.ErrConfiguration)
	}
	err := t.Validate()
	if err != nil {
		return nil, err
	}

	names := fs.NumericColumns()
	if len(names) < 2 {
		return nil, fmt.Errorf("%w: table %q: analysis needs at least 2 numeric columns, found %d",
			evalerr.ErrInput, t.Name, len(names))
	}

	data, err := completeRows(t, names)
	if err != nil {
		return nil, err
	}
	rows, _ := data.Dims()
	if rows < 2 {
		return nil, fmt.Errorf("%w: table %q: analysis needs at least 2 complete rows, found %d",
			evalerr.ErrInput, t.Name, rows)
	}

	result := &Result{Columns: names, Rows: rows}

	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, data, nil)
	result.Correlation = correlations(&corr)
	result.Edges = edges(names, result.Correlation)

	result.PCA, err = principalComponents(standardize(data))
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", t.Name, err)
	}
	return result, nil
}

// completeRows collects the rows with a numeric value in every named column.
func completeRows(t *table.Table, names []string) (*mat.Dense, error) {
	columns := make([]*table.Column, len(names))
	for j, name := range names {
		col, found := t.Column(name)
		if !found {
			return nil, fmt.Errorf("%w: table %q has no column %q", evalerr.ErrSchemaMismatch, t.Name, name)
		}
		columns[j] = col
	}

	var values []float64
	row := make([]float64, len(columns))
	n := 0
	for i := range t.Rows() {
		complete := true
		for j, col := range columns {
			v, ok := col.Cells[i].Float()
			if !ok {
				complete = false
				break
			}
			row[j] = v
		}
		if complete {
			values = append(values, row...)
			n++
		}
	}

	if n == 0 {
		// mat panics on empty matrices.
		return &mat.Dense{}, nil
	}
	return mat.NewDense(n, len(columns), values), nil
}

func correlations(corr *mat.SymDense) [][]float64 {
	p := corr.SymmetricDim()
	result := make([][]float64, p)
	for i := range result {
		result[i] = make([]float64, p)
		for j := range result[i] {
			result[i][j] = corr.At(i, j)
		}
	}
	return result
}

func edges(names []string, corr [][]float64) []Edge {
	var result []Edge
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			r := corr[i][j]
			if math.Abs(r) > EdgeThreshold {
				result = append(result, Edge{Source: names[i], Target: names[j], Correlation: r})
			}
		}
	}
	return result
}

// standardize centers each column and scales it to unit population standard
// deviation. Constant columns are only centered.
func standardize(data *mat.Dense) *mat.Dense {
	rows, cols := data.Dims()
	result := mat.NewDense(rows, cols, nil)
	column := make([]float64, rows)
	for j := range cols {
		mat.Col(column, j, data)
		mean, std := stat.PopMeanStdDev(column, nil)
		if std == 0 {
			std = 1
		}
		for i, v := range column {
			result.Set(i, j, (v-mean)/std)
		}
	}
	return result
}

func principalComponents(data *mat.Dense) (PCA, error) {
	rows, cols := data.Dims()

	var pc stat.PC
	ok := pc.PrincipalComponents(data, nil)
	if !ok {
		return PCA{}, ErrDecomposition
	}

	vars := pc.VarsTo(nil)
	k := min(MaxComponents, cols, rows, len(vars))

	var result PCA
	total := floats.Sum(vars)
	result.ExplainedVarianceRatio = make([]float64, k)
	for i := range k {
		if total > 0 {
			result.ExplainedVarianceRatio[i] = vars[i] / total
		}
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)

	var projected mat.Dense
	projected.Mul(data, vectors.Slice(0, cols, 0, k))

	result.Projections = make([][]float64, rows)
	for i := range result.Projections {
		result.Projections[i] = mat.Row(nil, i, &projected)
	}
	return result, nil
}
