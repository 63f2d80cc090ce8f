package scoring

import (
	"errors"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/table"
)

// Side is one scheme's view of an indicator in a comparison. Present is false
// when the scheme has no indicator of that name.
type Side struct {
	Present bool
	Value   table.Cell
	Score   *float64
	Status  Status
}

// IndicatorComparison compares one indicator across two schemes.
type IndicatorComparison struct {
	Name string
	A, B Side
	// Difference is A's score minus B's. A scheme without the indicator counts
	// as 0; a present indicator without a score makes the difference nil.
	Difference *float64
}

// Comparison is the indicator-by-indicator comparison of two schemes. A total
// is nil when its scheme cannot be aggregated.
type Comparison struct {
	Indicators []IndicatorComparison
	TotalA     *float64
	TotalB     *float64
	// Difference is TotalA minus TotalB, nil unless both totals exist.
	Difference *float64
	CountsA    StatusCounts
	CountsB    StatusCounts
}

func side(s ScoredIndicator) Side {
	return Side{Present: true, Value: s.Value, Score: s.Score, Status: s.Status}
}

func sideScore(s Side) (float64, bool) {
	switch {
	case !s.Present:
		return 0, true
	case s.Score == nil:
		return 0, false
	default:
		return *s.Score, true
	}
}

func total(scored []ScoredIndicator) (*float64, StatusCounts, error) {
	agg, err := Aggregate(scored)
	if errors.Is(err, evalerr.ErrAggregation) {
		return nil, agg.Counts, nil
	} else if err != nil {
		return nil, agg.Counts, err
	}
	return &agg.Total, agg.Counts, nil
}

// Compare lines up the indicators of two schemes by name: a's indicators in
// order, then those only b has. When a scheme repeats a name, its first
// indicator is used.
func Compare(a, b []ScoredIndicator) (Comparison, error) {
	var result Comparison
	var err error

	result.TotalA, result.CountsA, err = total(a)
	if err != nil {
		return result, err
	}
	result.TotalB, result.CountsB, err = total(b)
	if err != nil {
		return result, err
	}
	if result.TotalA != nil && result.TotalB != nil {
		d := *result.TotalA - *result.TotalB
		result.Difference = &d
	}

	var names []string
	sides := make(map[string]*IndicatorComparison)
	for _, s := range a {
		if _, found := sides[s.Name]; found {
			continue
		}
		sides[s.Name] = &IndicatorComparison{Name: s.Name, A: side(s)}
		names = append(names, s.Name)
	}
	for _, s := range b {
		c, found := sides[s.Name]
		if !found {
			c = &IndicatorComparison{Name: s.Name}
			sides[s.Name] = c
			names = append(names, s.Name)
		}
		if !c.B.Present {
			c.B = side(s)
		}
	}

	result.Indicators = make([]IndicatorComparison, len(names))
	for i, name := range names {
		c := sides[name]
		scoreA, okA := sideScore(c.A)
		scoreB, okB := sideScore(c.B)
		if okA && okB {
			d := scoreA - scoreB
			c.Difference = &d
		}
		result.Indicators[i] = *c
	}
	return result, nil
}
