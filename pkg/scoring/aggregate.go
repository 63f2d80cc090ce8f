package scoring

import (
	"fmt"
	"sort"

	"github.com/willbeason/evalboard/pkg/evalerr"
)

// StatusCounts is the number of indicators with each status.
type StatusCounts struct {
	Excellent int
	Good      int
	Pass      int
	Fail      int
	Unknown   int
}

// Of returns the count for s.
func (c StatusCounts) Of(s Status) int {
	switch s {
	case Excellent:
		return c.Excellent
	case Good:
		return c.Good
	case Pass:
		return c.Pass
	case Fail:
		return c.Fail
	default:
		return c.Unknown
	}
}

// Achieved counts indicators which met their pass threshold without being
// excellent.
func (c StatusCounts) Achieved() int {
	return c.Pass + c.Good
}

func (c StatusCounts) Total() int {
	return c.Excellent + c.Good + c.Pass + c.Fail + c.Unknown
}

// CountStatuses tallies the statuses of scored.
func CountStatuses(scored []ScoredIndicator) StatusCounts {
	var c StatusCounts
	for _, s := range scored {
		switch s.Status {
		case Excellent:
			c.Excellent++
		case Good:
			c.Good++
		case Pass:
			c.Pass++
		case Fail:
			c.Fail++
		default:
			c.Unknown++
		}
	}
	return c
}

// SchemeAggregate summarizes the scored indicators of one scheme.
type SchemeAggregate struct {
	Total  float64
	Counts StatusCounts
}

// Aggregate computes the weighted mean score of the indicators which have a
// score. Indicators without a score contribute to neither the sum nor the
// weights.
//
// It fails with evalerr.ErrInput if a scored indicator has a missing or
// negative weight, and with evalerr.ErrAggregation if nothing can be averaged.
func Aggregate(scored []ScoredIndicator) (SchemeAggregate, error) {
	result := SchemeAggregate{Counts: CountStatuses(scored)}

	sum, weights := 0.0, 0.0
	for _, s := range scored {
		if s.Score == nil {
			continue
		}

		w, ok := s.Weight.Float()
		if !ok {
			return result, fmt.Errorf("%w: indicator %q: weight %q is not a number", evalerr.ErrInput, s.Name, s.Weight.String())
		}
		if w < 0 {
			return result, fmt.Errorf("%w: indicator %q: weight %v is negative", evalerr.ErrInput, s.Name, w)
		}

		sum += *s.Score * w
		weights += w
	}

	if weights == 0 {
		return result, fmt.Errorf("%w: no scored indicators with weight among %d", evalerr.ErrAggregation, len(scored))
	}
	result.Total = sum / weights
	return result, nil
}

// ranked returns the scored indicators with a score, ordered by less. Ties keep
// table order.
func ranked(scored []ScoredIndicator, less func(a, b float64) bool) []ScoredIndicator {
	var result []ScoredIndicator
	for _, s := range scored {
		if s.Score != nil {
			result = append(result, s)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return less(*result[i].Score, *result[j].Score)
	})
	return result
}

// Top returns up to n indicators with the highest scores, best first.
func Top(scored []ScoredIndicator, n int) []ScoredIndicator {
	result := ranked(scored, func(a, b float64) bool { return a > b })
	return result[:min(max(n, 0), len(result))]
}

// Bottom returns up to n indicators with the lowest scores, worst first.
func Bottom(scored []ScoredIndicator, n int) []ScoredIndicator {
	result := ranked(scored, func(a, b float64) bool { return a < b })
	return result[:min(max(n, 0), len(result))]
}
