// Package scoring maps indicator values onto a 0-100 score using pass and
// excellent thresholds, classifies scores, and aggregates them into a weighted
// scheme total.
package scoring

import (
	"fmt"
	"strconv"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/locale"
	"github.com/willbeason/evalboard/pkg/table"
)

const (
	// PassScore is the score of a value exactly at the pass threshold.
	PassScore = 60
	// MaxScore is the score of any value at or above the excellent threshold.
	MaxScore = 100

	excellentScore = 90
	goodScore      = 75
)

// ScoreValue scores v against the thresholds:
//
//	100                                  if v >= excellent
//	60 + (v-pass)*40/(excellent-pass)    if pass <= v < excellent
//	60*v/pass                            if v < pass
//
// Thresholds for which this divides by zero or which are out of order fail
// with evalerr.ErrDegenerateThresholds rather than being clamped.
func ScoreValue(v, pass, excellent float64) (float64, error) {
	switch {
	case pass == 0:
		return 0, fmt.Errorf("%w: pass threshold is 0", evalerr.ErrDegenerateThresholds)
	case pass == excellent:
		return 0, fmt.Errorf("%w: pass and excellent thresholds are both %v", evalerr.ErrDegenerateThresholds, pass)
	case excellent < pass:
		return 0, fmt.Errorf("%w: excellent threshold %v is below pass threshold %v",
			evalerr.ErrDegenerateThresholds, excellent, pass)
	}

	switch {
	case v >= excellent:
		return MaxScore, nil
	case v >= pass:
		return PassScore + (v-pass)*(MaxScore-PassScore)/(excellent-pass), nil
	default:
		return PassScore * v / pass, nil
	}
}

// Score scores a value cell against threshold cells. The score is nil when any
// of them is null or not a number; this is checked before the thresholds are
// validated.
func Score(value, pass, excellent table.Cell) (*float64, error) {
	v, ok := value.Float()
	if !ok {
		return nil, nil
	}
	p, ok := pass.Float()
	if !ok {
		return nil, nil
	}
	e, ok := excellent.Float()
	if !ok {
		return nil, nil
	}

	score, err := ScoreValue(v, p, e)
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// Status is the discrete classification of a score.
type Status int

const (
	Unknown Status = iota
	Fail
	Pass
	Good
	Excellent
)

// Statuses lists every Status from best to worst.
var Statuses = []Status{Excellent, Good, Pass, Fail, Unknown}

// StatusOf classifies a score. Thresholds are closed below, so exactly 90 is
// Excellent. A nil score is Unknown.
func StatusOf(score *float64) Status {
	switch {
	case score == nil:
		return Unknown
	case *score >= excellentScore:
		return Excellent
	case *score >= goodScore:
		return Good
	case *score >= PassScore:
		return Pass
	default:
		return Fail
	}
}

func (s Status) String() string {
	switch s {
	case Unknown:
		return "Unknown"
	case Fail:
		return "Fail"
	case Pass:
		return "Pass"
	case Good:
		return "Good"
	case Excellent:
		return "Excellent"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Label renders s for display in l.
func (s Status) Label(l locale.Locale) string {
	switch s {
	case Fail:
		return l.Text(locale.Fail)
	case Pass:
		return l.Text(locale.Pass)
	case Good:
		return l.Text(locale.Good)
	case Excellent:
		return l.Text(locale.Excellent)
	default:
		return l.Text(locale.Unknown)
	}
}
