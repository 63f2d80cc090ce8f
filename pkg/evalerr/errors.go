// Package evalerr holds the error taxonomy shared by the evaluation packages.
// Errors are wrapped with table and column context using fmt.Errorf and %w,
// so callers match them with errors.Is.
package evalerr

import "errors"

var (
	// ErrConfiguration indicates a feature schema was required but unavailable.
	ErrConfiguration = errors.New("configuration error")

	// ErrInput indicates a source table is missing, unreadable, or structurally
	// invalid.
	ErrInput = errors.New("input error")

	// ErrSchemaMismatch indicates columns a computation requires are absent.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrAggregation indicates there were no scoreable rows, or the scoreable
	// rows carry zero total weight.
	ErrAggregation = errors.New("aggregation error")

	// ErrDegenerateThresholds indicates pass and excellent thresholds for which
	// the scoring formula divides by zero or is not ordered.
	ErrDegenerateThresholds = errors.New("degenerate thresholds")
)
