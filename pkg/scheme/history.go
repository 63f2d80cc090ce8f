package scheme

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alitto/pond/v2"

	"github.com/willbeason/evalboard/pkg/scoring"
	"github.com/willbeason/evalboard/pkg/tableio"
)

// Summary is one scheme's row of the history overview.
type Summary struct {
	File
	// Total is nil when the scheme could not be aggregated.
	Total      *float64
	Indicators int
	Counts     scoring.StatusCounts
	// Err records why the scheme could not be read or scored. The other
	// fields hold whatever was computed before the failure.
	Err error
}

// Summarize reads and scores f.
func Summarize(f File) Summary {
	s := Summary{File: f}

	t, err := tableio.ReadFile(f.Path)
	if err != nil {
		s.Err = err
		return s
	}

	scored, err := scoring.ScoreTable(t)
	if err != nil {
		s.Err = err
		return s
	}
	s.Indicators = len(scored)

	agg, err := scoring.Aggregate(scored)
	s.Counts = agg.Counts
	if err != nil {
		s.Err = err
		return s
	}
	s.Total = &agg.Total
	return s
}

type HistoryConfig struct {
	// Workers bounds the number of schemes read at once.
	Workers int
	Logger  *slog.Logger
	// OnSummary, if set, is called from the worker as each scheme finishes.
	OnSummary func(Summary)
}

// History summarizes every scheme in d, in List order. A scheme which fails
// is reported in its Summary and does not stop the others; the returned error
// is for failing to list d or cancellation of ctx.
func (d Dir) History(ctx context.Context, cfg HistoryConfig) ([]Summary, error) {
	files, err := d.List()
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, nil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pool := pond.NewResultPool[Summary](max(cfg.Workers, 1))
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)
	for _, f := range files {
		group.SubmitErr(func() (Summary, error) {
			if err := ctx.Err(); err != nil {
				return Summary{}, err
			}

			s := Summarize(f)
			if s.Err != nil {
				logger.Warn("Failed to summarize scheme", "scheme", f.Name, "error", s.Err)
			} else {
				logger.Debug("Summarized scheme", "scheme", f.Name, "indicators", s.Indicators, "total", *s.Total)
			}

			if cfg.OnSummary != nil {
				cfg.OnSummary(s)
			}
			return s, nil
		})
	}

	summaries, err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("summarizing schemes in %q: %w", d.path, err)
	}
	return summaries, nil
}
