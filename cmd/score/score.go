package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/willbeason/evalboard/pkg/cmdutil"
	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/locale"
	"github.com/willbeason/evalboard/pkg/scoring"
	"github.com/willbeason/evalboard/pkg/tableio"
	"github.com/willbeason/evalboard/pkg/tables"
)

const (
	FlagOut = "out"

	ranked = 3
)

func main() {
	cmdutil.AddFlags(&cmd)
	cmd.Flags().String(FlagOut, "", "directory to write the scored indicators to as parquet")

	err := cmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cmd = cobra.Command{
	Use:     "score FILE",
	Short:   "Score the indicators of an evaluation scheme",
	Args:    cobra.ExactArgs(1),
	Version: "0.1.0",
	RunE:    runE,
}

var ErrScore = errors.New("scoring scheme")

func runE(cmd *cobra.Command, args []string) error {
	cfg, log, err := cmdutil.Setup(cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScore, err)
	}
	l := locale.Parse(cfg.Locale)

	name := args[0]
	t, err := cmdutil.ReadTable(cfg, name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScore, err)
	}

	scored, err := scoring.ScoreTable(t)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrScore, name, err)
	}

	out := cmd.OutOrStdout()
	printIndicators(out, scored, l)

	agg, err := scoring.Aggregate(scored)
	switch {
	case errors.Is(err, evalerr.ErrAggregation):
		log.Warn("Scheme has no weighted scores", "scheme", t.Name, "error", err)
		printSummary(out, nil, agg.Counts, l)
	case err != nil:
		return fmt.Errorf("%w: %q: %w", ErrScore, name, err)
	default:
		printSummary(out, &agg.Total, agg.Counts, l)
	}

	_, err = fmt.Fprintln(out, "Highest scores")
	if err != nil {
		return err
	}
	printRanked(out, scoring.Top(scored, ranked))
	_, err = fmt.Fprintln(out, "Lowest scores")
	if err != nil {
		return err
	}
	printRanked(out, scoring.Bottom(scored, ranked))

	outDir, err := cmd.Flags().GetString(FlagOut)
	if err != nil {
		return err
	}
	if outDir == "" {
		return nil
	}

	err = os.MkdirAll(outDir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("%w: creating output directory: %w", ErrScore, err)
	}

	record, err := tables.ScoredIndicatorsRecord(scored, l)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScore, err)
	}
	defer record.Release()

	outPath := filepath.Join(outDir, fmt.Sprintf("%s.%s%s", t.Name, tables.ScoredIndicatorsName, tableio.ParquetExt))
	err = tableio.WriteRecord(outPath, tables.ScoredIndicators, record)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScore, err)
	}
	log.Info("Wrote scored indicators", "path", outPath, "indicators", len(scored))

	return nil
}

func printIndicators(w io.Writer, scored []scoring.ScoredIndicator, l locale.Locale) {
	tw := cmdutil.NewTable(w, "Indicator", "Value", "Unit", "Weight", "Pass", "Excellent", "Score", "Status")
	for _, s := range scored {
		tw.Append([]string{
			s.Name,
			cmdutil.FormatCell(s.Value),
			s.Unit,
			cmdutil.FormatCell(s.Weight),
			cmdutil.FormatCell(s.Pass),
			cmdutil.FormatCell(s.Excellent),
			cmdutil.FormatScore(s.Score),
			s.Status.Label(l),
		})
	}
	tw.Render()
}

func printSummary(w io.Writer, total *float64, counts scoring.StatusCounts, l locale.Locale) {
	header := []string{"Total score", "Achieved"}
	row := []string{cmdutil.FormatScore(total), fmt.Sprintf("%d/%d", counts.Achieved(), counts.Total())}
	for _, s := range scoring.Statuses {
		header = append(header, s.Label(l))
		row = append(row, strconv.Itoa(counts.Of(s)))
	}

	tw := cmdutil.NewTable(w, header...)
	tw.Append(row)
	tw.Render()
}

func printRanked(w io.Writer, scored []scoring.ScoredIndicator) {
	tw := cmdutil.NewTable(w, "#", "Indicator", "Score")
	for i, s := range scored {
		tw.Append([]string{strconv.Itoa(i + 1), s.Name, cmdutil.FormatScore(s.Score)})
	}
	tw.Render()
}
