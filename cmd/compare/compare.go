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
	"github.com/willbeason/evalboard/pkg/locale"
	"github.com/willbeason/evalboard/pkg/scoring"
	"github.com/willbeason/evalboard/pkg/tableio"
	"github.com/willbeason/evalboard/pkg/tables"
)

const FlagOut = "out"

func main() {
	cmdutil.AddFlags(&cmd)
	cmd.Flags().String(FlagOut, "", "directory to write the comparison to as parquet")

	err := cmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cmd = cobra.Command{
	Use:     "compare FILE_A FILE_B",
	Short:   "Compare the indicator scores of two evaluation schemes",
	Args:    cobra.ExactArgs(2),
	Version: "0.1.0",
	RunE:    runE,
}

var ErrCompare = errors.New("comparing schemes")

func runE(cmd *cobra.Command, args []string) error {
	cfg, log, err := cmdutil.Setup(cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompare, err)
	}
	l := locale.Parse(cfg.Locale)

	scored := make([][]scoring.ScoredIndicator, len(args))
	for i, name := range args {
		t, err := cmdutil.ReadTable(cfg, name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCompare, err)
		}
		scored[i], err = scoring.ScoreTable(t)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrCompare, name, err)
		}
		log.Debug("Scored scheme", "scheme", name, "indicators", len(scored[i]))
	}

	comparison, err := scoring.Compare(scored[0], scored[1])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompare, err)
	}

	nameA, nameB := tableio.Stem(args[0]), tableio.Stem(args[1])
	out := cmd.OutOrStdout()
	printComparison(out, comparison, nameA, nameB, l)
	printTotals(out, comparison, nameA, nameB)

	outDir, err := cmd.Flags().GetString(FlagOut)
	if err != nil {
		return err
	}
	if outDir == "" {
		return nil
	}

	err = os.MkdirAll(outDir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("%w: creating output directory: %w", ErrCompare, err)
	}

	record, err := tables.ComparisonsRecord(comparison, l)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompare, err)
	}
	defer record.Release()

	outPath := filepath.Join(outDir, fmt.Sprintf("%s_vs_%s.%s%s", nameA, nameB, tables.ComparisonsName, tableio.ParquetExt))
	err = tableio.WriteRecord(outPath, tables.Comparisons, record)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompare, err)
	}
	log.Info("Wrote comparison", "path", outPath, "indicators", len(comparison.Indicators))

	return nil
}

func formatSide(s scoring.Side, l locale.Locale) (string, string) {
	if !s.Present {
		return "-", "-"
	}
	return cmdutil.FormatScore(s.Score), s.Status.Label(l)
}

func printComparison(w io.Writer, c scoring.Comparison, nameA, nameB string, l locale.Locale) {
	tw := cmdutil.NewTable(w, "Indicator",
		nameA+"\nscore", nameA+"\nstatus",
		nameB+"\nscore", nameB+"\nstatus",
		"Difference")
	for _, ind := range c.Indicators {
		scoreA, statusA := formatSide(ind.A, l)
		scoreB, statusB := formatSide(ind.B, l)
		tw.Append([]string{ind.Name, scoreA, statusA, scoreB, statusB, cmdutil.FormatScore(ind.Difference)})
	}
	tw.Render()
}

func printTotals(w io.Writer, c scoring.Comparison, nameA, nameB string) {
	tw := cmdutil.NewTable(w, "Scheme", "Total score", "Achieved")
	tw.Append([]string{nameA, cmdutil.FormatScore(c.TotalA), achieved(c.CountsA)})
	tw.Append([]string{nameB, cmdutil.FormatScore(c.TotalB), achieved(c.CountsB)})
	tw.Append([]string{"Difference", cmdutil.FormatScore(c.Difference), ""})
	tw.Render()
}

func achieved(counts scoring.StatusCounts) string {
	return strconv.Itoa(counts.Achieved()) + "/" + strconv.Itoa(counts.Total())
}
