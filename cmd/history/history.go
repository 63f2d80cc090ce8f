package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/willbeason/evalboard/pkg/cmdutil"
	"github.com/willbeason/evalboard/pkg/locale"
	"github.com/willbeason/evalboard/pkg/scheme"
	"github.com/willbeason/evalboard/pkg/scoring"
	"github.com/willbeason/evalboard/pkg/tableio"
	"github.com/willbeason/evalboard/pkg/tables"
)

const (
	FlagWorkers = "workers"
	FlagOut     = "out"
)

func main() {
	cmdutil.AddFlags(&cmd)
	cmd.Flags().Int(FlagWorkers, 0, "schemes to score at once (default: from configuration)")
	cmd.Flags().String(FlagOut, "", "directory to write the summaries to as parquet")

	err := cmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cmd = cobra.Command{
	Use:     "history",
	Short:   "Summarize every uploaded evaluation scheme",
	Args:    cobra.NoArgs,
	Version: "0.1.0",
	RunE:    runE,
}

var ErrHistory = errors.New("summarizing schemes")

func runE(cmd *cobra.Command, _ []string) error {
	cfg, log, err := cmdutil.Setup(cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistory, err)
	}

	workers, err := cmd.Flags().GetInt(FlagWorkers)
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = cfg.Workers
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dir := scheme.NewDir(cfg.UploadDir)
	files, err := dir.List()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistory, err)
	}
	if len(files) == 0 {
		log.Info("No uploaded schemes", "dir", dir.String())
		return nil
	}

	p := cmdutil.NewProgress()
	bar := cmdutil.AddCountBar(p, filepath.Base(dir.String()), len(files))
	start := time.Now()

	summaries, err := dir.History(ctx, scheme.HistoryConfig{
		Workers: workers,
		Logger:  log,
		OnSummary: func(scheme.Summary) {
			bar.IncrBy(1, time.Since(start))
		},
	})
	if err != nil {
		// The bar never completes, so p is abandoned rather than waited on.
		return fmt.Errorf("%w: %w", ErrHistory, err)
	}
	p.Wait()

	printSummaries(cmd.OutOrStdout(), summaries, locale.Parse(cfg.Locale))

	outDir, err := cmd.Flags().GetString(FlagOut)
	if err != nil {
		return err
	}
	if outDir == "" {
		return nil
	}

	err = os.MkdirAll(outDir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("%w: creating output directory: %w", ErrHistory, err)
	}

	record := tables.SchemeSummariesRecord(summaries)
	defer record.Release()

	outPath := filepath.Join(outDir, tables.SchemeSummariesName+tableio.ParquetExt)
	err = tableio.WriteRecord(outPath, tables.SchemeSummaries, record)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistory, err)
	}
	log.Info("Wrote scheme summaries", "path", outPath, "schemes", len(summaries))

	return nil
}

func printSummaries(w io.Writer, summaries []scheme.Summary, l locale.Locale) {
	header := []string{"Scheme", "Uploaded", "Total score", "Indicators"}
	for _, s := range scoring.Statuses {
		header = append(header, s.Label(l))
	}
	header = append(header, "Error")

	tw := cmdutil.NewTable(w, header...)
	for _, s := range summaries {
		row := []string{
			s.Stem(),
			s.ModTime.Format(time.DateTime),
			cmdutil.FormatScore(s.Total),
			strconv.Itoa(s.Indicators),
		}
		for _, status := range scoring.Statuses {
			row = append(row, strconv.Itoa(s.Counts.Of(status)))
		}

		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}
		tw.Append(append(row, errText))
	}
	tw.Render()
}
