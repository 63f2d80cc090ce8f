package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/willbeason/evalboard/pkg/cmdutil"
	"github.com/willbeason/evalboard/pkg/schema"
	"github.com/willbeason/evalboard/pkg/table"
	"github.com/willbeason/evalboard/pkg/tableio"
)

const (
	FlagOut    = "out"
	FlagLocale = "locale"
)

func main() {
	cmdutil.AddFlags(&cmd)
	cmd.Flags().String(FlagOut, "", "write the schema document here instead of the schema store")
	cmd.Flags().String(FlagLocale, "", "locale of the schema's placeholders and labels (default: the stored schema's)")

	err := cmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cmd = cobra.Command{
	Use:     "describe FILE...",
	Short:   "Classify the columns of tables and store their feature schemas",
	Args:    cobra.MinimumNArgs(1),
	Version: "0.1.0",
	RunE:    runE,
}

var ErrDescribe = errors.New("describing table")

func runE(cmd *cobra.Command, args []string) error {
	cfg, log, err := cmdutil.Setup(cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDescribe, err)
	}

	outPath, err := cmd.Flags().GetString(FlagOut)
	if err != nil {
		return err
	}
	if outPath != "" && len(args) > 1 {
		return fmt.Errorf("%w: --%s takes a single table", ErrDescribe, FlagOut)
	}

	loc, err := cmd.Flags().GetString(FlagLocale)
	if err != nil {
		return err
	}

	store := cfg.Store()

	p := cmdutil.NewProgress()
	bar := cmdutil.AddCountBar(p, "describing", len(args))
	start := time.Now()

	described := make([]*schema.FeatureSchema, len(args))
	for i, name := range args {
		t, err := cmdutil.ReadTable(cfg, name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDescribe, err)
		}

		fs, err := schema.Describe(t)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrDescribe, name, err)
		}

		stem := tableio.Stem(name)

		// Cleaning settings are edited by hand and survive re-describing.
		prior, err := store.Load(stem)
		if err != nil {
			log.Debug("No previous feature schema", "table", stem, "error", err)
		} else {
			fs.SpecialCategories = prior.SpecialCategories
			fs.Locale = prior.Locale
		}
		if loc != "" {
			fs.Locale = loc
		}

		if outPath != "" {
			err = writeDocument(outPath, fs)
		} else {
			err = store.Save(stem, fs)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDescribe, err)
		}
		log.Info("Described table", "table", stem, "rows", t.Rows(), "columns", len(fs.Columns))

		described[i] = fs
		bar.IncrBy(1, time.Since(start))
	}
	p.Wait()

	out := cmd.OutOrStdout()
	for i, fs := range described {
		_, err = fmt.Fprintf(out, "%s (%s)\n", tableio.Stem(args[i]), fs.Language())
		if err != nil {
			return err
		}
		printColumns(out, fs)
	}

	return nil
}

func writeDocument(path string, fs *schema.FeatureSchema) error {
	data, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding feature schema: %w", err)
	}
	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}
	return nil
}

func printColumns(w io.Writer, fs *schema.FeatureSchema) {
	tw := cmdutil.NewTable(w, "Column", "Kind", "Non-null", "Null %", "Statistics")
	for _, c := range fs.Columns {
		tw.Append([]string{
			c.Name,
			c.Kind().String(),
			strconv.Itoa(c.NonNull),
			strconv.FormatFloat(c.NullPercentage, 'f', 1, 64),
			formatStats(c.Stats),
		})
	}
	tw.Render()
}

func formatStats(stats schema.ColumnStats) string {
	switch s := stats.(type) {
	case schema.NumericStats:
		return fmt.Sprintf("min %s\nmax %s\nmean %s\nstd %s",
			formatFloat(s.Min), formatFloat(s.Max), formatFloat(s.Mean), formatFloat(s.Std))
	case schema.CategoricalStats:
		lines := []string{fmt.Sprintf("%d unique", s.UniqueValues)}
		for _, v := range s.TopValues {
			lines = append(lines, fmt.Sprintf("%s: %d", v.Value, v.Count))
		}
		return strings.Join(lines, "\n")
	case schema.DateStats:
		return fmt.Sprintf("from %s\nto %s", formatTime(s.Min), formatTime(s.Max))
	case schema.TextStats:
		maxLength := "-"
		if s.MaxLength != nil {
			maxLength = strconv.Itoa(*s.MaxLength)
		}
		return fmt.Sprintf("mean length %s\nmax length %s", formatFloat(s.MeanLength), maxLength)
	default:
		panic(fmt.Sprintf("unhandled column stats %T", stats))
	}
}

func formatFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return cmdutil.FormatFloat(*f)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(table.TimeLayout)
}
