package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/willbeason/evalboard/pkg/cleaning"
	"github.com/willbeason/evalboard/pkg/cmdutil"
	"github.com/willbeason/evalboard/pkg/config"
	"github.com/willbeason/evalboard/pkg/schema"
	"github.com/willbeason/evalboard/pkg/scheme"
	"github.com/willbeason/evalboard/pkg/table"
	"github.com/willbeason/evalboard/pkg/tableio"
)

const (
	FlagFile     = "file"
	FlagOutput   = "output"
	FlagGenerate = "generate"
	FlagRows     = "rows"
	FlagSeed     = "seed"
	FlagSchema   = "schema"
	FlagList     = "list"

	timestampLayout = "20060102_150405"
)

func init() {
	cmdutil.AddFlags(&cmd)
	cmd.Flags().StringP(FlagFile, "f", "", "uploaded table to clean")
	cmd.Flags().StringP(FlagOutput, "o", "", "output file name in the cleaned directory (default: <name>_cleaned_<time>.xlsx)")
	cmd.Flags().Bool(FlagGenerate, false, "simulate a new table from the schema instead of cleaning the uploaded one")
	cmd.Flags().Int(FlagRows, 0, "rows to simulate with --generate (default: from configuration)")
	cmd.Flags().Int64(FlagSeed, 0, "random seed (default: from configuration)")
	cmd.Flags().String(FlagSchema, "", "feature schema document (default: the stored schema of the uploaded table)")
	cmd.Flags().BoolP(FlagList, "l", false, "list the uploaded tables and exit")
}

func main() {
	err := cmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cmd = cobra.Command{
	Use:     "clean-data --file NAME | --list",
	Short:   "cleans an uploaded indicator table or generates a simulated one",
	Args:    cobra.NoArgs,
	Version: "0.1.0",
	RunE:    runE,
}

var ErrCleanData = errors.New("cleaning data")

func runE(cmd *cobra.Command, _ []string) error {
	cfg, log, err := cmdutil.Setup(cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCleanData, err)
	}

	uploads := scheme.NewDir(cfg.UploadDir)

	list, err := cmd.Flags().GetBool(FlagList)
	if err != nil {
		return err
	}
	if list {
		return listUploads(cmd, uploads)
	}

	name, err := cmd.Flags().GetString(FlagFile)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: one of --%s or --%s is required", ErrCleanData, FlagFile, FlagList)
	}

	fs, err := getSchema(cmd, cfg, tableio.Stem(name))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCleanData, err)
	}

	seed, err := getSeed(cmd, cfg)
	if err != nil {
		return fmt.Errorf("%w: getting seed: %w", ErrCleanData, err)
	}
	rng := cleaning.NewRand(seed)

	runID := uuid.New()
	log = log.With("run", runID.String())

	generate, err := cmd.Flags().GetBool(FlagGenerate)
	if err != nil {
		return err
	}

	var (
		cleaned     *table.Table
		report      cleaning.Report
		defaultName string
	)
	if generate {
		rows, err := getRows(cmd, cfg)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCleanData, err)
		}
		log.Info("Generating table", "schema", tableio.Stem(name), "rows", rows, "seed", seed)

		cleaned, report, err = cleaning.Generate(fs, rows, rng)
		if err != nil {
			return fmt.Errorf("%w: generating from %q: %w", ErrCleanData, name, err)
		}
		defaultName = fmt.Sprintf("%s_generated_%s_%s%s",
			tableio.Stem(name), runID.String()[:8], time.Now().Format(timestampLayout), tableio.XLSXExt)
	} else {
		t, err := uploads.Open(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCleanData, err)
		}
		log.Info("Cleaning table", "file", name, "rows", t.Rows(), "seed", seed)

		cleaned, report, err = cleaning.Clean(t, fs, rng)
		if err != nil {
			return fmt.Errorf("%w: cleaning %q: %w", ErrCleanData, name, err)
		}
		defaultName = fmt.Sprintf("%s_cleaned_%s%s",
			tableio.Stem(name), time.Now().Format(timestampLayout), tableio.XLSXExt)
	}
	logReport(log, report)

	outName, err := cmd.Flags().GetString(FlagOutput)
	if err != nil {
		return err
	}
	if outName == "" {
		outName = defaultName
	}

	out, err := scheme.NewDir(cfg.CleanedDir).Add(outName, cleaned)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCleanData, err)
	}
	log.Info("Wrote table", "path", out.Path, "rows", cleaned.Rows(), "bytes", out.Size)

	return nil
}

func listUploads(cmd *cobra.Command, uploads scheme.Dir) error {
	files, err := uploads.List()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCleanData, err)
	}

	tw := cmdutil.NewTable(cmd.OutOrStdout(), "File", "Size (bytes)", "Uploaded")
	for _, f := range files {
		tw.Append([]string{f.Name, strconv.FormatInt(f.Size, 10), f.ModTime.Format(time.DateTime)})
	}
	tw.Render()
	return nil
}

// getSchema reads --schema if given, and otherwise the stored schema of the
// table named stem.
func getSchema(cmd *cobra.Command, cfg config.Config, stem string) (*schema.FeatureSchema, error) {
	path, err := cmd.Flags().GetString(FlagSchema)
	if err != nil {
		return nil, err
	}
	if path != "" {
		return schema.LoadFile(path)
	}
	return cfg.Store().Load(stem)
}

func getSeed(cmd *cobra.Command, cfg config.Config) (int64, error) {
	// Check if the user set the seed manually.
	seedSet := false
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name == FlagSeed {
			seedSet = true
		}
	})

	if !seedSet {
		return cfg.Seed, nil
	}
	return cmd.Flags().GetInt64(FlagSeed)
}

func getRows(cmd *cobra.Command, cfg config.Config) (int, error) {
	rows, err := cmd.Flags().GetInt(FlagRows)
	if err != nil {
		return 0, err
	}
	switch {
	case rows == 0:
		return cfg.Rows, nil
	case rows < 0:
		return 0, fmt.Errorf("--%s must be positive, got %d", FlagRows, rows)
	default:
		return rows, nil
	}
}

func logReport(log *slog.Logger, r cleaning.Report) {
	log.Info("Cleaned table",
		"rows_in", r.RowsIn,
		"rows_out", r.RowsOut,
		"duplicates_removed", r.DuplicatesRemoved,
		"imputed", r.CellsImputed,
		"perturbed", r.CellsPerturbed,
		"special", r.CellsSpecial,
		"coerced", r.CellsCoerced,
		"clipped", r.CellsClipped,
	)
}
