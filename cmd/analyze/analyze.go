package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/willbeason/evalboard/pkg/analysis"
	"github.com/willbeason/evalboard/pkg/cmdutil"
	"github.com/willbeason/evalboard/pkg/schema"
	"github.com/willbeason/evalboard/pkg/tableio"
)

const (
	FlagSchema      = "schema"
	FlagProjections = "projections"
)

func main() {
	cmdutil.AddFlags(&cmd)
	cmd.Flags().String(FlagSchema, "", "feature schema document (default: the stored schema, or the table's own description)")
	cmd.Flags().Bool(FlagProjections, false, "print each row's principal component coordinates")

	err := cmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cmd = cobra.Command{
	Use:     "analyze FILE",
	Short:   "Correlate the numeric columns of a table and find their principal components",
	Args:    cobra.ExactArgs(1),
	Version: "0.1.0",
	RunE:    runE,
}

var ErrAnalyze = errors.New("analyzing table")

func runE(cmd *cobra.Command, args []string) error {
	cfg, log, err := cmdutil.Setup(cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAnalyze, err)
	}

	name := args[0]
	t, err := cmdutil.ReadTable(cfg, name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAnalyze, err)
	}

	schemaPath, err := cmd.Flags().GetString(FlagSchema)
	if err != nil {
		return err
	}

	var fs *schema.FeatureSchema
	if schemaPath != "" {
		fs, err = schema.LoadFile(schemaPath)
	} else {
		fs, err = cfg.Store().Load(tableio.Stem(name))
		if err != nil {
			log.Debug("Describing table without a stored schema", "table", t.Name, "error", err)
			fs, err = schema.Describe(t)
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAnalyze, err)
	}

	result, err := analysis.Analyze(t, fs)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrAnalyze, name, err)
	}
	log.Info("Analyzed table", "table", t.Name, "columns", len(result.Columns), "rows", result.Rows)

	projections, err := cmd.Flags().GetBool(FlagProjections)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printCorrelation(out, result)
	printEdges(out, result.Edges)
	printComponents(out, result.PCA)
	if projections {
		printProjections(out, result.PCA)
	}

	return nil
}

func printCorrelation(w io.Writer, result *analysis.Result) {
	tw := cmdutil.NewTable(w, append([]string{""}, result.Columns...)...)
	for i, row := range result.Correlation {
		line := []string{result.Columns[i]}
		for _, r := range row {
			line = append(line, strconv.FormatFloat(r, 'f', 3, 64))
		}
		tw.Append(line)
	}
	tw.Render()
}

func printEdges(w io.Writer, edges []analysis.Edge) {
	tw := cmdutil.NewTable(w, "Source", "Target", "Correlation")
	for _, e := range edges {
		tw.Append([]string{e.Source, e.Target, strconv.FormatFloat(e.Correlation, 'f', 3, 64)})
	}
	tw.Render()
}

func printComponents(w io.Writer, pca analysis.PCA) {
	tw := cmdutil.NewTable(w, "Component", "Explained variance")
	for i, ratio := range pca.ExplainedVarianceRatio {
		tw.Append([]string{"PC" + strconv.Itoa(i+1), strconv.FormatFloat(ratio*100, 'f', 1, 64) + "%"})
	}
	tw.Render()
}

func printProjections(w io.Writer, pca analysis.PCA) {
	header := []string{"Row"}
	for i := range pca.ExplainedVarianceRatio {
		header = append(header, "PC"+strconv.Itoa(i+1))
	}

	tw := cmdutil.NewTable(w, header...)
	for i, p := range pca.Projections {
		row := []string{strconv.Itoa(i + 1)}
		for _, v := range p {
			row = append(row, cmdutil.FormatFloat(v))
		}
		tw.Append(row)
	}
	tw.Render()
}
