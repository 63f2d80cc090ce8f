package cmdutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/willbeason/evalboard/pkg/config"
	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/scheme"
	"github.com/willbeason/evalboard/pkg/table"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := newLogger(&buf, false)
	log.Debug("Hidden")
	log.Info("Scored scheme", "scheme", "2024", "empty", "")
	require.NotContains(t, buf.String(), "Hidden")
	require.Contains(t, buf.String(), "Scored scheme")
	require.NotContains(t, buf.String(), "empty=")

	buf.Reset()
	newLogger(&buf, true).Debug("Shown")
	require.Contains(t, buf.String(), "Shown")
}

func TestNewTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tw := NewTable(&buf, "name", "score")
	score := 86.666
	tw.Append([]string{"a", FormatScore(&score)})
	tw.Append([]string{"b", FormatScore(nil)})
	tw.Render()

	require.Contains(t, buf.String(), "86.67")
	require.Contains(t, buf.String(), "| b")
	require.Contains(t, buf.String(), "name")
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	require.Equal(t, "-", FormatCell(table.NullCell()))
	require.Equal(t, "0.5", FormatCell(table.NumberCell(0.5)))
	require.Equal(t, "1.23457e+06", FormatCell(table.NumberCell(1234567)))
	require.Equal(t, "A", FormatCell(table.TextCell("A")))
}

func TestAddFlags(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "tool", RunE: func(*cobra.Command, []string) error { return nil }}
	AddFlags(cmd)
	cmd.SetArgs([]string{"-v", "--config", "evalboard.yaml"})
	require.NoError(t, cmd.Execute())

	verbose, err := cmd.Flags().GetBool(FlagVerbose)
	require.NoError(t, err)
	require.True(t, verbose)

	path, err := cmd.Flags().GetString(FlagConfig)
	require.NoError(t, err)
	require.Equal(t, "evalboard.yaml", path)
}

func TestReadTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.UploadDir = filepath.Join(dir, "uploads")

	_, err := scheme.NewDir(cfg.UploadDir).Add("2024.csv", table.New("2024",
		table.NewColumn("a", table.Int64, table.NumberCell(1))))
	require.NoError(t, err)

	got, err := ReadTable(cfg, "2024.csv")
	require.NoError(t, err)
	require.Equal(t, 1, got.Rows())

	got, err = ReadTable(cfg, filepath.Join(cfg.UploadDir, "2024.csv"))
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, got.Names())

	_, err = ReadTable(cfg, "missing.csv")
	require.ErrorIs(t, err, evalerr.ErrInput)
}
