// Package cmdutil holds the plumbing shared by the evalboard command line
// tools.
package cmdutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/willbeason/evalboard/pkg/config"
	"github.com/willbeason/evalboard/pkg/scheme"
	"github.com/willbeason/evalboard/pkg/table"
	"github.com/willbeason/evalboard/pkg/tableio"
)

const (
	FlagConfig  = "config"
	FlagVerbose = "verbose"
)

// AddFlags registers the flags every tool accepts.
func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(FlagConfig, "", "path to a YAML configuration file")
	cmd.PersistentFlags().BoolP(FlagVerbose, "v", false, "log debug messages")
}

// NewLogger writes colored logs to stderr, leaving stdout to tables.
func NewLogger(verbose bool) *slog.Logger {
	return newLogger(os.Stderr, verbose)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.TimeOnly,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if s, ok := a.Value.Any().(string); ok && s == "" {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Setup loads the configuration named by --config and builds the logger
// --verbose asks for.
func Setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	verbose, err := cmd.Flags().GetBool(FlagVerbose)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("getting verbose flag: %w", err)
	}
	path, err := cmd.Flags().GetString(FlagConfig)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("getting config flag: %w", err)
	}

	log := NewLogger(verbose)

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	err = cfg.Validate()
	if err != nil {
		return config.Config{}, nil, err
	}

	log.Debug("Loaded configuration", "path", path,
		"upload_dir", cfg.UploadDir, "cleaned_dir", cfg.CleanedDir, "features_dir", cfg.FeaturesDir)
	return cfg, log, nil
}

// ReadTable reads name as a path if a file exists there, and otherwise as the
// name of an uploaded scheme.
func ReadTable(cfg config.Config, name string) (*table.Table, error) {
	info, err := os.Stat(name)
	if err == nil && !info.IsDir() {
		return tableio.ReadFile(name)
	}
	return scheme.NewDir(cfg.UploadDir).Open(name)
}
