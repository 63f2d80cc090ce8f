// Package config locates the evaluation data directories and holds the
// defaults of the command line tools.
//
// Settings come from, in increasing priority: built-in defaults, an optional
// YAML file, and EVALBOARD_* environment variables. A .env file in the working
// directory is loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/locale"
	"github.com/willbeason/evalboard/pkg/schema"
)

const envPrefix = "EVALBOARD_"

type Config struct {
	// UploadDir holds the uploaded scheme tables.
	UploadDir string `yaml:"upload_dir"`
	// CleanedDir receives cleaned and generated tables.
	CleanedDir string `yaml:"cleaned_dir"`
	// FeaturesDir holds one feature schema document per uploaded table.
	FeaturesDir string `yaml:"features_dir"`

	Seed int64 `yaml:"seed"`
	// Rows is the number of rows to simulate in generation mode.
	Rows   int    `yaml:"rows"`
	Locale string `yaml:"locale"`

	SchemaCacheTTL time.Duration `yaml:"schema_cache_ttl"`
	// Workers bounds the number of schemes scored at once.
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		UploadDir:      "data/uploaded_excel",
		CleanedDir:     "data/cleaned_excel",
		FeaturesDir:    "data/features",
		Seed:           42,
		Rows:           100,
		Locale:         locale.Default.String(),
		SchemaCacheTTL: 5 * time.Minute,
		Workers:        runtime.NumCPU(),
	}
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: loading .env: %w", evalerr.ErrConfiguration, err)
	}
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("%w: reading config %q: %w", evalerr.ErrConfiguration, path, err)
		}
		err = yaml.Unmarshal(data, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("%w: parsing config %q: %w", evalerr.ErrConfiguration, path, err)
		}
	}

	err := applyEnv(&cfg, lookup)
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	texts := map[string]*string{
		"UPLOAD_DIR":   &cfg.UploadDir,
		"CLEANED_DIR":  &cfg.CleanedDir,
		"FEATURES_DIR": &cfg.FeaturesDir,
		"LOCALE":       &cfg.Locale,
	}
	for key, field := range texts {
		if v, ok := lookup(envPrefix + key); ok {
			*field = v
		}
	}

	ints := map[string]*int{
		"ROWS":    &cfg.Rows,
		"WORKERS": &cfg.Workers,
	}
	for key, field := range ints {
		v, ok := lookup(envPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q: %w", evalerr.ErrConfiguration, envPrefix, key, v, err)
		}
		*field = n
	}

	if v, ok := lookup(envPrefix + "SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sSEED=%q: %w", evalerr.ErrConfiguration, envPrefix, v, err)
		}
		cfg.Seed = seed
	}

	if v, ok := lookup(envPrefix + "SCHEMA_CACHE_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sSCHEMA_CACHE_TTL=%q: %w", evalerr.ErrConfiguration, envPrefix, v, err)
		}
		cfg.SchemaCacheTTL = ttl
	}
	return nil
}

// Validate reports settings no tool can run with.
func (c Config) Validate() error {
	switch {
	case c.UploadDir == "":
		return fmt.Errorf("%w: upload_dir is empty", evalerr.ErrConfiguration)
	case c.CleanedDir == "":
		return fmt.Errorf("%w: cleaned_dir is empty", evalerr.ErrConfiguration)
	case c.FeaturesDir == "":
		return fmt.Errorf("%w: features_dir is empty", evalerr.ErrConfiguration)
	case c.Rows < 0:
		return fmt.Errorf("%w: rows must be non-negative, got %d", evalerr.ErrConfiguration, c.Rows)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive, got %d", evalerr.ErrConfiguration, c.Workers)
	case c.SchemaCacheTTL < 0:
		return fmt.Errorf("%w: schema_cache_ttl must be non-negative, got %v", evalerr.ErrConfiguration, c.SchemaCacheTTL)
	}
	return nil
}

// Store opens the schema store in FeaturesDir.
func (c Config) Store() *schema.Store {
	return schema.NewStore(c.FeaturesDir, c.SchemaCacheTTL)
}
