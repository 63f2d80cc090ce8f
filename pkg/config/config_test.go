package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/willbeason/evalboard/pkg/evalerr"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evalboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	got, err := load("", env(nil))
	require.NoError(t, err)
	require.Equal(t, Default(), got)
	require.Equal(t, "zh", got.Locale)
	require.Equal(t, int64(42), got.Seed)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
upload_dir: /srv/uploads
seed: 7
locale: en
schema_cache_ttl: 30s
`)

	got, err := load(path, env(nil))
	require.NoError(t, err)

	want := Default()
	want.UploadDir = "/srv/uploads"
	want.Seed = 7
	want.Locale = "en"
	want.SchemaCacheTTL = 30 * time.Second
	require.Equal(t, want, got)
}

func TestLoad_Env(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "seed: 7\nrows: 10\n")

	got, err := load(path, env(map[string]string{
		"EVALBOARD_SEED":             "9",
		"EVALBOARD_CLEANED_DIR":      "out",
		"EVALBOARD_WORKERS":          "2",
		"EVALBOARD_SCHEMA_CACHE_TTL": "1h",
	}))
	require.NoError(t, err)
	require.Equal(t, int64(9), got.Seed)
	require.Equal(t, 10, got.Rows)
	require.Equal(t, "out", got.CleanedDir)
	require.Equal(t, 2, got.Workers)
	require.Equal(t, time.Hour, got.SchemaCacheTTL)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad yaml", file: "seed: [1"},
		{name: "bad seed", env: map[string]string{"EVALBOARD_SEED": "forty-two"}},
		{name: "bad rows", env: map[string]string{"EVALBOARD_ROWS": "many"}},
		{name: "bad ttl", env: map[string]string{"EVALBOARD_SCHEMA_CACHE_TTL": "soon"}},
		{name: "negative rows", file: "rows: -1"},
		{name: "no workers", env: map[string]string{"EVALBOARD_WORKERS": "0"}},
		{name: "empty upload dir", file: `upload_dir: ""`},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := ""
			if tc.file != "" {
				path = writeConfig(t, tc.file)
			}
			_, err := load(path, env(tc.env))
			require.True(t, errors.Is(err, evalerr.ErrConfiguration), "got %v", err)
		})
	}

	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	require.True(t, errors.Is(err, evalerr.ErrConfiguration))
}
