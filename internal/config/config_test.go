package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.ini")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[run]
seed = 42
max_batches = 10

[navigators]
target_size = 30
batch_size = 6

[arenas]
resource_limit = 2

[storage]
kind = sqlite
path = /tmp/syzygos.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, int64(42), cfg.Run.Seed)
	require.Equal(t, 10, cfg.Run.MaxBatches)
	require.Equal(t, 30, cfg.Navigators.TargetSize)
	require.Equal(t, 6, cfg.Navigators.BatchSize)
	require.Equal(t, 2, cfg.Arenas.ResourceLimit)
	require.Equal(t, "sqlite", cfg.Storage.Kind)

	// Untouched keys keep their defaults.
	require.Equal(t, Default().Arenas.TargetSize, cfg.Arenas.TargetSize)
	require.Equal(t, Default().Maze.Width, cfg.Maze.Width)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"zero batch size", "[navigators]\nbatch_size = 0\n"},
		{"seed count above target", "[arenas]\nseed_count = 50\ntarget_size = 10\n"},
		{"sqlite without path", "[storage]\nkind = sqlite\n"},
		{"unknown storage kind", "[storage]\nkind = redis\n"},
		{"tiny maze", "[maze]\nwidth = 3\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.contents))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	require.Error(t, err)
}

func TestValidateRequiresTerminationBound(t *testing.T) {
	cfg := Default()
	cfg.Run.MaxBatches = 0
	cfg.Run.MaxEvaluations = 0
	require.Error(t, cfg.Validate())

	cfg.Run.MaxEvaluations = 1000
	require.NoError(t, cfg.Validate())
}
