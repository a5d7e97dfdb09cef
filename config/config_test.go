package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/avisser/celltrack/config"
	"github.com/avisser/celltrack/flowlink"
)

func TestDefaults(t *testing.T) {
	c := config.New()

	require.Equal(t, flowlink.DefaultWeights(), c.FlowWeights())

	linking := c.Linking(zerolog.Nop())
	require.Equal(t, 1.0, linking.Tolerance)
	require.Equal(t, 5, linking.MaxCandidates)

	consistency := c.Consistency(zerolog.Nop())
	require.Equal(t, 5, consistency.MinAgeForDivision)
	require.Equal(t, 10.0, consistency.MaxDistanceUm)

	resolution, err := c.Resolution()
	require.NoError(t, err)
	require.Equal(t, 2.0, resolution.PixelSizeZUm)
	require.Equal(t, 12.0, resolution.TimeIntervalMinutes)
}

func TestSetOverrides(t *testing.T) {
	c := config.New()
	c.Set("flow.division_weight", 45.0)
	c.Set("linking.tolerance", 2.0)

	require.Equal(t, 45.0, c.FlowWeights().Division)
	require.Equal(t, 2.0, c.Linking(zerolog.Nop()).Tolerance)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "celltrack.yaml")
	content := []byte("linking:\n  tolerance: 1.8\nconsistency:\n  max_distance_um: 7.5\nlogging:\n  level: warn\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	c := config.New()
	require.NoError(t, c.LoadFromFile(path))

	require.Equal(t, 1.8, c.Linking(zerolog.Nop()).Tolerance)
	require.Equal(t, 7.5, c.Consistency(zerolog.Nop()).MaxDistanceUm)
	require.Equal(t, "warn", c.LogLevel())
	// Untouched keys keep their defaults.
	require.Equal(t, 5, c.Linking(zerolog.Nop()).MaxCandidates)
}

func TestLoadFromMissingFile(t *testing.T) {
	c := config.New()
	require.Error(t, c.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestCreateLoggerHonorsLevel(t *testing.T) {
	c := config.New()
	c.Set("logging.level", "error")
	c.Set("logging.console", false)
	require.Equal(t, zerolog.ErrorLevel, c.CreateLogger().GetLevel())
}
