package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/maxscore/pkg/config"
)

const (
	testPercentile   = 0.9
	testCacheEntries = 16
	testColumn       = 3
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".maxscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_NoFile_UsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultThresholdMode, cfg.Threshold.Mode)
	assert.InDelta(t, config.DefaultThresholdPercentile, cfg.Threshold.Percentile, 1e-12)
	assert.Equal(t, config.DefaultInputFormat, cfg.Input.Format)
	assert.Equal(t, config.DefaultInputMaxSize, cfg.Input.MaxSize)
	assert.Equal(t, config.DefaultInputRecordColumn, cfg.Input.RecordColumn)
	assert.Equal(t, config.DefaultOutputFormat, cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, config.DefaultCacheEntries, cfg.Cache.Entries)
	assert.Equal(t, config.DefaultLoggingLevel, cfg.Logging.Level)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `threshold:
  mode: percentile
  percentile: 0.9
input:
  format: records
  record_column: 3
  max_size: 1MiB
output:
  format: table
  color: false
cache:
  entries: 16
logging:
  level: debug
  json: true
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "percentile", cfg.Threshold.Mode)
	assert.InDelta(t, testPercentile, cfg.Threshold.Percentile, 1e-12)
	assert.Equal(t, "records", cfg.Input.Format)
	assert.Equal(t, testColumn, cfg.Input.RecordColumn)
	assert.Equal(t, "1MiB", cfg.Input.MaxSize)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, testCacheEntries, cfg.Cache.Entries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("MAXSCORE_THRESHOLD_MODE", "median")
	t.Setenv("MAXSCORE_CACHE_ENABLED", "false")

	cfg, err := config.LoadConfig(writeConfig(t, "threshold:\n  mode: mean\n"))
	require.NoError(t, err)

	assert.Equal(t, "median", cfg.Threshold.Mode)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "threshold: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "mode", content: "threshold:\n  mode: mode\n", want: config.ErrInvalidThresholdMode},
		{name: "percentile", content: "threshold:\n  percentile: 1.5\n", want: config.ErrInvalidPercentile},
		{name: "input_format", content: "input:\n  format: csv\n", want: config.ErrInvalidInputFormat},
		{name: "record_column", content: "input:\n  record_column: 4\n", want: config.ErrInvalidRecordColumn},
		{name: "max_size", content: "input:\n  max_size: lots\n", want: config.ErrInvalidMaxSize},
		{name: "cache_entries", content: "cache:\n  entries: -1\n", want: config.ErrInvalidCacheEntries},
		{name: "log_level", content: "logging:\n  level: chatty\n", want: config.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}
