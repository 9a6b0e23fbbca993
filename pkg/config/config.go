package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/maxscore/pkg/observability"
	"github.com/Sumatoshi-tech/maxscore/pkg/seqio"
)

// Config is the top-level configuration struct for maxscore.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Threshold ThresholdConfig `mapstructure:"threshold"`
	Input     InputConfig     `mapstructure:"input"`
	Output    OutputConfig    `mapstructure:"output"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ThresholdConfig selects how the scoring threshold is derived.
type ThresholdConfig struct {
	Mode       string  `mapstructure:"mode"`
	Value      float64 `mapstructure:"value"`
	Percentile float64 `mapstructure:"percentile"`
}

// InputConfig describes how inputs are read.
type InputConfig struct {
	Format       string `mapstructure:"format"`
	MaxSize      string `mapstructure:"max_size"`
	RecordColumn int    `mapstructure:"record_column"`
}

// OutputConfig describes how results are rendered.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// CacheConfig bounds the in-process result cache.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Entries int  `mapstructure:"entries"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Known enumeration values.
var (
	ThresholdModes = []string{"fixed", "median", "mean", "percentile"}
	InputFormats   = []string{"text", "json", "records"}
)

// Sentinel errors for config validation.
var (
	// ErrInvalidThresholdMode indicates an unknown threshold mode.
	ErrInvalidThresholdMode = errors.New("threshold.mode must be one of fixed, median, mean, percentile")
	// ErrInvalidPercentile indicates a percentile outside [0, 1].
	ErrInvalidPercentile = errors.New("threshold.percentile must be between 0 and 1")
	// ErrInvalidInputFormat indicates an unknown input format.
	ErrInvalidInputFormat = errors.New("input.format must be one of text, json, records")
	// ErrInvalidRecordColumn indicates a record column that does not hold a number.
	ErrInvalidRecordColumn = errors.New("input.record_column must be 2, 3 or 5")
	// ErrInvalidMaxSize indicates an unparsable input size limit.
	ErrInvalidMaxSize = errors.New("input.max_size is not a valid size")
	// ErrInvalidCacheEntries indicates a negative cache size.
	ErrInvalidCacheEntries = errors.New("cache.entries must be non-negative")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level must be debug, info, warn or error")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if !slices.Contains(ThresholdModes, c.Threshold.Mode) {
		return fmt.Errorf("%w: %q", ErrInvalidThresholdMode, c.Threshold.Mode)
	}

	if c.Threshold.Percentile < 0 || c.Threshold.Percentile > 1 {
		return ErrInvalidPercentile
	}

	if !slices.Contains(InputFormats, c.Input.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidInputFormat, c.Input.Format)
	}

	switch c.Input.RecordColumn {
	case seqio.ColumnStart, seqio.ColumnEnd, seqio.ColumnMeasurement:
	default:
		return ErrInvalidRecordColumn
	}

	if _, err := seqio.ParseSize(c.Input.MaxSize); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMaxSize, c.Input.MaxSize)
	}

	if c.Cache.Entries < 0 {
		return ErrInvalidCacheEntries
	}

	if _, err := observability.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return nil
}
