package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// configName is the config file name without extension.
	configName = ".maxscore"
	// configType is the config file format.
	configType = "yaml"
	// envPrefix is the environment variable prefix for maxscore settings.
	envPrefix = "MAXSCORE"
	// envKeySeparator is the nested key separator in environment variable names.
	envKeySeparator = "_"
)

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// A missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Threshold: ThresholdConfig{
			Mode:       DefaultThresholdMode,
			Value:      DefaultThresholdValue,
			Percentile: DefaultThresholdPercentile,
		},
		Input: InputConfig{
			Format:       DefaultInputFormat,
			MaxSize:      DefaultInputMaxSize,
			RecordColumn: DefaultInputRecordColumn,
		},
		Output:  OutputConfig{Format: DefaultOutputFormat, Color: DefaultOutputColor},
		Cache:   CacheConfig{Enabled: DefaultCacheEnabled, Entries: DefaultCacheEntries},
		Logging: LoggingConfig{Level: DefaultLoggingLevel, JSON: DefaultLoggingJSON},
	}
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("threshold.mode", DefaultThresholdMode)
	viperCfg.SetDefault("threshold.value", DefaultThresholdValue)
	viperCfg.SetDefault("threshold.percentile", DefaultThresholdPercentile)

	viperCfg.SetDefault("input.format", DefaultInputFormat)
	viperCfg.SetDefault("input.max_size", DefaultInputMaxSize)
	viperCfg.SetDefault("input.record_column", DefaultInputRecordColumn)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.color", DefaultOutputColor)

	viperCfg.SetDefault("cache.enabled", DefaultCacheEnabled)
	viperCfg.SetDefault("cache.entries", DefaultCacheEntries)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.json", DefaultLoggingJSON)
}
