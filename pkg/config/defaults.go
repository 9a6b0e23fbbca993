// Package config provides YAML-based configuration for maxscore.
package config

// Threshold defaults.
const (
	DefaultThresholdMode       = "fixed"
	DefaultThresholdValue      = 0.0
	DefaultThresholdPercentile = 0.5
)

// Input defaults.
const (
	DefaultInputFormat       = "text"
	DefaultInputMaxSize      = "64MB"
	DefaultInputRecordColumn = 5
)

// Output defaults.
const (
	DefaultOutputFormat = "text"
	DefaultOutputColor  = true
)

// Cache defaults.
const (
	DefaultCacheEnabled = true
	DefaultCacheEntries = 128
)

// Logging defaults.
const (
	DefaultLoggingLevel = "info"
	DefaultLoggingJSON  = false
)
