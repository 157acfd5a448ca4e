package config

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Scan        ScanConfig        `yaml:"scan" ini:"scan" envconfig:"SCAN"`
	Performance PerformanceConfig `yaml:"performance" ini:"performance" envconfig:"PERFORMANCE"`
	Output      OutputConfig      `yaml:"output" ini:"output" envconfig:"OUTPUT"`
	Logging     LoggingConfig     `yaml:"logging" ini:"logging" envconfig:"LOGGING"`
	Exclude     []string          `yaml:"exclude" ini:"exclude" envconfig:"EXCLUDE"`
}

// ScanConfig holds traversal and verification settings
type ScanConfig struct {
	Recursive  bool            `yaml:"recursive" ini:"recursive" envconfig:"RECURSIVE"`
	Strategy   models.Strategy `yaml:"strategy" ini:"strategy" envconfig:"STRATEGY"`
	SkipHidden bool            `yaml:"skip_hidden" ini:"skip_hidden" envconfig:"SKIP_HIDDEN"`
	Strict     bool            `yaml:"strict" ini:"strict" envconfig:"STRICT"`

	// Walker is "sequential" or "parallel"
	Walker string `yaml:"walker" ini:"walker" envconfig:"WALKER"`

	// MinSize is a human size such as "1KB" or "4 MiB"
	MinSize string `yaml:"min_size" ini:"min_size" envconfig:"MIN_SIZE"`

	// Filter is an expression over path, name, ext, dir, size and mtime
	Filter string `yaml:"filter" ini:"filter" envconfig:"FILTER"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers    int    `yaml:"max_workers" ini:"max_workers" envconfig:"MAX_WORKERS"`
	BufferSize    int    `yaml:"buffer_size" ini:"buffer_size" envconfig:"BUFFER_SIZE"`
	HashAlgorithm string `yaml:"hash_algorithm" ini:"hash_algorithm" envconfig:"HASH_ALGORITHM"`

	// BandwidthLimit caps content reads per second, e.g. "20MB" (empty = unlimited)
	BandwidthLimit string `yaml:"bandwidth_limit" ini:"bandwidth_limit" envconfig:"BANDWIDTH_LIMIT"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format" ini:"format" envconfig:"FORMAT"`       // "human" or "json"
	Progress bool   `yaml:"progress" ini:"progress" envconfig:"PROGRESS"` // Show progress bar on a terminal
	Quiet    bool   `yaml:"quiet" ini:"quiet" envconfig:"QUIET"`          // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled" ini:"enabled" envconfig:"ENABLED"`
	Format     string `yaml:"format" ini:"format" envconfig:"FORMAT"` // "json" or "text"
	Level      string `yaml:"level" ini:"level" envconfig:"LEVEL"`    // "debug", "info", "warn", "error"
	File       string `yaml:"file" ini:"file" envconfig:"FILE"`       // Log file path (empty = stderr)
	MaxSize    string `yaml:"max_size" ini:"max_size" envconfig:"MAX_SIZE"`
	MaxBackups int    `yaml:"max_backups" ini:"max_backups" envconfig:"MAX_BACKUPS"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Recursive: true,
			Strategy:  models.StrategyRepresentative,
			Walker:    "sequential",
			MinSize:   "0",
		},
		Performance: PerformanceConfig{
			MaxWorkers:    5,
			BufferSize:    65536,
			HashAlgorithm: "sha256",
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Format:     "text",
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
		Exclude: []string{
			".git/",
			"node_modules/",
		},
	}
}

// MinSizeBytes parses Scan.MinSize
func (c *Config) MinSizeBytes() (int64, error) {
	return parseSize("scan.min_size", c.Scan.MinSize)
}

// BandwidthLimitBytes parses Performance.BandwidthLimit
func (c *Config) BandwidthLimitBytes() (int64, error) {
	return parseSize("performance.bandwidth_limit", c.Performance.BandwidthLimit)
}

// LogMaxSizeBytes parses Logging.MaxSize
func (c *Config) LogMaxSizeBytes() (int64, error) {
	return parseSize("logging.max_size", c.Logging.MaxSize)
}

func parseSize(field, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, &models.ValidationError{Field: field, Message: fmt.Sprintf("invalid size %q", s)}
	}
	return int64(n), nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Scan.Strategy.Validate(); err != nil {
		return &models.ValidationError{Field: "scan.strategy", Message: "must be 'representative' or 'hash'"}
	}

	validWalkers := map[string]bool{"sequential": true, "parallel": true}
	if !validWalkers[c.Scan.Walker] {
		return &models.ValidationError{
			Field:   "scan.walker",
			Message: "must be 'sequential' or 'parallel'",
		}
	}

	if _, err := c.MinSizeBytes(); err != nil {
		return err
	}

	if _, err := c.BandwidthLimitBytes(); err != nil {
		return err
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	validHashes := map[string]bool{"sha256": true, "md5": true}
	if !validHashes[c.Performance.HashAlgorithm] {
		return &models.ValidationError{
			Field:   "performance.hash_algorithm",
			Message: "must be 'sha256' or 'md5'",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if _, err := c.LogMaxSizeBytes(); err != nil {
		return err
	}

	return nil
}
