package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sdejongh/dupnorris/internal/platform"
	"github.com/sdejongh/dupnorris/pkg/catalog"
	"github.com/sdejongh/dupnorris/pkg/compare"
	"github.com/sdejongh/dupnorris/pkg/config"
	"github.com/sdejongh/dupnorris/pkg/dupes"
	"github.com/sdejongh/dupnorris/pkg/filter"
	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
)

// loadConfig loads the config file and environment overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(globalFlags.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// rootArg returns the scan root, defaulting to the working directory
func rootArg(args []string) (string, error) {
	if len(args) == 0 {
		return ".", nil
	}
	if err := platform.ValidatePath(args[0]); err != nil {
		return "", err
	}
	return platform.NormalizePath(args[0]), nil
}

// applyScanFlags overrides config values with the traversal flags the user set
func applyScanFlags(cmd *cobra.Command, cfg *config.Config, f *ScanFlags) {
	if cmd.Flags().Changed("recursive") {
		cfg.Scan.Recursive = f.Recursive
	}
	// An explicit empty --exclude= clears the configured patterns
	if cmd.Flags().Changed("exclude") {
		cfg.Exclude = f.Exclude
	}
	if f.SkipHidden {
		cfg.Scan.SkipHidden = true
	}
	if f.Walker != "" {
		cfg.Scan.Walker = f.Walker
	}
	if f.Strict {
		cfg.Scan.Strict = true
	}
}

// applyFindFlags overrides config values with the find flags the user set
func applyFindFlags(cmd *cobra.Command, cfg *config.Config) error {
	applyScanFlags(cmd, cfg, &findFlags.Scan)

	if findFlags.Strategy != "" {
		cfg.Scan.Strategy = models.Strategy(findFlags.Strategy)
	}
	if findFlags.MinSize != "" {
		cfg.Scan.MinSize = findFlags.MinSize
	}
	if findFlags.Filter != "" {
		cfg.Scan.Filter = findFlags.Filter
	}

	// Parallel workers (default: 5)
	if findFlags.Parallel > 0 {
		cfg.Performance.MaxWorkers = findFlags.Parallel
	} else if cfg.Performance.MaxWorkers == 0 {
		cfg.Performance.MaxWorkers = dupes.DefaultMaxWorkers
	}
	if findFlags.Bandwidth != "" {
		cfg.Performance.BandwidthLimit = findFlags.Bandwidth
	}
	if findFlags.HashAlgorithm != "" {
		cfg.Performance.HashAlgorithm = findFlags.HashAlgorithm
	}

	if findFlags.Output != "" {
		cfg.Output.Format = findFlags.Output
	}
	if findFlags.NoProgress {
		cfg.Output.Progress = false
	}
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// A log file on the command line enables logging
	if findFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = findFlags.LogFile
	}
	if findFlags.LogFormat != "" {
		cfg.Logging.Format = findFlags.LogFormat
	}
	if findFlags.LogLevel != "" {
		cfg.Logging.Level = findFlags.LogLevel
	}
	if globalFlags.Verbose {
		cfg.Logging.Enabled = true
		cfg.Logging.Level = "debug"
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if findFlags.Report != "" && !validFormats[findFlags.ReportFormat] {
		return fmt.Errorf("invalid report format: %s (valid: human, json)", findFlags.ReportFormat)
	}

	return cfg.Validate()
}

// catalogOptions builds traversal options from configuration
func catalogOptions(cfg *config.Config) catalog.Options {
	return catalog.Options{
		Recursive:  cfg.Scan.Recursive,
		SkipHidden: cfg.Scan.SkipHidden,
		Exclude:    cfg.Exclude,
		Walker:     catalog.Walker(cfg.Scan.Walker),
		Strict:     cfg.Scan.Strict,
	}
}

// finderOptions builds scan options from configuration
func finderOptions(cfg *config.Config) (dupes.Options, error) {
	minSize, err := cfg.MinSizeBytes()
	if err != nil {
		return dupes.Options{}, err
	}

	bandwidth, err := cfg.BandwidthLimitBytes()
	if err != nil {
		return dupes.Options{}, err
	}

	match, err := filter.Compile(cfg.Scan.Filter)
	if err != nil {
		return dupes.Options{}, err
	}

	return dupes.Options{
		Catalog:        catalogOptions(cfg),
		Strategy:       cfg.Scan.Strategy,
		MaxWorkers:     cfg.Performance.MaxWorkers,
		MinSize:        minSize,
		Filter:         match,
		BufferSize:     cfg.Performance.BufferSize,
		HashAlgorithm:  compare.Algorithm(cfg.Performance.HashAlgorithm),
		BandwidthLimit: bandwidth,
	}, nil
}

// stderrIsTerminal reports whether stderr is attached to a terminal
func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// createLogger creates a logger based on configuration
func createLogger(cfg *config.Config) (logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NewNullLogger(), nil
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	maxSize, err := cfg.LogMaxSizeBytes()
	if err != nil {
		return nil, err
	}

	var format logging.Format
	switch cfg.Logging.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	return logging.New(logging.Config{
		Enabled:    true,
		Path:       cfg.Logging.File,
		Format:     format,
		Level:      level,
		MaxSize:    maxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		Color:      cfg.Logging.File == "" && stderrIsTerminal(),
	})
}

// createFormatter picks the output formatter. The progress bar is drawn only
// for human output on a terminal.
func createFormatter(cfg *config.Config, terminal bool) output.Formatter {
	format := cfg.Output.Format
	if format == "human" && cfg.Output.Progress && !cfg.Output.Quiet && terminal {
		format = "progress"
	}
	return output.New(format, cfg.Output.Quiet)
}
