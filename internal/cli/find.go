package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/sdejongh/dupnorris/pkg/dupes"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
)

// FindFlags holds find command flags
type FindFlags struct {
	Scan ScanFlags

	Strategy      string
	Parallel      int
	Bandwidth     string
	MinSize       string
	Filter        string
	HashAlgorithm string
	Output        string
	NoProgress    bool
	Report        string
	ReportFormat  string

	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var findFlags FindFlags

// NewFindCommand creates the find command
func NewFindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [path]",
		Short: "Find files with identical content",
		Long: heredoc.Doc(`
			Find groups of files with byte-identical content beneath path
			(default: the current directory).

			Files are grouped by size first; only files of equal size are read.
			The representative strategy compares each candidate byte by byte
			against the first unclaimed file of its size. The hash strategy
			digests candidates first and confirms each digest class by byte
			comparison, which reads less when many files share a size.

			Paths matching the configured exclude patterns (by default .git/
			and node_modules/) are skipped. Pass --exclude= to scan everything.

			Exit codes:
			  0  no duplicates
			  1  duplicates found
			  2  scan failed
			  3  scan cancelled
		`),
		Example: heredoc.Doc(`
			dupnorris find ~/Pictures
			dupnorris find --strategy hash --min-size 1MB /srv/backups
			dupnorris find --filter 'ext == ".jpg" && size > 4096' -o json .
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: runFind,
	}

	addScanFlags(cmd, &findFlags.Scan)

	cmd.Flags().StringVar(&findFlags.Strategy, "strategy", "", "verification strategy: representative, hash (default from config)")
	cmd.Flags().IntVarP(&findFlags.Parallel, "parallel", "p", 0, "number of parallel workers (default: 5)")
	cmd.Flags().StringVarP(&findFlags.Bandwidth, "bandwidth", "b", "", "limit content reads (e.g., \"10M\", \"1G\" per second)")
	cmd.Flags().StringVar(&findFlags.MinSize, "min-size", "", "ignore files smaller than this (e.g., \"1KB\", \"4MiB\")")
	cmd.Flags().StringVar(&findFlags.Filter, "filter", "", "expression selecting files, over path, name, ext, dir, size, mtime")
	cmd.Flags().StringVar(&findFlags.HashAlgorithm, "hash", "", "digest for the hash strategy: sha256, md5")
	cmd.Flags().StringVarP(&findFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().BoolVar(&findFlags.NoProgress, "no-progress", false, "do not draw the progress bar")
	cmd.Flags().StringVar(&findFlags.Report, "report", "", "write the duplicate groups to file")
	cmd.Flags().StringVar(&findFlags.ReportFormat, "report-format", "human", "report file format: human, json")

	// Logging flags
	cmd.Flags().StringVar(&findFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&findFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&findFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runFind(cmd *cobra.Command, args []string) error {
	report, err := executeFind(cmd, args)
	if report == nil {
		return err
	}

	// Exit with appropriate code; scan errors were already reported
	os.Exit(report.Status.ExitCode())
	return nil
}

// executeFind runs a scan and writes the optional report file. A nil report
// means the scan never started.
func executeFind(cmd *cobra.Command, args []string) (*models.ScanReport, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	root, err := rootArg(args)
	if err != nil {
		return nil, err
	}

	// Override config with command-line flags
	if err := applyFindFlags(cmd, cfg); err != nil {
		return nil, err
	}

	opts, err := finderOptions(cfg)
	if err != nil {
		return nil, err
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	formatter := createFormatter(cfg, stderrIsTerminal())
	if err := formatter.Start(cmd.OutOrStdout(), 0, 0, 0); err != nil {
		return nil, err
	}

	finder := dupes.NewFinder(root, opts, formatter, logger)
	report, err := finder.Find(ctx)
	if err != nil {
		return report, err
	}

	if findFlags.Report != "" {
		if err := output.WriteReport(report, findFlags.Report, findFlags.ReportFormat); err != nil {
			formatter.Error(err)
			report.Status = models.StatusFailed
			return report, err
		}
	}

	return report, nil
}
