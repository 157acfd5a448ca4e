package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/sdejongh/dupnorris/pkg/catalog"
)

// CatalogFlags holds catalog command flags
type CatalogFlags struct {
	Scan   ScanFlags
	Output string
}

var catalogFlags CatalogFlags

// NewCatalogCommand creates the catalog command
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [path]",
		Short: "List the files a scan would consider",
		Long: heredoc.Doc(`
			Print the regular files beneath path (default: the current
			directory), one root-relative path per line, in the order a scan
			visits them. Symlinks and special files are skipped.

			Paths matching the configured exclude patterns (by default .git/
			and node_modules/) are left out. Pass --exclude= to list everything.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: runCatalog,
	}

	addScanFlags(cmd, &catalogFlags.Scan)
	cmd.Flags().StringVarP(&catalogFlags.Output, "output", "o", "human", "output format: human, json")

	return cmd
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	applyScanFlags(cmd, cfg, &catalogFlags.Scan)
	if err := cfg.Validate(); err != nil {
		return err
	}

	root, err := rootArg(args)
	if err != nil {
		return err
	}

	entries, err := catalog.Catalog(ctx, root, catalogOptions(cfg))
	if err != nil {
		return fmt.Errorf("catalog failed: %w", err)
	}

	out := cmd.OutOrStdout()
	paths := catalog.Paths(entries)

	switch catalogFlags.Output {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(paths)
	case "human":
		for _, p := range paths {
			fmt.Fprintln(out, p)
		}
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (valid: human, json)", catalogFlags.Output)
	}
}
