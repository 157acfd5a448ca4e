package cli

import (
	"fmt"
	"runtime"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary via ldflags
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand assembles the dupnorris command tree.
// --version prints the build information.
func NewRootCommand(info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dupnorris",
		Short: "Find duplicate files by content",
		Long: heredoc.Doc(`
			dupnorris finds files with identical content in a directory tree.
			Files are bucketed by size and confirmed byte by byte, so reported
			duplicates are exact. Nothing is modified or deleted.
		`),
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate(versionTemplate(info))

	AddGlobalFlags(cmd)

	cmd.AddCommand(NewFindCommand())
	cmd.AddCommand(NewCatalogCommand())
	cmd.AddCommand(NewConfigCommand())

	return cmd
}

func versionTemplate(info BuildInfo) string {
	return fmt.Sprintf("{{.Name}} {{.Version}}\n  commit: %s\n  built:  %s\n  go:     %s %s/%s\n",
		info.Commit, info.Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
