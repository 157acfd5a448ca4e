package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file, .yaml or .ini (default is $HOME/.config/dupnorris/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"log debug messages to stderr unless a log file is set",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"print only the duplicate paths",
	)
}

// ScanFlags holds the traversal flags shared by find and catalog
type ScanFlags struct {
	Recursive  bool
	Exclude    []string
	SkipHidden bool
	Walker     string
	Strict     bool
}

// addScanFlags registers the traversal flags on cmd
func addScanFlags(cmd *cobra.Command, f *ScanFlags) {
	cmd.Flags().BoolVarP(&f.Recursive, "recursive", "r", true, "descend into subdirectories")
	cmd.Flags().StringSliceVar(&f.Exclude, "exclude", []string{}, "glob patterns to exclude, replacing the configured list (a trailing / matches directories)")
	cmd.Flags().BoolVar(&f.SkipHidden, "skip-hidden", false, "skip files and directories whose name starts with '.'")
	cmd.Flags().StringVar(&f.Walker, "walker", "", "traversal: sequential, parallel (default from config)")
	cmd.Flags().BoolVar(&f.Strict, "strict", false, "fail when the root is missing or not a directory")
}
