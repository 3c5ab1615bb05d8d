package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool

	logger = log.New(os.Stderr)
)

var rootCmd = &cobra.Command{
	Use:   "cleanpack",
	Short: "cleanpack - prepare a package directory for publishing",
	Long: `Cleanpack prepares an npm-style package directory for distribution.
It prunes the manifest, filters lifecycle scripts, deletes junk files,
strips comments from script files, and keeps source maps consistent with
both the edits and any file moves.

Run it on a staging copy of the package, not on your working tree.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case quiet:
			logger.SetLevel(log.ErrorLevel)
		case verbose:
			logger.SetLevel(log.DebugLevel)
		default:
			logger.SetLevel(log.InfoLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
