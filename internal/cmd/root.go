package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for benchrunner
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchrunner",
		Short: "Build-and-benchmark loop driver",
		Long: `Benchrunner automates a repeated build-and-benchmark loop: it cleans and
rebuilds a native program, runs it for a number of timed trials, extracts the
reported elapsed time from each trial's output, and writes per-trial and
average timings to a CSV report.

Commands and trial count are read from .benchrunner/config.yaml; CLI flags
override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
