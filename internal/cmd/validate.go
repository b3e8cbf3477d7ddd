package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/benchrunner/internal/config"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the benchmark configuration",
		Long: `Load and validate the benchmark configuration, checking for:
  - A non-empty run command
  - A trial count of at least 1
  - A non-empty output file path
  - A known log level
  - A database path when history is enabled

Prints the effective settings (defaults merged with the config file).

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigFromFlags(cmd)
			if err != nil {
				return err
			}
			return validateConfigWithOutput(cfg, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .benchrunner/config.yaml)")

	return cmd
}

// validateConfigWithOutput validates a config and prints the effective
// settings to the given writer (injectable for testing).
func validateConfigWithOutput(cfg *config.Config, output io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Fprintf(output, "Configuration is valid.\n\n")
	fmt.Fprintf(output, "Effective settings:\n")
	fmt.Fprintf(output, "  Clean command: %s\n", cfg.CleanCommand)
	fmt.Fprintf(output, "  Build command: %s\n", cfg.BuildCommand)
	fmt.Fprintf(output, "  Run command:   %s\n", cfg.RunCommand)
	fmt.Fprintf(output, "  Trials:        %d\n", cfg.Trials)
	fmt.Fprintf(output, "  Output file:   %s\n", cfg.OutputFile)
	if cfg.WorkDir != "" {
		fmt.Fprintf(output, "  Work dir:      %s\n", cfg.WorkDir)
	}
	fmt.Fprintf(output, "  Log level:     %s\n", cfg.LogLevel)
	if cfg.History.Enabled {
		fmt.Fprintf(output, "  History:       enabled (%s)\n", cfg.History.DBPath)
	} else {
		fmt.Fprintf(output, "  History:       disabled\n")
	}

	return nil
}
