package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/benchrunner/internal/bench"
	"github.com/harrison/benchrunner/internal/config"
	"github.com/harrison/benchrunner/internal/history"
	"github.com/harrison/benchrunner/internal/logger"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a benchmark run",
		Long: `Execute a full benchmark run: clean, build, then the configured number of
timed trials of the run command.

Each trial's combined output is searched for a line matching
"Ran in (<seconds>) seconds"; trials without a match are skipped with a
warning and excluded from the report. The per-trial timings and their
arithmetic mean are written as CSV to the configured output file.

Configuration is loaded from .benchrunner/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  benchrunner run
  benchrunner run --trials 10
  benchrunner run --output results/serial.csv
  benchrunner run --config bench-omp.yaml --verbose
  benchrunner run --work-dir ../sandpile`,
		Args: cobra.NoArgs,
		RunE: runCommand,
	}

	// Add flags
	cmd.Flags().String("config", "", "Path to config file (default: .benchrunner/config.yaml)")
	cmd.Flags().Int("trials", 0, "Number of timed trials (overrides config)")
	cmd.Flags().String("output", "", "Path of the CSV report (overrides config)")
	cmd.Flags().String("work-dir", "", "Working directory for all commands")
	cmd.Flags().Bool("verbose", false, "Show detailed execution information")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	// Get flag values
	trialsFlag, _ := cmd.Flags().GetInt("trials")
	outputFlag, _ := cmd.Flags().GetString("output")
	workDirFlag, _ := cmd.Flags().GetString("work-dir")
	verbose, _ := cmd.Flags().GetBool("verbose")

	// Build flag pointers for merge (only explicitly set values)
	var trialsPtr *int
	if cmd.Flags().Changed("trials") {
		trialsPtr = &trialsFlag
	}

	var outputPtr *string
	if cmd.Flags().Changed("output") {
		outputPtr = &outputFlag
	}

	var workDirPtr *string
	if cmd.Flags().Changed("work-dir") {
		workDirPtr = &workDirFlag
	}

	var logLevelPtr *string
	if verbose {
		debugLevel := "debug"
		logLevelPtr = &debugLevel
	}

	// Merge CLI flags with config (flags take precedence)
	cfg.MergeWithFlags(trialsPtr, outputPtr, workDirPtr, logLevelPtr)

	// Validate merged configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Running %d trial(s) of %q...\n", cfg.Trials, cfg.RunCommand)

	// Create console logger for real-time progress
	consoleLog := logger.NewConsoleLogger(os.Stdout, cfg.LogLevel)

	// Create the runner with a real shell command runner
	runner := bench.New(bench.Config{
		CleanCommand: cfg.CleanCommand,
		BuildCommand: cfg.BuildCommand,
		RunCommand:   cfg.RunCommand,
		Trials:       cfg.Trials,
	}, bench.NewShellCommandRunner(cfg.WorkDir), consoleLog)

	// Execute the run. No timeout: a trial runs as long as the benchmarked
	// program needs.
	ctx := context.Background()
	rep, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("benchmark run failed: %w", err)
	}

	// Persist the CSV report
	if err := rep.WriteFile(cfg.OutputFile); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	consoleLog.LogSummary(rep)
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to: %s\n", cfg.OutputFile)

	// Record the run in the history database if enabled
	if cfg.History.Enabled {
		store, err := history.NewStore(cfg.History.DBPath)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Warning: failed to open history store: %v\n", err)
			return nil
		}
		defer store.Close()

		id, err := store.RecordRun(ctx, rep, cfg.RunCommand, cfg.OutputFile)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Warning: failed to record run history: %v\n", err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Run recorded as: %s\n", id)
	}

	return nil
}

// loadConfigFromFlags loads configuration from the --config flag path, or
// from the default .benchrunner/config.yaml when the flag is unset.
func loadConfigFromFlags(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
