package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/benchrunner/internal/history"
	"github.com/harrison/benchrunner/internal/report"
)

// NewHistoryCommand creates the 'benchrunner history' command group
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded benchmark runs",
		Long: `Inspect benchmark runs recorded in the history database.

History recording is opt-in: set history.enabled in the configuration to
record each completed run.`,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .benchrunner/config.yaml)")

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())

	return cmd
}

// newHistoryListCommand creates the 'benchrunner history list' command
func newHistoryListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent benchmark runs",
		Long: `List recorded benchmark runs, newest first, with their trial counts
and average timings.`,
		Args: cobra.NoArgs,
		RunE: runHistoryList,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 = no limit)")

	return cmd
}

// runHistoryList executes the history list command
func runHistoryList(cmd *cobra.Command, args []string) error {
	store, cleanup, err := openHistoryStore(cmd)
	if err != nil || store == nil {
		return err
	}
	defer cleanup()

	limit, _ := cmd.Flags().GetInt("limit")
	output := cmd.OutOrStdout()

	runs, err := store.ListRuns(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(output, "No recorded runs.\n")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(output, "%s  %s  %d/%d trials  avg %s s  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.TrialsParsed,
			r.TrialsAttempted,
			report.FormatSeconds(r.AverageSecs),
			r.RunCommand,
		)
	}

	return nil
}

// newHistoryShowCommand creates the 'benchrunner history show' command
func newHistoryShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-trial timings for a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}

	return cmd
}

// runHistoryShow executes the history show command
func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, cleanup, err := openHistoryStore(cmd)
	if err != nil || store == nil {
		return err
	}
	defer cleanup()

	output := cmd.OutOrStdout()

	run, err := store.GetRun(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("run not found: %s", args[0])
	}

	printRunDetail(output, run)
	return nil
}

// printRunDetail renders one run with its per-trial rows.
func printRunDetail(output io.Writer, run *history.RunRecord) {
	bold := color.New(color.Bold)

	fmt.Fprintf(output, "%s %s\n", bold.Sprint("Run:"), run.ID)
	fmt.Fprintf(output, "Started:     %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(output, "Duration:    %s\n", run.Duration.Round(time.Millisecond))
	fmt.Fprintf(output, "Run command: %s\n", run.RunCommand)
	fmt.Fprintf(output, "Output file: %s\n", run.OutputFile)
	fmt.Fprintf(output, "Trials:      %d attempted, %d parsed\n", run.TrialsAttempted, run.TrialsParsed)
	for _, tr := range run.Trials {
		fmt.Fprintf(output, "  Trial %d: %s s\n", tr.Trial, report.FormatSeconds(tr.Seconds))
	}
	fmt.Fprintf(output, "Average:     %s s\n", report.FormatSeconds(run.AverageSecs))
}

// openHistoryStore loads the configuration and opens the history database.
// Returns a nil store (and nil error) with a friendly message when the
// database does not exist yet.
func openHistoryStore(cmd *cobra.Command) (*history.Store, func(), error) {
	cfg, err := loadConfigFromFlags(cmd)
	if err != nil {
		return nil, nil, err
	}

	if _, err := os.Stat(cfg.History.DBPath); os.IsNotExist(err) {
		fmt.Fprintf(cmd.OutOrStdout(), "No history database at %s\n", cfg.History.DBPath)
		return nil, nil, nil
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open history store: %w", err)
	}

	return store, func() { store.Close() }, nil
}
