// Package bench drives the clean/build/trial loop of a benchmark run.
//
// A Runner invokes external clean, build, and run commands through an
// injectable CommandRunner, extracts the reported elapsed time from each
// trial's combined output, and folds the parsed values into a report.
// Execution is fully sequential: each command blocks until it exits and its
// output is completely buffered before parsing begins.
package bench

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/benchrunner/internal/report"
)

// ErrNoTimings indicates that no trial in a run produced a parsable timing
// value, so no average can be computed and no report is produced.
var ErrNoTimings = errors.New("no trial produced a timing value")

// Logger receives progress and warning messages during a benchmark run.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
}

// Config holds the external commands and trial count for one benchmark run.
type Config struct {
	// CleanCommand is the shell command that removes build artifacts.
	// Executed best-effort; failures are warned about, never fatal.
	CleanCommand string

	// BuildCommand is the shell command that rebuilds the benchmarked
	// program. Executed under the same best-effort policy as CleanCommand.
	BuildCommand string

	// RunCommand is the shell command that executes one timed trial.
	// Its output must contain a line matching "Ran in (<float>) seconds".
	RunCommand string

	// Trials is the number of times RunCommand is invoked.
	Trials int
}

// Runner orchestrates a benchmark run: clean, build, then Trials sequential
// invocations of the run command.
type Runner struct {
	cfg    Config
	runner CommandRunner
	log    Logger
}

// New creates a Runner with the given configuration, command runner, and
// logger. A nil logger discards all messages.
func New(cfg Config, runner CommandRunner, log Logger) *Runner {
	if log == nil {
		log = noopLogger{}
	}
	return &Runner{
		cfg:    cfg,
		runner: runner,
		log:    log,
	}
}

// Clean executes the clean command. A nonzero exit status is surfaced as a
// warning only; cleaning failures never abort the run.
func (r *Runner) Clean(ctx context.Context) {
	r.bestEffort(ctx, "clean", r.cfg.CleanCommand)
}

// Build executes the build command under the same best-effort policy as
// Clean. Build failures surface downstream as trials whose output lacks the
// timing marker.
func (r *Runner) Build(ctx context.Context) {
	r.bestEffort(ctx, "build", r.cfg.BuildCommand)
}

// bestEffort runs a command whose failure should not abort the run.
// Empty commands are skipped.
func (r *Runner) bestEffort(ctx context.Context, stage, command string) {
	if command == "" {
		return
	}

	r.log.LogDebug(fmt.Sprintf("running %s command: %s", stage, command))

	output, err := r.runner.Run(ctx, command)
	if err != nil {
		msg := fmt.Sprintf("%s command %q failed: %v", stage, command, err)
		if trimmed := strings.TrimSpace(output); trimmed != "" {
			msg += fmt.Sprintf("\nOutput:\n%s", trimmed)
		}
		r.log.LogWarn(msg)
	}
}

// RunTrial executes one timed trial and extracts its elapsed seconds.
// Returns (seconds, true) when the combined output contains the timing
// marker. Returns (0, false) when it does not; a warning naming the trial
// index is emitted and the trial is skipped — not counted, not retried.
// A nonzero exit status from the run command is warned about but parsing is
// still attempted, since the timing line may have been printed before the
// failure.
func (r *Runner) RunTrial(ctx context.Context, index int) (float64, bool) {
	output, err := r.runner.Run(ctx, r.cfg.RunCommand)
	if err != nil {
		r.log.LogWarn(fmt.Sprintf("run command exited with error on trial %d: %v", index, err))
	}

	seconds, ok := ParseElapsed(output)
	if !ok {
		r.log.LogWarn(fmt.Sprintf("could not find timing in run %d", index))
		return 0, false
	}

	return seconds, true
}

// Run performs a full benchmark run: clean, build, then all trials in order.
// Successfully parsed trials are accumulated into a report with their
// arithmetic mean. Returns ErrNoTimings (wrapped) when every trial failed to
// parse, and the context error if the context is cancelled between trials.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	start := time.Now()

	r.Clean(ctx)
	r.Build(ctx)

	trials := make([]report.TrialResult, 0, r.cfg.Trials)
	for i := 1; i <= r.cfg.Trials; i++ {
		// Check context before each trial
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		seconds, ok := r.RunTrial(ctx, i)
		if !ok {
			continue
		}

		r.log.LogInfo(fmt.Sprintf("trial %d: %s seconds", i, report.FormatSeconds(seconds)))
		trials = append(trials, report.TrialResult{Trial: i, Seconds: seconds})
	}

	if len(trials) == 0 {
		return nil, fmt.Errorf("%w after %d trial(s)", ErrNoTimings, r.cfg.Trials)
	}

	rep := report.New(trials, r.cfg.Trials)
	rep.StartedAt = start
	rep.Duration = time.Since(start)

	return rep, nil
}

// noopLogger discards all messages.
type noopLogger struct{}

func (noopLogger) LogDebug(message string) {}
func (noopLogger) LogInfo(message string)  {}
func (noopLogger) LogWarn(message string)  {}
