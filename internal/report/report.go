// Package report builds and persists benchmark timing reports.
//
// A report holds the parsed trial timings of one benchmark run plus the
// derived average. Rendering produces a spreadsheet-compatible CSV with a
// header row, one row per parsed trial, and a trailing aggregate row.
package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/harrison/benchrunner/internal/filelock"
)

// TrialResult records one successfully parsed trial.
type TrialResult struct {
	Trial   int     // 1-based trial index
	Seconds float64 // elapsed seconds reported by the benchmarked program
}

// Report aggregates the parsed trials of a single benchmark run.
// Average is the arithmetic mean over parsed trials only; trials whose
// output did not match the timing pattern are absent from Trials and do
// not contribute to the mean.
type Report struct {
	Trials    []TrialResult // parsed trials in execution order
	Attempted int           // trials attempted, including unparsed ones
	Average   float64       // mean elapsed seconds over parsed trials
	StartedAt time.Time     // when the run began
	Duration  time.Duration // total wall time of the run
}

// New builds a Report from the parsed trials of a run and computes the
// average. The caller is responsible for ensuring at least one trial parsed;
// with zero trials the average is reported as 0.
func New(trials []TrialResult, attempted int) *Report {
	var sum float64
	for _, tr := range trials {
		sum += tr.Seconds
	}

	var avg float64
	if len(trials) > 0 {
		avg = sum / float64(len(trials))
	}

	return &Report{
		Trials:    trials,
		Attempted: attempted,
		Average:   avg,
	}
}

// FormatSeconds renders a seconds value with the shortest representation
// that round-trips, e.g. 1.25 rather than 1.250000.
func FormatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// CSV renders the report as CSV text.
// Layout: header "Test Case,Time (s)", one "<trial>,<seconds>" row per
// parsed trial, and a final "Average,<mean>" row.
func (r *Report) CSV() string {
	var sb strings.Builder

	sb.WriteString("Test Case,Time (s)\n")
	for _, tr := range r.Trials {
		sb.WriteString(strconv.Itoa(tr.Trial))
		sb.WriteString(",")
		sb.WriteString(FormatSeconds(tr.Seconds))
		sb.WriteString("\n")
	}
	sb.WriteString("Average,")
	sb.WriteString(FormatSeconds(r.Average))
	sb.WriteString("\n")

	return sb.String()
}

// WriteFile persists the CSV rendering to path, creating or overwriting the
// file. The write is atomic and guarded by a file lock so a concurrent
// reader never observes a partial report.
func (r *Report) WriteFile(path string) error {
	return filelock.LockAndWrite(path, []byte(r.CSV()))
}
