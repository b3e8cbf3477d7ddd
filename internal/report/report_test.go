package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewComputesAverage verifies the arithmetic mean over parsed trials
func TestNewComputesAverage(t *testing.T) {
	trials := []TrialResult{
		{Trial: 1, Seconds: 1.25},
		{Trial: 2, Seconds: 1.75},
		{Trial: 3, Seconds: 1.5},
	}

	rep := New(trials, 3)

	const tolerance = 1e-9
	if diff := rep.Average - 1.5; diff > tolerance || diff < -tolerance {
		t.Errorf("Average = %v, want 1.5", rep.Average)
	}
	if rep.Attempted != 3 {
		t.Errorf("Attempted = %d, want 3", rep.Attempted)
	}
}

// TestNewPartialTrials verifies the mean covers only parsed trials
func TestNewPartialTrials(t *testing.T) {
	trials := []TrialResult{
		{Trial: 1, Seconds: 1.0},
		{Trial: 3, Seconds: 3.0},
	}

	rep := New(trials, 3)

	const tolerance = 1e-9
	if diff := rep.Average - 2.0; diff > tolerance || diff < -tolerance {
		t.Errorf("Average = %v, want 2.0", rep.Average)
	}
}

// TestNewEmptyTrials verifies the zero-trials report carries a zero average
// rather than dividing by zero
func TestNewEmptyTrials(t *testing.T) {
	rep := New(nil, 3)

	if rep.Average != 0 {
		t.Errorf("Average = %v, want 0", rep.Average)
	}
}

// TestCSVLayout verifies the exact CSV rendering for a full run
func TestCSVLayout(t *testing.T) {
	rep := New([]TrialResult{
		{Trial: 1, Seconds: 1.25},
		{Trial: 2, Seconds: 1.75},
		{Trial: 3, Seconds: 1.5},
	}, 3)

	want := "Test Case,Time (s)\n" +
		"1,1.25\n" +
		"2,1.75\n" +
		"3,1.5\n" +
		"Average,1.5\n"

	if got := rep.CSV(); got != want {
		t.Errorf("CSV() = %q, want %q", got, want)
	}
}

// TestCSVRowCount verifies header + n data rows + 1 average row
func TestCSVRowCount(t *testing.T) {
	tests := []struct {
		name   string
		trials []TrialResult
	}{
		{
			name: "all trials parsed",
			trials: []TrialResult{
				{Trial: 1, Seconds: 0.5},
				{Trial: 2, Seconds: 0.6},
				{Trial: 3, Seconds: 0.7},
			},
		},
		{
			name: "trial absent after skip",
			trials: []TrialResult{
				{Trial: 1, Seconds: 0.5},
				{Trial: 3, Seconds: 0.7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := New(tt.trials, 3)

			lines := strings.Split(strings.TrimRight(rep.CSV(), "\n"), "\n")
			if len(lines) != len(tt.trials)+2 {
				t.Errorf("row count = %d, want %d", len(lines), len(tt.trials)+2)
			}
			if lines[0] != "Test Case,Time (s)" {
				t.Errorf("header = %q, want %q", lines[0], "Test Case,Time (s)")
			}
			if !strings.HasPrefix(lines[len(lines)-1], "Average,") {
				t.Errorf("last row = %q, want Average row", lines[len(lines)-1])
			}
		})
	}
}

// TestFormatSeconds verifies the shortest round-trip rendering
func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1.25, "1.25"},
		{1.5, "1.5"},
		{0.125, "0.125"},
		{10, "10"},
	}

	for _, tt := range tests {
		if got := FormatSeconds(tt.value); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

// TestWriteFile verifies the report is persisted and overwrites an existing
// file
func TestWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "benchmark.csv")

	if err := os.WriteFile(path, []byte("stale contents"), 0644); err != nil {
		t.Fatalf("failed to seed existing file: %v", err)
	}

	rep := New([]TrialResult{{Trial: 1, Seconds: 2.5}}, 1)

	if err := rep.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	if string(data) != rep.CSV() {
		t.Errorf("file contents = %q, want %q", string(data), rep.CSV())
	}
}
