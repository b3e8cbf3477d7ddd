package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CleanCommand != "make clean" {
		t.Errorf("CleanCommand = %q, want %q", cfg.CleanCommand, "make clean")
	}
	if cfg.BuildCommand != "make serial" {
		t.Errorf("BuildCommand = %q, want %q", cfg.BuildCommand, "make serial")
	}
	if cfg.RunCommand != "make run_serial" {
		t.Errorf("RunCommand = %q, want %q", cfg.RunCommand, "make run_serial")
	}
	if cfg.Trials != 3 {
		t.Errorf("Trials = %d, want 3", cfg.Trials)
	}
	if cfg.OutputFile != "benchmark.csv" {
		t.Errorf("OutputFile = %q, want %q", cfg.OutputFile, "benchmark.csv")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `clean_command: make distclean
build_command: make omp
run_command: make run_omp
trials: 10
output_file: OpenMP_513_513.csv
log_level: debug
history:
  enabled: true
  db_path: /tmp/bench.db
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.CleanCommand != "make distclean" {
		t.Errorf("CleanCommand = %q, want %q", cfg.CleanCommand, "make distclean")
	}
	if cfg.BuildCommand != "make omp" {
		t.Errorf("BuildCommand = %q, want %q", cfg.BuildCommand, "make omp")
	}
	if cfg.RunCommand != "make run_omp" {
		t.Errorf("RunCommand = %q, want %q", cfg.RunCommand, "make run_omp")
	}
	if cfg.Trials != 10 {
		t.Errorf("Trials = %d, want 10", cfg.Trials)
	}
	if cfg.OutputFile != "OpenMP_513_513.csv" {
		t.Errorf("OutputFile = %q, want %q", cfg.OutputFile, "OpenMP_513_513.csv")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.History.DBPath != "/tmp/bench.db" {
		t.Errorf("History.DBPath = %q, want %q", cfg.History.DBPath, "/tmp/bench.db")
	}
}

// TestLoadConfigPartialFile tests merging of partial config with defaults
func TestLoadConfigPartialFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `trials: 5
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Trials != 5 {
		t.Errorf("Trials = %d, want 5", cfg.Trials)
	}
	// Unset fields keep defaults
	if cfg.RunCommand != "make run_serial" {
		t.Errorf("RunCommand = %q, want default %q", cfg.RunCommand, "make run_serial")
	}
	if cfg.History.DBPath != ".benchrunner/history.db" {
		t.Errorf("History.DBPath = %q, want default", cfg.History.DBPath)
	}
}

// TestLoadConfigHistorySectionMerge tests that an explicit history section
// wins field by field
func TestLoadConfigHistorySectionMerge(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `history:
  enabled: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	// db_path not present in the section keeps its default
	if cfg.History.DBPath != ".benchrunner/history.db" {
		t.Errorf("History.DBPath = %q, want default", cfg.History.DBPath)
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}

	if cfg.Trials != 3 {
		t.Errorf("Trials = %d, want 3 (default)", cfg.Trials)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q (default)", cfg.LogLevel, "info")
	}
}

// TestLoadConfigInvalidYAML tests error handling for malformed YAML
func TestLoadConfigInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
trials: 5
run_command: [this is not valid
log_level: debug
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("LoadConfig() should error on malformed YAML")
	}
}

// TestLoadConfigFromDir tests loading from the .benchrunner directory
func TestLoadConfigFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, ".benchrunner")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `trials: 7
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfigFromDir(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfigFromDir() error = %v", err)
	}

	if cfg.Trials != 7 {
		t.Errorf("Trials = %d, want 7", cfg.Trials)
	}
}

// TestMergeWithFlags tests CLI flag precedence over config values
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()

	trials := 20
	output := "custom.csv"
	workDir := "/src/sandpile"
	logLevel := "debug"
	cfg.MergeWithFlags(&trials, &output, &workDir, &logLevel)

	if cfg.Trials != 20 {
		t.Errorf("Trials = %d, want 20", cfg.Trials)
	}
	if cfg.OutputFile != "custom.csv" {
		t.Errorf("OutputFile = %q, want %q", cfg.OutputFile, "custom.csv")
	}
	if cfg.WorkDir != "/src/sandpile" {
		t.Errorf("WorkDir = %q, want %q", cfg.WorkDir, "/src/sandpile")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}

	// Nil pointers leave values untouched
	cfg.MergeWithFlags(nil, nil, nil, nil)
	if cfg.Trials != 20 {
		t.Errorf("Trials = %d after nil merge, want 20", cfg.Trials)
	}
}

// TestValidate tests configuration validation rules
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty run command",
			modify:  func(c *Config) { c.RunCommand = "" },
			wantErr: true,
		},
		{
			name:    "zero trials",
			modify:  func(c *Config) { c.Trials = 0 },
			wantErr: true,
		},
		{
			name:    "negative trials",
			modify:  func(c *Config) { c.Trials = -1 },
			wantErr: true,
		},
		{
			name:    "empty output file",
			modify:  func(c *Config) { c.OutputFile = "" },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: true,
		},
		{
			name: "history enabled without db path",
			modify: func(c *Config) {
				c.History.Enabled = true
				c.History.DBPath = ""
			},
			wantErr: true,
		},
		{
			name:    "empty clean and build commands are allowed",
			modify:  func(c *Config) { c.CleanCommand = ""; c.BuildCommand = "" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
