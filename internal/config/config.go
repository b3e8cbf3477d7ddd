// Package config loads and validates benchrunner configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// HistoryConfig represents benchmark history storage configuration.
type HistoryConfig struct {
	// Enabled enables recording of completed runs to the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`
}

// Config represents benchrunner configuration options.
type Config struct {
	// CleanCommand is the shell command that removes build artifacts
	CleanCommand string `yaml:"clean_command"`

	// BuildCommand is the shell command that rebuilds the benchmarked program
	BuildCommand string `yaml:"build_command"`

	// RunCommand is the shell command that executes one timed trial
	RunCommand string `yaml:"run_command"`

	// Trials is the number of timed trials per run
	Trials int `yaml:"trials"`

	// OutputFile is the path of the CSV report
	OutputFile string `yaml:"output_file"`

	// WorkDir is the working directory for all commands (empty = current dir)
	WorkDir string `yaml:"work_dir"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// History contains history storage configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values.
// The command defaults mirror a make-based serial build.
func DefaultConfig() *Config {
	return &Config{
		CleanCommand: "make clean",
		BuildCommand: "make serial",
		RunCommand:   "make run_serial",
		Trials:       3,
		OutputFile:   "benchmark.csv",
		WorkDir:      "",
		LogLevel:     "info",
		History: HistoryConfig{
			Enabled: false,
			DBPath:  ".benchrunner/history.db",
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if fileCfg.CleanCommand != "" {
		cfg.CleanCommand = fileCfg.CleanCommand
	}
	if fileCfg.BuildCommand != "" {
		cfg.BuildCommand = fileCfg.BuildCommand
	}
	if fileCfg.RunCommand != "" {
		cfg.RunCommand = fileCfg.RunCommand
	}
	if fileCfg.Trials != 0 {
		cfg.Trials = fileCfg.Trials
	}
	if fileCfg.OutputFile != "" {
		cfg.OutputFile = fileCfg.OutputFile
	}
	if fileCfg.WorkDir != "" {
		cfg.WorkDir = fileCfg.WorkDir
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}

	// Merge the history section only if it was present at all, so an absent
	// section keeps the defaults while an explicit one wins field by field.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			historyMap, _ := historySection.(map[string]interface{})

			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = fileCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = fileCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .benchrunner/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".benchrunner", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values, so CLI flags take
// precedence over config file settings.
func (c *Config) MergeWithFlags(trials *int, outputFile *string, workDir *string, logLevel *string) {
	if trials != nil {
		c.Trials = *trials
	}
	if outputFile != nil {
		c.OutputFile = *outputFile
	}
	if workDir != nil {
		c.WorkDir = *workDir
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if c.RunCommand == "" {
		return fmt.Errorf("run_command cannot be empty")
	}

	if c.Trials < 1 {
		return fmt.Errorf("trials must be >= 1, got %d", c.Trials)
	}

	if c.OutputFile == "" {
		return fmt.Errorf("output_file cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}
