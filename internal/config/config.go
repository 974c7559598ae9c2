// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// smithers tool runner.
//
// Configuration is TOML with sensible defaults, SMITHERS_* environment
// variable overrides, and validation. A Provider publishes immutable
// snapshots so budgets can be swapped while tools run.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/evmts/smithers-sub016/internal/logging"
	"github.com/evmts/smithers-sub016/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete tool runner configuration.
type Config struct {
	Runner RunnerConfig `toml:"runner"`
	Output OutputConfig `toml:"output"`
	Search SearchConfig `toml:"search"`
}

// RunnerConfig contains process-level settings.
type RunnerConfig struct {
	// WorkDir is the directory relative tool paths resolve against.
	WorkDir string `toml:"work_dir"`
	// SpillDir receives full copies of truncated shell output.
	// Empty disables spilling.
	SpillDir string `toml:"spill_dir"`
	// LogFile is the JSON log destination. Empty disables logging.
	LogFile string `toml:"log_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// HistoryDB is the SQLite execution history path. Empty disables history.
	HistoryDB string `toml:"history_db"`
}

// OutputConfig contains the truncation budgets.
type OutputConfig struct {
	// MaxLines bounds tool output line count (tail-keep tools).
	MaxLines int `toml:"max_lines"`
	// MaxBytes bounds tool output size in bytes.
	MaxBytes int `toml:"max_bytes"`
	// ReadMaxBytes bounds read_file output size in bytes.
	ReadMaxBytes int `toml:"read_max_bytes"`
}

// SearchConfig contains search tool settings.
type SearchConfig struct {
	// RgPath is the ripgrep binary invoked by grep and glob. When spawning
	// it fails the tools fall back to the in-process walker.
	RgPath string `toml:"rg_path"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Runner: RunnerConfig{
			WorkDir:  ".",
			LogLevel: "info",
		},
		Output: OutputConfig{
			MaxLines:     2000,
			MaxBytes:     51200,
			ReadMaxBytes: 262144,
		},
		Search: SearchConfig{
			RgPath: "rg",
		},
	}
}

// =============================================================================
// LOAD
// =============================================================================

// Load returns the configuration from path, or the defaults when path is
// empty. Environment overrides apply in both cases, then validation.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML config from %s: %w", path, err)
	}
	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Runner.WorkDir == "" {
		cfg.Runner.WorkDir = defaults.Runner.WorkDir
	}
	if cfg.Runner.LogLevel == "" {
		cfg.Runner.LogLevel = defaults.Runner.LogLevel
	}
	if cfg.Output.MaxLines == 0 {
		cfg.Output.MaxLines = defaults.Output.MaxLines
	}
	if cfg.Output.MaxBytes == 0 {
		cfg.Output.MaxBytes = defaults.Output.MaxBytes
	}
	if cfg.Output.ReadMaxBytes == 0 {
		cfg.Output.ReadMaxBytes = defaults.Output.ReadMaxBytes
	}
	if cfg.Search.RgPath == "" {
		cfg.Search.RgPath = defaults.Search.RgPath
	}
}

// ApplyEnvOverrides applies SMITHERS_* environment variables over the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SMITHERS_WORK_DIR"); v != "" {
		c.Runner.WorkDir = v
	}
	if v := os.Getenv("SMITHERS_SPILL_DIR"); v != "" {
		c.Runner.SpillDir = v
	}
	if v := os.Getenv("SMITHERS_LOG_FILE"); v != "" {
		c.Runner.LogFile = v
	}
	if v := os.Getenv("SMITHERS_LOG_LEVEL"); v != "" {
		c.Runner.LogLevel = v
	}
	if v := os.Getenv("SMITHERS_HISTORY_DB"); v != "" {
		c.Runner.HistoryDB = v
	}
	if v := os.Getenv("SMITHERS_RG_PATH"); v != "" {
		c.Search.RgPath = v
	}
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to a TOML file with a header comment.
// The write is atomic and the file is owner read/write only.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# smithers tool runner configuration")
	fmt.Fprintln(&buf, "# edit with care; the runner reloads this file on change")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Runner.WorkDir == "" {
		errs = append(errs, ValidationError{
			Field:   "runner.work_dir",
			Message: "must not be empty",
		})
	}
	if _, err := logging.ParseLevel(c.Runner.LogLevel); err != nil {
		errs = append(errs, ValidationError{
			Field:   "runner.log_level",
			Message: err.Error(),
		})
	}
	if c.Output.MaxLines <= 0 {
		errs = append(errs, ValidationError{
			Field:   "output.max_lines",
			Message: "must be positive",
		})
	}
	if c.Output.MaxBytes <= 0 {
		errs = append(errs, ValidationError{
			Field:   "output.max_bytes",
			Message: "must be positive",
		})
	}
	if c.Output.ReadMaxBytes <= 0 {
		errs = append(errs, ValidationError{
			Field:   "output.read_max_bytes",
			Message: "must be positive",
		})
	}
	if c.Search.RgPath == "" {
		errs = append(errs, ValidationError{
			Field:   "search.rg_path",
			Message: "must not be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
