// File: config.go
// Title: Engine Configuration
// Description: Loads engine configuration from TOML or YAML files with
//              environment variable overrides (EBS_ prefix) and validated
//              defaults. Configuration is read once at startup; nothing in the
//              engine reloads it at runtime.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	eberror "github.com/eblang/ebscript/core/error"
	"github.com/eblang/ebscript/utils/stringx"
)

// Format represents the configuration file format
type Format int

const (
	// FormatTOML represents TOML format (default)
	FormatTOML Format = iota

	// FormatYAML represents YAML format
	FormatYAML

	// FormatAuto auto-detects format from the file extension
	FormatAuto
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// EngineConfig holds all tunable limits and settings for the engine
type EngineConfig struct {
	// MaxSourceBytes caps the size of a compilation unit
	MaxSourceBytes int `toml:"max_source_bytes" yaml:"max_source_bytes"`

	// MaxCallDepth caps script function call nesting
	MaxCallDepth int `toml:"max_call_depth" yaml:"max_call_depth"`

	// MaxTypeNesting caps declared composite type nesting depth
	MaxTypeNesting int `toml:"max_type_nesting" yaml:"max_type_nesting"`

	// CallbackQueueSize is the capacity of the serialized callback queue
	CallbackQueueSize int `toml:"callback_queue_size" yaml:"callback_queue_size"`

	// LogLevel is the minimum log level (debug, info, warn, error)
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// HistoryFile is where the REPL persists its input history
	HistoryFile string `toml:"history_file" yaml:"history_file"`
}

// Default returns the configuration used when no file is given
func Default() EngineConfig {
	return EngineConfig{
		MaxSourceBytes:    1 << 20,
		MaxCallDepth:      256,
		MaxTypeNesting:    64,
		CallbackQueueSize: 128,
		LogLevel:          "info",
		HistoryFile:       filepath.Join(os.TempDir(), ".ebs_history"),
	}
}

// Load reads configuration from a file, applying defaults and env overrides
func Load(filePath string) (EngineConfig, error) {
	cfg := Default()

	if stringx.IsNotBlank(filePath) {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return cfg, eberror.Wrap(err, fmt.Sprintf("config file not readable: %s", filePath)).
				WithCode(eberror.CodeConfigError).
				WithOperation("config.Load").
				WithDetail("filePath", filePath)
		}

		format := detectFormat(filePath)
		switch format {
		case FormatYAML:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, eberror.Wrap(err, "invalid YAML configuration").
					WithCode(eberror.CodeConfigError).
					WithOperation("config.Load").
					WithDetail("filePath", filePath)
			}
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, eberror.Wrap(err, "invalid TOML configuration").
					WithCode(eberror.CodeConfigError).
					WithOperation("config.Load").
					WithDetail("filePath", filePath)
			}
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that all limits are in sane ranges
func (c EngineConfig) Validate() error {
	if c.MaxSourceBytes <= 0 {
		return validationError("max_source_bytes", c.MaxSourceBytes)
	}
	if c.MaxCallDepth <= 0 {
		return validationError("max_call_depth", c.MaxCallDepth)
	}
	if c.MaxTypeNesting <= 0 {
		return validationError("max_type_nesting", c.MaxTypeNesting)
	}
	if c.CallbackQueueSize <= 0 {
		return validationError("callback_queue_size", c.CallbackQueueSize)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return eberror.Newf("unknown log_level %q", c.LogLevel).
			WithCode(eberror.CodeValidationFailed).
			WithOperation("config.Validate")
	}
	return nil
}

func validationError(key string, value int) error {
	return eberror.Newf("%s must be positive, got %d", key, value).
		WithCode(eberror.CodeValidationFailed).
		WithOperation("config.Validate").
		WithDetail(key, value)
}

// detectFormat determines the file format from the extension
func detectFormat(filePath string) Format {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatTOML
	}
}

// applyEnvOverrides lets EBS_* environment variables override file values
func applyEnvOverrides(cfg *EngineConfig) {
	if v, ok := envInt("EBS_MAX_SOURCE_BYTES"); ok {
		cfg.MaxSourceBytes = v
	}
	if v, ok := envInt("EBS_MAX_CALL_DEPTH"); ok {
		cfg.MaxCallDepth = v
	}
	if v, ok := envInt("EBS_MAX_TYPE_NESTING"); ok {
		cfg.MaxTypeNesting = v
	}
	if v, ok := envInt("EBS_CALLBACK_QUEUE_SIZE"); ok {
		cfg.CallbackQueueSize = v
	}
	if v := os.Getenv("EBS_LOG_LEVEL"); stringx.IsNotBlank(v) {
		cfg.LogLevel = v
	}
	if v := os.Getenv("EBS_HISTORY_FILE"); stringx.IsNotBlank(v) {
		cfg.HistoryFile = v
	}
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if stringx.IsBlank(raw) {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return v, true
}
