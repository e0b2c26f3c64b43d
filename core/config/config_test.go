// File: config_test.go
// Title: Configuration Tests
// Description: Covers defaults, TOML and YAML loading, environment overrides,
//              and validation.

package config

import (
	"os"
	"path/filepath"
	"testing"

	eberror "github.com/eblang/ebscript/core/error"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
	if cfg.MaxSourceBytes != 1<<20 {
		t.Errorf("MaxSourceBytes = %d", cfg.MaxSourceBytes)
	}
	if cfg.MaxCallDepth != 256 {
		t.Errorf("MaxCallDepth = %d", cfg.MaxCallDepth)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ebs.toml")
	content := `
max_call_depth = 32
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxCallDepth != 32 {
		t.Errorf("MaxCallDepth = %d, want 32", cfg.MaxCallDepth)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	// untouched keys keep their defaults
	if cfg.CallbackQueueSize != Default().CallbackQueueSize {
		t.Errorf("CallbackQueueSize = %d", cfg.CallbackQueueSize)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ebs.yaml")
	content := "max_source_bytes: 2048\nlog_level: warn\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxSourceBytes != 2048 {
		t.Errorf("MaxSourceBytes = %d, want 2048", cfg.MaxSourceBytes)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if !eberror.HasCode(err, eberror.CodeConfigError) {
		t.Errorf("code = %v, want CONFIG_ERROR", eberror.GetCode(err))
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("max_call_depth = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for invalid TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EBS_MAX_CALL_DEPTH", "42")
	t.Setenv("EBS_LOG_LEVEL", "error")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxCallDepth != 42 {
		t.Errorf("MaxCallDepth = %d, want 42", cfg.MaxCallDepth)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", cfg.LogLevel)
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	t.Setenv("EBS_MAX_CALL_DEPTH", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxCallDepth != Default().MaxCallDepth {
		t.Errorf("MaxCallDepth = %d, want default", cfg.MaxCallDepth)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngineConfig)
	}{
		{"zero source bytes", func(c *EngineConfig) { c.MaxSourceBytes = 0 }},
		{"negative call depth", func(c *EngineConfig) { c.MaxCallDepth = -1 }},
		{"zero type nesting", func(c *EngineConfig) { c.MaxTypeNesting = 0 }},
		{"zero queue size", func(c *EngineConfig) { c.CallbackQueueSize = 0 }},
		{"bogus log level", func(c *EngineConfig) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !eberror.HasCode(err, eberror.CodeValidationFailed) {
				t.Errorf("code = %v, want VALIDATION_FAILED", eberror.GetCode(err))
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"ebs.toml", FormatTOML},
		{"ebs.yaml", FormatYAML},
		{"EBS.YML", FormatYAML},
		{"ebs.conf", FormatTOML},
	}
	for _, tt := range tests {
		if got := detectFormat(tt.path); got != tt.want {
			t.Errorf("detectFormat(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}
