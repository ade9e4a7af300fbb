package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sandpile/internal/control"
	"sandpile/internal/sandpile"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sandpile.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Resolution != 8 || cfg.Speed != 50 || cfg.DropMode != "random" || cfg.Seed != 0 {
		t.Fatalf("Default() = %+v", cfg)
	}
	if cfg.Machine() != sandpile.DefaultConfig() {
		t.Fatalf("Machine() = %+v", cfg.Machine())
	}
}

func TestLoadFromFileKeepsUnsetDefaults(t *testing.T) {
	path := writeFile(t, "resolution: 32\ndrop_mode: center\nstats_db: runs.db\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Resolution != 32 || cfg.DropMode != "center" || cfg.StatsDB != "runs.db" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Speed != 50 || cfg.TileRows != 4 || cfg.MaxResolution != 64 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	regs, err := cfg.Registers()
	if err != nil {
		t.Fatalf("Registers: %v", err)
	}
	if regs.GridSize != 32 || regs.DropMode != control.DropCenter || regs.Start {
		t.Fatalf("Registers() = %+v", regs)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "resolution: 32\nspeed: 10\n")
	t.Setenv("SANDPILE_SPEED", "200")
	t.Setenv("SANDPILE_SEED", "123")
	t.Setenv("SANDPILE_LOG_LEVEL", "debug")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Resolution != 32 || cfg.Speed != 200 || cfg.Seed != 123 || cfg.LogLevel != "debug" {
		t.Fatalf("Load = %+v", cfg)
	}
}

func TestValidateLogLevelSpellings(t *testing.T) {
	for _, level := range []string{"DEBUG", " Trace ", "warning", "Warn", "INFO", ""} {
		cfg := Default()
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate(%q): %v", level, err)
		}
	}
}

func TestEnvLogLevelIsCaseInsensitive(t *testing.T) {
	t.Setenv("SANDPILE_LOG_LEVEL", "Debug")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "Debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("SANDPILE_RESOLUTION", "16")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Resolution != 16 {
		t.Fatalf("Resolution = %d", cfg.Resolution)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Load(writeFile(t, "resolution: [1, 2]\n")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	t.Setenv("SANDPILE_SPEED", "fast")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "parse env") {
		t.Fatalf("expected env parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"resolution above max", func(c *Config) { c.Resolution = 65 }},
		{"zero tile rows", func(c *Config) { c.TileRows = 0 }},
		{"register overflow", func(c *Config) { c.MaxResolution, c.Resolution = 1024, 600 }},
		{"drop mode", func(c *Config) { c.DropMode = "corner" }},
		{"speed", func(c *Config) { c.Speed = 0 }},
		{"seed", func(c *Config) { c.Seed = 1024 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("Validate accepted %+v", cfg)
			}
		})
	}
	cfg := Default()
	cfg.Resolution = 100
	if err := cfg.Validate(); !errors.Is(err, sandpile.ErrInvalidConfiguration) {
		t.Fatalf("Validate error = %v, want ErrInvalidConfiguration", err)
	}
}
