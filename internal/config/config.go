// Package config loads sandpile settings.
// Order: defaults -> YAML file -> SANDPILE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"sandpile/internal/control"
	"sandpile/internal/sandpile"
)

// Config is the complete runtime configuration of a sandpile run.
type Config struct {
	Resolution    int    `yaml:"resolution" env:"SANDPILE_RESOLUTION"`
	MaxResolution int    `yaml:"max_resolution" env:"SANDPILE_MAX_RESOLUTION"`
	TileRows      int    `yaml:"tile_rows" env:"SANDPILE_TILE_ROWS"`
	TileCols      int    `yaml:"tile_cols" env:"SANDPILE_TILE_COLS"`
	ReadLatency   int    `yaml:"read_latency" env:"SANDPILE_READ_LATENCY"`
	DropMode      string `yaml:"drop_mode" env:"SANDPILE_DROP_MODE"`
	Speed         int    `yaml:"speed" env:"SANDPILE_SPEED"`
	Seed          int    `yaml:"seed" env:"SANDPILE_SEED"`
	LogLevel      string `yaml:"log_level" env:"SANDPILE_LOG_LEVEL"`
	// StatsDB is the SQLite file avalanches are recorded to. Empty disables
	// recording.
	StatsDB string `yaml:"stats_db,omitempty" env:"SANDPILE_STATS_DB"`
}

// Default returns the power-up configuration.
func Default() *Config {
	m := sandpile.DefaultConfig()
	return &Config{
		Resolution:    control.DefaultGridSize,
		MaxResolution: m.Layout.MaxResolution,
		TileRows:      m.Layout.TileRows,
		TileCols:      m.Layout.TileCols,
		ReadLatency:   m.ReadLatency,
		DropMode:      control.DropRandom.String(),
		Speed:         control.DefaultSpeed,
		Seed:          0,
		LogLevel:      "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path (when
// path is non-empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields whose SANDPILE_* variable is set.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks that the configuration can build a machine and fits the
// command registers.
func (c *Config) Validate() error {
	if err := c.Machine().Validate(); err != nil {
		return err
	}
	if c.Resolution > 0x1FF {
		return fmt.Errorf("resolution %d does not fit the 9-bit grid size register", c.Resolution)
	}
	if _, err := control.ParseDropMode(c.DropMode); err != nil {
		return err
	}
	if c.Speed < 1 || c.Speed > 0xFFF {
		return fmt.Errorf("speed must be between 1 and 4095, got %d", c.Speed)
	}
	if c.Seed < 0 || c.Seed > 0x3FF {
		return fmt.Errorf("seed must be between 0 and 1023, got %d", c.Seed)
	}
	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true, "warn": true, "warning": true}
	if !validLevels[strings.ToLower(strings.TrimSpace(c.LogLevel))] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, warn)", c.LogLevel)
	}
	return nil
}

// Machine returns the store geometry.
func (c *Config) Machine() sandpile.Config {
	return sandpile.Config{
		Resolution: c.Resolution,
		Layout: sandpile.Layout{
			TileRows:      c.TileRows,
			TileCols:      c.TileCols,
			MaxResolution: c.MaxResolution,
		},
		ReadLatency: c.ReadLatency,
	}
}

// Registers returns the power-up register file for this configuration. The
// game is not started.
func (c *Config) Registers() (control.Registers, error) {
	mode, err := control.ParseDropMode(c.DropMode)
	if err != nil {
		return control.Registers{}, err
	}
	return control.Registers{
		GridSize: c.Resolution,
		DropMode: mode,
		Speed:    c.Speed,
		Seed:     uint16(c.Seed),
	}, nil
}
