package sandpile

import (
	"errors"
	"testing"
)

func TestFromMapOverridesDefaults(t *testing.T) {
	cfg := FromMap(map[string]string{
		"resolution":     "12",
		"max_resolution": "32",
		"tile_rows":      "2",
		"tile_cols":      "8",
		"read_latency":   "3",
	})
	want := Config{Resolution: 12, Layout: Layout{TileRows: 2, TileCols: 8, MaxResolution: 32}, ReadLatency: 3}
	if cfg != want {
		t.Fatalf("FromMap = %+v, want %+v", cfg, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestFromMapKeepsDefaultsOnBadValues(t *testing.T) {
	cfg := FromMap(map[string]string{
		"resolution": "abc",
		"tile_rows":  "0",
		"tile_cols":  "-4",
	})
	if cfg != DefaultConfig() {
		t.Fatalf("FromMap = %+v, want defaults", cfg)
	}
	if FromMap(nil) != DefaultConfig() {
		t.Fatal("nil map must yield defaults")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolution = cfg.Layout.MaxResolution + 1
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("Validate error = %v", err)
	}
	if _, err := NewMachine(cfg, nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("NewMachine error = %v", err)
	}
}
