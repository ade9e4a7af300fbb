package sandpile

import "strconv"

// Config controls the grid geometry and the read port.
type Config struct {
	Resolution  int
	Layout      Layout
	ReadLatency int
}

// DefaultConfig returns the standard configuration: an 8×8 grid in a store
// sized for 64×64, laid out in 4×4 tiles.
func DefaultConfig() Config {
	return Config{
		Resolution: 8,
		Layout: Layout{
			TileRows:      4,
			TileCols:      4,
			MaxResolution: 64,
		},
		ReadLatency: ReadLatency,
	}
}

// Validate checks the configuration against the store's constraints.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if c.Resolution <= 0 || c.Resolution > c.Layout.MaxResolution {
		return invalidResolution(c.Resolution, c.Layout.MaxResolution)
	}
	return nil
}

// FromMap populates the config from a string map (flag-style key/value
// pairs). Unparseable or non-positive values keep their defaults.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["resolution"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Resolution = parsed
		}
	}
	if v, ok := cfg["max_resolution"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Layout.MaxResolution = parsed
		}
	}
	if v, ok := cfg["tile_rows"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Layout.TileRows = parsed
		}
	}
	if v, ok := cfg["tile_cols"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Layout.TileCols = parsed
		}
	}
	if v, ok := cfg["read_latency"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.ReadLatency = parsed
		}
	}
	return c
}
