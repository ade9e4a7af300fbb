package control

import "sandpile/internal/entropy"

// DropSource picks the cell each new grain lands on.
type DropSource struct {
	mode DropMode
	rng  *entropy.Source
}

// NewDropSource creates a source; rng is only consulted in random mode. A
// nil rng makes every drop land in the center.
func NewDropSource(mode DropMode, rng *entropy.Source) *DropSource {
	return &DropSource{mode: mode, rng: rng}
}

// Mode returns the active drop mode.
func (d *DropSource) Mode() DropMode { return d.mode }

// SetMode switches between center and random drops.
func (d *DropSource) SetMode(mode DropMode) { d.mode = mode }

// Next returns the coordinates of the next grain on a resolution-sided grid.
// Random coordinates are two consecutive entropy draws, x first.
func (d *DropSource) Next(resolution int) (int, int) {
	if d.mode == DropCenter || d.rng == nil {
		return resolution / 2, resolution / 2
	}
	x := d.rng.Next(resolution)
	y := d.rng.Next(resolution)
	return x, y
}
