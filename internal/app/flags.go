package app

import (
	"flag"

	"sandpile/internal/render"
)

// Flags represents the command-line parameters of the GUI.
type Flags struct {
	Config   string
	TPS      int
	HUDWidth int
	Seed     int64
	Paused   bool
}

// NewFlags returns Flags populated with defaults.
func NewFlags() *Flags {
	return &Flags{TPS: 60, HUDWidth: 220}
}

// Bind attaches the flags to the provided FlagSet.
func (f *Flags) Bind(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", f.Config, "path to a YAML config file")
	fs.IntVar(&f.TPS, "tps", f.TPS, "ebiten ticks per second")
	fs.IntVar(&f.HUDWidth, "hud", f.HUDWidth, "width of the control panel in pixels (0 hides it)")
	fs.Int64Var(&f.Seed, "seed", f.Seed, "seed for R resets")
	fs.BoolVar(&f.Paused, "paused", f.Paused, "start paused")
}

// CellScale is the integer pixel size that fits a resolution-sided grid in
// the 480x480 viewport.
func CellScale(resolution int) int {
	if resolution <= 0 || resolution >= render.GridSide {
		return 1
	}
	return render.GridSide / resolution
}

// GridOffset centers a scaled grid in the viewport.
func GridOffset(resolution int) int {
	side := resolution * CellScale(resolution)
	if side >= render.GridSide {
		return 0
	}
	return (render.GridSide - side) / 2
}
