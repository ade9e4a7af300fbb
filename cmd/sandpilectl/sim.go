package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"sandpile/internal/config"
	"sandpile/internal/control"
	"sandpile/internal/entropy"
)

// runOptions describes one headless run.
type runOptions struct {
	Words     []uint16
	NoiseSeed int64
	Recorder  control.Recorder
	Logger    *slog.Logger
}

// runResult aggregates a headless run.
type runResult struct {
	Run         string  `json:"run,omitempty"`
	Resolution  int     `json:"resolution"`
	Generations int     `json:"generations"`
	Drops       int     `json:"drops"`
	Avalanches  int     `json:"avalanches"`
	Topples     int     `json:"topples"`
	Lost        int     `json:"lost"`
	Grains      int     `json:"grains"`
	Unstable    bool    `json:"unstable"`
	Cells       []uint8 `json:"-"`
}

// newDriver builds a started driver for cfg and applies words in order.
func newDriver(cfg *config.Config, opts runOptions) (*control.Driver, error) {
	regs, err := cfg.Registers()
	if err != nil {
		return nil, err
	}
	regs.Start = true
	d, err := control.NewDriver(control.Options{
		Machine:   cfg.Machine(),
		Registers: &regs,
		Sensor:    entropy.NewNoise(opts.NoiseSeed),
		Logger:    opts.Logger,
		Recorder:  opts.Recorder,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range opts.Words {
		if _, err := d.Command(w); err != nil {
			return nil, fmt.Errorf("command 0x%04X: %w", w, err)
		}
	}
	return d, nil
}

// simulate advances d for n generations. A stopped lifecycle ends the run
// early without error.
func simulate(ctx context.Context, d *control.Driver, n int) (runResult, error) {
	var res runResult
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		stats, err := d.Advance(ctx)
		if errors.Is(err, control.ErrNotGaming) {
			break
		}
		if err != nil {
			return res, err
		}
		res.Generations++
		if stats.Dropped {
			res.Drops++
		}
		res.Topples += stats.Topples
		res.Lost += stats.Lost
		res.Unstable = stats.Unstable
	}
	m := d.Machine()
	if m.Busy() {
		m.AwaitReady()
	}
	res.Resolution = m.Resolution()
	res.Avalanches = d.Avalanches()
	res.Cells = slices.Clone(d.Cells())
	for _, v := range res.Cells {
		res.Grains += int(v)
	}
	return res, nil
}
