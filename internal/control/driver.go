package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sandpile/internal/core"
	"sandpile/internal/entropy"
	"sandpile/internal/logging"
	"sandpile/internal/sandpile"
)

// ErrNotGaming is returned by Advance while the lifecycle is not in Gaming.
var ErrNotGaming = errors.New("control: game not running")

// Avalanche summarizes the passes between a drop and the grid settling.
type Avalanche struct {
	// Generation is the generation the grain was dropped in.
	Generation uint64
	Resolution int
	DropX      int
	DropY      int
	// Passes counts the toppling passes that followed the drop.
	Passes  int
	Topples int
	Lost    int
}

// Recorder persists finished avalanches.
type Recorder interface {
	Record(ctx context.Context, a Avalanche) error
}

// Options configures a Driver. A nil Registers means DefaultRegisters; a nil
// Sensor means entropy.Quiet.
type Options struct {
	Machine   sandpile.Config
	Registers *Registers
	Sensor    entropy.Sensor
	Logger    *slog.Logger
	Recorder  Recorder
}

// Driver is the game controller: it owns the machine, decodes command words,
// runs the lifecycle and decides per generation whether to drop a grain or
// keep relaxing.
type Driver struct {
	m     *sandpile.Machine
	regs  Registers
	life  Lifecycle
	rng   *entropy.Source
	drops *DropSource
	rec   Recorder
	log   *slog.Logger

	open       Avalanche
	inflight   bool
	avalanches int
	last       Avalanche
}

// NewDriver builds the machine for opts.Machine with the grid size taken from
// the registers.
func NewDriver(opts Options) (*Driver, error) {
	regs := DefaultRegisters()
	if opts.Registers != nil {
		regs = *opts.Registers
	}
	cfg := opts.Machine
	cfg.Resolution = regs.GridSize
	logger := logging.OrDiscard(opts.Logger)
	m, err := sandpile.NewMachine(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("new driver: %w", err)
	}
	rng := entropy.New(regs.Seed, opts.Sensor)
	d := &Driver{
		m:     m,
		regs:  regs,
		rng:   rng,
		drops: NewDropSource(regs.DropMode, rng),
		rec:   opts.Recorder,
		log:   logger,
	}
	d.life.Step(regs.Start, regs.SoftReset)
	return d, nil
}

// Name returns the simulation identifier.
func (d *Driver) Name() string { return d.m.Name() }

// Size returns the grid dimensions.
func (d *Driver) Size() core.Size { return d.m.Size() }

// Cells returns the active generation in row-major order.
func (d *Driver) Cells() []uint8 { return d.m.Cells() }

// Machine exposes the underlying machine.
func (d *Driver) Machine() *sandpile.Machine { return d.m }

// Registers returns a copy of the register file.
func (d *Driver) Registers() Registers { return d.regs }

// State returns the lifecycle state.
func (d *Driver) State() State { return d.life.State() }

// Speed returns the configured generation rate per second.
func (d *Driver) Speed() int { return d.regs.Speed }

// Avalanches counts the avalanches completed since the last reset.
func (d *Driver) Avalanches() int { return d.avalanches }

// LastAvalanche returns the most recently completed avalanche.
func (d *Driver) LastAvalanche() (Avalanche, bool) { return d.last, d.avalanches > 0 }

// Command applies one command word and returns the addressed register's data
// after the write. Reading RegChipID returns ChipID. A grid size the store
// cannot hold is rejected and the register keeps its previous value.
func (d *Driver) Command(word uint16) (uint16, error) {
	prev := d.regs
	reg, err := d.regs.Write(word)
	if err != nil {
		return 0, err
	}
	switch reg {
	case RegControl:
		if d.regs.SoftReset {
			d.softReset(prev)
		}
	case RegGridSize:
		if size := d.regs.GridSize; size != prev.GridSize {
			if err := d.m.Configure(size); err != nil {
				d.regs = prev
				return 0, fmt.Errorf("grid size %d: %w", size, err)
			}
			d.abandon()
		}
	case RegDropMode:
		d.drops.SetMode(d.regs.DropMode)
	case RegSeed:
		d.rng.Reseed(d.regs.Seed)
	}
	d.stepLifecycle()
	return d.regs.Read(reg)
}

// Start raises the start bit.
func (d *Driver) Start() error {
	_, err := d.Command(Encode(RegControl, controlStart))
	return err
}

// Stop lowers the start bit.
func (d *Driver) Stop() error {
	_, err := d.Command(Encode(RegControl, 0))
	return err
}

// Advance runs one generation. If the active generation is still unstable
// the pass only relaxes it; otherwise a grain from the drop source lands
// first. Finished avalanches are handed to the recorder.
func (d *Driver) Advance(ctx context.Context) (sandpile.PassStats, error) {
	if d.life.State() != StateGaming {
		return sandpile.PassStats{}, ErrNotGaming
	}
	if d.m.Busy() {
		n := d.m.AwaitReady()
		d.log.Debug("store cleared", "ticks", n)
	}
	dropped := false
	if !d.m.Unstable() {
		x, y := d.drops.Next(d.m.Resolution())
		if err := d.m.Drop(x, y); err != nil {
			return sandpile.PassStats{}, fmt.Errorf("advance: %w", err)
		}
		dropped = true
	}
	stats, err := d.m.RunPass()
	if err != nil {
		return stats, fmt.Errorf("advance: %w", err)
	}
	d.log.Log(ctx, logging.LevelTrace, "pass",
		"generation", stats.Generation,
		"dropped", stats.Dropped,
		"topples", stats.Topples,
		"unstable", stats.Unstable)

	if dropped {
		d.open = Avalanche{
			Generation: stats.Generation,
			Resolution: d.m.Resolution(),
			DropX:      stats.DropX,
			DropY:      stats.DropY,
		}
		d.inflight = true
	} else if d.inflight {
		d.open.Passes++
		d.open.Topples += stats.Topples
		d.open.Lost += stats.Lost
	}
	if d.inflight && !stats.Unstable {
		return stats, d.finish(ctx)
	}
	return stats, nil
}

// Step implements core.Sim. It advances one generation when the game is
// running.
func (d *Driver) Step() {
	if _, err := d.Advance(context.Background()); err != nil && !errors.Is(err, ErrNotGaming) {
		d.log.Warn("step failed", "err", err)
	}
}

// Reset implements core.Sim: it zeroes the grid and reseeds the entropy
// source with the low bits of seed. Grid size, drop mode, speed and the
// lifecycle state are kept.
func (d *Driver) Reset(seed int64) {
	d.regs.Seed = uint16(uint64(seed) & seedMask)
	d.rng.Reseed(d.regs.Seed)
	d.m.Reset()
	d.abandon()
	d.avalanches = 0
	d.last = Avalanche{}
	d.log.Debug("driver reset", "seed", d.regs.Seed)
}

func (d *Driver) softReset(prev Registers) {
	if prev.GridSize != d.regs.GridSize {
		if err := d.m.Configure(d.regs.GridSize); err != nil {
			d.log.Warn("soft reset kept grid size", "grid_size", prev.GridSize, "err", err)
			d.regs.GridSize = prev.GridSize
			d.m.Reset()
		}
	} else {
		d.m.Reset()
	}
	d.drops.SetMode(d.regs.DropMode)
	d.rng.Reseed(d.regs.Seed)
	d.abandon()
	d.avalanches = 0
	d.last = Avalanche{}
	d.log.Debug("soft reset", "grid_size", d.regs.GridSize)
}

func (d *Driver) stepLifecycle() {
	from := d.life.State()
	to := d.life.Step(d.regs.Start, d.regs.SoftReset)
	if from != to {
		d.log.Debug("lifecycle", "from", from.String(), "to", to.String())
	}
}

func (d *Driver) abandon() {
	d.open = Avalanche{}
	d.inflight = false
}

func (d *Driver) finish(ctx context.Context) error {
	a := d.open
	d.abandon()
	d.avalanches++
	d.last = a
	d.log.Debug("avalanche",
		"generation", a.Generation,
		"x", a.DropX,
		"y", a.DropY,
		"passes", a.Passes,
		"topples", a.Topples,
		"lost", a.Lost)
	if d.rec == nil {
		return nil
	}
	if err := d.rec.Record(ctx, a); err != nil {
		return fmt.Errorf("record avalanche: %w", err)
	}
	return nil
}
