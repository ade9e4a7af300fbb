package sandpile

import (
	"fmt"
	"log/slog"

	"sandpile/internal/core"
	"sandpile/internal/logging"
)

// Machine composes the tiled store, the relaxation engine and the read
// ports behind one clock. The renderer's port runs on its own clock; the
// diagnostics port backs Cells.
type Machine struct {
	cfg Config

	store  *Store
	engine *Engine
	port   *ReadPort
	diag   *ReadPort

	frame []uint8
	log   *slog.Logger
}

// NewMachine validates cfg, allocates the store and starts its clear
// sequence. A nil logger discards output.
func NewMachine(cfg Config, logger *slog.Logger) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new machine: %w", err)
	}
	store, err := NewStore(cfg.Layout, cfg.Resolution)
	if err != nil {
		return nil, fmt.Errorf("new machine: %w", err)
	}
	return &Machine{
		cfg:    cfg,
		store:  store,
		engine: NewEngine(store),
		port:   NewReadPort(store, cfg.ReadLatency),
		diag:   NewReadPort(store, cfg.ReadLatency),
		log:    logging.OrDiscard(logger),
	}, nil
}

// Name returns the simulation identifier.
func (m *Machine) Name() string { return "sandpile" }

// Size returns the configured grid dimensions.
func (m *Machine) Size() core.Size {
	r := m.store.Resolution()
	return core.Size{W: r, H: r}
}

// Config returns the machine's current configuration.
func (m *Machine) Config() Config { return m.cfg }

// Resolution returns the configured grid side.
func (m *Machine) Resolution() int { return m.store.Resolution() }

// Port is the read port handed to the renderer.
func (m *Machine) Port() *ReadPort { return m.port }

// Ready reports whether the store clear sequence has completed.
func (m *Machine) Ready() bool { return m.store.Ready() }

// Busy is the inverse of Ready.
func (m *Machine) Busy() bool { return m.store.Busy() }

// Phase returns the engine state.
func (m *Machine) Phase() Phase { return m.engine.Phase() }

// Toppled reports whether the last completed pass toppled any cell.
func (m *Machine) Toppled() bool { return m.engine.Toppled() }

// Unstable reports whether the active generation still needs relaxing.
func (m *Machine) Unstable() bool { return m.engine.Unstable() }

// Generation counts published passes since the last reset.
func (m *Machine) Generation() uint64 { return m.engine.Generation() }

// LastPass returns the statistics of the last completed pass.
func (m *Machine) LastPass() PassStats { return m.engine.LastPass() }

// Tick advances the machine clock: one clear step while the store is busy,
// otherwise one engine step.
func (m *Machine) Tick() error {
	if m.store.Busy() {
		m.store.Tick()
		return nil
	}
	return m.engine.Tick()
}

// AwaitReady ticks until the clear sequence completes and returns the
// number of ticks it took.
func (m *Machine) AwaitReady() int {
	n := 0
	for m.store.Busy() {
		m.store.Tick()
		n++
	}
	return n
}

// Drop queues a grain at (x, y) for the next pass.
func (m *Machine) Drop(x, y int) error { return m.engine.Drop(x, y) }

// Trigger requests a new generation.
func (m *Machine) Trigger() error { return m.engine.Trigger() }

// RunPass triggers a generation, ticks it to completion and returns its
// statistics.
func (m *Machine) RunPass() (PassStats, error) {
	if _, err := m.engine.RunPass(); err != nil {
		return PassStats{}, err
	}
	return m.engine.LastPass(), nil
}

// Reset discards any in-flight pass, pending drop and in-flight reads and
// restarts the clear sequence. Hard and soft resets share this path.
func (m *Machine) Reset() {
	m.engine.Reset()
	m.port.Flush()
	m.diag.Flush()
	m.store.Clear()
	m.log.Debug("machine reset", "resolution", m.store.Resolution(), "clear_ticks", m.store.ClearTicks())
}

// Configure changes the grid side. An invalid resolution leaves the machine
// untouched; a valid one resets it.
func (m *Machine) Configure(resolution int) error {
	if resolution <= 0 || resolution > m.cfg.Layout.MaxResolution {
		return fmt.Errorf("configure machine: %w", invalidResolution(resolution, m.cfg.Layout.MaxResolution))
	}
	m.engine.Reset()
	m.port.Flush()
	m.diag.Flush()
	if err := m.store.SetResolution(resolution); err != nil {
		return fmt.Errorf("configure machine: %w", err)
	}
	m.cfg.Resolution = resolution
	m.log.Debug("machine configured", "resolution", resolution)
	return nil
}

// Cells scans the active generation through the diagnostics port and
// returns it in row-major order. The slice is reused by the next call. While
// the store is clearing the result is all zeros.
func (m *Machine) Cells() []uint8 {
	r := m.store.Resolution()
	if cap(m.frame) < r*r {
		m.frame = make([]uint8, r*r)
	}
	m.frame = m.frame[:r*r]
	if m.store.Busy() {
		clear(m.frame)
		return m.frame
	}
	if _, err := m.diag.Scan(r, func(resp Response) {
		m.frame[resp.Y*r+resp.X] = uint8(resp.Value)
	}); err != nil {
		m.log.Warn("diagnostic scan failed", "err", err)
		clear(m.frame)
	}
	return m.frame
}

// Parameters reports the engine-level values.
func (m *Machine) Parameters() core.ParameterSnapshot {
	layout := m.cfg.Layout
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				core.IntParam("resolution", "Resolution", m.store.Resolution()),
				core.IntParam("max_resolution", "Max resolution", layout.MaxResolution),
				core.IntParam("tile_rows", "Tile rows", layout.TileRows),
				core.IntParam("tile_cols", "Tile cols", layout.TileCols),
				core.IntParam("read_latency", "Read latency", m.port.Latency()),
			},
		},
		{
			Name: "Engine",
			Params: []core.Parameter{
				core.StringParam("phase", "Phase", m.engine.Phase().String()),
				core.Int64Param("generation", "Generation", int64(m.engine.Generation())),
				core.BoolParam("toppled", "Toppled", m.engine.Toppled()),
				core.BoolParam("unstable", "Unstable", m.engine.Unstable()),
				core.BoolParam("ready", "Ready", m.store.Ready()),
			},
		},
	}}
}
