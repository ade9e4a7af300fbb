package sandpile

import "fmt"

// Phase enumerates the relaxation engine's states.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseApplyDrop
	PhaseScanning
	PhaseToppling
	PhasePublish
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseApplyDrop:
		return "apply-drop"
	case PhaseScanning:
		return "scanning"
	case PhaseToppling:
		return "toppling"
	case PhasePublish:
		return "publish"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

type pendingDrop struct {
	x, y  int
	valid bool
}

// PassStats summarizes one completed generation.
type PassStats struct {
	Generation uint64
	Dropped    bool
	DropX      int
	DropY      int
	Toppled    bool
	// Topples counts cells that met the threshold.
	Topples int
	// Lost counts grains shed across the open boundary.
	Lost int
	// Unstable reports whether the published generation still holds a cell
	// at or above the threshold.
	Unstable bool
}

// Engine is the frame-stepped relaxation state machine. Every Tick performs
// at most one step: accepting a trigger, latching a drop, evaluating one
// cell, finishing the topple bookkeeping or publishing the generation.
type Engine struct {
	store *Store

	phase     Phase
	triggered bool
	pending   pendingDrop
	latched   pendingDrop

	cursor   int
	topples  int
	lost     int
	unstable bool

	generation uint64
	last       PassStats
}

// NewEngine wraps a store.
func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// Phase returns the current state.
func (e *Engine) Phase() Phase { return e.phase }

// Idle reports whether no pass is in flight.
func (e *Engine) Idle() bool { return e.phase == PhaseIdle && !e.triggered }

// Generation counts published passes since the last reset.
func (e *Engine) Generation() uint64 { return e.generation }

// Toppled reports whether the most recently completed pass toppled any cell.
func (e *Engine) Toppled() bool { return e.last.Toppled }

// Unstable reports whether the active generation holds a cell at or above
// the threshold, i.e. whether another pass would change the grid.
func (e *Engine) Unstable() bool { return e.last.Unstable }

// LastPass returns the statistics of the most recently completed pass.
func (e *Engine) LastPass() PassStats { return e.last }

// Drop queues a grain for (x, y). The grain lands in the next pass that
// starts; a second Drop before then replaces the first.
func (e *Engine) Drop(x, y int) error {
	if e.store.Busy() {
		return ErrNotReady
	}
	res := e.store.Resolution()
	if x < 0 || y < 0 || x >= res || y >= res {
		return fmt.Errorf("%w: drop (%d,%d) outside %dx%d", ErrOutOfRange, x, y, res, res)
	}
	e.pending = pendingDrop{x: x, y: y, valid: true}
	return nil
}

// Trigger requests a new generation. A trigger issued while a pass is in
// flight is held until the engine returns to idle.
func (e *Engine) Trigger() error {
	if e.store.Busy() {
		return ErrNotReady
	}
	e.triggered = true
	return nil
}

// Reset discards the in-flight pass, any pending drop and the pass history.
// The caller is responsible for clearing the store.
func (e *Engine) Reset() {
	*e = Engine{store: e.store}
}

// Tick advances the state machine by one step. A store error aborts the pass
// without publishing it; the previous generation stays active.
func (e *Engine) Tick() error {
	switch e.phase {
	case PhaseIdle:
		if !e.triggered || e.store.Busy() {
			return nil
		}
		e.triggered = false
		e.phase = PhaseApplyDrop
	case PhaseApplyDrop:
		e.latched = e.pending
		e.pending = pendingDrop{}
		e.cursor, e.topples, e.lost, e.unstable = 0, 0, 0, false
		e.phase = PhaseScanning
	case PhaseScanning:
		if err := e.relaxCell(); err != nil {
			e.abort()
			return fmt.Errorf("relax cell %d: %w", e.cursor, err)
		}
		e.cursor++
		res := e.store.Resolution()
		if e.cursor == res*res {
			e.phase = PhaseToppling
		}
	case PhaseToppling:
		e.last = PassStats{
			Generation: e.generation + 1,
			Dropped:    e.latched.valid,
			DropX:      e.latched.x,
			DropY:      e.latched.y,
			Toppled:    e.topples > 0,
			Topples:    e.topples,
			Lost:       e.lost,
			Unstable:   e.unstable,
		}
		e.phase = PhasePublish
	case PhasePublish:
		e.store.Swap()
		e.generation++
		e.latched = pendingDrop{}
		e.phase = PhaseIdle
	}
	return nil
}

// RunPass triggers a generation and ticks until it is published. It returns
// the number of ticks spent.
func (e *Engine) RunPass() (int, error) {
	if err := e.Trigger(); err != nil {
		return 0, err
	}
	ticks := 0
	for !e.Idle() {
		ticks++
		if err := e.Tick(); err != nil {
			return ticks, err
		}
	}
	return ticks, nil
}

// PassTicks is the number of ticks RunPass takes on an idle engine.
func PassTicks(resolution int) int { return resolution*resolution + 4 }

func (e *Engine) abort() {
	e.latched = pendingDrop{}
	e.phase = PhaseIdle
}

var neighborOffsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// relaxCell computes one output cell from the source snapshot only: the
// cell's own remainder plus one grain from every toppling in-grid neighbor
// plus a latched drop. The result is written once to the inactive buffer.
func (e *Engine) relaxCell() error {
	res := e.store.Resolution()
	x, y := e.cursor%res, e.cursor/res

	src, err := e.store.ReadActive(x, y)
	if err != nil {
		return err
	}
	out := int(src)
	if src >= Threshold {
		out -= int(Threshold)
		e.topples++
	}
	for _, d := range neighborOffsets {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || ny < 0 || nx >= res || ny >= res {
			if src >= Threshold {
				e.lost++
			}
			continue
		}
		v, err := e.store.ReadActive(nx, ny)
		if err != nil {
			return err
		}
		if v >= Threshold {
			out++
		}
	}
	if e.latched.valid && e.latched.x == x && e.latched.y == y {
		out++
	}
	if out > int(MaxCell) {
		out = int(MaxCell)
	}
	if Cell(out) >= Threshold {
		e.unstable = true
	}
	return e.store.WriteInactive(x, y, Cell(out))
}
