package sandpile

import "fmt"

// Cell is a 3-bit grain counter.
type Cell uint8

const (
	// Threshold is the grain count at which a cell topples.
	Threshold Cell = 4
	// MaxCell is the largest value a cell can hold.
	MaxCell Cell = 7
)

// Store holds two tiled grid buffers. Exactly one is active (readable); the
// other is the write target of the generation in flight.
type Store struct {
	layout     Layout
	resolution int

	bufs   [2][]Cell
	active int

	// clearing is the next slot the clear sequence zeroes, or -1 when idle.
	clearing int
}

// NewStore allocates both buffers at full capacity and starts the clear
// sequence. The store is not Ready until Tick has run ClearTicks times.
func NewStore(layout Layout, resolution int) (*Store, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if resolution <= 0 || resolution > layout.MaxResolution {
		return nil, invalidResolution(resolution, layout.MaxResolution)
	}
	capacity := layout.Capacity()
	s := &Store{
		layout:     layout,
		resolution: resolution,
		bufs:       [2][]Cell{make([]Cell, capacity), make([]Cell, capacity)},
	}
	s.Clear()
	return s, nil
}

// Layout returns the store's tile layout.
func (s *Store) Layout() Layout { return s.layout }

// Resolution returns the configured grid side.
func (s *Store) Resolution() int { return s.resolution }

// SetResolution changes the addressed grid side. The tiled layout of every
// cell moves with the resolution, so a valid change starts a clear.
func (s *Store) SetResolution(resolution int) error {
	if resolution <= 0 || resolution > s.layout.MaxResolution {
		return invalidResolution(resolution, s.layout.MaxResolution)
	}
	s.resolution = resolution
	s.Clear()
	return nil
}

// Clear begins zeroing both buffers. Each Tick zeroes one slot in each buffer.
func (s *Store) Clear() { s.clearing = 0 }

// ClearTicks is the number of ticks a full clear sequence takes.
func (s *Store) ClearTicks() int { return len(s.bufs[0]) }

// Tick advances the clear sequence by one slot. It is a no-op once ready.
func (s *Store) Tick() {
	if s.clearing < 0 {
		return
	}
	s.bufs[0][s.clearing] = 0
	s.bufs[1][s.clearing] = 0
	s.clearing++
	if s.clearing == len(s.bufs[0]) {
		s.clearing = -1
	}
}

// Ready reports whether the clear sequence has finished.
func (s *Store) Ready() bool { return s.clearing < 0 }

// Busy is the inverse of Ready.
func (s *Store) Busy() bool { return s.clearing >= 0 }

// ReadActive returns the value of (x, y) in the active buffer.
func (s *Store) ReadActive(x, y int) (Cell, error) {
	idx, err := s.index(x, y)
	if err != nil {
		return 0, err
	}
	return s.bufs[s.active][idx], nil
}

// WriteInactive stores v at (x, y) in the inactive buffer.
func (s *Store) WriteInactive(x, y int, v Cell) error {
	idx, err := s.index(x, y)
	if err != nil {
		return err
	}
	s.bufs[1-s.active][idx] = v
	return nil
}

// Swap publishes the inactive buffer as the new active one.
func (s *Store) Swap() { s.active = 1 - s.active }

// Active returns 0 when buffer A is active and 1 for buffer B.
func (s *Store) Active() int { return s.active }

func (s *Store) index(x, y int) (int, error) {
	if s.Busy() {
		return 0, ErrNotReady
	}
	return s.layout.Index(x, y, s.resolution)
}

func invalidResolution(resolution, limit int) error {
	return fmt.Errorf("%w: resolution %d not in [1,%d]", ErrInvalidConfiguration, resolution, limit)
}
