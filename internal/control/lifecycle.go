package control

import "fmt"

// State is the game lifecycle state.
type State uint8

const (
	StateReset State = iota
	StateStopped
	StateGaming
)

func (s State) String() string {
	switch s {
	case StateReset:
		return "reset"
	case StateStopped:
		return "stopped"
	case StateGaming:
		return "gaming"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Lifecycle gates generation on the start and soft reset levels.
type Lifecycle struct {
	state State
}

// State returns the current state.
func (l *Lifecycle) State() State { return l.state }

// HardReset forces the Reset state.
func (l *Lifecycle) HardReset() { l.state = StateReset }

// Step evaluates one transition. Soft reset wins from any state and holds
// Reset while raised.
func (l *Lifecycle) Step(start, softReset bool) State {
	if softReset {
		l.state = StateReset
		return l.state
	}
	switch l.state {
	case StateReset, StateStopped:
		if start {
			l.state = StateGaming
		}
	case StateGaming:
		if !start {
			l.state = StateStopped
		}
	}
	return l.state
}
