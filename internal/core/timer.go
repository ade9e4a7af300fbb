package core

import "time"

// Pacer converts wall-clock time into a whole number of simulation steps at
// a fixed rate. It plays the role of the clock divider that turns the
// system clock into generation enables.
type Pacer struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	maxBurst    int
}

// NewPacer targets rate steps per second. Non-positive rates fall back to 60.
func NewPacer(rate int) *Pacer {
	p := &Pacer{maxBurst: 8}
	p.SetRate(rate)
	return p
}

// SetRate changes the step rate. The accumulated fraction is kept.
func (p *Pacer) SetRate(rate int) {
	if rate <= 0 {
		rate = 60
	}
	p.step = time.Second / time.Duration(rate)
}

// Due reports how many steps are owed at time now. The first call only
// anchors the clock. At most maxBurst steps are reported per call so a stall
// does not turn into a long catch-up burst.
func (p *Pacer) Due(now time.Time) int {
	if p.last.IsZero() {
		p.last = now
		return 0
	}
	p.accumulator += now.Sub(p.last)
	p.last = now
	n := 0
	for p.accumulator >= p.step {
		p.accumulator -= p.step
		n++
		if n == p.maxBurst {
			p.accumulator = 0
			break
		}
	}
	return n
}

// Reset forgets the anchor and any accumulated time.
func (p *Pacer) Reset() {
	p.accumulator = 0
	p.last = time.Time{}
}
