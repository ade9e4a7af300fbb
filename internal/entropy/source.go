// Package entropy implements the drop randomizer: a 25-bit state that mixes
// in sensor noise and is stirred by one keccak-style round per draw.
package entropy

const (
	// StateBits is the width of the mixing state.
	StateBits = 25
	// SensorMask selects the sensor bits that are mixed into the state.
	SensorMask = 0x3FF
	// SeedMask selects the usable bits of a seed word.
	SeedMask = 0x3FF
	// InitialState is the state after reset, before the seed is applied.
	InitialState uint32 = 0x1234567

	stateMask uint32 = 1<<StateBits - 1
)

// Source draws bounded random values.
type Source struct {
	seed   uint16
	state  uint32
	sensor Sensor
}

// New creates a source seeded with the low 10 bits of seed. A nil sensor is
// treated as Quiet.
func New(seed uint16, sensor Sensor) *Source {
	if sensor == nil {
		sensor = Quiet{}
	}
	s := &Source{sensor: sensor}
	s.Reseed(seed)
	return s
}

// Reseed restarts the state from InitialState mixed with seed.
func (s *Source) Reseed(seed uint16) {
	s.seed = seed & SeedMask
	s.state = InitialState ^ uint32(s.seed)
}

// Seed returns the seed currently applied.
func (s *Source) Seed() uint16 { return s.seed }

// State returns the raw 25-bit state.
func (s *Source) State() uint32 { return s.state }

// Next mixes one sensor sample, applies a round and scales the new state to
// [0, limit). A non-positive limit yields 0 but still advances the state.
func (s *Source) Next(limit int) int {
	mixed := (s.state ^ uint32(s.sensor.Sample()&SensorMask)) & stateMask
	s.state = Round(mixed)
	if limit <= 0 {
		return 0
	}
	return int((uint64(s.state) * uint64(limit)) >> StateBits)
}

// Round applies theta, pi and chi over a 25-bit lane.
func Round(s uint32) uint32 {
	var theta uint32
	for i := 0; i < StateBits; i++ {
		b := bit(s, i) ^ bit(s, (i+5)%StateBits) ^ bit(s, (i+20)%StateBits)
		theta |= b << i
	}
	var pi uint32
	for i := 0; i < StateBits; i++ {
		pi |= bit(theta, i) << ((i * 7) % StateBits)
	}
	var chi uint32
	for i := 0; i < StateBits; i++ {
		b := bit(pi, i) ^ (^bit(pi, (i+1)%StateBits) & 1 & bit(pi, (i+2)%StateBits))
		chi |= b << i
	}
	return chi & stateMask
}

func bit(v uint32, i int) uint32 { return (v >> i) & 1 }
