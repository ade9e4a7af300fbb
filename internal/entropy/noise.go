package entropy

import "math/rand/v2"

// Sensor produces raw noise samples. Only the low 10 bits are mixed in.
type Sensor interface {
	Sample() uint16
}

// Noise is a deterministic stand-in for the analog noise sensor, backed by
// math/rand/v2 PCG.
type Noise struct {
	r *rand.Rand
}

// NewNoise creates a noise sensor using the provided seed.
func NewNoise(seed int64) *Noise {
	return &Noise{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Sample returns a 10-bit noise word.
func (n *Noise) Sample() uint16 {
	return uint16(n.r.IntN(SensorMask + 1))
}

// Quiet is a sensor that never contributes noise; the source then evolves
// from its seed alone.
type Quiet struct{}

// Sample always returns zero.
func (Quiet) Sample() uint16 { return 0 }
