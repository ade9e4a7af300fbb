package render

import (
	"fmt"

	"sandpile/internal/core"
	"sandpile/internal/sandpile"
)

// Scanout pulls whole generations through a read port into a frame buffer,
// one request per port tick.
type Scanout struct {
	port  *sandpile.ReadPort
	frame *core.ByteGrid
	ticks int
}

// NewScanout wraps the renderer's read port.
func NewScanout(port *sandpile.ReadPort) *Scanout {
	return &Scanout{port: port, frame: core.NewByteGrid(1, 1)}
}

// Frame scans a resolution×resolution generation and returns the frame
// buffer, which is reused by the next call.
func (s *Scanout) Frame(resolution int) (*core.ByteGrid, error) {
	if s.frame.W != resolution || s.frame.H != resolution {
		s.frame.Resize(resolution, resolution)
	}
	n, err := s.port.Scan(resolution, func(r sandpile.Response) {
		s.frame.Set(r.X, r.Y, uint8(r.Value))
	})
	s.ticks = n
	if err != nil {
		return s.frame, fmt.Errorf("scan out: %w", err)
	}
	return s.frame, nil
}

// Ticks returns the port ticks the last Frame spent.
func (s *Scanout) Ticks() int { return s.ticks }
