package sandpile

import "fmt"

// ReadLatency is the default number of port ticks between a request and its
// response.
const ReadLatency = 2

// Response carries the value read for one request.
type Response struct {
	X, Y  int
	Value Cell
	// Buffer is the buffer (0 = A, 1 = B) that was active when the request
	// was accepted.
	Buffer int
}

type inflightRead struct {
	resp Response
	due  uint64
}

// ReadPort is a pipelined, fixed-latency read interface onto a store's
// active buffer. It runs on its own clock: the consumer calls Tick at its own
// cadence and never mutates the grid.
//
// The value is sampled when the request is accepted and carried down the
// pipeline, so a Swap while a read is in flight cannot change what the read
// returns.
type ReadPort struct {
	store   *Store
	latency int
	now     uint64

	inflight []inflightRead
	out      []Response
}

// NewReadPort creates a port with the given latency in ticks. Latencies
// below one are raised to one.
func NewReadPort(store *Store, latency int) *ReadPort {
	if latency < 1 {
		latency = 1
	}
	return &ReadPort{store: store, latency: latency}
}

// Latency returns the fixed pipeline depth.
func (p *ReadPort) Latency() int { return p.latency }

// Pending returns the number of requests in flight.
func (p *ReadPort) Pending() int { return len(p.inflight) }

// Request accepts a read of (x, y). Requests can be issued back to back
// without waiting for earlier ones to complete.
func (p *ReadPort) Request(x, y int) error {
	v, err := p.store.ReadActive(x, y)
	if err != nil {
		return err
	}
	p.inflight = append(p.inflight, inflightRead{
		resp: Response{X: x, Y: y, Value: v, Buffer: p.store.Active()},
		due:  p.now + uint64(p.latency),
	})
	return nil
}

// Tick advances the port clock by one step and returns the responses that
// completed on this step, in request order. The returned slice is reused by
// the next call.
func (p *ReadPort) Tick() []Response {
	p.now++
	p.out = p.out[:0]
	n := 0
	for n < len(p.inflight) && p.inflight[n].due <= p.now {
		p.out = append(p.out, p.inflight[n].resp)
		n++
	}
	if n > 0 {
		p.inflight = append(p.inflight[:0], p.inflight[n:]...)
	}
	return p.out
}

// Flush drops every request in flight.
func (p *ReadPort) Flush() {
	p.inflight = p.inflight[:0]
}

// Scan reads every cell of a resolution×resolution grid in raster order,
// issuing one request per tick and handing each response to fn as it
// completes. It returns the number of port ticks spent:
// resolution² + latency − 1. Scan fails with ErrNotReady while other reads
// are in flight.
func (p *ReadPort) Scan(resolution int, fn func(Response)) (int, error) {
	if n := p.Pending(); n != 0 {
		return 0, fmt.Errorf("%w: scan with %d reads in flight", ErrNotReady, n)
	}
	total := resolution * resolution
	issued, done, ticks := 0, 0, 0
	for done < total {
		if issued < total {
			if err := p.Request(issued%resolution, issued/resolution); err != nil {
				p.Flush()
				return ticks, err
			}
			issued++
		}
		ticks++
		for _, r := range p.Tick() {
			fn(r)
			done++
		}
	}
	return ticks, nil
}
