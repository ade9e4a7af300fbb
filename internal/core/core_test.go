package core

import (
	"slices"
	"testing"
	"time"
)

func TestByteGridBounds(t *testing.T) {
	g := NewByteGrid(3, 2)
	g.Set(2, 1, 7)
	g.Set(3, 0, 9)
	g.Set(-1, 0, 9)
	if got := g.At(2, 1); got != 7 {
		t.Fatalf("At(2,1) = %d, want 7", got)
	}
	if got := g.At(5, 5); got != 0 {
		t.Fatalf("At outside = %d, want 0", got)
	}
	want := []uint8{0, 0, 0, 0, 0, 7}
	if !slices.Equal(g.Cells(), want) {
		t.Fatalf("cells = %v, want %v", g.Cells(), want)
	}
}

func TestByteGridResizeZeroes(t *testing.T) {
	g := NewByteGrid(2, 2)
	g.Set(1, 1, 3)
	g.Resize(2, 2)
	if g.At(1, 1) != 0 {
		t.Fatal("same-size resize must zero the grid")
	}
	g.Resize(4, 0)
	if g.W != 4 || g.H != 1 || len(g.Cells()) != 4 {
		t.Fatalf("resize to 4x0 gave %dx%d with %d cells", g.W, g.H, len(g.Cells()))
	}
}

func TestPacerDue(t *testing.T) {
	p := NewPacer(10)
	t0 := time.Unix(100, 0)
	if n := p.Due(t0); n != 0 {
		t.Fatalf("first call owed %d steps", n)
	}
	if n := p.Due(t0.Add(250 * time.Millisecond)); n != 2 {
		t.Fatalf("250ms at 10/s owed %d steps, want 2", n)
	}
	// The 50ms remainder carries over.
	if n := p.Due(t0.Add(300 * time.Millisecond)); n != 1 {
		t.Fatalf("carry-over owed %d steps, want 1", n)
	}
	if n := p.Due(t0.Add(10 * time.Second)); n != 8 {
		t.Fatalf("stall owed %d steps, want burst cap 8", n)
	}
	p.Reset()
	if n := p.Due(t0.Add(20 * time.Second)); n != 0 {
		t.Fatalf("after reset owed %d steps", n)
	}
}

type nopSim struct{}

func (nopSim) Name() string   { return "nop" }
func (nopSim) Size() Size     { return Size{W: 1, H: 1} }
func (nopSim) Reset(int64)    {}
func (nopSim) Step()          {}
func (nopSim) Cells() []uint8 { return []uint8{0} }

func TestRegistry(t *testing.T) {
	Register("", func(map[string]string) (Sim, error) { return nopSim{}, nil })
	Register("nop-nil", nil)
	Register("nop", func(map[string]string) (Sim, error) { return nopSim{}, nil })

	if _, ok := Lookup(""); ok {
		t.Fatal("empty name must not register")
	}
	if _, ok := Lookup("nop-nil"); ok {
		t.Fatal("nil factory must not register")
	}
	f, ok := Lookup("nop")
	if !ok {
		t.Fatal("nop not registered")
	}
	sim, err := f(nil)
	if err != nil || sim.Name() != "nop" {
		t.Fatalf("factory = %v, %v", sim, err)
	}
	if !slices.Contains(Names(), "nop") || !slices.IsSorted(Names()) {
		t.Fatalf("Names() = %v", Names())
	}
}
