package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"sandpile/internal/sandpile"
)

func TestPalette(t *testing.T) {
	want := []color.RGBA{
		{0x00, 0x00, 0x00, 0xFF},
		{0xFF, 0xDD, 0xBB, 0xFF},
		{0xFF, 0xFF, 0x00, 0xFF},
		{0x88, 0x44, 0x22, 0xFF},
		{0xFF, 0x00, 0x00, 0xFF},
	}
	for v, c := range want {
		if got := Color(uint8(v)); got != c {
			t.Fatalf("Color(%d) = %v, want %v", v, got, c)
		}
	}
	for _, v := range []uint8{5, 6, 7, 255} {
		if got := Color(v); got != DefaultColor {
			t.Fatalf("Color(%d) = %v, want default", v, got)
		}
	}
}

func TestFillPaletteRGBA(t *testing.T) {
	cells := []uint8{0, 4, 7}
	buf := make([]byte, len(cells)*4)
	fillPaletteRGBA(buf, cells)
	want := []byte{0, 0, 0, 255, 255, 0, 0, 255, 0, 0, 0, 255}
	if !bytes.Equal(buf, want) {
		t.Fatalf("buf = %v, want %v", buf, want)
	}
}

func readyMachine(t *testing.T, res int) *sandpile.Machine {
	t.Helper()
	cfg := sandpile.DefaultConfig()
	cfg.Resolution = res
	m, err := sandpile.NewMachine(cfg, nil)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	m.AwaitReady()
	return m
}

func TestScanoutReadsActiveGeneration(t *testing.T) {
	m := readyMachine(t, 6)
	for i := 0; i < 3; i++ {
		if err := m.Drop(2, 5); err != nil {
			t.Fatalf("Drop: %v", err)
		}
		if _, err := m.RunPass(); err != nil {
			t.Fatalf("RunPass: %v", err)
		}
	}
	s := NewScanout(m.Port())
	frame, err := s.Frame(6)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if frame.W != 6 || frame.H != 6 {
		t.Fatalf("frame %dx%d", frame.W, frame.H)
	}
	if got := frame.At(2, 5); got != 3 {
		t.Fatalf("frame (2,5) = %d, want 3", got)
	}
	if !bytes.Equal(frame.Cells(), m.Cells()) {
		t.Fatal("scan-out disagrees with the diagnostic view")
	}
	if want := 36 + m.Port().Latency() - 1; s.Ticks() != want {
		t.Fatalf("Ticks() = %d, want %d", s.Ticks(), want)
	}

	m.Reset()
	if _, err := s.Frame(6); err == nil {
		t.Fatal("expected error while the store is clearing")
	}
}

func TestGridImage(t *testing.T) {
	cells := []uint8{0, 1, 2, 4}
	img := Grid(cells, 2, 3)
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 6 {
		t.Fatalf("bounds = %v", b)
	}
	if got := img.RGBAAt(5, 0); got != Color(1) {
		t.Fatalf("pixel (5,0) = %v", got)
	}
	if got := img.RGBAAt(4, 4); got != Color(4) {
		t.Fatalf("pixel (4,4) = %v", got)
	}
	if got := Grid(cells, 2, 1).RGBAAt(0, 1); got != Color(2) {
		t.Fatalf("unscaled pixel (0,1) = %v", got)
	}
}

func TestScreenCentersGrid(t *testing.T) {
	cells := []uint8{1, 2, 3, 4}
	img := Screen(cells, 2)
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
		t.Fatalf("bounds = %v", b)
	}
	checks := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, DefaultColor},
		{79, 240, DefaultColor},
		{80, 0, Color(1)},
		{319, 239, Color(1)},
		{320, 0, Color(2)},
		{80, 240, Color(3)},
		{559, 479, Color(4)},
		{560, 100, DefaultColor},
	}
	for _, c := range checks {
		if got := img.RGBAAt(c.x, c.y); got != c.want {
			t.Fatalf("pixel (%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, Grid([]uint8{4}, 1, 2)); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, g, b, _ := img.At(1, 1).RGBA()
	if r>>8 != 0xFF || g != 0 || b != 0 {
		t.Fatalf("decoded pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}
