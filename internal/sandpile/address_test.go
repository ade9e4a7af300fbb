package sandpile

import (
	"errors"
	"testing"
)

func TestTranslateIsBijectionOverAddressedRange(t *testing.T) {
	shapes := [][2]int{{4, 4}, {2, 3}, {3, 2}, {1, 1}, {5, 7}}
	for _, shape := range shapes {
		rows, cols := shape[0], shape[1]
		layout := Layout{TileRows: rows, TileCols: cols, MaxResolution: 16}
		for res := 1; res <= 16; res++ {
			limit := layout.Tiles(res) * layout.TileArea()
			seen := make(map[int][2]int, res*res)
			for y := 0; y < res; y++ {
				for x := 0; x < res; x++ {
					idx, err := Translate(x, y, res, rows, cols)
					if err != nil {
						t.Fatalf("tile %dx%d res %d: Translate(%d,%d) failed: %v", rows, cols, res, x, y, err)
					}
					if idx < 0 || idx >= limit {
						t.Fatalf("tile %dx%d res %d: index %d for (%d,%d) outside [0,%d)", rows, cols, res, idx, x, y, limit)
					}
					if prev, dup := seen[idx]; dup {
						t.Fatalf("tile %dx%d res %d: (%d,%d) and %v share index %d", rows, cols, res, x, y, prev, idx)
					}
					seen[idx] = [2]int{x, y}
					if idx >= layout.Capacity() {
						t.Fatalf("index %d exceeds store capacity %d", idx, layout.Capacity())
					}
				}
			}
		}
	}
}

func TestTranslateTiledOrder(t *testing.T) {
	cases := []struct {
		x, y, res int
		want      int
	}{
		{0, 0, 32, 0},
		{3, 0, 32, 3},
		{0, 1, 32, 4},
		{4, 0, 32, 16},
		{5, 6, 32, 153},
		// 5×5 with 4×4 tiles: two tiles per row, the edge tiles are ragged
		// but still reserve 16 slots each.
		{4, 0, 5, 16},
		{0, 4, 5, 32},
		{4, 4, 5, 48},
	}
	for _, tc := range cases {
		got, err := Translate(tc.x, tc.y, tc.res, 4, 4)
		if err != nil {
			t.Fatalf("Translate(%d,%d,%d) failed: %v", tc.x, tc.y, tc.res, err)
		}
		if got != tc.want {
			t.Fatalf("Translate(%d,%d,%d) = %d, want %d", tc.x, tc.y, tc.res, got, tc.want)
		}
	}
}

func TestTranslateRejectsOutOfRange(t *testing.T) {
	coords := [][2]int{{8, 0}, {0, 8}, {8, 8}, {-1, 0}, {0, -1}, {100, 3}}
	for _, c := range coords {
		if _, err := Translate(c[0], c[1], 8, 4, 4); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Translate(%d,%d) error = %v, want ErrOutOfRange", c[0], c[1], err)
		}
	}
}

func TestTranslateRejectsInvalidConfiguration(t *testing.T) {
	if _, err := Translate(0, 0, 8, 0, 4); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("zero tile rows: error = %v", err)
	}
	if _, err := Translate(0, 0, 8, 4, -2); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("negative tile cols: error = %v", err)
	}
	if _, err := Translate(0, 0, 0, 4, 4); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("zero resolution: error = %v", err)
	}
	layout := Layout{TileRows: 4, TileCols: 4, MaxResolution: 16}
	if _, err := layout.Index(0, 0, 17); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("resolution above capacity: error = %v", err)
	}
}

func TestLayoutCapacity(t *testing.T) {
	layout := Layout{TileRows: 4, TileCols: 4, MaxResolution: 30}
	// ceil(30/4) = 8 tiles per side.
	if got, want := layout.Capacity(), 8*8*16; got != want {
		t.Fatalf("Capacity() = %d, want %d", got, want)
	}
	layout = Layout{TileRows: 2, TileCols: 3, MaxResolution: 7}
	// ceil(7/3) = 3 tiles per row, ceil(7/2) = 4 tile rows.
	if got, want := layout.Capacity(), 3*4*6; got != want {
		t.Fatalf("Capacity() = %d, want %d", got, want)
	}
}
