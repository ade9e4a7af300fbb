package sandpile

import "fmt"

// Translate maps the logical cell (x, y) of a resolution×resolution grid to
// its slot in a tiled backing store. Tiles are tileRows×tileCols blocks
// enumerated row-major, ceil(resolution/tileCols) per tile row; cells inside a
// tile are row-major too. Edge tiles that the grid only partially covers still
// occupy a full tile's worth of slots.
func Translate(x, y, resolution, tileRows, tileCols int) (int, error) {
	if tileRows <= 0 || tileCols <= 0 {
		return 0, fmt.Errorf("%w: tile %dx%d", ErrInvalidConfiguration, tileRows, tileCols)
	}
	if resolution <= 0 {
		return 0, fmt.Errorf("%w: resolution %d", ErrInvalidConfiguration, resolution)
	}
	if x < 0 || y < 0 || x >= resolution || y >= resolution {
		return 0, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfRange, x, y, resolution, resolution)
	}
	tilesPerRow := ceilDiv(resolution, tileCols)
	tile := (y/tileRows)*tilesPerRow + x/tileCols
	offset := (y%tileRows)*tileCols + x%tileCols
	return tile*tileRows*tileCols + offset, nil
}

// Layout fixes the tile shape and the maximum grid side a store is built for.
type Layout struct {
	TileRows      int
	TileCols      int
	MaxResolution int
}

// Validate checks the layout dimensions.
func (l Layout) Validate() error {
	if l.TileRows <= 0 || l.TileCols <= 0 {
		return fmt.Errorf("%w: tile %dx%d", ErrInvalidConfiguration, l.TileRows, l.TileCols)
	}
	if l.MaxResolution <= 0 {
		return fmt.Errorf("%w: max resolution %d", ErrInvalidConfiguration, l.MaxResolution)
	}
	return nil
}

// TileArea is the number of slots per tile.
func (l Layout) TileArea() int { return l.TileRows * l.TileCols }

// Tiles returns how many tiles cover a resolution×resolution grid.
func (l Layout) Tiles(resolution int) int {
	return ceilDiv(resolution, l.TileCols) * ceilDiv(resolution, l.TileRows)
}

// Capacity is the slot count of one buffer sized for MaxResolution.
func (l Layout) Capacity() int { return l.Tiles(l.MaxResolution) * l.TileArea() }

// Index translates (x, y) for a grid of the given resolution, additionally
// rejecting resolutions above the layout's capacity.
func (l Layout) Index(x, y, resolution int) (int, error) {
	if resolution > l.MaxResolution {
		return 0, fmt.Errorf("%w: resolution %d exceeds %d", ErrInvalidConfiguration, resolution, l.MaxResolution)
	}
	return Translate(x, y, resolution, l.TileRows, l.TileCols)
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
