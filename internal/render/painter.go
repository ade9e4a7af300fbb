//go:build ebiten

package render

import "github.com/hajimehoshi/ebiten/v2"

// GridPainter uploads a cell grid to a GPU image and draws it scaled.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter allocates a painter for a w×h grid.
func NewGridPainter(w, h int) *GridPainter {
	return &GridPainter{
		w:   w,
		h:   h,
		img: ebiten.NewImage(w, h),
		buf: make([]byte, w*h*4),
	}
}

// Resize reallocates the painter when the grid dimensions change.
func (p *GridPainter) Resize(w, h int) {
	if w == p.w && h == p.h {
		return
	}
	p.img.Dispose()
	*p = *NewGridPainter(w, h)
}

// Blit colours cells through the palette and draws them at the given
// scale, offset by (x, y) screen pixels.
func (p *GridPainter) Blit(screen *ebiten.Image, cells []uint8, scale, x, y int) {
	if len(cells) < p.w*p.h {
		return
	}
	fillPaletteRGBA(p.buf, cells[:p.w*p.h])
	p.img.WritePixels(p.buf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(p.img, op)
}
