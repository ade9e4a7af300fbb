//go:build ebiten

package ui

import (
	"image/color"

	"sandpile/internal/sandpile"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay draws optional debugging visuals on top of the grid: key 1 tints
// cells at or above the toppling threshold, key 2 marks the last drop.
type Overlay struct {
	showUnstable bool
	showDrop     bool

	maskImg *ebiten.Image
	maskBuf []byte
	maskRes int

	pixel *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay() *Overlay {
	o := &Overlay{}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles the layers.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showUnstable = !o.showUnstable
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showDrop = !o.showDrop
	}
}

// Draw paints the enabled layers over a grid drawn at (offX, offY) with
// scale pixels per cell. drop is the last drop position when ok is true.
func (o *Overlay) Draw(screen *ebiten.Image, cells []uint8, res, scale, offX, offY int, drop [2]int, ok bool) {
	if o.showUnstable {
		o.drawMask(screen, cells, res, scale, offX, offY)
	}
	if o.showDrop && ok {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(scale), float64(scale))
		op.GeoM.Translate(float64(offX+drop[0]*scale), float64(offY+drop[1]*scale))
		op.ColorScale.ScaleWithColor(color.RGBA{R: 0, G: 160, B: 255, A: 200})
		screen.DrawImage(o.pixel, op)
	}
}

func (o *Overlay) drawMask(screen *ebiten.Image, cells []uint8, res, scale, offX, offY int) {
	if res <= 0 || len(cells) < res*res {
		return
	}
	if o.maskImg == nil || o.maskRes != res {
		if o.maskImg != nil {
			o.maskImg.Dispose()
		}
		o.maskImg = ebiten.NewImage(res, res)
		o.maskBuf = make([]byte, res*res*4)
		o.maskRes = res
	}
	for i, c := range cells[:res*res] {
		base := i * 4
		var a byte
		if c >= uint8(sandpile.Threshold) {
			a = 0xB0
		}
		o.maskBuf[base+0] = a
		o.maskBuf[base+1] = a
		o.maskBuf[base+2] = a
		o.maskBuf[base+3] = a
	}
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	op.GeoM.Translate(float64(offX), float64(offY))
	screen.DrawImage(o.maskImg, op)
}
