package render

import (
	"image"
	"image/png"
	"io"
)

// The VGA frame is 640x480 with the grid drawn in a centered 480x480 square.
const (
	ScreenWidth  = 640
	ScreenHeight = 480
	GridSide     = 480
	GridOffsetX  = (ScreenWidth - GridSide) / 2
)

// Grid renders cells as an image with each cell scale pixels wide.
func Grid(cells []uint8, resolution, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	side := resolution * scale
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	if scale == 1 {
		fillPaletteRGBA(img.Pix, cells[:resolution*resolution])
		return img
	}
	for py := 0; py < side; py++ {
		row := py / scale * resolution
		for px := 0; px < side; px++ {
			img.SetRGBA(px, py, Color(cells[row+px/scale]))
		}
	}
	return img
}

// Screen composes a full VGA frame: black borders and the grid stretched
// over the square, each pixel showing the nearest cell.
func Screen(cells []uint8, resolution int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	for py := 0; py < ScreenHeight; py++ {
		for px := 0; px < ScreenWidth; px++ {
			gx := px - GridOffsetX
			if gx < 0 || gx >= GridSide || resolution <= 0 {
				img.SetRGBA(px, py, DefaultColor)
				continue
			}
			cx := gx * resolution / GridSide
			cy := py * resolution / GridSide
			img.SetRGBA(px, py, Color(cells[cy*resolution+cx]))
		}
	}
	return img
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
