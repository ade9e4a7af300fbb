package render

import "image/color"

// FromRGB12 expands a 4-bit-per-channel 0xRGB color to 8 bits per channel.
func FromRGB12(rgb uint16) color.RGBA {
	return color.RGBA{
		R: uint8((rgb>>8)&0xF) * 17,
		G: uint8((rgb>>4)&0xF) * 17,
		B: uint8(rgb&0xF) * 17,
		A: 0xFF,
	}
}

// Palette maps cell values to display colors. Values past the end of the
// palette draw in the default color.
var Palette = []color.RGBA{
	FromRGB12(0x000), // empty
	FromRGB12(0xFDB), // tan
	FromRGB12(0xFF0), // yellow
	FromRGB12(0x842), // brown
	FromRGB12(0xF00), // red
}

// DefaultColor is drawn for values without a palette entry.
var DefaultColor = FromRGB12(0x000)

// Color returns the display color of a cell value.
func Color(v uint8) color.RGBA {
	if int(v) < len(Palette) {
		return Palette[v]
	}
	return DefaultColor
}

// fillPaletteRGBA converts cell values into RGBA pixels in buf, one pixel
// per cell.
func fillPaletteRGBA(buf []byte, cells []uint8) {
	for i, c := range cells {
		base := i * 4
		col := Color(c)
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
