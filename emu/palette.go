package emu

// Palette entries are packed as 0xAABBGGRR so that a little-endian store
// yields R, G, B, A bytes in the RGBA framebuffer.
var palette = [8]uint32{
	0xFF000000, // black
	0xFFFF0000, // blue
	0xFF0000FF, // red
	0xFFFF00FF, // magenta
	0xFF00FF00, // green
	0xFFFFFF00, // cyan
	0xFF00FFFF, // yellow
	0xFFFFFFFF, // white
}

// standardBrightness masks a palette entry to its non-BRIGHT variant.
const standardBrightness = 0xFFD7D7D7

// PaletteColor returns palette entry i&7 at full or standard brightness.
func PaletteColor(i uint8, bright bool) uint32 {
	c := palette[i&7]
	if !bright {
		c &= standardBrightness
	}
	return c
}
