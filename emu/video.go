package emu

import "encoding/binary"

// Display and frame geometry (PAL 48K).
const (
	DisplayWidth       = 320
	DisplayHeight      = 256
	FrameScanlines     = 312
	TopBorderScanlines = 64
	ScanlinePeriod     = 224

	borderRows   = 32
	borderPixels = 32
	bitmapRows   = 192
	bitmapCols   = 32

	attrOffset = 0x1800
)

// PixelBufferSize is the required size of the caller-owned RGBA buffer.
const PixelBufferSize = DisplayWidth * DisplayHeight * 4

// DecodeScanline renders the current scanline into the pixel buffer and
// advances the raster. It returns true when the frame wrapped.
func (u *ULA) DecodeScanline() bool {
	top := TopBorderScanlines - borderRows
	bottom := TopBorderScanlines + bitmapRows + borderRows

	if u.scanlineY >= top && u.scanlineY < bottom {
		y := u.scanlineY - top
		dst := u.pixels[y*DisplayWidth*4 : (y+1)*DisplayWidth*4]
		if y < borderRows || y >= borderRows+bitmapRows {
			fillBorder(dst, u.border)
		} else {
			u.decodeBitmapRow(dst, y-borderRows)
		}
	}

	u.scanlineY++
	if u.scanlineY >= FrameScanlines {
		u.scanlineY = 0
		u.blink++
		return true
	}
	return false
}

func fillBorder(dst []byte, c uint32) {
	for i := 0; i+4 <= len(dst); i += 4 {
		binary.LittleEndian.PutUint32(dst[i:], c)
	}
}

// decodeBitmapRow renders display row yy (0-191) with its side borders.
//
// Bitmap address bits: | 0| 1| 0|Y7|Y6|Y2|Y1|Y0|Y5|Y4|Y3|X4|X3|X2|X1|X0|
func (u *ULA) decodeBitmapRow(dst []byte, yy int) {
	yOffset := ((yy & 0xC0) << 5) | ((yy & 0x07) << 8) | ((yy & 0x38) << 2)
	attrRow := attrOffset + ((yy &^ 7) << 2)
	flash := u.blink&0x10 != 0

	fillBorder(dst[:borderPixels*4], u.border)
	fillBorder(dst[(DisplayWidth-borderPixels)*4:], u.border)

	out := dst[borderPixels*4 : (DisplayWidth-borderPixels)*4]
	for x := 0; x < bitmapCols; x++ {
		pix := u.display[yOffset|x]
		attr := u.display[attrRow+x]

		ink := palette[attr&7]
		paper := palette[(attr>>3)&7]
		if attr&0x80 != 0 && flash {
			ink, paper = paper, ink
		}
		if attr&0x40 == 0 {
			ink &= standardBrightness
			paper &= standardBrightness
		}

		cell := out[x*32 : x*32+32]
		for px := 0; px < 8; px++ {
			c := paper
			if pix&(0x80>>uint(px)) != 0 {
				c = ink
			}
			binary.LittleEndian.PutUint32(cell[px*4:], c)
		}
	}
}
