package emu

// Port 0xFE bits.
const (
	feBorderMask = 0x07
	feMIC        = 1 << 3
	feEAR        = 1 << 4
)

// Kempston joystick bits (active high).
const (
	KempstonRight = 1 << 0
	KempstonLeft  = 1 << 1
	KempstonDown  = 1 << 2
	KempstonUp    = 1 << 3
	KempstonFire  = 1 << 4
)

// ULA holds the video, border, keyboard and control-port state of the
// machine. It decodes port 0xFE and renders the raster.
type ULA struct {
	pixels  []byte  // caller-owned RGBA buffer, DisplayWidth*DisplayHeight*4
	display []uint8 // RAM bank holding the bitmap and attributes
	kbd     *Keyboard

	border      uint32
	lastFE      uint8
	blink       uint8
	scanlineY   int
	scanCounter int

	kempston     bool
	kempstonBits uint8
}

// NewULA creates a ULA that renders into pixels from the display bank.
func NewULA(pixels []byte, display []uint8, kbd *Keyboard) *ULA {
	return &ULA{
		pixels:      pixels,
		display:     display,
		kbd:         kbd,
		border:      PaletteColor(0, false),
		scanCounter: ScanlinePeriod,
	}
}

// ReadPort returns the value read from an I/O port.
func (u *ULA) ReadPort(port uint16) uint8 {
	if Pins(port)&PinA0 == 0 {
		data := uint8(1<<7 | 1<<5)
		if u.lastFE&(feMIC|feEAR) != 0 {
			data |= 1 << 6
		}
		columnMask := ^uint8(port >> 8)
		data |= ^u.kbd.TestLines(columnMask) & 0x1F
		return data
	}
	if u.kempston && Pins(port)&(PinA5|PinA6|PinA7) == 0 {
		return u.kempstonBits
	}
	return 0xFF
}

// WritePort handles an OUT to port. Only even ports are decoded.
func (u *ULA) WritePort(port uint16, data uint8) {
	if Pins(port)&PinA0 != 0 {
		return
	}
	u.border = PaletteColor(data&feBorderMask, false)
	u.lastFE = data
}

// SetKempston enables or disables the Kempston interface.
func (u *ULA) SetKempston(enabled bool) {
	u.kempston = enabled
	if !enabled {
		u.kempstonBits = 0
	}
}

// SetKempstonBits sets the joystick state returned on the Kempston port.
func (u *ULA) SetKempstonBits(bits uint8) {
	u.kempstonBits = bits & 0x1F
}

// SetBorder sets the border from a palette index at standard brightness.
func (u *ULA) SetBorder(index uint8) {
	u.border = PaletteColor(index, false)
}

// Border returns the current border color.
func (u *ULA) Border() uint32 {
	return u.border
}

// EAR reports the EAR output level last written to port 0xFE.
func (u *ULA) EAR() bool {
	return u.lastFE&feEAR != 0
}

// LastFE returns the last byte written to port 0xFE.
func (u *ULA) LastFE() uint8 {
	return u.lastFE
}

// Blink returns the frame counter driving attribute FLASH.
func (u *ULA) Blink() uint8 {
	return u.blink
}

// ScanlineY returns the scanline the next decode will render.
func (u *ULA) ScanlineY() int {
	return u.scanlineY
}

// Clock advances the scanline counter by ticks. It returns true when a
// decoded scanline completed the frame.
func (u *ULA) Clock(ticks int) bool {
	u.scanCounter -= ticks
	if u.scanCounter > 0 {
		return false
	}
	u.scanCounter += ScanlinePeriod
	return u.DecodeScanline()
}
