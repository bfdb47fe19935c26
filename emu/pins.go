package emu

// Pins is the CPU pin state passed through the system bus on every
// machine cycle: address bus in bits 0-15, data bus in bits 16-23 and
// control lines above.
type Pins uint64

const (
	PinA0 Pins = 1 << 0
	PinA5 Pins = 1 << 5
	PinA6 Pins = 1 << 6
	PinA7 Pins = 1 << 7

	PinM1   Pins = 1 << 24
	PinMREQ Pins = 1 << 25
	PinIORQ Pins = 1 << 26
	PinRD   Pins = 1 << 27
	PinWR   Pins = 1 << 28
	PinHALT Pins = 1 << 29
	PinINT  Pins = 1 << 30
	PinNMI  Pins = 1 << 31

	pinAddrMask Pins = 0xFFFF
	pinDataMask Pins = 0xFF << 16
)

// MakePins builds a pin state from control lines, address and data.
func MakePins(ctrl Pins, addr uint16, data uint8) Pins {
	return ctrl | Pins(addr) | Pins(data)<<16
}

func (p Pins) Addr() uint16 {
	return uint16(p & pinAddrMask)
}

func (p Pins) Data() uint8 {
	return uint8((p & pinDataMask) >> 16)
}

// WithData returns p with the data bus replaced by d.
func (p Pins) WithData(d uint8) Pins {
	return (p &^ pinDataMask) | Pins(d)<<16
}
