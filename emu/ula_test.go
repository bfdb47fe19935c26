package emu

import "testing"

func newTestULA() (*ULA, *Keyboard, []uint8) {
	kbd := NewZXKeyboard(0)
	display := make([]uint8, BankSize)
	return NewULA(make([]byte, PixelBufferSize), display, kbd), kbd, display
}

// TestULA_PortFEIdle tests the status byte with no keys and no EAR/MIC output
func TestULA_PortFEIdle(t *testing.T) {
	u, _, _ := newTestULA()

	for _, port := range []uint16{0xFEFE, 0x00FE, 0x7FFE, 0xFFFE, 0x1234 &^ 1} {
		if got := u.ReadPort(port); got != 0xBF {
			t.Errorf("ReadPort(0x%04X): expected 0xBF, got 0x%02X", port, got)
		}
	}
}

// TestULA_PortFEKeyboard tests column selection through the high address byte
func TestULA_PortFEKeyboard(t *testing.T) {
	u, kbd, _ := newTestULA()
	kbd.KeyDown('a')

	testCases := []struct {
		port     uint16
		expected uint8
	}{
		{0xFDFE, 0xBE}, // A9 low selects the a-g half row
		{0xFEFE, 0xBF}, // caps shift half row
		{0x00FE, 0xBE}, // all columns
		{0xFCFE, 0xBE},
		{0xFFFE, 0xBF}, // no columns
	}

	for _, tc := range testCases {
		if got := u.ReadPort(tc.port); got != tc.expected {
			t.Errorf("ReadPort(0x%04X): expected 0x%02X, got 0x%02X", tc.port, tc.expected, got)
		}
	}
}

// TestULA_PortFEEarMic tests bit 6 reconstruction from the last write
func TestULA_PortFEEarMic(t *testing.T) {
	testCases := []struct {
		written  uint8
		expected uint8
	}{
		{0x00, 0xBF},
		{0x07, 0xBF},
		{0x08, 0xFF},
		{0x10, 0xFF},
		{0x18, 0xFF},
		{0xE7, 0xBF},
	}

	for _, tc := range testCases {
		u, _, _ := newTestULA()
		u.WritePort(0x00FE, tc.written)
		if got := u.ReadPort(0xFFFE); got != tc.expected {
			t.Errorf("After OUT 0x%02X: expected 0x%02X, got 0x%02X", tc.written, tc.expected, got)
		}
	}
}

// TestULA_BorderWrite tests border latching at standard brightness
func TestULA_BorderWrite(t *testing.T) {
	u, _, _ := newTestULA()

	u.WritePort(0x00FE, 0xFB) // low bits 011 = magenta
	if got, want := u.Border(), palette[3]&0xFFD7D7D7; got != want {
		t.Errorf("Border: expected 0x%08X, got 0x%08X", want, got)
	}
	if got := u.LastFE(); got != 0xFB {
		t.Errorf("LastFE: expected 0xFB, got 0x%02X", got)
	}

	for i := uint8(0); i < 8; i++ {
		u.WritePort(0x12FE, i)
		if got := u.Border(); got != PaletteColor(i, false) {
			t.Errorf("Border %d: expected 0x%08X, got 0x%08X", i, PaletteColor(i, false), got)
		}
	}
}

// TestULA_OddPortsIgnored tests that odd ports neither latch nor answer
func TestULA_OddPortsIgnored(t *testing.T) {
	u, _, _ := newTestULA()
	u.WritePort(0x00FE, 0x02)

	u.WritePort(0x00FF, 0x05)
	if got := u.Border(); got != PaletteColor(2, false) {
		t.Errorf("Border after odd write: expected red, got 0x%08X", got)
	}
	if got := u.ReadPort(0x001F); got != 0xFF {
		t.Errorf("Odd port read: expected 0xFF, got 0x%02X", got)
	}
}

// TestULA_Kempston tests the joystick port when enabled
func TestULA_Kempston(t *testing.T) {
	u, _, _ := newTestULA()
	u.SetKempstonBits(KempstonFire | KempstonUp)
	if got := u.ReadPort(0x001F); got != 0xFF {
		t.Errorf("Disabled Kempston: expected 0xFF, got 0x%02X", got)
	}

	u.SetKempston(true)
	u.SetKempstonBits(KempstonFire | KempstonUp)
	if got := u.ReadPort(0x001F); got != 0x18 {
		t.Errorf("Kempston 0x001F: expected 0x18, got 0x%02X", got)
	}
	if got := u.ReadPort(0xFF1F); got != 0x18 {
		t.Errorf("Kempston 0xFF1F: expected 0x18, got 0x%02X", got)
	}
	if got := u.ReadPort(0x003F); got != 0xFF {
		t.Errorf("Port 0x003F (A5 set): expected 0xFF, got 0x%02X", got)
	}

	u.SetKempston(false)
	u.SetKempston(true)
	if got := u.ReadPort(0x001F); got != 0x00 {
		t.Errorf("Kempston after re-enable: expected 0x00, got 0x%02X", got)
	}
}

// TestPalette_Brightness tests standard and bright palette variants
func TestPalette_Brightness(t *testing.T) {
	if got := PaletteColor(7, true); got != 0xFFFFFFFF {
		t.Errorf("Bright white: expected 0xFFFFFFFF, got 0x%08X", got)
	}
	if got := PaletteColor(7, false); got != 0xFFD7D7D7 {
		t.Errorf("White: expected 0xFFD7D7D7, got 0x%08X", got)
	}
	if got := PaletteColor(0, false); got != 0xFF000000 {
		t.Errorf("Black: expected 0xFF000000, got 0x%08X", got)
	}
	if got := PaletteColor(9, true); got != palette[1] {
		t.Errorf("Index wraps: expected blue, got 0x%08X", got)
	}
}
