package emu

import "testing"

// TestKeyboard_PlainKeys tests column/line routing for unshifted keys
func TestKeyboard_PlainKeys(t *testing.T) {
	testCases := []struct {
		key        int
		columnMask uint8
		lines      uint8
	}{
		{'a', 1 << 1, 0x01},
		{'z', 1 << 0, 0x02},
		{'v', 1 << 0, 0x10},
		{'1', 1 << 3, 0x01},
		{'5', 1 << 3, 0x10},
		{'0', 1 << 4, 0x01},
		{'p', 1 << 5, 0x01},
		{'h', 1 << 6, 0x10},
		{'b', 1 << 7, 0x10},
		{KeyEnter, 1 << 6, 0x01},
		{KeySpace, 1 << 7, 0x01},
		{KeySymShift, 1 << 7, 0x02},
		{KeyCapsShift, 1 << 0, 0x01},
	}

	for _, tc := range testCases {
		k := NewZXKeyboard(0)
		k.KeyDown(tc.key)
		if got := k.TestLines(tc.columnMask); got != tc.lines {
			t.Errorf("key 0x%02X mask 0x%02X: expected lines 0x%02X, got 0x%02X", tc.key, tc.columnMask, tc.lines, got)
		}
		if got := k.TestLines(^tc.columnMask); got != 0 {
			t.Errorf("key 0x%02X other columns: expected 0x00, got 0x%02X", tc.key, got)
		}
	}
}

// TestKeyboard_ShiftedKeys tests that modifier layers assert the modifier position
func TestKeyboard_ShiftedKeys(t *testing.T) {
	testCases := []struct {
		name       string
		key        int
		columnMask uint8
		lines      uint8
	}{
		{"A key", 'A', 1 << 1, 0x01},
		{"A caps shift", 'A', 1 << 0, 0x01},
		{"! key", '!', 1 << 3, 0x01},
		{"! sym shift", '!', 1 << 7, 0x02},
		{"up digit", KeyUp, 1 << 4, 0x08},
		{"up caps shift", KeyUp, 1 << 0, 0x01},
		{"left digit", KeyLeft, 1 << 3, 0x10},
		{"delete digit", KeyDelete, 1 << 4, 0x01},
		{"edit digit", KeyEdit, 1 << 3, 0x01},
		{"* sym shift", '*', 1 << 7, 0x12},
	}

	for _, tc := range testCases {
		k := NewZXKeyboard(0)
		k.KeyDown(tc.key)
		if got := k.TestLines(tc.columnMask); got != tc.lines {
			t.Errorf("%s: expected lines 0x%02X, got 0x%02X", tc.name, tc.lines, got)
		}
	}
}

// TestKeyboard_MultipleKeys tests that lines from several keys are combined
func TestKeyboard_MultipleKeys(t *testing.T) {
	k := NewZXKeyboard(0)
	k.KeyDown('q')
	k.KeyDown('t')
	k.KeyDown('a')

	if got := k.TestLines(1 << 2); got != 0x11 {
		t.Errorf("Column A10: expected 0x11, got 0x%02X", got)
	}
	if got := k.TestLines(0xFF); got != 0x11 {
		t.Errorf("All columns: expected 0x11, got 0x%02X", got)
	}

	k.KeyUp('q')
	if got := k.TestLines(1 << 2); got != 0x10 {
		t.Errorf("Column A10 after release: expected 0x10, got 0x%02X", got)
	}
}

// TestKeyboard_Sticky tests the minimum hold time of a released key
func TestKeyboard_Sticky(t *testing.T) {
	k := NewZXKeyboard(1)
	k.KeyDown('a')
	k.KeyUp('a')

	if !k.Down('a') {
		t.Fatal("Key released before any update")
	}
	k.Update()
	if !k.Down('a') {
		t.Fatal("Key released after one update")
	}
	k.Update()
	if k.Down('a') {
		t.Error("Key still down after sticky period")
	}
}

// TestKeyboard_StickyRepress tests that pressing again cancels a pending release
func TestKeyboard_StickyRepress(t *testing.T) {
	k := NewZXKeyboard(1)
	k.KeyDown('s')
	k.KeyUp('s')
	k.KeyDown('s')
	k.Update()
	k.Update()
	k.Update()
	if !k.Down('s') {
		t.Error("Re-pressed key expired while held")
	}
}

// TestKeyboard_Unregistered tests that unknown codes are ignored
func TestKeyboard_Unregistered(t *testing.T) {
	k := NewZXKeyboard(0)
	k.KeyDown(0x01)
	k.KeyDown(-1)
	k.KeyDown(1000)
	if got := k.TestLines(0xFF); got != 0 {
		t.Errorf("Unregistered keys: expected 0x00, got 0x%02X", got)
	}
	k.KeyUp(0x01)
}

// TestKeyboard_ReleaseAll tests clearing every key
func TestKeyboard_ReleaseAll(t *testing.T) {
	k := NewZXKeyboard(5)
	k.KeyDown('m')
	k.KeyDown('n')
	k.ReleaseAll()
	if got := k.TestLines(0xFF); got != 0 {
		t.Errorf("After ReleaseAll: expected 0x00, got 0x%02X", got)
	}
}
