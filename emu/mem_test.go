package emu

import (
	"errors"
	"testing"
)

// newTestMemory maps a patterned ROM at 0x0000 and three RAM banks above it.
func newTestMemory() (*Memory, []byte, *[3][BankSize]uint8) {
	rom := createTestROMWithPattern(1)
	var ram [3][BankSize]uint8
	mem := NewMemory()
	mem.MapROM(0x0000, BankSize, rom)
	mem.MapRAM(0x4000, BankSize, ram[0][:])
	mem.MapRAM(0x8000, BankSize, ram[1][:])
	mem.MapRAM(0xC000, BankSize, ram[2][:])
	return mem, rom, &ram
}

// TestMemory_RAMReadWrite tests basic RAM operations in every RAM page
func TestMemory_RAMReadWrite(t *testing.T) {
	mem, _, _ := newTestMemory()

	testCases := []struct {
		addr uint16
		val  uint8
	}{
		{0x4000, 0x42},
		{0x5AFF, 0xFF},
		{0x7FFF, 0xAB},
		{0x8000, 0xCD},
		{0xC000, 0x12},
		{0xFFFF, 0x34},
	}

	for _, tc := range testCases {
		mem.Set(tc.addr, tc.val)
		got := mem.Get(tc.addr)
		if got != tc.val {
			t.Errorf("RAM[0x%04X]: expected 0x%02X, got 0x%02X", tc.addr, tc.val, got)
		}
	}
}

// TestMemory_BankRouting tests that each page writes into its own bank
func TestMemory_BankRouting(t *testing.T) {
	mem, _, ram := newTestMemory()

	mem.Set(0x4001, 0x11)
	mem.Set(0x8002, 0x22)
	mem.Set(0xC003, 0x33)

	if ram[0][1] != 0x11 {
		t.Errorf("bank 0 offset 1: expected 0x11, got 0x%02X", ram[0][1])
	}
	if ram[1][2] != 0x22 {
		t.Errorf("bank 1 offset 2: expected 0x22, got 0x%02X", ram[1][2])
	}
	if ram[2][3] != 0x33 {
		t.Errorf("bank 2 offset 3: expected 0x33, got 0x%02X", ram[2][3])
	}
}

// TestMemory_ROMWriteIgnored tests that every ROM address rejects writes
func TestMemory_ROMWriteIgnored(t *testing.T) {
	mem, rom, _ := newTestMemory()

	for addr := 0; addr < BankSize; addr++ {
		mem.Set(uint16(addr), ^rom[addr])
	}
	for addr := 0; addr < BankSize; addr++ {
		if got := mem.Get(uint16(addr)); got != rom[addr] {
			t.Fatalf("ROM[0x%04X]: expected 0x%02X, got 0x%02X", addr, rom[addr], got)
		}
	}
	if !mem.IsROM(0x3FFF) || mem.IsROM(0x4000) {
		t.Error("IsROM: expected true for 0x3FFF and false for 0x4000")
	}
}

// TestMemory_Remap tests that a page mapping can be replaced
func TestMemory_Remap(t *testing.T) {
	mem, _, ram := newTestMemory()
	ram[2][0] = 0xAA

	mem.MapRAM(0x4000, BankSize, ram[2][:])
	if got := mem.Get(0x4000); got != 0xAA {
		t.Errorf("Remapped 0x4000: expected 0xAA, got 0x%02X", got)
	}
}

// TestMemory_MultiPageMap tests a single mapping spanning several pages
func TestMemory_MultiPageMap(t *testing.T) {
	flat := make([]uint8, 3*BankSize)
	mem := NewMemory()
	mem.MapRAM(0x4000, len(flat), flat)

	mem.Set(0xC000, 0x5A)
	if flat[2*BankSize] != 0x5A {
		t.Errorf("flat[0x8000]: expected 0x5A, got 0x%02X", flat[2*BankSize])
	}
}

// TestMemory_Unmapped tests open-bus behavior of unmapped pages
func TestMemory_Unmapped(t *testing.T) {
	mem := NewMemory()
	mem.Set(0x1234, 0x00)
	if got := mem.Get(0x1234); got != 0xFF {
		t.Errorf("Unmapped read: expected 0xFF, got 0x%02X", got)
	}

	m, _, _ := newTestMemory()
	m.Unmap()
	if got := m.Get(0x4000); got != 0xFF {
		t.Errorf("Read after Unmap: expected 0xFF, got 0x%02X", got)
	}
}

// TestMemory_BadMapping tests that partial or unaligned mappings are rejected
func TestMemory_BadMapping(t *testing.T) {
	bank := make([]uint8, 2*BankSize)

	tests := []struct {
		name string
		base uint16
		size int
		bank []uint8
	}{
		{"short size", 0x4000, 0x1000, bank},
		{"unaligned base", 0x4100, BankSize, bank},
		{"partial second page", 0x4000, BankSize + 1, bank},
		{"zero size", 0x8000, 0, bank},
		{"bank too small", 0x4000, 2 * BankSize, bank[:BankSize]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := NewMemory()
			err := mem.MapRAM(tt.base, tt.size, tt.bank)
			if !errors.Is(err, ErrBadMapping) {
				t.Fatalf("Expected ErrBadMapping, got %v", err)
			}
			for addr := 0; addr < 0x10000; addr += BankSize {
				if got := mem.Get(uint16(addr)); got != 0xFF {
					t.Errorf("Page 0x%04X mapped after rejected call: read 0x%02X", addr, got)
				}
			}
		})
	}

	mem := NewMemory()
	if err := mem.MapROM(0x0000, BankSize, bank); err != nil {
		t.Errorf("Aligned ROM mapping failed: %v", err)
	}
}
