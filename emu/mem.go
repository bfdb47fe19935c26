package emu

import (
	"errors"
	"fmt"
)

// BankSize is the size of one memory bank and of one address-space page.
const BankSize = 0x4000

const (
	pageShift = 14
	numPages  = 0x10000 / BankSize
)

// ErrBadMapping is returned when a mapping is not made of whole pages.
var ErrBadMapping = errors.New("mapping must cover whole 16KB pages")

type page struct {
	bank     []uint8
	readOnly bool
}

// Memory is the 64KB CPU address space built from 16KB pages. Each page
// points at a RAM or ROM bank; unmapped pages read 0xFF and ignore writes.
type Memory struct {
	pages [numPages]page
}

func NewMemory() *Memory {
	return &Memory{}
}

// MapRAM maps size bytes of bank as writable memory starting at base.
// base and size must be multiples of BankSize.
func (m *Memory) MapRAM(base uint16, size int, bank []uint8) error {
	return m.mapBank(base, size, bank, false)
}

// MapROM maps size bytes of bank as read-only memory starting at base.
func (m *Memory) MapROM(base uint16, size int, bank []uint8) error {
	return m.mapBank(base, size, bank, true)
}

// Unmap removes every page mapping.
func (m *Memory) Unmap() {
	m.pages = [numPages]page{}
}

func (m *Memory) mapBank(base uint16, size int, bank []uint8, readOnly bool) error {
	switch {
	case base&(BankSize-1) != 0:
		return fmt.Errorf("%w: base 0x%04X", ErrBadMapping, base)
	case size <= 0 || size%BankSize != 0 || size > 0x10000:
		return fmt.Errorf("%w: size 0x%X", ErrBadMapping, size)
	case len(bank) < size:
		return fmt.Errorf("%w: bank holds %d of %d bytes", ErrBadMapping, len(bank), size)
	}
	first := int(base) >> pageShift
	for i := 0; i < size/BankSize; i++ {
		p := (first + i) & (numPages - 1)
		m.pages[p] = page{
			bank:     bank[i*BankSize : (i+1)*BankSize],
			readOnly: readOnly,
		}
	}
	return nil
}

func (m *Memory) Get(addr uint16) uint8 {
	p := &m.pages[addr>>pageShift]
	if p.bank == nil {
		return 0xFF
	}
	return p.bank[addr&(BankSize-1)]
}

// Set writes val at addr. Writes to ROM or unmapped pages are ignored.
func (m *Memory) Set(addr uint16, val uint8) {
	p := &m.pages[addr>>pageShift]
	if p.bank == nil || p.readOnly {
		return
	}
	p.bank[addr&(BankSize-1)] = val
}

// IsROM reports whether addr falls in a read-only page.
func (m *Memory) IsROM(addr uint16) bool {
	return m.pages[addr>>pageShift].readOnly
}
