package emu

import "encoding/binary"

// createTestROMWithPattern creates a test ROM where each byte contains
// a value derived from both the bank number and the offset within the bank.
// This allows verifying that both bank and offset are correct.
func createTestROMWithPattern(banks int) []byte {
	rom := make([]byte, banks*0x4000)
	for b := 0; b < banks; b++ {
		for i := 0; i < 0x4000; i++ {
			// High nibble = bank, low nibble = (offset / 0x400) & 0x0F
			rom[b*0x4000+i] = byte((b << 4) | ((i >> 10) & 0x0F))
		}
	}
	return rom
}

// fakeCPU stands in for the instruction engine. Execute ticks the bus in
// fixed steps and records raised interrupts; registers are stored as set.
type fakeCPU struct {
	bus        *ZXBus
	step       int
	regs       Registers
	resets     int
	interrupts int
	executed   int
	stateErr   error
}

func (c *fakeCPU) Execute(budget int) int {
	n := 0
	for n < budget {
		if c.bus.Tick(c.step, 0)&PinINT != 0 {
			c.interrupts++
		}
		n += c.step
	}
	c.executed += n
	return n
}

func (c *fakeCPU) Reset() {
	c.resets++
	c.regs = Registers{}
}

func (c *fakeCPU) Registers() Registers     { return c.regs }
func (c *fakeCPU) SetRegisters(r Registers) { c.regs = r }

func (c *fakeCPU) Serialize(buf []byte) error {
	if c.stateErr != nil {
		return c.stateErr
	}
	binary.LittleEndian.PutUint16(buf, c.regs.PC)
	binary.LittleEndian.PutUint16(buf[2:], c.regs.SP)
	return nil
}

func (c *fakeCPU) Deserialize(buf []byte) error {
	if c.stateErr != nil {
		return c.stateErr
	}
	c.regs.PC = binary.LittleEndian.Uint16(buf)
	c.regs.SP = binary.LittleEndian.Uint16(buf[2:])
	return nil
}

// newTestEmulator creates an emulator on the built-in ROM driven by a
// fakeCPU that advances 4 ticks per step.
func newTestEmulator() (*Emulator, *fakeCPU) {
	var cpu *fakeCPU
	e, err := newEmulator(BuiltinROM(), make([]byte, PixelBufferSize), func(bus *ZXBus) CPU {
		cpu = &fakeCPU{bus: bus, step: 4}
		return cpu
	})
	if err != nil {
		panic(err)
	}
	return e, cpu
}

// testHeader builds a 30-byte .z80 primary header.
func testHeader(pc uint16, flags0 uint8) []byte {
	hdr := make([]byte, z80HeaderSize)
	hdr[hdrA], hdr[hdrF] = 0x12, 0x34
	hdr[hdrB], hdr[hdrC] = 0x56, 0x78
	hdr[hdrD], hdr[hdrE] = 0x9A, 0xBC
	hdr[hdrH], hdr[hdrL] = 0xDE, 0xF0
	hdr[hdrA2], hdr[hdrF2] = 0x11, 0x22
	hdr[hdrB2], hdr[hdrC2] = 0x33, 0x44
	hdr[hdrD2], hdr[hdrE2] = 0x55, 0x66
	hdr[hdrH2], hdr[hdrL2] = 0x77, 0x88
	hdr[hdrIXH], hdr[hdrIXL] = 0xAB, 0xCD
	hdr[hdrIYH], hdr[hdrIYL] = 0x5C, 0x3A
	hdr[hdrSPH], hdr[hdrSPL] = 0xFF, 0x40
	hdr[hdrPCH], hdr[hdrPCL] = uint8(pc>>8), uint8(pc)
	hdr[hdrI] = 0x3F
	hdr[hdrR] = 0x85
	hdr[hdrFlags0] = flags0
	hdr[hdrEI] = 1
	hdr[hdrIFF2] = 1
	hdr[hdrFlags1] = 0x01
	return hdr
}

// compressZ80 run-length encodes data the way .z80 writers do: runs of
// five or more bytes, and any run of 0xED bytes of two or more, become
// ED ED nn bb. A single ED followed by anything is emitted as a literal
// and the next byte is never folded into a run.
func compressZ80(data []byte) []byte {
	var out []byte
	for i := 0; i < len(data); {
		b := data[i]
		run := 1
		for i+run < len(data) && data[i+run] == b && run < 255 {
			run++
		}
		if run >= 5 || (b == 0xED && run >= 2) {
			out = append(out, 0xED, 0xED, uint8(run), b)
			i += run
			continue
		}
		out = append(out, b)
		i++
		if b == 0xED && i < len(data) {
			out = append(out, data[i])
			i++
		}
	}
	return out
}

// patternImage returns a 48KB image with varied content and long runs.
func patternImage() []byte {
	img := make([]byte, 3*BankSize)
	for i := range img {
		switch {
		case i%1024 < 300:
			img[i] = 0x00
		case i%1024 < 310:
			img[i] = 0xED
		default:
			img[i] = byte(i*7 + i>>8)
		}
	}
	return img
}

// buildV1 builds a version 1 .z80 file with a compressed 48KB image.
func buildV1(img []byte) []byte {
	data := testHeader(0x8000, 0x20|0x06)
	data = append(data, compressZ80(img)...)
	return append(data, 0x00, 0xED, 0xED, 0x00)
}

// buildExt builds an extended .z80 file from (page, payload) pairs.
func buildExt(hwMode uint8, pc uint16, pages map[uint8][]byte) []byte {
	data := testHeader(0, 0x04)
	ext := make([]byte, 2+z80ExtV2Size)
	binary.LittleEndian.PutUint16(ext, z80ExtV2Size)
	binary.LittleEndian.PutUint16(ext[extPCL:], pc)
	ext[extHWMode] = hwMode
	data = append(data, ext...)
	for _, nr := range []uint8{8, 4, 5, 3, 6, 7, 9, 10, 11, 0, 1, 2} {
		payload, ok := pages[nr]
		if !ok {
			continue
		}
		comp := compressZ80(payload)
		hdr := make([]byte, z80PageHeaderSize)
		binary.LittleEndian.PutUint16(hdr, uint16(len(comp)))
		hdr[2] = nr
		data = append(data, hdr...)
		data = append(data, comp...)
	}
	return data
}

// filledBank returns a bank filled with v.
func filledBank(v uint8) []byte {
	b := make([]byte, BankSize)
	for i := range b {
		b[i] = v
	}
	return b
}
