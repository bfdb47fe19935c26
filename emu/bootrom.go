package emu

// bootStub is the program placed at 0x0000 of the built-in system ROM.
// It sets up the stack, selects interrupt mode 1, paints the border
// white and idles on HALT. The mode 1 handler at 0x0038 just returns.
var bootStub = []byte{
	0xF3,             // DI
	0xED, 0x56,       // IM 1
	0x31, 0x00, 0x00, // LD SP,0x0000
	0x3E, 0x07,       // LD A,7
	0xD3, 0xFE,       // OUT (0xFE),A
	0xFB,             // EI
	0x76,             // HALT
	0x18, 0xFD,       // JR -3
}

var bootIntHandler = []byte{
	0xFB, // EI
	0xC9, // RET
}

// BuiltinROM returns a 16KB system ROM holding the boot stub. It is used
// when no 48K ROM image is configured; snapshots that do not call into
// ROM routines run on it unchanged.
func BuiltinROM() []byte {
	rom := make([]byte, ROMSize)
	copy(rom, bootStub)
	copy(rom[0x0038:], bootIntHandler)
	return rom
}
