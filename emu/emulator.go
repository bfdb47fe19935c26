package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strconv"

	"github.com/user-none/eblitui/coreif"
)

// Compile-time interface checks.
var _ coreif.Emulator = (*Emulator)(nil)
var _ coreif.SaveStater = (*Emulator)(nil)
var _ coreif.MemoryInspector = (*Emulator)(nil)
var _ coreif.MemoryMapper = (*Emulator)(nil)

const (
	ScreenWidth     = DisplayWidth
	MaxScreenHeight = DisplayHeight

	// ROMSize is the size of the 48K system ROM.
	ROMSize = 0x4000

	// NumRAMBanks is the number of RAM banks a snapshot can address.
	// Banks 0-2 are mapped at 0x4000, 0x8000 and 0xC000.
	NumRAMBanks = 8

	displayBank = 0

	// BIOSKey identifies the system ROM passed through SetBIOS.
	BIOSKey = "system_rom"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "emzx48kState"
	stateHeaderSize = 22 // magic(12) + version(2) + romCRC(4) + dataCRC(4)
)

// Initialization errors.
var (
	ErrInvalidPixelBuffer = fmt.Errorf("pixel buffer must hold at least %d bytes", PixelBufferSize)
	ErrInvalidROM         = fmt.Errorf("system ROM must be %d bytes", ROMSize)
)

// JoystickType selects how player 0 input reaches the machine.
type JoystickType int

const (
	JoystickCursor   JoystickType = iota // keys 5, 6, 7, 8 and 0
	JoystickKempston                     // port 0x1F
)

// ParseJoystick maps a core option value to a JoystickType.
func ParseJoystick(s string) JoystickType {
	if s == "kempston" {
		return JoystickKempston
	}
	return JoystickCursor
}

func (j JoystickType) String() string {
	if j == JoystickKempston {
		return "kempston"
	}
	return "cursor"
}

// Button bits used by SetInput beyond the d-pad.
const (
	ButtonFire  = 4
	ButtonSpace = 5
	ButtonEnter = 7
)

// cursorKeys maps d-pad and fire bits to cursor joystick keys.
var cursorKeys = [...]struct {
	bit uint
	key int
}{
	{coreif.ButtonUp, '7'},
	{coreif.ButtonDown, '6'},
	{coreif.ButtonLeft, '5'},
	{coreif.ButtonRight, '8'},
	{ButtonFire, '0'},
}

// Emulator is a 48K machine: CPU, address space, ULA and keyboard.
type Emulator struct {
	cpu    CPU
	mem    *Memory
	ula    *ULA
	kbd    *Keyboard
	bus    *ZXBus
	clock  *Clock
	beeper *Beeper

	rom    [ROMSize]uint8
	romCRC uint32
	ram    [NumRAMBanks][BankSize]uint8
	pixels []byte

	region   Region
	timing   RegionTiming
	joystick JoystickType

	prevButtons uint32
	audioBuffer []int16
}

// NewEmulator creates a machine running rom that renders into pixels.
// pixels must hold at least PixelBufferSize bytes and is never
// reallocated.
func NewEmulator(rom []byte, pixels []byte) (*Emulator, error) {
	return newEmulator(rom, pixels, func(bus *ZXBus) CPU {
		return newZ80Engine(bus)
	})
}

func newEmulator(rom []byte, pixels []byte, newCPU func(*ZXBus) CPU) (*Emulator, error) {
	if len(pixels) < PixelBufferSize {
		return nil, ErrInvalidPixelBuffer
	}
	if len(rom) != ROMSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidROM, len(rom))
	}

	e := &Emulator{
		pixels: pixels[:PixelBufferSize],
		region: DefaultRegion(),
		timing: PALTiming,
	}
	copy(e.rom[:], rom)
	e.romCRC = crc32.ChecksumIEEE(e.rom[:])

	e.mem = NewMemory()
	for i := 0; i < 3; i++ {
		if err := e.mem.MapRAM(uint16(0x4000*(i+1)), BankSize, e.ram[i][:]); err != nil {
			return nil, err
		}
	}
	if err := e.mem.MapROM(0x0000, ROMSize, e.rom[:]); err != nil {
		return nil, err
	}

	e.kbd = NewZXKeyboard(defaultSticky)
	e.ula = NewULA(e.pixels, e.ram[displayBank][:], e.kbd)
	e.beeper = NewBeeper(e.timing.CPUClockHz)
	e.bus = NewZXBus(e.mem, e.ula, e.beeper)
	e.clock = NewClock(e.timing.CPUClockHz)
	e.cpu = newCPU(e.bus)
	e.cpu.Reset()

	return e, nil
}

// SetROM replaces the system ROM in place. The CPU is not reset.
func (e *Emulator) SetROM(rom []byte) error {
	if len(rom) != ROMSize {
		return fmt.Errorf("%w: got %d", ErrInvalidROM, len(rom))
	}
	copy(e.rom[:], rom)
	e.romCRC = crc32.ChecksumIEEE(e.rom[:])
	return nil
}

// SetBIOS installs host supplied firmware. Only BIOSKey is recognized,
// and data of the wrong size is ignored.
func (e *Emulator) SetBIOS(key string, data []byte) {
	if key != BIOSKey {
		return
	}
	_ = e.SetROM(data)
}

// Start is called by hosts once options and firmware are applied. The
// machine only runs inside RunFrame, so there is nothing to start.
func (e *Emulator) Start() {}

// Exec runs the machine for micros microseconds of emulated time.
func (e *Emulator) Exec(micros int) {
	ticks := e.clock.TicksFor(micros)
	executed := e.cpu.Execute(ticks)
	e.clock.RecordExecuted(executed)
	e.kbd.Update()
}

// RunFrame executes one 50 Hz frame of emulation.
func (e *Emulator) RunFrame() {
	e.beeper.Reset()
	e.Exec(e.timing.frameMicros())
	e.audioBuffer = e.beeper.Samples()
}

// Reset restarts the CPU at 0x0000 without clearing memory.
func (e *Emulator) Reset() {
	e.cpu.Reset()
	e.kbd.ReleaseAll()
}

// KeyDown presses a key on the matrix. See Keyboard for key codes.
func (e *Emulator) KeyDown(code int) {
	e.kbd.KeyDown(code)
}

// KeyUp releases a key on the matrix.
func (e *Emulator) KeyUp(code int) {
	e.kbd.KeyUp(code)
}

// ReleaseKeys lifts every key on the matrix at once.
func (e *Emulator) ReleaseKeys() {
	e.kbd.ReleaseAll()
}

// LoadSnapshot replaces the machine state with a .z80 image. On error
// the machine is left untouched.
func (e *Emulator) LoadSnapshot(data []byte) error {
	snap, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	e.applySnapshot(snap)
	return nil
}

func (e *Emulator) applySnapshot(s *Snapshot) {
	for b, page := range s.Pages {
		if page != nil {
			copy(e.ram[b][:], page)
		}
	}

	e.cpu.Reset()
	e.cpu.SetRegisters(s.Regs)

	if s.Extended {
		e.bus.Tick(4, MakePins(PinIORQ|PinWR, 0xFFFD, s.OutFFFD))
		e.bus.Tick(4, MakePins(PinIORQ|PinWR, 0x7FFD, s.Out7FFD))
	}
	e.ula.SetBorder(s.Border)
}

// Registers returns the CPU register state.
func (e *Emulator) Registers() Registers {
	return e.cpu.Registers()
}

// Peek reads a byte from the CPU address space.
func (e *Emulator) Peek(addr uint16) uint8 {
	return e.mem.Get(addr)
}

// Poke writes a byte to the CPU address space. ROM writes are ignored.
func (e *Emulator) Poke(addr uint16, val uint8) {
	e.mem.Set(addr, val)
}

// Border returns the current border color.
func (e *Emulator) Border() uint32 {
	return e.ula.Border()
}

// ROMCRC32 returns the checksum of the mapped system ROM.
func (e *Emulator) ROMCRC32() uint32 {
	return e.romCRC
}

// SetInput unpacks a button bitmask for the given player. Player 0 drives
// the selected joystick plus the Space and Enter keys.
func (e *Emulator) SetInput(player int, buttons uint32) {
	if player != 0 {
		return
	}

	changed := buttons ^ e.prevButtons
	if e.joystick == JoystickKempston {
		var bits uint8
		if buttons&(1<<coreif.ButtonUp) != 0 {
			bits |= KempstonUp
		}
		if buttons&(1<<coreif.ButtonDown) != 0 {
			bits |= KempstonDown
		}
		if buttons&(1<<coreif.ButtonLeft) != 0 {
			bits |= KempstonLeft
		}
		if buttons&(1<<coreif.ButtonRight) != 0 {
			bits |= KempstonRight
		}
		if buttons&(1<<ButtonFire) != 0 {
			bits |= KempstonFire
		}
		e.ula.SetKempstonBits(bits)
	} else {
		for _, ck := range cursorKeys {
			e.setKey(ck.key, buttons, changed, ck.bit)
		}
	}
	e.setKey(KeySpace, buttons, changed, ButtonSpace)
	e.setKey(KeyEnter, buttons, changed, ButtonEnter)

	e.prevButtons = buttons
}

func (e *Emulator) setKey(key int, buttons, changed uint32, bit uint) {
	if changed&(1<<bit) == 0 {
		return
	}
	if buttons&(1<<bit) != 0 {
		e.kbd.KeyDown(key)
	} else {
		e.kbd.KeyUp(key)
	}
}

// SetJoystick selects the joystick interface for player 0.
func (e *Emulator) SetJoystick(j JoystickType) {
	if j == e.joystick {
		return
	}
	if e.joystick == JoystickCursor {
		for _, ck := range cursorKeys {
			if e.prevButtons&(1<<ck.bit) != 0 {
				e.kbd.KeyUp(ck.key)
			}
		}
	}
	e.joystick = j
	e.ula.SetKempston(j == JoystickKempston)
	e.prevButtons &^= 0x1F
}

// Joystick returns the selected joystick interface.
func (e *Emulator) Joystick() JoystickType {
	return e.joystick
}

// GetFramebuffer returns raw RGBA pixel data for current frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.pixels
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return DisplayWidth * 4
}

// GetActiveHeight returns the display height including borders.
func (e *Emulator) GetActiveHeight() int {
	return DisplayHeight
}

// GetRegion returns the emulator's region setting
func (e *Emulator) GetRegion() Region {
	return e.region
}

// SetRegion records the region. Timing is unaffected.
func (e *Emulator) SetRegion(region Region) {
	e.region = region
	e.timing = GetTimingForRegion(region)
}

// GetTiming returns FPS and scanline count.
func (e *Emulator) GetTiming() coreif.Timing {
	return coreif.Timing{
		FPS:       e.timing.FPS,
		Scanlines: e.timing.Scanlines,
	}
}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case "joystick":
		e.SetJoystick(ParseJoystick(value))
	case "kempston":
		if value == "true" {
			e.SetJoystick(JoystickKempston)
		} else {
			e.SetJoystick(JoystickCursor)
		}
	case "sticky_frames":
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			e.kbd.SetStickyFrames(n)
		}
	}
}

// StickyFrames returns the number of frames a tapped key stays down.
func (e *Emulator) StickyFrames() int {
	return e.kbd.StickyFrames()
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}

// GetAudioSamples returns the beeper output of the last frame as 16-bit
// stereo PCM.
func (e *Emulator) GetAudioSamples() []int16 {
	return e.audioBuffer
}

// =============================================================================
// Save State Serialization
// =============================================================================

const (
	ulaStateSize      = 4 + 1 + 1 + 2 + 2 + 1 + 1
	keyboardStateSize = 4 + 4 + 1 + maxPressedSlots*6
)

// SerializeSize returns the total size in bytes needed for a save state.
func SerializeSize() int {
	return stateHeaderSize + // 22
		cpuStateSize + // CPU state and interrupt hold
		3*BankSize + // mapped RAM (48KB)
		ulaStateSize +
		4 + // clock overrun
		4 + // joystick buttons
		keyboardStateSize
}

// Serialize creates a save state and returns it as a byte slice.
func (e *Emulator) Serialize() ([]byte, error) {
	size := SerializeSize()
	data := make([]byte, size)

	// Write header
	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], e.romCRC)

	offset := stateHeaderSize
	offset, err := e.serializeCPU(data, offset)
	if err != nil {
		return nil, err
	}
	offset = e.serializeMemory(data, offset)
	offset = e.serializeULA(data, offset)
	e.serializeInput(data, offset)

	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores emulator state from a save state byte slice.
func (e *Emulator) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	offset, err := e.deserializeCPU(data, offset)
	if err != nil {
		return err
	}
	offset = e.deserializeMemory(data, offset)
	offset = e.deserializeULA(data, offset)
	e.deserializeInput(data, offset)

	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *Emulator) VerifyState(data []byte) error {
	if len(data) < SerializeSize() {
		return errors.New("save state too short")
	}

	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return errors.New("unsupported save state version")
	}

	romCRC := binary.LittleEndian.Uint32(data[14:18])
	if romCRC != e.romCRC {
		return errors.New("save state is for a different ROM")
	}

	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expectedCRC != actualCRC {
		return errors.New("save state data is corrupted")
	}

	return nil
}

func (e *Emulator) serializeCPU(data []byte, offset int) (int, error) {
	if err := e.cpu.Serialize(data[offset : offset+cpuStateSize]); err != nil {
		return offset, err
	}
	return offset + cpuStateSize, nil
}

func (e *Emulator) deserializeCPU(data []byte, offset int) (int, error) {
	if err := e.cpu.Deserialize(data[offset : offset+cpuStateSize]); err != nil {
		return offset, err
	}
	return offset + cpuStateSize, nil
}

func (e *Emulator) serializeMemory(data []byte, offset int) int {
	for b := 0; b < 3; b++ {
		copy(data[offset:], e.ram[b][:])
		offset += BankSize
	}
	return offset
}

func (e *Emulator) deserializeMemory(data []byte, offset int) int {
	for b := 0; b < 3; b++ {
		copy(e.ram[b][:], data[offset:offset+BankSize])
		offset += BankSize
	}
	return offset
}

func (e *Emulator) serializeULA(data []byte, offset int) int {
	u := e.ula
	binary.LittleEndian.PutUint32(data[offset:], u.border)
	offset += 4
	data[offset] = u.lastFE
	offset++
	data[offset] = u.blink
	offset++
	binary.LittleEndian.PutUint16(data[offset:], uint16(u.scanlineY))
	offset += 2
	binary.LittleEndian.PutUint16(data[offset:], uint16(int16(u.scanCounter)))
	offset += 2
	data[offset] = boolByte(u.kempston)
	offset++
	data[offset] = u.kempstonBits
	offset++
	return offset
}

func (e *Emulator) deserializeULA(data []byte, offset int) int {
	u := e.ula
	u.border = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	u.lastFE = data[offset]
	offset++
	u.blink = data[offset]
	offset++
	u.scanlineY = int(binary.LittleEndian.Uint16(data[offset:])) % FrameScanlines
	offset += 2
	u.scanCounter = int(int16(binary.LittleEndian.Uint16(data[offset:])))
	offset += 2
	u.kempston = data[offset] != 0
	offset++
	u.kempstonBits = data[offset]
	offset++

	if u.kempston {
		e.joystick = JoystickKempston
	} else {
		e.joystick = JoystickCursor
	}
	return offset
}

func (e *Emulator) serializeInput(data []byte, offset int) int {
	binary.LittleEndian.PutUint32(data[offset:], uint32(e.clock.overrunTicks))
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], e.prevButtons)
	offset += 4

	k := e.kbd
	binary.LittleEndian.PutUint32(data[offset:], k.frame)
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], k.stickyFrames)
	offset += 4
	data[offset] = uint8(len(k.pressed))
	offset++
	for i := 0; i < maxPressedSlots; i++ {
		if i < len(k.pressed) {
			p := k.pressed[i]
			data[offset] = uint8(p.code)
			binary.LittleEndian.PutUint32(data[offset+1:], p.frame)
			data[offset+5] = boolByte(p.released)
		}
		offset += 6
	}
	return offset
}

func (e *Emulator) deserializeInput(data []byte, offset int) int {
	e.clock.overrunTicks = int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	e.prevButtons = binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	k := e.kbd
	k.frame = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	k.stickyFrames = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	count := int(data[offset])
	offset++
	if count > maxPressedSlots {
		count = maxPressedSlots
	}
	k.pressed = k.pressed[:0]
	for i := 0; i < maxPressedSlots; i++ {
		if i < count {
			k.pressed = append(k.pressed, pressedKey{
				code:     int(data[offset]),
				frame:    binary.LittleEndian.Uint32(data[offset+1:]),
				released: data[offset+5] != 0,
			})
		}
		offset += 6
	}
	return offset
}

// =============================================================================
// MemoryInspector interface
// =============================================================================

// Flat address boundaries for ReadMemory.
const (
	systemRAMStart = 0x0000
	systemRAMEnd   = 0xBFFF
	systemRAMBase  = 0x4000
)

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read. Flat 0x0000-0xBFFF maps to CPU 0x4000-0xFFFF.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		if cur >= systemRAMStart && cur <= systemRAMEnd {
			buf[i] = e.mem.Get(uint16(cur + systemRAMBase))
			count++
		} else {
			return count
		}
	}
	return count
}

// =============================================================================
// MemoryMapper interface
// =============================================================================

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []coreif.MemoryRegion {
	return []coreif.MemoryRegion{
		{Type: coreif.MemorySystemRAM, Size: 3 * BankSize},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	switch regionType {
	case coreif.MemorySystemRAM:
		out := make([]byte, 3*BankSize)
		for b := 0; b < 3; b++ {
			copy(out[b*BankSize:], e.ram[b][:])
		}
		return out
	default:
		return nil
	}
}

// WriteRegion writes data to the specified memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	if regionType != coreif.MemorySystemRAM {
		return
	}
	for b := 0; b < 3 && len(data) > 0; b++ {
		n := copy(e.ram[b][:], data)
		data = data[n:]
	}
}
