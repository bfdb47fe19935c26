// Package emuios provides a gomobile-compatible interface to the emulator.
package emuios

import (
	"fmt"
	"hash/crc32"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/user-none/eblitui/coreif"
	"github.com/user-none/emzx/emu"
	"github.com/user-none/emzx/snaploader"
)

// ExtractResult contains the result of snapshot extraction
type ExtractResult struct {
	Crc32    string // Hex string, e.g., "AABBCCDD"
	Filename string // Original filename from archive, e.g., "Manic Miner.z80"
}

// currentEmu holds the emulator state (unexported)
var currentEmu *emulatorState

// appFs is the file system used for snapshot and ROM access.
var appFs = afero.NewOsFs()

type emulatorState struct {
	emu       *emu.Emulator
	frameData []byte
	audioData []byte
	stateData []byte
}

// Init creates an emulator running the system ROM at romPath, or the
// built-in boot stub when romPath is empty. Returns true on success.
func Init(romPath string) bool {
	rom := emu.BuiltinROM()
	if romPath != "" {
		data, err := afero.ReadFile(appFs, romPath)
		if err != nil {
			return false
		}
		rom = data
	}

	e, err := emu.NewEmulator(rom, make([]byte, emu.PixelBufferSize))
	if err != nil {
		return false
	}
	currentEmu = &emulatorState{emu: e}
	return true
}

// InitFromPath creates an emulator and loads the snapshot at path.
// Automatically extracts from ZIP/7z/gzip/RAR/xz/lz4 if needed.
// Returns true on success, false on error.
func InitFromPath(romPath, path string) bool {
	data, _, err := snaploader.LoadSnapshot(path)
	if err != nil {
		return false
	}
	if !Init(romPath) {
		return false
	}
	if err := currentEmu.emu.LoadSnapshot(data); err != nil {
		currentEmu = nil
		return false
	}
	return true
}

// Close releases the emulator.
func Close() {
	currentEmu = nil
}

// RunFrame executes one frame of emulation.
func RunFrame() {
	if currentEmu == nil {
		return
	}
	e := currentEmu.emu
	e.RunFrame()

	currentEmu.frameData = e.GetFramebuffer()[:e.GetFramebufferStride()*e.GetActiveHeight()]

	samples := e.GetAudioSamples()
	if len(samples) > 0 {
		currentEmu.audioData = make([]byte, len(samples)*2)
		for i, s := range samples {
			currentEmu.audioData[i*2] = byte(s)
			currentEmu.audioData[i*2+1] = byte(s >> 8)
		}
	} else {
		currentEmu.audioData = nil
	}
}

// FrameWidth returns the display width (always 320).
func FrameWidth() int {
	return emu.ScreenWidth
}

// FrameHeight returns the display height (always 256).
func FrameHeight() int {
	return emu.MaxScreenHeight
}

// GetFrameData returns the RGBA frame buffer of the last frame.
func GetFrameData() []byte {
	if currentEmu == nil {
		return nil
	}
	return currentEmu.frameData
}

// GetAudioData returns the last frame's 16-bit stereo PCM as bytes.
func GetAudioData() []byte {
	if currentEmu == nil {
		return nil
	}
	return currentEmu.audioData
}

// SetInput sets the on-screen joystick state.
func SetInput(up, down, left, right, fire, space, enter bool) {
	if currentEmu == nil {
		return
	}
	var buttons uint32
	set := func(on bool, bit uint) {
		if on {
			buttons |= 1 << bit
		}
	}
	set(up, coreif.ButtonUp)
	set(down, coreif.ButtonDown)
	set(left, coreif.ButtonLeft)
	set(right, coreif.ButtonRight)
	set(fire, emu.ButtonFire)
	set(space, emu.ButtonSpace)
	set(enter, emu.ButtonEnter)
	currentEmu.emu.SetInput(0, buttons)
}

// KeyDown presses a machine key from the on-screen keyboard.
func KeyDown(code int) {
	if currentEmu != nil {
		currentEmu.emu.KeyDown(code)
	}
}

// KeyUp releases a machine key.
func KeyUp(code int) {
	if currentEmu != nil {
		currentEmu.emu.KeyUp(code)
	}
}

// SetKempston selects the Kempston joystick (true) or cursor keys (false).
func SetKempston(enabled bool) {
	if currentEmu == nil {
		return
	}
	if enabled {
		currentEmu.emu.SetJoystick(emu.JoystickKempston)
	} else {
		currentEmu.emu.SetJoystick(emu.JoystickCursor)
	}
}

// GetFPS returns the target frame rate.
func GetFPS() int {
	return emu.PALTiming.FPS
}

// SaveState creates a save state. Returns true on success.
func SaveState() bool {
	if currentEmu == nil {
		return false
	}
	data, err := currentEmu.emu.Serialize()
	if err != nil {
		currentEmu.stateData = nil
		return false
	}
	currentEmu.stateData = data
	return true
}

// StateLen returns the length of the last saved state.
func StateLen() int {
	if currentEmu == nil {
		return 0
	}
	return len(currentEmu.stateData)
}

// StateByte returns a single byte from the saved state at index i.
func StateByte(i int) int {
	if currentEmu == nil || i < 0 || i >= len(currentEmu.stateData) {
		return 0
	}
	return int(currentEmu.stateData[i])
}

// LoadState loads a save state. Returns true on success.
func LoadState(data []byte) bool {
	if currentEmu == nil {
		return false
	}
	return currentEmu.emu.Deserialize(data) == nil
}

// GetCRC32FromPath calculates the CRC32 checksum of a snapshot file.
// Automatically extracts from archives if needed.
// Returns -1 on error.
func GetCRC32FromPath(path string) int64 {
	data, _, err := snaploader.LoadSnapshot(path)
	if err != nil {
		return -1
	}
	return int64(crc32.ChecksumIEEE(data))
}

// ExtractAndStoreSnapshot extracts a snapshot from an archive (or copies
// a raw .z80), and stores it as {destDir}/{CRC32}.z80.
// If a file with the same CRC32 already exists, it skips writing.
func ExtractAndStoreSnapshot(srcPath, destDir string) (*ExtractResult, error) {
	data, filename, err := snaploader.LoadSnapshot(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if _, err := emu.ParseSnapshot(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	crcHex := fmt.Sprintf("%08X", crc32.ChecksumIEEE(data))
	destPath := filepath.Join(destDir, crcHex+".z80")

	// Same CRC = same content
	if exists, _ := afero.Exists(appFs, destPath); exists {
		return &ExtractResult{Crc32: crcHex, Filename: filename}, nil
	}

	if err := afero.WriteFile(appFs, destPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	return &ExtractResult{Crc32: crcHex, Filename: filename}, nil
}
