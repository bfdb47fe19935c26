//go:build !libretro

// Package cli provides a command-line runner for the emulator.
// It handles input polling and runs the emulator in a window without the full UI.
package cli

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/afero"
	"github.com/user-none/eblitui/coreif"
	bridge "github.com/user-none/emzx/bridge/ebiten"
	"github.com/user-none/emzx/emu"
	"github.com/user-none/emzx/screenshot"
)

// Options configures a Runner.
type Options struct {
	CropBorder      bool
	ScreenshotFS    afero.Fs
	ScreenshotDir   string
	ScreenshotScale int
}

// Runner wraps an emulator for command-line mode.
// It handles input polling (emulator doesn't poll input itself).
// Host key presses are forwarded as machine key codes, gamepads go
// through SetInput as the configured joystick.
type Runner struct {
	emulator    *bridge.Emulator
	audioPlayer *AudioPlayer
	opts        Options

	keyBuf    []ebiten.Key
	unfocused bool
}

// NewRunner creates a new Runner wrapping the given emulator.
func NewRunner(e *emu.Emulator, opts Options) *Runner {
	player, err := NewAudioPlayer()
	if err != nil {
		log.Printf("audio disabled: %v", err)
	}
	if opts.ScreenshotFS == nil {
		opts.ScreenshotFS = afero.NewOsFs()
	}
	return &Runner{
		emulator:    bridge.NewEmulator(e),
		audioPlayer: player,
		opts:        opts,
	}
}

// Close cleans up the runner's resources.
func (r *Runner) Close() {
	if r.audioPlayer != nil {
		r.audioPlayer.Close()
		r.audioPlayer = nil
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if !ebiten.IsFocused() {
		if !r.unfocused {
			r.emulator.ReleaseKeys()
			r.unfocused = true
		}
		return nil
	}
	r.unfocused = false

	r.pollKeyboard()
	r.pollGamepads()

	r.emulator.RunFrame()

	if r.audioPlayer != nil {
		r.audioPlayer.QueueSamples(r.emulator.GetAudioSamples())
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		r.saveScreenshot()
	}
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	r.emulator.DrawToScreen(screen, r.opts.CropBorder)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.emulator.Layout(outsideWidth, outsideHeight)
}

// pollKeyboard forwards host key transitions to the machine keyboard.
func (r *Runner) pollKeyboard() {
	r.keyBuf = inpututil.AppendJustPressedKeys(r.keyBuf[:0])
	for _, k := range r.keyBuf {
		if code, ok := hostKeys[k]; ok {
			r.emulator.KeyDown(code)
		}
	}

	r.keyBuf = inpututil.AppendJustReleasedKeys(r.keyBuf[:0])
	for _, k := range r.keyBuf {
		if code, ok := hostKeys[k]; ok {
			r.emulator.KeyUp(code)
		}
	}
}

// pollGamepads reads all connected gamepads into player 0's button mask.
func (r *Runner) pollGamepads() {
	var buttons uint32

	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}

		// D-pad
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftTop) {
			buttons |= 1 << coreif.ButtonUp
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftBottom) {
			buttons |= 1 << coreif.ButtonDown
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftLeft) {
			buttons |= 1 << coreif.ButtonLeft
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftRight) {
			buttons |= 1 << coreif.ButtonRight
		}

		// A/Cross = Fire, B/Circle = Space, Start = Enter
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom) {
			buttons |= 1 << emu.ButtonFire
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightRight) {
			buttons |= 1 << emu.ButtonSpace
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonCenterRight) {
			buttons |= 1 << emu.ButtonEnter
		}

		// Left analog stick (with deadzone)
		const deadzone = 0.5
		axisX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		axisY := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if axisX < -deadzone {
			buttons |= 1 << coreif.ButtonLeft
		}
		if axisX > deadzone {
			buttons |= 1 << coreif.ButtonRight
		}
		if axisY < -deadzone {
			buttons |= 1 << coreif.ButtonUp
		}
		if axisY > deadzone {
			buttons |= 1 << coreif.ButtonDown
		}
	}

	r.emulator.SetInput(0, buttons)
}

func (r *Runner) saveScreenshot() {
	img, err := screenshot.Capture(
		r.emulator.GetFramebuffer(),
		r.emulator.GetFramebufferStride(),
		emu.ScreenWidth,
		r.emulator.GetActiveHeight(),
		r.opts.ScreenshotScale,
	)
	if err != nil {
		log.Printf("screenshot: %v", err)
		return
	}
	path, err := screenshot.Save(r.opts.ScreenshotFS, r.opts.ScreenshotDir, emu.Name, img, time.Now())
	if err != nil {
		log.Printf("screenshot: %v", err)
		return
	}
	log.Printf("screenshot saved to %s", path)
}
