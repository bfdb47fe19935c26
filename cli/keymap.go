//go:build !libretro

package cli

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/emzx/emu"
)

// hostKeys maps host keyboard keys to machine key codes. Shift acts as
// CAPS SHIFT and either Control key as SYMBOL SHIFT, so host chords
// reach the matrix the same way they would on the real keyboard.
var hostKeys = map[ebiten.Key]int{
	ebiten.KeyShiftLeft:    emu.KeyCapsShift,
	ebiten.KeyShiftRight:   emu.KeyCapsShift,
	ebiten.KeyControlLeft:  emu.KeySymShift,
	ebiten.KeyControlRight: emu.KeySymShift,
	ebiten.KeyEnter:        emu.KeyEnter,
	ebiten.KeySpace:        emu.KeySpace,
	ebiten.KeyBackspace:    emu.KeyDelete,
	ebiten.KeyTab:          emu.KeyEdit,
	ebiten.KeyArrowLeft:    emu.KeyLeft,
	ebiten.KeyArrowRight:   emu.KeyRight,
	ebiten.KeyArrowUp:      emu.KeyUp,
	ebiten.KeyArrowDown:    emu.KeyDown,
	ebiten.KeyComma:        ',',
	ebiten.KeyPeriod:       '.',
	ebiten.KeyMinus:        '-',
	ebiten.KeyEqual:        '=',
	ebiten.KeySemicolon:    ';',
	ebiten.KeySlash:        '/',
	ebiten.KeyQuote:        '"',
}

var letterKeys = [...]ebiten.Key{
	ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF,
	ebiten.KeyG, ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL,
	ebiten.KeyM, ebiten.KeyN, ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR,
	ebiten.KeyS, ebiten.KeyT, ebiten.KeyU, ebiten.KeyV, ebiten.KeyW, ebiten.KeyX,
	ebiten.KeyY, ebiten.KeyZ,
}

var digitKeys = [...]ebiten.Key{
	ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7,
	ebiten.KeyDigit8, ebiten.KeyDigit9,
}

func init() {
	for i, k := range letterKeys {
		hostKeys[k] = 'a' + i
	}
	for i, k := range digitKeys {
		hostKeys[k] = '0' + i
	}
}
