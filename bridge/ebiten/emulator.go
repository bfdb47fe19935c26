//go:build !libretro && !ios

// Package ebiten provides an Ebiten-specific wrapper for the emulator.
package ebiten

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/emzx/emu"
)

// Bounds of the 256x192 bitmap area inside the bordered display.
var bitmapRect = image.Rect(32, 32, 32+256, 32+192)

// Emulator wraps emu.Emulator with Ebiten-specific functionality
type Emulator struct {
	*emu.Emulator

	offscreen *ebiten.Image           // Offscreen buffer for native resolution rendering
	drawOpts  ebiten.DrawImageOptions // Pre-allocated draw options to avoid per-frame allocation
}

// NewEmulator wraps e for Ebiten rendering.
// Audio is managed separately by the caller.
func NewEmulator(e *emu.Emulator) *Emulator {
	return &Emulator{Emulator: e}
}

// DrawToScreen renders the emulator framebuffer to the given screen,
// scaled to fit and centered. With cropBorder only the bitmap area is drawn.
func (e *Emulator) DrawToScreen(screen *ebiten.Image, cropBorder bool) {
	src := e.GetFramebufferImage(cropBorder)
	if src == nil {
		return
	}

	// Calculate scaling to fit window while preserving aspect ratio
	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW := float64(src.Bounds().Dx())
	nativeH := float64(src.Bounds().Dy())

	scale := float64(screenW) / nativeW
	if s := float64(screenH) / nativeH; s < scale {
		scale = s
	}

	offsetX := (float64(screenW) - nativeW*scale) / 2
	offsetY := (float64(screenH) - nativeH*scale) / 2

	e.drawOpts = ebiten.DrawImageOptions{}
	e.drawOpts.GeoM.Scale(scale, scale)
	e.drawOpts.GeoM.Translate(offsetX, offsetY)
	e.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(src, &e.drawOpts)
}

func (e *Emulator) Layout(outsideWidth, outsideHeight int) (int, int) {
	// Return window size so we control scaling in Draw()
	return outsideWidth, outsideHeight
}

// GetFramebufferImage returns the raster as an ebiten.Image at native
// resolution, or only the bitmap area when cropBorder is set.
func (e *Emulator) GetFramebufferImage(cropBorder bool) *ebiten.Image {
	activeHeight := e.GetActiveHeight()

	if e.offscreen == nil || e.offscreen.Bounds().Dy() != activeHeight {
		e.offscreen = ebiten.NewImage(emu.ScreenWidth, activeHeight)
	}

	fb := e.GetFramebuffer()
	requiredLen := e.GetFramebufferStride() * activeHeight
	if len(fb) < requiredLen {
		return nil
	}
	e.offscreen.WritePixels(fb[:requiredLen])

	if cropBorder {
		return e.offscreen.SubImage(bitmapRect).(*ebiten.Image)
	}
	return e.offscreen
}
