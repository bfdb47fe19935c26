// Package screenshot captures the emulator framebuffer to PNG files.
package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/image/draw"
)

// ErrShortFramebuffer is returned when the framebuffer cannot hold the
// requested dimensions.
var ErrShortFramebuffer = errors.New("framebuffer smaller than requested image")

// Capture copies an RGBA framebuffer into a new image enlarged by scale
// with nearest-neighbor sampling. A scale below 1 is treated as 1.
func Capture(fb []byte, stride, width, height, scale int) (*image.RGBA, error) {
	if scale < 1 {
		scale = 1
	}
	if width <= 0 || height <= 0 || stride < width*4 || len(fb) < stride*(height-1)+width*4 {
		return nil, ErrShortFramebuffer
	}

	src := &image.RGBA{
		Pix:    fb,
		Stride: stride,
		Rect:   image.Rect(0, 0, width, height),
	}
	dst := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// FileName returns the screenshot name for a capture taken at t.
func FileName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s.png", prefix, t.Format("20060102-150405.000"))
}

// Save encodes img as PNG into dir and returns the written path.
func Save(fs afero.Fs, dir, prefix string, img image.Image, t time.Time) (string, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(prefix, t))
	f, err := fs.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
