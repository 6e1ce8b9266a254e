// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package debugview

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// Target is a CPU render target backed by an *image.RGBA. Pixels are
// premultiplied 8-bit channels, row by row, in the order Format names.
type Target struct {
	img    *image.RGBA
	format gputypes.TextureFormat
}

// NewTarget creates a transparent RGBA8Unorm target of the given size in
// pixels.
func NewTarget(width, height int) *Target {
	return NewTargetWithFormat(width, height, gputypes.TextureFormatRGBA8Unorm)
}

// NewTargetWithFormat creates a transparent target whose pixels are laid
// out for a texture of the given format. [Renderer.Render] accepts
// RGBA8Unorm and BGRA8Unorm targets.
func NewTargetWithFormat(width, height int, format gputypes.TextureFormat) *Target {
	return &Target{img: image.NewRGBA(image.Rect(0, 0, width, height)), format: format}
}

// NewTargetFromImage wraps img without copying it.
func NewTargetFromImage(img *image.RGBA) *Target {
	return &Target{img: img, format: gputypes.TextureFormatRGBA8Unorm}
}

// Width returns the target width in pixels.
func (t *Target) Width() int { return t.img.Bounds().Dx() }

// Height returns the target height in pixels.
func (t *Target) Height() int { return t.img.Bounds().Dy() }

// Format returns the pixel format, matching a GPU texture the pixels can
// be uploaded to.
func (t *Target) Format() gputypes.TextureFormat {
	return t.format
}

// swapRedBlue converts the pixels between RGBA and BGRA order.
func (t *Target) swapRedBlue() {
	pix := t.img.Pix
	b := t.img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := pix[y*t.img.Stride : y*t.img.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+2] = row[i+2], row[i]
		}
	}
}

// Pixels returns the pixel data.
func (t *Target) Pixels() []byte { return t.img.Pix }

// Stride returns the number of bytes per row.
func (t *Target) Stride() int { return t.img.Stride }

// Image returns the underlying image. It shares memory with the target,
// so for a BGRA8Unorm target the red and blue channels are swapped.
func (t *Target) Image() *image.RGBA { return t.img }

// Clear fills the target with c.
func (t *Target) Clear(c color.Color) {
	draw.Draw(t.img, t.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	if t.format == gputypes.TextureFormatBGRA8Unorm {
		t.swapRedBlue()
	}
}

// Resize replaces the image with a transparent one of the new size.
func (t *Target) Resize(width, height int) {
	t.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// EncodePNG writes the target as a PNG image in RGBA order.
func (t *Target) EncodePNG(w io.Writer) error {
	if t.format != gputypes.TextureFormatBGRA8Unorm {
		return png.Encode(w, t.img)
	}
	cp := &Target{img: image.NewRGBA(t.img.Bounds())}
	copy(cp.img.Pix, t.img.Pix)
	cp.swapRedBlue()
	return png.Encode(w, cp.img)
}
