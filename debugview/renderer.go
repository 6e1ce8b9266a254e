// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package debugview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/internal/blend"
	"github.com/gogpu/compositor/internal/filter"
)

var (
	// ErrNoTarget is returned by Render when the target is nil.
	ErrNoTarget = errors.New("debugview: nil target")
	// ErrUnsupportedFormat is returned by Render for a target whose
	// format is neither RGBA8Unorm nor BGRA8Unorm.
	ErrUnsupportedFormat = errors.New("debugview: unsupported target format")
)

// Painter returns the color a layer's content is painted with. ok is false
// for layers that should not be painted.
type Painter func(l *compositor.Layer) (c color.Color, ok bool)

// Option configures a [Renderer].
type Option func(*Renderer)

// WithPainter sets the layer painter. The default is [DefaultPainter].
func WithPainter(p Painter) Option {
	return func(r *Renderer) {
		r.paint = p
	}
}

// WithBackground sets the color the target is cleared to. The default is
// transparent.
func WithBackground(c color.Color) Option {
	return func(r *Renderer) {
		r.background = c
	}
}

// WithFilters enables or disables surface filters. Enabled by default.
func WithFilters(enabled bool) Option {
	return func(r *Renderer) {
		r.filters = enabled
	}
}

// Renderer draws render surface layer lists. A Renderer holds no per-frame
// state and is safe for concurrent use.
type Renderer struct {
	paint      Painter
	background color.Color
	filters    bool
}

// New returns a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		paint:      DefaultPainter,
		background: color.Transparent,
		filters:    true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var palette = []color.NRGBA{
	{0x4e, 0x79, 0xa7, 0xff},
	{0xf2, 0x8e, 0x2b, 0xff},
	{0xe1, 0x57, 0x59, 0xff},
	{0x76, 0xb7, 0xb2, 0xff},
	{0x59, 0xa1, 0x4f, 0xff},
	{0xed, 0xc9, 0x48, 0xff},
	{0xb0, 0x7a, 0xa1, 0xff},
	{0xff, 0x9d, 0xa7, 0xff},
}

// DefaultPainter paints layers that draw content with a color picked by
// layer id.
func DefaultPainter(l *compositor.Layer) (color.Color, bool) {
	if !l.DrawsContent() {
		return nil, false
	}
	return palette[int(l.ID())%len(palette)], true
}

// frame is a surface being drawn.
type frame struct {
	surface *compositor.RenderSurface
	img     *image.RGBA
}

// Render clears target and draws list into it. The root surface is drawn
// in screen space, so target should cover the device viewport.
func (r *Renderer) Render(target *Target, list compositor.RenderSurfaceLayerList) error {
	if target == nil {
		return ErrNoTarget
	}
	switch f := target.Format(); f {
	case gputypes.TextureFormatRGBA8Unorm:
	case gputypes.TextureFormatBGRA8Unorm:
		// Drawing happens in RGBA order.
		defer target.swapRedBlue()
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	draw.Draw(target.img, target.img.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
	root := list.Root()
	if root == nil {
		return nil
	}

	var stack []frame
	for e := range list.BackToFront() {
		switch e.Kind {
		case compositor.TargetSurface:
			rs := e.Layer.RenderSurface()
			img := target.Image()
			if len(stack) > 0 {
				img = image.NewRGBA(rs.ContentRect)
			}
			stack = append(stack, frame{surface: rs, img: img})
		case compositor.ContributingSurface:
			stack = r.unwind(stack, e.Target)
		case compositor.Itself:
			stack = r.unwind(stack, e.Target)
			r.drawLayer(stack[len(stack)-1].img, e.Layer)
		}
	}
	r.unwind(stack, root.Owner())

	compositor.Logger().Debug("debugview: rendered",
		"surfaces", list.Len(),
		"width", target.Width(),
		"height", target.Height(),
		"format", target.Format())
	return nil
}

// unwind finishes surfaces until the top of the stack is owner's.
func (r *Renderer) unwind(stack []frame, owner *compositor.Layer) []frame {
	for len(stack) > 1 && stack[len(stack)-1].surface.Owner() != owner {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r.finishSurface(stack[len(stack)-1].img, top)
	}
	return stack
}

// finishSurface filters and masks f and composites it into dst.
func (r *Renderer) finishSurface(dst *image.RGBA, f frame) {
	rs := f.surface
	owner := rs.Owner()
	if f.img.Bounds().Empty() {
		return
	}
	if r.filters {
		filter.Apply(f.img, f.img.Bounds(), owner.Filters())
	}
	if rs.HasMask() {
		r.applyMask(f.img, owner)
	}

	clip := dst.Bounds()
	if rs.IsClipped {
		clip = clip.Intersect(rs.ClipRect)
	}
	if rs.HasReplica() {
		composite(dst, f.img, rs.ReplicaDrawTransform, rs.DrawOpacity, rs.BlendMode, clip)
	}
	composite(dst, f.img, rs.DrawTransform, rs.DrawOpacity, rs.BlendMode, clip)
}

// applyMask multiplies img by the coverage of the mask layer, which spans
// the owner's content rect in surface space.
func (r *Renderer) applyMask(img *image.RGBA, owner *compositor.Layer) {
	dp := owner.DrawProperties()
	alpha := 1.0
	if c, ok := r.paint(owner.MaskLayer()); ok {
		_, _, _, a := c.RGBA()
		alpha = float64(a) / 0xffff
	}

	mask := image.NewAlpha(img.Bounds())
	pts := layerPolygon(dp.DrawTransform, dp.ContentBounds)
	fillPolygon(mask, pts, image.NewUniform(color.Alpha{A: to8(alpha)}), mask.Bounds())

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			m := uint32(mask.AlphaAt(x, y).A)
			o := img.PixOffset(x, y)
			for c := range 4 {
				img.Pix[o+c] = uint8((uint32(img.Pix[o+c])*m + 127) / 255)
			}
		}
	}
}

// drawLayer paints l's content quad into dst, the image of l's target.
func (r *Renderer) drawLayer(dst *image.RGBA, l *compositor.Layer) {
	c, ok := r.paint(l)
	if !ok {
		return
	}
	dp := l.DrawProperties()
	clip := dst.Bounds()
	if dp.IsClipped {
		clip = clip.Intersect(dp.ClipRect)
	}
	pts := layerPolygon(dp.DrawTransform, dp.ContentBounds)
	if len(pts) < 3 || clip.Empty() {
		return
	}

	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	nc.A = to8(float64(nc.A) / 255 * dp.Opacity)
	src := image.NewUniform(nc)

	if dp.BlendMode == compositor.BlendNormal {
		fillPolygon(dst, pts, src, clip)
		return
	}
	scratch := image.NewRGBA(clip)
	fillPolygon(scratch, pts, src, clip)
	blend.Image(dst, clip, scratch, clip.Min, dp.BlendMode)
}

// layerPolygon maps the content rect through m, dropping the part behind
// the viewer. It returns nil when any vertex is not finite.
func layerPolygon(m geom.Transform, bounds geom.Size) []geom.Point {
	var h [4]geom.HomogeneousPoint
	for i, p := range bounds.RectF().Corners() {
		h[i] = m.MapHomogeneous(geom.Pt3(p.X, p.Y, 0))
	}
	pts := geom.ClippedPolygon(h)
	for _, p := range pts {
		if !finite(p.X) || !finite(p.Y) {
			return nil
		}
	}
	return pts
}

// maxCoord keeps vertices inside float32 range for the rasterizer.
const maxCoord = 1 << 24

func finite(v float64) bool {
	return !math.IsNaN(v) && math.Abs(v) < maxCoord
}

// fillPolygon rasterizes the polygon pts over dst, restricted to clip.
func fillPolygon(dst draw.Image, pts []geom.Point, src image.Image, clip image.Rectangle) {
	clip = clip.Intersect(dst.Bounds())
	if len(pts) < 3 || clip.Empty() {
		return
	}
	z := vector.NewRasterizer(clip.Dx(), clip.Dy())
	z.DrawOp = draw.Over
	ox, oy := float64(clip.Min.X), float64(clip.Min.Y)
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()
	z.Draw(dst, clip, src, image.Point{})
}

// composite draws src, in surface space, into dst through m.
func composite(dst, src *image.RGBA, m geom.Transform, opacity float64, mode compositor.BlendMode, clip image.Rectangle) {
	if clip.Empty() || opacity <= 0 {
		return
	}
	if m.HasPerspective() {
		compositor.Logger().Debug("debugview: perspective surface drawn with its affine part")
	}
	opts := &draw.Options{
		SrcMask: image.NewUniform(color.Alpha{A: to8(opacity)}),
		DstMask: clip,
	}
	if mode == compositor.BlendNormal {
		draw.BiLinear.Transform(dst, m.ToAffine(), src, src.Bounds(), draw.Over, opts)
		return
	}
	scratch := image.NewRGBA(clip)
	draw.BiLinear.Transform(scratch, m.ToAffine(), src, src.Bounds(), draw.Over, opts)
	blend.Image(dst, clip, scratch, clip.Min, mode)
}

func to8(v float64) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}
