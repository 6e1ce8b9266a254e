package compositor

import (
	"fmt"
	"image"

	"github.com/gogpu/compositor/geom"
)

// DrawProperties are the per-layer outputs of a [CalculateDrawProperties]
// pass. They are overwritten by every pass and are only meaningful when
// Computed is set.
type DrawProperties struct {
	// Computed is false for layers in skipped subtrees and layers outside
	// the calculated tree.
	Computed bool

	// TargetSpaceTransform maps layer space into the render target's
	// space.
	TargetSpaceTransform geom.Transform
	// DrawTransform maps content space into the render target's space.
	DrawTransform geom.Transform
	// ScreenSpaceTransform maps content space into screen space.
	ScreenSpaceTransform geom.Transform

	TargetSpaceTransformIsAnimating bool
	ScreenSpaceTransformIsAnimating bool

	// Opacity is applied when the layer draws into its render target.
	Opacity float64
	// ScreenSpaceOpacity is the product of all ancestor opacities.
	ScreenSpaceOpacity float64
	// BlendMode is normal for surface owners; their surface blends instead.
	BlendMode     BlendMode
	CanUseLCDText bool

	// IsClipped reports whether ClipRect applies.
	IsClipped bool
	// ClipRect is in the render target's space.
	ClipRect image.Rectangle
	// VisibleContentRect is the part of the content, in content space,
	// that may be visible.
	VisibleContentRect image.Rectangle
	// DrawableContentRect is the clipped content, in the render target's
	// space.
	DrawableContentRect image.Rectangle

	// RenderTarget is the layer owning the surface this layer draws into.
	// Following RenderTarget always ends at a layer that is its own
	// render target.
	RenderTarget *Layer

	// ContentsScale maps layer space into content space.
	ContentsScale float64
	// ContentBounds is the layer size in content space.
	ContentBounds geom.Size
	// IdealContentsScale is the scale that rasterizes the layer at
	// device resolution in its target.
	IdealContentsScale float64
	// MaximumAnimationContentsScale is the largest ideal scale any running
	// transform animation reaches, or 0 when unknown or not animating.
	MaximumAnimationContentsScale float64
	// StartingAnimationContentsScale is the ideal scale at the start of
	// the running animations, or 0 when unknown or not animating.
	StartingAnimationContentsScale float64

	// NumUnclippedDescendants counts descendants escaping this layer's
	// clip through a clip or scroll parent.
	NumUnclippedDescendants int
}

func (d *DrawProperties) reset() {
	*d = DrawProperties{
		TargetSpaceTransform: geom.Identity(),
		DrawTransform:        geom.Identity(),
		ScreenSpaceTransform: geom.Identity(),
	}
}

// LayerSpaceScreenTransform returns the transform from layer space, as
// opposed to content space, into screen space.
func (d *DrawProperties) LayerSpaceScreenTransform() geom.Transform {
	if d.ContentsScale == 0 || d.ContentsScale == 1 {
		return d.ScreenSpaceTransform
	}
	return d.ScreenSpaceTransform.Scale(d.ContentsScale, d.ContentsScale)
}

// String returns a one-line summary for debugging.
func (d DrawProperties) String() string {
	if !d.Computed {
		return "skipped"
	}
	target := NoLayer
	if d.RenderTarget != nil {
		target = d.RenderTarget.id
	}
	return fmt.Sprintf("target=%d opacity=%g clip=%v(%t) visible=%v drawable=%v",
		target, d.Opacity, d.ClipRect, d.IsClipped, d.VisibleContentRect, d.DrawableContentRect)
}
