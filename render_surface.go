package compositor

import (
	"image"

	"github.com/gogpu/compositor/geom"
)

// RenderSurface is an offscreen target owned by one layer. The owner and
// its descendants draw into the surface, which is then composited into the
// surface of the owner's render target.
//
// A layer keeps its surface object across passes; [Layer.RenderSurface]
// returns nil when the last pass did not give the layer a surface.
type RenderSurface struct {
	owner *Layer

	// DrawTransform maps surface space into the target surface's space.
	DrawTransform geom.Transform
	// ScreenSpaceTransform maps surface space into screen space.
	ScreenSpaceTransform geom.Transform
	// ReplicaDrawTransform and ReplicaScreenSpaceTransform place the
	// mirrored copy of the surface. Only set when the owner has a replica.
	ReplicaDrawTransform        geom.Transform
	ReplicaScreenSpaceTransform geom.Transform

	DrawTransformIsAnimating        bool
	ScreenSpaceTransformIsAnimating bool

	// DrawOpacity is applied when the surface is composited.
	DrawOpacity float64
	BlendMode   BlendMode

	// IsClipped reports whether ClipRect applies. A surface with unclipped
	// descendants is never clipped; its layers are clipped one by one.
	IsClipped bool
	// ClipRect is in the target surface's space.
	ClipRect image.Rectangle
	// ContentRect bounds everything drawn into the surface, in surface
	// space.
	ContentRect image.Rectangle
	// DrawableContentRect is ContentRect and its replica mapped into the
	// target surface's space and clipped.
	DrawableContentRect image.Rectangle
	// SublayerScale is applied to the content drawn into the surface.
	SublayerScale geom.Point

	// BackFaceCulled is set when the surface faces away and its owner is
	// single-sided.
	BackFaceCulled bool

	layerList       []*Layer
	lastDrawnPassID int
	// entry is the owner's side table index in the last pass.
	entry int
}

func newRenderSurface(owner *Layer) *RenderSurface {
	return &RenderSurface{owner: owner}
}

// Owner returns the layer that owns the surface.
func (s *RenderSurface) Owner() *Layer { return s.owner }

// LayerList returns the layers drawing into the surface, back to front.
// Layers owning a contributing surface stand for that surface, except the
// owner itself. The slice must not be modified.
func (s *RenderSurface) LayerList() []*Layer { return s.layerList }

// TargetSurface returns the surface this surface is composited into, or
// nil for the root surface.
func (s *RenderSurface) TargetSurface() *RenderSurface {
	p := s.owner.parent
	if p == nil {
		return nil
	}
	t := p.RenderTarget()
	if t == nil {
		return nil
	}
	return t.RenderSurface()
}

// IsDrawnRenderSurfaceLayerListMember reports whether the surface is in
// the last pass's render surface list.
func (s *RenderSurface) IsDrawnRenderSurfaceLayerListMember() bool {
	t := s.owner.tree
	return t != nil && s.lastDrawnPassID != 0 && s.lastDrawnPassID == t.passID
}

// HasReplica reports whether the owner has a replica layer.
func (s *RenderSurface) HasReplica() bool { return s.owner.replicaLayer != nil }

// HasMask reports whether the owner has a mask layer.
func (s *RenderSurface) HasMask() bool { return s.owner.maskLayer != nil }

func (s *RenderSurface) resetForPass() {
	s.DrawTransform = geom.Identity()
	s.ScreenSpaceTransform = geom.Identity()
	s.ReplicaDrawTransform = geom.Identity()
	s.ReplicaScreenSpaceTransform = geom.Identity()
	s.DrawTransformIsAnimating = false
	s.ScreenSpaceTransformIsAnimating = false
	s.DrawOpacity = 1
	s.BlendMode = BlendNormal
	s.IsClipped = false
	s.ClipRect = image.Rectangle{}
	s.ContentRect = image.Rectangle{}
	s.DrawableContentRect = image.Rectangle{}
	s.SublayerScale = geom.Pt(1, 1)
	s.BackFaceCulled = false
	s.layerList = s.layerList[:0]
}

// computeDrawableContentRect derives DrawableContentRect from ContentRect.
func (s *RenderSurface) computeDrawableContentRect() {
	r := geom.MapEnclosingClippedRect(s.DrawTransform, s.ContentRect)
	if s.HasReplica() {
		r = r.Union(geom.MapEnclosingClippedRect(s.ReplicaDrawTransform, s.ContentRect))
	}
	if s.IsClipped {
		r = geom.IntersectRects(r, s.ClipRect)
	}
	s.DrawableContentRect = r
}
