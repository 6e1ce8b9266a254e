package compositor

import (
	"image"
	"iter"
	"slices"
)

// EntryKind tells what a [ListEntry] stands for.
type EntryKind uint8

// Entry kinds, in the order a back-to-front walk meets them for one
// surface: the surface as a target, then its layers and contributing
// surfaces.
const (
	// TargetSurface starts the layers drawn into Layer's surface.
	TargetSurface EntryKind = iota
	// ContributingSurface composites Layer's surface into its target.
	ContributingSurface
	// Itself draws Layer's own content.
	Itself
)

var entryKindNames = [...]string{
	TargetSurface:       "target",
	ContributingSurface: "contributing",
	Itself:              "itself",
}

func (k EntryKind) String() string {
	if int(k) < len(entryKindNames) {
		return entryKindNames[k]
	}
	return "unknown"
}

// ListEntry is one step of a walk over a [RenderSurfaceLayerList].
type ListEntry struct {
	Kind EntryKind
	// Layer is the layer drawn, or the owner of the surface.
	Layer *Layer
	// Target owns the surface the entry draws into. For TargetSurface it
	// is the surface's owner.
	Target *Layer
}

// RenderSurfaceLayerList is the ordered set of surfaces produced by a
// pass. Surfaces are ordered so that every surface precedes the surfaces
// drawing into it; the root surface comes first.
type RenderSurfaceLayerList struct {
	surfaces []*RenderSurface
}

// Len returns the number of surfaces.
func (r RenderSurfaceLayerList) Len() int { return len(r.surfaces) }

// At returns the i-th surface.
func (r RenderSurfaceLayerList) At(i int) *RenderSurface { return r.surfaces[i] }

// Root returns the root surface, or nil for an empty list.
func (r RenderSurfaceLayerList) Root() *RenderSurface {
	if len(r.surfaces) == 0 {
		return nil
	}
	return r.surfaces[0]
}

// Surfaces returns the surfaces in order.
func (r RenderSurfaceLayerList) Surfaces() iter.Seq2[int, *RenderSurface] {
	return slices.All(r.surfaces)
}

// BackToFront walks every surface and layer in drawing order. A
// contributing surface is followed by the walk of that surface's own
// layers.
func (r RenderSurfaceLayerList) BackToFront() iter.Seq[ListEntry] {
	return func(yield func(ListEntry) bool) {
		if root := r.Root(); root != nil {
			walkSurface(root, yield)
		}
	}
}

func walkSurface(s *RenderSurface, yield func(ListEntry) bool) bool {
	if !yield(ListEntry{Kind: TargetSurface, Layer: s.owner, Target: s.owner}) {
		return false
	}
	for _, l := range s.layerList {
		if l == s.owner || !l.ownsSurface {
			if !yield(ListEntry{Kind: Itself, Layer: l, Target: s.owner}) {
				return false
			}
			continue
		}
		if !yield(ListEntry{Kind: ContributingSurface, Layer: l, Target: s.owner}) {
			return false
		}
		if !walkSurface(l.renderSurface, yield) {
			return false
		}
	}
	return true
}

// FrontToBack walks the entries of BackToFront in reverse.
func (r RenderSurfaceLayerList) FrontToBack() iter.Seq[ListEntry] {
	return func(yield func(ListEntry) bool) {
		entries := slices.Collect(r.BackToFront())
		for _, e := range slices.Backward(entries) {
			if !yield(e) {
				return
			}
		}
	}
}

// DrawnLayers returns the layers that draw their own content, back to
// front.
func (r RenderSurfaceLayerList) DrawnLayers() iter.Seq[*Layer] {
	return func(yield func(*Layer) bool) {
		for e := range r.BackToFront() {
			if e.Kind == Itself && !yield(e.Layer) {
				return
			}
		}
	}
}

// surfaceEntryRect returns the drawable rect an entry of s's layer list
// contributes to s's content rect.
func surfaceEntryRect(s *RenderSurface, l *Layer) image.Rectangle {
	if l == s.owner || !l.ownsSurface {
		return l.drawProps.DrawableContentRect
	}
	return l.renderSurface.DrawableContentRect
}

// finishSurfaces computes content rects bottom-up, drops surfaces that
// draw nothing, sorts 3-D contexts and stamps list membership.
func (c *calculator) finishSurfaces() RenderSurfaceLayerList {
	removed := make(map[*RenderSurface]bool)
	vp := image.Rect(0, 0, c.in.DeviceViewportSize.Width, c.in.DeviceViewportSize.Height)

	for _, s := range slices.Backward(c.surfaces) {
		owner := s.owner
		if owner == c.in.Root {
			s.ContentRect = vp
			s.computeDrawableContentRect()
			continue
		}

		var content image.Rectangle
		for _, l := range s.layerList {
			if l != owner && l.ownsSurface && removed[l.renderSurface] {
				continue
			}
			content = content.Union(surfaceEntryRect(s, l))
		}
		if s.IsClipped && !s.HasReplica() {
			content = CalculateVisibleRect(s.ClipRect, content, s.DrawTransform)
		}
		if m := c.in.MaxTextureSize; m > 0 && !content.Empty() {
			content.Max.X = min(content.Max.X, content.Min.X+m)
			content.Max.Y = min(content.Max.Y, content.Min.Y+m)
		}
		s.ContentRect = content
		s.computeDrawableContentRect()

		keep := c.entries[s.entry].subtreeHasCopyRequest
		if !keep && (content.Empty() || s.BackFaceCulled) {
			removed[s] = true
		}
	}

	kept := make([]*RenderSurface, 0, len(c.surfaces))
	for _, s := range c.surfaces {
		if removed[s] {
			continue
		}
		if t := s.TargetSurface(); t != nil && removed[t] {
			removed[s] = true
			continue
		}
		kept = append(kept, s)
	}

	pass := c.tree.passID
	for _, s := range kept {
		s.layerList = slices.DeleteFunc(s.layerList, func(l *Layer) bool {
			return l != s.owner && l.ownsSurface && removed[l.renderSurface]
		})
		sortLayerList(s)
		s.lastDrawnPassID = pass
		for _, l := range s.layerList {
			l.lastDrawnPassID = pass
		}
	}
	return RenderSurfaceLayerList{surfaces: kept}
}
