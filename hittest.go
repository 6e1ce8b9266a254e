package compositor

import (
	"image"
	"math"

	"github.com/gogpu/compositor/geom"
)

// depthEpsilon separates coplanar layers of one sorting context.
const depthEpsilon = 1.0 / (1 << 23)

// pointHitsRect reports whether screenPoint lands inside r after being
// mapped back through screenTransform, and the depth of the hit. Layers
// with a non-invertible transform are never hit.
func pointHitsRect(screenPoint geom.Point, screenTransform geom.Transform, r geom.RectF) (depth float64, hit bool) {
	inv, ok := screenTransform.Inverse()
	if !ok {
		return 0, false
	}
	local, clipped := geom.ProjectPoint(inv, screenPoint)
	if clipped || !r.Contains(local) {
		return 0, false
	}
	return screenTransform.MapPoint3(geom.Pt3(local.X, local.Y, 0)).Z, true
}

func contentRectF(l *Layer) geom.RectF {
	cb := l.drawProps.ContentBounds
	return geom.RectF{Width: float64(cb.Width), Height: float64(cb.Height)}
}

// nextClippingLayer returns the layer whose clip applies next on the way
// from l to the root.
func nextClippingLayer(l *Layer) *Layer {
	if l.clipParent != nil {
		return l.clipParent
	}
	if l.scrollParent != nil {
		return l.scrollParent
	}
	return l.parent
}

// pointIsClipped walks the clip chain of l and reports whether any surface
// clip or masking ancestor excludes screenPoint.
func pointIsClipped(screenPoint geom.Point, l *Layer) bool {
	for a := l; a != nil; a = nextClippingLayer(a) {
		if s := a.RenderSurface(); s != nil && s.IsClipped {
			targetToScreen := geom.Identity()
			if ts := s.TargetSurface(); ts != nil {
				targetToScreen = ts.ScreenSpaceTransform
			}
			if _, hit := pointHitsRect(screenPoint, targetToScreen, geom.RectFFrom(s.ClipRect)); !hit {
				return true
			}
		}
		if a.masksToBounds && a.drawProps.Computed {
			if _, hit := pointHitsRect(screenPoint, a.drawProps.ScreenSpaceTransform, contentRectF(a)); !hit {
				return true
			}
		}
	}
	return false
}

// pointHitsLayer reports whether screenPoint hits l's content and is not
// clipped away.
func pointHitsLayer(screenPoint geom.Point, l *Layer) (depth float64, hit bool) {
	depth, hit = pointHitsRect(screenPoint, l.drawProps.ScreenSpaceTransform, contentRectF(l))
	if !hit || pointIsClipped(screenPoint, l) {
		return 0, false
	}
	return depth, true
}

// FindLayerAtPoint returns the front-most layer drawn by the last pass
// under screenPoint, in device pixels, or nil. Among layers of one 3-D
// sorting context the one closest to the viewer at that point wins.
func (t *LayerTree) FindLayerAtPoint(screenPoint geom.Point) *Layer {
	var match *Layer
	matchDepth := math.Inf(-1)
	for e := range t.lastList.FrontToBack() {
		if e.Kind != Itself {
			continue
		}
		l := e.Layer
		if match != nil && !match.Is3dSorted() {
			break
		}
		depth, hit := pointHitsLayer(screenPoint, l)
		if !hit {
			continue
		}
		if match == nil {
			match, matchDepth = l, depth
			continue
		}
		if l.sortingContextID == match.sortingContextID && depth > matchDepth+depthEpsilon {
			match, matchDepth = l, depth
		}
	}
	return match
}

// FindLayerWithTouchHandlerAtPoint returns the front-most layer whose
// touch handler region contains screenPoint, or nil. Layers need not draw
// content to handle touches.
func (t *LayerTree) FindLayerWithTouchHandlerAtPoint(screenPoint geom.Point) *Layer {
	for i := len(t.built) - 1; i >= 0; i-- {
		e := &t.built[i]
		l := e.layer
		if e.skipped || !l.drawProps.Computed || len(l.touchHandlerRegion) == 0 {
			continue
		}
		if layerHandlesTouchAt(screenPoint, l) {
			return l
		}
	}
	return nil
}

func layerHandlesTouchAt(screenPoint geom.Point, l *Layer) bool {
	screen := l.drawProps.LayerSpaceScreenTransform()
	for _, r := range l.touchHandlerRegion {
		if r.Empty() {
			continue
		}
		if _, hit := pointHitsRect(screenPoint, screen, geom.RectFFrom(r.Intersect(image.Rect(0, 0, l.bounds.Width, l.bounds.Height)))); hit {
			return !pointIsClipped(screenPoint, l)
		}
	}
	return false
}
