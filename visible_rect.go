package compositor

import (
	"image"

	"github.com/gogpu/compositor/geom"
)

// CalculateVisibleRect returns the part of layerBoundRect that lands inside
// targetSurfaceRect when mapped through t. The result is in the space of
// layerBoundRect. A non-invertible t makes the whole layer visible, since
// the surface cannot be mapped back to bound it.
func CalculateVisibleRect(targetSurfaceRect, layerBoundRect image.Rectangle, t geom.Transform) image.Rectangle {
	layerInSurfaceSpace := geom.MapEnclosingClippedRect(t, layerBoundRect)
	return calculateVisibleRectWithLayerRect(targetSurfaceRect, layerBoundRect, layerInSurfaceSpace, t)
}

func calculateVisibleRectWithLayerRect(targetSurfaceRect, layerBoundRect, layerInSurfaceSpace image.Rectangle, t geom.Transform) image.Rectangle {
	if targetSurfaceRect.Empty() {
		return image.Rectangle{}
	}
	minimal := geom.IntersectRects(targetSurfaceRect, layerInSurfaceSpace)
	if minimal.Empty() {
		return image.Rectangle{}
	}
	inv, ok := t.Inverse()
	if !ok {
		return layerBoundRect
	}
	return geom.IntersectRects(geom.ProjectEnclosingClippedRect(inv, minimal), layerBoundRect)
}
