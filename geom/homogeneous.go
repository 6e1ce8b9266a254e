// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import (
	"image"
	"math"

	"golang.org/x/image/math/f64"
)

// clipW is the w value of the plane that clipped edges are cut at. It is
// slightly in front of w=0 so the cut point can still be divided by w.
const clipW = 0.00001

// HomogeneousPoint is a point before the perspective divide.
type HomogeneousPoint struct {
	X, Y, Z, W float64
}

// Vec4 returns the point as an [f64.Vec4].
func (h HomogeneousPoint) Vec4() f64.Vec4 {
	return f64.Vec4{h.X, h.Y, h.Z, h.W}
}

// ShouldBeClipped reports whether the point lies behind the viewer.
func (h HomogeneousPoint) ShouldBeClipped() bool {
	return h.W <= 0
}

// CartesianPoint divides by w and drops z. A w of zero is not divided.
func (h HomogeneousPoint) CartesianPoint() Point {
	if h.W == 1 || h.W == 0 {
		return Point{X: h.X, Y: h.Y}
	}
	inv := 1 / h.W
	return Point{X: h.X * inv, Y: h.Y * inv}
}

// CartesianPoint3 divides by w. A w of zero is not divided.
func (h HomogeneousPoint) CartesianPoint3() Point3 {
	if h.W == 1 || h.W == 0 {
		return Point3{X: h.X, Y: h.Y, Z: h.Z}
	}
	inv := 1 / h.W
	return Point3{X: h.X * inv, Y: h.Y * inv, Z: h.Z * inv}
}

// clippedPointForEdge returns the point where the edge h1-h2 crosses the
// clip plane. Exactly one endpoint must be clipped.
func clippedPointForEdge(h1, h2 HomogeneousPoint) HomogeneousPoint {
	t := (clipW - h1.W) / (h2.W - h1.W)
	return HomogeneousPoint{
		X: h1.X + t*(h2.X-h1.X),
		Y: h1.Y + t*(h2.Y-h1.Y),
		Z: h1.Z + t*(h2.Z-h1.Z),
		W: h1.W + t*(h2.W-h1.W),
	}
}

// boundsAccumulator grows an axis-aligned box point by point.
type boundsAccumulator struct {
	minX, minY, maxX, maxY float64
}

func newBoundsAccumulator() boundsAccumulator {
	return boundsAccumulator{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}
}

func (b *boundsAccumulator) add(p Point) {
	b.minX = math.Min(b.minX, p.X)
	b.minY = math.Min(b.minY, p.Y)
	b.maxX = math.Max(b.maxX, p.X)
	b.maxY = math.Max(b.maxY, p.Y)
}

func (b *boundsAccumulator) rect() RectF {
	if b.minX > b.maxX || b.minY > b.maxY {
		return RectF{}
	}
	return RectFromLTRB(b.minX, b.minY, b.maxX, b.maxY)
}

// EnclosingClippedRect returns the bounding box of the polygon h1..h4
// after it has been clipped against the w=0 plane. A polygon entirely
// behind the viewer yields the empty rectangle.
func EnclosingClippedRect(h1, h2, h3, h4 HomogeneousPoint) RectF {
	poly := ClippedPolygon([4]HomogeneousPoint{h1, h2, h3, h4})
	if len(poly) == 0 {
		return RectF{}
	}
	b := newBoundsAccumulator()
	for _, p := range poly {
		b.add(p)
	}
	return b.rect()
}

// ClippedPolygon clips the quad h against the w=0 plane and returns the
// vertices of the visible part in Cartesian coordinates. The result has
// between zero and eight vertices.
func ClippedPolygon(h [4]HomogeneousPoint) []Point {
	out := make([]Point, 0, 8)
	for i := 0; i < 4; i++ {
		cur := h[i]
		next := h[(i+1)%4]
		if !cur.ShouldBeClipped() {
			out = append(out, cur.CartesianPoint())
		}
		if cur.ShouldBeClipped() != next.ShouldBeClipped() {
			out = append(out, clippedPointForEdge(cur, next).CartesianPoint())
		}
	}
	return out
}

// MapClippedRect maps r through t and returns the bounding box of the
// visible part of the result.
func MapClippedRect(t Transform, r RectF) RectF {
	if t.IsIdentityOrTranslation() {
		return r.Offset(t.Translation2d())
	}
	c := r.Corners()
	return EnclosingClippedRect(
		t.MapHomogeneous(Point3{X: c[0].X, Y: c[0].Y}),
		t.MapHomogeneous(Point3{X: c[1].X, Y: c[1].Y}),
		t.MapHomogeneous(Point3{X: c[2].X, Y: c[2].Y}),
		t.MapHomogeneous(Point3{X: c[3].X, Y: c[3].Y}),
	)
}

// MapEnclosingClippedRect is MapClippedRect rounded out to integers.
func MapEnclosingClippedRect(t Transform, r image.Rectangle) image.Rectangle {
	if d := t.Translation2d(); t.IsIdentityOrIntegerTranslation() && fitsInt32(d.X) && fitsInt32(d.Y) {
		return r.Add(image.Pt(int(d.X), int(d.Y)))
	}
	return EnclosingRect(MapClippedRect(t, RectFFrom(r)))
}

// ProjectHomogeneousPoint casts a ray along z through p and returns where
// it meets the plane t maps onto z=0, in homogeneous coordinates. A plane
// seen exactly edge-on yields the origin.
func ProjectHomogeneousPoint(t Transform, p Point) HomogeneousPoint {
	m22 := t.Get(2, 2)
	if m22 == 0 {
		return HomogeneousPoint{W: 1}
	}
	z := -(t.Get(2, 0)*p.X + t.Get(2, 1)*p.Y + t.Get(2, 3)) / m22
	return t.MapHomogeneous(Point3{X: p.X, Y: p.Y, Z: z})
}

// ProjectPoint projects p through t. clipped reports that the projected
// point lies behind the viewer or that t maps its plane edge-on, in which
// case the returned point must not be used.
func ProjectPoint(t Transform, p Point) (projected Point, clipped bool) {
	if t.Get(2, 2) == 0 {
		return Point{}, true
	}
	h := ProjectHomogeneousPoint(t, p)
	if h.W == 0 {
		return Point{}, true
	}
	return h.CartesianPoint(), h.W < 0
}

// MapPointClipped maps p through t. clipped reports that the mapped point
// lies behind the viewer.
func MapPointClipped(t Transform, p Point) (mapped Point, clipped bool) {
	h := t.MapHomogeneous(Point3{X: p.X, Y: p.Y})
	if h.W > 0 {
		return h.CartesianPoint(), false
	}
	if h.W == 0 {
		return Point{X: h.X, Y: h.Y}, true
	}
	return h.CartesianPoint(), true
}

// ProjectClippedRect projects r through t onto the z=0 plane and returns
// the bounding box of the visible part.
func ProjectClippedRect(t Transform, r RectF) RectF {
	if t.IsIdentityOrTranslation() {
		return r.Offset(t.Translation2d())
	}
	c := r.Corners()
	return EnclosingClippedRect(
		ProjectHomogeneousPoint(t, c[0]),
		ProjectHomogeneousPoint(t, c[1]),
		ProjectHomogeneousPoint(t, c[2]),
		ProjectHomogeneousPoint(t, c[3]),
	)
}

// ProjectEnclosingClippedRect is ProjectClippedRect rounded out to
// integers.
func ProjectEnclosingClippedRect(t Transform, r image.Rectangle) image.Rectangle {
	if d := t.Translation2d(); t.IsIdentityOrIntegerTranslation() && fitsInt32(d.X) && fitsInt32(d.Y) {
		return r.Add(image.Pt(int(d.X), int(d.Y)))
	}
	return EnclosingRect(ProjectClippedRect(t, RectFFrom(r)))
}
