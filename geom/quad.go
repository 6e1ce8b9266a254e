// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import "math"

// QuadF is a convex quadrilateral, usually a rectangle after mapping.
// The points run around the edge in order.
type QuadF struct {
	P1, P2, P3, P4 Point
}

// QuadFromRect returns the quad with the corners of r.
func QuadFromRect(r RectF) QuadF {
	c := r.Corners()
	return QuadF{P1: c[0], P2: c[1], P3: c[2], P4: c[3]}
}

// MapQuad maps the corners of r through t without clipping. clipped
// reports that at least one corner landed behind the viewer.
func MapQuad(t Transform, r RectF) (q QuadF, clipped bool) {
	c := r.Corners()
	var pts [4]Point
	for i, p := range c {
		var cl bool
		pts[i], cl = MapPointClipped(t, p)
		clipped = clipped || cl
	}
	return QuadF{P1: pts[0], P2: pts[1], P3: pts[2], P4: pts[3]}, clipped
}

// Points returns the corners in order.
func (q QuadF) Points() [4]Point {
	return [4]Point{q.P1, q.P2, q.P3, q.P4}
}

// BoundingBox returns the smallest rectangle containing all four points.
func (q QuadF) BoundingBox() RectF {
	b := newBoundsAccumulator()
	for _, p := range q.Points() {
		b.add(p)
	}
	return b.rect()
}

// IsRectilinear reports whether the edges are parallel to the axes.
func (q QuadF) IsRectilinear() bool {
	eq := func(a, b float64) bool { return math.Abs(a-b) <= epsilon }
	return (eq(q.P1.X, q.P2.X) && eq(q.P2.Y, q.P3.Y) && eq(q.P3.X, q.P4.X) && eq(q.P4.Y, q.P1.Y)) ||
		(eq(q.P1.Y, q.P2.Y) && eq(q.P2.X, q.P3.X) && eq(q.P3.Y, q.P4.Y) && eq(q.P4.X, q.P1.X))
}

// Contains reports whether p lies inside the quad or on its edge.
func (q QuadF) Contains(p Point) bool {
	return pointInTriangle(p, q.P1, q.P2, q.P3) || pointInTriangle(p, q.P1, q.P3, q.P4)
}

func pointInTriangle(p, a, b, c Point) bool {
	d1 := cross(p, a, b)
	d2 := cross(p, b, c)
	d3 := cross(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func cross(p, a, b Point) float64 {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}
