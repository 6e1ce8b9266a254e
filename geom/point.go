// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import "math"

// Point represents a 2D point or vector.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// ScaleXY returns the point scaled per axis.
func (p Point) ScaleXY(sx, sy float64) Point {
	return Point{X: p.X * sx, Y: p.Y * sy}
}

// Length returns the length of the vector.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Point3 is a point in 3-D space.
type Point3 struct {
	X, Y, Z float64
}

// Pt3 is a convenience function to create a Point3.
func Pt3(x, y, z float64) Point3 {
	return Point3{X: x, Y: y, Z: z}
}

// XY drops z.
func (p Point3) XY() Point {
	return Point{X: p.X, Y: p.Y}
}

// Size is an integer width and height, the bounds of a layer.
type Size struct {
	Width, Height int
}

// Sz is a convenience function to create a Size.
func Sz(w, h int) Size {
	return Size{Width: w, Height: h}
}

// IsEmpty reports whether either dimension is not positive.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// RectF returns the rectangle at the origin with this size.
func (s Size) RectF() RectF {
	return RectF{Width: float64(s.Width), Height: float64(s.Height)}
}
