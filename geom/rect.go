// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import (
	"fmt"
	"image"
	"math"
)

// RectF is a float rectangle with its origin at the top-left corner.
// A rectangle with non-positive width or height is empty.
type RectF struct {
	X, Y, Width, Height float64
}

// RectFFrom converts an integer rectangle.
func RectFFrom(r image.Rectangle) RectF {
	return RectF{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// RectFromLTRB builds a rectangle from its edges.
func RectFromLTRB(left, top, right, bottom float64) RectF {
	return RectF{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Right returns X + Width.
func (r RectF) Right() float64 { return r.X + r.Width }

// Bottom returns Y + Height.
func (r RectF) Bottom() float64 { return r.Y + r.Height }

// Origin returns the top-left corner.
func (r RectF) Origin() Point { return Point{X: r.X, Y: r.Y} }

// IsEmpty reports whether the rectangle has no area.
func (r RectF) IsEmpty() bool {
	return !(r.Width > 0) || !(r.Height > 0)
}

// Contains reports whether p lies inside r. The left and top edges are
// inclusive, the right and bottom edges exclusive.
func (r RectF) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// ContainsRect reports whether o lies entirely inside r.
func (r RectF) ContainsRect(o RectF) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Offset returns r translated by d.
func (r RectF) Offset(d Point) RectF {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Scale returns r with all coordinates multiplied per axis.
func (r RectF) Scale(sx, sy float64) RectF {
	return RectFromLTRB(r.X*sx, r.Y*sy, r.Right()*sx, r.Bottom()*sy)
}

// Intersect returns the overlap of r and o, or the empty rectangle.
func (r RectF) Intersect(o RectF) RectF {
	left := math.Max(r.X, o.X)
	top := math.Max(r.Y, o.Y)
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())
	if !(left < right) || !(top < bottom) {
		return RectF{}
	}
	return RectFromLTRB(left, top, right, bottom)
}

// Union returns the smallest rectangle containing r and o. Empty
// rectangles do not contribute.
func (r RectF) Union(o RectF) RectF {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return RectFromLTRB(
		math.Min(r.X, o.X),
		math.Min(r.Y, o.Y),
		math.Max(r.Right(), o.Right()),
		math.Max(r.Bottom(), o.Bottom()),
	)
}

// Corners returns the four corners clockwise from the top-left.
func (r RectF) Corners() [4]Point {
	return [4]Point{
		{X: r.X, Y: r.Y},
		{X: r.Right(), Y: r.Y},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.X, Y: r.Bottom()},
	}
}

// String returns "x,y wxh".
func (r RectF) String() string {
	return fmt.Sprintf("%g,%g %gx%g", r.X, r.Y, r.Width, r.Height)
}

// EnclosingRect returns the smallest integer rectangle containing r.
// Rectangles whose edges are not finite or do not fit in 32 bits collapse
// to the empty rectangle instead of saturating.
func EnclosingRect(r RectF) image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	left, top := math.Floor(r.X), math.Floor(r.Y)
	right, bottom := math.Ceil(r.Right()), math.Ceil(r.Bottom())
	if !fitsInt32(left) || !fitsInt32(top) || !fitsInt32(right) || !fitsInt32(bottom) {
		return image.Rectangle{}
	}
	return image.Rect(int(left), int(top), int(right), int(bottom))
}

// EnclosedRect returns the largest integer rectangle inside r.
func EnclosedRect(r RectF) image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	left, top := math.Ceil(r.X), math.Ceil(r.Y)
	right, bottom := math.Floor(r.Right()), math.Floor(r.Bottom())
	if !fitsInt32(left) || !fitsInt32(top) || !fitsInt32(right) || !fitsInt32(bottom) ||
		left >= right || top >= bottom {
		return image.Rectangle{}
	}
	return image.Rect(int(left), int(top), int(right), int(bottom))
}

func fitsInt32(v float64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// IntersectRects intersects integer rectangles, treating an empty result
// as the zero rectangle.
func IntersectRects(a, b image.Rectangle) image.Rectangle {
	r := a.Intersect(b)
	if r.Empty() {
		return image.Rectangle{}
	}
	return r
}
