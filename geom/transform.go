// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// epsilon is the tolerance used for structural checks on matrices
// (axis alignment, approximate equality).
const epsilon = 1e-8

// Transform is a 4x4 matrix in row-major order acting on column vectors.
//
//	| m00 m01 m02 m03 |   | x |
//	| m10 m11 m12 m13 | * | y |
//	| m20 m21 m22 m23 |   | z |
//	| m30 m31 m32 m33 |   | w |
//
// The zero value is the zero matrix, not the identity; use [Identity].
type Transform struct {
	m f64.Mat4
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: f64.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// FromMat4 wraps a row-major matrix.
func FromMat4(m f64.Mat4) Transform {
	return Transform{m: m}
}

// FromAffine builds a transform from the 2-D affine coefficients
//
//	| a c e |
//	| b d f |
//
// using the column-major naming of CSS matrix(a, b, c, d, e, f).
func FromAffine(a, b, c, d, e, f float64) Transform {
	t := Identity()
	t.m[0], t.m[1], t.m[3] = a, c, e
	t.m[4], t.m[5], t.m[7] = b, d, f
	return t
}

// Mat4 returns the row-major matrix.
func (t Transform) Mat4() f64.Mat4 {
	return t.m
}

// Get returns the element at the given row and column.
func (t Transform) Get(row, col int) float64 {
	return t.m[row*4+col]
}

// Set returns a copy of t with the element at row, col replaced.
func (t Transform) Set(row, col int, v float64) Transform {
	t.m[row*4+col] = v
	return t
}

// Mul returns t * o, the transform that applies o first and then t.
func (t Transform) Mul(o Transform) Transform {
	var r f64.Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i*4+j] = t.m[i*4+0]*o.m[0*4+j] +
				t.m[i*4+1]*o.m[1*4+j] +
				t.m[i*4+2]*o.m[2*4+j] +
				t.m[i*4+3]*o.m[3*4+j]
		}
	}
	return Transform{m: r}
}

// Translate returns t * Translation(x, y, 0).
func (t Transform) Translate(x, y float64) Transform {
	return t.Translate3d(x, y, 0)
}

// Translate3d returns t * Translation(x, y, z).
func (t Transform) Translate3d(x, y, z float64) Transform {
	if x == 0 && y == 0 && z == 0 {
		return t
	}
	for row := 0; row < 4; row++ {
		i := row * 4
		t.m[i+3] += t.m[i]*x + t.m[i+1]*y + t.m[i+2]*z
	}
	return t
}

// Scale returns t * Scale(x, y, 1).
func (t Transform) Scale(x, y float64) Transform {
	return t.Scale3d(x, y, 1)
}

// Scale3d returns t * Scale(x, y, z).
func (t Transform) Scale3d(x, y, z float64) Transform {
	for row := 0; row < 4; row++ {
		i := row * 4
		t.m[i] *= x
		t.m[i+1] *= y
		t.m[i+2] *= z
	}
	return t
}

// RotateAboutZAxis returns t * Rz(degrees).
func (t Transform) RotateAboutZAxis(degrees float64) Transform {
	c, s := cosSinDegrees(degrees)
	r := Identity()
	r.m[0], r.m[1] = c, -s
	r.m[4], r.m[5] = s, c
	return t.Mul(r)
}

// RotateAboutXAxis returns t * Rx(degrees).
func (t Transform) RotateAboutXAxis(degrees float64) Transform {
	c, s := cosSinDegrees(degrees)
	r := Identity()
	r.m[5], r.m[6] = c, -s
	r.m[9], r.m[10] = s, c
	return t.Mul(r)
}

// RotateAboutYAxis returns t * Ry(degrees).
func (t Transform) RotateAboutYAxis(degrees float64) Transform {
	c, s := cosSinDegrees(degrees)
	r := Identity()
	r.m[0], r.m[2] = c, s
	r.m[8], r.m[10] = -s, c
	return t.Mul(r)
}

// Skew returns t * Skew(xDegrees, yDegrees).
func (t Transform) Skew(xDegrees, yDegrees float64) Transform {
	r := Identity()
	r.m[1] = math.Tan(xDegrees * math.Pi / 180)
	r.m[4] = math.Tan(yDegrees * math.Pi / 180)
	return t.Mul(r)
}

// ApplyPerspectiveDepth returns t * Perspective(depth). A depth of zero
// leaves t unchanged.
func (t Transform) ApplyPerspectiveDepth(depth float64) Transform {
	if depth == 0 {
		return t
	}
	r := Identity()
	r.m[14] = -1 / depth
	return t.Mul(r)
}

// cosSinDegrees snaps multiples of 90 degrees so quarter turns are exact.
func cosSinDegrees(degrees float64) (c, s float64) {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return 1, 0
	case 90:
		return 0, 1
	case 180:
		return -1, 0
	case 270:
		return 0, -1
	}
	rad := degrees * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}

// IsIdentity reports whether t is exactly the identity.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// IsIdentityOrTranslation reports whether t is a pure translation.
func (t Transform) IsIdentityOrTranslation() bool {
	m := &t.m
	return m[0] == 1 && m[1] == 0 && m[2] == 0 &&
		m[4] == 0 && m[5] == 1 && m[6] == 0 &&
		m[8] == 0 && m[9] == 0 && m[10] == 1 &&
		m[12] == 0 && m[13] == 0 && m[14] == 0 && m[15] == 1
}

// IsIdentityOrIntegerTranslation reports whether t is a translation by
// whole units.
func (t Transform) IsIdentityOrIntegerTranslation() bool {
	if !t.IsIdentityOrTranslation() {
		return false
	}
	return isInteger(t.m[3]) && isInteger(t.m[7]) && isInteger(t.m[11])
}

func isInteger(v float64) bool {
	return v == math.Trunc(v)
}

// IsScaleOrTranslation reports whether t only scales and translates.
func (t Transform) IsScaleOrTranslation() bool {
	m := &t.m
	return m[1] == 0 && m[2] == 0 &&
		m[4] == 0 && m[6] == 0 &&
		m[8] == 0 && m[9] == 0 &&
		m[12] == 0 && m[13] == 0 && m[14] == 0 && m[15] == 1
}

// HasPerspective reports whether the bottom row differs from (0, 0, 0, 1).
func (t Transform) HasPerspective() bool {
	m := &t.m
	return m[12] != 0 || m[13] != 0 || m[14] != 0 || m[15] != 1
}

// IsFlat reports whether t maps the z=0 plane without using or producing
// z: the third row and column are those of the identity.
func (t Transform) IsFlat() bool {
	m := &t.m
	return m[2] == 0 && m[6] == 0 && m[8] == 0 && m[9] == 0 &&
		m[10] == 1 && m[11] == 0 && m[14] == 0
}

// Flatten returns t with z dropped from both input and output, turning it
// into a transform of the z=0 plane onto itself.
func (t Transform) Flatten() Transform {
	t.m[2], t.m[6], t.m[14] = 0, 0, 0
	t.m[8], t.m[9], t.m[11] = 0, 0, 0
	t.m[10] = 1
	return t
}

// Translation2d returns the x and y translation components.
func (t Transform) Translation2d() Point {
	return Point{X: t.m[3], Y: t.m[7]}
}

// Preserves2dAxisAlignment reports whether an axis-aligned rectangle in
// the z=0 plane stays axis-aligned after mapping and dropping z. Mappings
// that collapse an axis to zero count as preserving alignment.
func (t Transform) Preserves2dAxisAlignment() bool {
	m := &t.m
	var row0, row1, col0, col1 int
	nz := func(v float64) bool { return math.Abs(v) > epsilon }
	if nz(m[0]) {
		row0++
		col0++
	}
	if nz(m[1]) {
		row0++
		col1++
	}
	if nz(m[4]) {
		row1++
		col0++
	}
	if nz(m[5]) {
		row1++
		col1++
	}
	// w varying with x or y bends edges under projection.
	if nz(m[12]) {
		col0++
	}
	if nz(m[13]) {
		col1++
	}
	return row0 <= 1 && row1 <= 1 && col0 <= 1 && col1 <= 1
}

// Determinant returns the determinant of the 4x4 matrix.
func (t Transform) Determinant() float64 {
	m := &t.m
	a0 := m[0]*m[5] - m[1]*m[4]
	a1 := m[0]*m[6] - m[2]*m[4]
	a2 := m[0]*m[7] - m[3]*m[4]
	a3 := m[1]*m[6] - m[2]*m[5]
	a4 := m[1]*m[7] - m[3]*m[5]
	a5 := m[2]*m[7] - m[3]*m[6]
	b0 := m[8]*m[13] - m[9]*m[12]
	b1 := m[8]*m[14] - m[10]*m[12]
	b2 := m[8]*m[15] - m[11]*m[12]
	b3 := m[9]*m[14] - m[10]*m[13]
	b4 := m[9]*m[15] - m[11]*m[13]
	b5 := m[10]*m[15] - m[11]*m[14]
	return a0*b5 - a1*b4 + a2*b3 + a3*b2 - a4*b1 + a5*b0
}

// IsInvertible reports whether t has a finite, non-zero determinant.
func (t Transform) IsInvertible() bool {
	d := t.Determinant()
	return d != 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

// Inverse returns the inverse of t. The boolean is false, and the identity
// is returned, when t is singular or the inverse is not finite.
func (t Transform) Inverse() (Transform, bool) {
	if t.IsIdentityOrTranslation() {
		return Identity().Translate3d(-t.m[3], -t.m[7], -t.m[11]), true
	}
	m := &t.m
	a0 := m[0]*m[5] - m[1]*m[4]
	a1 := m[0]*m[6] - m[2]*m[4]
	a2 := m[0]*m[7] - m[3]*m[4]
	a3 := m[1]*m[6] - m[2]*m[5]
	a4 := m[1]*m[7] - m[3]*m[5]
	a5 := m[2]*m[7] - m[3]*m[6]
	b0 := m[8]*m[13] - m[9]*m[12]
	b1 := m[8]*m[14] - m[10]*m[12]
	b2 := m[8]*m[15] - m[11]*m[12]
	b3 := m[9]*m[14] - m[10]*m[13]
	b4 := m[9]*m[15] - m[11]*m[13]
	b5 := m[10]*m[15] - m[11]*m[14]
	det := a0*b5 - a1*b4 + a2*b3 + a3*b2 - a4*b1 + a5*b0
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Identity(), false
	}
	inv := 1 / det
	var r f64.Mat4
	r[0] = (m[5]*b5 - m[6]*b4 + m[7]*b3) * inv
	r[1] = (-m[1]*b5 + m[2]*b4 - m[3]*b3) * inv
	r[2] = (m[13]*a5 - m[14]*a4 + m[15]*a3) * inv
	r[3] = (-m[9]*a5 + m[10]*a4 - m[11]*a3) * inv
	r[4] = (-m[4]*b5 + m[6]*b2 - m[7]*b1) * inv
	r[5] = (m[0]*b5 - m[2]*b2 + m[3]*b1) * inv
	r[6] = (-m[12]*a5 + m[14]*a2 - m[15]*a1) * inv
	r[7] = (m[8]*a5 - m[10]*a2 + m[11]*a1) * inv
	r[8] = (m[4]*b4 - m[5]*b2 + m[7]*b0) * inv
	r[9] = (-m[0]*b4 + m[1]*b2 - m[3]*b0) * inv
	r[10] = (m[12]*a4 - m[13]*a2 + m[15]*a0) * inv
	r[11] = (-m[8]*a4 + m[9]*a2 - m[11]*a0) * inv
	r[12] = (-m[4]*b3 + m[5]*b1 - m[6]*b0) * inv
	r[13] = (m[0]*b3 - m[1]*b1 + m[2]*b0) * inv
	r[14] = (-m[12]*a3 + m[13]*a1 - m[14]*a0) * inv
	r[15] = (m[8]*a3 - m[9]*a1 + m[10]*a0) * inv
	for _, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Identity(), false
		}
	}
	return Transform{m: r}, true
}

// IsBackFaceVisible reports whether a surface facing +z in its own space
// faces away from the viewer after t is applied. Singular transforms are
// treated as front facing.
func (t Transform) IsBackFaceVisible() bool {
	det := t.Determinant()
	if det == 0 || math.IsNaN(det) {
		return false
	}
	m := &t.m
	// Cofactor of element (2,2): the z component of the transformed
	// normal is cofactor22/det, only its sign matters.
	cofactor := m[0]*m[5]*m[15] +
		m[1]*m[7]*m[12] +
		m[3]*m[4]*m[13] -
		m[0]*m[7]*m[13] -
		m[1]*m[4]*m[15] -
		m[3]*m[5]*m[12]
	return cofactor*det < 0
}

// Scale2dComponents returns the lengths of the transformed x and y unit
// vectors. Transforms with perspective have no meaningful 2-D scale, and
// fallback is returned for both components.
func (t Transform) Scale2dComponents(fallback float64) (sx, sy float64) {
	if t.HasPerspective() {
		return fallback, fallback
	}
	m := &t.m
	sx = math.Sqrt(m[0]*m[0] + m[4]*m[4] + m[8]*m[8])
	sy = math.Sqrt(m[1]*m[1] + m[5]*m[5] + m[9]*m[9])
	return sx, sy
}

// MaxScale2d returns the larger of the 2-D scale components.
func (t Transform) MaxScale2d(fallback float64) float64 {
	sx, sy := t.Scale2dComponents(fallback)
	return math.Max(sx, sy)
}

// MapHomogeneous maps (x, y, z, 1) and keeps the result in homogeneous
// coordinates.
func (t Transform) MapHomogeneous(p Point3) HomogeneousPoint {
	m := &t.m
	return HomogeneousPoint{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
		W: m[12]*p.X + m[13]*p.Y + m[14]*p.Z + m[15],
	}
}

// MapPoint3 maps a 3-D point and divides by w when w is non-zero.
func (t Transform) MapPoint3(p Point3) Point3 {
	return t.MapHomogeneous(p).CartesianPoint3()
}

// MapPoint maps a point of the z=0 plane and drops the resulting z.
func (t Transform) MapPoint(p Point) Point {
	return t.MapHomogeneous(Point3{X: p.X, Y: p.Y}).CartesianPoint()
}

// ToAffine returns the 2-D affine part of t as an [f64.Aff3], dropping z
// and any perspective.
func (t Transform) ToAffine() f64.Aff3 {
	return f64.Aff3{t.m[0], t.m[1], t.m[3], t.m[4], t.m[5], t.m[7]}
}

// ApproximatelyEqual reports whether all elements of t and o differ by no
// more than tolerance.
func (t Transform) ApproximatelyEqual(o Transform, tolerance float64) bool {
	for i := range t.m {
		if math.Abs(t.m[i]-o.m[i]) > tolerance {
			return false
		}
	}
	return true
}

// String returns the matrix rows.
func (t Transform) String() string {
	m := &t.m
	return fmt.Sprintf("[%g %g %g %g | %g %g %g %g | %g %g %g %g | %g %g %g %g]",
		m[0], m[1], m[2], m[3],
		m[4], m[5], m[6], m[7],
		m[8], m[9], m[10], m[11],
		m[12], m[13], m[14], m[15])
}
