// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package geom provides the geometry used by the compositor: 4x4
// transforms, points, rectangles, quads and homogeneous-coordinate
// mapping.
//
// # Conventions
//
// Transforms act on column vectors: p' = M * p. Composition reads right
// to left, so a.Mul(b) applies b first and then a. The builder methods
// (Translate, Scale, RotateAboutZAxis, ...) pre-concatenate, matching the
// way a layer's local transform is assembled from its position, transform
// origin and transform:
//
//	local := geom.Identity().
//		Translate(pos.X+origin.X, pos.Y+origin.Y).
//		Mul(transform).
//		Translate(-origin.X, -origin.Y)
//
// Integer rectangles use [image.Rectangle]. Float rectangles are [RectF].
//
// # Degenerate input
//
// Nothing in this package panics on singular matrices or infinite values.
// Inverse reports failure with a boolean; enclosing-rect conversion turns
// non-representable float rects into the empty rectangle. Rect projection
// onto a plane seen edge-on collapses to the origin; point projection
// reports it as clipped.
package geom
