// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package proptree holds the property trees that back a draw-properties
// pass: the transform, clip and effect trees.
//
// Each tree is a flat slice of nodes addressed by index. A node's parent
// always has a smaller index, so a single forward sweep computes every
// node from already computed ancestors. Only layers that introduce new
// transform, clip or effect state own a node; every other layer points
// at the nearest ancestor's node.
//
// Index 0 of the transform tree is the device node, which carries the
// device transform and device scale factor. Index 0 of the clip tree is
// the viewport. Index 0 of the effect tree belongs to the root layer.
//
// Out-of-range node indices are builder bugs and panic.
package proptree
