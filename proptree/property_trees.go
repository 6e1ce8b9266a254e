// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proptree

import "github.com/gogpu/compositor/geom"

// PropertyTrees bundles the three trees of one layer tree.
type PropertyTrees struct {
	Transform TransformTree
	Clip      ClipTree
	Effect    EffectTree

	// NeedsRebuild is set by any mutation that changes tree topology or a
	// node's inputs. A clean set of trees may be reused as is.
	NeedsRebuild bool
}

// Reset clears all trees and inserts their fixed roots: the device
// transform node and the viewport clip node. The viewport clip node
// refers to rootTransformID, which the caller must insert next.
func (p *PropertyTrees) Reset(deviceTransform geom.Transform, deviceScaleFactor float64) {
	p.Transform.InsertDevice(deviceTransform, deviceScaleFactor)
	p.Clip.Clear()
	p.Effect.Clear()
}

// Update recomputes all trees in dependency order.
func (p *PropertyTrees) Update() {
	p.Transform.Update()
	p.Clip.Update(&p.Transform)
	p.Effect.Update()
}

// Sizes returns the node counts of the transform, clip and effect trees.
func (p *PropertyTrees) Sizes() (transform, clip, effect int) {
	return p.Transform.Size(), p.Clip.Size(), p.Effect.Size()
}
