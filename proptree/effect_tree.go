// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proptree

// EffectNode is the data of one effect tree node.
type EffectNode struct {
	Opacity   float64
	BlendMode BlendMode
	// HasRenderSurface marks a node whose owner actually draws into its
	// own surface, as opposed to merely being eligible for one.
	HasRenderSurface             bool
	HasCopyRequest               bool
	HasUnclippedDescendants      bool
	HasPotentialOpacityAnimation bool
	// IsHidden hides the owner and its subtree unless a copy request
	// forces it to draw.
	IsHidden bool

	ScreenSpaceOpacity float64
	// DrawOpacity is applied to layers drawing into this node's target.
	DrawOpacity float64
	// SurfaceDrawOpacity is applied when the node's surface composites
	// into its own target.
	SurfaceDrawOpacity float64
	IsDrawn            bool
	// TargetID is the nearest strict ancestor with a render surface, or
	// the node itself for the root.
	TargetID int
}

// EffectTree is the effect property tree.
type EffectTree struct {
	Tree[EffectNode]
}

// UpdateNode computes the outputs of node id from its parent.
func (e *EffectTree) UpdateNode(id int) {
	n := e.Node(id)
	d := &n.Data

	parentDrawOpacity := 1.0
	if n.ParentID == NoNode {
		d.ScreenSpaceOpacity = d.Opacity
		d.IsDrawn = d.HasCopyRequest || !d.IsHidden
		d.TargetID = id
	} else {
		p := &e.Node(n.ParentID).Data
		d.ScreenSpaceOpacity = p.ScreenSpaceOpacity * d.Opacity
		d.IsDrawn = d.HasCopyRequest || (p.IsDrawn && !d.IsHidden)
		if p.HasRenderSurface {
			d.TargetID = n.ParentID
		} else {
			d.TargetID = p.TargetID
		}
		parentDrawOpacity = p.DrawOpacity
	}

	if d.HasRenderSurface {
		d.SurfaceDrawOpacity = d.Opacity * parentDrawOpacity
		d.DrawOpacity = 1
	} else {
		d.DrawOpacity = d.Opacity * parentDrawOpacity
		d.SurfaceDrawOpacity = d.DrawOpacity
	}
}

// Update recomputes every node in index order.
func (e *EffectTree) Update() {
	for id := range e.nodes {
		e.UpdateNode(id)
	}
}
