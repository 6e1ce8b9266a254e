// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proptree

import "github.com/gogpu/compositor/geom"

// ViewportNodeID is the clip node holding the device viewport.
const ViewportNodeID = 0

// ClipNode is the data of one clip tree node.
type ClipNode struct {
	// Clip is in the space of transform node TransformID.
	Clip        geom.RectF
	TransformID int
	// AppliesLocalClip intersects Clip into the inherited clip.
	AppliesLocalClip bool
	// ResetsClip starts a fresh clip at a render surface boundary. The
	// surface itself carries the inherited clip.
	ResetsClip bool

	// TargetID is the content target of TransformID.
	TargetID int
	// CombinedClip is the accumulated clip in TargetID space. It is only
	// meaningful when IsClipped is set.
	CombinedClip geom.RectF
	IsClipped    bool
}

// Passthrough reports whether the node only forwards its parent's clip
// into a new target space.
func (c ClipNode) Passthrough() bool {
	return !c.AppliesLocalClip && !c.ResetsClip
}

// ClipTree is the clip property tree.
type ClipTree struct {
	Tree[ClipNode]
}

// InsertViewport resets the tree and inserts the viewport node. The
// viewport is in the content space of the root surface, which is screen
// space; rootTransformID only names that target.
func (c *ClipTree) InsertViewport(viewport geom.RectF, rootTransformID int) {
	c.Clear()
	c.Insert(NoNode, NoNode, ClipNode{
		Clip:             viewport,
		TransformID:      rootTransformID,
		AppliesLocalClip: true,
	})
}

// UpdateNode computes the combined clip of node id. Its parent and the
// transform tree must be up to date.
func (c *ClipTree) UpdateNode(id int, tt *TransformTree) {
	n := c.Node(id)
	d := &n.Data
	tn := &tt.Node(d.TransformID).Data
	d.TargetID = tn.ContentTargetID

	// The viewport is always clipped, even when it is empty.
	if n.ParentID == NoNode {
		d.CombinedClip = d.Clip
		d.IsClipped = true
		return
	}

	var clip geom.RectF
	clipped := false
	if !d.ResetsClip {
		p := &c.Node(n.ParentID).Data
		if p.IsClipped {
			clip, clipped = tt.MapRectBetweenTargets(p.CombinedClip, p.TargetID, d.TargetID)
		}
	}
	if d.AppliesLocalClip {
		local := geom.MapClippedRect(tn.ToTarget, d.Clip)
		if clipped {
			clip = clip.Intersect(local)
		} else {
			clip = local
		}
		clipped = true
	}
	d.CombinedClip = clip
	d.IsClipped = clipped
}

// Update recomputes every node in index order.
func (c *ClipTree) Update(tt *TransformTree) {
	for id := range c.nodes {
		c.UpdateNode(id, tt)
	}
}

// ClipInTarget returns the combined clip of node id mapped into the
// content space of target. clipped is false when the node does not clip
// or the clip cannot be mapped.
func (c *ClipTree) ClipInTarget(id, target int, tt *TransformTree) (r geom.RectF, clipped bool) {
	d := &c.Node(id).Data
	if !d.IsClipped {
		return geom.RectF{}, false
	}
	return tt.MapRectBetweenTargets(d.CombinedClip, d.TargetID, target)
}
