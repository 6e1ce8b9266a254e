// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proptree

import (
	"github.com/gogpu/compositor/geom"
)

// DeviceNodeID is the transform node holding the device transform.
const DeviceNodeID = 0

// TransformNode is the data of one transform tree node.
//
// Local maps the node's space into its parent node's space. The fields
// below the blank line are outputs of Update.
type TransformNode struct {
	Local geom.Transform

	// FlattensInheritedTransform drops z from the parent's transforms
	// before Local is applied.
	FlattensInheritedTransform bool
	// HasRenderSurface marks a node whose owner draws into its own
	// surface. Its content target is the node itself.
	HasRenderSurface bool
	SortingContextID int
	// IsAnimated marks a node whose Local may change every frame.
	IsAnimated bool
	// ScaleFallback is the surface scale used when the transform into the
	// parent target has perspective.
	ScaleFallback float64

	ToScreen geom.Transform
	// ToTarget maps the node's space into the space of ContentTargetID.
	ToTarget        geom.Transform
	ContentTargetID int
	// SurfaceTargetID is the target the node's surface draws into. Only
	// meaningful when HasRenderSurface is set.
	SurfaceTargetID int
	// SurfaceDrawTransform maps surface space into SurfaceTargetID space.
	SurfaceDrawTransform geom.Transform
	// SublayerScale is the 2-D scale moved from the surface draw
	// transform onto the content drawn into the surface.
	SublayerScale          geom.Point
	LocalIsInvertible      bool
	AncestorsAreInvertible bool
	ToScreenIsAnimated     bool
}

// TransformTree is the transform property tree.
type TransformTree struct {
	Tree[TransformNode]
}

// InsertDevice resets the tree and inserts the device node.
func (t *TransformTree) InsertDevice(deviceTransform geom.Transform, deviceScaleFactor float64) {
	t.Clear()
	t.Insert(NoNode, NoNode, TransformNode{
		Local:                      deviceTransform.Scale(deviceScaleFactor, deviceScaleFactor),
		FlattensInheritedTransform: true,
		ScaleFallback:              deviceScaleFactor,
	})
	t.UpdateNode(DeviceNodeID)
}

// IsRootSurface reports whether id is the node of the root render
// surface, whose target space is screen space.
func (t *TransformTree) IsRootSurface(id int) bool {
	n := t.Node(id)
	return n.Data.HasRenderSurface && n.ParentID == DeviceNodeID
}

// UpdateNode computes the outputs of node id from its parent. The parent
// must already be up to date.
func (t *TransformTree) UpdateNode(id int) {
	n := t.Node(id)
	d := &n.Data
	d.LocalIsInvertible = d.Local.IsInvertible()

	if n.ParentID == NoNode {
		d.ToScreen = d.Local
		d.ToTarget = d.Local
		d.ContentTargetID = id
		d.SurfaceTargetID = id
		d.SurfaceDrawTransform = geom.Identity()
		d.SublayerScale = geom.Pt(1, 1)
		d.AncestorsAreInvertible = true
		d.ToScreenIsAnimated = d.IsAnimated
		return
	}

	p := &t.Node(n.ParentID).Data
	d.AncestorsAreInvertible = p.AncestorsAreInvertible && p.LocalIsInvertible
	d.ToScreenIsAnimated = p.ToScreenIsAnimated || d.IsAnimated

	parentScreen, parentTarget := p.ToScreen, p.ToTarget
	if d.FlattensInheritedTransform {
		parentScreen = parentScreen.Flatten()
		parentTarget = parentTarget.Flatten()
	}
	d.ToScreen = parentScreen.Mul(d.Local)

	switch {
	case d.HasRenderSurface && n.ParentID == DeviceNodeID:
		d.ToTarget = d.ToScreen
		d.ContentTargetID = id
		d.SurfaceTargetID = id
		d.SurfaceDrawTransform = geom.Identity()
		d.SublayerScale = geom.Pt(1, 1)
	case d.HasRenderSurface:
		toParentTarget := parentTarget.Mul(d.Local)
		sx, sy := toParentTarget.Scale2dComponents(d.ScaleFallback)
		if sx == 0 {
			sx = 1
		}
		if sy == 0 {
			sy = 1
		}
		d.SublayerScale = geom.Pt(sx, sy)
		d.SurfaceDrawTransform = toParentTarget.Scale(1/sx, 1/sy)
		d.ToTarget = geom.Identity().Scale(sx, sy)
		d.ContentTargetID = id
		d.SurfaceTargetID = p.ContentTargetID
	default:
		d.ToTarget = parentTarget.Mul(d.Local)
		d.ContentTargetID = p.ContentTargetID
		d.SurfaceTargetID = p.ContentTargetID
		d.SurfaceDrawTransform = geom.Identity()
		d.SublayerScale = geom.Pt(1, 1)
	}
}

// Update recomputes every node in index order.
func (t *TransformTree) Update() {
	for id := range t.nodes {
		t.UpdateNode(id)
	}
}

// TargetToScreen returns the transform from the content space of target
// node id into screen space.
func (t *TransformTree) TargetToScreen(id int) geom.Transform {
	if t.IsRootSurface(id) || id == DeviceNodeID {
		return geom.Identity()
	}
	d := &t.Node(id).Data
	return d.ToScreen.Scale(1/d.SublayerScale.X, 1/d.SublayerScale.Y)
}

// SurfaceScreenSpaceTransform returns the transform from the surface space
// of node id into screen space.
func (t *TransformTree) SurfaceScreenSpaceTransform(id int) geom.Transform {
	return t.TargetToScreen(id)
}

// MapRectBetweenTargets maps r from the content space of target from into
// the content space of target to, through screen space. The boolean is
// false when the destination cannot be inverted.
func (t *TransformTree) MapRectBetweenTargets(r geom.RectF, from, to int) (geom.RectF, bool) {
	if from == to {
		return r, true
	}
	toScreen := t.TargetToScreen(to)
	inv, ok := toScreen.Inverse()
	if !ok {
		return geom.RectF{}, false
	}
	screen := geom.MapClippedRect(t.TargetToScreen(from), r)
	return geom.ProjectClippedRect(inv, screen), true
}
