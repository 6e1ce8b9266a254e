// Package compositor computes per-frame draw properties for a retained tree
// of layers.
//
// # Overview
//
// A [LayerTree] owns layers created with [LayerTree.NewLayer]. Each frame,
// [CalculateDrawProperties] walks the tree once and stamps every layer
// with [DrawProperties]: where it draws in its render target, where it
// lands on screen, how it is clipped and which part of it is visible. The
// same pass decides which layers need an offscreen [RenderSurface] and
// returns the surfaces back to front as a [RenderSurfaceLayerList].
//
// # Quick Start
//
//	tree := compositor.NewLayerTree()
//	root := tree.NewLayer()
//	root.SetBounds(geom.Sz(800, 600))
//	tree.SetRoot(root)
//
//	child := tree.NewLayer()
//	child.SetBounds(geom.Sz(100, 100))
//	child.SetPosition(geom.Pt(10, 10))
//	child.SetDrawsContent(true)
//	_ = root.AddChild(child)
//
//	list := compositor.CalculateDrawProperties(compositor.NewInputs(root, geom.Sz(800, 600),
//		compositor.WithDeviceScaleFactor(2)))
//	for e := range list.BackToFront() {
//		...
//	}
//
// # Architecture
//
// The pass is split into stages:
//   - Indexing: a depth-first walk assigns each layer a pass index and
//     gathers subtree statistics into a side table.
//   - Building: transform, clip and effect nodes are created in the
//     [proptree] package only for layers that introduce new state.
//   - Stamping: each layer reads its nodes to get its draw properties.
//   - Listing: layers are appended to their target surface, empty surfaces
//     are dropped and 3-D sorting contexts are ordered by depth.
//
// Hit testing ([LayerTree.FindLayerAtPoint]) and selection mapping
// ([LayerTree.ViewportSelection]) read the results of the last pass.
//
// # Coordinate System
//
// Screen space is device pixels with the origin at the top-left of the
// viewport. A layer's own space has its origin at its top-left corner; its
// content space is layer space scaled by its contents scale.
//
// # Degenerate input
//
// The pass never fails. Singular transforms, huge scales and dangling
// clip or scroll relations degrade to documented defaults and are
// reported through [Logger] at warn level.
package compositor
