package compositor

import (
	"log/slog"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/proptree"
)

// unresolved marks a clip node index that has not been assigned yet.
const unresolved = -2

// builtLayer is the side table entry of one layer, indexed by the layer's
// position in a pre-order walk. Entries live until the next rebuild.
type builtLayer struct {
	layer  *Layer
	parent int
	// end is one past the last entry of the layer's subtree.
	end int

	drawingDescendants         int
	subtreeHasCopyRequest      bool
	subtreeHasInputHandler     bool
	intrinsicSurfaceDescendant bool
	unclippedDescendants       int

	// Relation targets as entry indices, or -1.
	clipParent   int
	scrollParent int
	scrollClip   *Layer

	skipped     bool
	drawn       bool
	// invisible marks a subtree kept only for input handlers or copy
	// requests. It gets draw properties but stays out of layer lists.
	invisible   bool
	ownsSurface bool
	inPageScale bool

	transformNode int
	// offset is the layer origin in the space of transformNode.
	offset geom.Point
	scroll geom.Point

	// inheritClip is the clip node the layer inherits; clipNode is the one
	// it uses, which is its own when it creates one.
	inheritClip int
	clipNode    int
	effectNode  int
}

// builder turns a layer tree into property trees.
type builder struct {
	tree    *LayerTree
	in      CalcInputs
	props   *proptree.PropertyTrees
	entries []builtLayer
	index   map[*Layer]int
	log     *slog.Logger

	pageScaleLayer *Layer
	hasAnimations  bool
	warnings       int
}

func newBuilder(t *LayerTree, in CalcInputs) *builder {
	return &builder{
		tree:    t,
		in:      in,
		props:   &t.props,
		entries: t.built[:0],
		index:   make(map[*Layer]int, len(t.built)),
		log:     Logger(),
	}
}

// BuildPropertyTrees builds the transform, clip and effect trees of root's
// tree without computing draw properties. The returned trees are owned by
// the tree and are replaced by the next build.
func BuildPropertyTrees(root *Layer, deviceScaleFactor, pageScaleFactor float64, pageScaleLayer *Layer,
	viewport geom.Size, deviceTransform geom.Transform) *proptree.PropertyTrees {
	if root == nil || root.tree == nil {
		return nil
	}
	in := NewInputs(root, viewport,
		WithDeviceScaleFactor(deviceScaleFactor),
		WithPageScale(pageScaleFactor, pageScaleLayer),
		WithDeviceTransform(deviceTransform))
	t := root.tree
	t.build(in)
	return &t.props
}

// build rebuilds the property trees and the side table for in.
func (t *LayerTree) build(in CalcInputs) {
	b := newBuilder(t, in)
	b.collect(in.Root, -1)
	b.accumulate()
	b.resolveRelations()
	b.resolvePageScaleLayer()
	b.buildTransformsAndEffects()
	b.buildClips()
	b.props.Clip.Update(&b.props.Transform)
	b.props.Effect.Update()
	b.props.NeedsRebuild = false

	for i := range b.entries {
		e := &b.entries[i]
		l := e.layer
		l.ownsSurface = e.ownsSurface
		if e.skipped {
			l.transformNodeID, l.clipNodeID, l.effectNodeID = proptree.NoNode, proptree.NoNode, proptree.NoNode
			l.clipParent, l.scrollParent = nil, nil
			continue
		}
		l.transformNodeID, l.clipNodeID, l.effectNodeID = e.transformNode, e.clipNode, e.effectNode
		l.clipParent, l.scrollParent = b.layerAt(e.clipParent), b.layerAt(e.scrollParent)
	}

	t.built = b.entries
	t.builtInputs = in
	t.hasBuilt = true
	t.hasAnimations = b.hasAnimations
	if b.warnings > 0 {
		b.log.Debug("compositor: property trees built with degraded input", "warnings", b.warnings)
	}
}

func (b *builder) layerAt(i int) *Layer {
	if i < 0 {
		return nil
	}
	return b.entries[i].layer
}

func (b *builder) warn(msg string, args ...any) {
	b.warnings++
	b.log.Warn(msg, args...)
}

// collect appends l and its subtree in pre-order.
func (b *builder) collect(l *Layer, parent int) {
	i := len(b.entries)
	b.entries = append(b.entries, builtLayer{
		layer:         l,
		parent:        parent,
		clipParent:    -1,
		scrollParent:  -1,
		transformNode: proptree.NoNode,
		inheritClip:   unresolved,
		clipNode:      unresolved,
		effectNode:    proptree.NoNode,
	})
	b.index[l] = i
	if l.animations != nil {
		b.hasAnimations = true
	}
	for _, c := range l.children {
		b.collect(c, i)
	}
	b.entries[i].end = len(b.entries)
}

// needsSurfaceIntrinsically reports properties that force a surface
// regardless of the subtree.
func needsSurfaceIntrinsically(l *Layer) bool {
	return l.forceRenderSurface ||
		l.maskLayer != nil ||
		l.replicaLayer != nil ||
		len(l.filters) > 0 ||
		len(l.backgroundFilters) > 0 ||
		l.potentiallyAnimating(PropertyFilter) ||
		l.copyRequests > 0 ||
		l.isRootForIsolatedGroup ||
		l.blendMode != BlendNormal
}

// accumulate gathers subtree statistics bottom-up.
func (b *builder) accumulate() {
	for i := len(b.entries) - 1; i >= 0; i-- {
		e := &b.entries[i]
		l := e.layer
		e.subtreeHasCopyRequest = e.subtreeHasCopyRequest || l.copyRequests > 0
		e.subtreeHasInputHandler = e.subtreeHasInputHandler || l.hasInputHandler()
		if e.parent < 0 {
			continue
		}
		p := &b.entries[e.parent]
		p.drawingDescendants += e.drawingDescendants
		if l.drawsContent {
			p.drawingDescendants++
		}
		p.subtreeHasCopyRequest = p.subtreeHasCopyRequest || e.subtreeHasCopyRequest
		p.subtreeHasInputHandler = p.subtreeHasInputHandler || e.subtreeHasInputHandler
		p.intrinsicSurfaceDescendant = p.intrinsicSurfaceDescendant ||
			e.intrinsicSurfaceDescendant || needsSurfaceIntrinsically(l)
	}
}

func (b *builder) inSubtree(i, root int) bool {
	return i >= root && i < b.entries[root].end
}

// resolveRelations validates clip parents, scroll parents and scroll clip
// layers, and counts the descendants that escape each layer's clip.
func (b *builder) resolveRelations() {
	t := b.tree
	for i := range b.entries {
		e := &b.entries[i]
		l := e.layer

		if id, ok := t.clipParents[l.id]; ok {
			j, found := b.index[t.layers[id]]
			switch {
			case !found:
				b.warn("compositor: clip parent is not in the tree; using tree parent", "layer", l.id, "clip_parent", id)
			case j >= i || !b.inSubtree(i, j):
				b.warn("compositor: clip parent is not an ancestor; using tree parent", "layer", l.id, "clip_parent", id)
			default:
				e.clipParent = j
			}
		}

		if id, ok := t.scrollParents[l.id]; ok {
			j, found := b.index[t.layers[id]]
			switch {
			case !found:
				b.warn("compositor: scroll parent is not in the tree; using tree parent", "layer", l.id, "scroll_parent", id)
			case b.inSubtree(j, i):
				b.warn("compositor: scroll parent is in the layer's subtree; using tree parent", "layer", l.id, "scroll_parent", id)
			default:
				e.scrollParent = j
			}
		}

		if id, ok := t.scrollClips[l.id]; ok {
			c := t.layers[id]
			if _, found := b.index[c]; found && c != l {
				e.scrollClip = c
			} else {
				b.warn("compositor: scroll clip layer is not in the tree; using tree parent", "layer", l.id, "scroll_clip", id)
				e.scrollClip = l.parent
			}
		}

		switch {
		case e.clipParent >= 0:
			for a := e.parent; a != e.clipParent; a = b.entries[a].parent {
				b.entries[a].unclippedDescendants++
			}
		case e.scrollParent >= 0:
			lca := b.commonAncestor(i, e.scrollParent)
			for a := e.parent; a >= 0 && a != lca; a = b.entries[a].parent {
				b.entries[a].unclippedDescendants++
			}
		}
	}
}

// commonAncestor returns the deepest entry whose subtree holds both i and
// j.
func (b *builder) commonAncestor(i, j int) int {
	a := i
	for a >= 0 && !b.inSubtree(j, a) {
		a = b.entries[a].parent
	}
	return a
}

func (b *builder) resolvePageScaleLayer() {
	l := b.in.PageScaleLayer
	if l == nil {
		return
	}
	if _, ok := b.index[l]; !ok {
		b.warn("compositor: page scale layer is not in the tree; ignoring page scale", "layer", l.id)
		return
	}
	b.pageScaleLayer = l
}

// isDrawn reports whether entry i is drawn given its parent.
func (b *builder) isDrawn(i int) bool {
	e := &b.entries[i]
	l := e.layer
	if l.copyRequests > 0 {
		return true
	}
	parentDrawn := e.parent < 0 || b.entries[e.parent].drawn
	return parentDrawn && !l.hideLayerAndSubtree
}

// subtreeShouldBeSkipped decides whether entry i and its subtree get no
// property tree nodes and no draw properties.
func (b *builder) subtreeShouldBeSkipped(i int) bool {
	e := &b.entries[i]
	l := e.layer
	if !l.TransformIsInvertible() && !l.potentiallyAnimating(PropertyTransform) {
		return true
	}
	if e.subtreeHasCopyRequest || e.subtreeHasInputHandler {
		return false
	}
	return b.hiddenOrTransparent(i)
}

// hiddenOrTransparent reports whether entry i draws nothing because it is
// hidden or fully transparent without an opacity animation.
func (b *builder) hiddenOrTransparent(i int) bool {
	e := &b.entries[i]
	l := e.layer
	if !e.drawn {
		return true
	}
	if l.potentiallyAnimating(PropertyOpacity) ||
		(l.animations != nil && l.animations.IsAnimationStartingThisFrame()) {
		return false
	}
	return l.opacity == 0
}

// isInvisible decides whether entry i belongs to a subtree that is walked
// but not drawn. A copy request makes its layer's subtree visible again.
func (b *builder) isInvisible(i int) bool {
	e := &b.entries[i]
	if e.layer.copyRequests > 0 {
		return false
	}
	if e.parent >= 0 && b.entries[e.parent].invisible {
		return true
	}
	return e.parent >= 0 && b.hiddenOrTransparent(i)
}

// needsSurface decides whether entry i owns a render surface.
// toParentTarget maps the layer into its parent's target space.
func (b *builder) needsSurface(i int, toParentTarget geom.Transform) bool {
	e := &b.entries[i]
	l := e.layer
	if e.parent < 0 {
		return true
	}
	if !b.in.CanRenderToSeparateSurface {
		return false
	}
	if needsSurfaceIntrinsically(l) {
		return true
	}
	drawsBelow := e.drawingDescendants > 0
	if l.in3dContext() && l.shouldFlattenTransform && drawsBelow {
		return true
	}
	if l.masksToBounds && drawsBelow && !toParentTarget.Preserves2dAxisAlignment() {
		return true
	}
	translucent := l.opacity < 1 || l.potentiallyAnimating(PropertyOpacity)
	if translucent && l.shouldFlattenTransform &&
		(l.drawsContent || drawsBelow || e.intrinsicSurfaceDescendant) {
		return true
	}
	return l.masksToBounds && e.unclippedDescendants > 0
}

// needsTransformNode reports whether entry i introduces a transform node.
func (b *builder) needsTransformNode(i int) bool {
	e := &b.entries[i]
	l := e.layer
	parentSorting := 0
	if l.parent != nil {
		parentSorting = l.parent.sortingContextID
	}
	return e.parent < 0 ||
		e.ownsSurface ||
		!l.transform.IsIdentity() ||
		e.scrollClip != nil ||
		(l.fixedPosition && l.parent != nil) ||
		l.isContainerForFixedPosition ||
		l == b.pageScaleLayer ||
		l.potentiallyAnimating(PropertyTransform) ||
		!l.shouldFlattenTransform ||
		l.sortingContextID != parentSorting
}

// needsEffectNode reports whether entry i introduces an effect node.
func (b *builder) needsEffectNode(i int) bool {
	e := &b.entries[i]
	l := e.layer
	return e.parent < 0 ||
		e.ownsSurface ||
		l.opacity != 1 ||
		l.potentiallyAnimating(PropertyOpacity) ||
		l.hideLayerAndSubtree ||
		l.copyRequests > 0 ||
		l.blendMode != BlendNormal
}

// clampedScroll returns the layer's scroll offset clamped to the range its
// scroll clip layer allows.
func (b *builder) clampedScroll(i int) geom.Point {
	e := &b.entries[i]
	if e.scrollClip == nil {
		return geom.Point{}
	}
	l := e.layer
	maxX := float64(max(l.bounds.Width-e.scrollClip.bounds.Width, 0))
	maxY := float64(max(l.bounds.Height-e.scrollClip.bounds.Height, 0))
	return geom.Pt(
		min(max(l.scrollOffset.X, 0), maxX),
		min(max(l.scrollOffset.Y, 0), maxY),
	)
}

// layerLocal returns the transform from l's space into its parent's space.
func (b *builder) layerLocal(l *Layer, scroll geom.Point) geom.Transform {
	local := l.localTransform(scroll)
	if l == b.pageScaleLayer {
		local = local.Scale(b.in.PageScaleFactor, b.in.PageScaleFactor)
	}
	return local
}

// fixedContainer returns the entry fixed-position layers under i are
// positioned against.
func (b *builder) fixedContainer(i int) int {
	for a := b.entries[i].parent; a >= 0; a = b.entries[a].parent {
		if b.entries[a].layer.isContainerForFixedPosition || b.entries[a].parent < 0 {
			return a
		}
	}
	return 0
}

// parentSpace returns the transform node entry i hangs off and the
// transform from the layer into that node's space.
func (b *builder) parentSpace(i int) (parentNode int, toParent geom.Transform) {
	e := &b.entries[i]
	l := e.layer
	if e.parent < 0 {
		return proptree.DeviceNodeID, b.layerLocal(l, e.scroll)
	}
	if l.fixedPosition {
		c := b.fixedContainer(i)
		toParent = b.layerLocal(l, geom.Point{})
		for a := e.parent; a != c; a = b.entries[a].parent {
			toParent = b.layerLocal(b.entries[a].layer, geom.Point{}).Mul(toParent)
		}
		return b.entries[c].transformNode, toParent
	}
	p := &b.entries[e.parent]
	return p.transformNode, geom.Identity().Translate(p.offset.X, p.offset.Y).Mul(b.layerLocal(l, e.scroll))
}

// buildTransformsAndEffects walks the entries in pre-order, skipping
// subtrees, deciding surfaces and inserting transform and effect nodes.
// Transform nodes are updated as they are inserted so that surface
// decisions can see the transform into the parent target.
func (b *builder) buildTransformsAndEffects() {
	p := b.props
	p.Reset(b.in.DeviceTransform, b.in.DeviceScaleFactor)
	tt := &p.Transform

	for i := 0; i < len(b.entries); {
		e := &b.entries[i]
		l := e.layer
		e.drawn = b.isDrawn(i)
		if e.parent >= 0 && b.subtreeShouldBeSkipped(i) {
			for j := i; j < e.end; j++ {
				b.entries[j].skipped = true
				b.entries[j].ownsSurface = false
			}
			i = e.end
			continue
		}
		e.invisible = b.isInvisible(i)

		e.inPageScale = l == b.pageScaleLayer || (e.parent >= 0 && b.entries[e.parent].inPageScale)
		e.scroll = b.clampedScroll(i)

		parentNode, toParent := b.parentSpace(i)
		flatten := l.parent == nil || l.parent.shouldFlattenTransform
		parentTarget := tt.Node(parentNode).Data.ToTarget
		if flatten {
			parentTarget = parentTarget.Flatten()
		}
		e.ownsSurface = b.needsSurface(i, parentTarget.Mul(toParent))

		if b.needsTransformNode(i) {
			scale := b.in.DeviceScaleFactor
			if e.inPageScale {
				scale *= b.in.PageScaleFactor
			}
			id := tt.Insert(parentNode, i, proptree.TransformNode{
				Local:                      toParent,
				FlattensInheritedTransform: flatten,
				HasRenderSurface:           e.ownsSurface,
				SortingContextID:           l.sortingContextID,
				IsAnimated:                 l.potentiallyAnimating(PropertyTransform),
				ScaleFallback:              scale,
			})
			tt.UpdateNode(id)
			e.transformNode = id
			e.offset = geom.Point{}
		} else {
			parent := &b.entries[e.parent]
			e.transformNode = parent.transformNode
			e.offset = parent.offset.Add(l.position)
		}

		if b.needsEffectNode(i) {
			parentEffect := proptree.NoNode
			if e.parent >= 0 {
				parentEffect = b.entries[e.parent].effectNode
			}
			e.effectNode = p.Effect.Insert(parentEffect, i, proptree.EffectNode{
				Opacity:                      l.opacity,
				BlendMode:                    l.blendMode,
				HasRenderSurface:             e.ownsSurface,
				HasCopyRequest:               l.copyRequests > 0,
				HasUnclippedDescendants:      e.unclippedDescendants > 0,
				HasPotentialOpacityAnimation: l.potentiallyAnimating(PropertyOpacity),
				IsHidden:                     l.hideLayerAndSubtree,
			})
		} else {
			e.effectNode = b.entries[e.parent].effectNode
		}
		i++
	}
}

// clipSource returns the entry whose clip entry i inherits. ok is false
// while that entry's clip has not been resolved.
func (b *builder) clipSource(i int, fallback bool) (src int, ok bool) {
	e := &b.entries[i]
	for _, c := range [...]int{e.clipParent, e.scrollParent} {
		if c < 0 {
			continue
		}
		if b.entries[c].skipped {
			b.warn("compositor: clip or scroll parent is skipped; using tree parent", "layer", e.layer.id)
			e.clipParent, e.scrollParent = -1, -1
			break
		}
		if b.entries[c].clipNode != unresolved {
			return c, true
		}
		if !fallback {
			return c, false
		}
		b.warn("compositor: clip or scroll parent never resolved; using tree parent", "layer", e.layer.id)
		e.clipParent, e.scrollParent = -1, -1
		break
	}
	return e.parent, true
}

// resolveClip inserts the clip node of entry i if its source is known.
func (b *builder) resolveClip(i int, fallback bool) bool {
	e := &b.entries[i]
	l := e.layer
	inherit := proptree.ViewportNodeID
	if e.parent >= 0 {
		src, ok := b.clipSource(i, fallback)
		if !ok || b.entries[src].clipNode == unresolved {
			return false
		}
		inherit = b.entries[src].clipNode
	}
	e.inheritClip = inherit
	e.clipNode = inherit
	if l.masksToBounds || e.ownsSurface {
		e.clipNode = b.props.Clip.Insert(inherit, i, proptree.ClipNode{
			Clip:             geom.RectF{X: e.offset.X, Y: e.offset.Y, Width: float64(l.bounds.Width), Height: float64(l.bounds.Height)},
			TransformID:      e.transformNode,
			AppliesLocalClip: l.masksToBounds,
			ResetsClip:       e.ownsSurface && e.parent >= 0 && e.unclippedDescendants == 0,
		})
	}
	return true
}

// buildClips inserts clip nodes. Layers whose scroll parent comes later in
// tree order wait until that parent is resolved; whatever cannot be
// resolved falls back to the tree parent.
func (b *builder) buildClips() {
	vw, vh := b.in.DeviceViewportSize.Width, b.in.DeviceViewportSize.Height
	b.props.Clip.InsertViewport(geom.RectF{Width: float64(vw), Height: float64(vh)}, b.entries[0].transformNode)

	var pending []int
	for i := range b.entries {
		if !b.entries[i].skipped {
			pending = append(pending, i)
		}
	}
	for len(pending) > 0 {
		var next []int
		for _, i := range pending {
			if !b.resolveClip(i, false) {
				next = append(next, i)
			}
		}
		if len(next) == len(pending) {
			for _, i := range next {
				b.resolveClip(i, true)
			}
			return
		}
		pending = next
	}
}
