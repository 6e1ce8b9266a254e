package compositor

import (
	"image"
	"slices"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/proptree"
)

// LayerID identifies a layer within its tree. IDs start at 1.
type LayerID int

// NoLayer is the zero LayerID. It never names a layer.
const NoLayer LayerID = 0

// BlendMode is the mode a layer's content is composited with.
type BlendMode = proptree.BlendMode

// Blend modes.
const (
	BlendNormal     = proptree.BlendNormal
	BlendMultiply   = proptree.BlendMultiply
	BlendScreen     = proptree.BlendScreen
	BlendOverlay    = proptree.BlendOverlay
	BlendDarken     = proptree.BlendDarken
	BlendLighten    = proptree.BlendLighten
	BlendColorDodge = proptree.BlendColorDodge
	BlendColorBurn  = proptree.BlendColorBurn
	BlendHardLight  = proptree.BlendHardLight
	BlendSoftLight  = proptree.BlendSoftLight
	BlendDifference = proptree.BlendDifference
	BlendExclusion  = proptree.BlendExclusion
	BlendHue        = proptree.BlendHue
	BlendSaturation = proptree.BlendSaturation
	BlendColor      = proptree.BlendColor
	BlendLuminosity = proptree.BlendLuminosity
)

// ParseBlendMode parses a CSS mix-blend-mode keyword. The empty string is
// normal.
func ParseBlendMode(s string) (BlendMode, bool) { return proptree.ParseBlendMode(s) }

// Layer is a node of a [LayerTree]. A layer is owned by its parent; mask
// and replica layers are owned by the layer they are attached to and are
// not part of the child list.
//
// Setters mark the tree for a property tree rebuild. Layers are not safe
// for concurrent use.
type Layer struct {
	id       LayerID
	tree     *LayerTree
	parent   *Layer
	children []*Layer

	maskLayer    *Layer
	replicaLayer *Layer
	// owner is set on mask and replica layers.
	owner *Layer

	bounds          geom.Size
	position        geom.Point
	transform       geom.Transform
	transformOrigin geom.Point3

	opacity                     float64
	blendMode                   BlendMode
	isRootForIsolatedGroup      bool
	masksToBounds               bool
	drawsContent                bool
	contentsOpaque              bool
	hideLayerAndSubtree         bool
	doubleSided                 bool
	useParentBackfaceVisibility bool
	shouldFlattenTransform      bool
	sortingContextID            int
	forceRenderSurface          bool
	filters                     Filters
	backgroundFilters           Filters
	usesIdealContentsScale      bool

	touchHandlerRegion          []image.Rectangle
	haveWheelEventHandlers      bool
	scrollOffset                geom.Point
	isContainerForFixedPosition bool
	fixedPosition               bool

	copyRequests int
	animations   Animations

	drawProps       DrawProperties
	renderSurface   *RenderSurface
	ownsSurface     bool
	lastDrawnPassID int

	// Property tree indices from the last build.
	transformNodeID int
	clipNodeID      int
	effectNodeID    int

	// Relations resolved by the last build. nil means the tree parent.
	clipParent   *Layer
	scrollParent *Layer
}

func newLayer(t *LayerTree, id LayerID) *Layer {
	return &Layer{
		id:                     id,
		tree:                   t,
		transform:              geom.Identity(),
		opacity:                1,
		doubleSided:            true,
		shouldFlattenTransform: true,
		transformNodeID:        proptree.NoNode,
		clipNodeID:             proptree.NoNode,
		effectNodeID:           proptree.NoNode,
	}
}

// ID returns the layer's id.
func (l *Layer) ID() LayerID { return l.id }

// Tree returns the tree that created the layer.
func (l *Layer) Tree() *LayerTree { return l.tree }

// Parent returns the layer's parent, or nil.
func (l *Layer) Parent() *Layer { return l.parent }

// Children returns the layer's children. The slice must not be modified.
func (l *Layer) Children() []*Layer { return l.children }

// MaskLayer returns the mask layer, or nil.
func (l *Layer) MaskLayer() *Layer { return l.maskLayer }

// ReplicaLayer returns the replica layer, or nil.
func (l *Layer) ReplicaLayer() *Layer { return l.replicaLayer }

// Owner returns the layer a mask or replica layer is attached to.
func (l *Layer) Owner() *Layer { return l.owner }

func (l *Layer) markDirty() {
	if l.tree != nil {
		l.tree.props.NeedsRebuild = true
	}
}

// IsAncestorOf reports whether l is a strict ancestor of other.
func (l *Layer) IsAncestorOf(other *Layer) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == l {
			return true
		}
	}
	return false
}

// AddChild appends child to l's children, removing it from its previous
// parent first.
func (l *Layer) AddChild(child *Layer) error {
	return l.InsertChild(child, len(l.children))
}

// InsertChild inserts child at index, clamped to the child count.
func (l *Layer) InsertChild(child *Layer, index int) error {
	switch {
	case child.tree != l.tree:
		return ErrLayerInAnotherTree
	case child.owner != nil:
		return ErrLayerHasOwner
	case child == l || child.IsAncestorOf(l):
		return ErrCycle
	}
	child.RemoveFromParent()
	index = min(max(index, 0), len(l.children))
	l.children = slices.Insert(l.children, index, child)
	child.parent = l
	l.markDirty()
	return nil
}

// RemoveFromParent detaches l from its parent. The layer stays in the
// tree and may be added again.
func (l *Layer) RemoveFromParent() {
	p := l.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, l); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	l.parent = nil
	p.markDirty()
}

// RemoveAllChildren detaches every child of l.
func (l *Layer) RemoveAllChildren() {
	for len(l.children) > 0 {
		l.children[len(l.children)-1].RemoveFromParent()
	}
}

func (l *Layer) attachSatellite(slot **Layer, s *Layer) error {
	if s != nil {
		switch {
		case s.tree != l.tree:
			return ErrLayerInAnotherTree
		case s == l || s.IsAncestorOf(l):
			return ErrCycle
		case s.owner != nil && s.owner != l:
			return ErrLayerHasOwner
		}
		s.RemoveFromParent()
	}
	if old := *slot; old != nil && old != s {
		old.owner = nil
	}
	*slot = s
	if s != nil {
		s.owner = l
	}
	l.markDirty()
	return nil
}

// SetMaskLayer attaches a mask layer. nil removes the mask.
func (l *Layer) SetMaskLayer(m *Layer) error {
	return l.attachSatellite(&l.maskLayer, m)
}

// SetReplicaLayer attaches a replica layer mirroring l's subtree. nil
// removes the replica.
func (l *Layer) SetReplicaLayer(r *Layer) error {
	return l.attachSatellite(&l.replicaLayer, r)
}

// SetClipParent makes l and its subtree clipped by p's ancestor clip chain
// instead of the tree parent's. p must be a strict ancestor when the draw
// properties are calculated, otherwise the relation is ignored. nil clears
// the relation.
func (l *Layer) SetClipParent(p *Layer) error {
	return l.tree.setRelation(l.tree.clipParents, l, p)
}

// ClipParent returns the layer set with SetClipParent, or nil.
func (l *Layer) ClipParent() *Layer {
	return l.tree.relation(l.tree.clipParents, l)
}

// SetScrollParent makes l scroll with p, inheriting p's clip. p must
// precede l's subtree in the tree, otherwise the relation is ignored. nil
// clears the relation.
func (l *Layer) SetScrollParent(p *Layer) error {
	return l.tree.setRelation(l.tree.scrollParents, l, p)
}

// ScrollParent returns the layer set with SetScrollParent, or nil.
func (l *Layer) ScrollParent() *Layer {
	return l.tree.relation(l.tree.scrollParents, l)
}

// SetScrollClipLayer makes l scrollable within the bounds of layer id.
// Unknown ids fall back to the tree parent. NoLayer makes l not
// scrollable.
func (l *Layer) SetScrollClipLayer(id LayerID) {
	if id == NoLayer {
		delete(l.tree.scrollClips, l.id)
	} else {
		l.tree.scrollClips[l.id] = id
	}
	l.markDirty()
}

// ScrollClipLayerID returns the id set with SetScrollClipLayer.
func (l *Layer) ScrollClipLayerID() LayerID {
	return l.tree.scrollClips[l.id]
}

// Scrollable reports whether l has a scroll clip layer.
func (l *Layer) Scrollable() bool {
	_, ok := l.tree.scrollClips[l.id]
	return ok
}

// Bounds returns the layer size in layer space.
func (l *Layer) Bounds() geom.Size { return l.bounds }

// SetBounds sets the layer size.
func (l *Layer) SetBounds(s geom.Size) {
	l.bounds = s
	l.markDirty()
}

// Position returns the offset of the layer origin in its parent's space.
func (l *Layer) Position() geom.Point { return l.position }

// SetPosition sets the offset of the layer origin in its parent's space.
func (l *Layer) SetPosition(p geom.Point) {
	l.position = p
	l.markDirty()
}

// Transform returns the layer transform, applied about the transform
// origin.
func (l *Layer) Transform() geom.Transform { return l.transform }

// SetTransform sets the layer transform.
func (l *Layer) SetTransform(t geom.Transform) {
	l.transform = t
	l.markDirty()
}

// TransformIsInvertible reports whether the layer transform can be
// inverted.
func (l *Layer) TransformIsInvertible() bool { return l.transform.IsInvertible() }

// TransformOrigin returns the point the transform is applied about.
func (l *Layer) TransformOrigin() geom.Point3 { return l.transformOrigin }

// SetTransformOrigin sets the point the transform is applied about.
func (l *Layer) SetTransformOrigin(p geom.Point3) {
	l.transformOrigin = p
	l.markDirty()
}

// Opacity returns the layer opacity in [0, 1].
func (l *Layer) Opacity() float64 { return l.opacity }

// SetOpacity sets the layer opacity, clamped to [0, 1].
func (l *Layer) SetOpacity(o float64) {
	l.opacity = min(max(o, 0), 1)
	l.markDirty()
}

// BlendMode returns the layer blend mode.
func (l *Layer) BlendMode() BlendMode { return l.blendMode }

// SetBlendMode sets the layer blend mode.
func (l *Layer) SetBlendMode(m BlendMode) {
	l.blendMode = m
	l.markDirty()
}

// IsRootForIsolatedGroup reports whether descendants blend only within the
// layer's subtree.
func (l *Layer) IsRootForIsolatedGroup() bool { return l.isRootForIsolatedGroup }

// SetIsRootForIsolatedGroup makes the layer isolate descendant blending.
func (l *Layer) SetIsRootForIsolatedGroup(v bool) {
	l.isRootForIsolatedGroup = v
	l.markDirty()
}

// MasksToBounds reports whether descendants are clipped to the layer bounds.
func (l *Layer) MasksToBounds() bool { return l.masksToBounds }

// SetMasksToBounds sets whether descendants are clipped to the layer bounds.
func (l *Layer) SetMasksToBounds(v bool) {
	l.masksToBounds = v
	l.markDirty()
}

// DrawsContent reports whether the layer has content of its own.
func (l *Layer) DrawsContent() bool { return l.drawsContent }

// SetDrawsContent sets whether the layer has content of its own.
func (l *Layer) SetDrawsContent(v bool) {
	l.drawsContent = v
	l.markDirty()
}

// ContentsOpaque reports whether the content covers every pixel.
func (l *Layer) ContentsOpaque() bool { return l.contentsOpaque }

// SetContentsOpaque sets whether the content covers every pixel.
func (l *Layer) SetContentsOpaque(v bool) {
	l.contentsOpaque = v
	l.markDirty()
}

// HideLayerAndSubtree reports whether the layer and its subtree are hidden.
func (l *Layer) HideLayerAndSubtree() bool { return l.hideLayerAndSubtree }

// SetHideLayerAndSubtree hides the layer and its subtree. A copy request
// below the layer still draws.
func (l *Layer) SetHideLayerAndSubtree(v bool) {
	l.hideLayerAndSubtree = v
	l.markDirty()
}

// DoubleSided reports whether the back face is drawn. Default true.
func (l *Layer) DoubleSided() bool { return l.doubleSided }

// SetDoubleSided sets whether the back face is drawn.
func (l *Layer) SetDoubleSided(v bool) {
	l.doubleSided = v
	l.markDirty()
}

// UseParentBackfaceVisibility reports whether back-face culling follows
// the parent.
func (l *Layer) UseParentBackfaceVisibility() bool { return l.useParentBackfaceVisibility }

// SetUseParentBackfaceVisibility makes back-face culling follow the parent.
func (l *Layer) SetUseParentBackfaceVisibility(v bool) {
	l.useParentBackfaceVisibility = v
	l.markDirty()
}

// ShouldFlattenTransform reports whether children see the layer's
// transform flattened to 2-D. Default true.
func (l *Layer) ShouldFlattenTransform() bool { return l.shouldFlattenTransform }

// SetShouldFlattenTransform sets whether children see the layer's
// transform flattened to 2-D.
func (l *Layer) SetShouldFlattenTransform(v bool) {
	l.shouldFlattenTransform = v
	l.markDirty()
}

// SortingContextID returns the 3-D sorting context, or 0 for none.
func (l *Layer) SortingContextID() int { return l.sortingContextID }

// SetSortingContextID puts the layer into a 3-D sorting context. Layers of
// one context drawing into the same surface are ordered by depth.
func (l *Layer) SetSortingContextID(id int) {
	l.sortingContextID = id
	l.markDirty()
}

// Is3dSorted reports whether the layer is in a 3-D sorting context.
func (l *Layer) Is3dSorted() bool { return l.sortingContextID != 0 }

// ForceRenderSurface reports whether the layer always gets a surface.
func (l *Layer) ForceRenderSurface() bool { return l.forceRenderSurface }

// SetForceRenderSurface forces the layer to own a render surface.
func (l *Layer) SetForceRenderSurface(v bool) {
	l.forceRenderSurface = v
	l.markDirty()
}

// Filters returns the filters applied to the layer's subtree.
func (l *Layer) Filters() Filters { return l.filters }

// SetFilters sets the filters applied to the layer's subtree.
func (l *Layer) SetFilters(f Filters) {
	l.filters = slices.Clone(f)
	l.markDirty()
}

// BackgroundFilters returns the filters applied to what lies behind the
// layer.
func (l *Layer) BackgroundFilters() Filters { return l.backgroundFilters }

// SetBackgroundFilters sets the filters applied to what lies behind the
// layer.
func (l *Layer) SetBackgroundFilters(f Filters) {
	l.backgroundFilters = slices.Clone(f)
	l.markDirty()
}

// UsesIdealContentsScale reports whether the layer rasterizes at its ideal
// contents scale instead of 1.
func (l *Layer) UsesIdealContentsScale() bool { return l.usesIdealContentsScale }

// SetUsesIdealContentsScale makes the layer rasterize at its ideal contents
// scale.
func (l *Layer) SetUsesIdealContentsScale(v bool) {
	l.usesIdealContentsScale = v
	l.markDirty()
}

// TouchHandlerRegion returns the rectangles, in layer space, that handle
// touch events.
func (l *Layer) TouchHandlerRegion() []image.Rectangle { return l.touchHandlerRegion }

// SetTouchHandlerRegion sets the rectangles, in layer space, that handle
// touch events.
func (l *Layer) SetTouchHandlerRegion(r []image.Rectangle) {
	l.touchHandlerRegion = slices.Clone(r)
	l.markDirty()
}

// HaveWheelEventHandlers reports whether the layer handles wheel events.
func (l *Layer) HaveWheelEventHandlers() bool { return l.haveWheelEventHandlers }

// SetHaveWheelEventHandlers sets whether the layer handles wheel events.
func (l *Layer) SetHaveWheelEventHandlers(v bool) {
	l.haveWheelEventHandlers = v
	l.markDirty()
}

func (l *Layer) hasInputHandler() bool {
	if l.haveWheelEventHandlers {
		return true
	}
	for _, r := range l.touchHandlerRegion {
		if !r.Empty() {
			return true
		}
	}
	return false
}

// ScrollOffset returns the scroll offset. It only applies to scrollable
// layers.
func (l *Layer) ScrollOffset() geom.Point { return l.scrollOffset }

// SetScrollOffset sets the scroll offset. It is clamped to the scroll
// range when draw properties are calculated.
func (l *Layer) SetScrollOffset(p geom.Point) {
	l.scrollOffset = p
	l.markDirty()
}

// IsContainerForFixedPositionLayers reports whether fixed-position
// descendants are positioned relative to the layer.
func (l *Layer) IsContainerForFixedPositionLayers() bool { return l.isContainerForFixedPosition }

// SetIsContainerForFixedPositionLayers makes fixed-position descendants
// position relative to the layer.
func (l *Layer) SetIsContainerForFixedPositionLayers(v bool) {
	l.isContainerForFixedPosition = v
	l.markDirty()
}

// FixedPosition reports whether the layer ignores scrolling between it and
// its fixed-position container.
func (l *Layer) FixedPosition() bool { return l.fixedPosition }

// SetFixedPosition makes the layer ignore scrolling between it and its
// fixed-position container.
func (l *Layer) SetFixedPosition(v bool) {
	l.fixedPosition = v
	l.markDirty()
}

// HasCopyRequest reports whether a copy of the layer's output is pending.
func (l *Layer) HasCopyRequest() bool { return l.copyRequests > 0 }

// RequestCopy queues a copy of the layer's output. The layer gets a render
// surface and draws even when hidden.
func (l *Layer) RequestCopy() {
	l.copyRequests++
	l.markDirty()
}

// TakeCopyRequests clears pending copy requests and returns how many there
// were.
func (l *Layer) TakeCopyRequests() int {
	n := l.copyRequests
	l.copyRequests = 0
	if n > 0 {
		l.markDirty()
	}
	return n
}

// Animations returns the layer's animations, or nil.
func (l *Layer) Animations() Animations { return l.animations }

// SetAnimations sets the layer's animations. nil means none.
func (l *Layer) SetAnimations(a Animations) {
	l.animations = a
	l.markDirty()
}

func (l *Layer) potentiallyAnimating(p AnimatedProperty) bool {
	return potentiallyAnimating(l.animations, p)
}

func (l *Layer) animatingScale() bool {
	return l.animations != nil && !l.animations.HasOnlyTranslationTransforms()
}

// DrawProperties returns the properties computed by the last
// [CalculateDrawProperties] pass.
func (l *Layer) DrawProperties() *DrawProperties { return &l.drawProps }

// RenderSurface returns the surface the layer owns, or nil.
func (l *Layer) RenderSurface() *RenderSurface {
	if !l.ownsSurface {
		return nil
	}
	return l.renderSurface
}

// RenderTarget returns the layer owning the surface l draws into.
func (l *Layer) RenderTarget() *Layer { return l.drawProps.RenderTarget }

// IsDrawnRenderSurfaceLayerListMember reports whether the last pass put
// the layer into a surface's layer list.
func (l *Layer) IsDrawnRenderSurfaceLayerListMember() bool {
	return l.tree != nil && l.lastDrawnPassID != 0 && l.lastDrawnPassID == l.tree.passID
}

// PropertyTreeIndices returns the transform, clip and effect nodes the
// layer used in the last pass, or proptree.NoNode.
func (l *Layer) PropertyTreeIndices() (transform, clip, effect int) {
	return l.transformNodeID, l.clipNodeID, l.effectNodeID
}

// in3dContext reports whether l shares a sorting context with its parent.
func (l *Layer) in3dContext() bool {
	return l.sortingContextID != 0 && l.parent != nil && l.parent.sortingContextID == l.sortingContextID
}

// isRootOf3dContext reports whether l starts a new sorting context.
func (l *Layer) isRootOf3dContext() bool {
	if l.parent == nil {
		return l.sortingContextID != 0
	}
	return l.sortingContextID != 0 && l.parent.sortingContextID == 0
}

// localTransform returns the transform from l's space into its parent's
// space for a given scroll offset.
func (l *Layer) localTransform(scroll geom.Point) geom.Transform {
	o := l.transformOrigin
	return geom.Identity().
		Translate3d(l.position.X-scroll.X+o.X, l.position.Y-scroll.Y+o.Y, o.Z).
		Mul(l.transform).
		Translate3d(-o.X, -o.Y, -o.Z)
}

// Walk calls fn for l and its descendants in pre-order. Mask and replica
// layers are not visited. Returning false skips the subtree.
func (l *Layer) Walk(fn func(*Layer) bool) {
	if !fn(l) {
		return
	}
	for _, c := range l.children {
		c.Walk(fn)
	}
}
