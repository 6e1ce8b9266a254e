package compositor

import (
	"image"
	"math"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/proptree"
)

// passState is per-pass scratch for one side table entry. It is cleared at
// the start of every pass.
type passState struct {
	// toTarget and toScreen are in layer space, before contents scale.
	toTarget geom.Transform
	toScreen geom.Transform

	childTargetAnimating bool

	animatingScale bool
	maxAnimScale   float64
	startAnimScale float64

	// surfaceClip is the surface's clip mapped into surface space. Only
	// set on surface owners.
	surfaceClip      image.Rectangle
	surfaceClipValid bool
}

// calculator stamps draw properties for one pass.
type calculator struct {
	tree    *LayerTree
	in      CalcInputs
	props   *proptree.PropertyTrees
	entries []builtLayer
	state   []passState

	// surfaces in pre-order.
	surfaces []*RenderSurface
	skipped  int
}

// CalculateDrawProperties computes draw properties for every layer under
// in.Root and returns the render surfaces in drawing order.
//
// The property trees are rebuilt when the tree was mutated, the inputs
// changed or any layer has animations; otherwise the previous trees are
// reused. Calling it twice without mutations yields identical results.
func CalculateDrawProperties(in CalcInputs) RenderSurfaceLayerList {
	if in.Root == nil || in.Root.tree == nil {
		return RenderSurfaceLayerList{}
	}
	t := in.Root.tree
	t.passID++

	rebuild := t.props.NeedsRebuild || !t.hasBuilt || t.hasAnimations || t.builtInputs != in
	if rebuild {
		t.build(in)
	}

	c := &calculator{
		tree:    t,
		in:      in,
		props:   &t.props,
		entries: t.built,
	}
	c.run()

	list := c.finishSurfaces()
	t.lastList = list

	tn, cn, en := t.props.Sizes()
	Logger().Debug("compositor: draw properties calculated",
		"pass", t.passID,
		"layers", len(c.entries),
		"skipped", c.skipped,
		"surfaces", list.Len(),
		"transform_nodes", tn,
		"clip_nodes", cn,
		"effect_nodes", en,
		"rebuilt", rebuild)
	return list
}

func (c *calculator) run() {
	for l := range c.tree.Layers() {
		l.drawProps.reset()
		l.ownsSurface = false
	}
	c.state = make([]passState, len(c.entries))

	for i := range c.entries {
		e := &c.entries[i]
		l := e.layer
		if e.skipped {
			c.skipped++
			continue
		}
		l.ownsSurface = e.ownsSurface
		c.stampTransforms(i)
		if e.ownsSurface {
			c.stampSurface(i)
		}
		c.stampClipAndRects(i)
		c.stampEffects(i)
		c.appendToLists(i)
		c.stampSatellites(l)
	}
}

func flattenIf(t geom.Transform, flatten bool) geom.Transform {
	if flatten {
		return t.Flatten()
	}
	return t
}

// targetOf returns the entry index owning the content target of entry i.
func (c *calculator) targetOf(i int) int {
	tt := &c.props.Transform
	target := tt.Node(c.entries[i].transformNode).Data.ContentTargetID
	return tt.Node(target).OwnerID
}

// contentsScale returns the scale l rasterizes at and its ideal scale.
func (c *calculator) contentsScale(i int, toTarget geom.Transform) (scale, ideal float64) {
	e := &c.entries[i]
	l := e.layer
	fallback := c.in.DeviceScaleFactor
	if e.inPageScale {
		fallback *= c.in.PageScaleFactor
	}
	ideal = fallback
	if c.in.CanAdjustRasterScales {
		ideal = toTarget.MaxScale2d(fallback)
	}
	if !l.usesIdealContentsScale {
		return 1, ideal
	}
	w, h := float64(l.bounds.Width)*ideal, float64(l.bounds.Height)*ideal
	if !(ideal > 0) || math.IsInf(ideal, 0) || w > math.MaxInt32 || h > math.MaxInt32 {
		return 1, ideal
	}
	return ideal, ideal
}

func (c *calculator) stampTransforms(i int) {
	e := &c.entries[i]
	l := e.layer
	st := &c.state[i]
	dp := &l.drawProps
	tt := &c.props.Transform
	node := tt.Node(e.transformNode)

	if node.OwnerID == i {
		st.toTarget, st.toScreen = node.Data.ToTarget, node.Data.ToScreen
	} else {
		flatten := l.parent.shouldFlattenTransform
		st.toTarget = flattenIf(node.Data.ToTarget, flatten).Translate(e.offset.X, e.offset.Y)
		st.toScreen = flattenIf(node.Data.ToScreen, flatten).Translate(e.offset.X, e.offset.Y)
	}

	cs, ideal := c.contentsScale(i, st.toTarget)
	dp.Computed = true
	dp.ContentsScale = cs
	dp.IdealContentsScale = ideal
	dp.ContentBounds = geom.Sz(
		int(math.Ceil(float64(l.bounds.Width)*cs)),
		int(math.Ceil(float64(l.bounds.Height)*cs)),
	)
	dp.TargetSpaceTransform = st.toTarget
	dp.DrawTransform = st.toTarget.Scale(1/cs, 1/cs)
	dp.ScreenSpaceTransform = st.toScreen.Scale(1/cs, 1/cs)
	dp.RenderTarget = c.entries[c.targetOf(i)].layer
	dp.NumUnclippedDescendants = e.unclippedDescendants

	ownAnim := l.potentiallyAnimating(PropertyTransform)
	parentAnim := e.parent >= 0 && c.state[e.parent].childTargetAnimating
	if e.ownsSurface {
		st.childTargetAnimating = false
	} else {
		dp.TargetSpaceTransformIsAnimating = ownAnim || parentAnim
		st.childTargetAnimating = dp.TargetSpaceTransformIsAnimating
	}
	dp.ScreenSpaceTransformIsAnimating = node.Data.ToScreenIsAnimated

	c.stampAnimationScale(i)
}

// stampAnimationScale computes the contents scales reachable by running
// transform animations. Scale animations on two different layers of one
// chain are not combined; the result is then 0, meaning unknown.
func (c *calculator) stampAnimationScale(i int) {
	e := &c.entries[i]
	l := e.layer
	st := &c.state[i]
	dp := &l.drawProps

	var parentTransform geom.Transform
	ancestorAnimating := false
	ancestorMax, ancestorStart := 0.0, 0.0
	if e.parent >= 0 {
		ps := &c.state[e.parent]
		parentTransform = flattenIf(ps.toTarget, l.parent.shouldFlattenTransform)
		ancestorAnimating = ps.animatingScale
		ancestorMax, ancestorStart = ps.maxAnimScale, ps.startAnimScale
	} else {
		parentTransform = c.props.Transform.Node(proptree.DeviceNodeID).Data.ToTarget
	}
	combined := st.toTarget
	if e.ownsSurface && e.parent >= 0 {
		sd := c.props.Transform.Node(e.transformNode).Data
		combined = sd.SurfaceDrawTransform.Scale(sd.SublayerScale.X, sd.SublayerScale.Y)
	}

	layerAnimating := l.animatingScale()
	set := func(animating bool, maxScale, startScale float64) {
		st.animatingScale = animating
		st.maxAnimScale, st.startAnimScale = maxScale, startScale
		dp.MaximumAnimationContentsScale, dp.StartingAnimationContentsScale = maxScale, startScale
	}

	switch {
	case !layerAnimating && !ancestorAnimating:
		set(false, 0, 0)
	case layerAnimating && ancestorAnimating:
		set(true, 0, 0)
	case ancestorAnimating && ancestorMax == 0:
		set(true, 0, 0)
	case !combined.IsScaleOrTranslation():
		set(true, 0, 0)
	case ancestorAnimating:
		s := l.transform.MaxScale2d(0)
		set(true, ancestorMax*s, ancestorStart*s)
	default:
		maxScale, ok := l.animations.MaximumTargetScale()
		if !ok {
			set(true, 0, 0)
			return
		}
		startScale, ok := l.animations.AnimationStartScale()
		if !ok {
			startScale = 0
		}
		s := parentTransform.MaxScale2d(0)
		set(true, maxScale*s, startScale*s)
	}
}

// surfaceBackFaceVisible reports whether the surface of l faces away.
// Surfaces outside any 3-D context leave culling to their layers.
func surfaceBackFaceVisible(l *Layer, toParentTarget geom.Transform) bool {
	if l.in3dContext() {
		return toParentTarget.IsBackFaceVisible()
	}
	if l.isRootOf3dContext() {
		return l.transform.IsBackFaceVisible()
	}
	return false
}

func (c *calculator) stampSurface(i int) {
	e := &c.entries[i]
	l := e.layer
	st := &c.state[i]
	tt := &c.props.Transform
	nd := &tt.Node(e.transformNode).Data

	if l.renderSurface == nil {
		l.renderSurface = newRenderSurface(l)
	}
	s := l.renderSurface
	s.resetForPass()
	s.entry = i
	c.surfaces = append(c.surfaces, s)

	s.SublayerScale = nd.SublayerScale
	s.DrawTransform = nd.SurfaceDrawTransform
	s.ScreenSpaceTransform = tt.SurfaceScreenSpaceTransform(e.transformNode)
	s.ScreenSpaceTransformIsAnimating = nd.ToScreenIsAnimated
	parentAnim := e.parent >= 0 && c.state[e.parent].childTargetAnimating
	s.DrawTransformIsAnimating = l.potentiallyAnimating(PropertyTransform) || parentAnim

	eff := &c.props.Effect.Node(e.effectNode).Data
	s.DrawOpacity = eff.SurfaceDrawOpacity
	s.BlendMode = l.blendMode

	if e.parent < 0 {
		vp := image.Rect(0, 0, c.in.DeviceViewportSize.Width, c.in.DeviceViewportSize.Height)
		s.IsClipped = true
		s.ClipRect = vp
	} else if e.unclippedDescendants == 0 {
		r, ok := c.props.Clip.ClipInTarget(e.inheritClip, nd.SurfaceTargetID, tt)
		s.IsClipped = ok
		if ok {
			s.ClipRect = geom.EnclosingRect(r)
		}
	}

	if s.IsClipped {
		if inv, ok := s.DrawTransform.Inverse(); ok {
			st.surfaceClip = geom.ProjectEnclosingClippedRect(inv, s.ClipRect)
			st.surfaceClipValid = true
		}
	}

	if r := l.replicaLayer; r != nil {
		sx, sy := s.SublayerScale.X, s.SublayerScale.Y
		o := r.transformOrigin
		toReplica := geom.Identity().
			Scale(sx, sy).
			Translate(r.position.X+o.X, r.position.Y+o.Y).
			Mul(r.transform).
			Translate(-o.X, -o.Y).
			Scale(1/sx, 1/sy)
		s.ReplicaDrawTransform = s.DrawTransform.Mul(toReplica)
		s.ReplicaScreenSpaceTransform = s.ScreenSpaceTransform.Mul(toReplica)
	}

	if e.parent >= 0 && !l.doubleSided && !l.potentiallyAnimating(PropertyTransform) {
		toParentTarget := s.DrawTransform.Scale(s.SublayerScale.X, s.SublayerScale.Y)
		s.BackFaceCulled = surfaceBackFaceVisible(l, toParentTarget)
	}
}

func (c *calculator) stampClipAndRects(i int) {
	e := &c.entries[i]
	l := e.layer
	dp := &l.drawProps
	tt := &c.props.Transform

	targetNode := tt.Node(e.transformNode).Data.ContentTargetID
	if r, ok := c.props.Clip.ClipInTarget(e.clipNode, targetNode, tt); ok {
		dp.IsClipped = true
		dp.ClipRect = geom.EnclosingRect(r)
	}

	contentRect := image.Rect(0, 0, dp.ContentBounds.Width, dp.ContentBounds.Height)
	drawable := geom.MapEnclosingClippedRect(dp.DrawTransform, contentRect)
	if dp.IsClipped {
		drawable = geom.IntersectRects(drawable, dp.ClipRect)
	}
	dp.DrawableContentRect = drawable

	if !l.drawsContent || contentRect.Empty() || drawable.Empty() {
		return
	}
	visible := drawable
	if ts := &c.state[c.targetOf(i)]; ts.surfaceClipValid {
		visible = geom.IntersectRects(visible, ts.surfaceClip)
	}
	dp.VisibleContentRect = calculateVisibleRectWithLayerRect(visible, contentRect, drawable, dp.DrawTransform)
}

func (c *calculator) stampEffects(i int) {
	e := &c.entries[i]
	l := e.layer
	dp := &l.drawProps
	eff := &c.props.Effect.Node(e.effectNode).Data

	dp.Opacity = eff.DrawOpacity
	dp.ScreenSpaceOpacity = eff.ScreenSpaceOpacity
	if e.ownsSurface {
		dp.BlendMode = BlendNormal
	} else {
		dp.BlendMode = l.blendMode
	}
	dp.CanUseLCDText = c.canUseLCDText(l)
}

func (c *calculator) canUseLCDText(l *Layer) bool {
	if c.in.LayersAlwaysAllowLCDText {
		return true
	}
	dp := &l.drawProps
	return c.in.CanUseLCDText &&
		l.contentsOpaque &&
		dp.Opacity == 1 &&
		dp.ScreenSpaceOpacity == 1 &&
		!dp.TargetSpaceTransformIsAnimating &&
		!dp.ScreenSpaceTransformIsAnimating &&
		dp.DrawTransform.IsIdentityOrIntegerTranslation() &&
		dp.ScreenSpaceTransform.IsIdentityOrIntegerTranslation()
}

// layerBackFaceVisible reports whether l faces away from the viewer. In a
// shared 3-D context the accumulated transform decides; otherwise only the
// layer's own transform does.
func layerBackFaceVisible(l *Layer) bool {
	if l.in3dContext() {
		return l.drawProps.DrawTransform.IsBackFaceVisible()
	}
	return l.transform.IsBackFaceVisible()
}

// ownerBackFaceVisible is layerBackFaceVisible for a surface owner, whose
// draw transform maps into its own surface. In a 3-D context the surface's
// transform into its target decides instead.
func ownerBackFaceVisible(l *Layer) bool {
	if s := l.renderSurface; s != nil && l.in3dContext() {
		return s.DrawTransform.Scale(s.SublayerScale.X, s.SublayerScale.Y).IsBackFaceVisible()
	}
	return l.transform.IsBackFaceVisible()
}

// layerShouldDraw decides whether entry i appears in its target's layer
// list.
func (c *calculator) layerShouldDraw(i int) bool {
	e := &c.entries[i]
	l := e.layer
	if e.invisible || !c.props.Effect.Node(e.effectNode).Data.IsDrawn {
		return false
	}
	if !l.drawsContent || l.bounds.IsEmpty() {
		return false
	}
	if e.ownsSurface {
		if l.doubleSided || l.drawProps.ScreenSpaceTransformIsAnimating {
			return true
		}
		return !ownerBackFaceVisible(l)
	}
	test := l
	if l.useParentBackfaceVisibility && l.parent != nil {
		test = l.parent
	}
	if !test.doubleSided && !test.drawProps.ScreenSpaceTransformIsAnimating && layerBackFaceVisible(test) {
		return false
	}
	return true
}

func (c *calculator) appendToLists(i int) {
	e := &c.entries[i]
	l := e.layer
	if e.ownsSurface {
		if e.parent >= 0 {
			if t := l.parent.drawProps.RenderTarget; t != nil && t.renderSurface != nil {
				t.renderSurface.layerList = append(t.renderSurface.layerList, l)
			}
		}
		if c.layerShouldDraw(i) {
			l.renderSurface.layerList = append(l.renderSurface.layerList, l)
		}
		return
	}
	if !c.layerShouldDraw(i) {
		return
	}
	if t := l.drawProps.RenderTarget; t != nil && t.renderSurface != nil {
		t.renderSurface.layerList = append(t.renderSurface.layerList, l)
	}
}

// stampSatellites gives mask and replica layers draw properties derived
// from their owner.
func (c *calculator) stampSatellites(l *Layer) {
	s := l.RenderSurface()
	if s == nil {
		return
	}
	if m := l.maskLayer; m != nil {
		stampSatellite(m, l, l.drawProps.TargetSpaceTransform, l.drawProps.LayerSpaceScreenTransform(), 1)
	}
	r := l.replicaLayer
	if r == nil {
		return
	}
	target := l
	if l.parent != nil && l.parent.drawProps.RenderTarget != nil {
		target = l.parent.drawProps.RenderTarget
	}
	stampSatellite(r, target, s.ReplicaDrawTransform, s.ReplicaScreenSpaceTransform, s.DrawOpacity)
	if m := r.maskLayer; m != nil {
		stampSatellite(m, target, s.ReplicaDrawTransform, s.ReplicaScreenSpaceTransform, 1)
	}
}

func stampSatellite(l, target *Layer, draw, screen geom.Transform, opacity float64) {
	dp := &l.drawProps
	dp.reset()
	dp.Computed = true
	dp.RenderTarget = target
	dp.TargetSpaceTransform = draw
	dp.DrawTransform = draw
	dp.ScreenSpaceTransform = screen
	dp.Opacity = opacity
	dp.ScreenSpaceOpacity = opacity
	dp.ContentsScale = 1
	dp.IdealContentsScale = 1
	dp.ContentBounds = l.bounds
	dp.VisibleContentRect = image.Rect(0, 0, l.bounds.Width, l.bounds.Height)
	dp.DrawableContentRect = geom.MapEnclosingClippedRect(draw, dp.VisibleContentRect)
}
