package compositor

import (
	"image"
	"strings"
	"testing"

	"github.com/gogpu/compositor/geom"
)

func assertTransform(t *testing.T, name string, got, want geom.Transform) {
	t.Helper()
	if !got.ApproximatelyEqual(want, 1e-9) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// newRootedTree returns a tree with a content-drawing root of the given
// size.
func newRootedTree(t *testing.T, size geom.Size) (*LayerTree, *Layer) {
	t.Helper()
	tree := NewLayerTree()
	root := newTestLayer(tree, size)
	if err := tree.SetRoot(root); err != nil {
		t.Fatalf("SetRoot() = %v", err)
	}
	return tree, root
}

func rootLayerList(list RenderSurfaceLayerList) []*Layer {
	if list.Root() == nil {
		return nil
	}
	return list.Root().LayerList()
}

func TestIdentityTreeDrawProperties(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	a := newTestLayer(tree, geom.Sz(20, 20))
	a.SetPosition(geom.Pt(10, 10))
	b := newTestLayer(tree, geom.Sz(20, 20))
	b.SetPosition(geom.Pt(5, 5))
	mustAdd(t, root, a)
	mustAdd(t, a, b)

	list := CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	if list.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", list.Len())
	}
	if got := len(rootLayerList(list)); got != 3 {
		t.Errorf("root layer list has %d layers, want 3", got)
	}

	tests := []struct {
		layer    *Layer
		want     geom.Transform
		drawable image.Rectangle
	}{
		{root, geom.Identity(), image.Rect(0, 0, 100, 100)},
		{a, geom.Identity().Translate(10, 10), image.Rect(10, 10, 30, 30)},
		{b, geom.Identity().Translate(15, 15), image.Rect(15, 15, 35, 35)},
	}
	for _, tt := range tests {
		dp := tt.layer.DrawProperties()
		if !dp.Computed {
			t.Errorf("layer %d not computed", tt.layer.ID())
			continue
		}
		assertTransform(t, "DrawTransform", dp.DrawTransform, tt.want)
		assertTransform(t, "ScreenSpaceTransform", dp.ScreenSpaceTransform, tt.want)
		if dp.RenderTarget != root {
			t.Errorf("layer %d RenderTarget = %v, want root", tt.layer.ID(), dp.RenderTarget)
		}
		if dp.DrawableContentRect != tt.drawable {
			t.Errorf("layer %d DrawableContentRect = %v, want %v", tt.layer.ID(), dp.DrawableContentRect, tt.drawable)
		}
		if want := image.Rect(0, 0, 20, 20); tt.layer != root && dp.VisibleContentRect != want {
			t.Errorf("layer %d VisibleContentRect = %v, want %v", tt.layer.ID(), dp.VisibleContentRect, want)
		}
		if dp.Opacity != 1 || dp.ScreenSpaceOpacity != 1 {
			t.Errorf("layer %d opacity = %v/%v, want 1/1", tt.layer.ID(), dp.Opacity, dp.ScreenSpaceOpacity)
		}
	}
}

func TestDrawTransformWithTransformOrigin(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	child := newTestLayer(tree, geom.Sz(10, 12))
	child.SetPosition(geom.Pt(0, 1.2))
	child.SetTransform(geom.Identity().Scale(2, 2))
	child.SetTransformOrigin(geom.Pt3(5, 0, 0))
	mustAdd(t, root, child)

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	want := geom.Identity().
		Translate(0, 1.2).
		Translate(5, 0).
		Scale(2, 2).
		Translate(-5, 0)
	dp := child.DrawProperties()
	assertTransform(t, "DrawTransform", dp.DrawTransform, want)
	assertTransform(t, "ScreenSpaceTransform", dp.ScreenSpaceTransform, want)
	if dp.IdealContentsScale != 2 {
		t.Errorf("IdealContentsScale = %v, want 2", dp.IdealContentsScale)
	}
}

func TestMaskedParentClipsDistantChild(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	parent := newTestLayer(tree, geom.Sz(20, 20))
	parent.SetMasksToBounds(true)
	child := newTestLayer(tree, geom.Sz(10, 10))
	child.SetPosition(geom.Pt(125, 125))
	mustAdd(t, root, parent)
	mustAdd(t, parent, child)

	CalculateDrawProperties(NewInputs(root, geom.Sz(200, 200)))

	dp := child.DrawProperties()
	if !dp.IsClipped {
		t.Error("IsClipped = false, want true")
	}
	if want := image.Rect(0, 0, 20, 20); dp.ClipRect != want {
		t.Errorf("ClipRect = %v, want %v", dp.ClipRect, want)
	}
	if !dp.VisibleContentRect.Empty() {
		t.Errorf("VisibleContentRect = %v, want empty", dp.VisibleContentRect)
	}
	if !dp.DrawableContentRect.Empty() {
		t.Errorf("DrawableContentRect = %v, want empty", dp.DrawableContentRect)
	}
}

func TestDeviceScaleFactor(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	child := newTestLayer(tree, geom.Sz(10, 10))
	child.SetPosition(geom.Pt(2, 2))
	mustAdd(t, root, child)

	CalculateDrawProperties(NewInputs(root, geom.Sz(250, 250), WithDeviceScaleFactor(2.5)))

	want := geom.Identity().Scale(2.5, 2.5).Translate(2, 2)
	dp := child.DrawProperties()
	assertTransform(t, "DrawTransform", dp.DrawTransform, want)
	assertTransform(t, "ScreenSpaceTransform", dp.ScreenSpaceTransform, dp.DrawTransform)
	if dp.IdealContentsScale != 2.5 {
		t.Errorf("IdealContentsScale = %v, want 2.5", dp.IdealContentsScale)
	}
	if root.RenderSurface() == nil {
		t.Fatal("root has no render surface")
	}
	assertTransform(t, "root surface ScreenSpaceTransform", root.RenderSurface().ScreenSpaceTransform, geom.Identity())
}

func TestIdealContentsScale(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	child := newTestLayer(tree, geom.Sz(10, 10))
	child.SetTransform(geom.Identity().Scale(3, 2))
	child.SetUsesIdealContentsScale(true)
	mustAdd(t, root, child)

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100), WithDeviceScaleFactor(2)))

	dp := child.DrawProperties()
	if dp.ContentsScale != 6 {
		t.Errorf("ContentsScale = %v, want 6", dp.ContentsScale)
	}
	if want := geom.Sz(60, 60); dp.ContentBounds != want {
		t.Errorf("ContentBounds = %v, want %v", dp.ContentBounds, want)
	}
	// Layer space maps to the same screen position either way.
	assertTransform(t, "LayerSpaceScreenTransform", dp.LayerSpaceScreenTransform(),
		geom.Identity().Scale(2, 2).Scale(3, 2))
}

// singularSubtree builds root -> {a, s -> {s1, s2}} where s has a singular
// transform.
func singularSubtree(t *testing.T) (root, s *Layer) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	a := newTestLayer(tree, geom.Sz(10, 10))
	s = newTestLayer(tree, geom.Sz(10, 10))
	s.SetTransform(geom.Identity().Scale3d(1, 1, 0))
	s1 := newTestLayer(tree, geom.Sz(10, 10))
	s2 := newTestLayer(tree, geom.Sz(10, 10))
	mustAdd(t, root, a)
	mustAdd(t, root, s)
	mustAdd(t, s, s1)
	mustAdd(t, s, s2)
	return root, s
}

func TestSingularTransformSkipsSubtree(t *testing.T) {
	root, s := singularSubtree(t)

	s.SetTransform(geom.Identity())
	before := len(rootLayerList(CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))))
	s.SetTransform(geom.Identity().Scale3d(1, 1, 0))
	after := len(rootLayerList(CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))))

	if before != 5 {
		t.Errorf("layer list with invertible transform = %d, want 5", before)
	}
	if after != 2 {
		t.Errorf("layer list with singular transform = %d, want 2", after)
	}
	if s.DrawProperties().Computed {
		t.Error("singular layer should not be computed")
	}
	for _, c := range s.Children() {
		if c.DrawProperties().Computed || c.IsDrawnRenderSurfaceLayerListMember() {
			t.Errorf("child %d of singular layer should be skipped", c.ID())
		}
	}
}

func TestSingularTransformKeptWhileAnimating(t *testing.T) {
	root, s := singularSubtree(t)
	s.SetAnimations(&AnimationState{Running: PropertyTransform})

	list := CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))
	if got := len(rootLayerList(list)); got != 5 {
		t.Errorf("layer list = %d, want 5", got)
	}
	if !s.DrawProperties().Computed {
		t.Error("animating singular layer should be computed")
	}
	if !s.DrawProperties().ScreenSpaceTransformIsAnimating {
		t.Error("ScreenSpaceTransformIsAnimating = false, want true")
	}
}

func TestOpacityCreatesSurface(t *testing.T) {
	tests := []struct {
		name          string
		separate      bool
		wantSurfaces  int
		wantChildDraw float64
	}{
		{"separate surfaces", true, 2, 1},
		{"single surface", false, 1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, root := newRootedTree(t, geom.Sz(100, 100))
			p := newTestLayer(tree, geom.Sz(50, 50))
			p.SetOpacity(0.5)
			c := newTestLayer(tree, geom.Sz(10, 10))
			mustAdd(t, root, p)
			mustAdd(t, p, c)

			list := CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100), WithSeparateSurfaces(tt.separate)))

			if list.Len() != tt.wantSurfaces {
				t.Fatalf("Len() = %d, want %d", list.Len(), tt.wantSurfaces)
			}
			if got := c.DrawProperties().Opacity; got != tt.wantChildDraw {
				t.Errorf("child Opacity = %v, want %v", got, tt.wantChildDraw)
			}
			if got := c.DrawProperties().ScreenSpaceOpacity; got != 0.5 {
				t.Errorf("child ScreenSpaceOpacity = %v, want 0.5", got)
			}
			if !tt.separate {
				if p.RenderSurface() != nil {
					t.Error("layer owns a surface with separate surfaces disabled")
				}
				return
			}
			s := p.RenderSurface()
			if s == nil {
				t.Fatal("translucent layer has no surface")
			}
			if s.DrawOpacity != 0.5 {
				t.Errorf("surface DrawOpacity = %v, want 0.5", s.DrawOpacity)
			}
			if c.RenderTarget() != p {
				t.Errorf("child RenderTarget = %v, want the translucent layer", c.RenderTarget())
			}
			if want := image.Rect(0, 0, 50, 50); s.ContentRect != want {
				t.Errorf("surface ContentRect = %v, want %v", s.ContentRect, want)
			}
		})
	}
}

func TestOpacityWithoutContentHasNoSurface(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	p := tree.NewLayer()
	p.SetBounds(geom.Sz(50, 50))
	p.SetOpacity(0.5)
	mustAdd(t, root, p)

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))
	if p.RenderSurface() != nil {
		t.Error("translucent layer with nothing to draw owns a surface")
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	a := newTestLayer(tree, geom.Sz(60, 60))
	a.SetOpacity(0.8)
	a.SetPosition(geom.Pt(5, 5))
	a.SetTransform(geom.Identity().RotateAboutZAxis(30))
	b := newTestLayer(tree, geom.Sz(40, 40))
	b.SetMasksToBounds(true)
	c := newTestLayer(tree, geom.Sz(80, 80))
	c.SetPosition(geom.Pt(10, 10))
	mustAdd(t, root, a)
	mustAdd(t, a, b)
	mustAdd(t, b, c)

	in := NewInputs(root, geom.Sz(100, 100), WithDeviceScaleFactor(2))
	snapshot := func() map[LayerID]DrawProperties {
		m := make(map[LayerID]DrawProperties)
		for l := range tree.Layers() {
			m[l.ID()] = *l.DrawProperties()
		}
		return m
	}

	CalculateDrawProperties(in)
	first := snapshot()
	CalculateDrawProperties(in)
	second := snapshot()
	tree.SetNeedsRebuild()
	CalculateDrawProperties(in)
	third := snapshot()

	for id, want := range first {
		if second[id] != want {
			t.Errorf("layer %d changed on reuse:\n got %s\nwant %s", id, second[id].String(), want.String())
		}
		if third[id] != want {
			t.Errorf("layer %d changed on rebuild:\n got %s\nwant %s", id, third[id].String(), want.String())
		}
	}
}

func TestDrawPropertiesString(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	hidden := newTestLayer(tree, geom.Sz(10, 10))
	hidden.SetOpacity(0)
	mustAdd(t, root, hidden)
	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	props := map[string]DrawProperties{
		"root":   *root.DrawProperties(),
		"hidden": *hidden.DrawProperties(),
	}
	if got := props["hidden"].String(); got != "skipped" {
		t.Errorf("String() = %q, want %q", got, "skipped")
	}
	if got := props["root"].String(); !strings.HasPrefix(got, "target=") {
		t.Errorf("String() = %q, want a target= prefix", got)
	}
}

// complexTree builds a tree mixing surfaces, clips and 3-D transforms.
func complexTree(t *testing.T) *Layer {
	tree, root := newRootedTree(t, geom.Sz(200, 200))
	s1 := newTestLayer(tree, geom.Sz(100, 100))
	s1.SetOpacity(0.5)
	s1.SetPosition(geom.Pt(10, 10))
	clip := newTestLayer(tree, geom.Sz(30, 30))
	clip.SetMasksToBounds(true)
	clip.SetPosition(geom.Pt(20, 20))
	big := newTestLayer(tree, geom.Sz(90, 90))
	big.SetPosition(geom.Pt(-10, -10))
	s2 := newTestLayer(tree, geom.Sz(50, 50))
	s2.SetForceRenderSurface(true)
	s2.SetTransform(geom.Identity().RotateAboutYAxis(30))
	leaf := newTestLayer(tree, geom.Sz(20, 20))
	leaf.SetPosition(geom.Pt(15, 0))
	sibling := newTestLayer(tree, geom.Sz(30, 30))
	sibling.SetPosition(geom.Pt(150, 150))

	mustAdd(t, root, s1)
	mustAdd(t, s1, clip)
	mustAdd(t, clip, big)
	mustAdd(t, s1, s2)
	mustAdd(t, s2, leaf)
	mustAdd(t, root, sibling)
	return root
}

func TestRenderTargetsAreReachable(t *testing.T) {
	root := complexTree(t)
	CalculateDrawProperties(NewInputs(root, geom.Sz(200, 200)))

	root.Walk(func(l *Layer) bool {
		if !l.DrawProperties().Computed {
			return true
		}
		target := l
		for range 64 {
			next := target.RenderTarget()
			if next == nil {
				t.Errorf("layer %d: nil render target on the way up", l.ID())
				return true
			}
			if next == target {
				break
			}
			target = next
		}
		if target.RenderTarget() != target {
			t.Errorf("layer %d: render target chain does not terminate", l.ID())
		}
		if target.RenderSurface() == nil {
			t.Errorf("layer %d: render target %d owns no surface", l.ID(), target.ID())
		}
		return true
	})
}

func TestSurfacesPrecedeTheirTargets(t *testing.T) {
	root := complexTree(t)
	list := CalculateDrawProperties(NewInputs(root, geom.Sz(200, 200)))

	if list.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", list.Len())
	}
	if list.Root().Owner() != root {
		t.Error("first surface is not the root surface")
	}
	index := make(map[*RenderSurface]int)
	for i, s := range list.Surfaces() {
		index[s] = i
		if !s.IsDrawnRenderSurfaceLayerListMember() {
			t.Errorf("surface %d is not a list member", i)
		}
		if i == 0 {
			continue
		}
		ti, ok := index[s.TargetSurface()]
		if !ok || ti >= i {
			t.Errorf("surface %d targets a surface that does not precede it", i)
		}
	}
}

func TestDrawableRectsStayInsideClip(t *testing.T) {
	root := complexTree(t)
	CalculateDrawProperties(NewInputs(root, geom.Sz(200, 200)))

	root.Walk(func(l *Layer) bool {
		dp := l.DrawProperties()
		if dp.Computed && dp.IsClipped && !dp.DrawableContentRect.In(dp.ClipRect) {
			t.Errorf("layer %d: DrawableContentRect %v escapes ClipRect %v", l.ID(), dp.DrawableContentRect, dp.ClipRect)
		}
		return true
	})
}

func TestNearInfiniteScaleCollapses(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	huge := newTestLayer(tree, geom.Sz(10, 10))
	huge.SetTransform(geom.Identity().Scale(1e37, 1e37))
	mustAdd(t, root, huge)

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	dp := huge.DrawProperties()
	if !dp.VisibleContentRect.Empty() {
		t.Errorf("VisibleContentRect = %v, want empty", dp.VisibleContentRect)
	}
	if !dp.DrawableContentRect.Empty() {
		t.Errorf("DrawableContentRect = %v, want empty", dp.DrawableContentRect)
	}
}

func TestEmptyViewportStillClips(t *testing.T) {
	_, root := newRootedTree(t, geom.Sz(100, 100))
	list := CalculateDrawProperties(NewInputs(root, geom.Sz(0, 0)))

	s := list.Root()
	if s == nil {
		t.Fatal("no root surface")
	}
	if !s.IsClipped {
		t.Error("root surface IsClipped = false, want true")
	}
	if !s.ClipRect.Empty() {
		t.Errorf("root surface ClipRect = %v, want empty", s.ClipRect)
	}
	if !root.DrawProperties().DrawableContentRect.Empty() {
		t.Errorf("root DrawableContentRect = %v, want empty", root.DrawProperties().DrawableContentRect)
	}
}

func TestAnimationContentsScale(t *testing.T) {
	scaleAnim := func() *AnimationState {
		return &AnimationState{Running: PropertyTransform, AffectsScale: true, MaxScale: 4, StartScale: 1}
	}

	tests := []struct {
		name      string
		setup     func(parent, child *Layer)
		wantMax   float64
		wantStart float64
	}{
		{
			name:  "no animation",
			setup: func(parent, child *Layer) {},
		},
		{
			name:      "parent animates, child scaled",
			setup:     func(parent, child *Layer) { parent.SetAnimations(scaleAnim()) },
			wantMax:   8,
			wantStart: 2,
		},
		{
			name: "both animate",
			setup: func(parent, child *Layer) {
				parent.SetAnimations(scaleAnim())
				child.SetAnimations(scaleAnim())
			},
		},
		{
			name: "unknown scale",
			setup: func(parent, child *Layer) {
				child.SetAnimations(&AnimationState{Running: PropertyTransform, AffectsScale: true, ScaleUnknown: true})
			},
		},
		{
			name: "child animates under scaled parent",
			setup: func(parent, child *Layer) {
				parent.SetTransform(geom.Identity().Scale(3, 3))
				child.SetAnimations(scaleAnim())
			},
			wantMax:   12,
			wantStart: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, root := newRootedTree(t, geom.Sz(100, 100))
			parent := newTestLayer(tree, geom.Sz(10, 10))
			child := newTestLayer(tree, geom.Sz(10, 10))
			child.SetTransform(geom.Identity().Scale(2, 2))
			mustAdd(t, root, parent)
			mustAdd(t, parent, child)
			tt.setup(parent, child)

			CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

			dp := child.DrawProperties()
			if dp.MaximumAnimationContentsScale != tt.wantMax {
				t.Errorf("MaximumAnimationContentsScale = %v, want %v", dp.MaximumAnimationContentsScale, tt.wantMax)
			}
			if dp.StartingAnimationContentsScale != tt.wantStart {
				t.Errorf("StartingAnimationContentsScale = %v, want %v", dp.StartingAnimationContentsScale, tt.wantStart)
			}
		})
	}
}

func TestHiddenSubtree(t *testing.T) {
	tests := []struct {
		name        string
		copyRequest bool
		wantList    int
	}{
		{"hidden", false, 1},
		{"hidden with copy request", true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, root := newRootedTree(t, geom.Sz(100, 100))
			h := newTestLayer(tree, geom.Sz(50, 50))
			h.SetHideLayerAndSubtree(true)
			k := newTestLayer(tree, geom.Sz(10, 10))
			mustAdd(t, root, h)
			mustAdd(t, h, k)
			if tt.copyRequest {
				k.RequestCopy()
			}

			list := CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

			if got := len(rootLayerList(list)); got != tt.wantList {
				t.Errorf("root layer list = %d, want %d", got, tt.wantList)
			}
			if h.IsDrawnRenderSurfaceLayerListMember() {
				t.Error("hidden layer is a list member")
			}
			if got := k.DrawProperties().Computed; got != tt.copyRequest {
				t.Errorf("copied layer Computed = %v, want %v", got, tt.copyRequest)
			}
			if tt.copyRequest {
				s := k.RenderSurface()
				if s == nil || !s.IsDrawnRenderSurfaceLayerListMember() {
					t.Error("copy request layer should own a drawn surface")
				}
			}
		})
	}
}

func TestZeroOpacitySkippedUnlessAnimating(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	l := newTestLayer(tree, geom.Sz(10, 10))
	l.SetOpacity(0)
	mustAdd(t, root, l)

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))
	if l.DrawProperties().Computed {
		t.Error("transparent layer should be skipped")
	}

	l.SetAnimations(&AnimationState{Running: PropertyOpacity})
	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))
	if !l.DrawProperties().Computed {
		t.Error("layer with an opacity animation should be computed")
	}
	if l.RenderSurface() == nil {
		t.Error("layer with an opacity animation should own a surface")
	}
}

func TestZeroOpacitySubtreeKeptForTouchHandler(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	p := newTestLayer(tree, geom.Sz(50, 50))
	p.SetOpacity(0)
	c := newTestLayer(tree, geom.Sz(20, 20))
	c.SetTouchHandlerRegion([]image.Rectangle{image.Rect(0, 0, 20, 20)})
	mustAdd(t, root, p)
	mustAdd(t, p, c)

	list := CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	if !c.DrawProperties().Computed {
		t.Fatal("touch handler under a transparent parent should be computed")
	}
	if got := tree.FindLayerWithTouchHandlerAtPoint(geom.Pt(5, 5)); got != c {
		t.Errorf("FindLayerWithTouchHandlerAtPoint() = %v, want the handler layer", got)
	}
	if c.IsDrawnRenderSurfaceLayerListMember() {
		t.Error("layer under a transparent parent is a list member")
	}
	if p.IsDrawnRenderSurfaceLayerListMember() {
		t.Error("transparent layer is a list member")
	}
	if got := list.Len(); got != 1 {
		t.Errorf("list.Len() = %d, want 1", got)
	}
	if got := rootLayerList(list); len(got) != 1 || got[0] != root {
		t.Errorf("root layer list = %v, want [root]", got)
	}
}

func TestBackFaceCulling(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	flipped := newTestLayer(tree, geom.Sz(10, 10))
	flipped.SetTransform(geom.Identity().RotateAboutYAxis(180))
	flipped.SetDoubleSided(false)
	twoSided := newTestLayer(tree, geom.Sz(10, 10))
	twoSided.SetTransform(geom.Identity().RotateAboutYAxis(180))
	mustAdd(t, root, flipped)
	mustAdd(t, root, twoSided)

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	if flipped.IsDrawnRenderSurfaceLayerListMember() {
		t.Error("single-sided layer facing away is drawn")
	}
	if !twoSided.IsDrawnRenderSurfaceLayerListMember() {
		t.Error("double-sided layer facing away is not drawn")
	}
}

func TestBackFaceCullingSurfaceOwner(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	root.SetDrawsContent(false)
	owner := newTestLayer(tree, geom.Sz(10, 10))
	owner.SetOpacity(0.5)
	owner.SetTransform(geom.Identity().RotateAboutYAxis(180))
	owner.SetDoubleSided(false)
	mustAdd(t, root, owner)

	list := CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	if owner.RenderSurface() == nil {
		t.Fatal("translucent layer has no render surface")
	}
	if got := list.Len(); got != 1 {
		t.Errorf("list.Len() = %d, want 1", got)
	}
	for l := range list.DrawnLayers() {
		if l == owner {
			t.Error("single-sided surface owner facing away is drawn")
		}
	}
	if owner.IsDrawnRenderSurfaceLayerListMember() {
		t.Error("single-sided surface owner facing away is a list member")
	}

	owner.SetDoubleSided(true)
	list = CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))
	if got := list.Len(); got != 2 {
		t.Errorf("double-sided list.Len() = %d, want 2", got)
	}
	if !owner.IsDrawnRenderSurfaceLayerListMember() {
		t.Error("double-sided surface owner facing away is not drawn")
	}
}

func TestLCDText(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(l *Layer)
		always bool
		want   bool
	}{
		{"opaque integer position", func(l *Layer) {}, false, true},
		{"fractional position", func(l *Layer) { l.SetPosition(geom.Pt(0.5, 0)) }, false, false},
		{"translucent", func(l *Layer) { l.SetOpacity(0.5) }, false, false},
		{"not opaque", func(l *Layer) { l.SetContentsOpaque(false) }, false, false},
		{"scaled", func(l *Layer) { l.SetTransform(geom.Identity().Scale(2, 2)) }, false, false},
		{"always allowed", func(l *Layer) { l.SetOpacity(0.5) }, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, root := newRootedTree(t, geom.Sz(100, 100))
			l := newTestLayer(tree, geom.Sz(10, 10))
			l.SetContentsOpaque(true)
			l.SetPosition(geom.Pt(3, 4))
			mustAdd(t, root, l)
			tt.setup(l)

			CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100), WithLCDText(true, tt.always)))

			if got := l.DrawProperties().CanUseLCDText; got != tt.want {
				t.Errorf("CanUseLCDText = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaxTextureSizeClampsSurface(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(500, 500))
	s := newTestLayer(tree, geom.Sz(300, 300))
	s.SetForceRenderSurface(true)
	mustAdd(t, root, s)

	CalculateDrawProperties(NewInputs(root, geom.Sz(500, 500), WithMaxTextureSize(100)))

	rs := s.RenderSurface()
	if rs == nil {
		t.Fatal("forced layer has no surface")
	}
	if want := image.Rect(0, 0, 100, 100); rs.ContentRect != want {
		t.Errorf("ContentRect = %v, want %v", rs.ContentRect, want)
	}
}

func TestEmptySurfaceIsRemoved(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	empty := tree.NewLayer()
	empty.SetBounds(geom.Sz(10, 10))
	empty.SetForceRenderSurface(true)
	mustAdd(t, root, empty)

	list := CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	if list.Len() != 1 {
		t.Errorf("Len() = %d, want 1", list.Len())
	}
	s := empty.RenderSurface()
	if s == nil {
		t.Fatal("forced layer has no surface object")
	}
	if s.IsDrawnRenderSurfaceLayerListMember() {
		t.Error("empty surface is a list member")
	}
	for _, l := range rootLayerList(list) {
		if l == empty {
			t.Error("empty surface contributes to the root surface")
		}
	}

	empty.RequestCopy()
	list = CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))
	if list.Len() != 2 {
		t.Errorf("Len() with copy request = %d, want 2", list.Len())
	}
}

func TestReplicaAndMask(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	l := newTestLayer(tree, geom.Sz(10, 10))
	l.SetPosition(geom.Pt(10, 10))
	replica := tree.NewLayer()
	replica.SetPosition(geom.Pt(20, 0))
	mask := tree.NewLayer()
	mask.SetBounds(geom.Sz(10, 10))
	mustAdd(t, root, l)
	if err := l.SetReplicaLayer(replica); err != nil {
		t.Fatalf("SetReplicaLayer() = %v", err)
	}
	if err := l.SetMaskLayer(mask); err != nil {
		t.Fatalf("SetMaskLayer() = %v", err)
	}

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	s := l.RenderSurface()
	if s == nil {
		t.Fatal("layer with replica owns no surface")
	}
	if !s.HasReplica() || !s.HasMask() {
		t.Error("HasReplica/HasMask = false, want true")
	}
	assertTransform(t, "DrawTransform", s.DrawTransform, geom.Identity().Translate(10, 10))
	assertTransform(t, "ReplicaDrawTransform", s.ReplicaDrawTransform, geom.Identity().Translate(30, 10))
	if want := image.Rect(10, 10, 40, 20); s.DrawableContentRect != want {
		t.Errorf("DrawableContentRect = %v, want %v", s.DrawableContentRect, want)
	}

	if !mask.DrawProperties().Computed || mask.RenderTarget() != l {
		t.Error("mask should draw into its owner's surface")
	}
	if !replica.DrawProperties().Computed || replica.RenderTarget() != root {
		t.Error("replica should draw into the owner's target")
	}
	assertTransform(t, "replica DrawTransform", replica.DrawProperties().DrawTransform, s.ReplicaDrawTransform)
}

func TestPageScale(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	scaled := tree.NewLayer()
	scaled.SetBounds(geom.Sz(100, 100))
	content := newTestLayer(tree, geom.Sz(10, 10))
	content.SetPosition(geom.Pt(5, 5))
	outside := newTestLayer(tree, geom.Sz(10, 10))
	outside.SetPosition(geom.Pt(5, 5))
	mustAdd(t, root, scaled)
	mustAdd(t, scaled, content)
	mustAdd(t, root, outside)

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100), WithPageScale(2, scaled)))

	assertTransform(t, "content DrawTransform", content.DrawProperties().DrawTransform,
		geom.Identity().Scale(2, 2).Translate(5, 5))
	assertTransform(t, "outside DrawTransform", outside.DrawProperties().DrawTransform,
		geom.Identity().Translate(5, 5))
	if got := content.DrawProperties().IdealContentsScale; got != 2 {
		t.Errorf("content IdealContentsScale = %v, want 2", got)
	}
}

func TestScrollOffsetClamped(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	scroller := newTestLayer(tree, geom.Sz(200, 200))
	scroller.SetScrollClipLayer(root.ID())
	scroller.SetScrollOffset(geom.Pt(150, -5))
	mustAdd(t, root, scroller)

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))
	assertTransform(t, "DrawTransform", scroller.DrawProperties().DrawTransform, geom.Identity().Translate(-100, 0))

	// An unknown scroll clip layer falls back to the tree parent.
	scroller.SetScrollClipLayer(999)
	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))
	assertTransform(t, "fallback DrawTransform", scroller.DrawProperties().DrawTransform, geom.Identity().Translate(-100, 0))
}

func TestFixedPositionIgnoresScroll(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	scroller := tree.NewLayer()
	scroller.SetBounds(geom.Sz(100, 300))
	scroller.SetScrollClipLayer(root.ID())
	scroller.SetScrollOffset(geom.Pt(0, 30))
	fixed := newTestLayer(tree, geom.Sz(10, 10))
	fixed.SetPosition(geom.Pt(5, 5))
	fixed.SetFixedPosition(true)
	normal := newTestLayer(tree, geom.Sz(10, 10))
	normal.SetPosition(geom.Pt(5, 5))
	mustAdd(t, root, scroller)
	mustAdd(t, scroller, fixed)
	mustAdd(t, scroller, normal)

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	assertTransform(t, "fixed DrawTransform", fixed.DrawProperties().DrawTransform, geom.Identity().Translate(5, 5))
	assertTransform(t, "normal DrawTransform", normal.DrawProperties().DrawTransform, geom.Identity().Translate(5, -25))
}

func TestClipParentEscapesIntermediateClip(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	clipper := newTestLayer(tree, geom.Sz(50, 50))
	clipper.SetMasksToBounds(true)
	inner := newTestLayer(tree, geom.Sz(10, 10))
	inner.SetMasksToBounds(true)
	escaper := newTestLayer(tree, geom.Sz(30, 30))
	mustAdd(t, root, clipper)
	mustAdd(t, clipper, inner)
	mustAdd(t, inner, escaper)
	if err := escaper.SetClipParent(clipper); err != nil {
		t.Fatalf("SetClipParent() = %v", err)
	}

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	dp := escaper.DrawProperties()
	if !dp.IsClipped {
		t.Fatal("escaper IsClipped = false, want true")
	}
	if want := image.Rect(0, 0, 50, 50); dp.ClipRect != want {
		t.Errorf("ClipRect = %v, want %v", dp.ClipRect, want)
	}
	if want := image.Rect(0, 0, 30, 30); dp.DrawableContentRect != want {
		t.Errorf("DrawableContentRect = %v, want %v", dp.DrawableContentRect, want)
	}
	if got := inner.DrawProperties().NumUnclippedDescendants; got != 1 {
		t.Errorf("inner NumUnclippedDescendants = %d, want 1", got)
	}
	if s := inner.RenderSurface(); s == nil || s.IsClipped {
		t.Error("layer with unclipped descendants should own an unclipped surface")
	}

	if err := escaper.SetClipParent(nil); err != nil {
		t.Fatalf("SetClipParent(nil) = %v", err)
	}
	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))
	if want := image.Rect(0, 0, 10, 10); escaper.DrawProperties().DrawableContentRect != want {
		t.Errorf("DrawableContentRect without clip parent = %v, want %v", escaper.DrawProperties().DrawableContentRect, want)
	}
}

func TestScrollParentResolvedOutOfOrder(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	a := newTestLayer(tree, geom.Sz(20, 20))
	a.SetMasksToBounds(true)
	x := newTestLayer(tree, geom.Sz(10, 10))
	x.SetPosition(geom.Pt(60, 10))
	b := newTestLayer(tree, geom.Sz(50, 50))
	b.SetPosition(geom.Pt(50, 0))
	b.SetMasksToBounds(true)
	mustAdd(t, root, a)
	mustAdd(t, a, x)
	mustAdd(t, root, b)
	// The scroll parent comes after x in tree order.
	if err := x.SetScrollParent(b); err != nil {
		t.Fatalf("SetScrollParent() = %v", err)
	}

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	dp := x.DrawProperties()
	if want := image.Rect(50, 0, 100, 50); !dp.IsClipped || dp.ClipRect != want {
		t.Errorf("ClipRect = %v (clipped %v), want %v", dp.ClipRect, dp.IsClipped, want)
	}
	if want := image.Rect(60, 10, 70, 20); dp.DrawableContentRect != want {
		t.Errorf("DrawableContentRect = %v, want %v", dp.DrawableContentRect, want)
	}
	if x.ScrollParent() != b {
		t.Error("ScrollParent() did not return the relation")
	}
}

func TestPropertyTreesReused(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	child := newTestLayer(tree, geom.Sz(10, 10))
	mustAdd(t, root, child)
	in := NewInputs(root, geom.Sz(100, 100))

	CalculateDrawProperties(in)
	tn, _, _ := tree.PropertyTrees().Sizes()
	CalculateDrawProperties(in)
	if tree.NeedsRebuild() {
		t.Error("NeedsRebuild() = true after an unchanged pass")
	}

	child.SetTransform(geom.Identity().Scale(2, 2))
	if !tree.NeedsRebuild() {
		t.Fatal("SetTransform() did not mark the tree")
	}
	CalculateDrawProperties(in)
	if got, _, _ := tree.PropertyTrees().Sizes(); got != tn+1 {
		t.Errorf("transform nodes = %d, want %d", got, tn+1)
	}
}

func TestCalculateNilRoot(t *testing.T) {
	list := CalculateDrawProperties(CalcInputs{})
	if list.Len() != 0 || list.Root() != nil {
		t.Errorf("Len() = %d, want 0", list.Len())
	}
}

func TestIdentityInvariance(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	parent := newTestLayer(tree, geom.Sz(50, 50))
	child := newTestLayer(tree, geom.Sz(20, 20))
	mustAdd(t, root, parent)
	mustAdd(t, parent, child)

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	for _, l := range []*Layer{root, parent, child} {
		dp := l.DrawProperties()
		if !dp.DrawTransform.IsIdentity() || !dp.ScreenSpaceTransform.IsIdentity() {
			t.Errorf("layer %d: draw %v screen %v, want identity", l.ID(), dp.DrawTransform, dp.ScreenSpaceTransform)
		}
	}
}

func TestVisibleRectInsideDrawableRect(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	clip := newTestLayer(tree, geom.Sz(40, 40))
	clip.SetPosition(geom.Pt(30, 30))
	clip.SetMasksToBounds(true)
	a := newTestLayer(tree, geom.Sz(60, 60))
	a.SetPosition(geom.Pt(-20, 10))
	b := newTestLayer(tree, geom.Sz(80, 80))
	b.SetPosition(geom.Pt(50, 50))
	mustAdd(t, root, clip)
	mustAdd(t, clip, a)
	mustAdd(t, root, b)

	CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

	root.Walk(func(l *Layer) bool {
		dp := l.DrawProperties()
		visible := geom.MapEnclosingClippedRect(dp.DrawTransform, dp.VisibleContentRect)
		if !visible.In(dp.DrawableContentRect) {
			t.Errorf("layer %d: visible %v maps outside drawable %v", l.ID(), visible, dp.DrawableContentRect)
		}
		return true
	})
	if want := image.Rect(20, 0, 60, 30); a.DrawProperties().VisibleContentRect != want {
		t.Errorf("VisibleContentRect = %v, want %v", a.DrawProperties().VisibleContentRect, want)
	}
}
