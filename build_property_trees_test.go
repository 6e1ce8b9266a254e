package compositor

import (
	"testing"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/proptree"
)

func TestBuildPropertyTreesNodeCounts(t *testing.T) {
	tests := []struct {
		name                  string
		setup                 func(child *Layer)
		transform, clip, eff  int
		wantChildOwnTransform bool
	}{
		{"plain child", func(*Layer) {}, 2, 2, 1, false},
		{"transformed child", func(c *Layer) { c.SetTransform(geom.Identity().Scale(2, 2)) }, 3, 2, 1, true},
		{"masking child", func(c *Layer) { c.SetMasksToBounds(true) }, 2, 3, 1, false},
		{"translucent leaf", func(c *Layer) { c.SetOpacity(0.5) }, 3, 3, 2, true},
		{"forced surface", func(c *Layer) { c.SetForceRenderSurface(true) }, 3, 3, 2, true},
		{"hidden with copy", func(c *Layer) {
			c.SetHideLayerAndSubtree(true)
			c.RequestCopy()
		}, 3, 3, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, root := newRootedTree(t, geom.Sz(100, 100))
			child := newTestLayer(tree, geom.Sz(10, 10))
			mustAdd(t, root, child)
			tt.setup(child)

			props := BuildPropertyTrees(root, 1, 1, nil, geom.Sz(100, 100), geom.Identity())
			if props == nil {
				t.Fatal("BuildPropertyTrees() = nil")
			}
			tn, cn, en := props.Sizes()
			if tn != tt.transform || cn != tt.clip || en != tt.eff {
				t.Errorf("Sizes() = %d, %d, %d, want %d, %d, %d", tn, cn, en, tt.transform, tt.clip, tt.eff)
			}
			rootTransform, _, _ := root.PropertyTreeIndices()
			childTransform, _, _ := child.PropertyTreeIndices()
			if got := childTransform != rootTransform; got != tt.wantChildOwnTransform {
				t.Errorf("child has own transform node = %v, want %v", got, tt.wantChildOwnTransform)
			}
			if props.NeedsRebuild {
				t.Error("NeedsRebuild = true after a build")
			}
		})
	}
}

func TestBuildPropertyTreesNilRoot(t *testing.T) {
	if got := BuildPropertyTrees(nil, 1, 1, nil, geom.Sz(10, 10), geom.Identity()); got != nil {
		t.Errorf("BuildPropertyTrees(nil) = %v, want nil", got)
	}
}

func TestBuildPropertyTreesDeviceNode(t *testing.T) {
	_, root := newRootedTree(t, geom.Sz(100, 100))
	device := geom.Identity().Translate(7, 0)
	props := BuildPropertyTrees(root, 2, 1, nil, geom.Sz(100, 100), device)

	d := props.Transform.Node(proptree.DeviceNodeID).Data
	assertTransform(t, "device Local", d.Local, device.Scale(2, 2))

	rootTransform, rootClip, rootEffect := root.PropertyTreeIndices()
	if rootTransform == proptree.NoNode || rootClip == proptree.NoNode || rootEffect == proptree.NoNode {
		t.Fatalf("root indices = %d, %d, %d, want assigned nodes", rootTransform, rootClip, rootEffect)
	}
	if !props.Transform.IsRootSurface(rootTransform) {
		t.Error("root transform node is not the root surface")
	}
	vp := props.Clip.Node(proptree.ViewportNodeID).Data
	if want := (geom.RectF{Width: 100, Height: 100}); vp.Clip != want {
		t.Errorf("viewport clip = %v, want %v", vp.Clip, want)
	}
}

func TestBuildSkipsSubtrees(t *testing.T) {
	tree, root := newRootedTree(t, geom.Sz(100, 100))
	hidden := newTestLayer(tree, geom.Sz(10, 10))
	hidden.SetHideLayerAndSubtree(true)
	below := newTestLayer(tree, geom.Sz(10, 10))
	handler := tree.NewLayer()
	handler.SetHideLayerAndSubtree(true)
	handler.SetHaveWheelEventHandlers(true)
	mustAdd(t, root, hidden)
	mustAdd(t, hidden, below)
	mustAdd(t, root, handler)

	BuildPropertyTrees(root, 1, 1, nil, geom.Sz(100, 100), geom.Identity())

	for _, l := range []*Layer{hidden, below} {
		if tr, c, e := l.PropertyTreeIndices(); tr != proptree.NoNode || c != proptree.NoNode || e != proptree.NoNode {
			t.Errorf("skipped layer %d has nodes %d, %d, %d", l.ID(), tr, c, e)
		}
	}
	// Input handlers keep hidden layers around for hit testing.
	if tr, _, _ := handler.PropertyTreeIndices(); tr == proptree.NoNode {
		t.Error("hidden layer with an input handler was skipped")
	}
}

func TestBuildFallsBackOnInvalidRelations(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root, a, b *Layer)
	}{
		{"clip parent is a sibling", func(t *testing.T, root, a, b *Layer) {
			if err := a.SetClipParent(b); err != nil {
				t.Fatal(err)
			}
		}},
		{"clip parent detached", func(t *testing.T, root, a, b *Layer) {
			if err := a.SetClipParent(b); err != nil {
				t.Fatal(err)
			}
			b.RemoveFromParent()
		}},
		{"scroll parent is a descendant", func(t *testing.T, root, a, b *Layer) {
			mustAdd(t, a, b)
			if err := a.SetScrollParent(b); err != nil {
				t.Fatal(err)
			}
		}},
		{"scroll clip layer unknown", func(t *testing.T, root, a, b *Layer) {
			a.SetScrollClipLayer(1234)
		}},
		{"scroll parent skipped", func(t *testing.T, root, a, b *Layer) {
			b.SetOpacity(0)
			if err := a.SetScrollParent(b); err != nil {
				t.Fatal(err)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, root := newRootedTree(t, geom.Sz(100, 100))
			root.SetMasksToBounds(true)
			a := newTestLayer(tree, geom.Sz(10, 10))
			b := newTestLayer(tree, geom.Sz(10, 10))
			mustAdd(t, root, a)
			mustAdd(t, root, b)
			tt.setup(t, root, a, b)

			CalculateDrawProperties(NewInputs(root, geom.Sz(100, 100)))

			_, rootClip, _ := root.PropertyTreeIndices()
			_, aClip, _ := a.PropertyTreeIndices()
			if aClip != rootClip {
				t.Errorf("clip node = %d, want the tree parent's %d", aClip, rootClip)
			}
			if !a.DrawProperties().Computed {
				t.Error("layer with an invalid relation was not computed")
			}
		})
	}
}
