// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package debugview

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/geom"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	red   = color.NRGBA{255, 0, 0, 255}
)

// colors paints the listed layers and skips all others.
func colors(m map[*compositor.Layer]color.Color) Painter {
	return func(l *compositor.Layer) (color.Color, bool) {
		c, ok := m[l]
		return c, ok
	}
}

func newLayer(tree *compositor.LayerTree, w, h int) *compositor.Layer {
	l := tree.NewLayer()
	l.SetBounds(geom.Sz(w, h))
	l.SetDrawsContent(true)
	return l
}

// newScene returns a tree with a 100x100 root and one 20x20 child at
// (10, 10).
func newScene(t *testing.T) (root, child *compositor.Layer) {
	t.Helper()
	tree := compositor.NewLayerTree()
	root = newLayer(tree, 100, 100)
	if err := tree.SetRoot(root); err != nil {
		t.Fatalf("SetRoot() = %v", err)
	}
	child = newLayer(tree, 20, 20)
	child.SetPosition(geom.Pt(10, 10))
	if err := root.AddChild(child); err != nil {
		t.Fatalf("AddChild() = %v", err)
	}
	return root, child
}

func render(t *testing.T, root *compositor.Layer, p Painter) *Target {
	t.Helper()
	list := compositor.CalculateDrawProperties(compositor.NewInputs(root, geom.Sz(100, 100)))
	target := NewTarget(100, 100)
	if err := New(WithPainter(p)).Render(target, list); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	return target
}

func near(a, b color.RGBA) bool {
	d := func(x, y uint8) bool { return x-y <= 1 || y-x <= 1 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestRenderOpaqueLayers(t *testing.T) {
	root, child := newScene(t)
	target := render(t, root, colors(map[*compositor.Layer]color.Color{root: white, child: red}))

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{5, 5, color.RGBA{255, 255, 255, 255}},
		{10, 10, color.RGBA{255, 0, 0, 255}},
		{29, 29, color.RGBA{255, 0, 0, 255}},
		{30, 30, color.RGBA{255, 255, 255, 255}},
		{99, 99, color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := target.Image().RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderClipsToMaskingParent(t *testing.T) {
	tree := compositor.NewLayerTree()
	root := newLayer(tree, 100, 100)
	if err := tree.SetRoot(root); err != nil {
		t.Fatalf("SetRoot() = %v", err)
	}
	clip := newLayer(tree, 50, 50)
	clip.SetMasksToBounds(true)
	big := newLayer(tree, 100, 100)
	if err := root.AddChild(clip); err != nil {
		t.Fatal(err)
	}
	if err := clip.AddChild(big); err != nil {
		t.Fatal(err)
	}

	target := render(t, root, colors(map[*compositor.Layer]color.Color{big: red}))
	if got := target.Image().RGBAAt(49, 49); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("inside clip = %v, want red", got)
	}
	if got := target.Image().RGBAAt(60, 60); got != (color.RGBA{}) {
		t.Errorf("outside clip = %v, want transparent", got)
	}
}

func TestRenderSurfaceOpacity(t *testing.T) {
	root, child := newScene(t)
	child.SetOpacity(0.5)
	child.SetForceRenderSurface(true)

	target := render(t, root, colors(map[*compositor.Layer]color.Color{child: red}))
	if child.RenderSurface() == nil {
		t.Fatal("child has no render surface")
	}
	want := color.RGBA{128, 0, 0, 128}
	if got := target.Image().RGBAAt(20, 20); !near(got, want) {
		t.Errorf("surface pixel = %v, want %v", got, want)
	}
	if got := target.Image().RGBAAt(40, 40); got != (color.RGBA{}) {
		t.Errorf("outside surface = %v, want transparent", got)
	}
}

func TestRenderLayerOpacity(t *testing.T) {
	root, child := newScene(t)
	child.SetOpacity(0.5)

	target := render(t, root, colors(map[*compositor.Layer]color.Color{child: red}))
	want := color.RGBA{128, 0, 0, 128}
	if got := target.Image().RGBAAt(20, 20); !near(got, want) {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestRenderBlendMode(t *testing.T) {
	root, child := newScene(t)
	child.SetBlendMode(compositor.BlendDifference)

	target := render(t, root, colors(map[*compositor.Layer]color.Color{root: white, child: red}))
	want := color.RGBA{0, 255, 255, 255}
	if got := target.Image().RGBAAt(20, 20); !near(got, want) {
		t.Errorf("difference pixel = %v, want %v", got, want)
	}
	if got := target.Image().RGBAAt(50, 50); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background pixel = %v, want white", got)
	}
}

func TestRenderSkipsHiddenLayers(t *testing.T) {
	root, child := newScene(t)
	child.SetHideLayerAndSubtree(true)

	target := render(t, root, colors(map[*compositor.Layer]color.Color{child: red}))
	if got := target.Image().RGBAAt(20, 20); got != (color.RGBA{}) {
		t.Errorf("hidden layer pixel = %v, want transparent", got)
	}
}

func TestRenderEmptyList(t *testing.T) {
	target := NewTarget(4, 4)
	bg := color.RGBA{1, 2, 3, 255}
	if err := New(WithBackground(bg)).Render(target, compositor.RenderSurfaceLayerList{}); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if got := target.Image().RGBAAt(3, 3); got != bg {
		t.Errorf("pixel = %v, want background %v", got, bg)
	}
}

func TestRenderNilTarget(t *testing.T) {
	err := New().Render(nil, compositor.RenderSurfaceLayerList{})
	if !errors.Is(err, ErrNoTarget) {
		t.Errorf("Render(nil) = %v, want ErrNoTarget", err)
	}
}

func TestRenderTargetFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  gputypes.TextureFormat
		wantErr error
		want    color.RGBA
	}{
		{"rgba", gputypes.TextureFormatRGBA8Unorm, nil, color.RGBA{255, 0, 0, 255}},
		{"bgra", gputypes.TextureFormatBGRA8Unorm, nil, color.RGBA{0, 0, 255, 255}},
		{"srgb", gputypes.TextureFormatRGBA8UnormSrgb, ErrUnsupportedFormat, color.RGBA{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, child := newScene(t)
			list := compositor.CalculateDrawProperties(compositor.NewInputs(root, geom.Sz(100, 100)))
			target := NewTargetWithFormat(100, 100, tt.format)
			p := colors(map[*compositor.Layer]color.Color{child: red})

			err := New(WithPainter(p)).Render(target, list)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Render() = %v, want %v", err, tt.wantErr)
			}
			if got := target.Image().RGBAAt(20, 20); got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultPainter(t *testing.T) {
	tree := compositor.NewLayerTree()
	l := tree.NewLayer()
	if _, ok := DefaultPainter(l); ok {
		t.Error("DefaultPainter() painted a layer without content")
	}
	l.SetDrawsContent(true)
	c, ok := DefaultPainter(l)
	if !ok {
		t.Fatal("DefaultPainter() skipped a content layer")
	}
	if _, _, _, a := c.RGBA(); a != 0xffff {
		t.Errorf("DefaultPainter() alpha = %#x, want opaque", a)
	}
}
