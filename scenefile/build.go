// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scenefile

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/geom"
)

// Scene is a fixture built into a layer tree.
type Scene struct {
	Tree *compositor.LayerTree
	Root *compositor.Layer

	file   *File
	byName map[string]*compositor.Layer
	names  map[compositor.LayerID]string
	colors map[compositor.LayerID]color.NRGBA
}

// Layer returns the layer declared with name, or nil.
func (s *Scene) Layer(name string) *compositor.Layer {
	return s.byName[name]
}

// Name returns the fixture name of the layer with id, or "#id" for layers
// the fixture does not declare.
func (s *Scene) Name(id compositor.LayerID) string {
	if n, ok := s.names[id]; ok {
		return n
	}
	return fmt.Sprintf("#%d", id)
}

// Color returns the debug color of the layer with id.
func (s *Scene) Color(id compositor.LayerID) (color.NRGBA, bool) {
	c, ok := s.colors[id]
	return c, ok
}

// Viewport returns the fixture's device viewport.
func (s *Scene) Viewport() geom.Size {
	return geom.Sz(s.file.Viewport.Width, s.file.Viewport.Height)
}

// PageScaleLayer returns the layer named by page_scale_layer, or nil.
func (s *Scene) PageScaleLayer() *compositor.Layer {
	return s.byName[s.file.PageScaleLayer]
}

// Options returns the calculation options the fixture requests.
func (s *Scene) Options() []compositor.CalcOption {
	f := s.file
	var opts []compositor.CalcOption
	if f.DeviceScaleFactor > 0 {
		opts = append(opts, compositor.WithDeviceScaleFactor(f.DeviceScaleFactor))
	}
	if f.PageScaleFactor > 0 {
		opts = append(opts, compositor.WithPageScale(f.PageScaleFactor, s.byName[f.PageScaleLayer]))
	}
	if f.MaxTextureSize > 0 {
		opts = append(opts, compositor.WithMaxTextureSize(f.MaxTextureSize))
	}
	if f.CanUseLCDText || f.AlwaysLCDText {
		opts = append(opts, compositor.WithLCDText(f.CanUseLCDText, f.AlwaysLCDText))
	}
	if f.SeparateSurfaces != nil {
		opts = append(opts, compositor.WithSeparateSurfaces(*f.SeparateSurfaces))
	}
	return opts
}

// Inputs returns calculation inputs for the fixture. extra options are
// applied after the fixture's own.
func (s *Scene) Inputs(extra ...compositor.CalcOption) compositor.CalcInputs {
	return compositor.NewInputs(s.Root, s.Viewport(), append(s.Options(), extra...)...)
}

// Build creates the layer tree a decoded fixture describes.
func Build(f *File) (*Scene, error) {
	s := &Scene{
		Tree:   compositor.NewLayerTree(),
		file:   f,
		byName: make(map[string]*compositor.Layer, len(f.Layers)),
		names:  make(map[compositor.LayerID]string, len(f.Layers)),
		colors: make(map[compositor.LayerID]color.NRGBA),
	}

	for i := range f.Layers {
		name := f.Layers[i].Name
		if name == "" {
			return nil, fmt.Errorf("%w: layer %d has no name", ErrInvalidValue, i)
		}
		if _, ok := s.byName[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, name)
		}
		l := s.Tree.NewLayer()
		s.byName[name] = l
		s.names[l.ID()] = name
	}

	for i := range f.Layers {
		spec := &f.Layers[i]
		if err := s.apply(s.byName[spec.Name], spec); err != nil {
			return nil, fmt.Errorf("layer %q: %w", spec.Name, err)
		}
	}

	if err := s.link(); err != nil {
		return nil, err
	}

	if f.PageScaleLayer != "" && s.byName[f.PageScaleLayer] == nil {
		return nil, fmt.Errorf("page_scale_layer: %w: %q", ErrUnknownParent, f.PageScaleLayer)
	}
	if f.Selection != nil {
		start, err := s.selectionBound(f.Selection.Start)
		if err != nil {
			return nil, fmt.Errorf("selection start: %w", err)
		}
		end, err := s.selectionBound(f.Selection.End)
		if err != nil {
			return nil, fmt.Errorf("selection end: %w", err)
		}
		if err := s.Tree.SetSelection(start, end); err != nil {
			return nil, err
		}
	}

	compositor.Logger().Debug("scenefile: built fixture",
		"layers", len(f.Layers),
		"root", s.Name(s.Root.ID()))
	return s, nil
}

// lookup resolves a layer reference. The empty name is nil.
func (s *Scene) lookup(name string) (*compositor.Layer, error) {
	if name == "" {
		return nil, nil
	}
	l := s.byName[name]
	if l == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParent, name)
	}
	return l, nil
}

// link builds the hierarchy, then attaches satellites and the non-tree
// relations.
func (s *Scene) link() error {
	layers := s.file.Layers

	satellites := make(map[string]bool)
	for _, spec := range layers {
		for _, name := range [...]string{spec.Mask, spec.Replica} {
			if name != "" {
				satellites[name] = true
			}
		}
	}

	var roots []string
	for _, spec := range layers {
		l := s.byName[spec.Name]
		if spec.Parent == "" {
			if !satellites[spec.Name] {
				roots = append(roots, spec.Name)
			}
			continue
		}
		if satellites[spec.Name] {
			return fmt.Errorf("layer %q: %w: mask and replica layers have no parent", spec.Name, ErrInvalidValue)
		}
		parent, err := s.lookup(spec.Parent)
		if err != nil {
			return fmt.Errorf("layer %q parent: %w", spec.Name, err)
		}
		if err := parent.AddChild(l); err != nil {
			return fmt.Errorf("layer %q: %w", spec.Name, err)
		}
	}
	if len(roots) != 1 {
		return fmt.Errorf("%w: found %d (%s)", ErrNoRoot, len(roots), strings.Join(roots, ", "))
	}
	s.Root = s.byName[roots[0]]
	if err := s.Tree.SetRoot(s.Root); err != nil {
		return err
	}

	for _, spec := range layers {
		l := s.byName[spec.Name]
		if err := s.relate(l, &spec); err != nil {
			return fmt.Errorf("layer %q: %w", spec.Name, err)
		}
	}
	return nil
}

func (s *Scene) relate(l *compositor.Layer, spec *LayerSpec) error {
	mask, err := s.lookup(spec.Mask)
	if err != nil {
		return fmt.Errorf("mask: %w", err)
	}
	if mask != nil {
		if err := l.SetMaskLayer(mask); err != nil {
			return fmt.Errorf("mask: %w", err)
		}
	}
	replica, err := s.lookup(spec.Replica)
	if err != nil {
		return fmt.Errorf("replica: %w", err)
	}
	if replica != nil {
		if err := l.SetReplicaLayer(replica); err != nil {
			return fmt.Errorf("replica: %w", err)
		}
	}

	clipParent, err := s.lookup(spec.ClipParent)
	if err != nil {
		return fmt.Errorf("clip_parent: %w", err)
	}
	if clipParent != nil {
		if err := l.SetClipParent(clipParent); err != nil {
			return fmt.Errorf("clip_parent: %w", err)
		}
	}
	scrollParent, err := s.lookup(spec.ScrollParent)
	if err != nil {
		return fmt.Errorf("scroll_parent: %w", err)
	}
	if scrollParent != nil {
		if err := l.SetScrollParent(scrollParent); err != nil {
			return fmt.Errorf("scroll_parent: %w", err)
		}
	}
	scrollClip, err := s.lookup(spec.ScrollClip)
	if err != nil {
		return fmt.Errorf("scroll_clip: %w", err)
	}
	if scrollClip != nil {
		l.SetScrollClipLayer(scrollClip.ID())
	}
	return nil
}

// apply sets the layer's own properties.
func (s *Scene) apply(l *compositor.Layer, spec *LayerSpec) error {
	if spec.Bounds != nil {
		if len(spec.Bounds) != 2 || spec.Bounds[0] < 0 || spec.Bounds[1] < 0 {
			return fmt.Errorf("%w: bounds must be two non-negative integers", ErrInvalidValue)
		}
		l.SetBounds(geom.Sz(spec.Bounds[0], spec.Bounds[1]))
	}
	if spec.Position != nil {
		p, err := point(spec.Position)
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}
		l.SetPosition(p)
	}
	if spec.Transform != nil {
		t, err := transform(spec.Transform)
		if err != nil {
			return fmt.Errorf("transform: %w", err)
		}
		l.SetTransform(t)
	}
	if spec.TransformOrigin != nil {
		switch len(spec.TransformOrigin) {
		case 2:
			l.SetTransformOrigin(geom.Pt3(spec.TransformOrigin[0], spec.TransformOrigin[1], 0))
		case 3:
			l.SetTransformOrigin(geom.Pt3(spec.TransformOrigin[0], spec.TransformOrigin[1], spec.TransformOrigin[2]))
		default:
			return fmt.Errorf("%w: transform_origin needs 2 or 3 values", ErrInvalidValue)
		}
	}

	if spec.Opacity != nil {
		l.SetOpacity(*spec.Opacity)
	}
	mode, ok := compositor.ParseBlendMode(spec.BlendMode)
	if !ok {
		return fmt.Errorf("%w: blend_mode %q", ErrInvalidValue, spec.BlendMode)
	}
	l.SetBlendMode(mode)
	l.SetIsRootForIsolatedGroup(spec.Isolate)
	l.SetMasksToBounds(spec.MasksToBounds)
	l.SetDrawsContent(spec.DrawsContent)
	l.SetContentsOpaque(spec.ContentsOpaque)
	l.SetHideLayerAndSubtree(spec.Hidden)
	if spec.DoubleSided != nil {
		l.SetDoubleSided(*spec.DoubleSided)
	}
	l.SetUseParentBackfaceVisibility(spec.UseParentBackface)
	if spec.Flatten != nil {
		l.SetShouldFlattenTransform(*spec.Flatten)
	}
	l.SetSortingContextID(spec.SortingContext)
	l.SetForceRenderSurface(spec.ForceRenderSurface)
	l.SetUsesIdealContentsScale(spec.IdealContentsScale)

	filters, err := filterList(spec.Filters)
	if err != nil {
		return fmt.Errorf("filters: %w", err)
	}
	l.SetFilters(filters)
	filters, err = filterList(spec.BackgroundFilters)
	if err != nil {
		return fmt.Errorf("background_filters: %w", err)
	}
	l.SetBackgroundFilters(filters)

	if spec.TouchRegion != nil {
		region := make([]image.Rectangle, 0, len(spec.TouchRegion))
		for _, r := range spec.TouchRegion {
			if len(r) != 4 {
				return fmt.Errorf("%w: touch_region entries are [x, y, width, height]", ErrInvalidValue)
			}
			region = append(region, image.Rect(r[0], r[1], r[0]+r[2], r[1]+r[3]))
		}
		l.SetTouchHandlerRegion(region)
	}
	l.SetHaveWheelEventHandlers(spec.WheelHandlers)
	if spec.ScrollOffset != nil {
		p, err := point(spec.ScrollOffset)
		if err != nil {
			return fmt.Errorf("scroll_offset: %w", err)
		}
		l.SetScrollOffset(p)
	}
	l.SetIsContainerForFixedPositionLayers(spec.FixedContainer)
	l.SetFixedPosition(spec.FixedPosition)
	if spec.CopyRequest {
		l.RequestCopy()
	}
	if spec.Animation != nil {
		a, err := animation(spec.Animation)
		if err != nil {
			return fmt.Errorf("animation: %w", err)
		}
		l.SetAnimations(a)
	}

	if spec.Color != "" {
		c, err := parseColor(spec.Color, spec.Alpha)
		if err != nil {
			return err
		}
		s.colors[l.ID()] = c
	}
	return nil
}

func point(v []float64) (geom.Point, error) {
	if len(v) != 2 {
		return geom.Point{}, fmt.Errorf("%w: want [x, y]", ErrInvalidValue)
	}
	return geom.Pt(v[0], v[1]), nil
}

// transform composes the steps left to right.
func transform(ops []TransformOp) (geom.Transform, error) {
	t := geom.Identity()
	for i, op := range ops {
		set := 0
		if op.Translate != nil {
			set++
			switch len(op.Translate) {
			case 2:
				t = t.Translate(op.Translate[0], op.Translate[1])
			case 3:
				t = t.Translate3d(op.Translate[0], op.Translate[1], op.Translate[2])
			default:
				return t, fmt.Errorf("%w: step %d: translate needs 2 or 3 values", ErrInvalidValue, i)
			}
		}
		if op.Scale != nil {
			set++
			switch len(op.Scale) {
			case 1:
				t = t.Scale(op.Scale[0], op.Scale[0])
			case 2:
				t = t.Scale(op.Scale[0], op.Scale[1])
			case 3:
				t = t.Scale3d(op.Scale[0], op.Scale[1], op.Scale[2])
			default:
				return t, fmt.Errorf("%w: step %d: scale needs 1 to 3 values", ErrInvalidValue, i)
			}
		}
		if op.Rotate != nil {
			set++
			t = t.RotateAboutZAxis(*op.Rotate)
		}
		if op.RotateX != nil {
			set++
			t = t.RotateAboutXAxis(*op.RotateX)
		}
		if op.RotateY != nil {
			set++
			t = t.RotateAboutYAxis(*op.RotateY)
		}
		if op.Skew != nil {
			set++
			if len(op.Skew) != 2 {
				return t, fmt.Errorf("%w: step %d: skew needs 2 values", ErrInvalidValue, i)
			}
			t = t.Skew(op.Skew[0], op.Skew[1])
		}
		if op.Perspective != nil {
			set++
			t = t.ApplyPerspectiveDepth(*op.Perspective)
		}
		if op.Matrix != nil {
			set++
			m, err := matrix(op.Matrix)
			if err != nil {
				return t, fmt.Errorf("step %d: %w", i, err)
			}
			t = t.Mul(m)
		}
		if set != 1 {
			return t, fmt.Errorf("%w: step %d sets %d operations, want 1", ErrInvalidValue, i, set)
		}
	}
	return t, nil
}

func matrix(v []float64) (geom.Transform, error) {
	switch len(v) {
	case 6:
		return geom.FromAffine(v[0], v[1], v[2], v[3], v[4], v[5]), nil
	case 16:
		var m [16]float64
		copy(m[:], v)
		return geom.FromMat4(m), nil
	}
	return geom.Transform{}, fmt.Errorf("%w: matrix needs 6 or 16 values", ErrInvalidValue)
}

func filterList(specs []FilterSpec) (compositor.Filters, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	fs := make(compositor.Filters, 0, len(specs))
	for _, f := range specs {
		kind, ok := compositor.ParseFilterKind(f.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: filter %q", ErrInvalidValue, f.Kind)
		}
		fs = append(fs, compositor.Filter{Kind: kind, Amount: f.Amount})
	}
	return fs, nil
}

var animatedProperties = map[string]compositor.AnimatedProperty{
	"transform":     compositor.PropertyTransform,
	"opacity":       compositor.PropertyOpacity,
	"filter":        compositor.PropertyFilter,
	"scroll_offset": compositor.PropertyScrollOffset,
}

func propertySet(names []string) (compositor.AnimatedProperty, error) {
	var set compositor.AnimatedProperty
	for _, n := range names {
		p, ok := animatedProperties[n]
		if !ok {
			return 0, fmt.Errorf("%w: animated property %q", ErrInvalidValue, n)
		}
		set |= p
	}
	return set, nil
}

func animation(a *AnimSpec) (*compositor.AnimationState, error) {
	running, err := propertySet(a.Running)
	if err != nil {
		return nil, err
	}
	waiting, err := propertySet(a.Waiting)
	if err != nil {
		return nil, err
	}
	return &compositor.AnimationState{
		Running:           running,
		Waiting:           waiting,
		AffectsScale:      a.AffectsScale,
		MaxScale:          a.MaxScale,
		StartScale:        a.StartScale,
		ScaleUnknown:      a.ScaleUnknown,
		StartingThisFrame: a.Starting,
	}, nil
}

var selectionTypes = map[string]compositor.SelectionBoundType{
	"left":   compositor.SelectionBoundLeft,
	"right":  compositor.SelectionBoundRight,
	"center": compositor.SelectionBoundCenter,
}

func (s *Scene) selectionBound(b *SelectionBound) (compositor.LayerSelectionBound, error) {
	if b == nil || b.Type == "" || b.Type == "empty" {
		return compositor.LayerSelectionBound{}, nil
	}
	typ, ok := selectionTypes[b.Type]
	if !ok {
		return compositor.LayerSelectionBound{}, fmt.Errorf("%w: type %q", ErrInvalidValue, b.Type)
	}
	l, err := s.lookup(b.Layer)
	if err != nil {
		return compositor.LayerSelectionBound{}, err
	}
	if l == nil {
		return compositor.LayerSelectionBound{}, fmt.Errorf("%w: bound has no layer", ErrInvalidValue)
	}
	top, err := point(b.Top)
	if err != nil {
		return compositor.LayerSelectionBound{}, fmt.Errorf("top: %w", err)
	}
	bottom, err := point(b.Bottom)
	if err != nil {
		return compositor.LayerSelectionBound{}, fmt.Errorf("bottom: %w", err)
	}
	return compositor.LayerSelectionBound{Type: typ, LayerID: l.ID(), EdgeTop: top, EdgeBottom: bottom}, nil
}

// parseColor reads a hex color. alpha, when set, is in [0, 1].
func parseColor(hex string, alpha *float64) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidValue, hex)
	}
	r, g, b := c.RGB255()
	a := uint8(255)
	if alpha != nil {
		a = uint8(min(max(*alpha, 0), 1)*255 + 0.5)
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
