package compositor

import (
	"image"
	"math"

	"github.com/gogpu/compositor/geom"
)

// SelectionBoundType is the kind of handle a selection bound draws.
type SelectionBoundType uint8

// Selection bound kinds.
const (
	SelectionBoundEmpty SelectionBoundType = iota
	SelectionBoundLeft
	SelectionBoundRight
	SelectionBoundCenter
)

var selectionBoundNames = [...]string{
	SelectionBoundEmpty:  "empty",
	SelectionBoundLeft:   "left",
	SelectionBoundRight:  "right",
	SelectionBoundCenter: "center",
}

func (t SelectionBoundType) String() string {
	if int(t) < len(selectionBoundNames) {
		return selectionBoundNames[t]
	}
	return "unknown"
}

// LayerSelectionBound is one end of a text selection, as an edge in the
// layer space of the layer holding it.
type LayerSelectionBound struct {
	Type       SelectionBoundType
	LayerID    LayerID
	EdgeTop    geom.Point
	EdgeBottom geom.Point
}

// ViewportSelectionBound is a selection bound mapped into the viewport in
// DIPs.
type ViewportSelectionBound struct {
	Type       SelectionBoundType
	EdgeTop    geom.Point
	EdgeBottom geom.Point
	// Visible is false when the edge is clipped away entirely.
	Visible bool
}

// SetSelection records the selection bounds. Non-empty bounds must name a
// layer of this tree.
func (t *LayerTree) SetSelection(start, end LayerSelectionBound) error {
	for _, b := range [...]LayerSelectionBound{start, end} {
		if b.Type != SelectionBoundEmpty && t.layers[b.LayerID] == nil {
			return ErrNotInTree
		}
	}
	t.selectionStart, t.selectionEnd = start, end
	return nil
}

// Selection returns the bounds recorded by SetSelection.
func (t *LayerTree) Selection() (start, end LayerSelectionBound) {
	return t.selectionStart, t.selectionEnd
}

// ViewportSelection maps the selection bounds through the last pass.
// Bounds on layers without draw properties come back empty.
func (t *LayerTree) ViewportSelection() (start, end ViewportSelectionBound) {
	dsf := t.builtInputs.DeviceScaleFactor
	if dsf <= 0 {
		dsf = 1
	}
	return t.viewportBound(t.selectionStart, dsf), t.viewportBound(t.selectionEnd, dsf)
}

func (t *LayerTree) viewportBound(b LayerSelectionBound, dsf float64) ViewportSelectionBound {
	if b.Type == SelectionBoundEmpty {
		return ViewportSelectionBound{}
	}
	l := t.layers[b.LayerID]
	if l == nil || !l.drawProps.Computed {
		return ViewportSelectionBound{}
	}
	screen := l.drawProps.LayerSpaceScreenTransform()
	top, _ := geom.MapPointClipped(screen, b.EdgeTop)
	bottom, _ := geom.MapPointClipped(screen, b.EdgeBottom)
	if isNaNPoint(top) || isNaNPoint(bottom) {
		return ViewportSelectionBound{}
	}

	cs := l.drawProps.ContentsScale
	if cs == 0 {
		cs = 1
	}
	visible := selectionVisibleRect(l)
	// A bound is visible when some height of its edge survives the clip.
	clippedTop, clippedBottom, ok := clipSegment(b.EdgeTop.Mul(cs), b.EdgeBottom.Mul(cs), geom.RectFFrom(visible))
	return ViewportSelectionBound{
		Type:       b.Type,
		EdgeTop:    top.Mul(1 / dsf),
		EdgeBottom: bottom.Mul(1 / dsf),
		Visible:    ok && clippedBottom.Y != clippedTop.Y,
	}
}

func isNaNPoint(p geom.Point) bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}

// selectionVisibleRect returns the unclipped part of l in content space.
// Unlike VisibleContentRect it is also defined for layers that draw
// nothing, such as editable containers.
func selectionVisibleRect(l *Layer) image.Rectangle {
	dp := &l.drawProps
	if l.drawsContent {
		return dp.VisibleContentRect
	}
	content := image.Rect(0, 0, dp.ContentBounds.Width, dp.ContentBounds.Height)
	visible := dp.DrawableContentRect
	if t := dp.RenderTarget; t != nil {
		if s := t.RenderSurface(); s != nil && s.IsClipped {
			if inv, ok := s.DrawTransform.Inverse(); ok {
				visible = geom.IntersectRects(visible, geom.ProjectEnclosingClippedRect(inv, s.ClipRect))
			}
		}
	}
	return calculateVisibleRectWithLayerRect(visible, content, dp.DrawableContentRect, dp.DrawTransform)
}

// clipSegment clips the segment p0-p1 to r with the Liang-Barsky method.
// ok is false when nothing of positive length remains.
func clipSegment(p0, p1 geom.Point, r geom.RectF) (a, b geom.Point, ok bool) {
	if r.IsEmpty() {
		return a, b, false
	}
	d := p1.Sub(p0)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-d.X, p0.X - r.X},
		{d.X, r.Right() - p0.X},
		{-d.Y, p0.Y - r.Y},
		{d.Y, r.Bottom() - p0.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	a, b = p0.Add(d.Mul(t0)), p0.Add(d.Mul(t1))
	return a, b, b.Sub(a).Length() > 0
}
