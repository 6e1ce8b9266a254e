package compositor

import (
	"cmp"
	"image"
	"slices"

	"github.com/gogpu/compositor/geom"
)

// sortLayerList orders each run of consecutive entries sharing a non-zero
// sorting context back to front by the depth of their centers in surface
// space. Entries outside a context keep tree order.
func sortLayerList(s *RenderSurface) {
	list := s.layerList
	for start := 0; start < len(list); {
		ctx := list[start].sortingContextID
		end := start + 1
		for end < len(list) && ctx != 0 && list[end].sortingContextID == ctx {
			end++
		}
		if end-start > 1 {
			slices.SortStableFunc(list[start:end], func(a, b *Layer) int {
				return cmp.Compare(entryDepth(s, a), entryDepth(s, b))
			})
		}
		start = end
	}
}

// entryDepth returns the z of an entry's center in s's space.
func entryDepth(s *RenderSurface, l *Layer) float64 {
	t, r := l.drawProps.DrawTransform, image.Rect(0, 0, l.drawProps.ContentBounds.Width, l.drawProps.ContentBounds.Height)
	if l != s.owner && l.ownsSurface {
		t, r = l.renderSurface.DrawTransform, l.renderSurface.ContentRect
	}
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	return t.MapPoint3(geom.Pt3(cx, cy, 0)).Z
}
