package filter

import (
	"image"
	"math"

	"github.com/gogpu/compositor"
)

// Apply runs fs over img inside r, in list order.
func Apply(img *image.RGBA, r image.Rectangle, fs compositor.Filters) {
	for _, f := range fs {
		var m ColorMatrix
		switch f.Kind {
		case compositor.FilterGrayscale:
			m = Grayscale(f.Amount)
		case compositor.FilterSepia:
			m = Sepia(f.Amount)
		case compositor.FilterInvert:
			m = Invert(f.Amount)
		case compositor.FilterOpacity:
			m = Opacity(f.Amount)
		case compositor.FilterBrightness:
			m = Brightness(f.Amount)
		case compositor.FilterContrast:
			m = Contrast(f.Amount)
		case compositor.FilterBlur:
			Blur(img, r, f.Amount)
			continue
		default:
			compositor.Logger().Debug("filter: not rendered", "filter", f.Kind.String())
			continue
		}
		m.Apply(img, r)
	}
}

// ExpandRect returns the area fs may write when applied to content
// covering r. Only blur reaches outside its input.
func ExpandRect(r image.Rectangle, fs compositor.Filters) image.Rectangle {
	for _, f := range fs {
		if f.Kind == compositor.FilterBlur && f.Amount > 0 {
			n := int(math.Ceil(3 * f.Amount))
			r = r.Inset(-n)
		}
	}
	return r
}
