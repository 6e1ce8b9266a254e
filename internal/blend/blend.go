// Package blend composites premultiplied RGBA images with the CSS
// mix-blend-mode operators.
//
// Every mode uses the source-over alpha composite
//
//	co = cs*(1-ab) + cb*(1-as) + as*ab*B(Cb, Cs)
//	ao = as + ab*(1-as)
//
// where cs and cb are premultiplied and B works on unpremultiplied color.
//
// References:
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/compositor/proptree"
)

// rgb is an unpremultiplied color with channels in [0, 1].
type rgb [3]float64

// separable blends one channel: cb is the backdrop, cs the source.
type separable func(cb, cs float64) float64

// nonSeparable blends the whole color.
type nonSeparable func(cb, cs rgb) rgb

var separableModes = map[proptree.BlendMode]separable{
	proptree.BlendNormal:     func(_, cs float64) float64 { return cs },
	proptree.BlendMultiply:   func(cb, cs float64) float64 { return cb * cs },
	proptree.BlendScreen:     screen,
	proptree.BlendOverlay:    func(cb, cs float64) float64 { return hardLight(cs, cb) },
	proptree.BlendDarken:     math.Min,
	proptree.BlendLighten:    math.Max,
	proptree.BlendColorDodge: colorDodge,
	proptree.BlendColorBurn:  colorBurn,
	proptree.BlendHardLight:  hardLight,
	proptree.BlendSoftLight:  softLight,
	proptree.BlendDifference: func(cb, cs float64) float64 { return math.Abs(cb - cs) },
	proptree.BlendExclusion:  func(cb, cs float64) float64 { return cb + cs - 2*cb*cs },
}

var nonSeparableModes = map[proptree.BlendMode]nonSeparable{
	proptree.BlendHue: func(cb, cs rgb) rgb {
		return setLum(setSat(cs, sat(cb)), lum(cb))
	},
	proptree.BlendSaturation: func(cb, cs rgb) rgb {
		return setLum(setSat(cb, sat(cs)), lum(cb))
	},
	proptree.BlendColor: func(cb, cs rgb) rgb {
		return setLum(cs, lum(cb))
	},
	proptree.BlendLuminosity: func(cb, cs rgb) rgb {
		return setLum(cb, lum(cs))
	},
}

// Pixel composites the premultiplied source s onto the backdrop d.
// Unknown modes composite as normal.
func Pixel(s, d color.RGBA, mode proptree.BlendMode) color.RGBA {
	if s.A == 0 {
		return d
	}
	if d.A == 0 {
		return s
	}
	as, ab := float64(s.A)/255, float64(d.A)/255
	ps := rgb{float64(s.R) / 255, float64(s.G) / 255, float64(s.B) / 255}
	pb := rgb{float64(d.R) / 255, float64(d.G) / 255, float64(d.B) / 255}

	var mixed rgb
	cs, cb := unpremultiply(ps, as), unpremultiply(pb, ab)
	if f, ok := nonSeparableModes[mode]; ok {
		mixed = f(cb, cs)
	} else {
		f, ok := separableModes[mode]
		if !ok {
			f = separableModes[proptree.BlendNormal]
		}
		for i := range mixed {
			mixed[i] = f(cb[i], cs[i])
		}
	}

	var out color.RGBA
	ch := [3]*uint8{&out.R, &out.G, &out.B}
	for i := range mixed {
		*ch[i] = to8(ps[i]*(1-ab) + pb[i]*(1-as) + as*ab*mixed[i])
	}
	out.A = to8(as + ab*(1-as))
	return out
}

// Image composites src onto dst over the rectangle r of dst. sp is the
// point of src aligned with r.Min. Pixels outside src are transparent.
func Image(dst *image.RGBA, r image.Rectangle, src *image.RGBA, sp image.Point, mode proptree.BlendMode) {
	r = r.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := image.Pt(x-r.Min.X+sp.X, y-r.Min.Y+sp.Y)
			if !p.In(src.Bounds()) {
				continue
			}
			s := src.RGBAAt(p.X, p.Y)
			if s.A == 0 {
				continue
			}
			dst.SetRGBA(x, y, Pixel(s, dst.RGBAAt(x, y), mode))
		}
	}
}

func unpremultiply(c rgb, a float64) rgb {
	if a == 0 {
		return rgb{}
	}
	return rgb{min(c[0]/a, 1), min(c[1]/a, 1), min(c[2]/a, 1)}
}

func to8(v float64) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

func screen(cb, cs float64) float64 {
	return cb + cs - cb*cs
}

func hardLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb * 2 * cs
	}
	return screen(cb, 2*cs-1)
}

func colorDodge(cb, cs float64) float64 {
	switch {
	case cb == 0:
		return 0
	case cs >= 1:
		return 1
	}
	return min(1, cb/(1-cs))
}

func colorBurn(cb, cs float64) float64 {
	switch {
	case cb >= 1:
		return 1
	case cs <= 0:
		return 0
	}
	return 1 - min(1, (1-cb)/cs)
}

func softLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb - (1-2*cs)*cb*(1-cb)
	}
	var d float64
	if cb <= 0.25 {
		d = ((16*cb-12)*cb + 4) * cb
	} else {
		d = math.Sqrt(cb)
	}
	return cb + (2*cs-1)*(d-cb)
}

// lum uses the Rec. 601 weights of the compositing spec.
func lum(c rgb) float64 {
	return 0.3*c[0] + 0.59*c[1] + 0.11*c[2]
}

func sat(c rgb) float64 {
	return max(c[0], c[1], c[2]) - min(c[0], c[1], c[2])
}

// clipColor pulls out-of-range channels toward the luminance.
func clipColor(c rgb) rgb {
	l := lum(c)
	n := min(c[0], c[1], c[2])
	x := max(c[0], c[1], c[2])
	for i := range c {
		if n < 0 {
			c[i] = l + (c[i]-l)*l/(l-n)
		}
		if x > 1 {
			c[i] = l + (c[i]-l)*(1-l)/(x-l)
		}
	}
	return c
}

func setLum(c rgb, l float64) rgb {
	d := l - lum(c)
	return clipColor(rgb{c[0] + d, c[1] + d, c[2] + d})
}

// setSat rescales c so its channel spread is s, keeping the channel order.
func setSat(c rgb, s float64) rgb {
	lo, mid, hi := 0, 1, 2
	if c[lo] > c[mid] {
		lo, mid = mid, lo
	}
	if c[mid] > c[hi] {
		mid, hi = hi, mid
	}
	if c[lo] > c[mid] {
		lo, mid = mid, lo
	}

	var out rgb
	if c[hi] > c[lo] {
		out[mid] = (c[mid] - c[lo]) * s / (c[hi] - c[lo])
		out[hi] = s
	}
	return out
}
