package filter

import (
	"image"
)

// ColorMatrix is a 4x5 row-major color transform
//
//	[R']   [m0  m1  m2  m3  m4 ]   [R]
//	[G'] = [m5  m6  m7  m8  m9 ] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
//
// applied to straight-alpha channels in [0, 255].
type ColorMatrix [20]float64

// Identity leaves colors unchanged.
func Identity() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Rec. 709 luma weights.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// Saturate scales saturation by s: 0 is gray, 1 unchanged.
func Saturate(s float64) ColorMatrix {
	inv := 1 - s
	return ColorMatrix{
		lumR*inv + s, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + s, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Grayscale desaturates by amount in [0, 1].
func Grayscale(amount float64) ColorMatrix {
	return Saturate(1 - clamp01(amount))
}

// Sepia tones by amount in [0, 1].
func Sepia(amount float64) ColorMatrix {
	full := ColorMatrix{
		0.393, 0.769, 0.189, 0, 0,
		0.349, 0.686, 0.168, 0, 0,
		0.272, 0.534, 0.131, 0, 0,
		0, 0, 0, 1, 0,
	}
	return lerp(Identity(), full, clamp01(amount))
}

// Invert inverts colors by amount in [0, 1].
func Invert(amount float64) ColorMatrix {
	a := clamp01(amount)
	d := 1 - 2*a
	o := 255 * a
	return ColorMatrix{
		d, 0, 0, 0, o,
		0, d, 0, 0, o,
		0, 0, d, 0, o,
		0, 0, 0, 1, 0,
	}
}

// Opacity multiplies alpha by amount in [0, 1].
func Opacity(amount float64) ColorMatrix {
	m := Identity()
	m[18] = clamp01(amount)
	return m
}

// Brightness multiplies colors by amount.
func Brightness(amount float64) ColorMatrix {
	a := max(amount, 0)
	return ColorMatrix{
		a, 0, 0, 0, 0,
		0, a, 0, 0, 0,
		0, 0, a, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Contrast scales colors around mid gray by amount.
func Contrast(amount float64) ColorMatrix {
	a := max(amount, 0)
	o := 127.5 * (1 - a)
	return ColorMatrix{
		a, 0, 0, 0, o,
		0, a, 0, 0, o,
		0, 0, a, 0, o,
		0, 0, 0, 1, 0,
	}
}

// Apply transforms every pixel of img inside r in place. img is
// premultiplied.
func (m *ColorMatrix) Apply(img *image.RGBA, r image.Rectangle) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			px := row[i : i+4 : i+4]
			a := float64(px[3])
			var cr, cg, cb float64
			if a > 0 {
				cr = float64(px[0]) * 255 / a
				cg = float64(px[1]) * 255 / a
				cb = float64(px[2]) * 255 / a
			}

			nr := m[0]*cr + m[1]*cg + m[2]*cb + m[3]*a + m[4]
			ng := m[5]*cr + m[6]*cg + m[7]*cb + m[8]*a + m[9]
			nb := m[10]*cr + m[11]*cg + m[12]*cb + m[13]*a + m[14]
			na := clampByte(m[15]*cr + m[16]*cg + m[17]*cb + m[18]*a + m[19])

			f := float64(na) / 255
			px[0] = clampByte(clamp(nr, 0, 255) * f)
			px[1] = clampByte(clamp(ng, 0, 255) * f)
			px[2] = clampByte(clamp(nb, 0, 255) * f)
			px[3] = na
		}
	}
}

func lerp(a, b ColorMatrix, t float64) ColorMatrix {
	var m ColorMatrix
	for i := range m {
		m[i] = a[i] + (b[i]-a[i])*t
	}
	return m
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clampByte(v float64) uint8 {
	return uint8(clamp(v, 0, 255) + 0.5)
}
