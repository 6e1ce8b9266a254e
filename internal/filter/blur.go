package filter

import (
	"image"
	"math"
)

// GaussianKernel returns a normalized 1-D Gaussian with sigma radius. The
// kernel spans three standard deviations on each side. A radius of zero or
// less yields the identity kernel.
func GaussianKernel(radius float64) []float64 {
	if radius <= 0 {
		return []float64{1}
	}
	half := int(math.Ceil(radius * 3))
	kernel := make([]float64, 2*half+1)
	twoSigmaSq := 2 * radius * radius
	var sum float64
	for i := range kernel {
		x := float64(i - half)
		kernel[i] = math.Exp(-x * x / twoSigmaSq)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// Blur convolves img inside r with a Gaussian of the given radius, first
// horizontally then vertically. Samples outside r repeat the edge pixel.
func Blur(img *image.RGBA, r image.Rectangle, radius float64) {
	r = r.Intersect(img.Bounds())
	if radius <= 0 || r.Empty() {
		return
	}
	kernel := GaussianKernel(radius)
	w, h := r.Dx(), r.Dy()
	tmp := make([]float64, w*h*4)

	// Horizontal pass into tmp.
	for y := range h {
		for x := range w {
			var acc [4]float64
			for k, weight := range kernel {
				sx := clampInt(x+k-len(kernel)/2, 0, w-1)
				o := img.PixOffset(r.Min.X+sx, r.Min.Y+y)
				for c := range acc {
					acc[c] += float64(img.Pix[o+c]) * weight
				}
			}
			copy(tmp[(y*w+x)*4:], acc[:])
		}
	}

	// Vertical pass back into img.
	for y := range h {
		for x := range w {
			var acc [4]float64
			for k, weight := range kernel {
				sy := clampInt(y+k-len(kernel)/2, 0, h-1)
				i := (sy*w + x) * 4
				for c := range acc {
					acc[c] += tmp[i+c] * weight
				}
			}
			o := img.PixOffset(r.Min.X+x, r.Min.Y+y)
			for c := range acc {
				img.Pix[o+c] = clampByte(acc[c])
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
