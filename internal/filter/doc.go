// Package filter applies layer filter lists to premultiplied RGBA images.
//
// Color filters run as 4x5 color matrices in straight alpha; blur is a
// separable Gaussian convolution in premultiplied space. Drop shadows are
// not rendered.
package filter
