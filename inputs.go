package compositor

import (
	"github.com/gogpu/compositor/geom"
)

// CalcInputs are the per-frame inputs of [CalculateDrawProperties].
// Build them with [NewInputs]; the zero value is not usable.
type CalcInputs struct {
	Root *Layer
	// DeviceViewportSize is the viewport in device pixels.
	DeviceViewportSize geom.Size
	// DeviceTransform is applied before the device scale factor.
	DeviceTransform   geom.Transform
	DeviceScaleFactor float64
	PageScaleFactor   float64
	// PageScaleLayer carries the page scale. nil disables page scale.
	PageScaleLayer *Layer
	// MaxTextureSize clamps surface content rects. 0 means unlimited.
	MaxTextureSize int

	CanUseLCDText            bool
	LayersAlwaysAllowLCDText bool
	// CanRenderToSeparateSurface is false when everything must draw into
	// the root surface.
	CanRenderToSeparateSurface bool
	// CanAdjustRasterScales lets layers rasterize at their ideal scale
	// instead of the device and page scale.
	CanAdjustRasterScales bool
}

// CalcOption configures [CalcInputs].
//
// Example:
//
//	in := compositor.NewInputs(root, geom.Sz(1600, 1200),
//		compositor.WithDeviceScaleFactor(2),
//		compositor.WithPageScale(1.5, pageScaleLayer))
type CalcOption func(*CalcInputs)

// NewInputs returns inputs for calculating root's tree in a viewport of
// the given device pixel size. Defaults: device and page scale 1, identity
// device transform, separate surfaces and raster scale adjustment enabled,
// LCD text disabled.
func NewInputs(root *Layer, viewport geom.Size, opts ...CalcOption) CalcInputs {
	in := CalcInputs{
		Root:                       root,
		DeviceViewportSize:         viewport,
		DeviceTransform:            geom.Identity(),
		DeviceScaleFactor:          1,
		PageScaleFactor:            1,
		CanRenderToSeparateSurface: true,
		CanAdjustRasterScales:      true,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// WithDeviceScaleFactor sets the ratio of device pixels to layout pixels.
// Non-positive values are ignored.
func WithDeviceScaleFactor(f float64) CalcOption {
	return func(in *CalcInputs) {
		if f > 0 {
			in.DeviceScaleFactor = f
		}
	}
}

// WithPageScale sets the page zoom and the layer that carries it.
//
// Example:
//
//	compositor.WithPageScale(2, innerViewportScrollLayer)
func WithPageScale(f float64, layer *Layer) CalcOption {
	return func(in *CalcInputs) {
		if f > 0 {
			in.PageScaleFactor = f
		}
		in.PageScaleLayer = layer
	}
}

// WithDeviceTransform sets a transform applied to the whole tree before
// the device scale factor.
func WithDeviceTransform(t geom.Transform) CalcOption {
	return func(in *CalcInputs) {
		in.DeviceTransform = t
	}
}

// WithMaxTextureSize limits the size of surface content rects.
func WithMaxTextureSize(n int) CalcOption {
	return func(in *CalcInputs) {
		in.MaxTextureSize = max(n, 0)
	}
}

// WithLCDText sets LCD text eligibility. always makes every layer
// eligible regardless of its transform and opacity.
func WithLCDText(can, always bool) CalcOption {
	return func(in *CalcInputs) {
		in.CanUseLCDText = can
		in.LayersAlwaysAllowLCDText = always
	}
}

// WithSeparateSurfaces sets whether layers other than the root may own a
// render surface.
func WithSeparateSurfaces(enabled bool) CalcOption {
	return func(in *CalcInputs) {
		in.CanRenderToSeparateSurface = enabled
	}
}

// WithRasterScaleAdjustment sets whether layers may rasterize at their
// ideal contents scale.
func WithRasterScaleAdjustment(enabled bool) CalcOption {
	return func(in *CalcInputs) {
		in.CanAdjustRasterScales = enabled
	}
}
