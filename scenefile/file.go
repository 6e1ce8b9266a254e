// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scenefile

// File is the decoded form of a fixture before any layer is created.
type File struct {
	Viewport          Viewport `toml:"viewport" yaml:"viewport"`
	DeviceScaleFactor float64  `toml:"device_scale_factor" yaml:"device_scale_factor"`
	PageScaleFactor   float64  `toml:"page_scale_factor" yaml:"page_scale_factor"`

	// PageScaleLayer names the layer carrying the page scale.
	PageScaleLayer   string `toml:"page_scale_layer" yaml:"page_scale_layer"`
	MaxTextureSize   int    `toml:"max_texture_size" yaml:"max_texture_size"`
	CanUseLCDText    bool   `toml:"lcd_text" yaml:"lcd_text"`
	AlwaysLCDText    bool   `toml:"layers_always_allow_lcd_text" yaml:"layers_always_allow_lcd_text"`
	SeparateSurfaces *bool  `toml:"separate_surfaces" yaml:"separate_surfaces"`

	Selection *Selection `toml:"selection" yaml:"selection"`

	Layers []LayerSpec `toml:"layers" yaml:"layers"`
}

// Viewport is the device viewport in pixels.
type Viewport struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

// Selection places the two selection handles.
type Selection struct {
	Start *SelectionBound `toml:"start" yaml:"start"`
	End   *SelectionBound `toml:"end" yaml:"end"`
}

// SelectionBound is one selection handle in layer space.
type SelectionBound struct {
	// Type is "left", "right" or "center".
	Type   string    `toml:"type" yaml:"type"`
	Layer  string    `toml:"layer" yaml:"layer"`
	Top    []float64 `toml:"top" yaml:"top"`
	Bottom []float64 `toml:"bottom" yaml:"bottom"`
}

// LayerSpec describes one layer. Unset optional fields keep the layer
// defaults.
type LayerSpec struct {
	Name   string `toml:"name" yaml:"name"`
	Parent string `toml:"parent" yaml:"parent"`

	// Color paints the layer in debug renders, as "#rgb" or "#rrggbb".
	Color string   `toml:"color" yaml:"color"`
	Alpha *float64 `toml:"alpha" yaml:"alpha"`

	Bounds          []int         `toml:"bounds" yaml:"bounds"`
	Position        []float64     `toml:"position" yaml:"position"`
	Transform       []TransformOp `toml:"transform" yaml:"transform"`
	TransformOrigin []float64     `toml:"transform_origin" yaml:"transform_origin"`

	Opacity        *float64 `toml:"opacity" yaml:"opacity"`
	BlendMode      string   `toml:"blend_mode" yaml:"blend_mode"`
	Isolate        bool     `toml:"isolate" yaml:"isolate"`
	MasksToBounds  bool     `toml:"masks_to_bounds" yaml:"masks_to_bounds"`
	DrawsContent   bool     `toml:"draws_content" yaml:"draws_content"`
	ContentsOpaque bool     `toml:"contents_opaque" yaml:"contents_opaque"`
	Hidden         bool     `toml:"hidden" yaml:"hidden"`
	DoubleSided    *bool    `toml:"double_sided" yaml:"double_sided"`

	// UseParentBackface makes the layer inherit its parent's back face
	// visibility.
	UseParentBackface  bool         `toml:"use_parent_backface_visibility" yaml:"use_parent_backface_visibility"`
	Flatten            *bool        `toml:"flatten" yaml:"flatten"`
	SortingContext     int          `toml:"sorting_context" yaml:"sorting_context"`
	ForceRenderSurface bool         `toml:"force_render_surface" yaml:"force_render_surface"`
	Filters            []FilterSpec `toml:"filters" yaml:"filters"`
	BackgroundFilters  []FilterSpec `toml:"background_filters" yaml:"background_filters"`
	IdealContentsScale bool         `toml:"ideal_contents_scale" yaml:"ideal_contents_scale"`
	TouchRegion        [][]int      `toml:"touch_region" yaml:"touch_region"`
	WheelHandlers      bool         `toml:"wheel_handlers" yaml:"wheel_handlers"`
	ScrollClip         string       `toml:"scroll_clip" yaml:"scroll_clip"`
	ScrollOffset       []float64    `toml:"scroll_offset" yaml:"scroll_offset"`
	FixedContainer     bool         `toml:"fixed_container" yaml:"fixed_container"`
	FixedPosition      bool         `toml:"fixed_position" yaml:"fixed_position"`
	CopyRequest        bool         `toml:"copy_request" yaml:"copy_request"`
	ClipParent         string       `toml:"clip_parent" yaml:"clip_parent"`
	ScrollParent       string       `toml:"scroll_parent" yaml:"scroll_parent"`
	Mask               string       `toml:"mask" yaml:"mask"`
	Replica            string       `toml:"replica" yaml:"replica"`
	Animation          *AnimSpec    `toml:"animation" yaml:"animation"`
}

// TransformOp is one step of a layer transform. Exactly one field is set.
// Steps are applied in order, each post-multiplied onto the previous ones.
type TransformOp struct {
	Translate   []float64 `toml:"translate" yaml:"translate"`
	Scale       []float64 `toml:"scale" yaml:"scale"`
	Rotate      *float64  `toml:"rotate" yaml:"rotate"`
	RotateX     *float64  `toml:"rotate_x" yaml:"rotate_x"`
	RotateY     *float64  `toml:"rotate_y" yaml:"rotate_y"`
	Skew        []float64 `toml:"skew" yaml:"skew"`
	Perspective *float64  `toml:"perspective" yaml:"perspective"`

	// Matrix is 6 affine values (a b c d e f) or 16 row-major values.
	Matrix []float64 `toml:"matrix" yaml:"matrix"`
}

// FilterSpec is one filter function.
type FilterSpec struct {
	Kind   string  `toml:"kind" yaml:"kind"`
	Amount float64 `toml:"amount" yaml:"amount"`
}

// AnimSpec declares the animations running on a layer.
type AnimSpec struct {
	// Running and Waiting list "transform", "opacity", "filter" or
	// "scroll_offset".
	Running      []string `toml:"running" yaml:"running"`
	Waiting      []string `toml:"waiting" yaml:"waiting"`
	AffectsScale bool     `toml:"affects_scale" yaml:"affects_scale"`
	MaxScale     float64  `toml:"max_scale" yaml:"max_scale"`
	StartScale   float64  `toml:"start_scale" yaml:"start_scale"`
	ScaleUnknown bool     `toml:"scale_unknown" yaml:"scale_unknown"`
	Starting     bool     `toml:"starting" yaml:"starting"`
}
