// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/internal/config"
	"github.com/gogpu/compositor/scenefile"
)

// sceneOpts holds the calculation flags shared by every command.
type sceneOpts struct {
	width         int     // viewport width in device pixels
	height        int     // viewport height in device pixels
	deviceScale   float64 // device scale factor
	pageScale     float64 // page scale factor, applied at the fixture's page scale layer
	noSurfaces    bool    // draw everything into the root surface
	maxTexture    int     // surface size limit, 0 for none
	rasterAdjusts bool    // let layers rasterize at their ideal scale
}

func bindSceneFlags(cmd *cobra.Command, opts *sceneOpts) {
	f := cmd.Flags()
	f.IntVar(&opts.width, "width", 0, "viewport width in device pixels")
	f.IntVar(&opts.height, "height", 0, "viewport height in device pixels")
	f.Float64Var(&opts.deviceScale, "device-scale", 1, "device scale factor")
	f.Float64Var(&opts.pageScale, "page-scale", 1, "page scale factor")
	f.BoolVar(&opts.noSurfaces, "no-surfaces", false, "draw all layers into the root surface")
	f.IntVar(&opts.maxTexture, "max-texture-size", 0, "clamp surface content rects to this size")
	f.BoolVar(&opts.rasterAdjusts, "raster-scale", true, "allow layers to rasterize at their ideal scale")
}

// calculation is a loaded fixture after a draw-properties pass.
type calculation struct {
	scene *scenefile.Scene
	in    compositor.CalcInputs
	list  compositor.RenderSurfaceLayerList
	cfg   *config.Config
}

// calculate loads the fixture at path and computes its draw properties.
// Environment defaults come first, then the fixture, then changed flags.
func calculate(ctx context.Context, cmd *cobra.Command, path string, opts *sceneOpts) (*calculation, error) {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	scene, err := scenefile.Load(path)
	if err != nil {
		return nil, err
	}

	viewport := scene.Viewport()
	if viewport.Width == 0 && viewport.Height == 0 {
		viewport = geom.Sz(cfg.ViewportWidth, cfg.ViewportHeight)
	}

	var calcOpts []compositor.CalcOption
	calcOpts = append(calcOpts,
		compositor.WithDeviceScaleFactor(cfg.DeviceScaleFactor),
		compositor.WithSeparateSurfaces(cfg.CanRenderToSeparateSurface),
		compositor.WithMaxTextureSize(cfg.MaxTextureSize))
	if cfg.PageScaleFactor != 1 {
		calcOpts = append(calcOpts, compositor.WithPageScale(cfg.PageScaleFactor, scene.PageScaleLayer()))
	}
	calcOpts = append(calcOpts, scene.Options()...)

	flags := cmd.Flags()
	if flags.Changed("width") {
		viewport.Width = opts.width
	}
	if flags.Changed("height") {
		viewport.Height = opts.height
	}
	if flags.Changed("device-scale") {
		if opts.deviceScale <= 0 {
			return nil, fmt.Errorf("--device-scale must be positive, got %v", opts.deviceScale)
		}
		calcOpts = append(calcOpts, compositor.WithDeviceScaleFactor(opts.deviceScale))
	}
	if flags.Changed("page-scale") {
		if opts.pageScale <= 0 {
			return nil, fmt.Errorf("--page-scale must be positive, got %v", opts.pageScale)
		}
		calcOpts = append(calcOpts, compositor.WithPageScale(opts.pageScale, scene.PageScaleLayer()))
	}
	if flags.Changed("no-surfaces") {
		calcOpts = append(calcOpts, compositor.WithSeparateSurfaces(!opts.noSurfaces))
	}
	if flags.Changed("max-texture-size") {
		calcOpts = append(calcOpts, compositor.WithMaxTextureSize(opts.maxTexture))
	}
	if flags.Changed("raster-scale") {
		calcOpts = append(calcOpts, compositor.WithRasterScaleAdjustment(opts.rasterAdjusts))
	}

	in := compositor.NewInputs(scene.Root, viewport, calcOpts...)
	list := compositor.CalculateDrawProperties(in)
	logger.Debug("calculated draw properties",
		"fixture", path,
		"layers", scene.Tree.Len(),
		"surfaces", list.Len(),
		"viewport", fmt.Sprintf("%dx%d", viewport.Width, viewport.Height))

	return &calculation{scene: scene, in: in, list: list, cfg: cfg}, nil
}

// layerName returns the fixture name of l, or "-" for nil.
func (c *calculation) layerName(l *compositor.Layer) string {
	if l == nil {
		return "-"
	}
	return c.scene.Name(l.ID())
}
