// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/debugview"
	"github.com/gogpu/compositor/internal/parallel"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	sceneOpts
	output     string // PNG path for a single fixture
	dir        string // output directory for several fixtures
	jobs       int    // fixtures rendered at once, 0 for GOMAXPROCS
	background string // hex background color, overrides LAYERDUMP_BACKGROUND
	noFilters  bool   // skip surface filters
	format     string // target pixel format
}

// targetFormats maps --format values to texture formats.
var targetFormats = map[string]gputypes.TextureFormat{
	"rgba8unorm": gputypes.TextureFormatRGBA8Unorm,
	"bgra8unorm": gputypes.TextureFormatBGRA8Unorm,
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{output: "layers.png", dir: ".", format: "rgba8unorm"}

	cmd := &cobra.Command{
		Use:   "render [fixture...]",
		Short: "Rasterize the render surface list to a PNG",
		Long: `render draws each fixture's render surface list into a PNG.

With one fixture the image is written to --output. With several, each
image is written to --dir, named after its fixture, and the fixtures are
rendered concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 && cmd.Flags().Changed("output") {
				return fmt.Errorf("--output takes a single fixture; use --dir for %d fixtures", len(args))
			}
			if _, ok := targetFormats[opts.format]; !ok {
				return fmt.Errorf("unknown --format %q; use rgba8unorm or bgra8unorm", opts.format)
			}
			return runRender(cmd, args, &opts)
		},
	}

	bindSceneFlags(cmd, &opts.sceneOpts)
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output PNG file")
	cmd.Flags().StringVar(&opts.dir, "dir", opts.dir, "output directory when rendering several fixtures")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "fixtures rendered at once (default GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color as #rrggbb")
	cmd.Flags().BoolVar(&opts.noFilters, "no-filters", false, "do not apply surface filters")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "target pixel format: rgba8unorm or bgra8unorm")

	return cmd
}

// outputPath returns where the image of fixture is written.
func (o *renderOpts) outputPath(fixture string, single bool) string {
	if single {
		return o.output
	}
	base := strings.TrimSuffix(filepath.Base(fixture), filepath.Ext(fixture))
	return filepath.Join(o.dir, base+".png")
}

func runRender(cmd *cobra.Command, fixtures []string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	single := len(fixtures) == 1
	outputs := make([]string, len(fixtures))
	for i, fixture := range fixtures {
		outputs[i] = opts.outputPath(fixture, single)
	}

	pool := parallel.NewPool(opts.jobs)
	defer pool.Close()

	start := time.Now()
	err := pool.Do(ctx, len(fixtures), func(ctx context.Context, i int) error {
		c, err := calculate(ctx, cmd, fixtures[i], &opts.sceneOpts)
		if err != nil {
			return err
		}
		if err := renderFixture(c, opts, outputs[i]); err != nil {
			return fmt.Errorf("%s: %w", fixtures[i], err)
		}
		logger.Debug("rendered", "fixture", fixtures[i], "layers", countDrawn(c.list), "surfaces", c.list.Len(),
			"format", targetFormats[opts.format])
		return nil
	})
	if err != nil {
		return err
	}

	logger.Infof("Rendered %d fixture(s) as %s (%s)", len(fixtures), targetFormats[opts.format],
		time.Since(start).Round(time.Millisecond))
	for _, path := range outputs {
		printFile(cmd.OutOrStdout(), path)
	}
	return nil
}

// renderFixture draws c into a PNG at path.
func renderFixture(c *calculation, opts *renderOpts, path string) error {
	hex := c.cfg.Background
	if opts.background != "" {
		hex = opts.background
	}
	bg, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("background %q: %w", hex, err)
	}
	r, g, b := bg.RGB255()

	vp := c.in.DeviceViewportSize
	target := debugview.NewTargetWithFormat(vp.Width, vp.Height, targetFormats[opts.format])
	renderer := debugview.New(
		debugview.WithPainter(c.paint),
		debugview.WithBackground(color.NRGBA{r, g, b, 0xff}),
		debugview.WithFilters(!opts.noFilters))
	if err := renderer.Render(target, c.list); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := target.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// paint uses the fixture's layer colors and falls back to the default
// palette.
func (c *calculation) paint(l *compositor.Layer) (color.Color, bool) {
	if col, ok := c.scene.Color(l.ID()); ok {
		return col, true
	}
	return debugview.DefaultPainter(l)
}

func countDrawn(list compositor.RenderSurfaceLayerList) int {
	n := 0
	for range list.DrawnLayers() {
		n++
	}
	return n
}
