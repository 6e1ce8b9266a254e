// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gogpu/compositor"
)

// propsOpts holds the flags of the props command.
type propsOpts struct {
	sceneOpts
	all bool // include layers that draw nothing
}

func newPropsCmd() *cobra.Command {
	var opts propsOpts

	cmd := &cobra.Command{
		Use:   "props [fixture]",
		Short: "Print draw properties and render surfaces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := calculate(cmd.Context(), cmd, args[0], &opts.sceneOpts)
			if err != nil {
				return err
			}
			printProps(cmd.OutOrStdout(), c, opts.all)
			return nil
		},
	}

	bindSceneFlags(cmd, &opts.sceneOpts)
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "list every layer in the tree, not only drawn ones")

	return cmd
}

func printProps(w io.Writer, c *calculation, all bool) {
	printKeyValue(w, "viewport", fmt.Sprintf("%dx%d", c.in.DeviceViewportSize.Width, c.in.DeviceViewportSize.Height))
	printKeyValue(w, "scale", fmt.Sprintf("device %g, page %g", c.in.DeviceScaleFactor, c.in.PageScaleFactor))
	printKeyValue(w, "surfaces", strconv.Itoa(c.list.Len()))
	fmt.Fprintln(w)

	var layers []*compositor.Layer
	if all {
		for l := range c.scene.Tree.Layers() {
			layers = append(layers, l)
		}
	} else {
		for l := range c.list.DrawnLayers() {
			layers = append(layers, l)
		}
	}

	rows := make([][]string, 0, len(layers))
	for _, l := range layers {
		dp := l.DrawProperties()
		if !dp.Computed {
			rows = append(rows, []string{c.layerName(l), "skipped", "", "", "", "", "", ""})
			continue
		}
		rows = append(rows, []string{
			c.layerName(l),
			c.layerName(dp.RenderTarget),
			num(dp.Opacity),
			formatClip(dp.ClipRect, dp.IsClipped),
			formatRect(dp.VisibleContentRect),
			formatRect(dp.DrawableContentRect),
			num(dp.ContentsScale),
			formatTransform(dp.DrawTransform),
		})
	}
	printTitle(w, "Layers")
	printTable(w, []string{"Layer", "Target", "Opacity", "Clip", "Visible", "Drawable", "Scale", "Draw transform"}, rows)

	rows = rows[:0]
	for _, rs := range c.list.Surfaces() {
		target := "-"
		if ts := rs.TargetSurface(); ts != nil && ts != rs {
			target = c.layerName(ts.Owner())
		}
		rows = append(rows, []string{
			c.layerName(rs.Owner()),
			target,
			num(rs.DrawOpacity),
			rs.BlendMode.String(),
			formatClip(rs.ClipRect, rs.IsClipped),
			formatRect(rs.ContentRect),
			strconv.Itoa(len(rs.LayerList())),
			formatTransform(rs.DrawTransform),
		})
	}
	printTitle(w, "Surfaces")
	printTable(w, []string{"Owner", "Target", "Opacity", "Blend", "Clip", "Content", "Layers", "Draw transform"}, rows)

	start, end := c.scene.Tree.ViewportSelection()
	if start.Type == compositor.SelectionBoundEmpty && end.Type == compositor.SelectionBoundEmpty {
		return
	}
	printTitle(w, "Selection")
	for _, b := range [...]struct {
		name  string
		bound compositor.ViewportSelectionBound
	}{{"start", start}, {"end", end}} {
		printKeyValue(w, b.name, fmt.Sprintf("%s (%g,%g)-(%g,%g) visible=%t",
			b.bound.Type, b.bound.EdgeTop.X, b.bound.EdgeTop.Y,
			b.bound.EdgeBottom.X, b.bound.EdgeBottom.Y, b.bound.Visible))
	}
}
