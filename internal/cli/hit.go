// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gogpu/compositor/geom"
)

func newHitCmd() *cobra.Command {
	var opts sceneOpts

	cmd := &cobra.Command{
		Use:   "hit [fixture] [x] [y]",
		Short: "Find the layers at a screen point",
		Long:  `hit reports the front-most drawing layer and the front-most touch handler at a point given in device pixels.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			c, err := calculate(cmd.Context(), cmd, args[0], &opts)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printKeyValue(w, "point", fmt.Sprintf("%g,%g", p.X, p.Y))
			printKeyValue(w, "layer", c.layerName(c.scene.Tree.FindLayerAtPoint(p)))
			printKeyValue(w, "touch", c.layerName(c.scene.Tree.FindLayerWithTouchHandlerAtPoint(p)))
			return nil
		},
	}

	bindSceneFlags(cmd, &opts)

	return cmd
}

func parsePoint(xs, ys string) (geom.Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid x %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid y %q: %w", ys, err)
	}
	return geom.Pt(x, y), nil
}
