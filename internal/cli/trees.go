// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/compositor/proptree"
)

// treesOpts holds the flags of the trees command.
type treesOpts struct {
	sceneOpts
	output string // output file, stdout when empty
	svg    bool   // render the DOT source with Graphviz
}

func newTreesCmd() *cobra.Command {
	var opts treesOpts

	cmd := &cobra.Command{
		Use:   "trees [fixture]",
		Short: "Export the property trees as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := calculate(cmd.Context(), cmd, args[0], &opts.sceneOpts)
			if err != nil {
				return err
			}
			out := []byte(proptree.ToDOT(c.scene.Tree.PropertyTrees()))
			if opts.svg {
				out, err = proptree.RenderSVG(cmd.Context(), string(out))
				if err != nil {
					return fmt.Errorf("render svg: %w", err)
				}
			}
			if opts.output == "" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(opts.output, out, 0o644); err != nil {
				return err
			}
			printFile(cmd.OutOrStdout(), opts.output)
			return nil
		},
	}

	bindSceneFlags(cmd, &opts.sceneOpts)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.svg, "svg", false, "render to SVG with Graphviz")

	return cmd
}
