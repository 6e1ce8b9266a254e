// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proptree

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT renders the three trees as a Graphviz digraph with one cluster per
// tree. Node labels carry the owner layer id and the main computed values.
func ToDOT(p *PropertyTrees) string {
	var buf bytes.Buffer
	buf.WriteString("digraph PropertyTrees {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=monospace, fontsize=10];\n")

	buf.WriteString("\n  subgraph cluster_transform {\n    label=\"transform\";\n")
	for _, n := range p.Transform.Nodes() {
		d := n.Data
		label := fmt.Sprintf("t%d owner=%d\ntarget=%d", n.ID, n.OwnerID, d.ContentTargetID)
		if d.HasRenderSurface {
			label += fmt.Sprintf("\nsurface scale=%g,%g", d.SublayerScale.X, d.SublayerScale.Y)
		}
		if !d.LocalIsInvertible {
			label += "\nsingular"
		}
		fill := "white"
		if d.HasRenderSurface {
			fill = "lightblue"
		}
		fmt.Fprintf(&buf, "    \"t%d\" [label=%q, fillcolor=%s];\n", n.ID, label, fill)
	}
	writeEdges(&buf, "t", p.Transform.Nodes())
	buf.WriteString("  }\n")

	buf.WriteString("\n  subgraph cluster_clip {\n    label=\"clip\";\n")
	for _, n := range p.Clip.Nodes() {
		d := n.Data
		label := fmt.Sprintf("c%d owner=%d\ntransform=%d", n.ID, n.OwnerID, d.TransformID)
		switch {
		case d.IsClipped:
			label += "\nclip=" + d.CombinedClip.String()
		default:
			label += "\nunclipped"
		}
		if d.ResetsClip {
			label += "\nresets"
		}
		if d.Passthrough() {
			label += "\npassthrough"
		}
		fmt.Fprintf(&buf, "    \"c%d\" [label=%q];\n", n.ID, label)
	}
	writeEdges(&buf, "c", p.Clip.Nodes())
	buf.WriteString("  }\n")

	buf.WriteString("\n  subgraph cluster_effect {\n    label=\"effect\";\n")
	for _, n := range p.Effect.Nodes() {
		d := n.Data
		label := fmt.Sprintf("e%d owner=%d\nopacity=%g draw=%g", n.ID, n.OwnerID, d.Opacity, d.DrawOpacity)
		if d.BlendMode != BlendNormal {
			label += "\nblend=" + d.BlendMode.String()
		}
		if !d.IsDrawn {
			label += "\nhidden"
		}
		fill := "white"
		if d.HasRenderSurface {
			fill = "lightblue"
		}
		fmt.Fprintf(&buf, "    \"e%d\" [label=%q, fillcolor=%s];\n", n.ID, label, fill)
	}
	writeEdges(&buf, "e", p.Effect.Nodes())
	buf.WriteString("  }\n")

	buf.WriteString("}\n")
	return buf.String()
}

func writeEdges[T any](buf *bytes.Buffer, prefix string, nodes []Node[T]) {
	for _, n := range nodes {
		if n.ParentID != NoNode {
			fmt.Fprintf(buf, "    \"%s%d\" -> \"%s%d\";\n", prefix, n.ParentID, prefix, n.ID)
		}
	}
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
