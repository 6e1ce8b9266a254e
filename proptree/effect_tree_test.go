// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proptree

import (
	"math"
	"testing"
)

func TestEffectTreeOpacity(t *testing.T) {
	var et EffectTree
	root := et.Insert(NoNode, 1, EffectNode{Opacity: 1, HasRenderSurface: true})
	half := et.Insert(root, 2, EffectNode{Opacity: 0.5})
	surface := et.Insert(half, 3, EffectNode{Opacity: 0.5, HasRenderSurface: true})
	inner := et.Insert(surface, 4, EffectNode{Opacity: 0.5})
	et.Update()

	tests := []struct {
		name                  string
		id                    int
		screen, draw, surface float64
		target                int
	}{
		{"root", root, 1, 1, 1, root},
		{"half", half, 0.5, 0.5, 0.5, root},
		{"surface", surface, 0.25, 1, 0.25, root},
		{"inner", inner, 0.125, 0.5, 0.5, surface},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := et.Node(tt.id).Data
			if math.Abs(d.ScreenSpaceOpacity-tt.screen) > 1e-12 {
				t.Errorf("ScreenSpaceOpacity = %v, want %v", d.ScreenSpaceOpacity, tt.screen)
			}
			if math.Abs(d.DrawOpacity-tt.draw) > 1e-12 {
				t.Errorf("DrawOpacity = %v, want %v", d.DrawOpacity, tt.draw)
			}
			if math.Abs(d.SurfaceDrawOpacity-tt.surface) > 1e-12 {
				t.Errorf("SurfaceDrawOpacity = %v, want %v", d.SurfaceDrawOpacity, tt.surface)
			}
			if d.TargetID != tt.target {
				t.Errorf("TargetID = %d, want %d", d.TargetID, tt.target)
			}
		})
	}
}

func TestEffectTreeIsDrawn(t *testing.T) {
	var et EffectTree
	root := et.Insert(NoNode, 1, EffectNode{Opacity: 1, HasRenderSurface: true})
	hidden := et.Insert(root, 2, EffectNode{Opacity: 1, IsHidden: true})
	below := et.Insert(hidden, 3, EffectNode{Opacity: 1})
	copied := et.Insert(hidden, 4, EffectNode{Opacity: 1, HasCopyRequest: true})
	et.Update()

	if !et.Node(root).Data.IsDrawn {
		t.Error("root should be drawn")
	}
	if et.Node(hidden).Data.IsDrawn || et.Node(below).Data.IsDrawn {
		t.Error("hidden subtree should not be drawn")
	}
	if !et.Node(copied).Data.IsDrawn {
		t.Error("copy request should force drawing")
	}
}
