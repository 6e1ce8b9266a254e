// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package debugview rasterizes a computed render surface layer list into
// an image, for inspecting draw properties by eye.
//
// Each drawing layer is painted as a flat quad through its draw transform
// and clipped by its clip rect. Each surface is drawn into its own image,
// filtered and masked, and then composited into its target with its draw
// transform, opacity and blend mode. Replicas are composited behind the
// original.
//
//	list := compositor.CalculateDrawProperties(in)
//	target := debugview.NewTarget(800, 600)
//	if err := debugview.New().Render(target, list); err != nil {
//		return err
//	}
//	err = target.EncodePNG(w)
package debugview
