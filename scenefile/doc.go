// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package scenefile loads declarative layer tree fixtures.
//
// A fixture lists layers by name. Each layer names its parent; the single
// layer without a parent that is not a mask or replica becomes the root.
// Children keep their declaration order. Fixtures are written in TOML or
// YAML; both use the same keys:
//
//	device_scale_factor = 2
//
//	[viewport]
//	width = 800
//	height = 600
//
//	[[layers]]
//	name = "root"
//	bounds = [800, 600]
//	draws_content = true
//	color = "#ffffff"
//
//	[[layers]]
//	name = "card"
//	parent = "root"
//	position = [40, 40]
//	bounds = [200, 120]
//	opacity = 0.5
//	transform = [{ rotate = 10 }]
//
// [Load] picks the format from the file extension; [Decode] takes it
// explicitly. The result is a [Scene] holding the built
// [compositor.LayerTree] and the calculation inputs the fixture requests.
package scenefile
