// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proptree

import "strings"

// BlendMode is the separable or non-separable blend applied when a layer
// or surface composites into its target.
type BlendMode uint8

// Blend modes, in CSS mix-blend-mode order.
const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
)

var blendNames = [...]string{
	BlendNormal:     "normal",
	BlendMultiply:   "multiply",
	BlendScreen:     "screen",
	BlendOverlay:    "overlay",
	BlendDarken:     "darken",
	BlendLighten:    "lighten",
	BlendColorDodge: "color-dodge",
	BlendColorBurn:  "color-burn",
	BlendHardLight:  "hard-light",
	BlendSoftLight:  "soft-light",
	BlendDifference: "difference",
	BlendExclusion:  "exclusion",
	BlendHue:        "hue",
	BlendSaturation: "saturation",
	BlendColor:      "color",
	BlendLuminosity: "luminosity",
}

// String returns the CSS keyword for the mode.
func (m BlendMode) String() string {
	if int(m) < len(blendNames) {
		return blendNames[m]
	}
	return "unknown"
}

// ParseBlendMode parses a CSS keyword. The empty string is normal.
func ParseBlendMode(s string) (BlendMode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return BlendNormal, true
	}
	for i, name := range blendNames {
		if name == s {
			return BlendMode(i), true
		}
	}
	return BlendNormal, false
}
