// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	want := Config{
		DeviceScaleFactor:          1,
		PageScaleFactor:            1,
		ViewportWidth:              800,
		ViewportHeight:             600,
		CanRenderToSeparateSurface: true,
		Background:                 "#ffffff",
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LAYERDUMP_DEVICE_SCALE_FACTOR", "2")
	t.Setenv("LAYERDUMP_VIEWPORT_WIDTH", "320")
	t.Setenv("LAYERDUMP_CAN_RENDER_TO_SEPARATE_SURFACE", "false")
	t.Setenv("LAYERDUMP_MAX_TEXTURE_SIZE", "4096")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.DeviceScaleFactor != 2 {
		t.Errorf("DeviceScaleFactor = %v, want 2", cfg.DeviceScaleFactor)
	}
	if cfg.ViewportWidth != 320 {
		t.Errorf("ViewportWidth = %d, want 320", cfg.ViewportWidth)
	}
	if cfg.CanRenderToSeparateSurface {
		t.Error("CanRenderToSeparateSurface = true, want false")
	}
	if cfg.MaxTextureSize != 4096 {
		t.Errorf("MaxTextureSize = %d, want 4096", cfg.MaxTextureSize)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"not a number", "LAYERDUMP_VIEWPORT_HEIGHT", "tall"},
		{"zero scale", "LAYERDUMP_DEVICE_SCALE_FACTOR", "0"},
		{"negative page scale", "LAYERDUMP_PAGE_SCALE_FACTOR", "-1"},
		{"negative texture size", "LAYERDUMP_MAX_TEXTURE_SIZE", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
