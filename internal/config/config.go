// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads layerdump defaults from the environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, as in
// LAYERDUMP_DEVICE_SCALE_FACTOR.
const Prefix = "layerdump"

// Config holds defaults for calculation inputs. Scene files and command
// line flags take precedence over it.
type Config struct {
	DeviceScaleFactor          float64 `envconfig:"DEVICE_SCALE_FACTOR" default:"1"`
	PageScaleFactor            float64 `envconfig:"PAGE_SCALE_FACTOR" default:"1"`
	ViewportWidth              int     `envconfig:"VIEWPORT_WIDTH" default:"800"`
	ViewportHeight             int     `envconfig:"VIEWPORT_HEIGHT" default:"600"`
	CanRenderToSeparateSurface bool    `envconfig:"CAN_RENDER_TO_SEPARATE_SURFACE" default:"true"`
	MaxTextureSize             int     `envconfig:"MAX_TEXTURE_SIZE" default:"0"`
	Background                 string  `envconfig:"BACKGROUND" default:"#ffffff"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports values the calculation cannot use.
func (c *Config) Validate() error {
	if c.DeviceScaleFactor <= 0 {
		return fmt.Errorf("config: device scale factor %v must be positive", c.DeviceScaleFactor)
	}
	if c.PageScaleFactor <= 0 {
		return fmt.Errorf("config: page scale factor %v must be positive", c.PageScaleFactor)
	}
	if c.ViewportWidth < 0 || c.ViewportHeight < 0 {
		return fmt.Errorf("config: negative viewport %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.MaxTextureSize < 0 {
		return fmt.Errorf("config: negative max texture size %d", c.MaxTextureSize)
	}
	return nil
}
