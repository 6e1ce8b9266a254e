// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cli implements the layerdump command-line interface.
//
// layerdump loads a layer-tree fixture (TOML or YAML, see package
// scenefile), runs a draw-properties pass over it and prints, renders or
// exports the result.
//
// # Commands
//
//   - props: print per-layer draw properties and the render surfaces
//   - hit: hit-test a screen point
//   - render: rasterize the surface list into a PNG
//   - trees: export the property trees as DOT or SVG
//
// # Configuration
//
// Calculation defaults come from LAYERDUMP_* environment variables (see
// package config). Values in the fixture override them, and flags
// override both.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The same
// logger receives the compositor's own log records.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"

	"github.com/gogpu/compositor"
)

// newLogger creates a logger writing to w at level, with timestamps
// formatted as "15:04:05.00".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// installLogger routes compositor log records to l.
func installLogger(l *log.Logger) {
	compositor.SetLogger(slog.New(l))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a copy of ctx carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
