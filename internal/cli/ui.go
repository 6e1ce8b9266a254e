// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"fmt"
	"image"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gogpu/compositor/geom"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleValue  = lipgloss.NewStyle().Foreground(colorWhite)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
)

const iconArrow = "→"

// printTitle writes a section heading.
func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, styleTitle.Render(title))
}

// printKeyValue writes a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+styleValue.Render(value))
}

// printFile writes an output file line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

// printTable writes rows under headers as a rounded table.
func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			return styleCell
		})
	fmt.Fprintln(w, t.Render())
}

// formatRect formats r as "x,y wxh".
func formatRect(r image.Rectangle) string {
	return fmt.Sprintf("%d,%d %dx%d", r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

// formatClip formats a clip rect, or "-" when it does not apply.
func formatClip(r image.Rectangle, clipped bool) string {
	if !clipped {
		return "-"
	}
	return formatRect(r)
}

// formatTransform formats t compactly: identity, a translation, a 2-D
// matrix, or the full matrix.
func formatTransform(t geom.Transform) string {
	a := t.ToAffine()
	switch {
	case t.IsIdentity():
		return "identity"
	case t.IsIdentityOrTranslation() && t.IsFlat():
		return fmt.Sprintf("translate(%s, %s)", num(a[2]), num(a[5]))
	case t.IsFlat() && !t.HasPerspective():
		return fmt.Sprintf("matrix(%s, %s, %s, %s, %s, %s)",
			num(a[0]), num(a[3]), num(a[1]), num(a[4]), num(a[2]), num(a[5]))
	}
	return t.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
