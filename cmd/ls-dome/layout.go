package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-dome/internal/dome"
)

var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)

type layoutOptions struct {
	// All lists every slot; otherwise each image is listed once at its
	// slot closest to the equator.
	All bool

	// Width truncates captions to fit, zero means no limit.
	Width int

	Color bool
}

// writeLayout prints the placed tiles as a table followed by the overflow warning.
func writeLayout(w io.Writer, l dome.Layout, opts layoutOptions) error {
	fmt.Fprintf(w, "%d tiles in %d slots (%d segments)\n\n", l.Supplied, l.Slots(), l.Segments)
	fmt.Fprintf(w, "%5s  %6s  %6s  %8s  %8s  %5s  %s\n", "SLOT", "AZ", "EL", "SPIN", "TILT", "SPAN", "IMAGE")

	rows := l.Tiles
	if !opts.All {
		rows = frontmost(l.Tiles)
	}
	for _, t := range rows {
		label := t.ImageRef
		if t.Blank() {
			label = "(blank)"
		} else if t.Caption != "" {
			label += "  " + t.Caption
		}
		line := fmt.Sprintf("%5d  %6d  %6d  %8.2f  %8.2f  %2dx%-2d  %s",
			t.Index, t.AzimuthIndex, t.ElevationIndex, t.Base.Spin, t.Base.Tilt,
			t.SpanAzimuth, t.SpanElevation, label)
		if opts.Width > 0 && len(line) > opts.Width {
			line = line[:opts.Width]
		}
		fmt.Fprintln(w, line)
	}

	var warnings []string
	if n := l.Unreachable(); n > 0 {
		warnings = append(warnings, fmt.Sprintf("warning: %d tiles will never be shown", n))
	}
	if l.Supplied == 0 {
		warnings = append(warnings, "warning: no images supplied, every slot is blank")
	}
	if len(warnings) > 0 {
		msg := strings.Join(warnings, "\n")
		if opts.Color {
			msg = warnStyle.Render(msg)
		}
		_, err := fmt.Fprintf(w, "\n%s\n", msg)
		return err
	}
	return nil
}

// frontmost keeps one slot per image, the one closest to the equator.
func frontmost(tiles []dome.PlacedTile) []dome.PlacedTile {
	best := make(map[string]int)
	var order []string
	for i, t := range tiles {
		if t.Blank() {
			continue
		}
		j, ok := best[t.ImageRef]
		if !ok {
			order = append(order, t.ImageRef)
			best[t.ImageRef] = i
			continue
		}
		if abs(t.Base.Tilt) < abs(tiles[j].Base.Tilt) {
			best[t.ImageRef] = i
		}
	}
	out := make([]dome.PlacedTile, 0, len(order))
	for _, ref := range order {
		out = append(out, tiles[best[ref]])
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
