// Package dome implements the interaction core of a dome gallery: tiles placed on a
// virtual sphere, drag rotation with inertia, and a focus transition that enlarges a
// tapped tile into an overlay. It is renderer independent; frontends read View().
package dome

const (
	// DefaultSegments is the azimuth column count used when none is configured.
	DefaultSegments = 35

	// RowsPerColumn is the number of elevation slots in every column.
	RowsPerColumn = 5

	// firstColumnOffset is the azimuth offset of column zero, in slot units.
	firstColumnOffset = -37

	// slotSpan is the width and height of every slot, in slot units.
	slotSpan = 2
)

var (
	evenRows = [RowsPerColumn]int{-4, -2, 0, 2, 4}
	oddRows  = [RowsPerColumn]int{-3, -1, 1, 3, 5}
)

// TileRecord is one externally supplied gallery entry.
type TileRecord struct {
	ImageRef string `json:"image"`
	Caption  string `json:"caption,omitempty"`
	LinkURL  string `json:"link,omitempty"`
}

// GridSlot is a fixed azimuth/elevation position on the sphere.
type GridSlot struct {
	AzimuthIndex   int
	ElevationIndex int
	SpanAzimuth    int
	SpanElevation  int
}

// PlacedTile is a slot bound to the tile record shown in it.
type PlacedTile struct {
	GridSlot
	TileRecord

	// Index is the slot position in the layout, stable across rotation.
	Index int

	// Base is the static orientation of the slot on the sphere.
	Base Orientation
}

// Blank reports whether the slot has no image bound to it.
func (p PlacedTile) Blank() bool {
	return p.ImageRef == ""
}

// Layout is the result of placing a tile pool onto the sphere grid.
type Layout struct {
	Tiles    []PlacedTile
	Segments int

	// Supplied is the number of tile records handed to BuildLayout.
	Supplied int

	// Overflow is set when more tiles were supplied than there are slots.
	Overflow bool
}

// Slots returns the total slot count.
func (l Layout) Slots() int {
	return len(l.Tiles)
}

// Unreachable returns how many supplied tiles can never be shown.
func (l Layout) Unreachable() int {
	if !l.Overflow {
		return 0
	}
	return l.Supplied - len(l.Tiles)
}

// SlotCount returns the number of slots produced for a segment count.
func SlotCount(segments int) int {
	if segments <= 0 {
		segments = DefaultSegments
	}
	return segments * RowsPerColumn
}

// BuildGrid returns the fixed slot grid for a segment count, column by column.
func BuildGrid(segments int) []GridSlot {
	if segments <= 0 {
		segments = DefaultSegments
	}
	slots := make([]GridSlot, 0, segments*RowsPerColumn)
	for c := 0; c < segments; c++ {
		rows := evenRows
		if c%2 == 1 {
			rows = oddRows
		}
		x := firstColumnOffset + c*2
		for _, y := range rows {
			slots = append(slots, GridSlot{
				AzimuthIndex:   x,
				ElevationIndex: y,
				SpanAzimuth:    slotSpan,
				SpanElevation:  slotSpan,
			})
		}
	}
	return slots
}

// BuildLayout fills every slot of the grid from the tile pool.
//
// The pool is repeated cyclically. A single forward pass then swaps any slot whose
// image equals its predecessor with the nearest later slot showing a different image.
// When no such slot exists the duplicate stays in place.
func BuildLayout(tiles []TileRecord, segments int) Layout {
	if segments <= 0 {
		segments = DefaultSegments
	}
	grid := BuildGrid(segments)
	layout := Layout{
		Tiles:    make([]PlacedTile, len(grid)),
		Segments: segments,
		Supplied: len(tiles),
		Overflow: len(tiles) > len(grid),
	}

	used := make([]TileRecord, len(grid))
	if len(tiles) > 0 {
		for i := range used {
			used[i] = tiles[i%len(tiles)]
		}
		dedupeAdjacent(used)
	}

	for i, slot := range grid {
		layout.Tiles[i] = PlacedTile{
			GridSlot:   slot,
			TileRecord: used[i],
			Index:      i,
			Base:       BaseRotation(slot, segments),
		}
	}
	return layout
}

func dedupeAdjacent(used []TileRecord) {
	for i := 1; i < len(used); i++ {
		if used[i].ImageRef != used[i-1].ImageRef {
			continue
		}
		for j := i + 1; j < len(used); j++ {
			if used[j].ImageRef != used[i].ImageRef {
				used[i], used[j] = used[j], used[i]
				break
			}
		}
	}
}

// BaseRotation returns the static orientation of a slot.
func BaseRotation(slot GridSlot, segments int) Orientation {
	if segments <= 0 {
		segments = DefaultSegments
	}
	unit := 360.0 / float64(segments) / 2
	return Orientation{
		Spin: unit * (float64(slot.AzimuthIndex) + float64(slot.SpanAzimuth-1)/2),
		Tilt: unit * (float64(slot.ElevationIndex) - float64(slot.SpanElevation-1)/2),
	}
}
