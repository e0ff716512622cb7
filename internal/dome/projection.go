package dome

import (
	"math"
	"sort"
)

// circumferenceFactor approximates pi the way tile sizes are derived from the radius.
const circumferenceFactor = 3.14

// Projected is a tile's approximate on-screen placement.
type Projected struct {
	Index   int
	Rect    Rect
	Depth   float64 // distance toward the viewer from the sphere center plane
	Visible bool
}

// Projector approximates the on-screen placement of sphere tiles.
//
// The sphere is pushed back by its radius and viewed with a perspective distance of
// twice the radius, so a tile rotated to face the viewer lands centered at scale 1.
type Projector struct {
	Metrics  Metrics
	Segments int
	Inset    float64
}

// TileSize returns the unprojected size of a slot's image area.
func (p Projector) TileSize(slot GridSlot) (float64, float64) {
	segments := p.Segments
	if segments <= 0 {
		segments = DefaultSegments
	}
	unit := p.Metrics.Radius * circumferenceFactor / float64(segments)
	w := unit*float64(slot.SpanAzimuth) - 2*p.Inset
	h := unit*float64(slot.SpanElevation) - 2*p.Inset
	return math.Max(0, w), math.Max(0, h)
}

// Project places a tile for the sphere rotation plus an optional per-tile delta.
func (p Projector) Project(tile PlacedTile, rot, delta Orientation) Projected {
	r := p.Metrics.Radius
	if r <= 0 || !p.Metrics.Measured() {
		return Projected{Index: tile.Index}
	}

	itemX := radians(tile.Base.Tilt + delta.Tilt)
	yaw := radians(rot.Spin + tile.Base.Spin + delta.Spin)
	tilt := radians(rot.Tilt)

	x := r * math.Cos(itemX) * math.Sin(yaw)
	y := -r * math.Sin(itemX)
	z := r * math.Cos(itemX) * math.Cos(yaw)

	yt := y*math.Cos(tilt) - z*math.Sin(tilt)
	zt := y*math.Sin(tilt) + z*math.Cos(tilt)

	d := 2 * r
	scale := d / (d - (zt - r))

	// Foreshortening of the tile's own axes.
	fx := math.Abs(math.Cos(yaw))
	fy := math.Abs(math.Cos(itemX)*math.Cos(tilt) - math.Sin(itemX)*math.Cos(yaw)*math.Sin(tilt))

	w, h := p.TileSize(tile.GridSlot)
	pw := w * fx * scale
	ph := h * fy * scale

	cx := p.Metrics.Size.Width/2 + x*scale
	cy := p.Metrics.Size.Height/2 + yt*scale

	return Projected{
		Index:   tile.Index,
		Rect:    Rect{Left: cx - pw/2, Top: cy - ph/2, Width: pw, Height: ph},
		Depth:   zt,
		Visible: zt > 0 && pw > 0 && ph > 0,
	}
}

// ProjectAll projects every visible tile, ordered back to front.
// Tiles with a delta in deltas use it instead of the zero delta.
func (p Projector) ProjectAll(tiles []PlacedTile, rot Orientation, deltas map[int]Orientation) []Projected {
	out := make([]Projected, 0, len(tiles)/2)
	for _, t := range tiles {
		pr := p.Project(t, rot, deltas[t.Index])
		if pr.Visible {
			out = append(out, pr)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Depth < out[j].Depth
	})
	return out
}

// HitTest returns the front-most visible tile containing the point, or -1.
func (p Projector) HitTest(tiles []PlacedTile, rot Orientation, pt Point) int {
	best := -1
	bestDepth := math.Inf(-1)
	for _, t := range tiles {
		pr := p.Project(t, rot, Orientation{})
		if !pr.Visible || !pr.Rect.Contains(pt) {
			continue
		}
		if pr.Depth > bestDepth {
			best = t.Index
			bestDepth = pr.Depth
		}
	}
	return best
}
