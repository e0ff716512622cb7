package dome

import (
	"math"
	"testing"
)

func TestComputeMetrics(t *testing.T) {
	tests := []struct {
		name       string
		size       Size
		mutate     func(*ViewportConfig)
		wantRadius float64
		wantPad    float64
		wantFrame  Rect
	}{
		{
			name:       "wide uses width",
			size:       Size{2000, 1000},
			wantRadius: 1000,
			wantPad:    250,
			wantFrame:  Rect{Left: 750, Top: 250, Width: 500, Height: 500},
		},
		{
			name:       "min radius floor",
			size:       Size{1200, 800},
			wantRadius: 600,
			wantPad:    200,
			wantFrame:  Rect{Left: 400, Top: 200, Width: 400, Height: 400},
		},
		{
			name:       "square uses min dimension",
			size:       Size{1000, 1000},
			mutate:     func(c *ViewportConfig) { c.MinRadius = 0 },
			wantRadius: 500,
			wantPad:    250,
			wantFrame:  Rect{Left: 250, Top: 250, Width: 500, Height: 500},
		},
		{
			name:       "height guard",
			size:       Size{3000, 400},
			mutate:     func(c *ViewportConfig) { c.MinRadius = 0 },
			wantRadius: 540,
			wantPad:    100,
			wantFrame:  Rect{Left: 1400, Top: 100, Width: 200, Height: 200},
		},
		{
			name:       "max radius",
			size:       Size{2000, 1000},
			mutate:     func(c *ViewportConfig) { c.MaxRadius = 700 },
			wantRadius: 700,
			wantPad:    250,
			wantFrame:  Rect{Left: 750, Top: 250, Width: 500, Height: 500},
		},
		{
			name: "fit basis max",
			size: Size{1000, 1200},
			mutate: func(c *ViewportConfig) {
				c.Basis = FitMax
				c.MinRadius = 0
			},
			wantRadius: 600,
			wantPad:    250,
			wantFrame:  Rect{Left: 250, Top: 350, Width: 500, Height: 500},
		},
		{
			name:       "minimum padding",
			size:       Size{20, 20},
			mutate:     func(c *ViewportConfig) { c.MinRadius = 0 },
			wantRadius: 10,
			wantPad:    8,
			wantFrame:  Rect{Left: 8, Top: 8, Width: 4, Height: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig().Viewport
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			m := ComputeMetrics(tt.size, cfg)
			if m.Radius != tt.wantRadius {
				t.Errorf("Radius = %v, want %v", m.Radius, tt.wantRadius)
			}
			if m.Padding != tt.wantPad {
				t.Errorf("Padding = %v, want %v", m.Padding, tt.wantPad)
			}
			if m.Frame != tt.wantFrame {
				t.Errorf("Frame = %+v, want %+v", m.Frame, tt.wantFrame)
			}
			if !m.Measured() {
				t.Error("Measured should be true")
			}
		})
	}
}

func TestComputeMetrics_Style(t *testing.T) {
	cfg := DefaultConfig().Viewport
	m := ComputeMetrics(Size{1200, 800}, cfg)
	want := StyleParams{TileRadius: 30, OverlayRadius: 30, Grayscale: true, OverlayTint: "#060010"}
	if m.Style != want {
		t.Errorf("Style = %+v, want %+v", m.Style, want)
	}
}

func TestParseFitBasis(t *testing.T) {
	for _, b := range []FitBasis{FitAuto, FitMin, FitMax, FitWidth, FitHeight} {
		if got := ParseFitBasis(b.String()); got != b {
			t.Errorf("ParseFitBasis(%q) = %v", b.String(), got)
		}
	}
	if ParseFitBasis("diagonal") != FitAuto {
		t.Error("unknown basis should fall back to auto")
	}
}

func TestProjector_FrontTileIsCentered(t *testing.T) {
	m := ComputeMetrics(Size{1200, 800}, DefaultConfig().Viewport)
	p := Projector{Metrics: m, Segments: 35, Inset: 10}
	tile := PlacedTile{GridSlot: GridSlot{SpanAzimuth: 2, SpanElevation: 2}}

	pr := p.Project(tile, Orientation{}, Orientation{})
	if !pr.Visible {
		t.Fatal("front tile should be visible")
	}
	c := pr.Rect.Center()
	if math.Abs(c.X-600) > 1e-6 || math.Abs(c.Y-400) > 1e-6 {
		t.Errorf("center = %+v, want (600, 400)", c)
	}
	w, h := p.TileSize(tile.GridSlot)
	if math.Abs(pr.Rect.Width-w) > 1e-6 || math.Abs(pr.Rect.Height-h) > 1e-6 {
		t.Errorf("size = %vx%v, want %vx%v", pr.Rect.Width, pr.Rect.Height, w, h)
	}
	if math.Abs(w-(600*3.14/35*2-20)) > 1e-9 {
		t.Errorf("TileSize width = %v", w)
	}
}

func TestProjector_DeltaCancelsBase(t *testing.T) {
	m := ComputeMetrics(Size{1200, 800}, DefaultConfig().Viewport)
	p := Projector{Metrics: m, Segments: 35}
	tile := PlacedTile{
		GridSlot: GridSlot{SpanAzimuth: 2, SpanElevation: 2},
		Base:     Orientation{Tilt: 3, Spin: 30},
	}
	pr := p.Project(tile, Orientation{}, Orientation{Tilt: -3, Spin: -30})
	c := pr.Rect.Center()
	if math.Abs(c.X-600) > 1e-6 || math.Abs(c.Y-400) > 1e-6 {
		t.Errorf("counter-rotated center = %+v, want (600, 400)", c)
	}
}

func TestProjector_BackTilesHidden(t *testing.T) {
	m := ComputeMetrics(Size{1200, 800}, DefaultConfig().Viewport)
	p := Projector{Metrics: m, Segments: 35}
	slot := GridSlot{SpanAzimuth: 2, SpanElevation: 2}
	tiles := []PlacedTile{
		{Index: 0, GridSlot: slot, Base: Orientation{Spin: 20}},
		{Index: 1, GridSlot: slot, Base: Orientation{Spin: 180}},
		{Index: 2, GridSlot: slot},
		{Index: 3, GridSlot: slot, Base: Orientation{Spin: 100}},
	}

	all := p.ProjectAll(tiles, Orientation{}, nil)
	if len(all) != 2 {
		t.Fatalf("ProjectAll returned %d tiles, want 2", len(all))
	}
	if all[0].Index != 0 || all[1].Index != 2 {
		t.Errorf("order = [%d %d], want back to front [0 2]", all[0].Index, all[1].Index)
	}

	if got := p.HitTest(tiles, Orientation{}, Point{X: 600, Y: 400}); got != 2 {
		t.Errorf("HitTest(center) = %d, want 2", got)
	}
	if got := p.HitTest(tiles, Orientation{}, Point{X: 1, Y: 1}); got != -1 {
		t.Errorf("HitTest(corner) = %d, want -1", got)
	}

	// Spinning the sphere by 180 brings tile 1 to the front.
	if got := p.HitTest(tiles, Orientation{Spin: 180}, Point{X: 600, Y: 400}); got != 1 {
		t.Errorf("HitTest after half turn = %d, want 1", got)
	}
}

func TestProjector_Unmeasured(t *testing.T) {
	p := Projector{}
	if pr := p.Project(PlacedTile{Index: 4}, Orientation{}, Orientation{}); pr.Visible || pr.Index != 4 {
		t.Errorf("unmeasured projection = %+v", pr)
	}
}
