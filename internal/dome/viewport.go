package dome

import "math"

// Size is a container content box in pixels.
type Size struct {
	Width  float64
	Height float64
}

// StyleParams are the shared visual parameters published to renderers.
type StyleParams struct {
	TileRadius    float64
	OverlayRadius float64
	Grayscale     bool
	OverlayTint   string
}

// Metrics is the sphere geometry derived from a container size.
type Metrics struct {
	Size    Size
	Radius  float64
	Padding float64

	// Frame is the square viewer frame the overlay enlarges into.
	Frame Rect

	Style StyleParams
}

// Measured reports whether metrics were computed from a real container.
func (m Metrics) Measured() bool {
	return m.Size.Width > 0 && m.Size.Height > 0
}

// ComputeMetrics derives radius, padding and viewer frame for a container size.
func ComputeMetrics(size Size, cfg ViewportConfig) Metrics {
	w := math.Max(1, size.Width)
	h := math.Max(1, size.Height)
	minDim := math.Min(w, h)
	maxDim := math.Max(w, h)

	var basis float64
	switch cfg.Basis {
	case FitMin:
		basis = minDim
	case FitMax:
		basis = maxDim
	case FitWidth:
		basis = w
	case FitHeight:
		basis = h
	default:
		if w/h >= cfg.AutoAspect {
			basis = w
		} else {
			basis = minDim
		}
	}

	radius := basis * cfg.Fit
	if cfg.HeightGuard > 0 {
		radius = math.Min(radius, h*cfg.HeightGuard)
	}
	maxRadius := cfg.MaxRadius
	if maxRadius <= 0 {
		maxRadius = math.Inf(1)
	}
	radius = clamp(radius, cfg.MinRadius, maxRadius)

	pad := math.Max(cfg.MinPadding, math.Round(minDim*cfg.PadFactor))
	side := math.Max(0, minDim-2*pad)

	return Metrics{
		Size:    Size{Width: w, Height: h},
		Radius:  math.Round(radius),
		Padding: pad,
		Frame: Rect{
			Left:   (w - side) / 2,
			Top:    (h - side) / 2,
			Width:  side,
			Height: side,
		},
		Style: StyleParams{
			TileRadius:    cfg.TileRadius,
			OverlayRadius: cfg.OverlayRadius,
			Grayscale:     cfg.Grayscale,
			OverlayTint:   cfg.OverlayTint,
		},
	}
}
