package dome

// FlipTransform is a translate-then-scale transform with a top-left origin.
type FlipTransform struct {
	TranslateX float64
	TranslateY float64
	ScaleX     float64
	ScaleY     float64
}

// Identity is the transform that leaves a rectangle unchanged.
var Identity = FlipTransform{ScaleX: 1, ScaleY: 1}

// InvertFlip returns the transform that makes target appear at source.
func InvertFlip(source, target Rect) FlipTransform {
	f := FlipTransform{
		TranslateX: source.Left - target.Left,
		TranslateY: source.Top - target.Top,
		ScaleX:     1,
		ScaleY:     1,
	}
	if target.Width > 0 {
		f.ScaleX = source.Width / target.Width
	}
	if target.Height > 0 {
		f.ScaleY = source.Height / target.Height
	}
	return f
}

// Apply returns where r appears under the transform.
func (f FlipTransform) Apply(r Rect) Rect {
	return Rect{
		Left:   r.Left + f.TranslateX,
		Top:    r.Top + f.TranslateY,
		Width:  r.Width * f.ScaleX,
		Height: r.Height * f.ScaleY,
	}
}

func lerpFlip(a, b FlipTransform, t float64) FlipTransform {
	return FlipTransform{
		TranslateX: lerp(a.TranslateX, b.TranslateX, t),
		TranslateY: lerp(a.TranslateY, b.TranslateY, t),
		ScaleX:     lerp(a.ScaleX, b.ScaleX, t),
		ScaleY:     lerp(a.ScaleY, b.ScaleY, t),
	}
}

// OverlayDescriptor is the declarative description of the enlarged tile.
// Renderers draw Tile's image into Visual() with the given opacity and styling.
type OverlayDescriptor struct {
	Tile      PlacedTile
	Rect      Rect
	Transform FlipTransform
	Opacity   float64

	CornerRadius float64
	Grayscale    bool
	Tint         string

	// Mobile is set when the overlay follows the fractional-viewport rule.
	Mobile bool

	// Closing marks the transient element that collapses back onto the tile.
	Closing bool
}

// Visual returns the on-screen rectangle after the transform.
func (o OverlayDescriptor) Visual() Rect {
	return o.Transform.Apply(o.Rect)
}

// HasLink reports whether the overlay offers a link action.
func (o OverlayDescriptor) HasLink() bool {
	return o.Tile.LinkURL != "" && !o.Closing
}
