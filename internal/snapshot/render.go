// Package snapshot rasterizes gallery frames into still images.
package snapshot

import (
	"context"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/litescript/ls-dome/internal/dome"
	"github.com/litescript/ls-dome/internal/imagery"
)

// DefaultBackground is the page color behind the sphere.
var DefaultBackground = color.NRGBA{R: 0x06, G: 0x00, B: 0x10, A: 0xff}

// ScrimOpacity scales the overlay tint drawn behind a focused tile.
const ScrimOpacity = 0.6

// Renderer draws dome views with tile images from a cache.
type Renderer struct {
	Cache      *imagery.Cache
	Background color.NRGBA

	// CachedOnly skips images that are not loaded yet instead of loading them.
	// Interactive frontends set it so a frame never waits on I/O.
	CachedOnly bool

	gray map[string]*image.NRGBA
}

// NewRenderer creates a renderer. A nil cache draws every tile as a flat color.
func NewRenderer(cache *imagery.Cache) *Renderer {
	return &Renderer{
		Cache:      cache,
		Background: DefaultBackground,
		gray:       make(map[string]*image.NRGBA),
	}
}

// Render draws one frame: tiles back to front, then the scrim and the overlay.
func (r *Renderer) Render(ctx context.Context, v dome.View) *image.NRGBA {
	w := int(math.Round(v.Metrics.Size.Width))
	h := int(math.Round(v.Metrics.Size.Height))
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: r.Background}, image.Point{}, draw.Src)

	style := v.Metrics.Style
	for _, tv := range v.Tiles {
		if tv.Hidden {
			continue
		}
		r.drawTile(ctx, canvas, tv.Tile, tv.Placement.Rect, style.TileRadius, style.Grayscale, 1)
	}

	if v.Scrim {
		tint, err := imagery.ParseColor(style.OverlayTint)
		if err == nil && tint.A > 0 {
			tint.A = uint8(float64(tint.A)*ScrimOpacity + 0.5)
			draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: tint}, image.Point{}, draw.Over)
		}
	}

	if v.HasOverlay && v.Overlay.Opacity > 0 {
		o := v.Overlay
		r.drawTile(ctx, canvas, o.Tile, o.Visual(), o.CornerRadius, o.Grayscale, o.Opacity)
	}
	return canvas
}

func (r *Renderer) drawTile(ctx context.Context, dst *image.NRGBA, tile dome.PlacedTile, rect dome.Rect, radius float64, gray bool, opacity float64) {
	dr := toRectangle(rect)
	if dr.Empty() || !dr.Overlaps(dst.Bounds()) {
		return
	}
	mask := &roundedMask{rect: dr, radius: radius, alpha: opacity}
	opts := &draw.Options{DstMask: mask, DstMaskP: image.Point{}}

	src := r.tileImage(ctx, tile, gray)
	if src == nil {
		c := imagery.Placeholder(tile.ImageRef)
		if gray {
			c = imagery.GrayColor(c)
		}
		draw.NearestNeighbor.Scale(dst, dr, &image.Uniform{C: c}, image.Rect(0, 0, 1, 1), draw.Over, opts)
		return
	}
	draw.ApproxBiLinear.Scale(dst, dr, src, src.Bounds(), draw.Over, opts)
}

func (r *Renderer) tileImage(ctx context.Context, tile dome.PlacedTile, gray bool) *image.NRGBA {
	if r.Cache == nil || tile.Blank() {
		return nil
	}
	var e *imagery.Entry
	if r.CachedOnly {
		var ok bool
		if e, ok = r.Cache.Lookup(tile.ImageRef); !ok {
			return nil
		}
	} else {
		e = r.Cache.Get(ctx, tile.ImageRef)
	}
	if e.Thumbnail == nil {
		return nil
	}
	if !gray {
		return e.Thumbnail
	}
	g, ok := r.gray[tile.ImageRef]
	if !ok {
		g = imagery.Grayscale(e.Thumbnail)
		r.gray[tile.ImageRef] = g
	}
	return g
}

func toRectangle(r dome.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.Left)),
		int(math.Round(r.Top)),
		int(math.Round(r.Left+r.Width)),
		int(math.Round(r.Top+r.Height)),
	)
}

// roundedMask is an alpha mask for a rounded rectangle at a uniform opacity.
type roundedMask struct {
	rect   image.Rectangle
	radius float64
	alpha  float64
}

func (m *roundedMask) ColorModel() color.Model { return color.Alpha16Model }

func (m *roundedMask) Bounds() image.Rectangle { return m.rect }

func (m *roundedMask) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(m.rect) {
		return color.Alpha16{}
	}
	a := m.alpha
	if a > 1 {
		a = 1
	}
	rad := math.Min(m.radius, float64(min(m.rect.Dx(), m.rect.Dy()))/2)
	if rad > 0 {
		px, py := float64(x)+0.5, float64(y)+0.5
		cx := clampF(px, float64(m.rect.Min.X)+rad, float64(m.rect.Max.X)-rad)
		cy := clampF(py, float64(m.rect.Min.Y)+rad, float64(m.rect.Max.Y)-rad)
		d := math.Hypot(px-cx, py-cy)
		if d > rad+0.5 {
			return color.Alpha16{}
		}
		if d > rad-0.5 {
			a *= rad + 0.5 - d
		}
	}
	return color.Alpha16{A: uint16(a*0xffff + 0.5)}
}

func clampF(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Min(math.Max(v, lo), hi)
}
