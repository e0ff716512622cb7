package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-dome/internal/dome"
	"github.com/litescript/ls-dome/internal/imagery"
)

const (
	// Keyboard rotation step in degrees
	nudgeSpin = 15.0
	nudgeTilt = 2.5

	// Spring tuning for keyboard rotation
	springFPS       = 60
	springFrequency = 6.0
	springDamping   = 1.0

	// settleEpsilon is how close the spring must get before it stops driving the sphere.
	settleEpsilon = 0.05

	// scrimOpacity scales the overlay tint behind a focused tile.
	scrimOpacity = 0.6
)

var (
	colorBackground = color.NRGBA{R: 0x06, G: 0x00, B: 0x10, A: 0xff}
	colorCaption    = color.NRGBA{R: 0xd0, G: 0xc8, B: 0xff, A: 0xff}
	colorLink       = color.NRGBA{R: 0x9d, G: 0x4e, B: 0xdd, A: 0xff}
)

// DomeViewModel renders the gallery sphere into terminal cells and eases
// keyboard rotation with a spring.
type DomeViewModel struct {
	gallery *dome.Gallery
	cache   *imagery.Cache

	width  int
	height int

	spring  harmonica.Spring
	spin    float64
	spinVel float64
	tilt    float64
	tiltVel float64
	target  dome.Orientation
	easing  bool
}

// NewDomeViewModel creates a dome view for a gallery.
func NewDomeViewModel(g *dome.Gallery, cache *imagery.Cache) DomeViewModel {
	return DomeViewModel{
		gallery: g,
		cache:   cache,
		spring:  harmonica.NewSpring(harmonica.FPS(springFPS), springFrequency, springDamping),
	}
}

// SetSize updates the canvas size in cells and resizes the gallery to match.
func (m DomeViewModel) SetSize(width, height int) DomeViewModel {
	m.width = max(0, width)
	m.height = max(0, height)
	if m.width > 0 && m.height > 0 {
		m.gallery.Resize(dome.Size{
			Width:  float64(m.width * CellWidth),
			Height: float64(m.height * CellHeight),
		})
	}
	return m
}

// Nudge moves the rotation target; the spring eases the sphere toward it.
func (m DomeViewModel) Nudge(delta dome.Orientation) DomeViewModel {
	if m.gallery.Enlarging() || m.gallery.Dragging() {
		return m
	}
	if !m.easing {
		cur := m.gallery.Rotation()
		m.spin, m.tilt = cur.Spin, cur.Tilt
		m.spinVel, m.tiltVel = 0, 0
		m.target = cur
	}
	maxTilt := m.gallery.Config().Gesture.MaxTilt
	m.target = m.target.Add(delta)
	m.target.Tilt = min(max(m.target.Tilt, -maxTilt), maxTilt)
	m.easing = true
	return m
}

// Settle stops the spring where it is, leaving the sphere in place.
func (m DomeViewModel) Settle() DomeViewModel {
	m.easing = false
	m.spinVel, m.tiltVel = 0, 0
	return m
}

// Easing reports whether the spring is still moving the sphere.
func (m DomeViewModel) Easing() bool {
	return m.easing
}

// Frame advances the spring and the gallery by one frame.
func (m DomeViewModel) Frame(now time.Time) DomeViewModel {
	if m.easing {
		if m.gallery.Dragging() || m.gallery.Enlarging() {
			m.easing = false
		} else {
			m.spin, m.spinVel = m.spring.Update(m.spin, m.spinVel, m.target.Spin)
			m.tilt, m.tiltVel = m.spring.Update(m.tilt, m.tiltVel, m.target.Tilt)
			if abs(m.spin-m.target.Spin) < settleEpsilon && abs(m.tilt-m.target.Tilt) < settleEpsilon &&
				abs(m.spinVel) < settleEpsilon && abs(m.tiltVel) < settleEpsilon {
				m.spin, m.tilt = m.target.Spin, m.target.Tilt
				m.easing = false
			}
			// Spin is not wrapped here; SetRotation normalizes the sphere itself.
			m.gallery.SetRotation(dome.Orientation{Spin: m.spin, Tilt: m.tilt})
		}
	}
	m.gallery.Tick(now)
	return m
}

// View renders the sphere canvas.
func (m DomeViewModel) View() string {
	if m.width < 10 || m.height < 5 {
		return "Dome view requires larger terminal"
	}
	return m.renderCanvas(m.gallery.View()).render()
}

func (m DomeViewModel) renderCanvas(v dome.View) *canvas {
	c := newCanvas(m.width, m.height, colorBackground)
	style := v.Metrics.Style

	for _, tv := range v.Tiles {
		if tv.Hidden {
			continue
		}
		r := cellRect(tv.Placement.Rect)
		col := m.tileColor(tv.Tile, style.Grayscale)
		if tv.Hovered {
			col = brighten(col)
		}
		c.fill(r, col, 1)
		if r.Dx() >= 1 && r.Dy() >= 1 {
			if ch := initial(tv.Tile.Caption); ch != 0 {
				c.centered(r, r.Min.Y+r.Dy()/2, string(ch), contrast(col))
			}
		}
	}

	if v.Scrim {
		if tint, err := imagery.ParseColor(style.OverlayTint); err == nil && tint.A > 0 {
			c.tint(tint, float64(tint.A)/255*scrimOpacity)
		}
	}

	if v.HasOverlay && v.Overlay.Opacity > 0 {
		m.renderOverlay(c, v.Overlay)
	}
	return c
}

func (m DomeViewModel) renderOverlay(c *canvas, o dome.OverlayDescriptor) {
	r := cellRect(o.Visual())
	if r.Empty() {
		return
	}
	col := m.tileColor(o.Tile, o.Grayscale)
	c.fill(r, col, o.Opacity)

	// Reserve the last rows for the caption and link.
	footer := 0
	if o.Tile.Caption != "" {
		footer++
	}
	if o.HasLink() {
		footer++
	}
	img := r
	if r.Dy() > footer+1 {
		img.Max.Y -= footer
	}
	if e := m.entry(o.Tile); e != nil && e.Thumbnail != nil {
		c.image(img, e.Thumbnail, o.Opacity, o.Grayscale)
	}

	if o.Opacity < 1 || o.Closing {
		return
	}
	y := img.Max.Y
	if o.Tile.Caption != "" {
		c.fill(rowOf(r, y), colorBackground, 0.7)
		c.centered(r, y, o.Tile.Caption, colorCaption)
		y++
	}
	if o.HasLink() {
		c.fill(rowOf(r, y), colorBackground, 0.7)
		c.centered(r, y, string(glyphLink)+" Preview", colorLink)
	}
}

func (m DomeViewModel) entry(tile dome.PlacedTile) *imagery.Entry {
	if m.cache == nil || tile.Blank() {
		return nil
	}
	e, ok := m.cache.Lookup(tile.ImageRef)
	if !ok {
		return nil
	}
	return e
}

func (m DomeViewModel) tileColor(tile dome.PlacedTile, gray bool) color.NRGBA {
	var col color.NRGBA
	if e := m.entry(tile); e != nil {
		col = e.Color()
	} else {
		col = imagery.Placeholder(tile.ImageRef)
	}
	if gray {
		col = imagery.GrayColor(col)
	}
	return col
}

// Status returns the one-line rotation and focus summary.
func (m DomeViewModel) Status() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#d0c8ff"))

	rot := m.gallery.Rotation()
	parts := []string{
		fmt.Sprintf("spin %6.1f°", rot.Spin),
		fmt.Sprintf("tilt %4.1f°", rot.Tilt),
	}
	layout := m.gallery.Layout()
	parts = append(parts, fmt.Sprintf("%d slots", layout.Slots()))
	if layout.Overflow {
		parts = append(parts, fmt.Sprintf("%d unreachable", layout.Unreachable()))
	}

	var focus string
	if st, ok := m.gallery.Focus(); ok && st.Tile < len(layout.Tiles) {
		label := tileLabel(layout.Tiles[st.Tile])
		focus = accentStyle.Render(fmt.Sprintf("%s: %s", strings.ToLower(st.Phase.String()), label))
	} else if h := m.gallery.Hovered(); h >= 0 && h < len(layout.Tiles) {
		focus = dimStyle.Render("hover: " + tileLabel(layout.Tiles[h]))
	}

	line := dimStyle.Render(strings.Join(parts, " · "))
	if focus != "" {
		line += "  " + focus
	}
	return line
}

// Center returns the canvas center in virtual pixels.
func (m DomeViewModel) Center() dome.Point {
	return dome.Point{
		X: float64(m.width*CellWidth) / 2,
		Y: float64(m.height*CellHeight) / 2,
	}
}

// CanvasPoint maps a cell inside the canvas to virtual pixels.
func (m DomeViewModel) CanvasPoint(x, y int) (dome.Point, bool) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return dome.Point{}, false
	}
	return cellCenter(x, y), true
}

func tileLabel(t dome.PlacedTile) string {
	switch {
	case t.Caption != "":
		return t.Caption
	case t.Blank():
		return "(empty)"
	}
	return t.ImageRef
}

func initial(caption string) rune {
	for _, r := range caption {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
	}
	return 0
}

func rowOf(r image.Rectangle, y int) image.Rectangle {
	return image.Rect(r.Min.X, y, r.Max.X, y+1)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
