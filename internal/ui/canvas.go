package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-dome/internal/dome"
	"github.com/litescript/ls-dome/internal/imagery"
)

const (
	// CellWidth and CellHeight are the virtual pixels covered by one terminal cell.
	CellWidth  = 8
	CellHeight = 16

	// Glyphs
	glyphHalfUpper = '▀'
	glyphLink      = '↗'
)

// cell is one terminal cell of the canvas.
type cell struct {
	ch rune
	fg color.NRGBA
	bg color.NRGBA
}

// canvas is a grid of cells in virtual pixel space.
type canvas struct {
	width  int
	height int
	cells  [][]cell
}

func newCanvas(width, height int, bg color.NRGBA) *canvas {
	c := &canvas{width: width, height: height}
	c.cells = make([][]cell, height)
	for y := range c.cells {
		c.cells[y] = make([]cell, width)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{ch: ' ', fg: bg, bg: bg}
		}
	}
	return c
}

// cellRect returns the cells whose centers lie inside r.
func cellRect(r dome.Rect) image.Rectangle {
	x0 := int(math.Ceil(r.Left/CellWidth - 0.5))
	y0 := int(math.Ceil(r.Top/CellHeight - 0.5))
	x1 := int(math.Ceil((r.Left+r.Width)/CellWidth - 0.5))
	y1 := int(math.Ceil((r.Top+r.Height)/CellHeight - 0.5))
	return image.Rect(x0, y0, x1, y1)
}

// cellCenter maps a cell to the virtual pixel at its center.
func cellCenter(x, y int) dome.Point {
	return dome.Point{
		X: float64(x)*CellWidth + CellWidth/2,
		Y: float64(y)*CellHeight + CellHeight/2,
	}
}

func (c *canvas) bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// fill paints the background of every cell in r, blending at opacity.
func (c *canvas) fill(r image.Rectangle, col color.NRGBA, opacity float64) {
	r = r.Intersect(c.bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cl := &c.cells[y][x]
			cl.ch = ' '
			cl.bg = imagery.Blend(cl.bg, col, opacity)
			cl.fg = cl.bg
		}
	}
}

// tint blends every cell, glyphs included, toward col.
func (c *canvas) tint(col color.NRGBA, opacity float64) {
	for y := range c.cells {
		for x := range c.cells[y] {
			cl := &c.cells[y][x]
			cl.bg = imagery.Blend(cl.bg, col, opacity)
			cl.fg = imagery.Blend(cl.fg, col, opacity)
		}
	}
}

// image draws img into r with half-block glyphs, two pixels per cell.
func (c *canvas) image(r image.Rectangle, img *image.NRGBA, opacity float64, gray bool) {
	clip := r.Intersect(c.bounds())
	if clip.Empty() || img == nil || img.Bounds().Empty() {
		return
	}
	b := img.Bounds()
	sample := func(fx, fy float64) color.NRGBA {
		px := b.Min.X + int(fx*float64(b.Dx()))
		py := b.Min.Y + int(fy*float64(b.Dy()))
		px = min(max(px, b.Min.X), b.Max.X-1)
		py = min(max(py, b.Min.Y), b.Max.Y-1)
		col := img.NRGBAAt(px, py)
		if gray {
			col = imagery.GrayColor(col)
		}
		return col
	}
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			fx := (float64(x-r.Min.X) + 0.5) / float64(r.Dx())
			top := (float64(y-r.Min.Y) + 0.25) / float64(r.Dy())
			bot := (float64(y-r.Min.Y) + 0.75) / float64(r.Dy())
			cl := &c.cells[y][x]
			cl.ch = glyphHalfUpper
			cl.fg = imagery.Blend(cl.bg, sample(fx, top), opacity)
			cl.bg = imagery.Blend(cl.bg, sample(fx, bot), opacity)
		}
	}
}

// text writes s starting at (x, y), keeping cell backgrounds.
func (c *canvas) text(x, y int, s string, fg color.NRGBA) {
	if y < 0 || y >= c.height {
		return
	}
	for _, r := range s {
		if x >= c.width {
			return
		}
		if x >= 0 {
			c.cells[y][x].ch = r
			c.cells[y][x].fg = fg
		}
		x++
	}
}

// centered writes s centered within r on row y, truncated to fit.
func (c *canvas) centered(r image.Rectangle, y int, s string, fg color.NRGBA) {
	runes := []rune(s)
	if w := r.Dx(); len(runes) > w {
		if w <= 1 {
			return
		}
		runes = append(runes[:w-1], '…')
	}
	c.text(r.Min.X+(r.Dx()-len(runes))/2, y, string(runes), fg)
}

// render converts the canvas to styled text, batching runs of equal style.
func (c *canvas) render() string {
	var b strings.Builder
	for y, row := range c.cells {
		var run strings.Builder
		runStyle := cell{}
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(runStyle.fg))).
				Background(lipgloss.Color(hexColor(runStyle.bg)))
			b.WriteString(style.Render(run.String()))
			run.Reset()
		}
		for x, cl := range row {
			if x > 0 && (cl.fg != runStyle.fg || cl.bg != runStyle.bg) {
				flush()
			}
			runStyle = cell{fg: cl.fg, bg: cl.bg}
			run.WriteRune(cl.ch)
		}
		flush()
		if y < c.height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// hexColor formats a color for lipgloss.
func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// contrast picks a readable glyph color for a background.
func contrast(bg color.NRGBA) color.NRGBA {
	if imagery.GrayColor(bg).R > 140 {
		return color.NRGBA{R: 0x10, G: 0x0c, B: 0x18, A: 0xff}
	}
	return color.NRGBA{R: 0xf0, G: 0xea, B: 0xff, A: 0xff}
}

// brighten lifts a color toward white for hover feedback.
func brighten(c color.NRGBA) color.NRGBA {
	return imagery.Blend(c, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, 0.25)
}
