// Package window runs the gallery in a desktop window.
package window

import (
	"context"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/litescript/ls-dome/internal/dome"
	"github.com/litescript/ls-dome/internal/imagery"
	"github.com/litescript/ls-dome/internal/logging"
	"github.com/litescript/ls-dome/internal/snapshot"
)

const (
	// Initial window size in device independent pixels
	defaultWidth  = 1200
	defaultHeight = 800

	// wheelStep is the spin in degrees per wheel notch.
	wheelStep = 6.0
)

// Options configures the window.
type Options struct {
	Title  string
	Width  int
	Height int
}

// Game adapts a gallery to the ebiten game loop. Layout feeds container
// resizes, Update feeds input and frames, Draw rasterizes the view.
type Game struct {
	ctx      context.Context
	gallery  *dome.Gallery
	renderer *snapshot.Renderer
	log      *logging.Logger
	now      func() time.Time

	size    image.Point
	pointer tracker
	touches []ebiten.TouchID
	frame   *ebiten.Image
}

// NewGame creates a game for the gallery. Images are drawn once the cache holds
// them; loading is left to the caller.
func NewGame(ctx context.Context, g *dome.Gallery, cache *imagery.Cache, log *logging.Logger) *Game {
	if log == nil {
		log = logging.Discard()
	}
	r := snapshot.NewRenderer(cache)
	r.CachedOnly = true
	return &Game{
		ctx:      ctx,
		gallery:  g,
		renderer: r,
		log:      log,
		now:      time.Now,
	}
}

// Update implements ebiten.Game.
func (w *Game) Update() error {
	select {
	case <-w.ctx.Done():
		return ebiten.Termination
	default:
	}

	now := w.now()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		w.gallery.Escape(now)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		activate(w.gallery, now)
	}

	if _, dy := ebiten.Wheel(); dy != 0 && !w.gallery.ScrollLocked() {
		w.gallery.Rotate(dome.Orientation{Spin: dy * wheelStep})
	}

	w.pointer.feed(w.gallery, w.readPointer(), now)
	w.gallery.Tick(now)
	return nil
}

// readPointer samples the first active touch, or the mouse when nothing touches.
func (w *Game) readPointer() sample {
	w.touches = ebiten.AppendTouchIDs(w.touches[:0])
	if len(w.touches) > 0 {
		x, y := ebiten.TouchPosition(w.touches[0])
		return sample{
			Pressed: true,
			Pos:     dome.Point{X: float64(x), Y: float64(y)},
			Pointer: dome.PointerTouch,
		}
	}
	x, y := ebiten.CursorPosition()
	return sample{
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Pos:     dome.Point{X: float64(x), Y: float64(y)},
		Pointer: dome.PointerMouse,
	}
}

// Draw implements ebiten.Game.
func (w *Game) Draw(screen *ebiten.Image) {
	v := w.gallery.View()
	if !v.Metrics.Measured() {
		return
	}
	img := w.renderer.Render(w.ctx, v)

	b := img.Bounds()
	if w.frame == nil || w.frame.Bounds().Size() != b.Size() {
		if w.frame != nil {
			w.frame.Deallocate()
		}
		w.frame = ebiten.NewImage(b.Dx(), b.Dy())
	}
	w.frame.WritePixels(img.Pix)
	screen.DrawImage(w.frame, nil)

	if hint := hintFor(v); hint != "" {
		ebitenutil.DebugPrintAt(screen, hint, 8, screen.Bounds().Dy()-20)
	}
}

// Layout implements ebiten.Game. A changed window size resizes the gallery.
func (w *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	size := image.Pt(outsideWidth, outsideHeight)
	if size != w.size && size.X > 0 && size.Y > 0 {
		w.size = size
		w.gallery.Resize(dome.Size{Width: float64(size.X), Height: float64(size.Y)})
		w.log.Debug("window resized to %dx%d", size.X, size.Y)
	}
	return outsideWidth, outsideHeight
}

// hintFor returns the key help for the current view.
func hintFor(v dome.View) string {
	switch {
	case !v.Focused:
		return "drag to rotate, click to open, q to quit"
	case v.Focus.Phase == dome.PhaseOpen && v.Overlay.HasLink():
		return "enter or click: " + v.Overlay.Tile.LinkURL + "   esc: close"
	case v.Focus.Phase == dome.PhaseOpen:
		return "esc or click outside to close"
	}
	return ""
}

// Run opens the window and blocks until it is closed or ctx is done.
func Run(ctx context.Context, g *dome.Gallery, cache *imagery.Cache, log *logging.Logger, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Title == "" {
		opts.Title = "ls-dome"
	}

	game := NewGame(ctx, g, cache, log)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	defer g.Close()
	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}
