package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-dome/internal/dome"
)

// frameStep is the simulated frame interval used to settle animations.
const frameStep = 16 * time.Millisecond

// maxSettleFrames bounds how long Capture waits for a transition to finish.
const maxSettleFrames = 1000

// Shot describes the frame to capture.
type Shot struct {
	Size     dome.Size
	Rotation dome.Orientation

	// Drag is a scripted pointer drag from the frame center, applied after
	// Rotation. Inertia from the release runs to rest before capture.
	Drag dome.Point

	// Focus is the tile index to enlarge, or -1 for none.
	Focus int

	// Progress stops the enlarge transition part way, in [0,1). Zero or one
	// captures the settled overlay.
	Progress float64
}

// ErrNotFocusable is returned when the requested tile cannot be opened.
var ErrNotFocusable = errors.New("snapshot: tile cannot be focused")

// Capture drives g to the requested frame on a simulated clock and returns its view.
func Capture(g *dome.Gallery, s Shot) (dome.View, error) {
	if s.Size.Width <= 0 || s.Size.Height <= 0 {
		return dome.View{}, fmt.Errorf("snapshot: invalid size %.0fx%.0f", s.Size.Width, s.Size.Height)
	}
	g.Resize(s.Size)
	g.SetRotation(s.Rotation)

	now := time.Unix(0, 0)
	if s.Drag != (dome.Point{}) {
		now = drag(g, s.Size, s.Drag, now)
	}
	if s.Focus < 0 {
		return g.View(), nil
	}

	if !g.Open(s.Focus, now) {
		return g.View(), fmt.Errorf("%w: %d", ErrNotFocusable, s.Focus)
	}

	var stopAt time.Time
	if s.Progress > 0 && s.Progress < 1 {
		stopAt = now.Add(time.Duration(float64(g.Config().Focus.Duration) * s.Progress))
	}
	for i := 0; i < maxSettleFrames && g.Animating(); i++ {
		next := now.Add(frameStep)
		if !stopAt.IsZero() && !next.Before(stopAt) {
			g.Tick(stopAt)
			break
		}
		now = next
		g.Tick(now)
	}
	return g.View(), nil
}

// dragSteps is the number of pointer moves in a scripted drag.
const dragSteps = 10

// drag plays a mouse drag by delta from the frame center and settles any inertia.
// It returns the simulated clock after the drag.
func drag(g *dome.Gallery, size dome.Size, delta dome.Point, now time.Time) time.Time {
	start := dome.Point{X: size.Width / 2, Y: size.Height / 2}
	at := func(i int) dome.PointerEvent {
		f := float64(i) / dragSteps
		return dome.PointerEvent{
			Pos:     dome.Point{X: start.X + delta.X*f, Y: start.Y + delta.Y*f},
			Time:    now.Add(time.Duration(i) * frameStep),
			Pointer: dome.PointerMouse,
		}
	}
	g.PointerDown(at(0))
	for i := 1; i <= dragSteps; i++ {
		g.PointerMove(at(i))
	}
	g.PointerUp(at(dragSteps))

	now = now.Add(dragSteps * frameStep)
	for i := 0; i < maxSettleFrames && g.Animating(); i++ {
		now = now.Add(frameStep)
		g.Tick(now)
	}
	// Clear the tap cancellation window of the release.
	return now.Add(time.Second)
}
