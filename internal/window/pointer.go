package window

import (
	"time"

	"github.com/litescript/ls-dome/internal/dome"
)

// sample is the pointer state read in one frame.
type sample struct {
	Pressed bool
	Pos     dome.Point
	Pointer dome.PointerType
}

// tracker turns per-frame pointer samples into gallery pointer events.
// Ebiten reports button and touch state by polling, the gallery wants edges.
type tracker struct {
	down    bool
	pointer dome.PointerType
	last    dome.Point

	// consumed marks a press spent on the scrim or the overlay; it never
	// becomes a drag.
	consumed bool
}

func (t *tracker) feed(g *dome.Gallery, s sample, now time.Time) {
	ev := dome.PointerEvent{Pointer: s.Pointer, Pos: s.Pos, Time: now}

	switch {
	case s.Pressed && !t.down:
		t.down = true
		t.pointer = s.Pointer
		t.last = s.Pos
		t.consumed = false
		if g.Enlarging() {
			t.consumed = true
			if !g.ScrimClick(s.Pos, now) {
				activate(g, now)
			}
			return
		}
		g.PointerDown(ev)

	case s.Pressed && t.down:
		if s.Pos == t.last || t.consumed {
			return
		}
		t.last = s.Pos
		ev.Pointer = t.pointer
		g.PointerMove(ev)

	case !s.Pressed && t.down:
		t.down = false
		if t.consumed {
			return
		}
		// A lifted touch has no position of its own.
		ev.Pointer = t.pointer
		ev.Pos = t.last
		if t.pointer == dome.PointerMouse {
			ev.Pos = s.Pos
		}
		g.PointerUp(ev)

	default:
		if s.Pointer == dome.PointerMouse && s.Pos != t.last {
			t.last = s.Pos
			g.PointerMove(ev)
		}
	}
}

// activate follows the focused link once the overlay has settled open.
func activate(g *dome.Gallery, now time.Time) bool {
	st, ok := g.Focus()
	if !ok || st.Phase != dome.PhaseOpen {
		return false
	}
	return g.Activate(now)
}
