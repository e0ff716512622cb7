package dome

import (
	"math"
	"time"
)

// Rect is an axis-aligned rectangle in container pixels.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Left+r.Width && p.Y >= r.Top && p.Y < r.Top+r.Height
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// CenteredIn returns a rectangle of the given size centered inside r.
func (r Rect) CenteredIn(width, height float64) Rect {
	return Rect{
		Left:   r.Left + (r.Width-width)/2,
		Top:    r.Top + (r.Height-height)/2,
		Width:  width,
		Height: height,
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpRect(a, b Rect, t float64) Rect {
	return Rect{
		Left:   lerp(a.Left, b.Left, t),
		Top:    lerp(a.Top, b.Top, t),
		Width:  lerp(a.Width, b.Width, t),
		Height: lerp(a.Height, b.Height, t),
	}
}

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

// CubicBezier returns the easing of a CSS cubic-bezier(x1, y1, x2, y2) timing function.
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	bez := func(t, p1, p2 float64) float64 {
		u := 1 - t
		return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
	}
	slope := func(t, p1, p2 float64) float64 {
		u := 1 - t
		return 3*u*u*p1 + 6*u*t*(p2-p1) + 3*t*t*(1-p2)
	}
	return func(x float64) float64 {
		if x <= 0 {
			return 0
		}
		if x >= 1 {
			return 1
		}
		// Newton iterations on x(t), bisection fallback when the slope flattens.
		t := x
		for i := 0; i < 8; i++ {
			dx := bez(t, x1, x2) - x
			if math.Abs(dx) < 1e-6 {
				return bez(t, y1, y2)
			}
			d := slope(t, x1, x2)
			if math.Abs(d) < 1e-6 {
				break
			}
			t -= dx / d
		}
		lo, hi := 0.0, 1.0
		t = x
		for i := 0; i < 30; i++ {
			v := bez(t, x1, x2)
			if math.Abs(v-x) < 1e-6 {
				break
			}
			if v < x {
				lo = t
			} else {
				hi = t
			}
			t = (lo + hi) / 2
		}
		return bez(t, y1, y2)
	}
}

// StandardEasing is the cubic-bezier(0.4, 0, 0.2, 1) curve used by every morph.
var StandardEasing = CubicBezier(0.4, 0, 0.2, 1)

// Tween interpolates a progress value over a fixed duration and reports completion once.
type Tween struct {
	start    time.Time
	duration time.Duration
	ease     Easing
	progress float64
	done     bool
	onDone   func()
}

// NewTween starts a tween at the given time.
func NewTween(start time.Time, duration time.Duration, ease Easing, onDone func()) *Tween {
	if ease == nil {
		ease = StandardEasing
	}
	return &Tween{start: start, duration: duration, ease: ease, onDone: onDone}
}

// Advance updates progress for the frame time. It returns true on the frame that completes.
func (t *Tween) Advance(now time.Time) bool {
	if t.done {
		return false
	}
	linear := 1.0
	if t.duration > 0 {
		linear = float64(now.Sub(t.start)) / float64(t.duration)
	}
	if linear < 0 {
		linear = 0
	}
	if linear >= 1 {
		t.progress = 1
		t.done = true
		if t.onDone != nil {
			t.onDone()
		}
		return true
	}
	t.progress = t.ease(linear)
	return false
}

// Progress returns the eased progress in [0,1].
func (t *Tween) Progress() float64 {
	return t.progress
}

// Done reports whether the tween has completed.
func (t *Tween) Done() bool {
	return t.done
}
