package dome

import (
	"math"
	"time"
)

// PointerType distinguishes input devices; touch uses a wider tap radius.
type PointerType int

const (
	PointerMouse PointerType = iota
	PointerPen
	PointerTouch
)

// String returns the pointer type name.
func (p PointerType) String() string {
	switch p {
	case PointerPen:
		return "pen"
	case PointerTouch:
		return "touch"
	default:
		return "mouse"
	}
}

// Point is a position in container pixels.
type Point struct {
	X, Y float64
}

// PointerEvent is one sample of a pointer gesture.
type PointerEvent struct {
	Pointer PointerType
	Pos     Point
	Time    time.Time
}

// GestureSession is the transient state of one drag gesture.
type GestureSession struct {
	Pointer       PointerType
	Start         Point
	StartRotation Orientation
	Moved         bool

	// Candidate is the slot under the pointer at drag start, or -1.
	Candidate int

	samples []PointerEvent
}

// Release is the classified outcome of a finished gesture.
type Release struct {
	Tap       bool
	Moved     bool
	Candidate int
	Pointer   PointerType

	// Displacement is the total pointer movement since the drag started.
	Displacement Point

	// VX and VY are the release velocity in pixels per millisecond.
	VX, VY float64
}

// DragController maps a pointer stream onto sphere rotation.
type DragController struct {
	cfg     GestureConfig
	session *GestureSession
}

// NewDragController creates a controller for the gesture configuration.
func NewDragController(cfg GestureConfig) *DragController {
	return &DragController{cfg: cfg}
}

// Active reports whether a gesture is in progress.
func (d *DragController) Active() bool {
	return d.session != nil
}

// Session returns the active gesture, or nil.
func (d *DragController) Session() *GestureSession {
	return d.session
}

// Begin starts a gesture from the current rotation.
func (d *DragController) Begin(ev PointerEvent, rot Orientation, candidate int) {
	d.session = &GestureSession{
		Pointer:       ev.Pointer,
		Start:         ev.Pos,
		StartRotation: rot,
		Candidate:     candidate,
		samples:       []PointerEvent{ev},
	}
}

// Move returns the rotation for the pointer position. The spin is left unwrapped so
// the sphere turns continuously during the gesture.
func (d *DragController) Move(ev PointerEvent) (Orientation, bool) {
	s := d.session
	if s == nil {
		return Orientation{}, false
	}
	dx := ev.Pos.X - s.Start.X
	dy := ev.Pos.Y - s.Start.Y
	if !s.Moved && dx*dx+dy*dy > d.cfg.MoveThreshold*d.cfg.MoveThreshold {
		s.Moved = true
	}
	d.record(s, ev)
	return d.rotationFor(s, dx, dy), true
}

func (d *DragController) rotationFor(s *GestureSession, dx, dy float64) Orientation {
	sens := d.cfg.sensitivity()
	return Orientation{
		Tilt: clamp(s.StartRotation.Tilt-dy/sens, -d.cfg.MaxTilt, d.cfg.MaxTilt),
		Spin: s.StartRotation.Spin + dx/sens,
	}
}

// End classifies the gesture and clears the session.
func (d *DragController) End(ev PointerEvent) (Release, Orientation, bool) {
	s := d.session
	if s == nil {
		return Release{Candidate: -1}, Orientation{}, false
	}
	d.session = nil

	d.record(s, ev)
	dx := ev.Pos.X - s.Start.X
	dy := ev.Pos.Y - s.Start.Y
	if !s.Moved && dx*dx+dy*dy > d.cfg.MoveThreshold*d.cfg.MoveThreshold {
		s.Moved = true
	}
	thresh := d.cfg.TapThreshold(s.Pointer)
	rel := Release{
		Tap:          dx*dx+dy*dy <= thresh*thresh,
		Moved:        s.Moved,
		Candidate:    s.Candidate,
		Pointer:      s.Pointer,
		Displacement: Point{X: dx, Y: dy},
	}

	rot := d.rotationFor(s, dx, dy)

	if rel.Tap {
		return rel, rot, true
	}

	rel.VX, rel.VY = velocity(s.samples, d.cfg.VelocityWindow)
	if math.Abs(rel.VX) < d.cfg.NegligibleVelocity && math.Abs(rel.VY) < d.cfg.NegligibleVelocity {
		sens := d.cfg.sensitivity()
		rel.VX = dx / sens * d.cfg.FallbackVelocityScale
		rel.VY = dy / sens * d.cfg.FallbackVelocityScale
	}
	return rel, rot, true
}

// Cancel drops the gesture without classifying it.
func (d *DragController) Cancel() {
	d.session = nil
}

func (d *DragController) record(s *GestureSession, ev PointerEvent) {
	s.samples = append(s.samples, ev)
	if ev.Time.IsZero() || d.cfg.VelocityWindow <= 0 {
		return
	}
	cutoff := ev.Time.Add(-d.cfg.VelocityWindow)
	keep := 0
	for keep < len(s.samples)-2 && s.samples[keep].Time.Before(cutoff) {
		keep++
	}
	s.samples = s.samples[keep:]
}

// velocity estimates pixels per millisecond over the samples inside the window.
func velocity(samples []PointerEvent, window time.Duration) (float64, float64) {
	if len(samples) < 2 {
		return 0, 0
	}
	last := samples[len(samples)-1]
	first := samples[0]
	for _, s := range samples {
		if window <= 0 || !s.Time.Before(last.Time.Add(-window)) {
			first = s
			break
		}
	}
	dt := float64(last.Time.Sub(first.Time)) / float64(time.Millisecond)
	if dt <= 0 {
		return 0, 0
	}
	return (last.Pos.X - first.Pos.X) / dt, (last.Pos.Y - first.Pos.Y) / dt
}

// ShouldCoast reports whether a drag release is fast enough to start inertia.
func (c GestureConfig) ShouldCoast(r Release) bool {
	if r.Tap {
		return false
	}
	return math.Abs(r.VX) > c.InertiaThreshold || math.Abs(r.VY) > c.InertiaThreshold
}
