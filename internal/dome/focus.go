package dome

import (
	"math"
	"time"
)

// FocusPhase is the stage of the focus state machine. Idle is represented by no focus.
type FocusPhase int

const (
	PhaseOpening FocusPhase = iota
	PhaseOpen
	PhaseResizingOverlay
	PhaseClosing
)

// String returns the phase name.
func (p FocusPhase) String() string {
	switch p {
	case PhaseOpening:
		return "opening"
	case PhaseOpen:
		return "open"
	case PhaseResizingOverlay:
		return "resizing"
	case PhaseClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// FocusState describes the focused tile.
type FocusState struct {
	Tile int

	// Source is the tile's on-screen rectangle when it was opened; the overlay
	// collapses back onto it.
	Source Rect

	Phase FocusPhase

	// CounterRotation turns the tile's parent to face the viewer.
	CounterRotation Orientation

	OpenedAt time.Time
}

type morphStage int

const (
	stageNone morphStage = iota
	stageFlip
	stageSize
	stageCollapse
)

// FocusEngine runs the enlarge and collapse morphs of a single focused tile.
type FocusEngine struct {
	cfg     FocusConfig
	metrics Metrics

	state   *FocusState
	overlay *OverlayDescriptor

	stage  morphStage
	tween  *Tween
	resume FocusPhase

	flipFrom     FlipTransform
	sizeFrom     Rect
	collapseFrom Rect

	// OnOpened fires once the overlay has settled at its final size.
	OnOpened func(FocusState)

	// OnClosed fires when the collapse finishes and the engine is idle again.
	OnClosed func(FocusState)
}

// NewFocusEngine creates an idle engine.
func NewFocusEngine(cfg FocusConfig) *FocusEngine {
	return &FocusEngine{cfg: cfg}
}

// State returns a copy of the focus state, or false when idle.
func (e *FocusEngine) State() (FocusState, bool) {
	if e.state == nil {
		return FocusState{}, false
	}
	return *e.state, true
}

// Active reports whether any tile is focused, in any phase.
func (e *FocusEngine) Active() bool {
	return e.state != nil
}

// Overlay returns the current overlay descriptor, or false when none is shown.
func (e *FocusEngine) Overlay() (OverlayDescriptor, bool) {
	if e.overlay == nil {
		return OverlayDescriptor{}, false
	}
	return *e.overlay, true
}

// TileDelta returns the counter-rotation currently applied to the focused tile.
func (e *FocusEngine) TileDelta() (int, Orientation, bool) {
	if e.state == nil {
		return 0, Orientation{}, false
	}
	d := e.state.CounterRotation
	if e.stage == stageFlip && e.tween != nil {
		p := e.tween.Progress()
		d = Orientation{Tilt: d.Tilt * p, Spin: d.Spin * p}
	}
	return e.state.Tile, d, true
}

// IsMobile reports whether the fractional-viewport overlay rule applies.
func (e *FocusEngine) IsMobile(m Metrics) bool {
	return m.Size.Width <= e.cfg.MobileBreakpoint
}

// TargetRect returns the rectangle the overlay enlarges into.
func (e *FocusEngine) TargetRect(m Metrics) Rect {
	if e.IsMobile(m) {
		f := e.cfg.MobileFraction
		if f <= 0 || f > 1 {
			f = 0.8
		}
		w, h := m.Size.Width, m.Size.Height
		return Rect{Left: w * (1 - f) / 2, Top: h * (1 - f) / 2, Width: w * f, Height: h * f}
	}
	return m.Frame
}

// CustomRect returns the centered custom-size rectangle, or false when the second
// stage is disabled.
func (e *FocusEngine) CustomRect(m Metrics) (Rect, bool) {
	if e.IsMobile(m) || (e.cfg.OpenedWidth <= 0 && e.cfg.OpenedHeight <= 0) {
		return Rect{}, false
	}
	w, h := e.cfg.OpenedWidth, e.cfg.OpenedHeight
	if w <= 0 {
		w = m.Frame.Width
	}
	if h <= 0 {
		h = m.Frame.Height
	}
	return m.Frame.CenteredIn(w, h), true
}

// Open starts the enlarge morph. It returns false when a tile is already focused
// or the geometry is not measured.
func (e *FocusEngine) Open(tile PlacedTile, source Rect, counter Orientation, m Metrics, style StyleParams, now time.Time) bool {
	if e.state != nil || !m.Measured() {
		return false
	}
	target := e.TargetRect(m)
	if target.Empty() {
		return false
	}

	e.metrics = m
	e.state = &FocusState{
		Tile:            tile.Index,
		Source:          source,
		Phase:           PhaseOpening,
		CounterRotation: counter,
		OpenedAt:        now,
	}
	e.flipFrom = InvertFlip(source, target)
	e.overlay = &OverlayDescriptor{
		Tile:         tile,
		Rect:         target,
		Transform:    e.flipFrom,
		Opacity:      0,
		CornerRadius: style.OverlayRadius,
		Grayscale:    style.Grayscale,
		Tint:         style.OverlayTint,
		Mobile:       e.IsMobile(m),
	}
	e.stage = stageFlip
	e.tween = NewTween(now, e.cfg.Duration, StandardEasing, nil)
	return true
}

// Resize repositions an open overlay for new metrics without restarting its morph.
func (e *FocusEngine) Resize(m Metrics) {
	e.metrics = m
	if e.state == nil || e.overlay == nil || e.state.Phase == PhaseClosing || !m.Measured() {
		return
	}
	target := e.TargetRect(m)
	e.overlay.Mobile = e.IsMobile(m)

	switch e.stage {
	case stageFlip:
		// Keep the morph anchored on the tile: the inverted transform is
		// recomputed for the new target at the current progress.
		e.overlay.Rect = target
		e.flipFrom = InvertFlip(e.state.Source, target)
		if e.tween != nil {
			e.overlay.Transform = lerpFlip(e.flipFrom, Identity, e.tween.Progress())
		}
	case stageSize:
		// The size stage interpolates toward CustomRect of the current metrics.
		if _, ok := e.CustomRect(m); !ok {
			e.overlay.Rect = target
		}
	default:
		if custom, ok := e.CustomRect(m); ok {
			e.overlay.Rect = custom
		} else {
			e.overlay.Rect = target
		}
	}

	if e.state.Phase != PhaseResizingOverlay {
		e.resume = e.state.Phase
		e.state.Phase = PhaseResizingOverlay
	}
}

// Close starts the collapse morph. It returns false when nothing is focused, a
// collapse is already running, or the request falls inside the grace window.
func (e *FocusEngine) Close(now time.Time) bool {
	if e.state == nil || e.state.Phase == PhaseClosing {
		return false
	}
	if now.Sub(e.state.OpenedAt) < e.cfg.CloseGrace {
		return false
	}
	if e.overlay == nil || e.state.Source.Empty() {
		e.state.Phase = PhaseClosing
		e.finishClose()
		return true
	}

	current := e.overlay.Visual()
	e.overlay = &OverlayDescriptor{
		Tile:         e.overlay.Tile,
		Rect:         current,
		Transform:    Identity,
		Opacity:      1,
		CornerRadius: e.overlay.CornerRadius,
		Grayscale:    e.overlay.Grayscale,
		Tint:         e.overlay.Tint,
		Mobile:       e.overlay.Mobile,
		Closing:      true,
	}
	e.collapseFrom = current
	e.state.Phase = PhaseClosing
	e.stage = stageCollapse
	e.tween = NewTween(now, e.cfg.Duration, StandardEasing, nil)
	return true
}

// Advance steps the running morph to the frame time.
func (e *FocusEngine) Advance(now time.Time) {
	if e.state == nil {
		return
	}
	if e.state.Phase == PhaseResizingOverlay {
		e.state.Phase = e.resume
	}
	if e.tween == nil {
		return
	}

	done := e.tween.Advance(now)
	p := e.tween.Progress()

	switch e.stage {
	case stageFlip:
		e.overlay.Transform = lerpFlip(e.flipFrom, Identity, p)
		e.overlay.Opacity = p
		if !done {
			return
		}
		e.overlay.Transform = Identity
		e.overlay.Opacity = 1
		if _, ok := e.CustomRect(e.metrics); ok {
			e.stage = stageSize
			e.sizeFrom = e.overlay.Rect
			e.tween = NewTween(now, e.cfg.Duration, StandardEasing, nil)
			return
		}
		e.settle()

	case stageSize:
		custom, ok := e.CustomRect(e.metrics)
		if !ok {
			custom = e.TargetRect(e.metrics)
		}
		e.overlay.Rect = lerpRect(e.sizeFrom, custom, p)
		if done {
			e.overlay.Rect = custom
			e.settle()
		}

	case stageCollapse:
		e.overlay.Rect = lerpRect(e.collapseFrom, e.state.Source, p)
		e.overlay.Opacity = math.Max(0, 1-p)
		if done {
			e.finishClose()
		}
	}
}

// Reset drops any focus immediately, without a collapse morph.
func (e *FocusEngine) Reset() {
	if e.state == nil {
		return
	}
	e.finishClose()
}

func (e *FocusEngine) settle() {
	e.stage = stageNone
	e.tween = nil
	e.state.Phase = PhaseOpen
	if e.OnOpened != nil {
		e.OnOpened(*e.state)
	}
}

func (e *FocusEngine) finishClose() {
	final := *e.state
	e.state = nil
	e.overlay = nil
	e.stage = stageNone
	e.tween = nil
	if e.OnClosed != nil {
		e.OnClosed(final)
	}
}
