package dome

import (
	"math"
	"time"

	"github.com/litescript/ls-dome/internal/logging"
)

// Navigator is called when the user activates the link of the focused tile.
type Navigator func(tile PlacedTile)

// EventKind identifies a gallery event.
type EventKind int

const (
	EventOpened EventKind = iota
	EventClosed
	EventNavigate
	EventOverflow
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "OPEN"
	case EventClosed:
		return "CLOSE"
	case EventNavigate:
		return "NAVIGATE"
	case EventOverflow:
		return "OVERFLOW"
	default:
		return "UNKNOWN"
	}
}

// Event is emitted on focus transitions, link activations and layout overflow.
type Event struct {
	Kind    EventKind
	Tile    PlacedTile
	Time    time.Time
	Message string
}

// Option configures a Gallery.
type Option func(*Gallery)

// WithLogger sets the gallery logger.
func WithLogger(l *logging.Logger) Option {
	return func(g *Gallery) { g.log = l }
}

// WithScrollLock shares a scroll lock between galleries.
func WithScrollLock(s *ScrollLock) Option {
	return func(g *Gallery) { g.lock = s }
}

// WithNavigator sets the link handler.
func WithNavigator(n Navigator) Option {
	return func(g *Gallery) { g.navigate = n }
}

// WithEventHandler registers a callback for gallery events.
func WithEventHandler(fn func(Event)) Option {
	return func(g *Gallery) { g.onEvent = fn }
}

// TileView is a projected tile ready to draw.
type TileView struct {
	Tile      PlacedTile
	Placement Projected

	// Hidden is set on the focused tile while the overlay stands in for it.
	Hidden  bool
	Hovered bool
}

// View is the complete render state of one frame.
type View struct {
	Metrics  Metrics
	Rotation Orientation

	// Tiles are the visible tiles, back to front.
	Tiles []TileView

	Overlay    OverlayDescriptor
	HasOverlay bool

	// Scrim is active from the moment a tile opens until its collapse finishes.
	Scrim bool

	Focus   FocusState
	Focused bool
}

// Gallery is one dome gallery instance. It is not safe for concurrent use; the
// frontend drives it from a single loop.
type Gallery struct {
	cfg Config
	log *logging.Logger

	records []TileRecord
	layout  Layout
	metrics Metrics

	rot     *RotationState
	drag    *DragController
	inertia *Inertia
	focus   *FocusEngine
	frames  FrameLoop
	lock    *ScrollLock

	navigate Navigator
	onEvent  func(Event)

	lastDragEnd time.Time
	tapBlocked  time.Time
	hover       int
}

// New creates a gallery for the tiles.
func New(cfg Config, tiles []TileRecord, opts ...Option) *Gallery {
	g := &Gallery{
		cfg:   cfg,
		log:   logging.Discard(),
		hover: -1,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.lock == nil {
		g.lock = NewScrollLock()
	}

	g.configure(cfg)
	g.SetTiles(tiles)
	return g
}

// configure builds the rotation, gesture, inertia and focus state for cfg.
func (g *Gallery) configure(cfg Config) {
	g.cfg = cfg
	g.rot = NewRotationState(cfg.Gesture.MaxTilt)
	g.drag = NewDragController(cfg.Gesture)
	g.inertia = NewInertia(cfg.Inertia, cfg.Gesture.MaxTilt, &g.frames, g.rot)
	g.focus = NewFocusEngine(cfg.Focus)
	g.focus.OnOpened = g.focusOpened
	g.focus.OnClosed = g.focusClosed
}

// Reconfigure applies a new configuration while keeping the tiles, the
// container size and the rotation. A running drag, inertia or focus is dropped.
func (g *Gallery) Reconfigure(cfg Config) {
	now := g.frames.Now()
	rot := g.rot.Current()
	g.inertia.Stop()
	g.PointerCancel()
	g.focus.Reset()

	g.configure(cfg)
	g.rot.Set(rot)
	g.rot.Normalize()
	if g.metrics.Measured() {
		g.metrics = ComputeMetrics(g.metrics.Size, cfg.Viewport)
		g.rot.Reapply()
	}
	g.rebuild(now)
	g.log.Debug("reconfigured: %d segments, sensitivity %.1f", g.layout.Segments, cfg.Gesture.sensitivity())
}

// Config returns the gallery configuration.
func (g *Gallery) Config() Config {
	return g.cfg
}

// SetTiles rebuilds the layout for a new tile pool. Any focus is dropped.
func (g *Gallery) SetTiles(tiles []TileRecord) {
	g.records = append([]TileRecord(nil), tiles...)
	g.rebuild(time.Time{})
}

// SetSegments rebuilds the layout for a new segment count.
func (g *Gallery) SetSegments(segments int) {
	g.cfg.Segments = segments
	g.rebuild(time.Time{})
}

func (g *Gallery) rebuild(now time.Time) {
	g.focus.Reset()
	g.layout = BuildLayout(g.records, g.cfg.segments())
	g.hover = -1
	if g.layout.Overflow {
		g.log.Warn("%d tiles supplied for %d slots; %d will never be shown",
			g.layout.Supplied, g.layout.Slots(), g.layout.Unreachable())
		g.emit(Event{Kind: EventOverflow, Time: now, Message: "tile pool exceeds slot count"})
	}
	g.log.Debug("layout built: %d slots, %d segments, %d supplied",
		g.layout.Slots(), g.layout.Segments, g.layout.Supplied)
}

// Layout returns the placed tiles.
func (g *Gallery) Layout() Layout {
	return g.layout
}

// Metrics returns the geometry of the last resize.
func (g *Gallery) Metrics() Metrics {
	return g.metrics
}

// Rotation returns the rotation applied to the sphere.
func (g *Gallery) Rotation() Orientation {
	return g.rot.Applied()
}

// SetRotation moves the sphere to o, stopping any inertia. It is ignored while
// dragging or while a tile is focused.
func (g *Gallery) SetRotation(o Orientation) bool {
	if g.drag.Active() || g.focus.Active() {
		return false
	}
	g.inertia.Stop()
	g.rot.Set(o)
	g.rot.Normalize()
	return true
}

// Rotate turns the sphere by delta degrees from its current rotation.
func (g *Gallery) Rotate(delta Orientation) bool {
	return g.SetRotation(g.rot.Current().Add(delta))
}

// Resize recomputes the sphere geometry for a new container size, re-applies the
// current rotation and repositions an open overlay.
func (g *Gallery) Resize(size Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	g.metrics = ComputeMetrics(size, g.cfg.Viewport)
	g.rot.Reapply()
	g.focus.Resize(g.metrics)
	g.log.Debug("resize %.0fx%.0f: radius %.0f, padding %.0f",
		g.metrics.Size.Width, g.metrics.Size.Height, g.metrics.Radius, g.metrics.Padding)
}

func (g *Gallery) projector() Projector {
	return Projector{
		Metrics:  g.metrics,
		Segments: g.layout.Segments,
		Inset:    g.cfg.Focus.TileInset,
	}
}

// TileAt returns the front-most tile under the point, or -1.
func (g *Gallery) TileAt(pt Point) int {
	if !g.metrics.Measured() {
		return -1
	}
	return g.projector().HitTest(g.layout.Tiles, g.rot.Current(), pt)
}

// PointerDown starts a drag. It reports false when the event was ignored
// because a tile is focused.
func (g *Gallery) PointerDown(ev PointerEvent) bool {
	if g.focus.Active() {
		return false
	}
	g.inertia.Stop()
	g.drag.Begin(ev, g.rot.Current(), g.TileAt(ev.Pos))
	g.hover = -1
	if ev.Pointer == PointerTouch {
		g.lock.acquire(g, OwnerDrag)
	}
	return true
}

// PointerMove rotates the sphere while dragging and tracks hover otherwise.
func (g *Gallery) PointerMove(ev PointerEvent) {
	if g.focus.Active() {
		return
	}
	if !g.drag.Active() {
		g.hover = g.TileAt(ev.Pos)
		return
	}
	if rot, ok := g.drag.Move(ev); ok {
		g.rot.Set(rot)
	}
}

// PointerUp ends a drag, opening the tile on a tap or starting inertia on a fling.
func (g *Gallery) PointerUp(ev PointerEvent) {
	if !g.drag.Active() {
		return
	}
	rel, rot, _ := g.drag.End(ev)
	g.rot.Set(rot)
	g.rot.Normalize()
	if rel.Pointer == PointerTouch {
		g.lock.release(g, OwnerDrag)
	}

	if rel.Tap {
		if rel.Candidate >= 0 && !g.focus.Active() {
			g.Open(rel.Candidate, ev.Time)
		}
		return
	}

	if rel.Moved {
		g.lastDragEnd = ev.Time
		g.tapBlocked = ev.Time.Add(g.cfg.Focus.TapCancel)
	}
	if g.cfg.Gesture.ShouldCoast(rel) {
		g.inertia.Start(rel.VX, rel.VY)
	}
}

// PointerCancel abandons the drag without a tap or inertia.
func (g *Gallery) PointerCancel() {
	if s := g.drag.Session(); s != nil && s.Pointer == PointerTouch {
		g.lock.release(g, OwnerDrag)
	}
	g.drag.Cancel()
	g.rot.Normalize()
}

// Open focuses the tile at index. It reports false when another tile is focused,
// a drag is running or has just cancelled the tap, or the geometry is not
// measured yet.
func (g *Gallery) Open(index int, now time.Time) bool {
	if g.focus.Active() {
		g.log.Debug("open %d ignored: tile already focused", index)
		return false
	}
	if g.drag.Active() {
		g.log.Debug("open %d ignored: drag in progress", index)
		return false
	}
	if index < 0 || index >= len(g.layout.Tiles) {
		return false
	}
	if !g.lastDragEnd.IsZero() && now.Sub(g.lastDragEnd) < g.cfg.Focus.TapCooldown {
		return false
	}
	if now.Before(g.tapBlocked) {
		return false
	}
	if !g.metrics.Measured() {
		return false
	}

	g.inertia.Stop()
	tile := g.layout.Tiles[index]
	counter := CounterRotation(tile.Base, g.rot.Current())
	source := g.projector().Project(tile, g.rot.Current(), counter).Rect
	if !g.focus.Open(tile, source, counter, g.metrics, g.metrics.Style, now) {
		return false
	}
	g.hover = -1
	g.lock.acquire(g, OwnerFocus)
	g.log.Info("open tile %d (%s)", tile.Index, tile.ImageRef)
	g.emit(Event{Kind: EventOpened, Tile: tile, Time: now})
	return true
}

// FindTile returns the slot showing ref closest to the equator, or -1.
func (g *Gallery) FindTile(ref string) int {
	best := -1
	for i, t := range g.layout.Tiles {
		if t.ImageRef != ref {
			continue
		}
		if best < 0 || math.Abs(t.Base.Tilt) < math.Abs(g.layout.Tiles[best].Base.Tilt) {
			best = i
		}
	}
	return best
}

// Reveal turns the sphere so the tile at index faces the viewer, then opens it.
func (g *Gallery) Reveal(index int, now time.Time) bool {
	if index < 0 || index >= len(g.layout.Tiles) {
		return false
	}
	base := g.layout.Tiles[index].Base
	if !g.SetRotation(Orientation{Tilt: -base.Tilt, Spin: -base.Spin}) {
		return false
	}
	return g.Open(index, now)
}

// CounterRotation returns the per-tile rotation that turns a tile's parent to face
// the viewer under the global rotation.
func CounterRotation(base, global Orientation) Orientation {
	spin := -math.Mod(normalize360(base.Spin)+normalize360(global.Spin), 360)
	if spin < -180 {
		spin += 360
	}
	return Orientation{
		Tilt: -base.Tilt - global.Tilt,
		Spin: spin,
	}
}

// Escape closes the focused tile.
func (g *Gallery) Escape(now time.Time) bool {
	return g.closeFocus(now)
}

// ScrimClick closes the focused tile when the click lands outside the overlay.
func (g *Gallery) ScrimClick(pt Point, now time.Time) bool {
	if o, ok := g.focus.Overlay(); ok && o.Visual().Contains(pt) {
		return false
	}
	return g.closeFocus(now)
}

func (g *Gallery) closeFocus(now time.Time) bool {
	if !g.focus.Close(now) {
		return false
	}
	g.log.Debug("closing focused tile")
	return true
}

// Activate follows the link of the open tile.
func (g *Gallery) Activate(now time.Time) bool {
	o, ok := g.focus.Overlay()
	if !ok || !o.HasLink() {
		return false
	}
	g.log.Info("navigate %s", o.Tile.LinkURL)
	g.emit(Event{Kind: EventNavigate, Tile: o.Tile, Time: now, Message: o.Tile.LinkURL})
	if g.navigate != nil {
		g.navigate(o.Tile)
	}
	return true
}

// Tick runs one animation frame.
func (g *Gallery) Tick(now time.Time) {
	g.frames.Run(now)
	g.focus.Advance(now)
}

// Animating reports whether a frame is needed to make progress.
func (g *Gallery) Animating() bool {
	if g.frames.Pending() > 0 {
		return true
	}
	st, ok := g.focus.State()
	return ok && st.Phase != PhaseOpen
}

// Dragging reports whether a gesture is in progress.
func (g *Gallery) Dragging() bool {
	return g.drag.Active()
}

// Coasting reports whether inertia is running.
func (g *Gallery) Coasting() bool {
	return g.inertia.Running()
}

// Enlarging reports whether a tile is focused, from open until its collapse finishes.
func (g *Gallery) Enlarging() bool {
	return g.focus.Active()
}

// Focus returns the focus state, or false when idle.
func (g *Gallery) Focus() (FocusState, bool) {
	return g.focus.State()
}

// ScrollLocked reports whether this gallery holds the scroll lock.
func (g *Gallery) ScrollLocked() bool {
	return g.lock.heldBy(g) != 0
}

// Hovered returns the tile under the idle pointer, or -1.
func (g *Gallery) Hovered() int {
	return g.hover
}

// View returns the render state for the current frame.
func (g *Gallery) View() View {
	v := View{
		Metrics:  g.metrics,
		Rotation: g.rot.Applied(),
	}
	v.Focus, v.Focused = g.focus.State()
	v.Overlay, v.HasOverlay = g.focus.Overlay()
	v.Scrim = g.focus.Active()
	if !g.metrics.Measured() {
		return v
	}

	var deltas map[int]Orientation
	if idx, d, ok := g.focus.TileDelta(); ok {
		deltas = map[int]Orientation{idx: d}
	}
	placed := g.projector().ProjectAll(g.layout.Tiles, v.Rotation, deltas)
	v.Tiles = make([]TileView, 0, len(placed))
	for _, p := range placed {
		v.Tiles = append(v.Tiles, TileView{
			Tile:      g.layout.Tiles[p.Index],
			Placement: p,
			Hidden:    v.Focused && p.Index == v.Focus.Tile,
			Hovered:   p.Index == g.hover,
		})
	}
	return v
}

// Close tears the gallery down, releasing every scroll-lock owner it holds.
func (g *Gallery) Close() {
	g.inertia.Stop()
	g.drag.Cancel()
	g.focus.Reset()
	g.lock.releaseAll(g)
}

func (g *Gallery) focusOpened(st FocusState) {
	g.log.Debug("tile %d settled open", st.Tile)
}

func (g *Gallery) focusClosed(st FocusState) {
	g.lock.release(g, OwnerFocus)
	var tile PlacedTile
	if st.Tile >= 0 && st.Tile < len(g.layout.Tiles) {
		tile = g.layout.Tiles[st.Tile]
	}
	g.log.Info("closed tile %d", st.Tile)
	g.emit(Event{Kind: EventClosed, Tile: tile, Time: g.frames.Now()})
}

func (g *Gallery) emit(ev Event) {
	if g.onEvent != nil {
		g.onEvent(ev)
	}
}
