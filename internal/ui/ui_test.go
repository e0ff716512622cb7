package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-dome/internal/catalog"
	"github.com/litescript/ls-dome/internal/dome"
	"github.com/litescript/ls-dome/internal/imagery"
	"github.com/litescript/ls-dome/internal/logging"
	"github.com/litescript/ls-dome/internal/state"
)

var testTiles = []dome.TileRecord{
	{ImageRef: "a.png", Caption: "Alpha", LinkURL: "https://example.com/a"},
	{ImageRef: "b.png", Caption: "Beta"},
}

type testHarness struct {
	model    Model
	state    *state.Manager
	gallery  *dome.Gallery
	clock    time.Time
	followed []dome.PlacedTile
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{clock: time.Unix(1000, 0)}

	h.state = state.NewManager(state.DefaultConfig())
	h.state.Update(&catalog.Catalog{Path: "gallery.json", Tiles: testTiles}, time.Millisecond, nil)

	h.gallery = dome.New(dome.DefaultConfig(), testTiles,
		dome.WithLogger(logging.Discard()),
		dome.WithEventHandler(h.state.Record),
		dome.WithNavigator(func(tile dome.PlacedTile) { h.followed = append(h.followed, tile) }),
	)

	m := New(h.state, h.gallery, imagery.NewCache(nil))
	m.now = func() time.Time { return h.clock }
	h.model = m
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *testHarness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *testHarness) key(k tea.KeyType) {
	h.send(tea.KeyMsg{Type: k})
}

func (h *testHarness) runes(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// frames advances the simulated clock in 16ms frames.
func (h *testHarness) frames(n int) {
	for i := 0; i < n; i++ {
		h.clock = h.clock.Add(16 * time.Millisecond)
		h.send(FrameMsg(h.clock))
	}
}

// face turns the sphere so the slot showing ref sits at the canvas center.
func (h *testHarness) face(t *testing.T, ref string) int {
	t.Helper()
	idx := h.gallery.FindTile(ref)
	if idx < 0 {
		t.Fatalf("FindTile(%q) = -1", ref)
	}
	base := h.gallery.Layout().Tiles[idx].Base
	if !h.gallery.SetRotation(dome.Orientation{Tilt: -base.Tilt, Spin: -base.Spin}) {
		t.Fatal("SetRotation refused")
	}
	return idx
}

func TestModel_Layout(t *testing.T) {
	h := newHarness(t)

	if got := h.model.contentTop(); got != 3 {
		t.Errorf("contentTop = %d, want 3", got)
	}
	if got, want := h.model.domeView.height, 40-3-footerLines; got != want {
		t.Errorf("dome height = %d, want %d", got, want)
	}
	size := h.gallery.Metrics().Size
	if size.Width != 120*CellWidth || size.Height != float64(h.model.domeView.height*CellHeight) {
		t.Errorf("gallery size = %+v", size)
	}

	view := h.model.View()
	if lines := strings.Count(view, "\n") + 1; lines != 40 {
		t.Errorf("view has %d lines, want 40", lines)
	}
	if !strings.Contains(view, "Dome") || !strings.Contains(view, "Tiles") {
		t.Error("view should show both tabs")
	}
}

func TestModel_NotReady(t *testing.T) {
	h := newHarness(t)
	m := New(h.state, h.gallery, nil)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before size = %q", got)
	}
}

func TestModel_SwitchViews(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyTab)
	if h.model.Mode() != ViewTiles {
		t.Fatalf("after tab mode = %v, want tiles", h.model.Mode())
	}
	h.key(tea.KeyTab)
	if h.model.Mode() != ViewDome {
		t.Fatalf("after second tab mode = %v, want dome", h.model.Mode())
	}
	h.runes("2")
	if h.model.Mode() != ViewTiles {
		t.Error("2 should select the tile list")
	}
	h.runes("1")
	if h.model.Mode() != ViewDome {
		t.Error("1 should select the dome")
	}
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t)
	h.face(t, "a.png")
	h.key(tea.KeyEnter)

	cmd := h.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if h.gallery.ScrollLocked() || h.gallery.Enlarging() {
		t.Error("quit should tear the gallery down")
	}
}

func TestModel_EnterOpensFrontTile(t *testing.T) {
	h := newHarness(t)
	idx := h.face(t, "a.png")

	h.key(tea.KeyEnter)
	st, ok := h.gallery.Focus()
	if !ok || st.Tile != idx {
		t.Fatalf("focus = %+v, %v; want tile %d", st, ok, idx)
	}

	h.key(tea.KeyEsc)
	st, ok = h.gallery.Focus()
	if !ok || st.Phase != dome.PhaseClosing {
		t.Fatalf("after esc focus = %+v, %v; want closing", st, ok)
	}

	h.frames(100)
	if h.gallery.Enlarging() {
		t.Error("overlay should be gone after the close transition")
	}

	var kinds []state.EventType
	for _, e := range h.state.RecentEvents(10) {
		kinds = append(kinds, e.Type)
	}
	if len(kinds) != 2 || kinds[0] != state.EventOpen || kinds[1] != state.EventClose {
		t.Errorf("events = %v, want [OPEN CLOSE]", kinds)
	}
}

func TestModel_EnterFollowsLinkOnceOpen(t *testing.T) {
	h := newHarness(t)
	h.face(t, "a.png")
	h.key(tea.KeyEnter)

	// Still opening: the link is not live yet.
	h.key(tea.KeyEnter)
	if len(h.followed) != 0 {
		t.Fatal("link followed before the overlay settled")
	}

	h.frames(100)
	st, ok := h.gallery.Focus()
	if !ok || st.Phase != dome.PhaseOpen {
		t.Fatalf("focus = %+v, %v; want open", st, ok)
	}

	h.key(tea.KeyEnter)
	if len(h.followed) != 1 || h.followed[0].LinkURL != "https://example.com/a" {
		t.Fatalf("followed = %+v", h.followed)
	}
	if st := h.state.Stats("a.png"); st == nil || st.Opens != 1 {
		t.Errorf("stats = %+v, want one open", st)
	}
	if !strings.Contains(h.model.View(), "NAVIGATE") {
		t.Error("footer should list the navigate event")
	}
}

func TestModel_MouseTapOpens(t *testing.T) {
	h := newHarness(t)
	idx := h.face(t, "a.png")

	x := h.model.domeView.width / 2
	y := h.model.domeView.height/2 + h.model.contentTop()

	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !h.gallery.Dragging() {
		t.Fatal("press should start a drag session")
	}
	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone})

	st, ok := h.gallery.Focus()
	if !ok || st.Tile != idx {
		t.Fatalf("focus = %+v, %v; want tile %d", st, ok, idx)
	}

	// A click on the scrim outside the overlay closes it.
	h.frames(100)
	h.send(tea.MouseMsg{X: 0, Y: h.model.contentTop(), Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if st, ok := h.gallery.Focus(); !ok || st.Phase != dome.PhaseClosing {
		t.Errorf("scrim click focus = %+v, %v; want closing", st, ok)
	}
}

func TestModel_MouseDragRotates(t *testing.T) {
	h := newHarness(t)
	x := h.model.domeView.width / 2
	y := h.model.domeView.height/2 + h.model.contentTop()

	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.clock = h.clock.Add(50 * time.Millisecond)
	h.send(tea.MouseMsg{X: x + 20, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})

	// 20 cells of 8px at the default sensitivity of 20px per degree.
	if got := h.gallery.Rotation().Spin; abs(got-8) > 1e-9 {
		t.Errorf("spin during drag = %v, want 8", got)
	}

	h.clock = h.clock.Add(500 * time.Millisecond)
	h.send(tea.MouseMsg{X: x + 20, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone})
	if h.gallery.Dragging() {
		t.Error("release should end the drag")
	}
	if h.gallery.Enlarging() {
		t.Error("a drag should not open a tile")
	}
}

func TestModel_MouseIgnoredOutsideDome(t *testing.T) {
	h := newHarness(t)
	h.runes("2")
	h.send(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if h.gallery.Dragging() {
		t.Error("mouse should be ignored in the tile list")
	}

	h.runes("1")
	h.send(tea.MouseMsg{X: 10, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if h.gallery.Dragging() {
		t.Error("a press on the header should not start a drag")
	}
}

func TestModel_ArrowsEaseRotation(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyRight)
	if !h.model.domeView.Easing() {
		t.Fatal("arrow key should start easing")
	}
	if got := h.model.frameInterval(); got != frameActive {
		t.Errorf("frame interval while easing = %v, want %v", got, frameActive)
	}

	h.frames(300)
	if h.model.domeView.Easing() {
		t.Fatal("spring should settle")
	}
	if got := h.gallery.Rotation().Spin; abs(got-nudgeSpin) > 1e-9 {
		t.Errorf("spin = %v, want %v", got, nudgeSpin)
	}
	if got := h.model.frameInterval(); got != frameIdle {
		t.Errorf("frame interval at rest = %v, want %v", got, frameIdle)
	}

	for i := 0; i < 4; i++ {
		h.key(tea.KeyUp)
	}
	h.frames(300)
	if got, want := h.gallery.Rotation().Tilt, dome.DefaultConfig().Gesture.MaxTilt; abs(got-want) > 1e-9 {
		t.Errorf("tilt = %v, want clamp at %v", got, want)
	}
}

func TestModel_RevealFromTileList(t *testing.T) {
	h := newHarness(t)
	h.runes("2")
	h.key(tea.KeyDown)

	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter in the tile list should return a command")
	}
	h.send(runCmd(cmd))

	if h.model.Mode() != ViewDome {
		t.Errorf("mode = %v, want dome", h.model.Mode())
	}
	st, ok := h.gallery.Focus()
	if !ok {
		t.Fatal("reveal should open the tile")
	}
	if got := h.gallery.Layout().Tiles[st.Tile].ImageRef; got != "b.png" {
		t.Errorf("focused %q, want b.png", got)
	}
}

func TestModel_CatalogReload(t *testing.T) {
	h := newHarness(t)

	tiles := append(append([]dome.TileRecord(nil), testTiles...), dome.TileRecord{ImageRef: "c.png"})
	h.state.Update(&catalog.Catalog{Path: "gallery.json", Tiles: tiles}, time.Millisecond, nil)

	h.send(TickMsg(h.clock))
	if got := h.gallery.Layout().Supplied; got != 3 {
		t.Errorf("supplied after reload = %d, want 3", got)
	}

	tiles = append(tiles, dome.TileRecord{ImageRef: "d.png"})
	h.state.Update(&catalog.Catalog{Path: "gallery.json", Tiles: tiles}, time.Millisecond, nil)
	cfg := h.gallery.Config()
	cfg.Segments = 10
	cfg.Gesture.Sensitivity = 40
	h.send(SendCatalog(h.state.Snapshot(), &cfg)())
	layout := h.gallery.Layout()
	if layout.Supplied != 4 || layout.Segments != 10 {
		t.Errorf("layout = %d supplied, %d segments; want 4, 10", layout.Supplied, layout.Segments)
	}
	if got := h.gallery.Config().Gesture.Sensitivity; got != 40 {
		t.Errorf("sensitivity after reload = %v, want 40", got)
	}
}

func TestModel_CatalogReloadAfterTick(t *testing.T) {
	h := newHarness(t)

	h.state.Update(&catalog.Catalog{Path: "gallery.json", Tiles: testTiles}, time.Millisecond, nil)
	// The periodic refresh picks up the new revision first.
	h.send(TickMsg(h.clock))
	cfg := h.gallery.Config()
	cfg.Segments = 6
	h.send(CatalogMsg{Snapshot: h.state.Snapshot(), Config: &cfg})

	if got := h.gallery.Layout().Segments; got != 6 {
		t.Errorf("segments = %d, want 6", got)
	}
}

func TestModel_StatusMessages(t *testing.T) {
	h := newHarness(t)

	h.send(ImagesMsg{Failed: 2})
	if !strings.Contains(h.model.View(), "2 image(s) failed to load") {
		t.Error("footer should report failed images")
	}
	h.send(ImagesMsg{})
	if strings.Contains(h.model.View(), "failed to load") {
		t.Error("a clean preload should clear the message")
	}

	h.send(SendError(errTest("boom"))())
	if !strings.Contains(h.model.View(), "Error: boom") {
		t.Error("footer should show the error")
	}
}

// runCmd runs cmd and returns its message, unwrapping a single-entry batch.
func runCmd(cmd tea.Cmd) tea.Msg {
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok && len(batch) > 0 {
		return runCmd(batch[0])
	}
	return msg
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestGradientColor(t *testing.T) {
	tests := []struct {
		name          string
		col, row      int
		width, height int
		want          string
	}{
		{"left edge", 0, 0, 100, 1, "#3B82F6"},
		{"bottom darkens", 0, 1, 100, 2, "#2C61B8"},
		{"zero width", 0, 0, 0, 0, "#3B82F6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gradientColor(tt.col, tt.row, tt.width, tt.height); got != tt.want {
				t.Errorf("gradientColor = %s, want %s", got, tt.want)
			}
		})
	}
}
