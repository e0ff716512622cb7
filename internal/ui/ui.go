// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-dome/internal/dome"
	"github.com/litescript/ls-dome/internal/imagery"
	"github.com/litescript/ls-dome/internal/state"
	"github.com/litescript/ls-dome/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewDome ViewMode = iota
	ViewTiles
)

const (
	// Frame intervals while something moves and while the sphere is at rest
	frameActive = 16 * time.Millisecond
	frameIdle   = 100 * time.Millisecond

	// footerLines is the height of the status footer below the content.
	footerLines = 2

	// recentEvents is how many activity entries the footer shows.
	recentEvents = 3
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic state refreshes.
	TickMsg time.Time

	// AnimTickMsg triggers the footer spinner.
	AnimTickMsg time.Time

	// FrameMsg advances the gallery animation.
	FrameMsg time.Time

	// CatalogMsg signals a newly loaded catalog.
	CatalogMsg struct {
		Snapshot state.Snapshot

		// Config is the resolved gallery configuration of the catalog. When
		// it differs from the running one the gallery is reconfigured.
		Config *dome.Config
	}

	// ImagesMsg signals that a preload pass over the catalog images finished.
	ImagesMsg struct {
		Failed int
	}

	// ErrorMsg signals a load error.
	ErrorMsg struct {
		Error error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state   *state.Manager
	gallery *dome.Gallery
	cache   *imagery.Cache
	now     func() time.Time

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int

	// Sub-models
	domeView DomeViewModel
	tiles    TilesModel

	// Data snapshot (updated on TickMsg and CatalogMsg)
	snapshot state.Snapshot
	revision uint64
}

// New creates a new root UI model. The gallery must already hold the tiles of
// the current catalog revision.
func New(stateMgr *state.Manager, g *dome.Gallery, cache *imagery.Cache) Model {
	snap := stateMgr.Snapshot()
	m := Model{
		state:    stateMgr,
		gallery:  g,
		cache:    cache,
		now:      time.Now,
		viewMode: ViewDome,
		domeView: NewDomeViewModel(g, cache),
		tiles:    NewTilesModel(cache),
		snapshot: snap,
		revision: snap.Revision,
	}
	m.tiles = m.tiles.UpdateData(snap, g.Layout())
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
		frameCmd(frameIdle),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.gallery.Close()
			return m, tea.Quit

		case "1":
			m.viewMode = ViewDome
		case "2":
			m.viewMode = ViewTiles
		case "tab":
			m.viewMode = (m.viewMode + 1) % 2

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.MouseMsg:
		if m.viewMode == ViewDome {
			m.handleMouse(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentHeight := m.contentHeight()
		m.domeView = m.domeView.SetSize(msg.Width, contentHeight)
		m.tiles = m.tiles.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m.refresh(m.state.Snapshot(), nil)

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case FrameMsg:
		m.domeView = m.domeView.Frame(time.Time(msg))
		cmds = append(cmds, frameCmd(m.frameInterval()))

	case CatalogMsg:
		m.refresh(msg.Snapshot, msg.Config)

	case ImagesMsg:
		if msg.Failed > 0 {
			m.statusMsg = fmt.Sprintf("%d image(s) failed to load", msg.Failed)
		} else {
			m.statusMsg = ""
		}
		m.tiles = m.tiles.UpdateData(m.snapshot, m.gallery.Layout())

	case RevealTileMsg:
		idx := m.gallery.FindTile(msg.ImageRef)
		if idx >= 0 {
			m.viewMode = ViewDome
			m.domeView = m.domeView.Settle()
			if !m.gallery.Reveal(idx, m.now()) {
				m.statusMsg = "tile cannot be opened right now"
			}
		}

	case ErrorMsg:
		m.statusMsg = "Error: " + msg.Error.Error()
	}

	return m, tea.Batch(cmds...)
}

// refresh adopts a state snapshot and rebuilds the layout when the catalog or
// the configuration changed. The periodic tick may see a reload before its
// CatalogMsg arrives, so the configuration is compared on its own.
func (m *Model) refresh(snap state.Snapshot, cfg *dome.Config) {
	m.snapshot = snap
	if cfg != nil && *cfg != m.gallery.Config() {
		m.domeView = m.domeView.Settle()
		m.gallery.Reconfigure(*cfg)
	}
	if snap.Revision != m.revision {
		m.revision = snap.Revision
		m.gallery.SetTiles(snap.Tiles)
	}
	m.tiles = m.tiles.UpdateData(snap, m.gallery.Layout())
}

func (m *Model) updateActiveView(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewDome:
		m.handleDomeKey(msg)
	case ViewTiles:
		m.tiles, cmd = m.tiles.Update(msg)
	}
	return cmd
}

func (m *Model) handleDomeKey(msg tea.KeyMsg) {
	now := m.now()
	switch msg.String() {
	case "esc":
		m.gallery.Escape(now)
	case "enter", " ":
		if m.gallery.Enlarging() {
			m.activate(now)
			return
		}
		m.gallery.Open(m.gallery.TileAt(m.domeView.Center()), now)
	case "left", "h":
		m.domeView = m.domeView.Nudge(dome.Orientation{Spin: -nudgeSpin})
	case "right", "l":
		m.domeView = m.domeView.Nudge(dome.Orientation{Spin: nudgeSpin})
	case "up", "k":
		m.domeView = m.domeView.Nudge(dome.Orientation{Tilt: nudgeTilt})
	case "down", "j":
		m.domeView = m.domeView.Nudge(dome.Orientation{Tilt: -nudgeTilt})
	}
}

// activate follows the focused link once the overlay has settled open.
func (m *Model) activate(now time.Time) bool {
	st, ok := m.gallery.Focus()
	if !ok || st.Phase != dome.PhaseOpen {
		return false
	}
	return m.gallery.Activate(now)
}

// handleMouse feeds terminal mouse events to the gallery as mouse pointers.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	now := m.now()
	pt, inside := m.domeView.CanvasPoint(msg.X, msg.Y-m.contentTop())

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.domeView = m.domeView.Nudge(dome.Orientation{Spin: -nudgeSpin})
		return
	case tea.MouseButtonWheelDown:
		m.domeView = m.domeView.Nudge(dome.Orientation{Spin: nudgeSpin})
		return
	}

	ev := dome.PointerEvent{Pointer: dome.PointerMouse, Pos: pt, Time: now}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return
		}
		if m.gallery.Enlarging() {
			// A click on the overlay itself follows its link.
			if !m.gallery.ScrimClick(pt, now) {
				m.activate(now)
			}
			return
		}
		m.domeView = m.domeView.Settle()
		m.gallery.PointerDown(ev)

	case tea.MouseActionMotion:
		if !inside && !m.gallery.Dragging() {
			return
		}
		if !inside {
			ev.Pos = m.clampPoint(msg.X, msg.Y-m.contentTop())
		}
		m.gallery.PointerMove(ev)

	case tea.MouseActionRelease:
		if !m.gallery.Dragging() {
			return
		}
		if !inside {
			ev.Pos = m.clampPoint(msg.X, msg.Y-m.contentTop())
		}
		m.gallery.PointerUp(ev)
	}
}

// clampPoint maps a cell outside the canvas to the nearest canvas edge so a
// drag keeps its direction when the pointer leaves the sphere area.
func (m Model) clampPoint(x, y int) dome.Point {
	x = min(max(x, 0), max(m.domeView.width-1, 0))
	y = min(max(y, 0), max(m.domeView.height-1, 0))
	return cellCenter(x, y)
}

func (m Model) frameInterval() time.Duration {
	if m.gallery.Animating() || m.gallery.Dragging() || m.domeView.Easing() {
		return frameActive
	}
	return frameIdle
}

// contentTop returns the terminal row where the content area starts.
func (m Model) contentTop() int {
	return strings.Count(m.renderHeader(), "\n") + 1
}

func (m Model) contentHeight() int {
	return max(0, m.height-m.contentTop()-footerLines)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewDome:
		content = m.domeView.View()
	case ViewTiles:
		content = m.tiles.View()
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	return header + "\n" + content + "\n" + footer
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	const title = "◓ L S · D O M E"
	runes := []rune(title)

	var b strings.Builder
	b.WriteString("  ")
	for col, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, 0, len(runes), 1))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("   sphere gallery · v%s", version.Version)))
	b.WriteString("\n")
	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient.
// Blue -> purple -> magenta -> pink, darkening toward the bottom row.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(max(width, 1))
	yRatio := float64(row) / float64(max(height, 1))

	var r, g, b float64
	if xRatio < 0.33 {
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else if xRatio < 0.66 {
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	} else {
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	brightness := 1.0 - (yRatio * 0.5)
	clamp8 := func(v float64) int {
		return min(max(int(v*brightness), 0), 255)
	}
	return fmt.Sprintf("#%02X%02X%02X", clamp8(r), clamp8(g), clamp8(b))
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Dome", "[2] Tiles"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.snapshot.LastError != nil:
		status = errStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case m.snapshot.Catalog == nil:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Waiting for catalog...")
	case m.viewMode == ViewDome:
		status = m.domeView.Status()
	default:
		status = dimStyle.Render(fmt.Sprintf("%d tiles · loaded in %s",
			len(m.snapshot.Tiles), m.snapshot.LoadDuration.Round(time.Millisecond)))
	}

	var help string
	switch m.viewMode {
	case ViewTiles:
		help = dimStyle.Render("↑↓: select | enter: reveal | tab: dome | q: quit")
	default:
		if m.gallery.Enlarging() {
			help = dimStyle.Render("esc/click: close | enter: open link | q: quit")
		} else {
			help = dimStyle.Render("drag/arrows: rotate | click/enter: open | tab: tiles | q: quit")
		}
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help
	footer += "\n  " + m.renderActivity()
	return footer
}

// renderActivity shows the status message or the latest gallery events.
func (m Model) renderActivity() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	if m.statusMsg != "" {
		return dimStyle.Render(m.statusMsg)
	}

	events := m.state.RecentEvents(recentEvents)
	if len(events) == 0 {
		return dimStyle.Render("no activity yet")
	}
	parts := make([]string, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		label := e.Caption
		if label == "" {
			label = e.Message
		}
		entry := fmt.Sprintf("%s %s", e.Timestamp.Format("15:04:05"), e.Type)
		if label != "" {
			entry += " " + truncate(label, 24)
		}
		parts = append(parts, entry)
	}
	return dimStyle.Render(strings.Join(parts, " · "))
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	textLen := len(runes)
	if textLen == 0 {
		return ""
	}

	pos := m.animTick % (textLen + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 180, 160, 220
		case dist <= 3:
			r8, g8, b8 = 140, 120, 180
		case dist <= 5:
			r8, g8, b8 = 110, 90, 150
		default:
			r8, g8, b8 = 80, 70, 120
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)))
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}

// Mode returns the active view.
func (m Model) Mode() ViewMode {
	return m.viewMode
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// SendCatalog creates a command that delivers a newly loaded catalog.
func SendCatalog(snapshot state.Snapshot, cfg *dome.Config) tea.Cmd {
	return func() tea.Msg {
		return CatalogMsg{Snapshot: snapshot, Config: cfg}
	}
}

// SendError creates a command that sends an error message.
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Error: err}
	}
}
