package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-dome/internal/catalog"
	"github.com/litescript/ls-dome/internal/dome"
	"github.com/litescript/ls-dome/internal/imagery"
	"github.com/litescript/ls-dome/internal/state"
)

// Styles for the tile list
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("135"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#d0c8ff")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// RevealTileMsg asks the root model to turn the sphere to a tile and open it.
type RevealTileMsg struct {
	ImageRef string
}

// TilesModel lists the catalog tiles with their load state and open counts.
type TilesModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot
	layout   dome.Layout
	cache    *imagery.Cache
}

// NewTilesModel creates a tile list backed by the image cache.
func NewTilesModel(cache *imagery.Cache) TilesModel {
	return TilesModel{cache: cache}
}

// SetSize updates the viewport size.
func (m TilesModel) SetSize(width, height int) TilesModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new state snapshot and layout.
func (m TilesModel) UpdateData(snapshot state.Snapshot, layout dome.Layout) TilesModel {
	m.snapshot = snapshot
	m.layout = layout
	if m.cursor >= len(snapshot.Tiles) {
		m.cursor = max(0, len(snapshot.Tiles)-1)
	}
	return m
}

// Update handles messages.
func (m TilesModel) Update(msg tea.Msg) (TilesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		count := len(m.snapshot.Tiles)

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < count-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if count > 0 {
				m.cursor = count - 1
			}
		case "enter":
			if rec := m.Selected(); rec != nil {
				ref := rec.ImageRef
				return m, func() tea.Msg { return RevealTileMsg{ImageRef: ref} }
			}
		}
	}

	return m, nil
}

// Selected returns the tile under the cursor, if any.
func (m TilesModel) Selected() *dome.TileRecord {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Tiles) {
		return nil
	}
	rec := m.snapshot.Tiles[m.cursor]
	return &rec
}

// View renders the tile list.
func (m TilesModel) View() string {
	var b strings.Builder

	if m.snapshot.LastError != nil {
		b.WriteString(errorStyle.Render("Error: " + m.snapshot.LastError.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderSummary())
	b.WriteString("\n\n")
	b.WriteString(m.renderTable())
	return b.String()
}

func (m TilesModel) renderSummary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Catalog"))
	b.WriteString("\n")

	path := "(none)"
	if m.snapshot.Catalog != nil && m.snapshot.Catalog.Path != "" {
		path = m.snapshot.Catalog.Path
	}
	b.WriteString(fmt.Sprintf("  %-10s %s\n", "file", path))
	b.WriteString(fmt.Sprintf("  %-10s %d tiles in %d slots (%d segments)\n",
		"layout", m.layout.Supplied, m.layout.Slots(), m.layout.Segments))
	if m.layout.Overflow {
		b.WriteString("  " + errorStyle.Render(fmt.Sprintf("%-10s %d tiles will never be shown", "overflow", m.layout.Unreachable())) + "\n")
	}
	if m.layout.Supplied == 0 {
		b.WriteString("  " + pendingStyle.Render("no images supplied: every slot is blank") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m TilesModel) renderTable() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tiles"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-3s %-24s %-22s %-6s %-5s %s", "#", "Caption", "Image", "Image", "Opens", "Link")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	tiles := m.snapshot.Tiles
	if len(tiles) == 0 {
		b.WriteString("  No tiles\n")
		return b.String()
	}

	maxRows := m.height - 10
	if maxRows < 5 {
		maxRows = 5
	}
	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := min(startIdx+maxRows, len(tiles))

	opens := make(map[string]int, len(m.snapshot.Popular))
	for _, st := range m.snapshot.Popular {
		opens[st.ImageRef] = st.Opens
	}

	for i := startIdx; i < endIdx; i++ {
		rec := tiles[i]
		row := fmt.Sprintf("%-3d %-24s %-22s %-6s %5d %s",
			i+1,
			truncate(rec.Caption, 24),
			truncate(displayRef(rec.ImageRef), 22),
			m.loadState(rec.ImageRef),
			opens[rec.ImageRef],
			truncate(rec.LinkURL, 32),
		)
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if len(tiles) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d tiles", startIdx+1, endIdx, len(tiles)))
	}

	return b.String()
}

// loadState renders a fixed-width image status without styling so columns align.
func (m TilesModel) loadState(ref string) string {
	if m.cache == nil {
		return "-"
	}
	e, ok := m.cache.Lookup(ref)
	switch {
	case !ok:
		return "..."
	case e.Err != nil:
		return "error"
	default:
		return "ok"
	}
}

// displayRef shortens an image reference for the table.
func displayRef(ref string) string {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return "inline data"
	case catalog.IsURL(ref):
		if i := strings.LastIndexByte(ref, '/'); i >= 0 && i < len(ref)-1 {
			return ref[i+1:]
		}
		return ref
	}
	return filepath.Base(ref)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
