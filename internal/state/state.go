// Package state provides thread-safe state shared between the catalog watcher
// and the gallery frontends.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/litescript/ls-dome/internal/catalog"
	"github.com/litescript/ls-dome/internal/dome"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventOpen      EventType = "OPEN"
	EventClose     EventType = "CLOSE"
	EventNavigate  EventType = "NAVIGATE"
	EventOverflow  EventType = "OVERFLOW"
	EventReload    EventType = "RELOAD"
	EventLoadError EventType = "LOAD_ERROR"
)

// Event is one entry of the activity log.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Tile      int       `json:"tile"`
	Caption   string    `json:"caption,omitempty"`
	Link      string    `json:"link,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// TileStats tracks how often a tile image was focused.
type TileStats struct {
	ImageRef   string
	Opens      int
	LastOpened time.Time
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current catalog
	catalog      *catalog.Catalog
	revision     uint64
	lastLoad     time.Time
	lastError    error
	loadDuration time.Duration

	// Per image statistics
	stats map[string]*TileStats

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	watchInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents     int
	WatchInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents:     50,
		WatchInterval: 2 * time.Second,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		maxEvents:     maxEvents,
		events:        make([]Event, 0, maxEvents),
		stats:         make(map[string]*TileStats),
		watchInterval: cfg.WatchInterval,
	}
}

// Update stores a freshly loaded catalog. A load error keeps the previous
// catalog in place.
func (m *Manager) Update(c *catalog.Catalog, loadDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastLoad = now
	m.lastError = err
	m.loadDuration = loadDuration

	if err != nil {
		m.addEvent(Event{Type: EventLoadError, Timestamp: now, Tile: -1, Message: err.Error()})
		return
	}
	if c == nil {
		return
	}

	if m.catalog != nil {
		m.addEvent(Event{Type: EventReload, Timestamp: now, Tile: -1, Message: c.Path})
	}
	m.catalog = c
	m.revision++
}

// Record logs a gallery event and updates tile statistics.
func (m *Manager) Record(ev dome.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := Event{
		Timestamp: ev.Time,
		Tile:      ev.Tile.Index,
		Caption:   ev.Tile.Caption,
		Link:      ev.Tile.LinkURL,
		Message:   ev.Message,
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	switch ev.Kind {
	case dome.EventOpened:
		e.Type = EventOpen
		m.recordOpen(ev.Tile.ImageRef, e.Timestamp)
	case dome.EventClosed:
		e.Type = EventClose
	case dome.EventNavigate:
		e.Type = EventNavigate
	case dome.EventOverflow:
		e.Type = EventOverflow
		e.Tile = -1
	default:
		return
	}
	m.addEvent(e)
}

func (m *Manager) recordOpen(ref string, at time.Time) {
	if ref == "" {
		return
	}
	st, ok := m.stats[ref]
	if !ok {
		st = &TileStats{ImageRef: ref}
		m.stats[ref] = st
	}
	st.Opens++
	st.LastOpened = at
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Catalog      *catalog.Catalog
	Revision     uint64
	Tiles        []dome.TileRecord
	LastLoad     time.Time
	LastError    error
	LoadDuration time.Duration
	Events       []Event
	Popular      []TileStats
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tiles []dome.TileRecord
	if m.catalog != nil {
		tiles = make([]dome.TileRecord, len(m.catalog.Tiles))
		copy(tiles, m.catalog.Tiles)
	}

	return Snapshot{
		Catalog:      m.catalog,
		Revision:     m.revision,
		Tiles:        tiles,
		LastLoad:     m.lastLoad,
		LastError:    m.lastError,
		LoadDuration: m.loadDuration,
		Events:       m.getEventsOrdered(),
		Popular:      m.popular(),
	}
}

// popular returns tile statistics, most opened first.
func (m *Manager) popular() []TileStats {
	out := make([]TileStats, 0, len(m.stats))
	for _, st := range m.stats {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Opens != out[j].Opens {
			return out[i].Opens > out[j].Opens
		}
		return out[i].ImageRef < out[j].ImageRef
	})
	return out
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Stats returns a copy of the statistics for one image, or nil.
func (m *Manager) Stats(ref string) *TileStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.stats[ref]
	if !ok {
		return nil
	}
	c := *st
	return &c
}

// Revision increases every time a new catalog is stored.
func (m *Manager) Revision() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revision
}

// WatchInterval returns the configured catalog poll interval.
func (m *Manager) WatchInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.watchInterval
}

// SetWatchInterval updates the catalog poll interval.
func (m *Manager) SetWatchInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchInterval = d
}

// HasData returns true if a catalog has been loaded successfully.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.catalog != nil
}
