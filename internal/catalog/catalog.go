// Package catalog loads gallery catalogs: the tile list plus optional gallery settings.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/litescript/ls-dome/internal/dome"
)

// Entry is one tile in a catalog. It accepts either a plain image reference
// string or an object with image, caption and link fields.
type Entry dome.TileRecord

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var ref string
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		*e = Entry{ImageRef: ref}
		return nil
	}
	var rec struct {
		Image   string `json:"image"`
		Src     string `json:"src"`
		Alt     string `json:"alt"`
		Caption string `json:"caption"`
		Link    string `json:"link"`
		Website string `json:"website"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	e.ImageRef = rec.Image
	if e.ImageRef == "" {
		e.ImageRef = rec.Src
	}
	e.Caption = rec.Caption
	if e.Caption == "" {
		e.Caption = rec.Alt
	}
	e.LinkURL = rec.Link
	if e.LinkURL == "" {
		e.LinkURL = rec.Website
	}
	return nil
}

// Settings are the optional gallery overrides of a catalog file.
// Nil fields keep the value of the base configuration.
type Settings struct {
	Segments  *int     `json:"segments,omitempty"`
	Fit       *float64 `json:"fit,omitempty"`
	FitBasis  string   `json:"fit_basis,omitempty"`
	MinRadius *float64 `json:"min_radius,omitempty"`
	MaxRadius *float64 `json:"max_radius,omitempty"`
	PadFactor *float64 `json:"pad_factor,omitempty"`

	Sensitivity *float64 `json:"drag_sensitivity,omitempty"`
	Dampening   *float64 `json:"drag_dampening,omitempty"`
	MaxTilt     *float64 `json:"max_vertical_rotation,omitempty"`

	Duration       string   `json:"enlarge_duration,omitempty"`
	OpenedWidth    *float64 `json:"opened_width,omitempty"`
	OpenedHeight   *float64 `json:"opened_height,omitempty"`
	MobileFraction *float64 `json:"mobile_fraction,omitempty"`

	TileRadius    *float64 `json:"image_border_radius,omitempty"`
	OverlayRadius *float64 `json:"opened_border_radius,omitempty"`
	Grayscale     *bool    `json:"grayscale,omitempty"`
	OverlayTint   string   `json:"overlay_tint,omitempty"`
}

// File is the JSON layout of a catalog file.
type File struct {
	Tiles   []Entry  `json:"tiles"`
	Gallery Settings `json:"gallery"`
}

// Catalog is a loaded catalog.
type Catalog struct {
	Path    string
	ModTime time.Time
	Tiles   []dome.TileRecord
	Gallery Settings
}

// Load reads a catalog file. Relative image paths are resolved against the
// directory of the file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("catalog: stat %s: %w", path, err)
	}

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	c.Path = path
	c.ModTime = info.ModTime()

	dir := filepath.Dir(path)
	for i := range c.Tiles {
		c.Tiles[i].ImageRef = ResolveRef(c.Tiles[i].ImageRef, dir)
	}
	return c, nil
}

// Parse decodes a catalog. A bare JSON array is accepted as a tile list.
func Parse(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file File
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &file.Tiles)
	} else {
		err = json.Unmarshal(trimmed, &file)
	}
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		Tiles:   make([]dome.TileRecord, 0, len(file.Tiles)),
		Gallery: file.Gallery,
	}
	for i, e := range file.Tiles {
		if strings.TrimSpace(e.ImageRef) == "" {
			return nil, fmt.Errorf("tile %d: empty image reference", i)
		}
		c.Tiles = append(c.Tiles, dome.TileRecord(e))
	}
	return c, nil
}

// ResolveRef makes a relative file reference absolute against dir.
// URLs and absolute paths are returned unchanged.
func ResolveRef(ref, dir string) string {
	if ref == "" || dir == "" || IsURL(ref) || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(dir, ref)
}

// IsURL reports whether ref names a remote or inline resource.
func IsURL(ref string) bool {
	for _, p := range []string{"http://", "https://", "data:"} {
		if strings.HasPrefix(ref, p) {
			return true
		}
	}
	return false
}

// Apply returns base with the catalog's gallery settings applied.
func (s Settings) Apply(base dome.Config) (dome.Config, error) {
	cfg := base
	if s.Segments != nil {
		cfg.Segments = *s.Segments
	}
	if s.Fit != nil {
		cfg.Viewport.Fit = *s.Fit
	}
	if s.FitBasis != "" {
		b := dome.ParseFitBasis(s.FitBasis)
		if b.String() != s.FitBasis {
			return base, fmt.Errorf("catalog: unknown fit basis %q", s.FitBasis)
		}
		cfg.Viewport.Basis = b
	}
	if s.MinRadius != nil {
		cfg.Viewport.MinRadius = *s.MinRadius
	}
	if s.MaxRadius != nil {
		cfg.Viewport.MaxRadius = *s.MaxRadius
	}
	if s.PadFactor != nil {
		cfg.Viewport.PadFactor = *s.PadFactor
	}
	if s.Sensitivity != nil {
		cfg.Gesture.Sensitivity = *s.Sensitivity
	}
	if s.Dampening != nil {
		cfg.Inertia.Dampening = *s.Dampening
	}
	if s.MaxTilt != nil {
		cfg.Gesture.MaxTilt = *s.MaxTilt
	}
	if s.Duration != "" {
		d, err := time.ParseDuration(s.Duration)
		if err != nil {
			return base, fmt.Errorf("catalog: enlarge_duration: %w", err)
		}
		cfg.Focus.Duration = d
	}
	if s.OpenedWidth != nil {
		cfg.Focus.OpenedWidth = *s.OpenedWidth
	}
	if s.OpenedHeight != nil {
		cfg.Focus.OpenedHeight = *s.OpenedHeight
	}
	if s.MobileFraction != nil {
		cfg.Focus.MobileFraction = *s.MobileFraction
	}
	if s.TileRadius != nil {
		cfg.Viewport.TileRadius = *s.TileRadius
	}
	if s.OverlayRadius != nil {
		cfg.Viewport.OverlayRadius = *s.OverlayRadius
	}
	if s.Grayscale != nil {
		cfg.Viewport.Grayscale = *s.Grayscale
	}
	if s.OverlayTint != "" {
		cfg.Viewport.OverlayTint = s.OverlayTint
	}
	return cfg, nil
}

// Flags holds CLI flag values that override catalog settings.
// Zero values leave the setting alone.
type Flags struct {
	Segments     int
	MinRadius    float64
	Dampening    float64
	Sensitivity  float64
	FitBasis     string
	NoGrayscale  bool
	OpenedWidth  float64
	OpenedHeight float64
}

// Resolve builds the effective configuration: defaults, then catalog settings,
// then CLI flags.
func (c *Catalog) Resolve(flags Flags) (dome.Config, error) {
	cfg, err := c.Gallery.Apply(dome.DefaultConfig())
	if err != nil {
		return cfg, err
	}

	if flags.Segments > 0 {
		cfg.Segments = flags.Segments
	}
	if flags.MinRadius > 0 {
		cfg.Viewport.MinRadius = flags.MinRadius
	}
	if flags.Dampening > 0 {
		cfg.Inertia.Dampening = flags.Dampening
	}
	if flags.Sensitivity > 0 {
		cfg.Gesture.Sensitivity = flags.Sensitivity
	}
	if flags.FitBasis != "" {
		b := dome.ParseFitBasis(flags.FitBasis)
		if b.String() != flags.FitBasis {
			return cfg, fmt.Errorf("catalog: unknown fit basis %q", flags.FitBasis)
		}
		cfg.Viewport.Basis = b
	}
	if flags.NoGrayscale {
		cfg.Viewport.Grayscale = false
	}
	if flags.OpenedWidth > 0 {
		cfg.Focus.OpenedWidth = flags.OpenedWidth
	}
	if flags.OpenedHeight > 0 {
		cfg.Focus.OpenedHeight = flags.OpenedHeight
	}
	return cfg, nil
}
