package snapshot

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/webp"

	"github.com/litescript/ls-dome/internal/dome"
	"github.com/litescript/ls-dome/internal/imagery"
)

func writeTile(t *testing.T, dir, name string, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testGallery(t *testing.T, refs ...string) *dome.Gallery {
	t.Helper()
	tiles := make([]dome.TileRecord, len(refs))
	for i, r := range refs {
		tiles[i] = dome.TileRecord{ImageRef: r}
	}
	cfg := dome.DefaultConfig()
	cfg.Viewport.Grayscale = false
	return dome.New(cfg, tiles)
}

func TestCapture_Idle(t *testing.T) {
	g := testGallery(t, "a.png")
	v, err := Capture(g, Shot{Size: dome.Size{Width: 640, Height: 480}, Focus: -1})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(v.Tiles) == 0 {
		t.Error("idle capture should have visible tiles")
	}
	if v.HasOverlay || v.Scrim {
		t.Error("idle capture should have no overlay")
	}
}

func TestCapture_Focus(t *testing.T) {
	g := testGallery(t, "a.png")
	v, _ := Capture(g, Shot{Size: dome.Size{Width: 640, Height: 480}, Focus: -1})
	front := v.Tiles[len(v.Tiles)-1].Tile.Index

	v, err := Capture(g, Shot{Size: dome.Size{Width: 640, Height: 480}, Focus: front})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !v.HasOverlay || v.Focus.Phase != dome.PhaseOpen {
		t.Errorf("focus = %+v, overlay %v; want settled open", v.Focus, v.HasOverlay)
	}
	if v.Overlay.Opacity != 1 {
		t.Errorf("opacity = %v, want 1", v.Overlay.Opacity)
	}
}

func TestCapture_Progress(t *testing.T) {
	g := testGallery(t, "a.png")
	v, _ := Capture(g, Shot{Size: dome.Size{Width: 640, Height: 480}, Focus: -1})
	front := v.Tiles[len(v.Tiles)-1].Tile.Index

	v, err := Capture(g, Shot{Size: dome.Size{Width: 640, Height: 480}, Focus: front, Progress: 0.5})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if v.Focus.Phase != dome.PhaseOpening {
		t.Errorf("phase = %v, want opening", v.Focus.Phase)
	}
	if v.Overlay.Opacity <= 0 || v.Overlay.Opacity >= 1 {
		t.Errorf("opacity = %v, want part way", v.Overlay.Opacity)
	}
}

func TestCapture_Errors(t *testing.T) {
	g := testGallery(t, "a.png")
	if _, err := Capture(g, Shot{Focus: -1}); err == nil {
		t.Error("zero size should fail")
	}
	_, err := Capture(g, Shot{Size: dome.Size{Width: 640, Height: 480}, Focus: 100000})
	if !errors.Is(err, ErrNotFocusable) {
		t.Errorf("err = %v, want ErrNotFocusable", err)
	}
}

// wide leaves the frame corners clear of the sphere.
var wide = dome.Size{Width: 2000, Height: 1600}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	red := color.NRGBA{R: 255, A: 255}
	g := testGallery(t, writeTile(t, dir, "red.png", red))
	v, err := Capture(g, Shot{Size: wide, Focus: -1})
	if err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(imagery.NewCache(nil))
	img := r.Render(context.Background(), v)
	if img.Bounds().Dx() != 2000 || img.Bounds().Dy() != 1600 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.NRGBAAt(0, 0); got != DefaultBackground {
		t.Errorf("corner = %v, want background", got)
	}
	front := v.Tiles[len(v.Tiles)-1].Placement.Rect.Center()
	if got := img.NRGBAAt(int(front.X), int(front.Y)); got.R < 200 || got.G > 40 {
		t.Errorf("front tile center = %v, want red", got)
	}
}

func TestRender_ScrimAndOverlay(t *testing.T) {
	g := testGallery(t, "missing.png")
	v, _ := Capture(g, Shot{Size: wide, Focus: -1})
	front := v.Tiles[len(v.Tiles)-1].Tile.Index
	v, err := Capture(g, Shot{Size: wide, Focus: front})
	if err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(imagery.NewCache(nil))
	r.Background = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	img := r.Render(context.Background(), v)

	// The scrim darkens the background; the overlay center shows the placeholder.
	if got := img.NRGBAAt(0, 0); got.R > 160 || got.R < 60 {
		t.Errorf("scrim corner = %v, want white blended 60%% toward the tint", got)
	}
	c := v.Overlay.Visual().Center()
	if got, want := img.NRGBAAt(int(c.X), int(c.Y)), imagery.Placeholder("missing.png"); got != want {
		t.Errorf("overlay center = %v, want placeholder %v", got, want)
	}
}

func TestRoundedMask(t *testing.T) {
	m := &roundedMask{rect: image.Rect(0, 0, 20, 20), radius: 6, alpha: 1}
	if a := m.At(0, 0).(color.Alpha16).A; a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	if a := m.At(10, 10).(color.Alpha16).A; a != 0xffff {
		t.Errorf("center alpha = %d, want opaque", a)
	}
	if a := m.At(10, 0).(color.Alpha16).A; a != 0xffff {
		t.Errorf("edge midpoint alpha = %d, want opaque", a)
	}
	if a := m.At(30, 10).(color.Alpha16).A; a != 0 {
		t.Errorf("outside alpha = %d, want 0", a)
	}

	half := &roundedMask{rect: image.Rect(0, 0, 4, 4), alpha: 0.5}
	if a := half.At(1, 1).(color.Alpha16).A; a != 0x8000 {
		t.Errorf("half alpha = %#x, want 0x8000", a)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name, path string
		want       Format
		wantErr    bool
	}{
		{"", "out.png", FormatPNG, false},
		{"", "out.WEBP", FormatWebP, false},
		{"", "out", FormatPNG, false},
		{"webp", "out.png", FormatWebP, false},
		{"gif", "out.png", "", true},
		{"", "out.jpg", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.name, tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFor(%q, %q) error = %v", tt.name, tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFor(%q, %q) = %q, want %q", tt.name, tt.path, got, tt.want)
		}
	}
}

func TestEncode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, FormatPNG); err != nil {
		t.Fatalf("PNG: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("PNG decode: %v", err)
	}

	buf.Reset()
	if err := Encode(&buf, img, FormatWebP); err != nil {
		t.Fatalf("WebP: %v", err)
	}
	cfg, err := webp.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("WebP decode: %v", err)
	}
	if cfg.Width != 6 || cfg.Height != 4 {
		t.Errorf("WebP size = %dx%d, want 6x4", cfg.Width, cfg.Height)
	}

	if err := Encode(&buf, img, Format("tiff")); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shot.png")
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if err := WriteFile(path, img, FormatPNG); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestCapture_Drag(t *testing.T) {
	g := testGallery(t, "a.png")
	v, err := Capture(g, Shot{Size: dome.Size{Width: 640, Height: 480}, Focus: -1, Drag: dome.Point{X: 200}})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	// 200px at 20px per degree, plus inertia in the same direction.
	if v.Rotation.Spin < 10 {
		t.Errorf("spin = %v, want at least 10", v.Rotation.Spin)
	}
	if g.Coasting() || g.Dragging() {
		t.Error("drag should be settled before capture")
	}

	front := v.Tiles[len(v.Tiles)-1].Tile.Index
	v, err = Capture(g, Shot{Size: dome.Size{Width: 640, Height: 480}, Focus: front, Drag: dome.Point{X: 50}})
	if err != nil {
		t.Fatalf("Capture after drag: %v", err)
	}
	if !v.HasOverlay {
		t.Error("focus after a drag should open once the cancel window has passed")
	}
}
