// Package imagery loads tile images and derives the thumbnails and colors the
// renderers draw with.
package imagery

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultTimeout for remote image requests.
	DefaultTimeout = 15 * time.Second

	// MaxImageBytes caps how much of a single image is read.
	MaxImageBytes = 32 << 20
)

// ErrEmptyRef is returned for tiles without an image reference.
var ErrEmptyRef = errors.New("imagery: empty image reference")

// Loader reads images from files, data URIs and http(s) URLs.
type Loader struct {
	client  *http.Client
	timeout time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = client
	}
}

// NewLoader creates an image loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: l.timeout}
	}
	return l
}

// Load reads and decodes the image named by ref.
func (l *Loader) Load(ctx context.Context, ref string) (*image.NRGBA, error) {
	raw, err := l.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("imagery: decode %s: %w", shortRef(ref), err)
	}
	return ToNRGBA(img), nil
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case ref == "":
		return nil, ErrEmptyRef
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetch(ctx, ref)
	default:
		f, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("imagery: read %s: %w", ref, err)
		}
		defer f.Close()
		raw, err := io.ReadAll(io.LimitReader(f, MaxImageBytes))
		if err != nil {
			return nil, fmt.Errorf("imagery: read %s: %w", ref, err)
		}
		return raw, nil
	}
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("imagery: create request: %w", err)
	}
	req.Header.Set("User-Agent", "ls-dome/1.0 (dome gallery)")
	req.Header.Set("Accept", "image/*")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagery: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagery: fetch %s: unexpected status code: %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("imagery: read response body: %w", err)
	}
	return body, nil
}

// decodeDataURI extracts the payload of a base64 data URI.
func decodeDataURI(ref string) ([]byte, error) {
	comma := strings.IndexByte(ref, ',')
	if comma < 0 {
		return nil, fmt.Errorf("imagery: malformed data URI")
	}
	meta, payload := ref[len("data:"):comma], ref[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("imagery: data URI is not base64")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("imagery: data URI: %w", err)
	}
	return raw, nil
}

func shortRef(ref string) string {
	if strings.HasPrefix(ref, "data:") && len(ref) > 32 {
		return ref[:32] + "..."
	}
	return ref
}

// ToNRGBA converts any image to NRGBA with its origin at zero.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// Opaque sources copy straight through.
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
