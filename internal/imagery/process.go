package imagery

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// Cover scales img to exactly w×h, cropping the longer axis around the center.
func Cover(img *image.NRGBA, w, h int) *image.NRGBA {
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	b := img.Bounds()
	if b.Empty() {
		return dst
	}

	src := b
	srcAspect := float64(b.Dx()) / float64(b.Dy())
	dstAspect := float64(w) / float64(h)
	if srcAspect > dstAspect {
		cw := int(float64(b.Dy())*dstAspect + 0.5)
		if cw < 1 {
			cw = 1
		}
		off := (b.Dx() - cw) / 2
		src = image.Rect(b.Min.X+off, b.Min.Y, b.Min.X+off+cw, b.Max.Y)
	} else if srcAspect < dstAspect {
		ch := int(float64(b.Dx())/dstAspect + 0.5)
		if ch < 1 {
			ch = 1
		}
		off := (b.Dy() - ch) / 2
		src = image.Rect(b.Min.X, b.Min.Y+off, b.Max.X, b.Min.Y+off+ch)
	}

	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}

// Grayscale returns a luminance-only copy of img, alpha preserved.
func Grayscale(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	for i := 0; i+3 < len(img.Pix); i += 4 {
		y := luma(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
		out.Pix[i] = y
		out.Pix[i+1] = y
		out.Pix[i+2] = y
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

// GrayColor converts a single color to its luminance.
func GrayColor(c color.NRGBA) color.NRGBA {
	y := luma(c.R, c.G, c.B)
	return color.NRGBA{R: y, G: y, B: y, A: c.A}
}

func luma(r, g, b uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
}

// AverageColor returns the alpha-weighted mean color of img.
func AverageColor(img *image.NRGBA) color.NRGBA {
	var r, g, b, a uint64
	for i := 0; i+3 < len(img.Pix); i += 4 {
		w := uint64(img.Pix[i+3])
		r += uint64(img.Pix[i]) * w
		g += uint64(img.Pix[i+1]) * w
		b += uint64(img.Pix[i+2]) * w
		a += w
	}
	if a == 0 {
		return color.NRGBA{}
	}
	n := uint64(len(img.Pix) / 4)
	return color.NRGBA{
		R: uint8(r / a),
		G: uint8(g / a),
		B: uint8(b / a),
		A: uint8(a / n),
	}
}

// Placeholder returns a stable muted color for a reference that has no image.
func Placeholder(ref string) color.NRGBA {
	if ref == "" {
		return color.NRGBA{R: 0x1c, G: 0x1a, B: 0x24, A: 0xff}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(ref))
	v := h.Sum32()
	return color.NRGBA{
		R: 0x30 + uint8(v%0x60),
		G: 0x30 + uint8((v>>8)%0x60),
		B: 0x30 + uint8((v>>16)%0x60),
		A: 0xff,
	}
}

// Blend composites top over bottom with the given opacity.
func Blend(bottom, top color.NRGBA, opacity float64) color.NRGBA {
	a := float64(top.A) / 255 * opacity
	if a <= 0 {
		return bottom
	}
	if a > 1 {
		a = 1
	}
	mix := func(b, t uint8) uint8 {
		return uint8(float64(b)*(1-a) + float64(t)*a + 0.5)
	}
	return color.NRGBA{
		R: mix(bottom.R, top.R),
		G: mix(bottom.G, top.G),
		B: mix(bottom.B, top.B),
		A: 0xff,
	}
}

// ParseColor parses #rgb, #rrggbb, #rrggbbaa, rgb(...) and rgba(...) colors.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], 3)
	}
	return color.NRGBA{}, fmt.Errorf("imagery: unsupported color %q", s)
}

func parseHex(h string) (color.NRGBA, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("imagery: bad hex color #%s", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("imagery: bad hex color #%s: %w", h, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseFunc(args string, n int) (color.NRGBA, error) {
	parts := strings.Split(args, ",")
	if len(parts) != n {
		return color.NRGBA{}, fmt.Errorf("imagery: expected %d color components, got %d", n, len(parts))
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, fmt.Errorf("imagery: bad color component %q", parts[i])
		}
		rgb[i] = uint8(v)
	}
	c := color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
	if n == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return color.NRGBA{}, fmt.Errorf("imagery: bad alpha %q", parts[3])
		}
		c.A = uint8(a*255 + 0.5)
	}
	return c, nil
}
