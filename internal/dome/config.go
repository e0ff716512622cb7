package dome

import (
	"math"
	"time"
)

// FitBasis selects which container dimension the sphere radius is derived from.
type FitBasis int

const (
	FitAuto   FitBasis = iota // width on wide containers, otherwise the smaller side
	FitMin                    // smaller side
	FitMax                    // larger side
	FitWidth                  // container width
	FitHeight                 // container height
)

// String returns the basis name.
func (b FitBasis) String() string {
	switch b {
	case FitMin:
		return "min"
	case FitMax:
		return "max"
	case FitWidth:
		return "width"
	case FitHeight:
		return "height"
	default:
		return "auto"
	}
}

// ParseFitBasis parses a basis name, defaulting to FitAuto.
func ParseFitBasis(s string) FitBasis {
	switch s {
	case "min":
		return FitMin
	case "max":
		return FitMax
	case "width":
		return FitWidth
	case "height":
		return FitHeight
	default:
		return FitAuto
	}
}

// ViewportConfig controls radius, padding and the published style parameters.
type ViewportConfig struct {
	Fit         float64
	Basis       FitBasis
	MinRadius   float64
	MaxRadius   float64
	PadFactor   float64
	MinPadding  float64
	HeightGuard float64 // radius never exceeds height * HeightGuard
	AutoAspect  float64 // aspect ratio at which FitAuto switches to width

	TileRadius    float64
	OverlayRadius float64
	Grayscale     bool
	OverlayTint   string
}

// GestureConfig controls drag mapping and tap classification.
type GestureConfig struct {
	Sensitivity float64 // pixels per degree
	MaxTilt     float64 // degrees

	MoveThreshold     float64 // pixels before a gesture counts as moved
	MouseTapThreshold float64 // pixels, also used for pen
	TouchTapThreshold float64

	VelocityWindow        time.Duration
	NegligibleVelocity    float64 // px/ms below which the fallback estimate is used
	FallbackVelocityScale float64
	InertiaThreshold      float64 // px/ms needed to start inertia
}

// InertiaConfig holds the decay constants of the inertia loop.
type InertiaConfig struct {
	Dampening     float64 // clamped to [0,1]
	MaxVelocity   float64
	VelocityScale float64
	AngleDivisor  float64

	FrictionBase   float64
	FrictionRange  float64
	StopBase       float64
	StopRange      float64
	MaxFramesBase  float64
	MaxFramesRange float64
}

// FocusConfig controls the enlarge and collapse transitions.
type FocusConfig struct {
	Duration time.Duration

	// OpenedWidth and OpenedHeight enable the second, custom-size stage when both are set.
	OpenedWidth  float64
	OpenedHeight float64

	MobileBreakpoint float64
	MobileFraction   float64

	CloseGrace  time.Duration // close requests are ignored this long after opening
	TapCooldown time.Duration // taps are ignored this long after a drag release
	TapCancel   time.Duration // a drag release blocks opening for this long

	TileInset float64
}

// Config is the complete gallery configuration.
type Config struct {
	Segments int
	Viewport ViewportConfig
	Gesture  GestureConfig
	Inertia  InertiaConfig
	Focus    FocusConfig
}

// DefaultConfig returns the configuration of the stock gallery.
func DefaultConfig() Config {
	return Config{
		Segments: DefaultSegments,
		Viewport: ViewportConfig{
			Fit:           0.5,
			Basis:         FitAuto,
			MinRadius:     600,
			MaxRadius:     math.Inf(1),
			PadFactor:     0.25,
			MinPadding:    8,
			HeightGuard:   1.35,
			AutoAspect:    1.3,
			TileRadius:    30,
			OverlayRadius: 30,
			Grayscale:     true,
			OverlayTint:   "#060010",
		},
		Gesture: GestureConfig{
			Sensitivity:           20,
			MaxTilt:               5,
			MoveThreshold:         4,
			MouseTapThreshold:     6,
			TouchTapThreshold:     10,
			VelocityWindow:        100 * time.Millisecond,
			NegligibleVelocity:    0.001,
			FallbackVelocityScale: 0.02,
			InertiaThreshold:      0.005,
		},
		Inertia: InertiaConfig{
			Dampening:      1,
			MaxVelocity:    1.4,
			VelocityScale:  80,
			AngleDivisor:   200,
			FrictionBase:   0.94,
			FrictionRange:  0.055,
			StopBase:       0.015,
			StopRange:      0.01,
			MaxFramesBase:  90,
			MaxFramesRange: 270,
		},
		Focus: FocusConfig{
			Duration:         400 * time.Millisecond,
			OpenedWidth:      400,
			OpenedHeight:     500,
			MobileBreakpoint: 768,
			MobileFraction:   0.8,
			CloseGrace:       250 * time.Millisecond,
			TapCooldown:      80 * time.Millisecond,
			TapCancel:        120 * time.Millisecond,
			TileInset:        10,
		},
	}
}

func (c Config) segments() int {
	if c.Segments <= 0 {
		return DefaultSegments
	}
	return c.Segments
}

func (c GestureConfig) sensitivity() float64 {
	if c.Sensitivity <= 0 {
		return 20
	}
	return c.Sensitivity
}

// TapThreshold returns the tap radius in pixels for a pointer type.
func (c GestureConfig) TapThreshold(p PointerType) float64 {
	if p == PointerTouch {
		return c.TouchTapThreshold
	}
	return c.MouseTapThreshold
}
