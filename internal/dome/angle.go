package dome

import "math"

// Orientation is a pair of sphere angles in degrees.
// Tilt rotates around the horizontal axis, Spin around the vertical axis.
type Orientation struct {
	Tilt float64
	Spin float64
}

// Add returns the component-wise sum of two orientations.
func (o Orientation) Add(other Orientation) Orientation {
	return Orientation{Tilt: o.Tilt + other.Tilt, Spin: o.Spin + other.Spin}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// normalize360 wraps an angle into [0, 360).
func normalize360(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a -= 360
	}
	return a
}

// WrapSigned wraps an angle into the half-open range (-180, 180].
func WrapSigned(deg float64) float64 {
	a := normalize360(deg)
	if a > 180 {
		a -= 360
	}
	return a
}

// roundAngle rounds to the precision the sphere transform is applied at.
func roundAngle(deg float64) float64 {
	return math.Round(deg*1000) / 1000
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
