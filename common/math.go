package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

// PixelsPerUnit is the display scale of one simulation unit.
const PixelsPerUnit = 64.0

// ToUnits converts a display length in pixels to simulation units.
func ToUnits(px float64) float64 {
	return px / PixelsPerUnit
}

// ToPixels converts a simulation length to display pixels.
func ToPixels(u float64) float64 {
	return u * PixelsPerUnit
}

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// VectorFromAngle returns a vector of the given length pointing angle
// radians below the horizontal, mirrored when facing left.
func VectorFromAngle(angle, length float64, facingRight bool) cp.Vector {
	v := cp.Vector{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
	if !facingRight {
		v.X = -v.X
	}
	return v
}
