// Package geometry holds the side-effect free vector helpers used to build
// annotations. All inputs and outputs are in image-natural pixel space.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultPixelsPerCM approximates a 96 DPI display (96 / 2.54). It is not a
// physical calibration of the image; measurements derived from it are only
// as accurate as that assumption.
const DefaultPixelsPerCM = 37.8

// degenerateLength is the length below which a vector has no usable direction.
const degenerateLength = 1e-9

// Distance returns the Euclidean distance between p and q.
func Distance(p, q r2.Vec) float64 {
	return r2.Norm(r2.Sub(q, p))
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q r2.Vec) r2.Vec {
	return r2.Scale(0.5, r2.Add(p, q))
}

// PixelsToCentimeters converts a pixel length using pixelsPerCM and rounds the
// result to one decimal place. A non-positive calibration yields 0.
func PixelsToCentimeters(px, pixelsPerCM float64) float64 {
	if pixelsPerCM <= 0 || !finite(px) {
		return 0
	}
	return scalar.Round(px/pixelsPerCM, 1)
}

// Perpendicular rotates d by 90 degrees and normalises it. A zero-length or
// non-finite input returns the zero vector.
func Perpendicular(d r2.Vec) r2.Vec {
	if IsDegenerate(d) {
		return r2.Vec{}
	}
	return r2.Unit(r2.Vec{X: -d.Y, Y: d.X})
}

// ProjectOntoRay projects p onto the line through origin along dirUnit.
// dirUnit is expected to have unit length.
func ProjectOntoRay(p, origin, dirUnit r2.Vec) r2.Vec {
	t := r2.Dot(r2.Sub(p, origin), dirUnit)
	return r2.Add(origin, r2.Scale(t, dirUnit))
}

// AngleBetween returns the angle between v1 and v2 in degrees, in [0, 180].
// ok is false when either vector is degenerate, in which case the angle is 0.
func AngleBetween(v1, v2 r2.Vec) (deg float64, ok bool) {
	if IsDegenerate(v1) || IsDegenerate(v2) {
		return 0, false
	}
	cos := r2.Dot(v1, v2) / (r2.Norm(v1) * r2.Norm(v2))
	// Rounding can push cos slightly past ±1 for near-parallel vectors.
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, true
}

// IsDegenerate reports whether v is too short (or not finite) to have a
// direction.
func IsDegenerate(v r2.Vec) bool {
	if !finite(v.X) || !finite(v.Y) {
		return true
	}
	return r2.Norm(v) < degenerateLength
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
