package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestAngleBetween(t *testing.T) {
	cases := []struct {
		name   string
		v1, v2 r2.Vec
		want   float64
		ok     bool
	}{
		{"right", r2.Vec{X: 1}, r2.Vec{Y: 1}, 90, true},
		{"identical", r2.Vec{X: 3, Y: 4}, r2.Vec{X: 3, Y: 4}, 0, true},
		{"opposite", r2.Vec{X: 1}, r2.Vec{X: -1}, 180, true},
		{"fortyfive", r2.Vec{X: 2}, r2.Vec{X: 5, Y: 5}, 45, true},
		{"near parallel", r2.Vec{X: 1e8, Y: 1}, r2.Vec{X: 1e8, Y: 1}, 0, true},
		{"zero first", r2.Vec{}, r2.Vec{X: 1}, 0, false},
		{"zero both", r2.Vec{}, r2.Vec{}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := AngleBetween(tc.v1, tc.v2)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if math.IsNaN(got) {
				t.Fatalf("angle is NaN")
			}
			if !scalar.EqualWithinAbs(got, tc.want, 0.01) {
				t.Fatalf("angle = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPerpendicular(t *testing.T) {
	got := Perpendicular(r2.Vec{X: 10, Y: 0})
	if !scalar.EqualWithinAbs(got.X, 0, 1e-12) || !scalar.EqualWithinAbs(got.Y, 1, 1e-12) {
		t.Fatalf("Perpendicular((10,0)) = %v, want (0,1)", got)
	}
	d := r2.Vec{X: 3, Y: -7}
	p := Perpendicular(d)
	if dot := r2.Dot(d, p); !scalar.EqualWithinAbs(dot, 0, 1e-9) {
		t.Fatalf("dot = %v, want 0", dot)
	}
	if n := r2.Norm(p); !scalar.EqualWithinAbs(n, 1, 1e-12) {
		t.Fatalf("norm = %v, want 1", n)
	}
}

func TestPerpendicularDegenerate(t *testing.T) {
	for _, v := range []r2.Vec{{}, {X: math.NaN()}, {Y: math.Inf(1)}} {
		if got := Perpendicular(v); got != (r2.Vec{}) {
			t.Errorf("Perpendicular(%v) = %v, want zero vector", v, got)
		}
	}
}

func TestProjectOntoRay(t *testing.T) {
	origin := r2.Vec{X: 10, Y: 10}
	dir := r2.Vec{Y: 1}
	got := ProjectOntoRay(r2.Vec{X: 25, Y: 40}, origin, dir)
	if got != (r2.Vec{X: 10, Y: 40}) {
		t.Fatalf("projection = %v, want (10,40)", got)
	}
	behind := ProjectOntoRay(r2.Vec{X: 0, Y: -5}, origin, dir)
	if behind != (r2.Vec{X: 10, Y: -5}) {
		t.Fatalf("projection behind origin = %v, want (10,-5)", behind)
	}
}

func TestDistanceAndConversion(t *testing.T) {
	d := Distance(r2.Vec{}, r2.Vec{X: 378})
	if d != 378 {
		t.Fatalf("distance = %v, want 378", d)
	}
	if cm := PixelsToCentimeters(d, DefaultPixelsPerCM); cm != 10.0 {
		t.Fatalf("centimeters = %v, want 10.0", cm)
	}
	if cm := PixelsToCentimeters(100, DefaultPixelsPerCM); cm != 2.6 {
		t.Fatalf("centimeters = %v, want 2.6", cm)
	}
	if cm := PixelsToCentimeters(100, 0); cm != 0 {
		t.Fatalf("zero calibration = %v, want 0", cm)
	}
}

func TestMidpoint(t *testing.T) {
	if got := Midpoint(r2.Vec{X: 2, Y: 4}, r2.Vec{X: 6, Y: 10}); got != (r2.Vec{X: 4, Y: 7}) {
		t.Fatalf("midpoint = %v", got)
	}
}
