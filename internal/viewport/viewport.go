// Package viewport maps between screen pixels and image-natural pixels for an
// image that can be zoomed, rotated in 90 degree steps and panned.
//
// The image is first fitted into the container (preserving aspect ratio) and
// centred. Scale, rotation and pan are then applied around the container
// centre. Annotations are always stored in image-natural coordinates and
// pass through ImageToScreen when drawn, so they follow the image under any
// transform.
package viewport

import (
	"image"
	"math"

	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/spatial/r2"
)

// boundsEpsilon absorbs rounding when a point lies exactly on the image edge.
const boundsEpsilon = 1e-9

// State is the user controlled part of the transform.
type State struct {
	Scale float64
	// Rotation accumulates in steps of 90 and is never wrapped; use
	// NormalizedRotation for rendering.
	Rotation int
	// Pan is expressed in screen pixels.
	Pan r2.Vec
}

// Identity returns the untransformed state.
func Identity() State { return State{Scale: 1} }

// NormalizedRotation returns Rotation in [0, 360).
func (s State) NormalizedRotation() int {
	r := s.Rotation % 360
	if r < 0 {
		r += 360
	}
	return r
}

// Limits bounds zooming.
type Limits struct {
	MinScale float64
	MaxScale float64
	ZoomStep float64
}

// DefaultLimits returns the zoom range used when none is configured.
func DefaultLimits() Limits {
	return Limits{MinScale: 0.1, MaxScale: 10, ZoomStep: 1.2}
}

// Layout describes where the image is shown and how large it really is.
type Layout struct {
	// Container is the on-screen area the image is fitted into.
	Container image.Rectangle
	// Natural is the intrinsic width and height of the image.
	Natural image.Point
}

// Viewport combines the transform state with its layout.
type Viewport struct {
	State  State
	Limits Limits
	Layout Layout
}

// New returns a viewport at its home state for the given layout.
func New(layout Layout, limits Limits) Viewport {
	v := Viewport{Limits: limits, Layout: layout}
	v.State = v.home()
	return v
}

// Fit returns the displayed-to-natural size ratio before user zoom.
func (v *Viewport) Fit() float64 {
	nw, nh := v.Layout.Natural.X, v.Layout.Natural.Y
	cw, ch := v.Layout.Container.Dx(), v.Layout.Container.Dy()
	if nw <= 0 || nh <= 0 || cw <= 0 || ch <= 0 {
		return 1
	}
	return math.Min(float64(cw)/float64(nw), float64(ch)/float64(nh))
}

// EffectiveScale is the number of screen pixels per image pixel.
func (v *Viewport) EffectiveScale() float64 {
	return v.State.Scale * v.Fit()
}

// ImageToScreen maps an image-natural point to screen pixels.
func (v *Viewport) ImageToScreen(p r2.Vec) r2.Vec {
	cos, sin := v.rotation()
	k := v.EffectiveScale()
	d := r2.Scale(k, r2.Sub(p, v.naturalCentre()))
	rotated := r2.Vec{X: d.X*cos - d.Y*sin, Y: d.X*sin + d.Y*cos}
	return r2.Add(r2.Add(v.containerCentre(), v.State.Pan), rotated)
}

// ScreenToImage maps a screen point to image-natural pixels. ok is false when
// the point lies outside the image; such points are rejected rather than
// clamped so that callers can treat them as "not on the image".
func (v *Viewport) ScreenToImage(x, y float64) (p r2.Vec, ok bool) {
	k := v.EffectiveScale()
	if k == 0 || v.Layout.Natural.X <= 0 || v.Layout.Natural.Y <= 0 {
		return r2.Vec{}, false
	}
	cos, sin := v.rotation()
	d := r2.Sub(r2.Vec{X: x, Y: y}, r2.Add(v.containerCentre(), v.State.Pan))
	unrotated := r2.Vec{X: d.X*cos + d.Y*sin, Y: -d.X*sin + d.Y*cos}
	p = r2.Add(v.naturalCentre(), r2.Scale(1/k, unrotated))
	return p, v.Contains(p)
}

// Contains reports whether p lies within the image bounds.
func (v *Viewport) Contains(p r2.Vec) bool {
	w, h := float64(v.Layout.Natural.X), float64(v.Layout.Natural.Y)
	return p.X >= -boundsEpsilon && p.Y >= -boundsEpsilon &&
		p.X <= w+boundsEpsilon && p.Y <= h+boundsEpsilon
}

// Affine returns the ImageToScreen transform as a matrix suitable for
// golang.org/x/image/draw. Drawing the image through this matrix keeps it
// aligned with overlays drawn through ImageToScreen.
func (v *Viewport) Affine() f64.Aff3 {
	cos, sin := v.rotation()
	k := v.EffectiveScale()
	nc := v.naturalCentre()
	t := r2.Add(v.containerCentre(), v.State.Pan)
	a, b := k*cos, -k*sin
	d, e := k*sin, k*cos
	return f64.Aff3{
		a, b, t.X - (a*nc.X + b*nc.Y),
		d, e, t.Y - (d*nc.X + e*nc.Y),
	}
}

// ZoomIn multiplies the scale by the zoom step.
func (v *Viewport) ZoomIn() { v.SetScale(v.State.Scale * v.step()) }

// ZoomOut divides the scale by the zoom step.
func (v *Viewport) ZoomOut() { v.SetScale(v.State.Scale / v.step()) }

// SetScale sets the scale clamped to the configured limits.
func (v *Viewport) SetScale(s float64) {
	if math.IsNaN(s) {
		return
	}
	lo, hi := v.Limits.MinScale, v.Limits.MaxScale
	if lo > 0 && s < lo {
		s = lo
	}
	if hi > 0 && s > hi {
		s = hi
	}
	v.State.Scale = s
}

// Rotate turns the image a further 90 degrees clockwise.
func (v *Viewport) Rotate() { v.State.Rotation += 90 }

// PanBy moves the image by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.State.Pan = r2.Add(v.State.Pan, r2.Vec{X: dx, Y: dy})
}

// Reset restores the home state.
func (v *Viewport) Reset() { v.State = v.home() }

// IsIdentity reports whether no zoom, rotation or pan is applied beyond
// the home state.
func (v *Viewport) IsIdentity() bool { return v.State == v.home() }

// home is the identity state with its scale clamped to the limits.
func (v *Viewport) home() State {
	h := *v
	h.State = Identity()
	h.SetScale(1)
	return h.State
}

func (v *Viewport) step() float64 {
	if v.Limits.ZoomStep <= 1 {
		return DefaultLimits().ZoomStep
	}
	return v.Limits.ZoomStep
}

// rotation returns exact cosine and sine for the quarter-turn rotation.
func (v *Viewport) rotation() (cos, sin float64) {
	switch v.State.NormalizedRotation() {
	case 90:
		return 0, 1
	case 180:
		return -1, 0
	case 270:
		return 0, -1
	default:
		return 1, 0
	}
}

func (v *Viewport) containerCentre() r2.Vec {
	c := v.Layout.Container
	return r2.Vec{
		X: float64(c.Min.X) + float64(c.Dx())/2,
		Y: float64(c.Min.Y) + float64(c.Dy())/2,
	}
}

func (v *Viewport) naturalCentre() r2.Vec {
	return r2.Vec{X: float64(v.Layout.Natural.X) / 2, Y: float64(v.Layout.Natural.Y) / 2}
}
