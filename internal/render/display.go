// Package render draws the image and its annotation overlay. Build maps the
// annotations to screen space as a display list; Rasterize paints the list.
// Both the image and the overlay go through the same viewport transform so
// they stay aligned at every zoom, rotation and pan.
package render

import (
	"image"
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/shineyruler/internal/annotation"
	"github.com/example/shineyruler/internal/theme"
	"github.com/example/shineyruler/internal/tool"
	"github.com/example/shineyruler/internal/viewport"
)

const (
	strokeWidth   = 2
	previewWidth  = 1
	previewDash   = 6
	markerRadius  = 4
	anchorRadius  = 3
	labelOffsetPx = 14
)

// Style describes how a stroke is painted.
type Style struct {
	Color  color.RGBA
	Width  int
	Dashed bool
}

type Segment struct {
	From, To r2.Vec
	Style    Style
}

// Marker is a filled dot, used for points and gesture anchors.
type Marker struct {
	At     r2.Vec
	Radius int
	Style  Style
}

// Ellipse is axis aligned in screen space.
type Ellipse struct {
	Center, Radii r2.Vec
	Style         Style
}

type Label struct {
	At         r2.Vec
	Text       string
	Foreground color.RGBA
	Background color.RGBA
}

// DisplayList holds screen-space primitives. Rasterize paints segments,
// ellipses, markers and labels in that order.
type DisplayList struct {
	Segments []Segment
	Ellipses []Ellipse
	Markers  []Marker
	Labels   []Label
}

// Len returns the number of primitives.
func (d DisplayList) Len() int {
	return len(d.Segments) + len(d.Ellipses) + len(d.Markers) + len(d.Labels)
}

// Build maps anns and the gesture preview to screen space through vp.
func Build(vp viewport.Viewport, anns []annotation.Annotation, preview tool.Preview, th *theme.Theme) DisplayList {
	if th == nil {
		th = theme.Default()
	}
	var dl DisplayList
	swap := vp.State.NormalizedRotation()%180 == 90
	k := vp.EffectiveScale()

	owner := map[annotation.ID]annotation.Kind{}
	for _, a := range anns {
		switch v := a.(type) {
		case annotation.Angle:
			owner[v.Line1] = annotation.KindAngle
			owner[v.Line2] = annotation.KindAngle
		case annotation.Distance:
			owner[v.Line] = annotation.KindDistance
		}
	}

	for _, a := range anns {
		switch v := a.(type) {
		case annotation.Point:
			dl.Markers = append(dl.Markers, Marker{
				At:     vp.ImageToScreen(r2.Vec{X: v.X, Y: v.Y}),
				Radius: markerRadius,
				Style:  Style{Color: th.Point, Width: 1},
			})
		case annotation.Line:
			col := th.Line
			switch owner[v.ID()] {
			case annotation.KindAngle:
				col = th.Angle
			case annotation.KindDistance:
				col = th.Distance
			}
			dl.Segments = append(dl.Segments, Segment{
				From:  vp.ImageToScreen(r2.Vec{X: v.StartX, Y: v.StartY}),
				To:    vp.ImageToScreen(r2.Vec{X: v.EndX, Y: v.EndY}),
				Style: Style{Color: col, Width: strokeWidth},
			})
		case annotation.Ellipse:
			dl.Ellipses = append(dl.Ellipses, Ellipse{
				Center: vp.ImageToScreen(r2.Vec{X: v.CenterX, Y: v.CenterY}),
				Radii:  screenRadii(v.RadiusX, v.RadiusY, k, swap),
				Style:  Style{Color: th.Ellipse, Width: strokeWidth},
			})
		case annotation.Angle:
			at := vp.ImageToScreen(r2.Vec{X: v.VertexX, Y: v.VertexY})
			dl.Labels = append(dl.Labels, Label{
				At:         r2.Vec{X: at.X, Y: at.Y - labelOffsetPx},
				Text:       tool.FormatDegrees(v.Degrees),
				Foreground: th.LabelText,
				Background: th.LabelBackground,
			})
		case annotation.Distance:
			at := vp.ImageToScreen(r2.Vec{X: v.MidX, Y: v.MidY})
			dl.Labels = append(dl.Labels, Label{
				At:         r2.Vec{X: at.X, Y: at.Y - labelOffsetPx},
				Text:       tool.FormatCentimeters(v.Centimeters),
				Foreground: th.LabelText,
				Background: th.LabelBackground,
			})
		}
	}

	pv := Style{Color: th.Preview, Width: previewWidth, Dashed: true}
	for _, s := range preview.Segments {
		dl.Segments = append(dl.Segments, Segment{From: vp.ImageToScreen(s.From), To: vp.ImageToScreen(s.To), Style: pv})
	}
	if e := preview.Ellipse; e != nil && (e.Radii.X > 0 || e.Radii.Y > 0) {
		dl.Ellipses = append(dl.Ellipses, Ellipse{
			Center: vp.ImageToScreen(e.Center),
			Radii:  screenRadii(e.Radii.X, e.Radii.Y, k, swap),
			Style:  pv,
		})
	}
	for _, a := range preview.Anchors {
		dl.Markers = append(dl.Markers, Marker{At: vp.ImageToScreen(a), Radius: anchorRadius, Style: Style{Color: th.Anchor, Width: 1}})
	}
	if l := preview.Label; l != nil {
		at := vp.ImageToScreen(l.At)
		dl.Labels = append(dl.Labels, Label{
			At:         r2.Vec{X: at.X, Y: at.Y - labelOffsetPx},
			Text:       l.Text,
			Foreground: th.LabelText,
			Background: th.LabelBackground,
		})
	}
	return dl
}

// screenRadii scales image radii to the screen. Quarter turns exchange the
// horizontal and vertical axes.
func screenRadii(rx, ry, k float64, swap bool) r2.Vec {
	if swap {
		rx, ry = ry, rx
	}
	return r2.Vec{X: rx * k, Y: ry * k}
}

// Rasterize paints dl onto dst.
func Rasterize(dst *image.RGBA, dl DisplayList) {
	for _, s := range dl.Segments {
		drawSegment(dst, s.From.X, s.From.Y, s.To.X, s.To.Y, s.Style.Color, s.Style.Width, dashFor(s.Style))
	}
	for _, e := range dl.Ellipses {
		drawEllipse(dst, e.Center.X, e.Center.Y, e.Radii.X, e.Radii.Y, e.Style.Color, e.Style.Width, dashFor(e.Style))
	}
	for _, m := range dl.Markers {
		cx, cy := iround(m.At.X), iround(m.At.Y)
		drawFilledCircle(dst, cx, cy, m.Radius, m.Style.Color)
		drawCircleThin(dst, cx, cy, m.Radius+1, color.Black)
	}
	for _, l := range dl.Labels {
		drawLabel(dst, iround(l.At.X), iround(l.At.Y), l.Text, l.Foreground, l.Background)
	}
}

func dashFor(s Style) int {
	if s.Dashed {
		return previewDash
	}
	return 0
}
