package tool

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/shineyruler/internal/annotation"
	"github.com/example/shineyruler/internal/geometry"
	"github.com/example/shineyruler/internal/viewport"
)

// gesture is the partial state of a multi-step interaction. Each tool has
// its own variant carrying only what its protocol needs; a nil gesture means
// the tool is idle.
type gesture interface{ isGesture() }

type panDrag struct{ last r2.Vec }

type lineGesture struct {
	anchor, cursor r2.Vec
	moved          bool
}

type ellipseGesture struct{ center, cursor r2.Vec }

type perpendicularGesture struct {
	anchor, cursor r2.Vec
	// dir is the unit direction the next segment is constrained to. It is
	// only meaningful once segments > 0.
	dir      r2.Vec
	segments int
}

type angleGesture struct {
	start  r2.Vec
	vertex *r2.Vec
	cursor r2.Vec
}

type rulerGesture struct{ anchor, cursor r2.Vec }

func (*panDrag) isGesture()              {}
func (*lineGesture) isGesture()          {}
func (*ellipseGesture) isGesture()       {}
func (*perpendicularGesture) isGesture() {}
func (*angleGesture) isGesture()         {}
func (*rulerGesture) isGesture()         {}

// Machine interprets pointer events for the active tool. It converts screen
// coordinates through the viewport and writes finished annotations into the
// store.
type Machine struct {
	tool     Tool
	gesture  gesture
	settings Settings
	vp       *viewport.Viewport
	store    *annotation.Store
}

// NewMachine returns a machine with the pan tool selected.
func NewMachine(vp *viewport.Viewport, store *annotation.Store, settings Settings) *Machine {
	if settings.MoveThreshold < 0 {
		settings.MoveThreshold = 0
	}
	if settings.PixelsPerCM <= 0 {
		settings.PixelsPerCM = geometry.DefaultPixelsPerCM
	}
	return &Machine{tool: ToolPan, settings: settings, vp: vp, store: store}
}

// Tool returns the active tool.
func (m *Machine) Tool() Tool { return m.tool }

// Settings returns the recognition settings in use.
func (m *Machine) Settings() Settings { return m.settings }

// Select activates t. Any unfinished gesture is discarded; finished
// annotations are untouched.
func (m *Machine) Select(t Tool) {
	m.gesture = nil
	m.tool = t
}

// Cancel discards the unfinished gesture, if any.
func (m *Machine) Cancel() { m.gesture = nil }

// Pending reports whether a gesture is in progress.
func (m *Machine) Pending() bool { return m.gesture != nil }

// Handle feeds one pointer event to the active tool and reports whether the
// visible state changed.
func (m *Machine) Handle(ev Event) bool {
	switch m.tool {
	case ToolPan:
		return m.handlePan(ev)
	case ToolPoint:
		return m.handlePoint(ev)
	case ToolLine:
		return m.handleLine(ev)
	case ToolEllipse:
		return m.handleEllipse(ev)
	case ToolPerpendicular:
		return m.handlePerpendicular(ev)
	case ToolAngle:
		return m.handleAngle(ev)
	case ToolRuler:
		return m.handleRuler(ev)
	}
	return false
}

func (m *Machine) handlePan(ev Event) bool {
	screen := r2.Vec{X: ev.X, Y: ev.Y}
	switch ev.Phase {
	case PhaseDown:
		m.gesture = &panDrag{last: screen}
	case PhaseMove:
		g, ok := m.gesture.(*panDrag)
		if !ok {
			return false
		}
		d := r2.Sub(screen, g.last)
		g.last = screen
		m.vp.PanBy(d.X, d.Y)
		return d != (r2.Vec{})
	case PhaseUp:
		m.gesture = nil
	}
	return false
}

func (m *Machine) handlePoint(ev Event) bool {
	if ev.Phase != PhaseDown {
		return false
	}
	p, ok := m.vp.ScreenToImage(ev.X, ev.Y)
	if !ok {
		return false
	}
	m.store.AddPoint(p.X, p.Y)
	return true
}

func (m *Machine) handleLine(ev Event) bool {
	p, inside := m.vp.ScreenToImage(ev.X, ev.Y)
	g, _ := m.gesture.(*lineGesture)
	switch ev.Phase {
	case PhaseMove:
		if g == nil {
			return false
		}
		g.cursor = p
		if geometry.Distance(g.anchor, p) >= m.settings.MoveThreshold {
			g.moved = true
		}
		return true
	case PhaseDown:
		if g == nil {
			if !inside {
				return false
			}
			m.gesture = &lineGesture{anchor: p, cursor: p}
			return true
		}
		m.gesture = nil
		if !inside {
			return true
		}
		if g.moved || geometry.Distance(g.anchor, p) >= m.settings.MoveThreshold {
			m.store.AddLine(annotation.NewLine(g.anchor.X, g.anchor.Y, p.X, p.Y))
		} else {
			m.store.AddPoint(g.anchor.X, g.anchor.Y)
		}
		return true
	}
	return false
}

func (m *Machine) handleEllipse(ev Event) bool {
	p, inside := m.vp.ScreenToImage(ev.X, ev.Y)
	g, _ := m.gesture.(*ellipseGesture)
	switch ev.Phase {
	case PhaseMove:
		if g == nil {
			return false
		}
		g.cursor = p
		return true
	case PhaseDown:
		if g == nil {
			if !inside {
				return false
			}
			m.gesture = &ellipseGesture{center: p, cursor: p}
			return true
		}
		if !inside {
			m.gesture = nil
			return true
		}
		rx, ry := abs(p.X-g.center.X), abs(p.Y-g.center.Y)
		if rx == 0 && ry == 0 {
			return false
		}
		m.store.AddEllipse(annotation.Ellipse{CenterX: g.center.X, CenterY: g.center.Y, RadiusX: rx, RadiusY: ry})
		m.gesture = nil
		return true
	}
	return false
}

func (m *Machine) handlePerpendicular(ev Event) bool {
	p, inside := m.vp.ScreenToImage(ev.X, ev.Y)
	g, _ := m.gesture.(*perpendicularGesture)
	switch ev.Phase {
	case PhaseMove:
		if g == nil {
			return false
		}
		g.cursor = g.constrain(p)
		return true
	case PhaseDown:
		if !inside {
			return false
		}
		if g == nil {
			m.gesture = &perpendicularGesture{anchor: p, cursor: p}
			return true
		}
		end := g.constrain(p)
		if !m.vp.Contains(end) || geometry.IsDegenerate(r2.Sub(end, g.anchor)) {
			return false
		}
		m.store.AddLine(annotation.NewLine(g.anchor.X, g.anchor.Y, end.X, end.Y))
		g.dir = geometry.Perpendicular(r2.Sub(end, g.anchor))
		g.anchor = end
		g.cursor = end
		g.segments++
		return true
	}
	return false
}

// constrain projects p onto the allowed ray once the chain has a first
// segment.
func (g *perpendicularGesture) constrain(p r2.Vec) r2.Vec {
	if g.segments == 0 || g.dir == (r2.Vec{}) {
		return p
	}
	return geometry.ProjectOntoRay(p, g.anchor, g.dir)
}

func (m *Machine) handleAngle(ev Event) bool {
	p, inside := m.vp.ScreenToImage(ev.X, ev.Y)
	g, _ := m.gesture.(*angleGesture)
	switch ev.Phase {
	case PhaseMove:
		if g == nil {
			return false
		}
		g.cursor = p
		return true
	case PhaseDown:
		if !inside {
			return false
		}
		switch {
		case g == nil:
			m.gesture = &angleGesture{start: p, cursor: p}
		case g.vertex == nil:
			if geometry.IsDegenerate(r2.Sub(g.start, p)) {
				return false
			}
			v := p
			g.vertex = &v
			g.cursor = p
		default:
			v := *g.vertex
			deg, ok := geometry.AngleBetween(r2.Sub(g.start, v), r2.Sub(p, v))
			if !ok {
				return false
			}
			m.store.AddAngle(
				annotation.NewLine(g.start.X, g.start.Y, v.X, v.Y),
				annotation.NewLine(v.X, v.Y, p.X, p.Y),
				v.X, v.Y, deg,
			)
			m.gesture = nil
		}
		return true
	}
	return false
}

func (m *Machine) handleRuler(ev Event) bool {
	p, inside := m.vp.ScreenToImage(ev.X, ev.Y)
	g, _ := m.gesture.(*rulerGesture)
	switch ev.Phase {
	case PhaseMove:
		if g == nil {
			return false
		}
		g.cursor = p
		return true
	case PhaseDown:
		if g == nil {
			if !inside {
				return false
			}
			m.gesture = &rulerGesture{anchor: p, cursor: p}
			return true
		}
		if !inside {
			m.gesture = nil
			return true
		}
		if geometry.IsDegenerate(r2.Sub(p, g.anchor)) {
			return false
		}
		cm := geometry.PixelsToCentimeters(geometry.Distance(g.anchor, p), m.settings.PixelsPerCM)
		m.store.AddDistance(annotation.NewLine(g.anchor.X, g.anchor.Y, p.X, p.Y), cm)
		m.gesture = nil
		return true
	}
	return false
}

// Segment is a straight preview stroke in image coordinates.
type Segment struct{ From, To r2.Vec }

// Label is preview text anchored in image coordinates.
type Label struct {
	At   r2.Vec
	Text string
}

// EllipseShape is an axis-aligned ellipse in image coordinates.
type EllipseShape struct{ Center, Radii r2.Vec }

// Preview is the geometry of the unfinished gesture, in image coordinates.
type Preview struct {
	Segments []Segment
	Anchors  []r2.Vec
	Ellipse  *EllipseShape
	Label    *Label
}

// Empty reports whether there is nothing to draw.
func (p Preview) Empty() bool {
	return len(p.Segments) == 0 && len(p.Anchors) == 0 && p.Ellipse == nil && p.Label == nil
}

// Preview describes the in-progress gesture for the renderer.
func (m *Machine) Preview() Preview {
	switch g := m.gesture.(type) {
	case *lineGesture:
		pv := Preview{Anchors: []r2.Vec{g.anchor}}
		if g.moved {
			pv.Segments = []Segment{{From: g.anchor, To: g.cursor}}
		}
		return pv
	case *ellipseGesture:
		return Preview{
			Anchors: []r2.Vec{g.center},
			Ellipse: &EllipseShape{Center: g.center, Radii: r2.Vec{X: abs(g.cursor.X - g.center.X), Y: abs(g.cursor.Y - g.center.Y)}},
		}
	case *perpendicularGesture:
		return Preview{Anchors: []r2.Vec{g.anchor}, Segments: []Segment{{From: g.anchor, To: g.cursor}}}
	case *angleGesture:
		if g.vertex == nil {
			return Preview{Anchors: []r2.Vec{g.start}, Segments: []Segment{{From: g.start, To: g.cursor}}}
		}
		v := *g.vertex
		pv := Preview{
			Anchors:  []r2.Vec{g.start, v},
			Segments: []Segment{{From: g.start, To: v}, {From: v, To: g.cursor}},
		}
		if deg, ok := m.LiveAngle(); ok {
			pv.Label = &Label{At: v, Text: FormatDegrees(deg)}
		}
		return pv
	case *rulerGesture:
		cm := geometry.PixelsToCentimeters(geometry.Distance(g.anchor, g.cursor), m.settings.PixelsPerCM)
		return Preview{
			Anchors:  []r2.Vec{g.anchor},
			Segments: []Segment{{From: g.anchor, To: g.cursor}},
			Label:    &Label{At: geometry.Midpoint(g.anchor, g.cursor), Text: FormatCentimeters(cm)},
		}
	}
	return Preview{}
}

// LiveAngle returns the angle between the first ray and the pointer while an
// angle gesture waits for its third click. ok is false at any other time or
// when the pointer sits on the vertex.
func (m *Machine) LiveAngle() (float64, bool) {
	g, isAngle := m.gesture.(*angleGesture)
	if !isAngle || g.vertex == nil {
		return 0, false
	}
	v := *g.vertex
	return geometry.AngleBetween(r2.Sub(g.start, v), r2.Sub(g.cursor, v))
}

// FormatCentimeters renders a distance label.
func FormatCentimeters(cm float64) string { return fmt.Sprintf("%.1f cm", cm) }

// FormatDegrees renders an angle label.
func FormatDegrees(deg float64) string { return fmt.Sprintf("%.1f°", deg) }

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
