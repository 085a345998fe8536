package tool

import (
	"image"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/shineyruler/internal/annotation"
	"github.com/example/shineyruler/internal/viewport"
)

// newTestMachine returns a machine whose screen and image coordinates
// coincide on a 500x400 image.
func newTestMachine(t *testing.T, tl Tool) (*Machine, *viewport.Viewport, *annotation.Store) {
	t.Helper()
	vp := viewport.New(viewport.Layout{
		Container: image.Rect(0, 0, 500, 400),
		Natural:   image.Pt(500, 400),
	}, viewport.DefaultLimits())
	store := annotation.NewStore()
	m := NewMachine(&vp, store, DefaultSettings())
	m.Select(tl)
	return m, &vp, store
}

func click(m *Machine, x, y float64) {
	m.Handle(Down(x, y))
	m.Handle(Up(x, y))
}

func lines(s *annotation.Store) []annotation.Line {
	var out []annotation.Line
	for _, a := range s.All() {
		if l, ok := a.(annotation.Line); ok {
			out = append(out, l)
		}
	}
	return out
}

func TestLineToolSmallMoveMakesPoint(t *testing.T) {
	m, _, s := newTestMachine(t, ToolLine)
	click(m, 100, 100)
	m.Handle(Move(102, 101))
	click(m, 102, 101)
	all := s.All()
	if len(all) != 1 {
		t.Fatalf("got %d annotations, want 1", len(all))
	}
	p, ok := all[0].(annotation.Point)
	if !ok {
		t.Fatalf("got %T, want Point", all[0])
	}
	if p.X != 100 || p.Y != 100 {
		t.Fatalf("point at (%v,%v), want (100,100)", p.X, p.Y)
	}
	if m.Pending() {
		t.Fatalf("gesture should be finished")
	}
}

func TestLineToolMoveMakesLine(t *testing.T) {
	m, _, s := newTestMachine(t, ToolLine)
	click(m, 100, 100)
	m.Handle(Move(200, 100))
	click(m, 200, 100)
	ls := lines(s)
	if len(ls) != 1 || s.Len() != 1 {
		t.Fatalf("got %d lines in %d annotations, want 1 line", len(ls), s.Len())
	}
	l := ls[0]
	if l.StartX != 100 || l.StartY != 100 || l.EndX != 200 || l.EndY != 100 {
		t.Fatalf("line = %+v", l)
	}
}

func TestLineToolMoveAwayAndBackStillLine(t *testing.T) {
	m, _, s := newTestMachine(t, ToolLine)
	click(m, 100, 100)
	m.Handle(Move(150, 100))
	m.Handle(Move(101, 100))
	click(m, 101, 100)
	if len(lines(s)) != 1 {
		t.Fatalf("expected a line once the threshold was crossed")
	}
}

func TestLineToolOutsideClickCancels(t *testing.T) {
	m, _, s := newTestMachine(t, ToolLine)
	click(m, 100, 100)
	m.Handle(Move(200, 100))
	click(m, 600, 100)
	if s.Len() != 0 || m.Pending() {
		t.Fatalf("outside click should cancel: len=%d pending=%v", s.Len(), m.Pending())
	}
}

func TestPointToolIgnoresOutside(t *testing.T) {
	m, _, s := newTestMachine(t, ToolPoint)
	click(m, -5, 10)
	click(m, 10, 10)
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
}

func TestPerpendicularChain(t *testing.T) {
	m, _, s := newTestMachine(t, ToolPerpendicular)
	click(m, 100, 100)
	click(m, 200, 150)
	m.Handle(Move(260, 20))
	click(m, 260, 20)
	click(m, 400, 100)
	ls := lines(s)
	if len(ls) != 3 {
		t.Fatalf("got %d segments, want 3", len(ls))
	}
	for i := 1; i < len(ls); i++ {
		a := r2.Vec{X: ls[i-1].EndX - ls[i-1].StartX, Y: ls[i-1].EndY - ls[i-1].StartY}
		b := r2.Vec{X: ls[i].EndX - ls[i].StartX, Y: ls[i].EndY - ls[i].StartY}
		if dot := r2.Dot(r2.Unit(a), r2.Unit(b)); math.Abs(dot) > 1e-9 {
			t.Fatalf("segments %d and %d not perpendicular: dot=%v", i-1, i, dot)
		}
		if ls[i].StartX != ls[i-1].EndX || ls[i].StartY != ls[i-1].EndY {
			t.Fatalf("segment %d does not start where %d ended", i, i-1)
		}
	}
	if len(s.History()) != 3 {
		t.Fatalf("each segment should be its own undo step, got %d", len(s.History()))
	}
}

func TestPerpendicularDegenerateClickIgnored(t *testing.T) {
	m, _, s := newTestMachine(t, ToolPerpendicular)
	click(m, 100, 100)
	click(m, 200, 100)
	// Projects onto the current anchor.
	click(m, 300, 100)
	if len(lines(s)) != 1 || !m.Pending() {
		t.Fatalf("degenerate click changed state: lines=%d pending=%v", len(lines(s)), m.Pending())
	}
}

func TestToolSwitchCancelsGesture(t *testing.T) {
	m, _, s := newTestMachine(t, ToolAngle)
	click(m, 10, 10)
	click(m, 50, 50)
	m.Select(ToolLine)
	if m.Pending() {
		t.Fatalf("switching tools left a gesture pending")
	}
	click(m, 60, 60)
	if s.Len() != 0 {
		t.Fatalf("switch committed %d annotations", s.Len())
	}
	if !m.Pending() {
		t.Fatalf("new line gesture should have started fresh")
	}
}

func TestMidGestureSwitchDiscardsPending(t *testing.T) {
	cases := []struct {
		name      string
		from, to  Tool
		gesture   func(m *Machine)
		wantLines int
	}{
		{
			name: "line one click then ellipse",
			from: ToolLine, to: ToolEllipse,
			gesture: func(m *Machine) {
				click(m, 100, 100)
				m.Handle(Move(180, 140))
			},
		},
		{
			name: "ruler one click then line",
			from: ToolRuler, to: ToolLine,
			gesture: func(m *Machine) {
				click(m, 10, 50)
				m.Handle(Move(388, 50))
			},
		},
		{
			name: "perpendicular chain then angle",
			from: ToolPerpendicular, to: ToolAngle,
			gesture: func(m *Machine) {
				click(m, 100, 100)
				click(m, 200, 150)
				m.Handle(Move(260, 20))
			},
			// The base segment was committed before the switch.
			wantLines: 1,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, _, s := newTestMachine(t, c.from)
			c.gesture(m)
			if !m.Pending() {
				t.Fatalf("gesture should be pending before the switch")
			}
			before := len(s.History())

			m.Select(c.to)
			if m.Pending() {
				t.Fatalf("switch left a gesture pending")
			}
			if pv := m.Preview(); len(pv.Anchors) != 0 || len(pv.Segments) != 0 || pv.Label != nil || pv.Ellipse != nil {
				t.Fatalf("preview after switch = %+v", pv)
			}
			if got := len(s.History()); got != before {
				t.Fatalf("history changed from %d to %d", before, got)
			}
			if got := len(lines(s)); got != c.wantLines || s.Len() != c.wantLines {
				t.Fatalf("got %d lines in %d annotations, want %d", got, s.Len(), c.wantLines)
			}
			if m.Tool() != c.to {
				t.Fatalf("tool = %v, want %v", m.Tool(), c.to)
			}
		})
	}
}

func TestAngleRightAngleAndUndo(t *testing.T) {
	m, _, s := newTestMachine(t, ToolAngle)
	s.AddPoint(1, 1)
	click(m, 100, 200)
	click(m, 100, 100)
	m.Handle(Move(200, 100))
	if deg, ok := m.LiveAngle(); !ok || math.Abs(deg-90) > 1e-9 {
		t.Fatalf("live angle = %v, %v", deg, ok)
	}
	click(m, 200, 100)
	var got *annotation.Angle
	for _, a := range s.All() {
		if v, ok := a.(annotation.Angle); ok {
			got = &v
		}
	}
	if got == nil {
		t.Fatalf("no angle stored")
	}
	if math.Abs(got.Degrees-90) > 1e-9 || got.VertexX != 100 || got.VertexY != 100 {
		t.Fatalf("angle = %+v", *got)
	}
	if s.Len() != 4 {
		t.Fatalf("len = %d, want point + 2 rays + label", s.Len())
	}
	s.Undo()
	if s.Len() != 1 {
		t.Fatalf("undo left %d annotations, want 1", s.Len())
	}
	if m.Pending() {
		t.Fatalf("third click should lock the angle")
	}
}

func TestAngleZeroRayIgnored(t *testing.T) {
	m, _, s := newTestMachine(t, ToolAngle)
	click(m, 100, 100)
	click(m, 100, 100)
	click(m, 150, 100)
	click(m, 150, 100)
	if s.Len() != 0 || !m.Pending() {
		t.Fatalf("degenerate clicks should be ignored: len=%d pending=%v", s.Len(), m.Pending())
	}
	if _, ok := m.LiveAngle(); ok {
		t.Fatalf("live angle with pointer on vertex should be undefined")
	}
}

func TestRulerTenCentimetres(t *testing.T) {
	vp := viewport.New(viewport.Layout{
		Container: image.Rect(0, 0, 500, 100),
		Natural:   image.Pt(500, 100),
	}, viewport.DefaultLimits())
	s := annotation.NewStore()
	m := NewMachine(&vp, s, DefaultSettings())
	m.Select(ToolRuler)
	click(m, 10, 50)
	m.Handle(Move(388, 50))
	if pv := m.Preview(); pv.Label == nil || pv.Label.Text != "10.0 cm" {
		t.Fatalf("preview label = %+v", pv.Label)
	}
	click(m, 388, 50)
	var d *annotation.Distance
	for _, a := range s.All() {
		if v, ok := a.(annotation.Distance); ok {
			d = &v
		}
	}
	if d == nil {
		t.Fatalf("no distance stored")
	}
	if d.Centimeters != 10.0 || d.MidX != 199 || d.MidY != 50 {
		t.Fatalf("distance = %+v", *d)
	}
}

func TestEllipseTool(t *testing.T) {
	m, _, s := newTestMachine(t, ToolEllipse)
	click(m, 100, 100)
	click(m, 100, 100)
	if s.Len() != 0 {
		t.Fatalf("zero-radius ellipse committed")
	}
	click(m, 130, 80)
	all := s.All()
	if len(all) != 1 {
		t.Fatalf("len = %d", len(all))
	}
	e := all[0].(annotation.Ellipse)
	if e.RadiusX != 30 || e.RadiusY != 20 {
		t.Fatalf("radii = %v,%v", e.RadiusX, e.RadiusY)
	}
}

func TestPanDrag(t *testing.T) {
	m, vp, s := newTestMachine(t, ToolPan)
	m.Handle(Down(10, 10))
	m.Handle(Move(30, 5))
	m.Handle(Move(40, 5))
	m.Handle(Up(40, 5))
	if vp.State.Pan != (r2.Vec{X: 30, Y: -5}) {
		t.Fatalf("pan = %+v", vp.State.Pan)
	}
	m.Handle(Move(100, 100))
	if vp.State.Pan != (r2.Vec{X: 30, Y: -5}) {
		t.Fatalf("move without button changed pan")
	}
	if s.Len() != 0 {
		t.Fatalf("pan created annotations")
	}
}

func TestClicksUnderTransform(t *testing.T) {
	m, vp, s := newTestMachine(t, ToolPoint)
	vp.ZoomIn()
	vp.Rotate()
	vp.PanBy(7, -3)
	want := r2.Vec{X: 120, Y: 80}
	sp := vp.ImageToScreen(want)
	click(m, sp.X, sp.Y)
	p := s.All()[0].(annotation.Point)
	if math.Abs(p.X-want.X) > 1e-6 || math.Abs(p.Y-want.Y) > 1e-6 {
		t.Fatalf("point = (%v,%v), want %v", p.X, p.Y, want)
	}
}

func TestParseTool(t *testing.T) {
	for _, tl := range Tools() {
		got, err := Parse(tl.String())
		if err != nil || got != tl {
			t.Fatalf("Parse(%q) = %v, %v", tl.String(), got, err)
		}
	}
	if _, err := Parse("lasso"); err == nil {
		t.Fatalf("expected error")
	}
}
