// Package annotation stores the measurements drawn over the current image.
// Coordinates are image-natural pixels.
package annotation

import "fmt"

// ID identifies an annotation within a Store.
type ID uint64

// Kind tags the annotation variants.
type Kind int

const (
	KindPoint Kind = iota
	KindLine
	KindEllipse
	KindAngle
	KindDistance
)

var kindNames = [...]string{"point", "line", "ellipse", "angle", "distance"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a name produced by Kind.String back into a Kind.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown annotation kind %q", s)
}

// Annotation is implemented by Point, Line, Ellipse, Angle and Distance.
type Annotation interface {
	ID() ID
	Kind() Kind
}

type Point struct {
	id   ID
	X, Y float64
}

func (p Point) ID() ID     { return p.id }
func (p Point) Kind() Kind { return KindPoint }

type Line struct {
	id             ID
	StartX, StartY float64
	EndX, EndY     float64
}

func (l Line) ID() ID     { return l.id }
func (l Line) Kind() Kind { return KindLine }

type Ellipse struct {
	id               ID
	CenterX, CenterY float64
	RadiusX, RadiusY float64
}

func (e Ellipse) ID() ID     { return e.id }
func (e Ellipse) Kind() Kind { return KindEllipse }

// Angle labels the angle between two stored lines meeting at the vertex.
type Angle struct {
	id               ID
	VertexX, VertexY float64
	Degrees          float64
	Line1, Line2     ID
}

func (a Angle) ID() ID     { return a.id }
func (a Angle) Kind() Kind { return KindAngle }

// Distance labels the length of a stored line in centimetres.
type Distance struct {
	id          ID
	MidX, MidY  float64
	Centimeters float64
	Line        ID
}

func (d Distance) ID() ID     { return d.id }
func (d Distance) Kind() Kind { return KindDistance }

// NewLine is a convenience constructor for an unsaved line.
func NewLine(x0, y0, x1, y1 float64) Line {
	return Line{StartX: x0, StartY: y0, EndX: x1, EndY: y1}
}
