// Package export converts the annotations of one image to and from JSON.
// Composite annotations are written as single records so that a restored
// store has the same undo steps as the one that was saved.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/shineyruler/internal/annotation"
	"github.com/example/shineyruler/internal/geometry"
)

// Document is the serialised form of an annotated image.
type Document struct {
	Image       string   `json:"image,omitempty"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	PixelsPerCM float64  `json:"pixelsPerCm"`
	Annotations []Record `json:"annotations"`
}

// Record is one undo step. Only the fields relevant to Kind are set.
type Record struct {
	Kind string `json:"kind"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	Start *Vec `json:"start,omitempty"`
	End   *Vec `json:"end,omitempty"`

	Center  *Vec    `json:"center,omitempty"`
	RadiusX float64 `json:"rx,omitempty"`
	RadiusY float64 `json:"ry,omitempty"`

	// Angle: rays Start->Vertex and Vertex->End.
	Vertex  *Vec    `json:"vertex,omitempty"`
	Degrees float64 `json:"degrees,omitempty"`

	Centimeters float64 `json:"cm,omitempty"`
}

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v *Vec) vec() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

// FromStore captures the store contents, one record per history entry.
func FromStore(s *annotation.Store) []Record {
	var out []Record
	for _, e := range s.History() {
		a, ok := s.Get(e.ID)
		if !ok {
			continue
		}
		switch v := a.(type) {
		case annotation.Point:
			out = append(out, Record{Kind: e.Kind.String(), X: v.X, Y: v.Y})
		case annotation.Line:
			out = append(out, Record{Kind: e.Kind.String(), Start: &Vec{v.StartX, v.StartY}, End: &Vec{v.EndX, v.EndY}})
		case annotation.Ellipse:
			out = append(out, Record{Kind: e.Kind.String(), Center: &Vec{v.CenterX, v.CenterY}, RadiusX: v.RadiusX, RadiusY: v.RadiusY})
		case annotation.Angle:
			ray1, ok1 := lineOf(s, v.Line1)
			ray2, ok2 := lineOf(s, v.Line2)
			if !ok1 || !ok2 {
				continue
			}
			out = append(out, Record{
				Kind:    e.Kind.String(),
				Start:   &Vec{ray1.StartX, ray1.StartY},
				Vertex:  &Vec{v.VertexX, v.VertexY},
				End:     &Vec{ray2.EndX, ray2.EndY},
				Degrees: v.Degrees,
			})
		case annotation.Distance:
			l, ok := lineOf(s, v.Line)
			if !ok {
				continue
			}
			out = append(out, Record{
				Kind:        e.Kind.String(),
				Start:       &Vec{l.StartX, l.StartY},
				End:         &Vec{l.EndX, l.EndY},
				Centimeters: v.Centimeters,
			})
		}
	}
	return out
}

func lineOf(s *annotation.Store, id annotation.ID) (annotation.Line, bool) {
	a, ok := s.Get(id)
	if !ok {
		return annotation.Line{}, false
	}
	l, ok := a.(annotation.Line)
	return l, ok
}

// Restore replays doc into s. Existing annotations are kept; callers wanting
// a fresh store should pass an empty one. Every record is checked before any
// is added, so a rejected document leaves s untouched. Angles are measured
// again from their rays rather than taken from the document.
func Restore(doc Document, s *annotation.Store) error {
	kinds := make([]annotation.Kind, len(doc.Annotations))
	degrees := make([]float64, len(doc.Annotations))
	for i, r := range doc.Annotations {
		kind, err := annotation.ParseKind(r.Kind)
		if err != nil {
			return fmt.Errorf("annotation %d: %w", i, err)
		}
		if err := r.validate(kind); err != nil {
			return fmt.Errorf("annotation %d: %w", i, err)
		}
		if kind == annotation.KindAngle {
			v := r.Vertex.vec()
			deg, ok := geometry.AngleBetween(r2.Sub(r.Start.vec(), v), r2.Sub(r.End.vec(), v))
			if !ok {
				return fmt.Errorf("annotation %d: angle has a zero-length ray", i)
			}
			degrees[i] = deg
		}
		kinds[i] = kind
	}

	for i, r := range doc.Annotations {
		switch kinds[i] {
		case annotation.KindPoint:
			s.AddPoint(r.X, r.Y)
		case annotation.KindLine:
			s.AddLine(annotation.NewLine(r.Start.X, r.Start.Y, r.End.X, r.End.Y))
		case annotation.KindEllipse:
			s.AddEllipse(annotation.Ellipse{CenterX: r.Center.X, CenterY: r.Center.Y, RadiusX: r.RadiusX, RadiusY: r.RadiusY})
		case annotation.KindAngle:
			s.AddAngle(
				annotation.NewLine(r.Start.X, r.Start.Y, r.Vertex.X, r.Vertex.Y),
				annotation.NewLine(r.Vertex.X, r.Vertex.Y, r.End.X, r.End.Y),
				r.Vertex.X, r.Vertex.Y, degrees[i],
			)
		case annotation.KindDistance:
			s.AddDistance(annotation.NewLine(r.Start.X, r.Start.Y, r.End.X, r.End.Y), r.Centimeters)
		}
	}
	return nil
}

func (r Record) validate(k annotation.Kind) error {
	missing := func(name string) error { return fmt.Errorf("%s record missing %s", k, name) }
	switch k {
	case annotation.KindLine, annotation.KindDistance:
		if r.Start == nil {
			return missing("start")
		}
		if r.End == nil {
			return missing("end")
		}
		if r.Centimeters < 0 {
			return fmt.Errorf("%s record has negative length %v", k, r.Centimeters)
		}
	case annotation.KindEllipse:
		if r.Center == nil {
			return missing("center")
		}
		if r.RadiusX < 0 || r.RadiusY < 0 {
			return fmt.Errorf("%s record has negative radius (%v, %v)", k, r.RadiusX, r.RadiusY)
		}
	case annotation.KindAngle:
		if r.Start == nil || r.Vertex == nil || r.End == nil {
			return missing("start, vertex or end")
		}
	}
	return nil
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode annotations: %w", err)
	}
	return nil
}

// Decode reads a document written by Encode.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode annotations: %w", err)
	}
	return doc, nil
}
