package annotation

// Entry is one undo step. Composite annotations (angles, distances) record a
// single entry pointing at their label; undoing it also removes the lines the
// label references.
type Entry struct {
	Kind Kind
	ID   ID
}

// Store owns the annotations of the image currently on screen together with
// the undo history. It is not safe for concurrent use; the viewer mutates it
// from its event loop only.
type Store struct {
	items   []Annotation
	history []Entry
	nextID  ID
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// AddPoint stores a point and returns it with its assigned id.
func (s *Store) AddPoint(x, y float64) Point {
	p := Point{id: s.allocate(), X: x, Y: y}
	s.push(p)
	return p
}

// AddLine stores l as a standalone line.
func (s *Store) AddLine(l Line) Line {
	l.id = s.allocate()
	s.push(l)
	return l
}

// AddEllipse stores e.
func (s *Store) AddEllipse(e Ellipse) Ellipse {
	e.id = s.allocate()
	s.push(e)
	return e
}

// AddAngle stores both rays and the angle label as one undo step.
func (s *Store) AddAngle(ray1, ray2 Line, vertexX, vertexY, degrees float64) Angle {
	ray1.id = s.allocate()
	ray2.id = s.allocate()
	a := Angle{id: s.allocate(), VertexX: vertexX, VertexY: vertexY, Degrees: degrees, Line1: ray1.id, Line2: ray2.id}
	s.items = append(s.items, ray1, ray2, a)
	s.history = append(s.history, Entry{Kind: KindAngle, ID: a.id})
	return a
}

// AddDistance stores the measured line and its label as one undo step. The
// label is anchored at the middle of the line.
func (s *Store) AddDistance(l Line, centimeters float64) Distance {
	l.id = s.allocate()
	d := Distance{
		id:          s.allocate(),
		MidX:        (l.StartX + l.EndX) / 2,
		MidY:        (l.StartY + l.EndY) / 2,
		Centimeters: centimeters,
		Line:        l.id,
	}
	s.items = append(s.items, l, d)
	s.history = append(s.history, Entry{Kind: KindDistance, ID: d.id})
	return d
}

// Undo removes the most recent history entry and every annotation belonging
// to it. It reports false when there was nothing to undo.
func (s *Store) Undo() bool {
	if len(s.history) == 0 {
		return false
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	remove := map[ID]struct{}{last.ID: {}}
	if a, ok := s.Get(last.ID); ok {
		switch v := a.(type) {
		case Angle:
			remove[v.Line1] = struct{}{}
			remove[v.Line2] = struct{}{}
		case Distance:
			remove[v.Line] = struct{}{}
		}
	}
	kept := s.items[:0]
	for _, a := range s.items {
		if _, drop := remove[a.ID()]; !drop {
			kept = append(kept, a)
		}
	}
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = nil
	}
	s.items = kept
	return true
}

// ClearAll drops every annotation and the history.
func (s *Store) ClearAll() {
	s.items = nil
	s.history = nil
}

// Len returns the number of stored annotations, counting composite parts.
func (s *Store) Len() int { return len(s.items) }

// All returns the annotations in creation order.
func (s *Store) All() []Annotation {
	out := make([]Annotation, len(s.items))
	copy(out, s.items)
	return out
}

// History returns the undo entries, oldest first.
func (s *Store) History() []Entry {
	out := make([]Entry, len(s.history))
	copy(out, s.history)
	return out
}

// Get looks up an annotation by id.
func (s *Store) Get(id ID) (Annotation, bool) {
	for _, a := range s.items {
		if a.ID() == id {
			return a, true
		}
	}
	return nil, false
}

func (s *Store) allocate() ID {
	s.nextID++
	return s.nextID
}

func (s *Store) push(a Annotation) {
	s.items = append(s.items, a)
	s.history = append(s.history, Entry{Kind: a.Kind(), ID: a.ID()})
}
