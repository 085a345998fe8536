// Package viewer ties the image list, viewport, annotation store and tool
// machine together. Session holds the state; Main runs it in a shiny window.
package viewer

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/shineyruler/internal/annotation"
	"github.com/example/shineyruler/internal/geometry"
	"github.com/example/shineyruler/internal/imagesrc"
	"github.com/example/shineyruler/internal/notify"
	"github.com/example/shineyruler/internal/render"
	"github.com/example/shineyruler/internal/theme"
	"github.com/example/shineyruler/internal/tool"
	"github.com/example/shineyruler/internal/viewport"
)

// ProgramTitle is shown in the window title and toolbar.
const ProgramTitle = "ShineyRuler"

// Action is a palette entry. Tool names select that tool.
type Action string

const (
	ActionPan           Action = "pan"
	ActionPoint         Action = "point"
	ActionLine          Action = "line"
	ActionEllipse       Action = "ellipse"
	ActionPerpendicular Action = "perpendicular"
	ActionAngle         Action = "angle"
	ActionRuler         Action = "ruler"
	ActionRotate        Action = "rotate"
	ActionZoomIn        Action = "zoom-in"
	ActionZoomOut       Action = "zoom-out"
	ActionReset         Action = "reset"
	ActionUndo          Action = "undo"
	ActionClearAll      Action = "clear-all"
)

// Actions lists the palette in toolbar order.
func Actions() []Action {
	return []Action{
		ActionPan, ActionPoint, ActionLine, ActionEllipse, ActionPerpendicular, ActionAngle, ActionRuler,
		ActionRotate, ActionZoomIn, ActionZoomOut, ActionReset, ActionUndo, ActionClearAll,
	}
}

// Session is the state of one viewer: the image list, which image is open,
// and the viewport, annotations and tool for that image. It is not safe for
// concurrent use; the window loop owns it and hands Snapshots to the painter.
type Session struct {
	images []imagesrc.Image
	index  int
	open   bool

	vp        viewport.Viewport
	store     *annotation.Store
	machine   *tool.Machine
	settings  tool.Settings
	limits    viewport.Limits
	theme     *theme.Theme
	container image.Rectangle

	outputDir string
	title     string
	notifier  *notify.Notifier
	onClose   func()
}

// Option modifies a Session during creation.
type Option func(*Session)

// WithIndex selects the image opened first.
func WithIndex(i int) Option { return func(s *Session) { s.index = i } }

// WithSettings sets gesture thresholds and calibration.
func WithSettings(st tool.Settings) Option { return func(s *Session) { s.settings = st } }

// WithLimits sets the zoom range.
func WithLimits(l viewport.Limits) Option { return func(s *Session) { s.limits = l } }

// WithTheme sets the overlay colours.
func WithTheme(t *theme.Theme) Option { return func(s *Session) { s.theme = t } }

// WithContainer sets the initial on-screen image area.
func WithContainer(r image.Rectangle) Option { return func(s *Session) { s.container = r } }

// WithOutputDir sets where saved images and exports go by default.
func WithOutputDir(dir string) Option { return func(s *Session) { s.outputDir = dir } }

// WithTitle sets the window title. The image name is appended.
func WithTitle(t string) Option { return func(s *Session) { s.title = t } }

// WithNotifier sets the desktop notifier for save, copy and export.
func WithNotifier(n *notify.Notifier) Option { return func(s *Session) { s.notifier = n } }

// WithOnClose registers a callback invoked when the viewer closes.
func WithOnClose(fn func()) Option { return func(s *Session) { s.onClose = fn } }

// New creates a session over images. The image at WithIndex (default 0) is
// opened when the list is not empty.
func New(images []imagesrc.Image, opts ...Option) *Session {
	s := &Session{
		images:   images,
		store:    annotation.NewStore(),
		settings: tool.DefaultSettings(),
		limits:   viewport.DefaultLimits(),
		theme:    theme.Default(),
		title:    ProgramTitle,
	}
	for _, o := range opts {
		o(s)
	}
	if s.theme == nil {
		s.theme = theme.Default()
	}
	s.machine = tool.NewMachine(&s.vp, s.store, s.settings)
	if len(images) > 0 {
		s.index = wrap(s.index, len(images))
		s.open = true
	} else {
		s.index = 0
	}
	s.resetForImage()
	return s
}

// Open shows image i.
func (s *Session) Open(i int) error {
	if i < 0 || i >= len(s.images) {
		return fmt.Errorf("image index %d out of range [0,%d)", i, len(s.images))
	}
	if s.open && s.index == i {
		return nil
	}
	s.index = i
	s.open = true
	s.resetForImage()
	return nil
}

// Close hides the viewer and discards the current annotations.
func (s *Session) Close() {
	if !s.open {
		return
	}
	s.open = false
	s.resetForImage()
	if s.onClose != nil {
		s.onClose()
	}
}

// IsOpen reports whether an image is shown.
func (s *Session) IsOpen() bool { return s.open }

// Next shows the following image, wrapping to the first.
func (s *Session) Next() { s.step(1) }

// Prev shows the preceding image, wrapping to the last.
func (s *Session) Prev() { s.step(-1) }

func (s *Session) step(d int) {
	if !s.open || len(s.images) == 0 {
		return
	}
	s.index = wrap(s.index+d, len(s.images))
	s.resetForImage()
}

// Index returns the position of the current image.
func (s *Session) Index() int { return s.index }

// Len returns the number of images.
func (s *Session) Len() int { return len(s.images) }

// Current returns the image on screen.
func (s *Session) Current() (imagesrc.Image, bool) {
	if !s.open || len(s.images) == 0 {
		return imagesrc.Image{}, false
	}
	return s.images[s.index], true
}

// resetForImage is the single place that reacts to the image changing:
// identity viewport, empty store and history, no pending gesture.
func (s *Session) resetForImage() {
	var natural image.Point
	if img, ok := s.Current(); ok && img.Image != nil {
		b := img.Image.Bounds()
		natural = image.Pt(b.Dx(), b.Dy())
	}
	container := s.container
	if container.Empty() {
		container = image.Rectangle{Max: natural}
	}
	s.vp = viewport.New(viewport.Layout{Container: container, Natural: natural}, s.limits)
	s.store.ClearAll()
	s.machine.Cancel()
}

// selectTool is the single place that reacts to the tool changing.
func (s *Session) selectTool(t tool.Tool) { s.machine.Select(t) }

// Do applies a palette action. Unknown actions return an error; actions on
// a closed viewer are ignored.
func (s *Session) Do(a Action) error {
	if t, err := tool.Parse(string(a)); err == nil {
		s.selectTool(t)
		return nil
	}
	switch a {
	case ActionRotate, ActionZoomIn, ActionZoomOut, ActionReset, ActionUndo, ActionClearAll:
	default:
		return fmt.Errorf("unknown action %q", a)
	}
	if !s.open {
		return nil
	}
	switch a {
	case ActionRotate:
		s.vp.Rotate()
	case ActionZoomIn:
		s.vp.ZoomIn()
	case ActionZoomOut:
		s.vp.ZoomOut()
	case ActionReset:
		s.vp.Reset()
	case ActionUndo:
		s.machine.Cancel()
		s.store.Undo()
	case ActionClearAll:
		s.machine.Cancel()
		s.store.ClearAll()
	}
	return nil
}

// Pointer forwards a pointer event to the active tool and reports whether
// the view changed.
func (s *Session) Pointer(ev tool.Event) bool {
	if !s.open {
		return false
	}
	return s.machine.Handle(ev)
}

// Cancel drops the pending gesture.
func (s *Session) Cancel() { s.machine.Cancel() }

// Resize moves the image area to r. Zoom, rotation and pan are kept.
func (s *Session) Resize(r image.Rectangle) {
	s.container = r
	s.vp.Layout.Container = r
}

// Tool returns the active tool.
func (s *Session) Tool() tool.Tool { return s.machine.Tool() }

// Viewport returns a copy of the current viewport.
func (s *Session) Viewport() viewport.Viewport { return s.vp }

// Store exposes the annotations of the current image.
func (s *Session) Store() *annotation.Store { return s.store }

// Theme returns the overlay theme.
func (s *Session) Theme() *theme.Theme { return s.theme }

// Settings returns the tool settings.
func (s *Session) Settings() tool.Settings { return s.machine.Settings() }

// Frame is an immutable copy of everything needed to paint one frame.
type Frame struct {
	Open        bool
	Image       image.Image
	Name        string
	Index       int
	Count       int
	Tool        tool.Tool
	Viewport    viewport.Viewport
	Annotations []annotation.Annotation
	Preview     tool.Preview
	Theme       *theme.Theme
}

// Snapshot captures the session for painting.
func (s *Session) Snapshot() Frame {
	f := Frame{
		Open:     s.open,
		Index:    s.index,
		Count:    len(s.images),
		Tool:     s.machine.Tool(),
		Viewport: s.vp,
		Theme:    s.theme,
	}
	if img, ok := s.Current(); ok {
		f.Image = img.Image
		f.Name = img.Name
		f.Annotations = s.store.All()
		f.Preview = s.machine.Preview()
	}
	return f
}

// Flatten returns the current image with its annotations burned in.
func (s *Session) Flatten() (*image.RGBA, error) {
	img, ok := s.Current()
	if !ok || img.Image == nil {
		return nil, fmt.Errorf("no image open")
	}
	return render.Flatten(img.Image, s.store.All(), s.theme), nil
}

// Measurements describes each undo step of the current image in words.
func (s *Session) Measurements() []string {
	var out []string
	for _, e := range s.store.History() {
		a, ok := s.store.Get(e.ID)
		if !ok {
			continue
		}
		switch v := a.(type) {
		case annotation.Point:
			out = append(out, fmt.Sprintf("point (%.1f, %.1f)", v.X, v.Y))
		case annotation.Line:
			out = append(out, fmt.Sprintf("line %.1f px", lineLength(v)))
		case annotation.Ellipse:
			out = append(out, fmt.Sprintf("ellipse at (%.1f, %.1f) radii %.1f x %.1f px", v.CenterX, v.CenterY, v.RadiusX, v.RadiusY))
		case annotation.Angle:
			out = append(out, "angle "+tool.FormatDegrees(v.Degrees))
		case annotation.Distance:
			px := math.NaN()
			if l, ok := s.store.Get(v.Line); ok {
				px = lineLength(l.(annotation.Line))
			}
			out = append(out, fmt.Sprintf("distance %s (%.1f px)", tool.FormatCentimeters(v.Centimeters), px))
		}
	}
	return out
}

func lineLength(l annotation.Line) float64 {
	return geometry.Distance(r2.Vec{X: l.StartX, Y: l.StartY}, r2.Vec{X: l.EndX, Y: l.EndY})
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
