package viewer

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/shineyruler/internal/render"
	"github.com/example/shineyruler/internal/tool"
)

const (
	titleHeight  = 22
	buttonHeight = 24
	bottomHeight = 24
)

const frameDropThreshold = 10

const messageDuration = 2 * time.Second

var toolbarWidth = 64

// Keys used by the status bar buttons and shortcuts that are not palette
// actions.
const (
	keySave      = "save"
	keyCopy      = "copy"
	keyCopyText  = "copy-measurements"
	keyExport    = "export"
	keyPrev      = "prev"
	keyNext      = "next"
	keyCancel    = "cancel"
	keyQuit      = "quit"
	keyClearDone = "clear-confirmed"
)

var shortcutKeys = []string{keySave, keyCopy, keyExport, keyPrev, keyNext, keyQuit}

var shortcutLabels = map[string]string{
	keySave:   "^S Save",
	keyCopy:   "^C Copy",
	keyExport: "^J Export",
	keyPrev:   "< Prev",
	keyNext:   "Next >",
	keyQuit:   "Q Quit",
}

var actionLabels = map[Action]string{
	ActionPan:           "H:Pan",
	ActionPoint:         "P:Point",
	ActionLine:          "L:Line",
	ActionEllipse:       "E:Ellipse",
	ActionPerpendicular: "K:Perp",
	ActionAngle:         "A:Angle",
	ActionRuler:         "R:Ruler",
	ActionRotate:        "O:Rotate",
	ActionZoomIn:        "+:Zoom in",
	ActionZoomOut:       "-:Zoom out",
	ActionReset:         "0:Reset",
	ActionUndo:          "^Z:Undo",
	ActionClearAll:      "X:Clear",
}

type paintState struct {
	width, height int
	frame         Frame
	hoverAction   int
	hoverShortcut int
	status        string
	message       string
	messageUntil  time.Time
	toolbar       []*CacheButton
	shortcuts     []*CacheButton
}

func ctrl(r rune, c key.Code) shortcutList {
	return shortcutList{{Rune: r, Modifiers: key.ModControl}, {Code: c, Modifiers: key.ModControl}}
}

// Run starts the platform event loop and shows the viewer window.
func (s *Session) Run() { driver.Main(s.Main) }

// Main runs the viewer window on an existing screen until it is closed.
func (s *Session) Main(scr screen.Screen) {
	d := &font.Drawer{Face: basicfont.Face7x13}
	tw := d.MeasureString(ProgramTitle).Ceil() + 8
	for _, lbl := range actionLabels {
		if w := labelWidth(lbl) + 8; w > tw {
			tw = w
		}
	}
	if tw > toolbarWidth {
		toolbarWidth = tw
	}

	width, height := 800, 600
	if img, ok := s.Current(); ok && img.Image != nil {
		b := img.Image.Bounds()
		width = clampInt(b.Dx()+toolbarWidth, 640, 1600)
		height = clampInt(b.Dy()+bottomHeight, 480, 1000)
	}
	title := s.title
	if img, ok := s.Current(); ok && img.Name != "" {
		title = fmt.Sprintf("%s - %s", s.title, img.Name)
	}
	w, err := scr.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: title})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	defer s.Close()

	s.Resize(containerRect(width, height))

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, scr, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	var message string
	var messageUntil time.Time
	var confirmClear bool
	var dragging bool
	hoverAction, hoverShortcut := -1, -1

	say := func(format string, args ...any) {
		message = fmt.Sprintf(format, args...)
		messageUntil = time.Now().Add(messageDuration)
		log.Print(message)
	}

	keyboardAction := map[KeyShortcut]string{}
	actions := map[string]func(){}
	register := func(name string, keys KeyboardShortcuts, fn func()) {
		actions[name] = fn
		if keys != nil {
			for _, sc := range keys.KeyboardShortcuts() {
				keyboardAction[sc] = name
			}
		}
	}
	do := func(a Action) func() {
		return func() {
			if err := s.Do(a); err != nil {
				say("%v", err)
			}
		}
	}
	quit := false

	register(string(ActionPan), shortcutList{{Rune: 'h'}}, do(ActionPan))
	register(string(ActionPoint), shortcutList{{Rune: 'p'}}, do(ActionPoint))
	register(string(ActionLine), shortcutList{{Rune: 'l'}}, do(ActionLine))
	register(string(ActionEllipse), shortcutList{{Rune: 'e'}}, do(ActionEllipse))
	register(string(ActionPerpendicular), shortcutList{{Rune: 'k'}}, do(ActionPerpendicular))
	register(string(ActionAngle), shortcutList{{Rune: 'a'}}, do(ActionAngle))
	register(string(ActionRuler), shortcutList{{Rune: 'r'}}, do(ActionRuler))
	register(string(ActionRotate), shortcutList{{Rune: 'o'}}, do(ActionRotate))
	register(string(ActionZoomIn), shortcutList{{Rune: '+'}, {Rune: '='}}, do(ActionZoomIn))
	register(string(ActionZoomOut), shortcutList{{Rune: '-'}}, do(ActionZoomOut))
	register(string(ActionReset), shortcutList{{Rune: '0'}}, do(ActionReset))
	register(string(ActionUndo), ctrl('z', key.CodeZ), do(ActionUndo))
	register(string(ActionClearAll), shortcutList{{Rune: 'x'}}, func() {
		if s.Store().Len() == 0 {
			return
		}
		confirmClear = true
		say("press X again to clear all annotations")
	})
	register(keyClearDone, nil, do(ActionClearAll))
	register(keySave, ctrl('s', key.CodeS), func() {
		path, err := s.SaveImage("")
		if err != nil {
			say("%v", err)
			return
		}
		say("saved %s", path)
	})
	register(keyCopy, ctrl('c', key.CodeC), func() {
		if err := s.CopyImage(); err != nil {
			say("%v", err)
			return
		}
		say("image copied to clipboard")
	})
	register(keyCopyText, ctrl('m', key.CodeM), func() {
		if err := s.CopyMeasurements(); err != nil {
			say("%v", err)
			return
		}
		say("measurements copied to clipboard")
	})
	register(keyExport, ctrl('j', key.CodeJ), func() {
		path, err := s.ExportJSON("")
		if err != nil {
			say("%v", err)
			return
		}
		say("exported %s", path)
	})
	register(keyPrev, shortcutList{{Code: key.CodeLeftArrow}}, s.Prev)
	register(keyNext, shortcutList{{Code: key.CodeRightArrow}}, s.Next)
	register(keyCancel, shortcutList{{Code: key.CodeEscape}}, s.Cancel)
	register(keyQuit, shortcutList{{Rune: 'q'}}, func() { quit = true })

	handle := func(name string) {
		if name == string(ActionClearAll) && confirmClear {
			name = keyClearDone
		}
		if name != string(ActionClearAll) {
			confirmClear = false
		}
		if fn, ok := actions[name]; ok {
			fn()
		}
	}

	lookup := func(e key.Event) (string, bool) {
		mods := e.Modifiers &^ key.ModShift
		if e.Rune > 0 {
			if a, ok := keyboardAction[KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods}]; ok {
				return a, true
			}
		}
		a, ok := keyboardAction[KeyShortcut{Code: e.Code, Modifiers: mods}]
		return a, ok
	}

	th := s.Theme()
	var toolbar []*CacheButton
	for _, a := range Actions() {
		toolbar = append(toolbar, &CacheButton{Button: &ActionButton{label: actionLabels[a], action: string(a), theme: th, onActivate: func() { handle(string(a)) }}})
	}
	var shortcuts []*CacheButton
	for _, k := range shortcutKeys {
		shortcuts = append(shortcuts, &CacheButton{Button: &ActionButton{label: shortcutLabels[k], action: k, theme: th, onActivate: func() { handle(k) }}})
	}

	for {
		if quit {
			stopPaint()
			return
		}
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			s.Resize(containerRect(width, height))
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := paintState{
				width:         width,
				height:        height,
				frame:         s.Snapshot(),
				hoverAction:   hoverAction,
				hoverShortcut: hoverShortcut,
				status:        s.status(),
				message:       message,
				messageUntil:  messageUntil,
				toolbar:       toolbar,
				shortcuts:     shortcuts,
			}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			pt := image.Pt(int(e.X), int(e.Y))
			if e.Direction == mouse.DirStep {
				switch e.Button {
				case mouse.ButtonWheelUp:
					handle(string(ActionZoomIn))
				case mouse.ButtonWheelDown:
					handle(string(ActionZoomOut))
				}
				w.Send(paint.Event{})
				continue
			}
			ev, isPointer := pointerEvent(e)
			if dragging {
				if isPointer {
					s.Pointer(ev)
					dragging = ev.Phase != tool.PhaseUp
				}
				w.Send(paint.Event{})
				continue
			}
			ha, hs := buttonAt(actionRects(len(toolbar)), pt), buttonAt(shortcutRects(height), pt)
			if ha != hoverAction || hs != hoverShortcut {
				hoverAction, hoverShortcut = ha, hs
				w.Send(paint.Event{})
			}
			pressed := e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress
			switch {
			case ha >= 0:
				if pressed {
					toolbar[ha].Activate()
					w.Send(paint.Event{})
				}
			case hs >= 0:
				if pressed {
					shortcuts[hs].Activate()
					w.Send(paint.Event{})
				}
			case pt.In(containerRect(width, height)) && isPointer:
				if ev.Phase == tool.PhaseDown {
					confirmClear = false
					dragging = true
				}
				if s.Pointer(ev) {
					w.Send(paint.Event{})
				}
			}
		case touch.Event:
			if e.Sequence != 0 {
				continue
			}
			var ev tool.Event
			switch e.Type {
			case touch.TypeBegin:
				ev = tool.Down(float64(e.X), float64(e.Y))
				dragging = true
			case touch.TypeMove:
				ev = tool.Move(float64(e.X), float64(e.Y))
			case touch.TypeEnd:
				ev = tool.Up(float64(e.X), float64(e.Y))
				dragging = false
			}
			if s.Pointer(ev) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if name, ok := lookup(e); ok {
				handle(name)
			} else {
				confirmClear = false
			}
			w.Send(paint.Event{})
		}
	}
}

// pointerEvent converts a left-button or motion mouse event into a tool
// event. Other buttons are reported as not pointer events.
func pointerEvent(e mouse.Event) (tool.Event, bool) {
	x, y := float64(e.X), float64(e.Y)
	switch {
	case e.Direction == mouse.DirNone:
		return tool.Move(x, y), true
	case e.Button != mouse.ButtonLeft:
		return tool.Event{}, false
	case e.Direction == mouse.DirPress:
		return tool.Down(x, y), true
	case e.Direction == mouse.DirRelease:
		return tool.Up(x, y), true
	}
	return tool.Event{}, false
}

// status summarises the open image for the bottom bar.
func (s *Session) status() string {
	img, ok := s.Current()
	if !ok {
		return "no image"
	}
	vp := s.Viewport()
	parts := []string{
		fmt.Sprintf("%s [%d/%d]", img.Name, s.Index()+1, s.Len()),
		s.Tool().String(),
		fmt.Sprintf("%.0f%%", vp.State.Scale*100),
		fmt.Sprintf("%d°", vp.State.NormalizedRotation()),
	}
	if m := s.Measurements(); len(m) > 0 {
		parts = append(parts, m[len(m)-1])
	}
	return strings.Join(parts, "  ")
}

func containerRect(width, height int) image.Rectangle {
	return image.Rect(toolbarWidth, 0, width, height-bottomHeight)
}

func actionRects(n int) []image.Rectangle {
	rects := make([]image.Rectangle, n)
	for i := range rects {
		y := titleHeight + i*buttonHeight
		rects[i] = image.Rect(0, y, toolbarWidth, y+buttonHeight)
	}
	return rects
}

func shortcutRects(height int) []image.Rectangle {
	rects := make([]image.Rectangle, len(shortcutKeys))
	x := 4
	for i, k := range shortcutKeys {
		w := labelWidth(shortcutLabels[k]) + 8
		rects[i] = image.Rect(x, height-bottomHeight+2, x+w, height-2)
		x += w + 4
	}
	return rects
}

func buttonAt(rects []image.Rectangle, pt image.Point) int {
	for i, r := range rects {
		if pt.In(r) {
			return i
		}
	}
	return -1
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func drawFrame(ctx context.Context, scr screen.Screen, w screen.Window, st paintState) {
	b, err := scr.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()
	th := st.frame.Theme
	draw.Draw(dst, dst.Bounds(), image.NewUniform(th.Background), image.Point{}, draw.Src)
	if ctx.Err() != nil {
		return
	}

	container := containerRect(st.width, st.height)
	if st.frame.Open && st.frame.Image != nil && !container.Empty() {
		sub := dst.SubImage(container).(*image.RGBA)
		render.Frame(sub, st.frame.Image, st.frame.Viewport, st.frame.Annotations, st.frame.Preview, th)
	} else {
		render.DrawText(dst, container.Min.X+12, container.Min.Y+24, "no image", th.Foreground)
	}
	if ctx.Err() != nil {
		return
	}

	draw.Draw(dst, image.Rect(0, 0, toolbarWidth, st.height), image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)
	td := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: basicfont.Face7x13, Dot: fixed.P(4, 16)}
	td.DrawString(ProgramTitle)
	for i, r := range actionRects(len(st.toolbar)) {
		btn := st.toolbar[i]
		btn.SetRect(r)
		state := StateDefault
		if i == st.hoverAction {
			state = StateHover
		}
		if ab, ok := btn.Button.(*ActionButton); ok && ab.action == st.frame.Tool.String() {
			state = StatePressed
		}
		btn.Draw(dst, state)
	}

	bar := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, bar, image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)
	rects := shortcutRects(st.height)
	for i, r := range rects {
		btn := st.shortcuts[i]
		btn.SetRect(r)
		state := StateDefault
		if i == st.hoverShortcut {
			state = StateHover
		}
		btn.Draw(dst, state)
	}
	x := bar.Min.X + 8
	if len(rects) > 0 {
		x = rects[len(rects)-1].Max.X + 12
	}
	sd := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: basicfont.Face7x13, Dot: fixed.P(x, bar.Min.Y+16)}
	sd.DrawString(st.status)
	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		mw, mh, _ := render.MeasureText(st.message)
		mx := container.Min.X + (container.Dx()-mw)/2
		my := container.Max.Y - mh - 16
		box := image.Rect(mx-6, my-4, mx+mw+6, my+mh+4)
		draw.Draw(dst, box, image.NewUniform(th.LabelBackground), image.Point{}, draw.Over)
		render.DrawRect(dst, box, th.ButtonBorder, 1)
		render.DrawText(dst, mx, my, st.message, th.LabelText)
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
