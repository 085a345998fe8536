//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	ownerOnce sync.Once
	owner     *x11Owner
	ownerErr  error
)

func connect() (*x11Owner, error) {
	ownerOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" {
			ownerErr = errNoDisplay
			return
		}
		owner, ownerErr = newX11Owner()
	})
	return owner, ownerErr
}

func publish(c Content) error {
	o, err := connect()
	if err != nil {
		return err
	}
	return o.own(c)
}

func fetchPNG() ([]byte, error) {
	o, err := connect()
	if err != nil {
		return nil, err
	}
	return o.fetch(targetPNG)
}

// x11Owner holds the CLIPBOARD selection on a hidden window and converts
// its Content for any client that asks.
type x11Owner struct {
	conn      *xgb.Conn
	window    xproto.Window
	selection xproto.Atom
	property  xproto.Atom
	atoms     map[target]xproto.Atom

	mu      sync.RWMutex
	content Content
}

func newX11Owner() (*x11Owner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	o := &x11Owner{conn: conn, atoms: make(map[target]xproto.Atom, len(targetNames))}
	if err := o.setup(); err != nil {
		conn.Close()
		return nil, err
	}
	go o.serve()
	return o, nil
}

func (o *x11Owner) setup() error {
	var err error
	if o.selection, err = intern(o.conn, "CLIPBOARD"); err != nil {
		return err
	}
	if o.property, err = intern(o.conn, "SHINEYRULER_SELECTION"); err != nil {
		return err
	}
	for t, name := range targetNames {
		a, err := intern(o.conn, name)
		if err != nil {
			return err
		}
		o.atoms[target(t)] = a
	}
	screen := xproto.Setup(o.conn).DefaultScreen(o.conn)
	if o.window, err = xproto.NewWindowId(o.conn); err != nil {
		return err
	}
	return xproto.CreateWindowChecked(o.conn, screen.RootDepth, o.window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check()
}

func intern(conn *xgb.Conn, name string) (xproto.Atom, error) {
	r, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	return r.Atom, nil
}

func (o *x11Owner) targetOf(a xproto.Atom) (target, bool) {
	for t, atom := range o.atoms {
		if atom == a {
			return t, true
		}
	}
	return 0, false
}

func (o *x11Owner) own(c Content) error {
	o.mu.Lock()
	o.content = c
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.selection, xproto.TimeCurrentTime).Check()
}

func (o *x11Owner) serve() {
	for {
		ev, xerr := o.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.content = Content{}
			o.mu.Unlock()
		}
	}
}

// answer converts the selection for one request and notifies the requestor.
// TODO: use the INCR protocol for images larger than the server's maximum
// request length.
func (o *x11Owner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}
	o.mu.RLock()
	c := o.content
	o.mu.RUnlock()

	t, known := o.targetOf(e.Target)
	switch {
	case !known:
		property = xproto.AtomNone
	case t == targetList:
		offered := c.offers()
		buf := make([]byte, 4*len(offered))
		for i, ot := range offered {
			xgb.Put32(buf[4*i:], uint32(o.atoms[ot]))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(offered)), buf)
	default:
		data, ok := c.convert(t)
		if !ok {
			property = xproto.AtomNone
			break
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, e.Target, 8, uint32(len(data)), data)
	}

	reply := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, xproto.EventMaskNoEvent, string(reply.Bytes()))
}

// fetch converts the current selection to t on a second connection, so
// reading our own selection does not block the owner's event loop.
func (o *x11Owner) fetch(t target) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.ConvertSelectionChecked(conn, window, o.selection, o.atoms[t], o.property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	for {
		ev, xerr := conn.WaitForEvent()
		if xerr != nil {
			return nil, xerr
		}
		if ev == nil {
			return nil, errors.New("X connection closed while reading the clipboard")
		}
		n, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if n.Property == xproto.AtomNone {
			return nil, fmt.Errorf("clipboard has no %s data", t)
		}
		reply, err := xproto.GetProperty(conn, true, window, n.Property, xproto.GetPropertyTypeAny, 0, 1<<30).Reply()
		if err != nil {
			return nil, err
		}
		return reply.Value, nil
	}
}
