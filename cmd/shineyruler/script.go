package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/example/shineyruler/internal/imagesrc"
	"github.com/example/shineyruler/internal/tool"
	"github.com/example/shineyruler/internal/viewer"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// scriptCmd drives a viewer session without a window. Coordinates are in
// screen pixels of a container of -size, or the image's own size.
type scriptCmd struct {
	index int
	size  string
	execs commandList
	refs  []string

	container image.Rectangle
	session   *viewer.Session
	*root
	fs *flag.FlagSet
}

func (s *scriptCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func (s *scriptCmd) Program() string {
	return subProgram(s.root, "script")
}

func parseScriptCmd(args []string, r *root) (*scriptCmd, error) {
	fs := flag.NewFlagSet("script", flag.ExitOnError)
	c := &scriptCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.IntVar(&c.index, "index", 0, "index of the image opened first")
	fs.StringVar(&c.size, "size", "", "screen size WxH of the image area (defaults to the image size)")
	fs.Var(&c.execs, "e", "execute a command (may be specified multiple times); stdin is read when absent")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: c}
	}
	c.refs = fs.Args()
	if c.index < 0 || c.index >= len(c.refs) {
		return nil, fmt.Errorf("-index %d out of range for %d images", c.index, len(c.refs))
	}
	if c.size != "" {
		rect, err := parseSize(c.size)
		if err != nil {
			return nil, err
		}
		c.container = rect
	}
	return c, nil
}

func parseSize(s string) (image.Rectangle, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return image.Rectangle{}, fmt.Errorf("invalid size %q: want WxH", s)
	}
	wi, err := strconv.Atoi(w)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	hi, err := strconv.Atoi(h)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if wi <= 0 || hi <= 0 {
		return image.Rectangle{}, fmt.Errorf("invalid size %q: dimensions must be positive", s)
	}
	return image.Rect(0, 0, wi, hi), nil
}

func (s *scriptCmd) Run() error {
	images, err := imagesrc.LoadAll(context.Background(), s.refs)
	if err != nil {
		return err
	}
	opts := append(s.root.sessionOptions(), viewer.WithIndex(s.index))
	if !s.container.Empty() {
		opts = append(opts, viewer.WithContainer(s.container))
	}
	s.session = viewer.New(images, opts...)

	if len(s.execs) > 0 {
		for _, line := range s.execs {
			done, err := s.executeLine(line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	fmt.Fprintln(s.out(), "Enter commands (type 'exit' to quit)")
	scanner := bufio.NewScanner(s.in())
	for {
		fmt.Fprint(s.out(), "> ")
		if !scanner.Scan() {
			break
		}
		done, err := s.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(s.errOut(), err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

// executeLine runs one command and reports whether the session should end.
func (s *scriptCmd) executeLine(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return false, nil
	}
	name := strings.ToLower(args[0])
	rest := args[1:]
	ses := s.session

	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprintln(s.out(), scriptHelp)
		return false, nil
	case "tool":
		if len(rest) != 1 {
			return false, fmt.Errorf("tool requires a name")
		}
		t, err := tool.Parse(rest[0])
		if err != nil {
			return false, err
		}
		return false, ses.Do(viewer.Action(t.String()))
	case "down", "move", "up", "click":
		x, y, err := parsePoint(name, rest)
		if err != nil {
			return false, err
		}
		switch name {
		case "down":
			ses.Pointer(tool.Down(x, y))
		case "move":
			ses.Pointer(tool.Move(x, y))
		case "up":
			ses.Pointer(tool.Up(x, y))
		case "click":
			ses.Pointer(tool.Down(x, y))
			ses.Pointer(tool.Up(x, y))
		}
		return false, nil
	case "clear":
		return false, ses.Do(viewer.ActionClearAll)
	case "cancel":
		ses.Cancel()
		return false, nil
	case "next":
		ses.Next()
		return false, nil
	case "prev":
		ses.Prev()
		return false, nil
	case "open":
		if len(rest) != 1 {
			return false, fmt.Errorf("open requires an image index")
		}
		i, err := strconv.Atoi(rest[0])
		if err != nil {
			return false, fmt.Errorf("invalid index %q: %w", rest[0], err)
		}
		return false, ses.Open(i)
	case "list":
		for i, m := range ses.Measurements() {
			fmt.Fprintf(s.out(), "%d: %s\n", i+1, m)
		}
		return false, nil
	case "status":
		s.printStatus()
		return false, nil
	case "save":
		path, err := ses.SaveImage(optionalArg(rest))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out(), "saved %s\n", path)
		return false, nil
	case "export":
		path, err := ses.ExportJSON(optionalArg(rest))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out(), "exported %s\n", path)
		return false, nil
	case "copy":
		if len(rest) > 0 && rest[0] == "measurements" {
			return false, ses.CopyMeasurements()
		}
		return false, ses.CopyImage()
	}
	return false, ses.Do(viewer.Action(name))
}

func (s *scriptCmd) printStatus() {
	ses := s.session
	img, ok := ses.Current()
	if !ok {
		fmt.Fprintln(s.out(), "no image open")
		return
	}
	vp := ses.Viewport()
	fmt.Fprintf(s.out(), "image %d/%d %s tool %s scale %.3g rotation %d annotations %d\n",
		ses.Index()+1, ses.Len(), img.Name, ses.Tool(), vp.State.Scale, vp.State.NormalizedRotation(), len(ses.Store().History()))
}

func parsePoint(cmd string, args []string) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%s requires x y", cmd)
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: invalid x %q", cmd, args[0])
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: invalid y %q", cmd, args[1])
	}
	return x, y, nil
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

const scriptHelp = `commands:
  tool <pan|point|line|ellipse|perpendicular|angle|ruler>
  down|move|up|click <x> <y>
  zoom-in  zoom-out  rotate  reset  undo  clear  cancel
  next  prev  open <index>
  list  status
  save [file.png]  export [file.json]  copy [measurements]
  exit`
