package main

import (
	"flag"
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/shineyruler/internal/geometry"
	"github.com/example/shineyruler/internal/tool"
)

// measureCmd prints the length of a segment given in image pixels.
type measureCmd struct {
	ppcm   float64
	coords [4]float64
	*root
	fs *flag.FlagSet
}

func (m *measureCmd) FlagSet() *flag.FlagSet {
	return m.fs
}

func (m *measureCmd) Program() string {
	return subProgram(m.root, "measure")
}

func parseMeasureCmd(args []string, r *root) (*measureCmd, error) {
	fs := flag.NewFlagSet("measure", flag.ExitOnError)
	c := &measureCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	ppcm := geometry.DefaultPixelsPerCM
	if r != nil && r.config != nil {
		ppcm = r.config.Measure.PixelsPerCM
	}
	fs.Float64Var(&c.ppcm, "ppcm", ppcm, "pixels per centimetre")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 4 {
		return nil, &UsageError{of: c}
	}
	for i, a := range fs.Args() {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q: %w", a, err)
		}
		c.coords[i] = v
	}
	if c.ppcm <= 0 {
		return nil, fmt.Errorf("-ppcm must be positive, got %v", c.ppcm)
	}
	return c, nil
}

func (m *measureCmd) Run() error {
	p := r2.Vec{X: m.coords[0], Y: m.coords[1]}
	q := r2.Vec{X: m.coords[2], Y: m.coords[3]}
	px := geometry.Distance(p, q)
	cm := geometry.PixelsToCentimeters(px, m.ppcm)
	mid := geometry.Midpoint(p, q)
	_, err := fmt.Fprintf(m.out(), "%.1f px  %s  midpoint (%.1f, %.1f)\n", px, tool.FormatCentimeters(cm), mid.X, mid.Y)
	return err
}
