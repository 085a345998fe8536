package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/example/shineyruler/internal/imagesrc"
	"github.com/example/shineyruler/internal/viewer"
)

// viewCmd opens the interactive measuring window over a list of images.
type viewCmd struct {
	index int
	refs  []string
	*root
	fs *flag.FlagSet
}

func (v *viewCmd) FlagSet() *flag.FlagSet {
	return v.fs
}

func (v *viewCmd) Program() string {
	return subProgram(v.root, "view")
}

func parseViewCmd(args []string, r *root) (*viewCmd, error) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	c := &viewCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.IntVar(&c.index, "index", 0, "index of the image opened first")
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
	return c, nil
}

func (v *viewCmd) Run() error {
	images, err := imagesrc.LoadAll(context.Background(), v.refs)
	if err != nil {
		return err
	}
	opts := append(v.root.sessionOptions(),
		viewer.WithIndex(v.index),
		viewer.WithTitle(windowTitle(titleOptions{Count: len(images)})),
	)
	viewer.New(images, opts...).Run()
	return nil
}
