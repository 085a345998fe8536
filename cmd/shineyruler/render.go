package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/shineyruler/internal/export"
	"github.com/example/shineyruler/internal/imagesrc"
	"github.com/example/shineyruler/internal/viewer"
)

// renderCmd burns an exported annotation document into its image.
type renderCmd struct {
	file          string
	annotations   string
	output        string
	fromClipboard bool
	toClipboard   bool
	*root
	fs *flag.FlagSet
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *renderCmd) Program() string {
	return subProgram(c.root, "render")
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c := &renderCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.file, "file", "", "input image path or URL (defaults to the image named in the annotations)")
	fs.StringVar(&c.annotations, "annotations", "", "annotations JSON written by export")
	fs.StringVar(&c.output, "output", "", "output PNG path (defaults to <name>-measured.png)")
	fs.BoolVar(&c.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.BoolVar(&c.fromClipboard, "from-clip", false, "read the input image from the clipboard (alias)")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&c.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.annotations == "" {
		return nil, &UsageError{of: c}
	}
	if c.fromClipboard {
		if c.file != "" {
			return nil, fmt.Errorf("-file and -from-clipboard cannot be combined")
		}
		if c.output == "" && !c.toClipboard {
			return nil, fmt.Errorf("output file is required when reading from the clipboard")
		}
		c.file = imagesrc.ClipboardRef
	}
	return c, nil
}

func (c *renderCmd) Run() error {
	f, err := os.Open(c.annotations)
	if err != nil {
		return fmt.Errorf("open annotations: %w", err)
	}
	doc, err := export.Decode(f)
	closeErr := f.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	ref := c.file
	if ref == "" {
		ref = doc.Image
	}
	if ref == "" {
		return fmt.Errorf("no image given and the annotations do not name one")
	}
	img, err := imagesrc.Load(context.Background(), ref)
	if err != nil {
		return err
	}
	if b := img.Image.Bounds(); doc.Width != 0 && (b.Dx() != doc.Width || b.Dy() != doc.Height) {
		fmt.Fprintf(c.errOut(), "warning: annotations were made on a %dx%d image, %s is %dx%d\n", doc.Width, doc.Height, img.Name, b.Dx(), b.Dy())
	}

	s := viewer.New([]imagesrc.Image{img}, c.root.sessionOptions()...)
	if err := export.Restore(doc, s.Store()); err != nil {
		return err
	}

	if c.output != "" || !c.toClipboard {
		saved, err := s.SaveImage(c.output)
		if err != nil {
			return err
		}
		if abs, err := filepath.Abs(saved); err == nil {
			saved = abs
		}
		fmt.Fprintf(c.errOut(), "saved %s\n", saved)
	}
	if c.toClipboard {
		if err := s.CopyImage(); err != nil {
			return err
		}
		fmt.Fprintf(c.errOut(), "copied %s to clipboard\n", img.Name)
	}
	return nil
}
