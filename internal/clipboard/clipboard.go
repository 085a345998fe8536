// Package clipboard puts measured images on the system clipboard and reads
// images back from it. One copy can offer the image and its measurement
// summary together, so pasting into an image editor gets the PNG and
// pasting into a text field gets the numbers.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
)

var (
	errNoDisplay = errors.New("clipboard needs an X11 DISPLAY")
	errNoImage   = errors.New("clipboard does not contain image data")
)

// Content is what one copy offers to other programs. Either part may be
// empty.
type Content struct {
	PNG  []byte
	Text string
}

// Measured encodes img as PNG and pairs it with summary.
func Measured(img image.Image, summary string) (Content, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Content{}, fmt.Errorf("encode clipboard image: %w", err)
	}
	return Content{PNG: buf.Bytes(), Text: summary}, nil
}

// WriteMeasured publishes img and the measurement summary as one selection.
func WriteMeasured(img image.Image, summary string) error {
	c, err := Measured(img, summary)
	if err != nil {
		return err
	}
	return publish(c)
}

// WriteImage publishes img on its own.
func WriteImage(img image.Image) error { return WriteMeasured(img, "") }

// WriteText publishes text on its own.
func WriteText(text string) error { return publish(Content{Text: text}) }

// ReadImage decodes the PNG currently on the clipboard.
func ReadImage() (image.Image, error) {
	data, err := fetchPNG()
	if err != nil {
		return nil, err
	}
	return decodePNG(data)
}

func decodePNG(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errNoImage
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode clipboard image: %w", err)
	}
	return img, nil
}
