package render

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// LabelSize is the point size used for measurement labels.
const LabelSize = 14

var (
	faceOnce  sync.Once
	labelFace font.Face
)

// Face returns the label font. If the bundled Go font cannot be parsed the
// fixed 7x13 face is used instead.
func Face() font.Face {
	faceOnce.Do(func() {
		labelFace = basicfont.Face7x13
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			log.Printf("parse font: %v", err)
			return
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: LabelSize, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			log.Printf("font face: %v", err)
			return
		}
		labelFace = face
	})
	return labelFace
}

// MeasureText returns the dimensions of text in the label face. baseline is
// the offset from the top to the text baseline.
func MeasureText(text string) (width, height, baseline int) {
	face := Face()
	drawer := &font.Drawer{Face: face}
	width = drawer.MeasureString(text).Ceil()
	metrics := face.Metrics()
	baseline = metrics.Ascent.Ceil()
	height = baseline + metrics.Descent.Ceil()
	return
}

// DrawText renders text with its top-left corner at (x, y).
func DrawText(img *image.RGBA, x, y int, text string, col color.Color) {
	_, _, baseline := MeasureText(text)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: Face(),
		Dot:  fixed.P(x, y+baseline),
	}
	d.DrawString(text)
}

// drawLabel draws text centred on (cx, cy) over a padded box.
func drawLabel(img *image.RGBA, cx, cy int, text string, fg, bg color.RGBA) {
	w, h, _ := MeasureText(text)
	x := cx - w/2
	y := cy - h/2
	box := image.Rect(x-3, y-2, x+w+3, y+h+2)
	if !box.Overlaps(img.Bounds()) {
		return
	}
	if bg.A > 0 {
		draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)
	}
	DrawText(img, x, y, text, fg)
}
