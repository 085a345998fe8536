package theme

import (
	"image/color"
	"reflect"
)

// Theme defines the colours used by the viewer chrome and the annotation
// overlay.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background around the image
	Foreground color.RGBA // Status text

	// Toolbar
	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonTextActive      color.RGBA
	ButtonBorder          color.RGBA

	// Annotations
	Point    color.RGBA
	Line     color.RGBA
	Ellipse  color.RGBA
	Angle    color.RGBA // Rays of a locked angle
	Distance color.RGBA // Measured ruler line
	Preview  color.RGBA // In-progress gesture
	Anchor   color.RGBA // First click of a pending gesture

	// Labels
	LabelText       color.RGBA
	LabelBackground color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{220, 220, 220, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonTextActive:      color.RGBA{0, 0, 160, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		Point:                 color.RGBA{255, 0, 0, 255},
		Line:                  color.RGBA{255, 0, 0, 255},
		Ellipse:               color.RGBA{255, 128, 0, 255},
		Angle:                 color.RGBA{0, 160, 0, 255},
		Distance:              color.RGBA{0, 0, 255, 255},
		Preview:               color.RGBA{255, 0, 255, 255},
		Anchor:                color.RGBA{255, 255, 0, 255},
		LabelText:             color.RGBA{255, 255, 255, 255},
		LabelBackground:       color.RGBA{0, 0, 0, 180},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
	}
}

// ColorFields returns the names of every colour field in declaration order.
func ColorFields() []string {
	typ := reflect.TypeOf(Theme{})
	rgba := reflect.TypeOf(color.RGBA{})
	var out []string
	for i := 0; i < typ.NumField(); i++ {
		if f := typ.Field(i); f.Type == rgba {
			out = append(out, f.Name)
		}
	}
	return out
}

// Color returns the colour stored in the named field.
func (t *Theme) Color(field string) (color.RGBA, bool) {
	f := reflect.ValueOf(t).Elem().FieldByName(field)
	if !f.IsValid() || f.Type() != reflect.TypeOf(color.RGBA{}) {
		return color.RGBA{}, false
	}
	return f.Interface().(color.RGBA), true
}
