package render

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/example/shineyruler/internal/annotation"
	"github.com/example/shineyruler/internal/theme"
	"github.com/example/shineyruler/internal/tool"
	"github.com/example/shineyruler/internal/viewport"
)

// DrawImage draws src onto dst through the viewport transform.
func DrawImage(dst draw.Image, src image.Image, vp viewport.Viewport) {
	if src == nil {
		return
	}
	aff := vp.Affine()
	// The viewport works in natural coordinates starting at 0; shift for
	// images whose bounds start elsewhere.
	o := src.Bounds().Min
	aff[2] -= aff[0]*float64(o.X) + aff[1]*float64(o.Y)
	aff[5] -= aff[3]*float64(o.X) + aff[4]*float64(o.Y)
	xdraw.BiLinear.Transform(dst, aff, src, src.Bounds(), draw.Over, nil)
}

// Frame paints a complete viewer frame: backdrop, image and overlay.
func Frame(dst *image.RGBA, src image.Image, vp viewport.Viewport, anns []annotation.Annotation, preview tool.Preview, th *theme.Theme) {
	if th == nil {
		th = theme.Default()
	}
	drawCheckerboard(dst, dst.Bounds(), 8, th.CheckerLight, th.CheckerDark)
	DrawImage(dst, src, vp)
	Rasterize(dst, Build(vp, anns, preview, th))
}

// Flatten burns anns into a copy of src at its natural resolution.
func Flatten(src image.Image, anns []annotation.Annotation, th *theme.Theme) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	vp := viewport.New(viewport.Layout{Container: out.Bounds(), Natural: image.Pt(b.Dx(), b.Dy())}, viewport.DefaultLimits())
	Rasterize(out, Build(vp, anns, tool.Preview{}, th))
	return out
}
