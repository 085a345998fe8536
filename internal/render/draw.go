package render

import (
	"image"
	"image/color"
	"math"
)

// maxEllipseSteps caps the polyline used for very large ellipses.
const maxEllipseSteps = 4096

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

// drawLine draws a Bresenham line. A positive dash alternates dash pixels on
// and dash pixels off along the line.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick, dash int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for n := 0; ; n++ {
		if dash <= 0 || (n/dash)%2 == 0 {
			setThickPixel(img, x0, y0, thick, col)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// drawSegment clips a float segment to the image before rasterising so that
// heavily zoomed overlays do not walk millions of off-screen pixels.
func drawSegment(img *image.RGBA, x0, y0, x1, y1 float64, col color.Color, thick, dash int) {
	pad := float64(thick + 1)
	b := img.Bounds()
	cx0, cy0, cx1, cy1, ok := clipSegment(x0, y0, x1, y1,
		float64(b.Min.X)-pad, float64(b.Min.Y)-pad, float64(b.Max.X)+pad, float64(b.Max.Y)+pad)
	if !ok {
		return
	}
	drawLine(img, iround(cx0), iround(cy0), iround(cx1), iround(cy1), col, thick, dash)
}

// clipSegment is Liang-Barsky clipping against the rectangle
// [minX,maxX]x[minY,maxY].
func clipSegment(x0, y0, x1, y1, minX, minY, maxX, maxY float64) (float64, float64, float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := x1-x0, y1-y0
	edges := [4][2]float64{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func drawEllipse(img *image.RGBA, cx, cy, rx, ry float64, col color.Color, thick, dash int) {
	steps := int(math.Ceil(2 * math.Pi * math.Sqrt(rx*rx+ry*ry) / 4))
	if steps < 16 {
		steps = 16
	}
	if steps > maxEllipseSteps {
		steps = maxEllipseSteps
	}
	var prevX, prevY float64
	for i := 0; i <= steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + math.Cos(angle)*rx
		y := cy + math.Sin(angle)*ry
		if i > 0 && (dash <= 0 || i%2 == 0) {
			drawSegment(img, prevX, prevY, x, y, col, thick, 0)
		}
		prevX, prevY = x, y
	}
}

func drawFilledCircle(img *image.RGBA, cx, cy, r int, col color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				px := cx + dx
				py := cy + dy
				if image.Pt(px, py).In(img.Bounds()) {
					img.Set(px, py, col)
				}
			}
		}
	}
}

func drawCircleThin(img *image.RGBA, cx, cy, r int, col color.Color) {
	x := r
	y := 0
	err := 1 - r
	for x >= y {
		pts := [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}}
		for _, p := range pts {
			px := cx + p[0]
			py := cy + p[1]
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

// DrawRect outlines rect.
func DrawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick, 0)
	drawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick, 0)
	drawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick, 0)
	drawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick, 0)
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.RGBA) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.SetRGBA(x, y, light)
			} else {
				dst.SetRGBA(x, y, dark)
			}
		}
	}
}

func iround(f float64) int { return int(math.Round(f)) }
