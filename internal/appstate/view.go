package appstate

import (
	"image"
	"math"
)

const (
	margin       = 16
	statusHeight = 20
)

// viewport maps between window pixels and canvas pixels. The canvas is
// scaled to fit the window above the status line and centred horizontally.
type viewport struct {
	origin image.Point
	zoom   float64
}

func fitViewport(canvas image.Point, winW, winH int) viewport {
	availW := winW - 2*margin
	availH := winH - 2*margin - statusHeight
	if availW < 1 || availH < 1 || canvas.X < 1 || canvas.Y < 1 {
		return viewport{origin: image.Pt(margin, margin), zoom: 1}
	}
	zoom := math.Min(float64(availW)/float64(canvas.X), float64(availH)/float64(canvas.Y))
	w := int(float64(canvas.X) * zoom)
	return viewport{origin: image.Pt((winW-w)/2, margin), zoom: zoom}
}

// toCanvas converts a window position to canvas coordinates.
func (v viewport) toCanvas(x, y float32) image.Point {
	return image.Pt(
		int(math.Floor((float64(x)-float64(v.origin.X))/v.zoom)),
		int(math.Floor((float64(y)-float64(v.origin.Y))/v.zoom)),
	)
}

// toWindow converts a canvas rectangle to window coordinates.
func (v viewport) toWindow(r image.Rectangle) image.Rectangle {
	f := func(n int) int { return int(math.Round(float64(n) * v.zoom)) }
	return image.Rect(
		v.origin.X+f(r.Min.X), v.origin.Y+f(r.Min.Y),
		v.origin.X+f(r.Max.X), v.origin.Y+f(r.Max.Y),
	)
}
