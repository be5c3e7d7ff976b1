// Package render draws the soft drop shadow cast by the overlay canvas.
package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow.
type ShadowOptions struct {
	Radius int
	Offset image.Point
}

// DefaultShadowOptions returns the shadow drawn behind the canvas.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{Radius: 6, Offset: image.Pt(4, 4)}
}

// ShadowMask returns the blurred coverage of a box of the given size. The
// mask is expanded by the radius on every side, so its bounds are
// (-Radius,-Radius)-(size+Radius) relative to the box origin, before the
// offset is applied.
func ShadowMask(size image.Point, radius int) *image.Alpha {
	if radius < 0 {
		radius = 0
	}
	if size.X < 1 || size.Y < 1 {
		return image.NewAlpha(image.Rectangle{})
	}
	full := image.Rect(-radius, -radius, size.X+radius, size.Y+radius)
	mask := image.NewAlpha(full)
	for y := 0; y < size.Y; y++ {
		row := mask.Pix[mask.PixOffset(0, y):]
		for x := 0; x < size.X; x++ {
			row[x] = 0xff
		}
	}
	return blurAlpha(mask, radius)
}

// DrawShadow paints the shadow of box onto dst in col. The box itself is
// left for the caller to draw over.
func DrawShadow(dst draw.Image, box image.Rectangle, col color.RGBA, opts ShadowOptions) {
	if box.Empty() || col.A == 0 {
		return
	}
	mask := ShadowMask(box.Size(), opts.Radius)
	origin := box.Min.Add(opts.Offset)
	dr := mask.Bounds().Add(origin)
	draw.DrawMask(dst, dr, image.NewUniform(col), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

// blurAlpha applies a separable box blur of the given radius.
func blurAlpha(src *image.Alpha, radius int) *image.Alpha {
	b := src.Bounds()
	if radius == 0 {
		out := image.NewAlpha(b)
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := b.Dx(), b.Dy()
	tmp := image.NewAlpha(b)
	dst := image.NewAlpha(b)

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for x, v := range row {
			prefix[x+1] = prefix[x] + int(v)
		}
		out := tmp.Pix[y*tmp.Stride:]
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-radius), min(w-1, x+radius)
			out[x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0, y1 := max(0, y-radius), min(h-1, y+radius)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return dst
}
