// Package pixbuf provides the straight-alpha RGBA raster shared by the
// compositor, the overlay transform and the undo history.
package pixbuf

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

var (
	// ErrOutOfBounds reports a pixel access outside the buffer extent.
	ErrOutOfBounds = errors.New("pixel out of bounds")
	// ErrInvalidSize reports a non-positive width or height.
	ErrInvalidSize = errors.New("invalid buffer size")
)

// Buffer is a W×H raster of non-premultiplied 8-bit RGBA pixels. Operations
// that derive a new raster return a fresh Buffer and never touch the
// receiver.
type Buffer struct {
	img *image.NRGBA
}

// New returns a fully transparent buffer.
func New(width, height int) (*Buffer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Buffer{img: image.NewNRGBA(image.Rect(0, 0, width, height))}, nil
}

// Filled returns a buffer where every pixel is col.
func Filled(width, height int, col color.NRGBA) (*Buffer, error) {
	b, err := New(width, height)
	if err != nil {
		return nil, err
	}
	px := [4]byte{col.R, col.G, col.B, col.A}
	for i := 0; i < len(b.img.Pix); i += 4 {
		copy(b.img.Pix[i:i+4], px[:])
	}
	return b, nil
}

// FromImage converts a decoded image into a zero-origin buffer. NRGBA
// sources are copied exactly; anything else goes through the colour model.
func FromImage(src image.Image) (*Buffer, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidSize)
	}
	sb := src.Bounds()
	b, err := New(sb.Dx(), sb.Dy())
	if err != nil {
		return nil, err
	}
	if n, ok := src.(*image.NRGBA); ok {
		rowLen := sb.Dx() * 4
		for y := 0; y < sb.Dy(); y++ {
			si := n.PixOffset(sb.Min.X, sb.Min.Y+y)
			copy(b.img.Pix[y*b.img.Stride:y*b.img.Stride+rowLen], n.Pix[si:si+rowLen])
		}
		return b, nil
	}
	draw.Draw(b.img, b.img.Bounds(), src, sb.Min, draw.Src)
	return b, nil
}

// Wrap adopts img without copying. The caller must not retain img.
func Wrap(img *image.NRGBA) (*Buffer, error) {
	if img == nil || img.Bounds().Dx() < 1 || img.Bounds().Dy() < 1 {
		return nil, fmt.Errorf("%w: empty raster", ErrInvalidSize)
	}
	if img.Bounds().Min != (image.Point{}) {
		return FromImage(img)
	}
	return &Buffer{img: img}, nil
}

func (b *Buffer) Width() int  { return b.img.Bounds().Dx() }
func (b *Buffer) Height() int { return b.img.Bounds().Dy() }

// Size returns the buffer dimensions as a point.
func (b *Buffer) Size() image.Point { return b.img.Bounds().Size() }

func (b *Buffer) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width() && y < b.Height()
}

// At returns the pixel at (x, y).
func (b *Buffer) At(x, y int) (color.NRGBA, error) {
	if !b.inside(x, y) {
		return color.NRGBA{}, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, b.Width(), b.Height())
	}
	return b.img.NRGBAAt(x, y), nil
}

// Set writes col at (x, y).
func (b *Buffer) Set(x, y int, col color.NRGBA) error {
	if !b.inside(x, y) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, b.Width(), b.Height())
	}
	b.img.SetNRGBA(x, y, col)
	return nil
}

// Copy returns a deep clone.
func (b *Buffer) Copy() *Buffer {
	out := image.NewNRGBA(b.img.Bounds())
	copy(out.Pix, b.img.Pix)
	return &Buffer{img: out}
}

// ResizeNearest scales the buffer to width×height. Output pixel (x, y)
// samples source pixel (x*W/width, y*H/height) with no interpolation.
func (b *Buffer) ResizeNearest(width, height int) (*Buffer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	sw, sh := b.Width(), b.Height()
	if sw == width && sh == height {
		return b.Copy(), nil
	}
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	cols := make([]int, width)
	for x := range cols {
		cols[x] = x * sw / width * 4
	}
	for y := 0; y < height; y++ {
		sy := y * sh / height
		srcRow := b.img.Pix[sy*b.img.Stride:]
		dstRow := out.Pix[y*out.Stride:]
		for x, si := range cols {
			copy(dstRow[x*4:x*4+4], srcRow[si:si+4])
		}
	}
	return &Buffer{img: out}, nil
}

// Paste copies src into b with its top-left corner at at. Covered pixels are
// replaced, not blended, and anything outside b is dropped.
func (b *Buffer) Paste(src *Buffer, at image.Point) {
	dr := image.Rectangle{Min: at, Max: at.Add(src.Size())}.Intersect(b.img.Bounds())
	if dr.Empty() {
		return
	}
	rowLen := dr.Dx() * 4
	for y := dr.Min.Y; y < dr.Max.Y; y++ {
		si := src.img.PixOffset(dr.Min.X-at.X, y-at.Y)
		di := b.img.PixOffset(dr.Min.X, y)
		copy(b.img.Pix[di:di+rowLen], src.img.Pix[si:si+rowLen])
	}
}

// Equal reports whether both buffers have the same size and pixels.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Size() != o.Size() {
		return false
	}
	w := b.Width() * 4
	for y := 0; y < b.Height(); y++ {
		br := b.img.Pix[y*b.img.Stride : y*b.img.Stride+w]
		or := o.img.Pix[y*o.img.Stride : y*o.img.Stride+w]
		for i := range br {
			if br[i] != or[i] {
				return false
			}
		}
	}
	return true
}

// NRGBA returns a copy of the raster for encoders and drawing code.
func (b *Buffer) NRGBA() *image.NRGBA {
	return b.Copy().img
}

// Image exposes the raster read-only as an image.Image.
func (b *Buffer) Image() image.Image { return readOnly{b.img} }

type readOnly struct{ img *image.NRGBA }

func (r readOnly) ColorModel() color.Model { return r.img.ColorModel() }
func (r readOnly) Bounds() image.Rectangle { return r.img.Bounds() }
func (r readOnly) At(x, y int) color.Color { return r.img.At(x, y) }
