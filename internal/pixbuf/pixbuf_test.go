package pixbuf

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestAtSetBounds(t *testing.T) {
	b, err := New(4, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	red := color.NRGBA{R: 255, A: 255}
	if err := b.Set(3, 2, red); err != nil {
		t.Fatalf("Set inside: %v", err)
	}
	got, err := b.At(3, 2)
	if err != nil || got != red {
		t.Fatalf("At(3,2) = %v, %v; want %v", got, err, red)
	}
	for _, p := range []image.Point{{-1, 0}, {0, -1}, {4, 0}, {0, 3}} {
		if _, err := b.At(p.X, p.Y); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("At(%v) err = %v, want ErrOutOfBounds", p, err)
		}
		if err := b.Set(p.X, p.Y, red); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Set(%v) err = %v, want ErrOutOfBounds", p, err)
		}
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	for _, sz := range []image.Point{{0, 1}, {1, 0}, {-3, 4}} {
		if _, err := New(sz.X, sz.Y); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("New(%v) err = %v, want ErrInvalidSize", sz, err)
		}
	}
}

func TestCopyIsIndependent(t *testing.T) {
	b, _ := Filled(2, 2, color.NRGBA{G: 200, A: 255})
	c := b.Copy()
	if err := c.Set(0, 0, color.NRGBA{}); err != nil {
		t.Fatal(err)
	}
	if got, _ := b.At(0, 0); got != (color.NRGBA{G: 200, A: 255}) {
		t.Fatalf("original mutated through copy: %v", got)
	}
	if b.Equal(c) {
		t.Fatal("buffers should differ after writing to the copy")
	}
}

func TestResizeNearestSamplesFloor(t *testing.T) {
	src, _ := New(3, 1)
	cols := []color.NRGBA{{R: 1, A: 255}, {R: 2, A: 255}, {R: 3, A: 255}}
	for x, c := range cols {
		_ = src.Set(x, 0, c)
	}
	out, err := src.ResizeNearest(7, 2)
	if err != nil {
		t.Fatalf("ResizeNearest: %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 7; x++ {
			want := cols[x*3/7]
			if got, _ := out.At(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	if _, err := src.ResizeNearest(0, 2); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestResizeNearestDownscale(t *testing.T) {
	src, _ := New(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			_ = src.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	out, _ := src.ResizeNearest(2, 2)
	if got, _ := out.At(1, 1); got != (color.NRGBA{R: 2, G: 2, A: 255}) {
		t.Fatalf("downscaled (1,1) = %v", got)
	}
}

func TestFromImageRebasesOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	img.SetNRGBA(6, 5, color.NRGBA{B: 9, A: 255})
	b, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if b.Size() != image.Pt(2, 1) {
		t.Fatalf("size = %v", b.Size())
	}
	if got, _ := b.At(1, 0); got.B != 9 {
		t.Fatalf("pixel not rebased: %v", got)
	}
}

func TestNRGBAReturnsCopy(t *testing.T) {
	b, _ := New(1, 1)
	img := b.NRGBA()
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	if got, _ := b.At(0, 0); got != (color.NRGBA{}) {
		t.Fatalf("buffer changed through NRGBA(): %v", got)
	}
}

func TestPasteReplacesAndCrops(t *testing.T) {
	dst, _ := Filled(4, 4, color.NRGBA{R: 200, A: 255})
	src, _ := Filled(3, 3, color.NRGBA{G: 10, A: 40})
	dst.Paste(src, image.Pt(2, -1))
	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{1, 0, color.NRGBA{R: 200, A: 255}},
		{2, 0, color.NRGBA{G: 10, A: 40}},
		{3, 1, color.NRGBA{G: 10, A: 40}},
		{3, 2, color.NRGBA{R: 200, A: 255}},
	}
	for _, tc := range tests {
		if got, _ := dst.At(tc.x, tc.y); got != tc.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
	dst.Paste(src, image.Pt(10, 10))
}

func TestFilledKeepsStraightAlpha(t *testing.T) {
	c := color.NRGBA{R: 250, G: 3, B: 99, A: 17}
	b, _ := Filled(2, 2, c)
	if got, _ := b.At(1, 1); got != c {
		t.Fatalf("pixel = %v, want %v", got, c)
	}
}
