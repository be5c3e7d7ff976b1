package clipboard

import (
	"errors"
	"image/color"
	"testing"

	"github.com/example/texturemixer/internal/pixbuf"
)

func TestPNGRoundTrip(t *testing.T) {
	b, err := pixbuf.Filled(3, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	if err != nil {
		t.Fatal(err)
	}
	data, err := encodePNG(b.Image())
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodePNG(data)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(b) {
		t.Fatal("pixels changed")
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := decodePNG(nil); !errors.Is(err, ErrNoImage) {
		t.Fatalf("err = %v", err)
	}
	if _, err := decodePNG([]byte("nope")); err == nil || errors.Is(err, ErrNoImage) {
		t.Fatalf("err = %v", err)
	}
}
