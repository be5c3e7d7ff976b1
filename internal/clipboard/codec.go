// Package clipboard moves images between the program and the desktop
// clipboard as PNG data.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/example/texturemixer/internal/pixbuf"
)

// ErrNoImage reports a clipboard without PNG data.
var ErrNoImage = errors.New("clipboard does not contain image data")

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode clipboard image: %w", err)
	}
	return buf.Bytes(), nil
}

func decodePNG(data []byte) (*pixbuf.Buffer, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode clipboard image: %w", err)
	}
	return pixbuf.FromImage(img)
}
