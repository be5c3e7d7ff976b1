//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import (
	"errors"
	"image"

	"github.com/example/texturemixer/internal/pixbuf"
)

var errUnsupported = errors.New("clipboard image operations are not supported on this platform")

// WriteImage is unsupported on this platform.
func WriteImage(image.Image) error {
	return errUnsupported
}

// ReadImage is unsupported on this platform.
func ReadImage() (*pixbuf.Buffer, error) {
	return nil, errUnsupported
}
