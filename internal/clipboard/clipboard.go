//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"errors"
	"image"
	"os"
	"sync"

	"github.com/example/texturemixer/internal/pixbuf"
)

// backend exchanges PNG bytes with the system clipboard.
type backend interface {
	writePNG(data []byte) error
	readPNG() ([]byte, error)
}

var (
	initOnce     sync.Once
	initErr      error
	active       backend
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		active, initErr = newBackend()
	})
	return initErr
}

// WriteImage publishes img to the clipboard as PNG.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	return active.writePNG(data)
}

// ReadImage decodes the PNG image currently on the clipboard.
func ReadImage() (*pixbuf.Buffer, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data, err := active.readPNG()
	if err != nil {
		return nil, err
	}
	return decodePNG(data)
}
