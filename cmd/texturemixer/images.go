package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/example/texturemixer/internal/clipboard"
	"github.com/example/texturemixer/internal/pixbuf"
)

// clipboardSource names the clipboard wherever a source path is accepted.
const clipboardSource = "clipboard:"

var readClipboardFn = clipboard.ReadImage

// loadImage decodes a PNG, JPEG, GIF, BMP or WebP file, or the clipboard
// image when path is clipboardSource.
func loadImage(path string) (*pixbuf.Buffer, error) {
	if path == clipboardSource {
		b, err := readClipboardFn()
		if err != nil {
			return nil, fmt.Errorf("read clipboard image: %w", err)
		}
		return b, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("error closing %q: %v", f.Name(), err)
		}
	}()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return pixbuf.FromImage(img)
}

// scaleImage enlarges b by an integer factor with nearest-neighbour
// sampling so texture pixels stay crisp.
func scaleImage(b *pixbuf.Buffer, scale int) image.Image {
	src := b.NRGBA()
	if scale <= 1 {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Width()*scale, b.Height()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// writePNG saves img to path and returns the absolute path written.
func writePNG(path string, img image.Image) (string, error) {
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(out, img); err != nil {
		if cerr := out.Close(); cerr != nil {
			log.Printf("error closing %q: %v", out.Name(), cerr)
		}
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	saved := path
	if abs, err := filepath.Abs(path); err == nil {
		saved = abs
	}
	return saved, nil
}

var writeClipboardFn = clipboard.WriteImage

// export writes img to output and/or the clipboard, reporting each to the
// user and the notifier.
func (r *root) export(img image.Image, output string, toClipboard bool) error {
	if output != "" {
		saved, err := writePNG(output, img)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.stderr, "saved %s\n", saved)
		r.notifyExport(saved, img)
	}
	if toClipboard {
		if err := writeClipboardFn(img); err != nil {
			return fmt.Errorf("copy PNG to clipboard: %w", err)
		}
		detail := "image"
		if output != "" {
			detail = filepath.Base(output)
		}
		fmt.Fprintf(r.stderr, "copied %s to clipboard\n", detail)
		r.notifyCopy(detail)
	}
	return nil
}
