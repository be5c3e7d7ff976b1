package fill

import (
	"fmt"
	"image"
	"strings"

	"github.com/example/texturemixer/internal/pixbuf"
)

// Mode selects how a bucket click becomes a region.
type Mode int

const (
	// Whole repaints every pixel of the image.
	Whole Mode = iota
	// Flood repaints the 4-connected area sharing the clicked colour.
	Flood
)

func (m Mode) String() string {
	if m == Flood {
		return "flood"
	}
	return "whole"
}

// ParseMode accepts "whole" or "flood".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "whole", "image":
		return Whole, nil
	case "flood", "connected":
		return Flood, nil
	}
	return Whole, fmt.Errorf("unknown fill mode %q", s)
}

// Region builds the region for a click at (x, y).
func (m Mode) Region(buf *pixbuf.Buffer, x, y int) ([]image.Point, error) {
	if m == Flood {
		return FloodRegion(buf, x, y)
	}
	if _, err := buf.At(x, y); err != nil {
		return nil, err
	}
	return WholeRegion(buf.Width(), buf.Height()), nil
}

// WholeRegion lists every pixel column by column.
func WholeRegion(w, h int) []image.Point {
	if w < 1 || h < 1 {
		return nil
	}
	out := make([]image.Point, 0, w*h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			out = append(out, image.Pt(x, y))
		}
	}
	return out
}

// FloodRegion lists the pixels 4-connected to (x, y) with the same colour,
// nearest first.
func FloodRegion(buf *pixbuf.Buffer, x, y int) ([]image.Point, error) {
	target, err := buf.At(x, y)
	if err != nil {
		return nil, err
	}
	w, h := buf.Width(), buf.Height()
	seen := make([]bool, w*h)
	queue := []image.Point{{x, y}}
	seen[y*w+x] = true
	for i := 0; i < len(queue); i++ {
		p := queue[i]
		for _, n := range [4]image.Point{{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1}} {
			if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h || seen[n.Y*w+n.X] {
				continue
			}
			if c, _ := buf.At(n.X, n.Y); c != target {
				continue
			}
			seen[n.Y*w+n.X] = true
			queue = append(queue, n)
		}
	}
	return queue, nil
}
