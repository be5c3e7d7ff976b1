package compose

import (
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"

	"github.com/example/texturemixer/internal/pixbuf"
)

// Band is one contiguous run of pixels along an axis.
type Band struct {
	Start int
	Size  int
}

// Bands splits dim pixels into n contiguous bands. The first dim%n bands are
// one pixel wider so every pixel is covered exactly once.
func Bands(dim, n int) []Band {
	if n < 1 || dim < 0 {
		return nil
	}
	base, extra := dim/n, dim%n
	out := make([]Band, n)
	start := 0
	for i := range out {
		size := base
		if i < extra {
			size++
		}
		out[i] = Band{Start: start, Size: size}
		start += size
	}
	return out
}

// bandOf returns the band index containing c and the offset of c inside it.
func bandOf(c, dim, n int) (idx, offset int) {
	base, extra := dim/n, dim%n
	wide := extra * (base + 1)
	if c < wide {
		return c / (base + 1), c % (base + 1)
	}
	if base == 0 {
		return n - 1, 0
	}
	c -= wide
	return extra + c/base, c % base
}

// sampler maps an output pixel to a source index and the pixel to read from
// that source.
type sampler func(x, y int) (src, sx, sy int)

// Compose renders sources into a new width×height buffer using p. Each source
// is resized to the output size with nearest-neighbour sampling first; the
// inputs are never modified.
func Compose(sources []*pixbuf.Buffer, width, height int, p Pattern) (*pixbuf.Buffer, error) {
	n := len(sources)
	if err := validate(n, width, height, p); err != nil {
		return nil, err
	}
	for i, s := range sources {
		if s == nil {
			return nil, fmt.Errorf("%w: source %d is empty", ErrInvalidConfiguration, i)
		}
	}
	sample := newSampler(p, n, width, height)

	resized := make([]*image.NRGBA, n)
	for i, s := range sources {
		r, err := s.ResizeNearest(width, height)
		if err != nil {
			return nil, fmt.Errorf("compose %s: source %d: %w", p.Name(n), i, err)
		}
		resized[i] = r.NRGBA()
	}

	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	eachRow(height, func(y int) {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < width; x++ {
			src, sx, sy := sample(x, y)
			s := resized[src]
			si := sy*s.Stride + sx*4
			copy(row[x*4:x*4+4], s.Pix[si:si+4])
		}
	})
	return pixbuf.Wrap(out)
}

func validate(n, width, height int, p Pattern) error {
	if _, ok := kinds[p.Kind]; !ok {
		return fmt.Errorf("%w: unknown pattern %v", ErrInvalidConfiguration, p.Kind)
	}
	switch {
	case n < 2:
		return fmt.Errorf("%w: need at least 2 sources, got %d", ErrInvalidConfiguration, n)
	case width <= 0 || height <= 0:
		return fmt.Errorf("%w: output size %dx%d", ErrInvalidConfiguration, width, height)
	case width != height:
		return fmt.Errorf("%w: output must be square, got %dx%d", ErrInvalidConfiguration, width, height)
	case p.Kind.MultiSource() && n < 3:
		return fmt.Errorf("%w: %s needs at least 3 sources, got %d", ErrInvalidConfiguration, p.Kind, n)
	case p.Kind.MultiSource() && p.Reverse:
		return fmt.Errorf("%w: %s has no reverse variant", ErrInvalidConfiguration, p.Kind)
	case !p.Kind.MultiSource() && n != 2:
		return fmt.Errorf("%w: %s takes exactly 2 sources, got %d", ErrInvalidConfiguration, p.Kind, n)
	}
	return nil
}

// eachRow runs fn for every row across GOMAXPROCS workers. Rows are
// independent so the result matches a sequential pass.
func eachRow(height int, fn func(y int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > height {
		workers = height
	}
	if workers <= 1 {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}
	rows := make(chan int, height)
	for y := 0; y < height; y++ {
		rows <- y
	}
	close(rows)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for y := range rows {
				fn(y)
			}
		}()
	}
	wg.Wait()
}

func newSampler(p Pattern, n, w, h int) sampler {
	if p.Kind.MultiSource() {
		return multiSampler(p.Kind, n, w, h)
	}
	first, second := 0, 1
	if p.Reverse {
		first, second = 1, 0
	}
	pick := twoSourceTest(p.Kind, w, h)
	return func(x, y int) (int, int, int) {
		if pick(x, y) {
			return first, x, y
		}
		return second, x, y
	}
}

// twoSourceTest reports whether pixel (x, y) takes the first source.
func twoSourceTest(k Kind, w, h int) func(x, y int) bool {
	cx, cy := float64(w-1)/2, float64(h-1)/2
	switch k {
	case HorizontalSplit:
		half := w / 2
		return func(x, _ int) bool { return x < half }
	case VerticalSplit:
		half := h / 2
		return func(_, y int) bool { return y < half }
	case Checkerboard:
		hw, hh := w/2, h/2
		return func(x, y int) bool { return (x < hw) == (y < hh) }
	case PerBend:
		return func(x, y int) bool { return y >= h*x/w }
	case Chevron:
		return func(x, y int) bool { return y < h*x/w }
	case InvertedChevron:
		return func(x, y int) bool { return y > h*x/w }
	case Cross:
		half := float64(max(1, w/5)) / 2
		return func(x, y int) bool {
			fx, fy := float64(x), float64(y)
			return (cx-half <= fx && fx <= cx+half) || (cy-half <= fy && fy <= cy+half)
		}
	case StripesHorizontal:
		band := max(1, h/4)
		return func(_, y int) bool { return (y/band)%2 == 0 }
	case StripesVertical:
		band := max(1, w/4)
		return func(x, _ int) bool { return (x/band)%2 == 0 }
	case Border:
		bw := max(1, w/8)
		return func(x, y int) bool { return x < bw || x >= w-bw || y < bw || y >= h-bw }
	case Diamond:
		radius := float64(min(w, h)) / 2
		return func(x, y int) bool {
			return math.Abs(float64(x)-cx)+math.Abs(float64(y)-cy) < radius
		}
	}
	return func(int, int) bool { return true }
}

func multiSampler(k Kind, n, w, h int) sampler {
	switch k {
	case SplitNHorizontal:
		return func(x, y int) (int, int, int) {
			i, _ := bandOf(x, w, n)
			return i, x, y
		}
	case SplitNVertical:
		return func(x, y int) (int, int, int) {
			i, _ := bandOf(y, h, n)
			return i, x, y
		}
	case CheckerboardN:
		rows := int(math.Sqrt(float64(n)))
		for (rows+1)*(rows+1) <= n {
			rows++
		}
		cols := (n + rows - 1) / rows
		// Each cell shows its source from the source's own origin.
		return func(x, y int) (int, int, int) {
			col, ox := bandOf(x, w, cols)
			row, oy := bandOf(y, h, rows)
			return (row*cols + col) % n, ox, oy
		}
	case StripesHorizontalN:
		band := max(1, h/n)
		return func(x, y int) (int, int, int) { return (y / band) % n, x, y }
	case StripesVerticalN:
		band := max(1, w/n)
		return func(x, y int) (int, int, int) { return (x / band) % n, x, y }
	case GradientN:
		return func(x, y int) (int, int, int) { return min(n-1, y*n/h), x, y }
	case BorderCycleN:
		bw := max(1, w/8)
		return func(x, y int) (int, int, int) {
			dist := min(x, y, w-1-x, h-1-y)
			return (dist / bw) % n, x, y
		}
	case DiamondCycleN:
		cx, cy := float64(w-1)/2, float64(h-1)/2
		maxDist := float64(min(w, h)) / 2
		return func(x, y int) (int, int, int) {
			dist := math.Abs(float64(x)-cx) + math.Abs(float64(y)-cy)
			return int(dist*float64(n)/maxDist) % n, x, y
		}
	}
	return func(x, y int) (int, int, int) { return 0, x, y }
}
