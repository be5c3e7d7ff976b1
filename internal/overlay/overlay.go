// Package overlay models two positioned layers on a canvas. Pointer input
// moves or corner-resizes the focused layer and Flatten rasterizes both.
package overlay

import (
	"errors"
	"fmt"
	"image"

	"github.com/example/texturemixer/internal/pixbuf"
)

// ErrInvalidGeometry reports a canvas or layer with an unusable size.
var ErrInvalidGeometry = errors.New("invalid overlay geometry")

const (
	DefaultMinSize         = 50
	DefaultHandleTolerance = 8
)

// LayerID selects one of the two layers.
type LayerID int

const (
	First LayerID = iota
	Second
)

func (id LayerID) String() string {
	if id == First {
		return "first"
	}
	return "second"
}

// Mode is the interaction state.
type Mode int

const (
	Idle Mode = iota
	Dragging
	Resizing
)

func (m Mode) String() string {
	switch m {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	}
	return "idle"
}

// Corner names the handle being dragged while resizing.
type Corner int

const (
	NoCorner Corner = iota
	TopLeft
	TopRight
	BottomLeft
	BottomRight
)

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	}
	return "none"
}

// Layer is a placement in canvas coordinates.
type Layer struct {
	Center image.Point
	Size   image.Point
}

// Bounds returns the box covered by the layer. Min is Center-Size/2 and Max
// is Min+Size, so the box is always exactly Size.
func (l Layer) Bounds() image.Rectangle {
	tl := l.Center.Sub(l.Size.Div(2))
	return image.Rectangle{Min: tl, Max: tl.Add(l.Size)}
}

// contains is inclusive on every edge.
func (l Layer) contains(p image.Point) bool {
	r := l.Bounds()
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Handles returns the handle squares centred on each corner, ordered TL, TR,
// BL, BR.
func (l Layer) Handles(size int) [4]image.Rectangle {
	r := l.Bounds()
	hs := size / 2
	at := func(x, y int) image.Rectangle { return image.Rect(x-hs, y-hs, x+hs, y+hs) }
	return [4]image.Rectangle{
		at(r.Min.X, r.Min.Y),
		at(r.Max.X, r.Min.Y),
		at(r.Min.X, r.Max.Y),
		at(r.Max.X, r.Max.Y),
	}
}

// Option configures a Transform.
type Option func(*Transform)

// WithMinSize sets the size both dimensions must exceed after a resize.
// Values below one are ignored.
func WithMinSize(n int) Option {
	return func(t *Transform) {
		if n > 0 {
			t.minSize = n
		}
	}
}

// WithHandleTolerance sets the distance from a corner that starts a resize.
func WithHandleTolerance(n int) Option { return func(t *Transform) { t.tolerance = n } }

// Transform holds both layers and the pointer interaction state. It is not
// safe for concurrent use.
type Transform struct {
	canvas    image.Point
	layers    [2]Layer
	focused   LayerID
	mode      Mode
	corner    Corner
	last      image.Point
	minSize   int
	tolerance int
}

// New places the first layer over the whole canvas and the second at half
// size in the middle, focused.
func New(canvasW, canvasH int, opts ...Option) (*Transform, error) {
	if canvasW < 1 || canvasH < 1 {
		return nil, fmt.Errorf("%w: canvas %dx%d", ErrInvalidGeometry, canvasW, canvasH)
	}
	center := image.Pt(canvasW/2, canvasH/2)
	t := &Transform{
		canvas: image.Pt(canvasW, canvasH),
		layers: [2]Layer{
			{Center: center, Size: image.Pt(canvasW, canvasH)},
			{Center: center, Size: image.Pt(max(1, canvasW/2), max(1, canvasH/2))},
		},
		focused:   Second,
		minSize:   DefaultMinSize,
		tolerance: DefaultHandleTolerance,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Canvas returns the canvas size.
func (t *Transform) Canvas() image.Point { return t.canvas }

func (t *Transform) Focused() LayerID { return t.focused }
func (t *Transform) Mode() Mode       { return t.mode }
func (t *Transform) Corner() Corner   { return t.corner }

// HandleTolerance is the half-width of each corner handle zone.
func (t *Transform) HandleTolerance() int { return t.tolerance }

// Layer returns the placement of id.
func (t *Transform) Layer(id LayerID) Layer { return t.layers[id] }

// SetLayer places id directly. Either dimension below the minimum size is
// rejected.
func (t *Transform) SetLayer(id LayerID, l Layer) error {
	if id != First && id != Second {
		return fmt.Errorf("%w: layer %d", ErrInvalidGeometry, id)
	}
	if l.Size.X < 1 || l.Size.Y < 1 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidGeometry, l.Size.X, l.Size.Y)
	}
	if l.Size.X < t.minSize || l.Size.Y < t.minSize {
		return fmt.Errorf("%w: size %dx%d below minimum %d", ErrInvalidGeometry, l.Size.X, l.Size.Y, t.minSize)
	}
	t.layers[id] = l
	return nil
}

// Focus makes id the interactive layer.
func (t *Transform) Focus(id LayerID) {
	if id == First || id == Second {
		t.focused = id
	}
}

// Begin starts an interaction at p. A press inside a layer focuses it, the
// second layer winning when both contain p. Pressing a corner handle of the
// focused layer starts a resize and pressing inside it starts a drag.
func (t *Transform) Begin(p image.Point) {
	if t.layers[First].contains(p) {
		t.focused = First
	}
	if t.layers[Second].contains(p) {
		t.focused = Second
	}
	t.mode, t.corner = Idle, NoCorner
	l := t.layers[t.focused]
	r := l.Bounds()
	near := func(a, b int) bool { return abs(a-b) < t.tolerance }
	switch {
	case near(p.X, r.Min.X) && near(p.Y, r.Min.Y):
		t.mode, t.corner = Resizing, TopLeft
	case near(p.X, r.Max.X) && near(p.Y, r.Min.Y):
		t.mode, t.corner = Resizing, TopRight
	case near(p.X, r.Min.X) && near(p.Y, r.Max.Y):
		t.mode, t.corner = Resizing, BottomLeft
	case near(p.X, r.Max.X) && near(p.Y, r.Max.Y):
		t.mode, t.corner = Resizing, BottomRight
	case l.contains(p):
		t.mode = Dragging
	}
	t.last = p
}

// Update applies the pointer movement since the previous Begin or Update.
// It reports whether the focused layer changed. A resize that would leave
// either dimension at or below the minimum is ignored.
func (t *Transform) Update(p image.Point) bool {
	d := p.Sub(t.last)
	t.last = p
	switch t.mode {
	case Dragging:
		return t.drag(d)
	case Resizing:
		return t.resize(d)
	}
	return false
}

// End returns to Idle.
func (t *Transform) End() {
	t.mode, t.corner = Idle, NoCorner
}

func (t *Transform) drag(d image.Point) bool {
	l := t.layers[t.focused]
	c := l.Center.Add(d)
	c.X = clamp(c.X, l.Size.X/2, t.canvas.X-(l.Size.X-l.Size.X/2))
	c.Y = clamp(c.Y, l.Size.Y/2, t.canvas.Y-(l.Size.Y-l.Size.Y/2))
	if c == l.Center {
		return false
	}
	t.layers[t.focused].Center = c
	return true
}

func (t *Transform) resize(d image.Point) bool {
	r := t.layers[t.focused].Bounds()
	switch t.corner {
	case TopLeft:
		r.Min = r.Min.Add(d)
	case TopRight:
		r.Max.X += d.X
		r.Min.Y += d.Y
	case BottomLeft:
		r.Min.X += d.X
		r.Max.Y += d.Y
	case BottomRight:
		r.Max = r.Max.Add(d)
	default:
		return false
	}
	size := image.Pt(r.Max.X-r.Min.X, r.Max.Y-r.Min.Y)
	if size.X <= t.minSize || size.Y <= t.minSize {
		return false
	}
	l := Layer{Center: r.Min.Add(size.Div(2)), Size: size}
	if l == t.layers[t.focused] {
		return false
	}
	t.layers[t.focused] = l
	return true
}

// Flatten paints first then second at their placements onto a transparent
// canvas. Each image is resized to its layer with nearest-neighbour sampling
// and replaces whatever lies beneath it; parts outside the canvas are
// dropped.
func (t *Transform) Flatten(first, second *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	if first == nil || second == nil {
		return nil, fmt.Errorf("%w: both layers need an image", ErrInvalidGeometry)
	}
	out, err := pixbuf.New(t.canvas.X, t.canvas.Y)
	if err != nil {
		return nil, err
	}
	for i, src := range []*pixbuf.Buffer{first, second} {
		l := t.layers[i]
		scaled, err := src.ResizeNearest(l.Size.X, l.Size.Y)
		if err != nil {
			return nil, fmt.Errorf("flatten %s layer: %w", LayerID(i), err)
		}
		out.Paste(scaled, l.Bounds().Min)
	}
	return out, nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
