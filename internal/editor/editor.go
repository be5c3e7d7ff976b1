// Package editor holds the working image: its pixels, undo history and the
// pixel tools that modify it.
package editor

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/example/texturemixer/internal/fill"
	"github.com/example/texturemixer/internal/history"
	"github.com/example/texturemixer/internal/pixbuf"
)

// DefaultSize is the width and height of a new blank document.
const DefaultSize = 16

// ErrNoStroke reports ContinueStroke or EndStroke without BeginStroke.
var ErrNoStroke = errors.New("no stroke in progress")

// Tool is the active pixel tool.
type Tool int

const (
	ToolPaint Tool = iota
	ToolErase
	ToolEyedropper
	ToolBucket
)

var toolNames = map[Tool]string{
	ToolPaint:      "paint",
	ToolErase:      "erase",
	ToolEyedropper: "eyedropper",
	ToolBucket:     "bucket",
}

func (t Tool) String() string {
	if n, ok := toolNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ParseTool resolves a tool name.
func ParseTool(s string) (Tool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, n := range toolNames {
		if n == s {
			return t, nil
		}
	}
	switch s {
	case "pencil", "pen":
		return ToolPaint, nil
	case "eraser":
		return ToolErase, nil
	case "picker", "dropper":
		return ToolEyedropper, nil
	case "fill":
		return ToolBucket, nil
	}
	return ToolPaint, fmt.Errorf("unknown tool %q", s)
}

// Option configures a Document.
type Option func(*Document)

// WithFillMode chooses how bucket clicks pick their region.
func WithFillMode(m fill.Mode) Option { return func(d *Document) { d.fillMode = m } }

// WithFillSteps sets the number of steps bucket fills take.
func WithFillSteps(n int) Option { return func(d *Document) { d.fillSteps = n } }

// WithColor sets the initial paint colour.
func WithColor(c color.NRGBA) Option { return func(d *Document) { d.color = c } }

// Document is a working image and its history. It is not safe for
// concurrent use; a pending fill must be stepped from the same goroutine.
type Document struct {
	img      *pixbuf.Buffer
	hist     *history.Stack
	tool     Tool
	color    color.NRGBA
	fillMode fill.Mode

	fillSteps int
	pending   *fill.Op

	stroking bool
	changed  bool
}

// New creates a blank transparent document.
func New(width, height int, opts ...Option) (*Document, error) {
	img, err := pixbuf.New(width, height)
	if err != nil {
		return nil, fmt.Errorf("new document: %w", err)
	}
	return Open(img, opts...)
}

// Open starts a document whose initial state is img.
func Open(img *pixbuf.Buffer, opts ...Option) (*Document, error) {
	h, err := history.New(img)
	if err != nil {
		return nil, err
	}
	return newDocument(img.Copy(), h, opts), nil
}

// Restore rebuilds a document from a saved image and history.
func Restore(img *pixbuf.Buffer, rec history.Record, opts ...Option) (*Document, error) {
	h, err := history.Restore(rec)
	if err != nil {
		return nil, err
	}
	if img == nil {
		img = h.Current()
	}
	return newDocument(img.Copy(), h, opts), nil
}

func newDocument(img *pixbuf.Buffer, h *history.Stack, opts []Option) *Document {
	d := &Document{
		img:       img,
		hist:      h,
		color:     color.NRGBA{A: 255},
		fillSteps: fill.DefaultSteps,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Image returns a copy of the working image.
func (d *Document) Image() *pixbuf.Buffer { return d.img.Copy() }

func (d *Document) Width() int             { return d.img.Width() }
func (d *Document) Height() int            { return d.img.Height() }
func (d *Document) Tool() Tool             { return d.tool }
func (d *Document) SetTool(t Tool)         { d.tool = t }
func (d *Document) Color() color.NRGBA     { return d.color }
func (d *Document) SetColor(c color.NRGBA) { d.color = c }
func (d *Document) CanUndo() bool          { return d.hist.CanUndo() }
func (d *Document) CanRedo() bool          { return d.hist.CanRedo() }

// Pending returns the bucket fill in progress, if any.
func (d *Document) Pending() *fill.Op { return d.pending }

// settle completes a pending fill so the next action starts from its result.
func (d *Document) settle() {
	if d.pending != nil {
		d.pending.Cancel()
		d.pending = nil
	}
}

// BeginStroke presses the active tool at (x, y). With the bucket tool it
// starts a fill instead, available from Pending.
func (d *Document) BeginStroke(x, y int) error {
	d.settle()
	if d.tool == ToolBucket {
		_, err := d.Bucket(x, y)
		return err
	}
	d.stroking, d.changed = true, false
	d.apply(x, y)
	return nil
}

// ContinueStroke applies the tool at another point of the current stroke.
func (d *Document) ContinueStroke(x, y int) error {
	if !d.stroking {
		return ErrNoStroke
	}
	d.apply(x, y)
	return nil
}

// EndStroke finishes the stroke, committing one history entry if any pixel
// changed.
func (d *Document) EndStroke() error {
	if !d.stroking {
		return ErrNoStroke
	}
	d.stroking = false
	if d.changed {
		d.hist.Commit(d.img)
		d.changed = false
	}
	return nil
}

// apply ignores points outside the image.
func (d *Document) apply(x, y int) {
	cur, err := d.img.At(x, y)
	if err != nil {
		return
	}
	switch d.tool {
	case ToolPaint:
		d.set(x, y, cur, d.color)
	case ToolErase:
		d.set(x, y, cur, color.NRGBA{})
	case ToolEyedropper:
		d.color = cur
		d.tool = ToolPaint
	}
}

func (d *Document) set(x, y int, cur, c color.NRGBA) {
	if cur == c {
		return
	}
	if d.img.Set(x, y, c) == nil {
		d.changed = true
	}
}

// Bucket starts a stepwise fill from (x, y) in the current colour. Clicks
// outside the image return a nil Op and no error.
func (d *Document) Bucket(x, y int) (*fill.Op, error) {
	d.settle()
	if _, err := d.img.At(x, y); err != nil {
		return nil, nil
	}
	region, err := d.fillMode.Region(d.img, x, y)
	if err != nil {
		return nil, fmt.Errorf("bucket: %w", err)
	}
	op, err := fill.New(d.img, region, d.color, fill.CommitFunc(d.commitFill), fill.WithSteps(d.fillSteps))
	if err != nil {
		return nil, fmt.Errorf("bucket: %w", err)
	}
	d.pending = op
	return op, nil
}

func (d *Document) commitFill(b *pixbuf.Buffer) {
	d.img = b
	d.hist.Commit(b)
}

// Undo reverts to the previous committed state.
func (d *Document) Undo() error {
	d.settle()
	b, err := d.hist.Undo()
	if err != nil {
		return err
	}
	d.img = b
	return nil
}

// Redo reapplies the last undone state.
func (d *Document) Redo() error {
	d.settle()
	b, err := d.hist.Redo()
	if err != nil {
		return err
	}
	d.img = b
	return nil
}

// Accept replaces the working image with b as one committed edit.
func (d *Document) Accept(b *pixbuf.Buffer) error {
	if b == nil {
		return fmt.Errorf("accept: %w", pixbuf.ErrInvalidSize)
	}
	d.settle()
	d.img = b.Copy()
	d.hist.Commit(d.img)
	return nil
}

// Snapshot returns the working image and both history stacks.
func (d *Document) Snapshot() (*pixbuf.Buffer, history.Record) {
	d.settle()
	return d.img.Copy(), d.hist.Record()
}
