// Package fill paints a region over a bounded number of steps so a UI can
// show the fill spreading. However it ends, a fill commits exactly once.
package fill

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"
	"time"

	"github.com/example/texturemixer/internal/compose"
	"github.com/example/texturemixer/internal/pixbuf"
)

// DefaultSteps is the number of slices a fill is split into.
const DefaultSteps = 20

var (
	// ErrEmptyRegion reports a fill with nothing to paint.
	ErrEmptyRegion = errors.New("fill region is empty")
	// ErrCancelled is returned by Run when the context ended the fill early.
	ErrCancelled = errors.New("fill cancelled")
)

// Committer receives the finished image.
type Committer interface {
	Commit(*pixbuf.Buffer)
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(*pixbuf.Buffer)

func (f CommitFunc) Commit(b *pixbuf.Buffer) { f(b) }

// Option configures an Op.
type Option func(*Op)

// WithSteps sets the number of slices. Values below one are ignored.
func WithSteps(n int) Option {
	return func(o *Op) {
		if n > 0 {
			o.steps = n
		}
	}
}

// Op is one fill in progress. All methods are safe for concurrent use and
// steps never overlap.
type Op struct {
	mu        sync.Mutex
	img       *pixbuf.Buffer
	region    []image.Point
	color     color.NRGBA
	committer Committer
	steps     int
	slices    []compose.Band
	next      int
	done      bool
}

// New prepares a fill of region on a private copy of target.
func New(target *pixbuf.Buffer, region []image.Point, c color.NRGBA, committer Committer, opts ...Option) (*Op, error) {
	if target == nil {
		return nil, fmt.Errorf("fill: %w", pixbuf.ErrInvalidSize)
	}
	if len(region) == 0 {
		return nil, ErrEmptyRegion
	}
	bounds := image.Rectangle{Max: target.Size()}
	for _, p := range region {
		if !p.In(bounds) {
			return nil, fmt.Errorf("fill %v: %w", p, pixbuf.ErrOutOfBounds)
		}
	}
	o := &Op{
		img:       target.Copy(),
		region:    append([]image.Point(nil), region...),
		color:     c,
		committer: committer,
		steps:     DefaultSteps,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.slices = compose.Bands(len(o.region), min(o.steps, len(o.region)))
	return o, nil
}

// Step paints the next slice. It reports true once the fill has been
// committed. If painting fails the rest of the region is filled at once and
// the error is returned alongside done=true.
func (o *Op) Step() (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done {
		return true, nil
	}
	if err := o.paint(o.slices[o.next]); err != nil {
		log.Printf("fill step %d failed, completing immediately: %v", o.next, err)
		o.finishLocked()
		return true, err
	}
	o.next++
	if o.next == len(o.slices) {
		o.finishLocked()
	}
	return o.done, nil
}

// Cancel completes the remaining slices immediately and commits. It is a
// no-op once the fill is done.
func (o *Op) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.done {
		o.finishLocked()
	}
}

// Run steps the fill once per tick until it is done. If ctx ends first the
// fill is completed immediately and ErrCancelled is returned.
func (o *Op) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			o.Cancel()
			return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		case <-ticker.C:
			done, err := o.Step()
			if done {
				return err
			}
		}
	}
}

// Progress returns completed and total steps.
func (o *Op) Progress() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.next, len(o.slices)
}

// Done reports whether the fill has been committed.
func (o *Op) Done() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}

// Preview returns a copy of the image as painted so far.
func (o *Op) Preview() *pixbuf.Buffer {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.img.Copy()
}

// Result returns the finished image, or nil while the fill is running.
func (o *Op) Result() *pixbuf.Buffer {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.done {
		return nil
	}
	return o.img.Copy()
}

func (o *Op) paint(b compose.Band) error {
	for _, p := range o.region[b.Start : b.Start+b.Size] {
		if err := o.img.Set(p.X, p.Y, o.color); err != nil {
			return err
		}
	}
	return nil
}

// finishLocked paints every slice not yet completed and commits once.
func (o *Op) finishLocked() {
	for _, b := range o.slices[o.next:] {
		for _, p := range o.region[b.Start : b.Start+b.Size] {
			if err := o.img.Set(p.X, p.Y, o.color); err != nil {
				log.Printf("fill: skipping %v: %v", p, err)
			}
		}
	}
	o.next = len(o.slices)
	o.done = true
	if o.committer != nil {
		o.committer.Commit(o.img.Copy())
	}
}
