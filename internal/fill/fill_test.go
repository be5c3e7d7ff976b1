package fill

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/example/texturemixer/internal/pixbuf"
)

var paint = color.NRGBA{R: 10, G: 20, B: 30, A: 255}

type recorder struct {
	commits []*pixbuf.Buffer
}

func (r *recorder) Commit(b *pixbuf.Buffer) { r.commits = append(r.commits, b) }

func blank(t *testing.T, w, h int) *pixbuf.Buffer {
	t.Helper()
	b, err := pixbuf.New(w, h)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func allPainted(t *testing.T, b *pixbuf.Buffer) {
	t.Helper()
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			if c, _ := b.At(x, y); c != paint {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, c, paint)
			}
		}
	}
}

func TestStepsCommitOnce(t *testing.T) {
	img := blank(t, 7, 5)
	rec := &recorder{}
	op, err := New(img, WholeRegion(7, 5), paint, rec)
	if err != nil {
		t.Fatal(err)
	}
	steps := 0
	for {
		done, err := op.Step()
		if err != nil {
			t.Fatal(err)
		}
		steps++
		if done {
			break
		}
		if len(rec.commits) != 0 {
			t.Fatalf("committed after %d steps", steps)
		}
	}
	if steps != DefaultSteps {
		t.Fatalf("steps = %d, want %d", steps, DefaultSteps)
	}
	if len(rec.commits) != 1 {
		t.Fatalf("commits = %d", len(rec.commits))
	}
	allPainted(t, rec.commits[0])
	if c, _ := img.At(0, 0); c == paint {
		t.Fatal("target was painted in place")
	}
	if done, _ := op.Step(); !done || len(rec.commits) != 1 {
		t.Fatal("stepping a finished fill should do nothing")
	}
}

func TestStepsPaintInOrder(t *testing.T) {
	op, err := New(blank(t, 10, 1), WholeRegion(10, 1), paint, nil, WithSteps(4))
	if err != nil {
		t.Fatal(err)
	}
	// 10 pixels over 4 steps: slices of 3,3,2,2.
	for i, want := range []int{3, 6, 8, 10} {
		if _, err := op.Step(); err != nil {
			t.Fatal(err)
		}
		prev := op.Preview()
		for x := 0; x < 10; x++ {
			c, _ := prev.At(x, 0)
			if (x < want) != (c == paint) {
				t.Fatalf("after step %d pixel %d = %v", i+1, x, c)
			}
		}
	}
	if !op.Done() || op.Result() == nil {
		t.Fatal("fill should be done")
	}
}

func TestStepsClampToRegion(t *testing.T) {
	op, err := New(blank(t, 2, 1), WholeRegion(2, 1), paint, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, total := op.Progress(); total != 2 {
		t.Fatalf("total steps = %d", total)
	}
}

func TestCancelCompletesImmediately(t *testing.T) {
	rec := &recorder{}
	op, _ := New(blank(t, 8, 8), WholeRegion(8, 8), paint, rec)
	for i := 0; i < 3; i++ {
		if _, err := op.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if op.Result() != nil {
		t.Fatal("Result should be nil while running")
	}
	op.Cancel()
	op.Cancel()
	if len(rec.commits) != 1 {
		t.Fatalf("commits = %d", len(rec.commits))
	}
	allPainted(t, rec.commits[0])
	if done, total := op.Progress(); done != total {
		t.Fatalf("progress = %d/%d", done, total)
	}
}

func TestStepErrorFallsBackToFullFill(t *testing.T) {
	rec := &recorder{}
	op, _ := New(blank(t, 4, 4), WholeRegion(4, 4), paint, rec, WithSteps(4))
	if _, err := op.Step(); err != nil {
		t.Fatal(err)
	}
	op.region[5] = image.Pt(-1, -1)
	done, err := op.Step()
	if !done || !errors.Is(err, pixbuf.ErrOutOfBounds) {
		t.Fatalf("Step = %v, %v", done, err)
	}
	if len(rec.commits) != 1 {
		t.Fatalf("commits = %d", len(rec.commits))
	}
	// WholeRegion is column-major so index 5 was (1,1).
	got := rec.commits[0]
	for _, p := range WholeRegion(4, 4) {
		c, _ := got.At(p.X, p.Y)
		if p == image.Pt(1, 1) {
			continue
		}
		if c != paint {
			t.Fatalf("pixel %v = %v", p, c)
		}
	}
}

func TestRunTicksToCompletion(t *testing.T) {
	rec := &recorder{}
	op, _ := New(blank(t, 4, 4), WholeRegion(4, 4), paint, rec, WithSteps(3))
	if err := op.Run(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.commits) != 1 {
		t.Fatalf("commits = %d", len(rec.commits))
	}
}

func TestRunCancelledContext(t *testing.T) {
	rec := &recorder{}
	op, _ := New(blank(t, 4, 4), WholeRegion(4, 4), paint, rec)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := op.Run(ctx, time.Hour); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Run err = %v", err)
	}
	if len(rec.commits) != 1 {
		t.Fatalf("commits = %d", len(rec.commits))
	}
	allPainted(t, rec.commits[0])
}

func TestNewValidatesRegion(t *testing.T) {
	img := blank(t, 2, 2)
	if _, err := New(img, nil, paint, nil); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("empty region err = %v", err)
	}
	if _, err := New(img, []image.Point{{2, 0}}, paint, nil); !errors.Is(err, pixbuf.ErrOutOfBounds) {
		t.Errorf("outside region err = %v", err)
	}
}
