// Package appstate runs the interactive overlay window: the two layers are
// shown flattened on the canvas, the focused layer is dragged or resized with
// the mouse, and Enter accepts the result.
package appstate

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/texturemixer/internal/clipboard"
	"github.com/example/texturemixer/internal/overlay"
	"github.com/example/texturemixer/internal/pixbuf"
	"github.com/example/texturemixer/internal/theme"
)

// AppState holds the overlay session shown in the window.
type AppState struct {
	Transform *overlay.Transform
	First     *pixbuf.Buffer
	Second    *pixbuf.Buffer
	Output    string
	Theme     *theme.Theme

	onCommit func(*pixbuf.Buffer)
	onCopy   func()

	mu     sync.Mutex
	result *pixbuf.Buffer
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTheme sets the window colours.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithOutput sets the PNG path written when the overlay is accepted.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithOnCommit registers a callback receiving the flattened image on accept.
func WithOnCommit(fn func(*pixbuf.Buffer)) Option { return func(a *AppState) { a.onCommit = fn } }

// WithOnCopy registers a callback invoked after a clipboard copy.
func WithOnCopy(fn func()) Option { return func(a *AppState) { a.onCopy = fn } }

// New creates an AppState for tr with the two layer images.
func New(tr *overlay.Transform, first, second *pixbuf.Buffer, opts ...Option) *AppState {
	a := &AppState{Transform: tr, First: first, Second: second}
	for _, o := range opts {
		o(a)
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	return a
}

// Result returns the accepted image, or nil if the window closed without
// accepting.
func (a *AppState) Result() *pixbuf.Buffer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// accept flattens the layers, writes Output if set and hands the result to
// the commit callback.
func (a *AppState) accept() (string, error) {
	out, err := a.Transform.Flatten(a.First, a.Second)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	a.result = out
	a.mu.Unlock()
	msg := "overlay accepted"
	if a.Output != "" {
		if err := savePNG(a.Output, out); err != nil {
			return "", err
		}
		msg = fmt.Sprintf("saved %s", a.Output)
	}
	if a.onCommit != nil {
		a.onCommit(out)
	}
	return msg, nil
}

func savePNG(path string, b *pixbuf.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := png.Encode(f, b.NRGBA()); err != nil {
		if cerr := f.Close(); cerr != nil {
			log.Printf("save: closing file: %v", cerr)
		}
		return fmt.Errorf("save: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save: closing file: %w", err)
	}
	return nil
}

// handlePointer feeds a mouse event in canvas coordinates to the transform
// and reports whether a repaint is needed.
func (a *AppState) handlePointer(dir mouse.Direction, button mouse.Button, p image.Point) bool {
	tr := a.Transform
	switch dir {
	case mouse.DirPress:
		if button != mouse.ButtonLeft {
			return false
		}
		tr.Begin(p)
		return true
	case mouse.DirRelease:
		if tr.Mode() == overlay.Idle {
			return false
		}
		tr.End()
		return true
	case mouse.DirNone:
		if tr.Mode() == overlay.Idle {
			return false
		}
		return tr.Update(p)
	}
	return false
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main runs the window on s until it is closed or the overlay is accepted.
func (a *AppState) Main(s screen.Screen) {

	canvas := a.Transform.Canvas()
	width := canvas.X + 2*margin
	height := canvas.Y + 2*margin + statusHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "texturemixer overlay"})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()

	var (
		paintMu     sync.Mutex
		paintCancel context.CancelFunc
		dropCount   int
	)
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	var (
		preview      *image.NRGBA
		dirty        = true
		message      string
		messageUntil time.Time
	)
	flash := func(msg string) {
		message = msg
		messageUntil = time.Now().Add(2 * time.Second)
		log.Print(msg)
	}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			if dirty {
				out, err := a.Transform.Flatten(a.First, a.Second)
				if err != nil {
					log.Printf("flatten: %v", err)
					continue
				}
				preview = out.NRGBA()
				dirty = false
			}
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := newPaintState(a.Transform, preview, width, height, a.Theme)
			st.message, st.messageUntil = message, messageUntil
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			v := fitViewport(a.Transform.Canvas(), width, height)
			if a.handlePointer(e.Direction, e.Button, v.toCanvas(e.X, e.Y)) {
				dirty = true
				w.Send(paint.Event{})
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			switch {
			case e.Code == key.CodeEscape || e.Rune == 'q' || e.Rune == 'Q':
				stopPaint()
				return
			case e.Code == key.CodeReturnEnter:
				msg, err := a.accept()
				if err != nil {
					log.Printf("accept: %v", err)
					flash("accept failed")
					w.Send(paint.Event{})
					continue
				}
				log.Print(msg)
				stopPaint()
				return
			case e.Code == key.CodeTab:
				a.Transform.Focus(1 - a.Transform.Focused())
				w.Send(paint.Event{})
			case e.Rune == 'c' && e.Modifiers&key.ModControl != 0:
				out, err := a.Transform.Flatten(a.First, a.Second)
				if err == nil {
					err = clipboard.WriteImage(out.Image())
				}
				if err != nil {
					log.Printf("copy: %v", err)
					continue
				}
				if a.onCopy != nil {
					a.onCopy()
				}
				flash("image copied to clipboard")
				w.Send(paint.Event{})
			}
		}
	}
}
