package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/texturemixer/internal/overlay"
	"github.com/example/texturemixer/internal/render"
	"github.com/example/texturemixer/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 28, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// paintState is an immutable snapshot handed to the paint goroutine.
type paintState struct {
	width, height int
	view          viewport
	preview       *image.NRGBA
	box           image.Rectangle
	handles       [4]image.Rectangle
	status        string
	message       string
	messageUntil  time.Time
	theme         *theme.Theme
}

func newPaintState(tr *overlay.Transform, preview *image.NRGBA, width, height int, th *theme.Theme) paintState {
	v := fitViewport(tr.Canvas(), width, height)
	l := tr.Layer(tr.Focused())
	st := paintState{
		width:   width,
		height:  height,
		view:    v,
		preview: preview,
		box:     v.toWindow(l.Bounds()),
		status:  statusText(tr),
		theme:   th,
	}
	tol := tr.HandleTolerance()
	for i, h := range l.Handles(2 * tol) {
		st.handles[i] = v.toWindow(h)
	}
	return st
}

func statusText(tr *overlay.Transform) string {
	l := tr.Layer(tr.Focused())
	mode := tr.Mode().String()
	if tr.Mode() == overlay.Resizing {
		mode += " " + tr.Corner().String()
	}
	return fmt.Sprintf("%s layer  %dx%d at (%d,%d)  %s   Enter accept  Tab switch  Esc quit",
		tr.Focused(), l.Size.X, l.Size.Y, l.Center.X, l.Center.Y, mode)
}

// renderScene draws st into dst. It returns false when ctx was cancelled
// part way through.
func renderScene(ctx context.Context, dst *image.RGBA, st paintState) bool {
	th := st.theme
	draw.Draw(dst, dst.Bounds(), image.NewUniform(th.Background), image.Point{}, draw.Src)

	canvas := st.view.toWindow(st.preview.Bounds())
	render.DrawShadow(dst, canvas, th.Shadow, render.DefaultShadowOptions())
	drawCheckerboard(dst, canvas, 8, th.CheckerLight, th.CheckerDark)
	if ctx.Err() != nil {
		return false
	}
	xdraw.NearestNeighbor.Scale(dst, canvas, st.preview, st.preview.Bounds(), draw.Over, nil)
	if ctx.Err() != nil {
		return false
	}

	drawRect(dst, st.box.Inset(-1), th.BoxOutline)
	drawDashedRect(dst, st.box, 4, th.BoxOutline, th.BoxDash)
	for _, h := range st.handles {
		draw.Draw(dst, h, image.NewUniform(th.HandleFill), image.Point{}, draw.Src)
		drawRect(dst, h, th.HandleBorder)
	}
	if ctx.Err() != nil {
		return false
	}

	bar := image.Rect(0, st.height-statusHeight, st.width, st.height)
	draw.Draw(dst, bar, image.NewUniform(th.StatusBackground), image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.StatusText), Face: basicfont.Face7x13}
	d.Dot = fixed.P(4, bar.Max.Y-5)
	d.DrawString(st.status)

	if st.message != "" && time.Now().Before(st.messageUntil) {
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: messageFace}
		wmsg := d.MeasureString(st.message).Ceil()
		ascent := messageFace.Metrics().Ascent.Ceil()
		descent := messageFace.Metrics().Descent.Ceil()
		px := (st.width - wmsg) / 2
		py := (st.height-ascent-descent)/2 + ascent
		rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
		draw.Draw(dst, rect, image.NewUniform(th.StatusBackground), image.Point{}, draw.Over)
		drawRect(dst, rect, th.BoxOutline)
		d.Dot = fixed.P(px, py)
		d.DrawString(st.message)
	}
	return ctx.Err() == nil
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	if !renderScene(ctx, b.RGBA(), st) {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// drawCheckerboard fills rect of dst with squares of size pixels.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.RGBA) {
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x-rect.Min.X)/size+(y-rect.Min.Y)/size)%2 == 0 {
				dst.SetRGBA(x, y, light)
			} else {
				dst.SetRGBA(x, y, dark)
			}
		}
	}
}

// drawRect outlines the inside edge of rect.
func drawRect(dst *image.RGBA, rect image.Rectangle, col color.RGBA) {
	u := image.NewUniform(col)
	for _, edge := range []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+1),
		image.Rect(rect.Min.X, rect.Max.Y-1, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+1, rect.Max.Y),
		image.Rect(rect.Max.X-1, rect.Min.Y, rect.Max.X, rect.Max.Y),
	} {
		draw.Draw(dst, edge.Intersect(dst.Bounds()), u, image.Point{}, draw.Src)
	}
}

// drawDashedRect outlines rect with alternating dash-long runs of c1 and c2,
// walking the perimeter clockwise so the pattern is continuous at corners.
func drawDashedRect(dst *image.RGBA, rect image.Rectangle, dash int, c1, c2 color.RGBA) {
	if rect.Dx() < 1 || rect.Dy() < 1 {
		return
	}
	var pts []image.Point
	for x := rect.Min.X; x < rect.Max.X; x++ {
		pts = append(pts, image.Pt(x, rect.Min.Y))
	}
	for y := rect.Min.Y + 1; y < rect.Max.Y; y++ {
		pts = append(pts, image.Pt(rect.Max.X-1, y))
	}
	for x := rect.Max.X - 2; x >= rect.Min.X; x-- {
		pts = append(pts, image.Pt(x, rect.Max.Y-1))
	}
	for y := rect.Max.Y - 2; y > rect.Min.Y; y-- {
		pts = append(pts, image.Pt(rect.Min.X, y))
	}
	b := dst.Bounds()
	for i, p := range pts {
		if !p.In(b) {
			continue
		}
		if (i/dash)%2 == 0 {
			dst.SetRGBA(p.X, p.Y, c1)
		} else {
			dst.SetRGBA(p.X, p.Y, c2)
		}
	}
}
