package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/texturemixer/internal/appstate"
	"github.com/example/texturemixer/internal/overlay"
	"github.com/example/texturemixer/internal/pixbuf"
)

type overlayCmd struct {
	*root
	fs          *flag.FlagSet
	canvas      string
	width       int
	height      int
	output      string
	interactive bool
	events      string
	first       string
	second      string
	minSize     int
	handleSize  int
	toClipboard bool
}

func (c *overlayCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseOverlayCmd(args []string, r *root) (*overlayCmd, error) {
	fs := flag.NewFlagSet("overlay", flag.ExitOnError)
	c := &overlayCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	defCanvas := fmt.Sprintf("%dx%d", r.config.Overlay.CanvasWidth, r.config.Overlay.CanvasHeight)
	fs.StringVar(&c.canvas, "canvas", defCanvas, "canvas size as WIDTHxHEIGHT")
	fs.StringVar(&c.output, "o", "", "output PNG file")
	fs.BoolVar(&c.interactive, "interactive", false, "place the layers in a window")
	fs.StringVar(&c.events, "events", "", "replay pointer events from a file (begin X Y, update X Y, end)")
	fs.StringVar(&c.first, "first", "", "bottom layer image (or "+clipboardSource+")")
	fs.StringVar(&c.second, "second", "", "top layer image (or "+clipboardSource+")")
	fs.IntVar(&c.minSize, "min-size", r.config.Overlay.MinSize, "smallest layer size a resize may produce")
	fs.IntVar(&c.handleSize, "handle-size", r.config.Overlay.HandleSize, "corner handle tolerance in pixels")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&c.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	rest := fs.Args()
	if c.first == "" && len(rest) > 0 {
		c.first, rest = rest[0], rest[1:]
	}
	if c.second == "" && len(rest) > 0 {
		c.second, rest = rest[0], rest[1:]
	}
	if c.first == "" || c.second == "" || len(rest) != 0 {
		return nil, usageErrorf(c, "overlay needs exactly two images")
	}
	if c.interactive && c.events != "" {
		return nil, usageErrorf(c, "-interactive and -events cannot be combined")
	}
	if c.output == "" && !c.toClipboard {
		return nil, usageErrorf(c, "an output file (-o) or -to-clipboard is required")
	}
	if c.minSize < 1 {
		return nil, usageErrorf(c, "-min-size must be at least 1")
	}
	if c.handleSize < 1 {
		return nil, usageErrorf(c, "-handle-size must be at least 1")
	}
	w, h, err := parseCanvas(c.canvas)
	if err != nil {
		return nil, usageErrorf(c, "%v", err)
	}
	c.width, c.height = w, h
	return c, nil
}

func parseCanvas(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid canvas %q: want WIDTHxHEIGHT", s)
	}
	w, werr := strconv.Atoi(ws)
	h, herr := strconv.Atoi(hs)
	if werr != nil || herr != nil || w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("invalid canvas %q: want WIDTHxHEIGHT", s)
	}
	return w, h, nil
}

var runWindowFn = func(a *appstate.AppState) { a.Run() }

func (c *overlayCmd) Run() error {
	first, err := loadImage(c.first)
	if err != nil {
		return err
	}
	second, err := loadImage(c.second)
	if err != nil {
		return err
	}
	tr, err := overlay.New(c.width, c.height, overlay.WithMinSize(c.minSize), overlay.WithHandleTolerance(c.handleSize))
	if err != nil {
		return err
	}

	if c.interactive {
		return c.runInteractive(tr, first, second)
	}
	if c.events != "" {
		f, err := os.Open(c.events)
		if err != nil {
			return err
		}
		events, err := overlay.ParseEvents(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", c.events, err)
		}
		tr.Replay(events)
	}
	out, err := tr.Flatten(first, second)
	if err != nil {
		return err
	}
	l := tr.Layer(overlay.Second)
	fmt.Fprintf(c.stderr, "second layer %dx%d at (%d,%d)\n", l.Size.X, l.Size.Y, l.Center.X, l.Center.Y)
	return c.export(out.NRGBA(), c.output, c.toClipboard)
}

func (c *overlayCmd) runInteractive(tr *overlay.Transform, first, second *pixbuf.Buffer) error {
	var opts []appstate.Option
	opts = append(opts,
		appstate.WithTheme(c.activeTheme),
		appstate.WithOnCopy(func() { c.notifyCopy("overlay") }),
	)
	if c.output != "" {
		opts = append(opts, appstate.WithOutput(c.output))
	}
	a := appstate.New(tr, first, second, opts...)
	runWindowFn(a)
	result := a.Result()
	if result == nil {
		return errors.New("overlay closed without accepting")
	}
	if c.output != "" {
		saved := c.output
		if abs, err := filepath.Abs(saved); err == nil {
			saved = abs
		}
		c.notifyExport(saved, result.Image())
	}
	return c.export(result.NRGBA(), "", c.toClipboard)
}
