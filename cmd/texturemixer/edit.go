package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/example/texturemixer/internal/appstate"
	"github.com/example/texturemixer/internal/compose"
	"github.com/example/texturemixer/internal/editor"
	"github.com/example/texturemixer/internal/fill"
	"github.com/example/texturemixer/internal/overlay"
	"github.com/example/texturemixer/internal/pixbuf"
	"github.com/example/texturemixer/internal/project"
)

// commandList collects repeated -e flags.
type commandList []string

func (c *commandList) String() string { return strings.Join(*c, "; ") }

func (c *commandList) Set(v string) error {
	*c = append(*c, v)
	return nil
}

type editCmd struct {
	*root
	fs           *flag.FlagSet
	execs        commandList
	open         string
	projectName  string
	size         int
	colorSpec    string
	fillMode     fill.Mode
	fillSteps    int
	fillInterval time.Duration
	stdin        io.Reader

	doc  *editor.Document
	name string
}

func (c *editCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	c := &editCmd{root: r, fs: fs, stdin: os.Stdin}
	fs.Usage = usageFunc(c)
	var mode string
	fs.Var(&c.execs, "e", "execute an edit command and exit (may be specified multiple times)")
	fs.StringVar(&c.open, "open", "", "start from an image file")
	fs.StringVar(&c.projectName, "project", "", "start from a saved project")
	fs.IntVar(&c.size, "size", editor.DefaultSize, "size of a new blank image")
	fs.StringVar(&c.colorSpec, "color", "black", "initial paint colour")
	fs.StringVar(&mode, "fill-mode", r.config.Fill.Mode, "bucket region: whole or flood")
	fs.IntVar(&c.fillSteps, "fill-steps", r.config.Fill.Steps, "slices a bucket fill is painted in")
	fs.DurationVar(&c.fillInterval, "fill-interval", r.config.Fill.Interval, "delay between fill slices")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.open != "" && c.projectName != "" {
		return nil, usageErrorf(c, "-open and -project cannot be combined")
	}
	m, err := fill.ParseMode(mode)
	if err != nil {
		return nil, usageErrorf(c, "%v", err)
	}
	c.fillMode = m
	if c.fillSteps < 1 {
		return nil, usageErrorf(c, "-fill-steps must be at least 1")
	}
	return c, nil
}

func (c *editCmd) options() ([]editor.Option, error) {
	col, err := parseColor(c.colorSpec)
	if err != nil {
		return nil, err
	}
	return []editor.Option{
		editor.WithColor(col),
		editor.WithFillMode(c.fillMode),
		editor.WithFillSteps(c.fillSteps),
	}, nil
}

func (c *editCmd) start() error {
	opts, err := c.options()
	if err != nil {
		return err
	}
	switch {
	case c.projectName != "":
		return c.loadProject(c.projectName)
	case c.open != "":
		img, err := loadImage(c.open)
		if err != nil {
			return err
		}
		c.doc, err = editor.Open(img, opts...)
		return err
	default:
		c.doc, err = editor.New(c.size, c.size, opts...)
		return err
	}
}

func (c *editCmd) Run() error {
	if err := c.start(); err != nil {
		return err
	}
	if len(c.execs) > 0 {
		for _, line := range c.execs {
			done, err := c.executeLine(line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	fmt.Fprintln(c.stdout, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(c.stdin)
	for {
		fmt.Fprint(c.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := c.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(c.stderr, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

const editHelp = `commands:
  new [W [H]]               start a blank transparent image
  open FILE                 replace the image with FILE (undoable)
  tool paint|erase|eyedropper|bucket
  color [SPEC]              show or set the colour (name, #RRGGBB, #RRGGBBAA)
  paint X Y [X Y ...]       one stroke of the current tool through the points
  fill X Y                  bucket fill from X Y (Ctrl-C completes it at once)
  undo | redo
  compose PATTERN FILE...   compose the image with FILEs at the current size
  overlay FILE [EVENTS]     place FILE over the image, replaying EVENTS (canvas
                            pixels) or in a window
  save FILE [SCALE]         write a PNG
  copy                      copy the image to the clipboard
  project save|load NAME    store or restore the image with its history
  status
  exit`

// executeLine runs one edit command and reports whether the session should
// end.
func (c *editCmd) executeLine(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return false, nil
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprintln(c.stdout, editHelp)
	case "status":
		c.printStatus()
	case "new":
		return false, c.cmdNew(rest)
	case "open", "accept":
		if len(rest) != 1 {
			return false, fmt.Errorf("%s requires a file", cmd)
		}
		img, err := loadImage(rest[0])
		if err != nil {
			return false, err
		}
		return false, c.doc.Accept(img)
	case "tool":
		if len(rest) != 1 {
			fmt.Fprintln(c.stdout, c.doc.Tool())
			return false, nil
		}
		t, err := editor.ParseTool(rest[0])
		if err != nil {
			return false, err
		}
		c.doc.SetTool(t)
	case "color", "colour":
		if len(rest) == 0 {
			fmt.Fprintln(c.stdout, formatColor(c.doc.Color()))
			return false, nil
		}
		col, err := parseColor(strings.Join(rest, " "))
		if err != nil {
			return false, err
		}
		c.doc.SetColor(col)
	case "paint", "stroke":
		return false, c.cmdPaint(rest)
	case "fill", "bucket":
		pts, err := parsePoints(rest)
		if err != nil || len(pts) != 1 {
			return false, fmt.Errorf("fill requires X Y")
		}
		op, err := c.doc.Bucket(pts[0][0], pts[0][1])
		if err != nil {
			return false, err
		}
		return false, c.runFill(op)
	case "undo":
		return false, c.doc.Undo()
	case "redo":
		return false, c.doc.Redo()
	case "compose":
		return false, c.cmdCompose(rest)
	case "overlay":
		return false, c.cmdOverlay(rest)
	case "save":
		return false, c.cmdSave(rest)
	case "copy":
		return false, c.export(c.doc.Image().Image(), "", true)
	case "project":
		return false, c.cmdProject(rest)
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, nil
}

func (c *editCmd) printStatus() {
	name := c.name
	if name == "" {
		name = "(unsaved)"
	}
	fmt.Fprintf(c.stdout, "%s %dx%d tool=%s color=%s undo=%v redo=%v\n",
		name, c.doc.Width(), c.doc.Height(), c.doc.Tool(), formatColor(c.doc.Color()), c.doc.CanUndo(), c.doc.CanRedo())
}

func (c *editCmd) cmdNew(rest []string) error {
	w, h := editor.DefaultSize, editor.DefaultSize
	var err error
	if len(rest) > 0 {
		if w, err = strconv.Atoi(rest[0]); err != nil {
			return fmt.Errorf("invalid width %q", rest[0])
		}
		h = w
	}
	if len(rest) > 1 {
		if h, err = strconv.Atoi(rest[1]); err != nil {
			return fmt.Errorf("invalid height %q", rest[1])
		}
	}
	opts, err := c.options()
	if err != nil {
		return err
	}
	doc, err := editor.New(w, h, append(opts, editor.WithColor(c.doc.Color()))...)
	if err != nil {
		return err
	}
	doc.SetTool(c.doc.Tool())
	c.doc, c.name = doc, ""
	return nil
}

func parsePoints(args []string) ([][2]int, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, fmt.Errorf("expected X Y pairs")
	}
	pts := make([][2]int, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		x, err := strconv.Atoi(args[i])
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", args[i])
		}
		y, err := strconv.Atoi(args[i+1])
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", args[i+1])
		}
		pts = append(pts, [2]int{x, y})
	}
	return pts, nil
}

func (c *editCmd) cmdPaint(rest []string) error {
	pts, err := parsePoints(rest)
	if err != nil {
		return err
	}
	if err := c.doc.BeginStroke(pts[0][0], pts[0][1]); err != nil {
		return err
	}
	if op := c.doc.Pending(); op != nil {
		return c.runFill(op)
	}
	for _, p := range pts[1:] {
		if err := c.doc.ContinueStroke(p[0], p[1]); err != nil {
			return err
		}
	}
	return c.doc.EndStroke()
}

// runFill steps op on the configured interval. An interrupt finishes the
// fill immediately rather than abandoning it.
func (c *editCmd) runFill(op *fill.Op) error {
	if op == nil {
		return nil
	}
	if c.fillInterval <= 0 {
		for {
			done, err := op.Step()
			if done {
				return err
			}
		}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := op.Run(ctx, c.fillInterval)
	if errors.Is(err, fill.ErrCancelled) {
		fmt.Fprintln(c.stderr, "fill completed early")
		return nil
	}
	return err
}

func (c *editCmd) cmdCompose(rest []string) error {
	if len(rest) < 2 {
		return fmt.Errorf("compose requires PATTERN and at least one FILE")
	}
	sources := []*pixbuf.Buffer{c.doc.Image()}
	for _, path := range rest[1:] {
		b, err := loadImage(path)
		if err != nil {
			return err
		}
		sources = append(sources, b)
	}
	p, err := compose.ParsePattern(rest[0], len(sources))
	if err != nil {
		return err
	}
	out, err := compose.Compose(sources, c.doc.Width(), c.doc.Height(), p)
	if err != nil {
		return fmt.Errorf("compose %s: %w", p.Name(len(sources)), err)
	}
	return c.doc.Accept(out)
}

// overlayScale returns the integer factor that brings a w×h document up to
// at least the configured overlay canvas, so layer sizes and the minimum
// resize size are measured in the same pixels as the overlay command.
func (c *editCmd) overlayScale(w, h int) int {
	cfg := c.config.Overlay
	return max(1, (cfg.CanvasWidth+w-1)/w, (cfg.CanvasHeight+h-1)/h)
}

// cmdOverlay places FILE over the document on a canvas scaled up by
// overlayScale. EVENTS coordinates are canvas pixels. The flattened result is
// scaled back to the document size before it is accepted.
func (c *editCmd) cmdOverlay(rest []string) error {
	if len(rest) < 1 || len(rest) > 2 {
		return fmt.Errorf("overlay requires FILE and optionally an EVENTS file")
	}
	second, err := loadImage(rest[0])
	if err != nil {
		return err
	}
	w, h := c.doc.Width(), c.doc.Height()
	k := c.overlayScale(w, h)
	cfg := c.config.Overlay
	tr, err := overlay.New(w*k, h*k, overlay.WithMinSize(cfg.MinSize), overlay.WithHandleTolerance(cfg.HandleSize))
	if err != nil {
		return err
	}
	first := c.doc.Image()
	accept := func(b *pixbuf.Buffer) error {
		out, err := b.ResizeNearest(w, h)
		if err != nil {
			return err
		}
		return c.doc.Accept(out)
	}
	if len(rest) == 1 {
		var acceptErr error
		a := appstate.New(tr, first, second,
			appstate.WithTheme(c.activeTheme),
			appstate.WithOnCommit(func(b *pixbuf.Buffer) { acceptErr = accept(b) }),
		)
		runWindowFn(a)
		return acceptErr
	}
	f, err := os.Open(rest[1])
	if err != nil {
		return err
	}
	events, err := overlay.ParseEvents(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", rest[1], err)
	}
	tr.Replay(events)
	out, err := tr.Flatten(first, second)
	if err != nil {
		return err
	}
	return accept(out)
}

func (c *editCmd) cmdSave(rest []string) error {
	if len(rest) < 1 || len(rest) > 2 {
		return fmt.Errorf("save requires FILE and optionally SCALE")
	}
	scale := 1
	if len(rest) == 2 {
		s, err := strconv.Atoi(rest[1])
		if err != nil || s < 1 {
			return fmt.Errorf("invalid scale %q", rest[1])
		}
		scale = s
	}
	return c.export(scaleImage(c.doc.Image(), scale), rest[0], false)
}

func (c *editCmd) cmdProject(rest []string) error {
	if len(rest) != 2 {
		return fmt.Errorf("project requires save|load NAME")
	}
	switch strings.ToLower(rest[0]) {
	case "save":
		return c.saveProject(rest[1])
	case "load":
		return c.loadProject(rest[1])
	}
	return fmt.Errorf("unknown project action %q", rest[0])
}

func (c *editCmd) saveProject(name string) error {
	s, err := c.openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	img, rec := c.doc.Snapshot()
	if err := s.Save(project.Project{Name: name, Image: img, History: rec}); err != nil {
		return err
	}
	c.name = name
	fmt.Fprintf(c.stderr, "saved project %s\n", name)
	c.notifyProject(name)
	return nil
}

func (c *editCmd) loadProject(name string) error {
	s, err := c.openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	p, err := s.Load(name)
	if err != nil {
		return err
	}
	opts, err := c.options()
	if err != nil {
		return err
	}
	doc, err := editor.Restore(p.Image, p.History, opts...)
	if err != nil {
		return err
	}
	if c.doc != nil {
		doc.SetColor(c.doc.Color())
		doc.SetTool(c.doc.Tool())
	}
	c.doc, c.name = doc, name
	return nil
}
