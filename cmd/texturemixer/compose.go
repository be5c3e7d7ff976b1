package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/example/texturemixer/internal/compose"
	"github.com/example/texturemixer/internal/pixbuf"
)

type composeCmd struct {
	*root
	fs            *flag.FlagSet
	output        string
	size          int
	width         int
	height        int
	square        bool
	pattern       string
	scale         int
	toClipboard   bool
	fromClipboard bool
	sources       []string
}

func (c *composeCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseComposeCmd(args []string, r *root) (*composeCmd, error) {
	fs := flag.NewFlagSet("compose", flag.ExitOnError)
	c := &composeCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "o", "", "output PNG file")
	fs.IntVar(&c.size, "size", r.config.Compose.Size, "output width and height in pixels")
	fs.IntVar(&c.width, "width", 0, "output width (overrides -size)")
	fs.IntVar(&c.height, "height", 0, "output height (overrides -size)")
	fs.BoolVar(&c.square, "square", false, "force a square output using the width when -width and -height differ")
	fs.StringVar(&c.pattern, "pattern", "", "pattern name or slug (see the patterns command)")
	fs.IntVar(&c.scale, "scale", r.config.Compose.Scale, "integer upscale applied to the written image")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&c.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	fs.BoolVar(&c.fromClipboard, "from-clipboard", false, "use the clipboard image as the first source")
	fs.BoolVar(&c.fromClipboard, "from-clip", false, "use the clipboard image as the first source (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c.sources = fs.Args()
	if c.fromClipboard {
		c.sources = append([]string{clipboardSource}, c.sources...)
	}
	if len(c.sources) < 2 {
		return nil, usageErrorf(c, "compose needs at least two sources, got %d", len(c.sources))
	}
	if c.output == "" && !c.toClipboard {
		return nil, usageErrorf(c, "an output file (-o) or -to-clipboard is required")
	}
	if c.scale < 1 {
		return nil, usageErrorf(c, "-scale must be at least 1")
	}
	w, h, err := squareSize(c.size, c.width, c.height, c.square)
	if err != nil {
		return nil, usageErrorf(c, "%v", err)
	}
	c.width, c.height = w, h
	return c, nil
}

// squareSize reconciles -size, -width and -height. The compositor only
// accepts square output, so a mismatch is an error unless square is set, in
// which case the width wins.
func squareSize(size, width, height int, square bool) (int, int, error) {
	w, h := size, size
	if width > 0 {
		w = width
	}
	if height > 0 {
		h = height
	}
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("output size must be positive, got %dx%d", w, h)
	}
	if w != h {
		if !square {
			return 0, 0, fmt.Errorf("output must be square, got %dx%d (use -square to use the width)", w, h)
		}
		h = w
	}
	return w, h, nil
}

// resolvePattern picks the -pattern flag, then the configured pattern when
// it fits n sources, then the first catalog entry.
func (c *composeCmd) resolvePattern(n int) (compose.Pattern, error) {
	if c.pattern != "" {
		return compose.ParsePattern(c.pattern, n)
	}
	if p, err := compose.ParsePattern(c.config.Compose.Pattern, n); err == nil {
		if p.Kind.MultiSource() == (n >= 3) {
			return p, nil
		}
	}
	return compose.Default(n), nil
}

func (c *composeCmd) Run() error {
	sources := make([]*pixbuf.Buffer, 0, len(c.sources))
	for _, path := range c.sources {
		b, err := loadImage(path)
		if err != nil {
			return err
		}
		sources = append(sources, b)
	}
	p, err := c.resolvePattern(len(sources))
	if err != nil {
		return err
	}
	out, err := compose.Compose(sources, c.width, c.height, p)
	if err != nil {
		if errors.Is(err, compose.ErrInvalidConfiguration) {
			return fmt.Errorf("compose %s: %w", p.Name(len(sources)), err)
		}
		return err
	}
	fmt.Fprintf(c.stderr, "composed %d sources with %s at %dx%d\n", len(sources), p.Name(len(sources)), c.width, c.height)
	return c.export(scaleImage(out, c.scale), c.output, c.toClipboard)
}
