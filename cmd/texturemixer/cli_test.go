package main

import (
	"bytes"
	"errors"
	"flag"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/texturemixer/internal/config"
	"github.com/example/texturemixer/internal/notify"
	"github.com/example/texturemixer/internal/pixbuf"
	"github.com/example/texturemixer/internal/theme"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
)

func newTestRoot(t *testing.T) (*root, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	r := &root{
		fs:          flag.NewFlagSet("texturemixer", flag.ContinueOnError),
		program:     "texturemixer",
		notifier:    notify.New(notify.DefaultPreferences()),
		config:      config.New(),
		projectsDB:  filepath.Join(t.TempDir(), "projects.db"),
		activeTheme: theme.Default(),
		stdout:      &out,
		stderr:      &errOut,
	}
	return r, &out
}

func writeSolid(t *testing.T, dir, name string, c color.NRGBA) string {
	t.Helper()
	b, err := pixbuf.Filled(4, 4, c)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if _, err := writePNG(path, b.NRGBA()); err != nil {
		t.Fatal(err)
	}
	return path
}

func readPNG(t *testing.T, path string) *pixbuf.Buffer {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	b, err := pixbuf.FromImage(img)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func pixel(t *testing.T, b *pixbuf.Buffer, x, y int) color.NRGBA {
	t.Helper()
	c, err := b.At(x, y)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestParseComposeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"one source", []string{"-o", "x.png", "a.png"}, "at least two sources"},
		{"no output", []string{"a.png", "b.png"}, "-o"},
		{"not square", []string{"-width", "10", "-height", "12", "-o", "x.png", "a.png", "b.png"}, "must be square"},
		{"bad scale", []string{"-scale", "0", "-o", "x.png", "a.png", "b.png"}, "-scale"},
		{"zero size", []string{"-size", "0", "-o", "x.png", "a.png", "b.png"}, "positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRoot(t)
			_, err := parseComposeCmd(tt.args, r)
			var uerr *UsageError
			if !errors.As(err, &uerr) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error to mention %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSquareSize(t *testing.T) {
	tests := []struct {
		size, w, h int
		square     bool
		wantW      int
		wantH      int
		wantErr    bool
	}{
		{16, 0, 0, false, 16, 16, false},
		{16, 32, 0, false, 0, 0, true},
		{16, 32, 0, true, 32, 32, false},
		{16, 24, 24, false, 24, 24, false},
		{16, 10, 12, true, 10, 10, false},
	}
	for _, tt := range tests {
		w, h, err := squareSize(tt.size, tt.w, tt.h, tt.square)
		if (err != nil) != tt.wantErr || w != tt.wantW || h != tt.wantH {
			t.Errorf("squareSize(%d,%d,%d,%v) = %d,%d,%v", tt.size, tt.w, tt.h, tt.square, w, h, err)
		}
	}
}

func TestComposeRun(t *testing.T) {
	dir := t.TempDir()
	a := writeSolid(t, dir, "a.png", red)
	b := writeSolid(t, dir, "b.png", blue)
	out := filepath.Join(dir, "out.png")

	r, _ := newTestRoot(t)
	cmd, err := parseComposeCmd([]string{"-size", "8", "-pattern", "Horizontal Split", "-scale", "2", "-o", out, a, b}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	got := readPNG(t, out)
	if got.Width() != 16 || got.Height() != 16 {
		t.Fatalf("size = %dx%d", got.Width(), got.Height())
	}
	if c := pixel(t, got, 0, 0); c != red {
		t.Errorf("left = %v", c)
	}
	if c := pixel(t, got, 15, 0); c != blue {
		t.Errorf("right = %v", c)
	}
}

func TestComposeClipboard(t *testing.T) {
	dir := t.TempDir()
	b := writeSolid(t, dir, "b.png", blue)

	origRead, origWrite := readClipboardFn, writeClipboardFn
	t.Cleanup(func() { readClipboardFn, writeClipboardFn = origRead, origWrite })
	readClipboardFn = func() (*pixbuf.Buffer, error) { return pixbuf.Filled(2, 2, red) }
	var copied image.Image
	writeClipboardFn = func(img image.Image) error {
		copied = img
		return nil
	}

	r, _ := newTestRoot(t)
	cmd, err := parseComposeCmd([]string{"-size", "4", "-pattern", "horizontal-split-reverse", "-from-clipboard", "-to-clipboard", b}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	if copied == nil {
		t.Fatal("nothing copied")
	}
	got, _ := pixbuf.FromImage(copied)
	if c := pixel(t, got, 0, 0); c != blue {
		t.Errorf("reversed left = %v, want second source", c)
	}
}

func TestComposeMultiSourceDefaultsPattern(t *testing.T) {
	dir := t.TempDir()
	srcs := []string{
		writeSolid(t, dir, "a.png", red),
		writeSolid(t, dir, "b.png", green),
		writeSolid(t, dir, "c.png", blue),
	}
	out := filepath.Join(dir, "out.png")
	r, _ := newTestRoot(t)
	cmd, err := parseComposeCmd(append([]string{"-size", "9", "-o", out}, srcs...), r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	got := readPNG(t, out)
	for x, want := range map[int]color.NRGBA{0: red, 4: green, 8: blue} {
		if c := pixel(t, got, x, 0); c != want {
			t.Errorf("x=%d: %v, want %v", x, c, want)
		}
	}
}

func TestParseOverlayErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"one image", []string{"-o", "x.png", "a.png"}, "exactly two images"},
		{"both modes", []string{"-interactive", "-events", "e.txt", "-o", "x.png", "a.png", "b.png"}, "cannot be combined"},
		{"bad canvas", []string{"-canvas", "12by4", "-o", "x.png", "a.png", "b.png"}, "WIDTHxHEIGHT"},
		{"no output", []string{"a.png", "b.png"}, "-o"},
		{"zero min size", []string{"-min-size", "0", "-o", "x.png", "a.png", "b.png"}, "-min-size"},
		{"negative min size", []string{"-min-size", "-5", "-o", "x.png", "a.png", "b.png"}, "-min-size"},
		{"zero handle size", []string{"-handle-size", "0", "-o", "x.png", "a.png", "b.png"}, "-handle-size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRoot(t)
			_, err := parseOverlayCmd(tt.args, r)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestOverlayEvents(t *testing.T) {
	dir := t.TempDir()
	first := writeSolid(t, dir, "first.png", red)
	second := writeSolid(t, dir, "second.png", blue)
	events := filepath.Join(dir, "events.txt")
	if err := os.WriteFile(events, []byte("# drag right\nbegin 50 50\nupdate 60 50\nend\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.png")

	r, _ := newTestRoot(t)
	cmd, err := parseOverlayCmd([]string{"-canvas", "100x100", "-events", events, "-o", out, first, second}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	got := readPNG(t, out)
	for _, tt := range []struct {
		x    int
		want color.NRGBA
	}{{30, red}, {35, blue}, {84, blue}, {85, red}} {
		if c := pixel(t, got, tt.x, 50); c != tt.want {
			t.Errorf("x=%d: %v, want %v", tt.x, c, tt.want)
		}
	}
}

func TestPatternsCmd(t *testing.T) {
	r, out := newTestRoot(t)
	cmd, err := parsePatternsCmd([]string{"-slugs"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"* Horizontal Split", "Horizontal Split (Reverse)", "horizontal-split-reverse", "Diamond"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	r, out = newTestRoot(t)
	cmd, err = parsePatternsCmd([]string{"-n", "3"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Split 3 Horizontal") {
		t.Errorf("output missing N-source name:\n%s", out.String())
	}
	if _, err := parsePatternsCmd([]string{"-n", "1"}, r); err == nil {
		t.Error("expected error for -n 1")
	}
}

func TestUsageErrorRendersHelp(t *testing.T) {
	r, _ := newTestRoot(t)
	r.fs.String("theme", "", "theme name")
	msg := (&UsageError{of: r}).Error()
	for _, want := range []string{"Usage: texturemixer", "compose", "-theme"} {
		if !strings.Contains(msg, want) {
			t.Errorf("help missing %q:\n%s", want, msg)
		}
	}
	if err := r.Run(nil); err == nil {
		t.Error("expected usage error without a command")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"red", red, false},
		{" Blue ", blue, false},
		{"transparent", color.NRGBA{}, false},
		{"#00FF00", green, false},
		{"#11223380", color.NRGBA{0x11, 0x22, 0x33, 0x80}, false},
		{"#123", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
		{"nope", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := parseColor(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseColor(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestConfigAndVersion(t *testing.T) {
	r, out := newTestRoot(t)
	cmd, err := parseConfigCmd([]string{"print"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[compose]", "pattern = horizontal-split", "[fill]", "interval = 20ms"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("config print missing %q:\n%s", want, out.String())
		}
	}

	path := filepath.Join(t.TempDir(), "saved.rc")
	cmd, err = parseConfigCmd([]string{"-o", path, "save"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	out.Reset()
	v, err := parseVersionCmd(nil, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "texturemixer version ") {
		t.Errorf("version = %q", out.String())
	}
}

func TestProjectExportAndDelete(t *testing.T) {
	dir := t.TempDir()
	r, _ := newTestRoot(t)
	edit, err := parseEditCmd([]string{"-size", "3", "-color", "blue", "-e", "paint 1 1", "-e", "project save tile"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := edit.Run(); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "tile.png")
	cmd, err := parseProjectCmd([]string{"export", "tile", out}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	got := readPNG(t, out)
	if c := pixel(t, got, 1, 1); c != blue {
		t.Errorf("exported pixel = %v", c)
	}

	cmd, err = parseProjectCmd([]string{"delete", "tile"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	cmd, err = parseProjectCmd([]string{"export", "tile", out}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err == nil {
		t.Error("expected export of a deleted project to fail")
	}
}
