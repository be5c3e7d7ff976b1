package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/textures
projects_db = "/tmp/p.db"

[compose]
size = 64
pattern = checkerboard-reverse
scale = 4

[overlay]
canvas_width = 300
canvas_height = 200
min_size = 20

[fill]
steps = 5
interval = 50ms
mode = flood

[notify]
export = true
copy = false
project = true

[theme.my_custom_theme]
Background = #111111
BoxDash = #FF000080
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" || cfg.SaveDir != "/tmp/textures" || cfg.ProjectsDB != "/tmp/p.db" {
		t.Errorf("root = %q %q %q", cfg.Theme, cfg.SaveDir, cfg.ProjectsDB)
	}
	if cfg.Compose != (Compose{Size: 64, Pattern: "checkerboard-reverse", Scale: 4}) {
		t.Errorf("compose = %+v", cfg.Compose)
	}
	if cfg.Overlay != (Overlay{CanvasWidth: 300, CanvasHeight: 200, MinSize: 20, HandleSize: 8}) {
		t.Errorf("overlay = %+v", cfg.Overlay)
	}
	if cfg.Fill != (Fill{Steps: 5, Interval: 50 * time.Millisecond, Mode: "flood"}) {
		t.Errorf("fill = %+v", cfg.Fill)
	}
	if cfg.Notify != (Notify{Export: true, Project: true}) {
		t.Errorf("notify = %+v", cfg.Notify)
	}

	theme, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if theme.Background.R != 0x11 || theme.BoxDash.A != 0x80 {
		t.Errorf("Unexpected theme colors: %+v", theme)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"[compose]\nsize = 0\n",
		"[compose]\nscale = big\n",
		"[fill]\ninterval = soon\n",
		"[notify]\nexport = perhaps\n",
		"[theme.x]\nBackground = 111111\n",
	}
	for _, in := range tests {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("Parse(%q) expected error", in)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/textures

[compose]
size = 32
pattern = diamond

[fill]
interval = 1s

[notify]
export = true
copy = true

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	generated := cfg.String()

	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v\n%s", err, generated)
	}

	if cfg.Theme != cfg2.Theme || cfg.SaveDir != cfg2.SaveDir {
		t.Errorf("root mismatch: %q/%q vs %q/%q", cfg.Theme, cfg.SaveDir, cfg2.Theme, cfg2.SaveDir)
	}
	if cfg.Compose != cfg2.Compose || cfg.Overlay != cfg2.Overlay || cfg.Fill != cfg2.Fill {
		t.Errorf("section mismatch:\n%+v %+v %+v\n%+v %+v %+v", cfg.Compose, cfg.Overlay, cfg.Fill, cfg2.Compose, cfg2.Overlay, cfg2.Fill)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("Theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestLoaderPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.rc")
	if err := os.WriteFile(path, []byte("theme = dark\n[compose]\nsize = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", dir)

	t.Setenv(ThemeEnv, "")
	cfg, err := NewLoader("v1.0.0", path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "dark" || cfg.Compose.Size != 8 {
		t.Fatalf("cfg = %+v", cfg)
	}

	t.Setenv(ThemeEnv, "default")
	cfg, err = NewLoader("v1.0.0", path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "default" {
		t.Fatalf("env should win, theme = %q", cfg.Theme)
	}

	cfg, err = NewLoader("v1.0.0", filepath.Join(dir, "missing.rc")).Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Compose.Size != New().Compose.Size {
		t.Fatalf("defaults expected, got %+v", cfg.Compose)
	}
}

func TestSaveWritesLoadableFile(t *testing.T) {
	cfg := New()
	cfg.Compose.Pattern = "border"
	path := filepath.Join(t.TempDir(), "sub", "config.rc")
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := Parse(f)
	if err != nil {
		t.Fatal(err)
	}
	if got.Compose.Pattern != "border" {
		t.Fatalf("pattern = %q", got.Compose.Pattern)
	}
}
