package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF8000", color.RGBA{255, 128, 0, 255}, false},
		{"#11223344", color.RGBA{0x11, 0x22, 0x33, 0x44}, false},
		{"FF8000", color.RGBA{}, true},
		{"#FFF", color.RGBA{}, true},
		{"#GG0000", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && Hex(got) != tt.in {
			t.Errorf("Hex(%v) = %q, want %q", got, Hex(got), tt.in)
		}
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	th, err := Parse(strings.NewReader("Name: Mine\nhandlefill: #010203\n# comment\nUnknown: #000000\n"))
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "Mine" || th.HandleFill != (color.RGBA{1, 2, 3, 255}) {
		t.Fatalf("parsed %+v", th)
	}
	if th.CheckerDark != Default().CheckerDark {
		t.Errorf("CheckerDark = %v, want default", th.CheckerDark)
	}
	if _, err := Parse(strings.NewReader("BoxDash: red\n")); err == nil {
		t.Error("expected color error")
	}
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "moss.theme"), []byte("Name: Moss\nBackground: #00FF00\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir}

	for _, name := range Names() {
		if _, err := l.Load(name); err != nil {
			t.Errorf("embedded %s: %v", name, err)
		}
	}
	dark, err := l.Load("Dark")
	if err != nil || dark.Name != "Dark" {
		t.Fatalf("Load(Dark) = %+v, %v", dark, err)
	}
	moss, err := l.Load("moss")
	if err != nil || moss.Background != (color.RGBA{0, 255, 0, 255}) {
		t.Fatalf("Load(moss) = %+v, %v", moss, err)
	}
	byPath, err := l.Load(filepath.Join(dir, "moss.theme"))
	if err != nil || byPath.Name != "Moss" {
		t.Fatalf("Load(path) = %+v, %v", byPath, err)
	}
	if _, err := l.Load("nope"); err == nil {
		t.Error("expected not found")
	}
}
