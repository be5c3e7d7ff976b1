package project

import (
	"errors"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/texturemixer/internal/history"
	"github.com/example/texturemixer/internal/pixbuf"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "projects.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func shade(t *testing.T, v uint8) *pixbuf.Buffer {
	t.Helper()
	b, err := pixbuf.Filled(4, 3, color.NRGBA{R: v, G: 255 - v, B: 7, A: v})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openStore(t)
	s.now = func() time.Time { return time.Unix(1700000000, 0) }

	h, _ := history.New(shade(t, 0))
	h.Commit(shade(t, 40))
	h.Commit(shade(t, 80))
	h.Commit(shade(t, 120))
	if _, err := h.Undo(); err != nil {
		t.Fatal(err)
	}
	rec := h.Record()
	if err := s.Save(Project{Name: "grass", Image: h.Current(), History: rec}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("grass")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Image.Equal(h.Current()) {
		t.Error("image differs")
	}
	if len(got.History.Undo) != len(rec.Undo) || len(got.History.Redo) != len(rec.Redo) {
		t.Fatalf("stacks = %d/%d, want %d/%d", len(got.History.Undo), len(got.History.Redo), len(rec.Undo), len(rec.Redo))
	}
	for i := range rec.Undo {
		if !got.History.Undo[i].Equal(rec.Undo[i]) {
			t.Errorf("undo %d differs", i)
		}
	}
	for i := range rec.Redo {
		if !got.History.Redo[i].Equal(rec.Redo[i]) {
			t.Errorf("redo %d differs", i)
		}
	}
	if !got.Updated.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("updated = %v", got.Updated)
	}
}

func TestSaveReplaces(t *testing.T) {
	s := openStore(t)
	first := history.Record{Undo: []*pixbuf.Buffer{shade(t, 1), shade(t, 2)}, Redo: []*pixbuf.Buffer{shade(t, 3)}}
	if err := s.Save(Project{Name: "ore", Image: shade(t, 2), History: first}); err != nil {
		t.Fatal(err)
	}
	second := history.Record{Undo: []*pixbuf.Buffer{shade(t, 9)}}
	if err := s.Save(Project{Name: "ore", Image: shade(t, 9), History: second}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load("ore")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.History.Undo) != 1 || len(got.History.Redo) != 0 {
		t.Fatalf("stale snapshots: %d/%d", len(got.History.Undo), len(got.History.Redo))
	}
}

func TestListAndDelete(t *testing.T) {
	s := openStore(t)
	rec := history.Record{Undo: []*pixbuf.Buffer{shade(t, 1), shade(t, 2)}, Redo: []*pixbuf.Buffer{shade(t, 3)}}
	for _, name := range []string{"stone", "dirt"} {
		if err := s.Save(Project{Name: name, Image: shade(t, 2), History: rec}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "dirt" || list[1].Name != "stone" {
		t.Fatalf("List = %+v", list)
	}
	if list[0].Undo != 2 || list[0].Redo != 1 || list[0].Width != 4 || list[0].Height != 3 {
		t.Fatalf("info = %+v", list[0])
	}
	if err := s.Delete("dirt"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load("dirt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load deleted err = %v", err)
	}
	if err := s.Delete("dirt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete err = %v", err)
	}
}

func TestSaveValidates(t *testing.T) {
	s := openStore(t)
	if err := s.Save(Project{Name: " ", Image: shade(t, 1)}); err == nil {
		t.Error("empty name should fail")
	}
	if err := s.Save(Project{Name: "x", Image: shade(t, 1)}); !errors.Is(err, history.ErrEmptyRecord) {
		t.Errorf("empty history err = %v", err)
	}
	if list, _ := s.List(); len(list) != 0 {
		t.Errorf("failed saves left rows: %+v", list)
	}
}

func TestSnapshotCodec(t *testing.T) {
	b := shade(t, 33)
	data, err := encodeSnapshot(b)
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(b) {
		t.Fatal("codec changed pixels")
	}
	if _, err := decodeSnapshot([]byte("not zstd")); err == nil {
		t.Fatal("expected decode error")
	}
}
