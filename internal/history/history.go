// Package history keeps linear undo/redo snapshots of a working image.
package history

import (
	"errors"
	"fmt"

	"github.com/example/texturemixer/internal/pixbuf"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrEmptyRecord reports a record without the initial state.
	ErrEmptyRecord = errors.New("history record has no states")
)

// Stack holds committed snapshots. The bottom undo entry is the initial
// image and is never popped.
type Stack struct {
	undo []*pixbuf.Buffer
	redo []*pixbuf.Buffer
}

// New starts a history whose initial state is a copy of initial.
func New(initial *pixbuf.Buffer) (*Stack, error) {
	if initial == nil {
		return nil, ErrEmptyRecord
	}
	return &Stack{undo: []*pixbuf.Buffer{initial.Copy()}}, nil
}

// Commit pushes a copy of buf and discards any redo states. A nil buf is
// ignored.
func (s *Stack) Commit(buf *pixbuf.Buffer) {
	if buf == nil {
		return
	}
	s.undo = append(s.undo, buf.Copy())
	s.redo = nil
}

// Undo moves the top state to the redo stack and returns the new current
// state.
func (s *Stack) Undo() (*pixbuf.Buffer, error) {
	if len(s.undo) <= 1 {
		return nil, ErrNothingToUndo
	}
	top := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, top)
	return s.Current(), nil
}

// Redo reapplies the most recently undone state and returns it.
func (s *Stack) Redo() (*pixbuf.Buffer, error) {
	if len(s.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	top := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, top)
	return s.Current(), nil
}

// Current returns a copy of the top undo state.
func (s *Stack) Current() *pixbuf.Buffer {
	return s.undo[len(s.undo)-1].Copy()
}

func (s *Stack) CanUndo() bool { return len(s.undo) > 1 }
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// Depth returns the number of undo and redo entries.
func (s *Stack) Depth() (undo, redo int) { return len(s.undo), len(s.redo) }

// Record is the serializable form of a Stack. Undo runs bottom to top and
// Redo in push order, so its last element is the next state Redo returns.
type Record struct {
	Undo []*pixbuf.Buffer
	Redo []*pixbuf.Buffer
}

// Record returns copies of both sequences.
func (s *Stack) Record() Record {
	return Record{Undo: copyAll(s.undo), Redo: copyAll(s.redo)}
}

// Restore rebuilds a Stack from rec.
func Restore(rec Record) (*Stack, error) {
	if len(rec.Undo) == 0 {
		return nil, ErrEmptyRecord
	}
	for i, b := range rec.Undo {
		if b == nil {
			return nil, fmt.Errorf("undo entry %d: %w", i, ErrEmptyRecord)
		}
	}
	for i, b := range rec.Redo {
		if b == nil {
			return nil, fmt.Errorf("redo entry %d: %w", i, ErrEmptyRecord)
		}
	}
	return &Stack{undo: copyAll(rec.Undo), redo: copyAll(rec.Redo)}, nil
}

func copyAll(in []*pixbuf.Buffer) []*pixbuf.Buffer {
	if len(in) == 0 {
		return nil
	}
	out := make([]*pixbuf.Buffer, len(in))
	for i, b := range in {
		out[i] = b.Copy()
	}
	return out
}
