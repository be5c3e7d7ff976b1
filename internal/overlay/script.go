package overlay

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
)

// EventKind tags a recorded pointer event.
type EventKind int

const (
	EventBegin EventKind = iota
	EventUpdate
	EventEnd
)

// Event is one pointer step in canvas coordinates.
type Event struct {
	Kind EventKind
	At   image.Point
}

// ParseEvents reads a script of "begin X Y", "update X Y" and "end" lines.
// Blank lines and lines starting with # are skipped.
func ParseEvents(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		var ev Event
		switch strings.ToLower(fields[0]) {
		case "begin", "press":
			ev.Kind = EventBegin
		case "update", "move":
			ev.Kind = EventUpdate
		case "end", "release":
			events = append(events, Event{Kind: EventEnd})
			continue
		default:
			return nil, fmt.Errorf("line %d: unknown event %q", line, fields[0])
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: %s needs X and Y", line, fields[0])
		}
		x, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: x: %w", line, err)
		}
		y, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: y: %w", line, err)
		}
		ev.At = image.Pt(x, y)
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Replay feeds events through t in order.
func (t *Transform) Replay(events []Event) {
	for _, ev := range events {
		switch ev.Kind {
		case EventBegin:
			t.Begin(ev.At)
		case EventUpdate:
			t.Update(ev.At)
		case EventEnd:
			t.End()
		}
	}
}
