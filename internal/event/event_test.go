package event

import (
	"strings"
	"testing"
)

func TestQueueFIFO(t *testing.T) {
	var q Queue
	q.Push(FocusGained{})
	q.Push(Resized{Width: 640, Height: 480})
	q.Push(Closed{})

	if q.Len() != 3 {
		t.Fatalf("expected 3 events, got %d", q.Len())
	}
	ev, ok := q.Pop()
	if !ok || ev.Kind() != KindFocusGained {
		t.Fatalf("expected FocusGained first, got %v", ev)
	}
	rest := q.Drain()
	if len(rest) != 2 || rest[0].Kind() != KindResized || rest[1].Kind() != KindClosed {
		t.Fatalf("expected Resized, Closed; got %v", rest)
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestNewFilesDroppedCopies(t *testing.T) {
	paths := []string{"/tmp/a.txt"}
	ev := NewFilesDropped(paths, 1, 2)
	paths[0] = "/changed"
	if ev.Paths[0] != "/tmp/a.txt" {
		t.Fatalf("expected event to keep its own paths, got %q", ev.Paths[0])
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Closed{}, "Closed"},
		{KeyPressed{Code: KeyA, Control: true}, "KeyPressed A +ctrl"},
		{MouseWheelScrolled{Wheel: WheelHorizontal, Delta: -1, X: 3, Y: 4}, "MouseWheelScrolled Horizontal -1 at 3,4"},
		{TextEntered{Unicode: 'é'}, "U+00E9"},
	}
	for _, tt := range tests {
		if got := Format(tt.ev); !strings.Contains(got, tt.want) {
			t.Fatalf("Format(%#v): expected %q in %q", tt.ev, tt.want, got)
		}
	}
}

func TestKeyString(t *testing.T) {
	if KeyPause.String() != "Pause" {
		t.Fatalf("expected Pause, got %s", KeyPause.String())
	}
	if Key(-1).String() != "Unknown" {
		t.Fatalf("expected Unknown for out of range key")
	}
}
