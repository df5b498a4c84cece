package x11

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

func TestMatches(t *testing.T) {
	const win = xproto.Window(42)
	tests := []struct {
		name string
		ev   xgb.Event
		want bool
	}{
		{"key press", xproto.KeyPressEvent{Event: win}, true},
		{"key press other", xproto.KeyPressEvent{Event: 7}, false},
		{"configure", xproto.ConfigureNotifyEvent{Window: win}, true},
		{"selection", xproto.SelectionNotifyEvent{Requestor: win}, true},
		{"client message other", xproto.ClientMessageEvent{Window: 7}, false},
		{"mapping broadcast", xproto.MappingNotifyEvent{Request: xproto.MappingKeyboard}, true},
		{"unknown", xproto.GraphicsExposureEvent{}, false},
	}
	for _, tt := range tests {
		if got := Matches(tt.ev, win); got != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestTakeEvent_DropsUnwatched(t *testing.T) {
	xu := &xgbutil.XUtil{EvqueueLck: &sync.RWMutex{}}
	c := &Connection{XUtil: xu, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	c.Watch(42)
	c.Watch(43)

	xevent.Enqueue(xu, xproto.KeyPressEvent{Event: 7}, nil)
	xevent.Enqueue(xu, xproto.GraphicsExposureEvent{}, nil)
	xevent.Enqueue(xu, xproto.KeyPressEvent{Event: 42, Detail: 1}, nil)
	xevent.Enqueue(xu, xproto.ConfigureNotifyEvent{Window: 43}, nil)
	xevent.Enqueue(xu, xproto.MappingNotifyEvent{Request: xproto.MappingKeyboard}, nil)
	xevent.Enqueue(xu, xproto.KeyPressEvent{Event: 42, Detail: 2}, nil)

	ev, ok := c.takeEvent(42)
	if !ok || ev.(xproto.KeyPressEvent).Detail != 1 {
		t.Fatalf("expected first key press for 42, got %v, %v", ev, ok)
	}
	if n := len(xevent.Peek(xu)); n != 3 {
		t.Fatalf("expected 3 events left after dropping unwatched ones, got %d", n)
	}

	c.Unwatch(43)
	if _, ok := c.takeEvent(44); ok {
		t.Fatalf("expected nothing for 44")
	}
	left := xevent.Peek(xu)
	if len(left) != 2 {
		t.Fatalf("expected the broadcast and 42's key press left, got %d", len(left))
	}
	if _, ok := left[0].Event.(xproto.MappingNotifyEvent); !ok {
		t.Fatalf("expected order kept, got %T first", left[0].Event)
	}
}
