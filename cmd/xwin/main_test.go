package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/xwin/internal/config"
	"github.com/1broseidon/xwin/internal/event"
	"github.com/1broseidon/xwin/internal/logging"
	"github.com/1broseidon/xwin/internal/platform"
	"github.com/1broseidon/xwin/internal/x11"
)

// scriptWindow replays a fixed list of events and records setter calls.
type scriptWindow struct {
	events []event.Event
	calls  []string
}

func (s *scriptWindow) Handle() platform.WindowHandle { return 0x42 }
func (s *scriptWindow) PumpEvents() error { return nil }
func (s *scriptWindow) PollEvent() (event.Event, bool) {
	if len(s.events) == 0 {
		return nil, false
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, true
}
func (s *scriptWindow) WaitEvent() (event.Event, bool) { return s.PollEvent() }
func (s *scriptWindow) Position() (int, int, error) { return 0, 0, nil }
func (s *scriptWindow) SetPosition(x, y int) error { return nil }
func (s *scriptWindow) Size() (platform.Size, error) { return platform.Size{Width: 1, Height: 1}, nil }
func (s *scriptWindow) SetSize(platform.Size) error { return nil }
func (s *scriptWindow) SetMinimumSize(*platform.Size) error { return nil }
func (s *scriptWindow) SetMaximumSize(*platform.Size) error { return nil }
func (s *scriptWindow) SetTitle(string) error { return nil }
func (s *scriptWindow) SetIcon(int, int, []byte) error { return nil }
func (s *scriptWindow) SetVisible(bool) error { return nil }
func (s *scriptWindow) SetKeyRepeatEnabled(on bool) {
	s.record("keyrepeat", on)
}
func (s *scriptWindow) SetMouseCursorVisible(on bool) error {
	s.record("cursorvisible", on)
	return nil
}
func (s *scriptWindow) SetMouseCursorGrabbed(on bool) error {
	s.record("grab", on)
	return nil
}
func (s *scriptWindow) SetMouseCursor(shape platform.CursorShape) error {
	s.calls = append(s.calls, "cursor="+string(shape))
	return nil
}
func (s *scriptWindow) SetFileDroppingEnabled(on bool) error {
	s.record("drop", on)
	return nil
}
func (s *scriptWindow) RequestFocus() (bool, error) { return false, nil }
func (s *scriptWindow) HasFocus() bool { return false }
func (s *scriptWindow) Close() error { return nil }

func (s *scriptWindow) record(name string, on bool) {
	if on {
		s.calls = append(s.calls, name+"=on")
	} else {
		s.calls = append(s.calls, name+"=off")
	}
}

var _ platform.Window = (*scriptWindow)(nil)

func TestPrintEvents_StopsAtClosed(t *testing.T) {
	win := &scriptWindow{events: []event.Event{
		event.Resized{Width: 10, Height: 20},
		event.Closed{},
		event.FocusLost{},
	}}
	var out bytes.Buffer
	if err := printEvents(context.Background(), win, &out, 0); err != nil {
		t.Fatalf("printEvents: %v", err)
	}
	if got := out.String(); got != "Resized 10x20\nClosed\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestPrintEvents_Limit(t *testing.T) {
	win := &scriptWindow{events: []event.Event{event.FocusGained{}, event.FocusLost{}, event.Closed{}}}
	var out bytes.Buffer
	if err := printEvents(context.Background(), win, &out, 1); err != nil {
		t.Fatalf("printEvents: %v", err)
	}
	if got := out.String(); got != "FocusGained\n" {
		t.Fatalf("expected one line, got %q", got)
	}
}

func TestPrintEvents_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if err := printEvents(ctx, &scriptWindow{events: []event.Event{event.Closed{}}}, &out, 0); err != nil {
		t.Fatalf("printEvents: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected nothing printed, got %q", out.String())
	}
}

func TestApplySettings(t *testing.T) {
	win := &scriptWindow{}
	s := config.DefaultConfig().Window
	s.CursorGrabbed = true
	s.FileDropping = true
	if err := applySettings(win, s, "hand", logging.Discard()); err != nil {
		t.Fatalf("applySettings: %v", err)
	}
	want := "keyrepeat=on cursorvisible=on grab=on drop=on cursor=hand"
	if got := strings.Join(win.calls, " "); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestParseHandle(t *testing.T) {
	cases := []struct {
		in   string
		want platform.WindowHandle
		ok   bool
	}{
		{"0x3a00007", 0x3a00007, true},
		{"1234", 1234, true},
		{"0", 0, false},
		{"window", 0, false},
		{"0x1ffffffff", 0, false},
	}
	for _, tc := range cases {
		got, err := parseHandle(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("%q: expected %#x ok=%v, got %#x err=%v", tc.in, tc.want, tc.ok, got, err)
		}
	}
}

func TestRunConfig_ValidateAndExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tuning:\n  grab_retries: 7\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out, errOut bytes.Buffer
	if code := runConfig([]string{"validate", "--path", path}, &out, &errOut); code != 0 {
		t.Fatalf("expected validate to succeed, got %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "config: ok") {
		t.Fatalf("unexpected validate output %q", out.String())
	}

	out.Reset()
	if code := runConfig([]string{"explain", "--path", path, "tuning.grab_retries"}, &out, &errOut); code != 0 {
		t.Fatalf("expected explain to succeed, got %d: %s", code, errOut.String())
	}
	got := out.String()
	if !strings.Contains(got, "value: 7") || !strings.Contains(got, filepath.Base(path)+":2:") {
		t.Fatalf("unexpected explain output %q", got)
	}
}

func TestRunConfig_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("window:\n  width: -1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out, errOut bytes.Buffer
	if code := runConfig([]string{"validate", "--path", path}, &out, &errOut); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "window.width") {
		t.Fatalf("expected path in error, got %q", errOut.String())
	}
	if code := runConfig([]string{"explain", "--path", path}, &out, &errOut); code != 2 {
		t.Fatalf("expected usage exit for missing path, got %d", code)
	}
	if code := runConfig([]string{"frobnicate"}, &out, &errOut); code != 2 {
		t.Fatalf("expected exit 2 for unknown subcommand, got %d", code)
	}
}

func TestRunConfig_PrintDefaults(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := runConfig([]string{"print", "--defaults"}, &out, &errOut); code != 0 {
		t.Fatalf("expected print to succeed, got %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "grab_retry_delay: 50ms") {
		t.Fatalf("expected duration rendered as text, got %q", out.String())
	}
}

func TestPrintCapabilities(t *testing.T) {
	var out bytes.Buffer
	printCapabilities(&out, x11.Capabilities{EWMH: true, WMName: "i3", RandR: true})
	got := out.String()
	for _, want := range []string{"ewmh: true", "window manager: i3", "absolute positions: true", "xinput: false"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestPrintMonitors(t *testing.T) {
	var out bytes.Buffer
	printMonitors(&out, []x11.Monitor{{ID: 1, Name: "HDMI-1", X: 1920, Width: 2560, Height: 1440}})
	if got := out.String(); got != "monitor 1: HDMI-1 2560x1440+1920+0\n" {
		t.Fatalf("unexpected output %q", got)
	}
}
