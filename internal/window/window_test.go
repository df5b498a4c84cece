package window

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"

	"github.com/1broseidon/xwin/internal/event"
	"github.com/1broseidon/xwin/internal/focus"
	"github.com/1broseidon/xwin/internal/fullscreen"
	"github.com/1broseidon/xwin/internal/x11"
	"github.com/1broseidon/xwin/internal/x11/x11test"
)

const (
	kcE         xproto.Keycode = 26
	kcA         xproto.Keycode = 38
	kcDeadAcute xproto.Keycode = 48
	kcSpace     xproto.Keycode = 65
)

var testMode = fullscreen.VideoMode{Width: 640, Height: 480, BitsPerPixel: 24}

func newFake() *x11test.Fake {
	const per = 2
	f := x11test.New()
	m := &x11.KeyboardMapping{MinKeycode: 8, MaxKeycode: 70, KeysymsPerKeycode: per}
	m.Keysyms = make([]xproto.Keysym, (70-8+1)*per)
	set := func(kc xproto.Keycode, syms ...xproto.Keysym) {
		copy(m.Keysyms[int(kc-8)*per:], syms)
	}
	set(kcE, 'e', 'E')
	set(kcA, 'a', 'A')
	set(kcDeadAcute, 0xfe51, 0xfe57)
	set(kcSpace, ' ', ' ')
	f.Keymap = m
	f.AutoVisible = true
	return f
}

func newEnv(t *testing.T, f *x11test.Fake) *Env {
	t.Helper()
	opts := DefaultOptions()
	opts.Retry = RetryPolicy{Attempts: 3}
	opts.MapWaitLimit = 5
	env, err := NewEnv(f, slog.New(slog.NewTextHandler(io.Discard, nil)), opts)
	if err != nil {
		t.Fatalf("NewEnv: %v", err)
	}
	return env
}

func openWindow(t *testing.T, env *Env, cfg Config) *Window {
	t.Helper()
	if cfg.Mode == (fullscreen.VideoMode{}) {
		cfg.Mode = testMode
	}
	w, err := Open(env, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestOpen_CreationSequence(t *testing.T) {
	f := newFake()
	f.Caps.EWMH = true
	env := newEnv(t, f)
	w := openWindow(t, env, Config{Title: "demo", Style: StyleDefault})

	s := f.Win(w.Handle())
	if s == nil {
		t.Fatalf("expected server window")
	}
	if s.Rect.X != 640 || s.Rect.Y != 300 {
		t.Fatalf("expected centered at 640,300, got %d,%d", s.Rect.X, s.Rect.Y)
	}
	if s.Override {
		t.Fatalf("expected managed window")
	}
	if s.EventMask != eventMask {
		t.Fatalf("expected event mask %#x, got %#x", eventMask, s.EventMask)
	}
	if len(s.Protocols) != 2 || s.Protocols[0] != "WM_DELETE_WINDOW" || s.Protocols[1] != "_NET_WM_PING" {
		t.Fatalf("unexpected protocols %v", s.Protocols)
	}
	if s.Pid == 0 || s.Host == "" {
		t.Fatalf("expected client identity, got pid=%d host=%q", s.Pid, s.Host)
	}
	if s.Hints == nil || s.Hints.Flags&icccm.HintState == 0 || s.Hints.InitialState != icccm.StateNormal {
		t.Fatalf("expected normal initial state, got %+v", s.Hints)
	}
	if s.Motif == nil || s.Motif.Decoration&motif.DecorationTitle == 0 || s.Motif.Function&motif.FunctionClose == 0 {
		t.Fatalf("expected titlebar and close hints, got %+v", s.Motif)
	}
	if s.NormalHints != nil {
		t.Fatalf("expected no size hints on a resizable window, got %+v", s.NormalHints)
	}
	if s.Class != "demo" || s.Title != "demo" || s.Instance == "" {
		t.Fatalf("unexpected class/title %q %q %q", s.Instance, s.Class, s.Title)
	}
	if len(s.Types) != 1 || s.Types[0] != "_NET_WM_WINDOW_TYPE_NORMAL" {
		t.Fatalf("unexpected window type %v", s.Types)
	}
	if s.MapState != xproto.MapStateViewable || !w.mapped {
		t.Fatalf("expected mapped window")
	}
	if f.Property(w.Handle(), "XdndAware") != nil {
		t.Fatalf("expected file dropping disabled")
	}
	if !env.Focus.Registered(w.Handle()) {
		t.Fatalf("expected window registered")
	}
	if len(f.SentOfType("_NET_ACTIVE_WINDOW")) == 0 {
		t.Fatalf("expected focus grab through _NET_ACTIVE_WINDOW")
	}
}

func TestOpen_WithoutWindowManager(t *testing.T) {
	f := newFake()
	env := newEnv(t, f)
	w := openWindow(t, env, Config{Title: "plain", Style: StyleDefault})

	s := f.Win(w.Handle())
	if len(s.Protocols) != 1 || s.Protocols[0] != "WM_DELETE_WINDOW" {
		t.Fatalf("unexpected protocols %v", s.Protocols)
	}
	if s.Pid != 0 {
		t.Fatalf("expected no _NET_WM_PID without EWMH")
	}
	if len(f.Focused) == 0 || f.Focused[len(f.Focused)-1] != w.Handle() {
		t.Fatalf("expected direct focus, got %v", f.Focused)
	}
}

func TestOpen_InvalidSize(t *testing.T) {
	env := newEnv(t, newFake())
	if _, err := Open(env, Config{Mode: fullscreen.VideoMode{Width: 0, Height: 10}}); err == nil {
		t.Fatalf("expected error for empty size")
	}
}

func TestOpen_FixedSize(t *testing.T) {
	f := newFake()
	w := openWindow(t, newEnv(t, f), Config{Title: "fixed", Style: StyleTitlebar | StyleClose})

	s := f.Win(w.Handle())
	h := s.NormalHints
	want := uint(icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize | icccm.SizeHintUSPosition)
	if h == nil || h.Flags&want != want {
		t.Fatalf("expected pinned size hints, got %+v", h)
	}
	if h.MinWidth != 640 || h.MaxWidth != 640 || h.MinHeight != 480 || h.MaxHeight != 480 {
		t.Fatalf("expected min = max = 640x480, got %+v", h)
	}
	if s.Motif.Decoration&motif.DecorationResizeH != 0 || s.Motif.Function&motif.FunctionResize != 0 {
		t.Fatalf("expected no resize controls, got %+v", s.Motif)
	}

	if err := w.SetSize(Size{800, 600}); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	h = f.Win(w.Handle()).NormalHints
	if h.MinWidth != 800 || h.MaxWidth != 800 || h.MinHeight != 600 || h.MaxHeight != 600 {
		t.Fatalf("expected hints to follow the size, got %+v", h)
	}
	size, err := w.Size()
	if err != nil || size != (Size{800, 600}) {
		t.Fatalf("expected 800x600, got %v, %v", size, err)
	}

	if err := w.SetMinimumSize(&Size{10, 10}); err != nil {
		t.Fatalf("SetMinimumSize: %v", err)
	}
	if got := f.Win(w.Handle()).NormalHints.MinWidth; got != 800 {
		t.Fatalf("expected minimum size ignored, got min width %d", got)
	}
}

func TestSetMinMaxSize_Resizable(t *testing.T) {
	f := newFake()
	w := openWindow(t, newEnv(t, f), Config{Style: StyleDefault})

	if err := w.SetMinimumSize(&Size{100, 50}); err != nil {
		t.Fatalf("SetMinimumSize: %v", err)
	}
	if err := w.SetMaximumSize(&Size{1000, 800}); err != nil {
		t.Fatalf("SetMaximumSize: %v", err)
	}
	h := f.Win(w.Handle()).NormalHints
	if h.Flags&icccm.SizeHintPMinSize == 0 || h.MinWidth != 100 || h.MinHeight != 50 {
		t.Fatalf("expected minimum 100x50, got %+v", h)
	}
	if h.Flags&icccm.SizeHintPMaxSize == 0 || h.MaxWidth != 1000 || h.MaxHeight != 800 {
		t.Fatalf("expected maximum 1000x800, got %+v", h)
	}

	if err := w.SetMinimumSize(nil); err != nil {
		t.Fatalf("SetMinimumSize(nil): %v", err)
	}
	h = f.Win(w.Handle()).NormalHints
	if h.Flags&icccm.SizeHintPMinSize != 0 || h.Flags&icccm.SizeHintPMaxSize == 0 {
		t.Fatalf("expected only the maximum left, got flags %#x", h.Flags)
	}
}

func TestSetVisible_WaitsForMapState(t *testing.T) {
	f := newFake()
	w := openWindow(t, newEnv(t, f), Config{Style: StyleDefault})

	if err := w.SetVisible(false); err != nil {
		t.Fatalf("SetVisible(false): %v", err)
	}
	if w.mapped {
		t.Fatalf("expected unmapped after hide")
	}
	if err := w.SetVisible(true); err != nil {
		t.Fatalf("SetVisible(true): %v", err)
	}
	if !w.mapped {
		t.Fatalf("expected mapped after show")
	}
}

func TestSetVisible_GivesUpWithoutVisibility(t *testing.T) {
	f := newFake()
	f.AutoVisible = false
	w := openWindow(t, newEnv(t, f), Config{Style: StyleDefault})
	if w.mapped {
		t.Fatalf("expected the wait to give up while obscured")
	}
	f.Push(xproto.VisibilityNotifyEvent{Window: w.Handle(), State: xproto.VisibilityFullyObscured})
	_ = w.PumpEvents()
	if w.mapped {
		t.Fatalf("expected a fully obscured window to stay unmapped")
	}
	f.Push(xproto.VisibilityNotifyEvent{Window: w.Handle(), State: xproto.VisibilityPartiallyObscured})
	_ = w.PumpEvents()
	if !w.mapped {
		t.Fatalf("expected partially obscured to count as mapped")
	}
}

func TestClose_ReleasesEverything(t *testing.T) {
	f := newFake()
	env := newEnv(t, f)
	w, err := Open(env, Config{Mode: testMode, Style: StyleDefault})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := w.SetIcon(1, 1, []byte{1, 2, 3, 255}); err != nil {
		t.Fatalf("SetIcon: %v", err)
	}
	if err := w.SetMouseCursor(CursorHand); err != nil {
		t.Fatalf("SetMouseCursor: %v", err)
	}
	if err := w.SetMouseCursorVisible(false); err != nil {
		t.Fatalf("SetMouseCursorVisible: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !f.Win(w.Handle()).Destroyed {
		t.Fatalf("expected window destroyed")
	}
	if len(f.Pixmaps) != 0 {
		t.Fatalf("expected icon pixmaps freed, %d left", len(f.Pixmaps))
	}
	if len(f.Cursors) != 0 {
		t.Fatalf("expected cursors freed, %d left", len(f.Cursors))
	}
	if env.Focus.Registered(w.Handle()) {
		t.Fatalf("expected window unregistered")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("expected second Close to be a no-op, got %v", err)
	}
	if err := w.SetTitle("x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if w.HasFocus() {
		t.Fatalf("expected closed window to report no focus")
	}
}

func TestAdopt_DoesNotDestroy(t *testing.T) {
	f := newFake()
	env := newEnv(t, f)
	const foreign xproto.Window = 0x500
	f.AddWindow(foreign, x11test.RootWindow, x11.Rect{X: 10, Y: 20, Width: 300, Height: 200})

	w, err := Adopt(env, foreign)
	if err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	s := f.Win(foreign)
	if s.EventMask != eventMask {
		t.Fatalf("expected event mask selected, got %#x", s.EventMask)
	}
	if s.Rect.X != 10 || s.Rect.Y != 20 || s.Rect.Width != 300 {
		t.Fatalf("expected geometry untouched, got %+v", s.Rect)
	}
	if len(s.Protocols) == 0 {
		t.Fatalf("expected protocols set")
	}

	f.Push(xproto.ConfigureNotifyEvent{Window: foreign, Width: 300, Height: 200})
	if ev, ok := w.PollEvent(); ok {
		t.Fatalf("expected no resize for the adopted size, got %v", event.Format(ev))
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if f.Win(foreign).Destroyed {
		t.Fatalf("expected adopted window to survive Close")
	}
	if env.Focus.Registered(foreign) {
		t.Fatalf("expected adopted window unregistered")
	}
}

func TestClose_DiscardsQueuedEvents(t *testing.T) {
	f := newFake()
	env := newEnv(t, f)
	const foreign xproto.Window = 0x600
	f.AddWindow(foreign, x11test.RootWindow, x11.Rect{Width: 100, Height: 100})

	adopted, err := Adopt(env, foreign)
	if err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	w := openWindow(t, env, Config{Style: StyleDefault})
	if !f.Watched[w.Handle()] || !f.Watched[foreign] {
		t.Fatalf("expected both windows watched, got %v", f.Watched)
	}

	f.Queue = nil
	f.Push(
		xproto.KeyPressEvent{Event: w.Handle(), Detail: kcA},
		xproto.KeyPressEvent{Event: foreign, Detail: kcA},
		xproto.MappingNotifyEvent{Request: xproto.MappingKeyboard},
	)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if f.Watched[w.Handle()] {
		t.Fatalf("expected closed window unwatched")
	}
	if len(f.Queue) != 2 {
		t.Fatalf("expected the foreign event and the broadcast to stay queued, got %d", len(f.Queue))
	}
	if err := adopted.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(f.Queue) != 1 {
		t.Fatalf("expected only the broadcast left, got %d", len(f.Queue))
	}
}

func TestAdopt_ZeroHandle(t *testing.T) {
	if _, err := Adopt(newEnv(t, newFake()), 0); err == nil {
		t.Fatalf("expected error")
	}
}

// withOutput gives f one 1920x1080 output at (1920, 0).
func withOutput(f *x11test.Fake) {
	const (
		crtc   randr.Crtc   = 10
		output randr.Output = 20
	)
	f.Caps.RandR = true
	f.Resources = &randr.GetScreenResourcesReply{
		ConfigTimestamp: 5,
		Crtcs:           []randr.Crtc{crtc},
		Outputs:         []randr.Output{output},
		Modes: []randr.ModeInfo{
			{Id: 1, Width: 1920, Height: 1080},
			{Id: 2, Width: 1280, Height: 720},
		},
	}
	f.Primary = output
	f.Outputs[output] = &randr.GetOutputInfoReply{
		Crtc:       crtc,
		Connection: randr.ConnectionConnected,
		Modes:      []randr.Mode{1, 2},
	}
	f.Crtcs[crtc] = &randr.GetCrtcInfoReply{
		X: 1920, Width: 1920, Height: 1080,
		Mode:     1,
		Rotation: randr.RotationRotate0,
		Outputs:  []randr.Output{output},
	}
}

func TestOpen_FullscreenAtDesktopMode(t *testing.T) {
	f := newFake()
	f.Caps.EWMH = true
	withOutput(f)
	env := newEnv(t, f)

	mode := fullscreen.VideoMode{Width: 1920, Height: 1080, BitsPerPixel: 24}
	w := openWindow(t, env, Config{Mode: mode, Fullscreen: true})

	if len(f.CrtcConfigs) != 0 {
		t.Fatalf("expected no mode switch, got %d", len(f.CrtcConfigs))
	}
	s := f.Win(w.Handle())
	if s.Rect.X != 1920 || s.Rect.Y != 0 {
		t.Fatalf("expected window at the primary output, got %d,%d", s.Rect.X, s.Rect.Y)
	}
	if s.Override {
		t.Fatalf("expected no override-redirect under an EWMH window manager")
	}
	if s.Motif != nil {
		t.Fatalf("expected no decoration hints when fullscreen")
	}
	if s.NormalHints.Flags&(icccm.SizeHintPMinSize|icccm.SizeHintPMaxSize) != 0 {
		t.Fatalf("expected min/max hints cleared, got %#x", s.NormalHints.Flags)
	}

	sent := f.SentOfType("_NET_WM_STATE")
	if len(sent) == 0 {
		t.Fatalf("expected _NET_WM_STATE request")
	}
	full, _ := f.Atom("_NET_WM_STATE_FULLSCREEN")
	msg := sent[0]
	if msg.Dest != x11test.RootWindow || msg.Msg.Window != w.Handle() {
		t.Fatalf("unexpected routing %+v", msg)
	}
	if msg.Msg.Data != [5]uint32{1, uint32(full), 0, 1, 0} {
		t.Fatalf("unexpected data %v", msg.Msg.Data)
	}
	bypass := f.Property(w.Handle(), "_NET_WM_BYPASS_COMPOSITOR")
	if vals := bypass.Uint32s(); len(vals) != 1 || vals[0] != 1 {
		t.Fatalf("expected compositor bypass, got %v", vals)
	}
}

func TestOpen_FullscreenSwitchesAndRestores(t *testing.T) {
	f := newFake()
	withOutput(f)
	env := newEnv(t, f)

	w, err := Open(env, Config{Mode: fullscreen.VideoMode{Width: 1280, Height: 720, BitsPerPixel: 24}, Fullscreen: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !f.Win(w.Handle()).Override {
		t.Fatalf("expected override-redirect without a window manager")
	}
	if len(f.CrtcConfigs) != 1 || f.CrtcConfigs[0].Mode != 2 {
		t.Fatalf("expected switch to mode 2, got %+v", f.CrtcConfigs)
	}
	if env.Fullscreen.Holder() != w.Handle() {
		t.Fatalf("expected window to hold fullscreen")
	}
	if err := w.SetMouseCursorGrabbed(false); err != nil {
		t.Fatalf("SetMouseCursorGrabbed: %v", err)
	}
	if !w.cursorGrabbed {
		t.Fatalf("expected fullscreen window to keep its grab")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(f.CrtcConfigs) != 2 {
		t.Fatalf("expected restore, got %d configs", len(f.CrtcConfigs))
	}
	last := f.CrtcConfigs[1]
	if last.Mode != 1 || last.X != 1920 || last.Y != 0 {
		t.Fatalf("expected mode 1 at 1920,0, got %+v", last)
	}
	if env.Fullscreen.Holder() != 0 {
		t.Fatalf("expected holder released")
	}
}

func TestOpen_SecondFullscreenStaysWindowed(t *testing.T) {
	f := newFake()
	withOutput(f)
	env := newEnv(t, f)

	mode := fullscreen.VideoMode{Width: 1280, Height: 720, BitsPerPixel: 24}
	a := openWindow(t, env, Config{Mode: mode, Fullscreen: true})
	b := openWindow(t, env, Config{Mode: mode, Fullscreen: true})

	if env.Fullscreen.Holder() != a.Handle() {
		t.Fatalf("expected first window to keep fullscreen")
	}
	if len(f.CrtcConfigs) != 1 {
		t.Fatalf("expected one switch, got %d", len(f.CrtcConfigs))
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(f.CrtcConfigs) != 1 {
		t.Fatalf("expected closing the second window not to restore, got %d", len(f.CrtcConfigs))
	}
}

func TestRequestFocus_BetweenSiblings(t *testing.T) {
	f := newFake()
	env := newEnv(t, f)
	a := openWindow(t, env, Config{Style: StyleDefault})
	b := openWindow(t, env, Config{Style: StyleDefault})

	f.Focus = a.Handle()
	out, err := b.RequestFocus()
	if err != nil {
		t.Fatalf("RequestFocus: %v", err)
	}
	if out != focus.Stolen || !b.HasFocus() {
		t.Fatalf("expected b to take focus, got %v", out)
	}

	f.Focus = 0
	out, err = a.RequestFocus()
	if err != nil {
		t.Fatalf("RequestFocus: %v", err)
	}
	if out != focus.Urgent || a.HasFocus() {
		t.Fatalf("expected urgency only, got %v", out)
	}
	if f.Win(a.Handle()).Hints.Flags&icccm.HintUrgency == 0 {
		t.Fatalf("expected urgency hint")
	}
}
