//go:build linux

package platform

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xwin/internal/focus"
	"github.com/1broseidon/xwin/internal/fullscreen"
	"github.com/1broseidon/xwin/internal/window"
	"github.com/1broseidon/xwin/internal/x11"
)

// LinuxBackend serves windows over an X11 display.
type LinuxBackend struct {
	env  *window.Env
	conn *x11.Connection // nil when the display is borrowed
}

var _ Backend = (*LinuxBackend)(nil)

// NewBackend connects to the X server named by $DISPLAY.
func NewBackend(log *slog.Logger, opts Options) (Backend, error) {
	conn, err := x11.NewConnection(log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	b, err := NewLinuxBackend(conn, log, opts)
	if err != nil {
		conn.Close()
		return nil, err
	}
	b.conn = conn
	return b, nil
}

// NewLinuxBackend serves windows over an existing display. The caller keeps
// ownership of disp.
func NewLinuxBackend(disp x11.Display, log *slog.Logger, opts Options) (*LinuxBackend, error) {
	if log == nil {
		log = slog.Default()
	}
	env, err := window.NewEnv(disp, log, windowOptions(opts))
	if err != nil {
		return nil, err
	}
	return &LinuxBackend{env: env}, nil
}

func windowOptions(opts Options) window.Options {
	out := window.DefaultOptions()
	if opts.GrabAttempts > 0 {
		out.Retry = window.RetryPolicy{Attempts: opts.GrabAttempts, Delay: opts.GrabDelay}
	}
	if opts.MapWaitLimit > 0 {
		out.MapWaitLimit = opts.MapWaitLimit
	}
	switch opts.InputMethod {
	case InputMethodNone:
		out.InputMethod = window.InputMethodNone
	case InputMethodCompose:
		out.InputMethod = window.InputMethodCompose
	}
	return out
}

func (b *LinuxBackend) Open(cfg WindowConfig) (Window, error) {
	w, err := window.Open(b.env, window.Config{
		Title: cfg.Title,
		Mode: fullscreen.VideoMode{
			Width:        cfg.Mode.Width,
			Height:       cfg.Mode.Height,
			BitsPerPixel: cfg.Mode.BitsPerPixel,
		},
		Style:      window.Style(cfg.Style),
		Fullscreen: cfg.Fullscreen,
	})
	if err != nil {
		return nil, err
	}
	return &linuxWindow{Window: w}, nil
}

func (b *LinuxBackend) Adopt(handle WindowHandle) (Window, error) {
	w, err := window.Adopt(b.env, xproto.Window(handle))
	if err != nil {
		return nil, err
	}
	return &linuxWindow{Window: w}, nil
}

func (b *LinuxBackend) DesktopMode() VideoMode {
	return videoMode(b.env.Fullscreen.DesktopMode())
}

func (b *LinuxBackend) FullscreenModes() []VideoMode {
	modes := b.env.Fullscreen.Modes()
	out := make([]VideoMode, 0, len(modes))
	for _, m := range modes {
		out = append(out, videoMode(m))
	}
	return out
}

// Close disconnects from the display if the backend opened it. Windows must
// be closed first.
func (b *LinuxBackend) Close() {
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

func videoMode(m fullscreen.VideoMode) VideoMode {
	return VideoMode{Width: m.Width, Height: m.Height, BitsPerPixel: m.BitsPerPixel}
}

// linuxWindow adapts the methods of window.Window whose signatures use
// backend types.
type linuxWindow struct {
	*window.Window
}

var _ Window = (*linuxWindow)(nil)

func (l *linuxWindow) Handle() WindowHandle { return WindowHandle(l.Window.Handle()) }

func (l *linuxWindow) Size() (Size, error) {
	s, err := l.Window.Size()
	return Size{Width: s.Width, Height: s.Height}, err
}

func (l *linuxWindow) SetSize(size Size) error {
	return l.Window.SetSize(window.Size{Width: size.Width, Height: size.Height})
}

func (l *linuxWindow) SetMinimumSize(size *Size) error {
	return l.Window.SetMinimumSize(windowSize(size))
}

func (l *linuxWindow) SetMaximumSize(size *Size) error {
	return l.Window.SetMaximumSize(windowSize(size))
}

func windowSize(size *Size) *window.Size {
	if size == nil {
		return nil
	}
	return &window.Size{Width: size.Width, Height: size.Height}
}

func (l *linuxWindow) SetMouseCursor(shape CursorShape) error {
	s, err := window.ParseCursorShape(string(shape))
	if err != nil {
		return err
	}
	return l.Window.SetMouseCursor(s)
}

func (l *linuxWindow) RequestFocus() (bool, error) {
	out, err := l.Window.RequestFocus()
	return out == focus.Stolen, err
}
