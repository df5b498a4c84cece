package platform

import (
	"errors"
	"time"

	"github.com/1broseidon/xwin/internal/event"
)

// ErrUnsupported is returned by NewBackend on platforms without a window
// backend.
var ErrUnsupported = errors.New("no window backend for this platform")

// WindowHandle is the native identifier of a window.
type WindowHandle uint32

type Size struct {
	Width  int
	Height int
}

// VideoMode is a display resolution with its color depth.
type VideoMode struct {
	Width        int
	Height       int
	BitsPerPixel int
}

// Style selects the decorations and controls offered by the window manager.
type Style uint8

const (
	StyleTitlebar Style = 1 << iota
	StyleResize
	StyleClose

	StyleNone    Style = 0
	StyleDefault       = StyleTitlebar | StyleResize | StyleClose
)

// CursorShape names a standard pointer shape.
type CursorShape string

const (
	CursorArrow     CursorShape = "arrow"
	CursorHand      CursorShape = "hand"
	CursorText      CursorShape = "text"
	CursorWait      CursorShape = "wait"
	CursorCrosshair CursorShape = "crosshair"
	CursorSizeAll   CursorShape = "sizeall"
)

// Input methods accepted by Options.InputMethod.
const (
	InputMethodCompose = "compose"
	InputMethodNone    = "none"
)

// WindowConfig describes a window to create.
type WindowConfig struct {
	Title      string
	Mode       VideoMode
	Style      Style
	Fullscreen bool
}

// Options tune the backend shared by all windows.
type Options struct {
	GrabAttempts int
	GrabDelay    time.Duration
	MapWaitLimit int
	InputMethod  string
}

// Window is a native top-level window. Events are translated into the
// platform-neutral vocabulary of package event.
type Window interface {
	Handle() WindowHandle

	PumpEvents() error
	PollEvent() (event.Event, bool)
	WaitEvent() (event.Event, bool)

	Position() (int, int, error)
	SetPosition(x, y int) error
	Size() (Size, error)
	SetSize(size Size) error
	SetMinimumSize(size *Size) error
	SetMaximumSize(size *Size) error

	SetTitle(title string) error
	SetIcon(width, height int, rgba []byte) error
	SetVisible(visible bool) error
	SetKeyRepeatEnabled(enabled bool)
	SetMouseCursorVisible(visible bool) error
	SetMouseCursorGrabbed(grabbed bool) error
	SetMouseCursor(shape CursorShape) error
	SetFileDroppingEnabled(enabled bool) error

	// RequestFocus reports whether focus was taken; otherwise the user was
	// notified through the window manager.
	RequestFocus() (bool, error)
	HasFocus() bool

	Close() error
}

// Backend creates windows on one display connection.
type Backend interface {
	Open(cfg WindowConfig) (Window, error)
	// Adopt wraps a window created elsewhere. Closing it never destroys the
	// native window.
	Adopt(handle WindowHandle) (Window, error)
	DesktopMode() VideoMode
	// FullscreenModes lists the supported fullscreen modes, largest first.
	FullscreenModes() []VideoMode
	Close()
}
