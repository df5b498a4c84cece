// Package window owns native top-level windows and translates their X11
// events into the uniform event stream.
package window

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"

	"github.com/1broseidon/xwin/internal/dragndrop"
	"github.com/1broseidon/xwin/internal/event"
	"github.com/1broseidon/xwin/internal/fullscreen"
	"github.com/1broseidon/xwin/internal/input"
	"github.com/1broseidon/xwin/internal/x11"
)

// ErrClosed is returned by operations on a closed window.
var ErrClosed = errors.New("window is closed")

// eventMask is selected on every window, created or adopted.
const eventMask = xproto.EventMaskFocusChange |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskButtonMotion |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskVisibilityChange |
	xproto.EventMaskPropertyChange

// Style selects the decorations and controls the window manager offers.
type Style uint8

const (
	StyleTitlebar Style = 1 << iota
	StyleResize
	StyleClose

	StyleNone    Style = 0
	StyleDefault       = StyleTitlebar | StyleResize | StyleClose
)

// Surface is the visual negotiated by the rendering layer. Zero values
// select the root visual and depth.
type Surface struct {
	Visual xproto.Visualid
	Depth  byte
}

// Config describes a window to open.
type Config struct {
	Title string
	// Mode is the client size, and the video mode when Fullscreen is set.
	Mode       fullscreen.VideoMode
	Style      Style
	Fullscreen bool
	Surface    Surface
}

// Size is a width and height in pixels.
type Size struct {
	Width  int
	Height int
}

// Window is one native top-level window. Its methods must be called from a
// single goroutine; the shared state lives in Env.
type Window struct {
	env  *Env
	disp x11.Display
	log  *slog.Logger

	win      xproto.Window
	external bool
	closed   bool

	fullscreen   bool
	useSizeHints bool
	normalHints  icccm.NormalHints

	keyRepeat     bool
	cursorGrabbed bool
	cursorVisible bool
	mapped        bool

	prevSize Size
	minSize  *Size
	maxSize  *Size

	lastInputTime xproto.Timestamp
	// needFlush is set by requests issued while translating events.
	needFlush bool

	hiddenCursor xproto.Cursor
	lastCursor   xproto.Cursor

	iconPixmap xproto.Pixmap
	iconMask   xproto.Pixmap

	im       input.InputMethod
	filtered input.KeySet

	dnd *dragndrop.Session

	rawValid bool
	rawX     int
	rawY     int

	events event.Queue
}

func newWindow(env *Env) *Window {
	return &Window{
		env:           env,
		disp:          env.Display,
		log:           env.Log,
		keyRepeat:     true,
		cursorVisible: true,
	}
}

// Open creates, decorates and shows a new window. A fullscreen window also
// switches the primary output to cfg.Mode; when that is impossible the
// window stays up at the desktop resolution.
func Open(env *Env, cfg Config) (*Window, error) {
	w := newWindow(env)
	w.fullscreen = cfg.Fullscreen
	w.cursorGrabbed = cfg.Fullscreen

	width, height := cfg.Mode.Width, cfg.Mode.Height
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", width, height)
	}
	caps := w.disp.Capabilities()

	var x, y int
	if w.fullscreen {
		px, py, err := env.Fullscreen.PrimaryPosition()
		if err != nil {
			w.log.Debug("primary output position unavailable", "error", err)
		}
		x, y = px, py
	} else {
		sw, sh := w.disp.ScreenSize()
		x, y = (sw-width)/2, (sh-height)/2
	}

	win, err := w.disp.CreateWindow(x11.CreateOptions{
		X:                x,
		Y:                y,
		Width:            width,
		Height:           height,
		Depth:            cfg.Surface.Depth,
		Visual:           cfg.Surface.Visual,
		EventMask:        eventMask,
		OverrideRedirect: w.fullscreen && !caps.EWMH,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open window: %w", err)
	}
	w.win = win
	w.prevSize = Size{width, height}

	w.setProtocols()

	hints := &icccm.Hints{Flags: icccm.HintState, InitialState: icccm.StateNormal}
	if err := w.disp.SetWMHints(win, hints); err != nil {
		w.log.Warn("failed to set WM_HINTS", "window", win, "error", err)
	}

	if !w.fullscreen {
		if err := w.disp.SetMotifHints(win, motifHints(cfg.Style)); err != nil {
			w.log.Warn("failed to set decoration hints", "window", win, "error", err)
		}
	}

	// window managers honour min == max as "not resizable"
	if w.fullscreen || cfg.Style&StyleResize == 0 {
		w.useSizeHints = true
		w.normalHints = icccm.NormalHints{
			Flags:     icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize | icccm.SizeHintUSPosition,
			X:         x,
			Y:         y,
			MinWidth:  uint(width),
			MinHeight: uint(height),
			MaxWidth:  uint(width),
			MaxHeight: uint(height),
		}
		w.applyNormalHints()
	}

	if err := w.disp.SetWMClass(win, instanceName(), cfg.Title); err != nil {
		w.log.Warn("failed to set WM_CLASS", "window", win, "error", err)
	}

	if err := w.SetTitle(cfg.Title); err != nil {
		w.log.Warn("failed to set title", "window", win, "error", err)
	}

	w.initialize()

	if w.fullscreen {
		// decorations are only dropped without min/max constraints
		w.normalHints.Flags &^= icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		w.applyNormalHints()
		w.setVideoMode(cfg.Mode)
		w.switchToFullscreen()
	}
	return w, nil
}

// Adopt wraps a window created by someone else. Its placement and size are
// left alone and Close does not destroy it.
func Adopt(env *Env, handle xproto.Window) (*Window, error) {
	if handle == 0 {
		return nil, errors.New("cannot adopt window 0")
	}
	w := newWindow(env)
	w.win = handle
	w.external = true

	w.disp.Watch(handle)
	if err := w.disp.SelectInput(handle, eventMask); err != nil {
		w.disp.Unwatch(handle)
		return nil, fmt.Errorf("failed to adopt window %d: %w", handle, err)
	}
	if r, err := w.disp.Geometry(handle); err == nil {
		w.prevSize = Size{r.Width, r.Height}
	}

	w.setProtocols()
	w.initialize()
	return w, nil
}

// Handle returns the native window id.
func (w *Window) Handle() xproto.Window {
	return w.win
}

func (w *Window) check() error {
	if w.closed {
		return ErrClosed
	}
	return nil
}

func (w *Window) initialize() {
	switch w.env.Options.InputMethod {
	case InputMethodNone:
		w.log.Warn("no input method; TextEntered falls back to plain keysym lookup", "window", w.win)
	default:
		w.im = input.NewCompose(w.env.Keymap)
	}

	if err := w.disp.SetWindowType(w.win, []string{"_NET_WM_WINDOW_TYPE_NORMAL"}); err != nil {
		w.log.Debug("failed to set window type", "window", w.win, "error", err)
	}

	w.env.enableRawInput()

	if err := w.SetVisible(true); err != nil {
		w.log.Warn("failed to show window", "window", w.win, "error", err)
	}

	w.grabFocus()

	cursor, err := w.disp.CreateHiddenCursor(w.win)
	if err != nil {
		w.log.Error("failed to create hidden cursor", "window", w.win, "error", err)
	}
	w.hiddenCursor = cursor

	w.disp.Flush()

	dnd, err := dragndrop.NewSession(w.disp, w.win, w.log)
	if err != nil {
		w.log.Warn("drag and drop unavailable", "window", w.win, "error", err)
	}
	w.dnd = dnd
	if err := w.SetFileDroppingEnabled(false); err != nil {
		w.log.Debug("failed to clear XdndAware", "window", w.win, "error", err)
	}

	w.env.Focus.Register(w.win)
}

// setProtocols announces the client messages the window answers.
func (w *Window) setProtocols() {
	protocols := []string{"WM_DELETE_WINDOW"}
	if w.disp.Capabilities().EWMH {
		protocols = append(protocols, "_NET_WM_PING")
		pid, host := clientIdentity()
		if err := w.disp.SetClientIdentity(w.win, pid, host); err != nil {
			w.log.Warn("failed to set client identity", "window", w.win, "error", err)
		}
	}
	if err := w.disp.SetWMProtocols(w.win, protocols); err != nil {
		w.log.Error("failed to set WM_PROTOCOLS; closing the window will not be reported", "window", w.win, "error", err)
	}
}

func motifHints(style Style) *motif.Hints {
	h := &motif.Hints{Flags: motif.HintFunctions | motif.HintDecorations}
	if style&StyleTitlebar != 0 {
		h.Decoration |= motif.DecorationBorder | motif.DecorationTitle | motif.DecorationMinimize | motif.DecorationMenu
		h.Function |= motif.FunctionMove | motif.FunctionMinimize
	}
	if style&StyleResize != 0 {
		h.Decoration |= motif.DecorationMaximize | motif.DecorationResizeH
		h.Function |= motif.FunctionMaximize | motif.FunctionResize
	}
	if style&StyleClose != 0 {
		h.Function |= motif.FunctionClose
	}
	return h
}

func (w *Window) applyNormalHints() {
	hints := w.normalHints
	if err := w.disp.SetNormalHints(w.win, &hints); err != nil {
		w.log.Warn("failed to set size hints", "window", w.win, "error", err)
	}
}

func instanceName() string {
	exe, err := os.Executable()
	if err != nil || exe == "" {
		if len(os.Args) == 0 || os.Args[0] == "" {
			return "xwin"
		}
		exe = os.Args[0]
	}
	return filepath.Base(exe)
}

func (w *Window) setVideoMode(mode fullscreen.VideoMode) {
	switched, err := w.env.Fullscreen.Enter(w.win, mode)
	if err != nil {
		w.log.Warn("failed to switch video mode; staying at desktop resolution", "window", w.win, "mode", mode, "error", err)
		return
	}
	if !switched {
		w.log.Debug("requested mode is the desktop mode", "window", w.win, "mode", mode)
	}
}

// switchToFullscreen asks the window manager to drop decorations and cover
// the output.
func (w *Window) switchToFullscreen() {
	w.grabFocus()

	if !w.disp.Capabilities().EWMH {
		return
	}
	if bypass, err := w.disp.Atom("_NET_WM_BYPASS_COMPOSITOR"); err == nil {
		if err := w.disp.ChangeProperty32(w.win, bypass, xproto.AtomCardinal, 1); err != nil {
			w.log.Debug("failed to set _NET_WM_BYPASS_COMPOSITOR", "error", err)
		}
	}

	state, err := w.disp.Atom("_NET_WM_STATE")
	if err != nil {
		w.log.Error("failed to switch to fullscreen: missing _NET_WM_STATE", "error", err)
		return
	}
	full, err := w.disp.Atom("_NET_WM_STATE_FULLSCREEN")
	if err != nil {
		w.log.Error("failed to switch to fullscreen: missing _NET_WM_STATE_FULLSCREEN", "error", err)
		return
	}
	msg := x11.ClientMessage{
		Window: w.win,
		Type:   state,
		Data:   [5]uint32{1, uint32(full), 0, 1, 0},
	}
	err = w.disp.SendClientMessage(w.disp.Root(), xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect, msg)
	if err != nil {
		w.log.Error("failed to switch to fullscreen", "window", w.win, "error", err)
	}
}

// Close releases everything the window holds. The video mode is restored
// before the window goes away and the window leaves the focus registry
// last. Closing twice is a no-op.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if err := w.cleanup(); err != nil {
		errs = append(errs, err)
	}

	w.freeIcon()
	if w.hiddenCursor != 0 {
		if err := w.disp.FreeCursor(w.hiddenCursor); err != nil {
			w.log.Debug("failed to free hidden cursor", "error", err)
		}
		w.hiddenCursor = 0
	}
	if w.lastCursor != 0 {
		if err := w.disp.FreeCursor(w.lastCursor); err != nil {
			w.log.Debug("failed to free cursor", "error", err)
		}
		w.lastCursor = 0
	}

	if w.im != nil {
		w.im.Close()
		w.im = nil
	}

	if !w.external {
		if err := w.disp.DestroyWindow(w.win); err != nil {
			errs = append(errs, fmt.Errorf("failed to destroy window: %w", err))
		}
	}
	w.disp.Flush()
	w.disp.Unwatch(w.win)

	w.env.Focus.Unregister(w.win)
	return errors.Join(errs...)
}

// cleanup restores the desktop and gives the pointer back. It also runs
// when the server reports the window destroyed under us.
func (w *Window) cleanup() error {
	var err error
	if w.fullscreen {
		if e := w.env.Fullscreen.Exit(w.win); e != nil {
			err = fmt.Errorf("failed to restore video mode: %w", e)
		}
	}
	if w.cursorGrabbed {
		if e := w.disp.UngrabPointer(); e != nil {
			w.log.Debug("failed to release pointer grab", "error", e)
		}
	}
	if !w.cursorVisible {
		w.cursorVisible = true
		if e := w.disp.DefineCursor(w.win, w.lastCursor); e != nil {
			w.log.Debug("failed to restore cursor", "error", e)
		}
	}
	return err
}

// mapWaitSleep is the pause between pumps while waiting for the window
// manager to map or unmap.
const mapWaitSleep = time.Millisecond
