package window

import (
	"context"
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/davecgh/go-spew/spew"

	"github.com/1broseidon/xwin/internal/event"
	"github.com/1broseidon/xwin/internal/focus"
	"github.com/1broseidon/xwin/internal/input"
	"github.com/1broseidon/xwin/internal/x11"
)

// PumpEvents translates every event the server has queued for the window
// without blocking. The results are read with PollEvent.
func (w *Window) PumpEvents() error {
	if err := w.check(); err != nil {
		return err
	}
	w.processEvents()
	return nil
}

// PollEvent returns the oldest translated event, pumping first when none is
// queued. It never blocks.
func (w *Window) PollEvent() (event.Event, bool) {
	if w.events.Len() == 0 && !w.closed {
		w.processEvents()
	}
	return w.events.Pop()
}

// WaitEvent blocks until an event is available. It reports false when the
// window is closed or the connection went away.
func (w *Window) WaitEvent() (event.Event, bool) {
	for {
		if ev, ok := w.PollEvent(); ok {
			return ev, true
		}
		if w.closed {
			return nil, false
		}
		xev, ok := w.disp.WaitEvent(w.win)
		if !ok {
			return nil, false
		}
		w.pump(xev)
	}
}

func (w *Window) processEvents() {
	for w.pump(nil) {
	}
	if w.needFlush {
		w.needFlush = false
		w.disp.Flush()
	}
}

// pump runs one step of key repeat collapsing, starting from first when it
// was already read off the connection.
func (w *Window) pump(first xgb.Event) bool {
	next := func() (xgb.Event, bool) {
		if first != nil {
			ev := first
			first = nil
			return ev, true
		}
		return w.disp.NextEvent(w.win)
	}
	return input.KeyRepeatFilter{Enabled: w.keyRepeat}.Pump(next, w.processEvent)
}

func (w *Window) atom(name string) xproto.Atom {
	a, err := w.disp.Atom(name)
	if err != nil {
		w.log.Debug("failed to intern atom", "name", name, "error", err)
		return 0
	}
	return a
}

func (w *Window) processEvent(xev xgb.Event) {
	switch ev := xev.(type) {
	case xproto.DestroyNotifyEvent:
		if err := w.cleanup(); err != nil {
			w.log.Warn("cleanup after destroy failed", "window", w.win, "error", err)
		}

	case xproto.FocusInEvent:
		if w.im != nil {
			w.im.SetFocus(true)
		}
		if w.cursorGrabbed {
			w.grabPointer()
		}
		w.events.Push(event.FocusGained{})
		if err := focus.SetUrgency(w.disp, w.win, false); err != nil {
			w.log.Debug("failed to clear urgency", "window", w.win, "error", err)
		}

	case xproto.FocusOutEvent:
		if w.im != nil {
			w.im.SetFocus(false)
		}
		if w.cursorGrabbed {
			if err := w.disp.UngrabPointer(); err != nil {
				w.log.Debug("failed to release pointer grab", "error", err)
			}
		}
		w.events.Push(event.FocusLost{})

	case xproto.ConfigureNotifyEvent:
		size := Size{int(ev.Width), int(ev.Height)}
		if size != w.prevSize {
			w.prevSize = size
			w.events.Push(event.Resized{Width: uint32(ev.Width), Height: uint32(ev.Height)})
		}

	case xproto.ClientMessageEvent:
		w.clientMessage(ev)

	case xproto.KeyPressEvent:
		w.keyPress(ev)

	case xproto.KeyReleaseEvent:
		alt, ctrl, shift, sys := input.Modifiers(ev.State)
		w.events.Push(event.KeyReleased{
			Code:    w.env.Keymap.Key(ev.Detail),
			Alt:     alt,
			Control: ctrl,
			Shift:   shift,
			System:  sys,
		})

	case xproto.ButtonPressEvent:
		if b, ok := input.Button(ev.Detail); ok {
			w.events.Push(event.MouseButtonPressed{Button: b, X: int(ev.EventX), Y: int(ev.EventY)})
		}
		w.updateLastInputTime(ev.Time)

	case xproto.ButtonReleaseEvent:
		if b, ok := input.Button(ev.Detail); ok {
			w.events.Push(event.MouseButtonReleased{Button: b, X: int(ev.EventX), Y: int(ev.EventY)})
		} else if wheel, delta, ok := input.Wheel(ev.Detail); ok {
			w.events.Push(event.MouseWheelScrolled{Wheel: wheel, Delta: delta, X: int(ev.EventX), Y: int(ev.EventY)})
		}

	case xproto.MotionNotifyEvent:
		w.events.Push(event.MouseMoved{X: int(ev.EventX), Y: int(ev.EventY)})
		w.rawMotion(int(ev.RootX), int(ev.RootY))

	case xproto.EnterNotifyEvent:
		if ev.Mode == xproto.NotifyModeNormal {
			w.events.Push(event.MouseEntered{})
		}

	case xproto.LeaveNotifyEvent:
		if ev.Mode == xproto.NotifyModeNormal {
			w.events.Push(event.MouseLeft{})
		}
		w.rawValid = false

	case xproto.MappingNotifyEvent:
		if ev.Request == xproto.MappingKeyboard || ev.Request == xproto.MappingModifier {
			if err := w.env.Keymap.Refresh(w.disp); err != nil {
				w.log.Warn("failed to refresh keyboard mapping", "error", err)
			}
		}

	case xproto.UnmapNotifyEvent:
		if ev.Window == w.win {
			w.mapped = false
		}

	case xproto.VisibilityNotifyEvent:
		// a MapNotify alone does not mean the window manager is done with
		// the window
		if ev.State != xproto.VisibilityFullyObscured {
			w.mapped = true
		}

	case xproto.PropertyNotifyEvent:
		if w.lastInputTime == 0 {
			w.lastInputTime = ev.Time
		}

	case xproto.SelectionNotifyEvent:
		w.selectionNotify(ev)

	default:
		if w.log.Enabled(context.Background(), slog.LevelDebug) {
			w.log.Debug("unhandled event", "window", w.win, "event", spew.Sdump(xev))
		}
	}
}

func (w *Window) keyPress(ev xproto.KeyPressEvent) {
	alt, ctrl, shift, sys := input.Modifiers(ev.State)
	pressed := event.KeyPressed{
		Code:    w.env.Keymap.Key(ev.Detail),
		Alt:     alt,
		Control: ctrl,
		Shift:   shift,
		System:  sys,
	}

	filtered := w.im != nil && w.im.Filter(ev)
	if filtered {
		w.events.Push(pressed)
		w.filtered.Add(ev.Detail)
	} else if !w.filtered.Has(ev.Detail) && ev.Detail != 0 {
		// a key seen filtered already produced its KeyPressed; keycode 0
		// carries text only
		w.events.Push(pressed)
	}

	if !filtered {
		w.text(ev)
	}
	w.updateLastInputTime(ev.Time)
}

func (w *Window) text(ev xproto.KeyPressEvent) {
	if w.im == nil {
		if _, r := w.env.Keymap.Lookup(ev.Detail, ev.State); r != 0 {
			w.events.Push(event.TextEntered{Unicode: r})
		}
		return
	}

	var buf [input.TextBufferSize]byte
	n, status := w.im.Lookup(ev, buf[:])
	switch status {
	case input.LookupOverflow:
		w.log.Warn("composed text exceeds the input buffer and was discarded", "window", w.win, "limit", input.TextBufferSize)
	case input.LookupChars:
		for _, r := range input.DecodeText(buf[:n]) {
			w.events.Push(event.TextEntered{Unicode: r})
		}
	}
}

func (w *Window) clientMessage(ev xproto.ClientMessageEvent) {
	if w.dnd != nil {
		handled, err := w.dnd.HandleClientMessage(ev)
		if err != nil {
			w.log.Debug("drag and drop message", "window", w.win, "error", err)
		}
		if handled {
			return
		}
	}

	if ev.Format != 32 || ev.Type != w.atom("WM_PROTOCOLS") {
		return
	}
	data := ev.Data.Data32
	if len(data) == 0 {
		return
	}

	switch protocol := xproto.Atom(data[0]); {
	case protocol == w.atom("WM_DELETE_WINDOW"):
		w.events.Push(event.Closed{})

	case w.disp.Capabilities().EWMH && protocol == w.atom("_NET_WM_PING"):
		root := w.disp.Root()
		pong := x11.ClientMessage{Window: root, Type: ev.Type}
		copy(pong.Data[:], data)
		err := w.disp.SendClientMessage(root, xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect, pong)
		if err != nil {
			w.log.Debug("failed to answer ping", "window", w.win, "error", err)
		}
	}
}

func (w *Window) selectionNotify(ev xproto.SelectionNotifyEvent) {
	if w.dnd == nil {
		return
	}
	paths, handled, err := w.dnd.HandleSelectionNotify(ev)
	if !handled {
		return
	}
	if err != nil {
		w.log.Warn("dropped data discarded", "window", w.win, "error", err)
		return
	}
	if len(paths) == 0 {
		return
	}
	x, y, err := w.disp.QueryPointer(w.win)
	if err != nil {
		w.log.Debug("failed to query pointer for drop position", "error", err)
	}
	w.events.Push(event.NewFilesDropped(paths, x, y))
}

// rawMotion derives relative motion from successive root coordinates. The
// first motion after the pointer enters only records the origin.
func (w *Window) rawMotion(rootX, rootY int) {
	if !w.env.rawInput() {
		return
	}
	if w.rawValid {
		dx, dy := rootX-w.rawX, rootY-w.rawY
		if dx != 0 || dy != 0 {
			w.events.Push(event.MouseMovedRaw{DX: dx, DY: dy})
		}
	}
	w.rawX, w.rawY, w.rawValid = rootX, rootY, true
}

// updateLastInputTime records the server time of user input, which window
// managers use to judge focus requests.
func (w *Window) updateLastInputTime(t xproto.Timestamp) {
	if t == 0 || t == w.lastInputTime {
		return
	}
	if w.disp.Capabilities().EWMH {
		if err := w.disp.SetUserTime(w.win, t); err != nil {
			w.log.Debug("failed to set _NET_WM_USER_TIME", "error", err)
		}
		w.needFlush = true
	}
	w.lastInputTime = t
}

// waitMapped pumps until the window reaches the wanted map state or the
// iteration limit runs out.
func (w *Window) waitMapped(want bool) bool {
	limit := w.env.Options.MapWaitLimit
	for i := 0; w.mapped != want; i++ {
		if limit > 0 && i >= limit {
			return false
		}
		w.processEvents()
		if w.mapped != want {
			time.Sleep(mapWaitSleep)
		}
	}
	return true
}
