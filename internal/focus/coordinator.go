// Package focus decides how a window of this process may take input focus.
package focus

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/xwin/internal/x11"
)

// Outcome is what RequestFocus did.
type Outcome int

const (
	Stolen Outcome = iota + 1
	Urgent
)

func (o Outcome) String() string {
	switch o {
	case Stolen:
		return "stolen"
	case Urgent:
		return "urgent"
	}
	return "none"
}

// Coordinator is the registry of live windows of one process. Focus is only
// taken directly while another of these windows already holds it; otherwise
// the window manager is asked for attention through the urgency hint.
type Coordinator struct {
	disp x11.Display

	mu      sync.Mutex
	windows map[xproto.Window]struct{}
}

func NewCoordinator(disp x11.Display) *Coordinator {
	return &Coordinator{disp: disp, windows: map[xproto.Window]struct{}{}}
}

func (c *Coordinator) Register(win xproto.Window) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windows[win] = struct{}{}
}

func (c *Coordinator) Unregister(win xproto.Window) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.windows, win)
}

// Registered reports whether win is a live window of the process.
func (c *Coordinator) Registered(win xproto.Window) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.windows[win]
	return ok
}

func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.windows)
}

// HasFocus reports whether the server's input focus is win.
func (c *Coordinator) HasFocus(win xproto.Window) bool {
	focused, err := c.disp.InputFocus()
	return err == nil && focused == win
}

// processFocused reports whether any registered window holds input focus.
// The server is queried before the registry is locked.
func (c *Coordinator) processFocused() (bool, error) {
	focused, err := c.disp.InputFocus()
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.windows[focused]
	return ok, nil
}

// RequestFocus activates win when the process already owns focus and win is
// viewable, and sets the urgency hint otherwise.
func (c *Coordinator) RequestFocus(win xproto.Window, lastInput xproto.Timestamp) (Outcome, error) {
	owned, err := c.processFocused()
	if err != nil {
		return 0, fmt.Errorf("failed to query input focus: %w", err)
	}
	state, err := c.disp.MapState(win)
	if err != nil {
		return 0, fmt.Errorf("failed to query map state: %w", err)
	}

	if owned && state == xproto.MapStateViewable {
		if err := Activate(c.disp, win, lastInput); err != nil {
			return 0, err
		}
		return Stolen, nil
	}
	if err := SetUrgency(c.disp, win, true); err != nil {
		return 0, err
	}
	return Urgent, nil
}

// Activate gives win input focus. With an EWMH window manager an
// _NET_ACTIVE_WINDOW request is sent so the manager can honour its own
// policy; otherwise the window is raised and focused directly. Unmapped
// windows are left alone.
func Activate(disp x11.Display, win xproto.Window, lastInput xproto.Timestamp) error {
	state, err := disp.MapState(win)
	if err != nil {
		return fmt.Errorf("failed to query map state: %w", err)
	}
	if state == xproto.MapStateUnmapped {
		return nil
	}

	if disp.Capabilities().EWMH {
		active, err := disp.Atom("_NET_ACTIVE_WINDOW")
		if err != nil {
			return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
		}
		msg := x11.ClientMessage{
			Window: win,
			Type:   active,
			Data:   [5]uint32{1, uint32(lastInput), 0}, // source: application
		}
		mask := uint32(xproto.EventMaskSubstructureNotify | xproto.EventMaskSubstructureRedirect)
		if err := disp.SendClientMessage(disp.Root(), mask, msg); err != nil {
			return fmt.Errorf("failed to request activation: %w", err)
		}
		return nil
	}

	if err := disp.RaiseWindow(win); err != nil {
		return fmt.Errorf("failed to raise window: %w", err)
	}
	if err := disp.SetInputFocus(win, xproto.TimeCurrentTime); err != nil {
		return fmt.Errorf("failed to set input focus: %w", err)
	}
	return nil
}

// SetUrgency sets or clears the WM_HINTS urgency flag, keeping the other hints.
func SetUrgency(disp x11.Display, win xproto.Window, urgent bool) error {
	hints, err := disp.WMHints(win)
	if err != nil {
		hints = &icccm.Hints{}
	}
	if urgent {
		hints.Flags |= icccm.HintUrgency
	} else {
		if hints.Flags&icccm.HintUrgency == 0 {
			return nil
		}
		hints.Flags &^= icccm.HintUrgency
	}
	if err := disp.SetWMHints(win, hints); err != nil {
		return fmt.Errorf("failed to set urgency hint: %w", err)
	}
	return nil
}
