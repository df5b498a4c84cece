package window

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/xwin/internal/dragndrop"
	"github.com/1broseidon/xwin/internal/focus"
)

const (
	icccmMin    = icccm.SizeHintPMinSize
	icccmMax    = icccm.SizeHintPMaxSize
	icccmMinMax = icccmMin | icccmMax
)

// SetTitle sets the title shown by the window manager and the taskbar.
func (w *Window) SetTitle(title string) error {
	if err := w.check(); err != nil {
		return err
	}
	if err := w.disp.SetTitle(w.win, title); err != nil {
		return err
	}
	w.disp.Flush()
	return nil
}

// SetVisible maps or unmaps the window and waits for the window manager to
// follow, up to the configured number of pump iterations. Adopted windows
// are not waited for.
func (w *Window) SetVisible(visible bool) error {
	if err := w.check(); err != nil {
		return err
	}
	if visible {
		if err := w.disp.MapWindow(w.win); err != nil {
			return fmt.Errorf("failed to map window: %w", err)
		}
		if w.fullscreen {
			w.switchToFullscreen()
		}
		w.disp.Flush()
		if !w.external && !w.waitMapped(true) {
			w.log.Warn("window manager did not show the window in time", "window", w.win)
		}
		return nil
	}

	if err := w.disp.UnmapWindow(w.win); err != nil {
		return fmt.Errorf("failed to unmap window: %w", err)
	}
	w.disp.Flush()
	if !w.external && !w.waitMapped(false) {
		w.log.Warn("window manager did not hide the window in time", "window", w.win)
	}
	return nil
}

// SetKeyRepeatEnabled chooses whether a held key keeps producing KeyPressed.
func (w *Window) SetKeyRepeatEnabled(enabled bool) {
	w.keyRepeat = enabled
}

// SetMouseCursorGrabbed confines the pointer to the window. Fullscreen
// windows always hold the grab while focused.
func (w *Window) SetMouseCursorGrabbed(grabbed bool) error {
	if err := w.check(); err != nil {
		return err
	}
	if w.fullscreen || grabbed == w.cursorGrabbed {
		return nil
	}
	if !grabbed {
		if err := w.disp.UngrabPointer(); err != nil {
			return fmt.Errorf("failed to release pointer grab: %w", err)
		}
		w.cursorGrabbed = false
		return nil
	}
	if !w.grabPointer() {
		return errors.New("failed to grab the pointer")
	}
	w.cursorGrabbed = true
	return nil
}

// grabPointer tries the grab under the retry policy. Another client holding
// a grab is the usual reason for failure.
func (w *Window) grabPointer() bool {
	ok, err := w.env.Options.Retry.Do(func() (bool, error) {
		return w.disp.GrabPointer(w.win)
	})
	if !ok {
		w.log.Error("failed to grab mouse cursor", "window", w.win, "attempts", w.env.Options.Retry.Attempts, "error", err)
	}
	return ok
}

// RequestFocus asks for input focus. Focus is taken only when another
// window of this process has it; otherwise the window is marked urgent.
func (w *Window) RequestFocus() (focus.Outcome, error) {
	if err := w.check(); err != nil {
		return 0, err
	}
	out, err := w.env.Focus.RequestFocus(w.win, w.lastInputTime)
	if err != nil {
		return 0, err
	}
	w.disp.Flush()
	return out, nil
}

// HasFocus reports whether the window has input focus.
func (w *Window) HasFocus() bool {
	if w.closed {
		return false
	}
	return w.env.Focus.HasFocus(w.win)
}

func (w *Window) grabFocus() {
	if err := focus.Activate(w.disp, w.win, w.lastInputTime); err != nil {
		w.log.Debug("failed to grab focus", "window", w.win, "error", err)
	}
	w.disp.Flush()
}

// SetFileDroppingEnabled advertises whether files may be dropped on the
// window. Under a Wayland compositor drops never reach X clients, so
// enabling only logs an error.
func (w *Window) SetFileDroppingEnabled(enabled bool) error {
	if err := w.check(); err != nil {
		return err
	}
	if w.disp.Capabilities().IncompatibleCompositor {
		if enabled {
			w.log.Error("drag and drop is not supported under Xwayland", "window", w.win)
		}
		return nil
	}
	if err := dragndrop.SetAware(w.disp, w.win, enabled); err != nil {
		return err
	}
	w.disp.Flush()
	return nil
}
