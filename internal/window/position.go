package window

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// Position returns the top-left corner of the window including the frame
// the window manager put around it, in root coordinates.
//
// The server only knows where the client area is. Window managers that
// report absolute positions correctly are trusted as is; otherwise
// _NET_FRAME_EXTENTS is subtracted; failing that, the top-most ancestor
// below the root is taken to be the frame. The first tier that answers
// wins.
func (w *Window) Position() (int, int, error) {
	if err := w.check(); err != nil {
		return 0, 0, err
	}
	root := w.disp.Root()
	x, y, err := w.disp.TranslateCoordinates(w.win, root, 0, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to translate window coordinates: %w", err)
	}

	caps := w.disp.Capabilities()
	if caps.AbsolutePositionGood() {
		w.log.Debug("position from absolute coordinates", "window", w.win, "wm", caps.WMName)
		return x, y, nil
	}

	if caps.EWMH {
		if ext, err := w.disp.FrameExtents(w.win); err == nil {
			w.log.Debug("position from frame extents", "window", w.win, "left", ext.Left, "top", ext.Top)
			return x - ext.Left, y - ext.Top, nil
		}
	}

	ancestor, err := w.topAncestor(root)
	if err != nil {
		return 0, 0, err
	}
	r, err := w.disp.Geometry(ancestor)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get frame geometry: %w", err)
	}
	w.log.Debug("position from ancestor", "window", w.win, "ancestor", ancestor)
	return r.X, r.Y, nil
}

// topAncestor walks up from the window to the child of root that contains it.
func (w *Window) topAncestor(root xproto.Window) (xproto.Window, error) {
	ancestor := w.win
	for {
		parent, err := w.disp.Parent(ancestor)
		if err != nil {
			return 0, fmt.Errorf("failed to query window tree: %w", err)
		}
		if parent == root || parent == 0 {
			return ancestor, nil
		}
		ancestor = parent
	}
}

// SetPosition moves the window. Window managers may place the frame or the
// client area at the given point.
func (w *Window) SetPosition(x, y int) error {
	if err := w.check(); err != nil {
		return err
	}
	err := w.disp.ConfigureWindow(w.win, xproto.ConfigWindowX|xproto.ConfigWindowY, []uint32{uint32(int32(x)), uint32(int32(y))})
	if err != nil {
		return fmt.Errorf("failed to move window: %w", err)
	}
	w.disp.Flush()
	return nil
}

// Size returns the client area size.
func (w *Window) Size() (Size, error) {
	if err := w.check(); err != nil {
		return Size{}, err
	}
	r, err := w.disp.Geometry(w.win)
	if err != nil {
		return Size{}, fmt.Errorf("failed to get window geometry: %w", err)
	}
	return Size{r.Width, r.Height}, nil
}

// SetSize resizes the client area. A window that may not be resized by the
// user gets its pinned size hints moved along.
func (w *Window) SetSize(size Size) error {
	if err := w.check(); err != nil {
		return err
	}
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", size.Width, size.Height)
	}
	if w.useSizeHints {
		w.normalHints.Flags |= icccmMinMax
		w.normalHints.MinWidth, w.normalHints.MaxWidth = uint(size.Width), uint(size.Width)
		w.normalHints.MinHeight, w.normalHints.MaxHeight = uint(size.Height), uint(size.Height)
		w.applyNormalHints()
	}
	err := w.disp.ConfigureWindow(w.win, xproto.ConfigWindowWidth|xproto.ConfigWindowHeight, []uint32{uint32(size.Width), uint32(size.Height)})
	if err != nil {
		return fmt.Errorf("failed to resize window: %w", err)
	}
	w.disp.Flush()
	return nil
}

// SetMinimumSize constrains interactive resizing. nil removes the bound.
// It has no effect on windows that cannot be resized.
func (w *Window) SetMinimumSize(size *Size) error {
	if err := w.check(); err != nil {
		return err
	}
	w.minSize = copySize(size)
	return w.applySizeConstraints()
}

// SetMaximumSize constrains interactive resizing. nil removes the bound.
// It has no effect on windows that cannot be resized.
func (w *Window) SetMaximumSize(size *Size) error {
	if err := w.check(); err != nil {
		return err
	}
	w.maxSize = copySize(size)
	return w.applySizeConstraints()
}

func copySize(s *Size) *Size {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func (w *Window) applySizeConstraints() error {
	if w.useSizeHints {
		return nil
	}
	w.normalHints.Flags &^= icccmMinMax
	if w.minSize != nil {
		w.normalHints.Flags |= icccmMin
		w.normalHints.MinWidth, w.normalHints.MinHeight = uint(w.minSize.Width), uint(w.minSize.Height)
	}
	if w.maxSize != nil {
		w.normalHints.Flags |= icccmMax
		w.normalHints.MaxWidth, w.normalHints.MaxHeight = uint(w.maxSize.Width), uint(w.maxSize.Height)
	}
	hints := w.normalHints
	if err := w.disp.SetNormalHints(w.win, &hints); err != nil {
		return fmt.Errorf("failed to set size constraints: %w", err)
	}
	w.disp.Flush()
	return nil
}
