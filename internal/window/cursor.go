package window

import (
	"fmt"

	"github.com/BurntSushi/xgbutil/xcursor"
)

// CursorShape names a standard pointer shape.
type CursorShape int

const (
	CursorArrow CursorShape = iota
	CursorHand
	CursorText
	CursorWait
	CursorCrosshair
	CursorSizeAll
)

var cursorGlyphs = map[CursorShape]uint16{
	CursorArrow:     xcursor.LeftPtr,
	CursorHand:      xcursor.Hand2,
	CursorText:      xcursor.XTerm,
	CursorWait:      xcursor.Watch,
	CursorCrosshair: xcursor.Crosshair,
	CursorSizeAll:   xcursor.Fleur,
}

func (s CursorShape) String() string {
	switch s {
	case CursorArrow:
		return "arrow"
	case CursorHand:
		return "hand"
	case CursorText:
		return "text"
	case CursorWait:
		return "wait"
	case CursorCrosshair:
		return "crosshair"
	case CursorSizeAll:
		return "sizeall"
	}
	return fmt.Sprintf("CursorShape(%d)", int(s))
}

// ParseCursorShape is the inverse of CursorShape.String.
func ParseCursorShape(name string) (CursorShape, error) {
	for shape := range cursorGlyphs {
		if shape.String() == name {
			return shape, nil
		}
	}
	return 0, fmt.Errorf("unknown cursor shape %q", name)
}

// SetMouseCursorVisible shows or hides the pointer over the window.
func (w *Window) SetMouseCursorVisible(visible bool) error {
	if err := w.check(); err != nil {
		return err
	}
	cursor := w.hiddenCursor
	if visible {
		cursor = w.lastCursor
	}
	if err := w.disp.DefineCursor(w.win, cursor); err != nil {
		return fmt.Errorf("failed to set cursor: %w", err)
	}
	w.cursorVisible = visible
	w.disp.Flush()
	return nil
}

// SetMouseCursor switches to a standard pointer shape. A hidden cursor
// stays hidden until shown again.
func (w *Window) SetMouseCursor(shape CursorShape) error {
	if err := w.check(); err != nil {
		return err
	}
	glyph, ok := cursorGlyphs[shape]
	if !ok {
		return fmt.Errorf("unknown cursor shape %v", shape)
	}
	cursor, err := w.disp.CreateStandardCursor(glyph)
	if err != nil {
		return fmt.Errorf("failed to create %v cursor: %w", shape, err)
	}
	if w.lastCursor != 0 {
		if err := w.disp.FreeCursor(w.lastCursor); err != nil {
			w.log.Debug("failed to free cursor", "error", err)
		}
	}
	w.lastCursor = cursor
	if w.cursorVisible {
		if err := w.disp.DefineCursor(w.win, cursor); err != nil {
			return fmt.Errorf("failed to set cursor: %w", err)
		}
	}
	w.disp.Flush()
	return nil
}
