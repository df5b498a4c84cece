package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"
)

// CreateWindow creates an unmapped top-level window as a child of the root.
func (c *Connection) CreateWindow(opts CreateOptions) (xproto.Window, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate window id: %w", err)
	}

	depth := opts.Depth
	if depth == 0 {
		depth = screen.RootDepth
	}
	visual := opts.Visual
	if visual == 0 {
		visual = screen.RootVisual
	}

	colormap, err := xproto.NewColormapId(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate colormap id: %w", err)
	}
	if err := xproto.CreateColormapChecked(conn, xproto.ColormapAllocNone, colormap, c.root, visual).Check(); err != nil {
		return 0, fmt.Errorf("failed to create colormap: %w", err)
	}

	override := uint32(0)
	if opts.OverrideRedirect {
		override = 1
	}

	// Value list order follows the bit positions of the mask (low to high).
	err = xproto.CreateWindowChecked(
		conn,
		depth,
		wid,
		c.root,
		int16(opts.X), int16(opts.Y),
		uint16(opts.Width), uint16(opts.Height),
		0,
		xproto.WindowClassInputOutput,
		visual,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwOverrideRedirect|xproto.CwEventMask|xproto.CwColormap,
		[]uint32{0, 0, override, opts.EventMask, uint32(colormap)},
	).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to create window: %w", err)
	}
	c.Watch(wid)
	return wid, nil
}

func (c *Connection) SelectInput(win xproto.Window, mask uint32) error {
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), win, xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		return fmt.Errorf("failed to select input: %w", err)
	}
	return nil
}

func (c *Connection) DestroyWindow(win xproto.Window) error {
	return xproto.DestroyWindowChecked(c.XUtil.Conn(), win).Check()
}

func (c *Connection) MapWindow(win xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), win).Check()
}

func (c *Connection) UnmapWindow(win xproto.Window) error {
	return xproto.UnmapWindowChecked(c.XUtil.Conn(), win).Check()
}

// ConfigureWindow moves, resizes or restacks a window. Values follow the bit
// order of mask.
func (c *Connection) ConfigureWindow(win xproto.Window, mask uint16, values []uint32) error {
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), win, mask, values).Check()
}

func (c *Connection) RaiseWindow(win xproto.Window) error {
	return c.ConfigureWindow(win, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

func (c *Connection) SetInputFocus(win xproto.Window, time xproto.Timestamp) error {
	return xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot, win, time).Check()
}

func (c *Connection) InputFocus() (xproto.Window, error) {
	reply, err := xproto.GetInputFocus(c.XUtil.Conn()).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to get input focus: %w", err)
	}
	return reply.Focus, nil
}

// Geometry returns the position of win relative to its parent and its size.
func (c *Connection) Geometry(win xproto.Window) (Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return Rect{}, fmt.Errorf("failed to get geometry: %w", err)
	}
	return Rect{X: int(geom.X), Y: int(geom.Y), Width: int(geom.Width), Height: int(geom.Height)}, nil
}

func (c *Connection) MapState(win xproto.Window) (byte, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to get window attributes: %w", err)
	}
	return attrs.MapState, nil
}

func (c *Connection) Parent(win xproto.Window) (xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to query tree: %w", err)
	}
	return tree.Parent, nil
}

func (c *Connection) TranslateCoordinates(src, dst xproto.Window, x, y int) (int, int, error) {
	reply, err := xproto.TranslateCoordinates(c.XUtil.Conn(), src, dst, int16(x), int16(y)).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to translate coordinates: %w", err)
	}
	return int(reply.DstX), int(reply.DstY), nil
}

// QueryPointer returns the pointer position relative to win.
func (c *Connection) QueryPointer(win xproto.Window) (int, int, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query pointer: %w", err)
	}
	return int(reply.WinX), int(reply.WinY), nil
}

// GrabPointer confines the pointer to win. It reports false when another
// client holds the grab.
func (c *Connection) GrabPointer(win xproto.Window) (bool, error) {
	reply, err := xproto.GrabPointer(
		c.XUtil.Conn(),
		true,
		win,
		0,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		win,
		xproto.CursorNone,
		xproto.TimeCurrentTime,
	).Reply()
	if err != nil {
		return false, fmt.Errorf("failed to grab pointer: %w", err)
	}
	return reply.Status == xproto.GrabStatusSuccess, nil
}

func (c *Connection) UngrabPointer() error {
	return xproto.UngrabPointerChecked(c.XUtil.Conn(), xproto.TimeCurrentTime).Check()
}

// CreateHiddenCursor builds a fully transparent 1x1 cursor.
func (c *Connection) CreateHiddenCursor(win xproto.Window) (xproto.Cursor, error) {
	conn := c.XUtil.Conn()

	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreatePixmapChecked(conn, 1, pix, xproto.Drawable(win), 1, 1).Check(); err != nil {
		return 0, fmt.Errorf("failed to create cursor pixmap: %w", err)
	}
	defer xproto.FreePixmap(conn, pix)

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(pix), xproto.GcForeground, []uint32{0}).Check(); err != nil {
		return 0, fmt.Errorf("failed to create cursor gc: %w", err)
	}
	xproto.PolyFillRectangle(conn, xproto.Drawable(pix), gc, []xproto.Rectangle{{X: 0, Y: 0, Width: 1, Height: 1}})
	xproto.FreeGC(conn, gc)

	cursor, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateCursorChecked(conn, cursor, pix, pix, 0, 0, 0, 0, 0, 0, 0, 0).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to create hidden cursor: %w", err)
	}
	return cursor, nil
}

// CreateStandardCursor loads a glyph from the core cursor font.
func (c *Connection) CreateStandardCursor(glyph uint16) (xproto.Cursor, error) {
	cursor, err := xcursor.CreateCursor(c.XUtil, glyph)
	if err != nil {
		return 0, fmt.Errorf("failed to create cursor %d: %w", glyph, err)
	}
	return cursor, nil
}

func (c *Connection) DefineCursor(win xproto.Window, cursor xproto.Cursor) error {
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), win, xproto.CwCursor, []uint32{uint32(cursor)}).Check()
}

func (c *Connection) FreeCursor(cursor xproto.Cursor) error {
	return xproto.FreeCursorChecked(c.XUtil.Conn(), cursor).Check()
}
