package window

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/xwin/internal/x11"
)

// convertIcon turns RGBA8 pixels into the server icon (BGRA plus a 1-bit
// mask with a bit per pixel set when alpha is non-zero, LSB first, rows of
// (width+7)/8 bytes) and the ARGB words of _NET_WM_ICON.
func convertIcon(width, height int, rgba []byte) (*x11.Icon, []uint, error) {
	if width <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("invalid icon size %dx%d", width, height)
	}
	if len(rgba) < width*height*4 {
		return nil, nil, fmt.Errorf("icon needs %d bytes, got %d", width*height*4, len(rgba))
	}

	n := width * height
	icon := &x11.Icon{
		Width:  width,
		Height: height,
		BGRA:   make([]byte, n*4),
	}
	argb := make([]uint, n)
	for i := 0; i < n; i++ {
		r, g, b, a := rgba[i*4], rgba[i*4+1], rgba[i*4+2], rgba[i*4+3]
		icon.BGRA[i*4+0] = b
		icon.BGRA[i*4+1] = g
		icon.BGRA[i*4+2] = r
		icon.BGRA[i*4+3] = a
		argb[i] = uint(a)<<24 | uint(r)<<16 | uint(g)<<8 | uint(b)
	}

	pitch := (width + 7) / 8
	icon.Mask = make([]byte, pitch*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if rgba[(y*width+x)*4+3] > 0 {
				icon.Mask[y*pitch+x/8] |= 1 << (x % 8)
			}
		}
	}
	return icon, argb, nil
}

// SetIcon replaces the window icon. rgba holds width*height RGBA8 pixels.
func (w *Window) SetIcon(width, height int, rgba []byte) error {
	if err := w.check(); err != nil {
		return err
	}
	icon, argb, err := convertIcon(width, height, rgba)
	if err != nil {
		return err
	}

	pixmap, mask, err := w.disp.CreateIconPixmaps(icon)
	if err != nil {
		return fmt.Errorf("failed to set the window icon: %w", err)
	}
	w.freeIcon()
	w.iconPixmap, w.iconMask = pixmap, mask

	hints, err := w.disp.WMHints(w.win)
	if err != nil {
		hints = &icccm.Hints{}
	}
	hints.Flags |= icccm.HintIconPixmap | icccm.HintIconMask
	hints.IconPixmap = pixmap
	hints.IconMask = mask
	if err := w.disp.SetWMHints(w.win, hints); err != nil {
		return fmt.Errorf("failed to set icon hints: %w", err)
	}
	if err := w.disp.SetNetWMIcon(w.win, width, height, argb); err != nil {
		return fmt.Errorf("failed to set _NET_WM_ICON: %w", err)
	}
	w.disp.Flush()
	return nil
}

func (w *Window) freeIcon() {
	for _, p := range []xproto.Pixmap{w.iconPixmap, w.iconMask} {
		if p == 0 {
			continue
		}
		if err := w.disp.FreePixmap(p); err != nil {
			w.log.Debug("failed to free icon pixmap", "error", err)
		}
	}
	w.iconPixmap, w.iconMask = 0, 0
}
