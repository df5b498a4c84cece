package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xgraphics"
)

// CreateIconPixmaps uploads an icon as a root-depth pixmap plus a 1-bit mask
// pixmap, both owned by the caller.
func (c *Connection) CreateIconPixmaps(icon *Icon) (xproto.Pixmap, xproto.Pixmap, error) {
	if icon == nil || icon.Width <= 0 || icon.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid icon size")
	}
	if len(icon.BGRA) < icon.Width*icon.Height*4 {
		return 0, 0, fmt.Errorf("icon pixel buffer too short: %d bytes", len(icon.BGRA))
	}

	ximg := xgraphics.New(c.XUtil, image.Rect(0, 0, icon.Width, icon.Height))
	copy(ximg.Pix, icon.BGRA)
	if err := ximg.CreatePixmap(); err != nil {
		return 0, 0, fmt.Errorf("failed to create icon pixmap: %w", err)
	}
	if err := ximg.XDrawChecked(); err != nil {
		ximg.Destroy()
		return 0, 0, fmt.Errorf("failed to draw icon pixmap: %w", err)
	}

	mask, err := c.createBitmap(icon.Width, icon.Height, icon.Mask)
	if err != nil {
		ximg.Destroy()
		return 0, 0, err
	}
	return ximg.Pixmap, mask, nil
}

func (c *Connection) FreePixmap(p xproto.Pixmap) error {
	return xproto.FreePixmapChecked(c.XUtil.Conn(), p).Check()
}

// createBitmap uploads LSB-first rows of (width+7)/8 bytes into a depth 1
// pixmap, repadding rows to the server's scanline pad.
func (c *Connection) createBitmap(width, height int, bits []byte) (xproto.Pixmap, error) {
	conn := c.XUtil.Conn()
	setup := xproto.Setup(conn)

	pitch := (width + 7) / 8
	if len(bits) < pitch*height {
		return 0, fmt.Errorf("icon mask too short: %d bytes", len(bits))
	}
	pad := int(setup.BitmapFormatScanlinePad)
	if pad < 8 {
		pad = 8
	}
	serverPitch := ((width + pad - 1) / pad) * pad / 8
	msbFirst := setup.BitmapFormatBitOrder != xproto.ImageOrderLSBFirst

	data := make([]byte, serverPitch*height)
	for y := 0; y < height; y++ {
		row := bits[y*pitch : (y+1)*pitch]
		for x, b := range row {
			if msbFirst {
				b = reverseBits(b)
			}
			data[y*serverPitch+x] = b
		}
	}

	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreatePixmapChecked(conn, 1, pix, xproto.Drawable(c.root), uint16(width), uint16(height)).Check(); err != nil {
		return 0, fmt.Errorf("failed to create mask pixmap: %w", err)
	}
	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.FreePixmap(conn, pix)
		return 0, err
	}
	err = xproto.CreateGCChecked(conn, gc, xproto.Drawable(pix),
		xproto.GcForeground|xproto.GcBackground, []uint32{1, 0}).Check()
	if err != nil {
		xproto.FreePixmap(conn, pix)
		return 0, fmt.Errorf("failed to create mask gc: %w", err)
	}
	defer xproto.FreeGC(conn, gc)

	err = xproto.PutImageChecked(conn, xproto.ImageFormatXYBitmap, xproto.Drawable(pix), gc,
		uint16(width), uint16(height), 0, 0, 0, 1, data).Check()
	if err != nil {
		xproto.FreePixmap(conn, pix)
		return 0, fmt.Errorf("failed to upload icon mask: %w", err)
	}
	return pix, nil
}

func reverseBits(b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		r = r<<1 | b&1
		b >>= 1
	}
	return r
}
