package x11

import (
	"os"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// absolutePositionWMs report a window's root-relative position without
// including their own decorations.
var absolutePositionWMs = []string{"Enlightenment", "FVWM", "i3"}

// Capabilities is the memoized result of probing the server and the running
// window manager.
type Capabilities struct {
	// EWMH is true when an EWMH compliant window manager is running.
	EWMH bool
	// WMName is the window manager's _NET_WM_NAME, empty when unknown.
	WMName string
	RandR  bool
	// XInput reports the XInputExtension; raw pointer input depends on it.
	XInput   bool
	Xinerama bool
	// IncompatibleCompositor is set when a Wayland compositor hosts the
	// X server, in which case drag and drop advertisement is unsupported.
	IncompatibleCompositor bool
}

// AbsolutePositionGood reports whether the window manager is known to place
// windows at the requested coordinates with decorations shifted outward.
func (c Capabilities) AbsolutePositionGood() bool {
	if !c.EWMH {
		return false
	}
	for _, name := range absolutePositionWMs {
		if c.WMName == name {
			return true
		}
	}
	return false
}

func probe(c *Connection) Capabilities {
	caps := Capabilities{
		IncompatibleCompositor: os.Getenv("WAYLAND_DISPLAY") != "",
	}

	// _NET_SUPPORTING_WM_CHECK on the root names a child window that must
	// carry the same property pointing at itself.
	if child, err := ewmh.SupportingWmCheckGet(c.XUtil, c.root); err == nil && child != 0 {
		if check, err := ewmh.SupportingWmCheckGet(c.XUtil, child); err == nil && check == child {
			caps.EWMH = true
			if name, err := ewmh.WmNameGet(c.XUtil, child); err == nil {
				caps.WMName = name
			}
		}
	}

	caps.RandR = c.initRandR() == nil
	caps.XInput = hasExtension(c, "XInputExtension")
	caps.Xinerama = hasExtension(c, "XINERAMA")
	return caps
}

func hasExtension(c *Connection, name string) bool {
	reply, err := xproto.QueryExtension(c.XUtil.Conn(), uint16(len(name)), name).Reply()
	if err != nil {
		return false
	}
	return reply.Present
}
