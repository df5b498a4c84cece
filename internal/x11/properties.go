package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
)

// GetProperty reads a whole property of any type. A missing property is
// returned with Type set to xproto.AtomNone.
func (c *Connection) GetProperty(win xproto.Window, prop xproto.Atom) (*Property, error) {
	reply, err := xproto.GetProperty(c.XUtil.Conn(), false, win, prop,
		xproto.GetPropertyTypeAny, 0, (1<<32)-1).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get property %s: %w", c.AtomName(prop), err)
	}
	return &Property{Type: reply.Type, Format: reply.Format, Value: reply.Value}, nil
}

func (c *Connection) ChangeProperty32(win xproto.Window, prop, typ xproto.Atom, values ...uint32) error {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		xgb.Put32(buf[i*4:], v)
	}
	err := xproto.ChangePropertyChecked(c.XUtil.Conn(), xproto.PropModeReplace, win, prop, typ,
		32, uint32(len(values)), buf).Check()
	if err != nil {
		return fmt.Errorf("failed to change property %s: %w", c.AtomName(prop), err)
	}
	return nil
}

func (c *Connection) DeleteProperty(win xproto.Window, prop xproto.Atom) error {
	return xproto.DeletePropertyChecked(c.XUtil.Conn(), win, prop).Check()
}

func (c *Connection) ConvertSelection(requestor xproto.Window, selection, target, property xproto.Atom, time xproto.Timestamp) error {
	return xproto.ConvertSelectionChecked(c.XUtil.Conn(), requestor, selection, target, property, time).Check()
}

// SendClientMessage sends msg to dest. The message is built by hand rather
// than through the ewmh request helpers, which type-assert int payloads and
// panic on uint values.
func (c *Connection) SendClientMessage(dest xproto.Window, mask uint32, msg ClientMessage) error {
	ev := msg.Event()
	err := xproto.SendEventChecked(c.XUtil.Conn(), false, dest, mask, string(ev.Bytes())).Check()
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", c.AtomName(msg.Type), err)
	}
	return nil
}

func (c *Connection) WMHints(win xproto.Window) (*icccm.Hints, error) {
	return icccm.WmHintsGet(c.XUtil, win)
}

func (c *Connection) SetWMHints(win xproto.Window, hints *icccm.Hints) error {
	return icccm.WmHintsSet(c.XUtil, win, hints)
}

func (c *Connection) SetNormalHints(win xproto.Window, hints *icccm.NormalHints) error {
	return icccm.WmNormalHintsSet(c.XUtil, win, hints)
}

func (c *Connection) SetMotifHints(win xproto.Window, hints *motif.Hints) error {
	return motif.WmHintsSet(c.XUtil, win, hints)
}

func (c *Connection) SetWMClass(win xproto.Window, instance, class string) error {
	return icccm.WmClassSet(c.XUtil, win, &icccm.WmClass{Instance: instance, Class: class})
}

func (c *Connection) SetWMProtocols(win xproto.Window, protocols []string) error {
	return icccm.WmProtocolsSet(c.XUtil, win, protocols)
}

// SetTitle sets both the UTF-8 EWMH names and the legacy ICCCM names.
func (c *Connection) SetTitle(win xproto.Window, title string) error {
	if err := ewmh.WmNameSet(c.XUtil, win, title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := ewmh.WmIconNameSet(c.XUtil, win, title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_ICON_NAME: %w", err)
	}
	if err := icccm.WmNameSet(c.XUtil, win, title); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}
	if err := icccm.WmIconNameSet(c.XUtil, win, title); err != nil {
		return fmt.Errorf("failed to set WM_ICON_NAME: %w", err)
	}
	return nil
}

// SetClientIdentity publishes _NET_WM_PID together with WM_CLIENT_MACHINE,
// which window managers need to interpret the pid.
func (c *Connection) SetClientIdentity(win xproto.Window, pid uint, host string) error {
	if err := ewmh.WmPidSet(c.XUtil, win, pid); err != nil {
		return fmt.Errorf("failed to set _NET_WM_PID: %w", err)
	}
	if err := icccm.WmClientMachineSet(c.XUtil, win, host); err != nil {
		return fmt.Errorf("failed to set WM_CLIENT_MACHINE: %w", err)
	}
	return nil
}

func (c *Connection) SetWindowType(win xproto.Window, types []string) error {
	return ewmh.WmWindowTypeSet(c.XUtil, win, types)
}

func (c *Connection) SetUserTime(win xproto.Window, time xproto.Timestamp) error {
	return ewmh.WmUserTimeSet(c.XUtil, win, uint(time))
}

func (c *Connection) SetNetWMIcon(win xproto.Window, width, height int, argb []uint) error {
	return ewmh.WmIconSet(c.XUtil, win, []ewmh.WmIcon{{
		Width:  uint(width),
		Height: uint(height),
		Data:   argb,
	}})
}

func (c *Connection) FrameExtents(win xproto.Window) (*ewmh.FrameExtents, error) {
	return ewmh.FrameExtentsGet(c.XUtil, win)
}
