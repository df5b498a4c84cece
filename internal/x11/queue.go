package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xevent"
)

// EventWindow returns the window an event is addressed to. Events that are
// relevant to every window, such as keyboard mapping changes, report
// broadcast as true.
func EventWindow(ev xgb.Event) (win xproto.Window, broadcast bool) {
	switch e := ev.(type) {
	case xproto.KeyPressEvent:
		return e.Event, false
	case xproto.KeyReleaseEvent:
		return e.Event, false
	case xproto.ButtonPressEvent:
		return e.Event, false
	case xproto.ButtonReleaseEvent:
		return e.Event, false
	case xproto.MotionNotifyEvent:
		return e.Event, false
	case xproto.EnterNotifyEvent:
		return e.Event, false
	case xproto.LeaveNotifyEvent:
		return e.Event, false
	case xproto.FocusInEvent:
		return e.Event, false
	case xproto.FocusOutEvent:
		return e.Event, false
	case xproto.ConfigureNotifyEvent:
		return e.Window, false
	case xproto.MapNotifyEvent:
		return e.Window, false
	case xproto.UnmapNotifyEvent:
		return e.Window, false
	case xproto.DestroyNotifyEvent:
		return e.Window, false
	case xproto.ReparentNotifyEvent:
		return e.Window, false
	case xproto.VisibilityNotifyEvent:
		return e.Window, false
	case xproto.PropertyNotifyEvent:
		return e.Window, false
	case xproto.ClientMessageEvent:
		return e.Window, false
	case xproto.SelectionNotifyEvent:
		return e.Requestor, false
	case xproto.ExposeEvent:
		return e.Window, false
	case xproto.MappingNotifyEvent:
		return 0, true
	}
	return 0, false
}

// Matches reports whether ev should be delivered to win.
func Matches(ev xgb.Event, win xproto.Window) bool {
	w, broadcast := EventWindow(ev)
	return broadcast || w == win
}

// NextEvent pulls whatever the server has sent and removes the oldest event
// addressed to win from the shared queue. Events for other windows stay
// queued in order.
func (c *Connection) NextEvent(win xproto.Window) (xgb.Event, bool) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()

	xevent.Read(c.XUtil, false)
	return c.takeEvent(win)
}

// WaitEvent blocks until an event addressed to win is available.
func (c *Connection) WaitEvent(win xproto.Window) (xgb.Event, bool) {
	for {
		if ev, ok := c.NextEvent(win); ok {
			return ev, true
		}
		ev, err := c.XUtil.Conn().WaitForEvent()
		if ev == nil && err == nil {
			// connection closed
			return nil, false
		}
		c.queueMu.Lock()
		xevent.Enqueue(c.XUtil, ev, err)
		c.queueMu.Unlock()
	}
}

func (c *Connection) Watch(win xproto.Window) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if c.watched == nil {
		c.watched = map[xproto.Window]bool{}
	}
	c.watched[win] = true
}

func (c *Connection) Unwatch(win xproto.Window) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	delete(c.watched, win)
}

// takeEvent removes the oldest event for win in a single pass over the
// queue. Protocol errors and events no watched window will ever take are
// dropped on the way. Callers hold queueMu.
func (c *Connection) takeEvent(win xproto.Window) (xgb.Event, bool) {
	xu := c.XUtil
	xu.EvqueueLck.Lock()
	defer xu.EvqueueLck.Unlock()

	var found xgb.Event
	kept := xu.Evqueue[:0]
	for _, item := range xu.Evqueue {
		if item.Err != nil {
			c.log.Debug("x11 protocol error", "error", item.Err)
			continue
		}
		if found == nil && Matches(item.Event, win) {
			found = item.Event
			continue
		}
		target, broadcast := EventWindow(item.Event)
		if !broadcast && target != win && !c.watched[target] {
			continue
		}
		kept = append(kept, item)
	}
	clear(xu.Evqueue[len(kept):])
	xu.Evqueue = kept
	return found, found != nil
}
