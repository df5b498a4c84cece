package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
)

// Display is the set of server requests the window layer issues.
// *Connection talks to a real X server; x11test.Fake records calls in memory.
type Display interface {
	Root() xproto.Window
	RootDepth() byte
	ScreenSize() (width, height int)
	Capabilities() Capabilities

	Atom(name string) (xproto.Atom, error)
	AtomIfExists(name string) xproto.Atom
	AtomName(atom xproto.Atom) string

	// NextEvent removes and returns the oldest queued event addressed to win
	// without blocking. WaitEvent blocks until one arrives.
	NextEvent(win xproto.Window) (xgb.Event, bool)
	WaitEvent(win xproto.Window) (xgb.Event, bool)
	// Watch marks win as pumped by a window; queued events addressed to
	// windows nobody watches are discarded. CreateWindow watches the new
	// window.
	Watch(win xproto.Window)
	Unwatch(win xproto.Window)

	CreateWindow(opts CreateOptions) (xproto.Window, error)
	SelectInput(win xproto.Window, mask uint32) error
	DestroyWindow(win xproto.Window) error
	MapWindow(win xproto.Window) error
	UnmapWindow(win xproto.Window) error
	ConfigureWindow(win xproto.Window, mask uint16, values []uint32) error
	RaiseWindow(win xproto.Window) error
	SetInputFocus(win xproto.Window, time xproto.Timestamp) error
	InputFocus() (xproto.Window, error)
	Geometry(win xproto.Window) (Rect, error)
	MapState(win xproto.Window) (byte, error)
	Parent(win xproto.Window) (xproto.Window, error)
	TranslateCoordinates(src, dst xproto.Window, x, y int) (int, int, error)
	QueryPointer(win xproto.Window) (x, y int, err error)

	GrabPointer(win xproto.Window) (bool, error)
	UngrabPointer() error
	CreateHiddenCursor(win xproto.Window) (xproto.Cursor, error)
	CreateStandardCursor(glyph uint16) (xproto.Cursor, error)
	DefineCursor(win xproto.Window, cursor xproto.Cursor) error
	FreeCursor(cursor xproto.Cursor) error

	GetProperty(win xproto.Window, prop xproto.Atom) (*Property, error)
	ChangeProperty32(win xproto.Window, prop, typ xproto.Atom, values ...uint32) error
	DeleteProperty(win xproto.Window, prop xproto.Atom) error
	ConvertSelection(requestor xproto.Window, selection, target, property xproto.Atom, time xproto.Timestamp) error
	SendClientMessage(dest xproto.Window, mask uint32, msg ClientMessage) error

	WMHints(win xproto.Window) (*icccm.Hints, error)
	SetWMHints(win xproto.Window, hints *icccm.Hints) error
	SetNormalHints(win xproto.Window, hints *icccm.NormalHints) error
	SetMotifHints(win xproto.Window, hints *motif.Hints) error
	SetWMClass(win xproto.Window, instance, class string) error
	SetWMProtocols(win xproto.Window, protocols []string) error
	SetTitle(win xproto.Window, title string) error
	SetClientIdentity(win xproto.Window, pid uint, host string) error
	SetWindowType(win xproto.Window, types []string) error
	SetUserTime(win xproto.Window, time xproto.Timestamp) error
	SetNetWMIcon(win xproto.Window, width, height int, argb []uint) error
	FrameExtents(win xproto.Window) (*ewmh.FrameExtents, error)

	CreateIconPixmaps(icon *Icon) (pixmap, mask xproto.Pixmap, err error)
	FreePixmap(p xproto.Pixmap) error

	ScreenResources() (*randr.GetScreenResourcesReply, error)
	PrimaryOutput() (randr.Output, error)
	OutputInfo(out randr.Output, ts xproto.Timestamp) (*randr.GetOutputInfoReply, error)
	CrtcInfo(crtc randr.Crtc, ts xproto.Timestamp) (*randr.GetCrtcInfoReply, error)
	SetCrtcConfig(crtc randr.Crtc, ts xproto.Timestamp, x, y int16, mode randr.Mode, rotation uint16, outputs []randr.Output) error
	Heads() ([]Rect, error)

	KeyboardMapping() (*KeyboardMapping, error)
	ModifierMapping() (*xproto.GetModifierMappingReply, error)

	Flush()
}

// Rect is a window or monitor rectangle in root coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Property is the raw content of a window property.
type Property struct {
	Type   xproto.Atom
	Format byte
	Value  []byte
}

// Uint32s decodes a format-32 property value.
func (p *Property) Uint32s() []uint32 {
	if p == nil || p.Format != 32 {
		return nil
	}
	vals := make([]uint32, len(p.Value)/4)
	for i := range vals {
		vals[i] = xgb.Get32(p.Value[i*4:])
	}
	return vals
}

// ClientMessage is a format-32 client message.
type ClientMessage struct {
	Window xproto.Window
	Type   xproto.Atom
	Data   [5]uint32
}

// Event builds the wire event for msg.
func (m ClientMessage) Event() xproto.ClientMessageEvent {
	return xproto.ClientMessageEvent{
		Format: 32,
		Window: m.Window,
		Type:   m.Type,
		Data:   xproto.ClientMessageDataUnionData32New(m.Data[:]),
	}
}

// CreateOptions describes a new top-level window.
type CreateOptions struct {
	X, Y             int
	Width, Height    int
	Depth            byte
	Visual           xproto.Visualid
	EventMask        uint32
	OverrideRedirect bool
}

// Icon is a window icon in BGRA byte order with its 1-bit transparency mask.
type Icon struct {
	Width  int
	Height int
	BGRA   []byte
	Mask   []byte
}

// KeyboardMapping is the server keysym table.
type KeyboardMapping struct {
	MinKeycode        xproto.Keycode
	MaxKeycode        xproto.Keycode
	KeysymsPerKeycode int
	Keysyms           []xproto.Keysym
}

// KeysymsFor returns the keysym column for keycode.
func (km *KeyboardMapping) KeysymsFor(keycode xproto.Keycode) []xproto.Keysym {
	if km == nil || keycode < km.MinKeycode || keycode > km.MaxKeycode {
		return nil
	}
	y := int(keycode - km.MinKeycode)
	stride := km.KeysymsPerKeycode
	if (y+1)*stride > len(km.Keysyms) {
		return nil
	}
	return km.Keysyms[y*stride : (y+1)*stride]
}

var _ Display = (*Connection)(nil)
