// Package x11test provides an in-memory x11.Display for tests.
package x11test

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"

	"github.com/1broseidon/xwin/internal/x11"
)

const RootWindow xproto.Window = 1

var errNoWindow = errors.New("bad window")

// Window is the server-side state the fake keeps for each window.
type Window struct {
	Rect        x11.Rect
	Parent      xproto.Window
	MapState    byte
	EventMask   uint32
	Override    bool
	Destroyed   bool
	Props       map[xproto.Atom]*x11.Property
	Hints       *icccm.Hints
	NormalHints *icccm.NormalHints
	Motif       *motif.Hints
	Instance    string
	Class       string
	Protocols   []string
	Title       string
	Pid         uint
	Host        string
	Types       []string
	UserTime    xproto.Timestamp
	NetIcon     []uint
	Cursor      xproto.Cursor
	Extents     *ewmh.FrameExtents
}

// SentMessage is a client message sent through the fake.
type SentMessage struct {
	Dest xproto.Window
	Mask uint32
	Msg  x11.ClientMessage
}

// Conversion is a recorded ConvertSelection request.
type Conversion struct {
	Requestor xproto.Window
	Selection xproto.Atom
	Target    xproto.Atom
	Property  xproto.Atom
	Time      xproto.Timestamp
}

// CrtcConfig is a recorded SetCrtcConfig request.
type CrtcConfig struct {
	Crtc     randr.Crtc
	X, Y     int16
	Mode     randr.Mode
	Rotation uint16
	Outputs  []randr.Output
}

// Fake implements x11.Display in memory. Exported fields configure replies
// and record requests; guard direct access with Lock when tests run
// concurrently.
type Fake struct {
	sync.Mutex

	Caps   x11.Capabilities
	Width  int
	Height int

	Windows map[xproto.Window]*Window
	Focus   xproto.Window
	Queue   []xgb.Event
	Watched map[xproto.Window]bool

	// AutoVisible queues an unobscured VisibilityNotify on MapWindow.
	AutoVisible bool

	// GrabResults are consumed by GrabPointer in order; when empty grabs succeed.
	GrabResults []bool
	Grabbed     xproto.Window
	GrabCalls   int

	PointerX, PointerY int

	Sent        []SentMessage
	Conversions []Conversion
	Raised      []xproto.Window
	Focused     []xproto.Window
	Configured  []xproto.Window
	Flushes     int

	Resources   *randr.GetScreenResourcesReply
	Primary     randr.Output
	Outputs     map[randr.Output]*randr.GetOutputInfoReply
	Crtcs       map[randr.Crtc]*randr.GetCrtcInfoReply
	CrtcConfigs []CrtcConfig
	HeadRects   []x11.Rect

	Keymap      *x11.KeyboardMapping
	ModMap      *xproto.GetModifierMappingReply
	KeymapReads int

	Pixmaps map[xproto.Pixmap]bool
	Cursors map[xproto.Cursor]bool
	Icons   []*x11.Icon

	atoms    map[string]xproto.Atom
	names    map[xproto.Atom]string
	nextAtom xproto.Atom
	nextID   uint32
}

var _ x11.Display = (*Fake)(nil)

// New returns a fake 1920x1080 screen with no window manager.
func New() *Fake {
	f := &Fake{
		Width:    1920,
		Height:   1080,
		Windows:  map[xproto.Window]*Window{},
		Watched:  map[xproto.Window]bool{},
		Outputs:  map[randr.Output]*randr.GetOutputInfoReply{},
		Crtcs:    map[randr.Crtc]*randr.GetCrtcInfoReply{},
		Pixmaps:  map[xproto.Pixmap]bool{},
		Cursors:  map[xproto.Cursor]bool{},
		atoms:    map[string]xproto.Atom{},
		names:    map[xproto.Atom]string{},
		nextAtom: 1000,
		nextID:   0x200000,
	}
	f.Windows[RootWindow] = &Window{
		Rect:     x11.Rect{Width: f.Width, Height: f.Height},
		MapState: xproto.MapStateViewable,
		Props:    map[xproto.Atom]*x11.Property{},
	}
	return f
}

// AddWindow registers a window created by some other client.
func (f *Fake) AddWindow(win xproto.Window, parent xproto.Window, r x11.Rect) *Window {
	f.Lock()
	defer f.Unlock()
	w := &Window{Rect: r, Parent: parent, MapState: xproto.MapStateViewable, Props: map[xproto.Atom]*x11.Property{}}
	f.Windows[win] = w
	return w
}

// Push queues events as if the server had sent them.
func (f *Fake) Push(evs ...xgb.Event) {
	f.Lock()
	defer f.Unlock()
	f.Queue = append(f.Queue, evs...)
}

// Win returns the state of win or nil.
func (f *Fake) Win(win xproto.Window) *Window {
	f.Lock()
	defer f.Unlock()
	return f.Windows[win]
}

// SentOfType returns the client messages of the named type.
func (f *Fake) SentOfType(name string) []SentMessage {
	f.Lock()
	defer f.Unlock()
	atom := f.atoms[name]
	var out []SentMessage
	for _, s := range f.Sent {
		if s.Msg.Type == atom {
			out = append(out, s)
		}
	}
	return out
}

// SetProperty stores a raw property.
func (f *Fake) SetProperty(win xproto.Window, name string, typ string, format byte, value []byte) {
	prop := f.mustAtom(name)
	t := f.mustAtom(typ)
	f.Lock()
	defer f.Unlock()
	w := f.Windows[win]
	if w == nil {
		return
	}
	w.Props[prop] = &x11.Property{Type: t, Format: format, Value: value}
}

// Property returns the raw property named name on win.
func (f *Fake) Property(win xproto.Window, name string) *x11.Property {
	f.Lock()
	defer f.Unlock()
	w := f.Windows[win]
	atom, ok := f.atoms[name]
	if w == nil || !ok {
		return nil
	}
	return w.Props[atom]
}

func (f *Fake) mustAtom(name string) xproto.Atom {
	atom, _ := f.Atom(name)
	return atom
}

func (f *Fake) Root() xproto.Window { return RootWindow }

func (f *Fake) RootDepth() byte { return 24 }

func (f *Fake) ScreenSize() (int, int) { return f.Width, f.Height }

func (f *Fake) Capabilities() x11.Capabilities {
	f.Lock()
	defer f.Unlock()
	return f.Caps
}

func (f *Fake) Atom(name string) (xproto.Atom, error) {
	f.Lock()
	defer f.Unlock()
	if atom, ok := f.atoms[name]; ok {
		return atom, nil
	}
	f.nextAtom++
	f.atoms[name] = f.nextAtom
	f.names[f.nextAtom] = name
	return f.nextAtom, nil
}

func (f *Fake) AtomIfExists(name string) xproto.Atom {
	f.Lock()
	defer f.Unlock()
	return f.atoms[name]
}

func (f *Fake) AtomName(atom xproto.Atom) string {
	f.Lock()
	defer f.Unlock()
	if name, ok := f.names[atom]; ok {
		return name
	}
	return fmt.Sprintf("atom(%d)", atom)
}

func (f *Fake) NextEvent(win xproto.Window) (xgb.Event, bool) {
	f.Lock()
	defer f.Unlock()
	for i, ev := range f.Queue {
		if x11.Matches(ev, win) {
			f.Queue = append(f.Queue[:i:i], f.Queue[i+1:]...)
			return ev, true
		}
	}
	return nil, false
}

func (f *Fake) Watch(win xproto.Window) {
	f.Lock()
	defer f.Unlock()
	f.Watched[win] = true
}

// Unwatch also drops the events still queued for win.
func (f *Fake) Unwatch(win xproto.Window) {
	f.Lock()
	defer f.Unlock()
	delete(f.Watched, win)
	kept := f.Queue[:0]
	for _, ev := range f.Queue {
		if target, broadcast := x11.EventWindow(ev); broadcast || target != win {
			kept = append(kept, ev)
		}
	}
	f.Queue = kept
}

// WaitEvent never blocks: an empty queue ends the wait.
func (f *Fake) WaitEvent(win xproto.Window) (xgb.Event, bool) {
	return f.NextEvent(win)
}

func (f *Fake) CreateWindow(opts x11.CreateOptions) (xproto.Window, error) {
	f.Lock()
	defer f.Unlock()
	f.nextID++
	win := xproto.Window(f.nextID)
	f.Windows[win] = &Window{
		Rect:      x11.Rect{X: opts.X, Y: opts.Y, Width: opts.Width, Height: opts.Height},
		Parent:    RootWindow,
		MapState:  xproto.MapStateUnmapped,
		EventMask: opts.EventMask,
		Override:  opts.OverrideRedirect,
		Props:     map[xproto.Atom]*x11.Property{},
	}
	f.Watched[win] = true
	return win, nil
}

func (f *Fake) window(win xproto.Window) (*Window, error) {
	w := f.Windows[win]
	if w == nil || w.Destroyed {
		return nil, errNoWindow
	}
	return w, nil
}

func (f *Fake) SelectInput(win xproto.Window, mask uint32) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.EventMask = mask
	return nil
}

func (f *Fake) DestroyWindow(win xproto.Window) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.Destroyed = true
	w.MapState = xproto.MapStateUnmapped
	return nil
}

func (f *Fake) MapWindow(win xproto.Window) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.MapState = xproto.MapStateViewable
	if f.AutoVisible {
		f.Queue = append(f.Queue, xproto.VisibilityNotifyEvent{Window: win, State: xproto.VisibilityUnobscured})
	}
	return nil
}

func (f *Fake) UnmapWindow(win xproto.Window) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.MapState = xproto.MapStateUnmapped
	f.Queue = append(f.Queue, xproto.UnmapNotifyEvent{Event: win, Window: win})
	return nil
}

func (f *Fake) ConfigureWindow(win xproto.Window, mask uint16, values []uint32) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	f.Configured = append(f.Configured, win)
	i := 0
	next := func() uint32 {
		if i >= len(values) {
			return 0
		}
		v := values[i]
		i++
		return v
	}
	if mask&xproto.ConfigWindowX != 0 {
		w.Rect.X = int(int32(next()))
	}
	if mask&xproto.ConfigWindowY != 0 {
		w.Rect.Y = int(int32(next()))
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		w.Rect.Width = int(next())
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		w.Rect.Height = int(next())
	}
	if mask == xproto.ConfigWindowStackMode {
		f.Raised = append(f.Raised, win)
	}
	return nil
}

func (f *Fake) RaiseWindow(win xproto.Window) error {
	return f.ConfigureWindow(win, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

func (f *Fake) SetInputFocus(win xproto.Window, time xproto.Timestamp) error {
	f.Lock()
	defer f.Unlock()
	f.Focus = win
	f.Focused = append(f.Focused, win)
	return nil
}

func (f *Fake) InputFocus() (xproto.Window, error) {
	f.Lock()
	defer f.Unlock()
	return f.Focus, nil
}

func (f *Fake) Geometry(win xproto.Window) (x11.Rect, error) {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return x11.Rect{}, err
	}
	return w.Rect, nil
}

func (f *Fake) MapState(win xproto.Window) (byte, error) {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return 0, err
	}
	return w.MapState, nil
}

func (f *Fake) Parent(win xproto.Window) (xproto.Window, error) {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return 0, err
	}
	return w.Parent, nil
}

// TranslateCoordinates sums window offsets up to the root.
func (f *Fake) TranslateCoordinates(src, dst xproto.Window, x, y int) (int, int, error) {
	f.Lock()
	defer f.Unlock()
	sx, sy, err := f.absolute(src)
	if err != nil {
		return 0, 0, err
	}
	dx, dy, err := f.absolute(dst)
	if err != nil {
		return 0, 0, err
	}
	return x + sx - dx, y + sy - dy, nil
}

func (f *Fake) absolute(win xproto.Window) (int, int, error) {
	x, y := 0, 0
	for win != RootWindow {
		w, err := f.window(win)
		if err != nil {
			return 0, 0, err
		}
		x += w.Rect.X
		y += w.Rect.Y
		win = w.Parent
	}
	return x, y, nil
}

func (f *Fake) QueryPointer(win xproto.Window) (int, int, error) {
	f.Lock()
	defer f.Unlock()
	return f.PointerX, f.PointerY, nil
}

func (f *Fake) GrabPointer(win xproto.Window) (bool, error) {
	f.Lock()
	defer f.Unlock()
	f.GrabCalls++
	ok := true
	if len(f.GrabResults) > 0 {
		ok = f.GrabResults[0]
		f.GrabResults = f.GrabResults[1:]
	}
	if ok {
		f.Grabbed = win
	}
	return ok, nil
}

func (f *Fake) UngrabPointer() error {
	f.Lock()
	defer f.Unlock()
	f.Grabbed = 0
	return nil
}

func (f *Fake) newID() uint32 {
	f.nextID++
	return f.nextID
}

func (f *Fake) CreateHiddenCursor(win xproto.Window) (xproto.Cursor, error) {
	f.Lock()
	defer f.Unlock()
	c := xproto.Cursor(f.newID())
	f.Cursors[c] = true
	return c, nil
}

func (f *Fake) CreateStandardCursor(glyph uint16) (xproto.Cursor, error) {
	return f.CreateHiddenCursor(0)
}

func (f *Fake) DefineCursor(win xproto.Window, cursor xproto.Cursor) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.Cursor = cursor
	return nil
}

func (f *Fake) FreeCursor(cursor xproto.Cursor) error {
	f.Lock()
	defer f.Unlock()
	delete(f.Cursors, cursor)
	return nil
}

func (f *Fake) GetProperty(win xproto.Window, prop xproto.Atom) (*x11.Property, error) {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return nil, err
	}
	if p, ok := w.Props[prop]; ok {
		return p, nil
	}
	return &x11.Property{}, nil
}

func (f *Fake) ChangeProperty32(win xproto.Window, prop, typ xproto.Atom, values ...uint32) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		xgb.Put32(buf[i*4:], v)
	}
	w.Props[prop] = &x11.Property{Type: typ, Format: 32, Value: buf}
	return nil
}

func (f *Fake) DeleteProperty(win xproto.Window, prop xproto.Atom) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	delete(w.Props, prop)
	return nil
}

func (f *Fake) ConvertSelection(requestor xproto.Window, selection, target, property xproto.Atom, time xproto.Timestamp) error {
	f.Lock()
	defer f.Unlock()
	f.Conversions = append(f.Conversions, Conversion{requestor, selection, target, property, time})
	return nil
}

func (f *Fake) SendClientMessage(dest xproto.Window, mask uint32, msg x11.ClientMessage) error {
	f.Lock()
	defer f.Unlock()
	f.Sent = append(f.Sent, SentMessage{Dest: dest, Mask: mask, Msg: msg})
	return nil
}

func (f *Fake) WMHints(win xproto.Window) (*icccm.Hints, error) {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return nil, err
	}
	if w.Hints == nil {
		return nil, errors.New("no WM_HINTS")
	}
	h := *w.Hints
	return &h, nil
}

func (f *Fake) SetWMHints(win xproto.Window, hints *icccm.Hints) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	h := *hints
	w.Hints = &h
	return nil
}

func (f *Fake) SetNormalHints(win xproto.Window, hints *icccm.NormalHints) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	h := *hints
	w.NormalHints = &h
	return nil
}

func (f *Fake) SetMotifHints(win xproto.Window, hints *motif.Hints) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	h := *hints
	w.Motif = &h
	return nil
}

func (f *Fake) SetWMClass(win xproto.Window, instance, class string) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.Instance, w.Class = instance, class
	return nil
}

func (f *Fake) SetWMProtocols(win xproto.Window, protocols []string) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.Protocols = append([]string(nil), protocols...)
	return nil
}

func (f *Fake) SetTitle(win xproto.Window, title string) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.Title = title
	return nil
}

func (f *Fake) SetClientIdentity(win xproto.Window, pid uint, host string) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.Pid, w.Host = pid, host
	return nil
}

func (f *Fake) SetWindowType(win xproto.Window, types []string) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.Types = append([]string(nil), types...)
	return nil
}

func (f *Fake) SetUserTime(win xproto.Window, time xproto.Timestamp) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.UserTime = time
	return nil
}

func (f *Fake) SetNetWMIcon(win xproto.Window, width, height int, argb []uint) error {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.NetIcon = append([]uint{uint(width), uint(height)}, argb...)
	return nil
}

func (f *Fake) FrameExtents(win xproto.Window) (*ewmh.FrameExtents, error) {
	f.Lock()
	defer f.Unlock()
	w, err := f.window(win)
	if err != nil {
		return nil, err
	}
	if w.Extents == nil {
		return nil, errors.New("no _NET_FRAME_EXTENTS")
	}
	e := *w.Extents
	return &e, nil
}

func (f *Fake) CreateIconPixmaps(icon *x11.Icon) (xproto.Pixmap, xproto.Pixmap, error) {
	f.Lock()
	defer f.Unlock()
	pix := xproto.Pixmap(f.newID())
	mask := xproto.Pixmap(f.newID())
	f.Pixmaps[pix] = true
	f.Pixmaps[mask] = true
	f.Icons = append(f.Icons, icon)
	return pix, mask, nil
}

func (f *Fake) FreePixmap(p xproto.Pixmap) error {
	f.Lock()
	defer f.Unlock()
	delete(f.Pixmaps, p)
	return nil
}

func (f *Fake) ScreenResources() (*randr.GetScreenResourcesReply, error) {
	f.Lock()
	defer f.Unlock()
	if !f.Caps.RandR || f.Resources == nil {
		return nil, x11.ErrNoRandR
	}
	return f.Resources, nil
}

func (f *Fake) PrimaryOutput() (randr.Output, error) {
	f.Lock()
	defer f.Unlock()
	if !f.Caps.RandR {
		return 0, x11.ErrNoRandR
	}
	return f.Primary, nil
}

func (f *Fake) OutputInfo(out randr.Output, ts xproto.Timestamp) (*randr.GetOutputInfoReply, error) {
	f.Lock()
	defer f.Unlock()
	info, ok := f.Outputs[out]
	if !ok {
		return nil, fmt.Errorf("bad output %d", out)
	}
	return info, nil
}

func (f *Fake) CrtcInfo(crtc randr.Crtc, ts xproto.Timestamp) (*randr.GetCrtcInfoReply, error) {
	f.Lock()
	defer f.Unlock()
	info, ok := f.Crtcs[crtc]
	if !ok {
		return nil, fmt.Errorf("bad crtc %d", crtc)
	}
	c := *info
	return &c, nil
}

// SetCrtcConfig records the request and applies it to the crtc state.
func (f *Fake) SetCrtcConfig(crtc randr.Crtc, ts xproto.Timestamp, x, y int16, mode randr.Mode, rotation uint16, outputs []randr.Output) error {
	f.Lock()
	defer f.Unlock()
	f.CrtcConfigs = append(f.CrtcConfigs, CrtcConfig{crtc, x, y, mode, rotation, outputs})
	info, ok := f.Crtcs[crtc]
	if !ok {
		return fmt.Errorf("bad crtc %d", crtc)
	}
	info.X, info.Y, info.Mode, info.Rotation = x, y, mode, rotation
	if f.Resources != nil {
		for _, m := range f.Resources.Modes {
			if randr.Mode(m.Id) == mode {
				info.Width, info.Height = m.Width, m.Height
			}
		}
	}
	return nil
}

func (f *Fake) Heads() ([]x11.Rect, error) {
	f.Lock()
	defer f.Unlock()
	if !f.Caps.Xinerama {
		return nil, errors.New("xinerama extension not available")
	}
	return f.HeadRects, nil
}

func (f *Fake) KeyboardMapping() (*x11.KeyboardMapping, error) {
	f.Lock()
	defer f.Unlock()
	f.KeymapReads++
	if f.Keymap == nil {
		return nil, errors.New("no keyboard mapping")
	}
	return f.Keymap, nil
}

func (f *Fake) ModifierMapping() (*xproto.GetModifierMappingReply, error) {
	f.Lock()
	defer f.Unlock()
	if f.ModMap == nil {
		return &xproto.GetModifierMappingReply{KeycodesPerModifier: 1, Keycodes: make([]xproto.Keycode, 8)}, nil
	}
	return f.ModMap, nil
}

func (f *Fake) Flush() {
	f.Lock()
	defer f.Unlock()
	f.Flushes++
}
