package x11

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection owns the single X11 connection of the process. Every window
// borrows it; it is safe for use from multiple goroutines.
type Connection struct {
	XUtil *xgbutil.XUtil

	root xproto.Window

	atoms *AtomCache
	log   *slog.Logger

	probeOnce sync.Once
	caps      Capabilities

	// queueMu serializes access to the shared xgbutil event queue and
	// guards watched.
	queueMu sync.Mutex
	watched map[xproto.Window]bool
}

// NewConnection establishes a connection to the X11 server named by $DISPLAY.
func NewConnection(log *slog.Logger) (*Connection, error) {
	if log == nil {
		log = slog.Default()
	}
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to open display: %w", err)
	}

	c := &Connection{
		XUtil: xu,
		root:  xu.RootWin(),
		log:   log,
	}
	c.atoms = NewAtomCache(func(name string, onlyIfExists bool) (xproto.Atom, error) {
		return xprop.Atom(xu, name, onlyIfExists)
	})
	return c, nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

func (c *Connection) Root() xproto.Window { return c.root }

func (c *Connection) RootDepth() byte { return c.XUtil.Screen().RootDepth }

func (c *Connection) ScreenSize() (int, int) {
	s := c.XUtil.Screen()
	return int(s.WidthInPixels), int(s.HeightInPixels)
}

// Capabilities returns the probed server and window manager features. The
// probe runs once per connection.
func (c *Connection) Capabilities() Capabilities {
	c.probeOnce.Do(func() {
		c.caps = probe(c)
		c.log.Debug("display capabilities",
			"ewmh", c.caps.EWMH,
			"wm", c.caps.WMName,
			"randr", c.caps.RandR,
			"xinput", c.caps.XInput,
			"xinerama", c.caps.Xinerama,
			"wayland", c.caps.IncompatibleCompositor)
	})
	return c.caps
}

func (c *Connection) Atom(name string) (xproto.Atom, error) { return c.atoms.Atom(name) }

func (c *Connection) AtomIfExists(name string) xproto.Atom { return c.atoms.Lookup(name) }

func (c *Connection) AtomName(atom xproto.Atom) string {
	if name, ok := c.atoms.Name(atom); ok {
		return name
	}
	name, err := xprop.AtomName(c.XUtil, atom)
	if err != nil {
		return fmt.Sprintf("atom(%d)", atom)
	}
	return name
}

func (c *Connection) Flush() {
	c.XUtil.Conn().Sync()
}

func (c *Connection) initRandR() error {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return fmt.Errorf("randr init failed: %w", err)
	}
	return nil
}
