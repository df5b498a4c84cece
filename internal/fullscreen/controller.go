// Package fullscreen switches the physical display mode for fullscreen
// windows and restores it when they leave fullscreen.
package fullscreen

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xwin/internal/x11"
)

var (
	ErrNoMatchingMode     = errors.New("no matching video mode")
	ErrHolderBusy         = errors.New("another window holds fullscreen")
	ErrOutputDisconnected = errors.New("output disconnected")
	ErrRejectedTransition = errors.New("rejected fullscreen transition")
)

// State is the fullscreen state of the process.
type State int

const (
	Windowed State = iota
	Fullscreen
)

func (s State) String() string {
	if s == Fullscreen {
		return "fullscreen"
	}
	return "windowed"
}

type action int

const (
	actEnter action = iota
	actExit
)

var transitions = map[State]map[action]State{
	Windowed:   {actEnter: Fullscreen},
	Fullscreen: {actExit: Windowed},
}

// saved is the crtc configuration replaced by a mode switch.
type saved struct {
	crtc   randr.Crtc
	output randr.Output
	mode   randr.Mode
}

// Controller owns the display mode. One Controller is shared by all
// windows of a process; at most one of them holds fullscreen at a time.
type Controller struct {
	disp x11.Display
	log  *slog.Logger

	mu     sync.Mutex
	state  State
	holder xproto.Window
	old    *saved
}

func NewController(disp x11.Display, log *slog.Logger) *Controller {
	return &Controller{disp: disp, log: log}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Holder returns the window whose mode switch is active, 0 when none.
func (c *Controller) Holder() xproto.Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.holder
}

// Enter switches the primary output to mode on behalf of win. It reports
// whether a switch happened: a mode equal to the desktop mode needs none.
// All failures leave the display untouched and the window may carry on
// windowed.
func (c *Controller) Enter(win xproto.Window, mode VideoMode) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Fullscreen && c.holder != win {
		return false, ErrHolderBusy
	}
	to, ok := transitions[c.state][actEnter]
	if !ok {
		return false, fmt.Errorf("%w: enter while %s", ErrRejectedTransition, c.state)
	}

	if mode == c.desktopMode() {
		return false, nil
	}

	res, err := c.disp.ScreenResources()
	if err != nil {
		return false, err
	}
	output, err := c.primaryOutput(res)
	if err != nil {
		return false, err
	}
	info, err := c.disp.OutputInfo(output, res.ConfigTimestamp)
	if err != nil {
		return false, err
	}
	if info.Connection == randr.ConnectionDisconnected {
		return false, fmt.Errorf("%w: %s", ErrOutputDisconnected, info.Name)
	}
	crtc, err := c.disp.CrtcInfo(info.Crtc, res.ConfigTimestamp)
	if err != nil {
		return false, err
	}

	var target randr.Mode
	found := false
	for _, m := range res.Modes {
		w, h := modeSize(m, crtc.Rotation)
		if w == mode.Width && h == mode.Height {
			target = randr.Mode(m.Id)
			found = true
			break
		}
	}
	if !found {
		return false, fmt.Errorf("%w: %dx%d", ErrNoMatchingMode, mode.Width, mode.Height)
	}

	old := &saved{crtc: info.Crtc, output: output, mode: crtc.Mode}
	err = c.disp.SetCrtcConfig(info.Crtc, res.ConfigTimestamp, crtc.X, crtc.Y, target, crtc.Rotation, []randr.Output{output})
	if err != nil {
		return false, err
	}

	c.old = old
	c.holder = win
	c.state = to
	c.log.Debug("switched video mode", "window", win, "mode", mode, "crtc", info.Crtc)
	return true, nil
}

// Exit restores the mode replaced by win's Enter. It does nothing unless win
// holds fullscreen. When the restore fails win keeps holding fullscreen and
// the saved mode is kept for a later Exit.
func (c *Controller) Exit(win xproto.Window) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.holder != win || win == 0 {
		return nil
	}
	to, ok := transitions[c.state][actExit]
	if !ok {
		return fmt.Errorf("%w: exit while %s", ErrRejectedTransition, c.state)
	}

	if err := c.restore(c.old); err != nil {
		return err
	}
	c.old = nil
	c.holder = 0
	c.state = to
	return nil
}

func (c *Controller) restore(old *saved) error {
	res, err := c.disp.ScreenResources()
	if err != nil {
		return err
	}

	crtcID, output := old.crtc, old.output
	crtc, err := c.disp.CrtcInfo(crtcID, res.ConfigTimestamp)
	if err != nil {
		// the crtc went away: put the mode back on the primary output
		output, err = c.primaryOutput(res)
		if err != nil {
			return err
		}
		info, err := c.disp.OutputInfo(output, res.ConfigTimestamp)
		if err != nil {
			return err
		}
		crtcID = info.Crtc
		if crtc, err = c.disp.CrtcInfo(crtcID, res.ConfigTimestamp); err != nil {
			return err
		}
	}

	err = c.disp.SetCrtcConfig(crtcID, res.ConfigTimestamp, crtc.X, crtc.Y, old.mode, crtc.Rotation, []randr.Output{output})
	if err != nil {
		return err
	}
	c.log.Debug("restored video mode", "crtc", crtcID, "mode", old.mode)
	return nil
}

// primaryOutput returns the output marked primary or the first one.
func (c *Controller) primaryOutput(res *randr.GetScreenResourcesReply) (randr.Output, error) {
	output, err := c.disp.PrimaryOutput()
	if err != nil {
		return 0, err
	}
	if output != 0 {
		return output, nil
	}
	if len(res.Outputs) == 0 {
		return 0, errors.New("no outputs")
	}
	return res.Outputs[0], nil
}

// primaryCrtc returns the crtc driving the primary output.
func (c *Controller) primaryCrtc() (*randr.GetScreenResourcesReply, *randr.GetOutputInfoReply, *randr.GetCrtcInfoReply, error) {
	res, err := c.disp.ScreenResources()
	if err != nil {
		return nil, nil, nil, err
	}
	output, err := c.primaryOutput(res)
	if err != nil {
		return nil, nil, nil, err
	}
	info, err := c.disp.OutputInfo(output, res.ConfigTimestamp)
	if err != nil {
		return nil, nil, nil, err
	}
	if info.Connection == randr.ConnectionDisconnected {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrOutputDisconnected, info.Name)
	}
	crtc, err := c.disp.CrtcInfo(info.Crtc, res.ConfigTimestamp)
	if err != nil {
		return nil, nil, nil, err
	}
	return res, info, crtc, nil
}

// DesktopMode returns the current mode of the primary output, or the root
// window size when RandR is unavailable.
func (c *Controller) DesktopMode() VideoMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desktopMode()
}

func (c *Controller) desktopMode() VideoMode {
	bpp := int(c.disp.RootDepth())
	res, _, crtc, err := c.primaryCrtc()
	if err == nil {
		if m, ok := findMode(res.Modes, crtc.Mode); ok {
			w, h := modeSize(m, crtc.Rotation)
			return VideoMode{Width: w, Height: h, BitsPerPixel: bpp}
		}
	}
	w, h := c.disp.ScreenSize()
	return VideoMode{Width: w, Height: h, BitsPerPixel: bpp}
}

// Modes lists the modes of the primary output, largest first.
func (c *Controller) Modes() []VideoMode {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, info, crtc, err := c.primaryCrtc()
	if err != nil {
		return []VideoMode{c.desktopMode()}
	}
	bpp := int(c.disp.RootDepth())
	var modes []VideoMode
	for _, id := range info.Modes {
		m, ok := findMode(res.Modes, id)
		if !ok {
			continue
		}
		w, h := modeSize(m, crtc.Rotation)
		modes = append(modes, VideoMode{Width: w, Height: h, BitsPerPixel: bpp})
	}
	if len(modes) == 0 {
		return []VideoMode{c.desktopMode()}
	}
	return sortModes(modes)
}

// PrimaryPosition returns the top-left corner of the primary output. Without
// RandR the first Xinerama head stands in for it.
func (c *Controller) PrimaryPosition() (int, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _, crtc, err := c.primaryCrtc()
	if err == nil {
		return int(crtc.X), int(crtc.Y), nil
	}
	if errors.Is(err, x11.ErrNoRandR) {
		if heads, herr := c.disp.Heads(); herr == nil && len(heads) > 0 {
			return heads[0].X, heads[0].Y, nil
		}
	}
	return 0, 0, err
}
