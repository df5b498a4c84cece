package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xinerama"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// ErrNoRandR is returned by RandR requests when the extension is missing.
var ErrNoRandR = errors.New("randr extension not available")

// Monitors retrieves all active monitors using XRandR
func (c *Connection) Monitors() ([]Monitor, error) {
	resources, err := c.ScreenResources()
	if err != nil {
		return nil, err
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := c.CrtcInfo(crtc, resources.ConfigTimestamp)
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		if outputInfo, err := c.OutputInfo(crtcInfo.Outputs[0], resources.ConfigTimestamp); err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

func (c *Connection) ScreenResources() (*randr.GetScreenResourcesReply, error) {
	if !c.Capabilities().RandR {
		return nil, ErrNoRandR
	}
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}
	return resources, nil
}

// PrimaryOutput returns the output marked primary, or 0 when none is.
func (c *Connection) PrimaryOutput() (randr.Output, error) {
	if !c.Capabilities().RandR {
		return 0, ErrNoRandR
	}
	reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.root).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to get primary output: %w", err)
	}
	return reply.Output, nil
}

func (c *Connection) OutputInfo(out randr.Output, ts xproto.Timestamp) (*randr.GetOutputInfoReply, error) {
	if !c.Capabilities().RandR {
		return nil, ErrNoRandR
	}
	reply, err := randr.GetOutputInfo(c.XUtil.Conn(), out, ts).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get output info: %w", err)
	}
	return reply, nil
}

func (c *Connection) CrtcInfo(crtc randr.Crtc, ts xproto.Timestamp) (*randr.GetCrtcInfoReply, error) {
	if !c.Capabilities().RandR {
		return nil, ErrNoRandR
	}
	reply, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, ts).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get crtc info: %w", err)
	}
	return reply, nil
}

func (c *Connection) SetCrtcConfig(crtc randr.Crtc, ts xproto.Timestamp, x, y int16, mode randr.Mode, rotation uint16, outputs []randr.Output) error {
	if !c.Capabilities().RandR {
		return ErrNoRandR
	}
	_, err := randr.SetCrtcConfig(c.XUtil.Conn(), crtc, xproto.TimeCurrentTime, ts, x, y, mode, rotation, outputs).Reply()
	if err != nil {
		return fmt.Errorf("failed to set crtc config: %w", err)
	}
	return nil
}

// Heads returns the Xinerama screens, used for placement when RandR is absent.
func (c *Connection) Heads() ([]Rect, error) {
	if !c.Capabilities().Xinerama {
		return nil, fmt.Errorf("xinerama extension not available")
	}
	heads, err := xinerama.PhysicalHeads(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to query xinerama heads: %w", err)
	}
	rects := make([]Rect, 0, len(heads))
	for _, h := range heads {
		rects = append(rects, Rect{X: h.X(), Y: h.Y(), Width: h.Width(), Height: h.Height()})
	}
	return rects, nil
}
