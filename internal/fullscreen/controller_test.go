package fullscreen

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xwin/internal/x11"
	"github.com/1broseidon/xwin/internal/x11/x11test"
)

const (
	winA xproto.Window = 0x100
	winB xproto.Window = 0x200

	crtcID   randr.Crtc   = 10
	outputID randr.Output = 20
)

// newDisplay returns a fake with one output at (1920, 0) running 1920x1080.
func newDisplay() *x11test.Fake {
	d := x11test.New()
	d.Caps.RandR = true
	d.Resources = &randr.GetScreenResourcesReply{
		ConfigTimestamp: 5,
		Crtcs:           []randr.Crtc{crtcID},
		Outputs:         []randr.Output{outputID},
		Modes: []randr.ModeInfo{
			{Id: 1, Width: 1920, Height: 1080},
			{Id: 2, Width: 1280, Height: 720},
			{Id: 3, Width: 1024, Height: 768},
			{Id: 4, Width: 800, Height: 600},
		},
	}
	d.Primary = outputID
	d.Outputs[outputID] = &randr.GetOutputInfoReply{
		Crtc:       crtcID,
		Connection: randr.ConnectionConnected,
		Name:       []byte("DP-1"),
		Modes:      []randr.Mode{3, 1, 2, 1},
	}
	d.Crtcs[crtcID] = &randr.GetCrtcInfoReply{
		X: 1920, Width: 1920, Height: 1080,
		Mode:     1,
		Rotation: randr.RotationRotate0,
		Outputs:  []randr.Output{outputID},
	}
	return d
}

func newController(d *x11test.Fake) *Controller {
	return NewController(d, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEnterExitRestoresMode(t *testing.T) {
	d := newDisplay()
	c := newController(d)

	switched, err := c.Enter(winA, VideoMode{Width: 1280, Height: 720, BitsPerPixel: 24})
	if err != nil || !switched {
		t.Fatalf("expected mode switch, got %v, %v", switched, err)
	}
	if c.Holder() != winA || c.State() != Fullscreen {
		t.Fatalf("expected A to hold fullscreen, got %d (%v)", c.Holder(), c.State())
	}
	if len(d.CrtcConfigs) != 1 {
		t.Fatalf("expected 1 crtc config, got %d", len(d.CrtcConfigs))
	}
	cfg := d.CrtcConfigs[0]
	if cfg.Crtc != crtcID || cfg.Mode != 2 || cfg.X != 1920 || cfg.Y != 0 || cfg.Rotation != randr.RotationRotate0 {
		t.Fatalf("unexpected switch %+v", cfg)
	}
	if len(cfg.Outputs) != 1 || cfg.Outputs[0] != outputID {
		t.Fatalf("expected output %d, got %v", outputID, cfg.Outputs)
	}

	if err := c.Exit(winA); err != nil {
		t.Fatalf("Exit: %v", err)
	}
	if len(d.CrtcConfigs) != 2 {
		t.Fatalf("expected restore config, got %d configs", len(d.CrtcConfigs))
	}
	crtc := d.Crtcs[crtcID]
	if crtc.Mode != 1 || crtc.X != 1920 || crtc.Y != 0 {
		t.Fatalf("expected mode 1 at (1920, 0), got mode %d at (%d, %d)", crtc.Mode, crtc.X, crtc.Y)
	}
	if c.Holder() != 0 || c.State() != Windowed {
		t.Fatalf("expected holder released, got %d (%v)", c.Holder(), c.State())
	}

	if err := c.Exit(winA); err != nil {
		t.Fatalf("second Exit: %v", err)
	}
	if len(d.CrtcConfigs) != 2 {
		t.Fatalf("expected second exit to be a no-op, got %d configs", len(d.CrtcConfigs))
	}
}

func TestEnterDesktopModeSkipsSwitch(t *testing.T) {
	d := newDisplay()
	c := newController(d)

	desktop := c.DesktopMode()
	if desktop != (VideoMode{Width: 1920, Height: 1080, BitsPerPixel: 24}) {
		t.Fatalf("unexpected desktop mode %v", desktop)
	}
	switched, err := c.Enter(winA, desktop)
	if err != nil || switched {
		t.Fatalf("expected skipped switch, got %v, %v", switched, err)
	}
	if len(d.CrtcConfigs) != 0 {
		t.Fatalf("expected no crtc config, got %d", len(d.CrtcConfigs))
	}
	if c.Holder() != 0 {
		t.Fatalf("expected no holder, got %d", c.Holder())
	}
}

func TestEnterRotatedOutput(t *testing.T) {
	d := newDisplay()
	d.Crtcs[crtcID].Rotation = randr.RotationRotate90
	c := newController(d)

	if got := c.DesktopMode(); got.Width != 1080 || got.Height != 1920 {
		t.Fatalf("expected rotated desktop 1080x1920, got %v", got)
	}
	if _, err := c.Enter(winA, VideoMode{Width: 768, Height: 1024, BitsPerPixel: 24}); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	cfg := d.CrtcConfigs[0]
	if cfg.Mode != 3 || cfg.Rotation != randr.RotationRotate90 {
		t.Fatalf("expected mode 3 kept rotated, got %+v", cfg)
	}
}

func TestEnterHolderBusy(t *testing.T) {
	d := newDisplay()
	c := newController(d)

	if _, err := c.Enter(winA, VideoMode{Width: 800, Height: 600, BitsPerPixel: 24}); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if _, err := c.Enter(winB, VideoMode{Width: 1024, Height: 768, BitsPerPixel: 24}); !errors.Is(err, ErrHolderBusy) {
		t.Fatalf("expected ErrHolderBusy, got %v", err)
	}
	if err := c.Exit(winB); err != nil {
		t.Fatalf("Exit: %v", err)
	}
	if len(d.CrtcConfigs) != 1 || c.Holder() != winA {
		t.Fatalf("expected B unable to touch A's mode, got %d configs holder %d", len(d.CrtcConfigs), c.Holder())
	}
	if _, err := c.Enter(winA, VideoMode{Width: 1024, Height: 768, BitsPerPixel: 24}); !errors.Is(err, ErrRejectedTransition) {
		t.Fatalf("expected ErrRejectedTransition, got %v", err)
	}
}

func TestEnterSoftFailures(t *testing.T) {
	mode := VideoMode{Width: 1280, Height: 720, BitsPerPixel: 24}

	tests := []struct {
		name  string
		setup func(d *x11test.Fake)
		want  error
	}{
		{"no randr", func(d *x11test.Fake) { d.Caps.RandR = false }, x11.ErrNoRandR},
		{"disconnected", func(d *x11test.Fake) { d.Outputs[outputID].Connection = randr.ConnectionDisconnected }, ErrOutputDisconnected},
		{"no matching mode", func(d *x11test.Fake) { d.Resources.Modes = d.Resources.Modes[:1] }, ErrNoMatchingMode},
	}
	for _, tt := range tests {
		d := newDisplay()
		tt.setup(d)
		c := newController(d)

		switched, err := c.Enter(winA, mode)
		if switched || !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v, got %v, %v", tt.name, tt.want, switched, err)
		}
		if len(d.CrtcConfigs) != 0 || c.Holder() != 0 {
			t.Fatalf("%s: expected display untouched", tt.name)
		}
	}
}

func TestNoPrimaryUsesFirstOutput(t *testing.T) {
	d := newDisplay()
	d.Primary = 0
	c := newController(d)

	if _, err := c.Enter(winA, VideoMode{Width: 1280, Height: 720, BitsPerPixel: 24}); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if d.CrtcConfigs[0].Outputs[0] != outputID {
		t.Fatalf("expected first output used, got %v", d.CrtcConfigs[0].Outputs)
	}
}

func TestExitFailedRestoreKeepsSavedMode(t *testing.T) {
	d := newDisplay()
	c := newController(d)

	if _, err := c.Enter(winA, VideoMode{Width: 1280, Height: 720, BitsPerPixel: 24}); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	res := d.Resources
	d.Resources = nil

	if err := c.Exit(winA); err == nil {
		t.Fatalf("expected restore error without screen resources")
	}
	if c.Holder() != winA || c.State() != Fullscreen {
		t.Fatalf("expected A to keep fullscreen, got %d (%v)", c.Holder(), c.State())
	}
	if _, err := c.Enter(winB, VideoMode{Width: 1024, Height: 768, BitsPerPixel: 24}); !errors.Is(err, ErrHolderBusy) {
		t.Fatalf("expected ErrHolderBusy for B, got %v", err)
	}

	d.Resources = res
	if err := c.Exit(winA); err != nil {
		t.Fatalf("retried Exit: %v", err)
	}
	if mode := d.Crtcs[crtcID].Mode; mode != 1 {
		t.Fatalf("expected mode 1 restored, got %d", mode)
	}
	if c.Holder() != 0 || c.State() != Windowed {
		t.Fatalf("expected holder released, got %d (%v)", c.Holder(), c.State())
	}
}

func TestRestoreAfterCrtcVanished(t *testing.T) {
	d := newDisplay()
	c := newController(d)

	if _, err := c.Enter(winA, VideoMode{Width: 1280, Height: 720, BitsPerPixel: 24}); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	delete(d.Crtcs, crtcID)
	d.Crtcs[11] = &randr.GetCrtcInfoReply{Mode: 2, Outputs: []randr.Output{outputID}}
	d.Outputs[outputID].Crtc = 11

	if err := c.Exit(winA); err != nil {
		t.Fatalf("Exit: %v", err)
	}
	cfg := d.CrtcConfigs[len(d.CrtcConfigs)-1]
	if cfg.Crtc != 11 || cfg.Mode != 1 {
		t.Fatalf("expected mode 1 restored on crtc 11, got %+v", cfg)
	}
}

func TestModes(t *testing.T) {
	c := newController(newDisplay())

	want := []VideoMode{
		{Width: 1920, Height: 1080, BitsPerPixel: 24},
		{Width: 1280, Height: 720, BitsPerPixel: 24},
		{Width: 1024, Height: 768, BitsPerPixel: 24},
	}
	got := c.Modes()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestWithoutRandR(t *testing.T) {
	d := x11test.New()
	c := newController(d)

	want := VideoMode{Width: 1920, Height: 1080, BitsPerPixel: 24}
	if got := c.DesktopMode(); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := c.Modes(); len(got) != 1 || got[0] != want {
		t.Fatalf("expected only the desktop mode, got %v", got)
	}
	if _, _, err := c.PrimaryPosition(); !errors.Is(err, x11.ErrNoRandR) {
		t.Fatalf("expected ErrNoRandR, got %v", err)
	}
}

func TestPrimaryPosition(t *testing.T) {
	c := newController(newDisplay())
	x, y, err := c.PrimaryPosition()
	if err != nil || x != 1920 || y != 0 {
		t.Fatalf("expected (1920, 0), got (%d, %d) %v", x, y, err)
	}
}

func TestPrimaryPosition_XineramaFallback(t *testing.T) {
	d := x11test.New()
	d.Caps.Xinerama = true
	d.HeadRects = []x11.Rect{{X: 1280, Y: 0, Width: 1920, Height: 1080}, {Width: 1280, Height: 1024}}
	c := newController(d)

	x, y, err := c.PrimaryPosition()
	if err != nil || x != 1280 || y != 0 {
		t.Fatalf("expected first head at (1280, 0), got (%d, %d) %v", x, y, err)
	}
}
