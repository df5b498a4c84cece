package window

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/xwin/internal/focus"
	"github.com/1broseidon/xwin/internal/fullscreen"
	"github.com/1broseidon/xwin/internal/input"
	"github.com/1broseidon/xwin/internal/x11"
)

// Input method names accepted by Options.InputMethod.
const (
	InputMethodCompose = "compose"
	InputMethodNone    = "none"
)

// Options tune window behaviour.
type Options struct {
	// Retry bounds pointer grab attempts.
	Retry RetryPolicy
	// MapWaitLimit caps the pump iterations spent waiting for the window
	// manager to show or hide a window.
	MapWaitLimit int
	// InputMethod selects text composition: compose, or none for plain
	// keysym lookup.
	InputMethod string
}

func DefaultOptions() Options {
	return Options{
		Retry:        DefaultRetryPolicy(),
		MapWaitLimit: 2000,
		InputMethod:  InputMethodCompose,
	}
}

// Env holds what all windows of a process share: the display connection,
// the focus registry, the fullscreen controller and the keyboard map.
type Env struct {
	Display    x11.Display
	Focus      *focus.Coordinator
	Fullscreen *fullscreen.Controller
	Keymap     *input.Keymap
	Log        *slog.Logger
	Options    Options

	rawOnce sync.Once
	raw     atomic.Bool
}

func NewEnv(disp x11.Display, log *slog.Logger, opts Options) (*Env, error) {
	km, err := input.NewKeymap(disp)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyboard mapping: %w", err)
	}
	return &Env{
		Display:    disp,
		Focus:      focus.NewCoordinator(disp),
		Fullscreen: fullscreen.NewController(disp, log),
		Keymap:     km,
		Log:        log,
		Options:    opts,
	}, nil
}

// enableRawInput turns raw pointer motion on for the process. Only the
// first window to be initialized gets to decide.
func (e *Env) enableRawInput() {
	e.rawOnce.Do(func() {
		if !e.Display.Capabilities().XInput {
			e.Log.Warn("failed to initialize raw mouse input: XInputExtension not available")
			return
		}
		e.raw.Store(true)
	})
}

func (e *Env) rawInput() bool {
	return e.raw.Load()
}
