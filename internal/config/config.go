package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/xwin/internal/platform"
)

// WindowSettings describes the window opened by the CLI and the state applied
// right after it is created.
type WindowSettings struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`

	// Decorations and controls requested from the window manager.
	Titlebar bool `yaml:"titlebar"`
	Resize   bool `yaml:"resize"`
	Close    bool `yaml:"close"`

	KeyRepeat     bool `yaml:"key_repeat"`
	CursorVisible bool `yaml:"cursor_visible"`
	CursorGrabbed bool `yaml:"cursor_grabbed"`
	FileDropping  bool `yaml:"file_dropping"`
}

// Tuning holds the bounded waits of the window backend.
type Tuning struct {
	GrabRetries    int           `yaml:"grab_retries"`
	GrabRetryDelay time.Duration `yaml:"grab_retry_delay"`
	// MapWaitLimit caps the event pump iterations spent waiting for a map
	// state change.
	MapWaitLimit int `yaml:"map_wait_limit"`
}

type Logging struct {
	Level     string `yaml:"level"`       // debug, info, warn, error
	File      string `yaml:"file"`        // empty logs to stderr
	MaxSizeMB int    `yaml:"max_size_mb"` // 0 disables rotation
}

// Config is the effective configuration after defaults and files are merged.
type Config struct {
	Window      WindowSettings `yaml:"window"`
	Tuning      Tuning         `yaml:"tuning"`
	InputMethod string         `yaml:"input_method"`
	Logging     Logging        `yaml:"logging"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowSettings{
			Title:         "xwin",
			Width:         800,
			Height:        600,
			Titlebar:      true,
			Resize:        true,
			Close:         true,
			KeyRepeat:     true,
			CursorVisible: true,
		},
		Tuning: Tuning{
			GrabRetries:    5,
			GrabRetryDelay: 50 * time.Millisecond,
			MapWaitLimit:   2000,
		},
		InputMethod: platform.InputMethodCompose,
		Logging: Logging{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.Window.Height <= 0 {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("height must be > 0")}
	}
	if c.Tuning.GrabRetries < 1 {
		return &ValidationError{Path: "tuning.grab_retries", Err: fmt.Errorf("grab_retries must be >= 1")}
	}
	if c.Tuning.GrabRetryDelay < 0 {
		return &ValidationError{Path: "tuning.grab_retry_delay", Err: fmt.Errorf("grab_retry_delay must not be negative")}
	}
	if c.Tuning.MapWaitLimit < 1 {
		return &ValidationError{Path: "tuning.map_wait_limit", Err: fmt.Errorf("map_wait_limit must be >= 1")}
	}
	switch c.InputMethod {
	case platform.InputMethodCompose, platform.InputMethodNone:
	default:
		return &ValidationError{Path: "input_method", Err: fmt.Errorf("input_method must be one of: compose, none")}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	return nil
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Style converts the decoration switches to a window style.
func (s WindowSettings) Style() platform.Style {
	style := platform.StyleNone
	if s.Titlebar {
		style |= platform.StyleTitlebar
	}
	if s.Resize {
		style |= platform.StyleResize
	}
	if s.Close {
		style |= platform.StyleClose
	}
	return style
}

// BackendOptions returns the tunables shared by all windows.
func (c *Config) BackendOptions() platform.Options {
	return platform.Options{
		GrabAttempts: c.Tuning.GrabRetries,
		GrabDelay:    c.Tuning.GrabRetryDelay,
		MapWaitLimit: c.Tuning.MapWaitLimit,
		InputMethod:  c.InputMethod,
	}
}

// WindowConfig returns the creation parameters; bitsPerPixel is usually the
// depth of the desktop mode.
func (c *Config) WindowConfig(bitsPerPixel int) platform.WindowConfig {
	return platform.WindowConfig{
		Title: c.Window.Title,
		Mode: platform.VideoMode{
			Width:        c.Window.Width,
			Height:       c.Window.Height,
			BitsPerPixel: bitsPerPixel,
		},
		Style:      c.Window.Style(),
		Fullscreen: c.Window.Fullscreen,
	}
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
