package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList accepts a single path or a list of paths:
//
//	include: "~/.config/xwin/local.yaml"
//
//	include:
//	  - "./tuning.yaml"
//	  - "./conf.d"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = IncludeList{value.Value}
		return nil
	case yaml.SequenceNode:
		paths := make(IncludeList, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			paths = append(paths, item.Value)
		}
		*l = paths
		return nil
	}
	return fmt.Errorf("include must be a string or list of strings")
}

// RawConfig mirrors Config with optional fields so that a file only
// overrides the keys it sets.
type RawConfig struct {
	Include     IncludeList        `yaml:"include"`
	Window      *RawWindowSettings `yaml:"window"`
	Tuning      *RawTuning         `yaml:"tuning"`
	InputMethod *string            `yaml:"input_method"`
	Logging     *RawLogging        `yaml:"logging"`
}

type RawWindowSettings struct {
	Title         *string `yaml:"title"`
	Width         *int    `yaml:"width"`
	Height        *int    `yaml:"height"`
	Fullscreen    *bool   `yaml:"fullscreen"`
	Titlebar      *bool   `yaml:"titlebar"`
	Resize        *bool   `yaml:"resize"`
	Close         *bool   `yaml:"close"`
	KeyRepeat     *bool   `yaml:"key_repeat"`
	CursorVisible *bool   `yaml:"cursor_visible"`
	CursorGrabbed *bool   `yaml:"cursor_grabbed"`
	FileDropping  *bool   `yaml:"file_dropping"`
}

type RawTuning struct {
	GrabRetries    *int           `yaml:"grab_retries"`
	GrabRetryDelay *time.Duration `yaml:"grab_retry_delay"`
	MapWaitLimit   *int           `yaml:"map_wait_limit"`
}

type RawLogging struct {
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
}

func pick[T any](base, over *T) *T {
	if over != nil {
		return over
	}
	return base
}

// merge returns r overridden by every key other sets. Includes are not
// carried over; they are resolved while loading.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := RawConfig{
		InputMethod: pick(r.InputMethod, other.InputMethod),
	}

	if r.Window != nil || other.Window != nil {
		var a, b RawWindowSettings
		if r.Window != nil {
			a = *r.Window
		}
		if other.Window != nil {
			b = *other.Window
		}
		out.Window = &RawWindowSettings{
			Title:         pick(a.Title, b.Title),
			Width:         pick(a.Width, b.Width),
			Height:        pick(a.Height, b.Height),
			Fullscreen:    pick(a.Fullscreen, b.Fullscreen),
			Titlebar:      pick(a.Titlebar, b.Titlebar),
			Resize:        pick(a.Resize, b.Resize),
			Close:         pick(a.Close, b.Close),
			KeyRepeat:     pick(a.KeyRepeat, b.KeyRepeat),
			CursorVisible: pick(a.CursorVisible, b.CursorVisible),
			CursorGrabbed: pick(a.CursorGrabbed, b.CursorGrabbed),
			FileDropping:  pick(a.FileDropping, b.FileDropping),
		}
	}

	if r.Tuning != nil || other.Tuning != nil {
		var a, b RawTuning
		if r.Tuning != nil {
			a = *r.Tuning
		}
		if other.Tuning != nil {
			b = *other.Tuning
		}
		out.Tuning = &RawTuning{
			GrabRetries:    pick(a.GrabRetries, b.GrabRetries),
			GrabRetryDelay: pick(a.GrabRetryDelay, b.GrabRetryDelay),
			MapWaitLimit:   pick(a.MapWaitLimit, b.MapWaitLimit),
		}
	}

	if r.Logging != nil || other.Logging != nil {
		var a, b RawLogging
		if r.Logging != nil {
			a = *r.Logging
		}
		if other.Logging != nil {
			b = *other.Logging
		}
		out.Logging = &RawLogging{
			Level:     pick(a.Level, b.Level),
			File:      pick(a.File, b.File),
			MaxSizeMB: pick(a.MaxSizeMB, b.MaxSizeMB),
		}
	}
	return out
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// BuildEffectiveConfig applies raw over the defaults. The result is not
// validated.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()
	set(&cfg.InputMethod, raw.InputMethod)

	if w := raw.Window; w != nil {
		set(&cfg.Window.Title, w.Title)
		set(&cfg.Window.Width, w.Width)
		set(&cfg.Window.Height, w.Height)
		set(&cfg.Window.Fullscreen, w.Fullscreen)
		set(&cfg.Window.Titlebar, w.Titlebar)
		set(&cfg.Window.Resize, w.Resize)
		set(&cfg.Window.Close, w.Close)
		set(&cfg.Window.KeyRepeat, w.KeyRepeat)
		set(&cfg.Window.CursorVisible, w.CursorVisible)
		set(&cfg.Window.CursorGrabbed, w.CursorGrabbed)
		set(&cfg.Window.FileDropping, w.FileDropping)
	}
	if t := raw.Tuning; t != nil {
		set(&cfg.Tuning.GrabRetries, t.GrabRetries)
		set(&cfg.Tuning.GrabRetryDelay, t.GrabRetryDelay)
		set(&cfg.Tuning.MapWaitLimit, t.MapWaitLimit)
	}
	if l := raw.Logging; l != nil {
		set(&cfg.Logging.Level, l.Level)
		set(&cfg.Logging.File, l.File)
		set(&cfg.Logging.MaxSizeMB, l.MaxSizeMB)
	}
	return cfg
}
