package config

import (
	"fmt"
	"sort"
)

var explainers = map[string]func(*Config) any{
	"window.title":            func(c *Config) any { return c.Window.Title },
	"window.width":            func(c *Config) any { return c.Window.Width },
	"window.height":           func(c *Config) any { return c.Window.Height },
	"window.fullscreen":       func(c *Config) any { return c.Window.Fullscreen },
	"window.titlebar":         func(c *Config) any { return c.Window.Titlebar },
	"window.resize":           func(c *Config) any { return c.Window.Resize },
	"window.close":            func(c *Config) any { return c.Window.Close },
	"window.key_repeat":       func(c *Config) any { return c.Window.KeyRepeat },
	"window.cursor_visible":   func(c *Config) any { return c.Window.CursorVisible },
	"window.cursor_grabbed":   func(c *Config) any { return c.Window.CursorGrabbed },
	"window.file_dropping":    func(c *Config) any { return c.Window.FileDropping },
	"tuning.grab_retries":     func(c *Config) any { return c.Tuning.GrabRetries },
	"tuning.grab_retry_delay": func(c *Config) any { return c.Tuning.GrabRetryDelay },
	"tuning.map_wait_limit":   func(c *Config) any { return c.Tuning.MapWaitLimit },
	"input_method":            func(c *Config) any { return c.InputMethod },
	"logging.level":           func(c *Config) any { return c.Logging.Level },
	"logging.file":            func(c *Config) any { return c.Logging.File },
	"logging.max_size_mb":     func(c *Config) any { return c.Logging.MaxSizeMB },
}

// Paths lists every path accepted by Explain.
func Paths() []string {
	paths := make([]string, 0, len(explainers))
	for p := range explainers {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Explain returns the effective value at a dotted path such as
// "tuning.grab_retries" and where it came from.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}
	get, ok := explainers[path]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown path: %s", path)
	}
	if src, ok := res.Sources[path]; ok {
		return get(res.Config), src, nil
	}
	return get(res.Config), Source{Kind: SourceDefault}, nil
}
