package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/1broseidon/xwin/internal/config"
	"github.com/1broseidon/xwin/internal/event"
	"github.com/1broseidon/xwin/internal/logging"
	"github.com/1broseidon/xwin/internal/platform"
)

const idleSleep = 10 * time.Millisecond

type runFlags struct {
	path       string
	title      string
	fullscreen bool
	adopt      string
	cursor     string
	count      int
	logLevel   string
}

func runWindow(args []string, stdout, stderr io.Writer) int {
	var f runFlags
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.path, "path", "", pathUsage)
	fs.StringVar(&f.title, "title", "", "Window title (overrides config)")
	fs.BoolVar(&f.fullscreen, "fullscreen", false, "Open fullscreen (overrides config)")
	fs.StringVar(&f.adopt, "adopt", "", "Adopt an existing window by id (decimal or 0x hex)")
	fs.StringVar(&f.cursor, "cursor", "", "Pointer shape: arrow, hand, text, wait, crosshair, sizeall")
	fs.IntVar(&f.count, "count", 0, "Exit after this many events (0 = until closed)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (overrides config)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: xwin run [options]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Open a window and print one line per event until it is closed.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	res, err := loadConfig(f.path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	cfg := res.Config
	if f.title != "" {
		cfg.Window.Title = f.title
	}
	if f.fullscreen {
		cfg.Window.Fullscreen = true
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}

	log, closer, err := logging.New(logging.Options{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		Stderr:    stderr,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer closer.Close()

	backend, err := platform.NewBackend(log, cfg.BackendOptions())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer backend.Close()

	win, err := openOrAdopt(backend, cfg, f.adopt)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer win.Close()

	if err := applySettings(win, cfg.Window, f.cursor, log); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := printEvents(ctx, win, stdout, f.count); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func openOrAdopt(backend platform.Backend, cfg *config.Config, adopt string) (platform.Window, error) {
	if adopt != "" {
		handle, err := parseHandle(adopt)
		if err != nil {
			return nil, err
		}
		return backend.Adopt(handle)
	}
	return backend.Open(cfg.WindowConfig(backend.DesktopMode().BitsPerPixel))
}

func parseHandle(s string) (platform.WindowHandle, error) {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return platform.WindowHandle(id), nil
}

// applySettings pushes the post-creation state from the config onto win.
func applySettings(win platform.Window, s config.WindowSettings, cursor string, log *slog.Logger) error {
	win.SetKeyRepeatEnabled(s.KeyRepeat)
	if err := win.SetMouseCursorVisible(s.CursorVisible); err != nil {
		return err
	}
	if s.CursorGrabbed {
		if err := win.SetMouseCursorGrabbed(true); err != nil {
			return err
		}
	}
	if err := win.SetFileDroppingEnabled(s.FileDropping); err != nil {
		return err
	}
	if cursor != "" {
		if err := win.SetMouseCursor(platform.CursorShape(cursor)); err != nil {
			return err
		}
	}
	if size, err := win.Size(); err == nil {
		log.Info("window ready", "handle", win.Handle(), "width", size.Width, "height", size.Height)
	}
	return nil
}

// printEvents writes one line per event until the window is closed, ctx is
// cancelled or limit events were printed.
func printEvents(ctx context.Context, win platform.Window, w io.Writer, limit int) error {
	printed := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if err := win.PumpEvents(); err != nil {
			return err
		}
		for {
			ev, ok := win.PollEvent()
			if !ok {
				break
			}
			fmt.Fprintln(w, event.Format(ev))
			printed++
			if ev.Kind() == event.KindClosed || (limit > 0 && printed >= limit) {
				return nil
			}
		}
		time.Sleep(idleSleep)
	}
}
