package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/1broseidon/xwin/internal/logging"
	"github.com/1broseidon/xwin/internal/platform"
	"github.com/1broseidon/xwin/internal/x11"
)

func runModes(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("modes", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	backend, err := platform.NewBackend(logging.Discard(), platform.Options{})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer backend.Close()

	desktop := backend.DesktopMode()
	for _, m := range backend.FullscreenModes() {
		marker := " "
		if m == desktop {
			marker = "*"
		}
		fmt.Fprintf(stdout, "%s %dx%d %dbpp\n", marker, m.Width, m.Height, m.BitsPerPixel)
	}
	return 0
}

func runProbe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	conn, err := x11.NewConnection(logging.Discard())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer conn.Close()

	printCapabilities(stdout, conn.Capabilities())
	w, h := conn.ScreenSize()
	fmt.Fprintf(stdout, "screen: %dx%d depth %d\n", w, h, conn.RootDepth())

	if !conn.Capabilities().RandR {
		return 0
	}
	monitors, err := conn.Monitors()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	printMonitors(stdout, monitors)
	return 0
}

func printMonitors(w io.Writer, monitors []x11.Monitor) {
	for _, m := range monitors {
		fmt.Fprintf(w, "monitor %d: %s %dx%d+%d+%d\n", m.ID, m.Name, m.Width, m.Height, m.X, m.Y)
	}
}

func printCapabilities(w io.Writer, caps x11.Capabilities) {
	wm := caps.WMName
	if wm == "" {
		wm = "-"
	}
	fmt.Fprintf(w, "ewmh: %t\n", caps.EWMH)
	fmt.Fprintf(w, "window manager: %s\n", wm)
	fmt.Fprintf(w, "absolute positions: %t\n", caps.AbsolutePositionGood())
	fmt.Fprintf(w, "randr: %t\n", caps.RandR)
	fmt.Fprintf(w, "xinput: %t\n", caps.XInput)
	fmt.Fprintf(w, "xinerama: %t\n", caps.Xinerama)
	fmt.Fprintf(w, "wayland compositor: %t\n", caps.IncompatibleCompositor)
}
