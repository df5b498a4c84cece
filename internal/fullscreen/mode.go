package fullscreen

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/randr"
)

// VideoMode is a display resolution and depth.
type VideoMode struct {
	Width        int
	Height       int
	BitsPerPixel int
}

func (m VideoMode) String() string {
	return fmt.Sprintf("%dx%d-%d", m.Width, m.Height, m.BitsPerPixel)
}

// rotated reports whether a crtc rotation turns the output on its side.
func rotated(rotation uint16) bool {
	return rotation&(randr.RotationRotate90|randr.RotationRotate270) != 0
}

// modeSize returns the on-screen size of a mode under rotation.
func modeSize(info randr.ModeInfo, rotation uint16) (int, int) {
	if rotated(rotation) {
		return int(info.Height), int(info.Width)
	}
	return int(info.Width), int(info.Height)
}

func findMode(modes []randr.ModeInfo, id randr.Mode) (randr.ModeInfo, bool) {
	for _, m := range modes {
		if randr.Mode(m.Id) == id {
			return m, true
		}
	}
	return randr.ModeInfo{}, false
}

// sortModes orders modes largest first and drops duplicates.
func sortModes(modes []VideoMode) []VideoMode {
	sort.Slice(modes, func(i, j int) bool {
		a, b := modes[i], modes[j]
		if a.Width != b.Width {
			return a.Width > b.Width
		}
		if a.Height != b.Height {
			return a.Height > b.Height
		}
		return a.BitsPerPixel > b.BitsPerPixel
	})
	out := modes[:0]
	for i, m := range modes {
		if i > 0 && m == modes[i-1] {
			continue
		}
		out = append(out, m)
	}
	return out
}
