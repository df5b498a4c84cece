package input

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xwin/internal/event"
)

// Button maps a core pointer button to a mouse button. Buttons 4 to 7 are
// wheel buttons and report false.
func Button(detail xproto.Button) (event.Button, bool) {
	switch detail {
	case 1:
		return event.ButtonLeft, true
	case 2:
		return event.ButtonMiddle, true
	case 3:
		return event.ButtonRight, true
	case 8:
		return event.ButtonExtra1, true
	case 9:
		return event.ButtonExtra2, true
	}
	return 0, false
}

// Wheel maps wheel buttons to an axis and a step: 4 and 5 scroll
// vertically, 6 and 7 horizontally.
func Wheel(detail xproto.Button) (event.Wheel, float32, bool) {
	switch detail {
	case 4:
		return event.WheelVertical, 1, true
	case 5:
		return event.WheelVertical, -1, true
	case 6:
		return event.WheelHorizontal, 1, true
	case 7:
		return event.WheelHorizontal, -1, true
	}
	return 0, 0, false
}
