package event

// Button is a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
	ButtonExtra1
	ButtonExtra2
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	case ButtonMiddle:
		return "Middle"
	case ButtonExtra1:
		return "Extra1"
	case ButtonExtra2:
		return "Extra2"
	}
	return "Unknown"
}

// Wheel is a scroll axis.
type Wheel int

const (
	WheelVertical Wheel = iota
	WheelHorizontal
)

func (w Wheel) String() string {
	if w == WheelHorizontal {
		return "Horizontal"
	}
	return "Vertical"
}
