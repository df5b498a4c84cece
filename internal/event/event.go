// Package event defines the uniform window event vocabulary.
package event

import "fmt"

// Event is one of the concrete event types in this package. Events are
// values and carry no reference to the window that produced them.
type Event interface {
	Kind() Kind
}

// Kind tags the concrete type of an Event.
type Kind int

const (
	KindFocusGained Kind = iota
	KindFocusLost
	KindResized
	KindClosed
	KindKeyPressed
	KindKeyReleased
	KindTextEntered
	KindMouseButtonPressed
	KindMouseButtonReleased
	KindMouseWheelScrolled
	KindMouseMoved
	KindMouseMovedRaw
	KindMouseEntered
	KindMouseLeft
	KindFilesDropped
)

var kindNames = map[Kind]string{
	KindFocusGained:         "FocusGained",
	KindFocusLost:           "FocusLost",
	KindResized:             "Resized",
	KindClosed:              "Closed",
	KindKeyPressed:          "KeyPressed",
	KindKeyReleased:         "KeyReleased",
	KindTextEntered:         "TextEntered",
	KindMouseButtonPressed:  "MouseButtonPressed",
	KindMouseButtonReleased: "MouseButtonReleased",
	KindMouseWheelScrolled:  "MouseWheelScrolled",
	KindMouseMoved:          "MouseMoved",
	KindMouseMovedRaw:       "MouseMovedRaw",
	KindMouseEntered:        "MouseEntered",
	KindMouseLeft:           "MouseLeft",
	KindFilesDropped:        "FilesDropped",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type FocusGained struct{}
type FocusLost struct{}
type Closed struct{}
type MouseEntered struct{}
type MouseLeft struct{}

type Resized struct {
	Width  uint32
	Height uint32
}

// KeyPressed and KeyReleased carry the modifier state at the time of the event.
type KeyPressed struct {
	Code    Key
	Alt     bool
	Control bool
	Shift   bool
	System  bool
}

type KeyReleased struct {
	Code    Key
	Alt     bool
	Control bool
	Shift   bool
	System  bool
}

type TextEntered struct {
	Unicode rune
}

type MouseButtonPressed struct {
	Button Button
	X, Y   int
}

type MouseButtonReleased struct {
	Button Button
	X, Y   int
}

type MouseWheelScrolled struct {
	Wheel Wheel
	Delta float32
	X, Y  int
}

type MouseMoved struct {
	X, Y int
}

// MouseMovedRaw is an unaccelerated relative pointer motion.
type MouseMovedRaw struct {
	DX, DY int
}

type FilesDropped struct {
	Paths []string
	X, Y  int
}

// NewFilesDropped copies paths so the event does not alias caller memory.
func NewFilesDropped(paths []string, x, y int) FilesDropped {
	return FilesDropped{Paths: append([]string(nil), paths...), X: x, Y: y}
}

func (FocusGained) Kind() Kind { return KindFocusGained }
func (FocusLost) Kind() Kind { return KindFocusLost }
func (Resized) Kind() Kind { return KindResized }
func (Closed) Kind() Kind { return KindClosed }
func (KeyPressed) Kind() Kind { return KindKeyPressed }
func (KeyReleased) Kind() Kind { return KindKeyReleased }
func (TextEntered) Kind() Kind { return KindTextEntered }
func (MouseButtonPressed) Kind() Kind { return KindMouseButtonPressed }
func (MouseButtonReleased) Kind() Kind { return KindMouseButtonReleased }
func (MouseWheelScrolled) Kind() Kind { return KindMouseWheelScrolled }
func (MouseMoved) Kind() Kind { return KindMouseMoved }
func (MouseMovedRaw) Kind() Kind { return KindMouseMovedRaw }
func (MouseEntered) Kind() Kind { return KindMouseEntered }
func (MouseLeft) Kind() Kind { return KindMouseLeft }
func (FilesDropped) Kind() Kind { return KindFilesDropped }

// Format renders an event as a single log line.
func Format(ev Event) string {
	switch e := ev.(type) {
	case Resized:
		return fmt.Sprintf("Resized %dx%d", e.Width, e.Height)
	case KeyPressed:
		return fmt.Sprintf("KeyPressed %v%s", e.Code, mods(e.Alt, e.Control, e.Shift, e.System))
	case KeyReleased:
		return fmt.Sprintf("KeyReleased %v%s", e.Code, mods(e.Alt, e.Control, e.Shift, e.System))
	case TextEntered:
		return fmt.Sprintf("TextEntered %q (U+%04X)", e.Unicode, e.Unicode)
	case MouseButtonPressed:
		return fmt.Sprintf("MouseButtonPressed %v at %d,%d", e.Button, e.X, e.Y)
	case MouseButtonReleased:
		return fmt.Sprintf("MouseButtonReleased %v at %d,%d", e.Button, e.X, e.Y)
	case MouseWheelScrolled:
		return fmt.Sprintf("MouseWheelScrolled %v %+g at %d,%d", e.Wheel, e.Delta, e.X, e.Y)
	case MouseMoved:
		return fmt.Sprintf("MouseMoved %d,%d", e.X, e.Y)
	case MouseMovedRaw:
		return fmt.Sprintf("MouseMovedRaw %+d,%+d", e.DX, e.DY)
	case FilesDropped:
		return fmt.Sprintf("FilesDropped %q at %d,%d", e.Paths, e.X, e.Y)
	case nil:
		return "<nil>"
	}
	return ev.Kind().String()
}

func mods(alt, control, shift, system bool) string {
	s := ""
	if control {
		s += " +ctrl"
	}
	if alt {
		s += " +alt"
	}
	if shift {
		s += " +shift"
	}
	if system {
		s += " +system"
	}
	return s
}
