package event

// Key is a layout-resolved keyboard key.
type Key int

const (
	KeyUnknown Key = iota
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyNum0
	KeyNum1
	KeyNum2
	KeyNum3
	KeyNum4
	KeyNum5
	KeyNum6
	KeyNum7
	KeyNum8
	KeyNum9
	KeyEscape
	KeyLControl
	KeyLShift
	KeyLAlt
	KeyLSystem
	KeyRControl
	KeyRShift
	KeyRAlt
	KeyRSystem
	KeyMenu
	KeyLBracket
	KeyRBracket
	KeySemicolon
	KeyComma
	KeyPeriod
	KeyApostrophe
	KeySlash
	KeyBackslash
	KeyGrave
	KeyEqual
	KeyHyphen
	KeySpace
	KeyEnter
	KeyBackspace
	KeyTab
	KeyPageUp
	KeyPageDown
	KeyEnd
	KeyHome
	KeyInsert
	KeyDelete
	KeyAdd
	KeySubtract
	KeyMultiply
	KeyDivide
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyNumpad0
	KeyNumpad1
	KeyNumpad2
	KeyNumpad3
	KeyNumpad4
	KeyNumpad5
	KeyNumpad6
	KeyNumpad7
	KeyNumpad8
	KeyNumpad9
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyPause

	keyCount
)

var keyNames = [keyCount]string{
	"Unknown",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"Num0", "Num1", "Num2", "Num3", "Num4", "Num5", "Num6", "Num7", "Num8", "Num9",
	"Escape",
	"LControl", "LShift", "LAlt", "LSystem",
	"RControl", "RShift", "RAlt", "RSystem",
	"Menu",
	"LBracket", "RBracket", "Semicolon", "Comma", "Period", "Apostrophe",
	"Slash", "Backslash", "Grave", "Equal", "Hyphen",
	"Space", "Enter", "Backspace", "Tab",
	"PageUp", "PageDown", "End", "Home", "Insert", "Delete",
	"Add", "Subtract", "Multiply", "Divide",
	"Left", "Right", "Up", "Down",
	"Numpad0", "Numpad1", "Numpad2", "Numpad3", "Numpad4",
	"Numpad5", "Numpad6", "Numpad7", "Numpad8", "Numpad9",
	"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8",
	"F9", "F10", "F11", "F12", "F13", "F14", "F15",
	"Pause",
}

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return "Unknown"
	}
	return keyNames[k]
}
