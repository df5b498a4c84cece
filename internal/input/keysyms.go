package input

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xwin/internal/event"
)

// Constants from /usr/include/X11/keysymdef.h
var keysymKeys = map[xproto.Keysym]event.Key{
	0xff1b: event.KeyEscape,
	0xffe3: event.KeyLControl,
	0xffe1: event.KeyLShift,
	0xffe9: event.KeyLAlt,
	0xffeb: event.KeyLSystem,
	0xffe4: event.KeyRControl,
	0xffe2: event.KeyRShift,
	0xffea: event.KeyRAlt,
	0xfe03: event.KeyRAlt, // ISO_Level3_Shift
	0xffec: event.KeyRSystem,
	0xff67: event.KeyMenu,
	0x5b:   event.KeyLBracket,
	0x5d:   event.KeyRBracket,
	0x3b:   event.KeySemicolon,
	0x2c:   event.KeyComma,
	0x2e:   event.KeyPeriod,
	0x27:   event.KeyApostrophe,
	0x2f:   event.KeySlash,
	0x5c:   event.KeyBackslash,
	0x60:   event.KeyGrave,
	0x3d:   event.KeyEqual,
	0x2d:   event.KeyHyphen,
	0x20:   event.KeySpace,
	0xff0d: event.KeyEnter,
	0xff8d: event.KeyEnter, // KP_Enter
	0xff08: event.KeyBackspace,
	0xff09: event.KeyTab,
	0xff55: event.KeyPageUp,
	0xff56: event.KeyPageDown,
	0xff57: event.KeyEnd,
	0xff50: event.KeyHome,
	0xff63: event.KeyInsert,
	0xffff: event.KeyDelete,
	0xffab: event.KeyAdd,
	0xffad: event.KeySubtract,
	0xffaa: event.KeyMultiply,
	0xffaf: event.KeyDivide,
	0xff51: event.KeyLeft,
	0xff52: event.KeyUp,
	0xff53: event.KeyRight,
	0xff54: event.KeyDown,
	0xff13: event.KeyPause,

	// keypad with num lock off
	0xff9e: event.KeyNumpad0,
	0xff9c: event.KeyNumpad1,
	0xff99: event.KeyNumpad2,
	0xff9b: event.KeyNumpad3,
	0xff96: event.KeyNumpad4,
	0xff9d: event.KeyNumpad5,
	0xff98: event.KeyNumpad6,
	0xff95: event.KeyNumpad7,
	0xff97: event.KeyNumpad8,
	0xff9a: event.KeyNumpad9,
}

// KeysymKey maps a keysym to a layout-independent key.
func KeysymKey(ks xproto.Keysym) event.Key {
	switch {
	case ks >= 'a' && ks <= 'z':
		return event.KeyA + event.Key(ks-'a')
	case ks >= 'A' && ks <= 'Z':
		return event.KeyA + event.Key(ks-'A')
	case ks >= '0' && ks <= '9':
		return event.KeyNum0 + event.Key(ks-'0')
	case ks >= 0xffb0 && ks <= 0xffb9: // KP_0..KP_9
		return event.KeyNumpad0 + event.Key(ks-0xffb0)
	case ks >= 0xffbe && ks <= 0xffcc: // F1..F15
		return event.KeyF1 + event.Key(ks-0xffbe)
	}
	if k, ok := keysymKeys[ks]; ok {
		return k
	}
	return event.KeyUnknown
}

var keysymControlRunes = map[xproto.Keysym]rune{
	0xff08: '\b',
	0xff09: '\t',
	0xff0d: '\r',
	0xff1b: 0x1b,
	0xffff: 0x7f,
	0xff80: ' ',  // KP_Space
	0xff8d: '\r', // KP_Enter
	0xffaa: '*',
	0xffab: '+',
	0xffad: '-',
	0xffae: '.',
	0xffaf: '/',
	0xffbd: '=',
}

// KeysymRune returns the character a keysym produces, or 0.
func KeysymRune(ks xproto.Keysym) rune {
	switch {
	case ks >= 0x20 && ks <= 0x7e, ks >= 0xa0 && ks <= 0xff:
		return rune(ks)
	case ks >= 0x01000100 && ks <= 0x0110ffff:
		return rune(ks - 0x01000000)
	case ks >= 0xffb0 && ks <= 0xffb9:
		return '0' + rune(ks-0xffb0)
	}
	return keysymControlRunes[ks]
}

type deadKey struct {
	combining rune
	spacing   rune
}

var deadKeys = map[xproto.Keysym]deadKey{
	0xfe50: {'\u0300', '`'},
	0xfe51: {'\u0301', '´'},
	0xfe52: {'\u0302', '^'},
	0xfe53: {'\u0303', '~'},
	0xfe54: {'\u0304', '¯'},
	0xfe55: {'\u0306', '˘'},
	0xfe56: {'\u0307', '˙'},
	0xfe57: {'\u0308', '¨'},
	0xfe58: {'\u030a', '˚'},
	0xfe59: {'\u030b', '˝'},
	0xfe5a: {'\u030c', 'ˇ'},
	0xfe5b: {'\u0327', '¸'},
	0xfe5c: {'\u0328', '˛'},
}

func isKeypad(ks xproto.Keysym) bool {
	return (0xff80 <= ks && ks <= 0xffbd) ||
		(0x11000000 <= ks && ks <= 0x1100ffff)
}
