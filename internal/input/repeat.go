package input

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// IsRepeat reports whether press is the second half of an auto-repeat pair
// started by rel: same keycode, timestamp within one server tick.
func IsRepeat(rel xproto.KeyReleaseEvent, press xproto.KeyPressEvent) bool {
	return press.Detail == rel.Detail &&
		rel.Time <= press.Time &&
		press.Time <= rel.Time+1
}

// KeyRepeatFilter collapses the release/press pairs the server generates
// while a key is held. With Enabled only the press of each pair survives;
// otherwise both halves are dropped.
type KeyRepeatFilter struct {
	Enabled bool
}

// Pump takes one event from next and passes the events that survive repeat
// collapsing to emit, in order. A release that is not followed by a matching
// press is genuine and is emitted; the event after it is examined in turn
// since it may start a new pair. Pump reports false when next had nothing.
func (f KeyRepeatFilter) Pump(next func() (xgb.Event, bool), emit func(xgb.Event)) bool {
	ev, ok := next()
	if !ok {
		return false
	}

	for {
		rel, isRelease := ev.(xproto.KeyReleaseEvent)
		if !isRelease {
			break
		}
		following, ok := next()
		if !ok {
			break
		}
		if press, isPress := following.(xproto.KeyPressEvent); isPress && IsRepeat(rel, press) {
			if !f.Enabled {
				return true
			}
			ev = press
			break
		}
		emit(ev)
		ev = following
	}

	emit(ev)
	return true
}

// KeySet is a set of keycodes.
type KeySet [4]uint64

func (s *KeySet) Add(kc xproto.Keycode) {
	s[kc/64] |= 1 << (kc % 64)
}

func (s *KeySet) Has(kc xproto.Keycode) bool {
	return s[kc/64]&(1<<(kc%64)) != 0
}
