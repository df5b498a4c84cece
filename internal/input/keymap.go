package input

import (
	"fmt"
	"sync"
	"unicode"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xwin/internal/event"
	"github.com/1broseidon/xwin/internal/x11"
)

// MappingSource reads the server keyboard tables.
type MappingSource interface {
	KeyboardMapping() (*x11.KeyboardMapping, error)
	ModifierMapping() (*xproto.GetModifierMappingReply, error)
}

// Keymap resolves keycodes to keysyms, keys and characters. It is shared by
// all windows of a connection and refreshed when the server reports a
// keyboard mapping change.
type Keymap struct {
	mu      sync.RWMutex
	mapping *x11.KeyboardMapping

	// modifier bit index of each group, -1 when not bound
	numLock int8
	altGr   int8
}

func NewKeymap(src MappingSource) (*Keymap, error) {
	km := &Keymap{}
	if err := km.Refresh(src); err != nil {
		return nil, err
	}
	return km, nil
}

// Refresh rereads the keyboard and modifier mappings.
func (km *Keymap) Refresh(src MappingSource) error {
	mapping, err := src.KeyboardMapping()
	if err != nil {
		return err
	}
	if mapping.KeysymsPerKeycode < 1 {
		return fmt.Errorf("bad keysyms per keycode: %d", mapping.KeysymsPerKeycode)
	}
	modMap, err := src.ModifierMapping()
	if err != nil {
		return err
	}

	km.mu.Lock()
	defer km.mu.Unlock()
	km.mapping = mapping
	km.numLock, km.altGr = detectModGroups(mapping, modMap)
	return nil
}

// 8 modifier groups, each with KeycodesPerModifier keycodes:
// Shift, Lock, Control, then Mod1..Mod5 whose meaning depends on the layout.
func detectModGroups(mapping *x11.KeyboardMapping, modMap *xproto.GetModifierMappingReply) (numLock, altGr int8) {
	numLock, altGr = 4, 7 // usual defaults: Mod2, Mod5

	stride := int(modMap.KeycodesPerModifier)
	if stride == 0 || len(modMap.Keycodes) < 8*stride {
		return numLock, altGr
	}
	for g := 3; g < 8; g++ {
		for _, kc := range modMap.Keycodes[g*stride : (g+1)*stride] {
			for _, ks := range mapping.KeysymsFor(kc) {
				switch ks {
				case 0xff7f: // Num_Lock
					numLock = int8(g)
				case 0xfe03, 0xfe11, 0xff7e: // ISO_Level3_Shift, ISO_Level5_Shift, Mode_switch
					altGr = int8(g)
				}
			}
		}
	}
	return numLock, altGr
}

// Key resolves a keycode to a key from the unshifted keysym columns, trying
// each in turn until one is known.
func (km *Keymap) Key(keycode xproto.Keycode) event.Key {
	km.mu.RLock()
	defer km.mu.RUnlock()
	kss := km.mapping.KeysymsFor(keycode)
	for i := 0; i < 4 && i < len(kss); i++ {
		if k := KeysymKey(kss[i]); k != event.KeyUnknown {
			return k
		}
	}
	return event.KeyUnknown
}

// Lookup returns the keysym and character produced by keycode under the
// modifier state. With Control held, ASCII characters map to their control
// codes, so Ctrl+A yields 0x01.
func (km *Keymap) Lookup(keycode xproto.Keycode, state uint16) (xproto.Keysym, rune) {
	km.mu.RLock()
	defer km.mu.RUnlock()
	ks := km.keysym(km.mapping.KeysymsFor(keycode), state)
	r := KeysymRune(ks)
	if state&xproto.KeyButMaskControl != 0 {
		r = controlRune(r)
	}
	return ks, r
}

func controlRune(r rune) rune {
	switch {
	case r >= '@' && r < 0x7f, r == ' ':
		return r & 0x1f
	case r == '2':
		return 0
	case r >= '3' && r <= '7':
		return r - '3' + 0x1b
	case r == '8':
		return 0x7f
	case r == '/':
		return '_' & 0x1f
	}
	return r
}

func (km *Keymap) keysym(kss []xproto.Keysym, state uint16) xproto.Keysym {
	has := func(mask uint16) bool { return state&mask != 0 }
	hasGroup := func(g int8) bool { return g >= 0 && state&(1<<uint(g)) != 0 }

	hasShift := has(xproto.KeyButMaskShift)
	hasCapsLock := has(xproto.KeyButMaskLock)

	// core keyboard mappings built by xkb keep the level 3 symbols in
	// columns 4 and 5
	i1 := 0
	if hasGroup(km.altGr) && len(kss) > 4 && kss[4] != 0 {
		i1 = 4
	}
	i2 := i1 + 1
	if i1 >= len(kss) {
		return 0
	}
	if i2 >= len(kss) {
		i2 = i1
	}
	ks1, ks2 := kss[i1], kss[i2]
	if ks2 == 0 {
		ks2 = ks1
	}

	if hasGroup(km.numLock) && isKeypad(ks2) {
		if hasShift {
			return ks1
		}
		return ks2
	}

	r1 := rune(ks1)
	if ks1 <= 0xff && unicode.IsLower(unicode.ToLower(r1)) && unicode.ToLower(r1) != unicode.ToUpper(r1) {
		if hasShift != hasCapsLock {
			return ks2
		}
		return ks1
	}
	if hasShift {
		return ks2
	}
	return ks1
}

// Modifiers decodes the modifier flags carried by key events.
func Modifiers(state uint16) (alt, control, shift, system bool) {
	return state&xproto.KeyButMaskMod1 != 0,
		state&xproto.KeyButMaskControl != 0,
		state&xproto.KeyButMaskShift != 0,
		state&xproto.KeyButMaskMod4 != 0
}
