package input

import (
	"sync"
	"unicode/utf8"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/text/unicode/norm"
)

// TextBufferSize caps the composed text one key press may produce.
const TextBufferSize = 64

// LookupStatus is the outcome of an input method lookup.
type LookupStatus int

const (
	LookupNone LookupStatus = iota
	LookupChars
	LookupOverflow
)

// InputMethod composes key presses into text.
type InputMethod interface {
	// Filter reports whether the method consumed the press, for example a
	// dead key that only arms a composition.
	Filter(ev xproto.KeyPressEvent) bool
	// Lookup writes the UTF-8 text produced by an unfiltered press into buf.
	// On LookupOverflow nothing is written.
	Lookup(ev xproto.KeyPressEvent, buf []byte) (int, LookupStatus)
	SetFocus(focused bool)
	Close()
}

// Compose is an InputMethod that handles dead keys. A dead key arms a
// diacritic that is combined with the next character by canonical
// composition; space yields the diacritic itself.
type Compose struct {
	km *Keymap

	mu      sync.Mutex
	pending *deadKey
}

var _ InputMethod = (*Compose)(nil)

func NewCompose(km *Keymap) *Compose {
	return &Compose{km: km}
}

func (c *Compose) Filter(ev xproto.KeyPressEvent) bool {
	ks, _ := c.km.Lookup(ev.Detail, ev.State)
	dk, ok := deadKeys[ks]
	if !ok {
		return false
	}
	c.mu.Lock()
	c.pending = &dk
	c.mu.Unlock()
	return true
}

func (c *Compose) Lookup(ev xproto.KeyPressEvent, buf []byte) (int, LookupStatus) {
	_, r := c.km.Lookup(ev.Detail, ev.State)
	if r == 0 {
		return 0, LookupNone
	}

	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	text := string(r)
	if pending != nil {
		text = compose(*pending, r)
	}
	if len(text) > len(buf) {
		return 0, LookupOverflow
	}
	return copy(buf, text), LookupChars
}

// SetFocus drops an armed dead key when focus leaves the window.
func (c *Compose) SetFocus(focused bool) {
	if focused {
		return
	}
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

func (c *Compose) Close() {
	c.SetFocus(false)
}

func compose(dk deadKey, base rune) string {
	if base == ' ' {
		return string(dk.spacing)
	}
	composed := norm.NFC.String(string([]rune{base, dk.combining}))
	if utf8.RuneCountInString(composed) == 1 {
		return composed
	}
	// no precomposed form: emit the diacritic then the character
	return string([]rune{dk.spacing, base})
}

// DecodeText splits composed UTF-8 text into code points, skipping NULs and
// invalid sequences.
func DecodeText(buf []byte) []rune {
	var out []rune
	for len(buf) > 0 {
		r, size := utf8.DecodeRune(buf)
		buf = buf[size:]
		if r == 0 || r == utf8.RuneError {
			continue
		}
		out = append(out, r)
	}
	return out
}
