package input

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestComposeDeadKeys(t *testing.T) {
	c := NewCompose(testKeymap(t))
	defer c.Close()

	tests := []struct {
		name string
		base xproto.Keycode
		want string
	}{
		{"precomposed", kcE, "é"},
		{"space yields diacritic", kcSpace, "´"},
		{"no precomposed form", kcQ, "´q"},
	}
	for _, tt := range tests {
		if !c.Filter(xproto.KeyPressEvent{Detail: kcDeadAcute}) {
			t.Fatalf("%s: expected dead key to be filtered", tt.name)
		}
		ev := xproto.KeyPressEvent{Detail: tt.base}
		if c.Filter(ev) {
			t.Fatalf("%s: expected base key to pass the filter", tt.name)
		}
		buf := make([]byte, TextBufferSize)
		n, status := c.Lookup(ev, buf)
		if status != LookupChars {
			t.Fatalf("%s: expected LookupChars, got %v", tt.name, status)
		}
		if got := string(buf[:n]); got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestComposePlain(t *testing.T) {
	c := NewCompose(testKeymap(t))
	buf := make([]byte, TextBufferSize)

	n, status := c.Lookup(xproto.KeyPressEvent{Detail: kcA, State: xproto.KeyButMaskShift}, buf)
	if status != LookupChars || string(buf[:n]) != "A" {
		t.Fatalf("expected \"A\", got %q (%v)", buf[:n], status)
	}

	if _, status := c.Lookup(xproto.KeyPressEvent{Detail: kcLevel3}, buf); status != LookupNone {
		t.Fatalf("expected LookupNone for a modifier key, got %v", status)
	}
}

func TestComposeOverflow(t *testing.T) {
	c := NewCompose(testKeymap(t))
	c.Filter(xproto.KeyPressEvent{Detail: kcDeadAcute})

	buf := make([]byte, 1)
	n, status := c.Lookup(xproto.KeyPressEvent{Detail: kcE}, buf)
	if status != LookupOverflow || n != 0 {
		t.Fatalf("expected overflow with nothing written, got %d (%v)", n, status)
	}
}

func TestComposeFocusLossDropsDeadKey(t *testing.T) {
	c := NewCompose(testKeymap(t))
	c.Filter(xproto.KeyPressEvent{Detail: kcDeadAcute})
	c.SetFocus(false)

	buf := make([]byte, TextBufferSize)
	n, _ := c.Lookup(xproto.KeyPressEvent{Detail: kcE}, buf)
	if got := string(buf[:n]); got != "e" {
		t.Fatalf("expected \"e\" after focus loss, got %q", got)
	}
}

func TestDecodeText(t *testing.T) {
	got := DecodeText([]byte("a\x00é\xffz"))
	want := []rune{'a', 'é', 'z'}
	if len(got) != len(want) {
		t.Fatalf("expected %d runes, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rune %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
