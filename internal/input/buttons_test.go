package input

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xwin/internal/event"
)

func TestButton(t *testing.T) {
	tests := map[xproto.Button]event.Button{
		1: event.ButtonLeft,
		2: event.ButtonMiddle,
		3: event.ButtonRight,
		8: event.ButtonExtra1,
		9: event.ButtonExtra2,
	}
	for detail, want := range tests {
		got, ok := Button(detail)
		if !ok || got != want {
			t.Fatalf("Button(%d): expected %v, got %v (%v)", detail, want, got, ok)
		}
	}
	for _, detail := range []xproto.Button{4, 5, 6, 7, 10} {
		if _, ok := Button(detail); ok {
			t.Fatalf("Button(%d): expected no mouse button", detail)
		}
	}
}

func TestWheel(t *testing.T) {
	tests := []struct {
		detail xproto.Button
		wheel  event.Wheel
		delta  float32
	}{
		{4, event.WheelVertical, 1},
		{5, event.WheelVertical, -1},
		{6, event.WheelHorizontal, 1},
		{7, event.WheelHorizontal, -1},
	}
	for _, tt := range tests {
		wheel, delta, ok := Wheel(tt.detail)
		if !ok || wheel != tt.wheel || delta != tt.delta {
			t.Fatalf("Wheel(%d): expected (%v, %v), got (%v, %v, %v)", tt.detail, tt.wheel, tt.delta, wheel, delta, ok)
		}
	}
	if _, _, ok := Wheel(1); ok {
		t.Fatalf("Wheel(1): expected no wheel")
	}
}
