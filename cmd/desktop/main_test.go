package main

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"gotama/pkg/cpu"
	"gotama/pkg/input"
)

func TestKeyFor(t *testing.T) {
	tests := []struct {
		r    rune
		want ebiten.Key
		ok   bool
	}{
		{'z', ebiten.KeyZ, true},
		{'Z', ebiten.KeyZ, true},
		{'1', ebiten.KeyDigit1, true},
		{'é', 0, false},
	}
	for _, tc := range tests {
		got, ok := keyFor(tc.r)
		if ok != tc.ok || got != tc.want {
			t.Errorf("keyFor(%q): got %v %v, want %v %v", tc.r, got, ok, tc.want, tc.ok)
		}
	}
}

func TestKeyBindings(t *testing.T) {
	keys := keyBindings(input.ParseKeybind("A=q,B=2,C=é"))

	want := map[ebiten.Key]cpu.Button{
		ebiten.KeyQ:      cpu.ButtonLeft,
		ebiten.KeyDigit2: cpu.ButtonMiddle,
		ebiten.KeySpace:  cpu.ButtonTap,
	}
	if len(keys) != len(want) {
		t.Fatalf("bindings: got %v, want %v", keys, want)
	}
	for k, b := range want {
		if keys[k] != b {
			t.Errorf("key %v: got button %v, want %v", k, keys[k], b)
		}
	}
}

func TestLabelOrigin(t *testing.T) {
	tests := []struct {
		icon         int
		w, h         float64
		wantX, wantY float64
	}{
		{0, 28, 12, 26, 2},
		{3, 28, 12, 266, 2},
		{4, 40, 12, 20, screenHeight - labelBand + 2},
		{7, 80, 16, 240, screenHeight - labelBand},
	}
	for _, tc := range tests {
		x, y := labelOrigin(tc.icon, tc.w, tc.h)
		if x != tc.wantX || y != tc.wantY {
			t.Errorf("labelOrigin(%d, %v, %v): got (%v, %v), want (%v, %v)", tc.icon, tc.w, tc.h, x, y, tc.wantX, tc.wantY)
		}
	}
}

func TestLabelFaceMeasures(t *testing.T) {
	w, h := text.Measure("food", labelFace, 0)
	// basicfont.Face7x13 advances seven pixels per glyph.
	if w != 28 {
		t.Errorf("width: got %v, want 28", w)
	}
	if h <= 0 || h > labelBand {
		t.Errorf("height: got %v, want it to fit the %d pixel band", h, labelBand)
	}
}
