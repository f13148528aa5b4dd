// Package input maps keyboard input onto the emulated buttons.
package input

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gotama/pkg/cpu"
)

// Keybind assigns one lower-case character to each of the three front
// buttons, named A (left), B (middle) and C (right) as on the device.
type Keybind struct {
	Left   rune
	Middle rune
	Right  rune
}

func DefaultKeybind() Keybind {
	return Keybind{Left: 'z', Middle: 'x', Right: 'c'}
}

// ParseKeybind reads "A=z,B=x,C=c" on top of the defaults. Pairs may be
// separated by commas or spaces, key names are case-insensitive and only
// the first character of a value is used. Unknown keys are ignored.
func ParseKeybind(s string) Keybind {
	k := DefaultKeybind()
	k.apply(s)
	return k
}

func (k *Keybind) apply(s string) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	for _, part := range parts {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		ch, _ := utf8.DecodeRuneInString(strings.TrimSpace(value))
		if ch == utf8.RuneError {
			continue
		}
		ch = unicode.ToLower(ch)

		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "A":
			k.Left = ch
		case "B":
			k.Middle = ch
		case "C":
			k.Right = ch
		}
	}
}

// Match returns the button bound to r, ignoring case.
func (k Keybind) Match(r rune) (cpu.Button, bool) {
	switch unicode.ToLower(r) {
	case k.Left:
		return cpu.ButtonLeft, true
	case k.Middle:
		return cpu.ButtonMiddle, true
	case k.Right:
		return cpu.ButtonRight, true
	}
	return 0, false
}

func (k Keybind) String() string {
	return fmt.Sprintf("A=%c,B=%c,C=%c", k.Left, k.Middle, k.Right)
}

// Set implements pflag.Value. Repeated flags accumulate.
func (k *Keybind) Set(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("empty keybind")
	}
	k.apply(s)
	return nil
}

func (k *Keybind) Type() string {
	return "keybind"
}
