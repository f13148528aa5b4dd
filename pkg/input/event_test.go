package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []Event
	}{
		{"letters", []byte("zX"), []Event{{KeyPress, 'z'}, {KeyPress, 'X'}}},
		{"ctrl c", []byte{'a', 0x03}, []Event{{KeyPress, 'a'}, {Kind: Interrupt}}},
		{"lone escape", []byte{0x1B}, []Event{{Kind: Escape}}},
		{"arrow key", []byte("\x1b[Az"), []Event{{KeyPress, 'z'}}},
		{"function key", []byte("\x1b[15~x"), []Event{{KeyPress, 'x'}}},
		{"ss3", []byte("\x1bOPc"), []Event{{KeyPress, 'c'}}},
		{"escape then key", []byte{0x1B, 'z'}, []Event{{Kind: Escape}, {KeyPress, 'z'}}},
		{"double escape", []byte{0x1B, 0x1B}, []Event{{Kind: Escape}, {Kind: Escape}}},
		{"escape before arrow", []byte("\x1b\x1b[A"), []Event{{Kind: Escape}}},
		{"truncated csi", []byte("\x1b[1;"), nil},
		{"control bytes", []byte("\r\n\t"), nil},
		{"utf8", []byte("é"), []Event{{KeyPress, 'é'}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decode(tc.in))
		})
	}
}
