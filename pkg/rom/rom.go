// Package rom decodes E0C6S46 program images into 12-bit words.
package rom

import (
	"errors"
	"fmt"
	"os"
)

// Encoding identifies how 12-bit program words are laid out in an image file.
type Encoding int

const (
	// Packed12LE stores two words in every three bytes.
	Packed12LE Encoding = iota
	// Padded16LE12 stores one word per two bytes, high nibble first.
	Padded16LE12
	// Padded16BE12 stores one word per big-endian 16-bit container.
	Padded16BE12
)

func (e Encoding) String() string {
	switch e {
	case Packed12LE:
		return "packed-12-le"
	case Padded16LE12:
		return "padded-16-le-12"
	case Padded16BE12:
		return "padded-16-be-12"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

const wordMask = 0x0FFF

var ErrInvalidLength = errors.New("invalid rom length")

// LengthError reports an image whose size fits none of the encodings.
type LengthError struct {
	Len int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("invalid rom length: %d bytes", e.Len)
}

func (e *LengthError) Is(target error) bool {
	return target == ErrInvalidLength
}

// Detect picks the encoding of b.
func Detect(b []byte) (Encoding, error) {
	n := len(b)
	if n == 0 || (n%2 != 0 && n%3 != 0) {
		return 0, &LengthError{Len: n}
	}

	if n%2 == 0 && highNibblesClear(b) {
		return Padded16LE12, nil
	}
	// Same predicate as above, so this branch never wins. Kept until
	// big-endian images can be told apart by something other than size.
	if n%2 == 0 && highNibblesClear(b) {
		return Padded16BE12, nil
	}
	if n%3 == 0 {
		return Packed12LE, nil
	}

	return 0, &LengthError{Len: n}
}

func highNibblesClear(b []byte) bool {
	for i := 0; i < len(b); i += 2 {
		if b[i]&0xF0 != 0 {
			return false
		}
	}
	return true
}

// Decode detects the encoding of b and unpacks it.
func Decode(b []byte) ([]uint16, error) {
	enc, err := Detect(b)
	if err != nil {
		return nil, err
	}

	switch enc {
	case Padded16LE12:
		return Unpack16LE(b)
	case Padded16BE12:
		return Unpack16BE(b)
	default:
		return Unpack12(b)
	}
}

// Load reads and decodes the image at path.
func Load(path string) ([]uint16, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rom %s: %w", path, err)
	}

	words, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode rom %s: %w", path, err)
	}
	return words, nil
}
