package rom

// Unpack12 splits every three bytes into two 12-bit words.
func Unpack12(b []byte) ([]uint16, error) {
	if len(b) == 0 || len(b)%3 != 0 {
		return nil, &LengthError{Len: len(b)}
	}

	words := make([]uint16, 0, len(b)/3*2)
	for i := 0; i < len(b); i += 3 {
		b0, b1, b2 := uint16(b[i]), uint16(b[i+1]), uint16(b[i+2])
		words = append(words,
			(b0|(b1&0x0F)<<8)&wordMask,
			(b1>>4|b2<<4)&wordMask,
		)
	}
	return words, nil
}

// Pack12 is the inverse of Unpack12. An odd word count is padded with a
// zero word.
func Pack12(words []uint16) []byte {
	out := make([]byte, 0, (len(words)+1)/2*3)
	for i := 0; i < len(words); i += 2 {
		w0 := words[i] & wordMask
		var w1 uint16
		if i+1 < len(words) {
			w1 = words[i+1] & wordMask
		}
		out = append(out,
			byte(w0),
			byte(w0>>8)|byte(w1<<4),
			byte(w1>>4),
		)
	}
	return out
}

// Unpack16LE reads one word per two bytes; the first byte carries the
// top nibble.
func Unpack16LE(b []byte) ([]uint16, error) {
	if len(b) == 0 || len(b)%2 != 0 {
		return nil, &LengthError{Len: len(b)}
	}

	words := make([]uint16, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		words = append(words, uint16(b[i]&0x0F)<<8|uint16(b[i+1]))
	}
	return words, nil
}

// Unpack16BE reads big-endian 16-bit containers masked to 12 bits.
func Unpack16BE(b []byte) ([]uint16, error) {
	if len(b) == 0 || len(b)%2 != 0 {
		return nil, &LengthError{Len: len(b)}
	}

	words := make([]uint16, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		words = append(words, (uint16(b[i])<<8|uint16(b[i+1]))&wordMask)
	}
	return words, nil
}

// Pack16 is the inverse of Unpack16LE.
func Pack16(words []uint16) []byte {
	out := make([]byte, 0, len(words)*2)
	for _, w := range words {
		w &= wordMask
		out = append(out, byte(w>>8), byte(w))
	}
	return out
}
