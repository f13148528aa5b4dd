package input

import (
	"time"
	"unicode"
	"unicode/utf8"
)

type Kind int

const (
	KeyPress Kind = iota
	KeyRelease
	// Interrupt is Ctrl+C, which raw mode delivers as a byte.
	Interrupt
	Escape
)

type Event struct {
	Kind Kind
	Rune rune
}

// Source delivers keyboard events. Poll waits at most timeout and reports
// false when nothing arrived.
type Source interface {
	Poll(timeout time.Duration) (Event, bool, error)
}

const (
	ctrlC = 0x03
	esc   = 0x1B
)

// Decode splits raw terminal input into events. ESC followed by '[' or 'O'
// starts a control sequence (arrows, function keys) and is dropped. Any
// other ESC is the Escape key, and the bytes after it decode normally.
func Decode(buf []byte) []Event {
	var events []Event
	for len(buf) > 0 {
		switch b := buf[0]; {
		case b == ctrlC:
			events = append(events, Event{Kind: Interrupt})
			buf = buf[1:]
		case b == esc:
			if len(buf) > 1 && (buf[1] == '[' || buf[1] == 'O') {
				buf = skipSequence(buf)
				continue
			}
			events = append(events, Event{Kind: Escape})
			buf = buf[1:]
		default:
			r, size := utf8.DecodeRune(buf)
			buf = buf[size:]
			if r != utf8.RuneError && unicode.IsPrint(r) {
				events = append(events, Event{Kind: KeyPress, Rune: r})
			}
		}
	}
	return events
}

// skipSequence drops one CSI or SS3 sequence from the front of buf.
func skipSequence(buf []byte) []byte {
	if buf[1] == 'O' {
		if len(buf) > 2 {
			return buf[3:]
		}
		return nil
	}
	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7E {
			return buf[i+1:]
		}
	}
	return nil
}
