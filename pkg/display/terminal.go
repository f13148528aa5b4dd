package display

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"

	"gotama/pkg/peripherals"
)

const (
	enterAltScreen = "\x1b[?1049h"
	leaveAltScreen = "\x1b[?1049l"
	hideCursor     = "\x1b[?25l"
	showCursor     = "\x1b[?25h"
	clearScreen    = "\x1b[2J"
)

// Terminal renders frames on an alternate screen with the input side in
// raw mode.
type Terminal struct {
	in    *os.File
	out   *bufio.Writer
	state *term.State
}

// OpenTerminal switches in to raw mode and out to the alternate screen.
// Close undoes both.
func OpenTerminal(in, out *os.File) (*Terminal, error) {
	st, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("enable raw mode: %w", err)
	}

	t := &Terminal{in: in, out: bufio.NewWriter(out), state: st}
	t.out.WriteString(enterAltScreen + hideCursor + clearScreen)
	if err := t.out.Flush(); err != nil {
		term.Restore(int(in.Fd()), st)
		return nil, fmt.Errorf("enter alternate screen: %w", err)
	}
	return t, nil
}

func (t *Terminal) Render(lcd peripherals.Matrix, icons peripherals.Icons) error {
	if err := WriteFrame(t.out, lcd, icons); err != nil {
		return err
	}
	return t.out.Flush()
}

// Close restores the cursor, the main screen and the original terminal
// mode. It is safe to call more than once.
func (t *Terminal) Close() error {
	if t.state == nil {
		return nil
	}
	t.out.WriteString(showCursor + leaveAltScreen)
	flushErr := t.out.Flush()

	err := term.Restore(int(t.in.Fd()), t.state)
	t.state = nil
	if err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	return flushErr
}

// EnterRaw puts f in raw mode without taking over the screen. The returned
// func restores the previous mode.
func EnterRaw(f *os.File) (func() error, error) {
	fd := int(f.Fd())
	st, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enable raw mode: %w", err)
	}
	return func() error { return term.Restore(fd, st) }, nil
}

// IsTerminal reports whether f is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
