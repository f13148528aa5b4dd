//go:build linux || darwin || freebsd || netbsd || openbsd

package input

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Terminal reads key events from a terminal in raw mode.
type Terminal struct {
	fd      int
	pending []Event
	buf     [64]byte
}

func NewTerminal(f *os.File) *Terminal {
	return &Terminal{fd: int(f.Fd())}
}

func (t *Terminal) Poll(timeout time.Duration) (Event, bool, error) {
	if ev, ok := t.next(); ok {
		return ev, true, nil
	}

	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if errors.Is(err, unix.EINTR) {
		return Event{}, false, nil
	}
	if err != nil {
		return Event{}, false, fmt.Errorf("poll stdin: %w", err)
	}
	if n == 0 || fds[0].Revents&unix.POLLIN == 0 {
		return Event{}, false, nil
	}

	nr, err := unix.Read(t.fd, t.buf[:])
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return Event{}, false, nil
		}
		return Event{}, false, fmt.Errorf("read stdin: %w", err)
	}
	t.pending = append(t.pending, Decode(t.buf[:nr])...)

	ev, ok := t.next()
	return ev, ok, nil
}

func (t *Terminal) next() (Event, bool) {
	if len(t.pending) == 0 {
		return Event{}, false
	}
	ev := t.pending[0]
	t.pending = t.pending[1:]
	return ev, true
}
