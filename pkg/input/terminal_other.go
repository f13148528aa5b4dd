//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package input

import (
	"os"
	"time"
)

// Terminal reads key events on a background goroutine where poll(2) is not
// available.
type Terminal struct {
	events chan Event
	errs   chan error
}

func NewTerminal(f *os.File) *Terminal {
	t := &Terminal{events: make(chan Event, 64), errs: make(chan error, 1)}
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := f.Read(buf)
			if err != nil {
				t.errs <- err
				return
			}
			for _, ev := range Decode(buf[:n]) {
				t.events <- ev
			}
		}
	}()
	return t
}

func (t *Terminal) Poll(timeout time.Duration) (Event, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-t.events:
		return ev, true, nil
	case err := <-t.errs:
		return Event{}, false, err
	case <-timer.C:
		return Event{}, false, nil
	}
}
