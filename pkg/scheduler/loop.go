package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"gotama/pkg/cpu"
	"gotama/pkg/input"
	"gotama/pkg/peripherals"
	"gotama/pkg/state"
)

const (
	PollTimeout = time.Millisecond
	IdleSleep   = 10 * time.Millisecond
)

type Engine interface {
	TickMany(n int)
	SetButton(b cpu.Button, pressed bool)
	SaveSnapshot() *state.Snapshot
}

// Screen is where the renderer reads the display from, normally the
// peripheral bridge.
type Screen interface {
	LCD() peripherals.Matrix
	Icons() peripherals.Icons
}

type Renderer interface {
	Render(lcd peripherals.Matrix, icons peripherals.Icons) error
}

type Store interface {
	Save(s *state.Snapshot) error
	fmt.Stringer
}

// AudioSink receives the real time elapsed each iteration.
type AudioSink interface {
	Advance(d time.Duration) error
}

// Loop is the single-threaded front-end loop. Renderer, Audio, Input and
// Store are optional.
type Loop struct {
	Engine   Engine
	Pacer    *Pacer
	Input    input.Source
	Keybind  input.Keybind
	Screen   Screen
	Renderer Renderer
	Audio    AudioSink
	Store    Store
	Log      *log.Logger

	// Hold is how long a key press keeps its button down when the input
	// source reports no release.
	Hold time.Duration

	Now   func() time.Time
	Sleep func(time.Duration)

	held map[cpu.Button]time.Time
}

// Run loops until Ctrl+C, Esc, a context cancel or a render failure, then
// saves a snapshot to the store. A failed save is logged, not returned.
func (l *Loop) Run(ctx context.Context) error {
	l.held = make(map[cpu.Button]time.Time)
	start := l.now()
	l.Pacer.Reset(start)
	lastAudio := start

	err := l.run(ctx, lastAudio)
	l.save()
	return err
}

func (l *Loop) run(ctx context.Context, lastAudio time.Time) error {
	for ctx.Err() == nil {
		now := l.now()
		for n := l.Pacer.Advance(now); n > 0; n-- {
			l.Engine.TickMany(l.Pacer.LogicBatch)
		}

		quit, err := l.poll(now)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if quit {
			return nil
		}
		l.releaseHeld(now)

		l.Engine.TickMany(l.Pacer.FrameBatch)

		if l.Renderer != nil {
			if err := l.Renderer.Render(l.Screen.LCD(), l.Screen.Icons()); err != nil {
				return fmt.Errorf("render: %w", err)
			}
		}
		if l.Audio != nil {
			if err := l.Audio.Advance(now.Sub(lastAudio)); err != nil {
				l.logger().Printf("audio disabled: %v", err)
				l.Audio = nil
			}
			lastAudio = now
		}

		l.sleep(IdleSleep)
	}
	return nil
}

// poll handles at most one input event and reports whether to quit.
func (l *Loop) poll(now time.Time) (bool, error) {
	if l.Input == nil {
		return false, nil
	}
	ev, ok, err := l.Input.Poll(PollTimeout)
	if err != nil || !ok {
		return false, err
	}

	switch ev.Kind {
	case input.Interrupt, input.Escape:
		return true, nil
	case input.KeyPress:
		if b, ok := l.Keybind.Match(ev.Rune); ok {
			l.Engine.SetButton(b, true)
			l.held[b] = now.Add(l.Hold)
		}
	case input.KeyRelease:
		if b, ok := l.Keybind.Match(ev.Rune); ok {
			l.Engine.SetButton(b, false)
			delete(l.held, b)
		}
	}
	return false, nil
}

func (l *Loop) releaseHeld(now time.Time) {
	for b, until := range l.held {
		if !now.Before(until) {
			l.Engine.SetButton(b, false)
			delete(l.held, b)
		}
	}
}

func (l *Loop) save() {
	if l.Store == nil {
		return
	}
	s := l.Engine.SaveSnapshot()
	if s == nil {
		return
	}
	if err := l.Store.Save(s); err != nil {
		l.logger().Printf("failed to write state to %s: %v", l.Store, err)
		return
	}
	l.logger().Printf("saved state to %s", l.Store)
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loop) sleep(d time.Duration) {
	if l.Sleep != nil {
		l.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (l *Loop) logger() *log.Logger {
	if l.Log == nil {
		l.Log = log.New(io.Discard, "", 0)
	}
	return l.Log
}
