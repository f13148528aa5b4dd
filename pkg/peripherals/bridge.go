// Package peripherals holds the observable LCD and buzzer state that the
// core reports through its HAL callbacks.
package peripherals

import (
	"math"
	"sync"
	"time"

	"gotama/pkg/cpu"
)

// Matrix is the LCD dot matrix indexed [y][x].
type Matrix [cpu.LCDHeight][cpu.LCDWidth]bool

type Icons [cpu.IconCount]bool

// Bridge implements cpu.HAL. The core writes it from inside Step and the
// front-ends read it between steps, or from the audio goroutine, so every
// access takes the lock for a single copy.
type Bridge struct {
	// Now is the clock behind Timestamp. Nil means time.Now.
	Now func() time.Time

	mu      sync.Mutex
	lcd     Matrix
	icons   Icons
	freq    uint32
	playing bool
	start   time.Time
}

var _ cpu.HAL = (*Bridge)(nil)

func NewBridge() *Bridge {
	b := &Bridge{}
	b.start = b.now()
	return b
}

func (b *Bridge) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Install clears the peripheral state and restarts the timestamp clock. The
// engine calls it before the core first runs.
func (b *Bridge) Install() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lcd = Matrix{}
	b.icons = Icons{}
	b.freq = 0
	b.playing = false
	b.start = b.now()
}

func (b *Bridge) SetLCDMatrix(x, y uint8, on bool) {
	if int(x) >= cpu.LCDWidth || int(y) >= cpu.LCDHeight {
		return
	}
	b.mu.Lock()
	b.lcd[y][x] = on
	b.mu.Unlock()
}

func (b *Bridge) SetLCDIcon(icon uint8, on bool) {
	if int(icon) >= cpu.IconCount {
		return
	}
	b.mu.Lock()
	b.icons[icon] = on
	b.mu.Unlock()
}

func (b *Bridge) SetFrequency(dHz uint32) {
	b.mu.Lock()
	b.freq = dHz
	b.mu.Unlock()
}

func (b *Bridge) PlayFrequency(enabled bool) {
	b.mu.Lock()
	b.playing = enabled
	b.mu.Unlock()
}

// Timestamp returns microseconds since Install, saturating at MaxUint32.
func (b *Bridge) Timestamp() uint32 {
	b.mu.Lock()
	start := b.start
	b.mu.Unlock()

	us := b.now().Sub(start).Microseconds()
	switch {
	case us < 0:
		return 0
	case us > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(us)
}

// The remaining hooks are required by cpu.HAL but have no effect here.
// Pacing is done by the scheduler, not by sleeping inside the core.

func (b *Bridge) Halt()                            {}
func (b *Bridge) IsLogEnabled(cpu.LogLevel) bool   { return false }
func (b *Bridge) Log(cpu.LogLevel, string, ...any) {}
func (b *Bridge) SleepUntil(uint32)                {}
func (b *Bridge) UpdateScreen()                    {}
func (b *Bridge) Handler() int                     { return 0 }

// LCD returns a copy of the dot matrix.
func (b *Bridge) LCD() Matrix {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lcd
}

func (b *Bridge) Icons() Icons {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.icons
}

// Frequency is the buzzer frequency in tenths of a hertz.
func (b *Bridge) Frequency() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.freq
}

func (b *Bridge) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

// Audio returns frequency and enable flag under one lock.
func (b *Bridge) Audio() (dHz uint32, playing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.freq, b.playing
}
