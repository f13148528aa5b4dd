// Package engine owns the single live E0C6S46 core of a process and mirrors
// its state in and out of snapshots.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"gotama/pkg/cpu"
	"gotama/pkg/peripherals"
	"gotama/pkg/rom"
	"gotama/pkg/state"
)

// TimestampFrequency is the unit of the bridge timestamp handed to the core,
// microseconds.
const TimestampFrequency = 1000000

var (
	ErrInitFailed = errors.New("engine init failed")
	ErrEngineBusy = errors.New("an engine is already running")
)

// The core reports through one process-wide bridge, so only one engine may
// be live at a time.
var live atomic.Bool

type Options struct {
	// Breakpoints pause the engine when the program counter reaches them.
	Breakpoints []uint16
}

// View is the register summary returned by CurrentView.
type View struct {
	PC          uint16
	X           uint16
	Y           uint16
	A           uint8
	B           uint8
	NP          uint8
	SP          uint8
	TickCounter uint32
}

type Engine struct {
	machine *cpu.Machine
	bridge  *peripherals.Bridge
}

// New starts a core on words in continuous run mode, reporting through
// bridge.
func New(words []uint16, bridge *peripherals.Bridge) (*Engine, error) {
	return NewWithOptions(words, bridge, Options{})
}

func NewWithOptions(words []uint16, bridge *peripherals.Bridge, opts Options) (*Engine, error) {
	if bridge == nil {
		return nil, fmt.Errorf("%w: no peripheral bridge", ErrInitFailed)
	}
	if !live.CompareAndSwap(false, true) {
		return nil, ErrEngineBusy
	}

	bridge.Install()
	m := cpu.NewMachine()
	m.RegisterHAL(bridge)
	if err := m.Init(words, opts.Breakpoints, TimestampFrequency); err != nil {
		live.Store(false)
		return nil, fmt.Errorf("%w: %w", ErrInitFailed, err)
	}
	m.SetExecMode(cpu.ModeRun)

	return &Engine{machine: m, bridge: bridge}, nil
}

// LoadFile decodes the program image at path and starts an engine on it.
func LoadFile(path string, bridge *peripherals.Bridge) (*Engine, error) {
	words, err := rom.Load(path)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return New(words, bridge)
}

// Tick runs one core step. It does nothing once the engine is released.
func (e *Engine) Tick() {
	if e.machine == nil {
		return
	}
	e.machine.Step()
}

func (e *Engine) TickMany(n int) {
	for i := 0; i < n; i++ {
		e.Tick()
	}
}

func (e *Engine) SetButton(b cpu.Button, pressed bool) {
	if e.machine == nil {
		return
	}
	e.machine.SetButton(b, pressed)
}

// SaveSnapshot copies the live core state. It returns nil once released.
func (e *Engine) SaveSnapshot() *state.Snapshot {
	if e.machine == nil {
		return nil
	}
	st := e.machine.State()
	if st == nil {
		return nil
	}
	return readState(st)
}

// LoadSnapshot overwrites the live core state with s and redraws the
// bridge from the restored display and buzzer registers.
func (e *Engine) LoadSnapshot(s *state.Snapshot) {
	if e.machine == nil || s == nil {
		return
	}
	st := e.machine.State()
	if st == nil {
		return
	}
	writeState(st, s)

	// Realign pacing with the restored tick counter.
	e.machine.SetExecMode(e.machine.ExecMode())
	e.machine.RefreshHW()
}

func (e *Engine) CurrentView() (View, bool) {
	if e.machine == nil {
		return View{}, false
	}
	st := e.machine.State()
	if st == nil {
		return View{}, false
	}
	return View{
		PC:          st.PC,
		X:           st.X,
		Y:           st.Y,
		A:           st.A,
		B:           st.B,
		NP:          st.NP,
		SP:          st.SP,
		TickCounter: st.TickCounter,
	}, true
}

// Paused reports whether a breakpoint or a fault stopped the core.
func (e *Engine) Paused() bool {
	return e.machine != nil && e.machine.ExecMode() == cpu.ModePause
}

// Err is what paused the core: cpu.ErrBreakpoint or a *cpu.FaultError.
func (e *Engine) Err() error {
	if e.machine == nil {
		return nil
	}
	return e.machine.Err()
}

// Resume continues after a breakpoint.
func (e *Engine) Resume() {
	if e.machine != nil {
		e.machine.SetExecMode(cpu.ModeRun)
	}
}

// Release frees the core and the process-wide engine slot. Later calls do
// nothing.
func (e *Engine) Release() {
	if e.machine == nil {
		return
	}
	e.machine.Release()
	e.machine = nil
	live.Store(false)
}
