package cpu

import (
	"errors"
	"fmt"
)

// ExecMode controls how far Step lets the core run.
type ExecMode int

const (
	ModePause ExecMode = iota
	ModeRun
	// ModeStep pauses after one instruction.
	ModeStep
	// ModeNext pauses once the call depth is back at or below where it
	// started, stepping over calls.
	ModeNext
	// ModeToCall pauses on entering a call or interrupt.
	ModeToCall
	// ModeToRet pauses on returning from the current routine.
	ModeToRet
)

func (m ExecMode) String() string {
	switch m {
	case ModePause:
		return "pause"
	case ModeRun:
		return "run"
	case ModeStep:
		return "step"
	case ModeNext:
		return "next"
	case ModeToCall:
		return "to-call"
	case ModeToRet:
		return "to-ret"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

const DefaultFramerate = 30

var (
	ErrEmptyProgram     = errors.New("empty program")
	ErrProgramTooLarge  = errors.New("program too large")
	ErrInvalidFrequency = errors.New("timestamp frequency must be positive")
)

// Machine drives a CPU the way a host application does: it owns the HAL
// registration, execution mode, breakpoints and screen refresh cadence.
type Machine struct {
	cpu       *CPU
	hal       HAL
	mode      ExecMode
	stepDepth uint32
	framerate uint32
	lastFrame uint32
	err       error
}

func NewMachine() *Machine {
	return &Machine{framerate: DefaultFramerate, mode: ModeRun}
}

// RegisterHAL must be called before Init.
func (m *Machine) RegisterHAL(h HAL) {
	m.hal = h
}

// Init resets the machine onto program. freq is the HAL timestamp
// frequency in Hz.
func (m *Machine) Init(program []uint16, breakpoints []uint16, freq uint32) error {
	switch {
	case m.hal == nil:
		return ErrNoHAL
	case len(program) == 0:
		return ErrEmptyProgram
	case len(program) > MaxProgramWords:
		return fmt.Errorf("%w: %d words", ErrProgramTooLarge, len(program))
	case freq == 0:
		return ErrInvalidFrequency
	}

	m.cpu = New(program, breakpoints, m.hal, freq)
	m.mode = ModeRun
	m.stepDepth = 0
	m.lastFrame = 0
	m.err = nil
	return nil
}

func (m *Machine) Release() {
	m.cpu = nil
}

// SetExecMode switches mode and re-syncs pacing.
func (m *Machine) SetExecMode(mode ExecMode) {
	m.mode = mode
	if m.cpu == nil {
		return
	}
	m.stepDepth = m.cpu.CallDepth
	m.cpu.SyncRefTimestamp()
}

func (m *Machine) ExecMode() ExecMode {
	return m.mode
}

// Err returns what last paused the machine: ErrBreakpoint or a *FaultError.
func (m *Machine) Err() error {
	return m.err
}

// SetSpeed sets the pacing ratio, zero for unpaced.
func (m *Machine) SetSpeed(ratio uint8) {
	if m.cpu != nil {
		m.cpu.SetSpeed(ratio)
	}
}

// SetFramerate sets how often UpdateScreen fires, in core-clock frames per
// second. Zero disables it.
func (m *Machine) SetFramerate(fps uint32) {
	m.framerate = fps
}

// Step runs one core step unless paused.
func (m *Machine) Step() {
	if m.cpu == nil || m.mode == ModePause {
		return
	}

	if err := m.cpu.Step(); err != nil {
		m.err = err
		m.mode = ModePause
		m.stepDepth = m.cpu.CallDepth
		return
	}

	depth := m.cpu.CallDepth
	switch m.mode {
	case ModeStep:
		m.mode = ModePause
	case ModeNext:
		if depth <= m.stepDepth {
			m.mode = ModePause
		}
	case ModeToCall:
		if depth > m.stepDepth {
			m.mode = ModePause
		}
	case ModeToRet:
		if depth < m.stepDepth {
			m.mode = ModePause
		}
	}

	if m.framerate > 0 && m.cpu.TickCounter-m.lastFrame >= TickFrequency/m.framerate {
		m.lastFrame = m.cpu.TickCounter
		m.hal.UpdateScreen()
		if m.hal.Handler() != 0 {
			m.mode = ModePause
		}
	}
}

// State is the live core state, or nil before Init and after Release.
func (m *Machine) State() *State {
	if m.cpu == nil {
		return nil
	}
	return &m.cpu.State
}

func (m *Machine) SetButton(b Button, pressed bool) {
	if m.cpu != nil {
		m.cpu.SetButton(b, pressed)
	}
}

// RefreshHW pushes display and buzzer state through the HAL again.
func (m *Machine) RefreshHW() {
	if m.cpu != nil {
		m.cpu.RefreshHW()
	}
}
