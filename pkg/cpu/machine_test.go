package cpu_test

import (
	"errors"
	"testing"

	"gotama/pkg/cpu"
)

func newMachine(t *testing.T, src string, bps ...uint16) (*cpu.Machine, *testHAL) {
	t.Helper()
	h := &testHAL{}
	m := cpu.NewMachine()
	m.RegisterHAL(h)
	if err := m.Init(build(t, ".ORG 0x100\n"+src), bps, 1000000); err != nil {
		t.Fatalf("init: %v", err)
	}
	return m, h
}

func runUntilPaused(t *testing.T, m *cpu.Machine) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if m.ExecMode() == cpu.ModePause {
			return
		}
		m.Step()
	}
	t.Fatalf("machine never paused")
}

func TestMachineInitErrors(t *testing.T) {
	m := cpu.NewMachine()
	if err := m.Init([]uint16{0}, nil, 1000); !errors.Is(err, cpu.ErrNoHAL) {
		t.Errorf("no hal: got %v", err)
	}

	m.RegisterHAL(&testHAL{})
	if err := m.Init(nil, nil, 1000); !errors.Is(err, cpu.ErrEmptyProgram) {
		t.Errorf("empty program: got %v", err)
	}
	if err := m.Init(make([]uint16, cpu.MaxProgramWords+1), nil, 1000); !errors.Is(err, cpu.ErrProgramTooLarge) {
		t.Errorf("oversized program: got %v", err)
	}
	if err := m.Init([]uint16{0}, nil, 0); !errors.Is(err, cpu.ErrInvalidFrequency) {
		t.Errorf("zero frequency: got %v", err)
	}
	if m.State() != nil {
		t.Errorf("failed init should leave no state")
	}
}

func TestMachineStepMode(t *testing.T) {
	m, _ := newMachine(t, "NOP5\nNOP5\nNOP5\n")

	m.SetExecMode(cpu.ModeStep)
	m.Step()
	if m.ExecMode() != cpu.ModePause {
		t.Fatalf("mode after step: got %v, want pause", m.ExecMode())
	}
	pc := m.State().PC
	m.Step()
	if m.State().PC != pc {
		t.Errorf("paused machine moved from 0x%04X to 0x%04X", pc, m.State().PC)
	}
	if pc != 0x101 {
		t.Errorf("PC: got 0x%04X, want 0x0101", pc)
	}
}

const callProgram = stackSetup + `
	CALL sub
	LD B, 1
	HALT
sub:
	LD A, 9
	NOP5
	RET
`

func TestMachineNext(t *testing.T) {
	m, _ := newMachine(t, callProgram)

	for i := 0; i < 4; i++ {
		m.SetExecMode(cpu.ModeStep)
		m.Step()
	}

	m.SetExecMode(cpu.ModeNext)
	runUntilPaused(t, m)

	s := m.State()
	if s.PC != 0x105 {
		t.Errorf("PC after next: got 0x%04X, want 0x0105", s.PC)
	}
	if s.A != 9 {
		t.Errorf("call body did not run, A=%X", s.A)
	}
}

func TestMachineToCallAndToRet(t *testing.T) {
	m, _ := newMachine(t, callProgram)

	m.SetExecMode(cpu.ModeToCall)
	runUntilPaused(t, m)
	if pc := m.State().PC; pc != 0x107 {
		t.Fatalf("PC after to-call: got 0x%04X, want 0x0107", pc)
	}

	m.SetExecMode(cpu.ModeToRet)
	runUntilPaused(t, m)
	if pc := m.State().PC; pc != 0x105 {
		t.Errorf("PC after to-ret: got 0x%04X, want 0x0105", pc)
	}
}

func TestMachineBreakpoint(t *testing.T) {
	m, _ := newMachine(t, "NOP5\nNOP5\nNOP5\nHALT\n", 0x102)

	runUntilPaused(t, m)
	if !errors.Is(m.Err(), cpu.ErrBreakpoint) {
		t.Errorf("err: got %v, want ErrBreakpoint", m.Err())
	}
	if pc := m.State().PC; pc != 0x102 {
		t.Errorf("PC: got 0x%04X, want 0x0102", pc)
	}

	m.SetExecMode(cpu.ModeRun)
	m.Step()
	if pc := m.State().PC; pc != 0x103 {
		t.Errorf("resume: got PC 0x%04X, want 0x0103", pc)
	}
}

func TestMachineFaultPauses(t *testing.T) {
	m, _ := newMachine(t, "NOP5\n")

	runUntilPaused(t, m)
	var fault *cpu.FaultError
	if !errors.As(m.Err(), &fault) {
		t.Fatalf("err: got %v, want FaultError", m.Err())
	}
	if fault.PC != 0x101 {
		t.Errorf("fault pc: got 0x%04X, want 0x0101", fault.PC)
	}
}

func TestMachineScreenUpdates(t *testing.T) {
	m, h := newMachine(t, "HALT\n")

	for i := 0; i < 1000; i++ {
		m.Step()
	}
	// 5000 ticks at 30 frames per second of core time.
	if h.screens != 4 {
		t.Errorf("screen updates: got %d, want 4", h.screens)
	}

	h.handler = 1
	runUntilPaused(t, m)
	if h.screens != 5 {
		t.Errorf("handler should pause on the next frame, got %d updates", h.screens)
	}
}

func TestMachineRelease(t *testing.T) {
	m, _ := newMachine(t, "NOP5\n")
	m.Release()

	if m.State() != nil {
		t.Errorf("state after release should be nil")
	}
	m.Step()
	m.SetButton(cpu.ButtonLeft, true)
	m.RefreshHW()
}

func TestMachineButtons(t *testing.T) {
	m, _ := newMachine(t, "HALT\n")
	m.SetButton(cpu.ButtonTap, true)

	if got := m.State().Interrupts[cpu.IntK00K03].FactorFlag; got != 0x8 {
		t.Errorf("tap factor: got 0x%X, want 0x8", got)
	}
}

func TestExecModeString(t *testing.T) {
	if got := cpu.ModeToRet.String(); got != "to-ret" {
		t.Errorf("got %q, want %q", got, "to-ret")
	}
	if got := cpu.ExecMode(42).String(); got != "mode(42)" {
		t.Errorf("got %q, want %q", got, "mode(42)")
	}
}
