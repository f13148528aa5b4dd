package engine

import (
	"gotama/pkg/cpu"
	"gotama/pkg/state"
)

// readState and writeState are the only code that touches cpu.State field
// by field. A new State field must be added to both.

func readState(st *cpu.State) *state.Snapshot {
	s := &state.Snapshot{
		PC:    st.PC,
		X:     st.X,
		Y:     st.Y,
		A:     st.A,
		B:     st.B,
		NP:    st.NP,
		SP:    st.SP,
		Flags: st.Flags,

		TickCounter:              st.TickCounter,
		ClockTimer2HzTimestamp:   st.ClockTimer2HzTimestamp,
		ClockTimer4HzTimestamp:   st.ClockTimer4HzTimestamp,
		ClockTimer8HzTimestamp:   st.ClockTimer8HzTimestamp,
		ClockTimer16HzTimestamp:  st.ClockTimer16HzTimestamp,
		ClockTimer32HzTimestamp:  st.ClockTimer32HzTimestamp,
		ClockTimer64HzTimestamp:  st.ClockTimer64HzTimestamp,
		ClockTimer128HzTimestamp: st.ClockTimer128HzTimestamp,
		ClockTimer256HzTimestamp: st.ClockTimer256HzTimestamp,

		ProgTimerTimestamp: st.ProgTimerTimestamp,
		ProgTimerEnabled:   st.ProgTimerEnabled,
		ProgTimerData:      st.ProgTimerData,
		ProgTimerReload:    st.ProgTimerReload,

		CallDepth: st.CallDepth,
		Halted:    st.Halted,

		Interrupts: make([]state.Interrupt, len(st.Interrupts)),
		Memory:     make([]byte, len(st.Memory)),
	}

	for i, in := range st.Interrupts {
		s.Interrupts[i] = state.Interrupt{
			FactorFlag: in.FactorFlag,
			Mask:       in.Mask,
			Triggered:  in.Triggered,
			Vector:     in.Vector,
		}
	}
	copy(s.Memory, st.Memory[:])

	return s
}

// writeState restores at most len(st.Interrupts) slots and the common
// prefix of memory; the rest of st is left as it was.
func writeState(st *cpu.State, s *state.Snapshot) {
	st.PC = s.PC
	st.X = s.X
	st.Y = s.Y
	st.A = s.A
	st.B = s.B
	st.NP = s.NP
	st.SP = s.SP
	st.Flags = s.Flags

	st.TickCounter = s.TickCounter
	st.ClockTimer2HzTimestamp = s.ClockTimer2HzTimestamp
	st.ClockTimer4HzTimestamp = s.ClockTimer4HzTimestamp
	st.ClockTimer8HzTimestamp = s.ClockTimer8HzTimestamp
	st.ClockTimer16HzTimestamp = s.ClockTimer16HzTimestamp
	st.ClockTimer32HzTimestamp = s.ClockTimer32HzTimestamp
	st.ClockTimer64HzTimestamp = s.ClockTimer64HzTimestamp
	st.ClockTimer128HzTimestamp = s.ClockTimer128HzTimestamp
	st.ClockTimer256HzTimestamp = s.ClockTimer256HzTimestamp

	st.ProgTimerTimestamp = s.ProgTimerTimestamp
	st.ProgTimerEnabled = s.ProgTimerEnabled
	st.ProgTimerData = s.ProgTimerData
	st.ProgTimerReload = s.ProgTimerReload

	st.CallDepth = s.CallDepth

	for i := 0; i < len(s.Interrupts) && i < len(st.Interrupts); i++ {
		in := s.Interrupts[i]
		st.Interrupts[i] = cpu.Interrupt{
			FactorFlag: in.FactorFlag,
			Mask:       in.Mask,
			Triggered:  in.Triggered,
			Vector:     in.Vector,
		}
	}

	st.Halted = s.Halted
	copy(st.Memory[:], s.Memory)
}
