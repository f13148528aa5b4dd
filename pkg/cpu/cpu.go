// Package cpu is an interpreter for the Epson E0C6S46 4-bit microcontroller.
package cpu

import (
	"errors"
	"fmt"
)

// TickFrequency is the core oscillator frequency. Cycle counts and timer
// periods are expressed in ticks of this clock.
const TickFrequency = 32768

const (
	MemRAMAddr      = 0x000
	MemRAMSize      = 0x280
	MemDisplay1Addr = 0xE00
	MemDisplay1Size = 0x050
	MemDisplay2Addr = 0xE80
	MemDisplay2Size = 0x050
	MemIOAddr       = 0xF00
	MemIOSize       = 0x080

	// MemBufferSize is the packed memory size in bytes, two nibbles per byte.
	MemBufferSize = (MemRAMSize + MemDisplay1Size + MemDisplay2Size + MemIOSize) / 2

	// MaxProgramWords is the 13-bit program counter range.
	MaxProgramWords = 0x2000
)

// Flags register bits.
const (
	FlagC uint8 = 0x1
	FlagZ uint8 = 0x2
	FlagD uint8 = 0x4
	FlagI uint8 = 0x8
)

// Interrupt slots in priority order.
const (
	IntProgTimer = iota
	IntSerial
	IntK10K13
	IntK00K03
	IntStopwatch
	IntClockTimer

	InterruptSlots
)

var interruptVectors = [InterruptSlots]uint8{0x0C, 0x0A, 0x08, 0x06, 0x04, 0x02}

var (
	ErrBreakpoint = errors.New("breakpoint")
	ErrNoHAL      = errors.New("no hal registered")
)

// FaultError stops the machine when the program counter leaves the image or
// lands on a word that decodes to no instruction.
type FaultError struct {
	PC     uint16
	Op     uint16
	Reason string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s at pc 0x%04X (op 0x%03X)", e.Reason, e.PC, e.Op)
}

type Interrupt struct {
	FactorFlag uint8
	Mask       uint8
	Triggered  bool
	Vector     uint8
}

// State is every register, timer and memory cell that makes up a running
// core. Copying it out and back in restores execution exactly.
type State struct {
	PC    uint16
	X     uint16
	Y     uint16
	A     uint8
	B     uint8
	NP    uint8
	SP    uint8
	Flags uint8

	TickCounter              uint32
	ClockTimer2HzTimestamp   uint32
	ClockTimer4HzTimestamp   uint32
	ClockTimer8HzTimestamp   uint32
	ClockTimer16HzTimestamp  uint32
	ClockTimer32HzTimestamp  uint32
	ClockTimer64HzTimestamp  uint32
	ClockTimer128HzTimestamp uint32
	ClockTimer256HzTimestamp uint32

	ProgTimerTimestamp uint32
	ProgTimerEnabled   bool
	ProgTimerData      uint8
	ProgTimerReload    uint8

	CallDepth uint32

	Interrupts [InterruptSlots]Interrupt

	Halted bool

	Memory [MemBufferSize]byte
}

type CPU struct {
	State

	program     []uint16
	breakpoints map[uint16]struct{}
	hal         HAL

	// K00-K03 and K10-K13 pin levels, one bit per pin.
	inputs [2]uint8

	nextPC     uint16
	prevCycles uint8
	lastPSET   bool

	refTs      uint32
	tsFreq     uint32
	speedRatio uint8
}

// New builds a core for program and resets it. freq is the unit of the HAL
// timestamp clock.
func New(program []uint16, breakpoints []uint16, hal HAL, freq uint32) *CPU {
	c := &CPU{
		program:     program,
		breakpoints: make(map[uint16]struct{}, len(breakpoints)),
		hal:         hal,
		tsFreq:      freq,
		speedRatio:  1,
	}
	for _, bp := range breakpoints {
		c.breakpoints[bp&0x1FFF] = struct{}{}
	}
	c.Reset()
	c.initHW()
	return c
}

func toPC(bank, page, step uint16) uint16 {
	return step&0xFF | (page&0xF)<<8 | (bank&0x1)<<12
}

func toNP(bank, page uint8) uint8 {
	return page&0xF | (bank&0x1)<<4
}

// Reset puts the core in its power-on state.
func (c *CPU) Reset() {
	c.PC = toPC(0, 1, 0x00)
	c.NP = toNP(0, 1)
	c.A, c.B = 0, 0
	c.X, c.Y = 0, 0
	c.SP = 0
	c.Flags = 0

	c.Memory = [MemBufferSize]byte{}
	c.poke(regR40R43BuzzerOutput, 0xF)
	c.poke(regLCDCtrl, 0x8)

	c.TickCounter = 0
	c.ClockTimer2HzTimestamp = 0
	c.ClockTimer4HzTimestamp = 0
	c.ClockTimer8HzTimestamp = 0
	c.ClockTimer16HzTimestamp = 0
	c.ClockTimer32HzTimestamp = 0
	c.ClockTimer64HzTimestamp = 0
	c.ClockTimer128HzTimestamp = 0
	c.ClockTimer256HzTimestamp = 0
	c.ProgTimerTimestamp = 0
	c.ProgTimerEnabled = false
	c.ProgTimerData = 0
	c.ProgTimerReload = 0
	c.CallDepth = 0
	for i := range c.Interrupts {
		c.Interrupts[i] = Interrupt{Vector: interruptVectors[i]}
	}
	c.Halted = false

	c.nextPC = c.PC
	c.prevCycles = 0
	c.lastPSET = false
	c.SyncRefTimestamp()
}

// SyncRefTimestamp realigns the pacing reference with the HAL clock, so
// time spent paused is not made up for.
func (c *CPU) SyncRefTimestamp() {
	c.refTs = c.hal.Timestamp()
}

// SetSpeed sets the pacing ratio against real hardware. Zero runs unpaced.
func (c *CPU) SetSpeed(ratio uint8) {
	c.speedRatio = ratio
}

func (c *CPU) logf(level LogLevel, format string, args ...any) {
	if c.hal.IsLogEnabled(level) {
		c.hal.Log(level, format, args...)
	}
}

func (c *CPU) flag(f uint8) bool {
	return c.Flags&f != 0
}

func (c *CPU) setFlag(f uint8, on bool) {
	if on {
		c.Flags |= f
	} else {
		c.Flags &^= f
	}
}

func (c *CPU) carry() uint8 {
	return c.Flags & FlagC
}

// Step executes one instruction, or burns one halt period, then runs the
// timers and takes a pending interrupt.
func (c *CPU) Step() error {
	c.lastPSET = false

	if !c.Halted {
		if int(c.PC) >= len(c.program) {
			err := &FaultError{PC: c.PC, Reason: "pc outside program"}
			c.logf(LogError, "%v\n", err)
			return err
		}

		op := c.program[c.PC] & 0xFFF
		o, ok := Lookup(op)
		if !ok {
			err := &FaultError{PC: c.PC, Op: op, Reason: "unknown op-code"}
			c.logf(LogError, "%v\n", err)
			return err
		}

		if c.hal.IsLogEnabled(LogCPU) {
			c.hal.Log(LogCPU, "0x%04X: %-20s A=%X B=%X X=%03X Y=%03X SP=%02X NP=%02X F=%X\n",
				c.PC, Disassemble(op), c.A, c.B, c.X, c.Y, c.SP, c.NP, c.Flags)
		}

		c.refTs = c.waitForCycles(c.refTs, c.prevCycles)

		c.nextPC = (c.PC + 1) & 0x1FFF
		arg0, arg1 := o.args(op)
		o.exec(c, arg0, arg1)
		c.PC = c.nextPC
		c.prevCycles = o.Cycles

		if o.Code == opPSET {
			c.lastPSET = true
		} else {
			c.NP = uint8(c.PC>>8) & 0x1F
		}
	} else {
		c.refTs = c.waitForCycles(c.refTs, 5)
		c.prevCycles = 0
	}

	c.handleTimers()

	if c.flag(FlagI) && !c.lastPSET {
		c.processInterrupts()
	}

	if _, hit := c.breakpoints[c.PC]; hit {
		c.logf(LogInfo, "breakpoint at 0x%04X\n", c.PC)
		return ErrBreakpoint
	}
	return nil
}

func (c *CPU) generateInterrupt(slot int, bit uint8) {
	in := &c.Interrupts[slot]
	in.FactorFlag |= 1 << bit
	if in.Mask&(1<<bit) != 0 {
		in.Triggered = true
	}
}

func (c *CPU) processInterrupts() {
	for i := range c.Interrupts {
		in := &c.Interrupts[i]
		if !in.Triggered {
			continue
		}

		c.logf(LogInterrupt, "interrupt %d (vector 0x%02X) at 0x%04X\n", i, in.Vector, c.PC)
		c.pushReturn(c.PC)
		c.setFlag(FlagI, false)
		c.NP = toNP((c.NP>>4)&0x1, 1)
		c.PC = toPC(c.PC>>12, 1, uint16(in.Vector))
		c.CallDepth++
		c.refTs = c.waitForCycles(c.refTs, 12)
		in.Triggered = false
		c.Halted = false
		return
	}
}

// pushReturn stores a 13-bit return address as PCP, PCSH, PCSL.
func (c *CPU) pushReturn(pc uint16) {
	sp := uint16(c.SP)
	c.setMemory(sp-1, uint8(pc>>8)&0xF)
	c.setMemory(sp-2, uint8(pc>>4)&0xF)
	c.setMemory(sp-3, uint8(pc)&0xF)
	c.SP -= 3
}

func (c *CPU) popReturn() uint16 {
	sp := uint16(c.SP)
	pc := uint16(c.getMemory(sp)) | uint16(c.getMemory(sp+1))<<4 | uint16(c.getMemory(sp+2))<<8 | (c.PC>>12&0x1)<<12
	c.SP += 3
	if c.CallDepth > 0 {
		c.CallDepth--
	}
	return pc
}
