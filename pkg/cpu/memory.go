package cpu

// I/O registers.
const (
	regClockIntFactor     = 0xF00
	regK10K13IntFactor    = 0xF05
	regClockIntMask       = 0xF10
	regK10K13IntMask      = 0xF15
	regClockTimerData1    = 0xF20
	regClockTimerData2    = 0xF21
	regStopwatchData1     = 0xF22
	regStopwatchData2     = 0xF23
	regProgTimerDataLo    = 0xF24
	regProgTimerDataHi    = 0xF25
	regProgTimerReloadLo  = 0xF26
	regProgTimerReloadHi  = 0xF27
	regK00K03Input        = 0xF40
	regK10K13Input        = 0xF42
	regR40R43BuzzerOutput = 0xF54
	regLCDCtrl            = 0xF71
	regSVDCtrl            = 0xF73
	regBuzzerCtrl1        = 0xF74
	regBuzzerCtrl2        = 0xF75
	regProgTimerCtrl      = 0xF78
)

// Interrupt slot behind each factor flag and mask register, F_0 to F_5.
var ioInterruptSlots = [6]int{
	IntClockTimer,
	IntStopwatch,
	IntProgTimer,
	IntSerial,
	IntK00K03,
	IntK10K13,
}

// nibbleIndex maps an address to its position in the packed buffer.
func nibbleIndex(n uint16) (int, bool) {
	switch {
	case n < MemRAMAddr+MemRAMSize:
		return int(n), true
	case n >= MemDisplay1Addr && n < MemDisplay1Addr+MemDisplay1Size:
		return MemRAMSize + int(n-MemDisplay1Addr), true
	case n >= MemDisplay2Addr && n < MemDisplay2Addr+MemDisplay2Size:
		return MemRAMSize + MemDisplay1Size + int(n-MemDisplay2Addr), true
	case n >= MemIOAddr && n < MemIOAddr+MemIOSize:
		return MemRAMSize + MemDisplay1Size + MemDisplay2Size + int(n-MemIOAddr), true
	}
	return 0, false
}

// peek reads the stored nibble without I/O side effects.
func (c *CPU) peek(n uint16) uint8 {
	i, ok := nibbleIndex(n)
	if !ok {
		return 0
	}
	return c.Memory[i>>1] >> ((i & 1) << 2) & 0xF
}

func (c *CPU) poke(n uint16, v uint8) {
	i, ok := nibbleIndex(n)
	if !ok {
		return
	}
	shift := uint8(i&1) << 2
	c.Memory[i>>1] = c.Memory[i>>1]&^(0xF<<shift) | (v&0xF)<<shift
}

// ReadMem returns the nibble stored at n. Unlike a program read it does not
// clear interrupt factor flags.
func (c *CPU) ReadMem(n uint16) uint8 {
	return c.peek(n)
}

// WriteMem stores v at n with the same side effects as a program write.
func (c *CPU) WriteMem(n uint16, v uint8) {
	c.setMemory(n, v)
}

func (c *CPU) getMemory(n uint16) uint8 {
	switch {
	case n >= MemIOAddr && n < MemIOAddr+MemIOSize:
		v := c.getIO(n)
		c.logf(LogMemory, "read  0x%X from i/o 0x%03X\n", v, n)
		return v
	case isDisplay(n) || n < MemRAMAddr+MemRAMSize:
		return c.peek(n)
	}

	c.logf(LogError, "read from invalid address 0x%03X (pc = 0x%04X)\n", n, c.PC)
	return 0
}

func (c *CPU) setMemory(n uint16, v uint8) {
	v &= 0xF
	switch {
	case n < MemRAMAddr+MemRAMSize:
		c.poke(n, v)
	case isDisplay(n):
		c.poke(n, v)
		c.setLCD(n, v)
	case n >= MemIOAddr && n < MemIOAddr+MemIOSize:
		c.poke(n, v)
		c.setIO(n, v)
		c.logf(LogMemory, "write 0x%X to i/o 0x%03X\n", v, n)
	default:
		c.logf(LogError, "write 0x%X to invalid address 0x%03X (pc = 0x%04X)\n", v, n, c.PC)
	}
}

func isDisplay(n uint16) bool {
	return (n >= MemDisplay1Addr && n < MemDisplay1Addr+MemDisplay1Size) ||
		(n >= MemDisplay2Addr && n < MemDisplay2Addr+MemDisplay2Size)
}

func (c *CPU) getIO(n uint16) uint8 {
	switch {
	case n >= regClockIntFactor && n <= regK10K13IntFactor:
		in := &c.Interrupts[ioInterruptSlots[n-regClockIntFactor]]
		v := in.FactorFlag
		in.FactorFlag = 0
		return v
	case n >= regClockIntMask && n <= regK10K13IntMask:
		return c.Interrupts[ioInterruptSlots[n-regClockIntMask]].Mask
	}

	switch n {
	case regStopwatchData1, regStopwatchData2:
		return 0
	case regProgTimerDataLo:
		return c.ProgTimerData & 0xF
	case regProgTimerDataHi:
		return c.ProgTimerData >> 4 & 0xF
	case regProgTimerReloadLo:
		return c.ProgTimerReload & 0xF
	case regProgTimerReloadHi:
		return c.ProgTimerReload >> 4 & 0xF
	case regK00K03Input:
		return c.inputs[0]
	case regK10K13Input:
		return c.inputs[1]
	case regSVDCtrl:
		// Battery is always good.
		return c.peek(n) & 0x7
	case regBuzzerCtrl2:
		return c.peek(n) & 0x3
	case regProgTimerCtrl:
		if c.ProgTimerEnabled {
			return 1
		}
		return 0
	}
	return c.peek(n)
}

func (c *CPU) setIO(n uint16, v uint8) {
	if n >= regClockIntMask && n <= regK10K13IntMask {
		c.Interrupts[ioInterruptSlots[n-regClockIntMask]].Mask = v
		return
	}

	switch n {
	case regProgTimerReloadLo:
		c.ProgTimerReload = c.ProgTimerReload&0xF0 | v
	case regProgTimerReloadHi:
		c.ProgTimerReload = c.ProgTimerReload&0x0F | v<<4
	case regR40R43BuzzerOutput:
		c.hal.PlayFrequency(v&0x8 == 0)
	case regBuzzerCtrl1:
		c.setBuzzerFrequency(v & 0x7)
	case regProgTimerCtrl:
		if v&0x2 != 0 {
			c.ProgTimerData = c.ProgTimerReload
		}
		if v&0x1 != 0 && !c.ProgTimerEnabled {
			c.ProgTimerTimestamp = c.TickCounter
		}
		c.ProgTimerEnabled = v&0x1 != 0
	}
}

var refreshRanges = []struct {
	addr uint16
	size uint16
}{
	{MemDisplay1Addr, MemDisplay1Size},
	{MemDisplay2Addr, MemDisplay2Size},
	{regBuzzerCtrl1, 1},
	{regR40R43BuzzerOutput, 1},
}

// RefreshHW replays display memory and buzzer registers through the HAL.
// Call it after writing State directly.
func (c *CPU) RefreshHW() {
	for _, r := range refreshRanges {
		for n := r.addr; n < r.addr+r.size; n++ {
			c.setMemory(n, c.peek(n))
		}
	}
}
