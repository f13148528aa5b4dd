package cpu

const progTimerPeriod = TickFrequency / 256

type clockTimer struct {
	ts     *uint32
	period uint32
	reg    uint16
	bit    uint8
	// interrupt factor bit raised on the falling edge, or -1
	intBit int8
}

// clockTimers lists the eight clock timer outputs. A timestamp firing at
// 2f Hz toggles the data bit of the f Hz square wave.
func (c *CPU) clockTimers() [8]clockTimer {
	return [8]clockTimer{
		{&c.ClockTimer256HzTimestamp, TickFrequency / 256, regClockTimerData1, 0, -1},
		{&c.ClockTimer128HzTimestamp, TickFrequency / 128, regClockTimerData1, 1, -1},
		{&c.ClockTimer64HzTimestamp, TickFrequency / 64, regClockTimerData1, 2, 0},
		{&c.ClockTimer32HzTimestamp, TickFrequency / 32, regClockTimerData1, 3, -1},
		{&c.ClockTimer16HzTimestamp, TickFrequency / 16, regClockTimerData2, 0, 1},
		{&c.ClockTimer8HzTimestamp, TickFrequency / 8, regClockTimerData2, 1, -1},
		{&c.ClockTimer4HzTimestamp, TickFrequency / 4, regClockTimerData2, 2, 2},
		{&c.ClockTimer2HzTimestamp, TickFrequency / 2, regClockTimerData2, 3, 3},
	}
}

func (c *CPU) handleTimers() {
	for _, t := range c.clockTimers() {
		for c.TickCounter-*t.ts >= t.period {
			*t.ts += t.period

			v := c.peek(t.reg) ^ (1 << t.bit)
			c.poke(t.reg, v)
			if t.intBit >= 0 && v&(1<<t.bit) == 0 {
				c.generateInterrupt(IntClockTimer, uint8(t.intBit))
			}
		}
	}

	if !c.ProgTimerEnabled {
		return
	}
	for c.TickCounter-c.ProgTimerTimestamp >= progTimerPeriod {
		c.ProgTimerTimestamp += progTimerPeriod

		c.ProgTimerData--
		if c.ProgTimerData == 0 {
			c.ProgTimerData = c.ProgTimerReload
			c.generateInterrupt(IntProgTimer, 0)
		}
	}
}

// waitForCycles accounts cycles at the core clock and paces against the
// HAL clock. It returns the new reference timestamp.
func (c *CPU) waitForCycles(since uint32, cycles uint8) uint32 {
	c.TickCounter += uint32(cycles)

	if c.speedRatio == 0 {
		return c.hal.Timestamp()
	}

	deadline := since + uint32(uint64(cycles)*uint64(c.tsFreq)/(TickFrequency*uint64(c.speedRatio)))
	c.hal.SleepUntil(deadline)
	return deadline
}
