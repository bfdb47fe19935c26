package emu

// Clock converts host time slices into CPU tick budgets. Whole-instruction
// execution overshoots the budget; the overshoot is carried into the next
// slice so average throughput matches the configured frequency.
type Clock struct {
	freqHz       int64
	ticksToRun   int
	overrunTicks int
}

// NewClock creates a clock running at freqHz.
func NewClock(freqHz int) *Clock {
	return &Clock{freqHz: int64(freqHz)}
}

// TicksFor returns the tick budget for a slice of micros microseconds.
// The result is never less than 1.
func (c *Clock) TicksFor(micros int) int {
	ticks := int(c.freqHz*int64(micros)/1000000) - c.overrunTicks
	if ticks < 1 {
		ticks = 1
	}
	c.ticksToRun = ticks
	return ticks
}

// RecordExecuted stores the overrun of the last slice.
func (c *Clock) RecordExecuted(executed int) {
	if executed > c.ticksToRun {
		c.overrunTicks = executed - c.ticksToRun
	} else {
		c.overrunTicks = 0
	}
}

// FreqHz returns the clock frequency.
func (c *Clock) FreqHz() int {
	return int(c.freqHz)
}

// TicksToRun returns the budget granted by the last TicksFor call.
func (c *Clock) TicksToRun() int {
	return c.ticksToRun
}

// Overrun returns the ticks that will be deducted from the next slice.
func (c *Clock) Overrun() int {
	return c.overrunTicks
}
