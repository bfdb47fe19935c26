package emu

import "testing"

// TestClock_TicksFor tests budget computation without overrun
func TestClock_TicksFor(t *testing.T) {
	testCases := []struct {
		micros   int
		expected int
	}{
		{20000, 70000},
		{1000000, 3500000},
		{1, 3},
		{0, 1},
		{-50, 1},
	}

	for _, tc := range testCases {
		c := NewClock(CPUClockHz)
		if got := c.TicksFor(tc.micros); got != tc.expected {
			t.Errorf("TicksFor(%d): expected %d, got %d", tc.micros, tc.expected, got)
		}
	}
}

// TestClock_OverrunCarry tests that overshoot is deducted from the next slice
func TestClock_OverrunCarry(t *testing.T) {
	c := NewClock(CPUClockHz)

	budget := c.TicksFor(20000)
	c.RecordExecuted(budget + 11)
	if c.Overrun() != 11 {
		t.Fatalf("Overrun: expected 11, got %d", c.Overrun())
	}

	if got := c.TicksFor(20000); got != 70000-11 {
		t.Errorf("Second slice: expected %d, got %d", 70000-11, got)
	}

	// Exactly on budget clears the overrun
	c.RecordExecuted(c.TicksToRun())
	if c.Overrun() != 0 {
		t.Errorf("Overrun after exact slice: expected 0, got %d", c.Overrun())
	}

	// Under budget clears it too
	c.TicksFor(20000)
	c.RecordExecuted(10)
	if c.Overrun() != 0 {
		t.Errorf("Overrun after short slice: expected 0, got %d", c.Overrun())
	}
}

// TestClock_OverrunClamp tests that a huge overrun still grants one tick
func TestClock_OverrunClamp(t *testing.T) {
	c := NewClock(CPUClockHz)
	c.TicksFor(10)
	c.RecordExecuted(100000)

	if got := c.TicksFor(10); got != 1 {
		t.Errorf("TicksFor with overrun > budget: expected 1, got %d", got)
	}
}

// TestClock_Throughput tests that repeated slices stay within one tick of nominal
func TestClock_Throughput(t *testing.T) {
	c := NewClock(CPUClockHz)
	for _, us := range []int{1, 7, 333, 20000, 123457} {
		nominal := CPUClockHz * us / 1000000
		got := c.TicksFor(us)
		c.RecordExecuted(got)
		if got < nominal-1 || got > nominal+1 {
			t.Errorf("TicksFor(%d): expected %d±1, got %d", us, nominal, got)
		}
		if got < 1 {
			t.Errorf("TicksFor(%d): expected >= 1, got %d", us, got)
		}
	}
}
