package emu

// Machine cycle lengths used to place accesses inside an instruction.
const (
	fetchCycleTicks = 4
	memCycleTicks   = 3
	ioCycleTicks    = 4
)

// ZXBus is the system bus. Tick is invoked once per machine cycle; the
// remaining methods adapt it to the go-chip-z80 Bus and CycleBus
// interfaces.
type ZXBus struct {
	mem    *Memory
	ula    *ULA
	beeper *Beeper

	// Position inside the instruction being executed. The engine reports
	// the cycle counter at instruction start, so each access advances
	// stepPos by its machine cycle length.
	stepStart  uint64
	stepPos    int
	stepTicked int
	stepPins   Pins
	overrun    int
}

// NewZXBus creates a bus routing accesses to mem and ula.
func NewZXBus(mem *Memory, ula *ULA, beeper *Beeper) *ZXBus {
	return &ZXBus{mem: mem, ula: ula, beeper: beeper}
}

// Tick advances video and audio by numTicks, then services the memory or
// I/O request described by pins. The returned pins carry read data and
// PinINT when the frame completed.
func (b *ZXBus) Tick(numTicks int, pins Pins) Pins {
	if numTicks > 0 {
		if b.beeper != nil {
			b.beeper.Run(numTicks, b.ula.EAR())
		}
		if b.ula.Clock(numTicks) {
			pins |= PinINT
		}
	}

	switch {
	case pins&PinMREQ != 0:
		addr := pins.Addr()
		if pins&PinRD != 0 {
			pins = pins.WithData(b.mem.Get(addr))
		} else if pins&PinWR != 0 {
			b.mem.Set(addr, pins.Data())
		}
	case pins&PinIORQ != 0:
		addr := pins.Addr()
		if pins&PinRD != 0 {
			pins = pins.WithData(b.ula.ReadPort(addr))
		} else if pins&PinWR != 0 {
			b.ula.WritePort(addr, pins.Data())
		}
	}
	return pins
}

// BeginStep marks the start of an instruction at CPU cycle count start.
func (b *ZXBus) BeginStep(start uint64) {
	b.stepStart = start
	b.stepPos = 0
	b.stepTicked = 0
	b.stepPins = 0
}

// EndStep runs whatever part of an n tick instruction was not already
// run by its accesses. The result carries PinINT if a frame completed
// at any point during the instruction.
func (b *ZXBus) EndStep(n int) Pins {
	pins := b.stepPins
	rest := n - b.stepTicked - b.overrun
	b.overrun = 0
	if rest < 0 {
		b.overrun = -rest
	} else if rest > 0 {
		pins |= b.Tick(rest, 0) & PinINT
	}
	b.BeginStep(b.stepStart + uint64(n))
	return pins
}

// syncAccess advances the ULA to the access reported at cycle, then
// reserves length ticks for it.
func (b *ZXBus) syncAccess(cycle uint64, length int) {
	pos := 0
	if cycle > b.stepStart {
		pos = int(cycle - b.stepStart)
	}
	if pos < b.stepPos {
		pos = b.stepPos
	}
	if d := pos - b.stepTicked; d > 0 {
		b.stepPins |= b.Tick(d, 0) & PinINT
		b.stepTicked = pos
	}
	b.stepPos = pos + length
}

func (b *ZXBus) Fetch(addr uint16) uint8 {
	return b.Tick(0, MakePins(PinM1|PinMREQ|PinRD, addr, 0xFF)).Data()
}

func (b *ZXBus) Read(addr uint16) uint8 {
	return b.Tick(0, MakePins(PinMREQ|PinRD, addr, 0xFF)).Data()
}

func (b *ZXBus) Write(addr uint16, val uint8) {
	b.Tick(0, MakePins(PinMREQ|PinWR, addr, val))
}

func (b *ZXBus) In(port uint16) uint8 {
	return b.Tick(0, MakePins(PinIORQ|PinRD, port, 0xFF)).Data()
}

func (b *ZXBus) Out(port uint16, val uint8) {
	b.Tick(0, MakePins(PinIORQ|PinWR, port, val))
}

func (b *ZXBus) CycleFetch(cycle uint64, addr uint16) uint8 {
	b.syncAccess(cycle, fetchCycleTicks)
	return b.Fetch(addr)
}

func (b *ZXBus) CycleRead(cycle uint64, addr uint16) uint8 {
	b.syncAccess(cycle, memCycleTicks)
	return b.Read(addr)
}

func (b *ZXBus) CycleWrite(cycle uint64, addr uint16, val uint8) {
	b.syncAccess(cycle, memCycleTicks)
	b.Write(addr, val)
}

func (b *ZXBus) CycleIn(cycle uint64, port uint16) uint8 {
	b.syncAccess(cycle, ioCycleTicks)
	return b.In(port)
}

func (b *ZXBus) CycleOut(cycle uint64, port uint16, val uint8) {
	b.syncAccess(cycle, ioCycleTicks)
	b.Out(port, val)
}
