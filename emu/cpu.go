package emu

import (
	"fmt"

	"github.com/user-none/go-chip-z80"
)

// intPulseTicks is the length of the ULA frame interrupt pulse.
const intPulseTicks = 32

// Registers is the programmer-visible Z80 state used for snapshot
// restore and inspection. Primed pairs use the 2 suffix.
type Registers struct {
	AF, BC, DE, HL     uint16
	AF2, BC2, DE2, HL2 uint16
	IX, IY, SP, PC     uint16
	I, R               uint8
	IFF1, IFF2         bool
	IM                 uint8
}

// CPU is the instruction engine driven by the machine. Execute runs
// whole instructions until at least budget ticks have elapsed and
// returns the ticks actually executed.
type CPU interface {
	Execute(budget int) int
	Reset()
	Registers() Registers
	SetRegisters(r Registers)
	Serialize(buf []byte) error
	Deserialize(buf []byte) error
}

// z80Engine runs go-chip-z80 against a ZXBus. ZXBus implements
// z80.CycleBus, so video and audio are advanced to each access before it
// is serviced and the rest of the instruction is ticked afterwards.
type z80Engine struct {
	cpu *z80.CPU
	bus *ZXBus

	intPending bool
	intHold    int
}

func newZ80Engine(bus *ZXBus) *z80Engine {
	return &z80Engine{
		cpu: z80.New(bus),
		bus: bus,
	}
}

func (e *z80Engine) Execute(budget int) int {
	executed := 0
	for executed < budget {
		prevIFF1 := e.cpu.Registers().IFF1
		e.bus.BeginStep(e.cpu.Cycles())
		n := e.cpu.Step()
		if n <= 0 {
			n = 4
		}
		executed += n

		pins := e.bus.EndStep(n)

		// The interrupt line is released when the CPU accepts it
		// (IFF1 drops) or when the pulse ends.
		if e.intPending {
			e.intHold -= n
			if (prevIFF1 && !e.cpu.Registers().IFF1) || e.intHold <= 0 {
				e.cpu.INT(false, 0xFF)
				e.intPending = false
			}
		}
		if pins&PinINT != 0 {
			e.cpu.INT(true, 0xFF)
			e.intPending = true
			e.intHold = intPulseTicks
		}
	}
	return executed
}

func (e *z80Engine) Reset() {
	e.cpu.Reset()
	e.cpu.INT(false, 0xFF)
	e.intPending = false
	e.intHold = 0
}

func (e *z80Engine) Registers() Registers {
	s := e.cpu.Registers()
	return Registers{
		AF: s.AF, BC: s.BC, DE: s.DE, HL: s.HL,
		AF2: s.AF_, BC2: s.BC_, DE2: s.DE_, HL2: s.HL_,
		IX: s.IX, IY: s.IY, SP: s.SP, PC: s.PC,
		I: s.I, R: s.R,
		IFF1: s.IFF1, IFF2: s.IFF2,
		IM: s.IM,
	}
}

func (e *z80Engine) SetRegisters(r Registers) {
	s := e.cpu.Registers()
	s.AF, s.BC, s.DE, s.HL = r.AF, r.BC, r.DE, r.HL
	s.AF_, s.BC_, s.DE_, s.HL_ = r.AF2, r.BC2, r.DE2, r.HL2
	s.IX, s.IY, s.SP, s.PC = r.IX, r.IY, r.SP, r.PC
	s.I, s.R = r.I, r.R
	s.IFF1, s.IFF2 = r.IFF1, r.IFF2
	switch r.IM {
	case 0:
		s.IM = 0
	case 2:
		s.IM = 2
	default:
		s.IM = 1
	}
	e.cpu.SetState(s)
}

// Serialize writes the engine state plus the interrupt line hold.
func (e *z80Engine) Serialize(buf []byte) error {
	if len(buf) < cpuStateSize {
		return fmt.Errorf("cpu state: buffer too small: %d < %d", len(buf), cpuStateSize)
	}
	if err := e.cpu.Serialize(buf); err != nil {
		return fmt.Errorf("cpu state: %w", err)
	}
	off := z80.SerializeSize
	buf[off] = boolByte(e.intPending)
	buf[off+1] = uint8(clampByte(e.intHold))
	return nil
}

func (e *z80Engine) Deserialize(buf []byte) error {
	if len(buf) < cpuStateSize {
		return fmt.Errorf("cpu state: buffer too small: %d < %d", len(buf), cpuStateSize)
	}
	if err := e.cpu.Deserialize(buf); err != nil {
		return fmt.Errorf("cpu state: %w", err)
	}
	off := z80.SerializeSize
	e.intPending = buf[off] != 0
	e.intHold = int(buf[off+1])
	e.cpu.INT(e.intPending, 0xFF)
	return nil
}

// cpuStateSize is the serialized size of a z80Engine.
const cpuStateSize = z80.SerializeSize + 2

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 0xFF {
		return 0xFF
	}
	return v
}
