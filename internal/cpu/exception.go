package cpu

import "fmt"

type Exception int

const (
	ExceptionReset Exception = iota
	ExceptionUndefined
	ExceptionSoftwareInterrupt
	ExceptionPrefetchAbort
	ExceptionDataAbort
	ExceptionIRQ
	ExceptionFIQ
)

var exceptionEntry = [...]struct {
	name   string
	mode   Mode
	vector uint32
}{
	ExceptionReset:             {"reset", ModeSVC, 0x00},
	ExceptionUndefined:         {"undefined instruction", ModeUND, 0x04},
	ExceptionSoftwareInterrupt: {"software interrupt", ModeSVC, 0x08},
	ExceptionPrefetchAbort:     {"prefetch abort", ModeABT, 0x0C},
	ExceptionDataAbort:         {"data abort", ModeABT, 0x10},
	ExceptionIRQ:               {"IRQ", ModeIRQ, 0x18},
	ExceptionFIQ:               {"FIQ", ModeFIQ, 0x1C},
}

func (e Exception) String() string {
	if e < 0 || int(e) >= len(exceptionEntry) {
		return fmt.Sprintf("exception(%d)", int(e))
	}
	return exceptionEntry[e].name
}

// Vector returns the address the exception jumps to.
func (e Exception) Vector() uint32 {
	return exceptionEntry[e].vector
}

// enterException switches to the exception mode, saves the old CPSR in the
// mode's SPSR and jumps to the vector in ARM state.
func (cpu *CPU) enterException(e Exception, lr uint32) {
	entry := exceptionEntry[e]

	old := cpu.Regs.CPSR()
	cpsr := old&^(BitM|BitT) | uint32(entry.mode) | BitI
	if e == ExceptionReset || e == ExceptionFIQ {
		cpsr |= BitF
	}

	cpu.Regs.SetCPSR(cpsr)
	cpu.Regs.SetSPSR(old)
	cpu.Regs.SetRegister(rLR, lr)
	cpu.Regs.SetRegister(rPC, entry.vector)
}

// Interrupt takes an IRQ or FIQ before the instruction at PC. It returns the
// cycles spent entering the handler, or zero if the interrupt is masked in
// the CPSR.
func (cpu *CPU) Interrupt(e Exception) uint32 {
	cpsr := cpu.Regs.CPSR()
	switch e {
	case ExceptionIRQ:
		if cpsr&BitI != 0 {
			return 0
		}
	case ExceptionFIQ:
		if cpsr&BitF != 0 {
			return 0
		}
	default:
		panic(fmt.Sprintf("cpu: %s is not an interrupt", e))
	}

	start := cpu.Clock.Cycles()
	next := cpu.Regs.PC() &^ (cpu.instructionWidth() - 1)
	cpu.enterException(e, next+4)
	cpu.refill()
	return cpu.Clock.Cycles() - start
}

// RaiseUndefined takes the undefined instruction exception for the
// instruction at PC. This is what the hardware does with an encoding that
// returned a DecodeError.
func (cpu *CPU) RaiseUndefined() uint32 {
	start := cpu.Clock.Cycles()
	width := cpu.instructionWidth()
	current := cpu.Regs.PC() &^ (width - 1)
	cpu.Clock.Access(current, cpu.codeWidth(), cpu.prefetch)
	cpu.enterException(ExceptionUndefined, current+width)
	cpu.refill()
	return cpu.Clock.Cycles() - start
}
