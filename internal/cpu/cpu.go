// Package cpu is an ARM7TDMI interpreter. It decodes and executes the ARM and
// Thumb instruction sets against a memory.Memory, and charges the cycle cost
// of every bus access to a clock.Clock.
//
// There is no pipeline. The effect of the pipeline on R15 is a fixed offset,
// applied when an instruction starts executing, and a write to R15 costs a
// refill at the branch target.
package cpu

import (
	"fmt"

	"github.com/Div9851/gba-core/internal/clock"
	"github.com/Div9851/gba-core/internal/memory"
)

type CPU struct {
	Regs  *Registers
	Bus   memory.Memory
	Clock *clock.Clock

	// address of the instruction being executed
	current uint32

	// bus cycle type of the next opcode fetch. a data write makes the next
	// fetch non-sequential
	prefetch clock.Access
}

func NewCPU(mem memory.Memory, clk *clock.Clock) *CPU {
	return &CPU{
		Regs:     NewRegisters(),
		Bus:      mem,
		Clock:    clk,
		prefetch: clock.Sequential,
	}
}

// Reset resets the register file. See Registers.Reset.
func (cpu *CPU) Reset(skipBIOS bool) {
	cpu.Regs.Reset(skipBIOS)
	cpu.prefetch = clock.Sequential
}

func (cpu *CPU) String() string {
	return cpu.Regs.String()
}

func (cpu *CPU) instructionWidth() uint32 {
	if cpu.Regs.Thumb() {
		return 2
	}
	return 4
}

func (cpu *CPU) codeWidth() clock.Width {
	if cpu.Regs.Thumb() {
		return clock.Half
	}
	return clock.Word
}

// Decode decodes the instruction at the current PC without executing it.
func (cpu *CPU) Decode() (Instruction, error) {
	pc := cpu.Regs.PC()
	if cpu.Regs.Thumb() {
		return DecodeThumb(uint16(cpu.Bus.Read16(pc &^ 1)))
	}
	return DecodeARM(cpu.Bus.Read32(pc &^ 3))
}

// Step fetches, decodes and executes the instruction at PC and returns the
// number of cycles it took. An instruction whose condition fails is skipped
// and costs nothing.
//
// A *DecodeError is returned without PC having moved. The caller decides
// whether to stop, skip the word or raise the undefined instruction
// exception.
func (cpu *CPU) Step() (uint32, error) {
	inst, err := cpu.Decode()
	if err != nil {
		return 0, err
	}

	if cond := inst.Condition(); cond != AL && !cond.Evaluate(cpu.Regs.CPSR()) {
		width := cpu.instructionWidth()
		cpu.Regs.SetPC(cpu.Regs.PC()&^(width-1) + width)
		return 0, nil
	}

	return cpu.Execute(inst), nil
}

// Execute runs inst as the instruction at the current PC and leaves PC at the
// next instruction. It doesn't check the condition of inst. The returned
// cycles are also accumulated in the clock.
func (cpu *CPU) Execute(inst Instruction) uint32 {
	start := cpu.Clock.Cycles()

	width := cpu.instructionWidth()
	cpu.current = cpu.Regs.PC() &^ (width - 1)
	cpu.Regs.r[rPC] = cpu.current + 2*width
	cpu.Regs.pcWritten = false

	cpu.Clock.Access(cpu.current, cpu.codeWidth(), cpu.prefetch)
	cpu.prefetch = clock.Sequential

	switch inst := inst.(type) {
	case DataProcessing:
		if inst.PSRTransfer() {
			cpu.executePSRTransfer(inst)
		} else {
			cpu.executeDataProcessing(inst)
		}
	case SingleDataTransfer:
		cpu.executeSingleDataTransfer(inst)
	case HalfwordTransfer:
		cpu.executeHalfwordTransfer(inst)
	case BlockDataTransfer:
		cpu.executeBlockDataTransfer(inst)
	case SingleDataSwap:
		cpu.executeSingleDataSwap(inst)
	case Multiply:
		cpu.executeMultiply(inst)
	case MultiplyLong:
		cpu.executeMultiplyLong(inst)
	case Branch:
		cpu.executeBranch(inst)
	case BranchExchange:
		cpu.executeBranchExchange(inst)
	case SoftwareInterrupt:
		cpu.enterException(ExceptionSoftwareInterrupt, cpu.current+width)

	case ThumbMoveShifted:
		cpu.executeThumbMoveShifted(inst)
	case ThumbAddSubtract:
		cpu.executeThumbAddSubtract(inst)
	case ThumbImmediate:
		cpu.executeThumbImmediate(inst)
	case ThumbALU:
		cpu.executeThumbALU(inst)
	case ThumbHiRegister:
		cpu.executeThumbHiRegister(inst)
	case ThumbPCRelativeLoad:
		cpu.executeThumbPCRelativeLoad(inst)
	case ThumbLoadStoreRegister:
		cpu.executeThumbLoadStoreRegister(inst)
	case ThumbLoadStoreSigned:
		cpu.executeThumbLoadStoreSigned(inst)
	case ThumbLoadStoreImmediate:
		cpu.executeThumbLoadStoreImmediate(inst)
	case ThumbLoadStoreHalfword:
		cpu.executeThumbLoadStoreHalfword(inst)
	case ThumbSPRelative:
		cpu.executeThumbSPRelative(inst)
	case ThumbLoadAddress:
		cpu.executeThumbLoadAddress(inst)
	case ThumbAdjustSP:
		cpu.Regs.SetRegister(rSP, cpu.Regs.GetRegister(rSP)+uint32(inst.Offset))
	case ThumbPushPop:
		cpu.executeThumbPushPop(inst)
	case ThumbMultiple:
		cpu.executeThumbMultiple(inst)
	case ThumbConditionalBranch:
		if inst.Cond.Evaluate(cpu.Regs.CPSR()) {
			cpu.Regs.SetRegister(rPC, cpu.Regs.GetRegister(rPC)+uint32(inst.Offset))
		}
	case ThumbSoftwareInterrupt:
		cpu.enterException(ExceptionSoftwareInterrupt, cpu.current+width)
	case ThumbBranch:
		cpu.Regs.SetRegister(rPC, cpu.Regs.GetRegister(rPC)+uint32(inst.Offset))
	case ThumbLongBranch:
		cpu.executeThumbLongBranch(inst)

	default:
		panic(fmt.Sprintf("cpu: cannot execute %T", inst))
	}

	if cpu.Regs.pcWritten {
		cpu.refill()
	} else {
		cpu.Regs.r[rPC] = cpu.current + width
	}

	return cpu.Clock.Cycles() - start
}

// refill aligns the new PC to the instruction set and charges the two fetches
// that refill the pipeline at the branch target.
func (cpu *CPU) refill() {
	cpu.Regs.pcWritten = false

	width := cpu.instructionWidth()
	pc := cpu.Regs.r[rPC] &^ (width - 1)
	cpu.Regs.r[rPC] = pc

	cpu.Clock.Access(pc, cpu.codeWidth(), clock.NonSequential)
	cpu.Clock.Access(pc+width, cpu.codeWidth(), clock.Sequential)
	cpu.prefetch = clock.Sequential
}

func (cpu *CPU) load32(addr uint32, access clock.Access) uint32 {
	cpu.Clock.Access(addr, clock.Word, access)
	return cpu.Bus.Read32(addr)
}

func (cpu *CPU) load16(addr uint32, access clock.Access) uint32 {
	cpu.Clock.Access(addr, clock.Half, access)
	return cpu.Bus.Read16(addr)
}

func (cpu *CPU) load8(addr uint32, access clock.Access) uint8 {
	cpu.Clock.Access(addr, clock.Byte, access)
	return cpu.Bus.Read8(addr)
}

func (cpu *CPU) store32(addr uint32, value uint32, access clock.Access) {
	cpu.Clock.Access(addr, clock.Word, access)
	cpu.Bus.Write32(addr, value)
	cpu.prefetch = clock.NonSequential
}

func (cpu *CPU) store16(addr uint32, value uint16, access clock.Access) {
	cpu.Clock.Access(addr, clock.Half, access)
	cpu.Bus.Write16(addr, value)
	cpu.prefetch = clock.NonSequential
}

func (cpu *CPU) store8(addr uint32, value uint8, access clock.Access) {
	cpu.Clock.Access(addr, clock.Byte, access)
	cpu.Bus.Write8(addr, value)
	cpu.prefetch = clock.NonSequential
}
