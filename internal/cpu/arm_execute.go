package cpu

import (
	"math/bits"

	"github.com/Div9851/gba-core/internal/clock"
	"github.com/Div9851/gba-core/internal/logger"
)

// operand2 evaluates the second operand of a data processing instruction. A
// register-specified shift takes an extra internal cycle, during which the
// PC moves on by another word.
func (cpu *CPU) operand2(op Operand2) (value uint32, carry bool, ok bool) {
	if op.Immediate {
		return RotateImmediate(op.Imm, op.Rotate)
	}

	value = cpu.Regs.GetRegister(int(op.Rm))
	s := Shift{Type: op.Shift, Amount: uint32(op.Amount)}
	if op.ByRegister {
		if op.Rm == rPC {
			value += 4
		}
		s.Amount = cpu.Regs.GetRegister(int(op.Rs)) & 0xFF
		s.ByRegister = true
		cpu.Clock.Internal(1)
	}
	return ApplyShift(value, s, cpu.Regs.Carry())
}

func (cpu *CPU) executeDataProcessing(inst DataProcessing) {
	op2, shiftCarry, shiftOK := cpu.operand2(inst.Operand)

	op1 := cpu.Regs.GetRegister(int(inst.Rn))
	if inst.Rn == rPC && !inst.Operand.Immediate && inst.Operand.ByRegister {
		op1 += 4
	}

	result, n, z, c, v := cpu.alu(inst.Opcode, op1, op2, shiftCarry, shiftOK)

	if !inst.Opcode.Test() {
		cpu.Regs.SetRegister(int(inst.Rd), result)
	}

	if !inst.S {
		return
	}

	if inst.Rd != rPC {
		cpu.Regs.SetFlags(n, z, c, v)
		return
	}

	// with R15 as the destination the S bit returns from an exception
	if !cpu.Regs.HasSPSR() {
		logger.Logf("cpu", "%s with S to R15 in %s mode (%08x)", inst.Opcode, cpu.Regs.Mode(), cpu.current)
		return
	}
	cpu.Regs.SetCPSR(cpu.Regs.GetSPSR())
}

// PSR transfer fields of a DataProcessing instruction.
const (
	psrSPSR = 1 << 1 // opcode bit 1, instruction bit 22
	psrMSR  = 1 << 0 // opcode bit 0, instruction bit 21
)

// psrFieldMask expands the field mask in bits 19-16 (the Rn field) of an MSR.
func psrFieldMask(fields uint8) uint32 {
	var mask uint32
	for i := range 4 {
		if fields&(1<<i) != 0 {
			mask |= 0xFF << (i * 8)
		}
	}
	return mask
}

func (cpu *CPU) executePSRTransfer(inst DataProcessing) {
	spsr := inst.Opcode&psrSPSR != 0

	if inst.Opcode&psrMSR == 0 {
		// MRS
		value := cpu.Regs.CPSR()
		if spsr {
			if cpu.Regs.HasSPSR() {
				value = cpu.Regs.GetSPSR()
			} else {
				logger.Logf("cpu", "MRS of SPSR in %s mode (%08x)", cpu.Regs.Mode(), cpu.current)
			}
		}
		cpu.Regs.SetRegister(int(inst.Rd), value)
		return
	}

	var value uint32
	if inst.Operand.Immediate {
		value, _, _ = RotateImmediate(inst.Operand.Imm, inst.Operand.Rotate)
	} else {
		value = cpu.Regs.GetRegister(int(inst.Operand.Rm))
	}
	mask := psrFieldMask(inst.Rn)

	if spsr {
		if !cpu.Regs.HasSPSR() {
			logger.Logf("cpu", "MSR to SPSR in %s mode (%08x)", cpu.Regs.Mode(), cpu.current)
			return
		}
		cpu.Regs.SetSPSR(cpu.Regs.GetSPSR()&^mask | value&mask)
		return
	}

	// user mode can only change the flags. the T bit is never written by MSR
	if cpu.Regs.Mode() == ModeUSR {
		mask &= 0xFF000000
	}
	mask &^= BitT
	cpu.Regs.SetCPSR(cpu.Regs.CPSR()&^mask | value&mask)
}

func (cpu *CPU) executeSingleDataTransfer(inst SingleDataTransfer) {
	offset := uint32(inst.Imm)
	if inst.RegisterOffset {
		s := Shift{Type: inst.Shift, Amount: uint32(inst.Amount)}
		offset, _, _ = ApplyShift(cpu.Regs.GetRegister(int(inst.Rm)), s, cpu.Regs.Carry())
	}

	base := cpu.Regs.GetRegister(int(inst.Rn))
	addr, writeback := ResolveAddress(base, offset, inst.PreIndex, inst.Up)
	wb := inst.WriteBack || !inst.PreIndex

	if !inst.Load {
		value := cpu.Regs.GetRegister(int(inst.Rd))
		if inst.Rd == rPC {
			value += 4
		}
		if inst.Byte {
			cpu.store8(addr, uint8(value), clock.NonSequential)
		} else {
			cpu.store32(addr, value, clock.NonSequential)
		}
		if wb {
			cpu.Regs.SetRegister(int(inst.Rn), writeback)
		}
		return
	}

	var value uint32
	if inst.Byte {
		value = uint32(cpu.load8(addr, clock.NonSequential))
	} else {
		value = cpu.load32(addr, clock.NonSequential)
	}
	cpu.Clock.Internal(1)

	if wb && inst.Rn != inst.Rd {
		cpu.Regs.SetRegister(int(inst.Rn), writeback)
	}
	cpu.Regs.SetRegister(int(inst.Rd), value)
}

// loadHalfword performs the load of an LDRH, LDRSB or LDRSH. A signed
// halfword load from an odd address loads the sign-extended byte instead.
func (cpu *CPU) loadHalfword(addr uint32, kind HalfwordKind) uint32 {
	switch kind {
	case SignedByte:
		return uint32(int8(cpu.load8(addr, clock.NonSequential)))
	case SignedHalfword:
		if addr&1 != 0 {
			return uint32(int8(cpu.load8(addr, clock.NonSequential)))
		}
		return uint32(int16(cpu.load16(addr, clock.NonSequential)))
	}
	return cpu.load16(addr, clock.NonSequential)
}

func (cpu *CPU) executeHalfwordTransfer(inst HalfwordTransfer) {
	offset := uint32(inst.Imm)
	if !inst.ImmediateOffset {
		offset = cpu.Regs.GetRegister(int(inst.Rm))
	}

	base := cpu.Regs.GetRegister(int(inst.Rn))
	addr, writeback := ResolveAddress(base, offset, inst.PreIndex, inst.Up)
	wb := inst.WriteBack || !inst.PreIndex

	if !inst.Load {
		value := cpu.Regs.GetRegister(int(inst.Rd))
		if inst.Rd == rPC {
			value += 4
		}
		cpu.store16(addr, uint16(value), clock.NonSequential)
		if wb {
			cpu.Regs.SetRegister(int(inst.Rn), writeback)
		}
		return
	}

	value := cpu.loadHalfword(addr, inst.Kind)
	cpu.Clock.Internal(1)

	if wb && inst.Rn != inst.Rd {
		cpu.Regs.SetRegister(int(inst.Rn), writeback)
	}
	cpu.Regs.SetRegister(int(inst.Rd), value)
}

// transferBlock is LDM/STM and the Thumb instructions built on it. Registers
// are transferred in ascending order from the lowest address. An empty list
// transfers R15 and moves the base by 16 words. With userBank the registers
// are those of the user bank, whatever the current mode.
//
// On a store the base is written back after the first transfer, so a base
// that is also the lowest register in the list is stored with its original
// value and any other position stores the updated value. On a load the base
// is not written back if it is in the list.
func (cpu *CPU) transferBlock(rn uint8, list uint16, load, preIndex, up, writeBack, userBank bool) {
	count := bits.OnesCount16(list)
	if list == 0 {
		list = 1 << rPC
		count = 16
	}

	base := cpu.Regs.GetRegister(int(rn))
	addr, writeback := BlockAddresses(base, count, preIndex, up)

	get := cpu.Regs.GetRegister
	set := cpu.Regs.SetRegister
	if userBank {
		get = func(n int) uint32 { return cpu.Regs.GetRegisterOverrideMode(n, ModeUSR) }
		set = func(n int, v uint32) { cpu.Regs.SetRegisterOverrideMode(n, ModeUSR, v) }
	}

	access := clock.NonSequential

	if !load {
		first := true
		for i := range 16 {
			if list&(1<<i) == 0 {
				continue
			}
			value := get(i)
			if i == rPC {
				value += cpu.instructionWidth()
			}
			cpu.store32(addr, value, access)
			access = clock.Sequential
			addr += 4

			if first && writeBack {
				cpu.Regs.SetRegister(int(rn), writeback)
			}
			first = false
		}
		return
	}

	if writeBack && list&(1<<rn) == 0 {
		cpu.Regs.SetRegister(int(rn), writeback)
	}
	for i := range 16 {
		if list&(1<<i) == 0 {
			continue
		}
		set(i, cpu.load32(addr, access))
		access = clock.Sequential
		addr += 4
	}
	cpu.Clock.Internal(1)
}

func (cpu *CPU) executeBlockDataTransfer(inst BlockDataTransfer) {
	// with R15 in the list of an LDM, the S bit restores the CPSR instead of
	// selecting the user bank
	restore := inst.UserBank && inst.Load && inst.RegList&(1<<rPC) != 0
	userBank := inst.UserBank && !restore

	cpu.transferBlock(inst.Rn, inst.RegList, inst.Load, inst.PreIndex, inst.Up, inst.WriteBack, userBank)

	if restore {
		if !cpu.Regs.HasSPSR() {
			logger.Logf("cpu", "LDM with S and R15 in %s mode (%08x)", cpu.Regs.Mode(), cpu.current)
			return
		}
		cpu.Regs.SetCPSR(cpu.Regs.GetSPSR())
	}
}

// executeSingleDataSwap reads memory before writing it, and only then writes
// the destination register, so that Rd may equal Rm or Rn.
func (cpu *CPU) executeSingleDataSwap(inst SingleDataSwap) {
	addr := cpu.Regs.GetRegister(int(inst.Rn))
	source := cpu.Regs.GetRegister(int(inst.Rm))

	var old uint32
	if inst.Byte {
		old = uint32(cpu.load8(addr, clock.NonSequential))
		cpu.store8(addr, uint8(source), clock.NonSequential)
	} else {
		old = cpu.load32(addr, clock.NonSequential)
		cpu.store32(addr, source, clock.NonSequential)
	}
	cpu.Clock.Internal(1)

	cpu.Regs.SetRegister(int(inst.Rd), old)
}

// executeMultiply is MUL and MLA. The C flag is left as it is.
func (cpu *CPU) executeMultiply(inst Multiply) {
	rs := cpu.Regs.GetRegister(int(inst.Rs))
	result := cpu.Regs.GetRegister(int(inst.Rm)) * rs

	m := multiplyCycles(rs, true)
	if inst.Accumulate {
		result += cpu.Regs.GetRegister(int(inst.Rn))
		m++
	}
	cpu.Clock.Internal(m)

	cpu.Regs.SetRegister(int(inst.Rd), result)
	if inst.S {
		cpu.Regs.UpdateLogicalFlags(result)
	}
}

// executeMultiplyLong is UMULL, UMLAL, SMULL and SMLAL. The C and V flags are
// left as they are.
func (cpu *CPU) executeMultiplyLong(inst MultiplyLong) {
	rm := cpu.Regs.GetRegister(int(inst.Rm))
	rs := cpu.Regs.GetRegister(int(inst.Rs))

	var result uint64
	if inst.Signed {
		result = uint64(int64(int32(rm)) * int64(int32(rs)))
	} else {
		result = uint64(rm) * uint64(rs)
	}

	m := multiplyCycles(rs, inst.Signed) + 1
	if inst.Accumulate {
		hi := uint64(cpu.Regs.GetRegister(int(inst.RdHi)))
		lo := uint64(cpu.Regs.GetRegister(int(inst.RdLo)))
		result += hi<<32 | lo
		m++
	}
	cpu.Clock.Internal(m)

	cpu.Regs.SetRegister(int(inst.RdLo), uint32(result))
	cpu.Regs.SetRegister(int(inst.RdHi), uint32(result>>32))
	if inst.S {
		cpu.Regs.setFlag(BitN, result>>63 != 0)
		cpu.Regs.setFlag(BitZ, result == 0)
	}
}

func (cpu *CPU) executeBranch(inst Branch) {
	if inst.Link {
		cpu.Regs.SetRegister(rLR, cpu.current+4)
	}
	cpu.Regs.SetRegister(rPC, cpu.Regs.GetRegister(rPC)+uint32(inst.Offset))
}

// branchExchange jumps to target and selects the instruction set from bit 0.
// A Thumb target has bit 0 cleared and an ARM target is word aligned.
func (cpu *CPU) branchExchange(target uint32) {
	if target&1 != 0 {
		cpu.Regs.SetThumb(true)
		cpu.Regs.SetRegister(rPC, target&^1)
		return
	}
	cpu.Regs.SetThumb(false)
	cpu.Regs.SetRegister(rPC, target&^3)
}

func (cpu *CPU) executeBranchExchange(inst BranchExchange) {
	cpu.branchExchange(cpu.Regs.GetRegister(int(inst.Rm)))
}
