package cpu

import (
	"github.com/Div9851/gba-core/internal/clock"
)

// Thumb instructions are narrower encodings of the ARM operations. While one
// executes, R15 reads as the instruction address plus 4.

func (cpu *CPU) executeThumbMoveShifted(inst ThumbMoveShifted) {
	s := Shift{Type: inst.Op, Amount: uint32(inst.Offset)}
	result, carry, ok := ApplyShift(cpu.Regs.GetRegister(int(inst.Rs)), s, cpu.Regs.Carry())
	cpu.Regs.SetRegister(int(inst.Rd), result)
	cpu.Regs.UpdateLogicalFlags(result)
	if ok {
		cpu.Regs.SetCarry(carry)
	}
}

func (cpu *CPU) executeThumbAddSubtract(inst ThumbAddSubtract) {
	op1 := cpu.Regs.GetRegister(int(inst.Rs))
	op2 := uint32(inst.Rn)
	if !inst.Immediate {
		op2 = cpu.Regs.GetRegister(int(inst.Rn))
	}

	var result uint32
	var c, v bool
	if inst.Subtract {
		result, c, v = sub(op1, op2, true)
	} else {
		result, c, v = add(op1, op2, false)
	}
	cpu.Regs.SetRegister(int(inst.Rd), result)
	cpu.Regs.UpdateArithmeticFlags(result, c, v)
}

func (cpu *CPU) executeThumbImmediate(inst ThumbImmediate) {
	rd := cpu.Regs.GetRegister(int(inst.Rd))
	imm := uint32(inst.Imm)

	switch inst.Op {
	case ThumbMOV:
		cpu.Regs.SetRegister(int(inst.Rd), imm)
		cpu.Regs.UpdateLogicalFlags(imm)
	case ThumbCMP:
		result, c, v := sub(rd, imm, true)
		cpu.Regs.UpdateArithmeticFlags(result, c, v)
	case ThumbADD:
		result, c, v := add(rd, imm, false)
		cpu.Regs.SetRegister(int(inst.Rd), result)
		cpu.Regs.UpdateArithmeticFlags(result, c, v)
	case ThumbSUB:
		result, c, v := sub(rd, imm, true)
		cpu.Regs.SetRegister(int(inst.Rd), result)
		cpu.Regs.UpdateArithmeticFlags(result, c, v)
	}
}

func (cpu *CPU) executeThumbALU(inst ThumbALU) {
	rd := cpu.Regs.GetRegister(int(inst.Rd))
	rs := cpu.Regs.GetRegister(int(inst.Rs))
	carry := cpu.Regs.Carry()

	var result uint32
	var c, v bool
	arithmetic := false
	write := true

	switch inst.Op {
	case ThumbAluAND:
		result = rd & rs
	case ThumbAluEOR:
		result = rd ^ rs
	case ThumbAluLSL, ThumbAluLSR, ThumbAluASR, ThumbAluROR:
		s := Shift{Type: thumbShiftType[inst.Op], Amount: rs & 0xFF, ByRegister: true}
		var shiftCarry, ok bool
		result, shiftCarry, ok = ApplyShift(rd, s, carry)
		if ok {
			cpu.Regs.SetCarry(shiftCarry)
		}
		cpu.Clock.Internal(1)
	case ThumbAluADC:
		result, c, v = add(rd, rs, carry)
		arithmetic = true
	case ThumbAluSBC:
		result, c, v = sub(rd, rs, carry)
		arithmetic = true
	case ThumbAluTST:
		result = rd & rs
		write = false
	case ThumbAluNEG:
		result, c, v = sub(0, rs, true)
		arithmetic = true
	case ThumbAluCMP:
		result, c, v = sub(rd, rs, true)
		arithmetic = true
		write = false
	case ThumbAluCMN:
		result, c, v = add(rd, rs, false)
		arithmetic = true
		write = false
	case ThumbAluORR:
		result = rd | rs
	case ThumbAluMUL:
		result = rd * rs
		cpu.Clock.Internal(multiplyCycles(rd, true))
	case ThumbAluBIC:
		result = rd &^ rs
	case ThumbAluMVN:
		result = ^rs
	}

	if write {
		cpu.Regs.SetRegister(int(inst.Rd), result)
	}
	if arithmetic {
		cpu.Regs.UpdateArithmeticFlags(result, c, v)
	} else {
		cpu.Regs.UpdateLogicalFlags(result)
	}
}

var thumbShiftType = map[ThumbALUOp]ShiftType{
	ThumbAluLSL: LSL,
	ThumbAluLSR: LSR,
	ThumbAluASR: ASR,
	ThumbAluROR: ROR,
}

// executeThumbHiRegister is the only Thumb format besides the stack and
// PC-relative forms that reaches R8-R15. Only CMP sets flags.
func (cpu *CPU) executeThumbHiRegister(inst ThumbHiRegister) {
	rs := cpu.Regs.GetRegister(int(inst.Rs))
	rd := cpu.Regs.GetRegister(int(inst.Rd))

	switch inst.Op {
	case ThumbHiADD:
		cpu.Regs.SetRegister(int(inst.Rd), rd+rs)
	case ThumbHiCMP:
		result, c, v := sub(rd, rs, true)
		cpu.Regs.UpdateArithmeticFlags(result, c, v)
	case ThumbHiMOV:
		cpu.Regs.SetRegister(int(inst.Rd), rs)
	case ThumbHiBX:
		cpu.branchExchange(rs)
	}
}

func (cpu *CPU) executeThumbPCRelativeLoad(inst ThumbPCRelativeLoad) {
	addr := cpu.Regs.GetRegister(rPC)&^3 + uint32(inst.Offset)
	value := cpu.load32(addr, clock.NonSequential)
	cpu.Clock.Internal(1)
	cpu.Regs.SetRegister(int(inst.Rd), value)
}

// loadStore is the word or byte transfer shared by the Thumb load/store
// formats.
func (cpu *CPU) loadStore(load, byteWide bool, addr uint32, rd uint8) {
	if !load {
		value := cpu.Regs.GetRegister(int(rd))
		if byteWide {
			cpu.store8(addr, uint8(value), clock.NonSequential)
		} else {
			cpu.store32(addr, value, clock.NonSequential)
		}
		return
	}

	var value uint32
	if byteWide {
		value = uint32(cpu.load8(addr, clock.NonSequential))
	} else {
		value = cpu.load32(addr, clock.NonSequential)
	}
	cpu.Clock.Internal(1)
	cpu.Regs.SetRegister(int(rd), value)
}

func (cpu *CPU) executeThumbLoadStoreRegister(inst ThumbLoadStoreRegister) {
	addr := cpu.Regs.GetRegister(int(inst.Rb)) + cpu.Regs.GetRegister(int(inst.Ro))
	cpu.loadStore(inst.Load, inst.Byte, addr, inst.Rd)
}

func (cpu *CPU) executeThumbLoadStoreSigned(inst ThumbLoadStoreSigned) {
	addr := cpu.Regs.GetRegister(int(inst.Rb)) + cpu.Regs.GetRegister(int(inst.Ro))

	var kind HalfwordKind
	switch inst.Op {
	case ThumbSTRH:
		cpu.store16(addr, uint16(cpu.Regs.GetRegister(int(inst.Rd))), clock.NonSequential)
		return
	case ThumbLDSB:
		kind = SignedByte
	case ThumbLDRH:
		kind = UnsignedHalfword
	case ThumbLDSH:
		kind = SignedHalfword
	}

	value := cpu.loadHalfword(addr, kind)
	cpu.Clock.Internal(1)
	cpu.Regs.SetRegister(int(inst.Rd), value)
}

func (cpu *CPU) executeThumbLoadStoreImmediate(inst ThumbLoadStoreImmediate) {
	addr := cpu.Regs.GetRegister(int(inst.Rb)) + uint32(inst.Offset)
	cpu.loadStore(inst.Load, inst.Byte, addr, inst.Rd)
}

func (cpu *CPU) executeThumbLoadStoreHalfword(inst ThumbLoadStoreHalfword) {
	addr := cpu.Regs.GetRegister(int(inst.Rb)) + uint32(inst.Offset)
	if !inst.Load {
		cpu.store16(addr, uint16(cpu.Regs.GetRegister(int(inst.Rd))), clock.NonSequential)
		return
	}
	value := cpu.loadHalfword(addr, UnsignedHalfword)
	cpu.Clock.Internal(1)
	cpu.Regs.SetRegister(int(inst.Rd), value)
}

func (cpu *CPU) executeThumbSPRelative(inst ThumbSPRelative) {
	addr := cpu.Regs.GetRegister(rSP) + uint32(inst.Offset)
	cpu.loadStore(inst.Load, false, addr, inst.Rd)
}

func (cpu *CPU) executeThumbLoadAddress(inst ThumbLoadAddress) {
	base := cpu.Regs.GetRegister(rPC) &^ 3
	if inst.SP {
		base = cpu.Regs.GetRegister(rSP)
	}
	cpu.Regs.SetRegister(int(inst.Rd), base+uint32(inst.Offset))
}

// executeThumbPushPop is STMDB SP!, {Rlist, LR} and LDMIA SP!, {Rlist, PC}.
// Popping PC doesn't change the instruction set.
func (cpu *CPU) executeThumbPushPop(inst ThumbPushPop) {
	list := uint16(inst.RegList)
	if inst.PCLR {
		if inst.Pop {
			list |= 1 << rPC
		} else {
			list |= 1 << rLR
		}
	}
	cpu.transferBlock(rSP, list, inst.Pop, !inst.Pop, inst.Pop, true, false)
}

func (cpu *CPU) executeThumbMultiple(inst ThumbMultiple) {
	cpu.transferBlock(inst.Rb, uint16(inst.RegList), inst.Load, false, true, true, false)
}

// executeThumbLongBranch is one half of BL. The first half leaves the upper
// part of the target in LR, the second adds the lower part and links.
func (cpu *CPU) executeThumbLongBranch(inst ThumbLongBranch) {
	if !inst.Second {
		offset := uint32(int32(uint32(inst.Offset)<<21) >> 9)
		cpu.Regs.SetRegister(rLR, cpu.Regs.GetRegister(rPC)+offset)
		return
	}

	target := cpu.Regs.GetRegister(rLR) + uint32(inst.Offset)<<1
	cpu.Regs.SetRegister(rLR, (cpu.current+2)|1)
	cpu.Regs.SetRegister(rPC, target)
}
