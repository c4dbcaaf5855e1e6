package cpu

// add returns a+b+carryIn with the carry and overflow of the 33-bit sum.
func add(a, b uint32, carryIn bool) (result uint32, carry, overflow bool) {
	sum := uint64(a) + uint64(b)
	if carryIn {
		sum++
	}
	result = uint32(sum)
	carry = sum>>32 != 0
	overflow = (^(a^b)&(a^result))>>31 != 0
	return result, carry, overflow
}

// sub returns a-b-!carryIn. Carry is set when no borrow occurred.
func sub(a, b uint32, carryIn bool) (result uint32, carry, overflow bool) {
	return add(a, ^b, carryIn)
}

// multiplyCycles is the number of internal cycles the multiplier takes for the
// operand in Rs. The array terminates early once the remaining bits of the
// operand are all zero, or all one for signed multiplies.
func multiplyCycles(rs uint32, signed bool) uint32 {
	for m, mask := range [...]uint32{0xFFFFFF00, 0xFFFF0000, 0xFF000000} {
		top := rs & mask
		if top == 0 || signed && top == mask {
			return uint32(m + 1)
		}
	}
	return 4
}

// alu computes a data processing opcode. shiftCarry is the carry out of the
// shifter and shiftOK reports whether the shifter produced one. The returned
// flags are what the CPSR would hold if the instruction sets them.
func (cpu *CPU) alu(op ALUOp, op1, op2 uint32, shiftCarry, shiftOK bool) (result uint32, n, z, c, v bool) {
	c = cpu.Regs.Carry()
	v = cpu.Regs.Overflow()
	if op.Logical() && shiftOK {
		c = shiftCarry
	}

	switch op {
	case AND, TST:
		result = op1 & op2
	case EOR, TEQ:
		result = op1 ^ op2
	case SUB, CMP:
		result, c, v = sub(op1, op2, true)
	case RSB:
		result, c, v = sub(op2, op1, true)
	case ADD, CMN:
		result, c, v = add(op1, op2, false)
	case ADC:
		result, c, v = add(op1, op2, cpu.Regs.Carry())
	case SBC:
		result, c, v = sub(op1, op2, cpu.Regs.Carry())
	case RSC:
		result, c, v = sub(op2, op1, cpu.Regs.Carry())
	case ORR:
		result = op1 | op2
	case MOV:
		result = op2
	case BIC:
		result = op1 &^ op2
	case MVN:
		result = ^op2
	}

	return result, result>>31 != 0, result == 0, c, v
}
