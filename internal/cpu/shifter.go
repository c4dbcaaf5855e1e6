package cpu

import (
	"fmt"
	"math/bits"
)

// ShiftType selects the barrel shifter operation.
type ShiftType uint8

const (
	LSL ShiftType = iota
	LSR
	ASR
	ROR
)

func (t ShiftType) String() string {
	return [...]string{"LSL", "LSR", "ASR", "ROR"}[t&3]
}

// Shift is a barrel shifter operation. For an immediate shift Amount is the
// 5-bit field from the instruction. For a register shift Amount is the value
// of the shift register, of which only the low byte is used.
type Shift struct {
	Type       ShiftType
	Amount     uint32
	ByRegister bool
}

// ApplyShift runs value through the barrel shifter. carry is the current C
// flag, only needed by RRX. If ok is false the C flag must be left as it is.
func ApplyShift(value uint32, s Shift, carry bool) (result uint32, carryOut bool, ok bool) {
	if s.ByRegister {
		return shiftByRegister(value, s.Type, s.Amount&0xFF)
	}
	return shiftByImmediate(value, s.Type, s.Amount&0x1F, carry)
}

// an immediate amount of 0 encodes LSL #0, LSR #32, ASR #32 and RRX
func shiftByImmediate(value uint32, t ShiftType, amount uint32, carry bool) (uint32, bool, bool) {
	switch t {
	case LSL:
		if amount == 0 {
			return value, false, false
		}
		return value << amount, value>>(32-amount)&1 != 0, true

	case LSR:
		if amount == 0 {
			return 0, value>>31 != 0, true
		}
		return value >> amount, value>>(amount-1)&1 != 0, true

	case ASR:
		if amount == 0 {
			if value>>31 != 0 {
				return 0xFFFFFFFF, true, true
			}
			return 0, false, true
		}
		return uint32(int32(value) >> amount), value>>(amount-1)&1 != 0, true

	case ROR:
		if amount == 0 {
			result := value >> 1
			if carry {
				result |= 1 << 31
			}
			return result, value&1 != 0, true
		}
		return bits.RotateLeft32(value, -int(amount)), value>>(amount-1)&1 != 0, true
	}
	panic(fmt.Sprintf("cpu: shift type %d", t))
}

// a register amount of 0 is a no-op. amounts of 32 and over saturate
func shiftByRegister(value uint32, t ShiftType, amount uint32) (uint32, bool, bool) {
	if amount == 0 {
		return value, false, false
	}

	switch t {
	case LSL:
		switch {
		case amount < 32:
			return value << amount, value>>(32-amount)&1 != 0, true
		case amount == 32:
			return 0, value&1 != 0, true
		}
		return 0, false, true

	case LSR:
		switch {
		case amount < 32:
			return value >> amount, value>>(amount-1)&1 != 0, true
		case amount == 32:
			return 0, value>>31 != 0, true
		}
		return 0, false, true

	case ASR:
		if amount < 32 {
			return uint32(int32(value) >> amount), value>>(amount-1)&1 != 0, true
		}
		if value>>31 != 0 {
			return 0xFFFFFFFF, true, true
		}
		return 0, false, true

	case ROR:
		amount &= 31
		if amount == 0 {
			return value, value>>31 != 0, true
		}
		return bits.RotateLeft32(value, -int(amount)), value>>(amount-1)&1 != 0, true
	}
	panic(fmt.Sprintf("cpu: shift type %d", t))
}

// RotateImmediate expands the 8-bit immediate of a data processing
// instruction. A rotate of 0 leaves the C flag alone.
func RotateImmediate(imm uint8, rotate uint8) (result uint32, carryOut bool, ok bool) {
	if rotate == 0 {
		return uint32(imm), false, false
	}
	result = bits.RotateLeft32(uint32(imm), -int(rotate&0xF)*2)
	return result, result>>31 != 0, true
}

// ResolveAddress applies an offset to a base register. access is the address
// used for the transfer and writeback is the value the base is written back
// with, if at all.
func ResolveAddress(base, offset uint32, preIndex, up bool) (access, writeback uint32) {
	if up {
		writeback = base + offset
	} else {
		writeback = base - offset
	}
	if preIndex {
		return writeback, writeback
	}
	return base, writeback
}

// BlockAddresses returns the lowest address of a block transfer of count
// registers and the value the base is written back with. Registers are
// always transferred in ascending order from the lowest address.
func BlockAddresses(base uint32, count int, preIndex, up bool) (start, writeback uint32) {
	size := uint32(count) * 4
	switch {
	case up && !preIndex:
		return base, base + size
	case up && preIndex:
		return base + 4, base + size
	case !up && !preIndex:
		return base - size + 4, base - size
	default:
		return base - size, base - size
	}
}
