package cpu

// Thumb formats are told apart by a prefix of the top bits. The prefixes are
// not all the same width, so the table is walked from the widest prefix to
// the narrowest and the first match wins.
var thumbPrefixes = []struct {
	mask    uint16
	pattern uint16
	format  Format
}{
	// 8 bits
	{0xFF00, 0xDF00, FormatThumbSoftwareInterrupt},
	{0xFF00, 0xDE00, FormatUndefined},
	{0xFF00, 0xB000, FormatThumbAdjustSP},

	// 7 bits (1011x10 and 0101xx0/0101xx1)
	{0xF600, 0xB400, FormatThumbPushPop},
	{0xF200, 0x5000, FormatThumbLoadStoreRegister},
	{0xF200, 0x5200, FormatThumbLoadStoreSigned},

	// 6 bits
	{0xFC00, 0x4000, FormatThumbALU},
	{0xFC00, 0x4400, FormatThumbHiRegister},

	// 5 bits
	{0xF800, 0x1800, FormatThumbAddSubtract},
	{0xF800, 0x4800, FormatThumbPCRelativeLoad},
	{0xF800, 0xE000, FormatThumbBranch},
	{0xF800, 0xE800, FormatUndefined},

	// 4 bits
	{0xF000, 0x8000, FormatThumbLoadStoreHalfword},
	{0xF000, 0x9000, FormatThumbSPRelative},
	{0xF000, 0xA000, FormatThumbLoadAddress},
	{0xF000, 0xB000, FormatUndefined},
	{0xF000, 0xC000, FormatThumbMultiple},
	{0xF000, 0xD000, FormatThumbConditionalBranch},
	{0xF000, 0xF000, FormatThumbLongBranch},

	// 3 bits
	{0xE000, 0x0000, FormatThumbMoveShifted},
	{0xE000, 0x2000, FormatThumbImmediate},
	{0xE000, 0x6000, FormatThumbLoadStoreImmediate},
}

// ThumbFormat returns the format of a 16-bit Thumb encoding.
func ThumbFormat(raw uint16) Format {
	for _, p := range thumbPrefixes {
		if raw&p.mask == p.pattern {
			return p.format
		}
	}
	return FormatUndefined
}

// DecodeThumb decodes a 16-bit Thumb encoding. An encoding with no format
// returns a *DecodeError.
func DecodeThumb(raw uint16) (Instruction, error) {
	r := uint32(raw)
	lo3 := func(n uint) uint8 { return uint8(r >> n & 7) }

	switch ThumbFormat(raw) {
	case FormatThumbMoveShifted:
		return ThumbMoveShifted{
			Op:     ShiftType(r >> 11 & 3),
			Offset: uint8(r >> 6 & 0x1F),
			Rs:     lo3(3),
			Rd:     lo3(0),
		}, nil

	case FormatThumbAddSubtract:
		return ThumbAddSubtract{
			Immediate: bit(r, 10),
			Subtract:  bit(r, 9),
			Rn:        lo3(6),
			Rs:        lo3(3),
			Rd:        lo3(0),
		}, nil

	case FormatThumbImmediate:
		return ThumbImmediate{
			Op:  ThumbImmediateOp(r >> 11 & 3),
			Rd:  lo3(8),
			Imm: uint8(r),
		}, nil

	case FormatThumbALU:
		return ThumbALU{
			Op: ThumbALUOp(r >> 6 & 0xF),
			Rs: lo3(3),
			Rd: lo3(0),
		}, nil

	case FormatThumbHiRegister:
		return ThumbHiRegister{
			Op: ThumbHiRegisterOp(r >> 8 & 3),
			Rs: uint8(r >> 3 & 0xF),
			Rd: lo3(0) | uint8(r>>4&8),
		}, nil

	case FormatThumbPCRelativeLoad:
		return ThumbPCRelativeLoad{
			Rd:     lo3(8),
			Offset: uint16(r&0xFF) << 2,
		}, nil

	case FormatThumbLoadStoreRegister:
		return ThumbLoadStoreRegister{
			Load: bit(r, 11),
			Byte: bit(r, 10),
			Ro:   lo3(6),
			Rb:   lo3(3),
			Rd:   lo3(0),
		}, nil

	case FormatThumbLoadStoreSigned:
		return ThumbLoadStoreSigned{
			Op: ThumbSignedOp(r >> 10 & 3),
			Ro: lo3(6),
			Rb: lo3(3),
			Rd: lo3(0),
		}, nil

	case FormatThumbLoadStoreImmediate:
		inst := ThumbLoadStoreImmediate{
			Byte:   bit(r, 12),
			Load:   bit(r, 11),
			Offset: uint8(r >> 6 & 0x1F),
			Rb:     lo3(3),
			Rd:     lo3(0),
		}
		if !inst.Byte {
			inst.Offset <<= 2
		}
		return inst, nil

	case FormatThumbLoadStoreHalfword:
		return ThumbLoadStoreHalfword{
			Load:   bit(r, 11),
			Offset: uint8(r>>6&0x1F) << 1,
			Rb:     lo3(3),
			Rd:     lo3(0),
		}, nil

	case FormatThumbSPRelative:
		return ThumbSPRelative{
			Load:   bit(r, 11),
			Rd:     lo3(8),
			Offset: uint16(r&0xFF) << 2,
		}, nil

	case FormatThumbLoadAddress:
		return ThumbLoadAddress{
			SP:     bit(r, 11),
			Rd:     lo3(8),
			Offset: uint16(r&0xFF) << 2,
		}, nil

	case FormatThumbAdjustSP:
		offset := int32(r&0x7F) << 2
		if bit(r, 7) {
			offset = -offset
		}
		return ThumbAdjustSP{Offset: offset}, nil

	case FormatThumbPushPop:
		return ThumbPushPop{
			Pop:     bit(r, 11),
			PCLR:    bit(r, 8),
			RegList: uint8(r),
		}, nil

	case FormatThumbMultiple:
		return ThumbMultiple{
			Load:    bit(r, 11),
			Rb:      lo3(8),
			RegList: uint8(r),
		}, nil

	case FormatThumbConditionalBranch:
		return ThumbConditionalBranch{
			Cond:   Condition(r >> 8 & 0xF),
			Offset: int32(int8(r)) << 1,
		}, nil

	case FormatThumbSoftwareInterrupt:
		return ThumbSoftwareInterrupt{Comment: uint8(r)}, nil

	case FormatThumbBranch:
		return ThumbBranch{Offset: int32(r<<21) >> 20}, nil

	case FormatThumbLongBranch:
		return ThumbLongBranch{
			Second: bit(r, 11),
			Offset: uint16(r & 0x7FF),
		}, nil
	}

	return nil, &DecodeError{Raw: r, Index: raw >> 8, Set: SetThumb}
}
