package cpu

// ARM instructions are classified by a 4096 entry table indexed by bits 27-20
// and 7-4 of the encoding. The table is built once, the first time the
// package is used.
var armTable [4096]Format

func init() {
	for i := range armTable {
		armTable[i] = classifyARM(uint16(i))
	}
}

// ARMTableIndex returns the table index of an ARM encoding.
func ARMTableIndex(raw uint32) uint16 {
	return uint16(raw>>16&0xFF0 | raw>>4&0xF)
}

// ARMFormatAt returns the format of the table slot at index.
func ARMFormatAt(index uint16) Format {
	return armTable[index&0xFFF]
}

func classifyARM(index uint16) Format {
	hi := index >> 4
	lo := index & 0xF

	switch hi >> 5 {
	case 0b101:
		return FormatBranch

	case 0b100:
		return FormatBlockDataTransfer

	case 0b110:
		// coprocessor data transfer
		return FormatUndefined

	case 0b111:
		if hi&0x10 != 0 {
			return FormatSoftwareInterrupt
		}
		// coprocessor data operation and register transfer
		return FormatUndefined

	case 0b011:
		if lo&1 != 0 {
			return FormatUndefined
		}
		return FormatSingleDataTransfer

	case 0b010:
		return FormatSingleDataTransfer

	case 0b001:
		// TST and CMP immediate without S have no meaning on this core
		if hi == 0x30 || hi == 0x34 {
			return FormatUndefined
		}
		return FormatDataProcessing
	}

	if hi == 0x12 && lo == 0x1 {
		return FormatBranchExchange
	}

	if lo == 0x9 {
		switch {
		case hi&0xFC == 0x00:
			return FormatMultiply
		case hi&0xF8 == 0x08:
			return FormatMultiplyLong
		case hi&0xFB == 0x10:
			return FormatSingleDataSwap
		}
		return FormatUndefined
	}

	if lo&0x9 == 0x9 {
		load := hi&1 != 0
		if !load && HalfwordKind(lo>>1&3) != UnsignedHalfword {
			return FormatUndefined
		}
		return FormatHalfwordTransfer
	}

	return FormatDataProcessing
}

// DecodeARM decodes a 32-bit ARM encoding. An encoding with no format, or
// with the NV condition, returns a *DecodeError.
func DecodeARM(raw uint32) (Instruction, error) {
	index := ARMTableIndex(raw)
	cond := Condition(raw >> 28)
	if cond == NV {
		return nil, &DecodeError{Raw: raw, Index: index, Set: SetARM}
	}
	c := conditional{Cond: cond}

	switch armTable[index] {
	case FormatDataProcessing:
		return decodeDataProcessing(c, raw), nil
	case FormatSingleDataTransfer:
		return decodeSingleDataTransfer(c, raw), nil
	case FormatHalfwordTransfer:
		return decodeHalfwordTransfer(c, raw), nil
	case FormatBlockDataTransfer:
		return BlockDataTransfer{
			conditional: c,
			PreIndex:    bit(raw, 24),
			Up:          bit(raw, 23),
			UserBank:    bit(raw, 22),
			WriteBack:   bit(raw, 21),
			Load:        bit(raw, 20),
			Rn:          field(raw, 16),
			RegList:     uint16(raw),
		}, nil
	case FormatSingleDataSwap:
		return SingleDataSwap{
			conditional: c,
			Byte:        bit(raw, 22),
			Rn:          field(raw, 16),
			Rd:          field(raw, 12),
			Rm:          field(raw, 0),
		}, nil
	case FormatMultiply:
		return Multiply{
			conditional: c,
			Accumulate:  bit(raw, 21),
			S:           bit(raw, 20),
			Rd:          field(raw, 16),
			Rn:          field(raw, 12),
			Rs:          field(raw, 8),
			Rm:          field(raw, 0),
		}, nil
	case FormatMultiplyLong:
		return MultiplyLong{
			conditional: c,
			Signed:      bit(raw, 22),
			Accumulate:  bit(raw, 21),
			S:           bit(raw, 20),
			RdHi:        field(raw, 16),
			RdLo:        field(raw, 12),
			Rs:          field(raw, 8),
			Rm:          field(raw, 0),
		}, nil
	case FormatBranch:
		return Branch{
			conditional: c,
			Link:        bit(raw, 24),
			Offset:      int32(raw<<8) >> 6,
		}, nil
	case FormatBranchExchange:
		return BranchExchange{conditional: c, Rm: field(raw, 0)}, nil
	case FormatSoftwareInterrupt:
		return SoftwareInterrupt{conditional: c, Comment: raw & 0xFFFFFF}, nil
	}

	return nil, &DecodeError{Raw: raw, Index: index, Set: SetARM}
}

func decodeDataProcessing(c conditional, raw uint32) DataProcessing {
	inst := DataProcessing{
		conditional: c,
		Opcode:      ALUOp(raw >> 21 & 0xF),
		S:           bit(raw, 20),
		Rn:          field(raw, 16),
		Rd:          field(raw, 12),
	}
	if bit(raw, 25) {
		inst.Operand = Operand2{
			Immediate: true,
			Imm:       uint8(raw),
			Rotate:    field(raw, 8),
		}
		return inst
	}

	inst.Operand = Operand2{
		Rm:    field(raw, 0),
		Shift: ShiftType(raw >> 5 & 3),
	}
	if bit(raw, 4) {
		inst.Operand.ByRegister = true
		inst.Operand.Rs = field(raw, 8)
	} else {
		inst.Operand.Amount = uint8(raw >> 7 & 0x1F)
	}
	return inst
}

func decodeSingleDataTransfer(c conditional, raw uint32) SingleDataTransfer {
	return SingleDataTransfer{
		conditional:    c,
		RegisterOffset: bit(raw, 25),
		PreIndex:       bit(raw, 24),
		Up:             bit(raw, 23),
		Byte:           bit(raw, 22),
		WriteBack:      bit(raw, 21),
		Load:           bit(raw, 20),
		Rn:             field(raw, 16),
		Rd:             field(raw, 12),
		Imm:            uint16(raw & 0xFFF),
		Rm:             field(raw, 0),
		Shift:          ShiftType(raw >> 5 & 3),
		Amount:         uint8(raw >> 7 & 0x1F),
	}
}

func decodeHalfwordTransfer(c conditional, raw uint32) HalfwordTransfer {
	return HalfwordTransfer{
		conditional:     c,
		PreIndex:        bit(raw, 24),
		Up:              bit(raw, 23),
		ImmediateOffset: bit(raw, 22),
		WriteBack:       bit(raw, 21),
		Load:            bit(raw, 20),
		Rn:              field(raw, 16),
		Rd:              field(raw, 12),
		Kind:            HalfwordKind(raw >> 5 & 3),
		Imm:             uint8(raw>>4&0xF0 | raw&0xF),
		Rm:              field(raw, 0),
	}
}

func bit(raw uint32, n uint) bool {
	return raw>>n&1 != 0
}

// 4-bit register field at bit n
func field(raw uint32, n uint) uint8 {
	return uint8(raw >> n & 0xF)
}
