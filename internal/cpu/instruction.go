package cpu

import "fmt"

// Format identifies the encoding class of a decoded instruction.
type Format int

const (
	FormatUndefined Format = iota

	FormatDataProcessing
	FormatSingleDataTransfer
	FormatHalfwordTransfer
	FormatBlockDataTransfer
	FormatSingleDataSwap
	FormatMultiply
	FormatMultiplyLong
	FormatBranch
	FormatBranchExchange
	FormatSoftwareInterrupt

	FormatThumbMoveShifted
	FormatThumbAddSubtract
	FormatThumbImmediate
	FormatThumbALU
	FormatThumbHiRegister
	FormatThumbPCRelativeLoad
	FormatThumbLoadStoreRegister
	FormatThumbLoadStoreSigned
	FormatThumbLoadStoreImmediate
	FormatThumbLoadStoreHalfword
	FormatThumbSPRelative
	FormatThumbLoadAddress
	FormatThumbAdjustSP
	FormatThumbPushPop
	FormatThumbMultiple
	FormatThumbConditionalBranch
	FormatThumbSoftwareInterrupt
	FormatThumbBranch
	FormatThumbLongBranch
)

var formatNames = map[Format]string{
	FormatUndefined:               "undefined",
	FormatDataProcessing:          "data processing",
	FormatSingleDataTransfer:      "single data transfer",
	FormatHalfwordTransfer:        "halfword data transfer",
	FormatBlockDataTransfer:       "block data transfer",
	FormatSingleDataSwap:          "single data swap",
	FormatMultiply:                "multiply",
	FormatMultiplyLong:            "multiply long",
	FormatBranch:                  "branch",
	FormatBranchExchange:          "branch and exchange",
	FormatSoftwareInterrupt:       "software interrupt",
	FormatThumbMoveShifted:        "move shifted register",
	FormatThumbAddSubtract:        "add/subtract",
	FormatThumbImmediate:          "move/compare/add/subtract immediate",
	FormatThumbALU:                "ALU operation",
	FormatThumbHiRegister:         "hi register operation/branch exchange",
	FormatThumbPCRelativeLoad:     "PC-relative load",
	FormatThumbLoadStoreRegister:  "load/store with register offset",
	FormatThumbLoadStoreSigned:    "load/store sign-extended byte/halfword",
	FormatThumbLoadStoreImmediate: "load/store with immediate offset",
	FormatThumbLoadStoreHalfword:  "load/store halfword",
	FormatThumbSPRelative:         "SP-relative load/store",
	FormatThumbLoadAddress:        "load address",
	FormatThumbAdjustSP:           "add offset to stack pointer",
	FormatThumbPushPop:            "push/pop registers",
	FormatThumbMultiple:           "multiple load/store",
	FormatThumbConditionalBranch:  "conditional branch",
	FormatThumbSoftwareInterrupt:  "software interrupt",
	FormatThumbBranch:             "unconditional branch",
	FormatThumbLongBranch:         "long branch with link",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Instruction is a decoded ARM or Thumb instruction. The concrete type is one
// of the format structs in this package and is selected with a type switch.
type Instruction interface {
	Format() Format

	// Condition is AL for every Thumb instruction. Thumb conditional branches
	// test their own condition when executed.
	Condition() Condition

	instruction()
}

type conditional struct {
	Cond Condition
}

func (c conditional) Condition() Condition { return c.Cond }
func (conditional) instruction()           {}

// ALUOp is the opcode of a data processing instruction.
type ALUOp uint8

const (
	AND ALUOp = iota
	EOR
	SUB
	RSB
	ADD
	ADC
	SBC
	RSC
	TST
	TEQ
	CMP
	CMN
	ORR
	MOV
	BIC
	MVN
)

var aluOpNames = [16]string{
	"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
	"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN",
}

func (op ALUOp) String() string {
	return aluOpNames[op&0xF]
}

// Test returns true for the opcodes that only set flags.
func (op ALUOp) Test() bool {
	return op >= TST && op <= CMN
}

// Logical returns true for the opcodes whose C flag comes from the shifter.
func (op ALUOp) Logical() bool {
	switch op {
	case AND, EOR, TST, TEQ, ORR, MOV, BIC, MVN:
		return true
	}
	return false
}

// Operand2 is the second operand of a data processing instruction: either a
// rotated 8-bit immediate or a shifted register.
type Operand2 struct {
	Immediate bool
	Imm       uint8
	Rotate    uint8

	Rm         uint8
	Shift      ShiftType
	ByRegister bool
	Amount     uint8
	Rs         uint8
}

// DataProcessing is also used for MRS and MSR, which are encoded as TST, TEQ,
// CMP and CMN without the S bit.
type DataProcessing struct {
	conditional
	Opcode  ALUOp
	S       bool
	Rn      uint8
	Rd      uint8
	Operand Operand2
}

func (DataProcessing) Format() Format { return FormatDataProcessing }

// PSRTransfer returns true if the instruction is an MRS or MSR.
func (inst DataProcessing) PSRTransfer() bool {
	return inst.Opcode.Test() && !inst.S
}

// SingleDataTransfer is LDR, STR, LDRB and STRB.
type SingleDataTransfer struct {
	conditional
	Load      bool
	Byte      bool
	PreIndex  bool
	Up        bool
	WriteBack bool
	Rn        uint8
	Rd        uint8

	// immediate offset, or a shifted register when RegisterOffset is set
	RegisterOffset bool
	Imm            uint16
	Rm             uint8
	Shift          ShiftType
	Amount         uint8
}

func (SingleDataTransfer) Format() Format { return FormatSingleDataTransfer }

// HalfwordKind is the SH field of a halfword data transfer.
type HalfwordKind uint8

const (
	UnsignedHalfword HalfwordKind = 1
	SignedByte       HalfwordKind = 2
	SignedHalfword   HalfwordKind = 3
)

// HalfwordTransfer is LDRH, STRH, LDRSB and LDRSH.
type HalfwordTransfer struct {
	conditional
	Load      bool
	PreIndex  bool
	Up        bool
	WriteBack bool
	Kind      HalfwordKind
	Rn        uint8
	Rd        uint8

	ImmediateOffset bool
	Imm             uint8
	Rm              uint8
}

func (HalfwordTransfer) Format() Format { return FormatHalfwordTransfer }

// BlockDataTransfer is LDM and STM.
type BlockDataTransfer struct {
	conditional
	Load      bool
	PreIndex  bool
	Up        bool
	WriteBack bool

	// the S bit. user bank transfer, or CPSR restore for LDM with R15
	UserBank bool

	Rn      uint8
	RegList uint16
}

func (BlockDataTransfer) Format() Format { return FormatBlockDataTransfer }

// SingleDataSwap is SWP and SWPB.
type SingleDataSwap struct {
	conditional
	Byte bool
	Rn   uint8
	Rd   uint8
	Rm   uint8
}

func (SingleDataSwap) Format() Format { return FormatSingleDataSwap }

// Multiply is MUL and MLA.
type Multiply struct {
	conditional
	Accumulate bool
	S          bool
	Rd         uint8
	Rn         uint8
	Rs         uint8
	Rm         uint8
}

func (Multiply) Format() Format { return FormatMultiply }

// MultiplyLong is UMULL, UMLAL, SMULL and SMLAL.
type MultiplyLong struct {
	conditional
	Signed     bool
	Accumulate bool
	S          bool
	RdHi       uint8
	RdLo       uint8
	Rs         uint8
	Rm         uint8
}

func (MultiplyLong) Format() Format { return FormatMultiplyLong }

// Branch is B and BL. Offset is the sign-extended byte offset from the
// pipelined PC.
type Branch struct {
	conditional
	Link   bool
	Offset int32
}

func (Branch) Format() Format { return FormatBranch }

// BranchExchange is BX.
type BranchExchange struct {
	conditional
	Rm uint8
}

func (BranchExchange) Format() Format { return FormatBranchExchange }

// SoftwareInterrupt is SWI. The comment field is ignored by the processor.
type SoftwareInterrupt struct {
	conditional
	Comment uint32
}

func (SoftwareInterrupt) Format() Format { return FormatSoftwareInterrupt }
