package cpu

type unconditional struct{}

func (unconditional) Condition() Condition { return AL }
func (unconditional) instruction()         {}

// ThumbMoveShifted is LSL, LSR and ASR by an immediate.
type ThumbMoveShifted struct {
	unconditional
	Op     ShiftType
	Offset uint8
	Rs     uint8
	Rd     uint8
}

func (ThumbMoveShifted) Format() Format { return FormatThumbMoveShifted }

// ThumbAddSubtract is ADD and SUB with a register or 3-bit immediate.
type ThumbAddSubtract struct {
	unconditional
	Subtract  bool
	Immediate bool

	// register number, or the immediate when Immediate is set
	Rn uint8

	Rs uint8
	Rd uint8
}

func (ThumbAddSubtract) Format() Format { return FormatThumbAddSubtract }

// ThumbImmediateOp is the opcode of a move/compare/add/subtract immediate.
type ThumbImmediateOp uint8

const (
	ThumbMOV ThumbImmediateOp = iota
	ThumbCMP
	ThumbADD
	ThumbSUB
)

type ThumbImmediate struct {
	unconditional
	Op  ThumbImmediateOp
	Rd  uint8
	Imm uint8
}

func (ThumbImmediate) Format() Format { return FormatThumbImmediate }

// ThumbALUOp is the opcode of a Thumb ALU operation.
type ThumbALUOp uint8

const (
	ThumbAluAND ThumbALUOp = iota
	ThumbAluEOR
	ThumbAluLSL
	ThumbAluLSR
	ThumbAluASR
	ThumbAluADC
	ThumbAluSBC
	ThumbAluROR
	ThumbAluTST
	ThumbAluNEG
	ThumbAluCMP
	ThumbAluCMN
	ThumbAluORR
	ThumbAluMUL
	ThumbAluBIC
	ThumbAluMVN
)

type ThumbALU struct {
	unconditional
	Op ThumbALUOp
	Rs uint8
	Rd uint8
}

func (ThumbALU) Format() Format { return FormatThumbALU }

// ThumbHiRegisterOp is the opcode of a hi register operation.
type ThumbHiRegisterOp uint8

const (
	ThumbHiADD ThumbHiRegisterOp = iota
	ThumbHiCMP
	ThumbHiMOV
	ThumbHiBX
)

// ThumbHiRegister operates on any of R0-R15. Rs and Rd already include the
// H1 and H2 bits.
type ThumbHiRegister struct {
	unconditional
	Op ThumbHiRegisterOp
	Rs uint8
	Rd uint8
}

func (ThumbHiRegister) Format() Format { return FormatThumbHiRegister }

// ThumbPCRelativeLoad is LDR Rd, [PC, #Offset]. Offset is in bytes.
type ThumbPCRelativeLoad struct {
	unconditional
	Rd     uint8
	Offset uint16
}

func (ThumbPCRelativeLoad) Format() Format { return FormatThumbPCRelativeLoad }

type ThumbLoadStoreRegister struct {
	unconditional
	Load bool
	Byte bool
	Ro   uint8
	Rb   uint8
	Rd   uint8
}

func (ThumbLoadStoreRegister) Format() Format { return FormatThumbLoadStoreRegister }

// ThumbSignedOp is the opcode of a load/store sign-extended byte/halfword.
type ThumbSignedOp uint8

const (
	ThumbSTRH ThumbSignedOp = iota
	ThumbLDSB
	ThumbLDRH
	ThumbLDSH
)

type ThumbLoadStoreSigned struct {
	unconditional
	Op ThumbSignedOp
	Ro uint8
	Rb uint8
	Rd uint8
}

func (ThumbLoadStoreSigned) Format() Format { return FormatThumbLoadStoreSigned }

// ThumbLoadStoreImmediate is LDR, STR, LDRB and STRB with an immediate
// offset. Offset is in bytes.
type ThumbLoadStoreImmediate struct {
	unconditional
	Load   bool
	Byte   bool
	Offset uint8
	Rb     uint8
	Rd     uint8
}

func (ThumbLoadStoreImmediate) Format() Format { return FormatThumbLoadStoreImmediate }

// ThumbLoadStoreHalfword is LDRH and STRH with an immediate offset. Offset
// is in bytes.
type ThumbLoadStoreHalfword struct {
	unconditional
	Load   bool
	Offset uint8
	Rb     uint8
	Rd     uint8
}

func (ThumbLoadStoreHalfword) Format() Format { return FormatThumbLoadStoreHalfword }

// ThumbSPRelative is LDR and STR relative to SP. Offset is in bytes.
type ThumbSPRelative struct {
	unconditional
	Load   bool
	Rd     uint8
	Offset uint16
}

func (ThumbSPRelative) Format() Format { return FormatThumbSPRelative }

// ThumbLoadAddress is ADD Rd, PC/SP, #Offset. Offset is in bytes.
type ThumbLoadAddress struct {
	unconditional
	SP     bool
	Rd     uint8
	Offset uint16
}

func (ThumbLoadAddress) Format() Format { return FormatThumbLoadAddress }

// ThumbAdjustSP is ADD SP, #Offset. Offset is signed and in bytes.
type ThumbAdjustSP struct {
	unconditional
	Offset int32
}

func (ThumbAdjustSP) Format() Format { return FormatThumbAdjustSP }

// ThumbPushPop is PUSH and POP. With PCLR the list also includes LR for a
// push or PC for a pop.
type ThumbPushPop struct {
	unconditional
	Pop     bool
	PCLR    bool
	RegList uint8
}

func (ThumbPushPop) Format() Format { return FormatThumbPushPop }

// ThumbMultiple is LDMIA and STMIA, always with writeback.
type ThumbMultiple struct {
	unconditional
	Load    bool
	Rb      uint8
	RegList uint8
}

func (ThumbMultiple) Format() Format { return FormatThumbMultiple }

// ThumbConditionalBranch is B<cond>. Offset is the sign-extended byte offset
// from the pipelined PC.
type ThumbConditionalBranch struct {
	unconditional
	Cond   Condition
	Offset int32
}

func (ThumbConditionalBranch) Format() Format { return FormatThumbConditionalBranch }

type ThumbSoftwareInterrupt struct {
	unconditional
	Comment uint8
}

func (ThumbSoftwareInterrupt) Format() Format { return FormatThumbSoftwareInterrupt }

// ThumbBranch is B. Offset is the sign-extended byte offset from the
// pipelined PC.
type ThumbBranch struct {
	unconditional
	Offset int32
}

func (ThumbBranch) Format() Format { return FormatThumbBranch }

// ThumbLongBranch is one half of a BL pair. The first half puts the high part
// of the offset in LR, the second half branches.
type ThumbLongBranch struct {
	unconditional
	Second bool
	Offset uint16
}

func (ThumbLongBranch) Format() Format { return FormatThumbLongBranch }
