package cpu

import (
	"fmt"

	"github.com/Div9851/gba-core/internal/logger"
)

const (
	BitN uint32 = 1 << 31
	BitZ uint32 = 1 << 30
	BitC uint32 = 1 << 29
	BitV uint32 = 1 << 28
	BitI uint32 = 1 << 7
	BitF uint32 = 1 << 6
	BitT uint32 = 1 << 5
	BitM uint32 = 0x1F
)

// Mode is the 5-bit processor mode field of the CPSR.
type Mode uint32

const (
	ModeUSR Mode = 0x10
	ModeFIQ Mode = 0x11
	ModeIRQ Mode = 0x12
	ModeSVC Mode = 0x13
	ModeABT Mode = 0x17
	ModeUND Mode = 0x1B
	ModeSYS Mode = 0x1F
)

func (m Mode) String() string {
	switch m {
	case ModeUSR:
		return "USR"
	case ModeFIQ:
		return "FIQ"
	case ModeIRQ:
		return "IRQ"
	case ModeSVC:
		return "SVC"
	case ModeABT:
		return "ABT"
	case ModeUND:
		return "UND"
	case ModeSYS:
		return "SYS"
	}
	return fmt.Sprintf("mode(%02x)", uint32(m))
}

// Valid returns true if m is one of the seven ARM7TDMI modes.
func (m Mode) Valid() bool {
	return bankOf(m) >= 0
}

const (
	rSP = 13
	rLR = 14
	rPC = 15
)

// physical register banks. USR and SYS share the user bank and neither has an
// SPSR.
const (
	bankUSR = iota
	bankFIQ
	bankIRQ
	bankSVC
	bankABT
	bankUND
	numBanks
)

func bankOf(m Mode) int {
	switch m {
	case ModeUSR, ModeSYS:
		return bankUSR
	case ModeFIQ:
		return bankFIQ
	case ModeIRQ:
		return bankIRQ
	case ModeSVC:
		return bankSVC
	case ModeABT:
		return bankABT
	case ModeUND:
		return bankUND
	}
	return -1
}

// Registers is the ARM7TDMI register file. R0-R12 and R15 of the user bank
// live in r. FIQ has its own R8-R12. Every bank has its own R13 and R14 and
// every bank other than the user bank has an SPSR.
//
// The physical bank for the current mode is resolved once, whenever the CPSR
// is written, and not on every register access.
type Registers struct {
	r    [16]uint32
	fiq  [5]uint32
	sp   [numBanks]uint32
	lr   [numBanks]uint32
	spsr [numBanks]uint32
	cpsr uint32
	bank int

	// set by any write to R15. the CPU uses this to refill the pipeline
	pcWritten bool
}

// NewRegisters returns a register file in the power-on state.
func NewRegisters() *Registers {
	regs := &Registers{}
	regs.Reset(false)
	return regs
}

// Reset puts the register file in the power-on state: Supervisor mode, IRQ
// and FIQ disabled, ARM state, PC at the reset vector. With skipBIOS the
// register file is instead left as the GBA BIOS leaves it before jumping to
// the cartridge.
func (regs *Registers) Reset(skipBIOS bool) {
	*regs = Registers{}
	if !skipBIOS {
		regs.SetCPSR(uint32(ModeSVC) | BitI | BitF)
		return
	}
	regs.SetCPSR(uint32(ModeSYS))
	regs.sp[bankUSR] = 0x03007F00
	regs.sp[bankIRQ] = 0x03007FA0
	regs.sp[bankSVC] = 0x03007FE0
	regs.r[rPC] = 0x08000000
}

func (regs *Registers) slot(n int, bank int) *uint32 {
	switch {
	case n < 0 || n > 15:
		panic(fmt.Sprintf("cpu: register %d out of range", n))
	case n < 8 || n == rPC:
		return &regs.r[n]
	case n < 13:
		if bank == bankFIQ {
			return &regs.fiq[n-8]
		}
		return &regs.r[n]
	case n == rSP:
		return &regs.sp[bank]
	default:
		return &regs.lr[bank]
	}
}

// GetRegister reads register n as seen from the current mode. While an
// instruction is executing R15 reads as the instruction address plus the
// pipeline offset.
func (regs *Registers) GetRegister(n int) uint32 {
	return *regs.slot(n, regs.bank)
}

// SetRegister writes register n as seen from the current mode. Writing R15 is
// a branch.
func (regs *Registers) SetRegister(n int, value uint32) {
	*regs.slot(n, regs.bank) = value
	if n == rPC {
		regs.pcWritten = true
	}
}

// GetRegisterOverrideMode reads register n as seen from mode rather than the
// current mode.
func (regs *Registers) GetRegisterOverrideMode(n int, mode Mode) uint32 {
	return *regs.slot(n, mustBank(mode))
}

// SetRegisterOverrideMode writes register n as seen from mode rather than the
// current mode.
func (regs *Registers) SetRegisterOverrideMode(n int, mode Mode, value uint32) {
	*regs.slot(n, mustBank(mode)) = value
	if n == rPC {
		regs.pcWritten = true
	}
}

func mustBank(mode Mode) int {
	b := bankOf(mode)
	if b < 0 {
		panic(fmt.Sprintf("cpu: no register bank for %s", mode))
	}
	return b
}

// CPSR returns the current program status register.
func (regs *Registers) CPSR() uint32 {
	return regs.cpsr
}

// SetCPSR writes the current program status register. This is the only path
// by which the mode field changes, so it is also where the register bank is
// re-resolved. A value with an invalid mode field keeps the current mode.
func (regs *Registers) SetCPSR(value uint32) {
	mode := Mode(value & BitM)
	if !mode.Valid() {
		old := Mode(regs.cpsr & BitM)
		if !old.Valid() {
			old = ModeSVC
		}
		logger.Logf("cpu", "invalid mode %s written to CPSR, staying in %s", mode, old)
		value = value&^BitM | uint32(old)
		mode = old
	}
	regs.cpsr = value
	regs.bank = bankOf(mode)
}

// Mode returns the current processor mode.
func (regs *Registers) Mode() Mode {
	return Mode(regs.cpsr & BitM)
}

// SetMode changes the mode field of the CPSR.
func (regs *Registers) SetMode(mode Mode) {
	regs.SetCPSR(regs.cpsr&^BitM | uint32(mode))
}

// HasSPSR returns false in User and System mode.
func (regs *Registers) HasSPSR() bool {
	return regs.bank != bankUSR
}

// GetSPSR returns the saved program status register of the current mode. It
// is a programming error to call it in User or System mode.
func (regs *Registers) GetSPSR() uint32 {
	if !regs.HasSPSR() {
		panic(fmt.Sprintf("cpu: no SPSR in %s mode", regs.Mode()))
	}
	return regs.spsr[regs.bank]
}

// SetSPSR writes the saved program status register of the current mode. It
// is a programming error to call it in User or System mode.
func (regs *Registers) SetSPSR(value uint32) {
	if !regs.HasSPSR() {
		panic(fmt.Sprintf("cpu: no SPSR in %s mode", regs.Mode()))
	}
	regs.spsr[regs.bank] = value
}

// Thumb returns true if the T bit is set.
func (regs *Registers) Thumb() bool {
	return regs.cpsr&BitT != 0
}

// SetThumb sets or clears the T bit.
func (regs *Registers) SetThumb(thumb bool) {
	if thumb {
		regs.SetCPSR(regs.cpsr | BitT)
	} else {
		regs.SetCPSR(regs.cpsr &^ BitT)
	}
}

// PC returns the raw value of R15.
func (regs *Registers) PC() uint32 {
	return regs.r[rPC]
}

// SetPC sets R15 without it counting as a branch. Use this to position the
// CPU before stepping.
func (regs *Registers) SetPC(value uint32) {
	regs.r[rPC] = value
}

func (regs *Registers) Negative() bool { return regs.cpsr&BitN != 0 }
func (regs *Registers) Zero() bool     { return regs.cpsr&BitZ != 0 }
func (regs *Registers) Carry() bool    { return regs.cpsr&BitC != 0 }
func (regs *Registers) Overflow() bool { return regs.cpsr&BitV != 0 }

func (regs *Registers) setFlag(bit uint32, on bool) {
	if on {
		regs.cpsr |= bit
	} else {
		regs.cpsr &^= bit
	}
}

// SetCarry sets or clears the C flag.
func (regs *Registers) SetCarry(carry bool) {
	regs.setFlag(BitC, carry)
}

// SetFlags sets all four condition flags.
func (regs *Registers) SetFlags(n, z, c, v bool) {
	regs.setFlag(BitN, n)
	regs.setFlag(BitZ, z)
	regs.setFlag(BitC, c)
	regs.setFlag(BitV, v)
}

// UpdateLogicalFlags sets N and Z from result, leaving C and V alone.
func (regs *Registers) UpdateLogicalFlags(result uint32) {
	regs.setFlag(BitN, result&(1<<31) != 0)
	regs.setFlag(BitZ, result == 0)
}

// UpdateArithmeticFlags sets N and Z from result and C and V as given.
func (regs *Registers) UpdateArithmeticFlags(result uint32, carry, overflow bool) {
	regs.SetFlags(result&(1<<31) != 0, result == 0, carry, overflow)
}

func (regs *Registers) String() string {
	return fmt.Sprintf("R0=%08x R1=%08x R2=%08x R3=%08x R4=%08x R5=%08x R6=%08x R7=%08x\n"+
		"R8=%08x R9=%08x R10=%08x R11=%08x R12=%08x SP=%08x LR=%08x PC=%08x\n"+
		"CPSR=%08x [%s] %s",
		regs.GetRegister(0), regs.GetRegister(1), regs.GetRegister(2), regs.GetRegister(3),
		regs.GetRegister(4), regs.GetRegister(5), regs.GetRegister(6), regs.GetRegister(7),
		regs.GetRegister(8), regs.GetRegister(9), regs.GetRegister(10), regs.GetRegister(11),
		regs.GetRegister(12), regs.GetRegister(13), regs.GetRegister(14), regs.GetRegister(15),
		regs.cpsr, regs.flagString(), regs.Mode())
}

func (regs *Registers) flagString() string {
	s := []byte("nzcvift")
	for i, bit := range []uint32{BitN, BitZ, BitC, BitV, BitI, BitF, BitT} {
		if regs.cpsr&bit != 0 {
			s[i] -= 'a' - 'A'
		}
	}
	return string(s)
}
