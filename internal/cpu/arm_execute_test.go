package cpu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Div9851/gba-core/internal/bus"
	"github.com/Div9851/gba-core/internal/cpu"
)

var _ = Describe("ARM execution", func() {
	var (
		c *cpu.CPU
		b *bus.Bus
	)

	BeforeEach(func() {
		c, b = newCPU()
		c.Regs.SetPC(0x100)
	})

	reg := func(n int) uint32 { return c.Regs.GetRegister(n) }
	set := func(n int, v uint32) { c.Regs.SetRegister(n, v) }

	Describe("data processing", func() {
		// <op>S r0, r1, r2
		encode := func(op cpu.ALUOp) uint32 {
			return 0xE0100002 | uint32(op)<<21 | 1<<16
		}

		DescribeTable("N and Z follow the result",
			func(op cpu.ALUOp, rn, rm, result uint32, writes bool) {
				set(0, 0xAAAAAAAA)
				set(1, rn)
				set(2, rm)
				runARM(c, b, encode(op))

				if writes {
					Expect(reg(0)).To(Equal(result))
				} else {
					Expect(reg(0)).To(Equal(uint32(0xAAAAAAAA)))
				}
				Expect(c.Regs.Negative()).To(Equal(result>>31 != 0))
				Expect(c.Regs.Zero()).To(Equal(result == 0))
			},
			Entry("AND", cpu.AND, uint32(0xF0F0F0F0), uint32(0x8F000000), uint32(0x80000000), true),
			Entry("EOR", cpu.EOR, uint32(0x1234), uint32(0x1234), uint32(0), true),
			Entry("SUB", cpu.SUB, uint32(5), uint32(7), uint32(0xFFFFFFFE), true),
			Entry("RSB", cpu.RSB, uint32(5), uint32(7), uint32(2), true),
			Entry("ADD", cpu.ADD, uint32(0xFFFFFFFF), uint32(1), uint32(0), true),
			Entry("ADC", cpu.ADC, uint32(1), uint32(2), uint32(3), true),
			Entry("SBC", cpu.SBC, uint32(5), uint32(3), uint32(1), true),
			Entry("RSC", cpu.RSC, uint32(3), uint32(5), uint32(1), true),
			Entry("TST", cpu.TST, uint32(0x0F), uint32(0xF0), uint32(0), false),
			Entry("TEQ", cpu.TEQ, uint32(0x80000000), uint32(0), uint32(0x80000000), false),
			Entry("CMP", cpu.CMP, uint32(3), uint32(3), uint32(0), false),
			Entry("CMN", cpu.CMN, uint32(0x7FFFFFFF), uint32(1), uint32(0x80000000), false),
			Entry("ORR", cpu.ORR, uint32(0x80000000), uint32(1), uint32(0x80000001), true),
			Entry("MOV", cpu.MOV, uint32(0x1234), uint32(0), uint32(0), true),
			Entry("BIC", cpu.BIC, uint32(0xFF), uint32(0x0F), uint32(0xF0), true),
			Entry("MVN", cpu.MVN, uint32(0x1234), uint32(0), uint32(0xFFFFFFFF), true),
		)

		It("sets carry and overflow from the 33-bit sum", func() {
			set(1, 0xFFFFFFFF)
			set(2, 1)
			runARM(c, b, encode(cpu.ADD))
			Expect(c.Regs.Carry()).To(BeTrue())
			Expect(c.Regs.Overflow()).To(BeFalse())

			set(1, 0x7FFFFFFF)
			runARM(c, b, encode(cpu.CMN))
			Expect(c.Regs.Carry()).To(BeFalse())
			Expect(c.Regs.Overflow()).To(BeTrue())

			set(1, 5)
			set(2, 7)
			runARM(c, b, encode(cpu.SUB))
			Expect(c.Regs.Carry()).To(BeFalse())

			set(2, 5)
			runARM(c, b, encode(cpu.CMP))
			Expect(c.Regs.Carry()).To(BeTrue())
			Expect(c.Regs.Zero()).To(BeTrue())
		})

		It("uses the carry in ADC and SBC", func() {
			c.Regs.SetCarry(true)
			set(1, 1)
			set(2, 2)
			runARM(c, b, encode(cpu.ADC))
			Expect(reg(0)).To(Equal(uint32(4)))

			c.Regs.SetCarry(true)
			set(1, 5)
			set(2, 3)
			runARM(c, b, encode(cpu.SBC))
			Expect(reg(0)).To(Equal(uint32(2)))
		})

		It("takes the logical carry from the shifter", func() {
			set(1, 0x80000000)
			runARM(c, b, 0xE1B00081) // MOVS r0, r1, LSL #1
			Expect(reg(0)).To(BeZero())
			Expect(c.Regs.Carry()).To(BeTrue())
			Expect(c.Regs.Zero()).To(BeTrue())
		})

		It("keeps the carry for a logical op without a shifter carry", func() {
			c.Regs.SetCarry(true)
			runARM(c, b, 0xE3B00001) // MOVS r0, #1
			Expect(c.Regs.Carry()).To(BeTrue())
		})

		DescribeTable("a register shift by 0 never changes the carry",
			func(shift uint32) {
				for _, carry := range []bool{false, true} {
					c.Regs.SetCarry(carry)
					set(1, 0xFFFFFFFF)
					set(2, 0)
					runARM(c, b, 0xE1B00211|shift<<5) // MOVS r0, r1, <shift> r2
					Expect(reg(0)).To(Equal(uint32(0xFFFFFFFF)))
					Expect(c.Regs.Carry()).To(Equal(carry))
				}
			},
			Entry("LSL", uint32(0)),
			Entry("LSR", uint32(1)),
			Entry("ASR", uint32(2)),
			Entry("ROR", uint32(3)),
		)

		It("reads R15 as the instruction address plus 8", func() {
			runARM(c, b, 0xE1A0000F) // MOV r0, pc
			Expect(reg(0)).To(Equal(uint32(0x108)))
		})

		It("reads R15 plus 12 with a register shift and charges a cycle", func() {
			set(2, 0)
			cycles := runARM(c, b, 0xE1A0021F) // MOV r0, pc, LSL r2
			Expect(reg(0)).To(Equal(uint32(0x10C)))
			Expect(cycles).To(Equal(uint32(2)))
		})

		It("branches when writing R15", func() {
			set(1, 0x200)
			cycles := runARM(c, b, 0xE1A0F001) // MOV pc, r1
			Expect(c.Regs.PC()).To(Equal(uint32(0x200)))
			Expect(cycles).To(Equal(uint32(3)))
		})

		It("restores the CPSR from the SPSR when writing R15 with S", func() {
			c.Regs.SetMode(cpu.ModeIRQ)
			c.Regs.SetSPSR(uint32(cpu.ModeSYS) | cpu.BitT | cpu.BitZ)
			set(14, 0x305)
			runARM(c, b, 0xE25EF004) // SUBS pc, lr, #4

			Expect(c.Regs.Mode()).To(Equal(cpu.ModeSYS))
			Expect(c.Regs.Thumb()).To(BeTrue())
			Expect(c.Regs.Zero()).To(BeTrue())
			Expect(c.Regs.PC()).To(Equal(uint32(0x300)))
		})

		It("ignores the S bit on R15 in a mode without an SPSR", func() {
			c.Regs.SetMode(cpu.ModeSYS)
			set(14, 0x304)
			runARM(c, b, 0xE25EF004)
			Expect(c.Regs.Mode()).To(Equal(cpu.ModeSYS))
			Expect(c.Regs.PC()).To(Equal(uint32(0x300)))
		})
	})

	Describe("PSR transfer", func() {
		It("reads the CPSR with MRS", func() {
			runARM(c, b, 0xE10F0000) // MRS r0, CPSR
			Expect(reg(0)).To(Equal(c.Regs.CPSR()))
		})

		It("reads the SPSR with MRS", func() {
			c.Regs.SetSPSR(0xF000001F)
			runARM(c, b, 0xE14F0000) // MRS r0, SPSR
			Expect(reg(0)).To(Equal(uint32(0xF000001F)))
		})

		It("switches mode and bank with MSR", func() {
			set(13, 0x1111)
			c.Regs.SetRegisterOverrideMode(13, cpu.ModeIRQ, 0x2222)
			set(1, uint32(cpu.ModeIRQ)|cpu.BitN)
			runARM(c, b, 0xE129F001) // MSR CPSR_fc, r1

			Expect(c.Regs.Mode()).To(Equal(cpu.ModeIRQ))
			Expect(c.Regs.Negative()).To(BeTrue())
			Expect(reg(13)).To(Equal(uint32(0x2222)))
		})

		It("only writes the selected fields", func() {
			set(1, uint32(cpu.ModeIRQ)|cpu.BitC)
			runARM(c, b, 0xE128F001) // MSR CPSR_f, r1
			Expect(c.Regs.Mode()).To(Equal(cpu.ModeSVC))
			Expect(c.Regs.Carry()).To(BeTrue())
		})

		It("accepts an immediate", func() {
			runARM(c, b, 0xE328F20F) // MSR CPSR_f, #0xF0000000
			Expect(c.Regs.CPSR() >> 28).To(Equal(uint32(0xF)))
		})

		It("only writes flags in User mode", func() {
			c.Regs.SetMode(cpu.ModeUSR)
			set(1, uint32(cpu.ModeSVC)|cpu.BitV)
			runARM(c, b, 0xE129F001)
			Expect(c.Regs.Mode()).To(Equal(cpu.ModeUSR))
			Expect(c.Regs.Overflow()).To(BeTrue())
		})

		It("never changes the T bit", func() {
			set(1, uint32(cpu.ModeSVC)|cpu.BitT)
			runARM(c, b, 0xE129F001)
			Expect(c.Regs.Thumb()).To(BeFalse())
		})

		It("writes the SPSR", func() {
			set(1, 0x8000001F)
			runARM(c, b, 0xE169F001) // MSR SPSR_fc, r1
			Expect(c.Regs.GetSPSR()).To(Equal(uint32(0x8000001F)))
		})

		It("does not panic on SPSR access without one", func() {
			c.Regs.SetMode(cpu.ModeSYS)
			runARM(c, b, 0xE14F0000)
			Expect(reg(0)).To(Equal(c.Regs.CPSR()))
			runARM(c, b, 0xE169F001)
		})
	})

	Describe("single data transfer", func() {
		It("loads a word and charges fetch, data and internal cycles", func() {
			b.Write32(0x2000, 0xCAFEBABE)
			set(1, 0x2000)
			cycles := runARM(c, b, 0xE5910000) // LDR r0, [r1]
			Expect(reg(0)).To(Equal(uint32(0xCAFEBABE)))
			Expect(cycles).To(Equal(uint32(3)))
			Expect(c.Regs.PC()).To(Equal(uint32(0x104)))
		})

		It("rotates a misaligned word load", func() {
			b.Write32(0x2000, 0x12345678)
			set(1, 0x2001)
			runARM(c, b, 0xE5910000)
			Expect(reg(0)).To(Equal(uint32(0x78123456)))
		})

		It("pre-indexes with writeback", func() {
			b.Write32(0x2010, 7)
			set(1, 0x2000)
			runARM(c, b, 0xE5B10010) // LDR r0, [r1, #16]!
			Expect(reg(0)).To(Equal(uint32(7)))
			Expect(reg(1)).To(Equal(uint32(0x2010)))
		})

		It("post-indexes from the unmodified base", func() {
			b.Write32(0x2000, 9)
			set(1, 0x2000)
			runARM(c, b, 0xE4110004) // LDR r0, [r1], #-4
			Expect(reg(0)).To(Equal(uint32(9)))
			Expect(reg(1)).To(Equal(uint32(0x1FFC)))
		})

		It("uses a shifted register offset", func() {
			b.Write32(0x2008, 0x55)
			set(1, 0x2000)
			set(2, 2)
			runARM(c, b, 0xE7910102) // LDR r0, [r1, r2, LSL #2]
			Expect(reg(0)).To(Equal(uint32(0x55)))
		})

		It("suppresses writeback when loading into the base", func() {
			b.Write32(0x2004, 0xABCD)
			set(1, 0x2000)
			runARM(c, b, 0xE5B11004) // LDR r1, [r1, #4]!
			Expect(reg(1)).To(Equal(uint32(0xABCD)))
		})

		It("stores bytes", func() {
			set(0, 0x123456FF)
			set(1, 0x2000)
			runARM(c, b, 0xE5C10003) // STRB r0, [r1, #3]
			Expect(b.Read32(0x2000)).To(Equal(uint32(0xFF000000)))
		})

		It("stores R15 as the instruction address plus 12", func() {
			set(1, 0x2000)
			runARM(c, b, 0xE581F000) // STR pc, [r1]
			Expect(b.Read32(0x2000)).To(Equal(uint32(0x10C)))
		})

		It("branches when loading R15", func() {
			b.Write32(0x2000, 0x400)
			set(1, 0x2000)
			runARM(c, b, 0xE591F000) // LDR pc, [r1]
			Expect(c.Regs.PC()).To(Equal(uint32(0x400)))
		})
	})

	Describe("halfword transfer", func() {
		BeforeEach(func() {
			b.Write32(0x2000, 0x80F0FF7F)
			set(1, 0x2000)
		})

		It("loads unsigned halfwords", func() {
			runARM(c, b, 0xE1D100B2) // LDRH r0, [r1, #2]
			Expect(reg(0)).To(Equal(uint32(0x80F0)))
		})

		It("sign-extends bytes", func() {
			runARM(c, b, 0xE1D100D1) // LDRSB r0, [r1, #1]
			Expect(reg(0)).To(Equal(uint32(0xFFFFFFFF)))
			runARM(c, b, 0xE1D100D0) // LDRSB r0, [r1]
			Expect(reg(0)).To(Equal(uint32(0x7F)))
		})

		It("sign-extends halfwords", func() {
			runARM(c, b, 0xE1D100F2) // LDRSH r0, [r1, #2]
			Expect(reg(0)).To(Equal(uint32(0xFFFF80F0)))
		})

		It("loads a sign-extended byte for an odd LDRSH", func() {
			runARM(c, b, 0xE1D100F3) // LDRSH r0, [r1, #3]
			Expect(reg(0)).To(Equal(uint32(0xFFFFFF80)))
		})

		It("rotates a misaligned LDRH", func() {
			runARM(c, b, 0xE1D100B1) // LDRH r0, [r1, #1]
			Expect(reg(0)).To(Equal(uint32(0x7F0000FF)))
		})

		It("stores halfwords with a register offset and writeback", func() {
			set(0, 0xBEEF)
			set(2, 4)
			runARM(c, b, 0xE1A100B2) // STRH r0, [r1, r2]!
			Expect(b.Read16(0x2004)).To(Equal(uint32(0xBEEF)))
			Expect(reg(1)).To(Equal(uint32(0x2004)))
		})
	})

	Describe("block data transfer", func() {
		const base = 0xFF00

		DescribeTable("round-trips through memory",
			func(stm, ldm uint32, lowest uint32) {
				for i := 1; i <= 4; i++ {
					set(i, uint32(i))
				}
				set(0, base)
				runARM(c, b, stm)
				Expect(reg(0)).To(Equal(uint32(base)))

				for i := range uint32(4) {
					Expect(b.Read32(lowest + i*4)).To(Equal(i + 1))
				}

				runARM(c, b, ldm)
				for i := 5; i <= 8; i++ {
					Expect(reg(i)).To(Equal(uint32(i - 4)))
				}
			},
			Entry("IA", uint32(0xE880001E), uint32(0xE89001E0), uint32(base)),
			Entry("IB", uint32(0xE980001E), uint32(0xE99001E0), uint32(base+4)),
			Entry("DA", uint32(0xE800001E), uint32(0xE81001E0), uint32(base-12)),
			Entry("DB", uint32(0xE900001E), uint32(0xE91001E0), uint32(base-16)),
		)

		It("places STMDB registers below the base", func() {
			for i := 4; i <= 7; i++ {
				set(i, uint32(i))
			}
			set(0, base)
			runARM(c, b, 0xE92000F0) // STMDB r0!, {r4-r7}
			Expect(b.Read32(base - 4)).To(Equal(uint32(7)))
			Expect(b.Read32(base - 8)).To(Equal(uint32(6)))
			Expect(b.Read32(base - 12)).To(Equal(uint32(5)))
			Expect(b.Read32(base - 16)).To(Equal(uint32(4)))
			Expect(reg(0)).To(Equal(uint32(base - 16)))
		})

		It("charges N for the first word and S for the rest", func() {
			set(0, base)
			cycles := runARM(c, b, 0xE89001E0) // LDMIA r0, {r5-r8}
			Expect(cycles).To(Equal(uint32(1 + 4 + 1)))
		})

		It("does not write back a base in the load list", func() {
			b.Write32(base, 0x11)
			b.Write32(base+4, 0x22)
			set(0, base)
			runARM(c, b, 0xE8B00003) // LDMIA r0!, {r0, r1}
			Expect(reg(0)).To(Equal(uint32(0x11)))
			Expect(reg(1)).To(Equal(uint32(0x22)))
		})

		It("stores the original base when it is the lowest register", func() {
			set(0, base)
			set(1, 1)
			runARM(c, b, 0xE8A00003) // STMIA r0!, {r0, r1}
			Expect(b.Read32(base)).To(Equal(uint32(base)))
			Expect(reg(0)).To(Equal(uint32(base + 8)))
		})

		It("stores the updated base otherwise", func() {
			set(0, 0)
			set(1, base)
			runARM(c, b, 0xE8A10003) // STMIA r1!, {r0, r1}
			Expect(b.Read32(base + 4)).To(Equal(uint32(base + 8)))
		})

		It("transfers R15 and moves the base by 64 bytes for an empty list", func() {
			set(0, base)
			runARM(c, b, 0xE8A00000) // STMIA r0!, {}
			Expect(b.Read32(base)).To(Equal(uint32(0x10C)))
			Expect(reg(0)).To(Equal(uint32(base + 0x40)))
		})

		It("transfers user registers with the S bit", func() {
			c.Regs.SetRegisterOverrideMode(13, cpu.ModeUSR, 0x5555)
			c.Regs.SetMode(cpu.ModeIRQ)
			set(13, 0x6666)
			set(0, base)
			runARM(c, b, 0xE8C02000) // STMIA r0, {sp}^
			Expect(b.Read32(base)).To(Equal(uint32(0x5555)))

			b.Write32(base, 0x7777)
			runARM(c, b, 0xE8D02000) // LDMIA r0, {sp}^
			Expect(reg(13)).To(Equal(uint32(0x6666)))
			Expect(c.Regs.GetRegisterOverrideMode(13, cpu.ModeUSR)).To(Equal(uint32(0x7777)))
		})

		It("restores the CPSR when loading R15 with the S bit", func() {
			c.Regs.SetMode(cpu.ModeIRQ)
			c.Regs.SetSPSR(uint32(cpu.ModeUSR))
			b.Write32(base, 0x500)
			set(0, base)
			runARM(c, b, 0xE8D08000) // LDMIA r0, {pc}^
			Expect(c.Regs.Mode()).To(Equal(cpu.ModeUSR))
			Expect(c.Regs.PC()).To(Equal(uint32(0x500)))
		})
	})

	Describe("single data swap", func() {
		It("swaps a word", func() {
			b.Write32(0x2000, 0x1111)
			set(0, 0x2000)
			set(1, 0x2222)
			cycles := runARM(c, b, 0xE1002091) // SWP r2, r1, [r0]
			Expect(reg(2)).To(Equal(uint32(0x1111)))
			Expect(b.Read32(0x2000)).To(Equal(uint32(0x2222)))
			Expect(cycles).To(Equal(uint32(4)))
		})

		It("reads before writing when source and destination match", func() {
			b.Write32(0x2000, 0xAA)
			set(0, 0x2000)
			set(1, 0xBB)
			runARM(c, b, 0xE1001091) // SWP r1, r1, [r0]
			Expect(reg(1)).To(Equal(uint32(0xAA)))
			Expect(b.Read32(0x2000)).To(Equal(uint32(0xBB)))
		})

		It("swaps a byte", func() {
			b.Write32(0x2000, 0x11223344)
			set(0, 0x2001)
			set(1, 0xFF)
			runARM(c, b, 0xE1402091) // SWPB r2, r1, [r0]
			Expect(reg(2)).To(Equal(uint32(0x33)))
			Expect(b.Read32(0x2000)).To(Equal(uint32(0x1122FF44)))
		})
	})

	Describe("multiply", func() {
		It("multiplies and accumulates", func() {
			set(1, 6)
			set(2, 7)
			set(3, 100)
			runARM(c, b, 0xE0203291) // MLA r0, r1, r2, r3
			Expect(reg(0)).To(Equal(uint32(142)))
		})

		It("leaves the carry alone", func() {
			c.Regs.SetCarry(true)
			set(1, 0)
			set(2, 7)
			runARM(c, b, 0xE0100291) // MULS r0, r1, r2
			Expect(c.Regs.Zero()).To(BeTrue())
			Expect(c.Regs.Carry()).To(BeTrue())
		})

		It("charges internal cycles by the size of the multiplier", func() {
			set(1, 3)
			set(2, 0xFF)
			Expect(runARM(c, b, 0xE0000291)).To(Equal(uint32(2)))
			set(2, 0x12345678)
			Expect(runARM(c, b, 0xE0000291)).To(Equal(uint32(5)))
			set(2, 0xFFFFFFFF)
			Expect(runARM(c, b, 0xE0000291)).To(Equal(uint32(2)))
		})

		It("computes UMULL", func() {
			set(2, 20)
			set(3, 0xFFFFFFF6)
			runARM(c, b, 0xE0810392) // UMULL r0, r1, r2, r3
			Expect(reg(0)).To(Equal(uint32(0xFFFFFF38)))
			Expect(reg(1)).To(Equal(uint32(0x00000013)))
		})

		It("computes SMULL", func() {
			set(2, 20)
			set(3, 0xFFFFFFF6)
			runARM(c, b, 0xE0C10392) // SMULL r0, r1, r2, r3
			Expect(reg(0)).To(Equal(uint32(0xFFFFFF38)))
			Expect(reg(1)).To(Equal(uint32(0xFFFFFFFF)))
		})

		It("accumulates UMLAL into both halves", func() {
			set(0, 0xFFFFFFFF)
			set(1, 1)
			set(2, 1)
			set(3, 1)
			runARM(c, b, 0xE0A10392) // UMLAL r0, r1, r2, r3
			Expect(reg(0)).To(BeZero())
			Expect(reg(1)).To(Equal(uint32(2)))
		})

		It("sets N and Z from the 64-bit result", func() {
			set(2, 0xFFFFFFFF)
			set(3, 1)
			runARM(c, b, 0xE0D10392) // SMULLS r0, r1, r2, r3
			Expect(c.Regs.Negative()).To(BeTrue())
			Expect(c.Regs.Zero()).To(BeFalse())
		})
	})

	Describe("branch", func() {
		It("branches relative to the instruction address plus 8", func() {
			cycles := runARM(c, b, 0xEA000002) // B +8
			Expect(c.Regs.PC()).To(Equal(uint32(0x110)))
			Expect(cycles).To(Equal(uint32(3)))
		})

		It("branches backwards and links", func() {
			runARM(c, b, 0xEBFFFFFE) // BL -8
			Expect(c.Regs.PC()).To(Equal(uint32(0x100)))
			Expect(reg(14)).To(Equal(uint32(0x104)))
		})

		It("switches to Thumb with BX and bit 0 set", func() {
			set(0, 0x201)
			runARM(c, b, 0xE12FFF10) // BX r0
			Expect(c.Regs.Thumb()).To(BeTrue())
			Expect(c.Regs.PC()).To(Equal(uint32(0x200)))
		})

		It("stays in ARM with BX and bit 0 clear, word aligned", func() {
			set(0, 0x202)
			runARM(c, b, 0xE12FFF10)
			Expect(c.Regs.Thumb()).To(BeFalse())
			Expect(c.Regs.PC()).To(Equal(uint32(0x200)))
		})
	})

	Describe("software interrupt", func() {
		It("enters Supervisor mode at the vector", func() {
			c.Regs.SetCPSR(uint32(cpu.ModeSYS) | cpu.BitC)
			runARM(c, b, 0xEF000000)

			Expect(c.Regs.Mode()).To(Equal(cpu.ModeSVC))
			Expect(c.Regs.PC()).To(Equal(uint32(0x08)))
			Expect(reg(14)).To(Equal(uint32(0x104)))
			Expect(c.Regs.GetSPSR()).To(Equal(uint32(cpu.ModeSYS) | cpu.BitC))
			Expect(c.Regs.CPSR() & cpu.BitI).NotTo(BeZero())
			Expect(c.Regs.Thumb()).To(BeFalse())
		})
	})

	Describe("Step", func() {
		It("skips an instruction whose condition fails at no cost", func() {
			set(0, 1)
			cycles := runARM(c, b, 0x03A00005) // MOVEQ r0, #5
			Expect(cycles).To(BeZero())
			Expect(reg(0)).To(Equal(uint32(1)))
			Expect(c.Regs.PC()).To(Equal(uint32(0x104)))
			Expect(c.Clock.Cycles()).To(BeZero())
		})

		It("executes an instruction whose condition passes", func() {
			c.Regs.SetFlags(false, true, false, false)
			runARM(c, b, 0x03A00005)
			Expect(reg(0)).To(Equal(uint32(5)))
		})

		It("returns a decode error without moving PC", func() {
			b.Write32(0x100, 0xEE000000)
			cycles, err := c.Step()
			Expect(cycles).To(BeZero())
			var decodeErr *cpu.DecodeError
			Expect(errors.As(err, &decodeErr)).To(BeTrue())
			Expect(decodeErr.Raw).To(Equal(uint32(0xEE000000)))
			Expect(c.Regs.PC()).To(Equal(uint32(0x100)))
		})

		It("raises the undefined instruction exception on request", func() {
			c.Regs.SetMode(cpu.ModeSYS)
			c.RaiseUndefined()
			Expect(c.Regs.Mode()).To(Equal(cpu.ModeUND))
			Expect(c.Regs.PC()).To(Equal(uint32(0x04)))
			Expect(reg(14)).To(Equal(uint32(0x104)))
		})

		It("accumulates the cycles of each step in the clock", func() {
			runARM(c, b, 0xE1A00000)
			runARM(c, b, 0xE1A00000)
			Expect(c.Clock.GetAndResetCycles()).To(Equal(uint32(2)))
		})
	})

	Describe("Interrupt", func() {
		It("is ignored while masked", func() {
			Expect(c.Interrupt(cpu.ExceptionIRQ)).To(BeZero())
			Expect(c.Regs.Mode()).To(Equal(cpu.ModeSVC))
		})

		It("enters IRQ mode with the return address plus 4 in LR", func() {
			c.Regs.SetCPSR(uint32(cpu.ModeSYS))
			Expect(c.Interrupt(cpu.ExceptionIRQ)).To(Equal(uint32(2)))
			Expect(c.Regs.Mode()).To(Equal(cpu.ModeIRQ))
			Expect(c.Regs.PC()).To(Equal(uint32(0x18)))
			Expect(reg(14)).To(Equal(uint32(0x104)))
			Expect(c.Regs.GetSPSR()).To(Equal(uint32(cpu.ModeSYS)))
		})

		It("disables FIQ on FIQ entry", func() {
			c.Regs.SetCPSR(uint32(cpu.ModeSYS))
			c.Interrupt(cpu.ExceptionFIQ)
			Expect(c.Regs.Mode()).To(Equal(cpu.ModeFIQ))
			Expect(c.Regs.CPSR() & cpu.BitF).NotTo(BeZero())
		})
	})
})
