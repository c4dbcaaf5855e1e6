package emulator_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Div9851/gba-core/internal/cpu"
	"github.com/Div9851/gba-core/internal/gamepak"
	"github.com/Div9851/gba-core/internal/ioreg"
	"github.com/Div9851/gba-core/internal/irq"
	"github.com/Div9851/gba-core/pkg/emulator"
)

const (
	movR0    = 0xE3A00001 // MOV r0, #1
	addR0    = 0xE2800001 // ADD r0, r0, #1
	loop     = 0xEAFFFFFE // B .
	coproc   = 0xEE000000 // CDP, undefined on this machine
	romStart = 0x08000000
)

var _ = Describe("Machine", func() {
	var (
		m      *emulator.Machine
		config emulator.Config
	)

	BeforeEach(func() {
		config = emulator.DefaultConfig()
	})

	JustBeforeEach(func() {
		var err error
		m, err = emulator.New(config)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("configuration", func() {
		It("has defaults for a machine without a BIOS", func() {
			Expect(config.SkipBIOS).To(BeTrue())
			Expect(config.CyclesPerFrame).To(Equal(uint32(280896)))
			Expect(config.OnDecodeError).To(Equal(emulator.Halt))
		})

		It("parses decode error policies", func() {
			p, err := emulator.ParseDecodePolicy("trap")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(emulator.Trap))

			_, err = emulator.ParseDecodePolicy("ignore")
			Expect(err).To(HaveOccurred())
		})

		It("starts at the cartridge when skipping the BIOS", func() {
			Expect(m.CPU().Regs.PC()).To(Equal(uint32(romStart)))
			Expect(m.CPU().Regs.Mode()).To(Equal(cpu.ModeSYS))
		})

		Context("with the BIOS", func() {
			BeforeEach(func() {
				config.SkipBIOS = false
				config.WaitControl = 0x4318
			})

			It("starts at the reset vector", func() {
				Expect(m.CPU().Regs.PC()).To(BeZero())
				Expect(m.CPU().Regs.Mode()).To(Equal(cpu.ModeSVC))
			})

			It("programs the initial wait states", func() {
				Expect(m.Clock().WaitControl()).To(Equal(uint16(0x4318)))
				Expect(m.Bus().Read16(ioreg.Base + ioreg.WAITCNT)).To(Equal(uint32(0x4318)))
			})
		})
	})

	Describe("memory map", func() {
		It("mirrors work RAM", func() {
			m.Bus().Write32(0x02000010, 0xCAFEBABE)
			Expect(m.Bus().Read32(0x02040010)).To(Equal(uint32(0xCAFEBABE)))

			m.Bus().Write32(0x03000000, 0x12345678)
			Expect(m.Bus().Read32(0x03FF8000)).To(Equal(uint32(0x12345678)))
		})

		It("loads a read only BIOS", func() {
			Expect(m.LoadBIOS([]byte{1, 2, 3, 4})).To(Succeed())
			m.Bus().Write32(0, 0)
			Expect(m.Bus().Read32(0)).To(Equal(uint32(0x04030201)))
		})

		It("refuses an oversized BIOS", func() {
			Expect(m.LoadBIOS(make([]byte, emulator.BIOSSize+1))).To(MatchError(emulator.ErrBIOSSize))
		})

		It("maps the cartridge over the three wait state areas", func() {
			Expect(m.LoadROM(rom(movR0))).To(Succeed())
			Expect(m.GamePak().Header.Title).To(Equal("EMULATOR"))
			for _, base := range []uint32{0x08000000, 0x0A000000, 0x0C000000} {
				Expect(m.Bus().Read32(base)).To(Equal(uint32(movR0)))
			}
			m.Bus().Write32(romStart, 0)
			Expect(m.Bus().Read32(romStart)).To(Equal(uint32(movR0)))

			m.Bus().Write8(0x0E000001, 0x5A)
			Expect(m.Bus().Read8(0x0E000001)).To(Equal(uint8(0x5A)))
		})

		It("refuses a second cartridge", func() {
			Expect(m.LoadROM(rom())).To(Succeed())
			Expect(m.LoadROM(rom())).To(MatchError(emulator.ErrROMLoaded))
		})

		It("passes on cartridge errors", func() {
			Expect(m.LoadROM(make([]byte, 0x10))).To(MatchError(gamepak.ErrTooSmall))
		})
	})

	Describe("Step", func() {
		var sub *counter

		JustBeforeEach(func() {
			sub = &counter{}
			m.Attach(sub)
		})

		It("runs one instruction and reports its cycles", func() {
			Expect(m.LoadROM(rom(movR0, loop))).To(Succeed())
			cycles, err := m.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(m.CPU().Regs.GetRegister(0)).To(Equal(uint32(1)))
			Expect(m.CPU().Regs.PC()).To(Equal(uint32(romStart + 4)))

			// a sequential word fetch from wait state area 0
			Expect(cycles).To(Equal(uint32(6)))
			Expect(m.Clock().Cycles()).To(BeZero())
			Expect(sub.cycles).To(Equal(cycles))
			Expect(sub.calls).To(Equal(1))
		})

		It("takes an enabled interrupt before the next instruction", func() {
			Expect(m.LoadROM(rom(movR0, loop))).To(Succeed())
			m.Bus().Write16(ioreg.Base+ioreg.IE, uint16(irq.VBlank))
			m.Bus().Write16(ioreg.Base+ioreg.IME, 1)
			m.IO().Request(irq.VBlank)

			_, err := m.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(m.CPU().Regs.Mode()).To(Equal(cpu.ModeIRQ))
			Expect(m.CPU().Regs.GetRegister(14)).To(Equal(uint32(romStart + 4)))
			Expect(m.CPU().Regs.GetRegister(0)).To(BeZero())
		})

		It("ignores an interrupt masked by IME", func() {
			Expect(m.LoadROM(rom(movR0, loop))).To(Succeed())
			m.Bus().Write16(ioreg.Base+ioreg.IE, uint16(irq.VBlank))
			m.IO().Request(irq.VBlank)

			_, err := m.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(m.CPU().Regs.Mode()).To(Equal(cpu.ModeSYS))
			Expect(m.CPU().Regs.GetRegister(0)).To(Equal(uint32(1)))
		})

		It("idles while halted until an enabled interrupt is requested", func() {
			Expect(m.LoadROM(rom(movR0, loop))).To(Succeed())
			m.Bus().Write16(ioreg.Base+ioreg.IE, uint16(irq.Timer0))
			m.Bus().Write8(ioreg.Base+ioreg.HALTCNT, 0)

			cycles, err := m.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(cycles).To(Equal(uint32(1)))
			Expect(m.CPU().Regs.PC()).To(Equal(uint32(romStart)))

			m.IO().Request(irq.Timer0)
			_, err = m.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(m.IO().Halted()).To(BeFalse())
			Expect(m.CPU().Regs.GetRegister(0)).To(Equal(uint32(1)))
		})
	})

	Describe("decode errors", func() {
		JustBeforeEach(func() {
			Expect(m.LoadROM(rom(coproc, movR0, loop))).To(Succeed())
		})

		It("halts the machine by default", func() {
			_, err := m.Step()
			var decodeErr *cpu.DecodeError
			Expect(err).To(BeAssignableToTypeOf(decodeErr))
			Expect(m.Halted()).To(BeTrue())
			Expect(m.Err()).To(Equal(err))
			Expect(m.CPU().Regs.PC()).To(Equal(uint32(romStart)))

			Expect(m.RunFrame()).To(MatchError(cpu.ErrUndefined))

			m.Reset()
			Expect(m.Halted()).To(BeFalse())
		})

		Context("when skipping", func() {
			BeforeEach(func() {
				config.OnDecodeError = emulator.Skip
			})

			It("moves on to the next instruction", func() {
				cycles, err := m.Step()
				Expect(err).NotTo(HaveOccurred())
				Expect(cycles).To(Equal(uint32(6)))
				Expect(m.CPU().Regs.PC()).To(Equal(uint32(romStart + 4)))

				_, err = m.Step()
				Expect(err).NotTo(HaveOccurred())
				Expect(m.CPU().Regs.GetRegister(0)).To(Equal(uint32(1)))
			})
		})

		Context("when trapping", func() {
			BeforeEach(func() {
				config.OnDecodeError = emulator.Trap
			})

			It("takes the undefined instruction exception", func() {
				_, err := m.Step()
				Expect(err).NotTo(HaveOccurred())
				Expect(m.CPU().Regs.Mode()).To(Equal(cpu.ModeUND))
				Expect(m.CPU().Regs.PC()).To(Equal(uint32(0x04)))
				Expect(m.CPU().Regs.GetRegister(14)).To(Equal(uint32(romStart + 4)))
			})
		})
	})

	Describe("RunFrame", func() {
		BeforeEach(func() {
			config.CyclesPerFrame = 100
		})

		It("runs at least a frame of cycles", func() {
			Expect(m.LoadROM(rom(addR0, 0xEAFFFFFD))).To(Succeed()) // ADD, B back to it
			sub := &counter{}
			m.Attach(sub)

			Expect(m.RunFrame()).To(Succeed())
			Expect(sub.cycles).To(BeNumerically(">=", 100))
			Expect(m.CPU().Regs.GetRegister(0)).To(BeNumerically(">", 1))
		})
	})
})
