// Package emulator puts the CPU core together with the memory map of the Game
// Boy Advance and runs it. Video, sound, DMA and timers are not emulated here:
// they are subsystems attached by the host, advanced after every CPU step by
// the cycles that step took.
package emulator

import (
	"errors"
	"fmt"

	"github.com/Div9851/gba-core/internal/bus"
	"github.com/Div9851/gba-core/internal/clock"
	"github.com/Div9851/gba-core/internal/cpu"
	"github.com/Div9851/gba-core/internal/gamepak"
	"github.com/Div9851/gba-core/internal/input"
	"github.com/Div9851/gba-core/internal/ioreg"
	"github.com/Div9851/gba-core/internal/irq"
	"github.com/Div9851/gba-core/internal/logger"
)

const (
	BIOSSize    = 16 * 1024
	EWRAMSize   = 256 * 1024
	IWRAMSize   = 32 * 1024
	PaletteSize = 1024
	VRAMSize    = 96 * 1024
	OAMSize     = 1024
)

var (
	ErrBIOSSize  = errors.New("BIOS image larger than 16KB")
	ErrROMLoaded = errors.New("a cartridge is already loaded")
)

// Subsystem is a collaborator that runs alongside the CPU.
type Subsystem interface {
	Advance(cycles uint32)
}

type Machine struct {
	config Config

	cpu   *cpu.CPU
	bus   *bus.Bus
	clock *clock.Clock
	irq   *irq.IRQ
	io    *ioreg.IOReg

	bios    []byte
	ewram   []byte
	iwram   []byte
	palette []byte
	vram    []byte
	oam     []byte
	gamepak *gamepak.GamePak

	subsystems []Subsystem

	// the decode error that halted the machine
	err error
}

func New(config Config) (*Machine, error) {
	m := &Machine{
		config:  config,
		bus:     bus.NewBus(),
		clock:   clock.NewClock(),
		irq:     irq.NewIRQ(),
		bios:    make([]byte, BIOSSize),
		ewram:   make([]byte, EWRAMSize),
		iwram:   make([]byte, IWRAMSize),
		palette: make([]byte, PaletteSize),
		vram:    make([]byte, VRAMSize),
		oam:     make([]byte, OAMSize),
	}
	m.io = ioreg.NewIOReg(m.irq, input.NewInput(m.irq), m.clock)
	m.cpu = cpu.NewCPU(m.bus, m.clock)

	regions := []struct {
		start, end uint32
		buf        []byte
		opts       []bus.RegionOption
	}{
		{0x00000000, 0x00004000, m.bios, []bus.RegionOption{bus.ReadOnly()}},
		{0x02000000, 0x03000000, m.ewram, nil},
		{0x03000000, 0x04000000, m.iwram, nil},
		{0x05000000, 0x06000000, m.palette, nil},
		{0x06000000, 0x07000000, m.vram, nil},
		{0x07000000, 0x08000000, m.oam, nil},
	}
	for _, r := range regions {
		if err := m.bus.RegisterMemory(r.start, r.end, r.buf, r.opts...); err != nil {
			return nil, fmt.Errorf("emulator: %w", err)
		}
	}
	if err := m.io.Attach(m.bus); err != nil {
		return nil, fmt.Errorf("emulator: %w", err)
	}

	m.Reset()
	return m, nil
}

// Reset resets the CPU and WAITCNT and clears a halt. Memory is kept.
func (m *Machine) Reset() {
	m.bus.Write16(ioreg.Base+ioreg.WAITCNT, m.config.WaitControl)
	m.cpu.Reset(m.config.SkipBIOS)
	m.clock.GetAndResetCycles()
	m.io.Wake()
	m.err = nil
}

func (m *Machine) LoadBIOS(data []byte) error {
	if len(data) > BIOSSize {
		return fmt.Errorf("emulator: %d bytes: %w", len(data), ErrBIOSSize)
	}
	clear(m.bios)
	copy(m.bios, data)
	return nil
}

// LoadROM parses the cartridge and maps it at 0x08000000, mirrored over the
// three wait state areas, with its SRAM at 0x0E000000.
func (m *Machine) LoadROM(data []byte) error {
	if m.gamepak != nil {
		return fmt.Errorf("emulator: %w", ErrROMLoaded)
	}
	g, err := gamepak.Parse(data)
	if err != nil {
		return err
	}
	if err := m.bus.RegisterMemory(0x08000000, 0x0E000000, g.ROM, bus.ReadOnly()); err != nil {
		return fmt.Errorf("emulator: %w", err)
	}
	if err := m.bus.RegisterMemory(0x0E000000, 0x10000000, g.SRAM); err != nil {
		return fmt.Errorf("emulator: %w", err)
	}
	m.gamepak = g
	logger.Logf("emulator", "loaded %s", g)
	return nil
}

// Attach adds a subsystem. Subsystems are advanced in the order attached.
func (m *Machine) Attach(s Subsystem) {
	m.subsystems = append(m.subsystems, s)
}

func (m *Machine) Config() Config {
	return m.config
}

func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

func (m *Machine) Bus() *bus.Bus {
	return m.bus
}

func (m *Machine) IO() *ioreg.IOReg {
	return m.io
}

func (m *Machine) Clock() *clock.Clock {
	return m.clock
}

// GamePak returns the loaded cartridge or nil.
func (m *Machine) GamePak() *gamepak.GamePak {
	return m.gamepak
}

// Halted reports whether a decode error stopped the machine.
func (m *Machine) Halted() bool {
	return m.err != nil
}

// Err returns the decode error that halted the machine.
func (m *Machine) Err() error {
	return m.err
}

// Step runs one instruction, or one idle cycle while the program has halted
// the CPU, and advances the attached subsystems by the cycles spent.
func (m *Machine) Step() (uint32, error) {
	if m.err != nil {
		return 0, m.err
	}

	if m.io.Halted() {
		if !m.irq.Raised() {
			m.clock.Internal(1)
			return m.advance(), nil
		}
		m.io.Wake()
	}

	if m.irq.Pending() {
		m.cpu.Interrupt(cpu.ExceptionIRQ)
	}

	if _, err := m.cpu.Step(); err != nil {
		var decodeErr *cpu.DecodeError
		if !errors.As(err, &decodeErr) {
			return m.advance(), err
		}
		if err := m.decodeError(decodeErr); err != nil {
			return m.advance(), err
		}
	}

	return m.advance(), nil
}

func (m *Machine) decodeError(err *cpu.DecodeError) error {
	regs := m.cpu.Regs
	switch m.config.OnDecodeError {
	case Skip:
		logger.Logf("emulator", "skipping %v at %08x", err, regs.PC())
		width := uint32(4)
		w := clock.Word
		if regs.Thumb() {
			width, w = 2, clock.Half
		}
		pc := regs.PC() &^ (width - 1)
		m.clock.Access(pc, w, clock.Sequential)
		regs.SetPC(pc + width)
	case Trap:
		m.cpu.RaiseUndefined()
	default:
		logger.Logf("emulator", "halted: %v at %08x", err, regs.PC())
		m.err = err
		return err
	}
	return nil
}

func (m *Machine) advance() uint32 {
	cycles := m.clock.GetAndResetCycles()
	for _, s := range m.subsystems {
		s.Advance(cycles)
	}
	return cycles
}

// RunFrame steps the machine for at least one frame worth of cycles.
func (m *Machine) RunFrame() error {
	var total uint32
	for total < m.config.CyclesPerFrame {
		cycles, err := m.Step()
		if err != nil {
			return err
		}
		total += cycles
	}
	return nil
}
