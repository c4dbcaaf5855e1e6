// Package ioreg is the I/O register block at 0x04000000. Only the registers the
// CPU core depends on have side effects: the interrupt line, the keypad, the
// wait state control and the halt control. Every other register is plain
// storage that reads back what was written.
package ioreg

import (
	"github.com/Div9851/gba-core/internal/bus"
	"github.com/Div9851/gba-core/internal/clock"
	"github.com/Div9851/gba-core/internal/input"
	"github.com/Div9851/gba-core/internal/irq"
	"github.com/Div9851/gba-core/internal/logger"
)

const (
	Base = 0x04000000
	Size = 0x400
)

// register offsets from Base
const (
	KEYINPUT = 0x130
	KEYCNT   = 0x132
	IE       = 0x200
	IF       = 0x202
	WAITCNT  = 0x204
	IME      = 0x208
	POSTFLG  = 0x300
	HALTCNT  = 0x301
)

// WAITCNT bit 15 is the read only game pak type flag
const waitControlMask = 0x5FFF

type IOReg struct {
	buffer [Size]byte
	IRQ    *irq.IRQ
	Input  *input.Input
	Clock  *clock.Clock
	halted bool
}

func NewIOReg(irq *irq.IRQ, input *input.Input, clock *clock.Clock) *IOReg {
	r := &IOReg{
		IRQ:   irq,
		Input: input,
		Clock: clock,
	}
	r.Sync()
	return r
}

// Attach maps the register block onto the bus.
func (r *IOReg) Attach(b *bus.Bus) error {
	return b.RegisterMemory(Base, Base+Size, r.buffer[:], bus.WithWriteHandler(r.write8))
}

func (r *IOReg) readBuffer16(offset uint32) uint16 {
	return uint16(r.buffer[offset]) | uint16(r.buffer[offset+1])<<8
}

func (r *IOReg) writeBuffer16(offset uint32, value uint16) {
	r.buffer[offset] = byte(value)
	r.buffer[offset+1] = byte(value >> 8)
}

// Read16 returns a register as the bus sees it.
func (r *IOReg) Read16(offset uint32) uint16 {
	return r.readBuffer16(offset &^ 1)
}

// Sync copies register state changed outside the bus (keypad, interrupt
// requests, wait states) into the block the bus reads from.
func (r *IOReg) Sync() {
	r.writeBuffer16(KEYINPUT, r.Input.KEYINPUT)
	r.writeBuffer16(KEYCNT, r.Input.KEYCNT)
	r.writeBuffer16(IE, r.IRQ.IE)
	r.writeBuffer16(IF, r.IRQ.IF)
	r.writeBuffer16(WAITCNT, r.Clock.WaitControl())
	r.writeBuffer16(IME, r.IRQ.IME)
}

func (r *IOReg) write8(offset uint32, value uint8) {
	switch offset {
	case KEYINPUT, KEYINPUT + 1:
		return
	case IF, IF + 1:
		r.IRQ.Acknowledge(uint16(value) << ((offset - IF) * 8))
		r.Sync()
		return
	case HALTCNT:
		if value&0x80 != 0 {
			logger.Log("ioreg", "stop mode is treated as halt")
		}
		r.halted = true
		return
	}

	r.buffer[offset] = value

	switch offset &^ 1 {
	case KEYCNT:
		r.Input.SetControl(r.readBuffer16(KEYCNT))
	case IE:
		r.IRQ.IE = r.readBuffer16(IE)
	case WAITCNT:
		r.Clock.SetWaitControl(r.readBuffer16(WAITCNT) & waitControlMask)
	case IME:
		r.IRQ.IME = r.readBuffer16(IME) & 1
	default:
		return
	}
	r.Sync()
}

// Request raises an interrupt source on behalf of a collaborator.
func (r *IOReg) Request(s irq.Source) {
	r.IRQ.Request(s)
	r.Sync()
}

// SetKeys updates the keypad from the named host keys. See input.SetKeys.
func (r *IOReg) SetKeys(keys []string) {
	r.Input.SetKeys(keys)
	r.Sync()
}

// Halted reports whether the program wrote HALTCNT and no enabled interrupt
// has been requested since.
func (r *IOReg) Halted() bool {
	return r.halted
}

// Wake leaves the halt state.
func (r *IOReg) Wake() {
	r.halted = false
}
