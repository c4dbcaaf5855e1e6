// Package irq is the interrupt line of the machine: the IE, IF and IME
// registers and the check the scheduler makes between instructions.
package irq

// Source is a bit in IE and IF.
type Source uint16

const (
	VBlank Source = 1 << iota
	HBlank
	VCount
	Timer0
	Timer1
	Timer2
	Timer3
	Serial
	DMA0
	DMA1
	DMA2
	DMA3
	Keypad
	GamePak
)

// all defined sources
const sourceMask = 0x3FFF

type IRQ struct {
	IME uint16
	IE  uint16
	IF  uint16
}

func NewIRQ() *IRQ {
	return &IRQ{}
}

// Request raises the source in IF.
func (irq *IRQ) Request(s Source) {
	irq.IF |= uint16(s) & sourceMask
}

// Acknowledge clears the bits of mask in IF. This is what a write to IF does.
func (irq *IRQ) Acknowledge(mask uint16) {
	irq.IF &^= mask
}

// Raised reports whether an enabled source is requested, regardless of IME.
// A halted CPU wakes up on this condition.
func (irq *IRQ) Raised() bool {
	return irq.IE&irq.IF&sourceMask != 0
}

// Pending reports whether the CPU should take an IRQ exception.
func (irq *IRQ) Pending() bool {
	return irq.IME&1 != 0 && irq.Raised()
}
