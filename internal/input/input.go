// Package input is the keypad: KEYINPUT as the program reads it and the
// KEYCNT keypad interrupt.
package input

import "github.com/Div9851/gba-core/internal/irq"

const (
	ButtonA uint16 = 1
	ButtonB uint16 = 1 << 1
	Select  uint16 = 1 << 2
	Start   uint16 = 1 << 3
	Right   uint16 = 1 << 4
	Left    uint16 = 1 << 5
	Up      uint16 = 1 << 6
	Down    uint16 = 1 << 7
	ButtonR uint16 = 1 << 8
	ButtonL uint16 = 1 << 9
)

const (
	buttonMask = 0x03FF

	// KEYCNT control bits
	irqEnable = 1 << 14
	irqAnd    = 1 << 15
)

// host key names and the button they press
var keyMap = map[string]uint16{
	"ArrowRight": Right,
	"ArrowLeft":  Left,
	"ArrowUp":    Up,
	"ArrowDown":  Down,
	"A":          ButtonL,
	"S":          ButtonR,
	"X":          ButtonA,
	"Z":          ButtonB,
	"Enter":      Start,
	"Backspace":  Select,
}

// Input holds the keypad registers. KEYINPUT is active low: a pressed button
// reads as 0.
type Input struct {
	KEYINPUT uint16
	KEYCNT   uint16
	IRQ      *irq.IRQ
}

func NewInput(irq *irq.IRQ) *Input {
	return &Input{
		KEYINPUT: buttonMask,
		IRQ:      irq,
	}
}

// Pressed returns the buttons currently held, active high.
func (input *Input) Pressed() uint16 {
	return ^input.KEYINPUT & buttonMask
}

// SetKeys presses the buttons mapped to the named host keys and releases the
// rest. Unknown names are ignored.
func (input *Input) SetKeys(keys []string) {
	var pressed uint16
	for _, key := range keys {
		pressed |= keyMap[key]
	}
	input.SetButtons(pressed)
}

// SetButtons sets the held buttons, active high.
func (input *Input) SetButtons(pressed uint16) {
	input.KEYINPUT = ^pressed & buttonMask
	input.check()
}

// SetControl writes KEYCNT. The interrupt condition is checked straight away.
func (input *Input) SetControl(value uint16) {
	input.KEYCNT = value
	input.check()
}

func (input *Input) check() {
	if input.KEYCNT&irqEnable == 0 || input.IRQ == nil {
		return
	}
	selected := input.KEYCNT & buttonMask
	held := input.Pressed() & selected
	if input.KEYCNT&irqAnd != 0 {
		if selected != 0 && held == selected {
			input.IRQ.Request(irq.Keypad)
		}
	} else if held != 0 {
		input.IRQ.Request(irq.Keypad)
	}
}
