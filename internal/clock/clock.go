// Package clock accumulates the cycle cost of the bus accesses made by the
// CPU. The cost of an access depends on the address (each 16MB page of the
// address space has its own bus width and wait states), the access width and
// whether the access is sequential to the previous one. Cartridge and SRAM
// wait states are set by the WAITCNT register.
package clock

// Width of a bus access.
type Width int

const (
	Byte Width = iota
	Half
	Word
)

// Access is the ARM7TDMI bus cycle type.
type Access int

const (
	// NonSequential is an access to an address unrelated to the previous one.
	NonSequential Access = iota

	// Sequential is an access to the address following the previous one.
	Sequential
)

func (a Access) String() string {
	if a == Sequential {
		return "S"
	}
	return "N"
}

// cycles per access, including the base cycle.
type pageTiming struct {
	n16, s16 uint32
	n32, s32 uint32
}

// cartridge first access wait states indexed by the 2-bit WAITCNT field.
var firstAccess = [4]uint32{4, 3, 2, 8}

// cartridge second access wait states, per wait state area, indexed by the
// 1-bit WAITCNT field.
var secondAccess = [3][2]uint32{{2, 1}, {4, 1}, {8, 1}}

// Clock counts the cycles spent by the CPU since the last drain.
type Clock struct {
	cycles      uint32
	waitControl uint16
	timing      [16]pageTiming
}

func NewClock() *Clock {
	c := &Clock{}
	c.SetWaitControl(0)
	return c
}

// SetWaitControl sets the WAITCNT value and recomputes the cartridge timings.
func (c *Clock) SetWaitControl(value uint16) {
	c.waitControl = value

	one := pageTiming{n16: 1, s16: 1, n32: 1, s32: 1}
	for i := range c.timing {
		c.timing[i] = one
	}

	// on-board work RAM has a 16 bit bus and 2 wait states
	c.timing[0x2] = pageTiming{n16: 3, s16: 3, n32: 6, s32: 6}

	// palette RAM and VRAM have a 16 bit bus and no wait states
	c.timing[0x5] = pageTiming{n16: 1, s16: 1, n32: 2, s32: 2}
	c.timing[0x6] = pageTiming{n16: 1, s16: 1, n32: 2, s32: 2}

	// cartridge ROM wait state areas 0, 1 and 2. each area is mirrored over two
	// pages
	for area := range 3 {
		n := 1 + firstAccess[(value>>(2+area*3))&3]
		s := 1 + secondAccess[area][(value>>(4+area*3))&1]
		t := pageTiming{n16: n, s16: s, n32: n + s, s32: 2 * s}
		c.timing[0x8+area*2] = t
		c.timing[0x9+area*2] = t
	}

	// cartridge SRAM has an 8 bit bus
	sram := 1 + firstAccess[value&3]
	c.timing[0xE] = pageTiming{n16: sram, s16: sram, n32: sram, s32: sram}
	c.timing[0xF] = c.timing[0xE]
}

// WaitControl returns the current WAITCNT value.
func (c *Clock) WaitControl() uint16 {
	return c.waitControl
}

// Cost returns the cycles an access would take without accumulating them.
func (c *Clock) Cost(addr uint32, width Width, access Access) uint32 {
	if addr >= 0x10000000 {
		return 1
	}
	t := c.timing[addr>>24]
	switch {
	case width == Word && access == Sequential:
		return t.s32
	case width == Word:
		return t.n32
	case access == Sequential:
		return t.s16
	default:
		return t.n16
	}
}

// Access accumulates and returns the cost of one bus access.
func (c *Clock) Access(addr uint32, width Width, access Access) uint32 {
	n := c.Cost(addr, width, access)
	c.cycles += n
	return n
}

// Internal accumulates n internal (I) cycles, which never touch the bus.
func (c *Clock) Internal(n uint32) {
	c.cycles += n
}

// Cycles returns the cycles accumulated since the last drain.
func (c *Clock) Cycles() uint32 {
	return c.cycles
}

// GetAndResetCycles drains the accumulator.
func (c *Clock) GetAndResetCycles() uint32 {
	n := c.cycles
	c.cycles = 0
	return n
}
