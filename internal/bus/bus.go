// Package bus is the memory bus of the machine. Collaborators (work RAM, video
// memory, cartridge ROM, I/O register blocks) attach their backing storage as
// address regions. The bus doesn't know what any region represents.
package bus

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/Div9851/gba-core/internal/logger"
)

// Sentinel errors returned by RegisterMemory.
var (
	ErrRegion  = errors.New("invalid region")
	ErrOverlap = errors.New("region overlaps existing region")
)

// WriteHandler replaces the default store for a region. The offset is relative
// to the start of the backing buffer (after mirroring).
type WriteHandler func(offset uint32, value uint8)

// Region is a half-open address range [Start, End) backed by a byte buffer. A
// range larger than the buffer mirrors it.
type Region struct {
	Start uint32
	End   uint32
	Data  []byte

	readOnly bool
	write    WriteHandler
}

func (r *Region) contains(addr uint32) bool {
	return addr >= r.Start && addr < r.End
}

func (r *Region) offset(addr uint32) uint32 {
	return (addr - r.Start) % uint32(len(r.Data))
}

// RegionOption configures a region at registration.
type RegionOption func(*Region)

// ReadOnly silently drops all writes to the region.
func ReadOnly() RegionOption {
	return func(r *Region) {
		r.readOnly = true
	}
}

// WithWriteHandler routes byte writes to fn instead of the buffer.
func WithWriteHandler(fn WriteHandler) RegionOption {
	return func(r *Region) {
		r.write = fn
	}
}

// Bus implements the memory.Memory interface over a small set of regions.
type Bus struct {
	regions []*Region
}

func NewBus() *Bus {
	return &Bus{}
}

// RegisterMemory attaches buf to the address range [start, end). Regions must
// not overlap.
func (bus *Bus) RegisterMemory(start, end uint32, buf []byte, opts ...RegionOption) error {
	if end <= start {
		return fmt.Errorf("bus: %08x-%08x: %w", start, end, ErrRegion)
	}
	if len(buf) == 0 {
		return fmt.Errorf("bus: %08x-%08x: empty buffer: %w", start, end, ErrRegion)
	}
	for _, r := range bus.regions {
		if start < r.End && r.Start < end {
			return fmt.Errorf("bus: %08x-%08x with %08x-%08x: %w", start, end, r.Start, r.End, ErrOverlap)
		}
	}

	r := &Region{Start: start, End: end, Data: buf}
	for _, opt := range opts {
		opt(r)
	}
	bus.regions = append(bus.regions, r)
	return nil
}

// Regions returns the registered regions in registration order.
func (bus *Bus) Regions() []Region {
	rs := make([]Region, len(bus.regions))
	for i, r := range bus.regions {
		rs[i] = *r
	}
	return rs
}

func (bus *Bus) lookup(addr uint32) *Region {
	for _, r := range bus.regions {
		if r.contains(addr) {
			return r
		}
	}
	return nil
}

func (bus *Bus) read8(addr uint32) uint8 {
	r := bus.lookup(addr)
	if r == nil {
		logger.Logf("bus", "unmapped read (%08x)", addr)
		return 0
	}
	return r.Data[r.offset(addr)]
}

func (bus *Bus) write8(addr uint32, value uint8) {
	r := bus.lookup(addr)
	if r == nil {
		logger.Logf("bus", "unmapped write (%08x)", addr)
		return
	}
	if r.readOnly {
		return
	}
	if r.write != nil {
		r.write(r.offset(addr), value)
		return
	}
	r.Data[r.offset(addr)] = value
}

func (bus *Bus) Read8(addr uint32) uint8 {
	return bus.read8(addr)
}

func (bus *Bus) Read16(addr uint32) uint32 {
	aligned := addr &^ 1
	low := uint32(bus.read8(aligned))
	high := uint32(bus.read8(aligned + 1))
	return bits.RotateLeft32(high<<8|low, -int(addr&1)*8)
}

func (bus *Bus) Read32(addr uint32) uint32 {
	aligned := addr &^ 3
	val := uint32(bus.read8(aligned)) |
		uint32(bus.read8(aligned+1))<<8 |
		uint32(bus.read8(aligned+2))<<16 |
		uint32(bus.read8(aligned+3))<<24
	return bits.RotateLeft32(val, -int(addr&3)*8)
}

func (bus *Bus) Write8(addr uint32, value uint8) {
	bus.write8(addr, value)
}

func (bus *Bus) Write16(addr uint32, value uint16) {
	addr &^= 1
	bus.write8(addr, uint8(value))
	bus.write8(addr+1, uint8(value>>8))
}

func (bus *Bus) Write32(addr uint32, value uint32) {
	addr &^= 3
	bus.write8(addr, uint8(value))
	bus.write8(addr+1, uint8(value>>8))
	bus.write8(addr+2, uint8(value>>16))
	bus.write8(addr+3, uint8(value>>24))
}
