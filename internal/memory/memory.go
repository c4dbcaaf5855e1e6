// Package memory defines how the CPU and its collaborators see the address
// space.
package memory

// Memory is byte addressable, little-endian storage.
//
// Read16 and Read32 return the zero extended value as the ARM7TDMI sees it on
// a load: a misaligned access reads the aligned halfword/word below the
// address and rotates it right by 8 bits per byte of misalignment. For Read16
// the rotation is across all 32 bits, so 0xBBAA read at an odd address is
// 0xAA0000BB, not 0xAABB. Collaborators that want the halfword itself (DMA,
// for example) use Halfword. Write16 and Write32 force-align the address down
// without rotating the value.
type Memory interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint32
	Read32(addr uint32) uint32
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
}

// Halfword reads the aligned halfword containing addr, without the rotation
// Read16 applies to a misaligned address.
func Halfword(m Memory, addr uint32) uint16 {
	return uint16(m.Read16(addr &^ 1))
}
