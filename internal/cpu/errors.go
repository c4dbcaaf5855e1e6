package cpu

import (
	"errors"
	"fmt"
)

// InstructionSet is the state the processor was in when an instruction was
// fetched.
type InstructionSet int

const (
	SetARM InstructionSet = iota
	SetThumb
)

func (s InstructionSet) String() string {
	if s == SetThumb {
		return "thumb"
	}
	return "arm"
}

// ErrUndefined is wrapped by every DecodeError.
var ErrUndefined = errors.New("undefined instruction")

// DecodeError is returned by the decoders for an encoding that no format
// claims. For ARM, Index is the 12-bit table index of the encoding. For Thumb
// it is the top byte.
type DecodeError struct {
	Raw   uint32
	Index uint16
	Set   InstructionSet
}

func (e *DecodeError) Error() string {
	if e.Set == SetThumb {
		return fmt.Sprintf("cpu: %s: thumb %04x (index %02x)", ErrUndefined, e.Raw, e.Index)
	}
	return fmt.Sprintf("cpu: %s: arm %08x (index %03x)", ErrUndefined, e.Raw, e.Index)
}

func (e *DecodeError) Unwrap() error {
	return ErrUndefined
}
