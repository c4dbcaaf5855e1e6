package emulator

import "fmt"

// DecodePolicy is what the machine does when the CPU fetches an encoding it
// cannot decode.
type DecodePolicy int

const (
	// Halt stops the machine. Step and RunFrame return the *cpu.DecodeError
	// until Reset.
	Halt DecodePolicy = iota

	// Skip logs the encoding and moves on to the next instruction.
	Skip

	// Trap takes the undefined instruction exception, as the hardware does.
	Trap
)

func (p DecodePolicy) String() string {
	switch p {
	case Halt:
		return "halt"
	case Skip:
		return "skip"
	case Trap:
		return "trap"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParseDecodePolicy is the inverse of DecodePolicy.String.
func ParseDecodePolicy(s string) (DecodePolicy, error) {
	for _, p := range []DecodePolicy{Halt, Skip, Trap} {
		if p.String() == s {
			return p, nil
		}
	}
	return Halt, fmt.Errorf("emulator: unknown decode error policy %q", s)
}

type Config struct {
	// start at the cartridge entry point with the registers as the BIOS
	// leaves them
	SkipBIOS bool

	// initial WAITCNT
	WaitControl uint16

	// CPU cycles in one video frame. RunFrame runs at least this many
	CyclesPerFrame uint32

	OnDecodeError DecodePolicy
}

func DefaultConfig() Config {
	return Config{
		SkipBIOS:       true,
		CyclesPerFrame: 280896,
		OnDecodeError:  Halt,
	}
}
