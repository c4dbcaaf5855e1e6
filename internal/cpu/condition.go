package cpu

// Condition is the 4-bit condition field of an ARM instruction or a Thumb
// conditional branch.
type Condition uint8

const (
	EQ Condition = iota
	NE
	CS
	CC
	MI
	PL
	VS
	VC
	HI
	LS
	GE
	LT
	GT
	LE
	AL
	NV
)

var conditionNames = [16]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "AL", "NV",
}

func (c Condition) String() string {
	return conditionNames[c&0xF]
}

// Evaluate tests the condition against the flags of a CPSR value. NV is never
// true.
func (c Condition) Evaluate(cpsr uint32) bool {
	n := cpsr&BitN != 0
	z := cpsr&BitZ != 0
	cf := cpsr&BitC != 0
	v := cpsr&BitV != 0

	switch c {
	case EQ:
		return z
	case NE:
		return !z
	case CS:
		return cf
	case CC:
		return !cf
	case MI:
		return n
	case PL:
		return !n
	case VS:
		return v
	case VC:
		return !v
	case HI:
		return cf && !z
	case LS:
		return !cf || z
	case GE:
		return n == v
	case LT:
		return n != v
	case GT:
		return !z && n == v
	case LE:
		return z || n != v
	case AL:
		return true
	}
	return false
}
