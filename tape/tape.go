// Package tape defines the virtual instruction set and the iterable
// tape contract that an external planner/register-allocator produces
// and this module's assemblers consume.
//
// Construction of a planned, register-allocated tape from an
// expression graph — constant folding, common-subexpression
// elimination, and the register allocator itself — is out of scope
// here; see spec.md §1. This package only fixes the shape a tape must
// have to be compiled, plus a minimal reference implementation
// (Program/Builder) used by this module's own tests.
package tape

import "fmt"

// RegisterLimit is the number of virtual registers in the tape's
// register file. Output registers are always < RegisterLimit; memory
// operands (spill slots) are always >= RegisterLimit.
const RegisterLimit = 24

// Reg is a virtual register index, always < RegisterLimit.
type Reg uint8

// Slot is a spill-slot index, always >= RegisterLimit. It continues
// Reg's numeric space above RegisterLimit; Inst carries it in its own
// Slot field, which is meaningful only for Load/Store, per spec.md §3.
type Slot uint32

// Op enumerates the virtual ISA. Each opcode carries one output
// virtual register and one or two operands (register, memory slot, or
// immediate), per spec.md §3-4.
type Op uint8

const (
	OpLoad Op = iota
	OpStore
	OpInput
	OpCopyReg
	OpCopyImm
	OpNegReg
	OpAbsReg
	OpRecipReg
	OpSqrtReg
	OpSquareReg
	OpAddRegReg
	OpAddRegImm
	OpSubRegReg
	OpSubRegImm
	OpSubImmReg
	OpMulRegReg
	OpMulRegImm
	OpMaxRegReg
	OpMaxRegImm
	OpMinRegReg
	OpMinRegImm
)

func (o Op) String() string {
	switch o {
	case OpLoad:
		return "Load"
	case OpStore:
		return "Store"
	case OpInput:
		return "Input"
	case OpCopyReg:
		return "CopyReg"
	case OpCopyImm:
		return "CopyImm"
	case OpNegReg:
		return "NegReg"
	case OpAbsReg:
		return "AbsReg"
	case OpRecipReg:
		return "RecipReg"
	case OpSqrtReg:
		return "SqrtReg"
	case OpSquareReg:
		return "SquareReg"
	case OpAddRegReg:
		return "AddRegReg"
	case OpAddRegImm:
		return "AddRegImm"
	case OpSubRegReg:
		return "SubRegReg"
	case OpSubRegImm:
		return "SubRegImm"
	case OpSubImmReg:
		return "SubImmReg"
	case OpMulRegReg:
		return "MulRegReg"
	case OpMulRegImm:
		return "MulRegImm"
	case OpMaxRegReg:
		return "MaxRegReg"
	case OpMaxRegImm:
		return "MaxRegImm"
	case OpMinRegReg:
		return "MinRegReg"
	case OpMinRegImm:
		return "MinRegImm"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// IsMinMax reports whether o is one of the choice-emitting operators.
func (o Op) IsMinMax() bool {
	switch o {
	case OpMaxRegReg, OpMaxRegImm, OpMinRegReg, OpMinRegImm:
		return true
	default:
		return false
	}
}

// IsImm reports whether o carries an immediate operand and therefore
// must be lowered through the driver's load_imm rewrite, per
// spec.md §4.1.
func (o Op) IsImm() bool {
	switch o {
	case OpCopyImm, OpAddRegImm, OpSubRegImm, OpSubImmReg, OpMulRegImm, OpMaxRegImm, OpMinRegImm:
		return true
	default:
		return false
	}
}

// Inst is one tape instruction. Which of A, B, Slot, Imm, Axis are
// meaningful depends on Op:
//
//   - Load:  Out = register, Slot = memory operand.
//   - Store: Slot = memory operand, B = register(source); Out unused.
//   - Input: Out = register, Axis = 0/1/2 for x/y/z.
//   - CopyImm: Out = register, Imm = immediate.
//   - unary (Copy/Neg/Abs/Recip/Sqrt/Square)Reg: Out, A = registers.
//   - *RegReg binary: Out, A (lhs), B (rhs) = registers.
//   - *RegImm binary: Out, A (lhs) = registers, Imm = rhs immediate.
//   - SubImmReg: Out, A (rhs) = registers, Imm = lhs immediate.
type Inst struct {
	Op   Op
	Out  Reg
	A    Reg
	B    Reg
	Slot Slot
	Imm  float32
	Axis uint8
}

// Tape is a finite, ordered, externally produced sequence of virtual
// instructions satisfying the invariants of spec.md §6: every Out and
// register operand is < RegisterLimit, every Slot is >= RegisterLimit,
// and ChoiceCount is exactly the number of min/max opcodes present.
type Tape interface {
	// Len returns the number of instructions.
	Len() int
	// At returns the i'th instruction, 0 <= i < Len().
	At(i int) Inst
	// ChoiceCount returns the number of min/max opcodes in the tape;
	// this is the exact size of the choice byte buffer an interval
	// evaluator must allocate.
	ChoiceCount() int
}

// SimplifyFunc is the external simplify hook: given a decoded choice
// vector (indexed by tape position among min/max nodes, per spec.md
// §5 ordering), it returns a new, pruned tape. The core does not
// define this function; it is supplied by the caller (the downstream
// tape simplifier, out of scope here).
type SimplifyFunc func(choices []Choice) Tape
