package compiler

import (
	"fmt"

	"github.com/rsaccon/fidget/internal/platform"
	"github.com/rsaccon/fidget/tape"
)

// Builder is the capability set a flavor-specific assembler supplies;
// Assemble is generic over it so the three flavors (point, vector,
// interval) are selected statically at the call site instead of
// through a runtime interface value — see spec.md §9's rejection of
// dynamic dispatch between flavors, and DESIGN.md.
type Builder interface {
	init(initialSlotCount int)
	buildLoad(dst tape.Reg, slot tape.Slot)
	buildStore(slot tape.Slot, src tape.Reg)
	buildInput(dst tape.Reg, axis uint8)
	buildCopy(dst, src tape.Reg)
	buildNeg(dst, src tape.Reg)
	buildAbs(dst, src tape.Reg)
	buildRecip(dst, src tape.Reg)
	buildSqrt(dst, src tape.Reg)
	buildSquare(dst, src tape.Reg)
	buildAdd(dst, lhs, rhs tape.Reg)
	buildSub(dst, lhs, rhs tape.Reg)
	buildMul(dst, lhs, rhs tape.Reg)
	buildMax(dst, lhs, rhs tape.Reg)
	buildMin(dst, lhs, rhs tape.Reg)
	// loadImm synthesizes a load of imm into the reserved immediate
	// register and returns its virtual index, per spec.md §4.1.
	loadImm(imm float32) tape.Reg
	// finalize moves result (the tape's last instruction's Out
	// register, i.e. wherever the planner left the expression's value)
	// into the flavor's ABI return slot, tears down the frame, and
	// returns the emitted code.
	finalize(result tape.Reg) ([]byte, error)
}

// Assemble drives one flavor's Builder over every instruction in t,
// then wraps the emitted code in an executable buffer. initialSlotCount
// is the spill-slot count the tape was planned with (spec.md §4.1).
func Assemble[B Builder](b B, t tape.Tape, initialSlotCount int) (*platform.ExecutableBuffer, error) {
	if t.Len() == 0 {
		panic("BUG: empty tape has no result register")
	}
	b.init(initialSlotCount)
	for i := 0; i < t.Len(); i++ {
		lower(b, t.At(i))
	}
	result := t.At(t.Len() - 1).Out
	code, err := b.finalize(result)
	if err != nil {
		return nil, err
	}
	return platform.NewExecutableBuffer(code)
}

// validate asserts the tape contract's register/slot invariants
// (spec.md §6): the driver trusts an external planner but may assert.
func validateReg(r tape.Reg) {
	if uint32(r) >= tape.RegisterLimit {
		panic("BUG: virtual register out of range")
	}
}

func validateSlot(s tape.Slot) {
	if uint32(s) < tape.RegisterLimit {
		panic("BUG: spill slot below RegisterLimit")
	}
}

// lower dispatches one tape.Inst to the appropriate Builder method,
// expanding *Imm variants through loadImm exactly per the three
// rewrite rules of spec.md §4.1. This is the one place those rules
// are implemented; no flavor reimplements them.
func lower[B Builder](b B, inst tape.Inst) {
	switch inst.Op {
	case tape.OpLoad:
		validateReg(inst.Out)
		validateSlot(inst.Slot)
		b.buildLoad(inst.Out, inst.Slot)
	case tape.OpStore:
		validateSlot(inst.Slot)
		validateReg(inst.B)
		b.buildStore(inst.Slot, inst.B)
	case tape.OpInput:
		validateReg(inst.Out)
		b.buildInput(inst.Out, inst.Axis)
	case tape.OpCopyReg:
		b.buildCopy(inst.Out, inst.A)
	case tape.OpCopyImm:
		r := b.loadImm(inst.Imm)
		b.buildCopy(inst.Out, r)
	case tape.OpNegReg:
		b.buildNeg(inst.Out, inst.A)
	case tape.OpAbsReg:
		b.buildAbs(inst.Out, inst.A)
	case tape.OpRecipReg:
		b.buildRecip(inst.Out, inst.A)
	case tape.OpSqrtReg:
		b.buildSqrt(inst.Out, inst.A)
	case tape.OpSquareReg:
		b.buildSquare(inst.Out, inst.A)
	case tape.OpAddRegReg:
		b.buildAdd(inst.Out, inst.A, inst.B)
	case tape.OpAddRegImm:
		r := b.loadImm(inst.Imm)
		b.buildAdd(inst.Out, inst.A, r)
	case tape.OpSubRegReg:
		b.buildSub(inst.Out, inst.A, inst.B)
	case tape.OpSubRegImm:
		r := b.loadImm(inst.Imm)
		b.buildSub(inst.Out, inst.A, r)
	case tape.OpSubImmReg:
		// Operand order flipped: out = imm - a.
		r := b.loadImm(inst.Imm)
		b.buildSub(inst.Out, r, inst.A)
	case tape.OpMulRegReg:
		b.buildMul(inst.Out, inst.A, inst.B)
	case tape.OpMulRegImm:
		r := b.loadImm(inst.Imm)
		b.buildMul(inst.Out, inst.A, r)
	case tape.OpMaxRegReg:
		b.buildMax(inst.Out, inst.A, inst.B)
	case tape.OpMaxRegImm:
		r := b.loadImm(inst.Imm)
		b.buildMax(inst.Out, inst.A, r)
	case tape.OpMinRegReg:
		b.buildMin(inst.Out, inst.A, inst.B)
	case tape.OpMinRegImm:
		r := b.loadImm(inst.Imm)
		b.buildMin(inst.Out, inst.A, r)
	default:
		panic(fmt.Sprintf("BUG: unhandled tape op %v", inst.Op))
	}
}
