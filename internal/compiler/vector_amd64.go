package compiler

import "github.com/rsaccon/fidget/tape"

// vectorBuilderAMD64 exists only so Assemble[vectorBuilderAMD64] type-checks
// on non-arm64 builds; every method fails with ErrUnsupportedOp. The vector
// flavor is AArch64-only per spec.md §4.4 — no x86-64 lowering is specified.
type vectorBuilderAMD64 struct{ err error }

func (v *vectorBuilderAMD64) fail()                                { v.err = ErrUnsupportedOp }
func (v *vectorBuilderAMD64) init(initialSlotCount int)            { v.fail() }
func (v *vectorBuilderAMD64) buildLoad(dst tape.Reg, slot tape.Slot)  { v.fail() }
func (v *vectorBuilderAMD64) buildStore(slot tape.Slot, src tape.Reg) { v.fail() }
func (v *vectorBuilderAMD64) buildInput(dst tape.Reg, axis uint8)   { v.fail() }
func (v *vectorBuilderAMD64) buildCopy(dst, src tape.Reg)           { v.fail() }
func (v *vectorBuilderAMD64) buildNeg(dst, src tape.Reg)            { v.fail() }
func (v *vectorBuilderAMD64) buildAbs(dst, src tape.Reg)            { v.fail() }
func (v *vectorBuilderAMD64) buildSqrt(dst, src tape.Reg)           { v.fail() }
func (v *vectorBuilderAMD64) buildSquare(dst, src tape.Reg)         { v.fail() }
func (v *vectorBuilderAMD64) buildRecip(dst, src tape.Reg)          { v.fail() }
func (v *vectorBuilderAMD64) buildAdd(dst, lhs, rhs tape.Reg)       { v.fail() }
func (v *vectorBuilderAMD64) buildSub(dst, lhs, rhs tape.Reg)       { v.fail() }
func (v *vectorBuilderAMD64) buildMul(dst, lhs, rhs tape.Reg)       { v.fail() }
func (v *vectorBuilderAMD64) buildMax(dst, lhs, rhs tape.Reg)       { v.fail() }
func (v *vectorBuilderAMD64) buildMin(dst, lhs, rhs tape.Reg)       { v.fail() }
func (v *vectorBuilderAMD64) loadImm(imm float32) tape.Reg          { v.fail(); return 0 }
func (v *vectorBuilderAMD64) finalize(result tape.Reg) ([]byte, error) { return nil, ErrUnsupportedOp }
