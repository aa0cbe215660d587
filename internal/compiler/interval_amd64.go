package compiler

import "github.com/rsaccon/fidget/tape"

// intervalBuilderAMD64 exists only so Assemble[intervalBuilderAMD64]
// type-checks on non-arm64 builds; every method fails with
// ErrUnsupportedOp. The interval flavor is AArch64-only per spec.md
// §4.5 — no x86-64 lowering is specified.
type intervalBuilderAMD64 struct{ err error }

func (iv *intervalBuilderAMD64) fail()                                 { iv.err = ErrUnsupportedOp }
func (iv *intervalBuilderAMD64) init(initialSlotCount int)             { iv.fail() }
func (iv *intervalBuilderAMD64) buildLoad(dst tape.Reg, slot tape.Slot)  { iv.fail() }
func (iv *intervalBuilderAMD64) buildStore(slot tape.Slot, src tape.Reg) { iv.fail() }
func (iv *intervalBuilderAMD64) buildInput(dst tape.Reg, axis uint8)    { iv.fail() }
func (iv *intervalBuilderAMD64) buildCopy(dst, src tape.Reg)            { iv.fail() }
func (iv *intervalBuilderAMD64) buildNeg(dst, src tape.Reg)             { iv.fail() }
func (iv *intervalBuilderAMD64) buildAbs(dst, src tape.Reg)             { iv.fail() }
func (iv *intervalBuilderAMD64) buildSqrt(dst, src tape.Reg)            { iv.fail() }
func (iv *intervalBuilderAMD64) buildSquare(dst, src tape.Reg)          { iv.fail() }
func (iv *intervalBuilderAMD64) buildRecip(dst, src tape.Reg)           { iv.fail() }
func (iv *intervalBuilderAMD64) buildAdd(dst, lhs, rhs tape.Reg)        { iv.fail() }
func (iv *intervalBuilderAMD64) buildSub(dst, lhs, rhs tape.Reg)        { iv.fail() }
func (iv *intervalBuilderAMD64) buildMul(dst, lhs, rhs tape.Reg)        { iv.fail() }
func (iv *intervalBuilderAMD64) buildMax(dst, lhs, rhs tape.Reg)        { iv.fail() }
func (iv *intervalBuilderAMD64) buildMin(dst, lhs, rhs tape.Reg)        { iv.fail() }
func (iv *intervalBuilderAMD64) loadImm(imm float32) tape.Reg           { iv.fail(); return 0 }
func (iv *intervalBuilderAMD64) finalize(result tape.Reg) ([]byte, error) { return nil, ErrUnsupportedOp }
