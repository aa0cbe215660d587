package compiler

import (
	"math"

	"github.com/rsaccon/fidget/internal/asm/amd64"
	"github.com/rsaccon/fidget/tape"
)

// amd64ArgRegs is the number of leading xmm registers the SysV ABI
// reserves for the incoming x, y, z arguments (xmm0-xmm2); amd64ImmReg
// is the next one, reserved the same way internal/compiler/regalloc.go
// reserves arm64's immReg.
const (
	amd64ArgRegs = 3
	amd64ImmReg  = amd64.Reg(amd64ArgRegs)
	amd64Offset  = amd64ArgRegs + 1
)

// pointBuilderAMD64 lowers a tape to the x86-64 point flavor described
// in spec.md §9: register-to-register scalar SSE only. It has no
// spill support and only 16-amd64Offset usable xmm registers, far
// short of tape.RegisterLimit, so both are explicit open holes
// reported through ErrUnsupportedOp rather than attempted unsoundly.
type pointBuilderAMD64 struct {
	asm amd64.Assembler
	err error
}

func (p *pointBuilderAMD64) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// reg maps a virtual register to its physical xmm register, or fails
// with ErrUnsupportedOp when v exceeds this architecture's usable
// register range.
func (p *pointBuilderAMD64) reg(v tape.Reg) amd64.Reg {
	phys := uint8(v) + amd64Offset
	if phys >= 16 {
		p.fail(ErrUnsupportedOp)
		return amd64.XMM0
	}
	return amd64.Reg(phys)
}

func (p *pointBuilderAMD64) init(initialSlotCount int) {
	if initialSlotCount > 0 {
		// Spilling is an open hole on this architecture (spec.md §9):
		// a tape planned with spill slots cannot be assembled here.
		p.fail(ErrUnsupportedOp)
	}
}

func (p *pointBuilderAMD64) buildLoad(dst tape.Reg, slot tape.Slot)  { p.fail(ErrUnsupportedOp) }
func (p *pointBuilderAMD64) buildStore(slot tape.Slot, src tape.Reg) { p.fail(ErrUnsupportedOp) }

func (p *pointBuilderAMD64) buildInput(dst tape.Reg, axis uint8) {
	p.asm.MovssReg(p.reg(dst), amd64.Reg(axis))
}

func (p *pointBuilderAMD64) buildCopy(dst, src tape.Reg) { p.asm.MovssReg(p.reg(dst), p.reg(src)) }

func (p *pointBuilderAMD64) buildNeg(dst, src tape.Reg) {
	// XOR the sign bit: load the 0x80000000 mask into the immediate
	// register's physical slot, then XORPS with src into dst.
	p.loadMaskInto(amd64ImmReg, 0x80000000)
	if dst != src {
		p.asm.MovssReg(p.reg(dst), p.reg(src))
	}
	p.asm.XorpsReg(p.reg(dst), amd64ImmReg)
}

func (p *pointBuilderAMD64) buildAbs(dst, src tape.Reg) {
	p.loadMaskInto(amd64ImmReg, 0x7FFFFFFF)
	if dst != src {
		p.asm.MovssReg(p.reg(dst), p.reg(src))
	}
	p.asm.AndpsReg(p.reg(dst), amd64ImmReg)
}

func (p *pointBuilderAMD64) buildRecip(dst, src tape.Reg)  { p.fail(ErrUnsupportedOp) }
func (p *pointBuilderAMD64) buildSqrt(dst, src tape.Reg)   { p.fail(ErrUnsupportedOp) }
func (p *pointBuilderAMD64) buildSquare(dst, src tape.Reg) { p.fail(ErrUnsupportedOp) }

func (p *pointBuilderAMD64) buildAdd(dst, lhs, rhs tape.Reg) { p.commutative(dst, lhs, rhs, p.asm.AddssReg) }
func (p *pointBuilderAMD64) buildMul(dst, lhs, rhs tape.Reg) { p.commutative(dst, lhs, rhs, p.asm.MulssReg) }

func (p *pointBuilderAMD64) buildSub(dst, lhs, rhs tape.Reg) {
	l, r := p.reg(lhs), p.reg(rhs)
	d := p.reg(dst)
	if d != l {
		p.asm.MovssReg(d, l)
	}
	p.asm.SubssReg(d, r)
}

// commutative lowers add/mul, which MOVSS-then-op can execute with
// either operand first, picking whichever avoids a redundant move.
func (p *pointBuilderAMD64) commutative(dst, lhs, rhs tape.Reg, op func(dst, src amd64.Reg)) {
	l, r := p.reg(lhs), p.reg(rhs)
	d := p.reg(dst)
	switch d {
	case l:
		op(d, r)
	case r:
		op(d, l)
	default:
		p.asm.MovssReg(d, l)
		op(d, r)
	}
}

// buildMax/buildMin implement the same three-way, NaN-collapsing
// selection as the AArch64 builder (point_arm64.go), using COMISS's
// unsigned-style flags in place of FCMP.
func (p *pointBuilderAMD64) buildMax(dst, lhs, rhs tape.Reg) { p.minMax(dst, lhs, rhs, true) }
func (p *pointBuilderAMD64) buildMin(dst, lhs, rhs tape.Reg) { p.minMax(dst, lhs, rhs, false) }

func (p *pointBuilderAMD64) minMax(dst, lhs, rhs tape.Reg, isMax bool) {
	l, r := p.reg(lhs), p.reg(rhs)
	d := p.reg(dst)

	// COMISS of a register with itself sets CF only when it is NaN: a
	// NaN lhs picks rhs, a NaN rhs picks lhs.
	p.asm.ComissReg(l, l)
	lhsNaNPos := p.asm.Len()
	p.asm.Jcc(amd64.CondB, 0)
	p.asm.ComissReg(r, r)
	rhsNaNPos := p.asm.Len()
	p.asm.Jcc(amd64.CondB, 0)

	p.asm.ComissReg(l, r)
	ltPos := p.asm.Len()
	p.asm.Jcc(amd64.CondB, 0) // lhs < rhs
	gtPos := p.asm.Len()
	p.asm.Jcc(amd64.CondA, 0) // lhs > rhs

	// Fallthrough: equal (both operands are ordered here).
	if d != l {
		p.asm.MovssReg(d, l)
	}
	if isMax {
		p.asm.MaxssReg(d, r)
	} else {
		p.asm.MinssReg(d, r)
	}
	endPos1 := p.asm.Len()
	p.asm.Jmp(0)

	ltTarget := p.asm.Len()
	if isMax {
		p.asm.MovssReg(d, r)
	} else {
		p.asm.MovssReg(d, l)
	}
	endPos2 := p.asm.Len()
	p.asm.Jmp(0)

	gtTarget := p.asm.Len()
	if isMax {
		p.asm.MovssReg(d, l)
	} else {
		p.asm.MovssReg(d, r)
	}
	finalPos := p.asm.Len()

	pickRHSTarget, pickLHSTarget := gtTarget, ltTarget
	if isMax {
		pickRHSTarget, pickLHSTarget = ltTarget, gtTarget
	}
	p.asm.PatchAt(lhsNaNPos, amd64.JccBytes(amd64.CondB, int32(pickRHSTarget-(lhsNaNPos+6))))
	p.asm.PatchAt(rhsNaNPos, amd64.JccBytes(amd64.CondB, int32(pickLHSTarget-(rhsNaNPos+6))))
	p.asm.PatchAt(ltPos, amd64.JccBytes(amd64.CondB, int32(ltTarget-(ltPos+6))))
	p.asm.PatchAt(gtPos, amd64.JccBytes(amd64.CondA, int32(gtTarget-(gtPos+6))))
	p.asm.PatchAt(endPos1, amd64.JmpBytes(int32(finalPos-(endPos1+5))))
	p.asm.PatchAt(endPos2, amd64.JmpBytes(int32(finalPos-(endPos2+5))))
}

// loadMaskInto materializes a 32-bit bit pattern into the reserved
// immediate xmm register via a general-purpose scratch register (rax,
// caller-saved and otherwise unused across one instruction's lowering).
func (p *pointBuilderAMD64) loadMaskInto(dst amd64.Reg, bits uint32) {
	p.asm.MovImm32(amd64.RAX, bits)
	p.asm.MovdFromGP(dst, amd64.RAX)
}

func (p *pointBuilderAMD64) loadImm(imm float32) tape.Reg {
	p.loadMaskInto(amd64ImmReg, math.Float32bits(imm))
	return immAMD64Virtual
}

// immAMD64Virtual is the wrapped virtual index whose reg() mapping
// lands back on amd64ImmReg, computed the same way regalloc.go's
// immRegVirtual wraps arm64's immReg.
var amd64ImmRegPhys = uint8(amd64ImmReg)
var immAMD64Virtual = tape.Reg(amd64ImmRegPhys - amd64Offset)

func (p *pointBuilderAMD64) finalize(result tape.Reg) ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	if d := p.reg(result); d != amd64.XMM0 {
		p.asm.MovssReg(amd64.XMM0, d)
	}
	p.asm.Ret()
	if p.err != nil {
		return nil, p.err
	}
	return p.asm.Bytes(), nil
}
