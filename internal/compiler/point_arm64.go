package compiler

import (
	"math"

	"github.com/rsaccon/fidget/internal/asm/arm64"
	"github.com/rsaccon/fidget/tape"
)

// scratchGPR is the general-purpose register used to stage a constant's
// raw bits before moving them into the scalar FP immediate register;
// x9 is caller-saved and otherwise unused across this builder's
// lifetime (spec.md §4.3's register-use contract).
const scratchGPR = arm64.R9

// pointBuilderARM64 lowers a tape to the AArch64 point flavor: one
// scalar f32 in, one scalar f32 out, per SPEC_FULL.md §5.3. It
// implements compiler.Builder and is driven only through Assemble.
type pointBuilderARM64 struct {
	asm   arm64.Assembler
	stack stackMath
}

func (p *pointBuilderARM64) reg(v tape.Reg) arm64.Reg { return arm64.Reg(physReg(v)) }

func (p *pointBuilderARM64) init(initialSlotCount int) {
	p.stack = stackMath{elemSize: 4}
	p.asm.StpPre64(arm64.R29, arm64.R30, arm64.RSP, -16)
	p.asm.MovFromSP(arm64.R29)
	p.asm.StpPreD(arm64.V8, arm64.V9, arm64.RSP, -16)
	p.asm.StpPreD(arm64.V10, arm64.V11, arm64.RSP, -16)
	p.asm.StpPreD(arm64.V12, arm64.V13, arm64.RSP, -16)
	p.asm.StpPreD(arm64.V14, arm64.V15, arm64.RSP, -16)
}

// slotOffset emits a `sub sp, sp, #grewBy` the first time a
// spill slot deeper than any seen so far is touched, matching the
// lazy allocation scheme of original_source/fidget/src/asm/dynasm.rs.
func (p *pointBuilderARM64) slotOffset(s tape.Slot) uint32 {
	off, grewBy := p.stack.offsetFor(s)
	if grewBy != 0 {
		p.asm.SubSPImm(grewBy)
	}
	checkSpillOffset(off, maxScalarSpillOffset)
	return off
}

func (p *pointBuilderARM64) buildLoad(dst tape.Reg, slot tape.Slot) {
	validateReg(dst)
	p.asm.LdrS(p.reg(dst), arm64.RSP, p.slotOffset(slot))
}

func (p *pointBuilderARM64) buildStore(slot tape.Slot, src tape.Reg) {
	validateReg(src)
	p.asm.StrS(p.reg(src), arm64.RSP, p.slotOffset(slot))
}

// buildInput copies one of the three incoming arguments (s0/s1/s2) into
// dst. The function ABI fixes x=s0, y=s1, z=s2 (spec.md §6).
func (p *pointBuilderARM64) buildInput(dst tape.Reg, axis uint8) {
	p.asm.FmovReg(p.reg(dst), arm64.Reg(axis))
}

func (p *pointBuilderARM64) buildCopy(dst, src tape.Reg)   { p.asm.FmovReg(p.reg(dst), p.reg(src)) }
func (p *pointBuilderARM64) buildNeg(dst, src tape.Reg)    { p.asm.FnegReg(p.reg(dst), p.reg(src)) }
func (p *pointBuilderARM64) buildAbs(dst, src tape.Reg)    { p.asm.FabsReg(p.reg(dst), p.reg(src)) }
func (p *pointBuilderARM64) buildSqrt(dst, src tape.Reg)   { p.asm.FsqrtReg(p.reg(dst), p.reg(src)) }
func (p *pointBuilderARM64) buildSquare(dst, src tape.Reg) { p.asm.FmulReg(p.reg(dst), p.reg(src), p.reg(src)) }

// buildRecip computes 1/src via the immediate register as a scratch
// numerator, reusing the physical slot load_imm targets since no two
// tape instructions execute concurrently.
func (p *pointBuilderARM64) buildRecip(dst, src tape.Reg) {
	p.asm.FmovImm(arm64.Reg(immReg), 0x70) // 1.0
	p.asm.FdivReg(p.reg(dst), arm64.Reg(immReg), p.reg(src))
}

func (p *pointBuilderARM64) buildAdd(dst, lhs, rhs tape.Reg) {
	p.asm.FaddReg(p.reg(dst), p.reg(lhs), p.reg(rhs))
}
func (p *pointBuilderARM64) buildSub(dst, lhs, rhs tape.Reg) {
	p.asm.FsubReg(p.reg(dst), p.reg(lhs), p.reg(rhs))
}
func (p *pointBuilderARM64) buildMul(dst, lhs, rhs tape.Reg) {
	p.asm.FmulReg(p.reg(dst), p.reg(lhs), p.reg(rhs))
}

// buildMax and buildMin implement the three-way state machine of
// spec.md §4.3 (lhs<rhs / lhs>rhs / unordered-or-equal), collapsing
// NaNs toward the defined operand instead of propagating them the way
// a bare FMAX/FMIN instruction would. The point flavor exposes no
// choice pointer in its ABI (spec.md §6, §4.6), so unlike the interval
// flavor this selection is not traced — see DESIGN.md's Open Question
// resolution.
func (p *pointBuilderARM64) buildMax(dst, lhs, rhs tape.Reg) { p.minMax(dst, lhs, rhs, true) }
func (p *pointBuilderARM64) buildMin(dst, lhs, rhs tape.Reg) { p.minMax(dst, lhs, rhs, false) }

func (p *pointBuilderARM64) minMax(dst, lhs, rhs tape.Reg, isMax bool) {
	l, r := p.reg(lhs), p.reg(rhs)
	p.asm.Fcmp(l, r)

	// lhs < rhs: max picks rhs, min picks lhs.
	ltBranchPos := p.asm.Len()
	p.asm.BCond(arm64.CondMI, 0)
	// lhs > rhs: max picks lhs, min picks rhs.
	gtBranchPos := p.asm.Len()
	p.asm.BCond(arm64.CondGT, 0)

	// Fallthrough: equal or unordered (NaN present). A NaN operand is
	// dropped in favor of the other one (lhs NaN picks rhs, rhs NaN
	// picks lhs), so only equal, ordered operands reach the native
	// FMAX/FMIN, which would otherwise propagate the NaN.
	p.asm.Fcmp(l, l)
	lhsNaNPos := p.asm.Len()
	p.asm.BCond(arm64.CondVS, 0)
	p.asm.Fcmp(r, r)
	rhsNaNPos := p.asm.Len()
	p.asm.BCond(arm64.CondVS, 0)
	if isMax {
		p.asm.FmaxReg(p.reg(dst), l, r)
	} else {
		p.asm.FminReg(p.reg(dst), l, r)
	}
	endBranchPos := p.asm.Len()
	p.asm.B(0)

	ltTarget := p.asm.Len()

	pickRHS := func() { p.asm.FmovReg(p.reg(dst), r) }
	pickLHS := func() { p.asm.FmovReg(p.reg(dst), l) }

	if isMax {
		pickRHS() // lhs < rhs: rhs is the larger operand.
	} else {
		pickLHS()
	}
	endBranch2Pos := p.asm.Len()
	p.asm.B(0)

	gtTarget := p.asm.Len()
	if isMax {
		pickLHS() // lhs > rhs: lhs is the larger operand.
	} else {
		pickRHS()
	}
	finalPos := p.asm.Len()

	pickRHSTarget, pickLHSTarget := gtTarget, ltTarget
	if isMax {
		pickRHSTarget, pickLHSTarget = ltTarget, gtTarget
	}
	p.asm.PatchAt(lhsNaNPos, arm64.BCondWord(arm64.CondVS, int32(pickRHSTarget-lhsNaNPos)))
	p.asm.PatchAt(rhsNaNPos, arm64.BCondWord(arm64.CondVS, int32(pickLHSTarget-rhsNaNPos)))
	p.asm.PatchAt(ltBranchPos, arm64.BCondWord(arm64.CondMI, int32(ltTarget-ltBranchPos)))
	p.asm.PatchAt(gtBranchPos, arm64.BCondWord(arm64.CondGT, int32(gtTarget-gtBranchPos)))
	p.asm.PatchAt(endBranchPos, arm64.BWord(int32(finalPos-endBranchPos)))
	p.asm.PatchAt(endBranch2Pos, arm64.BWord(int32(finalPos-endBranch2Pos)))
}

func (p *pointBuilderARM64) loadImm(imm float32) tape.Reg {
	bits := math.Float32bits(imm)
	p.asm.LoadImm32(scratchGPR, bits)
	p.asm.FmovWToS(arm64.Reg(immReg), scratchGPR)
	return immRegVirtual
}

// finalize moves result — the tape's final value, wherever the
// planner left it — into s0, tears down the callee-saved frame, and
// returns.
func (p *pointBuilderARM64) finalize(result tape.Reg) ([]byte, error) {
	p.asm.FmovReg(arm64.V0, p.reg(result))
	if growth := p.stack.totalGrowth(); growth != 0 {
		p.asm.AddSPImm(growth)
	}
	p.asm.LdpPostD(arm64.V14, arm64.V15, arm64.RSP, 16)
	p.asm.LdpPostD(arm64.V12, arm64.V13, arm64.RSP, 16)
	p.asm.LdpPostD(arm64.V10, arm64.V11, arm64.RSP, 16)
	p.asm.LdpPostD(arm64.V8, arm64.V9, arm64.RSP, 16)
	p.asm.LdpPost64(arm64.R29, arm64.R30, arm64.RSP, 16)
	p.asm.Ret(arm64.R30)
	return p.asm.Bytes(), nil
}
