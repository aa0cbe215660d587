package compiler

import (
	"math"

	"github.com/rsaccon/fidget/internal/asm/arm64"
	"github.com/rsaccon/fidget/tape"
)

// quietNaNBits is the canonical quiet-NaN bit pattern used wherever an
// interval operator's domain is violated (e.g. recip spanning zero).
const quietNaNBits uint32 = 0x7FC00000

// scratchA/B/C are the three vector registers free for intermediate
// results: V0-V2 hold the live x/y/z interval pairs (read by every
// buildInput for the rest of the tape and therefore never clobbered),
// V6 is the immediate register, V8-V31 are the planner's allocatable
// range. That leaves V3-V5 as always-available scratch.
const (
	scratchA arm64.Reg = arm64.V3
	scratchB arm64.Reg = arm64.V4
	scratchC arm64.Reg = arm64.V5
)

// intervalBuilderARM64 lowers a tape to the AArch64 2-lane interval
// flavor (spec.md §4.5, SPEC_FULL.md §5.5): each virtual register holds
// [lower, upper], and every min/max additionally traces a choice byte
// through the pointer argument in x0.
type intervalBuilderARM64 struct {
	asm   arm64.Assembler
	stack stackMath
}

func (iv *intervalBuilderARM64) reg(r tape.Reg) arm64.Reg { return arm64.Reg(physReg(r)) }

func (iv *intervalBuilderARM64) init(initialSlotCount int) {
	iv.stack = stackMath{elemSize: 8}
	iv.asm.StpPre64(arm64.R29, arm64.R30, arm64.RSP, -16)
	iv.asm.MovFromSP(arm64.R29)
	iv.asm.StpPreD(arm64.V8, arm64.V9, arm64.RSP, -16)
	iv.asm.StpPreD(arm64.V10, arm64.V11, arm64.RSP, -16)
	iv.asm.StpPreD(arm64.V12, arm64.V13, arm64.RSP, -16)
	iv.asm.StpPreD(arm64.V14, arm64.V15, arm64.RSP, -16)

	// Repack the six incoming scalars (s0..s5) into three 2-lane
	// pairs v0=[x.lo,x.hi], v1=[y.lo,y.hi], v2=[z.lo,z.hi], per the
	// ABI note in spec.md §6. x0 (the choices pointer) is untouched.
	iv.asm.InsElementS(arm64.V0, arm64.V1, 1, 0)
	iv.asm.InsElementS(arm64.V1, arm64.V2, 0, 0)
	iv.asm.InsElementS(arm64.V1, arm64.V3, 1, 0)
	iv.asm.InsElementS(arm64.V2, arm64.V4, 0, 0)
	iv.asm.InsElementS(arm64.V2, arm64.V5, 1, 0)
}

func (iv *intervalBuilderARM64) slotOffset(s tape.Slot) uint32 {
	off, grewBy := iv.stack.offsetFor(s)
	if grewBy != 0 {
		iv.asm.SubSPImm(grewBy)
	}
	checkSpillOffset(off, maxDoubleSpillOffset)
	return off
}

func (iv *intervalBuilderARM64) buildLoad(dst tape.Reg, slot tape.Slot) {
	validateReg(dst)
	iv.asm.LdrD(iv.reg(dst), arm64.RSP, iv.slotOffset(slot))
}

func (iv *intervalBuilderARM64) buildStore(slot tape.Slot, src tape.Reg) {
	validateReg(src)
	iv.asm.StrD(iv.reg(src), arm64.RSP, iv.slotOffset(slot))
}

// buildInput copies one of the three repacked argument pairs (v0/v1/v2
// for x/y/z) into dst.
func (iv *intervalBuilderARM64) buildInput(dst tape.Reg, axis uint8) {
	iv.asm.MovVec(arm64.Arrangement2S, iv.reg(dst), arm64.Reg(axis))
}

func (iv *intervalBuilderARM64) buildCopy(dst, src tape.Reg) {
	iv.asm.MovVec(arm64.Arrangement2S, iv.reg(dst), iv.reg(src))
}

// swapLanes reverses the [lo,hi] order of src into dst, used both as
// the final step of neg and as the lane-extraction trick that lets a
// single scalar Fcmp0/Fcmp read the upper lane.
func (iv *intervalBuilderARM64) swapLanes(dst, src arm64.Reg) { iv.asm.Ext(dst, src, src, 4) }

// zeroVec materializes [0,0] into dst via the scratch GPR; no FmovImm
// imm8 value encodes 0.0f (imm8=0 is 2.0f), so an all-zero register has
// to come from an actual zero bit pattern rather than that immediate form.
func (iv *intervalBuilderARM64) zeroVec(dst arm64.Reg) {
	iv.asm.LoadImm32(scratchGPR, 0)
	iv.asm.Dup(arm64.Arrangement2S, dst, scratchGPR)
}

func (iv *intervalBuilderARM64) buildNeg(dst, src tape.Reg) {
	d, s := iv.reg(dst), iv.reg(src)
	iv.asm.FnegVec(arm64.Arrangement2S, d, s) // [-lo,-hi]
	iv.swapLanes(d, d)                        // [-hi,-lo]
}

// buildAbs implements spec.md §4.5's three-way case split on the sign
// of the endpoints, using Fcmp0 against the scalar view of each lane
// (the lower lane is already the register's S view; the upper lane is
// read after a swapLanes into scratch).
func (iv *intervalBuilderARM64) buildAbs(dst, src tape.Reg) {
	d, s := iv.reg(dst), iv.reg(src)
	tmp := scratchA

	iv.swapLanes(tmp, s) // tmp.S0 = aH
	iv.asm.Fcmp0(tmp)
	negPos := iv.asm.Len()
	iv.asm.BCond(arm64.CondMI, 0) // aH < 0

	iv.asm.Fcmp0(s) // s.S0 = aL
	straddlePos := iv.asm.Len()
	iv.asm.BCond(arm64.CondMI, 0) // aL < 0, straddles zero

	// Else: entirely non-negative, identity.
	iv.asm.MovVec(arm64.Arrangement2S, d, s)
	end1 := iv.asm.Len()
	iv.asm.B(0)

	negTarget := iv.asm.Len()
	iv.asm.FnegVec(arm64.Arrangement2S, d, s)
	iv.swapLanes(d, d)
	end2 := iv.asm.Len()
	iv.asm.B(0)

	straddleTarget := iv.asm.Len()
	// [0, max(|aL|,|aH|)].
	iv.asm.FabsVec(arm64.Arrangement2S, tmp, s) // tmp = [|aL|,|aH|]
	iv.swapLanes(scratchB, tmp)
	iv.asm.FmaxVec(arm64.Arrangement2S, tmp, tmp, scratchB) // tmp = [max,max]
	iv.zeroVec(d)                                           // d = [0,0]
	iv.asm.InsElementS(d, tmp, 1, 0)                        // d = [0, max]
	finalPos := iv.asm.Len()

	iv.asm.PatchAt(negPos, arm64.BCondWord(arm64.CondMI, int32(negTarget-negPos)))
	iv.asm.PatchAt(straddlePos, arm64.BCondWord(arm64.CondMI, int32(straddleTarget-straddlePos)))
	iv.asm.PatchAt(end1, arm64.BWord(int32(finalPos-end1)))
	iv.asm.PatchAt(end2, arm64.BWord(int32(finalPos-end2)))
}

// buildRecip: strictly positive or strictly negative intervals invert
// and swap; any interval containing zero produces [NaN, NaN].
func (iv *intervalBuilderARM64) buildRecip(dst, src tape.Reg) {
	d, s := iv.reg(dst), iv.reg(src)
	tmp := scratchA

	iv.asm.Fcmp0(s) // s.S0 = aL
	posPos := iv.asm.Len()
	iv.asm.BCond(arm64.CondGT, 0) // aL > 0: strictly positive

	iv.swapLanes(tmp, s) // tmp.S0 = aH
	iv.asm.Fcmp0(tmp)
	negPos := iv.asm.Len()
	iv.asm.BCond(arm64.CondMI, 0) // aH < 0: strictly negative

	// Straddles zero: NaN.
	iv.asm.LoadImm32(scratchGPR, quietNaNBits)
	iv.asm.Dup(arm64.Arrangement2S, d, scratchGPR)
	endPos := iv.asm.Len()
	iv.asm.B(0)

	sharedTarget := iv.asm.Len()
	iv.asm.LoadImm32(scratchGPR, vectorOne)
	iv.asm.Dup(arm64.Arrangement2S, tmp, scratchGPR)
	iv.asm.FdivVec(arm64.Arrangement2S, d, tmp, s) // [1/aL, 1/aH]
	iv.swapLanes(d, d)                             // [1/aH, 1/aL]
	finalPos := iv.asm.Len()

	iv.asm.PatchAt(posPos, arm64.BCondWord(arm64.CondGT, int32(sharedTarget-posPos)))
	iv.asm.PatchAt(negPos, arm64.BCondWord(arm64.CondMI, int32(sharedTarget-negPos)))
	iv.asm.PatchAt(endPos, arm64.BWord(int32(finalPos-endPos)))
}

func (iv *intervalBuilderARM64) buildSqrt(dst, src tape.Reg) {
	d, s := iv.reg(dst), iv.reg(src)
	tmp := scratchA

	iv.swapLanes(tmp, s) // tmp.S0 = aH
	iv.asm.Fcmp0(tmp)
	allNaNPos := iv.asm.Len()
	iv.asm.BCond(arm64.CondMI, 0) // aH < 0: domain error

	iv.asm.Fcmp0(s) // s.S0 = aL
	halfPos := iv.asm.Len()
	iv.asm.BCond(arm64.CondMI, 0) // aL < 0: lower clamps to 0

	iv.asm.FsqrtVec(arm64.Arrangement2S, d, s) // [sqrt(aL), sqrt(aH)]
	end1 := iv.asm.Len()
	iv.asm.B(0)

	allNaNTarget := iv.asm.Len()
	iv.asm.LoadImm32(scratchGPR, quietNaNBits)
	iv.asm.Dup(arm64.Arrangement2S, d, scratchGPR)
	end2 := iv.asm.Len()
	iv.asm.B(0)

	halfTarget := iv.asm.Len()
	iv.asm.FsqrtVec(arm64.Arrangement2S, tmp, s) // tmp.lane1 = sqrt(aH) (lane0 may be NaN, discarded)
	iv.zeroVec(d)                                // d = [0,0]
	iv.asm.InsElementS(d, tmp, 1, 1)              // d = [0, sqrt(aH)]
	finalPos := iv.asm.Len()

	iv.asm.PatchAt(allNaNPos, arm64.BCondWord(arm64.CondMI, int32(allNaNTarget-allNaNPos)))
	iv.asm.PatchAt(halfPos, arm64.BCondWord(arm64.CondMI, int32(halfTarget-halfPos)))
	iv.asm.PatchAt(end1, arm64.BWord(int32(finalPos-end1)))
	iv.asm.PatchAt(end2, arm64.BWord(int32(finalPos-end2)))
}

func (iv *intervalBuilderARM64) buildSquare(dst, src tape.Reg) {
	d, s := iv.reg(dst), iv.reg(src)
	tmp := scratchA

	iv.swapLanes(tmp, s) // tmp.S0 = aH
	iv.asm.Fcmp0(tmp)
	negPos := iv.asm.Len()
	iv.asm.BCond(arm64.CondLE, 0) // aH <= 0: entirely non-positive

	iv.asm.Fcmp0(s) // s.S0 = aL
	straddlePos := iv.asm.Len()
	iv.asm.BCond(arm64.CondLE, 0) // aL <= 0: straddles zero

	// Else: entirely positive, [aL^2, aH^2].
	iv.asm.FmulVec(arm64.Arrangement2S, d, s, s)
	end1 := iv.asm.Len()
	iv.asm.B(0)

	negTarget := iv.asm.Len()
	iv.asm.FmulVec(arm64.Arrangement2S, d, s, s) // [aL^2, aH^2]
	iv.swapLanes(d, d)                           // [aH^2, aL^2]
	end2 := iv.asm.Len()
	iv.asm.B(0)

	straddleTarget := iv.asm.Len()
	iv.asm.FmulVec(arm64.Arrangement2S, tmp, s, s) // tmp = [aL^2, aH^2]
	iv.swapLanes(scratchB, tmp)
	iv.asm.FmaxVec(arm64.Arrangement2S, tmp, tmp, scratchB) // tmp = [max,max]
	iv.zeroVec(d)
	iv.asm.InsElementS(d, tmp, 1, 0) // d = [0, max]
	finalPos := iv.asm.Len()

	iv.asm.PatchAt(negPos, arm64.BCondWord(arm64.CondLE, int32(negTarget-negPos)))
	iv.asm.PatchAt(straddlePos, arm64.BCondWord(arm64.CondLE, int32(straddleTarget-straddlePos)))
	iv.asm.PatchAt(end1, arm64.BWord(int32(finalPos-end1)))
	iv.asm.PatchAt(end2, arm64.BWord(int32(finalPos-end2)))
}

func (iv *intervalBuilderARM64) buildAdd(dst, lhs, rhs tape.Reg) {
	iv.asm.FaddVec(arm64.Arrangement2S, iv.reg(dst), iv.reg(lhs), iv.reg(rhs))
}

// buildSub reverses rhs's lanes before a componentwise subtract, per
// spec.md §4.5: a - b = [aL-bH, aH-bL].
func (iv *intervalBuilderARM64) buildSub(dst, lhs, rhs tape.Reg) {
	d, l, r := iv.reg(dst), iv.reg(lhs), iv.reg(rhs)
	tmp := scratchA
	iv.swapLanes(tmp, r)
	iv.asm.FsubVec(arm64.Arrangement2S, d, l, tmp)
}

// buildMul forms the four endpoint products and reduces them to
// [min, max] via two lane-swap-and-combine passes, per spec.md §4.5.
func (iv *intervalBuilderARM64) buildMul(dst, lhs, rhs tape.Reg) {
	d, a, b := iv.reg(dst), iv.reg(lhs), iv.reg(rhs)
	p1, p2, bSwap := scratchA, scratchB, scratchC

	iv.swapLanes(bSwap, b)                         // bSwap = [bH,bL]
	iv.asm.FmulVec(arm64.Arrangement2S, p1, a, b)   // p1 = [aL*bL, aH*bH]
	iv.asm.FmulVec(arm64.Arrangement2S, p2, a, bSwap) // p2 = [aL*bH, aH*bL]

	// Global max of {p1.lo, p1.hi, p2.lo, p2.hi}, using d as a scratch
	// slot until the very last step (its own operand reads are all
	// behind us by this point).
	m1 := bSwap // bSwap's value is no longer needed.
	iv.asm.FmaxVec(arm64.Arrangement2S, m1, p1, p2)
	iv.swapLanes(d, m1)
	hi := m1
	iv.asm.FmaxVec(arm64.Arrangement2S, hi, m1, d)

	n1 := d
	iv.asm.FminVec(arm64.Arrangement2S, n1, p1, p2)
	n1s := p1 // p1 no longer needed.
	iv.swapLanes(n1s, n1)
	lo := p2 // p2 no longer needed.
	iv.asm.FminVec(arm64.Arrangement2S, lo, n1, n1s)

	iv.asm.MovVec(arm64.Arrangement2S, d, lo)
	iv.asm.InsElementS(d, hi, 1, 1)
}

// buildMax/buildMin implement the interval state machine of spec.md
// §4.5: two scalar compares decide whether one side wholly dominates,
// falling through to a lane-parallel fmax/fmin otherwise. Every path
// traces a choice byte through x0.
func (iv *intervalBuilderARM64) buildMax(dst, lhs, rhs tape.Reg) { iv.minMax(dst, lhs, rhs, true) }
func (iv *intervalBuilderARM64) buildMin(dst, lhs, rhs tape.Reg) { iv.minMax(dst, lhs, rhs, false) }

func (iv *intervalBuilderARM64) minMax(dst, lhs, rhs tape.Reg, isMax bool) {
	d, a, b := iv.reg(dst), iv.reg(lhs), iv.reg(rhs)
	bSwap, aSwap := scratchA, scratchB

	iv.swapLanes(bSwap, b) // bSwap.S0 = bH
	iv.asm.Fcmp(a, bSwap)  // aL vs bH
	leftPos := iv.asm.Len()
	iv.asm.BCond(arm64.CondGT, 0) // aL > bH: a wholly dominates

	iv.swapLanes(aSwap, a) // aSwap.S0 = aH
	iv.asm.Fcmp(b, aSwap)  // bL vs aH
	rightPos := iv.asm.Len()
	iv.asm.BCond(arm64.CondGT, 0) // bL > aH: b wholly dominates

	// Neither dominates: Both.
	if isMax {
		iv.asm.FmaxVec(arm64.Arrangement2S, d, a, b)
	} else {
		iv.asm.FminVec(arm64.Arrangement2S, d, a, b)
	}
	iv.emitChoice(tape.Both)
	end1 := iv.asm.Len()
	iv.asm.B(0)

	leftTarget := iv.asm.Len()
	if isMax {
		iv.asm.MovVec(arm64.Arrangement2S, d, a)
		iv.emitChoice(tape.Left)
	} else {
		iv.asm.MovVec(arm64.Arrangement2S, d, b)
		iv.emitChoice(tape.Right)
	}
	end2 := iv.asm.Len()
	iv.asm.B(0)

	rightTarget := iv.asm.Len()
	if isMax {
		iv.asm.MovVec(arm64.Arrangement2S, d, b)
		iv.emitChoice(tape.Right)
	} else {
		iv.asm.MovVec(arm64.Arrangement2S, d, a)
		iv.emitChoice(tape.Left)
	}
	finalPos := iv.asm.Len()

	iv.asm.PatchAt(leftPos, arm64.BCondWord(arm64.CondGT, int32(leftTarget-leftPos)))
	iv.asm.PatchAt(rightPos, arm64.BCondWord(arm64.CondGT, int32(rightTarget-rightPos)))
	iv.asm.PatchAt(end1, arm64.BWord(int32(finalPos-end1)))
	iv.asm.PatchAt(end2, arm64.BWord(int32(finalPos-end2)))
}

// emitChoice stores c through the choices pointer (x0) and
// post-increments it by one byte, in a single instruction.
func (iv *intervalBuilderARM64) emitChoice(c tape.Choice) {
	iv.asm.MovzW(scratchGPR, uint16(c), 0)
	iv.asm.StrbPostIndex(scratchGPR, arm64.R0, 1)
}

func (iv *intervalBuilderARM64) loadImm(imm float32) tape.Reg {
	bits := math.Float32bits(imm)
	iv.asm.LoadImm32(scratchGPR, bits)
	iv.asm.Dup(arm64.Arrangement2S, iv.reg(immRegVirtual), scratchGPR)
	return immRegVirtual
}

// finalize splits the result register's two lanes back into s0/s1 (the
// AAPCS64 homogeneous-aggregate return convention for [f32;2]), tears
// down the frame, and returns.
func (iv *intervalBuilderARM64) finalize(result tape.Reg) ([]byte, error) {
	r := iv.reg(result)
	iv.asm.FmovReg(arm64.V0, r)
	iv.swapLanes(arm64.V1, r)

	if growth := iv.stack.totalGrowth(); growth != 0 {
		iv.asm.AddSPImm(growth)
	}
	iv.asm.LdpPostD(arm64.V14, arm64.V15, arm64.RSP, 16)
	iv.asm.LdpPostD(arm64.V12, arm64.V13, arm64.RSP, 16)
	iv.asm.LdpPostD(arm64.V10, arm64.V11, arm64.RSP, 16)
	iv.asm.LdpPostD(arm64.V8, arm64.V9, arm64.RSP, 16)
	iv.asm.LdpPost64(arm64.R29, arm64.R30, arm64.RSP, 16)
	iv.asm.Ret(arm64.R30)
	return iv.asm.Bytes(), nil
}
