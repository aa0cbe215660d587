package compiler

import (
	"math"

	"github.com/rsaccon/fidget/internal/asm/arm64"
	"github.com/rsaccon/fidget/tape"
)

// vectorOne is the bit pattern of 1.0f, used both as recip's numerator
// and as the dead-register prefill value (spec.md §4.4).
const vectorOne uint32 = 0x3F800000

// vectorBuilderARM64 lowers a tape to the AArch64 4-lane vector
// flavor: four independent scalar evaluations packed into one SIMD
// register per virtual register, per SPEC_FULL.md §5.4/spec.md §4.4.
type vectorBuilderARM64 struct {
	asm   arm64.Assembler
	stack stackMath
}

func (v *vectorBuilderARM64) reg(r tape.Reg) arm64.Reg { return arm64.Reg(physReg(r)) }

// ptrReg maps an Input axis (0/1/2 for x/y/z) to the incoming pointer
// argument register (x0/x1/x2); the fourth argument, x3, is the output
// pointer (spec.md §6).
func ptrReg(axis uint8) arm64.Reg { return arm64.Reg(uint8(arm64.R0) + axis) }

func (v *vectorBuilderARM64) init(initialSlotCount int) {
	v.stack = stackMath{elemSize: 16}
	v.asm.StpPre64(arm64.R29, arm64.R30, arm64.RSP, -16)
	v.asm.MovFromSP(arm64.R29)
	v.asm.StpPreD(arm64.V8, arm64.V9, arm64.RSP, -16)
	v.asm.StpPreD(arm64.V10, arm64.V11, arm64.RSP, -16)
	v.asm.StpPreD(arm64.V12, arm64.V13, arm64.RSP, -16)
	v.asm.StpPreD(arm64.V14, arm64.V15, arm64.RSP, -16)

	// Pre-fill every usable register with [1.0, 1.0, 1.0, 1.0] so a
	// dead register or a trailing lane in a partial chunk never
	// carries an uninitialized value into a later read (spec.md §4.4).
	v.asm.LoadImm32(scratchGPR, vectorOne)
	for r := uint8(arm64.V8); r <= uint8(arm64.V31); r++ {
		v.asm.Dup(arm64.Arrangement4S, arm64.Reg(r), scratchGPR)
	}
}

func (v *vectorBuilderARM64) slotOffset(s tape.Slot) uint32 {
	off, grewBy := v.stack.offsetFor(s)
	if grewBy != 0 {
		v.asm.SubSPImm(grewBy)
	}
	// The Q-form unsigned-immediate load/store's imm12*16 reach
	// (up to 65520 bytes) comfortably covers maxVectorSpillOffset, so
	// unlike original_source/fidget/src/asm/dynasm.rs's paired-D-load
	// fallback for a narrower reach, a single LdrQ/StrQ always
	// suffices here.
	checkSpillOffset(off, maxVectorSpillOffset)
	return off
}

func (v *vectorBuilderARM64) buildLoad(dst tape.Reg, slot tape.Slot) {
	validateReg(dst)
	v.asm.LdrQ(v.reg(dst), arm64.RSP, v.slotOffset(slot))
}

func (v *vectorBuilderARM64) buildStore(slot tape.Slot, src tape.Reg) {
	validateReg(src)
	v.asm.StrQ(v.reg(src), arm64.RSP, v.slotOffset(slot))
}

func (v *vectorBuilderARM64) buildInput(dst tape.Reg, axis uint8) {
	v.asm.LdrQ(v.reg(dst), ptrReg(axis), 0)
}

func (v *vectorBuilderARM64) buildCopy(dst, src tape.Reg) {
	v.asm.MovVec(arm64.Arrangement4S, v.reg(dst), v.reg(src))
}
func (v *vectorBuilderARM64) buildNeg(dst, src tape.Reg) {
	v.asm.FnegVec(arm64.Arrangement4S, v.reg(dst), v.reg(src))
}
func (v *vectorBuilderARM64) buildAbs(dst, src tape.Reg) {
	v.asm.FabsVec(arm64.Arrangement4S, v.reg(dst), v.reg(src))
}
func (v *vectorBuilderARM64) buildSqrt(dst, src tape.Reg) {
	v.asm.FsqrtVec(arm64.Arrangement4S, v.reg(dst), v.reg(src))
}
func (v *vectorBuilderARM64) buildSquare(dst, src tape.Reg) {
	v.asm.FmulVec(arm64.Arrangement4S, v.reg(dst), v.reg(src), v.reg(src))
}

func (v *vectorBuilderARM64) buildRecip(dst, src tape.Reg) {
	imm := v.reg(immRegVirtual)
	v.asm.LoadImm32(scratchGPR, vectorOne)
	v.asm.Dup(arm64.Arrangement4S, imm, scratchGPR)
	v.asm.FdivVec(arm64.Arrangement4S, v.reg(dst), imm, v.reg(src))
}

func (v *vectorBuilderARM64) buildAdd(dst, lhs, rhs tape.Reg) {
	v.asm.FaddVec(arm64.Arrangement4S, v.reg(dst), v.reg(lhs), v.reg(rhs))
}
func (v *vectorBuilderARM64) buildSub(dst, lhs, rhs tape.Reg) {
	v.asm.FsubVec(arm64.Arrangement4S, v.reg(dst), v.reg(lhs), v.reg(rhs))
}
func (v *vectorBuilderARM64) buildMul(dst, lhs, rhs tape.Reg) {
	v.asm.FmulVec(arm64.Arrangement4S, v.reg(dst), v.reg(lhs), v.reg(rhs))
}

// buildMax/buildMin are lane-parallel with no per-opcode branching
// (spec.md §4.4): every lane independently computes its own max/min,
// so the vector flavor carries no choice trace at all (that is an
// interval-only concept, §1).
func (v *vectorBuilderARM64) buildMax(dst, lhs, rhs tape.Reg) {
	v.asm.FmaxVec(arm64.Arrangement4S, v.reg(dst), v.reg(lhs), v.reg(rhs))
}
func (v *vectorBuilderARM64) buildMin(dst, lhs, rhs tape.Reg) {
	v.asm.FminVec(arm64.Arrangement4S, v.reg(dst), v.reg(lhs), v.reg(rhs))
}

func (v *vectorBuilderARM64) loadImm(imm float32) tape.Reg {
	bits := math.Float32bits(imm)
	v.asm.LoadImm32(scratchGPR, bits)
	v.asm.Dup(arm64.Arrangement4S, v.reg(immRegVirtual), scratchGPR)
	return immRegVirtual
}

func (v *vectorBuilderARM64) finalize(result tape.Reg) ([]byte, error) {
	v.asm.StrQ(v.reg(result), arm64.R3, 0)
	if growth := v.stack.totalGrowth(); growth != 0 {
		v.asm.AddSPImm(growth)
	}
	v.asm.LdpPostD(arm64.V14, arm64.V15, arm64.RSP, 16)
	v.asm.LdpPostD(arm64.V12, arm64.V13, arm64.RSP, 16)
	v.asm.LdpPostD(arm64.V10, arm64.V11, arm64.RSP, 16)
	v.asm.LdpPostD(arm64.V8, arm64.V9, arm64.RSP, 16)
	v.asm.LdpPost64(arm64.R29, arm64.R30, arm64.RSP, 16)
	v.asm.Ret(arm64.R30)
	return v.asm.Bytes(), nil
}
