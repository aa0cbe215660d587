package arm64

import "encoding/binary"

// Assembler accumulates AArch64 instruction words into a little-endian
// byte stream. It has no notion of virtual registers or spill slots;
// those are the concern of internal/compiler, which calls into this
// package one real instruction at a time, mirroring the split between
// internal/asm/arm64 (encoding) and internal/engine/compiler (the
// flavor builders that decide which encoding to call) in the teacher.
type Assembler struct {
	buf []byte
}

// Len returns the number of bytes emitted so far.
func (a *Assembler) Len() int { return len(a.buf) }

// Bytes returns the accumulated machine code.
func (a *Assembler) Bytes() []byte { return a.buf }

func (a *Assembler) emit(word uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], word)
	a.buf = append(a.buf, b[:]...)
}

// PatchAt overwrites the instruction word at byte offset pos, used by
// the min/max state machines to back-patch a forward branch once the
// target address is known.
func (a *Assembler) PatchAt(pos int, word uint32) {
	binary.LittleEndian.PutUint32(a.buf[pos:pos+4], word)
}

// ---- prologue/epilogue plumbing ----

// Ret emits RET, branching to Rn (defaults to the link register R30).
func (a *Assembler) Ret(rn Reg) { a.emit(0xD65F0000 | uint32(rn)<<5) }

// stpLdp encodes the pre/post/signed-offset pair load-store family
// shared by GPR pairs (opcBits=0b10, simd=false) and SIMD&FP pairs
// (simd=true, opcBits selects element size: 0b00=S, 0b01=D, 0b10=Q).
func stpLdp(opcBits, encoding, load uint32, simd bool, rt2, rn, rt Reg, imm7 int32) uint32 {
	v := uint32(0)
	if simd {
		v = 1
	}
	word := (opcBits << 30) | (0b101 << 27) | (v << 26) | (encoding << 23) | (load << 22)
	word |= uint32(imm7&0x7F) << 15
	word |= uint32(rt2) << 10
	word |= uint32(rn) << 5
	word |= uint32(rt)
	return word
}

// StpPre64 emits `stp Xt, Xt2, [Xn, #imm]!` (imm a multiple of 8).
func (a *Assembler) StpPre64(rt, rt2, rn Reg, imm int32) {
	a.emit(stpLdp(0b10, 0b011, 0, false, rt2, rn, rt, imm/8))
}

// LdpPost64 emits `ldp Xt, Xt2, [Xn], #imm`.
func (a *Assembler) LdpPost64(rt, rt2, rn Reg, imm int32) {
	a.emit(stpLdp(0b10, 0b001, 1, false, rt2, rn, rt, imm/8))
}

// StpPreD emits `stp Dt, Dt2, [Xn, #imm]!` (callee-saved FP pair save).
func (a *Assembler) StpPreD(rt, rt2, rn Reg, imm int32) {
	a.emit(stpLdp(0b01, 0b011, 0, true, rt2, rn, rt, imm/8))
}

// LdpPostD emits `ldp Dt, Dt2, [Xn], #imm`.
func (a *Assembler) LdpPostD(rt, rt2, rn Reg, imm int32) {
	a.emit(stpLdp(0b01, 0b001, 1, true, rt2, rn, rt, imm/8))
}

// ---- stack pointer arithmetic ----

func addSubImm(sf, op uint32, rd, rn Reg, imm12 uint32) uint32 {
	return (sf << 31) | (op << 30) | (0b100010 << 23) | ((imm12 & 0xFFF) << 10) | uint32(rn)<<5 | uint32(rd)
}

// SubSPImm emits `sub sp, sp, #imm` (64-bit).
func (a *Assembler) SubSPImm(imm uint32) { a.emit(addSubImm(1, 1, RSP, RSP, imm)) }

// AddSPImm emits `add sp, sp, #imm` (64-bit).
func (a *Assembler) AddSPImm(imm uint32) { a.emit(addSubImm(1, 0, RSP, RSP, imm)) }

// AddImm64 emits `add Xd, Xn, #imm` (64-bit).
func (a *Assembler) AddImm64(rd, rn Reg, imm uint32) { a.emit(addSubImm(1, 0, rd, rn, imm)) }

// MovFromSP emits `mov Xd, sp` (the `add Xd, sp, #0` alias).
func (a *Assembler) MovFromSP(rd Reg) { a.AddImm64(rd, RSP, 0) }

// ---- immediate materialization ----

func movWide(sf, opc, hw uint32, rd Reg, imm16 uint16) uint32 {
	return (sf << 31) | (opc << 29) | (0b100101 << 23) | (hw << 21) | uint32(imm16)<<5 | uint32(rd)
}

// MovzW emits `movz Wd, #imm16, lsl #(16*hw)`.
func (a *Assembler) MovzW(rd Reg, imm16 uint16, hw uint32) { a.emit(movWide(0, 0b10, hw, rd, imm16)) }

// MovkW emits `movk Wd, #imm16, lsl #(16*hw)`.
func (a *Assembler) MovkW(rd Reg, imm16 uint16, hw uint32) { a.emit(movWide(0, 0b11, hw, rd, imm16)) }

// LoadImm32 materializes an arbitrary 32-bit pattern (the bits of an
// f32 constant) into general register rd via movz+movk, the standard
// two-instruction sequence for a 32-bit immediate that doesn't fit a
// single wide-immediate move.
func (a *Assembler) LoadImm32(rd Reg, bits uint32) {
	a.MovzW(rd, uint16(bits), 0)
	if hi := uint16(bits >> 16); hi != 0 {
		a.MovkW(rd, hi, 1)
	}
}

// ---- scalar single-precision FP: 1-source (fmov/fneg/fabs/fsqrt) ----

const fp1SourceBase = 0x1E204000

func fp1Source(opcode uint32, rn, rd Reg) uint32 {
	return fp1SourceBase | opcode<<15 | uint32(rn)<<5 | uint32(rd)
}

func (a *Assembler) FmovReg(rd, rn Reg) { a.emit(fp1Source(0b000000, rn, rd)) }
func (a *Assembler) FabsReg(rd, rn Reg) { a.emit(fp1Source(0b000001, rn, rd)) }
func (a *Assembler) FnegReg(rd, rn Reg) { a.emit(fp1Source(0b000010, rn, rd)) }
func (a *Assembler) FsqrtReg(rd, rn Reg) { a.emit(fp1Source(0b000011, rn, rd)) }

// FmovImm emits `fmov Sd, #imm8`, the 8-bit VFP modified-immediate
// encoding (imm8=0x70 represents exactly 1.0f), used by recip's `1/x` to
// materialize the numerator without a GPR round trip.
func (a *Assembler) FmovImm(rd Reg, imm8 uint32) {
	a.emit(0x1E201000 | (imm8&0xFF)<<13 | uint32(rd))
}

// ---- GPR <-> scalar FP register moves ----

const fpGeneralBase = 0x1E200000

// FmovWToS emits `fmov Sd, Wn` (general-purpose to scalar FP).
func (a *Assembler) FmovWToS(rd Reg, rn Reg) {
	a.emit(fpGeneralBase | 0b111<<16 | uint32(rn)<<5 | uint32(rd))
}

// FmovSToW emits `fmov Wd, Sn` (scalar FP to general-purpose).
func (a *Assembler) FmovSToW(rd Reg, rn Reg) {
	a.emit(fpGeneralBase | 0b110<<16 | uint32(rn)<<5 | uint32(rd))
}

// ---- scalar single-precision FP: 2-source (add/sub/mul/div/max/min) ----

const fp2SourceBase = 0x1E200800

func fp2Source(opcode uint32, rn, rm, rd Reg) uint32 {
	return fp2SourceBase | opcode<<12 | uint32(rm)<<16 | uint32(rn)<<5 | uint32(rd)
}

func (a *Assembler) FaddReg(rd, rn, rm Reg) { a.emit(fp2Source(0b0010, rn, rm, rd)) }
func (a *Assembler) FsubReg(rd, rn, rm Reg) { a.emit(fp2Source(0b0011, rn, rm, rd)) }
func (a *Assembler) FmulReg(rd, rn, rm Reg) { a.emit(fp2Source(0b0000, rn, rm, rd)) }
func (a *Assembler) FdivReg(rd, rn, rm Reg) { a.emit(fp2Source(0b0001, rn, rm, rd)) }
func (a *Assembler) FmaxReg(rd, rn, rm Reg) { a.emit(fp2Source(0b0100, rn, rm, rd)) }
func (a *Assembler) FminReg(rd, rn, rm Reg) { a.emit(fp2Source(0b0101, rn, rm, rd)) }

// Fcmp emits `fcmp Sn, Sm`.
func (a *Assembler) Fcmp(rn, rm Reg) {
	a.emit(0x1E202000 | uint32(rm)<<16 | uint32(rn)<<5)
}

// Fcmp0 emits `fcmp Sn, #0.0`, the immediate-zero compare form used
// throughout the interval builder's endpoint-sign tests.
func (a *Assembler) Fcmp0(rn Reg) {
	a.emit(0x1E202008 | uint32(rn)<<5)
}

// ---- branches ----

// BCondWord returns the instruction word for `b.cond` at the given byte
// displacement, without appending it — used when the branch must be
// patched in after its target is known.
func BCondWord(cond Cond, offset int32) uint32 {
	imm19 := (offset / 4) & 0x7FFFF
	return 0x54000000 | uint32(imm19)<<5 | uint32(cond)
}

// BCond emits `b.cond`, where offset is the byte displacement from
// this instruction's own address to the target (must be 4-aligned).
func (a *Assembler) BCond(cond Cond, offset int32) { a.emit(BCondWord(cond, offset)) }

// BWord returns the instruction word for an unconditional branch at the
// given byte displacement, without appending it.
func BWord(offset int32) uint32 {
	imm26 := (offset / 4) & 0x3FFFFFF
	return 0x14000000 | uint32(imm26)
}

// B emits an unconditional branch with a byte displacement.
func (a *Assembler) B(offset int32) { a.emit(BWord(offset)) }

// ---- byte load/store (choice buffer) ----

func ldstImm9(size, opc, idx uint32, simd bool, rn, rt Reg, imm9 int32) uint32 {
	v := uint32(0)
	if simd {
		v = 1
	}
	return (size << 30) | (0b111 << 27) | (v << 26) | (opc << 22) | (uint32(imm9&0x1FF) << 12) | (idx << 10) | uint32(rn)<<5 | uint32(rt)
}

// StrbPostIndex emits `strb Wt, [Xn], #imm`.
func (a *Assembler) StrbPostIndex(rt, rn Reg, imm int32) {
	a.emit(ldstImm9(0b00, 0b00, 0b01, false, rn, rt, imm))
}

// ---- scalar load/store of spilled f32 values ----

func ldstUnsignedImm(size, opc uint32, simd bool, rn, rt Reg, imm12 uint32) uint32 {
	v := uint32(0)
	if simd {
		v = 1
	}
	return (size << 30) | (0b111 << 27) | (v << 26) | (0b01 << 24) | (opc << 22) | ((imm12 & 0xFFF) << 10) | uint32(rn)<<5 | uint32(rt)
}

// LdrS emits `ldr St, [Xn, #imm]` (imm a multiple of 4, unsigned offset).
func (a *Assembler) LdrS(rt, rn Reg, imm uint32) {
	a.emit(ldstUnsignedImm(0b10, 0b01, true, rn, rt, imm/4))
}

// StrS emits `str St, [Xn, #imm]`.
func (a *Assembler) StrS(rt, rn Reg, imm uint32) {
	a.emit(ldstUnsignedImm(0b10, 0b00, true, rn, rt, imm/4))
}

// LdrD/StrD load/store a 64-bit D register, used for 2-lane interval
// spill slots.
func (a *Assembler) LdrD(rt, rn Reg, imm uint32) {
	a.emit(ldstUnsignedImm(0b11, 0b01, true, rn, rt, imm/8))
}
func (a *Assembler) StrD(rt, rn Reg, imm uint32) {
	a.emit(ldstUnsignedImm(0b11, 0b00, true, rn, rt, imm/8))
}

// LdrQ/StrQ load/store a 128-bit Q register, used for 4-lane vector
// spill slots when the offset exceeds the pair-instruction's reach.
func (a *Assembler) LdrQ(rt, rn Reg, imm uint32) {
	a.emit(ldstUnsignedImm(0b00, 0b11, true, rn, rt, imm/16))
}
func (a *Assembler) StrQ(rt, rn Reg, imm uint32) {
	a.emit(ldstUnsignedImm(0b00, 0b10, true, rn, rt, imm/16))
}

// ---- SIMD vector arithmetic (2-lane / 4-lane single precision) ----

// threeSame encodes the Advanced SIMD "three same" floating-point
// family (fadd/fsub/fmul/fdiv/fmax/fmin), single-precision element
// size, at either .2S (arrangement Arrangement2S) or .4S width. The
// operation is selected by u (bit 29), a (bit 23) and the 5-bit opcode.
func threeSame(arr Arrangement, u, a uint32, opcode uint32, rn, rm, rd Reg) uint32 {
	return (arr.q() << 30) | (u << 29) | (0b01110 << 24) | (a << 23) | (0 << 22) /* sz=0: single precision */ | (1 << 21) | uint32(rm)<<16 | opcode<<11 | (1 << 10) | uint32(rn)<<5 | uint32(rd)
}

func (a *Assembler) FaddVec(arr Arrangement, rd, rn, rm Reg) { a.emit(threeSame(arr, 0, 0, 0b11010, rn, rm, rd)) }
func (a *Assembler) FsubVec(arr Arrangement, rd, rn, rm Reg) { a.emit(threeSame(arr, 0, 1, 0b11010, rn, rm, rd)) }
func (a *Assembler) FmulVec(arr Arrangement, rd, rn, rm Reg) { a.emit(threeSame(arr, 1, 0, 0b11011, rn, rm, rd)) }
func (a *Assembler) FdivVec(arr Arrangement, rd, rn, rm Reg) { a.emit(threeSame(arr, 1, 0, 0b11111, rn, rm, rd)) }
func (a *Assembler) FmaxVec(arr Arrangement, rd, rn, rm Reg) { a.emit(threeSame(arr, 0, 0, 0b11110, rn, rm, rd)) }
func (a *Assembler) FminVec(arr Arrangement, rd, rn, rm Reg) { a.emit(threeSame(arr, 0, 1, 0b11110, rn, rm, rd)) }

// twoSame encodes the Advanced SIMD "two register miscellaneous"
// floating-point family (fneg/fabs/fsqrt), single precision.
func twoSame(arr Arrangement, u uint32, opcode uint32, rn, rd Reg) uint32 {
	return (arr.q() << 30) | (u << 29) | (0b01110 << 24) | (1 << 23) | (1 << 21) | opcode<<12 | (0b10 << 10) | uint32(rn)<<5 | uint32(rd)
}

func (a *Assembler) FnegVec(arr Arrangement, rd, rn Reg)  { a.emit(twoSame(arr, 1, 0b01111, rn, rd)) }
func (a *Assembler) FabsVec(arr Arrangement, rd, rn Reg)  { a.emit(twoSame(arr, 0, 0b01111, rn, rd)) }
func (a *Assembler) FsqrtVec(arr Arrangement, rd, rn Reg) { a.emit(twoSame(arr, 1, 0b11111, rn, rd)) }

// OrrVec emits `orr Vd.<arr>, Vn.<arr>, Vm.<arr>` (bitwise, vector).
// MovVec (rn==rm) is its `mov Vd.16B, Vn.16B` alias, the vector-width
// register-to-register copy the vector flavor uses in place of a
// scalar FMOV.
func (a *Assembler) OrrVec(arr Arrangement, rd, rn, rm Reg) {
	a.emit((arr.q() << 30) | (0b01110 << 24) | (0b10 << 22) | (1 << 21) | uint32(rm)<<16 | (0b00011 << 11) | (1 << 10) | uint32(rn)<<5 | uint32(rd))
}

func (a *Assembler) MovVec(arr Arrangement, rd, rn Reg) { a.OrrVec(arr, rd, rn, rn) }

// InsElementS emits `ins Vd.S[dstIndex], Vn.S[srcIndex]`, copying one
// 32-bit lane from Vn into a single lane of Vd and leaving Vd's other
// lane(s) unchanged — the interval builder's way of assembling a
// [lower, upper] pair from two independently computed scalars without
// a round trip through general-purpose registers.
func (a *Assembler) InsElementS(rd, rn Reg, dstIndex, srcIndex uint32) {
	imm5 := (dstIndex << 3) | 0b100
	imm4 := srcIndex << 2
	a.emit((1 << 30) | (1 << 29) | (0b01110 << 24) | (imm5 << 16) | (imm4 << 11) | (1 << 10) | uint32(rn)<<5 | uint32(rd))
}

// Dup emits `dup Vd.<arr>, Wn`, broadcasting a general-purpose
// register into every lane — used to pre-fill dead vector registers
// with 1.0 and to splat scalar endpoints into interval lanes.
func (a *Assembler) Dup(arr Arrangement, rd, rn Reg) {
	a.emit((arr.q() << 30) | (0b001110000 << 21) | (0b00100 << 16) | (0b000011 << 10) | uint32(rn)<<5 | uint32(rd))
}

// Ext emits `ext Vd.8B, Vn.8B, Vm.8B, #imm4`, used to reverse the two
// lanes of a .2S interval register (imm4=4 swaps the [lower,upper]
// pair) without a round trip through general-purpose registers.
func (a *Assembler) Ext(rd, rn, rm Reg, imm4 uint32) {
	a.emit((0b101110 << 24) | uint32(rm)<<16 | ((imm4 & 0xF) << 11) | uint32(rn)<<5 | uint32(rd))
}
