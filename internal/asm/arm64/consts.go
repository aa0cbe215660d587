// Package arm64 provides raw AArch64 instruction-word encoders for the
// fixed subset of the instruction set this module's assemblers need:
// scalar and 2/4-lane SIMD floating point arithmetic, stack-pair
// load/store, byte load/store for the choice buffer, and conditional
// branching for the min/max state machines.
//
// Naming conventions intentionally match the Go assembler and the
// AArch64 reference manual, following the convention set by
// tetratelabs/wazero's internal/asm/arm64 package.
package arm64

// Reg is an AArch64 register index, 0-31. Which register bank it
// names (general-purpose X/W, or SIMD&FP V) depends on the
// instruction encoding it is passed to.
type Reg uint8

const (
	R0 Reg = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	R16
	R17
	R18
	R19
	R20
	R21
	R22
	R23
	R24
	R25
	R26
	R27
	R28
	R29 // frame pointer (FP)
	R30 // link register (LR)
	RSP // stack pointer / zero register depending on context
)

// V0..V31 alias the same numeric space as R0..R30 for use with SIMD&FP
// encodings; kept as a distinct constant block for readability at call
// sites.
const (
	V0 Reg = iota
	V1
	V2
	V3
	V4
	V5
	V6
	V7
	V8
	V9
	V10
	V11
	V12
	V13
	V14
	V15
	V16
	V17
	V18
	V19
	V20
	V21
	V22
	V23
	V24
	V25
	V26
	V27
	V28
	V29
	V30
	V31
)

// Cond is an AArch64 condition code, used by B.cond.
type Cond uint8

const (
	CondEQ Cond = iota
	CondNE
	CondCS
	CondCC
	CondMI
	CondPL
	CondVS
	CondVC
	CondHI
	CondLS
	CondGE
	CondLT
	CondGT
	CondLE
	CondAL
)

// Arrangement selects the SIMD lane width/count for vector
// instructions: 2S is 2x32-bit lanes (the interval flavor's [lo,hi]
// pair), 4S is 4x32-bit lanes (the vector flavor's batch).
type Arrangement uint8

const (
	Arrangement2S Arrangement = iota
	Arrangement4S
)

func (a Arrangement) q() uint32 {
	if a == Arrangement4S {
		return 1
	}
	return 0
}
