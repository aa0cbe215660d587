// Package compiler implements the flavor-generic assembler driver and
// the three flavor builders (point, vector, interval) that lower a
// tape.Tape to native machine code. See spec.md §4 and SPEC_FULL.md §5.
package compiler

import "github.com/rsaccon/fidget/tape"

// offset is the fixed distance between a virtual register index and
// its physical SIMD register, per spec.md §3 invariant 1: reg(v) = v +
// offset. The callee-saved v8-v15 plus caller-saved v16-v31 give
// exactly tape.RegisterLimit (24) usable physical registers above the
// offset.
const offset = 8

// immReg is the physical register reserved as load_imm's target, below
// offset and so outside the planner's v8-v31 range. Its virtual index (used nowhere a planner would ever
// allocate, since real tapes only use 0..RegisterLimit) is computed by
// wrapping uint8 subtraction, exactly as the Rust original's
// `IMM_REG.wrapping_sub(OFFSET)`.
const immReg = 6

// immRegVirtual is the wrapped virtual index of the immediate
// register; never assigned to by a planner, used internally by
// loadImm to hand the driver a register to pass to a two-register
// builder method. Computed at runtime (not as a Go constant) because
// the subtraction is intentionally a uint8 wraparound: 6-8 -> 254.
var immRegPhys uint8 = immReg
var immRegVirtual = tape.Reg(immRegPhys - offset)

// physReg maps a virtual register to its physical index.
func physReg(v tape.Reg) uint8 { return uint8(v) + offset }

// spillAlign rounds n up to the nearest multiple of 16, preserving
// AArch64's 16-byte stack alignment requirement as the spill area
// grows (spec.md §3 invariant 3).
func spillAlign(n uint32) uint32 {
	return (n + 15) &^ 15
}

// stackMath tracks the monotonically growing spill area for one
// assembler instance. elemSize is the flavor's element size in bytes
// (4 for point, 8 for interval, 16 for vector).
type stackMath struct {
	elemSize  uint32
	memOffset uint32
}

// offsetFor returns the stack-pointer-relative byte offset of spill
// slot s and, when this is the first reference to a slot deeper than
// any seen so far, the number of bytes by which the caller must grow
// the live stack frame (by emitting an immediate `sub sp, sp,
// #grewBy`) before using that offset. Matches spec.md §3 invariant 2
// and the lazy, 16-byte-aligned growth of
// original_source/fidget/src/asm/dynasm.rs's `stack_pos`.
func (m *stackMath) offsetFor(s tape.Slot) (spOffset, grewBy uint32) {
	if uint32(s) < tape.RegisterLimit {
		panic("BUG: offsetFor called with a register index, not a spill slot")
	}
	mem := (uint32(s) - tape.RegisterLimit + 1) * m.elemSize
	if mem > m.memOffset {
		aligned := spillAlign(mem)
		grewBy = aligned - m.memOffset
		m.memOffset = aligned
	}
	return m.memOffset - mem, grewBy
}

// totalGrowth returns the final, 16-byte-aligned size of the spill
// area, i.e. exactly what the epilogue must subtract from sp to undo
// the prologue's allocation (spec.md §3 invariant 3).
func (m *stackMath) totalGrowth() uint32 { return m.memOffset }

// The max*SpillOffset constants bound the byte offsets each flavor's
// load/store immediate form can address directly, per spec.md §7: a
// usable offset is strictly below the limit.
const (
	maxScalarSpillOffset   = 16 * 1024
	maxDoubleSpillOffset   = 32 * 1024
	maxVectorSpillOffset   = 4 * 1024
)

// checkSpillOffset panics (a defect, not a recoverable error, per
// spec.md §7) if off is outside the flavor's addressable immediate range.
func checkSpillOffset(off, limit uint32) {
	if off >= limit {
		panic("BUG: spill offset exceeds addressable immediate range")
	}
}
