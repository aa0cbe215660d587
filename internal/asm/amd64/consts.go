// Package amd64 provides raw x86-64 instruction encoders for the
// point-flavor subset specified in spec.md §9: neg, abs, add, sub,
// mul, div, min, max, copy, input. Load, store, recip, sqrt, and
// square are open holes on this architecture — see
// internal/compiler/point_amd64.go.
package amd64

// Reg is an x86-64 general-purpose or XMM register index, 0-15.
type Reg uint8

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// XMM0..XMM15 alias the same numeric space as RAX..R15 for use in SSE
// encodings; named separately for readability at call sites.
const (
	XMM0 Reg = iota
	XMM1
	XMM2
	XMM3
	XMM4
	XMM5
	XMM6
	XMM7
	XMM8
	XMM9
	XMM10
	XMM11
	XMM12
	XMM13
	XMM14
	XMM15
)
