//go:build amd64

package eval

import "github.com/rsaccon/fidget/internal/compiler"

// callPoint is a hand-written x86-64 trampoline (call_amd64.s): SysV
// passes the first three float32 args in xmm0-xmm2, matching the point
// flavor's own ABI (spec.md §6, point_amd64.go), so the trampoline
// loads x, y, z from its Go frame into xmm0-xmm2, calls the entry
// point, and stores xmm0 back as the result.
//
//go:noescape
func callPoint(entry uintptr, x, y, z float32) float32

// Vector and interval have no x86-64 lowering (spec.md §4.4-4.5); an
// eval.Vector/eval.Interval can therefore never hold a valid entry
// point built on this architecture, and calling either panics rather
// than silently branching into nonexistent code.
func callVector(entry uintptr, xs, ys, zs, out *float32) {
	panic(compiler.ErrUnsupportedOp)
}

func callInterval(entry uintptr, x, y, z [2]float32, choices *uint8) [2]float32 {
	panic(compiler.ErrUnsupportedOp)
}
