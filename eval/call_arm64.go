//go:build arm64

package eval

// These functions are hand-written AArch64 trampolines (call_arm64.s):
// they move Go arguments into the exact physical registers the
// compiled tape expects (spec.md §6's C ABI for each flavor), branch
// into the executable buffer, and move the result back out. Go's own
// calling convention has no notion of this fixed layout, so the
// trampoline — not cgo, not reflect — is what makes an *platform.
// ExecutableBuffer callable.

//go:noescape
func callPoint(entry uintptr, x, y, z float32) float32

//go:noescape
func callVector(entry uintptr, xs, ys, zs, out *float32)

//go:noescape
func callInterval(entry uintptr, x, y, z [2]float32, choices *uint8) [2]float32
