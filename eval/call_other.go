//go:build !arm64 && !amd64

package eval

import "github.com/rsaccon/fidget/internal/platform"

// No architecture but arm64/amd64 has a compiler backend (spec.md §9),
// so there is never a real entry point to branch into here; this
// mirrors internal/platform's own GOOS/GOARCH-unsupported convention
// (exec_buffer_other.go) rather than silently miscompiling a call.

func callPoint(entry uintptr, x, y, z float32) float32 {
	panic(platform.ErrUnsupportedPlatform)
}

func callVector(entry uintptr, xs, ys, zs, out *float32) {
	panic(platform.ErrUnsupportedPlatform)
}

func callInterval(entry uintptr, x, y, z [2]float32, choices *uint8) [2]float32 {
	panic(platform.ErrUnsupportedPlatform)
}
