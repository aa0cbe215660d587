//go:build darwin && (amd64 || arm64)

package platform

import "golang.org/x/sys/unix"

// mmapCodeSegment mirrors exec_buffer_linux.go's RW-then-RX sequence.
// On darwin/arm64 (Apple Silicon), W^X is enforced by the kernel for
// JIT pages; MAP_JIT plus a single mprotect flip is the documented
// way to satisfy it without per-write toggling via
// pthread_jit_write_protect_np, which this module's one-shot
// finalize-then-never-write lifecycle doesn't need.
func mmapCodeSegment(code []byte) ([]byte, error) {
	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON|mapJIT)
	if err != nil {
		return nil, err
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return nil, err
	}
	return mem, nil
}

func munmapCodeSegment(mem []byte) error {
	return unix.Munmap(mem)
}

// mapJIT is darwin's MAP_JIT, not exposed by golang.org/x/sys/unix on
// all versions; the numeric value is stable across Darwin releases.
const mapJIT = 0x0800
