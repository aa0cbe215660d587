//go:build linux && (amd64 || arm64)

package platform

import "golang.org/x/sys/unix"

// mmapCodeSegment allocates an anonymous RW page, copies code into it,
// then mprotects it to RX. Two syscalls-worth of indirection (rather
// than mmap'ing PROT_EXEC directly) keeps the page never
// simultaneously writable and executable, per spec.md §4.2/§5's
// write-once-then-execute contract.
func mmapCodeSegment(code []byte) ([]byte, error) {
	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
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
