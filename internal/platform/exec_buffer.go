// Package platform owns the W^X executable memory pages that compiled
// tapes run from. It is deliberately tiny: allocate read-write,
// install the emitted bytes, transition to read-execute, and hand back
// an entry pointer. See spec.md §4.2 and §5.
package platform

import "errors"

// ErrUnsupportedPlatform is returned by NewExecutableBuffer on a
// GOOS/GOARCH combination this package has no mmap/mprotect support
// for, mirroring wazero's config_unsupported.go convention of an
// explicit unsupported-platform error rather than a silent fallback.
var ErrUnsupportedPlatform = errors.New("platform: executable memory not supported on this GOOS/GOARCH")

// ExecutableBuffer owns one read-execute memory page holding compiled
// machine code. It must outlive every Evaluator built on top of it;
// Close unmaps the page and invalidates Entry.
type ExecutableBuffer struct {
	mem []byte
}

// Entry returns a pointer to the start of the compiled function. The
// caller is responsible for casting it to the correct C-ABI function
// pointer type for the flavor that produced code (see the eval
// package) — this package has no notion of flavors or signatures.
func (b *ExecutableBuffer) Entry() uintptr {
	if len(b.mem) == 0 {
		panic("BUG: Entry called on a closed or empty ExecutableBuffer")
	}
	return uintptr(entryPointer(b.mem))
}

// Len returns the size in bytes of the compiled code.
func (b *ExecutableBuffer) Len() int { return len(b.mem) }

// Close unmaps the executable page. It is not safe to call Entry, or
// to invoke the compiled function, after Close returns.
func (b *ExecutableBuffer) Close() error {
	if b.mem == nil {
		return errors.New("platform: ExecutableBuffer already closed")
	}
	err := munmapCodeSegment(b.mem)
	b.mem = nil
	return err
}

// NewExecutableBuffer allocates a page, copies code into it, then
// transitions the page from read-write to read-execute. code must be
// non-empty; emission with zero instructions is a defect upstream
// (every tape produces at least a return).
func NewExecutableBuffer(code []byte) (*ExecutableBuffer, error) {
	if len(code) == 0 {
		panic("BUG: NewExecutableBuffer with zero-length code")
	}
	mem, err := mmapCodeSegment(code)
	if err != nil {
		return nil, err
	}
	return &ExecutableBuffer{mem: mem}, nil
}
