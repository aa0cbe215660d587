package platform

import "unsafe"

// entryPointer returns the address of the first byte of mem. Kept as
// a one-line indirection so the only unsafe.Pointer conversion in
// this package is in one auditable place.
func entryPointer(mem []byte) unsafe.Pointer {
	return unsafe.Pointer(&mem[0])
}
