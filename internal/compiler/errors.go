package compiler

import "errors"

// ErrUnsupportedOp is returned by Assemble when the tape uses an
// operation, or a virtual register index, the target's point-flavor
// subset does not implement. Per spec.md §9 the amd64 encoder is
// secondary and point-only, with explicit open holes; see
// point_amd64.go and DESIGN.md.
var ErrUnsupportedOp = errors.New("compiler: operation unsupported on this target")
