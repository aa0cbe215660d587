// Package fidget compiles a planned, register-allocated expression
// tape (package tape) into native machine code and hands back a typed
// evaluator handle (package eval), per spec.md §1 and §9's choice of
// one compiler package per flavor selected statically by architecture.
package fidget

import (
	"runtime"

	"github.com/rsaccon/fidget/eval"
	"github.com/rsaccon/fidget/internal/compiler"
	"github.com/rsaccon/fidget/tape"
)

// CompileOptions configures how a tape is assembled, in the spirit of
// wazero's RuntimeConfig builder but kept minimal (spec.md §6: "no
// CLI, no files, no environment"). The zero value is the default.
type CompileOptions struct {
	// InitialSlotCount is passed through to the assembler. The arm64
	// builders do not use it: their spill area grows on the first use
	// of each deeper slot. The amd64 point builder, which has no spill
	// support, fails with ErrUnsupportedOp when it is above zero. Most
	// callers leave this zero.
	InitialSlotCount int
}

// CompilePoint compiles t to the scalar point flavor (spec.md §4.3),
// available on both arm64 and amd64.
func CompilePoint(t tape.Tape, opts CompileOptions) (*eval.Point, error) {
	switch runtime.GOARCH {
	case "arm64":
		b, err := compiler.AssemblePointARM64(t, opts.InitialSlotCount)
		if err != nil {
			return nil, err
		}
		return eval.NewPoint(b), nil
	case "amd64":
		b, err := compiler.AssemblePointAMD64(t, opts.InitialSlotCount)
		if err != nil {
			return nil, err
		}
		return eval.NewPoint(b), nil
	default:
		return nil, compiler.ErrUnsupportedOp
	}
}

// CompileVector compiles t to the 4-lane SIMD vector flavor (spec.md
// §4.4). This flavor is AArch64-only.
func CompileVector(t tape.Tape, opts CompileOptions) (*eval.Vector, error) {
	assemble := compiler.AssembleVectorUnsupported
	if runtime.GOARCH == "arm64" {
		assemble = compiler.AssembleVectorARM64
	}
	b, err := assemble(t, opts.InitialSlotCount)
	if err != nil {
		return nil, err
	}
	return eval.NewVector(b), nil
}

// CompileInterval compiles t to the 2-lane interval flavor with choice
// tracing (spec.md §4.5, §1). This flavor is AArch64-only.
func CompileInterval(t tape.Tape, opts CompileOptions) (*eval.Interval, error) {
	assemble := compiler.AssembleIntervalUnsupported
	if runtime.GOARCH == "arm64" {
		assemble = compiler.AssembleIntervalARM64
	}
	b, err := assemble(t, opts.InitialSlotCount)
	if err != nil {
		return nil, err
	}
	return eval.NewInterval(b, t.ChoiceCount()), nil
}
