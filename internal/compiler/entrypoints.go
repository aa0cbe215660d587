package compiler

import (
	"github.com/rsaccon/fidget/internal/platform"
	"github.com/rsaccon/fidget/tape"
)

// These are the only compiler entry points the root package calls.
// Each selects its flavor/architecture Builder as a generic type
// parameter at compile time (spec.md §9's static-dispatch choice), so
// the root facade never needs to see any unexported Builder type.

func AssemblePointARM64(t tape.Tape, initialSlotCount int) (*platform.ExecutableBuffer, error) {
	return Assemble[*pointBuilderARM64](&pointBuilderARM64{}, t, initialSlotCount)
}

func AssemblePointAMD64(t tape.Tape, initialSlotCount int) (*platform.ExecutableBuffer, error) {
	return Assemble[*pointBuilderAMD64](&pointBuilderAMD64{}, t, initialSlotCount)
}

func AssembleVectorARM64(t tape.Tape, initialSlotCount int) (*platform.ExecutableBuffer, error) {
	return Assemble[*vectorBuilderARM64](&vectorBuilderARM64{}, t, initialSlotCount)
}

func AssembleIntervalARM64(t tape.Tape, initialSlotCount int) (*platform.ExecutableBuffer, error) {
	return Assemble[*intervalBuilderARM64](&intervalBuilderARM64{}, t, initialSlotCount)
}

// AssembleVectorUnsupported and AssembleIntervalUnsupported back the
// amd64/other builds of CompileVector/CompileInterval: both flavors
// are AArch64-only (spec.md §4.4-4.5).
func AssembleVectorUnsupported(t tape.Tape, initialSlotCount int) (*platform.ExecutableBuffer, error) {
	return Assemble[*vectorBuilderAMD64](&vectorBuilderAMD64{}, t, initialSlotCount)
}

func AssembleIntervalUnsupported(t tape.Tape, initialSlotCount int) (*platform.ExecutableBuffer, error) {
	return Assemble[*intervalBuilderAMD64](&intervalBuilderAMD64{}, t, initialSlotCount)
}
