package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rsaccon/fidget/eval"
	"github.com/rsaccon/fidget/internal/compiler"
	"github.com/rsaccon/fidget/tape"
)

func compileVector(t *testing.T, b *tape.Builder) *eval.Vector {
	t.Helper()
	buf, err := compiler.AssembleVectorARM64(b.Program(), 0)
	require.NoError(t, err)
	v := eval.NewVector(buf)
	t.Cleanup(func() { require.NoError(t, v.Close()) })
	return v
}

func TestVectorARM64FourLanesIndependent(t *testing.T) {
	skipUnlessARM64(t)

	// x*x + y
	b := tape.NewBuilder()
	x := b.Input(0)
	y := b.Input(1)
	_ = b.Add(b.Square(x), y)

	v := compileVector(t, b)
	out := v.Eval([4]float32{1, 2, 3, 4}, [4]float32{10, 20, 30, 40}, [4]float32{})

	require.InDeltaSlice(t, []float64{11, 24, 39, 56}, toFloat64Slice(out[:]), 1e-5)
}

func TestVectorARM64EvalSlicePadsTrailingChunk(t *testing.T) {
	skipUnlessARM64(t)

	b := tape.NewBuilder()
	x := b.Input(0)
	_ = b.MulImm(x, 2)

	v := compileVector(t, b)
	xs := []float32{1, 2, 3, 4, 5}
	zeros := make([]float32, len(xs))
	out := v.EvalSlice(xs, zeros, zeros)

	require.InDeltaSlice(t, []float64{2, 4, 6, 8, 10}, toFloat64Slice(out), 1e-5)
}

func toFloat64Slice(fs []float32) []float64 {
	out := make([]float64, len(fs))
	for i, f := range fs {
		out[i] = float64(f)
	}
	return out
}
