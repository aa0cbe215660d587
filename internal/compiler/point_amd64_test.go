package compiler_test

import (
	"math"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rsaccon/fidget/eval"
	"github.com/rsaccon/fidget/internal/compiler"
	"github.com/rsaccon/fidget/tape"
)

func skipUnlessAMD64(t *testing.T) {
	t.Helper()
	if runtime.GOARCH != "amd64" {
		t.Skip("point_amd64 only executes on amd64")
	}
}

func compilePointAMD64(t *testing.T, b *tape.Builder) *eval.Point {
	t.Helper()
	buf, err := compiler.AssemblePointAMD64(b.Program(), 0)
	require.NoError(t, err)
	p := eval.NewPoint(buf)
	t.Cleanup(func() { require.NoError(t, p.Close()) })
	return p
}

func TestPointAMD64ArithmeticAndNegAbs(t *testing.T) {
	skipUnlessAMD64(t)

	// abs(-x) + (x+x) - y
	b := tape.NewBuilder()
	x := b.Input(0)
	y := b.Input(1)
	_ = b.Sub(b.Add(b.Abs(b.Neg(x)), b.Add(x, x)), y)

	p := compilePointAMD64(t, b)
	require.InDelta(t, 3.0+6.0-2.0, p.Eval(3, 2, 0), 1e-6)
}

func TestPointAMD64MinMaxNaNCollapse(t *testing.T) {
	skipUnlessAMD64(t)

	b := tape.NewBuilder()
	x := b.Input(0)
	y := b.Input(1)
	_ = b.Max(x, y)
	pMax := compilePointAMD64(t, b)

	nan := float32(math.NaN())
	require.Equal(t, float32(3), pMax.Eval(3, 2, 0))
	require.Equal(t, float32(3), pMax.Eval(2, 3, 0))
	require.Equal(t, float32(3), pMax.Eval(nan, 3, 0))
	require.Equal(t, float32(3), pMax.Eval(3, nan, 0))

	b2 := tape.NewBuilder()
	x2 := b2.Input(0)
	y2 := b2.Input(1)
	_ = b2.Min(x2, y2)
	pMin := compilePointAMD64(t, b2)

	require.Equal(t, float32(2), pMin.Eval(3, 2, 0))
	require.Equal(t, float32(2), pMin.Eval(2, 3, 0))
	require.Equal(t, float32(2), pMin.Eval(nan, 2, 0))
	require.Equal(t, float32(2), pMin.Eval(2, nan, 0))
}

func TestPointAMD64UnsupportedOps(t *testing.T) {
	skipUnlessAMD64(t)

	b := tape.NewBuilder()
	x := b.Input(0)
	_ = b.Recip(x)
	_, err := compiler.AssemblePointAMD64(b.Program(), 0)
	require.ErrorIs(t, err, compiler.ErrUnsupportedOp)

	b2 := tape.NewBuilder()
	x2 := b2.Input(0)
	_ = b2.Sqrt(x2)
	_, err = compiler.AssemblePointAMD64(b2.Program(), 0)
	require.ErrorIs(t, err, compiler.ErrUnsupportedOp)

	b3 := tape.NewBuilder()
	x3 := b3.Input(0)
	slot := b3.AllocSlot()
	b3.Store(slot, x3)
	_ = b3.Load(slot)
	_, err = compiler.AssemblePointAMD64(b3.Program(), 1)
	require.ErrorIs(t, err, compiler.ErrUnsupportedOp)

	b4 := tape.NewBuilder()
	x4 := b4.Input(0)
	_ = b4.Square(x4)
	_, err = compiler.AssemblePointAMD64(b4.Program(), 0)
	require.ErrorIs(t, err, compiler.ErrUnsupportedOp)
}

func TestPointAMD64RegisterRangeExhaustion(t *testing.T) {
	skipUnlessAMD64(t)

	// Chain enough adds that the strictly-sequential
	// register allocator in tape.Builder exceeds amd64's 16-amd64Offset
	// usable xmm registers well before tape.RegisterLimit.
	b := tape.NewBuilder()
	acc := b.Input(0)
	for i := 0; i < 16; i++ {
		acc = b.AddImm(acc, 1)
	}
	_, err := compiler.AssemblePointAMD64(b.Program(), 0)
	require.ErrorIs(t, err, compiler.ErrUnsupportedOp)
}
