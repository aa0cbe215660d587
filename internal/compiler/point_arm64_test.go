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

func skipUnlessARM64(t *testing.T) {
	t.Helper()
	if runtime.GOARCH != "arm64" {
		t.Skip("point_arm64 only executes on arm64")
	}
}

// compilePoint assembles b's program with the arm64 point builder and
// wraps it in an evaluator, closing it automatically at test end.
func compilePoint(t *testing.T, b *tape.Builder) *eval.Point {
	t.Helper()
	buf, err := compiler.AssemblePointARM64(b.Program(), tape.RegisterLimit)
	require.NoError(t, err)
	p := eval.NewPoint(buf)
	t.Cleanup(func() { require.NoError(t, p.Close()) })
	return p
}

func TestPointARM64Sphere(t *testing.T) {
	skipUnlessARM64(t)

	// x^2 + y^2 + z^2 - 1
	b := tape.NewBuilder()
	x := b.Input(0)
	y := b.Input(1)
	z := b.Input(2)
	r := b.Add(b.Square(x), b.Add(b.Square(y), b.Square(z)))
	_ = b.SubImm(r, 1)

	p := compilePoint(t, b)
	require.InDelta(t, -1.0, p.Eval(0, 0, 0), 1e-6)
	require.InDelta(t, 0.0, p.Eval(1, 0, 0), 1e-6)
	require.InDelta(t, 2.0, p.Eval(1, 1, 1), 1e-6)
}

func TestPointARM64MinMaxNaNCollapse(t *testing.T) {
	skipUnlessARM64(t)

	b := tape.NewBuilder()
	x := b.Input(0)
	y := b.Input(1)
	_ = b.Max(x, y)
	pMax := compilePoint(t, b)

	nan := float32(math.NaN())
	require.Equal(t, float32(3), pMax.Eval(3, 2, 0))
	require.Equal(t, float32(3), pMax.Eval(2, 3, 0))
	require.Equal(t, float32(3), pMax.Eval(nan, 3, 0))
	require.Equal(t, float32(3), pMax.Eval(3, nan, 0))

	b2 := tape.NewBuilder()
	x2 := b2.Input(0)
	y2 := b2.Input(1)
	_ = b2.Min(x2, y2)
	pMin := compilePoint(t, b2)

	require.Equal(t, float32(2), pMin.Eval(3, 2, 0))
	require.Equal(t, float32(2), pMin.Eval(2, 3, 0))
	require.Equal(t, float32(2), pMin.Eval(nan, 2, 0))
	require.Equal(t, float32(2), pMin.Eval(2, nan, 0))
}

func TestPointARM64UnaryOps(t *testing.T) {
	skipUnlessARM64(t)

	b := tape.NewBuilder()
	x := b.Input(0)
	_ = b.Sqrt(b.Abs(b.Neg(x)))
	p := compilePoint(t, b)

	require.InDelta(t, 3.0, p.Eval(-9, 0, 0), 1e-6)
}

func TestPointARM64Recip(t *testing.T) {
	skipUnlessARM64(t)

	b := tape.NewBuilder()
	x := b.Input(0)
	_ = b.Recip(x)
	p := compilePoint(t, b)

	require.InDelta(t, 0.25, p.Eval(4, 0, 0), 1e-6)
}

func TestPointARM64LoadStoreSpillSlot(t *testing.T) {
	skipUnlessARM64(t)

	b := tape.NewBuilder()
	x := b.Input(0)
	slot := b.AllocSlot()
	b.Store(slot, x)
	loaded := b.Load(slot)
	_ = b.AddImm(loaded, 1)

	p := compilePoint(t, b)
	require.InDelta(t, 6.0, p.Eval(5, 0, 0), 1e-6)
}
