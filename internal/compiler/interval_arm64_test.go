package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rsaccon/fidget/eval"
	"github.com/rsaccon/fidget/internal/compiler"
	"github.com/rsaccon/fidget/tape"
)

func compileInterval(t *testing.T, b *tape.Builder) *eval.Interval {
	t.Helper()
	prog := b.Program()
	buf, err := compiler.AssembleIntervalARM64(prog, 0)
	require.NoError(t, err)
	iv := eval.NewInterval(buf, prog.ChoiceCount())
	t.Cleanup(func() { require.NoError(t, iv.Close()) })
	return iv
}

func TestIntervalARM64Square(t *testing.T) {
	skipUnlessARM64(t)

	b := tape.NewBuilder()
	x := b.Input(0)
	_ = b.Square(x)
	iv := compileInterval(t, b)

	// Entirely positive: [lo^2, hi^2].
	out := iv.Eval([2]float32{2, 3}, [2]float32{0, 0}, [2]float32{0, 0})
	require.InDelta(t, 4.0, out[0], 1e-5)
	require.InDelta(t, 9.0, out[1], 1e-5)

	// Straddles zero: [0, max(lo^2, hi^2)].
	out = iv.Eval([2]float32{-3, 2}, [2]float32{0, 0}, [2]float32{0, 0})
	require.InDelta(t, 0.0, out[0], 1e-5)
	require.InDelta(t, 9.0, out[1], 1e-5)

	// Entirely negative: [hi^2, lo^2].
	out = iv.Eval([2]float32{-5, -2}, [2]float32{0, 0}, [2]float32{0, 0})
	require.InDelta(t, 4.0, out[0], 1e-5)
	require.InDelta(t, 25.0, out[1], 1e-5)
}

func TestIntervalARM64AddSub(t *testing.T) {
	skipUnlessARM64(t)

	b := tape.NewBuilder()
	x := b.Input(0)
	y := b.Input(1)
	_ = b.Sub(b.Add(x, y), y)
	iv := compileInterval(t, b)

	out := iv.Eval([2]float32{1, 2}, [2]float32{10, 20}, [2]float32{0, 0})
	// (x+y) = [11,22]; subtracting y = [10,20] gives [-9,12], which
	// contains x's original span but is wider than it (interval sub
	// isn't the exact inverse of add).
	require.LessOrEqual(t, out[0], float32(1))
	require.GreaterOrEqual(t, out[1], float32(2))
}

func TestIntervalARM64MaxChoiceTrace(t *testing.T) {
	skipUnlessARM64(t)

	b := tape.NewBuilder()
	x := b.Input(0)
	y := b.Input(1)
	_ = b.Max(x, y)
	iv := compileInterval(t, b)

	// x wholly dominates: [5,6] vs [1,2].
	out := iv.Eval([2]float32{5, 6}, [2]float32{1, 2}, [2]float32{0, 0})
	require.InDelta(t, 5.0, out[0], 1e-5)
	require.InDelta(t, 6.0, out[1], 1e-5)
	choices, err := iv.Choices()
	require.NoError(t, err)
	require.Equal(t, []tape.Choice{tape.Left}, choices)

	// y wholly dominates.
	out = iv.Eval([2]float32{1, 2}, [2]float32{5, 6}, [2]float32{0, 0})
	require.InDelta(t, 5.0, out[0], 1e-5)
	require.InDelta(t, 6.0, out[1], 1e-5)
	choices, err = iv.Choices()
	require.NoError(t, err)
	require.Equal(t, []tape.Choice{tape.Right}, choices)

	// Overlapping: neither dominates.
	out = iv.Eval([2]float32{1, 5}, [2]float32{3, 7}, [2]float32{0, 0})
	require.InDelta(t, 3.0, out[0], 1e-5)
	require.InDelta(t, 7.0, out[1], 1e-5)
	choices, err = iv.Choices()
	require.NoError(t, err)
	require.Equal(t, []tape.Choice{tape.Both}, choices)
}

func TestIntervalARM64RecipStraddlingZeroIsNaN(t *testing.T) {
	skipUnlessARM64(t)

	b := tape.NewBuilder()
	x := b.Input(0)
	_ = b.Recip(x)
	iv := compileInterval(t, b)

	out := iv.Eval([2]float32{-1, 1}, [2]float32{0, 0}, [2]float32{0, 0})
	require.True(t, out[0] != out[0], "expected NaN lower bound")
	require.True(t, out[1] != out[1], "expected NaN upper bound")
}
