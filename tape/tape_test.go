package tape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderChoiceCount(t *testing.T) {
	b := NewBuilder()
	x := b.Input(0)
	y := b.Input(1)
	z := b.Input(2)
	m := b.Max(x, y)
	_ = b.Max(m, z)
	p := b.Program()

	require.Equal(t, 2, p.ChoiceCount())
	require.Equal(t, 5, p.Len())
}

func TestDecodeChoice(t *testing.T) {
	for b, want := range map[byte]Choice{0: Unknown, 1: Left, 2: Right, 3: Both} {
		got, err := DecodeChoice(b)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := DecodeChoice(4)
	require.Error(t, err)
}

func TestOpIsImmAndMinMax(t *testing.T) {
	require.True(t, OpCopyImm.IsImm())
	require.True(t, OpSubImmReg.IsImm())
	require.False(t, OpAddRegReg.IsImm())

	require.True(t, OpMaxRegReg.IsMinMax())
	require.True(t, OpMinRegImm.IsMinMax())
	require.False(t, OpAddRegReg.IsMinMax())
}

func TestBuilderRegisterLimit(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < RegisterLimit; i++ {
		b.CopyImm(float32(i))
	}
	require.Panics(t, func() { b.CopyImm(0) })
}
