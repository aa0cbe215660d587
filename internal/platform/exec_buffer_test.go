package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func supported() bool {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		return false
	}
	return runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64"
}

func TestNewExecutableBufferZeroLength(t *testing.T) {
	require.Panics(t, func() {
		_, _ = NewExecutableBuffer(nil)
	})
}

func TestNewExecutableBufferRoundTrip(t *testing.T) {
	if !supported() {
		t.Skip("executable memory unsupported on this platform")
	}
	// A minimal valid-looking code blob; content doesn't matter for
	// this test, only that the page round-trips through RW -> RX and
	// back out via Close.
	code := make([]byte, 64)
	for i := range code {
		code[i] = byte(i)
	}

	buf, err := NewExecutableBuffer(code)
	require.NoError(t, err)
	require.Equal(t, len(code), buf.Len())
	require.NotZero(t, buf.Entry())

	require.NoError(t, buf.Close())
	require.Error(t, buf.Close())
}
