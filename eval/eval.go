// Package eval wraps a compiled tape's executable buffer in the three
// typed evaluator handles spec.md §1 calls the point, vector, and
// interval flavors, invoking the compiled machine code through a
// per-architecture trampoline (see call_arm64.go/call_amd64.go).
package eval

import (
	"github.com/rsaccon/fidget/internal/platform"
	"github.com/rsaccon/fidget/tape"
)

// Point evaluates a tape at one (x, y, z) coordinate at a time.
type Point struct {
	buf *platform.ExecutableBuffer
}

// NewPoint wraps a buffer produced by compiling the point flavor. The
// caller must not compile any other flavor into buf.
func NewPoint(buf *platform.ExecutableBuffer) *Point { return &Point{buf: buf} }

func (p *Point) Eval(x, y, z float32) float32 {
	return callPoint(p.buf.Entry(), x, y, z)
}

// Close releases the underlying executable memory. The handle must
// not be used afterward.
func (p *Point) Close() error { return p.buf.Close() }

// Vector evaluates a tape over four (x, y, z) coordinates at once,
// one per SIMD lane (spec.md §4.4).
type Vector struct {
	buf *platform.ExecutableBuffer
}

func NewVector(buf *platform.ExecutableBuffer) *Vector { return &Vector{buf: buf} }

func (v *Vector) Eval(xs, ys, zs [4]float32) [4]float32 {
	var out [4]float32
	callVector(v.buf.Entry(), &xs[0], &ys[0], &zs[0], &out[0])
	return out
}

// EvalSlice evaluates xs/ys/zs (which must be equal length) four
// elements at a time, a Go translation of the Rust original's chunked
// eval_s loop: full four-lane chunks go straight through Eval, and a
// trailing partial chunk is padded with zeros (the padding lanes'
// outputs are computed but discarded, so the pad value only has to be
// a value every operator accepts without raising a domain error).
func (v *Vector) EvalSlice(xs, ys, zs []float32) []float32 {
	n := len(xs)
	out := make([]float32, n)
	for i := 0; i < n; i += 4 {
		end := i + 4
		if end > n {
			end = n
		}
		var xc, yc, zc [4]float32
		copy(xc[:], xs[i:end])
		copy(yc[:], ys[i:end])
		copy(zc[:], zs[i:end])
		res := v.Eval(xc, yc, zc)
		copy(out[i:end], res[:end-i])
	}
	return out
}

func (v *Vector) Close() error { return v.buf.Close() }

// Interval evaluates a tape over an axis-aligned box, represented per
// axis as a [lower, upper] pair, and records which side of each
// min/max node dominated (spec.md §1, §4.5).
type Interval struct {
	buf     *platform.ExecutableBuffer
	choices []byte
}

// NewInterval wraps buf together with the tape's exact choice count
// (tape.Tape.ChoiceCount), allocating the trace buffer the compiled
// code writes through on every Eval.
func NewInterval(buf *platform.ExecutableBuffer, choiceCount int) *Interval {
	return &Interval{buf: buf, choices: make([]byte, choiceCount)}
}

func (iv *Interval) Eval(x, y, z [2]float32) [2]float32 {
	for i := range iv.choices {
		iv.choices[i] = 0
	}
	var choicesPtr *uint8
	if len(iv.choices) > 0 {
		choicesPtr = &iv.choices[0]
	}
	return callInterval(iv.buf.Entry(), x, y, z, choicesPtr)
}

// Choices decodes the raw trace left by the most recent Eval into the
// tape package's four-valued Choice vector.
func (iv *Interval) Choices() ([]tape.Choice, error) {
	out := make([]tape.Choice, len(iv.choices))
	for i, b := range iv.choices {
		c, err := tape.DecodeChoice(b)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Simplify decodes the trace from the most recent Eval and hands it to
// fn, the caller-supplied pruning function (spec.md §5).
func (iv *Interval) Simplify(fn tape.SimplifyFunc) (tape.Tape, error) {
	choices, err := iv.Choices()
	if err != nil {
		return nil, err
	}
	return fn(choices), nil
}

func (iv *Interval) Close() error { return iv.buf.Close() }
