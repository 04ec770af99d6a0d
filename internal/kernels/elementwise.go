// Package kernels implements the pure tensor operations: element-wise
// arithmetic (strict and relaxed/broadcasting), matrix multiply,
// reshape/transpose/slice/stack, and the 1-D similarity reductions.
// Every kernel takes inputs and returns a new tensor or an error; none
// mutate their arguments.
package kernels

import (
	"fmt"
	"math"

	"vectordb/internal/tensor"
)

// BinaryOp names the four element-wise arithmetic operators.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
)

func (op BinaryOp) apply(x, y float32) (float32, error) {
	switch op {
	case Add:
		return x + y, nil
	case Sub:
		return x - y, nil
	case Mul:
		return x * y, nil
	case Div:
		if y == 0 {
			return 0, ErrDivideByZero
		}
		return x / y, nil
	default:
		return 0, fmt.Errorf("kernels: unknown binary op %d", op)
	}
}

// neutral returns the padding element used by the relaxed 1-D path
// for the short side of a ragged pair.
func (op BinaryOp) neutral() float32 {
	switch op {
	case Mul, Div:
		return 1
	default:
		return 0
	}
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// BinaryStrict applies op element-wise; a and b must have identical
// shapes.
func BinaryStrict(op BinaryOp, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	if !shapeEqual(a.Shape(), b.Shape()) {
		return nil, fmt.Errorf("kernels: binary op on shapes %v and %v: %w", a.Shape(), b.Shape(), ErrShapeMismatch)
	}
	ad, bd := a.DataView(), b.DataView()
	out := make([]float32, len(ad))
	for i := range ad {
		v, err := op.apply(ad[i], bd[i])
		if err != nil {
			return nil, fmt.Errorf("kernels: binary op at index %d: %w", i, err)
		}
		out[i] = v
	}
	return tensor.FromData(a.Shape(), out)
}

// BinaryRelaxed applies op with broadcasting: a 0-rank operand
// broadcasts over the other side; two rank-1 operands align to the
// longer length, padding the shorter side with op's neutral element;
// any other rank combination fails.
func BinaryRelaxed(op BinaryOp, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	ar, br := a.Rank(), b.Rank()
	switch {
	case ar == 0:
		return broadcastScalar(op, a.DataView()[0], b, false)
	case br == 0:
		return broadcastScalar(op, b.DataView()[0], a, true)
	case ar == 1 && br == 1:
		return alignPad(op, a, b)
	default:
		return nil, fmt.Errorf("kernels: relaxed binary op on ranks %d and %d: %w", ar, br, ErrRankMismatch)
	}
}

// broadcastScalar applies s against every element of t. scalarIsRight
// controls operand order for non-commutative ops (Sub, Div).
func broadcastScalar(op BinaryOp, s float32, t *tensor.Tensor, scalarIsRight bool) (*tensor.Tensor, error) {
	td := t.DataView()
	out := make([]float32, len(td))
	for i, v := range td {
		var x, y float32
		if scalarIsRight {
			x, y = v, s
		} else {
			x, y = s, v
		}
		r, err := op.apply(x, y)
		if err != nil {
			return nil, fmt.Errorf("kernels: scalar broadcast at index %d: %w", i, err)
		}
		out[i] = r
	}
	return tensor.FromData(t.Shape(), out)
}

func alignPad(op BinaryOp, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	ad, bd := a.DataView(), b.DataView()
	n := len(ad)
	if len(bd) > n {
		n = len(bd)
	}
	neutral := op.neutral()
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		x, y := neutral, neutral
		if i < len(ad) {
			x = ad[i]
		}
		if i < len(bd) {
			y = bd[i]
		}
		r, err := op.apply(x, y)
		if err != nil {
			return nil, fmt.Errorf("kernels: padded binary op at index %d: %w", i, err)
		}
		out[i] = r
	}
	return tensor.FromData([]int{n}, out)
}

// ScalarMul computes out[i] = s * a[i], preserving shape.
func ScalarMul(s float32, a *tensor.Tensor) (*tensor.Tensor, error) {
	ad := a.DataView()
	out := make([]float32, len(ad))
	for i, v := range ad {
		out[i] = s * v
	}
	return tensor.FromData(a.Shape(), out)
}

func require1D(name string, ts ...*tensor.Tensor) error {
	for _, t := range ts {
		if t.Rank() != 1 {
			return fmt.Errorf("kernels: %s requires rank-1 tensors, got rank %d: %w", name, t.Rank(), ErrRankMismatch)
		}
	}
	return nil
}

func requireEqualLen(name string, a, b *tensor.Tensor) error {
	if len(a.DataView()) != len(b.DataView()) {
		return fmt.Errorf("kernels: %s on lengths %d and %d: %w", name, len(a.DataView()), len(b.DataView()), ErrShapeMismatch)
	}
	return nil
}

// Dot1D computes the dot product of two rank-1 tensors of equal length.
func Dot1D(a, b *tensor.Tensor) (float32, error) {
	if err := require1D("dot", a, b); err != nil {
		return 0, err
	}
	if err := requireEqualLen("dot", a, b); err != nil {
		return 0, err
	}
	ad, bd := a.DataView(), b.DataView()
	var sum float32
	for i := range ad {
		sum += ad[i] * bd[i]
	}
	return sum, nil
}

// L2Norm1D computes the Euclidean norm of a rank-1 tensor.
func L2Norm1D(a *tensor.Tensor) (float32, error) {
	if err := require1D("l2_norm", a); err != nil {
		return 0, err
	}
	var sum float32
	for _, v := range a.DataView() {
		sum += v * v
	}
	return float32(math.Sqrt(float64(sum))), nil
}

// Distance1D computes the Euclidean distance between two equal-length
// rank-1 tensors.
func Distance1D(a, b *tensor.Tensor) (float32, error) {
	if err := require1D("distance", a, b); err != nil {
		return 0, err
	}
	if err := requireEqualLen("distance", a, b); err != nil {
		return 0, err
	}
	ad, bd := a.DataView(), b.DataView()
	var sum float32
	for i := range ad {
		d := ad[i] - bd[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum))), nil
}

// CosineSimilarity1D computes cosine similarity between two
// equal-length rank-1 tensors; fails on any zero-norm input.
func CosineSimilarity1D(a, b *tensor.Tensor) (float32, error) {
	if err := require1D("cosine_similarity", a, b); err != nil {
		return 0, err
	}
	if err := requireEqualLen("cosine_similarity", a, b); err != nil {
		return 0, err
	}
	dot, _ := Dot1D(a, b)
	na, _ := L2Norm1D(a)
	nb, _ := L2Norm1D(b)
	if na == 0 || nb == 0 {
		return 0, fmt.Errorf("kernels: cosine_similarity: %w", ErrZeroNorm)
	}
	return dot / (na * nb), nil
}

// Normalize1D rescales a by 1/‖a‖₂; fails on zero norm.
func Normalize1D(a *tensor.Tensor) (*tensor.Tensor, error) {
	norm, err := L2Norm1D(a)
	if err != nil {
		return nil, err
	}
	if norm == 0 {
		return nil, fmt.Errorf("kernels: normalize: %w", ErrZeroNorm)
	}
	return ScalarMul(1/norm, a)
}
