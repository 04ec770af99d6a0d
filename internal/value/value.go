// Package value implements the tagged scalar/container value that flows
// through datasets, expressions, and tensors: Int, Float, String, Bool,
// Null, Vector, and Matrix, with bit-exact equality and an ordering
// over Null and scalar values.
package value

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindVector
	KindMatrix
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindVector:
		return "Vector"
	case KindMatrix:
		return "Matrix"
	default:
		return "Unknown"
	}
}

// Value is a tagged union. Only the field matching Kind is meaningful;
// the zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	f    float32
	s    string
	b    bool
	vec  []float32
	mat  [][]float32
}

func Null() Value           { return Value{kind: KindNull} }
func Int(i int64) Value     { return Value{kind: KindInt, i: i} }
func Float(f float32) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }

// Vector builds a Vector value. The slice is copied so the caller's
// backing array may be reused.
func Vector(data []float32) Value {
	cp := make([]float32, len(data))
	copy(cp, data)
	return Value{kind: KindVector, vec: cp}
}

// Matrix builds a Matrix value. Every row must have equal length; rows
// may be zero in length (cols then reported as 0).
func Matrix(rows [][]float32) (Value, error) {
	if len(rows) == 0 {
		return Value{kind: KindMatrix, mat: nil}, nil
	}
	cols := len(rows[0])
	cp := make([][]float32, len(rows))
	for i, r := range rows {
		if len(r) != cols {
			return Value{}, fmt.Errorf("matrix value: row %d has length %d, want %d", i, len(r), cols)
		}
		row := make([]float32, cols)
		copy(row, r)
		cp[i] = row
	}
	return Value{kind: KindMatrix, mat: cp}, nil
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsInt() (int64, bool)       { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float32, bool)   { return v.f, v.kind == KindFloat }
func (v Value) AsString() (string, bool)   { return v.s, v.kind == KindString }
func (v Value) AsBool() (bool, bool)       { return v.b, v.kind == KindBool }

// AsVector returns the live slice; callers must not mutate it.
func (v Value) AsVector() ([]float32, bool) { return v.vec, v.kind == KindVector }

// AsMatrix returns the live rows; callers must not mutate them.
func (v Value) AsMatrix() ([][]float32, bool) { return v.mat, v.kind == KindMatrix }

// MatrixShape reports rows/cols for a Matrix value.
func (v Value) MatrixShape() (rows, cols int) {
	rows = len(v.mat)
	if rows > 0 {
		cols = len(v.mat[0])
	}
	return
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "Null"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return v.s
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindVector:
		return fmt.Sprintf("%v", v.vec)
	case KindMatrix:
		return fmt.Sprintf("%v", v.mat)
	default:
		return "<invalid value>"
	}
}

// Equal implements bit-exact equality: floats compare by raw bit
// pattern so NaN == NaN and a Value can safely be a map key via Hash.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return math.Float32bits(v.f) == math.Float32bits(o.f)
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindVector:
		if len(v.vec) != len(o.vec) {
			return false
		}
		for i := range v.vec {
			if math.Float32bits(v.vec[i]) != math.Float32bits(o.vec[i]) {
				return false
			}
		}
		return true
	case KindMatrix:
		rv, cv := v.MatrixShape()
		ro, co := o.MatrixShape()
		if rv != ro || cv != co {
			return false
		}
		for i := range v.mat {
			for j := range v.mat[i] {
				if math.Float32bits(v.mat[i][j]) != math.Float32bits(o.mat[i][j]) {
					return false
				}
			}
		}
		return true
	default:
		return false
	}
}

// Hash returns a hash consistent with Equal: it is built from the
// same bit-pattern encoding used by equality, never a textual float
// representation (which would let 0.1+0.2 and its rounded string
// diverge from the value it was computed from).
func (v Value) Hash() uint64 {
	h := xxhash.New()
	var buf [8]byte
	writeU64 := func(u uint64) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(u >> (8 * i))
		}
		h.Write(buf[:])
	}
	writeU64(uint64(v.kind))
	switch v.kind {
	case KindNull:
	case KindInt:
		writeU64(uint64(v.i))
	case KindFloat:
		writeU64(uint64(normalizeFloatBits(v.f)))
	case KindString:
		h.Write([]byte(v.s))
	case KindBool:
		if v.b {
			writeU64(1)
		} else {
			writeU64(0)
		}
	case KindVector:
		writeU64(uint64(len(v.vec)))
		for _, f := range v.vec {
			writeU64(uint64(normalizeFloatBits(f)))
		}
	case KindMatrix:
		r, c := v.MatrixShape()
		writeU64(uint64(r))
		writeU64(uint64(c))
		for _, row := range v.mat {
			for _, f := range row {
				writeU64(uint64(normalizeFloatBits(f)))
			}
		}
	}
	return h.Sum64()
}

// normalizeFloatBits maps -0.0 to the same bit pattern as +0.0 so
// that both hash identically (Equal still tells them apart); NaN keeps its
// distinguishing bits (it still participates in bit-exact equality
// above, just not in ordering).
func normalizeFloatBits(f float32) uint32 {
	if f == 0 {
		return 0
	}
	return math.Float32bits(f)
}

// Compare implements the ordering between values: Null
// sorts below everything; scalars compare within their own variant,
// with Int promoted to Float when compared across Int/Float; all
// other cross-variant or container comparisons are reported as
// incomparable via ok=false.
func Compare(a, b Value) (cmp int, ok bool) {
	if a.kind == KindNull && b.kind == KindNull {
		return 0, true
	}
	if a.kind == KindNull {
		return -1, true
	}
	if b.kind == KindNull {
		return 1, true
	}
	if isNumeric(a.kind) && isNumeric(b.kind) {
		af := asF64(a)
		bf := asF64(b)
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if a.kind != b.kind {
		return 0, false
	}
	switch a.kind {
	case KindString:
		switch {
		case a.s < b.s:
			return -1, true
		case a.s > b.s:
			return 1, true
		default:
			return 0, true
		}
	case KindBool:
		if a.b == b.b {
			return 0, true
		}
		if !a.b && b.b {
			return -1, true
		}
		return 1, true
	default:
		return 0, false
	}
}

func isNumeric(k Kind) bool { return k == KindInt || k == KindFloat }

func asF64(v Value) float64 {
	if i, ok := v.AsInt(); ok {
		return float64(i)
	}
	f, _ := v.AsFloat()
	return float64(f)
}
