package value

import "fmt"

// Type describes the shape a Value is expected to have: a scalar
// kind, or a Vector/Matrix with fixed dimensions. The zero Type is
// invalid; use the constructors below.
type Type struct {
	kind Kind
	dim  int // Vector length.
	rows int // Matrix rows.
	cols int // Matrix cols.
}

func TypeInt() Type    { return Type{kind: KindInt} }
func TypeFloat() Type  { return Type{kind: KindFloat} }
func TypeString() Type { return Type{kind: KindString} }
func TypeBool() Type   { return Type{kind: KindBool} }
func TypeNull() Type   { return Type{kind: KindNull} }

func TypeVector(dim int) Type         { return Type{kind: KindVector, dim: dim} }
func TypeMatrix(rows, cols int) Type  { return Type{kind: KindMatrix, rows: rows, cols: cols} }

func (t Type) Kind() Kind { return t.kind }
func (t Type) Dim() int   { return t.dim }
func (t Type) Rows() int  { return t.rows }
func (t Type) Cols() int  { return t.cols }

func (t Type) String() string {
	switch t.kind {
	case KindVector:
		return fmt.Sprintf("Vector(%d)", t.dim)
	case KindMatrix:
		return fmt.Sprintf("Matrix(%d,%d)", t.rows, t.cols)
	default:
		return t.kind.String()
	}
}

func (t Type) Equal(o Type) bool {
	return t.kind == o.kind && t.dim == o.dim && t.rows == o.rows && t.cols == o.cols
}

// Matches reports whether v conforms to t. Null matches any
// descriptor only when the caller has already established the field
// is nullable; this function alone does not consult nullability.
func (t Type) Matches(v Value) bool {
	if v.Kind() == KindNull {
		return true
	}
	if v.Kind() != t.kind {
		return false
	}
	switch t.kind {
	case KindVector:
		vec, _ := v.AsVector()
		return len(vec) == t.dim
	case KindMatrix:
		r, c := v.MatrixShape()
		return r == t.rows && c == t.cols
	default:
		return true
	}
}

// TypeOf infers the most specific Type for a concrete, non-null Value.
func TypeOf(v Value) Type {
	switch v.Kind() {
	case KindInt:
		return TypeInt()
	case KindFloat:
		return TypeFloat()
	case KindString:
		return TypeString()
	case KindBool:
		return TypeBool()
	case KindVector:
		vec, _ := v.AsVector()
		return TypeVector(len(vec))
	case KindMatrix:
		r, c := v.MatrixShape()
		return TypeMatrix(r, c)
	default:
		return TypeNull()
	}
}
