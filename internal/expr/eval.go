package expr

import (
	"fmt"

	"vectordb/internal/value"
)

// Row is the minimal surface an expression evaluator needs from a
// tuple: column lookup by name. Decoupling from the concrete Tuple
// type (defined in package dataset) avoids an import cycle, since
// dataset's lazy-column registry holds Expr values.
type Row interface {
	Column(name string) (value.Value, bool)
}

// Eval evaluates e against row, applying the arithmetic promotion
// rules: int/int stays int (integer division; div by zero -> Null);
// any float operand promotes the result to float; matrix/matrix is
// element-wise (shape mismatch -> Null); matrix/scalar broadcasts the
// scalar; every other operand pairing -> Null. Eval never returns an
// error: Aggregate nodes and unknown expression kinds also evaluate
// to Null.
func Eval(e Expr, row Row) value.Value {
	switch e.Kind() {
	case KindColumn:
		v, ok := row.Column(e.ColumnName())
		if !ok {
			return value.Null()
		}
		return v
	case KindLiteral:
		return e.LiteralValue()
	case KindBinary:
		l := Eval(*e.Left(), row)
		r := Eval(*e.Right(), row)
		if e.Op().IsComparison() {
			return value.Bool(compareOp(l, e.Op(), r))
		}
		return arith(l, e.Op(), r)
	case KindAggregate:
		// Aggregates are only meaningful under the aggregation
		// executor, which evaluates Inner() per row itself; a bare
		// Eval of an Aggregate node has no row-level meaning.
		return value.Null()
	default:
		return value.Null()
	}
}

// EvalPredicate evaluates a top-level Binary comparison against row,
// comparing operands via the total order and returning false on any
// incomparable pairing (including containers, which are not
// orderable).
func EvalPredicate(e Expr, row Row) bool {
	if e.Kind() != KindBinary || !e.Op().IsComparison() {
		return false
	}
	l := Eval(*e.Left(), row)
	r := Eval(*e.Right(), row)
	return compareOp(l, e.Op(), r)
}

func compareOp(l value.Value, op Op, r value.Value) bool {
	cmp, ok := value.Compare(l, r)
	if !ok {
		return false
	}
	switch op {
	case OpEq:
		return cmp == 0
	case OpNeq:
		return cmp != 0
	case OpGt:
		return cmp > 0
	case OpLt:
		return cmp < 0
	case OpGte:
		return cmp >= 0
	case OpLte:
		return cmp <= 0
	default:
		return false
	}
}

func arith(l value.Value, op Op, r value.Value) value.Value {
	lm, lmok := l.AsMatrix()
	rm, rmok := r.AsMatrix()
	switch {
	case lmok && rmok:
		return matrixMatrix(lm, op, rm)
	case lmok && isScalarNumeric(r):
		return matrixScalar(lm, op, scalarF32(r), false)
	case rmok && isScalarNumeric(l):
		return matrixScalar(rm, op, scalarF32(l), true)
	}

	li, liok := l.AsInt()
	ri, riok := r.AsInt()
	if liok && riok {
		return intArith(li, op, ri)
	}

	lf, lfok := asFloatOperand(l)
	rf, rfok := asFloatOperand(r)
	if lfok && rfok {
		return floatArith(lf, op, rf)
	}

	return value.Null()
}

func isScalarNumeric(v value.Value) bool {
	_, iok := v.AsInt()
	_, fok := v.AsFloat()
	return iok || fok
}

func scalarF32(v value.Value) float32 {
	if i, ok := v.AsInt(); ok {
		return float32(i)
	}
	f, _ := v.AsFloat()
	return f
}

func asFloatOperand(v value.Value) (float32, bool) {
	if i, ok := v.AsInt(); ok {
		return float32(i), true
	}
	if f, ok := v.AsFloat(); ok {
		return f, true
	}
	return 0, false
}

func intArith(l int64, op Op, r int64) value.Value {
	switch op {
	case OpAdd:
		return value.Int(l + r)
	case OpSub:
		return value.Int(l - r)
	case OpMul:
		return value.Int(l * r)
	case OpDiv:
		if r == 0 {
			return value.Null()
		}
		return value.Int(l / r)
	default:
		return value.Null()
	}
}

func floatArith(l float32, op Op, r float32) value.Value {
	switch op {
	case OpAdd:
		return value.Float(l + r)
	case OpSub:
		return value.Float(l - r)
	case OpMul:
		return value.Float(l * r)
	case OpDiv:
		if r == 0 {
			return value.Null()
		}
		return value.Float(l / r)
	default:
		return value.Null()
	}
}

func matrixMatrix(l [][]float32, op Op, r [][]float32) value.Value {
	if len(l) != len(r) {
		return value.Null()
	}
	out := make([][]float32, len(l))
	for i := range l {
		if len(l[i]) != len(r[i]) {
			return value.Null()
		}
		row := make([]float32, len(l[i]))
		for j := range l[i] {
			row[j] = applyScalar(l[i][j], op, r[i][j])
		}
		out[i] = row
	}
	v, err := value.Matrix(out)
	if err != nil {
		return value.Null()
	}
	return v
}

func matrixScalar(m [][]float32, op Op, s float32, scalarIsLeft bool) value.Value {
	out := make([][]float32, len(m))
	for i := range m {
		row := make([]float32, len(m[i]))
		for j := range m[i] {
			if scalarIsLeft {
				row[j] = applyScalar(s, op, m[i][j])
			} else {
				row[j] = applyScalar(m[i][j], op, s)
			}
		}
		out[i] = row
	}
	v, err := value.Matrix(out)
	if err != nil {
		return value.Null()
	}
	return v
}

func applyScalar(l float32, op Op, r float32) float32 {
	switch op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpMul:
		return l * r
	case OpDiv:
		if r == 0 {
			return 0
		}
		return l / r
	default:
		return 0
	}
}

// ValidateAggregate reports an error if e is not a well-formed
// Aggregate expression (used by the logical plan / planner to reject
// malformed Aggregate lists early).
func ValidateAggregate(e Expr) error {
	if e.Kind() != KindAggregate {
		return fmt.Errorf("expr: expected Aggregate expression, got kind %d", e.Kind())
	}
	return nil
}
