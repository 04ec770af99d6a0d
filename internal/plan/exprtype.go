package plan

import (
	"fmt"

	"vectordb/internal/expr"
	"vectordb/internal/schema"
	"vectordb/internal/value"
)

// ExprType infers the static Type of e against input schema s,
// following the same promotion rules expr.Eval applies at row time:
// int/int stays int, any float operand promotes to float, and
// matrix/matrix or matrix/scalar pairings propagate the matrix shape.
// It is used to type group-key and Sum/Min/Max aggregate output
// fields without evaluating a single row.
func ExprType(e expr.Expr, s *schema.Schema) (value.Type, error) {
	switch e.Kind() {
	case expr.KindColumn:
		f, ok := s.FieldByName(e.ColumnName())
		if !ok {
			return value.Type{}, fmt.Errorf("plan: no such column %q", e.ColumnName())
		}
		return f.Type, nil
	case expr.KindLiteral:
		return value.TypeOf(e.LiteralValue()), nil
	case expr.KindBinary:
		return binaryType(e, s)
	case expr.KindAggregate:
		return value.Type{}, fmt.Errorf("plan: aggregate expression is not valid in this position")
	default:
		return value.Type{}, fmt.Errorf("plan: unknown expression kind %d", e.Kind())
	}
}

func binaryType(e expr.Expr, s *schema.Schema) (value.Type, error) {
	if e.Op().IsComparison() {
		return value.TypeBool(), nil
	}
	lt, err := ExprType(*e.Left(), s)
	if err != nil {
		return value.Type{}, err
	}
	rt, err := ExprType(*e.Right(), s)
	if err != nil {
		return value.Type{}, err
	}
	switch {
	case lt.Kind() == value.KindMatrix:
		return lt, nil
	case rt.Kind() == value.KindMatrix:
		return rt, nil
	case lt.Kind() == value.KindFloat || rt.Kind() == value.KindFloat:
		return value.TypeFloat(), nil
	default:
		return value.TypeInt(), nil
	}
}
