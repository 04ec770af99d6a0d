// Package expr implements the small expression language used by
// computed columns, filter predicates, and aggregates: column
// references, literals, binary arithmetic/comparison, and aggregate
// wrappers.
package expr

import "vectordb/internal/value"

// AggFunc names the five supported aggregate functions.
type AggFunc string

const (
	Sum   AggFunc = "SUM"
	Avg   AggFunc = "AVG"
	Count AggFunc = "COUNT"
	Min   AggFunc = "MIN"
	Max   AggFunc = "MAX"
)

// Op names the binary operators: four arithmetic, six comparison.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"

	OpEq  Op = "="
	OpNeq Op = "!="
	OpGt  Op = ">"
	OpLt  Op = "<"
	OpGte Op = ">="
	OpLte Op = "<="
)

func (op Op) IsComparison() bool {
	switch op {
	case OpEq, OpNeq, OpGt, OpLt, OpGte, OpLte:
		return true
	default:
		return false
	}
}

// Expr is the sum type of the expression language. Exactly one of
// the typed accessors below is meaningful for a given Expr, selected
// by Kind().
type Expr struct {
	kind ExprKind

	column  string
	literal value.Value
	left    *Expr
	op      Op
	right   *Expr
	aggFunc AggFunc
	inner   *Expr
}

type ExprKind int

const (
	KindColumn ExprKind = iota
	KindLiteral
	KindBinary
	KindAggregate
)

func Column(name string) Expr   { return Expr{kind: KindColumn, column: name} }
func Literal(v value.Value) Expr { return Expr{kind: KindLiteral, literal: v} }

func Binary(left Expr, op Op, right Expr) Expr {
	return Expr{kind: KindBinary, left: &left, op: op, right: &right}
}

// Aggregate wraps inner with an aggregate function. inner is typically
// a Column reference (or Literal(Int(1)) in spirit for COUNT(*), which
// callers express as Aggregate(Count, Column(anyExistingColumn))).
func Aggregate(fn AggFunc, inner Expr) Expr {
	return Expr{kind: KindAggregate, aggFunc: fn, inner: &inner}
}

func (e Expr) Kind() ExprKind { return e.kind }
func (e Expr) ColumnName() string { return e.column }
func (e Expr) LiteralValue() value.Value { return e.literal }
func (e Expr) Left() *Expr  { return e.left }
func (e Expr) Op() Op       { return e.op }
func (e Expr) Right() *Expr { return e.right }
func (e Expr) AggFunc() AggFunc { return e.aggFunc }
func (e Expr) Inner() *Expr     { return e.inner }

// Name returns the display name used for a column, literal, or
// aggregate expression: "col", "FUNC(col)", etc. Used to name
// Aggregate output fields per the spec's fixed "FUNC(col)" rule.
func (e Expr) Name() string {
	switch e.kind {
	case KindColumn:
		return e.column
	case KindAggregate:
		return string(e.aggFunc) + "(" + e.inner.Name() + ")"
	case KindLiteral:
		return e.literal.String()
	default:
		return "?"
	}
}
