// Package plan implements the logical plan (§4.5): a declarative,
// execution-strategy-independent tree of relational nodes, plus the
// schema-inference rules that let a caller know a query's output
// shape before any row is materialized.
package plan

import (
	"fmt"

	"vectordb/internal/expr"
	"vectordb/internal/schema"
	"vectordb/internal/tensor"
	"vectordb/internal/value"
)

// Kind identifies which logical node variant a Plan value is.
type Kind int

const (
	KindScan Kind = iota
	KindFilter
	KindProject
	KindSort
	KindLimit
	KindAggregate
	KindVectorSearch
)

// Plan is the sum type of logical-plan nodes. Every variant can
// report the schema of the rows it would produce, without executing.
type Plan interface {
	Kind() Kind
	Schema() (*schema.Schema, error)
}

// Scan reads every row of a named dataset. The frontend supplies the
// dataset's current schema at construction time (it already resolved
// the dataset to build this node), so Schema() never needs to consult
// a catalog.
type Scan struct {
	DatasetName string
	DatasetSch  *schema.Schema
}

func (s *Scan) Kind() Kind                       { return KindScan }
func (s *Scan) Schema() (*schema.Schema, error)  { return s.DatasetSch, nil }

// Filter keeps rows for which Predicate evaluates true. Output schema
// is unchanged from the input.
type Filter struct {
	Input     Plan
	Predicate expr.Expr
}

func (f *Filter) Kind() Kind                      { return KindFilter }
func (f *Filter) Schema() (*schema.Schema, error) { return f.Input.Schema() }

// Project narrows the input to the named columns, in request order;
// unknown names are dropped.
type Project struct {
	Input   Plan
	Columns []string
}

func (p *Project) Kind() Kind { return KindProject }

func (p *Project) Schema() (*schema.Schema, error) {
	in, err := p.Input.Schema()
	if err != nil {
		return nil, err
	}
	return in.Project(p.Columns), nil
}

// Sort orders the input by one column. Output schema is unchanged.
type Sort struct {
	Input     Plan
	Column    string
	Ascending bool
}

func (s *Sort) Kind() Kind                      { return KindSort }
func (s *Sort) Schema() (*schema.Schema, error) { return s.Input.Schema() }

// Limit caps the input to the first N rows. Output schema is
// unchanged.
type Limit struct {
	Input Plan
	N     int
}

func (l *Limit) Kind() Kind                      { return KindLimit }
func (l *Limit) Schema() (*schema.Schema, error) { return l.Input.Schema() }

// Aggregate groups the input by GroupExpr (a single implicit group
// when empty) and computes one output column per AggrExpr, each of
// which must be an expr.Aggregate node.
type Aggregate struct {
	Input     Plan
	GroupExpr []expr.Expr
	AggrExpr  []expr.Expr
}

func (a *Aggregate) Kind() Kind { return KindAggregate }

// Schema infers the output schema per §4.5: group-key fields first
// (typed from the input schema), then one field per aggregate named
// "FUNC(col)"; Count is always Int, Avg is Float over scalars and
// keeps the inner Vector/Matrix type over containers, Sum/Min/Max
// inherit the inner expression's type (vector/matrix dimensions
// propagate).
func (a *Aggregate) Schema() (*schema.Schema, error) {
	in, err := a.Input.Schema()
	if err != nil {
		return nil, err
	}
	var fields []schema.Field
	for _, ge := range a.GroupExpr {
		t, err := ExprType(ge, in)
		if err != nil {
			return nil, fmt.Errorf("plan: aggregate group key %q: %w", ge.Name(), err)
		}
		fields = append(fields, schema.Field{Name: ge.Name(), Type: t})
	}
	for _, ae := range a.AggrExpr {
		if err := expr.ValidateAggregate(ae); err != nil {
			return nil, fmt.Errorf("plan: aggregate list: %w", err)
		}
		var t value.Type
		switch ae.AggFunc() {
		case expr.Count:
			t = value.TypeInt()
		case expr.Avg:
			t = value.TypeFloat()
			if inner, err := ExprType(*ae.Inner(), in); err == nil && (inner.Kind() == value.KindVector || inner.Kind() == value.KindMatrix) {
				t = inner
			}
		default: // Sum, Min, Max
			t, err = ExprType(*ae.Inner(), in)
			if err != nil {
				return nil, fmt.Errorf("plan: aggregate %s: %w", ae.Name(), err)
			}
		}
		fields = append(fields, schema.Field{Name: ae.Name(), Type: t})
	}
	return schema.New(fields)
}

// VectorSearch performs a top-k similarity search on Column, which
// requires a Vector index. Per §4.6, the core only supports
// VectorSearch directly over a Scan; Input is typed accordingly so
// that composing it under a Filter/Project is a compile-time
// impossibility rather than a runtime check.
type VectorSearch struct {
	Input  *Scan
	Column string
	Query  *tensor.Tensor
	K      int
}

func (v *VectorSearch) Kind() Kind                      { return KindVectorSearch }
func (v *VectorSearch) Schema() (*schema.Schema, error) { return v.Input.Schema() }
