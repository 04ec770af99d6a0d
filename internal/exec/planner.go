package exec

import (
	"fmt"

	"vectordb/internal/expr"
	"vectordb/internal/index"
	"vectordb/internal/plan"
)

// Build walks a logical plan bottom-up and produces a physical
// operator tree, applying one rule-based optimization (§4.6): a
// Filter{Scan, Column = Literal} pair becomes an IndexScan when the
// scanned dataset carries a hash index on that column; otherwise it
// becomes a SeqScan feeding a row-by-row Filter.
func Build(p plan.Plan, cat Catalog) (Operator, error) {
	switch node := p.(type) {
	case *plan.Scan:
		return buildScan(node)
	case *plan.Filter:
		return buildFilter(node, cat)
	case *plan.Project:
		return buildProject(node, cat)
	case *plan.Sort:
		return buildSort(node, cat)
	case *plan.Limit:
		return buildLimit(node, cat)
	case *plan.Aggregate:
		return buildAggregate(node, cat)
	case *plan.VectorSearch:
		return buildVectorSearch(node)
	default:
		return nil, fmt.Errorf("exec: unknown logical plan node %T", p)
	}
}

func buildScan(node *plan.Scan) (Operator, error) {
	return &SeqScan{DatasetName: node.DatasetName, Schema: node.DatasetSch}, nil
}

// eqFilterColumn reports the column and literal of a predicate
// shaped exactly as Binary(Column(c), "=", Literal(v)), the only
// shape eligible for index substitution.
func eqFilterColumn(predicate expr.Expr) (col string, lit expr.Expr, ok bool) {
	if predicate.Kind() != expr.KindBinary || predicate.Op() != expr.OpEq {
		return "", expr.Expr{}, false
	}
	left, right := *predicate.Left(), *predicate.Right()
	if left.Kind() == expr.KindColumn && right.Kind() == expr.KindLiteral {
		return left.ColumnName(), right, true
	}
	return "", expr.Expr{}, false
}

func buildFilter(node *plan.Filter, cat Catalog) (Operator, error) {
	if scanNode, ok := node.Input.(*plan.Scan); ok {
		if col, lit, ok := eqFilterColumn(node.Predicate); ok {
			ds, err := cat.Dataset(scanNode.DatasetName)
			if err == nil {
				if idx, found := ds.Index(col); found && idx.Kind() == index.Hash {
					return &IndexScan{
						DatasetName: scanNode.DatasetName,
						Column:      col,
						EqValue:     lit.LiteralValue(),
						Schema:      scanNode.DatasetSch,
					}, nil
				}
			}
		}
	}
	input, err := Build(node.Input, cat)
	if err != nil {
		return nil, err
	}
	return &Filter{Input: input, Predicate: node.Predicate}, nil
}

func buildProject(node *plan.Project, cat Catalog) (Operator, error) {
	input, err := Build(node.Input, cat)
	if err != nil {
		return nil, err
	}
	inSchema := input.OutputSchema()
	outSchema := inSchema.Project(node.Columns)
	indices := make([]int, 0, outSchema.Len())
	for _, f := range outSchema.Fields() {
		indices = append(indices, inSchema.IndexOf(f.Name))
	}
	return &Projection{Input: input, OutSchema: outSchema, Indices: indices}, nil
}

func buildSort(node *plan.Sort, cat Catalog) (Operator, error) {
	input, err := Build(node.Input, cat)
	if err != nil {
		return nil, err
	}
	return &Sort{Input: input, Column: node.Column, Ascending: node.Ascending}, nil
}

func buildLimit(node *plan.Limit, cat Catalog) (Operator, error) {
	input, err := Build(node.Input, cat)
	if err != nil {
		return nil, err
	}
	return &Limit{Input: input, N: node.N}, nil
}

func buildAggregate(node *plan.Aggregate, cat Catalog) (Operator, error) {
	input, err := Build(node.Input, cat)
	if err != nil {
		return nil, err
	}
	outSchema, err := node.Schema()
	if err != nil {
		return nil, fmt.Errorf("exec: aggregate schema: %w", err)
	}
	return &Aggregate{Input: input, GroupExpr: node.GroupExpr, AggrExpr: node.AggrExpr, OutSchema: outSchema}, nil
}

func buildVectorSearch(node *plan.VectorSearch) (Operator, error) {
	return &VectorSearch{
		DatasetName: node.Input.DatasetName,
		Column:      node.Column,
		Query:       node.Query,
		K:           node.K,
		Schema:      node.Input.DatasetSch,
	}, nil
}
