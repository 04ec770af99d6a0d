package exec

import (
	"vectordb/internal/dataset"
	"vectordb/internal/plan"
	"vectordb/internal/schema"
)

// Result is a materialized query result: the schema the logical plan
// inferred plus every row the physical operator tree produced.
type Result struct {
	Schema *schema.Schema
	Rows   []dataset.Tuple
}

// Run builds a physical plan from p against cat and executes it end
// to end against ctx, the engine-level entry point a statement
// executor calls once per query. ctx may be nil, in which case Run
// allocates a throwaway one; callers that want to observe or reuse
// scratch state (or the engine's construct-and-drop-per-statement
// lifecycle, §4.9) should pass their own.
func Run(p plan.Plan, cat Catalog, ctx *Context) (*Result, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	op, err := Build(p, cat)
	if err != nil {
		return nil, err
	}
	rows, err := op.Execute(cat, ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Schema: op.OutputSchema(), Rows: rows}, nil
}
