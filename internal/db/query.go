package db

import (
	"fmt"

	"vectordb/internal/dataset"
	"vectordb/internal/exec"
	"vectordb/internal/plan"
)

// instanceCatalog adapts one database Instance to exec.Catalog so the
// physical operator tree can resolve dataset names without reaching
// back through the Engine (and re-acquiring its mutex).
type instanceCatalog struct{ inst *Instance }

func (c instanceCatalog) Dataset(name string) (*dataset.Dataset, error) {
	d, err := c.inst.Datasets.GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	return d, nil
}

// ExecutePlan routes a logical plan through the planner and the
// pull-based executor against the active database, holding the
// engine-wide mutex for the duration of the statement (§5). It
// constructs one exec.Context per statement and drops it on return,
// per §4.9.
func (e *Engine) ExecutePlan(p plan.Plan) (*exec.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cat := instanceCatalog{inst: e.activeInstance()}
	ctx := exec.NewContext()
	defer ctx.Reset()
	result, err := exec.Run(p, cat, ctx)
	if err != nil {
		return nil, fmt.Errorf("db: execute plan: %w", err)
	}
	return result, nil
}
