package exec

import (
	"fmt"

	"vectordb/internal/dataset"
	"vectordb/internal/expr"
	"vectordb/internal/schema"
	"vectordb/internal/value"
)

// Aggregate groups child rows by GroupExpr (a single implicit group
// when empty) and computes one output column per AggrExpr. It is the
// hardest operator in the core (§4.8): Avg keeps a separate (sum,
// count) pair rather than deriving from the Sum slot, and an empty
// child input produces zero output rows rather than one row of
// nulls or zero.
type Aggregate struct {
	Input     Operator
	GroupExpr []expr.Expr
	AggrExpr  []expr.Expr
	OutSchema *schema.Schema
}

func (a *Aggregate) OutputSchema() *schema.Schema { return a.OutSchema }

// group holds one bucket's key (for re-emission) and one accumulator
// per AggrExpr, in declaration order.
type group struct {
	key   []value.Value
	accum []*accumulator
}

// accumulator holds the running state for one aggregate expression.
// sum/count are used by Sum and Avg (Avg keeps both; Sum only sum);
// Min/Max keep their running extreme in sum; count alone is used by
// Count.
type accumulator struct {
	fn    expr.AggFunc
	count int64
	sum   value.Value
	has   bool // whether sum has been initialized by a row yet
}

func (a *Aggregate) Execute(cat Catalog, ctx *Context) ([]dataset.Tuple, error) {
	rows, err := a.Input.Execute(cat, ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var order []*group
	buckets := map[uint64][]*group{}

	for _, row := range rows {
		key := make([]value.Value, len(a.GroupExpr))
		var keyHash uint64
		for i, ge := range a.GroupExpr {
			key[i] = expr.Eval(ge, row)
			keyHash = mixHash(keyHash, key[i].Hash())
		}
		g := findGroup(buckets, keyHash, key)
		if g == nil {
			g = &group{key: key, accum: make([]*accumulator, len(a.AggrExpr))}
			for i, ae := range a.AggrExpr {
				g.accum[i] = &accumulator{fn: ae.AggFunc()}
			}
			buckets[keyHash] = append(buckets[keyHash], g)
			order = append(order, g)
		}
		for i, ae := range a.AggrExpr {
			v := expr.Eval(*ae.Inner(), row)
			if err := g.accum[i].update(v, ctx); err != nil {
				return nil, fmt.Errorf("exec: aggregate %s: %w", ae.Name(), err)
			}
		}
	}

	out := make([]dataset.Tuple, 0, len(order))
	for _, g := range order {
		values := append([]value.Value(nil), g.key...)
		for _, acc := range g.accum {
			v, err := acc.finalize(ctx)
			if err != nil {
				return nil, fmt.Errorf("exec: aggregate finalize: %w", err)
			}
			values = append(values, v)
		}
		tup, err := dataset.NewTuple(a.OutSchema, values)
		if err != nil {
			return nil, fmt.Errorf("exec: aggregate output row: %w", err)
		}
		out = append(out, tup)
	}
	return out, nil
}

func mixHash(acc, h uint64) uint64 {
	// A hash_combine-style fold (golden-ratio constant plus shifts); collisions are resolved by the linear
	// Equal() scan in findGroup, same as the hash index.
	acc ^= h + 0x9e3779b97f4a7c15 + (acc << 6) + (acc >> 2)
	return acc
}

func findGroup(buckets map[uint64][]*group, h uint64, key []value.Value) *group {
	for _, g := range buckets[h] {
		if keysEqual(g.key, key) {
			return g
		}
	}
	return nil
}

func keysEqual(a, b []value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (acc *accumulator) update(v value.Value, ctx *Context) error {
	switch acc.fn {
	case expr.Count:
		acc.count++
		return nil
	case expr.Sum:
		return acc.accumulateSum(v, ctx)
	case expr.Avg:
		acc.count++
		return acc.accumulateSum(v, ctx)
	case expr.Min:
		return acc.accumulateMinMax(v, ctx, true)
	case expr.Max:
		return acc.accumulateMinMax(v, ctx, false)
	default:
		return fmt.Errorf("unknown aggregate function %q", acc.fn)
	}
}

func (acc *accumulator) accumulateSum(v value.Value, ctx *Context) error {
	if !acc.has {
		acc.sum = v
		acc.has = true
		return nil
	}
	sum, err := addValues(acc.sum, v, ctx)
	if err != nil {
		return err
	}
	acc.sum = sum
	return nil
}

func (acc *accumulator) accumulateMinMax(v value.Value, ctx *Context, isMin bool) error {
	if !acc.has {
		acc.sum = v
		acc.has = true
		return nil
	}
	m, err := minMaxValues(acc.sum, v, ctx, isMin)
	if err != nil {
		return err
	}
	acc.sum = m
	return nil
}

func (acc *accumulator) finalize(ctx *Context) (value.Value, error) {
	switch acc.fn {
	case expr.Count:
		return value.Int(acc.count), nil
	case expr.Sum, expr.Min, expr.Max:
		if !acc.has {
			return value.Null(), nil
		}
		return acc.sum, nil
	case expr.Avg:
		if acc.count == 0 {
			return value.Null(), nil
		}
		return divideByCount(acc.sum, acc.count, ctx)
	default:
		return value.Value{}, fmt.Errorf("unknown aggregate function %q", acc.fn)
	}
}

// addValues implements the Sum/Avg accumulator's element-wise add:
// int+int stays int; any float operand promotes to float; vectors
// and matrices add element-wise, shape-checked, using ctx's arena for
// the running-sum scratch buffer.
func addValues(a, b value.Value, ctx *Context) (value.Value, error) {
	if ai, aok := a.AsInt(); aok {
		if bi, bok := b.AsInt(); bok {
			return value.Int(ai + bi), nil
		}
	}
	af, aok := scalarF32(a)
	bf, bok := scalarF32(b)
	if aok && bok {
		return value.Float(af + bf), nil
	}
	if avec, ok := a.AsVector(); ok {
		if bvec, ok := b.AsVector(); ok {
			return combineVectors(avec, bvec, ctx, func(x, y float32) float32 { return x + y })
		}
	}
	if amat, ok := a.AsMatrix(); ok {
		if bmat, ok := b.AsMatrix(); ok {
			return combineMatrices(amat, bmat, ctx, func(x, y float32) float32 { return x + y })
		}
	}
	return value.Value{}, fmt.Errorf("cannot combine %s and %s", a.Kind(), b.Kind())
}

func minMaxValues(a, b value.Value, ctx *Context, isMin bool) (value.Value, error) {
	if avec, ok := a.AsVector(); ok {
		if bvec, ok := b.AsVector(); ok {
			return combineVectors(avec, bvec, ctx, pickFn(isMin))
		}
	}
	if amat, ok := a.AsMatrix(); ok {
		if bmat, ok := b.AsMatrix(); ok {
			return combineMatrices(amat, bmat, ctx, pickFn(isMin))
		}
	}
	cmp, ok := value.Compare(a, b)
	if !ok {
		return value.Value{}, fmt.Errorf("cannot compare %s and %s", a.Kind(), b.Kind())
	}
	if isMin == (cmp <= 0) {
		return a, nil
	}
	return b, nil
}

func pickFn(isMin bool) func(x, y float32) float32 {
	if isMin {
		return func(x, y float32) float32 {
			if x < y {
				return x
			}
			return y
		}
	}
	return func(x, y float32) float32 {
		if x > y {
			return x
		}
		return y
	}
}

// divideByCount finalizes an Avg accumulator: numeric sums always
// produce Float (even Avg(Int)); vector/matrix sums divide
// element-wise, keeping their container shape. The quotient is built
// in ctx's arena; value.Vector/value.Matrix copy it out, so the
// scratch buffer is free the moment this returns.
func divideByCount(sum value.Value, count int64, ctx *Context) (value.Value, error) {
	if vec, ok := sum.AsVector(); ok {
		out := ctx.Alloc(len(vec))
		for i, x := range vec {
			out[i] = x / float32(count)
		}
		return value.Vector(out), nil
	}
	if mat, ok := sum.AsMatrix(); ok {
		out := make([][]float32, len(mat))
		for i, row := range mat {
			r := ctx.Alloc(len(row))
			for j, x := range row {
				r[j] = x / float32(count)
			}
			out[i] = r
		}
		return value.Matrix(out)
	}
	f, ok := scalarF32(sum)
	if !ok {
		return value.Value{}, fmt.Errorf("cannot average %s", sum.Kind())
	}
	return value.Float(f / float32(count)), nil
}

func scalarF32(v value.Value) (float32, bool) {
	if i, ok := v.AsInt(); ok {
		return float32(i), true
	}
	if f, ok := v.AsFloat(); ok {
		return f, true
	}
	return 0, false
}

// combineVectors folds a and b element-wise using ctx's arena for the
// result buffer: the buffer is scratch, freed as soon as
// value.Vector copies it into the returned Value.
func combineVectors(a, b []float32, ctx *Context, f func(x, y float32) float32) (value.Value, error) {
	if len(a) != len(b) {
		return value.Value{}, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}
	out := ctx.Alloc(len(a))
	for i := range a {
		out[i] = f(a[i], b[i])
	}
	return value.Vector(out), nil
}

func combineMatrices(a, b [][]float32, ctx *Context, f func(x, y float32) float32) (value.Value, error) {
	if len(a) != len(b) {
		return value.Value{}, fmt.Errorf("matrix shape mismatch: %d vs %d rows", len(a), len(b))
	}
	out := make([][]float32, len(a))
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return value.Value{}, fmt.Errorf("matrix shape mismatch at row %d: %d vs %d cols", i, len(a[i]), len(b[i]))
		}
		row := ctx.Alloc(len(a[i]))
		for j := range a[i] {
			row[j] = f(a[i][j], b[i][j])
		}
		out[i] = row
	}
	return value.Matrix(out)
}
