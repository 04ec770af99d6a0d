package exec

import (
	"fmt"
	"sort"

	"vectordb/internal/dataset"
	"vectordb/internal/expr"
	"vectordb/internal/index"
	"vectordb/internal/schema"
	"vectordb/internal/tensor"
	"vectordb/internal/value"
)

// Catalog is the narrow surface an operator needs from a database
// instance: dataset lookup by name. *vectordb/internal/db.Engine
// satisfies this structurally, so this package never imports db
// (which instead imports exec to drive plan execution).
type Catalog interface {
	Dataset(name string) (*dataset.Dataset, error)
}

// Operator is the physical-plan node contract (§4.7): every operator
// can report its output schema and pull its rows against a catalog,
// given the scratch Context for the statement it belongs to (§4.9).
type Operator interface {
	OutputSchema() *schema.Schema
	Execute(cat Catalog, ctx *Context) ([]dataset.Tuple, error)
}

// evalRows materializes the rows of ds listed in rowIDs (every row
// when rowIDs is nil), evaluating lazy columns inline, per the contract shared by SeqScan, IndexScan, and
// VectorSearch.
func evalRows(ds *dataset.Dataset, rowIDs []int) ([]dataset.Tuple, error) {
	all := ds.Rows()
	sch := ds.Schema()
	lazyCols := make([]string, 0)
	for _, f := range sch.Fields() {
		if f.IsLazy {
			lazyCols = append(lazyCols, f.Name)
		}
	}
	pick := func(i int) (dataset.Tuple, error) {
		if len(lazyCols) == 0 {
			return all[i], nil
		}
		row := all[i].Clone()
		for _, name := range lazyCols {
			col, err := ds.GetColumn(name)
			if err != nil {
				return dataset.Tuple{}, err
			}
			idx := sch.IndexOf(name)
			if err := row.Set(idx, col[i]); err != nil {
				return dataset.Tuple{}, err
			}
		}
		return row, nil
	}
	if rowIDs == nil {
		out := make([]dataset.Tuple, len(all))
		for i := range all {
			r, err := pick(i)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	out := make([]dataset.Tuple, 0, len(rowIDs))
	for _, id := range rowIDs {
		r, err := pick(id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// SeqScan materializes every row of a dataset.
type SeqScan struct {
	DatasetName string
	Schema      *schema.Schema
}

func (s *SeqScan) OutputSchema() *schema.Schema { return s.Schema }

func (s *SeqScan) Execute(cat Catalog, ctx *Context) ([]dataset.Tuple, error) {
	ds, err := cat.Dataset(s.DatasetName)
	if err != nil {
		return nil, fmt.Errorf("exec: seq scan %q: %w", s.DatasetName, err)
	}
	return evalRows(ds, nil)
}

// IndexScan asks a named hash index for the row IDs matching eqValue
// and materializes only those rows. The planner substitutes this for
// a SeqScan+Filter pair when an eligible hash index exists (§4.6).
type IndexScan struct {
	DatasetName string
	Column      string
	EqValue     value.Value
	Schema      *schema.Schema
}

func (s *IndexScan) OutputSchema() *schema.Schema { return s.Schema }

func (s *IndexScan) Execute(cat Catalog, ctx *Context) ([]dataset.Tuple, error) {
	ds, err := cat.Dataset(s.DatasetName)
	if err != nil {
		return nil, fmt.Errorf("exec: index scan %q: %w", s.DatasetName, err)
	}
	idx, ok := ds.Index(s.Column)
	if !ok {
		return nil, fmt.Errorf("exec: index scan: no index on %q.%q", s.DatasetName, s.Column)
	}
	rowIDs, err := idx.LookupEq(s.EqValue)
	if err != nil {
		return nil, fmt.Errorf("exec: index scan on %q.%q: %w", s.DatasetName, s.Column, err)
	}
	return evalRows(ds, rowIDs)
}

// VectorSearch asks a named vector index for the top-K matches to
// Query and materializes those rows, in similarity order.
type VectorSearch struct {
	DatasetName string
	Column      string
	Query       *tensor.Tensor
	K           int
	Schema      *schema.Schema
}

func (s *VectorSearch) OutputSchema() *schema.Schema { return s.Schema }

func (s *VectorSearch) Execute(cat Catalog, ctx *Context) ([]dataset.Tuple, error) {
	ds, err := cat.Dataset(s.DatasetName)
	if err != nil {
		return nil, fmt.Errorf("exec: vector search %q: %w", s.DatasetName, err)
	}
	idx, ok := ds.Index(s.Column)
	if !ok || idx.Kind() != index.Vector {
		return nil, fmt.Errorf("exec: vector search requires a vector index on %q.%q", s.DatasetName, s.Column)
	}
	matches, err := idx.SearchKNN(s.Query, s.K)
	if err != nil {
		return nil, fmt.Errorf("exec: vector search on %q.%q: %w", s.DatasetName, s.Column, err)
	}
	rowIDs := make([]int, len(matches))
	for i, m := range matches {
		rowIDs[i] = m.RowID
	}
	return evalRows(ds, rowIDs)
}

// Filter drops rows for which Predicate evaluates false.
type Filter struct {
	Input     Operator
	Predicate expr.Expr
}

func (f *Filter) OutputSchema() *schema.Schema { return f.Input.OutputSchema() }

func (f *Filter) Execute(cat Catalog, ctx *Context) ([]dataset.Tuple, error) {
	rows, err := f.Input.Execute(cat, ctx)
	if err != nil {
		return nil, err
	}
	out := rows[:0:0]
	for _, r := range rows {
		if expr.EvalPredicate(f.Predicate, r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Projection rebuilds tuples under OutSchema, picking values by
// input-column index.
type Projection struct {
	Input     Operator
	OutSchema *schema.Schema
	Indices   []int
}

func (p *Projection) OutputSchema() *schema.Schema { return p.OutSchema }

func (p *Projection) Execute(cat Catalog, ctx *Context) ([]dataset.Tuple, error) {
	rows, err := p.Input.Execute(cat, ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dataset.Tuple, len(rows))
	for i, r := range rows {
		values := make([]value.Value, len(p.Indices))
		for j, idx := range p.Indices {
			values[j] = r.Value(idx)
		}
		nt, err := dataset.NewTuple(p.OutSchema, values)
		if err != nil {
			return nil, fmt.Errorf("exec: projection: %w", err)
		}
		out[i] = nt
	}
	return out, nil
}

// Limit takes the first N rows the child produces. Per §4.7/§9, the
// core does not early-terminate the child; it materializes fully and
// slices.
type Limit struct {
	Input Operator
	N     int
}

func (l *Limit) OutputSchema() *schema.Schema { return l.Input.OutputSchema() }

func (l *Limit) Execute(cat Catalog, ctx *Context) ([]dataset.Tuple, error) {
	rows, err := l.Input.Execute(cat, ctx)
	if err != nil {
		return nil, err
	}
	if l.N < len(rows) {
		rows = rows[:l.N]
	}
	return rows, nil
}

// Sort fully materializes the child and orders it by Column using
// the value total order; Nulls sort to the front ascending, to the
// back descending.
type Sort struct {
	Input     Operator
	Column    string
	Ascending bool
}

func (s *Sort) OutputSchema() *schema.Schema { return s.Input.OutputSchema() }

func (s *Sort) Execute(cat Catalog, ctx *Context) ([]dataset.Tuple, error) {
	rows, err := s.Input.Execute(cat, ctx)
	if err != nil {
		return nil, err
	}
	i := s.OutputSchema().IndexOf(s.Column)
	if i < 0 {
		return nil, fmt.Errorf("exec: sort: no such column %q", s.Column)
	}
	sorted := make([]dataset.Tuple, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(a, b int) bool {
		va, vb := sorted[a].Value(i), sorted[b].Value(i)
		if va.IsNull() || vb.IsNull() {
			if va.IsNull() && vb.IsNull() {
				return false
			}
			if s.Ascending {
				return va.IsNull()
			}
			return vb.IsNull()
		}
		cmp, ok := value.Compare(va, vb)
		if !ok {
			return false
		}
		if s.Ascending {
			return cmp < 0
		}
		return cmp > 0
	})
	return sorted, nil
}
