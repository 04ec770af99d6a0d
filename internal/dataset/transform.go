package dataset

import (
	"fmt"
	"sort"

	"vectordb/internal/expr"
	"vectordb/internal/index"
	"vectordb/internal/value"
)

// newFromRows builds a new Dataset sharing d's id and metadata shell,
// bound to the same schema, holding rows, with empty indices and the
// given lazy registry, and recomputed stats. Per §4.3, every
// transform method produces a dataset this way; indices are never
// carried across a transform — a caller rebuilds them deliberately.
func (d *Dataset) newFromRows(rows []Tuple, lazy map[string]expr.Expr) *Dataset {
	out := &Dataset{
		id:       d.id,
		schema:   d.schema,
		rows:     rows,
		metadata: d.metadata,
		indices:  map[string]index.Index{},
		lazy:     lazy,
	}
	out.refreshStats()
	return out
}

// Filter returns a new dataset holding only rows for which predicate
// evaluates true. The lazy-expression registry is preserved.
func (d *Dataset) Filter(predicate expr.Expr) *Dataset {
	var rows []Tuple
	for _, r := range d.rows {
		if expr.EvalPredicate(predicate, r) {
			rows = append(rows, r)
		}
	}
	return d.newFromRows(rows, cloneLazy(d.lazy))
}

// Select returns a new dataset projected onto columns, in the
// requested order; unknown names are dropped. Only lazy-registry
// entries for selected columns are preserved.
func (d *Dataset) Select(columns []string) (*Dataset, error) {
	newSchema := d.schema.Project(columns)
	rows := make([]Tuple, len(d.rows))
	for i, r := range d.rows {
		values := make([]value.Value, 0, newSchema.Len())
		for _, f := range newSchema.Fields() {
			v, _ := r.Column(f.Name)
			values = append(values, v)
		}
		nt, err := NewTuple(newSchema, values)
		if err != nil {
			return nil, fmt.Errorf("dataset: select: %w", err)
		}
		rows[i] = nt
	}
	keep := map[string]bool{}
	for _, f := range newSchema.Fields() {
		keep[f.Name] = true
	}
	lazy := map[string]expr.Expr{}
	for name, e := range d.lazy {
		if keep[name] {
			lazy[name] = e
		}
	}
	out := &Dataset{
		id:       d.id,
		schema:   newSchema,
		rows:     rows,
		metadata: d.metadata,
		indices:  map[string]index.Index{},
		lazy:     lazy,
	}
	out.refreshStats()
	return out, nil
}

// Take returns a new dataset holding the first n rows (or fewer, if
// the dataset has fewer rows).
func (d *Dataset) Take(n int) *Dataset {
	if n > len(d.rows) {
		n = len(d.rows)
	}
	rows := make([]Tuple, n)
	copy(rows, d.rows[:n])
	return d.newFromRows(rows, cloneLazy(d.lazy))
}

// Skip returns a new dataset holding every row after the first n (or
// none, if n >= row count).
func (d *Dataset) Skip(n int) *Dataset {
	if n > len(d.rows) {
		n = len(d.rows)
	}
	rows := make([]Tuple, len(d.rows)-n)
	copy(rows, d.rows[n:])
	return d.newFromRows(rows, cloneLazy(d.lazy))
}

// SortBy returns a new dataset with rows ordered by column using the
// total order: Nulls sort to the front ascending, to the back
// descending.
func (d *Dataset) SortBy(column string, ascending bool) (*Dataset, error) {
	i := d.schema.IndexOf(column)
	if i < 0 {
		return nil, fmt.Errorf("dataset: sort: no such column %q", column)
	}
	rows := make([]Tuple, len(d.rows))
	copy(rows, d.rows)
	sort.SliceStable(rows, func(a, b int) bool {
		va, vb := rows[a].Value(i), rows[b].Value(i)
		if va.IsNull() || vb.IsNull() {
			if va.IsNull() && vb.IsNull() {
				return false
			}
			// Nulls at the front ascending, at the back descending.
			if ascending {
				return va.IsNull()
			}
			return vb.IsNull()
		}
		cmp, ok := value.Compare(va, vb)
		if !ok {
			return false
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
	return d.newFromRows(rows, cloneLazy(d.lazy)), nil
}

// Map returns a new dataset with every row transformed by fn. fn must
// return a Tuple bound to the same schema as its input (callers
// typically mutate a Clone() of the row and return it).
func (d *Dataset) Map(fn func(Tuple) (Tuple, error)) (*Dataset, error) {
	rows := make([]Tuple, len(d.rows))
	for i, r := range d.rows {
		nr, err := fn(r)
		if err != nil {
			return nil, fmt.Errorf("dataset: map: %w", err)
		}
		rows[i] = nr
	}
	return d.newFromRows(rows, cloneLazy(d.lazy)), nil
}

func cloneLazy(m map[string]expr.Expr) map[string]expr.Expr {
	cp := make(map[string]expr.Expr, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
