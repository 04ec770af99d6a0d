package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectordb/internal/dataset"
	"vectordb/internal/expr"
	"vectordb/internal/plan"
	"vectordb/internal/schema"
	"vectordb/internal/tensor"
	"vectordb/internal/value"
)

// fakeCatalog is a minimal in-memory Catalog for tests, independent
// of the db package (which itself depends on exec).
type fakeCatalog map[string]*dataset.Dataset

func (f fakeCatalog) Dataset(name string) (*dataset.Dataset, error) {
	d, ok := f[name]
	if !ok {
		return nil, assertNotFound(name)
	}
	return d, nil
}

type notFoundErr string

func (e notFoundErr) Error() string { return "dataset not found: " + string(e) }

func assertNotFound(name string) error { return notFoundErr(name) }

func salesDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	sch := schema.MustNew([]schema.Field{
		{Name: "region", Type: value.TypeString()},
		{Name: "amount", Type: value.TypeInt()},
	})
	ds := dataset.New("sales", sch)
	rows := [][2]any{{"N", int64(100)}, {"S", int64(200)}, {"N", int64(150)}, {"S", int64(250)}}
	for _, r := range rows {
		tup, err := dataset.NewTuple(sch, []value.Value{value.String(r[0].(string)), value.Int(r[1].(int64))})
		require.NoError(t, err)
		require.NoError(t, ds.AppendRow(tup))
	}
	return ds
}

// TestGroupedAvg pins scenario S1.
func TestGroupedAvg(t *testing.T) {
	ds := salesDataset(t)
	cat := fakeCatalog{"sales": ds}
	scan := &plan.Scan{DatasetName: "sales", DatasetSch: ds.Schema()}
	agg := &plan.Aggregate{
		Input:     scan,
		GroupExpr: []expr.Expr{expr.Column("region")},
		AggrExpr:  []expr.Expr{expr.Aggregate(expr.Avg, expr.Column("amount"))},
	}
	result, err := Run(agg, cat, NewContext())
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	got := map[string]float32{}
	for _, row := range result.Rows {
		region, _ := row.Value(0).AsString()
		avg, _ := row.Value(1).AsFloat()
		got[region] = avg
	}
	assert.Equal(t, float32(125), got["N"])
	assert.Equal(t, float32(225), got["S"])
}

// TestAggregateEmptyInputYieldsNoRows pins the empty-input rule for
// both grouped and ungrouped aggregation (§8.2).
func TestAggregateEmptyInputYieldsNoRows(t *testing.T) {
	sch := schema.MustNew([]schema.Field{{Name: "amount", Type: value.TypeInt()}})
	ds := dataset.New("empty", sch)
	cat := fakeCatalog{"empty": ds}
	scan := &plan.Scan{DatasetName: "empty", DatasetSch: sch}

	ungrouped := &plan.Aggregate{Input: scan, AggrExpr: []expr.Expr{expr.Aggregate(expr.Sum, expr.Column("amount"))}}
	result, err := Run(ungrouped, cat, NewContext())
	require.NoError(t, err)
	assert.Empty(t, result.Rows)

	grouped := &plan.Aggregate{
		Input:     scan,
		GroupExpr: []expr.Expr{expr.Column("amount")},
		AggrExpr:  []expr.Expr{expr.Aggregate(expr.Count, expr.Column("amount"))},
	}
	result, err = Run(grouped, cat, NewContext())
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
}

func usersDataset(t *testing.T, withIndex bool) *dataset.Dataset {
	t.Helper()
	sch := schema.MustNew([]schema.Field{
		{Name: "id", Type: value.TypeInt()},
		{Name: "name", Type: value.TypeString()},
	})
	ds := dataset.New("users", sch)
	for i, name := range []string{"Alice", "Bob", "Alice"} {
		tup, err := dataset.NewTuple(sch, []value.Value{value.Int(int64(i)), value.String(name)})
		require.NoError(t, err)
		require.NoError(t, ds.AppendRow(tup))
	}
	if withIndex {
		require.NoError(t, ds.CreateIndex("name"))
	}
	return ds
}

// TestIndexSubstitutionEquivalence pins scenario S2: IndexScan and
// SeqScan+Filter return the same row set regardless of whether the
// index exists, and the planner picks IndexScan when it does.
func TestIndexSubstitutionEquivalence(t *testing.T) {
	predicate := expr.Binary(expr.Column("name"), expr.OpEq, expr.Literal(value.String("Alice")))

	withoutIndex := usersDataset(t, false)
	catNoIdx := fakeCatalog{"users": withoutIndex}
	scanNoIdx := &plan.Scan{DatasetName: "users", DatasetSch: withoutIndex.Schema()}
	opNoIdx, err := Build(&plan.Filter{Input: scanNoIdx, Predicate: predicate}, catNoIdx)
	require.NoError(t, err)
	_, isSeq := opNoIdx.(*Filter)
	assert.True(t, isSeq, "expected SeqScan+Filter without an index")
	rowsNoIdx, err := opNoIdx.Execute(catNoIdx, NewContext())
	require.NoError(t, err)

	withIndex := usersDataset(t, true)
	catIdx := fakeCatalog{"users": withIndex}
	scanIdx := &plan.Scan{DatasetName: "users", DatasetSch: withIndex.Schema()}
	opIdx, err := Build(&plan.Filter{Input: scanIdx, Predicate: predicate}, catIdx)
	require.NoError(t, err)
	_, isIndexScan := opIdx.(*IndexScan)
	assert.True(t, isIndexScan, "expected planner to substitute IndexScan")
	rowsIdx, err := opIdx.Execute(catIdx, NewContext())
	require.NoError(t, err)

	require.Len(t, rowsNoIdx, 2)
	require.Len(t, rowsIdx, 2)
	idsNoIdx := map[int64]bool{}
	for _, r := range rowsNoIdx {
		id, _ := r.Value(0).AsInt()
		idsNoIdx[id] = true
	}
	idsIdx := map[int64]bool{}
	for _, r := range rowsIdx {
		id, _ := r.Value(0).AsInt()
		idsIdx[id] = true
	}
	assert.Equal(t, idsNoIdx, idsIdx)
}

func docsDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	sch := schema.MustNew([]schema.Field{
		{Name: "id", Type: value.TypeInt()},
		{Name: "emb", Type: value.TypeVector(3)},
	})
	ds := dataset.New("docs", sch)
	vecs := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for i, v := range vecs {
		tup, err := dataset.NewTuple(sch, []value.Value{value.Int(int64(i + 1)), value.Vector(v)})
		require.NoError(t, err)
		require.NoError(t, ds.AppendRow(tup))
	}
	require.NoError(t, ds.CreateVectorIndex("emb"))
	return ds
}

// TestVectorSearchTopK pins scenario S5.
func TestVectorSearchTopK(t *testing.T) {
	ds := docsDataset(t)
	cat := fakeCatalog{"docs": ds}
	query, err := tensor.FromData([]int{3}, []float32{1, 0.1, 0})
	require.NoError(t, err)
	vs := &plan.VectorSearch{
		Input:  &plan.Scan{DatasetName: "docs", DatasetSch: ds.Schema()},
		Column: "emb",
		Query:  query,
		K:      1,
	}
	result, err := Run(vs, cat, NewContext())
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	id, _ := result.Rows[0].Value(0).AsInt()
	assert.Equal(t, int64(1), id)
}

// TestSortNullOrdering pins the boundary behavior in §8.3.
func TestSortNullOrdering(t *testing.T) {
	sch := schema.MustNew([]schema.Field{{Name: "v", Type: value.TypeInt(), Nullable: true}})
	ds := dataset.New("t", sch)
	for _, v := range []value.Value{value.Int(2), value.Null(), value.Int(1)} {
		tup, err := dataset.NewTuple(sch, []value.Value{v})
		require.NoError(t, err)
		require.NoError(t, ds.AppendRow(tup))
	}
	cat := fakeCatalog{"t": ds}
	scan := &plan.Scan{DatasetName: "t", DatasetSch: sch}

	asc, err := Run(&plan.Sort{Input: scan, Column: "v", Ascending: true}, cat, NewContext())
	require.NoError(t, err)
	assert.True(t, asc.Rows[0].Value(0).IsNull())

	desc, err := Run(&plan.Sort{Input: scan, Column: "v", Ascending: false}, cat, NewContext())
	require.NoError(t, err)
	assert.True(t, desc.Rows[len(desc.Rows)-1].Value(0).IsNull())
}
