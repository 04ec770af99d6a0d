package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectordb/internal/expr"
	"vectordb/internal/index"
	"vectordb/internal/schema"
	"vectordb/internal/value"
)

func sampleSchema() *schema.Schema {
	return schema.MustNew([]schema.Field{
		{Name: "a", Type: value.TypeInt()},
		{Name: "b", Type: value.TypeInt()},
	})
}

func mustAppend(t *testing.T, d *Dataset, vals ...value.Value) {
	t.Helper()
	tup, err := NewTuple(d.Schema(), vals)
	require.NoError(t, err)
	require.NoError(t, d.AppendRow(tup))
}

func TestAppendRowRejectsForeignSchema(t *testing.T) {
	d := New("t", sampleSchema())
	foreign := schema.MustNew([]schema.Field{{Name: "a", Type: value.TypeInt()}, {Name: "b", Type: value.TypeInt()}})
	tup, err := NewTuple(foreign, []value.Value{value.Int(1), value.Int(2)})
	require.NoError(t, err)
	err = d.AppendRow(tup)
	require.Error(t, err, "row schema must match dataset schema by pointer identity")
}

func TestRowCountInvariant(t *testing.T) {
	d := New("t", sampleSchema())
	mustAppend(t, d, value.Int(1), value.Int(2))
	mustAppend(t, d, value.Int(3), value.Int(4))
	assert.Equal(t, 2, d.RowCount())
	assert.Equal(t, 2, d.Metadata().RowCount)
}

func TestAutoBuildIndexesSkipsBelowThresholdAndVectorColumns(t *testing.T) {
	sch := schema.MustNew([]schema.Field{
		{Name: "a", Type: value.TypeInt()},
		{Name: "emb", Type: value.TypeVector(2)},
	})
	d := New("t", sch)
	mustAppend(t, d, value.Int(1), value.Vector([]float32{1, 0}))

	require.NoError(t, d.AutoBuildIndexes(5))
	_, ok := d.Index("a")
	assert.False(t, ok, "below threshold: no index should be built")

	require.NoError(t, d.AutoBuildIndexes(1))
	idx, ok := d.Index("a")
	assert.True(t, ok, "at/above threshold: scalar column gets a hash index")
	assert.Equal(t, index.Hash, idx.Kind())
	_, hasVec := d.Index("emb")
	assert.False(t, hasVec, "vector columns are never auto-indexed")
}

func TestAutoBuildIndexesDisabledAtZero(t *testing.T) {
	d := New("t", sampleSchema())
	mustAppend(t, d, value.Int(1), value.Int(2))
	require.NoError(t, d.AutoBuildIndexes(0))
	_, ok := d.Index("a")
	assert.False(t, ok)
}

func TestAutoBuildIndexesLeavesExistingIndexAlone(t *testing.T) {
	d := New("t", sampleSchema())
	mustAppend(t, d, value.Int(1), value.Int(2))
	require.NoError(t, d.CreateIndex("a"))
	before, _ := d.Index("a")
	require.NoError(t, d.AutoBuildIndexes(1))
	after, _ := d.Index("a")
	assert.Same(t, before, after, "the index already on a is not rebuilt")
	_, ok := d.Index("b")
	assert.True(t, ok, "auto-build still covers untouched scalar columns")
}

func TestAddColumnRewritesRows(t *testing.T) {
	d := New("t", sampleSchema())
	mustAppend(t, d, value.Int(1), value.Int(2))
	err := d.AddColumn(schema.Field{Name: "c", Type: value.TypeString()}, value.String("x"))
	require.NoError(t, err)
	rows := d.Rows()
	require.Equal(t, 3, d.Schema().Len())
	v, ok := rows[0].Column("c")
	require.True(t, ok)
	assert.Equal(t, value.String("x"), v)
}

func TestLazyColumnSemantics(t *testing.T) {
	d := New("t", sampleSchema())
	mustAppend(t, d, value.Int(1), value.Int(2))
	mustAppend(t, d, value.Int(3), value.Int(4))

	e := expr.Binary(expr.Column("a"), expr.OpAdd, expr.Column("b"))
	require.NoError(t, d.AddComputedColumn("c", value.TypeInt(), e, true))

	col, err := d.GetColumn("c")
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Int(3), value.Int(7)}, col)

	// Storage still holds Null placeholders.
	rows := d.Rows()
	raw, _ := rows[0].Column("c")
	assert.True(t, raw.IsNull())

	require.NoError(t, d.MaterializeLazyColumns())
	f, _ := d.Schema().FieldByName("c")
	assert.False(t, f.IsLazy)
	rows = d.Rows()
	materialized, _ := rows[0].Column("c")
	assert.Equal(t, value.Int(3), materialized)
}

func TestEagerComputedColumnIsNonNullable(t *testing.T) {
	d := New("t", sampleSchema())
	mustAppend(t, d, value.Int(1), value.Int(2))
	e := expr.Binary(expr.Column("a"), expr.OpAdd, expr.Column("b"))
	require.NoError(t, d.AddComputedColumn("c", value.TypeInt(), e, false))
	f, _ := d.Schema().FieldByName("c")
	assert.False(t, f.Nullable)
	assert.False(t, f.IsLazy)
	col, err := d.GetColumn("c")
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), col[0])
}

func TestFilterPreservesLazyRegistry(t *testing.T) {
	d := New("t", sampleSchema())
	mustAppend(t, d, value.Int(1), value.Int(2))
	mustAppend(t, d, value.Int(5), value.Int(5))
	require.NoError(t, d.AddComputedColumn("c", value.TypeInt(), expr.Binary(expr.Column("a"), expr.OpAdd, expr.Column("b")), true))

	filtered := d.Filter(expr.Binary(expr.Column("a"), expr.OpGt, expr.Literal(value.Int(2))))
	assert.Equal(t, 1, filtered.RowCount())
	col, err := filtered.GetColumn("c")
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Int(10)}, col)
}

func TestTransformsProduceEmptyIndices(t *testing.T) {
	d := New("t", sampleSchema())
	mustAppend(t, d, value.Int(1), value.Int(2))
	require.NoError(t, d.CreateIndex("a"))
	assert.Len(t, d.Indices(), 1)

	filtered := d.Filter(expr.Binary(expr.Column("a"), expr.OpGte, expr.Literal(value.Int(0))))
	assert.Empty(t, filtered.Indices(), "transforms must not carry indices forward")
}

func TestSortByNullsFrontAscendingBackDescending(t *testing.T) {
	s := schema.MustNew([]schema.Field{{Name: "v", Type: value.TypeInt(), Nullable: true}})
	d := New("t", s)
	mustAppend(t, d, value.Int(2))
	mustAppend(t, d, value.Null())
	mustAppend(t, d, value.Int(1))

	asc, err := d.SortBy("v", true)
	require.NoError(t, err)
	rows := asc.Rows()
	v0, _ := rows[0].Column("v")
	assert.True(t, v0.IsNull())

	desc, err := d.SortBy("v", false)
	require.NoError(t, err)
	rows = desc.Rows()
	vLast, _ := rows[len(rows)-1].Column("v")
	assert.True(t, vLast.IsNull())
}

func TestSelectDropsUnselectedLazyEntries(t *testing.T) {
	d := New("t", sampleSchema())
	mustAppend(t, d, value.Int(1), value.Int(2))
	require.NoError(t, d.AddComputedColumn("c", value.TypeInt(), expr.Binary(expr.Column("a"), expr.OpAdd, expr.Column("b")), true))

	projected, err := d.Select([]string{"a"})
	require.NoError(t, err)
	_, err = projected.GetColumn("c")
	require.Error(t, err, "c was dropped by the projection")
}
