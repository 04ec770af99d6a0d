package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectordb/internal/dataset"
	"vectordb/internal/expr"
	"vectordb/internal/plan"
	"vectordb/internal/schema"
	"vectordb/internal/value"
)

func TestContextAllocGrowsAndZeroes(t *testing.T) {
	ctx := NewContext()
	a := ctx.Alloc(4)
	for i := range a {
		a[i] = float32(i + 1)
	}
	b := ctx.Alloc(32) // forces the arena to grow past the first allocation
	for _, x := range b {
		assert.Equal(t, float32(0), x)
	}
	assert.Equal(t, []float32{1, 2, 3, 4}, a)
}

func TestContextResetClearsTrackedTemporaries(t *testing.T) {
	ctx := NewContext()
	ctx.TrackTensor(7)
	ctx.TrackDataset(3)
	_ = ctx.Alloc(16)
	require.Len(t, ctx.TempTensors(), 1)
	require.Len(t, ctx.TempDatasets(), 1)

	ctx.Reset()
	assert.Empty(t, ctx.TempTensors())
	assert.Empty(t, ctx.TempDatasets())
}

// TestAggregateVectorAvgUsesContextArena pins that Aggregate's
// vector-combine path runs against the Context passed into Execute,
// rather than a private buffer per call.
func TestAggregateVectorAvgUsesContextArena(t *testing.T) {
	sch := schema.MustNew([]schema.Field{
		{Name: "group", Type: value.TypeString()},
		{Name: "emb", Type: value.TypeVector(3)},
	})
	ds := dataset.New("embeds", sch)
	rows := []struct {
		group string
		emb   []float32
	}{
		{"a", []float32{1, 0, 0}},
		{"a", []float32{3, 0, 0}},
	}
	for _, r := range rows {
		tup, err := dataset.NewTuple(sch, []value.Value{value.String(r.group), value.Vector(r.emb)})
		require.NoError(t, err)
		require.NoError(t, ds.AppendRow(tup))
	}
	cat := fakeCatalog{"embeds": ds}
	scan := &plan.Scan{DatasetName: "embeds", DatasetSch: sch}
	agg := &plan.Aggregate{
		Input:     scan,
		GroupExpr: []expr.Expr{expr.Column("group")},
		AggrExpr:  []expr.Expr{expr.Aggregate(expr.Avg, expr.Column("emb"))},
	}

	ctx := NewContext()
	result, err := Run(agg, cat, ctx)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	avg, ok := result.Rows[0].Value(1).AsVector()
	require.True(t, ok)
	assert.Equal(t, []float32{2, 0, 0}, avg)
	// One Alloc(3) for the second row's running sum, one for the divide.
	assert.Equal(t, 6, ctx.arenaOffset)
}
