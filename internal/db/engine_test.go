package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectordb/internal/dataset"
	"vectordb/internal/expr"
	"vectordb/internal/plan"
	"vectordb/internal/schema"
	"vectordb/internal/value"
)

func TestDefaultDatabaseAlwaysPresentAndUndroppable(t *testing.T) {
	e := NewEngine(nil)
	assert.Equal(t, DefaultDatabase, e.ActiveName())
	assert.Contains(t, e.ListDatabases(), DefaultDatabase)
	assert.ErrorIs(t, e.DropDatabase(DefaultDatabase), ErrCannotDropDefault)
}

func TestCreateUseDropDatabase(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.CreateDatabase("analytics"))
	assert.ErrorIs(t, e.CreateDatabase("analytics"), ErrDatabaseExists)

	require.NoError(t, e.UseDatabase("analytics"))
	assert.Equal(t, "analytics", e.ActiveName())

	require.NoError(t, e.DropDatabase("analytics"))
	assert.Equal(t, DefaultDatabase, e.ActiveName())
	assert.ErrorIs(t, e.DropDatabase("analytics"), ErrDatabaseNotFound)
}

// TestDatabaseIsolation pins scenario S6: two databases with
// same-named datasets of different schemas never see each other's
// rows, and a same-named dataset in one database does not collide
// with the other's.
func TestDatabaseIsolation(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.CreateDatabase("a"))
	require.NoError(t, e.CreateDatabase("b"))

	schA := schema.MustNew([]schema.Field{
		{Name: "id", Type: value.TypeInt()},
		{Name: "email", Type: value.TypeString()},
	})
	schB := schema.MustNew([]schema.Field{
		{Name: "id", Type: value.TypeInt()},
		{Name: "name", Type: value.TypeString()},
	})

	require.NoError(t, e.UseDatabase("a"))
	require.NoError(t, e.CreateDataset("users", schA))
	tupA, err := dataset.NewTuple(schA, []value.Value{value.Int(1), value.String("a@x.com")})
	require.NoError(t, err)
	require.NoError(t, e.InsertRow("users", tupA))

	require.NoError(t, e.UseDatabase("b"))
	require.NoError(t, e.CreateDataset("users", schB))
	tupB, err := dataset.NewTuple(schB, []value.Value{value.Int(1), value.String("bob")})
	require.NoError(t, err)
	require.NoError(t, e.InsertRow("users", tupB))

	dsB, err := e.Dataset("users")
	require.NoError(t, err)
	_, hasEmail := dsB.Schema().FieldByName("email")
	assert.False(t, hasEmail)
	assert.Equal(t, 1, dsB.RowCount())

	require.NoError(t, e.UseDatabase("a"))
	dsA, err := e.Dataset("users")
	require.NoError(t, err)
	_, hasName := dsA.Schema().FieldByName("name")
	assert.False(t, hasName)
	assert.Equal(t, 1, dsA.RowCount())
}

// TestMissingDatasetErrorsTranslateToDBSentinel pins that every
// dataset-name-resolving operation reports the db package's own
// ErrDatasetNotFound rather than leaking internal/store's sentinel.
func TestMissingDatasetErrorsTranslateToDBSentinel(t *testing.T) {
	e := NewEngine(nil)
	_, err := e.Dataset("missing")
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	sch := schema.MustNew([]schema.Field{{Name: "id", Type: value.TypeInt()}})
	tup, err := dataset.NewTuple(sch, []value.Value{value.Int(1)})
	require.NoError(t, err)
	assert.ErrorIs(t, e.InsertRow("missing", tup), ErrDatasetNotFound)
	assert.ErrorIs(t, e.CreateIndex("missing", "id"), ErrDatasetNotFound)
}

func TestDuplicateDatasetNameFailsWithinOneDatabase(t *testing.T) {
	e := NewEngine(nil)
	sch := schema.MustNew([]schema.Field{{Name: "id", Type: value.TypeInt()}})
	require.NoError(t, e.CreateDataset("t", sch))
	assert.Error(t, e.CreateDataset("t", sch))
}

// TestInsertRowAutoBuildsIndexPastThreshold pins §6.5's
// index_auto_build_min_rows: once configured, InsertRow builds a hash
// index on scalar columns as soon as the dataset reaches the
// threshold, with no explicit CreateIndex call.
func TestInsertRowAutoBuildsIndexPastThreshold(t *testing.T) {
	e := NewEngine(nil)
	e.SetIndexAutoBuildMinRows(2)
	sch := schema.MustNew([]schema.Field{{Name: "id", Type: value.TypeInt()}})
	require.NoError(t, e.CreateDataset("t", sch))

	tup, err := dataset.NewTuple(sch, []value.Value{value.Int(1)})
	require.NoError(t, err)
	require.NoError(t, e.InsertRow("t", tup))
	d, err := e.Dataset("t")
	require.NoError(t, err)
	_, ok := d.Index("id")
	assert.False(t, ok, "below threshold: no auto-built index yet")

	tup2, err := dataset.NewTuple(sch, []value.Value{value.Int(2)})
	require.NoError(t, err)
	require.NoError(t, e.InsertRow("t", tup2))
	_, ok = d.Index("id")
	assert.True(t, ok, "at threshold: index should now exist")
}

// TestRecoverEmptyDatabases pins scenario S8: a storage directory with
// subdirectories a/ and b/ (no dataset files) registers empty database
// instances for a and b in addition to default.
func TestRecoverEmptyDatabases(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b"), 0o755))

	e := NewEngine(nil)
	require.NoError(t, e.RecoverEmptyDatabases(dir))

	names := e.ListDatabases()
	assert.Contains(t, names, DefaultDatabase)
	assert.Contains(t, names, "a")
	assert.Contains(t, names, "b")

	require.NoError(t, e.UseDatabase("a"))
	assert.Equal(t, "a", e.ActiveName())
}

// TestExecutePlanRoutesThroughQueryEngine is an end-to-end smoke test
// for the Engine.ExecutePlan entry point added on top of the façade.
func TestExecutePlanRoutesThroughQueryEngine(t *testing.T) {
	e := NewEngine(nil)
	sch := schema.MustNew([]schema.Field{
		{Name: "region", Type: value.TypeString()},
		{Name: "amount", Type: value.TypeInt()},
	})
	require.NoError(t, e.CreateDataset("sales", sch))
	for _, r := range []struct {
		region string
		amount int64
	}{{"N", 100}, {"S", 200}} {
		tup, err := dataset.NewTuple(sch, []value.Value{value.String(r.region), value.Int(r.amount)})
		require.NoError(t, err)
		require.NoError(t, e.InsertRow("sales", tup))
	}

	p := &plan.Aggregate{
		Input:     &plan.Scan{DatasetName: "sales", DatasetSch: sch},
		AggrExpr:  []expr.Expr{expr.Aggregate(expr.Sum, expr.Column("amount"))},
	}
	result, err := e.ExecutePlan(p)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	sum, _ := result.Rows[0].Value(0).AsInt()
	assert.Equal(t, int64(300), sum)
}
