package inmem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectordb/internal/dataset"
	"vectordb/internal/schema"
	"vectordb/internal/tensor"
	"vectordb/internal/value"
)

func TestDatasetSaveLoadDeleteList(t *testing.T) {
	store := New()
	ctx := context.Background()

	sch := schema.MustNew([]schema.Field{{Name: "a", Type: value.TypeInt()}})
	ds := dataset.New("t", sch)

	exists, err := store.DatasetExists(ctx, "t")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.SaveDataset(ctx, ds))

	loaded, err := store.LoadDataset(ctx, "t")
	require.NoError(t, err)
	assert.Same(t, ds, loaded)

	names, err := store.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, names)

	require.NoError(t, store.DeleteDataset(ctx, "t"))
	_, err = store.LoadDataset(ctx, "t")
	assert.Error(t, err)
}

func TestTensorSaveLoadDeleteList(t *testing.T) {
	store := New()
	ctx := context.Background()

	tn, err := tensor.FromData([]int{3}, []float32{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, store.SaveTensor(ctx, "v", tn))

	loaded, err := store.LoadTensor(ctx, "v")
	require.NoError(t, err)
	assert.Same(t, tn, loaded)

	names, err := store.ListTensors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, names)

	require.NoError(t, store.DeleteTensor(ctx, "v"))
	_, err = store.LoadTensor(ctx, "v")
	assert.Error(t, err)
}
