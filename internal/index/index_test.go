package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectordb/internal/tensor"
	"vectordb/internal/value"
)

func TestHashIndexLookupEq(t *testing.T) {
	h := NewHashIndex()
	require.NoError(t, h.Add(1, value.String("alice")))
	require.NoError(t, h.Add(2, value.String("bob")))
	require.NoError(t, h.Add(3, value.String("alice")))

	ids, err := h.LookupEq(value.String("alice"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 3}, ids)

	ids, err = h.LookupEq(value.String("carol"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestHashIndexSearchKNNUnsupported(t *testing.T) {
	h := NewHashIndex()
	_, err := h.SearchKNN(nil, 1)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestHashIndexCloneIsIndependent(t *testing.T) {
	h := NewHashIndex()
	require.NoError(t, h.Add(1, value.Int(5)))
	cp := h.Clone().(*HashIndex)
	require.NoError(t, cp.Add(2, value.Int(5)))

	ids, _ := h.LookupEq(value.Int(5))
	assert.Equal(t, []int{1}, ids, "cloning must not mutate the original")
}

func TestVectorIndexLookupEqUnsupported(t *testing.T) {
	v := NewVectorIndex()
	_, err := v.LookupEq(value.Int(1))
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestVectorIndexSearchKNNTopK(t *testing.T) {
	v := NewVectorIndex()
	require.NoError(t, v.Add(1, value.Vector([]float32{1, 0, 0})))
	require.NoError(t, v.Add(2, value.Vector([]float32{0, 1, 0})))
	require.NoError(t, v.Add(3, value.Vector([]float32{0, 0, 1})))

	query, err := tensor.FromData([]int{3}, []float32{1, 0.1, 0})
	require.NoError(t, err)

	matches, err := v.SearchKNN(query, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].RowID)
}

func TestVectorIndexSearchKNNShapeMismatchFails(t *testing.T) {
	v := NewVectorIndex()
	require.NoError(t, v.Add(1, value.Vector([]float32{1, 0, 0})))

	query, err := tensor.FromData([]int{2}, []float32{1, 0})
	require.NoError(t, err)

	_, err = v.SearchKNN(query, 1)
	require.Error(t, err)
}

func TestNewUnknownKindFails(t *testing.T) {
	_, err := New(Kind("bogus"))
	require.Error(t, err)
}
