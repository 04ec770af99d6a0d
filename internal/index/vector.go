package index

import (
	"fmt"
	"sort"

	"vectordb/internal/kernels"
	"vectordb/internal/tensor"
	"vectordb/internal/value"
)

type vectorEntry struct {
	rowID int
	t     *tensor.Tensor
}

// VectorIndex stores (rowID, tensor) pairs and answers brute-force
// cosine-similarity k-NN queries. It does not support LookupEq.
type VectorIndex struct {
	entries []vectorEntry
}

// NewVectorIndex returns an empty vector index.
func NewVectorIndex() *VectorIndex { return &VectorIndex{} }

func (v *VectorIndex) Kind() Kind { return Vector }

// Add stores rowID's embedding. val must be a Vector value.
func (v *VectorIndex) Add(rowID int, val value.Value) error {
	vec, ok := val.AsVector()
	if !ok {
		return fmt.Errorf("index: vector index requires Vector values, got %s", val.Kind())
	}
	t, err := tensor.FromData([]int{len(vec)}, vec)
	if err != nil {
		return err
	}
	v.entries = append(v.entries, vectorEntry{rowID: rowID, t: t})
	return nil
}

func (v *VectorIndex) LookupEq(val value.Value) ([]int, error) {
	return nil, fmt.Errorf("index: vector index LookupEq: %w", ErrUnsupported)
}

// SearchKNN computes cosine similarity of query against every stored
// vector and returns the top k, sorted descending by score.
func (v *VectorIndex) SearchKNN(query *tensor.Tensor, k int) ([]Match, error) {
	matches := make([]Match, 0, len(v.entries))
	for _, e := range v.entries {
		score, err := kernels.CosineSimilarity1D(query, e.t)
		if err != nil {
			return nil, fmt.Errorf("index: vector search against row %d: %w", e.rowID, err)
		}
		matches = append(matches, Match{RowID: e.rowID, Score: score})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func (v *VectorIndex) Clone() Index {
	cp := &VectorIndex{entries: make([]vectorEntry, len(v.entries))}
	copy(cp.entries, v.entries)
	return cp
}
