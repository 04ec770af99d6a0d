package index

import (
	"fmt"
	"math"

	roaring "github.com/RoaringBitmap/roaring/v2"

	"vectordb/internal/tensor"
	"vectordb/internal/value"
)

// HashIndex maps a canonicalized Value key to the set of row IDs
// holding that value. Keys are derived from the value's bit-pattern
// hash (see value.Value.Hash), never a textual float representation,
// so 0.1+0.2 and its rounded decimal string cannot collide or
// silently diverge.
type HashIndex struct {
	// values retains one representative Value per bucket so that
	// hash collisions across distinct values can be told apart.
	values map[uint64][]value.Value
	ids    map[uint64][]*roaring.Bitmap
}

// NewHashIndex returns an empty hash index.
func NewHashIndex() *HashIndex {
	return &HashIndex{
		values: make(map[uint64][]value.Value),
		ids:    make(map[uint64][]*roaring.Bitmap),
	}
}

func (h *HashIndex) Kind() Kind { return Hash }

// Add indexes rowID under v. A Float NaN is rejected with an error;
// NaN elements inside a Vector or Matrix value are not checked.
func (h *HashIndex) Add(rowID int, v value.Value) error {
	if f, ok := v.AsFloat(); ok && math.IsNaN(float64(f)) {
		return fmt.Errorf("index: cannot index NaN value")
	}
	key := v.Hash()
	for i, existing := range h.values[key] {
		if existing.Equal(v) {
			h.ids[key][i].Add(uint32(rowID))
			return nil
		}
	}
	bm := roaring.New()
	bm.Add(uint32(rowID))
	h.values[key] = append(h.values[key], v)
	h.ids[key] = append(h.ids[key], bm)
	return nil
}

// LookupEq returns every row ID indexed under v.
func (h *HashIndex) LookupEq(v value.Value) ([]int, error) {
	key := v.Hash()
	for i, existing := range h.values[key] {
		if existing.Equal(v) {
			bm := h.ids[key][i]
			out := make([]int, 0, bm.GetCardinality())
			it := bm.Iterator()
			for it.HasNext() {
				out = append(out, int(it.Next()))
			}
			return out, nil
		}
	}
	return nil, nil
}

func (h *HashIndex) SearchKNN(query *tensor.Tensor, k int) ([]Match, error) {
	return nil, fmt.Errorf("index: hash index SearchKNN: %w", ErrUnsupported)
}

func (h *HashIndex) Clone() Index {
	cp := NewHashIndex()
	for key, vals := range h.values {
		cp.values[key] = append([]value.Value(nil), vals...)
		bms := make([]*roaring.Bitmap, len(h.ids[key]))
		for i, bm := range h.ids[key] {
			bms[i] = bm.Clone()
		}
		cp.ids[key] = bms
	}
	return cp
}
