// Package exec implements the physical plan: operators chosen by a
// rule-based planner from a logical plan (§4.6-4.7), the pull-based
// executor that materializes rows from them (including group-by
// aggregation, §4.8), and a per-statement execution context (§4.9).
package exec

import (
	"vectordb/internal/dataset"
	"vectordb/internal/tensor"
)

// Context is a per-statement scratch allocator: a bump-allocated
// float32 arena for kernel scratch buffers, plus the lists of
// temporary tensor/dataset IDs produced as intermediates during the
// statement. A caller either owns a Context across an explicit
// multi-step statement, or the engine constructs and drops one per
// statement (§4.9).
type Context struct {
	arena        []float32
	arenaOffset  int
	tempTensors  []tensor.ID
	tempDatasets []dataset.ID
}

// NewContext returns an empty execution context.
func NewContext() *Context {
	return &Context{}
}

// Alloc returns a zeroed []float32 of length n carved from the
// arena, growing it if necessary. Buffers handed out by Alloc are
// only valid until the next Reset.
func (c *Context) Alloc(n int) []float32 {
	if c.arenaOffset+n > len(c.arena) {
		grown := make([]float32, (c.arenaOffset+n)*2+16)
		copy(grown, c.arena[:c.arenaOffset])
		c.arena = grown
	}
	buf := c.arena[c.arenaOffset : c.arenaOffset+n]
	for i := range buf {
		buf[i] = 0
	}
	c.arenaOffset += n
	return buf
}

// TrackTensor records id as a temporary produced during this
// statement.
func (c *Context) TrackTensor(id tensor.ID) { c.tempTensors = append(c.tempTensors, id) }

// TrackDataset records id as a temporary produced during this
// statement.
func (c *Context) TrackDataset(id dataset.ID) { c.tempDatasets = append(c.tempDatasets, id) }

// TempTensors returns the tensor IDs tracked since the last Reset.
func (c *Context) TempTensors() []tensor.ID { return c.tempTensors }

// TempDatasets returns the dataset IDs tracked since the last Reset.
func (c *Context) TempDatasets() []dataset.ID { return c.tempDatasets }

// Reset bulk-releases the arena and tracked-temporary lists. The
// core does not garbage-collect the underlying stores (§5); Reset
// only drops this context's bookkeeping of what it produced.
func (c *Context) Reset() {
	c.arenaOffset = 0
	c.tempTensors = c.tempTensors[:0]
	c.tempDatasets = c.tempDatasets[:0]
}
