// Package db implements the database registry (§4.10): an Engine
// multiplexing named database instances, each binding a tensor store,
// a dataset store, and a tensor name table, plus the engine-level
// operation façade a DSL frontend drives (§6.1).
package db

import (
	"vectordb/internal/store"
)

// Instance is one database: its own tensor store, dataset store, and
// tensor name table. Instances never share state with one another.
type Instance struct {
	Tensors  *store.TensorStore
	Datasets *store.DatasetStore
	Names    *store.NameTable
}

// newInstance returns a freshly seeded, empty database instance.
func newInstance() *Instance {
	return &Instance{
		Tensors:  store.NewTensorStore(),
		Datasets: store.NewDatasetStore(),
		Names:    store.NewNameTable(),
	}
}
