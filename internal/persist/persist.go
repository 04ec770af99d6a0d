// Package persist defines the persistence port the engine consumes:
// saving and loading datasets and tensors by name, without the core
// depending on any particular on-disk layout (§6.2).
package persist

import (
	"context"
	"errors"

	"vectordb/internal/dataset"
	"vectordb/internal/tensor"
)

// ErrNotFound is returned by a Load/Exists-adjacent call when the
// requested name has no saved entry.
var ErrNotFound = errors.New("persist: not found")

// Store is the persistence port. A reference filestore implementation
// and an inmem implementation (tests, no-durability callers) both
// satisfy it.
type Store interface {
	SaveDataset(ctx context.Context, d *dataset.Dataset) error
	LoadDataset(ctx context.Context, name string) (*dataset.Dataset, error)
	DatasetExists(ctx context.Context, name string) (bool, error)
	ListDatasets(ctx context.Context) ([]string, error)
	DeleteDataset(ctx context.Context, name string) error

	SaveTensor(ctx context.Context, name string, t *tensor.Tensor) error
	LoadTensor(ctx context.Context, name string) (*tensor.Tensor, error)
	TensorExists(ctx context.Context, name string) (bool, error)
	ListTensors(ctx context.Context) ([]string, error)
	DeleteTensor(ctx context.Context, name string) error
}
