// Package inmem implements the persistence port as a plain in-memory
// map: no durability, used by tests and by callers that never
// configured a storage directory.
package inmem

import (
	"context"
	"fmt"
	"sync"

	"vectordb/internal/dataset"
	"vectordb/internal/persist"
	"vectordb/internal/tensor"
)

// Store is an in-memory persist.Store. The zero value is not usable;
// construct with New.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*dataset.Dataset
	tensors  map[string]*tensor.Tensor
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		datasets: map[string]*dataset.Dataset{},
		tensors:  map[string]*tensor.Tensor{},
	}
}

func (s *Store) SaveDataset(_ context.Context, d *dataset.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[d.Metadata().Name] = d
	return nil
}

func (s *Store) LoadDataset(_ context.Context, name string) (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[name]
	if !ok {
		return nil, fmt.Errorf("inmem: dataset %q: %w", name, persist.ErrNotFound)
	}
	return d, nil
}

func (s *Store) DatasetExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.datasets[name]
	return ok, nil
}

func (s *Store) ListDatasets(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.datasets))
	for name := range s.datasets {
		out = append(out, name)
	}
	return out, nil
}

func (s *Store) DeleteDataset(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[name]; !ok {
		return fmt.Errorf("inmem: dataset %q: %w", name, persist.ErrNotFound)
	}
	delete(s.datasets, name)
	return nil
}

func (s *Store) SaveTensor(_ context.Context, name string, t *tensor.Tensor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tensors[name] = t
	return nil
}

func (s *Store) LoadTensor(_ context.Context, name string) (*tensor.Tensor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tensors[name]
	if !ok {
		return nil, fmt.Errorf("inmem: tensor %q: %w", name, persist.ErrNotFound)
	}
	return t, nil
}

func (s *Store) TensorExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tensors[name]
	return ok, nil
}

func (s *Store) ListTensors(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.tensors))
	for name := range s.tensors {
		out = append(out, name)
	}
	return out, nil
}

func (s *Store) DeleteTensor(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tensors[name]; !ok {
		return fmt.Errorf("inmem: tensor %q: %w", name, persist.ErrNotFound)
	}
	delete(s.tensors, name)
	return nil
}

var _ persist.Store = (*Store)(nil)
