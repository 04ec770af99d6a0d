package store

import (
	"fmt"
	"sync"

	"vectordb/internal/dataset"
)

// DatasetStore is a UUID-keyed map of datasets plus a name→ID index;
// names are unique within one store (one database instance, per
// §3.7).
type DatasetStore struct {
	mu     sync.RWMutex
	byID   map[dataset.ID]*dataset.Dataset
	byName map[string]dataset.ID
}

// NewDatasetStore returns an empty store.
func NewDatasetStore() *DatasetStore {
	return &DatasetStore{
		byID:   map[dataset.ID]*dataset.Dataset{},
		byName: map[string]dataset.ID{},
	}
}

// Put registers d under its metadata name. Fails if the name is
// already taken by another dataset.
func (s *DatasetStore) Put(d *dataset.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := d.Metadata().Name
	if existing, ok := s.byName[name]; ok && existing != d.ID() {
		return fmt.Errorf("%w: dataset %q", ErrNameAlreadyExists, name)
	}
	s.byID[d.ID()] = d
	s.byName[name] = d.ID()
	return nil
}

// GetByID looks up a dataset by its UUID.
func (s *DatasetStore) GetByID(id dataset.ID) (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", ErrDatasetNotFound, id)
	}
	return d, nil
}

// GetByName looks up a dataset by its registered name.
func (s *DatasetStore) GetByName(name string) (*dataset.Dataset, error) {
	s.mu.RLock()
	id, ok := s.byName[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDatasetNotFound, name)
	}
	return s.GetByID(id)
}

// Exists reports whether name is registered.
func (s *DatasetStore) Exists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byName[name]
	return ok
}

// Delete removes the dataset registered under name, if any.
func (s *DatasetStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrDatasetNotFound, name)
	}
	delete(s.byName, name)
	delete(s.byID, id)
	return nil
}

// Names returns every registered dataset name, unordered.
func (s *DatasetStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byName))
	for n := range s.byName {
		out = append(out, n)
	}
	return out
}
