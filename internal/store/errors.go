// Package store implements the append-only tensor store, the
// UUID-keyed dataset store, and the name table mapping user-facing
// tensor names to store identities.
package store

import "errors"

var (
	// ErrTensorNotFound is returned when a TensorId has no entry.
	ErrTensorNotFound = errors.New("store: tensor not found")
	// ErrDatasetNotFound is returned when a dataset ID or name has no entry.
	ErrDatasetNotFound = errors.New("store: dataset not found")
	// ErrNameNotFound is returned when a tensor name table lookup misses.
	ErrNameNotFound = errors.New("store: name not found")
	// ErrNameAlreadyExists is returned by registration when a name is
	// already bound to a tensor or dataset.
	ErrNameAlreadyExists = errors.New("store: name already exists")
)
