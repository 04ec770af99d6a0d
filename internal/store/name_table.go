package store

import (
	"fmt"
	"sync"

	"vectordb/internal/tensor"
)

// NamedTensor is what the name table binds a user-facing name to.
type NamedTensor struct {
	ID   tensor.ID
	Kind tensor.Kind
}

// NameTable maps user-chosen tensor names to their current store
// identity. Rebinding a name (re-insert under the same name) replaces
// the entry; the tensor store entry it used to point at is left in
// place, merely unreachable by name.
type NameTable struct {
	mu    sync.RWMutex
	names map[string]NamedTensor
}

// NewNameTable returns an empty name table.
func NewNameTable() *NameTable {
	return &NameTable{names: map[string]NamedTensor{}}
}

// Bind registers (or rebinds) name to the given tensor identity.
func (t *NameTable) Bind(name string, id tensor.ID, kind tensor.Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names[name] = NamedTensor{ID: id, Kind: kind}
}

// Lookup returns the identity bound to name.
func (t *NameTable) Lookup(name string) (NamedTensor, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nt, ok := t.names[name]
	if !ok {
		return NamedTensor{}, fmt.Errorf("%w: %q", ErrNameNotFound, name)
	}
	return nt, nil
}

// Names returns every currently bound name, unordered.
func (t *NameTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.names))
	for n := range t.names {
		out = append(out, n)
	}
	return out
}
