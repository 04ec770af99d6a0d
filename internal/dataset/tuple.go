// Package dataset implements the table-shaped collection of schema-
// bound rows, with metadata, secondary indices, and a lazy-expression
// registry for computed columns.
package dataset

import (
	"fmt"

	"vectordb/internal/schema"
	"vectordb/internal/value"
)

// Tuple is a row bound to a schema: it is only constructed (or
// mutated) after validating length and per-field compatibility.
// Tuples are bound to a schema by pointer identity, not structural
// equality, per the dataset invariant that every row's schema is
// "the" dataset schema.
type Tuple struct {
	schema *schema.Schema
	values []value.Value
}

// NewTuple validates values against s and returns a bound Tuple.
func NewTuple(s *schema.Schema, values []value.Value) (Tuple, error) {
	if len(values) != s.Len() {
		return Tuple{}, fmt.Errorf("tuple: expected %d values for schema, got %d", s.Len(), len(values))
	}
	for i, v := range values {
		f := s.Field(i)
		if !f.IsCompatible(v) {
			return Tuple{}, fmt.Errorf("tuple: field %q: value %s is not compatible with type %s", f.Name, v.Kind(), f.Type)
		}
	}
	cp := make([]value.Value, len(values))
	copy(cp, values)
	return Tuple{schema: s, values: cp}, nil
}

func (t Tuple) Schema() *schema.Schema { return t.schema }

func (t Tuple) Value(i int) value.Value { return t.values[i] }

func (t Tuple) Values() []value.Value {
	cp := make([]value.Value, len(t.values))
	copy(cp, t.values)
	return cp
}

// Column implements expr.Row so expressions can be evaluated directly
// against a Tuple.
func (t Tuple) Column(name string) (value.Value, bool) {
	i := t.schema.IndexOf(name)
	if i < 0 {
		return value.Value{}, false
	}
	return t.values[i], true
}

// Set replaces the value at i after re-validating it against the
// schema's field.
func (t *Tuple) Set(i int, v value.Value) error {
	f := t.schema.Field(i)
	if !f.IsCompatible(v) {
		return fmt.Errorf("tuple: field %q: value %s is not compatible with type %s", f.Name, v.Kind(), f.Type)
	}
	t.values[i] = v
	return nil
}

// Clone returns an independent copy sharing the schema pointer.
func (t Tuple) Clone() Tuple {
	cp := make([]value.Value, len(t.values))
	copy(cp, t.values)
	return Tuple{schema: t.schema, values: cp}
}
