// Package schema implements Field and Schema: the typed, ordered
// column list that datasets and tuples are validated against.
package schema

import (
	"fmt"

	"vectordb/internal/value"
)

// Field describes one column: its name, its type, whether it may
// hold Null, and whether its storage is a lazily-evaluated
// placeholder (see the dataset package's lazy-column registry).
type Field struct {
	Name     string
	Type     value.Type
	Nullable bool
	IsLazy   bool
}

// IsCompatible reports whether v may be stored in this field.
func (f Field) IsCompatible(v value.Value) bool {
	if v.IsNull() {
		return f.Nullable
	}
	return f.Type.Matches(v)
}

// Schema is an immutable, ordered list of fields. Once constructed, a
// Schema is never mutated in place; every change (add column, etc.)
// produces a new Schema value. Callers pass schemas around by
// pointer so that dataset rows can be compared against "the" schema
// by pointer identity, not structural equality.
type Schema struct {
	fields []Field
	byName map[string]int
}

// New builds a Schema, rejecting duplicate field names.
func New(fields []Field) (*Schema, error) {
	byName := make(map[string]int, len(fields))
	cp := make([]Field, len(fields))
	for i, f := range fields {
		if _, dup := byName[f.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate field name %q", f.Name)
		}
		byName[f.Name] = i
		cp[i] = f
	}
	return &Schema{fields: cp, byName: byName}, nil
}

// MustNew is New, panicking on error. Intended for tests and
// compile-time-known schemas.
func MustNew(fields []Field) *Schema {
	s, err := New(fields)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Fields() []Field { return s.fields }
func (s *Schema) Len() int        { return len(s.fields) }

// IndexOf returns the position of name, or -1 if absent.
func (s *Schema) IndexOf(name string) int {
	if i, ok := s.byName[name]; ok {
		return i
	}
	return -1
}

// Field returns the field at i. Callers must have checked bounds, or
// use FieldByName.
func (s *Schema) Field(i int) Field { return s.fields[i] }

// FieldByName returns the field named name and whether it exists.
func (s *Schema) FieldByName(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// WithColumn returns a new Schema with f appended. Fails if the name
// already exists.
func (s *Schema) WithColumn(f Field) (*Schema, error) {
	fields := make([]Field, len(s.fields)+1)
	copy(fields, s.fields)
	fields[len(s.fields)] = f
	return New(fields)
}

// WithFieldMaterialized returns a new Schema where the named field's IsLazy
// flag is cleared (used when materializing a lazy column).
func (s *Schema) WithFieldMaterialized(name string) (*Schema, error) {
	fields := make([]Field, len(s.fields))
	copy(fields, s.fields)
	i, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("schema: no such field %q", name)
	}
	fields[i].IsLazy = false
	return New(fields)
}

// Project returns a new Schema containing only the named columns, in
// the order requested. Unknown names are silently dropped.
func (s *Schema) Project(names []string) *Schema {
	var fields []Field
	for _, n := range names {
		if f, ok := s.FieldByName(n); ok {
			fields = append(fields, f)
		}
	}
	out, _ := New(fields) // names are already unique subset of s.
	return out
}
