package dataset

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"vectordb/internal/expr"
	"vectordb/internal/index"
	"vectordb/internal/schema"
	"vectordb/internal/value"
)

// ID identifies a dataset. Unlike tensors (an append-only sequence,
// naturally numbered), datasets can be produced out of band by the
// persistence layer loading a saved file, so identity is a random
// UUID rather than a store-assigned counter.
type ID uuid.UUID

func newID() ID { return ID(uuid.New()) }

func (id ID) String() string { return uuid.UUID(id).String() }

// ColumnStats holds the derived per-column statistics refreshed after
// every mutation.
type ColumnStats struct {
	Type      value.Type
	NullCount int
	Min       value.Value
	Max       value.Value
}

// Metadata carries the dataset's identity and descriptive state.
type Metadata struct {
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
	RowCount  int
	Stats     map[string]ColumnStats
	Extras    map[string]string
}

// Dataset is rows + schema + metadata + indices + the lazy-expression
// registry, per §3.5.
type Dataset struct {
	id       ID
	schema   *schema.Schema
	rows     []Tuple
	metadata Metadata
	indices  map[string]index.Index
	lazy     map[string]expr.Expr
}

// New creates an empty dataset with the given schema.
func New(name string, s *schema.Schema) *Dataset {
	now := timeNow()
	d := &Dataset{
		id:     newID(),
		schema: s,
		metadata: Metadata{
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
			Extras:    map[string]string{},
		},
		indices: map[string]index.Index{},
		lazy:    map[string]expr.Expr{},
	}
	d.refreshStats()
	return d
}

// timeNow exists so tests can observe a deterministic clock if ever
// needed; production code just calls time.Now.
var timeNow = time.Now

func (d *Dataset) ID() ID               { return d.id }
func (d *Dataset) Schema() *schema.Schema { return d.schema }
func (d *Dataset) Metadata() Metadata   { return d.metadata }
func (d *Dataset) RowCount() int        { return len(d.rows) }

// AppendRowRaw appends row without bumping Version/UpdatedAt or
// refreshing stats. Used by the persistence layer while reconstructing
// a dataset whose metadata is restored verbatim afterward via
// RestoreMetadata, so a load does not fabricate mutation history.
func (d *Dataset) AppendRowRaw(row Tuple) error {
	if row.Schema() != d.schema {
		return fmt.Errorf("dataset: row is bound to a different schema than dataset %q", d.metadata.Name)
	}
	d.rows = append(d.rows, row)
	return nil
}

// RestoreMetadata overwrites metadata wholesale and recomputes
// RowCount/Stats from the current rows, used once after a batch of
// AppendRowRaw calls during a persistence load.
func (d *Dataset) RestoreMetadata(meta Metadata) {
	d.metadata = meta
	d.refreshStats()
}

// Rows returns a copy of the row slice; callers must not mutate
// individual Tuples through it (Tuple itself is a value type, so
// this is naturally safe).
func (d *Dataset) Rows() []Tuple {
	cp := make([]Tuple, len(d.rows))
	copy(cp, d.rows)
	return cp
}

func (d *Dataset) Indices() map[string]index.Index { return d.indices }

func (d *Dataset) Index(col string) (index.Index, bool) {
	idx, ok := d.indices[col]
	return idx, ok
}

// AppendRow validates that row is bound to this dataset's schema (by
// pointer identity), updates every index, appends the row, and
// refreshes stats.
func (d *Dataset) AppendRow(row Tuple) error {
	if row.Schema() != d.schema {
		return fmt.Errorf("dataset: row is bound to a different schema than dataset %q", d.metadata.Name)
	}
	rowID := len(d.rows)
	for col, idx := range d.indices {
		i := d.schema.IndexOf(col)
		if i < 0 {
			continue
		}
		if err := idx.Add(rowID, row.Value(i)); err != nil {
			return fmt.Errorf("dataset: updating index %q: %w", col, err)
		}
	}
	d.rows = append(d.rows, row)
	d.touch()
	d.refreshStats()
	return nil
}

// AddColumn adds a regular (non-computed) column with defaultValue,
// rewriting every existing row to carry it.
func (d *Dataset) AddColumn(f schema.Field, defaultValue value.Value) error {
	if _, exists := d.schema.FieldByName(f.Name); exists {
		return fmt.Errorf("dataset: column %q already exists", f.Name)
	}
	if !f.IsCompatible(defaultValue) {
		return fmt.Errorf("dataset: default value %s is not compatible with type %s", defaultValue.Kind(), f.Type)
	}
	newSchema, err := d.schema.WithColumn(f)
	if err != nil {
		return err
	}
	newRows := make([]Tuple, len(d.rows))
	for i, r := range d.rows {
		values := append(r.Values(), defaultValue)
		nt, err := NewTuple(newSchema, values)
		if err != nil {
			return err
		}
		newRows[i] = nt
	}
	d.schema = newSchema
	d.rows = newRows
	d.touch()
	d.refreshStats()
	return nil
}

// AddComputedColumn adds a column derived from e. If lazy, storage
// holds Null placeholders and e is registered for on-read evaluation;
// the field is nullable. If eager, e is evaluated once per row now and
// the field is non-nullable.
func (d *Dataset) AddComputedColumn(name string, typ value.Type, e expr.Expr, lazy bool) error {
	if _, exists := d.schema.FieldByName(name); exists {
		return fmt.Errorf("dataset: column %q already exists", name)
	}
	f := schema.Field{Name: name, Type: typ, Nullable: lazy, IsLazy: lazy}
	newSchema, err := d.schema.WithColumn(f)
	if err != nil {
		return err
	}
	newRows := make([]Tuple, len(d.rows))
	for i, r := range d.rows {
		var v value.Value
		if lazy {
			v = value.Null()
		} else {
			v = expr.Eval(e, r)
		}
		values := append(r.Values(), v)
		nt, err := NewTuple(newSchema, values)
		if err != nil {
			return err
		}
		newRows[i] = nt
	}
	d.schema = newSchema
	d.rows = newRows
	if lazy {
		d.lazy[name] = e
	}
	d.touch()
	d.refreshStats()
	return nil
}

// GetColumn returns the values of column name for every row, in row
// order. Lazy columns are evaluated against each row on demand rather
// than read from (null) storage.
func (d *Dataset) GetColumn(name string) ([]value.Value, error) {
	i := d.schema.IndexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("dataset: no such column %q", name)
	}
	f := d.schema.Field(i)
	out := make([]value.Value, len(d.rows))
	if f.IsLazy {
		e, ok := d.lazy[name]
		if !ok {
			return nil, fmt.Errorf("dataset: column %q is marked lazy but has no registered expression", name)
		}
		for j, r := range d.rows {
			out[j] = expr.Eval(e, r)
		}
		return out, nil
	}
	for j, r := range d.rows {
		out[j] = r.Value(i)
	}
	return out, nil
}

// MaterializeLazyColumns evaluates every lazy column into concrete
// storage, clears each field's IsLazy flag, and empties the lazy
// registry.
func (d *Dataset) MaterializeLazyColumns() error {
	if len(d.lazy) == 0 {
		return nil
	}
	newSchema := d.schema
	for name := range d.lazy {
		var err error
		newSchema, err = newSchema.WithFieldMaterialized(name)
		if err != nil {
			return err
		}
	}
	newRows := make([]Tuple, len(d.rows))
	for i, r := range d.rows {
		values := r.Values()
		for name, e := range d.lazy {
			idx := d.schema.IndexOf(name)
			values[idx] = expr.Eval(e, r)
		}
		nt, err := NewTuple(newSchema, values)
		if err != nil {
			return err
		}
		newRows[i] = nt
	}
	d.schema = newSchema
	d.rows = newRows
	d.lazy = map[string]expr.Expr{}
	d.touch()
	d.refreshStats()
	return nil
}

// CreateIndex builds and attaches a hash index over col from the
// dataset's current rows.
func (d *Dataset) CreateIndex(col string) error {
	return d.buildIndex(col, index.Hash)
}

// CreateVectorIndex builds and attaches a vector (k-NN) index over
// col from the dataset's current rows.
func (d *Dataset) CreateVectorIndex(col string) error {
	return d.buildIndex(col, index.Vector)
}

// AutoBuildIndexes builds a hash index over every scalar column
// (Int/Float/String/Bool) that does not already carry one, once the
// dataset holds at least minRows rows. minRows <= 0 disables the
// behavior entirely. Vector/Matrix columns are skipped: a hash index
// gives no equality semantics over them and they have their own
// explicit CreateVectorIndex path.
func (d *Dataset) AutoBuildIndexes(minRows int) error {
	if minRows <= 0 || len(d.rows) < minRows {
		return nil
	}
	for _, f := range d.schema.Fields() {
		if _, ok := d.indices[f.Name]; ok {
			continue
		}
		switch f.Type.Kind() {
		case value.KindVector, value.KindMatrix:
			continue
		}
		if err := d.buildIndex(f.Name, index.Hash); err != nil {
			return fmt.Errorf("dataset: auto-building index on %q: %w", f.Name, err)
		}
	}
	return nil
}

func (d *Dataset) buildIndex(col string, kind index.Kind) error {
	i := d.schema.IndexOf(col)
	if i < 0 {
		return fmt.Errorf("dataset: no such column %q", col)
	}
	idx, err := index.New(kind)
	if err != nil {
		return err
	}
	for rowID, r := range d.rows {
		if err := idx.Add(rowID, r.Value(i)); err != nil {
			return fmt.Errorf("dataset: building %s index on %q: %w", kind, col, err)
		}
	}
	d.indices[col] = idx
	return nil
}

func (d *Dataset) touch() {
	d.metadata.UpdatedAt = timeNow()
	d.metadata.Version++
}

func (d *Dataset) refreshStats() {
	d.metadata.RowCount = len(d.rows)
	stats := make(map[string]ColumnStats, d.schema.Len())
	for i, f := range d.schema.Fields() {
		st := ColumnStats{Type: f.Type, Min: value.Null(), Max: value.Null()}
		for _, r := range d.rows {
			v := r.Value(i)
			if v.IsNull() {
				st.NullCount++
				continue
			}
			if st.Min.IsNull() {
				st.Min = v
				st.Max = v
				continue
			}
			if cmp, ok := value.Compare(v, st.Min); ok && cmp < 0 {
				st.Min = v
			}
			if cmp, ok := value.Compare(v, st.Max); ok && cmp > 0 {
				st.Max = v
			}
		}
		stats[f.Name] = st
	}
	d.metadata.Stats = stats
}
