// Package filestore implements the persist.Store port against a
// directory tree: one TOML sidecar plus one binary payload file per
// dataset or tensor (§6.2). The sidecar carries schema and metadata;
// the binary payload carries row or tensor data, little-endian.
package filestore

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"vectordb/internal/dataset"
	"vectordb/internal/persist"
	"vectordb/internal/schema"
	"vectordb/internal/tensor"
	"vectordb/internal/value"
)

// Store is a filesystem-backed persist.Store rooted at Dir.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir, creating the dataset/tensor
// subdirectories if they do not already exist.
func New(dir string) (*Store, error) {
	s := &Store{Dir: dir}
	for _, sub := range []string{s.datasetDir(), s.tensorDir()} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return nil, fmt.Errorf("filestore: creating %q: %w", sub, err)
		}
	}
	return s, nil
}

func (s *Store) datasetDir() string { return filepath.Join(s.Dir, "datasets") }
func (s *Store) tensorDir() string  { return filepath.Join(s.Dir, "tensors") }

func (s *Store) datasetSidecarPath(name string) string {
	return filepath.Join(s.datasetDir(), name+".toml")
}
func (s *Store) datasetDataPath(name string) string {
	return filepath.Join(s.datasetDir(), name+".bin")
}
func (s *Store) tensorSidecarPath(name string) string {
	return filepath.Join(s.tensorDir(), name+".toml")
}
func (s *Store) tensorDataPath(name string) string {
	return filepath.Join(s.tensorDir(), name+".bin")
}

// datasetSidecar is the TOML document describing a dataset's schema
// and metadata; row data lives in the companion .bin file.
type datasetSidecar struct {
	Name      string            `toml:"name"`
	CreatedAt time.Time         `toml:"created_at"`
	UpdatedAt time.Time         `toml:"updated_at"`
	Version   int               `toml:"version"`
	RowCount  int               `toml:"row_count"`
	Extras    map[string]string `toml:"extras"`
	Fields    []fieldDoc        `toml:"fields"`
}

type fieldDoc struct {
	Name     string `toml:"name"`
	Kind     string `toml:"kind"`
	Nullable bool   `toml:"nullable"`
	Dim      int    `toml:"dim"`
	Rows     int    `toml:"rows"`
	Cols     int    `toml:"cols"`
}

func fieldToDoc(f schema.Field) fieldDoc {
	t := f.Type
	return fieldDoc{
		Name:     f.Name,
		Kind:     t.Kind().String(),
		Nullable: f.Nullable,
		Dim:      t.Dim(),
		Rows:     t.Rows(),
		Cols:     t.Cols(),
	}
}

func docToField(d fieldDoc) (schema.Field, error) {
	var t value.Type
	switch d.Kind {
	case "Int":
		t = value.TypeInt()
	case "Float":
		t = value.TypeFloat()
	case "String":
		t = value.TypeString()
	case "Bool":
		t = value.TypeBool()
	case "Null":
		t = value.TypeNull()
	case "Vector":
		t = value.TypeVector(d.Dim)
	case "Matrix":
		t = value.TypeMatrix(d.Rows, d.Cols)
	default:
		return schema.Field{}, fmt.Errorf("filestore: unknown field kind %q", d.Kind)
	}
	return schema.Field{Name: d.Name, Type: t, Nullable: d.Nullable}, nil
}

// SaveDataset writes d's schema and metadata to a TOML sidecar and
// its rows to a binary payload. Lazy columns are materialized first:
// the persisted form never carries an unevaluated expression
// registry, only concrete values.
func (s *Store) SaveDataset(_ context.Context, d *dataset.Dataset) error {
	if err := d.MaterializeLazyColumns(); err != nil {
		return fmt.Errorf("filestore: materializing lazy columns before save: %w", err)
	}
	sch := d.Schema()
	fields := make([]fieldDoc, sch.Len())
	for i, f := range sch.Fields() {
		fields[i] = fieldToDoc(f)
	}
	meta := d.Metadata()
	doc := datasetSidecar{
		Name:      meta.Name,
		CreatedAt: meta.CreatedAt,
		UpdatedAt: meta.UpdatedAt,
		Version:   meta.Version,
		RowCount:  meta.RowCount,
		Extras:    meta.Extras,
		Fields:    fields,
	}
	sidecarFile, err := os.Create(s.datasetSidecarPath(meta.Name))
	if err != nil {
		return fmt.Errorf("filestore: creating sidecar for %q: %w", meta.Name, err)
	}
	defer sidecarFile.Close()
	if err := toml.NewEncoder(sidecarFile).Encode(doc); err != nil {
		return fmt.Errorf("filestore: encoding sidecar for %q: %w", meta.Name, err)
	}

	dataFile, err := os.Create(s.datasetDataPath(meta.Name))
	if err != nil {
		return fmt.Errorf("filestore: creating payload for %q: %w", meta.Name, err)
	}
	defer dataFile.Close()
	w := bufio.NewWriter(dataFile)
	for _, row := range d.Rows() {
		for i := 0; i < sch.Len(); i++ {
			if err := encodeValue(w, row.Value(i)); err != nil {
				return fmt.Errorf("filestore: encoding row for %q: %w", meta.Name, err)
			}
		}
	}
	return w.Flush()
}

// LoadDataset reconstructs a dataset from its sidecar and payload
// files. Metadata timestamps are carried over verbatim; a freshly
// loaded dataset's UpdatedAt/Version are whatever was last saved, not
// re-stamped by this call.
func (s *Store) LoadDataset(_ context.Context, name string) (*dataset.Dataset, error) {
	sidecarFile, err := os.Open(s.datasetSidecarPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("filestore: dataset %q: %w", name, persist.ErrNotFound)
		}
		return nil, fmt.Errorf("filestore: opening sidecar for %q: %w", name, err)
	}
	defer sidecarFile.Close()
	var doc datasetSidecar
	if _, err := toml.NewDecoder(sidecarFile).Decode(&doc); err != nil {
		return nil, fmt.Errorf("filestore: decoding sidecar for %q: %w", name, err)
	}
	fields := make([]schema.Field, len(doc.Fields))
	for i, fd := range doc.Fields {
		f, err := docToField(fd)
		if err != nil {
			return nil, fmt.Errorf("filestore: dataset %q: %w", name, err)
		}
		fields[i] = f
	}
	sch, err := schema.New(fields)
	if err != nil {
		return nil, fmt.Errorf("filestore: dataset %q: rebuilding schema: %w", name, err)
	}

	dataFile, err := os.Open(s.datasetDataPath(name))
	if err != nil {
		return nil, fmt.Errorf("filestore: opening payload for %q: %w", name, err)
	}
	defer dataFile.Close()
	r := bufio.NewReader(dataFile)

	d := dataset.New(name, sch)
	for row := 0; row < doc.RowCount; row++ {
		values := make([]value.Value, sch.Len())
		for i := 0; i < sch.Len(); i++ {
			v, err := decodeValue(r)
			if err != nil {
				return nil, fmt.Errorf("filestore: decoding row %d of %q: %w", row, name, err)
			}
			values[i] = v
		}
		tup, err := dataset.NewTuple(sch, values)
		if err != nil {
			return nil, fmt.Errorf("filestore: rebuilding row %d of %q: %w", row, name, err)
		}
		if err := d.AppendRowRaw(tup); err != nil {
			return nil, fmt.Errorf("filestore: appending row %d of %q: %w", row, name, err)
		}
	}
	extras := doc.Extras
	if extras == nil {
		extras = map[string]string{}
	}
	d.RestoreMetadata(dataset.Metadata{
		Name:      doc.Name,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		Version:   doc.Version,
		RowCount:  doc.RowCount,
		Extras:    extras,
	})
	return d, nil
}

func (s *Store) DatasetExists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.datasetSidecarPath(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("filestore: stat dataset %q: %w", name, err)
}

func (s *Store) ListDatasets(_ context.Context) ([]string, error) {
	return listByExt(s.datasetDir(), ".toml")
}

func (s *Store) DeleteDataset(_ context.Context, name string) error {
	if err := os.Remove(s.datasetSidecarPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: deleting sidecar for %q: %w", name, err)
	}
	if err := os.Remove(s.datasetDataPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: deleting payload for %q: %w", name, err)
	}
	return nil
}

// tensorSidecar carries only the shape; the float32 payload is a flat
// little-endian binary array in row-major order.
type tensorSidecar struct {
	Shape []int `toml:"shape"`
}

func (s *Store) SaveTensor(_ context.Context, name string, t *tensor.Tensor) error {
	sidecarFile, err := os.Create(s.tensorSidecarPath(name))
	if err != nil {
		return fmt.Errorf("filestore: creating sidecar for tensor %q: %w", name, err)
	}
	defer sidecarFile.Close()
	if err := toml.NewEncoder(sidecarFile).Encode(tensorSidecar{Shape: t.Shape()}); err != nil {
		return fmt.Errorf("filestore: encoding sidecar for tensor %q: %w", name, err)
	}

	dataFile, err := os.Create(s.tensorDataPath(name))
	if err != nil {
		return fmt.Errorf("filestore: creating payload for tensor %q: %w", name, err)
	}
	defer dataFile.Close()
	w := bufio.NewWriter(dataFile)
	if err := binary.Write(w, binary.LittleEndian, t.DataView()); err != nil {
		return fmt.Errorf("filestore: encoding payload for tensor %q: %w", name, err)
	}
	return w.Flush()
}

func (s *Store) LoadTensor(_ context.Context, name string) (*tensor.Tensor, error) {
	sidecarFile, err := os.Open(s.tensorSidecarPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("filestore: tensor %q: %w", name, persist.ErrNotFound)
		}
		return nil, fmt.Errorf("filestore: opening sidecar for tensor %q: %w", name, err)
	}
	defer sidecarFile.Close()
	var doc tensorSidecar
	if _, err := toml.NewDecoder(sidecarFile).Decode(&doc); err != nil {
		return nil, fmt.Errorf("filestore: decoding sidecar for tensor %q: %w", name, err)
	}

	dataFile, err := os.Open(s.tensorDataPath(name))
	if err != nil {
		return nil, fmt.Errorf("filestore: opening payload for tensor %q: %w", name, err)
	}
	defer dataFile.Close()
	n := 1
	for _, d := range doc.Shape {
		n *= d
	}
	data := make([]float32, n)
	if err := binary.Read(bufio.NewReader(dataFile), binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("filestore: decoding payload for tensor %q: %w", name, err)
	}
	return tensor.FromData(doc.Shape, data)
}

func (s *Store) TensorExists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.tensorSidecarPath(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("filestore: stat tensor %q: %w", name, err)
}

func (s *Store) ListTensors(_ context.Context) ([]string, error) {
	return listByExt(s.tensorDir(), ".toml")
}

func (s *Store) DeleteTensor(_ context.Context, name string) error {
	if err := os.Remove(s.tensorSidecarPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: deleting sidecar for tensor %q: %w", name, err)
	}
	if err := os.Remove(s.tensorDataPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: deleting payload for tensor %q: %w", name, err)
	}
	return nil
}

func listByExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("filestore: listing %q: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) == ext {
			out = append(out, name[:len(name)-len(ext)])
		}
	}
	return out, nil
}

var _ persist.Store = (*Store)(nil)
