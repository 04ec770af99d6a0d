package db

import (
	"errors"
	"fmt"

	"vectordb/internal/dataset"
	"vectordb/internal/expr"
	"vectordb/internal/kernels"
	"vectordb/internal/schema"
	"vectordb/internal/store"
	"vectordb/internal/tensor"
	"vectordb/internal/value"
)

// InsertNamed builds a tensor from shape/data, stores it in the active
// database's tensor store, and binds name to it with the given kind.
func (e *Engine) InsertNamed(name string, shape []int, data []float32, kind tensor.Kind) (tensor.ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := tensor.FromData(shape, data)
	if err != nil {
		return 0, fmt.Errorf("db: insert named tensor %q: %w", name, err)
	}
	inst := e.activeInstance()
	id := inst.Tensors.Put(t)
	inst.Names.Bind(name, id, kind)
	e.log.Debugw("tensor inserted", "name", name, "id", id, "kind", kind)
	return id, nil
}

// resolveNamed looks up a named tensor in inst, returning its current
// data and kind. Callers must hold e.mu.
func resolveNamed(inst *Instance, name string) (*tensor.Tensor, tensor.Kind, error) {
	nt, err := inst.Names.Lookup(name)
	if err != nil {
		return nil, 0, fmt.Errorf("db: %w", err)
	}
	t, err := inst.Tensors.Get(nt.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("db: %w", err)
	}
	return t, nt.Kind, nil
}

func combineKind(a, b tensor.Kind) tensor.Kind {
	if a == tensor.Strict || b == tensor.Strict {
		return tensor.Strict
	}
	return tensor.Normal
}

func (e *Engine) storeResult(inst *Instance, outName string, t *tensor.Tensor, kind tensor.Kind) tensor.ID {
	id := inst.Tensors.Put(t)
	inst.Names.Bind(outName, id, kind)
	return id
}

// evalBinary runs op between leftName and rightName, choosing the
// strict or relaxed kernel by combined kind, and binds the result to
// outName with the combined kind.
func (e *Engine) evalBinary(op kernels.BinaryOp, leftName, rightName, outName string) (tensor.ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst := e.activeInstance()
	left, lk, err := resolveNamed(inst, leftName)
	if err != nil {
		return 0, err
	}
	right, rk, err := resolveNamed(inst, rightName)
	if err != nil {
		return 0, err
	}
	kind := combineKind(lk, rk)
	var out *tensor.Tensor
	if kind == tensor.Strict {
		out, err = kernels.BinaryStrict(op, left, right)
	} else {
		out, err = kernels.BinaryRelaxed(op, left, right)
	}
	if err != nil {
		return 0, fmt.Errorf("db: eval %q %q: %w", leftName, rightName, err)
	}
	return e.storeResult(inst, outName, out, kind), nil
}

func (e *Engine) EvalAdd(leftName, rightName, outName string) (tensor.ID, error) {
	return e.evalBinary(kernels.Add, leftName, rightName, outName)
}

func (e *Engine) EvalSub(leftName, rightName, outName string) (tensor.ID, error) {
	return e.evalBinary(kernels.Sub, leftName, rightName, outName)
}

func (e *Engine) EvalMul(leftName, rightName, outName string) (tensor.ID, error) {
	return e.evalBinary(kernels.Mul, leftName, rightName, outName)
}

func (e *Engine) EvalDiv(leftName, rightName, outName string) (tensor.ID, error) {
	return e.evalBinary(kernels.Div, leftName, rightName, outName)
}

// EvalScalarMul multiplies the named tensor by s, preserving its kind.
func (e *Engine) EvalScalarMul(s float32, name, outName string) (tensor.ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst := e.activeInstance()
	t, kind, err := resolveNamed(inst, name)
	if err != nil {
		return 0, err
	}
	out, err := kernels.ScalarMul(s, t)
	if err != nil {
		return 0, fmt.Errorf("db: scalar mul %q: %w", name, err)
	}
	return e.storeResult(inst, outName, out, kind), nil
}

// EvalMatMul multiplies two named rank-2 tensors and binds the result.
func (e *Engine) EvalMatMul(leftName, rightName, outName string) (tensor.ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst := e.activeInstance()
	left, lk, err := resolveNamed(inst, leftName)
	if err != nil {
		return 0, err
	}
	right, rk, err := resolveNamed(inst, rightName)
	if err != nil {
		return 0, err
	}
	out, err := kernels.MatMul(left, right)
	if err != nil {
		return 0, fmt.Errorf("db: matmul %q %q: %w", leftName, rightName, err)
	}
	return e.storeResult(inst, outName, out, combineKind(lk, rk)), nil
}

// EvalTranspose transposes the named rank-2 tensor.
func (e *Engine) EvalTranspose(name, outName string) (tensor.ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst := e.activeInstance()
	t, kind, err := resolveNamed(inst, name)
	if err != nil {
		return 0, err
	}
	out, err := kernels.Transpose(t)
	if err != nil {
		return 0, fmt.Errorf("db: transpose %q: %w", name, err)
	}
	return e.storeResult(inst, outName, out, kind), nil
}

// EvalReshape reinterprets the named tensor's data under newShape.
func (e *Engine) EvalReshape(name string, newShape []int, outName string) (tensor.ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst := e.activeInstance()
	t, kind, err := resolveNamed(inst, name)
	if err != nil {
		return 0, err
	}
	out, err := kernels.Reshape(t, newShape)
	if err != nil {
		return 0, fmt.Errorf("db: reshape %q: %w", name, err)
	}
	return e.storeResult(inst, outName, out, kind), nil
}

// EvalFlatten flattens the named tensor to rank 1.
func (e *Engine) EvalFlatten(name, outName string) (tensor.ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst := e.activeInstance()
	t, kind, err := resolveNamed(inst, name)
	if err != nil {
		return 0, err
	}
	out, err := kernels.Flatten(t)
	if err != nil {
		return 0, fmt.Errorf("db: flatten %q: %w", name, err)
	}
	return e.storeResult(inst, outName, out, kind), nil
}

// EvalStack stacks the named tensors along a new leading axis. The
// result's kind is Strict iff any input is Strict.
func (e *Engine) EvalStack(names []string, outName string) (tensor.ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst := e.activeInstance()
	inputs := make([]*tensor.Tensor, len(names))
	kind := tensor.Normal
	for i, n := range names {
		t, k, err := resolveNamed(inst, n)
		if err != nil {
			return 0, err
		}
		inputs[i] = t
		kind = combineKind(kind, k)
	}
	out, err := kernels.Stack(inputs)
	if err != nil {
		return 0, fmt.Errorf("db: stack: %w", err)
	}
	return e.storeResult(inst, outName, out, kind), nil
}

// CreateDataset registers a new, empty dataset under name.
func (e *Engine) CreateDataset(name string, s *schema.Schema) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := dataset.New(name, s)
	if err := e.activeInstance().Datasets.Put(d); err != nil {
		return fmt.Errorf("db: create dataset: %w", err)
	}
	e.log.Infow("dataset created", "name", name)
	return nil
}

// lookupDataset resolves name in inst, translating the store layer's
// not-found sentinel into the db package's own so callers can match
// it with errors.Is(err, db.ErrDatasetNotFound) without importing
// internal/store.
func (e *Engine) lookupDataset(inst *Instance, name string) (*dataset.Dataset, error) {
	d, err := inst.Datasets.GetByName(name)
	if err != nil {
		if errors.Is(err, store.ErrDatasetNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrDatasetNotFound, name)
		}
		return nil, fmt.Errorf("db: %w", err)
	}
	return d, nil
}

// InsertRow appends an already schema-validated tuple to the named
// dataset, then auto-builds any missing scalar-column hash indices
// once the dataset crosses the configured threshold (§6.5).
func (e *Engine) InsertRow(datasetName string, tup dataset.Tuple) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.lookupDataset(e.activeInstance(), datasetName)
	if err != nil {
		return err
	}
	if err := d.AppendRow(tup); err != nil {
		return fmt.Errorf("db: insert row into %q: %w", datasetName, err)
	}
	if err := d.AutoBuildIndexes(e.indexAutoBuildMinRows); err != nil {
		return fmt.Errorf("db: insert row into %q: %w", datasetName, err)
	}
	return nil
}

// AlterDatasetAddColumn adds a regular column with a default value.
func (e *Engine) AlterDatasetAddColumn(datasetName string, f schema.Field, defaultValue value.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.lookupDataset(e.activeInstance(), datasetName)
	if err != nil {
		return err
	}
	if err := d.AddColumn(f, defaultValue); err != nil {
		return fmt.Errorf("db: alter %q add column: %w", datasetName, err)
	}
	return nil
}

// AlterDatasetAddComputedColumn adds a column derived from e, eager or
// lazy per the lazy flag. For eager columns, the caller (the frontend)
// has already precomputed its own values; this engine re-validates by
// evaluating the expression itself rather than trusting caller input.
func (e *Engine) AlterDatasetAddComputedColumn(datasetName, colName string, typ value.Type, expression expr.Expr, lazy bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.lookupDataset(e.activeInstance(), datasetName)
	if err != nil {
		return err
	}
	if err := d.AddComputedColumn(colName, typ, expression, lazy); err != nil {
		return fmt.Errorf("db: alter %q add computed column %q: %w", datasetName, colName, err)
	}
	return nil
}

// CreateIndex builds a hash index on col for the named dataset.
func (e *Engine) CreateIndex(datasetName, col string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.lookupDataset(e.activeInstance(), datasetName)
	if err != nil {
		return err
	}
	if err := d.CreateIndex(col); err != nil {
		return fmt.Errorf("db: create index on %q.%q: %w", datasetName, col, err)
	}
	e.log.Infow("hash index built", "dataset", datasetName, "column", col)
	return nil
}

// CreateVectorIndex builds a vector (k-NN) index on col for the named
// dataset.
func (e *Engine) CreateVectorIndex(datasetName, col string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.lookupDataset(e.activeInstance(), datasetName)
	if err != nil {
		return err
	}
	if err := d.CreateVectorIndex(col); err != nil {
		return fmt.Errorf("db: create vector index on %q.%q: %w", datasetName, col, err)
	}
	e.log.Infow("vector index built", "dataset", datasetName, "column", col)
	return nil
}

// MaterializeLazyColumns evaluates every lazy column of the named
// dataset into real storage.
func (e *Engine) MaterializeLazyColumns(datasetName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.lookupDataset(e.activeInstance(), datasetName)
	if err != nil {
		return err
	}
	if err := d.MaterializeLazyColumns(); err != nil {
		return fmt.Errorf("db: materialize lazy columns of %q: %w", datasetName, err)
	}
	return nil
}

// Dataset returns the named dataset from the active database, for
// query planning.
func (e *Engine) Dataset(name string) (*dataset.Dataset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lookupDataset(e.activeInstance(), name)
}
