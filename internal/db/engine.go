package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// DefaultDatabase is the name of the database instance that is always
// present and can never be dropped.
const DefaultDatabase = "default"

var (
	// ErrDatabaseExists is returned by CreateDatabase for a duplicate name.
	ErrDatabaseExists = errors.New("db: database already exists")
	// ErrDatabaseNotFound is returned by UseDatabase/DropDatabase for a missing name.
	ErrDatabaseNotFound = errors.New("db: database not found")
	// ErrCannotDropDefault is returned by DropDatabase("default").
	ErrCannotDropDefault = errors.New("db: cannot drop the default database")
	// ErrDatasetNotFound is returned by any operation naming a dataset
	// that does not exist in the active database.
	ErrDatasetNotFound = errors.New("db: dataset not found")
)

// Engine owns every database instance plus which one is active. Per
// §5, one engine instance serializes every statement through a single
// mutex; plan execution holds it for the duration of the statement.
type Engine struct {
	mu                    sync.Mutex
	databases             map[string]*Instance
	active                string
	log                   *zap.SugaredLogger
	indexAutoBuildMinRows int
}

// NewEngine returns an Engine seeded with the always-present "default"
// database, active by default. logger may be nil, in which case a
// no-op logger is used.
func NewEngine(logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	e := &Engine{
		databases: map[string]*Instance{DefaultDatabase: newInstance()},
		active:    DefaultDatabase,
		log:       logger,
	}
	e.log.Infow("engine started", "active", e.active)
	return e
}

// SetIndexAutoBuildMinRows configures the row-count threshold past
// which InsertRow automatically builds hash indices on a dataset's
// scalar columns (§6.5's index_auto_build_min_rows). 0 (the default)
// disables auto-building entirely.
func (e *Engine) SetIndexAutoBuildMinRows(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.indexAutoBuildMinRows = n
}

// Lock and Unlock expose the engine-wide mutex so a caller can
// serialize an entire multi-step statement, not just one façade call.
func (e *Engine) Lock()   { e.mu.Lock() }
func (e *Engine) Unlock() { e.mu.Unlock() }

// CreateDatabase registers a new, empty database instance.
func (e *Engine) CreateDatabase(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.databases[name]; exists {
		return fmt.Errorf("%w: %q", ErrDatabaseExists, name)
	}
	e.databases[name] = newInstance()
	e.log.Infow("database created", "name", name)
	return nil
}

// UseDatabase switches the active database.
func (e *Engine) UseDatabase(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.databases[name]; !exists {
		return fmt.Errorf("%w: %q", ErrDatabaseNotFound, name)
	}
	e.active = name
	e.log.Infow("database switched", "name", name)
	return nil
}

// DropDatabase removes a database instance. Dropping the active
// database falls back the active name to "default".
func (e *Engine) DropDatabase(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if name == DefaultDatabase {
		return ErrCannotDropDefault
	}
	if _, exists := e.databases[name]; !exists {
		return fmt.Errorf("%w: %q", ErrDatabaseNotFound, name)
	}
	delete(e.databases, name)
	if e.active == name {
		e.active = DefaultDatabase
	}
	e.log.Infow("database dropped", "name", name)
	return nil
}

// ListDatabases returns every registered database name, unordered.
func (e *Engine) ListDatabases() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.databases))
	for n := range e.databases {
		out = append(out, n)
	}
	return out
}

// ActiveName reports the currently active database's name.
func (e *Engine) ActiveName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// activeInstance returns the active instance. Callers must hold e.mu; it is
// only ever called from within a locked façade method.
func (e *Engine) activeInstance() *Instance {
	return e.databases[e.active]
}

// instance returns the named instance, or the active one if name is
// empty. Callers must hold e.mu.
func (e *Engine) instance(name string) (*Instance, error) {
	if name == "" {
		return e.activeInstance(), nil
	}
	inst, ok := e.databases[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDatabaseNotFound, name)
	}
	return inst, nil
}

// RecoverEmptyDatabases scans dir for subdirectories and registers an
// empty database instance for each one not already known, per §4.10's
// startup-recovery note: contents recovery is the persistence layer's
// job, not this method's.
func (e *Engine) RecoverEmptyDatabases(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("db: scanning storage dir %q: %w", dir, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := filepath.Base(entry.Name())
		if _, exists := e.databases[name]; exists {
			continue
		}
		e.databases[name] = newInstance()
		e.log.Infow("database recovered from storage directory", "name", name)
	}
	return nil
}
