// Package environment keeps a project's test environment warm: exported
// variables, the test database, boot commands and the source files loaded
// into the entity registry.
package environment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/joho/godotenv"

	"warmtest/internal/config"
	"warmtest/internal/discovery"
	"warmtest/internal/migration"
	"warmtest/internal/registry"
)

// Built-in abstract categories
const (
	CategoryTestCase    = "warm.TestCase"
	CategoryIntegration = "warm.IntegrationTest"
)

// Database prepares the test database
type Database interface {
	EnsureDatabase(ctx context.Context, name string) (bool, error)
}

// Environment is the warm framework state shared by every run
type Environment struct {
	cfg      *config.Config
	reg      *registry.Registry
	parser   *discovery.Parser
	migrator migration.Migrator
	database Database
	log      log.Logger

	mu      sync.Mutex
	ledger  []string
	vars    map[string]string
	dirty   map[string]struct{}
	watcher *Watcher
}

// Option customizes an Environment
type Option func(*Environment)

// WithMigrator replaces the boot command runner
func WithMigrator(m migration.Migrator) Option {
	return func(e *Environment) { e.migrator = m }
}

// WithDatabase replaces the MySQL database manager
func WithDatabase(db Database) Option {
	return func(e *Environment) { e.database = db }
}

// WithProgress sends boot progress to w instead of stderr
func WithProgress(w io.Writer) Option {
	return func(e *Environment) {
		e.migrator = migration.NewCommandRunner(e.cfg.Boot, e.cfg.ProjectPath, w, e.log)
	}
}

// New creates an Environment over reg
func New(cfg *config.Config, reg *registry.Registry, logger log.Logger, opts ...Option) *Environment {
	e := &Environment{
		cfg:    cfg,
		reg:    reg,
		parser: discovery.NewParser(),
		log:    logger,
		vars:   make(map[string]string),
		dirty:  make(map[string]struct{}),
	}
	e.migrator = migration.NewCommandRunner(cfg.Boot, cfg.ProjectPath, os.Stderr, logger)
	e.database = migration.NewDatabaseManager(e.lookup, logger)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Boot warms the environment up. It is called once, before the first run.
func (e *Environment) Boot(ctx context.Context) error {
	if err := e.loadEnvFiles(); err != nil {
		return err
	}

	if e.cfg.Database.Enabled {
		name := e.cfg.GetDatabaseName(e.lookup)
		if _, err := e.database.EnsureDatabase(ctx, name); err != nil {
			return fmt.Errorf("error preparing test database: %w", err)
		}
		e.setVar("DB_DATABASE", name)
	}

	if err := e.migrator.Run(ctx, e.Env()); err != nil {
		return err
	}

	if err := e.defineBuiltins(); err != nil {
		return err
	}

	if e.cfg.Watch {
		w, err := NewWatcher(e.markDirty, e.log)
		if err != nil {
			return fmt.Errorf("error starting file watcher: %w", err)
		}
		e.mu.Lock()
		e.watcher = w
		e.mu.Unlock()
	}

	if err := e.Reload(ctx); err != nil {
		return err
	}

	e.log.Info("Environment booted", "root", e.cfg.ProjectPath, "files", len(e.Ledger()), "entities", e.reg.Live())
	return nil
}

// Close stops the file watcher
func (e *Environment) Close() error {
	e.mu.Lock()
	w := e.watcher
	e.watcher = nil
	e.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Close()
}

func (e *Environment) defineBuiltins() error {
	base, err := e.reg.Define(CategoryTestCase, nil, "")
	if err != nil {
		return err
	}
	_, err = e.reg.Define(CategoryIntegration, base, "")
	return err
}

func (e *Environment) loadEnvFiles() error {
	for _, name := range e.cfg.EnvFiles {
		path := e.cfg.ResolvePath(name)
		values, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("error reading env file %s: %w", path, err)
		}
		for k, v := range values {
			e.setVar(k, v)
		}
		e.log.Debug("Loaded env file", "path", path, "vars", len(values))
	}
	return nil
}

// Load executes the source file at path, even when it was executed before
func (e *Environment) Load(ctx context.Context, path string) error {
	abs := e.resolve(path)
	if err := e.execute(abs); err != nil {
		return err
	}
	e.log.Debug("Loaded source file", "path", abs)
	return nil
}

// Require executes the source file at path unless the ledger already holds it
func (e *Environment) Require(ctx context.Context, path string) error {
	abs := e.resolve(path)

	e.mu.Lock()
	loaded := e.loadedLocked(abs)
	e.mu.Unlock()
	if loaded {
		return nil
	}

	if err := e.execute(abs); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loadedLocked(abs) {
		e.ledger = append(e.ledger, abs)
	}
	if e.watcher != nil {
		if err := e.watcher.Add(abs); err != nil {
			e.log.Warn("Cannot watch source file", "path", abs, "err", err)
		}
	}
	e.log.Debug("Required source file", "path", abs)
	return nil
}

func (e *Environment) loadedLocked(abs string) bool {
	for _, p := range e.ledger {
		if p == abs {
			return true
		}
	}
	return false
}

// Ledger returns the required files in load order
func (e *Environment) Ledger() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.ledger...)
}

// Evict drops the ledger entries accepted by match and returns them in load order
func (e *Environment) Evict(match func(path string) bool) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evictLocked(match)
}

func (e *Environment) evictLocked(match func(path string) bool) []string {
	var evicted []string
	kept := e.ledger[:0]
	for _, p := range e.ledger {
		if match(p) {
			evicted = append(evicted, p)
			continue
		}
		kept = append(kept, p)
	}
	e.ledger = kept
	return evicted
}

// Cleanup resets dependency state: files changed on disk since they were
// required are evicted so the next Reload executes them again.
func (e *Environment) Cleanup(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.dirty) == 0 {
		return nil
	}
	evicted := e.evictLocked(func(p string) bool {
		_, ok := e.dirty[p]
		return ok
	})
	e.dirty = make(map[string]struct{})
	if len(evicted) > 0 {
		e.log.Info("Evicted changed source files", "files", evicted)
	}
	return nil
}

// Reload requires the helper and preload files missing from the ledger
func (e *Environment) Reload(ctx context.Context) error {
	for _, path := range e.requiredFiles() {
		if err := e.Require(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (e *Environment) requiredFiles() []string {
	var files []string
	if helper := e.cfg.HelperPath(); helper != "" {
		if _, err := os.Stat(helper); err == nil {
			files = append(files, helper)
		} else if e.cfg.Helper != config.DefaultHelper {
			// an explicitly configured helper must exist
			files = append(files, helper)
		}
	}
	return append(files, e.cfg.PreloadPaths()...)
}

// Env returns the process environment extended with the exported variables
func (e *Environment) Env() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+e.vars[k])
	}
	return env
}

// Root returns the project root
func (e *Environment) Root() string {
	return e.cfg.ProjectPath
}

// Registry returns the entity registry the environment loads into
func (e *Environment) Registry() *registry.Registry {
	return e.reg
}

func (e *Environment) setVar(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[key] = value
}

func (e *Environment) lookup(key string) string {
	e.mu.Lock()
	v, ok := e.vars[key]
	e.mu.Unlock()
	if ok {
		return v
	}
	return os.Getenv(key)
}

func (e *Environment) markDirty(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirty[path] = struct{}{}
}

func (e *Environment) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
