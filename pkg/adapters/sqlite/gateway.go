// Package sqlite implements the biji store on an embedded SQLite database.
// It uses ncruces/go-sqlite3, a pure Go (wasm) build of SQLite that runs
// unchanged on the desktop and in the browser.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/aretw0/biji/pkg/core"
)

const (
	// DefaultName is the database file used when no path is configured.
	DefaultName = "biji.db"

	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"

	// SchemaVersion is the schema version requested by default.
	SchemaVersion = 2
)

// Collections (object stores) managed by the gateway.
const (
	NotesStore   = "notes"
	MedicalStore = "medical"
)

// Config holds the configuration for the SQLite gateway.
type Config struct {
	Path         string
	Version      int  // Requested schema version. Zero means SchemaVersion.
	ReadOnly     bool // Open without write access and never upgrade.
	Logger       *slog.Logger
	Now          func() time.Time
	EventBuffer  int         // Size of the watch event channel. Zero means 100.
	ErrorHandler func(error) // Receives watcher runtime errors.
}

// Gateway owns the database connection and its schema.
// It is opened once and shared by the note and medical repositories.
type Gateway struct {
	mu     sync.RWMutex
	db     *sql.DB
	config Config

	version int
	stores  map[string]bool

	watcherActive bool
	lastEvent     *time.Time
}

// Open opens (creating if absent) the database at config.Path and upgrades
// its schema to the requested version. Any failure is returned as
// *core.OpenError and no Gateway is returned.
func Open(ctx context.Context, config Config) (*Gateway, error) {
	if config.Path == "" {
		config.Path = DefaultName
	}
	if config.Version <= 0 {
		config.Version = SchemaVersion
	}
	if config.Version > len(migrations) {
		return nil, &core.OpenError{Path: config.Path, Err: fmt.Errorf("unsupported schema version %d", config.Version)}
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 100
	}

	fail := func(err error) (*Gateway, error) {
		return nil, &core.OpenError{Path: config.Path, Err: err}
	}

	if config.Path != MemoryPath && !config.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
			return fail(fmt.Errorf("failed to create db directory: %w", err))
		}
	}

	db, err := sql.Open("sqlite3", dsn(config))
	if err != nil {
		return fail(err)
	}
	// One connection: an in-memory database lives and dies with it, and
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fail(err)
	}

	g := &Gateway{db: db, config: config}
	if err := g.upgrade(ctx); err != nil {
		db.Close()
		return fail(err)
	}

	config.Logger.Debug("database opened",
		"path", config.Path,
		"version", g.version,
		"read_only", config.ReadOnly,
	)
	return g, nil
}

// busyTimeout is set on every connection. The driver only tracks the
// read-only state of a transaction when the DSN carries a pragma, and
// without it a read-only commit fails and leaves query_only on.
const busyTimeout = "_pragma=busy_timeout(5000)"

func dsn(config Config) string {
	if config.Path == MemoryPath {
		return "file::memory:?" + busyTimeout
	}
	if config.ReadOnly {
		return "file:" + filepath.ToSlash(config.Path) + "?mode=ro&" + busyTimeout
	}
	return "file:" + filepath.ToSlash(config.Path) + "?" + busyTimeout
}

// Path returns the location of the database.
func (g *Gateway) Path() string {
	return g.config.Path
}

// Version returns the schema version of the open database.
func (g *Gateway) Version() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

// Stores returns the names of the collections present in the schema.
func (g *Gateway) Stores() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.stores))
	for name := range g.stores {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close releases the connection. Subsequent transactions fail with core.ErrClosed.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.db == nil {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	g.config.Logger.Debug("database closed", "path", g.config.Path)
	return err
}

// View runs fn in a read-only transaction scoped to the given collections.
func (g *Gateway) View(ctx context.Context, stores []string, fn func(tx *sql.Tx) error) error {
	return g.transact(ctx, false, stores, fn)
}

// Update runs fn in a read-write transaction scoped to the given collections.
// If fn fails the transaction is rolled back and the store keeps its
// previous state.
func (g *Gateway) Update(ctx context.Context, stores []string, fn func(tx *sql.Tx) error) error {
	return g.transact(ctx, true, stores, fn)
}

func (g *Gateway) transact(ctx context.Context, write bool, stores []string, fn func(tx *sql.Tx) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.db == nil {
		return core.ErrClosed
	}
	if write && g.config.ReadOnly {
		return core.ErrReadOnly
	}
	if len(stores) == 0 {
		return errors.New("transaction has no scope")
	}
	for _, name := range stores {
		if !g.stores[name] {
			return fmt.Errorf("object store %q does not exist", name)
		}
	}

	tx, err := g.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: !write})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			g.config.Logger.Warn("rollback failed", "stores", stores, "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (g *Gateway) now() int64 {
	return core.Millis(g.config.Now())
}
