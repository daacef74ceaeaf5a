package db

import (
	"log/slog"
	"sync"
	"time"

	"github.com/quilldb/quill/internal/kv"
)

// DefaultReadBlockTime is how long Poll waits for a live patch before
// returning empty. Callers override it per call via PollOptions.
const DefaultReadBlockTime = 50 * time.Second

// DB is one database instance over one KV store. Create one instance
// per database path and share it: the write mutex and subscription bus
// only coordinate callers of the same instance.
type DB struct {
	store kv.Store
	bus   *bus

	// mu serializes all commits. Reads never take it.
	mu sync.Mutex

	// now supplies high-resolution timestamps for version majors and
	// updatedAt. Injectable for deterministic tests.
	now func() int64

	log *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithClock overrides the nanosecond time source. The source must be
// monotonically increasing, or version majors of re-created documents
// would regress.
func WithClock(now func() int64) Option {
	return func(d *DB) {
		d.now = now
	}
}

// WithLogger overrides the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *DB) {
		d.log = log
	}
}

// New creates a DB over an already-open KV store.
func New(store kv.Store, opts ...Option) *DB {
	d := &DB{
		store: store,
		bus:   newBus(),
		now:   func() int64 { return time.Now().UnixNano() },
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	coreMetrics.init()
	return d
}

// Open creates a DB backed by a SQLite file at the given path.
func Open(path string, opts ...Option) (*DB, error) {
	store, err := kv.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return New(store, opts...), nil
}

// Close releases the underlying store.
func (d *DB) Close() error {
	return d.store.Close()
}
