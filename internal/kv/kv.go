package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for keys that have never been written.
// Callers map it to absence; it never escapes the database API.
var ErrNotFound = errors.New("kv: key not found")

// Store is the contract the database core requires of its storage
// engine. Put must be atomic per key: a concurrent reader sees either
// the previous whole value or the new whole value, never a mix.
type Store interface {
	// Get returns the stored bytes for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Iterate calls fn for every stored entry in ascending key order.
	// Iteration stops at the first error from fn and returns it.
	Iterate(ctx context.Context, fn func(key string, value []byte) error) error

	// Close releases the underlying engine.
	Close() error
}
