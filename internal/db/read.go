package db

import (
	"context"
	"errors"

	"github.com/quilldb/quill/internal/document"
	"github.com/quilldb/quill/internal/kv"
)

// VersionedValue pairs a document value with its current version.
// For an absent key the version is the zero sentinel and Value is nil;
// for a tombstone the version is the tombstone's and Value is nil.
type VersionedValue struct {
	Version document.Version `json:"version"`
	Value   any              `json:"value,omitempty"`
}

// loadEnvelope reads and decodes the envelope for key. Returns nil for
// keys that were never written. Decode failures surface as
// CorruptionError, engine failures as StorageError tagged with op.
func (d *DB) loadEnvelope(ctx context.Context, op, key string) (*document.Envelope, error) {
	data, err := d.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: op, Key: key, Err: err}
	}
	env, err := document.Decode(data)
	if err != nil {
		return nil, &CorruptionError{Key: key, Err: err}
	}
	return env, nil
}

// Get returns the current value for key, or nil when the key is absent
// or tombstoned.
func (d *DB) Get(ctx context.Context, key string) (any, error) {
	env, err := d.loadEnvelope(ctx, "get", key)
	if err != nil {
		return nil, err
	}
	if !env.Live() {
		return nil, nil
	}
	return env.Value, nil
}

// GetWithMeta returns the full stored envelope for key, including the
// patch history, or nil when the key was never written. Tombstone
// envelopes are returned as stored.
func (d *DB) GetWithMeta(ctx context.Context, key string) (*document.Envelope, error) {
	return d.loadEnvelope(ctx, "getWithMeta", key)
}

// GetWithVersion returns the current value and version for key. Absent
// keys yield the zero version, which is the CAS token for creating via
// SetIfVersion.
func (d *DB) GetWithVersion(ctx context.Context, key string) (VersionedValue, error) {
	env, err := d.loadEnvelope(ctx, "getWithVersion", key)
	if err != nil {
		return VersionedValue{}, err
	}
	if env == nil {
		return VersionedValue{}, nil
	}
	return VersionedValue{Version: env.Version, Value: env.Value}, nil
}

// StartPolling returns the value and version a caller should hold
// before entering a Poll loop: identical to GetWithVersion, named for
// the subscription handshake.
func (d *DB) StartPolling(ctx context.Context, key string) (VersionedValue, error) {
	return d.GetWithVersion(ctx, key)
}
