package db

import (
	"context"
	"encoding/json"

	"github.com/quilldb/quill/internal/document"
)

// Create stores value under key if no live document exists there.
// Returns false, without touching state, when the key holds a live
// document. Creating over a tombstone starts a fresh lineage: new
// major, minor 1.
func (d *DB) Create(ctx context.Context, key string, value any) (bool, error) {
	if err := validateValue(value); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	prev, err := d.loadEnvelope(ctx, "create", key)
	if err != nil {
		return false, err
	}
	if prev.Live() {
		return false, nil
	}
	if err := d.put(ctx, "create", key, prev, value, nil); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the document at key by writing a tombstone envelope.
// Returns false when there is no live document to remove. The version
// lineage and patch history survive in the tombstone.
func (d *DB) Remove(ctx context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev, err := d.loadEnvelope(ctx, "remove", key)
	if err != nil {
		return false, err
	}
	if !prev.Live() {
		return false, nil
	}
	if err := d.put(ctx, "remove", key, prev, nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

// SetIfVersion replaces the document at key if expected matches its
// current version; the zero version matches a never-written key, so
// SetIfVersion doubles as a guarded create. A nil value performs a
// remove-with-CAS. Metadata, when non-nil, is carried verbatim on the
// resulting patch.
//
// Returns false on a version mismatch; mismatches are not errors.
// A write that produces an empty diff is silently discarded: no
// version bump, no event, and the call still returns true.
func (d *DB) SetIfVersion(ctx context.Context, key string, expected document.Version, value any, metadata map[string]any) (bool, error) {
	if value != nil {
		if err := validateValue(value); err != nil {
			return false, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	prev, err := d.loadEnvelope(ctx, "setIfVersion", key)
	if err != nil {
		return false, err
	}
	if !document.Matches(prev, expected) {
		coreMetrics.casConflicts.Inc()
		d.log.Debug("version mismatch",
			"key", key,
			"expected", expected.String(),
		)
		return false, nil
	}
	if err := d.put(ctx, "setIfVersion", key, prev, value, metadata); err != nil {
		return false, err
	}
	return true, nil
}

// put is the single commit primitive. Callers hold d.mu and have
// already validated the precondition for their operation.
//
// Steps: diff previous against next (empty diff discards the write),
// derive the new version, append the patch to the bounded history,
// write the whole envelope, then publish the patch event. Publication
// happens before the commit returns, so a subscriber registered before
// this call cannot miss the event.
func (d *DB) put(ctx context.Context, op, key string, prev *document.Envelope, next any, metadata map[string]any) error {
	var prevValue any
	if prev != nil {
		prevValue = prev.Value
	}

	ops, err := document.Diff(prevValue, next)
	if err != nil {
		return NewInputError("diff for %q: %v", key, err)
	}
	if len(ops) == 0 {
		coreMetrics.noopWrites.Inc()
		return nil
	}

	var version document.Version
	if prev.Live() {
		version = prev.Version.Successor()
	} else {
		// Absent or tombstone: a fresh lineage with a timestamp major.
		version = document.Version{Major: d.now(), Minor: 1}
	}

	patch := document.Patch{Version: version, Ops: ops, Metadata: metadata}

	var history []document.Patch
	if prev != nil {
		history = prev.Patches
	}
	if len(history) > document.NumPatchesToKeep-1 {
		history = history[len(history)-(document.NumPatchesToKeep-1):]
	}
	patches := make([]document.Patch, 0, len(history)+1)
	patches = append(patches, history...)
	patches = append(patches, patch)

	env := document.Envelope{
		Version:   version,
		Value:     next,
		Patches:   patches,
		UpdatedAt: d.now(),
	}
	data, err := document.Encode(&env)
	if err != nil {
		return NewInputError("encode %q: %v", key, err)
	}
	if err := d.store.Put(ctx, key, data); err != nil {
		return &StorageError{Op: op, Key: key, Err: err}
	}

	coreMetrics.commits.Inc()
	d.log.Debug("committed",
		"op", op,
		"key", key,
		"version", version.String(),
		"ops", len(ops),
		"tombstone", next == nil,
	)

	d.bus.publish(key, patch)
	return nil
}

// validateValue rejects top-level values the store cannot hold: nil
// (absence and JSON null are not storable values) and anything that
// does not marshal to JSON. Raised before any state is touched.
func validateValue(value any) error {
	if value == nil {
		return NewInputError("top-level value must not be null or absent")
	}
	if _, err := json.Marshal(value); err != nil {
		return NewInputError("value is not JSON-serializable: %v", err)
	}
	return nil
}
