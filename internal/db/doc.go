// Package db is the database core: the mutex-serialized commit path
// for versioned documents, the in-process subscription bus that fans
// out committed patches, the long-poll engine built on top of it, and
// the full-scan query entry point.
//
// Writes (Create, Remove, SetIfVersion) funnel through a single
// process-wide write mutex and one commit primitive. Reads (Get,
// GetWithMeta, GetWithVersion, Find, and poll's initial scan) bypass
// the lock and go straight to the KV adapter; envelopes are written
// whole, so readers always observe a consistent pre- or post-commit
// state.
package db
