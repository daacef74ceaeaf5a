// Package kv adapts an ordered byte-keyed storage engine to the three
// operations the database core needs: point get, whole-value put, and
// forward iteration in ascending key order. Absence is signalled with
// the typed ErrNotFound; every other failure is a storage error.
//
// There is no delete: the core represents removal by writing a
// tombstone envelope, so a key once written only ever changes value.
//
// Two implementations are provided: a SQLite-backed store for
// persistence and an in-memory store for tests.
package kv
