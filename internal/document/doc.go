// Package document defines the persisted shape of a versioned document:
// the (major, minor) version algebra, the JSON-patch record attached to
// every mutation, and the envelope that bundles a value (or its absence,
// for tombstones) with a bounded patch history.
//
// The package also owns the envelope codec (canonical JSON, sorted map
// keys, no HTML escaping) and the diff/apply pair used to compute and replay
// transitions. Diffs are rooted under a synthetic "root" field so that
// transitions to and from absence are ordinary add/remove operations.
package document
