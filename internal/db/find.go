package db

import (
	"context"
	"time"

	"github.com/quilldb/quill/internal/document"
	"github.com/quilldb/quill/internal/query"
)

// Find evaluates a query over a full scan of the store: every envelope
// is decoded, tombstones are skipped, the filter runs against each live
// value, matches are sorted by the orderBy sequence, then skip/limit
// slice the result. Find never takes the write mutex.
func (d *DB) Find(ctx context.Context, q query.Query) ([]query.Document, error) {
	start := time.Now()
	defer func() {
		coreMetrics.findDuration.Observe(time.Since(start).Seconds())
	}()

	var matches []query.Document
	err := d.store.Iterate(ctx, func(key string, data []byte) error {
		env, err := document.Decode(data)
		if err != nil {
			return &CorruptionError{Key: key, Err: err}
		}
		if !env.Live() {
			return nil
		}
		ok, err := query.Eval(q.Filter, env.Value)
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, query.Document{Key: key, Value: env.Value})
		}
		return nil
	})
	if err != nil {
		if IsInput(err) || IsCorruption(err) {
			return nil, err
		}
		return nil, &StorageError{Op: "find", Err: err}
	}

	query.Sort(matches, q.OrderBy)

	if q.Skip > 0 {
		if q.Skip >= len(matches) {
			return []query.Document{}, nil
		}
		matches = matches[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < len(matches) {
		matches = matches[:q.Limit]
	}
	if matches == nil {
		matches = []query.Document{}
	}
	return matches, nil
}
