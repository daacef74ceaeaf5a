package db

import (
	"context"
	"time"

	"github.com/quilldb/quill/internal/document"
)

// KeyVersion names a key and the version floor the caller already
// holds; Poll only reports patches strictly newer than Since.
type KeyVersion struct {
	Key   string           `json:"key"`
	Since document.Version `json:"since"`
}

// KeyPatches is one entry of a poll result: a key and the patches
// found for it, in version order.
type KeyPatches struct {
	Key     string           `json:"key"`
	Patches []document.Patch `json:"patches"`
}

// PollOptions tunes one Poll call. A zero ReadBlockTime means
// DefaultReadBlockTime.
type PollOptions struct {
	ReadBlockTime time.Duration
}

// Poll is the long-poll read: it returns patches newer than the
// caller's version floors, blocking until one exists or the read block
// time expires.
//
// The order of operations closes the race between reading history and
// observing new commits: the live subscription is registered before
// the history scan, so a commit landing during or after the scan is
// seen either by the scan or by the subscription, never by neither.
//
// The scan path may return multiple keys each with multiple patches,
// in request order. The live path returns the first qualifying patch:
// one key, one patch. Callers wanting more advance their floors and
// poll again. On timeout the result is an empty, non-nil slice.
//
// History is bounded: a floor older than the oldest retained patch
// yields whatever suffix remains, and the dropped prefix is not
// reconstructable. Callers that far behind should re-fetch the value
// with its version instead.
func (d *DB) Poll(ctx context.Context, requests []KeyVersion, opts PollOptions) ([]KeyPatches, error) {
	timeout := opts.ReadBlockTime
	if timeout <= 0 {
		timeout = DefaultReadBlockTime
	}

	// Floors are read by the handler from the commit goroutine; the map
	// is complete before subscribe and never written afterwards.
	floors := make(map[string]document.Version, len(requests))
	for _, req := range requests {
		floors[req.Key] = req.Since
	}

	// Buffered one-shot: the first qualifying event wins, later ones
	// fall through the default arm and are dropped. Droppped events are
	// not lost - they are in the history the caller's next poll scans.
	live := make(chan KeyPatches, 1)
	id := d.bus.subscribe(func(key string, p document.Patch) {
		since, ok := floors[key]
		if !ok || !p.Version.Greater(since) {
			return
		}
		select {
		case live <- KeyPatches{Key: key, Patches: []document.Patch{p}}:
		default:
		}
	})
	defer d.bus.unsubscribe(id)

	// Initial scan of stored history.
	results := make([]KeyPatches, 0, len(requests))
	for _, req := range requests {
		env, err := d.loadEnvelope(ctx, "poll scan", req.Key)
		if err != nil {
			return nil, err
		}
		if env == nil {
			continue
		}
		var newer []document.Patch
		for _, p := range env.Patches {
			if p.Version.Greater(req.Since) {
				newer = append(newer, p)
			}
		}
		if len(newer) > 0 {
			results = append(results, KeyPatches{Key: req.Key, Patches: newer})
		}
	}
	if len(results) > 0 {
		coreMetrics.pollScanHits.Inc()
		return results, nil
	}

	// Nothing stored yet: wait for the first qualifying live event.
	coreMetrics.pollWaiters.Inc()
	defer coreMetrics.pollWaiters.Dec()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case kp := <-live:
		coreMetrics.pollLiveHits.Inc()
		return []KeyPatches{kp}, nil
	case <-timer.C:
		coreMetrics.pollTimeouts.Inc()
		return []KeyPatches{}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
