package db

import (
	"sync"

	"github.com/google/uuid"

	"github.com/quilldb/quill/internal/document"
)

// patchHandler receives one committed (key, patch) event.
type patchHandler func(key string, p document.Patch)

// bus is the in-process subscription registry. Publication is
// synchronous: the commit path calls publish after the envelope is
// written and before the commit returns, so every handler observes
// per-key events in version order.
//
// Handlers must not block and must not re-enter the commit path; they
// run while the write mutex is held.
type bus struct {
	mu       sync.RWMutex
	handlers map[string]patchHandler
}

// newBus creates an empty registry.
func newBus() *bus {
	return &bus{handlers: make(map[string]patchHandler)}
}

// subscribe registers a handler and returns its subscription id.
// Safe from any goroutine.
func (b *bus) subscribe(fn patchHandler) string {
	id := uuid.NewString()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[id] = fn
	return id
}

// unsubscribe removes a handler. Unknown ids are ignored, so every
// poll exit path can deregister unconditionally.
func (b *bus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, id)
}

// publish delivers one event to every registered handler. The handler
// set is snapshotted under the read lock and invoked outside it, so a
// handler may deregister itself (or another subscription) during
// delivery without deadlocking.
func (b *bus) publish(key string, p document.Patch) {
	b.mu.RLock()
	snapshot := make([]patchHandler, 0, len(b.handlers))
	for _, fn := range b.handlers {
		snapshot = append(snapshot, fn)
	}
	b.mu.RUnlock()

	for _, fn := range snapshot {
		fn(key, p)
	}
}

// size returns the number of registered handlers. Used by tests.
func (b *bus) size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
