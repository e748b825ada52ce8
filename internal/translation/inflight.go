package translation

import (
	"context"
	"sync"
)

// InFlightCall is the shared future for one (text, lang) resolution in
// progress. The leader resolves it; everyone else waits on it.
type InFlightCall struct {
	done   chan struct{}
	result string
}

// Wait blocks until the leader completes or ctx expires. On ctx expiry the
// caller gets the fallback; it does not cancel the leader's work.
func (c *InFlightCall) Wait(ctx context.Context, fallback string) string {
	select {
	case <-c.done:
		return c.result
	case <-ctx.Done():
		return fallback
	}
}

// InFlightRegistry deduplicates concurrent resolutions of the same pair
// within one process: exactly one caller becomes leader and performs the
// store-then-provider resolution, everyone else shares its outcome. Entries
// are removed the moment resolution completes, success or failure, so a
// failed wave never poisons the next one.
//
// Cross-process duplicate avoidance is not this registry's job; that rests
// entirely on the store's uniqueness constraint.
type InFlightRegistry struct {
	mu    sync.Mutex
	calls map[string]*InFlightCall
}

// NewInFlightRegistry creates an empty registry.
func NewInFlightRegistry() *InFlightRegistry {
	return &InFlightRegistry{calls: make(map[string]*InFlightCall)}
}

// Acquire returns the in-flight call for a key and whether the caller is the
// leader. A leader must call Complete exactly once; followers only Wait.
func (r *InFlightRegistry) Acquire(text, lang string) (*InFlightCall, bool) {
	key := cacheKey(text, lang)

	r.mu.Lock()
	defer r.mu.Unlock()

	if call, ok := r.calls[key]; ok {
		return call, false
	}

	call := &InFlightCall{done: make(chan struct{})}
	r.calls[key] = call
	return call, true
}

// Complete resolves the call for all waiters and removes the registry entry
// so the next caller re-attempts fresh.
func (r *InFlightRegistry) Complete(text, lang, result string) {
	key := cacheKey(text, lang)

	r.mu.Lock()
	call, ok := r.calls[key]
	delete(r.calls, key)
	r.mu.Unlock()

	if !ok {
		return
	}
	call.result = result
	close(call.done)
}

// Len returns the number of keys currently being resolved.
func (r *InFlightRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
