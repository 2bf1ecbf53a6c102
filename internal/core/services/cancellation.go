package services

import (
	"sync"
	"sync/atomic"
)

// CancellationToken belongs to one batch indexing run.
type CancellationToken struct {
	id        uint64
	cancelled atomic.Bool
}

// ID returns the operation ID of the run.
func (t *CancellationToken) ID() uint64 {
	return t.id
}

// IsCancelled reports whether cancellation was requested.
func (t *CancellationToken) IsCancelled() bool {
	return t.cancelled.Load()
}

// cancel marks the token. Only the registry calls it.
func (t *CancellationToken) cancel() {
	t.cancelled.Store(true)
}

// CancellationRegistry tracks the single current batch run.
//
// Each Begin issues a token with a higher operation ID and makes it
// current. Cancel only reaches the current token, and Finish only clears
// the slot when the finishing token is still current, so a stale run can
// neither cancel nor clear a newer one.
type CancellationRegistry struct {
	mu      sync.Mutex
	lastID  uint64
	current *CancellationToken
}

// NewCancellationRegistry creates an empty registry.
func NewCancellationRegistry() *CancellationRegistry {
	return &CancellationRegistry{}
}

// Begin issues a token for a new run and makes it current.
func (r *CancellationRegistry) Begin() *CancellationToken {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	r.current = &CancellationToken{id: r.lastID}
	return r.current
}

// Cancel cancels the current run. It returns false when no run is current.
func (r *CancellationRegistry) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return false
	}
	r.current.cancel()
	return true
}

// CancelID cancels the run with the given operation ID if it is current.
func (r *CancellationRegistry) CancelID(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil || r.current.id != id {
		return false
	}
	r.current.cancel()
	return true
}

// Finish clears the current slot if token still holds it.
func (r *CancellationRegistry) Finish(token *CancellationToken) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == token {
		r.current = nil
	}
}

// Current returns the operation ID of the current run, or 0.
func (r *CancellationRegistry) Current() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return 0
	}
	return r.current.id
}
