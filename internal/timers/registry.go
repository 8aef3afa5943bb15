// Package timers implements the send-id -> clock-token bookkeeping that lets
// a delayed send be cancelled by id before it fires.
package timers

import (
	"sync"
	"time"

	"github.com/joeblynch/xstate/clock"
)

// Registry arms and cancels delayed callbacks against a clock.Clock, keyed
// by the send-id that scheduled them. Re-arming an id that is already
// pending cancels the previous timer first, matching xstate's semantics for
// a repeated `send` with the same id.
type Registry struct {
	c clock.Clock

	mu      sync.Mutex
	pending map[string]clock.Token
}

// New returns a Registry backed by c.
func New(c clock.Clock) *Registry {
	return &Registry{c: c, pending: map[string]clock.Token{}}
}

// Arm schedules fn to run after d and remembers it under sendID. If sendID
// is empty, no bookkeeping is kept and the timer cannot be cancelled by id.
// Re-arming an id that already has a pending timer stops the old one first.
func (r *Registry) Arm(sendID string, d time.Duration, fn func()) {
	r.mu.Lock()
	if sendID != "" {
		if prev, ok := r.pending[sendID]; ok {
			r.c.Stop(prev)
		}
	}
	r.mu.Unlock()

	token := r.c.AfterFunc(d, func() {
		if sendID != "" {
			r.mu.Lock()
			delete(r.pending, sendID)
			r.mu.Unlock()
		}
		fn()
	})

	if sendID != "" {
		r.mu.Lock()
		r.pending[sendID] = token
		r.mu.Unlock()
	}
}

// Cancel stops the pending timer for sendID, if any, and reports whether one
// was found.
func (r *Registry) Cancel(sendID string) bool {
	r.mu.Lock()
	token, ok := r.pending[sendID]
	if ok {
		delete(r.pending, sendID)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	return r.c.Stop(token)
}

// CancelAll stops every pending timer, used when a service or actor stops.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	pending := r.pending
	r.pending = map[string]clock.Token{}
	r.mu.Unlock()
	for _, token := range pending {
		r.c.Stop(token)
	}
}

// Len reports how many timers are currently pending.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
