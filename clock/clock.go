// Package clock abstracts the timer source used to schedule delayed events,
// so the same interpreter code can run against wall-clock time in
// production and a fully deterministic Simulated clock in tests.
package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Token identifies a scheduled callback so it can later be cancelled.
type Token uint64

// Clock is the abstract timer capability consumed by the timer registry.
// AfterFunc schedules fn to run after d elapses and returns a Token; Stop
// cancels a previously scheduled callback and reports whether it was still
// pending.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Token
	Stop(token Token) bool
}

// Real delegates to the host's wall-clock timers via time.AfterFunc.
type Real struct {
	nextToken atomic.Uint64
	mu        sync.Mutex
	timers    map[Token]*time.Timer
}

// NewReal returns the default, wall-clock-backed Clock.
func NewReal() *Real {
	return &Real{timers: map[Token]*time.Timer{}}
}

func (c *Real) AfterFunc(d time.Duration, fn func()) Token {
	token := Token(c.nextToken.Add(1))
	timer := time.AfterFunc(d, func() {
		c.mu.Lock()
		delete(c.timers, token)
		c.mu.Unlock()
		fn()
	})
	c.mu.Lock()
	c.timers[token] = timer
	c.mu.Unlock()
	return token
}

func (c *Real) Stop(token Token) bool {
	c.mu.Lock()
	timer, ok := c.timers[token]
	if ok {
		delete(c.timers, token)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}
	return timer.Stop()
}

var _ Clock = (*Real)(nil)
