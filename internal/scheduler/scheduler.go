// Package scheduler implements the interpreter's micro-step scheduler: it
// guarantees run-to-completion for a single event even when action execution
// reentrantly submits further events.
package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/joeblynch/xstate/queue"
)

// ErrNotStarted is returned by Schedule when the scheduler has not been
// Initialize'd yet and deferEvents is false. The interpreter surfaces this
// as a panic at the call site.
var ErrNotStarted = errors.New("scheduler: schedule called before initialize")

// Task is an opaque unit of work. Tasks run to completion synchronously and
// must not block.
type Task func()

// Scheduler serializes Task execution: at most one Task is ever running for
// a given Scheduler, and Tasks submitted while one is running are queued and
// run afterward in FIFO order.
type Scheduler struct {
	mu          sync.Mutex
	active      bool
	deferEvents bool
	draining    atomic.Bool
	preStart    *queue.Queue[Task]
	queue       *queue.Queue[Task]
}

// New returns an inactive Scheduler. deferEvents controls whether Schedule
// calls made before Initialize are buffered (true) or rejected (false).
func New(deferEvents bool) *Scheduler {
	return &Scheduler{
		deferEvents: deferEvents,
		preStart:    queue.New[Task](),
		queue:       queue.New[Task](),
	}
}

// Initialize runs once when the owning service starts. It executes task
// immediately as the "initial update", then drains anything buffered by
// pre-start Schedule calls, then anything queued during that execution —
// all in FIFO order. After Initialize returns, the scheduler is active.
func (s *Scheduler) Initialize(task Task) {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	s.run(task)
}

// Schedule submits a task for execution. Before Initialize, it is buffered
// (deferEvents=true) or rejected with ErrNotStarted (deferEvents=false).
// After Initialize, it runs immediately unless another task is already
// executing, in which case it is queued behind it.
func (s *Scheduler) Schedule(task Task) error {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if !active {
		if !s.deferEvents {
			return ErrNotStarted
		}
		s.preStart.Push(task)
		return nil
	}
	s.run(task)
	return nil
}

// Active reports whether Initialize has been called.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Scheduler) run(first Task) {
	if !s.draining.CompareAndSwap(false, true) {
		s.queue.Push(first)
		return
	}
	s.drainFrom(first)
}

// drainFrom executes first (if non-nil) then drains preStart, then queue,
// re-checking both after the queues appear empty to close the race between
// the last Pop and clearing the draining flag.
func (s *Scheduler) drainFrom(first Task) {
	current := first
	for {
		if current != nil {
			current()
			current = nil
		}
		if next, ok := s.preStart.Pop(); ok {
			current = next
			continue
		}
		if next, ok := s.queue.Pop(); ok {
			current = next
			continue
		}
		break
	}
	s.draining.Store(false)
	if s.preStart.Len() > 0 || s.queue.Len() > 0 {
		if s.draining.CompareAndSwap(false, true) {
			s.drainFrom(nil)
		}
	}
}
