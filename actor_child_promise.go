package xstate

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/joeblynch/xstate/machine"
)

// Promise is the promise-like invocation source: a function producing a
// single value asynchronously, cancellable via ctx.
type Promise func(ctx context.Context) (any, error)

func (s *Service) spawnPromiseChild(id string, p Promise) {
	var cancelled atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())

	actor := &Actor{ID: id}
	actor.stop = func() {
		cancelled.Store(true)
		cancel()
	}
	s.supervisor.insert(actor, false)

	go func() {
		value, err := p(ctx)
		if cancelled.Load() {
			return
		}
		if err != nil {
			s.reportInvocationError(id, err)
			return
		}
		s.Send(machine.NewEvent(machine.DoneInvokeEvent(id), value))
	}()
}

// reportInvocationError translates a failed invocation into an
// error.execution event sent to self. If the current state cannot accept
// it, Send re-raises the carried error
// synchronously; that is recovered here into an unhandled-exception
// diagnostic, and — if the bound machine is strict — the service stops.
func (s *Service) reportInvocationError(id string, err error) {
	event := machine.NewEvent(machine.ErrorExecutionEvent, err)
	event.ID = id
	defer func() {
		if r := recover(); r != nil {
			current := asError(r)
			s.reportUnhandledExceptionOnInvocation(err, current)
			if s.m.Options().Strict {
				s.Stop()
			}
		}
	}()
	s.Send(event)
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
