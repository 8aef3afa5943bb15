package xstate

import (
	"sync"

	"github.com/joeblynch/xstate/machine"
)

// Callback is the callback-driven invocation source: given a
// receive function (send events into the parent) and a listener
// registration function (receives the function used for parent-to-child
// sends), it runs until stopped and may return a Dispose.
type Callback func(receive func(machine.Event), registerListener func(func(machine.Event))) machine.Dispose

func (s *Service) spawnCallbackChild(id string, cb Callback) {
	var mu sync.Mutex
	var listener func(machine.Event)

	actor := &Actor{ID: id}
	actor.send = func(e machine.Event) {
		mu.Lock()
		l := listener
		mu.Unlock()
		if l != nil {
			l(e)
		}
	}
	s.supervisor.insert(actor, false)

	receive := func(e machine.Event) { s.Send(e) }
	registerListener := func(l func(machine.Event)) {
		mu.Lock()
		listener = l
		mu.Unlock()
	}

	dispose := s.runCallback(id, cb, receive, registerListener)
	actor.stop = func() {
		if dispose != nil {
			dispose()
		}
	}
}

// runCallback invokes cb, translating a panic into the same error.execution
// path a rejected promise takes.
func (s *Service) runCallback(id string, cb Callback, receive func(machine.Event), registerListener func(func(machine.Event))) (dispose machine.Dispose) {
	defer func() {
		if r := recover(); r != nil {
			s.reportInvocationError(id, asError(r))
		}
	}()
	return cb(receive, registerListener)
}
