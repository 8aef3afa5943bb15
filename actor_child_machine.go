package xstate

import "github.com/joeblynch/xstate/machine"

// SpawnOptions configures a spawned nested-machine child.
type SpawnOptions struct {
	// ID overrides the child's identifier; defaults to the child machine's
	// own id.
	ID string
	// Subscribe forwards every child transition to the parent as an
	// xstate.update event.
	Subscribe bool
	// AutoForward inserts the child into the parent's forwardTo set.
	AutoForward bool
}

// Spawn constructs a nested Service for m, with parent=s, and always wires
// an on-done handler that forwards the child's done event to s.
func (s *Service) Spawn(m machine.Machine, opts SpawnOptions) *Service {
	return s.spawnChildService(m, opts)
}

func (s *Service) spawnChildService(m machine.Machine, opts SpawnOptions) *Service {
	id := opts.ID
	if id == "" {
		id = m.ID()
	}

	child := New(m, Options{
		Parent:      s,
		ID:          id,
		Execute:     s.execute,
		DeferEvents: s.deferEvents,
		Clock:       s.clk,
		Logger:      s.logger,
		DevTools:    s.devTools,
	})

	actor := &Actor{ID: id}
	actor.send = func(e machine.Event) { child.Send(e) }
	actor.stop = func() { child.Stop() }

	if opts.Subscribe {
		child.OnTransition(func(state machine.State) {
			s.Send(machine.NewEvent(machine.EventUpdate, state))
		})
	}
	child.OnDone(func(event machine.Event) {
		s.Send(event)
	})

	s.supervisor.insert(actor, opts.AutoForward)
	child.Start(machine.State{})
	return child
}
