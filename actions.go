package xstate

import (
	"time"

	"github.com/google/uuid"
	"github.com/joeblynch/xstate/machine"
)

// executeActions runs every action attached to state, in order, unless the
// service was constructed with Execute=false.
func (s *Service) executeActions(state machine.State) {
	if !s.execute {
		return
	}
	for _, action := range state.Actions {
		s.executeAction(action, state)
	}
}

// executeAction dispatches a single action by tag. A custom Executor, when
// present, always wins over the default tag dispatch.
func (s *Service) executeAction(action machine.Action, state machine.State) {
	if action.Executor != nil {
		action.Executor(state.Context, state.Event, machine.ActionMeta{Action: action, State: state})
		return
	}
	switch action.Tag {
	case machine.ActionInit:
		// no default effect: a marker consumed by tests and dev-tools only.
	case machine.ActionSend:
		s.executeSend(action, state)
	case machine.ActionCancel:
		s.timers.Cancel(action.SendID)
	case machine.ActionStart:
		s.executeStart(action, state)
	case machine.ActionStop:
		s.supervisor.stopChild(action.Activity.ID)
	case machine.ActionLog:
		s.executeLog(action, state)
	default:
		s.devWarn("unknown action tag %v", action.Tag)
	}
}

func (s *Service) executeSend(action machine.Action, state machine.State) {
	if action.Delay != nil {
		d, ok := s.resolveDelay(action.Delay, state.Context, state.Event)
		if !ok {
			return
		}
		sendID := action.SendID
		if sendID == "" {
			sendID = uuid.NewString()
		}
		to := action.To
		event := action.Event
		s.timers.Arm(sendID, d, func() { s.deliverSend(event, to) })
		return
	}
	s.deliverSend(action.Event, action.To)
}

func (s *Service) deliverSend(event machine.Event, to string) {
	if to != "" {
		s.supervisor.sendTo(event, to)
		return
	}
	s.Send(event)
}

// resolveDelay resolves a send action's delay: a string looks up the
// machine's named delays table (missing -> dev warning, drop the send
// silently); a duration is used directly; a function is called with the
// current context and event; a falsy result schedules at zero.
func (s *Service) resolveDelay(raw any, ctx any, event machine.Event) (time.Duration, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, true
	case time.Duration:
		return v, true
	case string:
		named, ok := s.m.Options().Delays[v]
		if !ok {
			s.devWarn("delay reference %q not found; dropping send", v)
			return 0, false
		}
		return s.resolveDelay(named, ctx, event)
	case func(ctx any, event machine.Event) time.Duration:
		return v(ctx, event), true
	default:
		return 0, true
	}
}

// executeStart dispatches a `start` action: transient states that both
// enter and leave an activity within one micro-step must not actually start
// it, hence the guard against the resulting state's Activities map.
func (s *Service) executeStart(action machine.Action, state machine.State) {
	id := action.Activity.ID
	if !state.Activities[id] {
		return
	}
	if action.Activity.Kind == machine.ActivityInvoke {
		factory, ok := s.m.Options().Services[action.Activity.Src]
		if !ok {
			s.devWarn("invoke src %q not found", action.Activity.Src)
			return
		}
		source := factory(state.Context, state.Event)
		s.spawnInvoke(id, source, action.Activity, state.Context, state.Event)
		return
	}
	impl, ok := s.m.Options().Activities[action.Activity.Type]
	if !ok {
		s.devWarn("activity %q not found", action.Activity.Type)
		return
	}
	s.spawnActivityChild(id, impl, state.Context, action.Activity)
}

func (s *Service) executeLog(action machine.Action, state machine.State) {
	var value any = action.Event
	if action.Expr != nil {
		value = action.Expr(state.Context, state.Event)
	}
	if action.Name != "" {
		s.logger.Log(action.Name, value)
		return
	}
	s.logger.Log(value)
}
