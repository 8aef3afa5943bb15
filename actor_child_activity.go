package xstate

import "github.com/joeblynch/xstate/machine"

// spawnActivityChild starts a plain (non-invoke) activity: send is a no-op,
// stop calls the returned Dispose if any.
func (s *Service) spawnActivityChild(id string, impl machine.ActivityFn, ctx any, act machine.Activity) {
	dispose := impl(ctx, act)
	actor := &Actor{ID: id}
	actor.stop = func() {
		if dispose != nil {
			dispose()
		}
	}
	s.supervisor.insert(actor, false)
}

// spawnInvoke dispatches an invoke's resolved source by shape: promise-like,
// callback, machine (with optional context rebind via data), or the
// reserved-but-inert string case.
func (s *Service) spawnInvoke(id string, source any, act machine.Activity, ctx any, event machine.Event) {
	switch src := source.(type) {
	case Promise:
		s.spawnPromiseChild(id, src)
	case Callback:
		s.spawnCallbackChild(id, src)
	case string:
		// Reserved for actor-URI style invoke targets; deliberate no-op
		// until that's supported.
	case machine.Machine:
		child := src
		if act.Data != nil {
			newContext := act.Data(ctx, event)
			if cm, ok := child.(machine.ContextualMachine); ok {
				child = cm.WithContext(newContext)
			}
		}
		s.spawnChildService(child, SpawnOptions{ID: id, Subscribe: true, AutoForward: act.Forward})
	default:
		s.devWarn("invoke src %q resolved to unsupported type %T", act.Src, source)
	}
}
