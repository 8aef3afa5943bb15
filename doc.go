// Package xstate is a runtime interpreter for hierarchical statecharts: it
// takes a compiled, pure Machine definition (see the machine subpackage for
// a reference implementation) and drives it against a live event stream,
// executing side effects, scheduling delayed events, spawning and
// supervising child actors, and publishing state updates to observers.
//
// The package owns none of the state-machine semantics itself — transition,
// initialState and resolveState live entirely on the Machine value it is
// given. What lives here is the machinery around that pure core: a
// micro-step Scheduler enforcing run-to-completion under reentrant sends, a
// Timer Registry for cancellable delayed events, an Action Executor
// dispatching a state's ordered action list, and an Actor Supervisor
// tracking spawned children of four kinds (nested machine, promise,
// callback, activity).
package xstate
