// Package machine defines the pure, external Machine contract the
// interpreter consumes and ships a small reference implementation of it —
// a compiled hierarchical state configuration — so the interpreter is
// runnable and testable end-to-end. The compiler here is secondary to the
// interpreter itself: transition/initialState/resolveState are what a
// Machine must provide, not what the runtime is responsible for computing.
package machine

// ServiceFactory produces the invocation source for a `src` name: a
// promise-like value, a callback function, or a nested Machine, dispatched
// on shape by the interpreter's action executor.
type ServiceFactory func(ctx any, event Event) any

// ActivityFn starts a plain activity and optionally returns a Dispose to
// stop it.
type ActivityFn func(ctx any, activity Activity) Dispose

// Delay is either a time.Duration, a delay name (string) resolved through
// Options.Delays, or a func(ctx, event) time.Duration.
type Delay any

// Options exposes the three lookup tables a Machine carries alongside its
// pure functions.
type Options struct {
	Delays     map[string]Delay
	Services   map[string]ServiceFactory
	Activities map[string]ActivityFn
	Strict     bool
}

// Machine is the pure, immutable external contract the interpreter drives.
// Implementations must be side-effect free: Transition and ResolveState
// never mutate shared state and are safe to call any number of times with
// the same arguments.
type Machine interface {
	ID() string
	InitialState() State
	ResolveState(partial State) State
	Transition(state State, event Event, context any) State
	Options() Options
}
