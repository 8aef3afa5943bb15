package machine

// ActivityKind distinguishes an invocation (which produces done/error
// events and may be a machine, promise, callback or activity under the
// hood) from a plain activity (start/dispose only).
type ActivityKind int

const (
	// ActivityPlain is a start/dispose side effect bound to a state.
	ActivityPlain ActivityKind = iota
	// ActivityInvoke additionally produces done.invoke/error.execution events.
	ActivityInvoke
)

// Activity describes a start/stop action's target.
type Activity struct {
	Kind ActivityKind
	// Type names the activity implementation (looked up in
	// Options.Activities) for ActivityPlain, or is informational for
	// ActivityInvoke.
	Type string
	// ID identifies this specific instance among a state's activities and
	// among a service's children.
	ID string
	// Src names the service factory (looked up in Options.Services) for
	// ActivityInvoke.
	Src string
	// Data maps context+event to the new initial context of an invoked
	// machine child (applied when that machine implements ContextualMachine).
	// It is not passed to the service factory.
	Data func(ctx any, event Event) any
	// Forward auto-forwards events sent to the parent into this child.
	Forward bool
}

// Dispose stops a running activity or service factory instance.
type Dispose func()
