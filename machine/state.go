package machine

// Tree carries the "is this configuration done" bit and, if so, how to
// compute the done-data payload for the resulting done.invoke event.
type Tree struct {
	Done        bool
	GetDoneData func(context any, event Event) any
}

// State is the pure value produced by a Machine on every transition. The
// interpreter never constructs one itself except through
// Machine.InitialState/ResolveState/Transition.
type State struct {
	// Value is the current configuration, expressed as the qualified path
	// of the active leaf state (e.g. "/on/running").
	Value string
	// Context is user data threaded through every transition.
	Context any
	// Event is the event that produced this state.
	Event Event
	// Actions is the ordered list to execute on entry into this state.
	Actions []Action
	// Activities maps activity id -> whether it is currently active.
	Activities map[string]bool
	// History is the state this one was transitioned from, or nil for the
	// very first state.
	History *State
	// Tree carries completion status/data.
	Tree Tree
	// NextEvents lists event types this state's configuration can accept.
	NextEvents []string
}

// Done reports whether this state represents a final configuration.
func (s State) Done() bool {
	return s.Tree.Done
}
