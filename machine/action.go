package machine

// ActionTag discriminates the built-in action kinds recognized by the
// interpreter's action executor. Unrecognized values are treated as
// user-defined tags: a dev-only warning is logged and the action is a
// no-op unless it carries a custom Executor.
type ActionTag int

const (
	ActionInit ActionTag = iota
	ActionSend
	ActionCancel
	ActionStart
	ActionStop
	ActionLog
	ActionCustom
)

func (t ActionTag) String() string {
	switch t {
	case ActionInit:
		return "init"
	case ActionSend:
		return "send"
	case ActionCancel:
		return "cancel"
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionLog:
		return "log"
	case ActionCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ActionMeta is passed to a custom action's Executor.
type ActionMeta struct {
	Action Action
	State  State
}

// Action is a tagged record describing one entry in a state's ordered
// action list. Only the fields relevant to Tag are populated.
type Action struct {
	Tag  ActionTag
	Name string

	// send
	Event  Event
	To     string // "" = self, ParentTarget = route to self.Parent
	Delay  any    // nil | time.Duration | string (delay name) | func(ctx, event) time.Duration
	SendID string

	// cancel: SendID above

	// start / stop
	Activity Activity

	// log
	Expr func(ctx any, event Event) any

	// custom escape hatch: when non-nil, the executor runs and no default
	// tag-dispatch behavior applies.
	Executor func(ctx any, event Event, meta ActionMeta)
}

// ParentTarget is the special send target meaning "route to self.Parent".
const ParentTarget = "parent"
