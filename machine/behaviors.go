package machine

// AssignFn purely folds context during a transition. Unlike a side-effecting
// action it is never attached to the resulting State's Actions list — by
// the time Transition returns, it has already run (mirrors xstate's
// distinction between `assign()` and ordinary actions).
type AssignFn func(ctx any, event Event) any

// EffectFn is a side-effecting entry/exit/transition action. It becomes an
// ActionCustom entry in the resulting State's Actions list, for the
// interpreter's Action Executor to invoke.
type EffectFn func(ctx any, event Event)

// GuardFn implements a named transition guard.
type GuardFn func(ctx any, event Event) bool

// DataFn computes, from the current context and event, the initial context
// an invoked machine child is rebound to.
type DataFn func(ctx any, event Event) any

// DoneDataFn computes the done-data payload for a final state, keyed by the
// qualified path of that final state.
type DoneDataFn func(ctx any, event Event) any

// Behaviors supplies everything a Config cannot express declaratively.
// Names referenced by Config (entry/exit/transition action names, cond
// names, invoke.data names) are resolved against these tables at compile
// time; an unresolved name is a compile-time error, the same posture a
// namespace-validation pass takes toward dangling references after the
// whole model is built.
type Behaviors struct {
	Assign     map[string]AssignFn
	Effects    map[string]EffectFn
	Guards     map[string]GuardFn
	Data       map[string]DataFn
	DoneData   map[string]DoneDataFn
	Delays     map[string]Delay
	Services   map[string]ServiceFactory
	Activities map[string]ActivityFn
}
