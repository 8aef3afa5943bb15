package machine

// Config is the declarative half of a machine definition: states and
// transitions as data, serializable to JSON/YAML the way xstate's own
// config objects are, and the way
// comalice-statechartx/internal/primitives/{machineconfig,stateconfig}.go
// model a statechart. Behavior (guards, actions, delays, service factories,
// activity implementations) cannot be serialized and is supplied separately
// via Behaviors at compile time.
type Config struct {
	ID      string                  `json:"id" yaml:"id"`
	Initial string                  `json:"initial" yaml:"initial"`
	Context any                     `json:"context,omitempty" yaml:"context,omitempty"`
	States  map[string]*StateConfig `json:"states" yaml:"states"`
	Strict  bool                    `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// StateConfig describes one node of the hierarchy.
type StateConfig struct {
	Type       string                        `json:"type,omitempty" yaml:"type,omitempty"` // "final" marks a final state
	Initial    string                        `json:"initial,omitempty" yaml:"initial,omitempty"`
	States     map[string]*StateConfig       `json:"states,omitempty" yaml:"states,omitempty"`
	On         map[string][]TransitionConfig `json:"on,omitempty" yaml:"on,omitempty"`
	After      map[string][]TransitionConfig `json:"after,omitempty" yaml:"after,omitempty"`
	Entry      []string                      `json:"entry,omitempty" yaml:"entry,omitempty"`
	Exit       []string                      `json:"exit,omitempty" yaml:"exit,omitempty"`
	Activities []string                      `json:"activities,omitempty" yaml:"activities,omitempty"`
	Invoke     *InvokeConfig                 `json:"invoke,omitempty" yaml:"invoke,omitempty"`
}

// TransitionConfig describes one candidate transition out of a state.
// Target == "" means an internal transition (no exit/entry, actions only).
type TransitionConfig struct {
	Target  string   `json:"target,omitempty" yaml:"target,omitempty"`
	Cond    string   `json:"cond,omitempty" yaml:"cond,omitempty"`
	Actions []string `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// InvokeConfig describes a `start` action of kind ActivityInvoke attached to
// state entry.
type InvokeConfig struct {
	ID      string            `json:"id,omitempty" yaml:"id,omitempty"`
	Src     string            `json:"src" yaml:"src"`
	Data    string            `json:"data,omitempty" yaml:"data,omitempty"` // name of a Behaviors.Data entry
	Forward bool              `json:"autoForward,omitempty" yaml:"autoForward,omitempty"`
	OnDone  *TransitionConfig `json:"onDone,omitempty" yaml:"onDone,omitempty"`
	OnError *TransitionConfig `json:"onError,omitempty" yaml:"onError,omitempty"`
}
