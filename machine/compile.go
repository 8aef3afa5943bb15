package machine

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"time"
)

// node is one compiled StateConfig, indexed by its qualified path (e.g.
// "/on/running"). The virtual root "/" has no node of its own.
type node struct {
	path     string
	cfg      *StateConfig
	parent   string
	children []string
	final    bool
	// on is cfg.On plus synthesized entries for an attached invoke's
	// onDone/onError, keyed the same way Transition matches against them.
	on map[string][]TransitionConfig
}

type compiled struct {
	id        string
	context   any
	nodes     map[string]*node
	initial   string
	behaviors Behaviors
	strict    bool
}

// New compiles a Config against a Behaviors table into a Machine. It fails
// closed: any name referenced by Config that Behaviors does not resolve is a
// compile-time error, the same posture a builder takes toward dangling
// source/target references.
func New(cfg Config, behaviors Behaviors) (Machine, error) {
	if cfg.Initial == "" {
		return nil, fmt.Errorf("machine %q: missing initial state", cfg.ID)
	}
	m := &compiled{
		id:        cfg.ID,
		context:   cfg.Context,
		nodes:     map[string]*node{},
		behaviors: behaviors,
		strict:    cfg.Strict,
	}
	if err := m.addChildren("/", cfg.States); err != nil {
		return nil, err
	}
	m.injectInvokeTransitions()

	root := path.Join("/", cfg.Initial)
	if _, ok := m.nodes[root]; !ok {
		return nil, fmt.Errorf("machine %q: initial state %q not found", cfg.ID, cfg.Initial)
	}
	leaf, err := m.resolveLeaf(root)
	if err != nil {
		return nil, err
	}
	m.initial = leaf

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *compiled) addChildren(parent string, states map[string]*StateConfig) error {
	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cfg := states[name]
		p := path.Join(parent, name)
		if _, exists := m.nodes[p]; exists {
			return fmt.Errorf("machine: duplicate state path %q", p)
		}
		n := &node{
			path:   p,
			cfg:    cfg,
			parent: parent,
			final:  cfg.Type == "final",
			on:     cloneTransitions(cfg.On),
		}
		m.nodes[p] = n
		if parentNode, ok := m.nodes[parent]; ok {
			parentNode.children = append(parentNode.children, p)
		}
		if err := m.addChildren(p, cfg.States); err != nil {
			return err
		}
	}
	return nil
}

func cloneTransitions(in map[string][]TransitionConfig) map[string][]TransitionConfig {
	out := make(map[string][]TransitionConfig, len(in))
	for k, v := range in {
		cp := make([]TransitionConfig, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

func (m *compiled) injectInvokeTransitions() {
	for _, n := range m.nodes {
		inv := n.cfg.Invoke
		if inv == nil {
			continue
		}
		id := invokeID(n.path, inv)
		if inv.OnDone != nil {
			evt := DoneInvokeEvent(id)
			n.on[evt] = append(n.on[evt], *inv.OnDone)
		}
		if inv.OnError != nil {
			n.on[ErrorExecutionEvent] = append(n.on[ErrorExecutionEvent], *inv.OnError)
		}
	}
}

func (m *compiled) resolveLeaf(p string) (string, error) {
	for {
		n, ok := m.nodes[p]
		if !ok {
			return "", fmt.Errorf("machine: state %q not found", p)
		}
		if len(n.children) == 0 {
			return p, nil
		}
		if n.cfg.Initial == "" {
			return "", fmt.Errorf("machine: compound state %q has no initial child", p)
		}
		next := path.Join(p, n.cfg.Initial)
		if _, ok := m.nodes[next]; !ok {
			return "", fmt.Errorf("machine: state %q initial %q not found", p, n.cfg.Initial)
		}
		p = next
	}
}

// ContextualMachine is implemented by machines that support producing a copy
// bound to a different initial context, without recompiling the state
// hierarchy. The action executor uses this to rebind an invoked machine
// child's context from an invoke's `data` mapping.
type ContextualMachine interface {
	Machine
	WithContext(context any) Machine
}

// WithContext returns a copy of m whose InitialState starts from context
// instead of the compiled Config's own context value.
func (m *compiled) WithContext(context any) Machine {
	cp := *m
	cp.context = context
	return &cp
}

var _ ContextualMachine = (*compiled)(nil)

// ID implements Machine.
func (m *compiled) ID() string { return m.id }

// Options implements Machine.
func (m *compiled) Options() Options {
	return Options{
		Delays:     m.behaviors.Delays,
		Services:   m.behaviors.Services,
		Activities: m.behaviors.Activities,
		Strict:     m.strict,
	}
}

// InitialState implements Machine.
func (m *compiled) InitialState() State {
	ctx := m.context
	event := NewEvent(EventInit)
	actions := []Action{{Tag: ActionInit}}
	activities := map[string]bool{}

	for _, p := range pathDown(m.initial, "/") {
		entryActs, c := m.entryActions(p, ctx, event)
		ctx = c
		actions = append(actions, entryActs...)
		m.activate(activities, p)
	}

	done, getDoneData := m.doneOf(m.initial)
	return State{
		Value:      m.initial,
		Context:    ctx,
		Event:      event,
		Actions:    actions,
		Activities: activities,
		History:    nil,
		Tree:       Tree{Done: done, GetDoneData: getDoneData},
		NextEvents: m.nextEvents(m.initial),
	}
}

// ResolveState implements Machine. It normalizes a caller-supplied state
// (e.g. one restored from persistence) without running any side effects.
// An empty Value resolves to InitialState, whose init and entry actions are
// returned for the interpreter to execute; any other value carries no
// actions.
func (m *compiled) ResolveState(partial State) State {
	if partial.Value == "" {
		return m.InitialState()
	}
	leaf, err := m.resolveLeaf(partial.Value)
	if err != nil {
		leaf = m.initial
	}
	activities := partial.Activities
	if activities == nil {
		activities = map[string]bool{}
		for _, p := range pathDown(leaf, "/") {
			m.activate(activities, p)
		}
	}
	done, getDoneData := m.doneOf(leaf)
	return State{
		Value:      leaf,
		Context:    partial.Context,
		Event:      partial.Event,
		Actions:    nil,
		Activities: activities,
		History:    partial.History,
		Tree:       Tree{Done: done, GetDoneData: getDoneData},
		NextEvents: m.nextEvents(leaf),
	}
}

// Transition implements Machine. It walks from the current leaf up through
// ancestors looking for the first state whose on/after table matches event,
// evaluates that state's candidate transitions in order, and applies the
// first one whose guard passes.
func (m *compiled) Transition(state State, event Event, context any) State {
	if context == nil {
		context = state.Context
	}
	current := state.Value
	if current == "" {
		current = m.initial
	}

	for at := current; ; {
		n := m.nodes[at]
		if n != nil {
			if tc, ok := m.pickTransition(n.on[event.Type], context, event); ok {
				return m.applyTransition(state, current, tc, event, context)
			}
			for key, candidates := range n.cfg.After {
				if afterEventName(at, key) != event.Type {
					continue
				}
				if tc, ok := m.pickTransition(candidates, context, event); ok {
					return m.applyTransition(state, current, tc, event, context)
				}
			}
		}
		if at == "/" {
			break
		}
		if n != nil {
			at = n.parent
		} else {
			at = path.Dir(at)
		}
	}

	unchanged := state
	unchanged.Event = event
	unchanged.Context = context
	unchanged.Actions = nil
	unchanged.NextEvents = m.nextEvents(current)
	return unchanged
}

func (m *compiled) pickTransition(candidates []TransitionConfig, ctx any, event Event) (TransitionConfig, bool) {
	for _, tc := range candidates {
		if tc.Cond == "" {
			return tc, true
		}
		guard, ok := m.behaviors.Guards[tc.Cond]
		if ok && guard(ctx, event) {
			return tc, true
		}
	}
	return TransitionConfig{}, false
}

func (m *compiled) applyTransition(prev State, current string, tc TransitionConfig, event Event, context any) State {
	if tc.Target == "" {
		actions, ctx := m.namedActions(tc.Actions, context, event)
		next := prev
		next.Context = ctx
		next.Event = event
		next.Actions = actions
		h := prev
		next.History = &h
		next.NextEvents = m.nextEvents(current)
		return next
	}

	targetRoot := tc.Target
	target, err := m.resolveLeaf(targetRoot)
	if err != nil {
		target = targetRoot
	}
	lca := LCA(current, target)

	activities := cloneActivities(prev.Activities)
	var actions []Action
	ctx := context

	for _, p := range pathUp(current, lca) {
		exitActs, c := m.exitActions(p, ctx, event)
		ctx = c
		actions = append(actions, exitActs...)
		m.deactivate(activities, p)
	}

	tActs, c := m.namedActions(tc.Actions, ctx, event)
	ctx = c
	actions = append(actions, tActs...)

	for _, p := range pathDown(target, lca) {
		entryActs, c := m.entryActions(p, ctx, event)
		ctx = c
		actions = append(actions, entryActs...)
		m.activate(activities, p)
	}

	done, getDoneData := m.doneOf(target)
	h := prev
	return State{
		Value:      target,
		Context:    ctx,
		Event:      event,
		Actions:    actions,
		Activities: activities,
		History:    &h,
		Tree:       Tree{Done: done, GetDoneData: getDoneData},
		NextEvents: m.nextEvents(target),
	}
}

func cloneActivities(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *compiled) activate(activities map[string]bool, p string) {
	n := m.nodes[p]
	if n == nil {
		return
	}
	for _, name := range n.cfg.Activities {
		activities[activityID(p, name)] = true
	}
	if n.cfg.Invoke != nil {
		activities[invokeID(p, n.cfg.Invoke)] = true
	}
}

func (m *compiled) deactivate(activities map[string]bool, p string) {
	n := m.nodes[p]
	if n == nil {
		return
	}
	for _, name := range n.cfg.Activities {
		delete(activities, activityID(p, name))
	}
	if n.cfg.Invoke != nil {
		delete(activities, invokeID(p, n.cfg.Invoke))
	}
}

// entryActions returns the actions produced by entering p (its own Entry
// list, activity starts, invoke start, then armed after-delays) plus the
// context resulting from folding any assign-behaviors named in Entry.
func (m *compiled) entryActions(p string, ctx any, event Event) ([]Action, any) {
	n := m.nodes[p]
	if n == nil {
		return nil, ctx
	}
	actions, ctx := m.namedActions(n.cfg.Entry, ctx, event)

	for _, name := range n.cfg.Activities {
		actions = append(actions, Action{
			Tag:  ActionStart,
			Name: name,
			Activity: Activity{
				Kind: ActivityPlain,
				Type: name,
				ID:   activityID(p, name),
			},
		})
	}

	if inv := n.cfg.Invoke; inv != nil {
		actions = append(actions, m.invokeStartAction(p, inv))
	}

	for _, key := range sortedAfterKeys(n.cfg.After) {
		actions = append(actions, Action{
			Tag:    ActionSend,
			Event:  NewEvent(afterEventName(p, key)),
			Delay:  m.resolveDelayRef(key),
			SendID: afterSendID(p, key),
		})
	}
	return actions, ctx
}

// exitActions returns the actions produced by exiting p: after-cancels and
// invoke/activity stops run first so timers and children are torn down
// before the state's own Exit actions observe the departure.
func (m *compiled) exitActions(p string, ctx any, event Event) ([]Action, any) {
	n := m.nodes[p]
	if n == nil {
		return nil, ctx
	}
	var actions []Action

	for _, key := range sortedAfterKeys(n.cfg.After) {
		actions = append(actions, Action{Tag: ActionCancel, SendID: afterSendID(p, key)})
	}

	if inv := n.cfg.Invoke; inv != nil {
		actions = append(actions, Action{
			Tag:      ActionStop,
			Activity: Activity{Kind: ActivityInvoke, ID: invokeID(p, inv)},
		})
	}

	for i := len(n.cfg.Activities) - 1; i >= 0; i-- {
		name := n.cfg.Activities[i]
		actions = append(actions, Action{
			Tag:  ActionStop,
			Name: name,
			Activity: Activity{
				Kind: ActivityPlain,
				Type: name,
				ID:   activityID(p, name),
			},
		})
	}

	exitActs, ctx := m.namedActions(n.cfg.Exit, ctx, event)
	actions = append(actions, exitActs...)
	return actions, ctx
}

// namedActions resolves a list of behavior names against Assign (folded
// purely into ctx, no Action emitted) or Effects (emitted as ActionCustom).
func (m *compiled) namedActions(names []string, ctx any, event Event) ([]Action, any) {
	var actions []Action
	for _, name := range names {
		if fn, ok := m.behaviors.Assign[name]; ok {
			ctx = fn(ctx, event)
			continue
		}
		if fn, ok := m.behaviors.Effects[name]; ok {
			effect := fn
			actions = append(actions, Action{
				Tag:  ActionCustom,
				Name: name,
				Executor: func(c any, e Event, _ ActionMeta) {
					effect(c, e)
				},
			})
			continue
		}
		// Compile-time validation should have caught this; fall back to a
		// dev-visible no-op tagged action rather than silently dropping it.
		actions = append(actions, Action{Tag: ActionCustom, Name: name})
	}
	return actions, ctx
}

func (m *compiled) invokeStartAction(p string, inv *InvokeConfig) Action {
	var dataFn func(ctx any, event Event) any
	if inv.Data != "" {
		if fn, ok := m.behaviors.Data[inv.Data]; ok {
			dataFn = fn
		}
	}
	return Action{
		Tag: ActionStart,
		Activity: Activity{
			Kind:    ActivityInvoke,
			ID:      invokeID(p, inv),
			Src:     inv.Src,
			Data:    dataFn,
			Forward: inv.Forward,
		},
	}
}

func (m *compiled) resolveDelayRef(key string) Delay {
	if ms, err := strconv.Atoi(key); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return key
}

// doneOf reports completion for a resolved leaf. Parallel regions are out of
// scope for this reference compiler (see DESIGN.md); a leaf is "done" simply
// when it is itself a final state.
func (m *compiled) doneOf(leaf string) (bool, func(context any, event Event) any) {
	n := m.nodes[leaf]
	if n == nil || !n.final {
		return false, nil
	}
	fn, ok := m.behaviors.DoneData[leaf]
	if !ok {
		return true, func(any, Event) any { return nil }
	}
	return true, func(ctx any, event Event) any { return fn(ctx, event) }
}

func (m *compiled) nextEvents(leaf string) []string {
	seen := map[string]bool{}
	for at := leaf; ; {
		n := m.nodes[at]
		if n != nil {
			for evt := range n.on {
				seen[evt] = true
			}
			for key := range n.cfg.After {
				seen[afterEventName(at, key)] = true
			}
		}
		if at == "/" {
			break
		}
		if n != nil {
			at = n.parent
		} else {
			at = path.Dir(at)
		}
	}
	out := make([]string, 0, len(seen))
	for evt := range seen {
		out = append(out, evt)
	}
	sort.Strings(out)
	return out
}

func sortedAfterKeys(after map[string][]TransitionConfig) []string {
	keys := make([]string, 0, len(after))
	for k := range after {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func afterEventName(p, key string) string {
	return fmt.Sprintf("xstate.after(%s)#%s", key, p)
}

func afterSendID(p, key string) string {
	return p + "#after#" + key
}

func activityID(p, name string) string {
	return p + "#" + name
}

func invokeID(p string, inv *InvokeConfig) string {
	if inv.ID != "" {
		return inv.ID
	}
	return p + "#invoke"
}

// validate checks every name Config references against Behaviors, and every
// transition target against the compiled node set, before New returns a
// usable Machine.
func (m *compiled) validate() error {
	for p, n := range m.nodes {
		if err := m.validateNamed(p, "entry", n.cfg.Entry); err != nil {
			return err
		}
		if err := m.validateNamed(p, "exit", n.cfg.Exit); err != nil {
			return err
		}
		for evt, candidates := range n.on {
			for _, tc := range candidates {
				if err := m.validateTransition(p, evt, tc); err != nil {
					return err
				}
			}
		}
		for key, candidates := range n.cfg.After {
			if _, err := strconv.Atoi(key); err != nil {
				if _, ok := m.behaviors.Delays[key]; !ok {
					return fmt.Errorf("machine: state %q: after delay %q not found in Behaviors.Delays", p, key)
				}
			}
			for _, tc := range candidates {
				if err := m.validateTransition(p, "after:"+key, tc); err != nil {
					return err
				}
			}
		}
		for _, name := range n.cfg.Activities {
			if _, ok := m.behaviors.Activities[name]; !ok {
				return fmt.Errorf("machine: state %q: activity %q not found in Behaviors.Activities", p, name)
			}
		}
		if inv := n.cfg.Invoke; inv != nil {
			if _, ok := m.behaviors.Services[inv.Src]; !ok {
				return fmt.Errorf("machine: state %q: invoke src %q not found in Behaviors.Services", p, inv.Src)
			}
			if inv.Data != "" {
				if _, ok := m.behaviors.Data[inv.Data]; !ok {
					return fmt.Errorf("machine: state %q: invoke data %q not found in Behaviors.Data", p, inv.Data)
				}
			}
		}
	}
	return nil
}

func (m *compiled) validateNamed(p, kind string, names []string) error {
	for _, name := range names {
		_, isAssign := m.behaviors.Assign[name]
		_, isEffect := m.behaviors.Effects[name]
		if isAssign && isEffect {
			return fmt.Errorf("machine: state %q: %s action %q defined in both Assign and Effects", p, kind, name)
		}
		if !isAssign && !isEffect {
			return fmt.Errorf("machine: state %q: %s action %q not found in Behaviors.Assign or Behaviors.Effects", p, kind, name)
		}
	}
	return nil
}

func (m *compiled) validateTransition(p, on string, tc TransitionConfig) error {
	if tc.Cond != "" {
		if _, ok := m.behaviors.Guards[tc.Cond]; !ok {
			return fmt.Errorf("machine: state %q: on %q: cond %q not found in Behaviors.Guards", p, on, tc.Cond)
		}
	}
	if tc.Target != "" {
		if _, ok := m.nodes[tc.Target]; !ok {
			return fmt.Errorf("machine: state %q: on %q: target %q not found", p, on, tc.Target)
		}
	}
	return m.validateNamed(p, "on "+on, tc.Actions)
}

var _ Machine = (*compiled)(nil)
