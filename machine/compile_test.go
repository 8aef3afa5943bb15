package machine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblynch/xstate/machine"
)

func toggleConfig() machine.Config {
	return machine.Config{
		ID:      "toggle",
		Initial: "off",
		Context: 0,
		States: map[string]*machine.StateConfig{
			"off": {
				On: map[string][]machine.TransitionConfig{
					"TOGGLE": {{Target: "/on", Actions: []string{"increment"}}},
				},
			},
			"on": {
				Entry: []string{"logEntry"},
				On: map[string][]machine.TransitionConfig{
					"TOGGLE": {{Target: "/off"}},
				},
				After: map[string][]machine.TransitionConfig{
					"50": {{Target: "/off", Actions: []string{"timeout"}}},
				},
			},
		},
	}
}

func toggleBehaviors(calls *[]string) machine.Behaviors {
	return machine.Behaviors{
		Assign: map[string]machine.AssignFn{
			"increment": func(ctx any, _ machine.Event) any { return ctx.(int) + 1 },
		},
		Effects: map[string]machine.EffectFn{
			"logEntry": func(_ any, _ machine.Event) { *calls = append(*calls, "logEntry") },
			"timeout":  func(_ any, _ machine.Event) { *calls = append(*calls, "timeout") },
		},
	}
}

func TestInitialStateEntersLeafAndFoldsInitAction(t *testing.T) {
	var calls []string
	m, err := machine.New(toggleConfig(), toggleBehaviors(&calls))
	require.NoError(t, err)

	state := m.InitialState()
	assert.Equal(t, "/off", state.Value)
	assert.Equal(t, 0, state.Context)
	require.Len(t, state.Actions, 1)
	assert.Equal(t, machine.ActionInit, state.Actions[0].Tag)
}

func TestTransitionFoldsAssignAndEmitsEntryEffect(t *testing.T) {
	var calls []string
	m, err := machine.New(toggleConfig(), toggleBehaviors(&calls))
	require.NoError(t, err)

	initial := m.InitialState()
	next := m.Transition(initial, machine.NewEvent("TOGGLE"), initial.Context)

	assert.Equal(t, "/on", next.Value)
	assert.Equal(t, 1, next.Context, "increment assign folds into context, not the action list")
	assert.Empty(t, calls, "Transition is pure: the entry effect is emitted, not run")

	var customs int
	for _, a := range next.Actions {
		if a.Tag == machine.ActionCustom {
			customs++
			a.Executor(next.Context, next.Event, machine.ActionMeta{Action: a, State: next})
		}
	}
	assert.Equal(t, 1, customs, "assign must not appear in Actions, only the entry effect")
	assert.Equal(t, []string{"logEntry"}, calls)
}

func TestUnmatchedEventReturnsUnchangedState(t *testing.T) {
	var calls []string
	m, err := machine.New(toggleConfig(), toggleBehaviors(&calls))
	require.NoError(t, err)

	initial := m.InitialState()
	next := m.Transition(initial, machine.NewEvent("NOPE"), initial.Context)

	assert.Equal(t, initial.Value, next.Value)
	assert.Nil(t, next.Actions)
}

func TestAfterDelayArmsSendOnEntryAndTransitionsOnFire(t *testing.T) {
	var calls []string
	m, err := machine.New(toggleConfig(), toggleBehaviors(&calls))
	require.NoError(t, err)

	initial := m.InitialState()
	onState := m.Transition(initial, machine.NewEvent("TOGGLE"), initial.Context)

	var sendID string
	var delay any
	for _, a := range onState.Actions {
		if a.Tag == machine.ActionSend {
			sendID = a.SendID
			delay = a.Delay
		}
	}
	require.NotEmpty(t, sendID, "entering /on must arm the after(50) send")
	assert.Equal(t, 50*time.Millisecond, delay)

	fireEvent := machine.NewEvent(afterEventTypeFor(onState))
	final := m.Transition(onState, fireEvent, onState.Context)
	assert.Equal(t, "/off", final.Value)

	var cancelled bool
	for _, a := range final.Actions {
		if a.Tag == machine.ActionCancel && a.SendID == sendID {
			cancelled = true
		}
		if a.Executor != nil {
			a.Executor(final.Context, final.Event, machine.ActionMeta{Action: a, State: final})
		}
	}
	assert.Contains(t, calls, "timeout")
	assert.True(t, cancelled, "leaving /on must cancel its own after-send")
}

// afterEventTypeFor extracts the synthesized after-event type xstate uses
// from state's own NextEvents, since the exact encoding is an
// implementation detail of the compiler.
func afterEventTypeFor(state machine.State) string {
	for _, evt := range state.NextEvents {
		if len(evt) > 12 && evt[:12] == "xstate.after" {
			return evt
		}
	}
	return ""
}

func guardedConfig() machine.Config {
	return machine.Config{
		ID:      "gate",
		Initial: "closed",
		Context: false,
		States: map[string]*machine.StateConfig{
			"closed": {
				On: map[string][]machine.TransitionConfig{
					"GO": {
						{Cond: "canGo", Target: "/open"},
						{Target: "/blocked"},
					},
				},
			},
			"open":    {},
			"blocked": {},
		},
	}
}

func TestFirstPassingGuardWins(t *testing.T) {
	behaviors := machine.Behaviors{
		Guards: map[string]machine.GuardFn{
			"canGo": func(ctx any, _ machine.Event) bool { return ctx.(bool) },
		},
	}
	m, err := machine.New(guardedConfig(), behaviors)
	require.NoError(t, err)

	initial := m.InitialState()
	allowed := m.Transition(initial, machine.NewEvent("GO"), true)
	assert.Equal(t, "/open", allowed.Value)

	denied := m.Transition(initial, machine.NewEvent("GO"), false)
	assert.Equal(t, "/blocked", denied.Value, "falls through to the unconditional candidate")
}

func TestResolveStateFallsBackToInitialWhenValueEmpty(t *testing.T) {
	var calls []string
	m, err := machine.New(toggleConfig(), toggleBehaviors(&calls))
	require.NoError(t, err)

	resolved := m.ResolveState(machine.State{})
	assert.Equal(t, m.InitialState().Value, resolved.Value)
	assert.Equal(t, m.InitialState().Actions, resolved.Actions, "an empty value resolves to the full initial state, init action included")
}

func TestResolveStateNormalizesActivitiesWithoutRunningActions(t *testing.T) {
	var calls []string
	m, err := machine.New(toggleConfig(), toggleBehaviors(&calls))
	require.NoError(t, err)

	resolved := m.ResolveState(machine.State{Value: "/on", Context: 5})
	assert.Equal(t, "/on", resolved.Value)
	assert.Equal(t, 5, resolved.Context)
	assert.Empty(t, calls, "ResolveState must not run entry effects")
}

func invokeConfig() machine.Config {
	return machine.Config{
		ID:      "loader",
		Initial: "loading",
		States: map[string]*machine.StateConfig{
			"loading": {
				Invoke: &machine.InvokeConfig{
					ID:      "fetch",
					Src:     "fetchData",
					OnDone:  &machine.TransitionConfig{Target: "/success"},
					OnError: &machine.TransitionConfig{Target: "/failure"},
				},
			},
			"success": {},
			"failure": {},
		},
	}
}

func TestInvokeOnDoneTransitionsOnDoneInvokeEvent(t *testing.T) {
	behaviors := machine.Behaviors{
		Services: map[string]machine.ServiceFactory{
			"fetchData": func(_ any, _ machine.Event) any { return nil },
		},
	}
	m, err := machine.New(invokeConfig(), behaviors)
	require.NoError(t, err)

	initial := m.InitialState()
	next := m.Transition(initial, machine.NewEvent(machine.DoneInvokeEvent("fetch")), initial.Context)
	assert.Equal(t, "/success", next.Value)
}

func TestInvokeOnErrorTransitionsOnErrorExecutionEvent(t *testing.T) {
	behaviors := machine.Behaviors{
		Services: map[string]machine.ServiceFactory{
			"fetchData": func(_ any, _ machine.Event) any { return nil },
		},
	}
	m, err := machine.New(invokeConfig(), behaviors)
	require.NoError(t, err)

	initial := m.InitialState()
	next := m.Transition(initial, machine.NewEvent(machine.ErrorExecutionEvent), initial.Context)
	assert.Equal(t, "/failure", next.Value)
}

func TestWithContextRebindsInitialContext(t *testing.T) {
	var calls []string
	m, err := machine.New(toggleConfig(), toggleBehaviors(&calls))
	require.NoError(t, err)

	contextual, ok := m.(machine.ContextualMachine)
	require.True(t, ok, "reference compiler must implement ContextualMachine")

	rebound := contextual.WithContext(42)
	assert.Equal(t, 42, rebound.InitialState().Context)
	assert.Equal(t, 0, m.InitialState().Context, "WithContext must not mutate the original machine")
}

func TestNewRejectsUnresolvedActionName(t *testing.T) {
	cfg := machine.Config{
		ID:      "broken",
		Initial: "idle",
		States: map[string]*machine.StateConfig{
			"idle": {Entry: []string{"missing"}},
		},
	}
	_, err := machine.New(cfg, machine.Behaviors{})
	assert.Error(t, err)
}

func TestNewRejectsDanglingTransitionTarget(t *testing.T) {
	cfg := machine.Config{
		ID:      "broken",
		Initial: "idle",
		States: map[string]*machine.StateConfig{
			"idle": {
				On: map[string][]machine.TransitionConfig{
					"GO": {{Target: "/nowhere"}},
				},
			},
		},
	}
	_, err := machine.New(cfg, machine.Behaviors{})
	assert.Error(t, err)
}
