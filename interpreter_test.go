package xstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xstate "github.com/joeblynch/xstate"
	"github.com/joeblynch/xstate/clock"
	"github.com/joeblynch/xstate/machine"
)

func newCounterMachine(t *testing.T) machine.Machine {
	t.Helper()
	cfg := machine.Config{
		ID:      "counter",
		Initial: "idle",
		Context: 0,
		States: map[string]*machine.StateConfig{
			"idle": {
				On: map[string][]machine.TransitionConfig{
					"INC": {{Actions: []string{"increment"}}},
				},
			},
		},
	}
	behaviors := machine.Behaviors{
		Assign: map[string]machine.AssignFn{
			"increment": func(ctx any, _ machine.Event) any { return ctx.(int) + 1 },
		},
	}
	m, err := machine.New(cfg, behaviors)
	require.NoError(t, err)
	return m
}

func newFinalMachine(t *testing.T) machine.Machine {
	t.Helper()
	cfg := machine.Config{
		ID:      "workflow",
		Initial: "idle",
		States: map[string]*machine.StateConfig{
			"idle": {
				On: map[string][]machine.TransitionConfig{
					"GO": {{Target: "/finished"}},
				},
			},
			"finished": {Type: "final"},
		},
	}
	m, err := machine.New(cfg, machine.Behaviors{
		DoneData: map[string]machine.DoneDataFn{
			"/finished": func(ctx any, _ machine.Event) any { return "all done" },
		},
	})
	require.NoError(t, err)
	return m
}

func TestDeferredSendBeforeStartRunsAfterInitialize(t *testing.T) {
	svc := xstate.New(newCounterMachine(t), xstate.Options{
		Execute:     true,
		DeferEvents: true,
		Clock:       clock.NewSimulated(),
	})

	var values []string
	svc.OnTransition(func(state machine.State) { values = append(values, state.Value) })

	svc.Send(machine.NewEvent("INC"))
	assert.Empty(t, values, "no transition may publish before Start")

	svc.Start(machine.State{})

	assert.Equal(t, []string{"/idle", "/idle"}, values, "initial state then the deferred INC's transition")
	assert.Equal(t, 1, svc.State().Context)
}

func TestSendBeforeStartWithoutDeferEventsPanics(t *testing.T) {
	svc := xstate.New(newCounterMachine(t), xstate.Options{
		Execute:     true,
		DeferEvents: false,
		Clock:       clock.NewSimulated(),
	})

	assert.Panics(t, func() { svc.Send(machine.NewEvent("INC")) })
}

func TestEventAndTransitionListenersFireForEachSend(t *testing.T) {
	svc := xstate.New(newCounterMachine(t), xstate.Options{
		Execute: true, DeferEvents: true, Clock: clock.NewSimulated(),
	})

	var events []string
	var transitions int
	svc.OnEvent(func(e machine.Event) { events = append(events, e.Type) })
	svc.OnTransition(func(machine.State) { transitions++ })

	svc.Start(machine.State{})
	svc.Send(machine.NewEvent("INC"))
	svc.Send(machine.NewEvent("INC"))

	assert.Equal(t, []string{machine.EventInit, "INC", "INC"}, events)
	assert.Equal(t, 3, transitions, "one publish for the initial state plus one per send")
	assert.Equal(t, 2, svc.State().Context)
}

func TestOffRemovesListenerFromFutureNotifications(t *testing.T) {
	svc := xstate.New(newCounterMachine(t), xstate.Options{
		Execute: true, DeferEvents: true, Clock: clock.NewSimulated(),
	})

	var count int
	handle := svc.OnTransition(func(machine.State) { count++ })

	svc.Start(machine.State{})
	assert.Equal(t, 1, count)

	svc.Off(handle)
	svc.Send(machine.NewEvent("INC"))
	assert.Equal(t, 1, count, "Off must stop further notifications")
}

func TestListenerAddedDuringNotificationDoesNotFireForCurrentEvent(t *testing.T) {
	svc := xstate.New(newCounterMachine(t), xstate.Options{
		Execute: true, DeferEvents: true, Clock: clock.NewSimulated(),
	})

	var lateCalls int
	svc.OnTransition(func(machine.State) {
		svc.OnTransition(func(machine.State) { lateCalls++ })
	})

	svc.Start(machine.State{})
	assert.Equal(t, 0, lateCalls, "a listener registered mid-notification must not fire for that same event")

	svc.Send(machine.NewEvent("INC"))
	assert.Equal(t, 1, lateCalls, "it fires starting from the next event")
}

func TestNextStatePreviewDoesNotPublishOrMutate(t *testing.T) {
	svc := xstate.New(newCounterMachine(t), xstate.Options{
		Execute: true, DeferEvents: true, Clock: clock.NewSimulated(),
	})
	svc.Start(machine.State{})

	before := svc.State()
	preview := svc.NextState(machine.NewEvent("INC"))

	assert.Equal(t, 1, preview.Context)
	assert.Equal(t, before, svc.State(), "NextState must not publish")
	assert.Equal(t, 0, svc.State().Context)
}

func TestFinalStateFiresDoneThenStopListenersAndStopsService(t *testing.T) {
	svc := xstate.New(newFinalMachine(t), xstate.Options{
		Execute: true, DeferEvents: true, Clock: clock.NewSimulated(),
	})

	var doneData any
	var doneFired, stopFired bool
	svc.OnDone(func(e machine.Event) { doneFired = true; doneData = e.Data })
	svc.OnStop(func() { stopFired = true })

	svc.Start(machine.State{})
	svc.Send(machine.NewEvent("GO"))

	assert.True(t, doneFired)
	assert.Equal(t, "all done", doneData)
	assert.True(t, stopFired)
	assert.True(t, svc.State().Done())
}

func TestStopIsIdempotentAndFiresStopListenersExactlyOnce(t *testing.T) {
	svc := xstate.New(newCounterMachine(t), xstate.Options{
		Execute: true, DeferEvents: true, Clock: clock.NewSimulated(),
	})
	svc.Start(machine.State{})

	var stops int
	svc.OnStop(func() { stops++ })

	svc.Stop()
	svc.Stop()
	svc.Stop()

	assert.Equal(t, 1, stops)
}
