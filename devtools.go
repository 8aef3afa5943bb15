package xstate

import "github.com/joeblynch/xstate/machine"

// DevTools isolates the core from any specific external inspection tool
// behind a narrow {init(state), send(event, state)} capability. Init is
// called once, for the initial update; Send is called for every subsequent
// update.
type DevTools interface {
	Init(state machine.State)
	Send(event machine.Event, state machine.State)
}

type noopDevTools struct{}

func (noopDevTools) Init(machine.State)               {}
func (noopDevTools) Send(machine.Event, machine.State) {}

// NoopDevTools is the interpreter's default devTools capability: it does
// nothing, mirroring the no-op Tracer/Span pair in pkg/telemetry used when
// no real provider is configured.
var NoopDevTools DevTools = noopDevTools{}
