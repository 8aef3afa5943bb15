// Package otelbridge implements the interpreter's DevTools capability on
// top of OpenTelemetry tracing, adapted from stateforward-go-hsm's
// pkg/telemetry (which wraps a trace.TracerProvider behind a no-op default
// so the core never depends on a concrete tracing backend).
package otelbridge

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/joeblynch/xstate/machine"
)

// DevTools opens one span per micro-step (init or update) tagged with the
// resulting state value, satisfying the interpreter's DevTools capability
// {Init(state), Send(event, state)} structurally — this package does not
// import the root xstate package to avoid a dependency cycle.
type DevTools struct {
	tracer trace.Tracer
	ctx    context.Context
}

// New returns a DevTools bridge that starts spans on tracer, named
// "xstate.init" for the initial update and "xstate.update" afterwards.
func New(tracer trace.Tracer) *DevTools {
	return &DevTools{tracer: tracer, ctx: context.Background()}
}

func (d *DevTools) Init(state machine.State) {
	d.emit("xstate.init", machine.Event{}, state)
}

func (d *DevTools) Send(event machine.Event, state machine.State) {
	d.emit("xstate.update", event, state)
}

func (d *DevTools) emit(name string, event machine.Event, state machine.State) {
	_, span := d.tracer.Start(d.ctx, name)
	defer span.End()
	span.SetAttributes(
		attribute.String("xstate.state", state.Value),
		attribute.String("xstate.event", event.Type),
		attribute.Bool("xstate.done", state.Tree.Done),
	)
}
