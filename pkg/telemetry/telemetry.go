// Package telemetry supplies a no-op OpenTelemetry TracerProvider and
// Tracer that otelbridge.New can be given when no real tracing backend is
// wanted (otelbridge itself has no default tracer): constructing a real
// SDK provider is unnecessary work for a service that never enables
// tracing, and application code that does want real spans supplies its own
// trace.TracerProvider instead.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Provider struct {
	trace.TracerProvider
}

var (
	provider    = &Provider{}
	tracer      = &Tracer{}
	span        = &Span{}
	spanContext = trace.SpanContext{}
)

// NewProvider returns the shared no-op TracerProvider.
func NewProvider() *Provider {
	return provider
}

// NewNoopTracer returns a trace.Tracer whose spans record nothing, for
// wiring otelbridge.New without pulling in a real OpenTelemetry SDK.
func NewNoopTracer() trace.Tracer {
	return tracer
}

func (provider *Provider) Tracer(name string, options ...trace.TracerOption) trace.Tracer {
	return tracer
}

type Tracer struct {
	trace.Tracer
}

func (tracer *Tracer) Start(ctx context.Context, name string, options ...trace.SpanStartOption) (context.Context, trace.Span) {
	return ctx, span
}

type Span struct {
	trace.Span
}

func (span *Span) End(options ...trace.SpanEndOption)                  {}
func (span *Span) AddEvent(name string, options ...trace.EventOption)  {}
func (span *Span) AddLink(link trace.Link)                             {}
func (span *Span) IsRecording() bool                                   { return false }
func (span *Span) RecordError(err error, options ...trace.EventOption) {}
func (span *Span) SetAttributes(kv ...attribute.KeyValue)              {}
func (span *Span) SetName(name string)                                 {}
func (span *Span) SetStatus(code codes.Code, description string)       {}
func (span *Span) SpanContext() trace.SpanContext                      { return spanContext }
func (span *Span) TracerProvider() trace.TracerProvider                { return provider }
