// Copyright 2026 The Stonecore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracingRecorder starts and annotates spans for dispatched requests through
// an OpenTelemetry tracer.
type TracingRecorder struct {
	provider Provider
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

// NewTracingRecorder builds a TracingRecorder backed by provider.
//
// Prometheus has no tracing analogue, so PrometheusProvider here means
// "collect spans in-process without exporting them" — useful when a caller
// only wants TraceID/SpanID available on the request context without paying
// for an exporter.
func NewTracingRecorder(provider Provider) (*TracingRecorder, error) {
	var opts []sdktrace.TracerProviderOption
	var shutdown func(context.Context) error

	switch provider {
	case StdoutProvider:
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("observability: create stdout trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		shutdown = exporter.Shutdown
	case PrometheusProvider:
		// no exporter: spans are sampled and discarded after the batcher would
		// otherwise ship them, which is the point — see doc comment above.
	default:
		return nil, fmt.Errorf("observability: unsupported tracing provider %q", provider)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	if shutdown == nil {
		shutdown = func(ctx context.Context) error { return tp.Shutdown(ctx) }
	} else {
		inner := shutdown
		shutdown = func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				return err
			}
			return inner(ctx)
		}
	}

	return &TracingRecorder{
		provider: provider,
		tracer:   tp.Tracer("github.com/stonecore/router"),
		shutdown: shutdown,
	}, nil
}

// Shutdown flushes and stops the underlying tracer provider.
func (r *TracingRecorder) Shutdown(ctx context.Context) error { return r.shutdown(ctx) }

// StartSpan starts a span named name as a child of any span already active
// in ctx, returning the derived context and the span itself.
func (r *TracingRecorder) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// SpanContext is a thin per-request handle over an active span, satisfying
// the context-level tracing recorder shape a handler can call into:
// TraceID/SpanID/SetSpanAttribute/AddSpanEvent/TraceContext.
type SpanContext struct {
	ctx context.Context
}

// NewSpanContext wraps ctx for handler-facing span access.
func NewSpanContext(ctx context.Context) SpanContext { return SpanContext{ctx: ctx} }

// TraceID returns the active span's trace ID, or "" if tracing isn't active.
func (s SpanContext) TraceID() string {
	sc := trace.SpanContextFromContext(s.ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the active span's span ID, or "" if tracing isn't active.
func (s SpanContext) SpanID() string {
	sc := trace.SpanContextFromContext(s.ctx)
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

// SetSpanAttribute adds an attribute to the active span. No-op if tracing
// isn't active.
func (s SpanContext) SetSpanAttribute(key string, value any) {
	trace.SpanFromContext(s.ctx).SetAttributes(toAttribute(key, value))
}

// AddSpanEvent adds a named event to the active span. No-op if tracing
// isn't active.
func (s SpanContext) AddSpanEvent(name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(s.ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// TraceContext returns the context the span was started with, suitable for
// manual span creation or propagation.
func (s SpanContext) TraceContext() context.Context { return s.ctx }

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
