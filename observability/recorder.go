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
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	stonerouter "github.com/stonecore/router"
	"github.com/stonecore/router/definition"
	"github.com/stonecore/router/event"
	"github.com/stonecore/router/pipeline"
)

// Recorder unifies metrics, tracing and access logging behind a single
// pipeline.Pipe, the way a service wires request-level observability into
// its dispatch path.
type Recorder struct {
	Metrics   *MetricsRecorder
	Tracing   *TracingRecorder
	AccessLog func(method, path, routeName string, status int, duration time.Duration)
}

// NewRecorder builds a Recorder with both metrics and tracing backed by the
// same provider, and an access logger writing through logger.
func NewRecorder(provider Provider, logger *slog.Logger, cfg AccessLogConfig) (*Recorder, error) {
	metrics, err := NewMetricsRecorder(provider)
	if err != nil {
		return nil, err
	}
	tracing, err := NewTracingRecorder(provider)
	if err != nil {
		return nil, err
	}
	return &Recorder{Metrics: metrics, Tracing: tracing, AccessLog: RequestLogger(logger, cfg)}, nil
}

// Middleware returns the pipeline.Pipe that records a span, duration and
// request-count metrics, and an access-log line around the rest of the
// pipeline. Register it with a low priority so it wraps everything else.
func (r *Recorder) Middleware() pipeline.Pipe {
	return func(ctx *definition.ActionContext, next pipeline.Next) (event.OutgoingResponse, error) {
		start := time.Now()
		reqCtx := ctx.Event.Context()

		routeName := ""
		if ctx.Route != nil {
			routeName = ctx.Route.Name()
		}

		spanCtx, span := r.Tracing.StartSpan(reqCtx, "router.dispatch",
			attribute.String("http.method", ctx.Event.Method()),
			attribute.String("http.route", routeName),
		)
		defer span.End()

		finish := r.Metrics.StartRequest(spanCtx,
			attribute.String("http.method", ctx.Event.Method()),
			attribute.String("http.route", routeName),
		)

		resp, err := next(ctx)

		finish(resp.StatusCode)
		if r.AccessLog != nil {
			r.AccessLog(ctx.Event.Method(), ctx.Event.DecodedPathname(), routeName, resp.StatusCode, time.Since(start))
		}
		return resp, err
	}
}

// DiagnosticHandler logs the router's internal routing/match diagnostic
// events at debug level, so they show up alongside access logs without
// being promoted to info noise on every request.
func (r *Recorder) DiagnosticHandler(logger *slog.Logger) stonerouter.DiagnosticHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(evt stonerouter.DiagnosticEvent) {
		attrs := make([]any, 0, len(evt.Fields)*2+2)
		attrs = append(attrs, slog.String("kind", evt.Kind.String()))
		for k, v := range evt.Fields {
			attrs = append(attrs, slog.Any(k, v))
		}
		logger.Debug(evt.Message, attrs...)
	}
}
