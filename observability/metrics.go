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

// Package observability wires the routing core's dispatch path to
// OpenTelemetry metrics and tracing, and to slog-based structured logging,
// the way a service built on top of the core would configure it.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider selects which backend a Recorder's metrics and traces are
// exported to.
type Provider string

const (
	// PrometheusProvider scrapes metrics from an in-process registry.
	PrometheusProvider Provider = "prometheus"
	// StdoutProvider writes metrics/spans to stdout, for local development.
	StdoutProvider Provider = "stdout"
)

// DefaultDurationBuckets are histogram boundaries for request duration in
// seconds, from 5 milliseconds to 10 seconds.
var DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// MetricsRecorder records request-scoped and ad-hoc custom metrics through
// an OpenTelemetry meter. It satisfies the shape of a context-level metrics
// recorder: RecordMetric/IncrementCounter/SetGauge create their instrument
// on first use. Recorder.Middleware does not attach a MetricsRecorder to the
// request context; a handler reaches it through the Recorder's Metrics field.
type MetricsRecorder struct {
	provider Provider
	meter    metric.Meter

	requestCounter    metric.Int64Counter
	durationHistogram metric.Float64Histogram
	inFlight          metric.Int64UpDownCounter

	prometheusRegistry *promclient.Registry
	prometheusHandler  http.Handler

	mu          sync.Mutex
	counters    map[string]metric.Float64Counter
	histograms  map[string]metric.Float64Histogram
	gaugeValues map[string]metric.Float64ObservableGauge
	gaugeState  map[string]*float64
}

// NewMetricsRecorder builds a MetricsRecorder backed by provider.
func NewMetricsRecorder(provider Provider) (*MetricsRecorder, error) {
	r := &MetricsRecorder{
		provider:    provider,
		counters:    make(map[string]metric.Float64Counter),
		histograms:  make(map[string]metric.Float64Histogram),
		gaugeValues: make(map[string]metric.Float64ObservableGauge),
		gaugeState:  make(map[string]*float64),
	}

	var meterProvider metric.MeterProvider
	switch provider {
	case PrometheusProvider:
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("observability: create prometheus exporter: %w", err)
		}
		r.prometheusRegistry = registry
		r.prometheusHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	case StdoutProvider:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("observability: create stdout metrics exporter: %w", err)
		}
		reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))
		meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	default:
		return nil, fmt.Errorf("observability: unsupported metrics provider %q", provider)
	}

	r.meter = meterProvider.Meter("github.com/stonecore/router")

	var err error
	if r.requestCounter, err = r.meter.Int64Counter("router.requests.total",
		metric.WithDescription("Total number of dispatched requests")); err != nil {
		return nil, err
	}
	if r.durationHistogram, err = r.meter.Float64Histogram("router.request.duration",
		metric.WithDescription("Request dispatch duration in seconds"),
		metric.WithExplicitBucketBoundaries(DefaultDurationBuckets...)); err != nil {
		return nil, err
	}
	if r.inFlight, err = r.meter.Int64UpDownCounter("router.requests.in_flight",
		metric.WithDescription("Requests currently being dispatched")); err != nil {
		return nil, err
	}
	return r, nil
}

// PrometheusHandler returns the http.Handler serving this recorder's
// Prometheus registry, or nil when provider isn't PrometheusProvider.
func (r *MetricsRecorder) PrometheusHandler() http.Handler { return r.prometheusHandler }

// StartRequest marks the beginning of a dispatch and returns a func that
// finalizes the request/duration/in-flight metrics when called.
func (r *MetricsRecorder) StartRequest(ctx context.Context, attrs ...attribute.KeyValue) func(status int) {
	start := time.Now()
	r.inFlight.Add(ctx, 1)
	return func(status int) {
		elapsed := time.Since(start).Seconds()
		all := append(append([]attribute.KeyValue{}, attrs...), attribute.Int("http.status_code", status))
		r.requestCounter.Add(ctx, 1, metric.WithAttributes(all...))
		r.durationHistogram.Record(ctx, elapsed, metric.WithAttributes(all...))
		r.inFlight.Add(ctx, -1)
	}
}

// RecordMetric records a custom histogram metric with the given name and
// value, creating the instrument on first use.
func (r *MetricsRecorder) RecordMetric(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue) {
	h := r.histogram(name)
	if h == nil {
		return
	}
	h.Record(ctx, value, metric.WithAttributes(attrs...))
}

// IncrementCounter increments a custom counter metric with the given name.
func (r *MetricsRecorder) IncrementCounter(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	c := r.counter(name)
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// SetGauge sets a custom gauge metric with the given name and value.
func (r *MetricsRecorder) SetGauge(_ context.Context, name string, value float64, _ ...attribute.KeyValue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.gaugeState[name]
	if !ok {
		state = new(float64)
		r.gaugeState[name] = state
		gauge, err := r.meter.Float64ObservableGauge(name,
			metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
				o.Observe(*state)
				return nil
			}))
		if err != nil {
			return
		}
		r.gaugeValues[name] = gauge
	}
	*state = value
}

func (r *MetricsRecorder) counter(name string) metric.Float64Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c, err := r.meter.Float64Counter(name)
	if err != nil {
		return nil
	}
	r.counters[name] = c
	return c
}

func (r *MetricsRecorder) histogram(name string) metric.Float64Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	h, err := r.meter.Float64Histogram(name)
	if err != nil {
		return nil
	}
	r.histograms[name] = h
	return h
}
