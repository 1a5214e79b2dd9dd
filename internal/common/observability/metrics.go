// internal/common/observability/metrics.go
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	meter          otelmetric.Meter
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	matchRuns      otelmetric.Int64Counter
	matchDuration  otelmetric.Float64Histogram
	topMatches     otelmetric.Int64Histogram
}

// Options control the tracer provider.
type Options struct {
	TracingEnabled   bool
	TraceSampleRatio float64
	// PrometheusOptions are passed to the metric exporter, e.g. a dedicated registerer.
	PrometheusOptions []prometheus.Option
	// SpanProcessors receive finished spans, e.g. an exporter or a test recorder.
	SpanProcessors []sdktrace.SpanProcessor
}

// New sets up the global meter and tracer providers for serviceName.
func New(serviceName string, opts Options) (*Observability, error) {
	exporter, err := prometheus.New(opts.PrometheusOptions...)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	o := &Observability{
		meterProvider: provider,
		meter:         meter,
	}

	o.jobCounter, _ = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	o.jobDuration, _ = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	o.matchRuns, _ = meter.Int64Counter(
		"appetite.engine.runs",
		otelmetric.WithDescription("Number of scoring engine runs"),
	)
	o.matchDuration, _ = meter.Float64Histogram(
		"appetite.match.duration",
		otelmetric.WithDescription("Appetite match run duration"),
		otelmetric.WithUnit("ms"),
	)
	o.topMatches, _ = meter.Int64Histogram(
		"appetite.match.top_matches",
		otelmetric.WithDescription("Top matches returned per run"),
	)

	o.setupTracing(serviceName, opts)
	return o, nil
}

// NewNoop returns an Observability whose recorders do nothing.
func NewNoop() *Observability {
	return &Observability{}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

// RecordMatchRun records one engine run with its outcome.
func (o *Observability) RecordMatchRun(ctx context.Context, source, status string, duration time.Duration, topMatches int) {
	attrs := otelmetric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)
	if o.matchRuns != nil {
		o.matchRuns.Add(ctx, 1, attrs)
	}
	if o.matchDuration != nil {
		o.matchDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
	if o.topMatches != nil {
		o.topMatches.Record(ctx, int64(topMatches), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	var firstErr error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
