package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// Observability bundles the otel meter and tracer providers for the worker
// process. A zero value records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider tracerShutdowner
	meter          otelmetric.Meter
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	Tracer         *Tracer
}

type Options struct {
	ServiceName    string
	TracingEnabled bool
	SampleRatio    float64
	// Registerer defaults to the global prometheus registry.
	Registerer promclient.Registerer
	// SpanProcessors receive every sampled span.
	SpanProcessors []sdktrace.SpanProcessor
}

func New(opts Options) (*Observability, error) {
	var exporterOpts []prometheus.Option
	if opts.Registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(opts.Registerer))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		return &Observability{Tracer: NoopTracer()}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o := &Observability{
		meterProvider: provider,
		meter:         provider.Meter(opts.ServiceName),
		Tracer:        NoopTracer(),
	}

	o.jobCounter, _ = o.meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	o.jobDuration, _ = o.meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	if opts.TracingEnabled {
		tp := newTracerProvider(opts.ServiceName, opts.SampleRatio, opts.SpanProcessors...)
		otel.SetTracerProvider(tp)
		o.tracerProvider = tp
		o.Tracer = NewTracer(tp.Tracer(opts.ServiceName))
	}

	return o, nil
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o != nil && o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o != nil && o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

// StartSpan opens a span on the process tracer. A nil Observability traces
// nothing.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	if o == nil {
		return ctx, func(error) {}
	}
	return o.Tracer.Start(ctx, name, attrs...)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
	}
	if o.meterProvider != nil {
		return o.meterProvider.Shutdown(ctx)
	}
	return nil
}
