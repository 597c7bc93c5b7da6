package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"cotiza-workers/internal/common/logger"
)

type tracerShutdowner interface {
	Shutdown(ctx context.Context) error
}

func newTracerProvider(serviceName string, sampleRatio float64, processors ...sdktrace.SpanProcessor) *sdktrace.TracerProvider {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
	}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	return sdktrace.NewTracerProvider(opts...)
}

// Tracer starts spans around the phases of a job.
type Tracer struct {
	t trace.Tracer
}

func NewTracer(t trace.Tracer) *Tracer {
	return &Tracer{t: t}
}

func NoopTracer() *Tracer {
	return &Tracer{t: noop.NewTracerProvider().Tracer("")}
}

// Start opens a span. The returned func ends it, recording err when non-nil.
func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	if t == nil || t.t == nil {
		return ctx, func(error) {}
	}
	ctx, span := t.t.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// LogSpanProcessor writes a debug line for every finished span. It is the only
// span sink when no exporter is configured.
type LogSpanProcessor struct {
	logger logger.Logger
}

func NewLogSpanProcessor(log logger.Logger) *LogSpanProcessor {
	return &LogSpanProcessor{logger: log}
}

func (p *LogSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *LogSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	fields := map[string]interface{}{
		"span":       s.Name(),
		"traceId":    s.SpanContext().TraceID().String(),
		"durationMs": s.EndTime().Sub(s.StartTime()).Milliseconds(),
		"status":     s.Status().Code.String(),
	}
	for _, kv := range s.Attributes() {
		fields[string(kv.Key)] = kv.Value.Emit()
	}
	p.logger.Debug("span finished", fields)
}

func (p *LogSpanProcessor) Shutdown(context.Context) error { return nil }

func (p *LogSpanProcessor) ForceFlush(context.Context) error { return nil }
