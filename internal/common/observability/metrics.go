package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	sectionCounter otelmetric.Int64Counter
	sectionLatency otelmetric.Float64Histogram
	moderationOps  otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	tracerProvider := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tracerProvider)

	obs := &Observability{
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(serviceName),
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return obs
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	sectionCounter, _ := meter.Int64Counter(
		"panel.sections.loaded",
		otelmetric.WithDescription("Number of dashboard section loads"),
	)

	sectionLatency, _ := meter.Float64Histogram(
		"panel.sections.duration",
		otelmetric.WithDescription("Dashboard section load duration"),
		otelmetric.WithUnit("ms"),
	)

	moderationOps, _ := meter.Int64Counter(
		"directory.moderation.decisions",
		otelmetric.WithDescription("Number of moderation decisions"),
	)

	obs.meterProvider = provider
	obs.meter = meter
	obs.sectionCounter = sectionCounter
	obs.sectionLatency = sectionLatency
	obs.moderationOps = moderationOps
	return obs
}

// NewNoop returns an Observability that records nothing. Used by tests and tools.
func NewNoop() *Observability {
	return &Observability{tracer: noop.NewTracerProvider().Tracer("noop")}
}

// StartSpan starts a span named name as a child of ctx.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return noop.NewTracerProvider().Tracer("noop").Start(ctx, name)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordSectionLoad(ctx context.Context, section, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("section", section),
		attribute.String("outcome", outcome),
	)
	if o.sectionCounter != nil {
		o.sectionCounter.Add(ctx, 1, attrs)
	}
	if o.sectionLatency != nil {
		o.sectionLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordModeration(ctx context.Context, decision, outcome string) {
	if o == nil || o.moderationOps == nil {
		return
	}
	o.moderationOps.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("decision", decision),
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
