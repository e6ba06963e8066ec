package observability

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	draftCounter  otelmetric.Int64Counter
	draftDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	draftCounter, _ := meter.Int64Counter(
		"outreach.drafts.generated",
		otelmetric.WithDescription("Number of draft generations attempted"),
	)

	draftDuration, _ := meter.Float64Histogram(
		"outreach.drafts.duration",
		otelmetric.WithDescription("Draft generation duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		draftCounter:  draftCounter,
		draftDuration: draftDuration,
	}
}

// RecordDraft records one generation attempt and its duration.
func (o *Observability) RecordDraft(ctx context.Context, success bool, durationMs float64) {
	if o == nil || o.draftCounter == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.Bool("success", success))
	o.draftCounter.Add(ctx, 1, attrs)
	o.draftDuration.Record(ctx, durationMs, attrs)
}

// Shutdown flushes the meter provider.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
