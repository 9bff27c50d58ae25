// internal/common/observability/metrics.go
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
)

// Observability records automation lifecycle metrics, exported in
// Prometheus format.
type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	automationCounter  otelmetric.Int64Counter
	automationDuration otelmetric.Float64Histogram
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

	automationCounter, _ := meter.Int64Counter(
		"automations.processed",
		otelmetric.WithDescription("Number of automations processed"),
	)

	automationDuration, _ := meter.Float64Histogram(
		"automations.duration",
		otelmetric.WithDescription("Automation execution duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		automationCounter:  automationCounter,
		automationDuration: automationDuration,
	}
}

// RecordAutomation counts a terminal automation state. action is the
// action identifier, status is "success" or "error".
func (o *Observability) RecordAutomation(ctx context.Context, action, status string) {
	if o.automationCounter != nil {
		o.automationCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("action", action),
			attribute.String("status", status),
		))
	}
}

// RecordAutomationDuration records how long an automation took to reach a
// terminal state.
func (o *Observability) RecordAutomationDuration(ctx context.Context, duration time.Duration, action, status string) {
	if o.automationDuration != nil {
		o.automationDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("action", action),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
