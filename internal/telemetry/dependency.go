package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DependencyMetrics holds metrics for outbound dependency calls (object
// storage, SMTP relay).
type DependencyMetrics struct {
	callDuration metric.Float64Histogram
	callTotal    metric.Int64Counter
}

// NewDependencyMetrics creates metrics for monitoring outbound calls.
func NewDependencyMetrics() (*DependencyMetrics, error) {
	meter := otel.Meter("github.com/guichethq/guichet/internal/telemetry")

	callDuration, err := meter.Float64Histogram(
		"dependency.call.duration",
		metric.WithDescription("Duration of outbound dependency calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	callTotal, err := meter.Int64Counter(
		"dependency.call.total",
		metric.WithDescription("Total number of outbound dependency calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	return &DependencyMetrics{
		callDuration: callDuration,
		callTotal:    callTotal,
	}, nil
}

// RecordCall records one outbound call.
func (m *DependencyMetrics) RecordCall(dependency, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("dependency.name", dependency),
		attribute.String("dependency.operation", operation),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	// Use background context so a cancelled request cannot drop the sample
	ctx := context.TODO()
	m.callDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.callTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
