package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds operational metrics using OTEL semantic conventions.
type Metrics struct {
	runs           metric.Int64Counter
	transitions    metric.Int64Counter
	regionFailures metric.Int64Counter
	runDuration    metric.Float64Histogram
}

// NewMetrics creates the siesta meters on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("siesta")

	runs, err := meter.Int64Counter(
		"siesta.runs",
		metric.WithDescription("Number of rule runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter(
		"siesta.instances.transitioned",
		metric.WithDescription("Number of instance transitions requested"),
		metric.WithUnit("{instance}"),
	)
	if err != nil {
		return nil, err
	}

	regionFailures, err := meter.Int64Counter(
		"siesta.regions.failed",
		metric.WithDescription("Number of per-region pass failures"),
		metric.WithUnit("{region}"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"siesta.run.duration",
		metric.WithDescription("Duration of rule runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		runs:           runs,
		transitions:    transitions,
		regionFailures: regionFailures,
		runDuration:    runDuration,
	}, nil
}

// RecordRun records one completed rule run with its status.
func (m *Metrics) RecordRun(ctx context.Context, rule, status string, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("rule", rule),
		attribute.String("status", status),
	)
	m.runs.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, durationSeconds, attrs)
}

// RecordTransitions records accepted bulk transitions for one region.
func (m *Metrics) RecordTransitions(ctx context.Context, rule, region string, count int) {
	m.transitions.Add(ctx, int64(count),
		metric.WithAttributes(
			attribute.String("rule", rule),
			attribute.String("cloud.region", region),
		),
	)
}

// RecordRegionFailure records one failed region pass.
func (m *Metrics) RecordRegionFailure(ctx context.Context, rule, region string) {
	m.regionFailures.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("rule", rule),
			attribute.String("cloud.region", region),
		),
	)
}
