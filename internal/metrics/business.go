package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status values for RecordOperation and RecordDuration.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// BusinessMetrics records what the vault does. Labels name operations and
// outcomes only; profile contents never reach a metric.
type BusinessMetrics interface {
	// RecordOperation counts one call of operation in domain ("keystore",
	// "vault" or "backup") with status StatusSuccess or StatusError.
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration observes how long one call took.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordUnlock counts one attempt to open the vault by its load outcome
	// ("ok", "not_found", "auth_failed", "corrupted" or "failed").
	RecordUnlock(ctx context.Context, outcome string)

	// RecordProfiles sets the number of profiles found when the vault was opened.
	RecordProfiles(ctx context.Context, count int)
}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
	unlocks    metric.Int64Counter
	profiles   metric.Int64Gauge
}

// NewBusinessMetrics creates the vault instruments on provider's meter.
func NewBusinessMetrics(provider *Provider) (BusinessMetrics, error) {
	meter := provider.Meter()
	name := func(suffix string) string {
		return fmt.Sprintf("%s_%s", provider.Namespace(), suffix)
	}

	operations, err := meter.Int64Counter(
		name("operations_total"),
		metric.WithDescription("Vault operations by domain, operation and status"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durations, err := meter.Float64Histogram(
		name("operation_duration_seconds"),
		metric.WithDescription("Duration of vault operations in seconds"),
		metric.WithUnit("s"),
		// Unlocks are dominated by key derivation and take hundreds of milliseconds.
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	unlocks, err := meter.Int64Counter(
		name("unlock_attempts_total"),
		metric.WithDescription("Attempts to open the vault by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create unlock counter: %w", err)
	}

	profiles, err := meter.Int64Gauge(
		name("profiles"),
		metric.WithDescription("Connection profiles in the vault when it was last opened"),
		metric.WithUnit("{profile}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile gauge: %w", err)
	}

	return &businessMetrics{
		operations: operations,
		durations:  durations,
		unlocks:    unlocks,
		profiles:   profiles,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, metric.WithAttributes(operationAttributes(domain, operation, status)...))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(),
		metric.WithAttributes(operationAttributes(domain, operation, status)...))
}

func (b *businessMetrics) RecordUnlock(ctx context.Context, outcome string) {
	b.unlocks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (b *businessMetrics) RecordProfiles(ctx context.Context, count int) {
	b.profiles.Record(ctx, int64(count))
}

func operationAttributes(domain, operation, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	}
}
