package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Question outcomes recorded by RecordQuestion.
const (
	QuestionStored  = "stored"
	QuestionMuted   = "muted"
	QuestionDropped = "dropped"
)

// BusinessMetrics records use case activity.
//
// RecordOperation and RecordDuration are generic and labelled by domain ("auth",
// "question", "user"), operation ("handshake_exchange", "ask") and status ("success",
// "error"). RecordQuestion and RecordCredential count moderation outcomes and resolved
// credentials by kind.
type BusinessMetrics interface {
	RecordOperation(ctx context.Context, domain, operation, status string)
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
	RecordQuestion(ctx context.Context, outcome string)
	RecordCredential(ctx context.Context, kind string)
}

type businessMetrics struct {
	operations  metric.Int64Counter
	durations   metric.Float64Histogram
	questions   metric.Int64Counter
	credentials metric.Int64Counter
}

// NewBusinessMetrics creates the instruments on a meter named after namespace, which also
// prefixes every metric name.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)
	b := &businessMetrics{}
	var err error

	if b.operations, err = meter.Int64Counter(
		namespace+"_operations_total",
		metric.WithDescription("Use case operations"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	if b.durations, err = meter.Float64Histogram(
		namespace+"_operation_duration_seconds",
		metric.WithDescription("Use case operation duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	if b.questions, err = meter.Int64Counter(
		namespace+"_questions_total",
		metric.WithDescription("Submitted questions by moderation outcome"),
		metric.WithUnit("{question}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create question counter: %w", err)
	}

	if b.credentials, err = meter.Int64Counter(
		namespace+"_credentials_total",
		metric.WithDescription("Resolved request credentials by kind"),
		metric.WithUnit("{credential}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create credential counter: %w", err)
	}

	return b, nil
}

func operationAttributes(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordQuestion(ctx context.Context, outcome string) {
	b.questions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (b *businessMetrics) RecordCredential(ctx context.Context, kind string) {
	b.credentials.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// NoOpBusinessMetrics discards everything. Used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (n *NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}

func (n *NoOpBusinessMetrics) RecordQuestion(context.Context, string) {}

func (n *NoOpBusinessMetrics) RecordCredential(context.Context, string) {}
