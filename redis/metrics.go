package redis

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the metric instruments for redis commands.
type metrics struct {
	cmdDuration metric.Float64Histogram
	cmdCount    metric.Int64Counter
}

// newMetrics creates and registers metric instruments.
func newMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}
	var err error

	m.cmdDuration, err = meter.Float64Histogram(
		"db.client.operation.duration",
		metric.WithDescription("Duration of redis commands in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
		),
	)
	if err != nil {
		return nil, err
	}

	m.cmdCount, err = meter.Int64Counter(
		"db.client.operations",
		metric.WithDescription("Number of redis commands"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// recordCommand records duration and call count for one command or pipeline.
func (m *metrics) recordCommand(
	ctx context.Context,
	duration time.Duration,
	operation string,
	attrs []attribute.KeyValue,
	err error,
) {
	if m == nil || m.cmdDuration == nil {
		return
	}

	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+3)
	allAttrs = append(allAttrs, attrs...)
	allAttrs = append(allAttrs, attribute.String("db.operation", operation))

	if err != nil {
		allAttrs = append(allAttrs,
			attribute.String("status", "error"),
			attribute.String("error.type", fmt.Sprintf("%T", err)),
		)
	} else {
		allAttrs = append(allAttrs, attribute.String("status", "ok"))
	}

	set := metric.WithAttributes(allAttrs...)
	m.cmdDuration.Record(ctx, duration.Seconds(), set)
	if m.cmdCount != nil {
		m.cmdCount.Add(ctx, 1, set)
	}
}
