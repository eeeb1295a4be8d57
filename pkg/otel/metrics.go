package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "strikebook/pkg/otel"
)

var (
	engineMetrics     *EngineMetrics
	engineMetricsOnce sync.Once
)

// EngineMetrics holds the metric instruments for feed processing
type EngineMetrics struct {
	// Throughput metrics
	instructionsTotal metric.Int64Counter
	tradesTotal       metric.Int64Counter
	rejectsTotal      metric.Int64Counter

	// Latency of applying one instruction to its book
	applyLatency metric.Float64Histogram

	// Orders currently resting across all books
	restingOrders metric.Int64UpDownCounter
}

// NewEngineMetrics creates the engine instruments on the given meter
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	instructionsTotal, err := meter.Int64Counter(
		"engine.instructions.total",
		metric.WithDescription("Total number of feed instructions applied"),
		metric.WithUnit("{instruction}"),
	)
	if err != nil {
		return nil, err
	}

	tradesTotal, err := meter.Int64Counter(
		"engine.trades.total",
		metric.WithDescription("Total number of trades executed"),
		metric.WithUnit("{trade}"),
	)
	if err != nil {
		return nil, err
	}

	rejectsTotal, err := meter.Int64Counter(
		"engine.rejects.total",
		metric.WithDescription("Total number of orders rejected for crossing the book"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	applyLatency, err := meter.Float64Histogram(
		"engine.apply.duration",
		metric.WithDescription("Time to apply one instruction to its book (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	restingOrders, err := meter.Int64UpDownCounter(
		"engine.orders.resting",
		metric.WithDescription("Number of orders currently resting in the books"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		instructionsTotal: instructionsTotal,
		tradesTotal:       tradesTotal,
		rejectsTotal:      rejectsTotal,
		applyLatency:      applyLatency,
		restingOrders:     restingOrders,
	}, nil
}

// GetEngineMetrics returns the EngineMetrics singleton, creating its
// instruments on the global meter provider on first use
func GetEngineMetrics() (*EngineMetrics, error) {
	var err error
	engineMetricsOnce.Do(func() {
		meter := GetMeterProvider().Meter(instrumentationName)
		engineMetrics, err = NewEngineMetrics(meter)
	})
	if err != nil {
		return nil, err
	}
	return engineMetrics, nil
}

// RecordApply records one applied instruction and its latency. All record
// methods are nil-safe so callers never have to branch on metric setup.
func (m *EngineMetrics) RecordApply(ctx context.Context, kind string, duration time.Duration) {
	if m == nil || m.instructionsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(AttributeInstructionKind, kind),
	}
	m.instructionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.applyLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncTrades increments the executed trade counter
func (m *EngineMetrics) IncTrades(ctx context.Context, symbol string) {
	if m == nil || m.tradesTotal == nil {
		return
	}

	m.tradesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(AttributeSymbol, symbol)))
}

// IncRejects increments the rejected order counter
func (m *EngineMetrics) IncRejects(ctx context.Context, symbol string) {
	if m == nil || m.rejectsTotal == nil {
		return
	}

	m.rejectsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(AttributeSymbol, symbol)))
}

// AddRestingOrders adjusts the resting-order count by delta
func (m *EngineMetrics) AddRestingOrders(ctx context.Context, delta int64) {
	if m == nil || m.restingOrders == nil {
		return
	}

	m.restingOrders.Add(ctx, delta)
}
