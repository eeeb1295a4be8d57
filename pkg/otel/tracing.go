package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Span names
	SpanRunFeed          = "run_feed"
	SpanApplyInstruction = "apply_instruction"
	SpanPublishOutcome   = "publish_outcome"

	// Attribute keys
	AttributeSymbol          = "feed.symbol"
	AttributeInstructionKind = "instruction.kind"
	AttributeOutcomeKind     = "outcome.kind"
	AttributeOrderID         = "order.id"
	AttributeUserID          = "order.user_id"
	AttributeOrderSide       = "order.side"
	AttributeOrderPrice      = "order.price"
	AttributeOrderQuantity   = "order.quantity"
)

// StartFeedSpan starts a span on the engine tracer. The span is nil when
// tracing is not initialized; callers guard End on that.
func StartFeedSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetEngineTracer()
	if tracer == nil {
		return ctx, nil
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddAttributes adds attributes to a span
func AddAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
}
