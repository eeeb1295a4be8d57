package feed

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	tomb "gopkg.in/tomb.v2"

	"strikebook/pkg/book"
	"strikebook/pkg/logging"
	"strikebook/pkg/messaging"
	"strikebook/pkg/otel"
	"strikebook/pkg/quotes"
)

const pipelineBuffer = 64

// Pipeline runs one instruction feed through the books.
//
// Three goroutines split the work: a reader parses records into
// instructions, the applier routes them through the books one at a time,
// and the writer prints each outcome's lines and hands the outcome to the
// optional sinks. Stages are joined by buffered channels and live in one
// tomb: the first error kills the run and Wait joins all three. Outcome
// lines appear in instruction order because the applier is the only
// producer and the writer the only consumer.
type Pipeline struct {
	router  *Router
	output  io.Writer
	sender  messaging.OutcomeSender
	quotes  *quotes.Cache
	metrics *otel.EngineMetrics
	logger  zerolog.Logger
}

// PipelineConfig carries the optional sinks of a Pipeline
type PipelineConfig struct {
	// Sender receives every outcome as a message. Nil disables publishing.
	Sender messaging.OutcomeSender
	// Quotes mirrors top-of-book changes. Nil disables mirroring.
	Quotes *quotes.Cache
}

// NewPipeline creates a Pipeline writing outcome lines to output
func NewPipeline(router *Router, output io.Writer, cfg PipelineConfig) *Pipeline {
	logger := logging.Component("pipeline")
	metrics, err := otel.GetEngineMetrics()
	if err != nil {
		logger.Warn().Err(err).Msg("Engine metrics unavailable")
	}

	return &Pipeline{
		router:  router,
		output:  output,
		sender:  cfg.Sender,
		quotes:  cfg.Quotes,
		metrics: metrics,
		logger:  logger,
	}
}

// Run consumes records from input until EOF, applying each instruction and
// writing outcome lines in instruction order. It returns once every stage
// has finished: nil after a fully processed feed, the first stage error
// otherwise. Publishing failures are logged and never fail the run.
func (p *Pipeline) Run(ctx context.Context, input io.Reader) error {
	runCtx, span := otel.StartFeedSpan(ctx, otel.SpanRunFeed)
	if span != nil {
		defer span.End()
	}

	t, ctx := tomb.WithContext(runCtx)

	instructions := make(chan Instruction, pipelineBuffer)
	outcomes := make(chan Applied, pipelineBuffer)

	t.Go(func() error {
		defer close(instructions)
		return p.readLoop(ctx, NewReader(input), instructions)
	})
	t.Go(func() error {
		defer close(outcomes)
		return p.applyLoop(ctx, instructions, outcomes)
	})
	t.Go(func() error {
		return p.writeLoop(ctx, outcomes)
	})

	return t.Wait()
}

func (p *Pipeline) readLoop(ctx context.Context, reader *csv.Reader, instructions chan<- Instruction) error {
	var n int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			p.logger.Debug().Int("records", n).Msg("Feed input exhausted")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading feed record: %w", err)
		}

		ins, err := ParseRecord(record)
		if err != nil {
			return fmt.Errorf("parsing record %q: %w", record, err)
		}

		n++
		select {
		case instructions <- ins:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Pipeline) applyLoop(ctx context.Context, instructions <-chan Instruction, outcomes chan<- Applied) error {
	var resting int64
	for ins := range instructions {
		insCtx, span := otel.StartFeedSpan(ctx, otel.SpanApplyInstruction,
			attribute.String(otel.AttributeInstructionKind, ins.Kind.String()),
			attribute.String(otel.AttributeSymbol, ins.Symbol),
		)

		start := time.Now()
		applied := p.router.Apply(insCtx, ins)
		p.metrics.RecordApply(insCtx, ins.Kind.String(), time.Since(start))

		if applied == nil {
			// A flush emptied every book
			p.metrics.AddRestingOrders(insCtx, -resting)
			resting = 0
			if span != nil {
				span.End()
			}
			continue
		}

		if delta := restingDelta(ins.Kind, applied.Outcome.Kind); delta != 0 {
			p.metrics.AddRestingOrders(insCtx, delta)
			resting += delta
		}
		switch applied.Outcome.Kind {
		case book.OutcomeTraded:
			p.metrics.IncTrades(insCtx, applied.Symbol)
		case book.OutcomeRejected:
			p.metrics.IncRejects(insCtx, applied.Symbol)
		}

		if span != nil {
			otel.AddAttributes(span,
				attribute.String(otel.AttributeOutcomeKind, applied.Outcome.Kind.String()))
			span.End()
		}

		select {
		case outcomes <- *applied:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *Pipeline) writeLoop(ctx context.Context, outcomes <-chan Applied) error {
	w := bufio.NewWriter(p.output)
	var n int
	for applied := range outcomes {
		for _, line := range FormatOutcome(&applied.Outcome) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return fmt.Errorf("writing outcome: %w", err)
			}
		}
		// Flush per outcome, not per line: a reader tailing the output
		// should never see half an outcome.
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flushing output: %w", err)
		}

		n++
		p.publish(ctx, &applied)
	}

	p.logger.Info().Int("outcomes", n).Msg("Feed drained")
	return nil
}

func (p *Pipeline) publish(ctx context.Context, applied *Applied) {
	if p.sender == nil && p.quotes == nil {
		return
	}

	pubCtx, span := otel.StartFeedSpan(ctx, otel.SpanPublishOutcome,
		attribute.String(otel.AttributeSymbol, applied.Symbol),
		attribute.String(otel.AttributeOutcomeKind, applied.Outcome.Kind.String()),
	)
	if span != nil {
		defer span.End()
	}

	if p.sender != nil {
		msg := messaging.FromOutcome(applied.Symbol, &applied.Outcome)
		if err := p.sender.Send(pubCtx, msg); err != nil {
			p.logger.Error().Err(err).
				Str("symbol", applied.Symbol).
				Uint64("order_id", applied.Outcome.OrderID).
				Msg("Failed to publish outcome")
		}
	}

	if p.quotes != nil && applied.Outcome.Top != nil {
		if err := p.quotes.Publish(pubCtx, applied.Symbol, applied.Outcome.Top); err != nil {
			p.logger.Error().Err(err).
				Str("symbol", applied.Symbol).
				Msg("Failed to publish quote")
		}
	}
}

// restingDelta is the change in resting-order count implied by an outcome.
// A new order either rests (+1), trades away its maker (-1, the taker never
// rested), or is rejected (0); a cancel always removes one resting order.
func restingDelta(kind Kind, outcome book.OutcomeKind) int64 {
	switch {
	case outcome == book.OutcomeRejected:
		return 0
	case kind == KindNew && outcome == book.OutcomeTraded:
		return -1
	case kind == KindNew:
		return 1
	case kind == KindCancel:
		return -1
	default:
		return 0
	}
}
