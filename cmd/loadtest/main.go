// Command loadtest drives a generated instruction feed through the matching
// engine in-process and reports throughput and per-instruction apply latency.
// The feed shape comes from the STRIKEBOOK_* generator settings, so runs are
// reproducible for a given seed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"strikebook/pkg/book"
	"strikebook/pkg/feed"
	"strikebook/pkg/loadgen"
	"strikebook/pkg/logging"
)

type results struct {
	applied int
	elapsed time.Duration

	news     int
	cancels  int
	flushes  int
	trades   int
	rejects  int
	topMoves int

	books   int
	resting int

	hist *hdrhistogram.Histogram
}

func main() {
	rateLimit := flag.Int("rate", 0, "instructions per second, 0 means unlimited")
	logLevel := flag.String("log_level", "info", "logging level")
	flag.Parse()

	logging.Setup(logging.Config{Level: *logLevel, Pretty: true})
	logger := logging.Component("loadtest")

	cfg, err := loadgen.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load generator configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal; a canceled run still reports what it measured
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn().Msg("Received interrupt signal, reporting partial results")
		cancel()
	}()

	// Generate up front so feed synthesis never counts against apply latency
	instructions := loadgen.NewGenerator(cfg).Generate()

	var limiter *rate.Limiter
	if *rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(*rateLimit), *rateLimit)
	}

	logger.Info().
		Str("run_id", uuid.NewString()).
		Int("instructions", len(instructions)).
		Int64("seed", cfg.Seed).
		Int("rate", *rateLimit).
		Msg("Starting load test")

	res := run(ctx, logger, instructions, limiter)

	if err := printSummary(os.Stdout, res); err != nil {
		logger.Fatal().Err(err).Msg("Failed to print summary")
	}
}

func run(ctx context.Context, logger zerolog.Logger, instructions []feed.Instruction, limiter *rate.Limiter) *results {
	router := feed.NewRouter()
	res := &results{
		// Nanosecond latencies; anything above a minute is a stall, not a sample
		hist: hdrhistogram.New(1, time.Minute.Nanoseconds(), 3),
	}

	start := time.Now()
	for _, ins := range instructions {
		if err := waitTurn(ctx, limiter); err != nil {
			logger.Warn().Int("applied", res.applied).Msg("Run interrupted")
			break
		}

		applyStart := time.Now()
		applied := router.Apply(ctx, ins)
		_ = res.hist.RecordValue(time.Since(applyStart).Nanoseconds())
		res.applied++

		tally(res, ins, applied)
	}
	res.elapsed = time.Since(start)

	res.books = router.Len()
	for _, stats := range router.Stats() {
		res.resting += stats.OrderCount
	}
	return res
}

// waitTurn blocks until the limiter grants an instruction slot. With no
// limiter it only reports context cancellation.
func waitTurn(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}

func tally(res *results, ins feed.Instruction, applied *feed.Applied) {
	switch ins.Kind {
	case feed.KindNew:
		res.news++
	case feed.KindCancel:
		res.cancels++
	case feed.KindFlush:
		res.flushes++
	}
	if applied == nil {
		return
	}
	switch applied.Outcome.Kind {
	case book.OutcomeTraded:
		res.trades++
	case book.OutcomeRejected:
		res.rejects++
	}
	if applied.Outcome.Top != nil {
		res.topMoves++
	}
}

func printSummary(out *os.File, res *results) error {
	color.NoColor = false
	cyan := color.New(color.FgCyan).SprintfFunc()
	red := color.New(color.FgRed).SprintfFunc()
	green := color.New(color.FgGreen).SprintfFunc()

	rejects := green("%d", res.rejects)
	if res.rejects > 0 {
		rejects = red("%d", res.rejects)
	}

	throughput := 0.0
	if res.elapsed > 0 {
		throughput = float64(res.applied) / res.elapsed.Seconds()
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)

	fmt.Fprintf(w, "%s\t%s\n", cyan("Metric"), cyan("Value"))
	fmt.Fprintf(w, "------\t-----\n")
	fmt.Fprintf(w, "instructions\t%d\n", res.applied)
	fmt.Fprintf(w, "elapsed\t%s\n", res.elapsed.Round(time.Microsecond))
	fmt.Fprintf(w, "throughput\t%.0f instr/s\n", throughput)
	fmt.Fprintf(w, "new orders\t%d\n", res.news)
	fmt.Fprintf(w, "trades\t%d\n", res.trades)
	fmt.Fprintf(w, "cancels\t%d\n", res.cancels)
	fmt.Fprintf(w, "flushes\t%d\n", res.flushes)
	fmt.Fprintf(w, "rejects\t%s\n", rejects)
	fmt.Fprintf(w, "top moves\t%d\n", res.topMoves)
	fmt.Fprintf(w, "books\t%d\n", res.books)
	fmt.Fprintf(w, "resting orders\t%d\n", res.resting)
	fmt.Fprintf(w, "------\t-----\n")
	fmt.Fprintf(w, "latency p50\t%s\n", quantile(res.hist, 50))
	fmt.Fprintf(w, "latency p90\t%s\n", quantile(res.hist, 90))
	fmt.Fprintf(w, "latency p99\t%s\n", quantile(res.hist, 99))
	fmt.Fprintf(w, "latency p99.9\t%s\n", quantile(res.hist, 99.9))
	fmt.Fprintf(w, "latency max\t%s\n", time.Duration(res.hist.Max()))
	fmt.Fprintf(w, "latency mean\t%s\n", time.Duration(int64(res.hist.Mean())))

	return w.Flush()
}

func quantile(hist *hdrhistogram.Histogram, q float64) time.Duration {
	return time.Duration(hist.ValueAtQuantile(q))
}
