package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"strikebook/config"
	"strikebook/pkg/db/queue"
	"strikebook/pkg/feed"
	"strikebook/pkg/logging"
	"strikebook/pkg/messaging"
	"strikebook/pkg/messaging/kafka"
	"strikebook/pkg/otel"
	"strikebook/pkg/quotes"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup logging. Logs go to stderr; stdout carries the feed output.
	logging.Setup(logging.Config{
		Level:  cfg.Feed.LogLevel,
		Pretty: cfg.Feed.LogFormat == "pretty",
	})
	logger := logging.Component("main")

	// Tag the run so every log line from this feed carries the same id
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logging.WithFeedID(ctx, uuid.NewString())

	// Handle interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
		cancel()
	}()

	// Initialize OpenTelemetry
	cleanup, err := otel.Init(otel.Config{
		Endpoint:         cfg.Otel.Endpoint,
		CollectorEnabled: cfg.Otel.Enabled,
	})
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer cleanup()
	if cfg.Otel.Enabled {
		if err := otel.StartRuntimeMetrics(); err != nil {
			logger.Warn().Err(err).Msg("Failed to start runtime metrics")
		}
	}

	input, err := openInput(cfg.Feed.Input)
	if err != nil {
		logger.Fatal().Err(err).Str("input", cfg.Feed.Input).Msg("Failed to open feed input")
	}
	defer input.Close()

	sender, err := setupSender(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to setup Kafka sender")
	}
	if sender != nil {
		defer sender.Close()
	}

	cache := setupQuotes(cfg)
	defer cache.Close()

	router := feed.NewRouter()
	pipeline := feed.NewPipeline(router, os.Stdout, feed.PipelineConfig{
		Sender: sender,
		Quotes: cache,
	})

	start := time.Now()
	if err := pipeline.Run(ctx, input); err != nil {
		logger.Fatal().Err(err).Msg("Feed run failed")
	}

	for _, stats := range router.Stats() {
		event := logger.Info().
			Str("symbol", stats.Symbol).
			Int("resting_orders", stats.OrderCount)
		if stats.HasBid {
			event = event.Str("best_bid", feed.FormatDecimal(stats.BestBid))
		}
		if stats.HasAsk {
			event = event.Str("best_ask", feed.FormatDecimal(stats.BestAsk))
		}
		event.Msg("Final book state")
	}
	logger.Info().
		Int("books", router.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("Feed run complete")
}

// openInput resolves the feed source. An empty path or "-" reads stdin so
// the binary can sit at the end of a shell pipe.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}

// setupSender builds the configured Kafka sender, or nil when Kafka
// publishing is disabled.
func setupSender(cfg *config.Config) (messaging.OutcomeSender, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	if cfg.Kafka.Driver == config.DriverSarama {
		return queue.NewQueueOutcomeSender()
	}
	return kafka.NewSender(cfg.Kafka.BrokerAddr, cfg.Kafka.Topic)
}

// setupQuotes builds the Redis quote cache, or nil when disabled. A nil
// cache is safe to use; every method on it is a no-op.
func setupQuotes(cfg *config.Config) *quotes.Cache {
	if !cfg.Redis.Enabled {
		return nil
	}
	client := quotes.NewClient(&quotes.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.QuoteTTL(),
	})
	return quotes.NewCache(client, cfg.QuoteTTL(), nil)
}
