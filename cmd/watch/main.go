// Command watch tails the outcome topic and pretty-prints each message, one
// line per outcome. It is a developer aid for eyeballing what the feed runner
// publishes to Kafka.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"strikebook/pkg/book"
	"strikebook/pkg/logging"
	"strikebook/pkg/messaging"
	"strikebook/pkg/messaging/kafka"
)

func main() {
	broker := flag.String("broker", "localhost:9092", "Kafka broker address")
	topic := flag.String("topic", "strikebook-outcomes", "outcome topic to tail")
	group := flag.String("group", "", "consumer group id (empty tails from the latest offset)")
	logLevel := flag.String("log_level", "info", "logging level")
	flag.Parse()

	logging.Setup(logging.Config{Level: *logLevel, Pretty: true})
	logger := logging.Component("watch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	consumer := kafka.NewConsumer(*broker, *topic, *group)
	defer consumer.Close()

	logger.Info().
		Str("broker", *broker).
		Str("topic", *topic).
		Msg("Watching outcomes")

	var seen int
	err := consumer.Consume(ctx, func(msg *messaging.OutcomeMessage) error {
		seen++
		fmt.Println(formatOutcome(msg))
		return nil
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Consumer failed")
	}

	logger.Info().Int("outcomes", seen).Msg("Watch stopped")
}

// formatOutcome renders one outcome message as a single colored line. Trade
// and top-of-book details only appear on the outcomes that carry them.
func formatOutcome(msg *messaging.OutcomeMessage) string {
	line := fmt.Sprintf("%s  %s %-6s user=%d order=%d",
		time.Now().Format("15:04:05.000"),
		kindColor(msg.Kind)("%-11s", msg.Kind),
		msg.Symbol, msg.UserID, msg.OrderID)

	if msg.Kind == book.OutcomeTraded.String() {
		line += fmt.Sprintf("  buy=%d/%d sell=%d/%d price=%s qty=%s",
			msg.BuyerUserID, msg.BuyerOrderID,
			msg.SellerUserID, msg.SellerOrderID,
			msg.Price, msg.Quantity)
	}
	if msg.Top != nil {
		if msg.Top.Empty {
			line += fmt.Sprintf("  top[%s]=empty", msg.Top.Side)
		} else {
			line += fmt.Sprintf("  top[%s]=%s x %s", msg.Top.Side, msg.Top.Price, msg.Top.Volume)
		}
	}
	return line
}

func kindColor(kind string) func(format string, a ...interface{}) string {
	switch kind {
	case book.OutcomeTraded.String():
		return color.New(color.FgGreen).SprintfFunc()
	case book.OutcomeRejected.String():
		return color.New(color.FgRed).SprintfFunc()
	case book.OutcomeTopOfBook.String():
		return color.New(color.FgYellow).SprintfFunc()
	default:
		return color.New(color.FgCyan).SprintfFunc()
	}
}
