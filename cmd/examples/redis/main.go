package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"strikebook/pkg/book"
	"strikebook/pkg/feed"
	"strikebook/pkg/quotes"
)

const (
	redisAddr = "localhost:6379"
	redisDB   = 0
	symbol    = "DEMO"
)

func main() {
	// Connect to Redis
	client := quotes.NewClient(&quotes.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})

	// Check Redis connection
	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	fmt.Printf("Redis connection established: %s\n", pong)

	cache := quotes.NewCache(client, time.Minute, nil)
	defer cache.Close()

	// A short session: both sides rest, then the ask side trades away
	input := strings.Join([]string{
		fmt.Sprintf("N, 1, %s, 11, 100, S, 1", symbol),
		fmt.Sprintf("N, 2, %s, 9, 100, B, 2", symbol),
		fmt.Sprintf("N, 2, %s, 11, 100, B, 3", symbol),
	}, "\n")

	fmt.Println("\nFeed output:")
	pipeline := feed.NewPipeline(feed.NewRouter(), os.Stdout, feed.PipelineConfig{Quotes: cache})
	if err := pipeline.Run(context.Background(), strings.NewReader(input)); err != nil {
		panic(err)
	}

	// Read the cached top-of-book documents back
	fmt.Println("\nQuotes cached in Redis:")
	for _, side := range []book.Side{book.Bid, book.Ask} {
		quote, err := cache.Top(context.Background(), symbol, side)
		if err != nil {
			panic(err)
		}
		switch {
		case quote == nil:
			fmt.Printf("- %s: no cached quote\n", side)
		case quote.Empty:
			fmt.Printf("- %s: side empty (updated %s)\n", side, quote.UpdatedAt.Format(time.RFC3339))
		default:
			fmt.Printf("- %s: %s x %s (updated %s)\n", side, quote.Price, quote.Volume,
				quote.UpdatedAt.Format(time.RFC3339))
		}
	}
}
