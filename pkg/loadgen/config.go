// Package loadgen synthesizes instruction feeds for benchmarks and fixtures.
//
// Generated feeds are well formed by construction: bids and asks rest in
// disjoint price bands around the mid price, trades arrive as adjacent
// exact-quantity pairs, and cancels only name orders that are still resting.
// The same seed always yields the same stream.
package loadgen

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all parameters of a generated feed
type Config struct {
	// Scenario shape
	Symbols      []string
	Users        int
	Levels       int // resting price levels per side
	MidPrice     int // ladder midpoint
	TickSize     int // price distance between levels
	OrderSize    int // quantity of every generated order
	Instructions int // total instruction budget
	Seed         int64

	// Instruction mix, in percent of each roll
	TradePercent  int
	CancelPercent int
	FlushEvery    int // instructions between flushes, 0 disables flushing
}

// LoadConfig loads generator parameters from STRIKEBOOK_* environment
// variables, falling back to a small three-symbol scenario.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SYMBOLS", "IBM,AAPL,VAL")
	v.SetDefault("USERS", 8)
	v.SetDefault("LEVELS", 5)
	v.SetDefault("MID_PRICE", 100)
	v.SetDefault("TICK_SIZE", 1)
	v.SetDefault("ORDER_SIZE", 10)
	v.SetDefault("INSTRUCTIONS", 1000)
	v.SetDefault("SEED", 42)
	v.SetDefault("TRADE_PERCENT", 30)
	v.SetDefault("CANCEL_PERCENT", 20)
	v.SetDefault("FLUSH_EVERY", 0)

	v.SetEnvPrefix("STRIKEBOOK")
	v.AutomaticEnv()

	symbols := strings.Split(v.GetString("SYMBOLS"), ",")
	for i := range symbols {
		symbols[i] = strings.TrimSpace(symbols[i])
	}

	cfg := &Config{
		Symbols:       symbols,
		Users:         v.GetInt("USERS"),
		Levels:        v.GetInt("LEVELS"),
		MidPrice:      v.GetInt("MID_PRICE"),
		TickSize:      v.GetInt("TICK_SIZE"),
		OrderSize:     v.GetInt("ORDER_SIZE"),
		Instructions:  v.GetInt("INSTRUCTIONS"),
		Seed:          v.GetInt64("SEED"),
		TradePercent:  v.GetInt("TRADE_PERCENT"),
		CancelPercent: v.GetInt("CANCEL_PERCENT"),
		FlushEvery:    v.GetInt("FLUSH_EVERY"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if len(cfg.Symbols) == 0 {
		return fmt.Errorf("SYMBOLS must not be empty")
	}
	for _, symbol := range cfg.Symbols {
		if symbol == "" {
			return fmt.Errorf("SYMBOLS must not contain empty names")
		}
	}
	if cfg.Users <= 0 {
		return fmt.Errorf("USERS must be positive")
	}
	if cfg.Levels <= 0 {
		return fmt.Errorf("LEVELS must be positive")
	}
	if cfg.TickSize <= 0 {
		return fmt.Errorf("TICK_SIZE must be positive")
	}
	if cfg.MidPrice <= cfg.Levels*cfg.TickSize {
		return fmt.Errorf("MID_PRICE must exceed LEVELS*TICK_SIZE so bid prices stay positive")
	}
	if cfg.OrderSize <= 0 {
		return fmt.Errorf("ORDER_SIZE must be positive")
	}
	if cfg.Instructions <= 0 {
		return fmt.Errorf("INSTRUCTIONS must be positive")
	}
	if cfg.TradePercent < 0 || cfg.CancelPercent < 0 {
		return fmt.Errorf("mix percentages must not be negative")
	}
	if cfg.TradePercent+cfg.CancelPercent > 100 {
		return fmt.Errorf("TRADE_PERCENT plus CANCEL_PERCENT must not exceed 100")
	}
	if cfg.FlushEvery < 0 {
		return fmt.Errorf("FLUSH_EVERY must not be negative")
	}
	return nil
}
