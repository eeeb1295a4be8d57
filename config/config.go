// Package config loads the feed runner configuration from command line
// flags and an optional YAML file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"strikebook/pkg/db/queue"
)

// Kafka driver names
const (
	DriverSegmentio = "segmentio"
	DriverSarama    = "sarama"
)

// Errors
var (
	ErrUnknownLogLevel    = errors.New("unknown log level")
	ErrUnknownLogFormat   = errors.New("unknown log format")
	ErrUnknownKafkaDriver = errors.New("unknown kafka driver")
	ErrNegativeTTL        = errors.New("quote TTL must not be negative")
)

// Config represents the application configuration
type Config struct {
	Feed struct {
		Input     string `yaml:"input"` // feed file; empty or "-" reads stdin
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"feed"`

	Kafka struct {
		Enabled    bool   `yaml:"enabled"`
		BrokerAddr string `yaml:"broker_addr"`
		Topic      string `yaml:"topic"`
		Driver     string `yaml:"driver"` // segmentio or sarama
	} `yaml:"kafka"`

	Redis struct {
		Enabled         bool   `yaml:"enabled"`
		Addr            string `yaml:"addr"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		QuoteTTLSeconds int    `yaml:"quote_ttl_seconds"`
	} `yaml:"redis"`

	Otel struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"otel"`
}

// Command line flags
var (
	configFile = flag.String("config", "", "Path to config file (YAML)")
	inputFile  = flag.String("input", "", "Feed file to process (empty or - reads stdin)")
	logLevel   = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	logFormat  = flag.String("log_format", "pretty", "Log format: json, pretty")
)

// DefaultConfig returns the configuration used when no file or flags say
// otherwise: read stdin, log pretty at info, publish nowhere.
func DefaultConfig() *Config {
	config := &Config{}
	config.Feed.LogLevel = "info"
	config.Feed.LogFormat = "pretty"
	config.Kafka.BrokerAddr = "localhost:9092"
	config.Kafka.Topic = "strikebook-outcomes"
	config.Kafka.Driver = DriverSegmentio
	config.Redis.Addr = "localhost:6379"
	config.Redis.QuoteTTLSeconds = 300
	config.Otel.Endpoint = "localhost:4317"
	return config
}

// LoadConfig loads the configuration from command line flags and optionally
// from a config file. The file, when given, wins over flags.
func LoadConfig() (*Config, error) {
	flag.Parse()

	config := DefaultConfig()
	config.Feed.Input = *inputFile
	config.Feed.LogLevel = *logLevel
	config.Feed.LogFormat = *logFormat

	if *configFile != "" {
		if err := mergeFile(config, *configFile); err != nil {
			return nil, err
		}
		log.Printf("Loaded configuration from %s", *configFile)
	}

	if config.Kafka.Enabled {
		// Point the sarama publisher at the configured broker
		queue.SetBrokerList(config.Kafka.BrokerAddr)
		queue.SetTopic(config.Kafka.Topic)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// mergeFile unmarshals a YAML file over config, keeping config's values for
// keys the file does not mention
func mergeFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Validate checks the enumerated fields
func (c *Config) Validate() error {
	switch c.Feed.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, c.Feed.LogLevel)
	}

	switch c.Feed.LogFormat {
	case "json", "pretty":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogFormat, c.Feed.LogFormat)
	}

	switch c.Kafka.Driver {
	case DriverSegmentio, DriverSarama:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKafkaDriver, c.Kafka.Driver)
	}

	if c.Redis.QuoteTTLSeconds < 0 {
		return ErrNegativeTTL
	}

	return nil
}

// QuoteTTL returns the redis quote TTL as a duration
func (c *Config) QuoteTTL() time.Duration {
	return time.Duration(c.Redis.QuoteTTLSeconds) * time.Second
}
