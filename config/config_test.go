package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "", cfg.Feed.Input)
	assert.Equal(t, "info", cfg.Feed.LogLevel)
	assert.Equal(t, DriverSegmentio, cfg.Kafka.Driver)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.QuoteTTL())
}

func TestMergeFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
feed:
  input: testdata/feed.csv
  log_level: debug
kafka:
  enabled: true
  broker_addr: kafka:9092
  driver: sarama
redis:
  enabled: true
  quote_ttl_seconds: 60
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, mergeFile(cfg, path))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "testdata/feed.csv", cfg.Feed.Input)
	assert.Equal(t, "debug", cfg.Feed.LogLevel)
	// Keys the file omits keep their defaults.
	assert.Equal(t, "pretty", cfg.Feed.LogFormat)
	assert.Equal(t, "strikebook-outcomes", cfg.Kafka.Topic)

	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "kafka:9092", cfg.Kafka.BrokerAddr)
	assert.Equal(t, DriverSarama, cfg.Kafka.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Minute, cfg.QuoteTTL())
}

func TestMergeFileMissing(t *testing.T) {
	cfg := DefaultConfig()

	err := mergeFile(cfg, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"bad log level", func(c *Config) { c.Feed.LogLevel = "loud" }, ErrUnknownLogLevel},
		{"bad log format", func(c *Config) { c.Feed.LogFormat = "xml" }, ErrUnknownLogFormat},
		{"bad kafka driver", func(c *Config) { c.Kafka.Driver = "rabbitmq" }, ErrUnknownKafkaDriver},
		{"negative ttl", func(c *Config) { c.Redis.QuoteTTLSeconds = -1 }, ErrNegativeTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}
