// Package config loads and validates app config from env and an optional
// .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// HighscoreDeletePolicy controls highscores on throw deletion:
	// "keep" leaves bests untouched, "recompute" re-derives them from the
	// remaining live throws.
	HighscoreDeletePolicy string `mapstructure:"HIGHSCORE_DELETE_POLICY"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLP exporters (optional). Telemetry is disabled when the endpoint
	// is empty.
	// OTLPEndpoint is the OTLP gRPC endpoint (e.g. localhost:4317).
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure disables TLS on the OTLP connection, for local collectors.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// Events (optional). When Kafka brokers are set, throw lifecycle events
	// are published after commit.
	// KafkaBrokers is a comma-separated list of broker addresses
	// (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// ThrowFeedTopic is the Kafka topic for throw events.
	ThrowFeedTopic string `mapstructure:"THROW_FEED_TOPIC"`
	// KafkaGroupID is the consumer group used by cmd/worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("HIGHSCORE_DELETE_POLICY", "keep")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", true)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("THROW_FEED_TOPIC", "smartdisc-throws")
	v.SetDefault("KAFKA_GROUP_ID", "smartdisc-feed-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	switch cfg.HighscoreDeletePolicy {
	case "keep", "recompute":
	default:
		return nil, fmt.Errorf("config: HIGHSCORE_DELETE_POLICY must be \"keep\" or \"recompute\", got %q", cfg.HighscoreDeletePolicy)
	}

	return &cfg, nil
}

// KafkaBrokersList returns broker addresses from the comma-separated config.
// Used to decide if event publishing is enabled (non-empty list) and to
// create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
