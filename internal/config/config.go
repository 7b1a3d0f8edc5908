// Package config defines all configuration structures for the patent
// normalizer.  No I/O or parsing logic lives here, only plain data types
// and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/pkg/matchguard"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	// CORSAllowedOrigins enables CORS for the listed origins.  Empty disables it.
	CORSAllowedOrigins []string        `mapstructure:"cors_allowed_origins"`
	RateLimit          RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig is a per-client-IP token bucket.  A zero
// RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// NormalizeConfig controls record normalization.
type NormalizeConfig struct {
	// DefaultSchema is used when a request or message names no schema.
	DefaultSchema string `mapstructure:"default_schema"`
	// Workers bounds the number of records normalized concurrently in a batch.
	Workers int `mapstructure:"workers"`
	// MatchTimeout and MaxMatchInput bound every regex evaluation.
	MatchTimeout  time.Duration `mapstructure:"match_timeout"`
	MaxMatchInput int           `mapstructure:"max_match_input"`
	// FailFast aborts a batch on the first record-level error instead of
	// reporting it per record.
	FailFast bool `mapstructure:"fail_fast"`
}

// Guard returns the match guard described by the configuration.
func (n NormalizeConfig) Guard() matchguard.Guard {
	return matchguard.Guard{Timeout: n.MatchTimeout, MaxInput: n.MaxMatchInput, TimedFrom: matchguard.DefaultTimedFrom}
}

// KafkaConfig holds stream worker settings.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	InputTopic      string        `mapstructure:"input_topic"`
	OutputTopic     string        `mapstructure:"output_topic"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`

	// AutoCreateTopics makes the worker create missing topics at start-up.
	AutoCreateTopics  bool `mapstructure:"auto_create_topics"`
	Partitions        int  `mapstructure:"partitions"`
	ReplicationFactor int  `mapstructure:"replication_factor"`

	Security KafkaSecurityConfig `mapstructure:"security"`
}

// KafkaSecurityConfig holds broker authentication settings.
type KafkaSecurityConfig struct {
	// SASLMechanism is empty, PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512.
	SASLMechanism string `mapstructure:"sasl_mechanism"`
	SASLUsername  string `mapstructure:"sasl_username"`
	SASLPassword  string `mapstructure:"sasl_password"`
	TLSEnabled    bool   `mapstructure:"tls_enabled"`
	TLSCAPath     string `mapstructure:"tls_ca_path"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Log       logging.LogConfig `mapstructure:"log"`
	Normalize NormalizeConfig   `mapstructure:"normalize"`
	Kafka     KafkaConfig       `mapstructure:"kafka"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("config: server.max_body_size must be >= 0, got %d", c.Server.MaxBodySize)
	}
	if c.Server.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("config: server.rate_limit.requests_per_second must be >= 0")
	}
	if c.Server.RateLimit.RequestsPerSecond > 0 && c.Server.RateLimit.Burst < 1 {
		return fmt.Errorf("config: server.rate_limit.burst must be >= 1 when rate limiting is enabled")
	}

	if _, err := logging.ParseLevel(c.Log.Level.String()); err != nil {
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Normalize.DefaultSchema == "" {
		return fmt.Errorf("config: normalize.default_schema is required")
	}
	if c.Normalize.Workers < 1 {
		return fmt.Errorf("config: normalize.workers must be >= 1, got %d", c.Normalize.Workers)
	}
	if c.Normalize.MatchTimeout <= 0 {
		return fmt.Errorf("config: normalize.match_timeout must be positive, got %s", c.Normalize.MatchTimeout)
	}
	if c.Normalize.MaxMatchInput < 1 {
		return fmt.Errorf("config: normalize.max_match_input must be >= 1, got %d", c.Normalize.MaxMatchInput)
	}

	if c.Kafka.MaxRetries < 0 {
		return fmt.Errorf("config: kafka.max_retries must be >= 0, got %d", c.Kafka.MaxRetries)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}
	return nil
}

// ValidateStream checks the settings the stream worker needs in addition to
// Validate.
func (c *Config) ValidateStream() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}
	if c.Kafka.InputTopic == "" || c.Kafka.OutputTopic == "" {
		return fmt.Errorf("config: kafka.input_topic and kafka.output_topic are required")
	}
	if c.Kafka.InputTopic == c.Kafka.OutputTopic {
		return fmt.Errorf("config: kafka.input_topic and kafka.output_topic must differ")
	}
	if c.Kafka.AutoCreateTopics && (c.Kafka.Partitions < 1 || c.Kafka.ReplicationFactor < 1) {
		return fmt.Errorf("config: kafka.partitions and kafka.replication_factor must be >= 1 when auto_create_topics is set")
	}
	return nil
}

//Personal.AI order the ending
