package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/pkg/matchguard"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodySize     = int64(8 << 20)
	DefaultRateLimitBurst  = 20

	DefaultLogLevel  = logging.LevelInfo
	DefaultLogFormat = "json"

	DefaultSchema        = "publicsearch.document"
	DefaultWorkers       = 4
	DefaultMatchTimeout  = matchguard.DefaultTimeout
	DefaultMaxMatchInput = matchguard.DefaultMaxInput

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaGroupID      = "patent-normalizer"
	DefaultInputTopic        = "patents.raw"
	DefaultOutputTopic       = "patents.normalized"
	DefaultDeadLetterTopic   = "patents.raw.dlq"
	DefaultKafkaMaxRetries   = 3
	DefaultKafkaRetryBackoff = 500 * time.Millisecond
	DefaultKafkaPartitions   = 3
	DefaultKafkaReplication  = 1

	DefaultMetricsNamespace = "patentnorm"
	DefaultMetricsPath      = "/metrics"
)

// setViperDefaults registers every key with viper so that environment
// overrides are honoured by Unmarshal even when no config file sets them.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("server.max_body_size", DefaultMaxBodySize)
	v.SetDefault("server.cors_allowed_origins", []string{})
	v.SetDefault("server.rate_limit.requests_per_second", 0.0)
	v.SetDefault("server.rate_limit.burst", DefaultRateLimitBurst)

	v.SetDefault("log.level", string(DefaultLogLevel))
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("normalize.default_schema", DefaultSchema)
	v.SetDefault("normalize.workers", DefaultWorkers)
	v.SetDefault("normalize.match_timeout", DefaultMatchTimeout)
	v.SetDefault("normalize.max_match_input", DefaultMaxMatchInput)
	v.SetDefault("normalize.fail_fast", false)

	v.SetDefault("kafka.brokers", []string{DefaultKafkaBroker})
	v.SetDefault("kafka.group_id", DefaultKafkaGroupID)
	v.SetDefault("kafka.input_topic", DefaultInputTopic)
	v.SetDefault("kafka.output_topic", DefaultOutputTopic)
	v.SetDefault("kafka.dead_letter_topic", DefaultDeadLetterTopic)
	v.SetDefault("kafka.max_retries", DefaultKafkaMaxRetries)
	v.SetDefault("kafka.retry_backoff", DefaultKafkaRetryBackoff)
	v.SetDefault("kafka.auto_create_topics", false)
	v.SetDefault("kafka.partitions", DefaultKafkaPartitions)
	v.SetDefault("kafka.replication_factor", DefaultKafkaReplication)
	v.SetDefault("kafka.security.sasl_mechanism", "")
	v.SetDefault("kafka.security.sasl_username", "")
	v.SetDefault("kafka.security.sasl_password", "")
	v.SetDefault("kafka.security.tls_enabled", false)
	v.SetDefault("kafka.security.tls_ca_path", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.path", DefaultMetricsPath)
}

// ApplyDefaults fills every zero-value field in cfg with its default.
// Fields that have already been set are left unchanged so that explicit
// configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.RateLimit.RequestsPerSecond > 0 && cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = DefaultRateLimitBurst
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Normalize ─────────────────────────────────────────────────────────────
	if cfg.Normalize.DefaultSchema == "" {
		cfg.Normalize.DefaultSchema = DefaultSchema
	}
	if cfg.Normalize.Workers == 0 {
		cfg.Normalize.Workers = DefaultWorkers
	}
	if cfg.Normalize.MatchTimeout == 0 {
		cfg.Normalize.MatchTimeout = DefaultMatchTimeout
	}
	if cfg.Normalize.MaxMatchInput == 0 {
		cfg.Normalize.MaxMatchInput = DefaultMaxMatchInput
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.InputTopic == "" {
		cfg.Kafka.InputTopic = DefaultInputTopic
	}
	if cfg.Kafka.OutputTopic == "" {
		cfg.Kafka.OutputTopic = DefaultOutputTopic
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultDeadLetterTopic
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = DefaultKafkaRetryBackoff
	}
	if cfg.Kafka.Partitions == 0 {
		cfg.Kafka.Partitions = DefaultKafkaPartitions
	}
	if cfg.Kafka.ReplicationFactor == 0 {
		cfg.Kafka.ReplicationFactor = DefaultKafkaReplication
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

//Personal.AI order the ending
