package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-normalizer/internal/config"
	"github.com/turtacn/patent-normalizer/pkg/matchguard"
)

func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
	assert.NoError(t, validConfig().ValidateStream())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantKey string
	}{
		{"port out of range", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative body size", func(c *config.Config) { c.Server.MaxBodySize = -1 }, "server.max_body_size"},
		{"negative rate", func(c *config.Config) { c.Server.RateLimit.RequestsPerSecond = -1 }, "rate_limit.requests_per_second"},
		{"rate without burst", func(c *config.Config) {
			c.Server.RateLimit.RequestsPerSecond = 5
			c.Server.RateLimit.Burst = 0
		}, "rate_limit.burst"},
		{"bad level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"no default schema", func(c *config.Config) { c.Normalize.DefaultSchema = "" }, "normalize.default_schema"},
		{"zero workers", func(c *config.Config) { c.Normalize.Workers = 0 }, "normalize.workers"},
		{"negative timeout", func(c *config.Config) { c.Normalize.MatchTimeout = -time.Second }, "normalize.match_timeout"},
		{"zero max input", func(c *config.Config) { c.Normalize.MaxMatchInput = 0 }, "normalize.max_match_input"},
		{"negative retries", func(c *config.Config) { c.Kafka.MaxRetries = -1 }, "kafka.max_retries"},
		{"metrics namespace", func(c *config.Config) { c.Metrics.Enabled = true; c.Metrics.Namespace = "" }, "metrics.namespace"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}
}

func TestConfig_ValidateStream(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantKey string
	}{
		{"no brokers", func(c *config.Config) { c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"no group", func(c *config.Config) { c.Kafka.GroupID = "" }, "kafka.group_id"},
		{"no output", func(c *config.Config) { c.Kafka.OutputTopic = "" }, "kafka.input_topic"},
		{"same topic", func(c *config.Config) { c.Kafka.OutputTopic = c.Kafka.InputTopic }, "must differ"},
		{"auto create without partitions", func(c *config.Config) {
			c.Kafka.AutoCreateTopics = true
			c.Kafka.Partitions = 0
		}, "kafka.partitions"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.ValidateStream()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}
}

func TestNormalizeConfig_Guard(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	g := cfg.Normalize.Guard()
	assert.Equal(t, cfg.Normalize.MatchTimeout, g.Timeout)
	assert.Equal(t, cfg.Normalize.MaxMatchInput, g.MaxInput)
	assert.Equal(t, matchguard.DefaultTimedFrom, g.TimedFrom)
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0.0.0.0:8080", validConfig().Server.Addr())
}
