package kafka

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// ErrAlreadyRunning is returned by Start on a running consumer.
var ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")

// RetryConfig defines retry behavior for failed handlers.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	StartOffset       string // "earliest" | "latest"
	CommitInterval    time.Duration
	SessionTimeout    time.Duration
	HeartbeatInterval time.Duration
	MaxWait           time.Duration
	MinBytes          int
	MaxBytes          int
	ReadCommitted     bool
	Security          SecurityConfig
	Retry             RetryConfig
}

// ConsumerStats is a point-in-time copy of consumer counters.
type ConsumerStats struct {
	Consumed     int64
	Processed    int64
	Failed       int64
	Retried      int64
	DeadLettered int64
	Lag          int64
}

type consumerCounters struct {
	consumed     atomic.Int64
	processed    atomic.Int64
	failed       atomic.Int64
	retried      atomic.Int64
	deadLettered atomic.Int64
	lag          atomic.Int64
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer fetches messages, dispatches them to per-topic handlers with
// retries, and commits offsets once a message is handled or dead-lettered.
type Consumer struct {
	reader ReaderInterface
	config ConsumerConfig
	logger logging.Logger

	handlers map[string]MessageHandler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	deadLetter Publisher
	counters   consumerCounters

	// fetchErrorBackoff separates FetchMessage retries.
	fetchErrorBackoff time.Duration
}

// NewConsumer creates a consumer backed by a kafka.Reader.
func NewConsumer(cfg ConsumerConfig, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	applyConsumerDefaults(&cfg)

	mech, err := cfg.Security.mechanism()
	if err != nil {
		return nil, err
	}
	tlsCfg, err := cfg.Security.tlsConfig()
	if err != nil {
		return nil, err
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		GroupID:           cfg.GroupID,
		GroupTopics:       cfg.Topics,
		MinBytes:          cfg.MinBytes,
		MaxBytes:          cfg.MaxBytes,
		MaxWait:           cfg.MaxWait,
		CommitInterval:    cfg.CommitInterval,
		SessionTimeout:    cfg.SessionTimeout,
		HeartbeatInterval: cfg.HeartbeatInterval,
		StartOffset:       kafka.FirstOffset,
		Dialer: &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			TLS:           tlsCfg,
			SASLMechanism: mech,
		},
	}
	if cfg.StartOffset == "latest" {
		readerCfg.StartOffset = kafka.LastOffset
	}
	if cfg.ReadCommitted {
		readerCfg.IsolationLevel = kafka.ReadCommitted
	}

	return NewConsumerWithReader(kafka.NewReader(readerCfg), cfg, logger), nil
}

// NewConsumerWithReader builds a consumer over an existing reader.
func NewConsumerWithReader(reader ReaderInterface, cfg ConsumerConfig, logger logging.Logger) *Consumer {
	applyConsumerDefaults(&cfg)
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{
		reader:            reader,
		config:            cfg,
		logger:            logger.Named("kafka.consumer"),
		handlers:          make(map[string]MessageHandler),
		fetchErrorBackoff: time.Second,
	}
}

func applyConsumerDefaults(cfg *ConsumerConfig) {
	if cfg.StartOffset == "" {
		cfg.StartOffset = "earliest"
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 30 * time.Second
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 3 * time.Second
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = time.Second
	}
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.Retry.RetryBackoff == 0 {
		cfg.Retry.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.Retry.MaxRetryBackoff == 0 {
		cfg.Retry.MaxRetryBackoff = 30 * time.Second
	}
}

// SetDeadLetter installs the publisher used for messages that exhaust their
// retries.  It must be called before Start.
func (c *Consumer) SetDeadLetter(p Publisher) {
	c.deadLetter = p
}

// Subscribe registers the handler for topic.
func (c *Consumer) Subscribe(topic string, handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("subscribed to topic", logging.String("topic", topic))
}

// Start launches the consume loop and returns immediately.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)

	c.logger.Info("kafka consumer started", logging.String("group", c.config.GroupID))
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.fetchErrorBackoff):
			}
			continue
		}

		c.counters.consumed.Add(1)
		if m.HighWaterMark > 0 {
			c.counters.lag.Store(m.HighWaterMark - m.Offset - 1)
		}

		msg := fromKafkaMessage(m)

		c.mu.RLock()
		handler, ok := c.handlers[m.Topic]
		c.mu.RUnlock()

		if !ok {
			c.logger.Warn("no handler for topic", logging.String("topic", m.Topic))
			c.commit(ctx, m)
			continue
		}

		if err := c.processMessage(ctx, msg, handler); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.counters.failed.Add(1)
		} else {
			c.counters.processed.Add(1)
		}
		c.commit(ctx, m)
	}
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message) {
	if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
		c.logger.Error("commit failed",
			logging.String("topic", m.Topic),
			logging.Int64("offset", m.Offset),
			logging.Err(err))
	}
}

// processMessage runs handler with exponential-backoff retries.  Permanent
// errors skip the retries.  A message that still fails is dead-lettered and
// the handler error is returned.
func (c *Consumer) processMessage(ctx context.Context, msg *Message, handler MessageHandler) error {
	err := handler(ctx, msg)
	if err == nil {
		return nil
	}

	attempts := 1
	backoff := c.config.Retry.RetryBackoff
	for i := 0; i < c.config.Retry.MaxRetries && !IsPermanent(err); i++ {
		c.counters.retried.Add(1)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		attempts++
		if err = handler(ctx, msg); err == nil {
			return nil
		}

		backoff *= 2
		if backoff > c.config.Retry.MaxRetryBackoff {
			backoff = c.config.Retry.MaxRetryBackoff
		}
	}

	c.logger.Error("message processing failed",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Int("attempts", attempts),
		logging.Bool("permanent", IsPermanent(err)),
		logging.Err(err))

	c.sendToDeadLetter(ctx, msg, err, attempts)
	return err
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg *Message, cause error, attempts int) {
	if c.deadLetter == nil || c.config.Retry.DeadLetterTopic == "" {
		return
	}

	headers := make(map[string]string, len(msg.Headers)+4)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = msg.Topic
	headers[HeaderError] = cause.Error()
	headers[HeaderErrorCode] = errors.GetCode(cause).String()
	headers[HeaderAttempts] = strconv.Itoa(attempts)

	dl := &ProducerMessage{
		Topic:   c.config.Retry.DeadLetterTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if err := c.deadLetter.Publish(ctx, dl); err != nil {
		c.logger.Error("dead-letter publish failed",
			logging.String("topic", dl.Topic),
			logging.Err(err))
		return
	}
	c.counters.deadLettered.Add(1)
}

// Stats returns a snapshot of the consumer counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Consumed:     c.counters.consumed.Load(),
		Processed:    c.counters.processed.Load(),
		Failed:       c.counters.failed.Load(),
		Retried:      c.counters.retried.Load(),
		DeadLettered: c.counters.deadLettered.Load(),
		Lag:          c.counters.lag.Load(),
	}
}

// Close stops the consume loop, waits for the in-flight message and closes
// the reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	err := c.reader.Close()
	c.logger.Info("kafka consumer closed",
		logging.Int64("consumed", c.counters.consumed.Load()),
		logging.Int64("dead_lettered", c.counters.deadLettered.Load()))
	return err
}

func fromKafkaMessage(m kafka.Message) *Message {
	msg := &Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// ValidateConsumerConfig validates configuration.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "group ID required")
	}
	if len(cfg.Topics) == 0 {
		return errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	if cfg.StartOffset != "" && cfg.StartOffset != "earliest" && cfg.StartOffset != "latest" {
		return errors.New(errors.ErrCodeValidation, "invalid start offset").WithDetail(cfg.StartOffset)
	}
	if cfg.Retry.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	return cfg.Security.Validate()
}

//Personal.AI order the ending
