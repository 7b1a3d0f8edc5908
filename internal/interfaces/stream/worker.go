// Package stream consumes raw patent records from Kafka, normalizes them
// and publishes the results.
package stream

import (
	"context"
	"time"

	"github.com/turtacn/patent-normalizer/internal/domain/schema"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// Normalizer is the part of the normalization service the worker needs.
type Normalizer interface {
	NormalizeJSON(ctx context.Context, schemaName string, data []byte) (*schema.Result, error)
	DefaultSchema() string
}

// Config names the worker's topics.
type Config struct {
	InputTopic  string
	OutputTopic string
	// Source is written into every envelope.
	Source string
}

// Worker handles one input message at a time.
type Worker struct {
	svc     Normalizer
	out     kafka.Publisher
	cfg     Config
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewWorker creates a worker.  metrics may be nil.
func NewWorker(svc Normalizer, out kafka.Publisher, cfg Config, logger logging.Logger, metrics *prometheus.AppMetrics) *Worker {
	if cfg.Source == "" {
		cfg.Source = "patent-normalizer"
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Worker{svc: svc, out: out, cfg: cfg, logger: logger.Named("stream"), metrics: metrics}
}

// Handle normalizes msg with the schema named in its x-schema header and
// publishes the Result envelope, keyed like the input.  Input the service
// rejects (bad JSON, unknown schema, non-mapping record) is marked
// permanent so the consumer dead-letters it without retrying.
func (w *Worker) Handle(ctx context.Context, msg *kafka.Message) error {
	start := time.Now()
	schemaName := msg.Headers[kafka.HeaderSchema]
	if schemaName == "" {
		schemaName = w.svc.DefaultSchema()
	}
	log := w.logger.With(
		logging.String(logging.FieldSchema, schemaName),
		logging.Int64("offset", msg.Offset),
		logging.Int("partition", msg.Partition))

	res, err := w.svc.NormalizeJSON(ctx, schemaName, msg.Value)
	if err != nil {
		w.record(prometheus.StatusFailed, start)
		if errors.IsValidation(err) {
			log.Warn("record rejected", logging.String(logging.FieldErrorCode, errors.GetCode(err).String()), logging.Err(err))
			return kafka.Permanent(err)
		}
		return err
	}

	env, err := kafka.NewEventEnvelope(kafka.EventRecordNormalized, w.cfg.Source, res)
	if err != nil {
		w.record(prometheus.StatusFailed, start)
		return kafka.Permanent(err)
	}
	env.TraceID = msg.Headers["trace_id"]
	env.Metadata = map[string]string{
		kafka.HeaderSchema:   res.Schema,
		kafka.HeaderRecordID: recordID(msg, env.EventID),
	}

	out, err := env.ToMessage(w.cfg.OutputTopic, msg.Key)
	if err != nil {
		w.record(prometheus.StatusFailed, start)
		return kafka.Permanent(err)
	}
	if err := w.out.Publish(ctx, out); err != nil {
		w.record(prometheus.StatusFailed, start)
		return err
	}

	status := prometheus.StatusOK
	if len(res.Issues) > 0 {
		status = prometheus.StatusPartial
	}
	w.record(status, start)
	log.Debug("record published",
		logging.String("event_id", env.EventID),
		logging.Int(logging.FieldIssueCount, len(res.Issues)))
	return nil
}

func (w *Worker) record(status string, start time.Time) {
	prometheus.RecordStreamMessage(w.metrics, w.cfg.InputTopic, status, time.Since(start))
}

func recordID(msg *kafka.Message, fallback string) string {
	if id := msg.Headers[kafka.HeaderRecordID]; id != "" {
		return id
	}
	if len(msg.Key) > 0 {
		return string(msg.Key)
	}
	return fallback
}

// Consumer is the part of *kafka.Consumer Run drives.
type Consumer interface {
	Subscribe(topic string, handler kafka.MessageHandler)
	Start(ctx context.Context) error
	Close() error
}

// Run subscribes the worker to its input topic and blocks until ctx is
// done, then closes the consumer.
func Run(ctx context.Context, c Consumer, w *Worker) error {
	c.Subscribe(w.cfg.InputTopic, w.Handle)
	if err := c.Start(ctx); err != nil {
		return err
	}
	w.logger.Info("stream worker running",
		logging.String("input_topic", w.cfg.InputTopic),
		logging.String("output_topic", w.cfg.OutputTopic))

	<-ctx.Done()
	err := c.Close()
	w.logger.Info("stream worker stopped")
	return err
}

//Personal.AI order the ending
