// Stream worker entry point: consumes raw patent records from Kafka,
// normalizes them and publishes the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/patent-normalizer/internal/application/normalization"
	"github.com/turtacn/patent-normalizer/internal/config"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/patent-normalizer/internal/interfaces/http"
	"github.com/turtacn/patent-normalizer/internal/interfaces/http/handlers"
	"github.com/turtacn/patent-normalizer/internal/interfaces/stream"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateStream(); err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	kc := cfg.Kafka
	logger.Info("starting patent normalizer worker",
		logging.String("version", version),
		logging.Any("brokers", kc.Brokers),
		logging.String("input_topic", kc.InputTopic),
		logging.String("output_topic", kc.OutputTopic),
		logging.String("dead_letter_topic", kc.DeadLetterTopic))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var collector prometheus.MetricsCollector
	var metrics *prometheus.AppMetrics
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return err
		}
		metrics = prometheus.NewAppMetrics(collector)
	}

	svc, err := normalization.NewService(normalization.Config{
		DefaultSchema: cfg.Normalize.DefaultSchema,
		Workers:       cfg.Normalize.Workers,
		Guard:         cfg.Normalize.Guard(),
	}, logger, metrics)
	if err != nil {
		return err
	}

	security := kafka.SecurityConfig{
		SASLMechanism: kc.Security.SASLMechanism,
		SASLUsername:  kc.Security.SASLUsername,
		SASLPassword:  kc.Security.SASLPassword,
		TLSEnabled:    kc.Security.TLSEnabled,
		TLSCAPath:     kc.Security.TLSCAPath,
	}

	topics, err := kafka.NewTopicManager(ctx, kc.Brokers, security, logger)
	if err != nil {
		return err
	}
	defer func() { _ = topics.Close() }()
	if kc.AutoCreateTopics {
		if err := topics.EnsureTopics(ctx, kafka.WorkerTopics(
			kc.InputTopic, kc.OutputTopic, kc.DeadLetterTopic, kc.Partitions, kc.ReplicationFactor)); err != nil {
			return err
		}
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      kc.Brokers,
		MaxRetries:   kc.MaxRetries,
		RetryBackoff: kc.RetryBackoff,
		Security:     security,
	}, logger)
	if err != nil {
		return err
	}
	defer func() { _ = producer.Close() }()

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:  kc.Brokers,
		GroupID:  kc.GroupID,
		Topics:   []string{kc.InputTopic},
		Security: security,
		Retry: kafka.RetryConfig{
			MaxRetries:      kc.MaxRetries,
			RetryBackoff:    kc.RetryBackoff,
			DeadLetterTopic: kc.DeadLetterTopic,
		},
	}, logger)
	if err != nil {
		return err
	}
	consumer.SetDeadLetter(producer)

	worker := stream.NewWorker(svc, producer, stream.Config{
		InputTopic:  kc.InputTopic,
		OutputTopic: kc.OutputTopic,
	}, logger, metrics)

	// Probes and metrics share the server section with the API server.
	probe := httpserver.NewServer(httpserver.ServerConfig{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version,
			&topicHealthAdapter{topics: topics, names: []string{kc.InputTopic, kc.OutputTopic}}),
		MetricsCollector: collector,
		MetricsPath:      cfg.Metrics.Path,
	}), logger)
	go func() {
		if err := probe.Start(); err != nil {
			logger.Error("probe server failed", logging.Err(err))
		}
	}()
	defer func() { _ = probe.Stop(context.Background()) }()

	if err := stream.Run(ctx, consumer, worker); err != nil {
		return err
	}

	stats := consumer.Stats()
	logger.Info("worker stopped",
		logging.Int64("consumed", stats.Consumed),
		logging.Int64("processed", stats.Processed),
		logging.Int64("failed", stats.Failed),
		logging.Int64("dead_lettered", stats.DeadLettered))
	return nil
}

//Personal.AI order the ending
