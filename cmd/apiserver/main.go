// API server entry point for the patent normalizer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/patent-normalizer/internal/application/normalization"
	"github.com/turtacn/patent-normalizer/internal/config"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/patent-normalizer/internal/interfaces/http"
	"github.com/turtacn/patent-normalizer/internal/interfaces/http/handlers"
	"github.com/turtacn/patent-normalizer/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *httpPort); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	logger.Info("starting patent normalizer API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("default_schema", cfg.Normalize.DefaultSchema))

	collector, metrics, err := newMetrics(cfg, logger)
	if err != nil {
		return err
	}

	svc, err := normalization.NewService(normalization.Config{
		DefaultSchema: cfg.Normalize.DefaultSchema,
		Workers:       cfg.Normalize.Workers,
		Guard:         cfg.Normalize.Guard(),
		FailFast:      cfg.Normalize.FailFast,
	}, logger, metrics)
	if err != nil {
		return err
	}

	routerCfg := httpserver.RouterConfig{
		NormalizeHandler: handlers.NewNormalizeHandler(svc, logger, cfg.Server.MaxBodySize),
		HealthHandler:    handlers.NewHealthHandler(version, &registryHealthAdapter{svc: svc}),
		Logger:           logger,
		Metrics:          metrics,
		MetricsCollector: collector,
		MetricsPath:      cfg.Metrics.Path,
	}
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.Server.CORSAllowedOrigins
		routerCfg.CORS = &cors
	}
	if rl := cfg.Server.RateLimit; rl.RequestsPerSecond > 0 {
		routerCfg.RateLimiter = middleware.NewTokenBucketLimiter(rl.RequestsPerSecond, rl.Burst, 5*time.Minute)
	}
	router := httpserver.NewRouter(routerCfg)
	srv := httpserver.NewServer(httpserver.ServerConfig{
		Addr:            cfg.Server.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	if configPath != "" {
		watchLogLevel(configPath, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}
	return srv.Stop(context.Background())
}

// newMetrics returns a nil collector and metrics when metrics are disabled.
func newMetrics(cfg *config.Config, logger logging.Logger) (prometheus.MetricsCollector, *prometheus.AppMetrics, error) {
	if !cfg.Metrics.Enabled {
		return nil, nil, nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return collector, prometheus.NewAppMetrics(collector), nil
}

// watchLogLevel applies log.level changes from the config file at runtime.
// Other settings need a restart.
func watchLogLevel(configPath string, logger logging.Logger) {
	setter, ok := logger.(logging.LevelSetter)
	if !ok {
		return
	}
	err := config.Watch(configPath, func(cfg *config.Config, e fsnotify.Event) {
		if err := setter.SetLevel(cfg.Log.Level.String()); err != nil {
			logger.Warn("log level reload failed", logging.Err(err))
			return
		}
		logger.Info("configuration reloaded",
			logging.String("file", e.Name),
			logging.String("log_level", cfg.Log.Level.String()))
	}, func(err error) {
		logger.Warn("ignoring invalid configuration change", logging.Err(err))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}

//Personal.AI order the ending
