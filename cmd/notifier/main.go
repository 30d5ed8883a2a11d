// Command notifier consumes notification envelopes from RabbitMQ and sends
// them through the configured email provider. The API server publishes to
// the same queue when BACKOFFICE_NOTIFICATION_TRANSPORT=amqp.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/infrastructure/cache"
	"github.com/uniformco/backoffice/internal/infrastructure/config"
	"github.com/uniformco/backoffice/internal/infrastructure/logger"
	"github.com/uniformco/backoffice/internal/infrastructure/notification"
	"github.com/uniformco/backoffice/internal/infrastructure/telemetry"
)

func main() {
	var metricsAddr string
	flag.StringVar(&metricsAddr, "metrics-addr", ":9091", "Address for the /metrics endpoint (empty disables it)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.Must(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}).Named("notifier")
	defer func() { _ = log.Sync() }()

	if cfg.Notification.AMQPURL == "" {
		log.Fatal("BACKOFFICE_NOTIFICATION_AMQP_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.NewMetrics()

	// Redis remembers delivered envelope ids across restarts and replicas
	backend, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).Open(ctx)
	if err != nil {
		log.Fatal("Failed to open cache", zap.Error(err))
	}
	defer func() { _ = backend.Close() }()

	mailer, err := notification.NewMailerFromConfig(ctx, cfg, log, metrics)
	if err != nil {
		log.Fatal("Failed to create mailer", zap.Error(err))
	}

	var srv *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	consumer := notification.NewAMQPConsumer(
		cfg.Notification.AMQPURL,
		cfg.Notification.AMQPQueue,
		mailer,
		backend.Store,
		cfg.Notification.Workers,
		log,
	)

	log.Info("Notifier started",
		zap.String("queue", cfg.Notification.AMQPQueue),
		zap.String("provider", cfg.Notification.Provider),
		zap.Bool("redis", backend.Client != nil),
	)
	if err := consumer.Run(ctx); err != nil {
		log.Error("Consumer stopped", zap.Error(err))
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	log.Info("Notifier stopped")
}
