package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"OrderDesk/config"
	"OrderDesk/internal/app"
	"OrderDesk/internal/controller/rest"
	"OrderDesk/internal/controller/rest/handlers"
	"OrderDesk/internal/external/kafka"
	"OrderDesk/internal/webhook"
	"OrderDesk/pkg/health"
	"OrderDesk/pkg/logger"
)

// Run bootstraps the ingest gateway: webhooks are normalized here and
// published to Kafka, the main service consumes and applies them.
func Run(cfg config.IngestConfig) error {
	logger.Setup("orderdesk-ingest", logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("Initializing Kafka publisher",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", cfg.KafkaOrdersTopic))
	publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
	defer func() { _ = publisher.Close() }()

	registry := health.NewRegistry(health.NewKafkaChecker(cfg.KafkaBrokers))
	engine := rest.NewGinEngine(registry)

	processor := webhook.NewAsyncProcessor(publisher)
	router := rest.NewWebhookRouter(handlers.NewWebhookHandler(processor, cfg.WebhookMaxBodyBytes))
	router.SetUp(engine)

	return app.Serve(ctx, fmt.Sprintf(":%d", cfg.Port), engine, nil)
}
