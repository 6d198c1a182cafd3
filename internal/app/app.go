package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"OrderDesk/config"
	"OrderDesk/internal/controller/rest"
	"OrderDesk/internal/controller/rest/handlers"
	"OrderDesk/internal/domain/order"
	"OrderDesk/internal/external/kafka"
	"OrderDesk/internal/external/opensearch"
	order_repo "OrderDesk/internal/repo/order"
	"OrderDesk/internal/webhook"
	"OrderDesk/pkg/health"
	"OrderDesk/pkg/logger"
	"OrderDesk/pkg/postgres"
)

const shutdownTimeout = 5 * time.Second

// Run serves the webhook endpoint and the dashboard API until SIGINT or
// SIGTERM. In kafka mode it also consumes the orders topic.
func Run(cfg config.Config) error {
	logger.Setup("orderdesk", logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := ApplyMigrations(cfg.PgURL, MigrationFS); err != nil {
		return fmt.Errorf("app - Run - ApplyMigrations: %w", err)
	}

	pg, err := postgres.New(cfg.PgURL, postgres.MaxPoolSize(cfg.PgPoolMax))
	if err != nil {
		return fmt.Errorf("app - Run - postgres.New: %w", err)
	}
	defer pg.Close()

	registry := health.NewRegistry(health.NewPostgresChecker(pg.Pool))

	serviceOpts := []order.Option{order.WithWindow(cfg.DashboardWindow)}
	if cfg.EventMirror == config.EventMirrorOpenSearch {
		mirror, err := opensearch.NewOrderEventMirror(ctx, cfg.OpensearchUrls, cfg.OpensearchIndexOrderEvents)
		if err != nil {
			return fmt.Errorf("app - Run - opensearch.NewOrderEventMirror: %w", err)
		}
		serviceOpts = append(serviceOpts, order.WithEventMirror(mirror))
		registry.Add(health.NewCheckFunc("opensearch", mirror.Ping))
	}

	orderService := order.NewOrderService(order_repo.NewPgOrderRepo(pg), serviceOpts...)

	var processor webhook.Processor = webhook.NewSyncProcessor(orderService)
	workerErr := make(chan error, 1)
	if cfg.WebhookMode == config.WebhookModeKafka {
		slog.Info("Webhook mode: kafka", slog.Any("brokers", cfg.KafkaBrokers), slog.String("topic", cfg.KafkaOrdersTopic))
		registry.Add(health.NewKafkaChecker(cfg.KafkaBrokers))

		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
		defer func() { _ = publisher.Close() }()
		processor = webhook.NewAsyncProcessor(publisher)

		runner := NewOrderRunner(cfg, orderService)
		go func() {
			slog.Info("Starting order intent consumer",
				slog.String("topic", cfg.KafkaOrdersTopic),
				slog.String("group", cfg.KafkaOrdersConsumerGroup))
			workerErr <- runner.Start(ctx)
		}()
	}

	engine := rest.NewGinEngine(registry)
	router := rest.NewRouter(
		handlers.NewWebhookHandler(processor, cfg.WebhookMaxBodyBytes),
		handlers.NewDashboardHandler(orderService),
	)
	router.SetUp(engine)

	return Serve(ctx, fmt.Sprintf(":%d", cfg.Port), engine, workerErr)
}

// Serve runs the HTTP server until ctx is done, the server fails or a
// background worker stops, then shuts the server down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, workerErr <-chan error) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server started", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutting down gracefully")
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
	case err := <-workerErr:
		if err != nil {
			runErr = fmt.Errorf("order consumer: %w", err)
		} else if ctx.Err() == nil {
			runErr = errors.New("order consumer stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", logger.Err(err))
	}

	slog.Info("Service stopped")
	return runErr
}
