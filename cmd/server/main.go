package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, base, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := logging.Component(base, "server-main")

	db, err := database.Open(cfg.Database, logging.Component(base, "database"))
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus, sinkCloser, err := initEventBus(ctx, cfg, base)
	if err != nil {
		return err
	}
	if sinkCloser != nil {
		defer (func() { _ = sinkCloser.Close() })()
	}

	svcLogger := logging.Component(base, "service")
	svc := api.Services{
		Bookings: service.NewBookingService(db, bus, cfg.Export.MaxRows, svcLogger),
		Items:    service.NewItemService(db, bus, svcLogger),
		Users:    service.NewUserService(db, svcLogger),
		Requests: service.NewRequestService(db, bus, svcLogger),
	}
	httpServer := api.NewServer(cfg.HTTP, svc, db, logging.Component(base, "http"))

	startMetrics(ctx, cfg, logger)

	return serve(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, closer, nil
}

// initEventBus logs every event, counts it and, when configured, fans it out over AMQP.
func initEventBus(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*events.EventBus, io.Closer, error) {
	bus := events.NewEventBus()
	evLogger := logging.Component(logger, "events")

	bus.OnError(func(event *events.Event, err error) {
		evLogger.Error().Err(err).Str("event_type", event.Type).Msg("event handler failed")
	})
	bus.Subscribe(events.AllEvents, func(event *events.Event) error {
		metrics.IncEvent(event.Type)
		evLogger.Info().Str("event_type", event.Type).RawJSON("payload", event.Payload).Msg("domain event")
		return nil
	})

	if cfg.Events.AMQPURL == "" {
		return bus, nil, nil
	}

	policy := events.RetryPolicy{
		MaxRetries:   cfg.Events.ConnectRetries,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
	}
	sink, err := events.NewAMQPSink(ctx, cfg.Events.AMQPURL, cfg.Events.Exchange, policy, evLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("init amqp sink: %w", err)
	}
	bus.Subscribe(events.AllEvents, sink.Handle)
	evLogger.Info().Str("exchange", cfg.Events.Exchange).Msg("amqp event sink connected")
	return bus, sink, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	metrics.Register()
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(ctx context.Context, httpServer *api.Server, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.HTTP.Port).Str("driver", cfg.Database.Driver).Msg("ShareIt server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("ShareIt server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
