package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"example.com/signup/internal/api"
	"example.com/signup/internal/catalog"
	"example.com/signup/internal/config"
	"example.com/signup/internal/directory"
	"example.com/signup/internal/domain"
	"example.com/signup/internal/logging"
	"example.com/signup/internal/tracing"
	httptransport "example.com/signup/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "signup-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	activities, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	dir, err := directory.NewMemory(activities)
	if err != nil {
		return fmt.Errorf("seed directory: %w", err)
	}
	logger.Info("directory seeded", zap.Int("activities", len(activities)), zap.String("catalog", catalogName(cfg.CatalogPath)))

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName:    "signup-service",
		ServiceVersion: cfg.ServiceVersion,
		Endpoint:       cfg.OTelEndpoint,
		Enabled:        cfg.OTelEnabled,
		Catalog:        catalogName(cfg.CatalogPath),
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	service := domain.NewService(dir)

	handler := api.NewHandler(service, logger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, httptransport.Chain(mux,
		httptransport.Recover(logger),
		httptransport.RequestID,
		httptransport.Trace(otel.GetTracerProvider()),
		httptransport.AccessLog(logger),
		httptransport.CORS(cfg.CORSOrigin),
		httptransport.Metrics,
	))

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("signup-service listening", zap.String("address", cfg.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", zap.Error(err))
	}
	return nil
}

func catalogName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
