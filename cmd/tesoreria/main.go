package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"tesoreria/internal/amqp"
	"tesoreria/internal/cli"
	apphttp "tesoreria/internal/http"
	"tesoreria/internal/log"
	"tesoreria/internal/metrics"
	"tesoreria/internal/middleware/ratelimit"
	"tesoreria/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	be := cli.OpenBackend(ctx, logger, cfg)

	// Import events are optional; without a broker reports are published on demand only.
	var (
		events     services.EventPublisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without import events", log.FieldError, err.Error())
		} else {
			amqpClient, events = client, client
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	publisher, err := cli.NewReportPublisher(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}

	m := metrics.New()
	app := cli.NewApp(cfg, be.Store, events, publisher, m, logger)
	app.Caches.StartCleanup(10 * time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Imports:        app.Imports,
		Dashboard:      app.Dashboard,
		Reports:        app.Reports,
		Catalog:        app.Catalog,
		Metrics:        m,
		Logger:         logger,
		MaxImportBytes: cfg.MaxImportBytes,
		RateLimit:      ratelimit.DefaultConfig(),
		Ready:          be.Ping,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		app.Caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", log.FieldError, err.Error())
			}
		}
		if be.Cleanup != nil {
			if err := be.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err.Error())
			}
		}
	})

	logger.Info("Starting tesoreria server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", events != nil,
		"sheets_enabled", publisher != nil,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
