package main

import (
	"context"
	"errors"
	"os"
	"time"

	"tesoreria/internal/amqp"
	"tesoreria/internal/cli"
	"tesoreria/internal/log"
	"tesoreria/internal/metrics"
	"tesoreria/internal/resilience"
	"tesoreria/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting tesoreria-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx := context.Background()
	be := cli.OpenBackend(ctx, logger, cfg)

	publisher, err := cli.NewReportPublisher(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}
	if publisher == nil {
		logger.Warn("Report publishing disabled; import events will be acknowledged without effect")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}

	m := metrics.New()
	app := cli.NewApp(cfg, be.Store, nil, publisher, m, logger)
	app.Caches.StartCleanup(10 * time.Minute)

	reportWorker := worker.NewReportWorker(app.Reports, resilience.Config{
		MaxRetries:     cfg.PublishRetries,
		InitialBackoff: cfg.PublishBackoff,
	}, m, logger)

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		app.Caches.Stop()
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", log.FieldError, err.Error())
		}
		if be.Cleanup != nil {
			if err := be.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err.Error())
			}
		}
	})

	if err := amqpClient.ConsumeImportCompleted(runCtx, reportWorker.HandleImportCompleted); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker stopped gracefully")
}
