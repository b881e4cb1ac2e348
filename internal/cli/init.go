// Package cli provides the initialization shared by cmd/tesoreria,
// cmd/tesoreria-worker and cmd/ledger-import.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tesoreria/internal/backend"
	"tesoreria/internal/cache"
	"tesoreria/internal/config"
	"tesoreria/internal/core"
	"tesoreria/internal/log"
	"tesoreria/internal/metrics"
	"tesoreria/internal/report"
	"tesoreria/internal/services"
	"tesoreria/internal/sheets"
	gsheet "tesoreria/internal/sheets/google"
	"tesoreria/internal/store"
)

// catalogCacheTTL bounds how stale a catalog snapshot can be when another
// process reseeds the store.
const catalogCacheTTL = 5 * time.Minute

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	cfg.Level = log.ParseLevel(os.Getenv("LOG_LEVEL"))
	cfg.JSON = os.Getenv("LOG_FORMAT") == "json"
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the configured store, exiting the process on failure.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error(), "backend", bcfg.Type.String())
		os.Exit(1)
	}
	return res
}

// NewReportPublisher returns the Sheets publisher, or nil when publishing is
// not configured.
func NewReportPublisher(ctx context.Context, logger *log.Logger, cfg *config.Config) (sheets.ReportPublisher, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets publishing disabled - no GOOGLE_SPREADSHEET_ID provided")
		return nil, nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleReportSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}

// App bundles the services every binary wires the same way.
type App struct {
	Catalog   *services.CatalogService
	Imports   *services.ImportService
	Dashboard *services.DashboardService
	Reports   *services.ReportService
	Caches    *cache.Manager
	Metrics   *metrics.Metrics
}

// NewApp wires the services over st. events and publisher may be nil.
func NewApp(cfg *config.Config, st store.Store, events services.EventPublisher, publisher sheets.ReportPublisher, m *metrics.Metrics, logger *log.Logger) *App {
	catalogCache := cache.NewLRUCache[core.Catalog](4, catalogCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(catalogCache)

	catalogSvc := services.NewCatalogService(st, catalogCache, m)
	return &App{
		Catalog: catalogSvc,
		Imports: services.NewImportService(catalogSvc, st, events, m, logger, services.ImportOptions{
			BaseCurrency:    cfg.BaseCurrency,
			Currencies:      cfg.Currencies,
			DefaultCenterID: cfg.DefaultCenterID,
		}),
		Dashboard: services.NewDashboardService(catalogSvc, st, cfg.BaseCurrency),
		Reports: services.NewReportService(catalogSvc, st, publisher, m, logger, services.ReportOptions{
			BaseCurrency:  cfg.BaseCurrency,
			Currencies:    cfg.Currencies,
			ExpenseGroups: report.GroupsFromLabels(cfg.ReportExpenseGroups),
			Organization:  cfg.OrganizationName,
			CenterID:      cfg.DefaultCenterID,
		}),
		Caches:  caches,
		Metrics: m,
	}
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that is closed once cleanup has finished.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
