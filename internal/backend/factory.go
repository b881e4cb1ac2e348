package backend

import (
	"context"
	"fmt"

	"tesoreria/internal/catalog"
	"tesoreria/internal/core"
	"tesoreria/internal/log"
	"tesoreria/internal/storage"
	"tesoreria/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Default(log.ComponentBackend)
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the configured store and seeds it from the catalog file.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cat, err := catalog.LoadOptional(config.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", config.CatalogFile, err)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config, cat)
	case MemoryBackend:
		f.logger.Info("Initialized memory backend",
			"centers", len(cat.Centers),
			"movement_types", len(cat.MovementTypes))
		return &BackendResult{Store: memory.New(cat)}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config, cat core.Catalog) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	seed := len(cat.Centers)+len(cat.MovementTypes) > 0
	if seed {
		if err := repo.SeedCatalog(ctx, cat); err != nil {
			repo.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"catalog_seeded", seed)

	return &BackendResult{
		Store:   repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}
