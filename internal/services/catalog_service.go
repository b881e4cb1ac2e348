package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tesoreria/internal/cache"
	"tesoreria/internal/core"
	"tesoreria/internal/log"
	"tesoreria/internal/metrics"
	"tesoreria/internal/store"
)

const catalogCacheKey = "catalog"

// CatalogService serves catalog snapshots, cached until the catalog is reseeded.
type CatalogService struct {
	reader  store.CatalogReader
	cache   *cache.LRUCache[core.Catalog]
	metrics *metrics.Metrics
}

// NewCatalogService builds the service. A nil cache disables caching.
func NewCatalogService(reader store.CatalogReader, c *cache.LRUCache[core.Catalog], m *metrics.Metrics) *CatalogService {
	return &CatalogService{reader: reader, cache: c, metrics: m}
}

// Snapshot returns centers and movement types, loading both concurrently on a cache miss.
func (s *CatalogService) Snapshot(ctx context.Context) (core.Catalog, error) {
	if s.cache != nil {
		if cat, ok := s.cache.Get(catalogCacheKey); ok {
			s.metrics.IncrCacheHit(catalogCacheKey)
			return cat, nil
		}
		s.metrics.IncrCacheMiss(catalogCacheKey)
	}

	var cat core.Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		centers, err := s.reader.ListCenters(gctx)
		if err != nil {
			return fmt.Errorf("list centers: %w", err)
		}
		cat.Centers = centers
		return nil
	})
	g.Go(func() error {
		types, err := s.reader.ListMovementTypes(gctx)
		if err != nil {
			return fmt.Errorf("list movement types: %w", err)
		}
		cat.MovementTypes = types
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Catalog{}, err
	}

	if s.cache != nil {
		s.cache.Set(catalogCacheKey, cat)
	}
	return cat, nil
}

// Seed upserts cat through writer and drops the cached snapshot.
func (s *CatalogService) Seed(ctx context.Context, writer store.CatalogWriter, cat core.Catalog) error {
	if err := writer.SeedCatalog(ctx, cat); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	log.FromContext(ctx).InfoContext(ctx, "Catalog seeded",
		log.FieldOperation, log.OpSeed,
		"centers", len(cat.Centers),
		"movement_types", len(cat.MovementTypes))
	return nil
}
