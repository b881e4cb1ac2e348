package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tesoreria/internal/config"
)

const catalogYAML = `centers:
  - id: central
    name: Sede Central
movement_types:
  - id: diezmos
    name: Diezmos
    category: income
  - id: luz
    name: Luz
    category: expense
    subcategory: Gastos generales
`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(catalogYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", CatalogFile: "c.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.CatalogFile != "c.yaml" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("sheets is no longer a storage backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Fatal("sqlite without a path should fail")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Fatalf("memory should validate: %v", err)
	}
	if got := GetBackendTypeStrings(); len(got) != 2 {
		t.Fatalf("unexpected backend types: %v", got)
	}
}

func TestCreateMemoryBackendSeedsCatalog(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend, CatalogFile: writeCatalog(t)})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	types, err := res.Store.ListMovementTypes(ctx)
	if err != nil || len(types) != 2 {
		t.Fatalf("expected 2 seeded types, got %d (%v)", len(types), err)
	}
	if res.Cleanup != nil {
		t.Error("memory backend needs no cleanup")
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "db", "tesoreria.db"),
		CatalogFile:  writeCatalog(t),
	}
	res, err := NewFactory(nil).CreateBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if err := res.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	centers, err := res.Store.ListCenters(ctx)
	if err != nil || len(centers) != 1 || centers[0].Name != "Sede Central" {
		t.Fatalf("unexpected centers: %+v (%v)", centers, err)
	}
}

func TestCreateBackendMissingCatalogIsEmpty(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:        MemoryBackend,
		CatalogFile: filepath.Join(t.TempDir(), "absent.yaml"),
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	centers, _ := res.Store.ListCenters(ctx)
	if len(centers) != 0 {
		t.Fatalf("expected empty catalog, got %d centers", len(centers))
	}
}
