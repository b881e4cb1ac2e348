package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var ledgerSchema embed.FS

const schemaTable = "ledger_schema_migrations"

// ErrDirtySchema means a previous migration stopped halfway and the ledger
// tables must be repaired by hand before the store can open.
var ErrDirtySchema = errors.New("ledger schema is dirty")

// MigrateLedger applies the embedded ledger schema to the database at dbPath
// and returns the resulting version. The migrator closes the connection it
// owns, so it never shares the repository pool.
func MigrateLedger(dbPath string) (uint, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open schema connection: %w", err)
	}

	target, err := sqlite.WithInstance(conn, &sqlite.Config{MigrationsTable: schemaTable})
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("attach schema target: %w", err)
	}
	source, err := iofs.New(ledgerSchema, "migrations")
	if err != nil {
		target.Close()
		return 0, fmt.Errorf("load ledger schema: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", target)
	if err != nil {
		source.Close()
		target.Close()
		return 0, fmt.Errorf("prepare ledger schema: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply ledger schema: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}
	return version, nil
}
