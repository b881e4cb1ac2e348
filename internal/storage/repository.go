package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tesoreria/internal/core"
	"tesoreria/internal/log"
	"tesoreria/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := MigrateLedger(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger := log.Default(log.ComponentStorage)
	logger.Debug("Ledger schema ready", "path", dbPath, "schema_version", version)
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger,
	}, nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AppendTransactions implements store.TransactionWriter. The batch and its rows
// are written in one SQL transaction.
func (r *SQLiteRepository) AppendTransactions(ctx context.Context, importID string, txs []core.Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, len(txs))
	for i, t := range txs {
		if err := t.Validate(nil); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		out[i] = t
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	batch := sql.NullString{String: importID, Valid: importID != ""}
	if batch.Valid {
		if err := q.CreateImportBatch(ctx, importID, int64(len(out))); err != nil {
			return nil, fmt.Errorf("create import batch: %w", err)
		}
	}
	for _, t := range out {
		if err := q.InsertTransaction(ctx, toRow(t, batch)); err != nil {
			return nil, fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.DebugContext(ctx, "Transactions saved to SQLite",
		log.FieldImportID, importID,
		log.FieldImported, len(out))
	return out, nil
}

// ListTransactions implements store.TransactionLister.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, from, to string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// CountImport returns how many rows were stored under importID.
func (r *SQLiteRepository) CountImport(ctx context.Context, importID string) (int, error) {
	n, err := r.queries.CountImport(ctx, importID)
	if err != nil {
		return 0, fmt.Errorf("count import %s: %w", importID, err)
	}
	return int(n), nil
}

// ListCenters implements store.CatalogReader.
func (r *SQLiteRepository) ListCenters(ctx context.Context) ([]core.Center, error) {
	rows, err := r.queries.ListCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list centers: %w", err)
	}
	out := make([]core.Center, len(rows))
	for i, row := range rows {
		out[i] = core.Center{ID: row[0], Name: row[1]}
	}
	return out, nil
}

// ListMovementTypes implements store.CatalogReader.
func (r *SQLiteRepository) ListMovementTypes(ctx context.Context) ([]core.MovementType, error) {
	rows, err := r.queries.ListMovementTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movement types: %w", err)
	}
	out := make([]core.MovementType, len(rows))
	for i, row := range rows {
		out[i] = core.MovementType{
			ID:          row.ID,
			Name:        row.Name,
			Category:    core.Category(row.Category),
			Subcategory: row.Subcategory,
		}
	}
	return out, nil
}

// SeedCatalog implements store.CatalogWriter.
func (r *SQLiteRepository) SeedCatalog(ctx context.Context, cat core.Catalog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	for _, c := range cat.Centers {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("center %q: %w", c.ID, err)
		}
		if err := q.UpsertCenter(ctx, c.ID, c.Name); err != nil {
			return fmt.Errorf("upsert center %s: %w", c.ID, err)
		}
	}
	for _, mt := range cat.MovementTypes {
		if err := mt.Validate(); err != nil {
			return fmt.Errorf("movement type %q: %w", mt.ID, err)
		}
		if err := q.UpsertMovementType(ctx, mt.ID, mt.Name, string(mt.Category), mt.Subcategory); err != nil {
			return fmt.Errorf("upsert movement type %s: %w", mt.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "Catalog seeded",
		log.FieldOperation, log.OpSeed,
		"centers", len(cat.Centers),
		"movement_types", len(cat.MovementTypes))
	return nil
}

func toRow(t core.Transaction, importID sql.NullString) TransactionRow {
	return TransactionRow{
		ID:                t.ID,
		ImportID:          importID,
		Date:              t.Date,
		Period:            t.Period(),
		CenterID:          t.CenterID,
		MovementTypeID:    t.MovementTypeID,
		Detail:            t.Detail,
		Amount:            t.Amount.String(),
		Currency:          t.Currency,
		Attachment:        t.Attachment,
		ExcludeFromReport: t.ExcludeFromReport,
	}
}

func fromRow(row TransactionRow) (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: amount %q: %w", row.ID, row.Amount, err)
	}
	return core.Transaction{
		ID:                row.ID,
		Date:              row.Date,
		CenterID:          row.CenterID,
		MovementTypeID:    row.MovementTypeID,
		Detail:            row.Detail,
		Amount:            amount,
		Currency:          row.Currency,
		Attachment:        row.Attachment,
		ExcludeFromReport: row.ExcludeFromReport,
	}, nil
}
