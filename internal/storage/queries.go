package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the statements used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// TransactionRow mirrors the transactions table.
type TransactionRow struct {
	ID                string
	ImportID          sql.NullString
	Date              string
	Period            string
	CenterID          string
	MovementTypeID    string
	Detail            string
	Amount            string
	Currency          string
	Attachment        string
	ExcludeFromReport bool
}

const upsertCenter = `
INSERT INTO centers (id, name) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET name = excluded.name`

func (q *Queries) UpsertCenter(ctx context.Context, id, name string) error {
	_, err := q.db.ExecContext(ctx, upsertCenter, id, name)
	return err
}

const upsertMovementType = `
INSERT INTO movement_types (id, name, category, subcategory) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    category = excluded.category,
    subcategory = excluded.subcategory`

func (q *Queries) UpsertMovementType(ctx context.Context, id, name, category, subcategory string) error {
	_, err := q.db.ExecContext(ctx, upsertMovementType, id, name, category, subcategory)
	return err
}

const createImportBatch = `INSERT INTO import_batches (id, row_count) VALUES (?, ?)`

func (q *Queries) CreateImportBatch(ctx context.Context, id string, rowCount int64) error {
	_, err := q.db.ExecContext(ctx, createImportBatch, id, rowCount)
	return err
}

const insertTransaction = `
INSERT INTO transactions (
    id, import_id, date, period, center_id, movement_type_id,
    detail, amount, currency, attachment, exclude_from_report
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, r TransactionRow) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		r.ID, r.ImportID, r.Date, r.Period, r.CenterID, r.MovementTypeID,
		r.Detail, r.Amount, r.Currency, r.Attachment, r.ExcludeFromReport,
	)
	return err
}

const listTransactions = `
SELECT id, import_id, date, period, center_id, movement_type_id,
       detail, amount, currency, attachment, exclude_from_report
FROM transactions
WHERE (?1 = '' OR period >= ?1) AND (?2 = '' OR period <= ?2)
ORDER BY date, rowid`

func (q *Queries) ListTransactions(ctx context.Context, from, to string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.ID, &i.ImportID, &i.Date, &i.Period, &i.CenterID, &i.MovementTypeID,
			&i.Detail, &i.Amount, &i.Currency, &i.Attachment, &i.ExcludeFromReport,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countImport = `SELECT COUNT(*) FROM transactions WHERE import_id = ?`

func (q *Queries) CountImport(ctx context.Context, importID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countImport, importID).Scan(&n)
	return n, err
}

const listCenters = `SELECT id, name FROM centers ORDER BY rowid`

func (q *Queries) ListCenters(ctx context.Context) ([][2]string, error) {
	rows, err := q.db.QueryContext(ctx, listCenters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items [][2]string
	for rows.Next() {
		var i [2]string
		if err := rows.Scan(&i[0], &i[1]); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// MovementTypeRow mirrors the movement_types table.
type MovementTypeRow struct {
	ID          string
	Name        string
	Category    string
	Subcategory string
}

const listMovementTypes = `SELECT id, name, category, subcategory FROM movement_types ORDER BY rowid`

func (q *Queries) ListMovementTypes(ctx context.Context) ([]MovementTypeRow, error) {
	rows, err := q.db.QueryContext(ctx, listMovementTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MovementTypeRow
	for rows.Next() {
		var i MovementTypeRow
		if err := rows.Scan(&i.ID, &i.Name, &i.Category, &i.Subcategory); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
