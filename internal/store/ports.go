// Package store declares the persistence ports used by the services.
package store

import (
	"context"

	"tesoreria/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionWriter persists imported transactions.
	TransactionWriter interface {
		// AppendTransactions stores txs as one batch tagged with importID and
		// returns them with their assigned IDs. Either every row is stored or none.
		AppendTransactions(ctx context.Context, importID string, txs []core.Transaction) ([]core.Transaction, error)
	}

	// TransactionLister returns stored transactions whose period (YYYY-MM)
	// lies within [from, to]. An empty bound is open.
	TransactionLister interface {
		ListTransactions(ctx context.Context, from, to string) ([]core.Transaction, error)
	}

	// CatalogReader exposes the reference data.
	CatalogReader interface {
		ListCenters(ctx context.Context) ([]core.Center, error)
		ListMovementTypes(ctx context.Context) ([]core.MovementType, error)
	}

	// CatalogWriter upserts reference data, typically from the YAML seed.
	CatalogWriter interface {
		SeedCatalog(ctx context.Context, cat core.Catalog) error
	}

	// Store is everything a backend provides.
	Store interface {
		TransactionWriter
		TransactionLister
		CatalogReader
		CatalogWriter
	}
)

// InPeriodRange reports whether period lies within [from, to]; empty bounds are open.
func InPeriodRange(period, from, to string) bool {
	if from != "" && period < from {
		return false
	}
	if to != "" && period > to {
		return false
	}
	return true
}
