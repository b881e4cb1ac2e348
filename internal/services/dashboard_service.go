package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tesoreria/internal/core"
	"tesoreria/internal/ledger"
	"tesoreria/internal/store"
)

// DashboardService answers ledger queries over stored transactions.
type DashboardService struct {
	catalog      *CatalogService
	lister       store.TransactionLister
	baseCurrency string
}

func NewDashboardService(catalog *CatalogService, lister store.TransactionLister, baseCurrency string) *DashboardService {
	if baseCurrency == "" {
		baseCurrency = core.DefaultCurrency
	}
	return &DashboardService{catalog: catalog, lister: lister, baseCurrency: baseCurrency}
}

// Summary aggregates the transactions selected by q. The catalog and the
// transactions are loaded concurrently.
func (s *DashboardService) Summary(ctx context.Context, q ledger.Query) (ledger.Summary, error) {
	if q.BaseCurrency == "" {
		q.BaseCurrency = s.baseCurrency
	}
	var (
		cat core.Catalog
		txs []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cat, err = s.catalog.Snapshot(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.Transactions(gctx, q.From, q.To)
		return err
	})
	if err := g.Wait(); err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Aggregate(txs, cat.MovementTypes, q), nil
}

// Transactions lists stored rows whose date lies within [from, to]; empty
// bounds are open.
func (s *DashboardService) Transactions(ctx context.Context, from, to string) ([]core.Transaction, error) {
	txs, err := s.lister.ListTransactions(ctx, core.PeriodOf(from), core.PeriodOf(to))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	// ISO dates compare lexically like periods.
	out := txs[:0]
	for _, tx := range txs {
		if store.InPeriodRange(tx.Date, from, to) {
			out = append(out, tx)
		}
	}
	return out, nil
}
