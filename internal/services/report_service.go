package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"tesoreria/internal/core"
	"tesoreria/internal/log"
	"tesoreria/internal/metrics"
	"tesoreria/internal/report"
	"tesoreria/internal/sheets"
	"tesoreria/internal/store"
)

// ErrInvalidPeriod is returned for a month outside 1..12 or a non-positive year.
var ErrInvalidPeriod = errors.New("invalid report period")

// ReportOptions holds the fixed parts of every report.
type ReportOptions struct {
	BaseCurrency  string
	Currencies    []string
	ExpenseGroups []report.Group
	Organization  string
	CenterID      string
}

type ReportService struct {
	catalog   *CatalogService
	lister    store.TransactionLister
	publisher sheets.ReportPublisher
	metrics   *metrics.Metrics
	logger    *log.Logger
	opts      ReportOptions
}

// NewReportService wires report composition. publisher may be nil, in which
// case Publish returns sheets.ErrPublishingDisabled.
func NewReportService(catalog *CatalogService, lister store.TransactionLister, publisher sheets.ReportPublisher, m *metrics.Metrics, logger *log.Logger, opts ReportOptions) *ReportService {
	if logger == nil {
		logger = log.Default(log.ComponentReport)
	}
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = core.DefaultCurrency
	}
	return &ReportService{
		catalog:   catalog,
		lister:    lister,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithComponent(log.ComponentReport),
		opts:      opts,
	}
}

// Monthly composes the report of one month in one currency. An empty currency
// means the base currency.
func (s *ReportService) Monthly(ctx context.Context, year, month int, currency string) (report.Document, error) {
	if year < 1 || month < 1 || month > 12 {
		return report.Document{}, fmt.Errorf("%w: %d-%d", ErrInvalidPeriod, year, month)
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.opts.BaseCurrency
	}
	if !s.accepts(currency) {
		return report.Document{}, fmt.Errorf("%w: %q", core.ErrInvalidCurrency, currency)
	}

	period := fmt.Sprintf("%04d-%02d", year, month)
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
		txs, err = s.lister.ListTransactions(gctx, period, period)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.Document{}, err
	}

	return report.Compose(report.Input{
		Year:          year,
		Month:         month,
		Currency:      currency,
		BaseCurrency:  s.opts.BaseCurrency,
		Transactions:  txs,
		Types:         cat.MovementTypes,
		ExpenseGroups: s.opts.ExpenseGroups,
		Organization:  s.opts.Organization,
		Center:        s.centerName(cat),
	}), nil
}

// Publish composes the report and hands it to the configured publisher.
func (s *ReportService) Publish(ctx context.Context, year, month int, currency string) (string, error) {
	if s.publisher == nil {
		return "", sheets.ErrPublishingDisabled
	}
	doc, err := s.Monthly(ctx, year, month, currency)
	if err != nil {
		return "", err
	}
	ref, err := s.publisher.PublishReport(ctx, doc)
	if err != nil {
		s.metrics.IncrReportPublish("error")
		s.metrics.IncrExternalError("sheets")
		return "", fmt.Errorf("publish report %s %s: %w", doc.Period, doc.Currency, err)
	}
	s.metrics.IncrReportPublish("success")
	s.logger.InfoContext(ctx, "Report published",
		log.NewFields().WithOperation(log.OpPublish).WithPeriod(doc.Period, doc.Currency).ToSlice()...)
	return ref, nil
}

func (s *ReportService) accepts(currency string) bool {
	if len(s.opts.Currencies) == 0 {
		return len(currency) == 3
	}
	for _, c := range s.opts.Currencies {
		if strings.EqualFold(c, currency) {
			return true
		}
	}
	return false
}

func (s *ReportService) centerName(cat core.Catalog) string {
	if s.opts.CenterID != "" {
		return cat.CenterName(s.opts.CenterID)
	}
	if len(cat.Centers) > 0 {
		return cat.Centers[0].Name
	}
	return ""
}
