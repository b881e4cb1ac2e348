package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"tesoreria/internal/amqp"
	"tesoreria/internal/core"
	"tesoreria/internal/ledgerimport"
	"tesoreria/internal/log"
	"tesoreria/internal/metrics"
	"tesoreria/internal/store"
)

// EventPublisher announces persisted imports. *amqp.Client implements it.
type EventPublisher interface {
	PublishImportCompleted(ctx context.Context, msg *amqp.ImportCompletedMessage) error
}

// ImportOptions configures reconciliation and validation.
type ImportOptions struct {
	BaseCurrency    string
	Currencies      []string
	DefaultCenterID string
	Now             func() time.Time
}

// ImportSummary is what an import or preview reports back.
type ImportSummary struct {
	ImportID        string             `json:"importId,omitempty"`
	Attempted       int                `json:"attempted"`
	Imported        int                `json:"imported"`
	Skipped         int                `json:"skipped"`
	Unclassified    int                `json:"unclassified"`
	InvalidCurrency int                `json:"invalidCurrency"`
	Delimiter       string             `json:"delimiter"`
	Headers         []string           `json:"headers"`
	Periods         []string           `json:"periods"`
	Currencies      []string           `json:"currencies"`
	Transactions    []core.Transaction `json:"transactions,omitempty"`
}

type ImportService struct {
	catalog *CatalogService
	writer  store.TransactionWriter
	events  EventPublisher
	metrics *metrics.Metrics
	logger  *log.Logger
	opts    ImportOptions
}

// NewImportService wires the import pipeline. events and m may be nil.
func NewImportService(catalog *CatalogService, writer store.TransactionWriter, events EventPublisher, m *metrics.Metrics, logger *log.Logger, opts ImportOptions) *ImportService {
	if logger == nil {
		logger = log.Default(log.ComponentImport)
	}
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = core.DefaultCurrency
	}
	return &ImportService{
		catalog: catalog,
		writer:  writer,
		events:  events,
		metrics: m,
		logger:  logger.WithComponent(log.ComponentImport),
		opts:    opts,
	}
}

// Preview reconciles content against the current catalog without persisting.
// The candidate transactions are returned in the summary.
func (s *ImportService) Preview(ctx context.Context, content string) (ImportSummary, error) {
	sum, txs, err := s.reconcile(ctx, content)
	if err != nil {
		return sum, err
	}
	sum.Transactions = txs
	s.logger.InfoContext(ctx, "Import previewed", s.fields(log.OpPreview, sum).ToSlice()...)
	return sum, nil
}

// Import reconciles content and persists every accepted row as one batch.
// A structural failure persists nothing. A run that yields no rows is not an
// error; the counts say why.
func (s *ImportService) Import(ctx context.Context, content string) (ImportSummary, error) {
	sum, txs, err := s.reconcile(ctx, content)
	if err != nil {
		s.metrics.RecordImport("rejected", 0, 0, 0)
		return sum, err
	}
	if len(txs) == 0 {
		s.metrics.RecordImport("empty", 0, sum.Skipped, 0)
		s.logger.WarnContext(ctx, "Import produced no rows", s.fields(log.OpImport, sum).ToSlice()...)
		return sum, nil
	}

	sum.ImportID = uuid.NewString()
	if _, err := s.writer.AppendTransactions(ctx, sum.ImportID, txs); err != nil {
		s.metrics.RecordImport("error", 0, 0, 0)
		return ImportSummary{}, fmt.Errorf("save import: %w", err)
	}
	s.metrics.RecordImport("success", sum.Imported, sum.Skipped, sum.Unclassified)
	s.logger.InfoContext(ctx, "Import saved", s.fields(log.OpImport, sum).ToSlice()...)

	s.publish(ctx, sum)
	return sum, nil
}

func (s *ImportService) reconcile(ctx context.Context, content string) (ImportSummary, []core.Transaction, error) {
	cat, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return ImportSummary{}, nil, fmt.Errorf("load catalog: %w", err)
	}

	res, err := ledgerimport.Reconcile(content, cat.Centers, cat.MovementTypes, ledgerimport.Options{
		BaseCurrency:    s.opts.BaseCurrency,
		DefaultCenterID: s.opts.DefaultCenterID,
		Now:             s.opts.Now,
	})
	sum := ImportSummary{
		Attempted: res.Attempted,
		Skipped:   res.Skipped,
		Headers:   res.Headers,
	}
	if res.Delimiter != 0 {
		sum.Delimiter = string(res.Delimiter)
	}
	if err != nil {
		var missing *ledgerimport.MissingColumnsError
		if errors.As(err, &missing) {
			s.logger.WarnContext(ctx, "Import rejected", log.FieldError, err.Error(), log.FieldHeaders, missing.Headers)
		}
		return sum, nil, err
	}

	accepted := make([]core.Transaction, 0, len(res.Imported))
	periods := map[string]bool{}
	currencies := map[string]bool{}
	for _, tx := range res.Imported {
		if err := tx.Validate(s.opts.Currencies); err != nil {
			sum.Skipped++
			if errors.Is(err, core.ErrInvalidCurrency) {
				sum.InvalidCurrency++
			}
			continue
		}
		if tx.MovementTypeID == core.UnknownMovementTypeID {
			sum.Unclassified++
		}
		periods[tx.Period()] = true
		currencies[tx.Currency] = true
		accepted = append(accepted, tx)
	}
	sum.Imported = len(accepted)
	sum.Periods = sortedKeys(periods)
	sum.Currencies = sortedKeys(currencies)
	return sum, accepted, nil
}

// publish is best effort: the batch is already stored.
func (s *ImportService) publish(ctx context.Context, sum ImportSummary) {
	if s.events == nil {
		return
	}
	msg := amqp.NewImportCompletedMessage(sum.ImportID, sum.Imported, sum.Skipped, sum.Unclassified, sum.Periods, sum.Currencies)
	if err := s.events.PublishImportCompleted(ctx, msg); err != nil {
		s.metrics.IncrMessage(amqp.MessageTypeImportCompleted, "error")
		s.logger.ErrorContext(ctx, "Failed to publish import event",
			log.FieldImportID, sum.ImportID,
			log.FieldError, err.Error())
		return
	}
	s.metrics.IncrMessage(amqp.MessageTypeImportCompleted, "published")
}

func (s *ImportService) fields(op string, sum ImportSummary) log.LogFields {
	return log.NewFields().
		WithOperation(op).
		WithImport(sum.ImportID, sum.Attempted, sum.Imported, sum.Skipped, sum.Unclassified)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
