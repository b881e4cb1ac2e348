package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"tesoreria/internal/amqp"
	"tesoreria/internal/core"
	"tesoreria/internal/log"
	"tesoreria/internal/metrics"
	"tesoreria/internal/resilience"
	"tesoreria/internal/services"
	"tesoreria/internal/sheets"
)

// ReportPublisher rebuilds and publishes one monthly report.
// *services.ReportService implements it.
type ReportPublisher interface {
	Publish(ctx context.Context, year, month int, currency string) (string, error)
}

// ReportWorker republishes the monthly reports touched by an import.
type ReportWorker struct {
	reports ReportPublisher
	breaker *gobreaker.CircuitBreaker
	retry   resilience.Config
	metrics *metrics.Metrics
	logger  *log.Logger
}

func NewReportWorker(reports ReportPublisher, retry resilience.Config, m *metrics.Metrics, logger *log.Logger) *ReportWorker {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &ReportWorker{
		reports: reports,
		breaker: resilience.NewCircuitBreaker("sheets-publish"),
		retry:   retry,
		metrics: m,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleImportCompleted publishes one report per affected period and currency.
// Every pair is attempted; the first transient failure is returned so the
// message is redelivered. A disabled publisher acknowledges the message, and a
// pair that can never be published, such as the period of an impossible date
// like "2024-13", is logged and skipped.
func (w *ReportWorker) HandleImportCompleted(ctx context.Context, msg *amqp.ImportCompletedMessage) error {
	w.logger.InfoContext(ctx, "Processing import event",
		log.FieldImportID, msg.ImportID,
		"periods", msg.Periods,
		"currencies", msg.Currencies)

	var firstErr error
	for _, period := range msg.Periods {
		for _, currency := range msg.Currencies {
			err := w.Republish(ctx, period, currency)
			switch {
			case err == nil:
			case errors.Is(err, sheets.ErrPublishingDisabled):
				w.logger.WarnContext(ctx, "Report publishing disabled, skipping", log.FieldImportID, msg.ImportID)
				w.metrics.IncrMessage(amqp.MessageTypeImportCompleted, "skipped")
				return nil
			case unpublishable(err):
				w.logger.WarnContext(ctx, "Report cannot be published, skipping",
					log.NewFields().WithPeriod(period, currency).WithError(err).ToSlice()...)
				w.metrics.IncrMessage(amqp.MessageTypeImportCompleted, "skipped")
			default:
				w.logger.ErrorContext(ctx, "Failed to publish report",
					log.NewFields().WithPeriod(period, currency).WithError(err).ToSlice()...)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	if firstErr != nil {
		w.metrics.IncrMessage(amqp.MessageTypeImportCompleted, "error")
		return firstErr
	}
	w.metrics.IncrMessage(amqp.MessageTypeImportCompleted, "processed")
	return nil
}

// Republish publishes the report of one YYYY-MM period through the breaker,
// retrying transient failures.
func (w *ReportWorker) Republish(ctx context.Context, period, currency string) error {
	year, month, err := parsePeriod(period)
	if err != nil {
		return resilience.Permanent(err)
	}
	return resilience.Guard(ctx, w.breaker, w.retry, func(ctx context.Context) error {
		ref, err := w.reports.Publish(ctx, year, month, currency)
		if err != nil {
			if errors.Is(err, sheets.ErrPublishingDisabled) ||
				errors.Is(err, services.ErrInvalidPeriod) ||
				errors.Is(err, core.ErrInvalidCurrency) {
				return resilience.Permanent(err)
			}
			return err
		}
		w.logger.InfoContext(ctx, "Report republished",
			log.FieldPeriod, period,
			log.FieldCurrency, currency,
			"range", ref)
		return nil
	})
}

// unpublishable reports whether retrying err can never succeed. An open
// breaker is permanent for the current attempt only, so it is redelivered.
func unpublishable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) {
		return false
	}
	return errors.Is(err, resilience.ErrPermanent) ||
		errors.Is(err, services.ErrInvalidPeriod) ||
		errors.Is(err, core.ErrInvalidCurrency)
}

func parsePeriod(period string) (int, int, error) {
	y, m, ok := strings.Cut(period, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", services.ErrInvalidPeriod, period)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", services.ErrInvalidPeriod, period)
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: %q", services.ErrInvalidPeriod, period)
	}
	return year, month, nil
}
