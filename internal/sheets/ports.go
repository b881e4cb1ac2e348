// Package sheets declares the outbound port for publishing monthly reports.
package sheets

import (
	"context"
	"errors"

	"tesoreria/internal/report"
)

// ErrPublishingDisabled is returned when no report publisher is configured.
var ErrPublishingDisabled = errors.New("report publishing is not configured")

// ReportPublisher renders a composed report somewhere people can read it.
type ReportPublisher interface {
	// PublishReport replaces any previous rendering of the same period and
	// currency and returns a reference to the written range.
	PublishReport(ctx context.Context, doc report.Document) (ref string, err error)
}
