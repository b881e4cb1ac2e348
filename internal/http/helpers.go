package http

import (
	"context"
	"errors"
	"net/http"

	"tesoreria/internal/core"
	"tesoreria/internal/ledgerimport"
	"tesoreria/internal/log"
	"tesoreria/internal/services"
	"tesoreria/internal/sheets"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	NewJSONResponse().Status(status).Payload(v).Write(w, r)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	ErrorResponse(status, msg).Write(w, r)
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var missing *ledgerimport.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		NewJSONResponse().
			Status(http.StatusUnprocessableEntity).
			Payload(ErrorBody{Error: err.Error(), Missing: missing.Missing, Headers: missing.Headers}).
			Write(w, r)
	case errors.Is(err, ledgerimport.ErrEmptyFile),
		errors.Is(err, services.ErrInvalidPeriod),
		errors.Is(err, core.ErrInvalidCurrency):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, sheets.ErrPublishingDisabled):
		writeError(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		logger.ErrorContext(ctx, "Request timed out", log.FieldError, err.Error())
		writeError(w, r, http.StatusGatewayTimeout, "request timed out")
	default:
		logger.ErrorContext(ctx, "Request failed", log.FieldError, err.Error())
		InternalServerError("internal error").Write(w, r)
	}
}
