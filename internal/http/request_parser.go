package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tesoreria/internal/ledger"
)

// importFileField is the multipart field carrying the exported ledger.
const importFileField = "file"

var (
	errEmptyBody    = errors.New("request body is empty")
	errBodyTooLarge = errors.New("request body too large")
)

// readImportContent returns the uploaded ledger text. The body is either the
// raw file or a multipart form with the file under "file".
func readImportContent(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	var src io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return "", bodyError(err)
		}
		file, _, err := r.FormFile(importFileField)
		if err != nil {
			return "", fmt.Errorf("missing %q form file: %w", importFileField, err)
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", bodyError(err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", errEmptyBody
	}
	return string(data), nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, maxErr.Limit)
	}
	return err
}

// parseDateBound accepts YYYY-MM-DD or YYYY-MM. A month bound widens to its
// first day, or to its last possible day when upper is set.
func parseDateBound(raw string, upper bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", raw); err == nil {
		return raw, nil
	}
	if _, err := time.Parse("2006-01", raw); err == nil {
		if upper {
			return raw + "-31", nil
		}
		return raw + "-01", nil
	}
	return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD or YYYY-MM", raw)
}

// parseDateRange reads the from and to query parameters.
func parseDateRange(query url.Values) (from, to string, err error) {
	if from, err = parseDateBound(query.Get("from"), false); err != nil {
		return "", "", err
	}
	if to, err = parseDateBound(query.Get("to"), true); err != nil {
		return "", "", err
	}
	if from != "" && to != "" && from > to {
		return "", "", fmt.Errorf("from %s is after to %s", from, to)
	}
	return from, to, nil
}

// parseDashboardQuery builds a ledger query from mode, from and to.
func parseDashboardQuery(query url.Values) (ledger.Query, error) {
	from, to, err := parseDateRange(query)
	if err != nil {
		return ledger.Query{}, err
	}
	return ledger.Query{
		Mode: ledger.ParseMode(query.Get("mode")),
		From: from,
		To:   to,
	}, nil
}

// parseYearMonth reads the {year} and {month} route parameters.
func parseYearMonth(r *http.Request) (year, month int, err error) {
	year, err = strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		return 0, 0, fmt.Errorf("invalid year %q", chi.URLParam(r, "year"))
	}
	month, err = strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", chi.URLParam(r, "month"))
	}
	return year, month, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
