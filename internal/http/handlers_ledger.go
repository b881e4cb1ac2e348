package http

import (
	"net/http"

	"tesoreria/internal/core"
	"tesoreria/internal/ledger"
)

type transactionsResponse struct {
	From         string             `json:"from,omitempty"`
	To           string             `json:"to,omitempty"`
	Count        int                `json:"count"`
	Transactions []core.Transaction `json:"transactions"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	txs, err := s.deps.Dashboard.Transactions(r.Context(), from, to)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, r, http.StatusOK, transactionsResponse{From: from, To: to, Count: len(txs), Transactions: txs})
}

type dashboardResponse struct {
	ledger.Summary
	Series map[string][]ledger.PeriodPoint `json:"series"`
}

// handleDashboard returns totals per currency and, in month mode, the groups
// and chart series.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := parseDashboardQuery(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	sum, err := s.deps.Dashboard.Summary(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	series := make(map[string][]ledger.PeriodPoint)
	for _, cur := range sum.Currencies() {
		if points := sum.Chart(cur); len(points) > 0 {
			series[cur] = points
		}
	}
	writeJSON(w, r, http.StatusOK, dashboardResponse{Summary: sum, Series: series})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	doc, err := s.deps.Reports.Monthly(r.Context(), year, month, sanitizeInput(r.URL.Query().Get("currency")))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, doc)
}

func (s *Server) handlePublishReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	ref, err := s.deps.Reports.Publish(r.Context(), year, month, sanitizeInput(r.URL.Query().Get("currency")))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"range": ref})
}
