package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"tesoreria/internal/core"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady checks the store behind the API.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleCenters(w http.ResponseWriter, r *http.Request) {
	cat, err := s.deps.Catalog.Snapshot(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cat.Centers)
}

// handleMovementTypes lists the catalog, optionally filtered by ?category=.
func (s *Server) handleMovementTypes(w http.ResponseWriter, r *http.Request) {
	var want core.Category
	if raw := sanitizeInput(r.URL.Query().Get("category")); raw != "" {
		c, err := core.ParseCategory(raw)
		if err != nil {
			BadRequestError(err.Error()).Write(w, r)
			return
		}
		want = c
	}

	cat, err := s.deps.Catalog.Snapshot(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	types := cat.MovementTypes
	if want != "" {
		types = make([]core.MovementType, 0, len(cat.MovementTypes))
		for _, mt := range cat.MovementTypes {
			if strings.EqualFold(string(mt.Category), string(want)) {
				types = append(types, mt)
			}
		}
	}
	writeJSON(w, r, http.StatusOK, types)
}
