package http

import (
	"errors"
	"net/http"
)

// handleImport persists an uploaded ledger export. 201 when rows were stored,
// 200 when every row was skipped.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	content, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	sum, err := s.deps.Imports.Import(r.Context(), content)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	status := http.StatusCreated
	if sum.Imported == 0 {
		status = http.StatusOK
	}
	writeJSON(w, r, status, sum)
}

// handlePreview reconciles an upload without storing it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	content, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	sum, err := s.deps.Imports.Preview(r.Context(), content)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sum)
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, bool) {
	content, err := readImportContent(w, r, s.deps.MaxImportBytes)
	switch {
	case err == nil:
		return content, true
	case errors.Is(err, errBodyTooLarge):
		ErrorResponse(http.StatusRequestEntityTooLarge, err.Error()).Write(w, r)
	default:
		BadRequestError(err.Error()).Write(w, r)
	}
	return "", false
}
