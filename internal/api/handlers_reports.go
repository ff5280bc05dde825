package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/cohere/internal/store"
)

const maxListLimit = 500

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	reports, err := s.reports.List(r.Context(), limit)
	if err != nil {
		s.log.Error("list reports", "error", err)
		jsonError(w, "failed to list reports", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// handleGetReport serves a stored report. sort=score orders units by
// descending score instead of document order.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Get(r.Context(), chi.URLParam(r, "reportID"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get report", "error", err)
		jsonError(w, "failed to load report", http.StatusInternalServerError)
		return
	}

	switch order := r.URL.Query().Get("sort"); order {
	case "", "position":
	case "score":
		sorted := *rep
		sorted.Units = rep.SortedByScore()
		rep = &sorted
	default:
		jsonError(w, "unsupported sort: "+order, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportID")
	err := s.reports.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("delete report", "report_id", id, "error", err)
		jsonError(w, "failed to delete report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
