package api

import (
	"net/http"
)

func (s *Server) handleEncoderStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "encoder stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model": s.cfg.EmbedModel,
		"stats": s.stats.Snapshot(),
	})
}
