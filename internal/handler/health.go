package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type healthResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Notion   bool   `json:"notion"`
	Database string `json:"database"`
}

// Health reports liveness. It fails only when a configured Postgres mirror
// does not answer; a missing Notion credential is reported, not fatal.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Message:  "Card API",
		Notion:   h.notionConfigured,
		Database: "disabled",
	}

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "health check: database ping failed", "error", err)
			resp.Status = "unhealthy"
			resp.Message = "database unreachable"
			resp.Database = "unreachable"
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
		resp.Database = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
