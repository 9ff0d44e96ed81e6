package handler

import (
	"net/http"

	"github.com/cardsite/backend/internal/repository"
)

// Handler serves the site-wide endpoints and middleware that do not belong to
// a single feature.
type Handler struct {
	db               repository.DB
	notionConfigured bool
	frontendURL      string
}

// New creates a Handler. db may be nil when no Postgres mirror is configured.
func New(db repository.DB, notionConfigured bool, frontendURL string) *Handler {
	return &Handler{db: db, notionConfigured: notionConfigured, frontendURL: frontendURL}
}

func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.frontendURL)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
