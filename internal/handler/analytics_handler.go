package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cardsite/backend/internal/model"
	"github.com/cardsite/backend/internal/service"
)

// AnalyticsHandler accepts fire-and-forget analytics beacons.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	now              func() time.Time
}

// NewAnalyticsHandler creates an AnalyticsHandler with the given service.
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, now: time.Now}
}

// Beacons carry an action name and a small metadata object.
const maxAnalyticsBytes = 64 << 10

type logEventRequest struct {
	Action   string         `json:"action"`
	Metadata map[string]any `json:"metadata"`
}

// Log handles POST /api/analytics. Once the action is present the beacon is
// acknowledged no matter what happens to the write.
func (h *AnalyticsHandler) Log(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAnalyticsBytes)

	var req logEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	rc := model.RequestContext{
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
		ClientIP:  ClientAddress(r),
	}
	if _, err := h.analyticsService.Track(r.Context(), req.Action, rc, req.Metadata); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}
		slog.ErrorContext(r.Context(), "analytics handler failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to log analytics event")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

type analyticsStatusResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Status handles GET /api/analytics.
func (h *AnalyticsHandler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(analyticsStatusResponse{
		Message:   "Analytics endpoint active",
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	})
}
