package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/log"
)

// Toggle switches hand tracking on and off.
type Toggle interface {
	IsEnabled() bool
	SetEnabled(bool)
}

// TrackingHandler serves GET and PUT /api/tracking.
type TrackingHandler struct {
	toggle Toggle
}

// NewTrackingHandler creates a TrackingHandler backed by t.
func NewTrackingHandler(t Toggle) *TrackingHandler {
	return &TrackingHandler{toggle: t}
}

type trackingBody struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP implements the http.Handler interface.
func (h *TrackingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req trackingBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.toggle.SetEnabled(*req.Enabled)
		log.Info("tracking toggled", "enabled", *req.Enabled, "source", "api")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	enabled := h.toggle.IsEnabled()
	writeJSON(w, http.StatusOK, trackingBody{Enabled: &enabled})
}
